// internal/workers/research/read-document/word.go
package readdocument

import (
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// readWord returns the text of the body paragraphs of a WordprocessingML
// package, one line per paragraph. Tables and drawings (text boxes
// included) are not part of the body paragraph list and are skipped.
func readWord(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return "", err
	}

	var out strings.Builder
	for _, item := range doc.Document.Body.Items {
		p, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		out.WriteString(paragraphText(p))
		out.WriteString("\n")
	}
	return strings.TrimSpace(out.String()), nil
}

func paragraphText(p *docx.Paragraph) string {
	var b strings.Builder
	for _, child := range p.Children {
		switch c := child.(type) {
		case *docx.Run:
			runText(&b, c)
		case *docx.Hyperlink:
			runText(&b, &c.Run)
		}
	}
	return b.String()
}

func runText(b *strings.Builder, r *docx.Run) {
	for _, child := range r.Children {
		switch c := child.(type) {
		case *docx.Text:
			b.WriteString(c.Text)
		case *docx.Tab:
			b.WriteString("\t")
		case *docx.BarterRabbet:
			b.WriteString("\n")
		}
	}
}

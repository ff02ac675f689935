// internal/workers/research/collect-web-research/scrape.go
package collectwebresearch

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	errNoContent = errors.New("page has no article, main or body element")

	blankRuns = regexp.MustCompile(`\n{3,}`)

	skippedTags = map[string]bool{
		"script":   true,
		"style":    true,
		"nav":      true,
		"footer":   true,
		"header":   true,
		"aside":    true,
		"iframe":   true,
		"noscript": true,
	}
)

// ExtractPageText returns the readable text of the first article, main or
// body element, one line per text node, truncated to maxChars runes with
// a trailing "..." when longer.
func ExtractPageText(r io.Reader, maxChars int) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	var root *html.Node
	for _, tag := range []string{"article", "main", "body"} {
		if root = findElement(doc, tag); root != nil {
			break
		}
	}
	if root == nil {
		return "", errNoContent
	}

	var lines []string
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedTags[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			for _, line := range strings.Split(n.Data, "\n") {
				if line = strings.TrimSpace(line); line != "" {
					lines = append(lines, line)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(root)

	text := blankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return truncate(text, maxChars, "..."), nil
}

// findElement is a depth-first search that never descends into skipped tags.
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode {
		if skippedTags[n.Data] {
			return nil
		}
		if n.Data == tag {
			return n
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func truncate(s string, max int, suffix string) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + suffix
}

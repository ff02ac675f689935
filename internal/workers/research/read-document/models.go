// internal/workers/research/read-document/models.go
package readdocument

type Input struct {
	FilePath string `json:"filePath"`
}

type Output struct {
	Text       string `json:"text"`
	Format     string `json:"format"`
	Characters int    `json:"characters"`
}

const (
	FormatTXT  = "txt"
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
	FormatDOC  = "doc"
)

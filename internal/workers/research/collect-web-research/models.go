// internal/workers/research/collect-web-research/models.go
package collectwebresearch

import "mic-ai-service/internal/models"

type Input struct {
	Idea string `json:"idea"`
}

type Output struct {
	Corpus  string        `json:"corpus"`
	Queries []QueryResult `json:"queries"`
}

// QueryResult records what one search query contributed to the corpus.
type QueryResult struct {
	Query   string   `json:"query"`
	Sources []Source `json:"sources"`
	Err     string   `json:"error,omitempty"`
}

type Source struct {
	models.SearchResult
	Content string `json:"content,omitempty"`
}

// QueryTemplates are expanded with the idea text, in order.
var QueryTemplates = []string{
	"%s market size 2024 2025",
	"%s competitors landscape",
	"%s market trends statistics",
	"%s investment funding news",
	"%s market saturation analysis",
}

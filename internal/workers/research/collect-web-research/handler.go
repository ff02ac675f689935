// internal/workers/research/collect-web-research/handler.go
package collectwebresearch

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	commonhttp "mic-ai-service/internal/common/http"
	"mic-ai-service/internal/common/metrics"
	"mic-ai-service/internal/models"
)

const (
	TaskType = "collect-web-research"
)

var (
	sectionRule = strings.Repeat("=", 80)
	sourceRule  = strings.Repeat("-", 80)
)

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config       *Config
	searchClient *commonhttp.Client
	pageClient   *commonhttp.Client
	logger       Logger
	sleep        func(ctx context.Context, d time.Duration) error
}

func NewHandler(config *Config, log Logger) *Handler {
	return &Handler{
		config:       config,
		searchClient: commonhttp.NewClient(config.SearchTimeout, config.UserAgent),
		pageClient:   commonhttp.NewClient(config.PageTimeout, config.UserAgent),
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
		sleep: sleepContext,
	}
}

// Execute runs every query template for the idea and concatenates what it
// finds. Search and scrape failures are logged and skipped; only context
// cancellation is returned as an error.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	h.logger.Info("conducting market research", map[string]interface{}{
		"queries": len(QueryTemplates),
	})

	var (
		corpus strings.Builder
		output = &Output{Queries: make([]QueryResult, 0, len(QueryTemplates))}
	)

	for _, tmpl := range QueryTemplates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		query := fmt.Sprintf(tmpl, input.Idea)
		qr := h.runQuery(ctx, query, &corpus)
		output.Queries = append(output.Queries, qr)

		if err := h.sleep(ctx, h.config.QueryDelay); err != nil {
			return nil, err
		}
	}

	output.Corpus = corpus.String()

	h.logger.Info("market research completed", map[string]interface{}{
		"corpusChars": len([]rune(output.Corpus)),
		"sources":     countSources(output.Queries),
	})
	return output, nil
}

func (h *Handler) runQuery(ctx context.Context, query string, corpus *strings.Builder) QueryResult {
	qr := QueryResult{Query: query}

	results, err := h.Search(ctx, query)
	if err != nil {
		h.logger.Warn("search failed, skipping query", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		metrics.ResearchQueriesTotal.WithLabelValues("failed").Inc()
		qr.Err = err.Error()
		return qr
	}
	if len(results) == 0 {
		metrics.ResearchQueriesTotal.WithLabelValues("empty").Inc()
		return qr
	}
	metrics.ResearchQueriesTotal.WithLabelValues("success").Inc()

	fmt.Fprintf(corpus, "\n\n%s\nRESEARCH QUERY: %s\n%s\n", sectionRule, query, sectionRule)

	top := results
	if h.config.PagesPerQuery > 0 && len(top) > h.config.PagesPerQuery {
		top = top[:h.config.PagesPerQuery]
	}

	for i, result := range top {
		src := Source{SearchResult: result}

		fmt.Fprintf(corpus, "\n--- Source %d: %s ---\n", i+1, result.Title)
		fmt.Fprintf(corpus, "URL: %s\n", result.Link)
		fmt.Fprintf(corpus, "Summary: %s\n", result.Snippet)

		content, err := h.Scrape(ctx, result.Link)
		if err != nil {
			h.logger.Warn("scrape failed, skipping page", map[string]interface{}{
				"url":   result.Link,
				"error": err.Error(),
			})
			metrics.ResearchPagesTotal.WithLabelValues("failed").Inc()
		} else if content != "" {
			metrics.ResearchPagesTotal.WithLabelValues("success").Inc()
			src.Content = content
			fmt.Fprintf(corpus, "Content:\n%s\n", truncate(content, h.config.ExcerptChars, ""))
		}

		corpus.WriteString(sourceRule + "\n")
		qr.Sources = append(qr.Sources, src)
	}

	return qr
}

// Search posts the query to the HTML search endpoint and parses the result page.
func (h *Handler) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	body, err := h.searchClient.PostForm(ctx, h.config.SearchURL, url.Values{"q": {query}})
	if err != nil {
		return nil, err
	}
	return ParseSearchResults(bytes.NewReader(body), h.config.MaxResults)
}

// Scrape fetches a result page and extracts its readable text.
func (h *Handler) Scrape(ctx context.Context, pageURL string) (string, error) {
	body, err := h.pageClient.Get(ctx, pageURL)
	if err != nil {
		return "", err
	}
	return ExtractPageText(bytes.NewReader(body), h.config.MaxPageChars)
}

func countSources(queries []QueryResult) int {
	n := 0
	for _, q := range queries {
		n += len(q.Sources)
	}
	return n
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

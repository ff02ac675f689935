// internal/workers/research/collect-web-research/search.go
package collectwebresearch

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"mic-ai-service/internal/models"
)

const noDescription = "No description"

// ParseSearchResults reads a DuckDuckGo HTML result page. Each a.result__a
// starts a result; the next .result__snippet element supplies its snippet.
// Ad and internal links are skipped, and at most max results are returned.
func ParseSearchResults(r io.Reader, max int) ([]models.SearchResult, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}

	var (
		results []models.SearchResult
		current *models.SearchResult
	)

	flush := func() {
		if current == nil {
			return
		}
		if current.Snippet == "" {
			current.Snippet = noDescription
		}
		results = append(results, *current)
		current = nil
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if max > 0 && len(results) >= max {
			return
		}
		if n.Type == html.ElementNode {
			switch {
			case hasClass(n, "result__a"):
				flush()
				link, ok := resolveLink(attr(n, "href"))
				title := textContent(n)
				if ok && title != "" {
					current = &models.SearchResult{Title: title, Link: link}
				}
				return
			case hasClass(n, "result__snippet"):
				if current != nil && current.Snippet == "" {
					current.Snippet = textContent(n)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if max <= 0 || len(results) < max {
		flush()
	}
	return results, nil
}

// resolveLink unwraps //duckduckgo.com/l/?uddg= redirects. Other
// duckduckgo.com links (ads, internal pages) are rejected.
func resolveLink(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}

	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if !isDuckDuckGoHost(u.Host) {
		return href, true
	}
	if u.Path != "/l/" {
		return "", false
	}

	target := u.Query().Get("uddg")
	if target == "" {
		return "", false
	}
	t, err := url.Parse(target)
	if err != nil || isDuckDuckGoHost(t.Host) {
		return "", false
	}
	return target, true
}

func isDuckDuckGoHost(host string) bool {
	return host == "duckduckgo.com" || strings.HasSuffix(host, ".duckduckgo.com")
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

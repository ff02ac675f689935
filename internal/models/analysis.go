package models

import (
	"fmt"
	"strconv"
	"strings"
)

// NotAvailable is rendered for any missing stage field.
const NotAvailable = "N/A"

// SearchResult is one entry parsed from a search engine result page.
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// StageResult is the loosely-typed JSON object returned by an analysis stage.
// An error mapping carries an "error" key and optionally "message" and "raw_preview".
type StageResult map[string]interface{}

// IsError reports whether r is an error mapping.
func (r StageResult) IsError() bool {
	if r == nil {
		return false
	}
	_, ok := r["error"]
	return ok
}

// ErrorKind returns the value of the "error" key, or "".
func (r StageResult) ErrorKind() string {
	if v, ok := r["error"].(string); ok {
		return v
	}
	return ""
}

// String renders key as text, NotAvailable when absent or null.
func (r StageResult) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return NotAvailable
	}
	return FormatValue(v)
}

// Upper renders key upper-cased.
func (r StageResult) Upper(key string) string {
	s := r.String(key)
	if s == NotAvailable {
		return s
	}
	return strings.ToUpper(s)
}

// Label renders key upper-cased with underscores replaced by spaces.
func (r StageResult) Label(key string) string {
	return strings.ReplaceAll(r.Upper(key), "_", " ")
}

// List renders an array-valued key as strings. Non-array values give nil.
func (r StageResult) List(key string) []string {
	items, ok := r[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, FormatValue(item))
	}
	return out
}

// Objects returns an array-valued key whose entries are JSON objects.
func (r StageResult) Objects(key string) []StageResult {
	items, ok := r[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]StageResult, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			out = append(out, StageResult(m))
		}
	}
	return out
}

// FormatValue prints JSON scalars the way a reader expects (72 not 72.000000).
func FormatValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

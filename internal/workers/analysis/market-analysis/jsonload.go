// internal/workers/analysis/market-analysis/jsonload.go
package marketanalysis

import (
	"encoding/json"
	"regexp"
	"strings"

	"mic-ai-service/internal/models"
)

const previewChars = 500

var (
	leadingFence  = regexp.MustCompile("^```(json)?")
	trailingFence = regexp.MustCompile("```$")
	jsonObject    = regexp.MustCompile(`(?s)\{.*\}`)
)

// Error kinds carried in the "error" key of a failed parse.
const (
	ErrorEmptyResponse = "empty_llm_response"
	ErrorNoJSON        = "no_json_found"
	ErrorInvalidJSON   = "invalid_json"
)

// SafeJSONLoad extracts the outermost JSON object from a model reply. It
// never fails: unusable replies become an error mapping with a preview.
func SafeJSONLoad(raw string) models.StageResult {
	if raw == "" {
		return models.StageResult{"error": ErrorEmptyResponse}
	}

	raw = strings.TrimSpace(raw)
	raw = leadingFence.ReplaceAllString(raw, "")
	raw = trailingFence.ReplaceAllString(raw, "")

	match := jsonObject.FindString(raw)
	if match == "" {
		return models.StageResult{
			"error":       ErrorNoJSON,
			"raw_preview": preview(raw),
		}
	}

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(match), &result); err != nil {
		return models.StageResult{
			"error":       ErrorInvalidJSON,
			"message":     err.Error(),
			"raw_preview": preview(raw),
		}
	}
	return models.StageResult(result)
}

// unfence returns the body of the first ```json (or bare ```) block, or
// the trimmed reply when it has none.
func unfence(reply string) string {
	reply = strings.TrimSpace(reply)
	if i := strings.Index(reply, "```json"); i >= 0 {
		return firstBlock(reply[i+len("```json"):])
	}
	if i := strings.Index(reply, "```"); i >= 0 {
		return firstBlock(reply[i+len("```"):])
	}
	return reply
}

func firstBlock(rest string) string {
	if j := strings.Index(rest, "```"); j >= 0 {
		rest = rest[:j]
	}
	return strings.TrimSpace(rest)
}

func preview(s string) string {
	r := []rune(s)
	if len(r) > previewChars {
		return string(r[:previewChars])
	}
	return s
}

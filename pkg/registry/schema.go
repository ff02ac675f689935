// pkg/registry/schema.go
package registry

import "sort"

// StageRegistry lists the LLM analysis stages in execution order.
type StageRegistry struct {
	Version     string  `json:"version"`
	LastUpdated string  `json:"lastUpdated"`
	Stages      []Stage `json:"stages"`
}

// Stage describes one LLM-backed analysis step.
type Stage struct {
	ID           string                 `json:"id"`
	DisplayName  string                 `json:"displayName"`
	Description  string                 `json:"description"`
	SystemPrompt string                 `json:"systemPrompt"`
	Temperature  float64                `json:"temperature"`
	MaxTokens    int                    `json:"maxTokens"`
	CorpusChars  int                    `json:"corpusChars"`
	OutputSchema map[string]interface{} `json:"outputSchema"`
	Tags         []string               `json:"tags,omitempty"`
}

// RequiredKeys returns the "required" list of the output schema.
func (s Stage) RequiredKeys() []string {
	raw, ok := s.OutputSchema["required"]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

func str() map[string]interface{} {
	return map[string]interface{}{"type": "string"}
}

func score() map[string]interface{} {
	return map[string]interface{}{"type": "number", "minimum": 0, "maximum": 100}
}

func strList() map[string]interface{} {
	return map[string]interface{}{"type": "array", "items": str()}
}

func enum(values ...string) map[string]interface{} {
	items := make([]interface{}, len(values))
	for i, v := range values {
		items[i] = v
	}
	return map[string]interface{}{"type": "string", "enum": items}
}

func object(properties map[string]interface{}) map[string]interface{} {
	keys := make([]string, 0, len(properties))
	for k := range properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	required := make([]interface{}, len(keys))
	for i, k := range keys {
		required[i] = k
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// internal/workers/ai-conversation/chat-responder/clean.go
package chatresponder

import "strings"

var artefacts = strings.NewReplacer("</s>", "", "</s", "", "**", "", "*", "")

// CleanResponse strips end-of-sequence markers and markdown emphasis, then
// drops empty and repeated sentences (case-insensitive). If nothing is
// left the stripped text is returned unchanged.
func CleanResponse(response string) string {
	if response == "" {
		return response
	}
	response = strings.TrimSpace(artefacts.Replace(response))

	sentences := strings.Split(response, ". ")
	unique := make([]string, 0, len(sentences))
	seen := make(map[string]bool, len(sentences))
	for _, s := range sentences {
		norm := strings.ToLower(strings.TrimSpace(s))
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		unique = append(unique, s)
	}

	if len(unique) == 0 {
		return response
	}
	return strings.Join(unique, ". ")
}

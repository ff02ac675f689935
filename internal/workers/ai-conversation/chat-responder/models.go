// internal/workers/ai-conversation/chat-responder/models.go
package chatresponder

type Input struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

type Output struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

const (
	EmptyMessageReply = "Please provide a valid question or message."
	ShortAnswerReply  = "I didn't generate a proper response. Please try rephrasing your question."
	RedirectReply     = "I'm here to help with questions about MAHE Innovation Centre. Please ask me about our events, resources, programs, or how to get involved with MiC."
)

// Reply modes, used as the metrics label.
const (
	ModeEmpty             = "empty"
	ModeRedirect          = "redirect"
	ModeFallback          = "fallback"
	ModeLLM               = "llm"
	ModeShortAnswer       = "short_answer"
	ModeErrorFallback     = "error_fallback"
	ModeRateLimitFallback = "rate_limit_fallback"
)

// minAnswerLength is the shortest cleaned model answer that is kept.
const minAnswerLength = 6

package models

import "time"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one chat message in a session history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SessionContext holds per-session hints. Allocated on creation, not yet read by the responder.
type SessionContext struct {
	CurrentTopic     string `json:"current_topic,omitempty"`
	LastQuestionType string `json:"last_question_type,omitempty"`
}

// ChatSession represents a volatile conversation keyed by an opaque identifier.
type ChatSession struct {
	ID        string         `json:"id"`
	History   []Turn         `json:"history"`
	Context   SessionContext `json:"context"`
	CreatedAt time.Time      `json:"createdAt"`
}

// LastTurns returns at most n of the most recent turns.
func (s *ChatSession) LastTurns(n int) []Turn {
	if s == nil || n <= 0 {
		return nil
	}
	if len(s.History) <= n {
		return s.History
	}
	return s.History[len(s.History)-n:]
}

// Clone returns a deep copy safe to hand out across goroutines.
func (s *ChatSession) Clone() *ChatSession {
	if s == nil {
		return nil
	}
	out := *s
	out.History = append([]Turn(nil), s.History...)
	return &out
}

// internal/workers/ai-conversation/chat-responder/config.go
package chatresponder

import "time"

const DefaultAssistantName = "MAHE Innovation Centre Assistant"

type Config struct {
	AssistantName  string
	MaxTokens      int
	Temperature    float64
	TopP           float64
	HistoryLimit   int
	ContextTurns   int
	RateLimitPause time.Duration
}

func LoadConfig() *Config {
	return &Config{
		AssistantName:  DefaultAssistantName,
		MaxTokens:      512,
		Temperature:    0.3,
		TopP:           0.8,
		HistoryLimit:   20,
		ContextTurns:   10,
		RateLimitPause: 5 * time.Second,
	}
}

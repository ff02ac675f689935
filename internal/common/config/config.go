// internal/common/config/config.go
package config

import (
	"strings"
	"time"
)

// PlaceholderAPIKey is the value shipped in sample .env files. It counts as no key.
const PlaceholderAPIKey = "your-groq-api-key-here"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	LLM           LLMConfig           `mapstructure:"llm"`
	Chat          ChatConfig          `mapstructure:"chat"`
	Research      ResearchConfig      `mapstructure:"research"`
	Analysis      AnalysisConfig      `mapstructure:"analysis"`
	Session       SessionConfig       `mapstructure:"session"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address      string `mapstructure:"address"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int    `mapstructure:"write_timeout"` // milliseconds
}

// LLMConfig points at an OpenAI-compatible chat completion API (Groq by default).
type LLMConfig struct {
	APIKey        string `mapstructure:"api_key"`
	BaseURL       string `mapstructure:"base_url"`
	Model         string `mapstructure:"model"`
	AssistantName string `mapstructure:"assistant_name"`
	Timeout       int    `mapstructure:"timeout"` // milliseconds
}

// HasValidKey reports whether an API key is usable. Empty and placeholder keys are not.
func (l LLMConfig) HasValidKey() bool {
	key := strings.TrimSpace(l.APIKey)
	return key != "" && key != PlaceholderAPIKey
}

type ChatConfig struct {
	MaxTokens      int     `mapstructure:"max_tokens"`
	Temperature    float64 `mapstructure:"temperature"`
	TopP           float64 `mapstructure:"top_p"`
	HistoryLimit   int     `mapstructure:"history_limit"`
	ContextTurns   int     `mapstructure:"context_turns"`
	RateLimitPause int     `mapstructure:"rate_limit_pause"` // milliseconds
}

type ResearchConfig struct {
	SearchURL     string `mapstructure:"search_url"`
	UserAgent     string `mapstructure:"user_agent"`
	SearchTimeout int    `mapstructure:"search_timeout"` // milliseconds
	PageTimeout   int    `mapstructure:"page_timeout"`   // milliseconds
	QueryDelay    int    `mapstructure:"query_delay"`    // milliseconds
	MaxResults    int    `mapstructure:"max_results"`
	PagesPerQuery int    `mapstructure:"pages_per_query"`
	MaxPageChars  int    `mapstructure:"max_page_chars"`
	ExcerptChars  int    `mapstructure:"excerpt_chars"`
}

type AnalysisConfig struct {
	ReportDir     string `mapstructure:"report_dir"`
	RegistryPath  string `mapstructure:"registry_path"`
	DocumentChars int    `mapstructure:"document_chars"`
	IdeaChars     int    `mapstructure:"idea_chars"`
}

type SessionConfig struct {
	Backend string `mapstructure:"backend"` // memory | redis
	TTL     int    `mapstructure:"ttl"`     // milliseconds, 0 = no expiry
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type ObservabilityConfig struct {
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
	ServiceName    string `mapstructure:"service_name"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

// GetDuration converts a millisecond config value to a time.Duration.
func GetDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envAliases binds config keys to the environment names used by existing deployments.
// The first name that is set wins.
var envAliases = map[string][]string{
	"llm.api_key":                   {"LLM_API_KEY", "GROQ_API_KEY", "GroqAPIKey"},
	"llm.assistant_name":            {"LLM_ASSISTANT_NAME", "ASSISTANT_NAME", "Assistantname"},
	"llm.base_url":                  {"LLM_BASE_URL", "GROQ_BASE_URL"},
	"llm.model":                     {"LLM_MODEL", "GROQ_MODEL"},
	"server.address":                {"SERVER_ADDRESS"},
	"session.backend":               {"SESSION_BACKEND"},
	"database.redis.address":        {"REDIS_ADDRESS", "REDIS_ADDR"},
	"database.redis.password":       {"REDIS_PASSWORD"},
	"analysis.report_dir":           {"REPORT_DIR"},
	"logging.level":                 {"LOG_LEVEL"},
	"observability.jaeger_endpoint": {"JAEGER_ENDPOINT"},
}

// Load reads configs/config.yaml (optional), config.<env>.yaml (optional),
// .env and the process environment. Environment variables take precedence over files.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return build(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return build(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for key, names := range envAliases {
		_ = v.BindEnv(append([]string{key}, names...)...)
	}

	v.SetDefault("observability.metrics_enabled", true)
	return v
}

func build(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads the first .env found. godotenv never overrides variables
// already present in the environment.
func loadEnvFile() {
	possiblePaths := []string{
		"../../.env",
		".env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "mic-ai-service"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	// Server
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8000"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		// analysis runs synchronously and can take minutes
		cfg.Server.WriteTimeout = 600000
	}

	// LLM
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "llama-3.3-70b-versatile"
	}
	if cfg.LLM.AssistantName == "" {
		cfg.LLM.AssistantName = "MAHE Innovation Centre Assistant"
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 60000
	}

	// Chat
	if cfg.Chat.MaxTokens == 0 {
		cfg.Chat.MaxTokens = 512
	}
	if cfg.Chat.Temperature == 0 {
		cfg.Chat.Temperature = 0.3
	}
	if cfg.Chat.TopP == 0 {
		cfg.Chat.TopP = 0.8
	}
	if cfg.Chat.HistoryLimit == 0 {
		cfg.Chat.HistoryLimit = 20
	}
	if cfg.Chat.ContextTurns == 0 {
		cfg.Chat.ContextTurns = 10
	}
	if cfg.Chat.RateLimitPause == 0 {
		cfg.Chat.RateLimitPause = 5000
	}

	// Research
	if cfg.Research.SearchURL == "" {
		cfg.Research.SearchURL = "https://html.duckduckgo.com/html/"
	}
	if cfg.Research.UserAgent == "" {
		cfg.Research.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if cfg.Research.SearchTimeout == 0 {
		cfg.Research.SearchTimeout = 10000
	}
	if cfg.Research.PageTimeout == 0 {
		cfg.Research.PageTimeout = 15000
	}
	if cfg.Research.QueryDelay == 0 {
		cfg.Research.QueryDelay = 1000
	}
	if cfg.Research.MaxResults == 0 {
		cfg.Research.MaxResults = 5
	}
	if cfg.Research.PagesPerQuery == 0 {
		cfg.Research.PagesPerQuery = 3
	}
	if cfg.Research.MaxPageChars == 0 {
		cfg.Research.MaxPageChars = 4000
	}
	if cfg.Research.ExcerptChars == 0 {
		cfg.Research.ExcerptChars = 2000
	}

	// Analysis
	if cfg.Analysis.ReportDir == "" {
		cfg.Analysis.ReportDir = "."
	}
	if cfg.Analysis.DocumentChars == 0 {
		cfg.Analysis.DocumentChars = 6000
	}
	if cfg.Analysis.IdeaChars == 0 {
		cfg.Analysis.IdeaChars = 1000
	}

	// Session
	if cfg.Session.Backend == "" {
		cfg.Session.Backend = "memory"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = cfg.App.Name
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}

	switch cfg.Session.Backend {
	case "memory":
	case "redis":
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required when session.backend is redis")
		}
	default:
		return fmt.Errorf("session.backend must be memory or redis, got %q", cfg.Session.Backend)
	}

	if cfg.Chat.ContextTurns > cfg.Chat.HistoryLimit {
		return fmt.Errorf("chat.context_turns (%d) cannot exceed chat.history_limit (%d)",
			cfg.Chat.ContextTurns, cfg.Chat.HistoryLimit)
	}

	if cfg.Research.MaxResults < 0 || cfg.Research.PagesPerQuery < 0 {
		return fmt.Errorf("research limits must be positive")
	}

	return nil
}

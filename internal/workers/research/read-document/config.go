// internal/workers/research/read-document/config.go
package readdocument

type Config struct {
	// MaxFileSize rejects larger files before parsing. 0 disables the check.
	MaxFileSize int64
}

func LoadConfig() *Config {
	return &Config{
		MaxFileSize: 50 << 20,
	}
}

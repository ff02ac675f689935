// internal/workers/analysis/market-analysis/config.go
package marketanalysis

type Config struct {
	// DocumentChars caps the idea text handed to every stage.
	DocumentChars int
	// IdeaChars caps the idea text used to build research queries.
	IdeaChars int
}

func LoadConfig() *Config {
	return &Config{
		DocumentChars: 6000,
		IdeaChars:     1000,
	}
}

// internal/workers/research/collect-web-research/config.go
package collectwebresearch

import "time"

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

type Config struct {
	SearchURL     string
	UserAgent     string
	SearchTimeout time.Duration
	PageTimeout   time.Duration
	QueryDelay    time.Duration
	MaxResults    int
	PagesPerQuery int
	MaxPageChars  int
	ExcerptChars  int
}

func LoadConfig() *Config {
	return &Config{
		SearchURL:     "https://html.duckduckgo.com/html/",
		UserAgent:     DefaultUserAgent,
		SearchTimeout: 10 * time.Second,
		PageTimeout:   15 * time.Second,
		QueryDelay:    1 * time.Second,
		MaxResults:    5,
		PagesPerQuery: 3,
		MaxPageChars:  4000,
		ExcerptChars:  2000,
	}
}

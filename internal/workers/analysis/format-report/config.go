// internal/workers/analysis/format-report/config.go
package formatreport

type Config struct {
	ReportDir string
}

func LoadConfig() *Config {
	return &Config{
		ReportDir: ".",
	}
}

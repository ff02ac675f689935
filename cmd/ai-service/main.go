// cmd/ai-service/main.go
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "ai-service",
	Short: "MAHE Innovation Centre AI service",
	Long: `ai-service answers visitor chat messages about the Innovation Centre and
analyses startup idea documents against live web research.

Use "serve" to run the HTTP API and "analyze" to run one analysis from the
command line.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./configs/config.yaml or $CONFIG_PATH)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

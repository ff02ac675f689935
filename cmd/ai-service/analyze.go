// cmd/ai-service/analyze.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	marketanalysis "mic-ai-service/internal/workers/analysis/market-analysis"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyse one startup idea document",
	Long: `Analyze reads a PDF, DOCX or TXT idea document, collects web research,
runs every analysis stage and writes the text report. The report path and
the overall verdict are printed on success.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("submission-id", "", "submission id used in logs (default: random)")
	analyzeCmd.Flags().String("report-dir", "", "directory for the report (overrides analysis.report_dir)")
	analyzeCmd.Flags().Bool("print", false, "also print the full report to stdout")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if dir, _ := cmd.Flags().GetString("report-dir"); dir != "" {
		cfg.Analysis.ReportDir = dir
	}

	path, err := filepath.Abs(filepath.Clean(args[0]))
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("file not found at %s", path)
	}

	submissionID, _ := cmd.Flags().GetString("submission-id")
	if submissionID == "" {
		submissionID = uuid.NewString()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	out, err := a.analysis.Execute(ctx, &marketanalysis.Input{
		SubmissionID: submissionID,
		FilePath:     path,
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	w := cmd.OutOrStdout()
	if printReport, _ := cmd.Flags().GetBool("print"); printReport {
		fmt.Fprintln(w, out.Report)
	}
	fmt.Fprintf(w, "Report saved to: %s\n", out.ReportPath)
	fmt.Fprintf(w, "Overall verdict: %s\n", out.Recommendations.Label("overall_verdict"))
	return nil
}

// cmd/ai-service/serve.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mic-ai-service/internal/api"
	"mic-ai-service/internal/common/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve exposes POST /chat and POST /analyze, plus / and /health checks and
/metrics when metrics are enabled. SIGINT and SIGTERM trigger a graceful
shutdown.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.address)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Address = addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr: cfg.Server.Address,
		Handler: api.NewRouter(api.Options{
			Chat:           a.chat,
			Analyzer:       a.analysis,
			Logger:         a.log,
			MetricsEnabled: cfg.Observability.MetricsEnabled,
		}),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	errCh := make(chan error, 1)
	go func() {
		a.zapLog.Info("AI service listening",
			zap.String("address", srv.Addr),
			zap.String("version", version),
			zap.Bool("llmEnabled", cfg.LLM.HasValidKey()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.zapLog.Error("HTTP server failed", zap.Error(err))
			a.close(context.Background())
			return err
		}
	case <-ctx.Done():
		a.zapLog.Info("Shutdown signal received, stopping server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}
	a.close(shutdownCtx)
	a.zapLog.Info("AI service stopped gracefully")
	return nil
}

// cmd/ai-service/wiring.go
package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mic-ai-service/internal/common/config"
	"mic-ai-service/internal/common/database"
	apperrors "mic-ai-service/internal/common/errors"
	"mic-ai-service/internal/common/llm"
	"mic-ai-service/internal/common/logger"
	"mic-ai-service/internal/common/observability"
	"mic-ai-service/internal/common/session"
	chatresponder "mic-ai-service/internal/workers/ai-conversation/chat-responder"
	formatreport "mic-ai-service/internal/workers/analysis/format-report"
	marketanalysis "mic-ai-service/internal/workers/analysis/market-analysis"
	collectwebresearch "mic-ai-service/internal/workers/research/collect-web-research"
	readdocument "mic-ai-service/internal/workers/research/read-document"
	"mic-ai-service/pkg/registry"
)

// app holds everything a command needs. close releases what was opened.
type app struct {
	cfg      *config.Config
	zapLog   *zap.Logger
	log      logger.Logger
	obs      *observability.Observability
	chat     *chatresponder.Handler
	analysis *marketanalysis.Handler
	closers  []func() error
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// newApp builds the service. On error everything opened so far is closed.
func newApp(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log := logger.NewZapAdapter(zapLog)

	a := &app{
		cfg:    cfg,
		zapLog: zapLog,
		log:    log,
		obs:    observability.New(cfg.Observability),
	}
	defer func() {
		if err != nil {
			a.close(context.Background())
		}
	}()

	// A nil interface, not a nil *OpenAIClient, selects the keyword fallbacks.
	var client llm.Client
	if c, clientErr := llm.NewClient(cfg.LLM); clientErr != nil {
		if !errors.Is(clientErr, llm.ErrLLMUnavailable) {
			return nil, fmt.Errorf("llm client: %w", clientErr)
		}
		zapLog.Warn("LLM API key not configured, chat uses keyword fallbacks and analysis is disabled")
	} else {
		client = c
	}

	store, err := a.sessionStore(ctx)
	if err != nil {
		return nil, err
	}

	a.chat = chatresponder.NewHandler(&chatresponder.Config{
		AssistantName:  cfg.LLM.AssistantName,
		MaxTokens:      cfg.Chat.MaxTokens,
		Temperature:    cfg.Chat.Temperature,
		TopP:           cfg.Chat.TopP,
		HistoryLimit:   cfg.Chat.HistoryLimit,
		ContextTurns:   cfg.Chat.ContextTurns,
		RateLimitPause: config.GetDuration(cfg.Chat.RateLimitPause),
	}, client, store, &chatResponderLoggerAdapter{log})

	reg, err := registry.Load(cfg.Analysis.RegistryPath)
	if err != nil {
		return nil, fmt.Errorf("stage registry: %w", err)
	}

	a.analysis, err = marketanalysis.NewHandler(marketanalysis.HandlerOptions{
		Config: &marketanalysis.Config{
			DocumentChars: cfg.Analysis.DocumentChars,
			IdeaChars:     cfg.Analysis.IdeaChars,
		},
		LLM:      client,
		Registry: reg,
		Reader:   readdocument.NewHandler(readdocument.LoadConfig(), &readDocumentLoggerAdapter{log}),
		Researcher: collectwebresearch.NewHandler(&collectwebresearch.Config{
			SearchURL:     cfg.Research.SearchURL,
			UserAgent:     cfg.Research.UserAgent,
			SearchTimeout: config.GetDuration(cfg.Research.SearchTimeout),
			PageTimeout:   config.GetDuration(cfg.Research.PageTimeout),
			QueryDelay:    config.GetDuration(cfg.Research.QueryDelay),
			MaxResults:    cfg.Research.MaxResults,
			PagesPerQuery: cfg.Research.PagesPerQuery,
			MaxPageChars:  cfg.Research.MaxPageChars,
			ExcerptChars:  cfg.Research.ExcerptChars,
		}, &collectWebResearchLoggerAdapter{log}),
		Reporter:      formatreport.NewHandler(&formatreport.Config{ReportDir: cfg.Analysis.ReportDir}, log),
		Observability: a.obs,
		Logger:        &marketAnalysisLoggerAdapter{log},
	})
	if err != nil {
		return nil, fmt.Errorf("market analysis: %w", err)
	}

	return a, nil
}

func (a *app) sessionStore(ctx context.Context) (session.Store, error) {
	if a.cfg.Session.Backend != "redis" {
		a.zapLog.Info("using in-memory chat sessions")
		return session.NewMemoryStore(), nil
	}

	rdb, err := database.Connect(ctx, a.cfg.Database.Redis, 5*time.Second)
	if err != nil {
		return nil, apperrors.NewSessionStoreFailedError("connect", err)
	}
	a.closers = append(a.closers, rdb.Close)
	a.zapLog.Info("using redis chat sessions", zap.String("address", a.cfg.Database.Redis.Address))
	return session.NewRedisStore(rdb.Client, config.GetDuration(a.cfg.Session.TTL)), nil
}

func (a *app) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.zapLog.Error("close failed", zap.Error(err))
		}
	}
	if err := a.obs.Shutdown(ctx); err != nil {
		a.zapLog.Error("observability shutdown failed", zap.Error(err))
	}
	_ = a.zapLog.Sync()
}

// Logger adapters for workers that declare their own Logger interfaces
type chatResponderLoggerAdapter struct {
	logger.Logger
}

func (a *chatResponderLoggerAdapter) With(fields map[string]interface{}) chatresponder.Logger {
	return &chatResponderLoggerAdapter{a.Logger.With(fields)}
}

type readDocumentLoggerAdapter struct {
	logger.Logger
}

func (a *readDocumentLoggerAdapter) With(fields map[string]interface{}) readdocument.Logger {
	return &readDocumentLoggerAdapter{a.Logger.With(fields)}
}

type collectWebResearchLoggerAdapter struct {
	logger.Logger
}

func (a *collectWebResearchLoggerAdapter) With(fields map[string]interface{}) collectwebresearch.Logger {
	return &collectWebResearchLoggerAdapter{a.Logger.With(fields)}
}

type marketAnalysisLoggerAdapter struct {
	logger.Logger
}

func (a *marketAnalysisLoggerAdapter) With(fields map[string]interface{}) marketanalysis.Logger {
	return &marketAnalysisLoggerAdapter{a.Logger.With(fields)}
}

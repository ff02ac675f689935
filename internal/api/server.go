// internal/api/server.go
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "mic-ai-service/internal/common/errors"
	"mic-ai-service/internal/common/logger"
	chatresponder "mic-ai-service/internal/workers/ai-conversation/chat-responder"
	marketanalysis "mic-ai-service/internal/workers/analysis/market-analysis"
)

// SessionHeader carries the chat session id when the body omits it.
const SessionHeader = "X-Session-ID"

type ChatResponder interface {
	Execute(ctx context.Context, input *chatresponder.Input) *chatresponder.Output
}

type Analyzer interface {
	Execute(ctx context.Context, input *marketanalysis.Input) (*marketanalysis.Output, error)
}

type Options struct {
	Chat           ChatResponder
	Analyzer       Analyzer
	Logger         logger.Logger
	MetricsEnabled bool
}

type Server struct {
	chat     ChatResponder
	analyzer Analyzer
	logger   logger.Logger
	errors   *apperrors.ErrorHandler
	now      func() time.Time
}

// NewRouter builds the HTTP facade over the chat responder and the analysis pipeline.
func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	s := &Server{
		chat:     opts.Chat,
		analyzer: opts.Analyzer,
		logger:   log.WithFields(map[string]interface{}{"component": "api"}),
		errors:   apperrors.NewErrorHandler(log),
		now:      time.Now,
	}
	return s.routes(opts.MetricsEnabled)
}

func (s *Server) routes(metricsEnabled bool) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	r.Post("/chat", s.handleChat)
	r.Post("/analyze", s.handleAnalyze)

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("http request", map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"durationMs": time.Since(start).Milliseconds(),
			"requestId":  middleware.GetReqID(r.Context()),
			"remoteAddr": r.RemoteAddr,
		})
	})
}

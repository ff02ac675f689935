// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatRepliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_replies_total",
			Help: "Chat replies produced, by decision path",
		},
		[]string{"mode"},
	)

	ChatRateLimitRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_rate_limit_retries_total",
			Help: "Chat LLM calls retried after a rate-limit response",
		},
	)

	AnalysisRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_runs_total",
			Help: "Analysis pipeline runs by final status",
		},
		[]string{"status"},
	)

	AnalysisRunsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "analysis_runs_active",
			Help: "Analysis pipeline runs in progress",
		},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analysis_stage_duration_seconds",
			Help:    "Duration of each LLM analysis stage in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		},
		[]string{"stage", "outcome"},
	)

	StageSchemaViolations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_stage_schema_violations_total",
			Help: "Stage outputs that parsed as JSON but did not match the stage schema",
		},
		[]string{"stage"},
	)

	ResearchQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_queries_total",
			Help: "Search queries issued by the research collector, by outcome",
		},
		[]string{"outcome"},
	)

	ResearchPagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_pages_total",
			Help: "Result pages fetched by the research collector, by outcome",
		},
		[]string{"outcome"},
	)

	DocumentsReadTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "documents_read_total",
			Help: "Documents read, by format and outcome",
		},
		[]string{"format", "outcome"},
	)
)

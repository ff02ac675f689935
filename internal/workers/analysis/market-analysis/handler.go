// internal/workers/analysis/market-analysis/handler.go
package marketanalysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"mic-ai-service/internal/common/llm"
	"mic-ai-service/internal/common/metrics"
	"mic-ai-service/internal/common/observability"
	"mic-ai-service/internal/models"
	formatreport "mic-ai-service/internal/workers/analysis/format-report"
	collectwebresearch "mic-ai-service/internal/workers/research/collect-web-research"
	readdocument "mic-ai-service/internal/workers/research/read-document"
	"mic-ai-service/pkg/registry"
)

const (
	TaskType = "market-analysis"
)

var (
	ErrDocumentUnavailable = errors.New("DOCUMENT_UNAVAILABLE")
	ErrReportWriteFailed   = errors.New("REPORT_WRITE_FAILED")
)

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type DocumentReader interface {
	Execute(ctx context.Context, input *readdocument.Input) (*readdocument.Output, error)
}

type Researcher interface {
	Execute(ctx context.Context, input *collectwebresearch.Input) (*collectwebresearch.Output, error)
}

type ReportWriter interface {
	Execute(ctx context.Context, input *formatreport.Input) (*formatreport.Output, error)
}

// HandlerOptions wires the pipeline. LLM may be nil when no API key is
// configured; every run then fails with llm.ErrLLMUnavailable.
type HandlerOptions struct {
	Config        *Config
	LLM           llm.Client
	Registry      *registry.StageRegistry
	Reader        DocumentReader
	Researcher    Researcher
	Reporter      ReportWriter
	Observability *observability.Observability
	Logger        Logger
}

type Handler struct {
	config     *Config
	llm        llm.Client
	registry   *registry.StageRegistry
	reader     DocumentReader
	researcher Researcher
	reporter   ReportWriter
	obs        *observability.Observability
	logger     Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	if opts.Reader == nil || opts.Researcher == nil || opts.Reporter == nil {
		return nil, errors.New("market analysis needs a reader, a researcher and a reporter")
	}
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Config == nil {
		opts.Config = LoadConfig()
	}
	if opts.Registry == nil {
		opts.Registry = registry.Default()
	}

	return &Handler{
		config:     opts.Config,
		llm:        opts.LLM,
		registry:   opts.Registry,
		reader:     opts.Reader,
		researcher: opts.Researcher,
		reporter:   opts.Reporter,
		obs:        opts.Observability,
		logger: opts.Logger.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}, nil
}

// Execute runs read, research, every registered stage in order, then
// formats and saves the report. The first failing stage halts the run.
func (h *Handler) Execute(ctx context.Context, input *Input) (output *Output, err error) {
	log := h.logger.With(map[string]interface{}{
		"submissionId": input.SubmissionID,
	})

	metrics.AnalysisRunsActive.Inc()
	ctx, span := h.obs.StartSpan(ctx, "analysis.run", attribute.String("submission_id", input.SubmissionID))
	defer func() {
		metrics.AnalysisRunsActive.Dec()
		status := runStatus(err)
		metrics.AnalysisRunsTotal.WithLabelValues(status).Inc()
		span.SetAttributes(attribute.String("analysis.status", status))
		observability.EndSpan(span, err)
	}()

	if h.llm == nil {
		log.Error("analysis requested without an LLM API key", nil)
		return nil, llm.ErrLLMUnavailable
	}

	doc, err := h.reader.Execute(ctx, &readdocument.Input{FilePath: input.FilePath})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDocumentUnavailable, err)
	}
	idea := truncateRunes(doc.Text, h.config.DocumentChars)
	if strings.TrimSpace(idea) == "" {
		return nil, fmt.Errorf("%w: document is empty", ErrDocumentUnavailable)
	}

	log.Info("loaded startup document", map[string]interface{}{
		"filePath":   input.FilePath,
		"format":     strings.ToUpper(doc.Format),
		"characters": len([]rune(idea)),
	})

	research, err := h.researcher.Execute(ctx, &collectwebresearch.Input{
		Idea: truncateRunes(idea, h.config.IdeaChars),
	})
	if err != nil {
		return nil, err
	}

	stageInput := StageInput{Idea: idea, Corpus: research.Corpus}
	results := make(map[string]models.StageResult, len(h.registry.Stages))

	for _, stage := range h.registry.Stages {
		log.Info("running analysis stage", map[string]interface{}{"stage": stage.ID})

		result, err := h.RunStage(ctx, stage.ID, stageInput)
		if err != nil {
			log.Error("analysis halted", map[string]interface{}{
				"stage": stage.ID,
				"error": err.Error(),
			})
			return nil, err
		}
		results[stage.ID] = result

		switch stage.ID {
		case registry.StageViability:
			stageInput.Viability = result
		case registry.StageFit:
			stageInput.Fit = result
		case registry.StageSaturation:
			stageInput.Saturation = result
		}
	}

	output = &Output{
		SubmissionID:    input.SubmissionID,
		Viability:       results[registry.StageViability],
		Fit:             results[registry.StageFit],
		Saturation:      results[registry.StageSaturation],
		Recommendations: results[registry.StageRecommendations],
	}

	report, err := h.reporter.Execute(ctx, &formatreport.Input{
		SubmissionID:    input.SubmissionID,
		Viability:       output.Viability,
		Fit:             output.Fit,
		Saturation:      output.Saturation,
		Recommendations: output.Recommendations,
	})
	if err != nil {
		if errors.Is(err, formatreport.ErrReportWriteFailed) {
			return nil, fmt.Errorf("%w: %w", ErrReportWriteFailed, err)
		}
		return nil, err
	}
	output.Report = report.Report
	output.ReportPath = report.ReportPath

	log.Info("analysis complete", map[string]interface{}{
		"reportPath": report.ReportPath,
		"verdict":    output.Recommendations.String("overall_verdict"),
	})
	return output, nil
}

func runStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrStageInvalidOutput):
		return "invalid_output"
	case errors.Is(err, ErrStageCallFailed):
		return "stage_failed"
	case errors.Is(err, ErrDocumentUnavailable):
		return "document_unavailable"
	case errors.Is(err, llm.ErrLLMUnavailable):
		return "llm_unavailable"
	default:
		return "failed"
	}
}

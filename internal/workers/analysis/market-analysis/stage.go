// internal/workers/analysis/market-analysis/stage.go
package marketanalysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"mic-ai-service/internal/common/llm"
	"mic-ai-service/internal/common/metrics"
	"mic-ai-service/internal/common/observability"
	"mic-ai-service/internal/common/validation"
	"mic-ai-service/internal/models"
)

var (
	// ErrStageCallFailed means the model could not be reached or refused the call.
	ErrStageCallFailed = errors.New("STAGE_CALL_FAILED")
	// ErrStageInvalidOutput means the reply did not contain a usable JSON object.
	ErrStageInvalidOutput = errors.New("STAGE_OUTPUT_INVALID")
	ErrUnknownStage       = errors.New("UNKNOWN_STAGE")
)

// StageError is the failure variant of a stage run. Kind is either
// ErrStageCallFailed or ErrStageInvalidOutput; for the latter Result
// holds the error mapping produced by SafeJSONLoad.
type StageError struct {
	Stage  string
	Kind   error
	Result models.StageResult
	Err    error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("stage %s: %v: %v", e.Stage, e.Kind, e.Err)
	}
	if e.Result != nil {
		return fmt.Sprintf("stage %s: %v: %s", e.Stage, e.Kind, e.Result.ErrorKind())
	}
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Kind)
}

func (e *StageError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// RunStage sends one stage prompt and parses the reply. On success the
// mapping is returned with a nil error; otherwise the error is a *StageError.
func (h *Handler) RunStage(ctx context.Context, stageID string, in StageInput) (models.StageResult, error) {
	stage, ok := h.registry.Get(stageID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStage, stageID)
	}
	if h.llm == nil {
		return nil, &StageError{Stage: stageID, Kind: ErrStageCallFailed, Err: llm.ErrLLMUnavailable}
	}

	prompt, err := buildPrompt(stage, in)
	if err != nil {
		return nil, err
	}

	ctx, span := h.obs.StartSpan(ctx, "analysis.stage", attribute.String("stage", stageID))
	start := time.Now()

	result, err := h.callStage(ctx, stage.ID, stage.SystemPrompt, prompt, stage.Temperature, stage.MaxTokens)

	outcome := "success"
	if err != nil {
		outcome = "failed"
		if errors.Is(err, ErrStageInvalidOutput) {
			outcome = "invalid_output"
		}
	}
	elapsed := time.Since(start)
	metrics.StageDuration.WithLabelValues(stageID, outcome).Observe(elapsed.Seconds())
	h.obs.RecordStage(ctx, stageID, outcome, elapsed)
	observability.EndSpan(span, err)

	if err != nil {
		return nil, err
	}

	h.checkSchema(stageID, stage.OutputSchema, result)
	return result, nil
}

func (h *Handler) callStage(ctx context.Context, stageID, system, prompt string, temperature float64, maxTokens int) (models.StageResult, error) {
	reply, err := h.llm.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		h.logger.Error("stage call failed", map[string]interface{}{
			"stage": stageID,
			"error": err.Error(),
		})
		return nil, &StageError{Stage: stageID, Kind: ErrStageCallFailed, Err: err}
	}

	result := SafeJSONLoad(unfence(reply))
	if result.IsError() {
		h.logger.Warn("stage returned unusable output", map[string]interface{}{
			"stage":     stageID,
			"errorKind": result.ErrorKind(),
		})
		return nil, &StageError{Stage: stageID, Kind: ErrStageInvalidOutput, Result: result}
	}
	return result, nil
}

// checkSchema is advisory: violations are logged and counted, the result is kept.
func (h *Handler) checkSchema(stageID string, schema map[string]interface{}, result models.StageResult) {
	if schema == nil {
		return
	}
	vr, err := validation.Validate(map[string]interface{}(result), schema)
	if err != nil {
		h.logger.Warn("stage schema could not be applied", map[string]interface{}{
			"stage": stageID,
			"error": err.Error(),
		})
		return
	}
	if vr.Valid {
		return
	}
	metrics.StageSchemaViolations.WithLabelValues(stageID).Inc()
	h.logger.Warn("stage output does not match schema", map[string]interface{}{
		"stage":      stageID,
		"violations": vr.Messages(),
	})
}

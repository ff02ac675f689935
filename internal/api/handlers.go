// internal/api/handlers.go
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	apperrors "mic-ai-service/internal/common/errors"
	"mic-ai-service/internal/common/llm"
	"mic-ai-service/internal/common/validation"
	chatresponder "mic-ai-service/internal/workers/ai-conversation/chat-responder"
	marketanalysis "mic-ai-service/internal/workers/analysis/market-analysis"
	readdocument "mic-ai-service/internal/workers/research/read-document"
)

const (
	maxBodyBytes = 1 << 20

	analysisFailedMessage = "Analysis failed"
)

var (
	chatRequestSchema = validation.ObjectSchema(map[string]interface{}{
		"message":    map[string]interface{}{"type": "string"},
		"session_id": map[string]interface{}{"type": []interface{}{"string", "null"}},
	}, "message")

	analyzeRequestSchema = validation.ObjectSchema(map[string]interface{}{
		"submission_id": map[string]interface{}{"type": "string"},
		"file_path":     map[string]interface{}{"type": "string"},
	}, "submission_id", "file_path")
)

type chatRequest struct {
	Message   string  `json:"message"`
	SessionID *string `json:"session_id"`
}

type analyzeRequest struct {
	SubmissionID string `json:"submission_id"`
	FilePath     string `json:"file_path"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteJSON(w, http.StatusOK, map[string]string{"status": "AI service running"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   s.now().Format(time.RFC3339),
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := s.decode(r, chatRequestSchema, &req); err != nil {
		s.errors.WriteHTTPError(w, r, err)
		return
	}

	sessionID := ""
	if req.SessionID != nil {
		sessionID = *req.SessionID
	}
	if sessionID == "" {
		sessionID = r.Header.Get(SessionHeader)
	}

	out := s.chat.Execute(r.Context(), &chatresponder.Input{
		Message:   req.Message,
		SessionID: sessionID,
	})
	apperrors.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := s.decode(r, analyzeRequestSchema, &req); err != nil {
		s.errors.WriteHTTPError(w, r, err)
		return
	}

	path, err := filepath.Abs(filepath.Clean(req.FilePath))
	if err != nil {
		s.errors.WriteHTTPError(w, r, apperrors.NewFileNotFoundError(req.FilePath))
		return
	}
	if _, err := os.Stat(path); err != nil {
		s.errors.WriteHTTPError(w, r, apperrors.NewFileNotFoundError(path))
		return
	}

	s.logger.Info("analysis requested", map[string]interface{}{
		"submissionId": req.SubmissionID,
		"filePath":     path,
	})

	out, err := s.analyzer.Execute(r.Context(), &marketanalysis.Input{
		SubmissionID: req.SubmissionID,
		FilePath:     path,
	})
	if err != nil {
		s.errors.WriteHTTPError(w, r, analysisError(err, path))
		return
	}

	apperrors.WriteJSON(w, http.StatusAccepted, map[string]interface{}{
		"submission_id":   out.SubmissionID,
		"viability":       out.Viability,
		"fit":             out.Fit,
		"saturation":      out.Saturation,
		"recommendations": out.Recommendations,
	})
}

// analysisError maps a pipeline failure to its client-facing error. Only a
// stage that answered with unusable output is surfaced in detail; every
// other failure keeps its own code for the log and reads "Analysis failed".
func analysisError(err error, path string) *apperrors.StandardError {
	var stageErr *marketanalysis.StageError
	if errors.As(err, &stageErr) && errors.Is(stageErr.Kind, marketanalysis.ErrStageInvalidOutput) {
		return apperrors.NewStageOutputInvalidError(stageErr.Stage, stageErr.Result)
	}

	var mapped *apperrors.StandardError
	switch {
	case errors.Is(err, readdocument.ErrUnsupportedFormat):
		mapped = apperrors.NewUnsupportedFormatError(filepath.Ext(path))
	case errors.Is(err, marketanalysis.ErrDocumentUnavailable):
		mapped = apperrors.NewDocumentReadFailedError(err)
	case errors.Is(err, llm.ErrLLMUnavailable):
		mapped = apperrors.NewLLMUnavailableError()
	case errors.Is(err, llm.ErrRateLimited):
		mapped = apperrors.NewLLMRateLimitedError(err)
	case errors.Is(err, marketanalysis.ErrStageCallFailed):
		mapped = apperrors.NewLLMCallFailedError(err)
	case errors.Is(err, marketanalysis.ErrReportWriteFailed):
		mapped = apperrors.NewReportWriteFailedError(err)
	default:
		return apperrors.NewAnalysisFailedError(err)
	}
	return mapped.WithClientMessage(analysisFailedMessage)
}

// decode validates the body against schema and unmarshals it into dst.
func (s *Server) decode(r *http.Request, schema map[string]interface{}, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return apperrors.NewRequestInvalidError(err.Error(), nil)
	}

	result, err := validation.ValidateJSON(body, schema)
	if err != nil {
		return fmt.Errorf("validate request: %w", err)
	}
	if !result.Valid {
		return apperrors.NewRequestInvalidError("request body failed validation", result.Messages())
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return apperrors.NewRequestInvalidError(err.Error(), nil)
	}
	return nil
}

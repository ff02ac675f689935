// Package errors provides standardized error handling for the HTTP facade and CLI.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeRequestInvalid ErrorCode = "REQUEST_INVALID"
	ErrCodeFileNotFound   ErrorCode = "FILE_NOT_FOUND"

	ErrCodeUnsupportedFormat  ErrorCode = "UNSUPPORTED_FORMAT"
	ErrCodeDocumentReadFailed ErrorCode = "DOCUMENT_READ_FAILED"

	ErrCodeLLMUnavailable ErrorCode = "LLM_UNAVAILABLE"
	ErrCodeLLMRateLimited ErrorCode = "LLM_RATE_LIMITED"
	ErrCodeLLMCallFailed  ErrorCode = "LLM_CALL_FAILED"

	ErrCodeStageOutputInvalid ErrorCode = "STAGE_OUTPUT_INVALID"
	ErrCodeAnalysisFailed     ErrorCode = "ANALYSIS_FAILED"
	ErrCodeReportWriteFailed  ErrorCode = "REPORT_WRITE_FAILED"

	ErrCodeSessionStoreFailed ErrorCode = "SESSION_STORE_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
// Payload, when set, replaces Message as the client-facing detail.
// ClientMessage, when set, replaces Message in the response only.
type StandardError struct {
	Code          ErrorCode              `json:"code"`
	Message       string                 `json:"message"`
	Details       string                 `json:"details,omitempty"`
	Retryable     bool                   `json:"retryable"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	Payload       map[string]interface{} `json:"-"`
	ClientMessage string                 `json:"-"`
	Timestamp     time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithClientMessage keeps the code and message for logs and shows msg to the caller.
func (e *StandardError) WithClientMessage(msg string) *StandardError {
	e.ClientMessage = msg
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

// NewRequestInvalidError is returned when a request body fails validation.
func NewRequestInvalidError(details string, problems []string) *StandardError {
	var meta map[string]interface{}
	if len(problems) > 0 {
		meta = map[string]interface{}{"problems": problems}
	}
	return &StandardError{
		Code:      ErrCodeRequestInvalid,
		Message:   "Invalid request body",
		Details:   details,
		Metadata:  meta,
		Timestamp: time.Now().UTC(),
	}
}

// NewFileNotFoundError reports the resolved path back to the caller.
func NewFileNotFoundError(path string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFileNotFound,
		Message:   fmt.Sprintf("File not found at %s", path),
		Metadata:  map[string]interface{}{"path": path},
		Timestamp: time.Now().UTC(),
	}
}

func NewUnsupportedFormatError(ext string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnsupportedFormat,
		Message:   fmt.Sprintf("Unsupported document format: %s", ext),
		Timestamp: time.Now().UTC(),
	}
}

func NewDocumentReadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocumentReadFailed,
		Message:   "Document could not be read",
		Details:   errDetails(err),
		Timestamp: time.Now().UTC(),
	}
}

func NewLLMUnavailableError() *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMUnavailable,
		Message:   "LLM credential is not configured",
		Timestamp: time.Now().UTC(),
	}
}

func NewLLMRateLimitedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMRateLimited,
		Message:   "LLM rate limit reached",
		Details:   errDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewLLMCallFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMCallFailed,
		Message:   "LLM call failed",
		Details:   errDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStageOutputInvalidError carries the stage's error mapping as the client-facing payload.
func NewStageOutputInvalidError(stage string, result map[string]interface{}) *StandardError {
	payload := make(map[string]interface{}, len(result)+1)
	for k, v := range result {
		payload[k] = v
	}
	payload["stage"] = stage

	return &StandardError{
		Code:      ErrCodeStageOutputInvalid,
		Message:   fmt.Sprintf("Stage %s returned unusable output", stage),
		Payload:   payload,
		Metadata:  map[string]interface{}{"stage": stage},
		Timestamp: time.Now().UTC(),
	}
}

// NewAnalysisFailedError is the catch-all for a pipeline that produced nothing.
func NewAnalysisFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAnalysisFailed,
		Message:   "Analysis failed",
		Details:   errDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewReportWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReportWriteFailed,
		Message:   "Report could not be written",
		Details:   errDetails(err),
		Timestamp: time.Now().UTC(),
	}
}

func NewSessionStoreFailedError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreFailed,
		Message:   fmt.Sprintf("Session store %s failed", op),
		Details:   errDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 3. HTTP Mapping
// ==========================

// HTTPStatusMapping maps internal error codes to response status codes.
var HTTPStatusMapping = map[ErrorCode]int{
	ErrCodeRequestInvalid:     http.StatusUnprocessableEntity,
	ErrCodeFileNotFound:       http.StatusNotFound,
	ErrCodeUnsupportedFormat:  http.StatusInternalServerError,
	ErrCodeDocumentReadFailed: http.StatusInternalServerError,
	ErrCodeLLMUnavailable:     http.StatusInternalServerError,
	ErrCodeLLMRateLimited:     http.StatusInternalServerError,
	ErrCodeLLMCallFailed:      http.StatusInternalServerError,
	ErrCodeStageOutputInvalid: http.StatusBadGateway,
	ErrCodeAnalysisFailed:     http.StatusInternalServerError,
	ErrCodeReportWriteFailed:  http.StatusInternalServerError,
	ErrCodeSessionStoreFailed: http.StatusInternalServerError,
	ErrCodeInternal:           http.StatusInternalServerError,
}

// HTTPStatus returns the response status for a code, 500 when unmapped.
func HTTPStatus(code ErrorCode) int {
	if status, ok := HTTPStatusMapping[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ==========================
// 4. Utility Functions
// ==========================

// AsStandardError unwraps err into a StandardError, wrapping unknown errors as INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   errDetails(err),
		Timestamp: time.Now().UTC(),
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeLLMRateLimited, ErrCodeLLMCallFailed, ErrCodeAnalysisFailed, ErrCodeSessionStoreFailed:
		return true
	}
	return false
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "REQUEST") || strings.Contains(codeStr, "FILE"):
		return "INPUT"
	case strings.Contains(codeStr, "DOCUMENT") || strings.Contains(codeStr, "FORMAT"):
		return "DOCUMENT"
	case strings.Contains(codeStr, "LLM") || strings.Contains(codeStr, "STAGE"):
		return "AI"
	case strings.Contains(codeStr, "ANALYSIS") || strings.Contains(codeStr, "REPORT"):
		return "ANALYSIS"
	case strings.Contains(codeStr, "SESSION"):
		return "SESSION"
	default:
		return "OTHER"
	}
}

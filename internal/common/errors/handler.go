// internal/common/errors/handler.go
package errors

import (
	"encoding/json"
	"net/http"
)

// ErrorHandler renders errors as JSON responses of the form {"detail": ...}.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// WriteHTTPError normalizes err and writes it to w.
func (h *ErrorHandler) WriteHTTPError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := AsStandardError(err)
	status := HTTPStatus(stdErr.Code)

	h.logError(r, stdErr, status)

	var detail interface{} = stdErr.Message
	if stdErr.ClientMessage != "" {
		detail = stdErr.ClientMessage
	}
	if stdErr.Payload != nil {
		detail = stdErr.Payload
	} else if problems, ok := stdErr.Metadata["problems"]; ok && stdErr.Code == ErrCodeRequestInvalid {
		detail = problems
	}

	WriteJSON(w, status, map[string]interface{}{"detail": detail})
}

// WriteJSON encodes body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (h *ErrorHandler) logError(r *http.Request, stdErr *StandardError, status int) {
	if h.logger == nil {
		return
	}
	fields := map[string]interface{}{
		"errorCode": string(stdErr.Code),
		"category":  GetErrorCategory(stdErr.Code),
		"status":    status,
		"details":   stdErr.Details,
		"retryable": stdErr.Retryable,
	}
	if r != nil {
		fields["path"] = r.URL.Path
		fields["method"] = r.Method
	}
	for k, v := range stdErr.Metadata {
		fields[k] = v
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error(stdErr.Message, fields)
		return
	}
	h.logger.Warn(stdErr.Message, fields)
}

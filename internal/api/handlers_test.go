// internal/api/handlers_test.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "mic-ai-service/internal/common/errors"
	"mic-ai-service/internal/common/llm"
	"mic-ai-service/internal/common/logger"
	"mic-ai-service/internal/common/session"
	"mic-ai-service/internal/models"
	chatresponder "mic-ai-service/internal/workers/ai-conversation/chat-responder"
	formatreport "mic-ai-service/internal/workers/analysis/format-report"
	marketanalysis "mic-ai-service/internal/workers/analysis/market-analysis"
	readdocument "mic-ai-service/internal/workers/research/read-document"
)

// ==========================
// Test Doubles
// ==========================

type stubChat struct {
	inputs []*chatresponder.Input
}

func (c *stubChat) Execute(_ context.Context, in *chatresponder.Input) *chatresponder.Output {
	c.inputs = append(c.inputs, in)
	id := in.SessionID
	if id == "" {
		id = "minted"
	}
	return &chatresponder.Output{Response: "reply to " + in.Message, SessionID: id}
}

type stubAnalyzer struct {
	inputs []*marketanalysis.Input
	out    *marketanalysis.Output
	err    error
}

func (a *stubAnalyzer) Execute(_ context.Context, in *marketanalysis.Input) (*marketanalysis.Output, error) {
	a.inputs = append(a.inputs, in)
	return a.out, a.err
}

func newTestRouter(t *testing.T, chat ChatResponder, analyzer Analyzer) http.Handler {
	return NewRouter(Options{
		Chat:           chat,
		Analyzer:       analyzer,
		Logger:         logger.NewTestLogger(t),
		MetricsEnabled: true,
	})
}

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func writeTempFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("An app for campus food delivery."), 0o600))
	return path
}

// ==========================
// Service Endpoints
// ==========================

func TestRoot(t *testing.T) {
	rec := do(t, newTestRouter(t, &stubChat{}, &stubAnalyzer{}), http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "AI service running", decode(t, rec)["status"])
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(t, &stubChat{}, &stubAnalyzer{}), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "healthy", body["status"])
	_, err := time.Parse(time.RFC3339, body["time"].(string))
	assert.NoError(t, err)
}

func TestMetrics(t *testing.T) {
	rec := do(t, newTestRouter(t, &stubChat{}, &stubAnalyzer{}), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	disabled := NewRouter(Options{Chat: &stubChat{}, Analyzer: &stubAnalyzer{}})
	rec = do(t, disabled, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	rec := do(t, newTestRouter(t, &stubChat{}, &stubAnalyzer{}), http.MethodOptions, "/chat", "",
		"Origin", "http://localhost:3000",
		"Access-Control-Request-Method", "POST",
	)

	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

// ==========================
// POST /chat
// ==========================

func TestChat_BodySessionID(t *testing.T) {
	chat := &stubChat{}
	rec := do(t, newTestRouter(t, chat, &stubAnalyzer{}), http.MethodPost, "/chat",
		`{"message":"What is MiC?","session_id":"s-1"}`, SessionHeader, "ignored")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "reply to What is MiC?", body["response"])
	assert.Equal(t, "s-1", body["session_id"])
	require.Len(t, chat.inputs, 1)
	assert.Equal(t, "s-1", chat.inputs[0].SessionID)
}

func TestChat_HeaderSessionID(t *testing.T) {
	chat := &stubChat{}
	rec := do(t, newTestRouter(t, chat, &stubAnalyzer{}), http.MethodPost, "/chat",
		`{"message":"events?","session_id":null}`, SessionHeader, "from-header")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "from-header", decode(t, rec)["session_id"])
}

func TestChat_NoSessionID(t *testing.T) {
	chat := &stubChat{}
	rec := do(t, newTestRouter(t, chat, &stubAnalyzer{}), http.MethodPost, "/chat", `{"message":"hi"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", chat.inputs[0].SessionID)
	assert.Equal(t, "minted", decode(t, rec)["session_id"])
}

func TestChat_InvalidBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing message", `{"session_id":"s"}`},
		{"message not a string", `{"message":42}`},
		{"not json", `message=hi`},
		{"empty body", ``},
		{"array", `["hi"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := &stubChat{}
			rec := do(t, newTestRouter(t, chat, &stubAnalyzer{}), http.MethodPost, "/chat", tt.body)

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.NotNil(t, decode(t, rec)["detail"])
			assert.Empty(t, chat.inputs)
		})
	}
}

func TestChat_MissingMessageDetail(t *testing.T) {
	rec := do(t, newTestRouter(t, &stubChat{}, &stubAnalyzer{}), http.MethodPost, "/chat", `{}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	detail, ok := decode(t, rec)["detail"].([]interface{})
	require.True(t, ok)
	require.Len(t, detail, 1)
	assert.True(t, strings.HasPrefix(detail[0].(string), "message: "))
}

func TestChat_WithResponder(t *testing.T) {
	responder := chatresponder.NewHandler(chatresponder.LoadConfig(), nil, session.NewMemoryStore(), &chatLogger{logger.NewTestLogger(t)})
	h := newTestRouter(t, responder, &stubAnalyzer{})

	rec := do(t, h, http.MethodPost, "/chat", `{"message":"Hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.True(t, strings.HasPrefix(body["response"].(string), "Hello! Welcome to MAHE Innovation Centre."))
	assert.NotEmpty(t, body["session_id"])

	rec = do(t, h, http.MethodPost, "/chat", `{"message":"   "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, chatresponder.EmptyMessageReply, decode(t, rec)["response"])
}

type chatLogger struct {
	logger.Logger
}

func (l *chatLogger) With(fields map[string]interface{}) chatresponder.Logger {
	return &chatLogger{l.Logger.With(fields)}
}

// ==========================
// POST /analyze
// ==========================

func TestAnalyze_Success(t *testing.T) {
	path := writeTempFile(t, "idea.txt")
	analyzer := &stubAnalyzer{out: &marketanalysis.Output{
		SubmissionID:    "sub-9",
		Viability:       models.StageResult{"market_viability_score": 72.0},
		Fit:             models.StageResult{"problem_urgency": "high"},
		Saturation:      models.StageResult{"saturation_level": "moderate"},
		Recommendations: models.StageResult{"overall_verdict": "promising"},
		Report:          "full report",
		ReportPath:      "/tmp/report.txt",
	}}
	body := fmt.Sprintf(`{"submission_id":"sub-9","file_path":%q}`, path)

	rec := do(t, newTestRouter(t, &stubChat{}, analyzer), http.MethodPost, "/analyze", body)

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	resp := decode(t, rec)
	assert.Equal(t, "sub-9", resp["submission_id"])
	assert.Equal(t, "promising", resp["recommendations"].(map[string]interface{})["overall_verdict"])
	assert.InDelta(t, 72.0, resp["viability"].(map[string]interface{})["market_viability_score"], 1e-9)
	assert.NotContains(t, resp, "report_path")
	assert.Len(t, resp, 5)

	require.Len(t, analyzer.inputs, 1)
	assert.Equal(t, path, analyzer.inputs[0].FilePath)
}

func TestAnalyze_PathIsCleaned(t *testing.T) {
	path := writeTempFile(t, "idea.txt")
	dir, name := filepath.Split(path)
	messy := dir + "nested/../" + name
	analyzer := &stubAnalyzer{out: &marketanalysis.Output{SubmissionID: "s"}}

	rec := do(t, newTestRouter(t, &stubChat{}, analyzer), http.MethodPost, "/analyze",
		fmt.Sprintf(`{"submission_id":"s","file_path":%q}`, messy))

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, path, analyzer.inputs[0].FilePath)
}

func TestAnalyze_FileNotFound(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.pdf")
	analyzer := &stubAnalyzer{}

	rec := do(t, newTestRouter(t, &stubChat{}, analyzer), http.MethodPost, "/analyze",
		fmt.Sprintf(`{"submission_id":"s","file_path":%q}`, missing))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "File not found at "+missing, decode(t, rec)["detail"])
	assert.Empty(t, analyzer.inputs)
}

func TestAnalyze_InvalidBody(t *testing.T) {
	for _, body := range []string{`{"file_path":"x.pdf"}`, `{"submission_id":"s"}`, `{"submission_id":1,"file_path":"x"}`} {
		rec := do(t, newTestRouter(t, &stubChat{}, &stubAnalyzer{}), http.MethodPost, "/analyze", body)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, body)
	}
}

func TestAnalyze_StageInvalidOutput(t *testing.T) {
	path := writeTempFile(t, "idea.txt")
	analyzer := &stubAnalyzer{err: &marketanalysis.StageError{
		Stage:  "fit",
		Kind:   marketanalysis.ErrStageInvalidOutput,
		Result: models.StageResult{"error": marketanalysis.ErrorNoJSON, "raw_preview": "I cannot help"},
	}}

	rec := do(t, newTestRouter(t, &stubChat{}, analyzer), http.MethodPost, "/analyze",
		fmt.Sprintf(`{"submission_id":"s","file_path":%q}`, path))

	require.Equal(t, http.StatusBadGateway, rec.Code)
	detail := decode(t, rec)["detail"].(map[string]interface{})
	assert.Equal(t, "fit", detail["stage"])
	assert.Equal(t, marketanalysis.ErrorNoJSON, detail["error"])
	assert.Equal(t, "I cannot help", detail["raw_preview"])
}

func TestAnalyze_OtherFailures(t *testing.T) {
	path := writeTempFile(t, "idea.txt")
	failures := []error{
		&marketanalysis.StageError{Stage: "viability", Kind: marketanalysis.ErrStageCallFailed, Err: errors.New("timeout")},
		fmt.Errorf("%w: bad pdf", marketanalysis.ErrDocumentUnavailable),
		fmt.Errorf("%w: %w", marketanalysis.ErrDocumentUnavailable, fmt.Errorf("%w: .xlsx", readdocument.ErrUnsupportedFormat)),
		llm.ErrLLMUnavailable,
		errors.New("boom"),
	}
	for _, failure := range failures {
		analyzer := &stubAnalyzer{err: failure}
		rec := do(t, newTestRouter(t, &stubChat{}, analyzer), http.MethodPost, "/analyze",
			fmt.Sprintf(`{"submission_id":"s","file_path":%q}`, path))

		assert.Equal(t, http.StatusInternalServerError, rec.Code, failure.Error())
		assert.Equal(t, "Analysis failed", decode(t, rec)["detail"])
	}
}

func TestAnalysisError_Codes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code apperrors.ErrorCode
	}{
		{
			name: "unsupported format",
			err:  fmt.Errorf("%w: %w", marketanalysis.ErrDocumentUnavailable, fmt.Errorf("%w: .xlsx", readdocument.ErrUnsupportedFormat)),
			code: apperrors.ErrCodeUnsupportedFormat,
		},
		{
			name: "unreadable document",
			err:  fmt.Errorf("%w: %w", marketanalysis.ErrDocumentUnavailable, readdocument.ErrDocumentReadFailed),
			code: apperrors.ErrCodeDocumentReadFailed,
		},
		{
			name: "no api key",
			err:  llm.ErrLLMUnavailable,
			code: apperrors.ErrCodeLLMUnavailable,
		},
		{
			name: "no api key inside a stage",
			err:  &marketanalysis.StageError{Stage: "fit", Kind: marketanalysis.ErrStageCallFailed, Err: llm.ErrLLMUnavailable},
			code: apperrors.ErrCodeLLMUnavailable,
		},
		{
			name: "rate limited stage",
			err:  &marketanalysis.StageError{Stage: "fit", Kind: marketanalysis.ErrStageCallFailed, Err: fmt.Errorf("%w: 429", llm.ErrRateLimited)},
			code: apperrors.ErrCodeLLMRateLimited,
		},
		{
			name: "stage call failed",
			err:  &marketanalysis.StageError{Stage: "fit", Kind: marketanalysis.ErrStageCallFailed, Err: errors.New("timeout")},
			code: apperrors.ErrCodeLLMCallFailed,
		},
		{
			name: "report write failed",
			err:  fmt.Errorf("%w: %w", marketanalysis.ErrReportWriteFailed, formatreport.ErrReportWriteFailed),
			code: apperrors.ErrCodeReportWriteFailed,
		},
		{
			name: "anything else",
			err:  errors.New("boom"),
			code: apperrors.ErrCodeAnalysisFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analysisError(tt.err, "/data/idea.xlsx")

			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, http.StatusInternalServerError, apperrors.HTTPStatus(got.Code))

			rec := httptest.NewRecorder()
			apperrors.NewErrorHandler(nil).WriteHTTPError(rec, nil, got)
			assert.Equal(t, "Analysis failed", decode(t, rec)["detail"])
		})
	}

	assert.Equal(t, "Unsupported document format: .xlsx",
		analysisError(fmt.Errorf("%w: .xlsx", readdocument.ErrUnsupportedFormat), "/data/idea.xlsx").Message)
}

func TestAnalyze_OversizedBodyRejected(t *testing.T) {
	big := bytes.Repeat([]byte("a"), maxBodyBytes+10)
	body := `{"submission_id":"s","file_path":"` + string(big) + `"}`

	rec := do(t, newTestRouter(t, &stubChat{}, &stubAnalyzer{}), http.MethodPost, "/analyze", body)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// internal/workers/analysis/format-report/handler.go
package formatreport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"mic-ai-service/internal/common/logger"
)

const TaskType = "format-report"

var (
	ErrReportWriteFailed = errors.New("REPORT_WRITE_FAILED")
)

type Handler struct {
	config *Config
	logger logger.Logger
	now    func() time.Time
	token  func() string
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:    time.Now,
		token:  func() string { return uuid.NewString()[:8] },
	}
}

// Execute renders the report and saves it under the configured report directory.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.GeneratedAt.IsZero() {
		input.GeneratedAt = h.now()
	}

	report := Format(input)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(h.config.ReportDir, FileName(input, h.token()))
	if err := h.write(path, report); err != nil {
		h.logger.Error("failed to save report", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", ErrReportWriteFailed, err)
	}

	h.logger.Info("report saved", map[string]interface{}{
		"path":  path,
		"bytes": len(report),
	})

	return &Output{Report: report, ReportPath: path}, nil
}

func (h *Handler) write(path, report string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(report), 0o644)
}

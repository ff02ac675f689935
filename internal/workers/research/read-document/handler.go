// internal/workers/research/read-document/handler.go
package readdocument

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"mic-ai-service/internal/common/metrics"
)

const (
	TaskType = "read-document"
)

var (
	ErrUnsupportedFormat  = errors.New("UNSUPPORTED_FORMAT")
	ErrDocumentReadFailed = errors.New("DOCUMENT_READ_FAILED")
)

var controlChars = regexp.MustCompile(`[\x00-\x08\x0b-\x1f\x7f-\x9f]`)

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config *Config
	logger Logger
}

func NewHandler(config *Config, log Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// Execute extracts the text of a txt, pdf, docx or doc file.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	format := Format(input.FilePath)

	var read func(string) (string, error)
	switch format {
	case FormatTXT:
		read = readText
	case FormatPDF:
		read = readPDF
	case FormatDOCX, FormatDOC:
		read = readWord
	default:
		h.logger.Warn("unsupported document format", map[string]interface{}{
			"filePath":  input.FilePath,
			"extension": format,
			"supported": "txt, pdf, docx",
		})
		metrics.DocumentsReadTotal.WithLabelValues("unsupported", "rejected").Inc()
		return nil, fmt.Errorf("%w: .%s", ErrUnsupportedFormat, format)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := h.checkSize(input.FilePath); err != nil {
		return nil, h.readFailed(input.FilePath, format, err)
	}

	text, err := read(input.FilePath)
	if err != nil {
		return nil, h.readFailed(input.FilePath, format, err)
	}

	metrics.DocumentsReadTotal.WithLabelValues(format, "success").Inc()
	h.logger.Info("document loaded", map[string]interface{}{
		"filePath":   input.FilePath,
		"format":     strings.ToUpper(format),
		"characters": utf8.RuneCountInString(text),
	})

	return &Output{
		Text:       text,
		Format:     format,
		Characters: utf8.RuneCountInString(text),
	}, nil
}

func (h *Handler) checkSize(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if h.config.MaxFileSize > 0 && info.Size() > h.config.MaxFileSize {
		return fmt.Errorf("file is %d bytes, limit %d", info.Size(), h.config.MaxFileSize)
	}
	return nil
}

func (h *Handler) readFailed(path, format string, err error) error {
	h.logger.Error("error reading file", map[string]interface{}{
		"filePath": path,
		"format":   format,
		"error":    err.Error(),
	})
	metrics.DocumentsReadTotal.WithLabelValues(format, "failed").Inc()
	return fmt.Errorf("%w: %v", ErrDocumentReadFailed, err)
}

// Format returns the lower-cased extension of path without the dot.
func Format(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", errors.New("file is not valid UTF-8")
	}
	return string(data), nil
}

// CleanText drops invalid UTF-8 and control characters other than newline and tab.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ToValidUTF8(text, "")
	text = controlChars.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

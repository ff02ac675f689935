// internal/common/logger/logger_test.go
package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestZapAdapter_FieldsAreCarried(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).With(map[string]interface{}{
		"taskType": "chat-responder",
	})

	log.Info("reply produced", map[string]interface{}{"mode": "llm"})
	log.WithError(errors.New("boom")).Error("stage failed", nil)

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		first := entries[0].ContextMap()
		assert.Equal(t, "chat-responder", first["taskType"])
		assert.Equal(t, "llm", first["mode"])

		second := entries[1].ContextMap()
		assert.Equal(t, "boom", second["error"])
		assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	}
}

func TestZapAdapter_ErrorValuesBecomeNamedErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core))

	log.Warn("search failed", map[string]interface{}{"cause": errors.New("timeout")})

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "timeout", entries[0].ContextMap()["cause"])
	}
}

func TestNoOpLogger(t *testing.T) {
	log := NewNoOpLogger()
	assert.NotPanics(t, func() {
		log.Debug("ignored", nil)
		log.WithFields(map[string]interface{}{"a": 1}).Info("ignored", nil)
	})
}

func TestNew_FallsBackOnBadOutput(t *testing.T) {
	l := New("info", "json", "/nonexistent-dir/for/sure/log.txt")
	assert.NotNil(t, l)
}

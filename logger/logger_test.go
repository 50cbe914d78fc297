package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogWritesTraceComponentAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewFromZap(zap.New(core))

	l.Log(zapcore.ErrorLevel, "trace-1", "Failed to accept solution", map[string]any{
		"method":    "AcceptSolution",
		"errorType": "DB_ERROR",
	}, "SERVICE", errors.New("boom"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Failed to accept solution", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "trace-1", fields["traceId"])
	assert.Equal(t, "SERVICE", fields["component"])
	assert.Equal(t, "DB_ERROR", fields["errorType"])
	assert.Equal(t, "boom", fields["error"])
}

func TestLogRespectsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	l := NewFromZap(zap.New(core))

	l.Log(zapcore.InfoLevel, "t", "ignored", nil, "SERVICE", nil)
	assert.Equal(t, 0, logs.Len())
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() {
		l.Log(zapcore.InfoLevel, "t", "msg", nil, "SERVICE", nil)
		l.Sync()
	})
}

package logger

import (
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger writes structured entries tagged with a trace id and the component
// (SERVICE, REPOSITORY, HTTP, ...) that produced them.
type Logger struct {
	zl *zap.Logger
}

func New(mode string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	zl, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{zl: zl}, nil
}

// NewFromZap wraps an existing zap logger, mostly useful with zaptest/observer.
func NewFromZap(zl *zap.Logger) *Logger {
	return &Logger{zl: zl}
}

func NewNop() *Logger {
	return &Logger{zl: zap.NewNop()}
}

func (l *Logger) Log(level zapcore.Level, traceID, message string, fields map[string]any, component string, err error) {
	if l == nil || l.zl == nil {
		return
	}
	zf := make([]zap.Field, 0, len(fields)+3)
	zf = append(zf, zap.String("traceId", traceID), zap.String("component", component))

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		zf = append(zf, zap.Any(k, fields[k]))
	}
	if err != nil {
		zf = append(zf, zap.Error(err))
	}

	if ce := l.zl.Check(level, message); ce != nil {
		ce.Write(zf...)
	}
}

func (l *Logger) Zap() *zap.Logger {
	return l.zl
}

func (l *Logger) Sync() {
	if l != nil && l.zl != nil {
		_ = l.zl.Sync()
	}
}

// Package zaplogger adapts go.uber.org/zap to the logger.Logger
// interface used across the module.
package zaplogger

import (
	"go.uber.org/zap"

	"github.com/get-conveyor/go-conveyor/logger"
)

var _ logger.Logger = &Logger{}

// Logger forwards log entries to an underlying zap.Logger.
type Logger struct {
	zl *zap.Logger
}

// Wrap adapts a zap.Logger to the logger.Logger interface.
func Wrap(l *zap.Logger) *Logger {
	return &Logger{zl: l}
}

func zapFields(fields []logger.Field) []zap.Field {
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		out[i] = zap.Any(f.Key, f.Value)
	}

	return out
}

// Debug logs msg at debug level.
func (l *Logger) Debug(msg string, fields ...logger.Field) {
	l.zl.Debug(msg, zapFields(fields)...)
}

// Info logs msg at info level.
func (l *Logger) Info(msg string, fields ...logger.Field) {
	l.zl.Info(msg, zapFields(fields)...)
}

// Warn logs msg at warn level.
func (l *Logger) Warn(msg string, fields ...logger.Field) {
	l.zl.Warn(msg, zapFields(fields)...)
}

// Error logs msg at error level.
func (l *Logger) Error(msg string, fields ...logger.Field) {
	l.zl.Error(msg, zapFields(fields)...)
}

// Package logger defines the minimal structured logging surface used
// across the module.
//
// Components hold a Logger and log through the package-level helpers,
// which no-op on nil loggers: logging stays optional, and heavyweight
// backends stay out of the core. The zaplogger package adapts
// go.uber.org/zap to this interface.
package logger

// Field is a single structured attribute attached to a log entry.
type Field struct {
	Key   string
	Value any
}

// With builds a Field in a functional way.
func With(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Err builds the conventional "error" field.
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}

// Logger is a structured, leveled logger.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Debug logs msg through l at debug level, doing nothing when l is nil.
func Debug(l Logger, msg string, fields ...Field) {
	if l != nil {
		l.Debug(msg, fields...)
	}
}

// Info logs msg through l at info level, doing nothing when l is nil.
func Info(l Logger, msg string, fields ...Field) {
	if l != nil {
		l.Info(msg, fields...)
	}
}

// Warn logs msg through l at warn level, doing nothing when l is nil.
func Warn(l Logger, msg string, fields ...Field) {
	if l != nil {
		l.Warn(msg, fields...)
	}
}

// Error logs msg through l at error level, doing nothing when l is nil.
func Error(l Logger, msg string, fields ...Field) {
	if l != nil {
		l.Error(msg, fields...)
	}
}

package logger

import "testing"

var _ Logger = Test{}

// Test routes log entries to a testing.T, so they interleave with the
// test output and only surface when the test fails or runs verbose.
type Test struct{ t *testing.T }

// NewTest returns a logger writing through the provided testing.T.
func NewTest(t *testing.T) Test {
	return Test{t: t}
}

func (l Test) log(level, msg string, fields []Field) {
	l.t.Helper()
	l.t.Logf("%-5s %s %+v", level, msg, fields)
}

// Debug prints a debug message through t.Logf.
func (l Test) Debug(msg string, fields ...Field) { l.log("debug", msg, fields) }

// Info prints an info message through t.Logf.
func (l Test) Info(msg string, fields ...Field) { l.log("info", msg, fields) }

// Warn prints a warn message through t.Logf.
func (l Test) Warn(msg string, fields ...Field) { l.log("warn", msg, fields) }

// Error prints an error message through t.Logf.
func (l Test) Error(msg string, fields ...Field) { l.log("error", msg, fields) }

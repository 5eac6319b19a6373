package chttp

import (
	"log"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
)

// Logger can be implemented to get informed about important states.
type Logger interface {
	LogUnhandledServeError(err error)
	LogImplicitFlushError(err error)
}

type stdLogger struct{ *log.Logger }

func (l stdLogger) LogUnhandledServeError(err error) {
	l.Logger.Printf("chttp: unhandled server error: %s", err)
}

func (l stdLogger) LogImplicitFlushError(err error) {
	l.Logger.Printf("chttp: error while flushing implicitly: %s", err)
}

// NewStdLogger implements [Logger] on a standard library logger.
func NewStdLogger(l *log.Logger) Logger {
	return stdLogger{l}
}

type zapLogger struct{ *zap.Logger }

func (l zapLogger) LogUnhandledServeError(err error) {
	l.Logger.Error("unhandled server error", zap.Error(err))
}

func (l zapLogger) LogImplicitFlushError(err error) {
	l.Logger.Error("error while flushing implicitly", zap.Error(err))
}

// NewZapLogger implements [Logger] on a zap logger.
func NewZapLogger(l *zap.Logger) Logger {
	return zapLogger{l.Named("chttp")}
}

// TestLogger counts the logged conditions so tests can assert on them.
type TestLogger struct {
	tb testing.TB

	NumLogUnhandledServeError int64
	NumLogImplicitFlushError  int64
}

func NewTestLogger(tb testing.TB) *TestLogger {
	return &TestLogger{tb: tb}
}

func (l *TestLogger) LogUnhandledServeError(err error) {
	atomic.AddInt64(&l.NumLogUnhandledServeError, 1)
	l.tb.Logf("chttp: unhandled server error: %s", err)
}

func (l *TestLogger) LogImplicitFlushError(err error) {
	atomic.AddInt64(&l.NumLogImplicitFlushError, 1)
	l.tb.Logf("chttp: error while flushing implicitly: %s", err)
}

var _ Logger = &TestLogger{}

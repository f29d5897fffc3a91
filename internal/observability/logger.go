// Package observability provides a leveled Logger in the same attribute-bag
// style the teacher's own orchestrator logging uses, backed by log/slog
// instead of a hand-rolled formatter. cmd/prradar logs its startup line
// through it; the sequencer and evaluator do not log.
package observability

import (
	"context"
	"log/slog"
	"os"
)

// Logger is the structured logging port used throughout the pipeline.
// Fields are passed as alternating key/value pairs, mirroring slog's own
// calling convention so the slog-backed implementation can pass them
// straight through.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...any)
	Info(ctx context.Context, msg string, fields ...any)
	Warn(ctx context.Context, msg string, fields ...any)
	Error(ctx context.Context, msg string, fields ...any)
}

// Format selects the slog handler used by NewLogger.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// slogLogger adapts *slog.Logger to the Logger interface.
type slogLogger struct {
	l *slog.Logger
}

// NewLogger builds a Logger backed by log/slog, writing to os.Stderr at the
// given level and in the given format.
func NewLogger(level slog.Level, format Format) Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return &slogLogger{l: slog.New(handler)}
}

// NewNoop returns a Logger that discards every message; useful for tests and
// library callers that don't want pipeline log lines on stderr.
func NewNoop() Logger {
	return &slogLogger{l: slog.New(slog.NewTextHandler(noopWriter{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))}
}

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }

func (s *slogLogger) Debug(ctx context.Context, msg string, fields ...any) {
	s.l.DebugContext(ctx, msg, fields...)
}

func (s *slogLogger) Info(ctx context.Context, msg string, fields ...any) {
	s.l.InfoContext(ctx, msg, fields...)
}

func (s *slogLogger) Warn(ctx context.Context, msg string, fields ...any) {
	s.l.WarnContext(ctx, msg, fields...)
}

func (s *slogLogger) Error(ctx context.Context, msg string, fields ...any) {
	s.l.ErrorContext(ctx, msg, fields...)
}

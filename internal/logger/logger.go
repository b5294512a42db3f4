// SPDX-License-Identifier: GPL-3.0-or-later

// Package logger wraps log/slog behind the small interface the rest of
// the scheduler depends on, fanning out to multiple handlers through
// samber/slog-multi the way the teacher's dependency set implies
// (internal/logger carries no implementation in the reference tree,
// only its test suite, so this one is grown fresh in slog's idiom).
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// Logger is the scheduler's logging facade. Every entry point that
// needs to log takes this interface rather than *slog.Logger directly,
// so tests can substitute a buffer-backed logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)

	With(args ...any) Logger
	WithGroup(name string) Logger
}

type slogLogger struct {
	l *slog.Logger
}

// NewLoggerArgs mirrors the shape of the teacher's logger constructor
// args (Debug/Format), extended with the extra sinks a multi-handler
// fanout needs.
type NewLoggerArgs struct {
	Debug     bool
	Format    string // "text" | "json"
	Writer    io.Writer   // defaults to os.Stderr
	ExtraSink []io.Writer // additional destinations fanned out to, e.g. a file
}

// NewLogger builds a Logger. When ExtraSink is non-empty the handler is
// a slogmulti.Fanout over one handler per sink, so every log record is
// written to all of them; with no extras it degrades to a single
// handler with no fanout overhead.
func NewLogger(args NewLoggerArgs) Logger {
	level := slog.LevelInfo
	if args.Debug {
		level = slog.LevelDebug
	}
	primary := args.Writer
	if primary == nil {
		primary = os.Stderr
	}

	handlers := []slog.Handler{newHandler(primary, args.Format, level)}
	for _, w := range args.ExtraSink {
		handlers = append(handlers, newHandler(w, args.Format, level))
	}

	var h slog.Handler
	if len(handlers) == 1 {
		h = handlers[0]
	} else {
		h = slogmulti.Fanout(handlers...)
	}
	return &slogLogger{l: slog.New(h)}
}

func newHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level, AddSource: true}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func (s *slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

func (s *slogLogger) Debugf(format string, args ...any) { s.l.Debug(sprintf(format, args...)) }
func (s *slogLogger) Infof(format string, args ...any)  { s.l.Info(sprintf(format, args...)) }
func (s *slogLogger) Warnf(format string, args ...any)  { s.l.Warn(sprintf(format, args...)) }
func (s *slogLogger) Errorf(format string, args ...any) { s.l.Error(sprintf(format, args...)) }

func (s *slogLogger) With(args ...any) Logger {
	return &slogLogger{l: s.l.With(args...)}
}

func (s *slogLogger) WithGroup(name string) Logger {
	return &slogLogger{l: s.l.WithGroup(name)}
}

// Context embedding mirrors the teacher's use of context-carried
// loggers across a request/run; kept minimal since this scheduler has
// no per-request scope, only per-task.

type ctxKey struct{}

// WithContext attaches l to ctx for handlers deep in a call chain that
// don't have it threaded through explicitly.
func WithContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext retrieves the Logger attached by WithContext, or a
// discarding default if none was attached.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(ctxKey{}).(Logger); ok {
		return l
	}
	return NewLogger(NewLoggerArgs{Writer: io.Discard})
}

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

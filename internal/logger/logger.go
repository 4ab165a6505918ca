// Package logger provides structured, context-aware logging on top of zerolog.
package logger

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Level is a logging severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) zerologLevel() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// LoggerInterface is the logging contract used across the monolith's bounded contexts.
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, keyvals ...interface{})
	Info(ctx context.Context, msg string, keyvals ...interface{})
	Warn(ctx context.Context, msg string, keyvals ...interface{})
	Error(ctx context.Context, msg string, keyvals ...interface{})
	With(keyvals ...interface{}) LoggerInterface
}

// Logger is the zerolog-backed implementation of LoggerInterface.
type Logger struct {
	zl zerolog.Logger
}

// New creates a Logger writing to w at the given level, tagged with service.
func New(w io.Writer, level Level, service string, fields map[string]interface{}) *Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	ctx := zerolog.New(w).With().Timestamp().Str("service", service)
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	zl := ctx.Logger().Level(level.zerologLevel())
	return &Logger{zl: zl}
}

// NewConsole creates a Logger writing human-readable console output (for CLI mode).
func NewConsole(w io.Writer, level Level, service string) *Logger {
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	zl := zerolog.New(cw).With().Timestamp().Str("service", service).Logger().Level(level.zerologLevel())
	return &Logger{zl: zl}
}

func (l *Logger) event(level zerolog.Level, ctx context.Context, msg string, keyvals []interface{}) {
	ev := l.zl.WithLevel(level)
	if span := trace.SpanContextFromContext(ctx); span.IsValid() {
		ev = ev.Str("trace_id", span.TraceID().String()).Str("span_id", span.SpanID().String())
	}
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, keyvals[i+1])
	}
	ev.Msg(msg)
}

func (l *Logger) Debug(ctx context.Context, msg string, keyvals ...interface{}) {
	l.event(zerolog.DebugLevel, ctx, msg, keyvals)
}

func (l *Logger) Info(ctx context.Context, msg string, keyvals ...interface{}) {
	l.event(zerolog.InfoLevel, ctx, msg, keyvals)
}

func (l *Logger) Warn(ctx context.Context, msg string, keyvals ...interface{}) {
	l.event(zerolog.WarnLevel, ctx, msg, keyvals)
}

func (l *Logger) Error(ctx context.Context, msg string, keyvals ...interface{}) {
	l.event(zerolog.ErrorLevel, ctx, msg, keyvals)
}

// With returns a child logger carrying the given fields on every subsequent line.
func (l *Logger) With(keyvals ...interface{}) LoggerInterface {
	ctx := l.zl.With()
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, keyvals[i+1])
	}
	return &Logger{zl: ctx.Logger()}
}

var _ LoggerInterface = (*Logger)(nil)

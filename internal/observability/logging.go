// Package observability provides context-scoped structured logging
// helpers: operation metadata travels in the context and is attached
// to every log line emitted through these wrappers.
package observability

import (
	"context"
	"log/slog"
)

// LogContext holds structured logging context information.
type LogContext struct {
	OperationID string
	Scope       string
	Stage       string
}

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// WithOperationID adds an operation ID to the context.
func WithOperationID(ctx context.Context, id string) context.Context {
	lc := extractLogContext(ctx)
	lc.OperationID = id
	return context.WithValue(ctx, logContextKey, lc)
}

// WithScope adds the operation scope to the context.
func WithScope(ctx context.Context, scope string) context.Context {
	lc := extractLogContext(ctx)
	lc.Scope = scope
	return context.WithValue(ctx, logContextKey, lc)
}

// WithStage adds the engine stage to the context.
func WithStage(ctx context.Context, stage string) context.Context {
	lc := extractLogContext(ctx)
	lc.Stage = stage
	return context.WithValue(ctx, logContextKey, lc)
}

func extractLogContext(ctx context.Context) LogContext {
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

func getLogAttrs(ctx context.Context) []slog.Attr {
	lc := extractLogContext(ctx)
	attrs := []slog.Attr{}
	if lc.OperationID != "" {
		attrs = append(attrs, slog.String("operation.id", lc.OperationID))
	}
	if lc.Scope != "" {
		attrs = append(attrs, slog.String("scope", lc.Scope))
	}
	if lc.Stage != "" {
		attrs = append(attrs, slog.String("stage", lc.Stage))
	}
	return attrs
}

// DebugContext logs a debug message with context information.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelDebug, msg, append(getLogAttrs(ctx), attrs...)...)
}

// InfoContext logs an info message with context information.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelInfo, msg, append(getLogAttrs(ctx), attrs...)...)
}

// WarnContext logs a warning message with context information.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelWarn, msg, append(getLogAttrs(ctx), attrs...)...)
}

// ErrorContext logs an error message with context information.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelError, msg, append(getLogAttrs(ctx), attrs...)...)
}

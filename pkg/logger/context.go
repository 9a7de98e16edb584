package logger

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// NewContext returns ctx carrying l. Code reached from ctx logs through
// l, so fields attached once (the running command, say) show up on
// every line.
func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromOr returns the logger stored in ctx, then fallback, then the
// process logger.
func FromOr(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	if fallback != nil {
		return fallback
	}
	return LoggerWrapper()
}

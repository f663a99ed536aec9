package logging

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// WithContext stashes a request-scoped logger on the context; FromContext
// retrieves it, falling back to slog.Default when none was attached.
func WithContext(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

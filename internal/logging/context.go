package logging

import (
	"context"
	"log/slog"
)

type contextKey int

const (
	itemIDKey contextKey = iota
	attemptIDKey
)

// WithItemID annotates ctx with the queue item being processed.
func WithItemID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, itemIDKey, id)
}

// ItemIDFromContext returns the queue item ID stored by WithItemID.
func ItemIDFromContext(ctx context.Context) (int64, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(itemIDKey).(int64)
	return id, ok
}

// WithAttemptID annotates ctx with a worker attempt identifier.
func WithAttemptID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, attemptIDKey, id)
}

// AttemptIDFromContext returns the attempt ID stored by WithAttemptID.
func AttemptIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(attemptIDKey).(string)
	return id, ok && id != ""
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	fields := make([]slog.Attr, 0, 2)
	if id, ok := ItemIDFromContext(ctx); ok {
		fields = append(fields, slog.Int64(FieldItemID, id))
	}
	if id, ok := AttemptIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldAttemptID, id))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}

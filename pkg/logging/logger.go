// Package logging carries a slog.Logger and a request id in the context.
package logging

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	requestIDKey
)

// GetLoggerFromContext returns the context logger, or slog.Default when
// none was set, with the request id attached when present.
func GetLoggerFromContext(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(loggerKey).(*slog.Logger)
	if !ok || l == nil {
		l = slog.Default()
	}

	if requestID := GetRequestIDFromCtx(ctx); requestID != "" {
		l = l.With(slog.String("request_id", requestID))
	}
	return l
}

// GetLoggerFromContextWithOp also attaches the operation name.
func GetLoggerFromContextWithOp(ctx context.Context, op string) *slog.Logger {
	return GetLoggerFromContext(ctx).With(slog.String("op", op))
}

func MakeContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/S1riyS/sqlfs/pkg/logging"
)

// LoggerMiddleware puts base into every request context and logs each
// request at debug level once it completes.
func LoggerMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.LoggerMiddleware"

			ctx := logging.MakeContextWithLogger(r.Context(), base)
			started := time.Now()

			next.ServeHTTP(w, r.WithContext(ctx))

			logging.GetLoggerFromContextWithOp(ctx, op).Debug("Request served",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Duration("elapsed", time.Since(started)),
			)
		})
	}
}

// DetachMiddleware keeps client disconnects from cancelling storage
// calls. Those are bounded by the store's own timeouts.
func DetachMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(context.WithoutCancel(r.Context())))
	})
}

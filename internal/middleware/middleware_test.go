package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/S1riyS/sqlfs/pkg/logging"
	"github.com/stretchr/testify/assert"
)

func TestRequestIDMiddlewareReusesHeader(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.GetRequestIDFromCtx(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestRequestIDMiddlewareGenerates(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.GetRequestIDFromCtx(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestLoggerAndDetachMiddleware(t *testing.T) {
	base := slog.New(slog.DiscardHandler)

	var (
		logger *slog.Logger
		ctxErr error
		done   <-chan struct{}
	)
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger = logging.GetLoggerFromContext(r.Context())
		ctxErr = r.Context().Err()
		done = r.Context().Done()
	})

	reqCtx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(reqCtx)

	LoggerMiddleware(base)(DetachMiddleware(inner)).ServeHTTP(httptest.NewRecorder(), req)

	assert.Same(t, base, logger)
	assert.NoError(t, ctxErr)
	assert.Nil(t, done)
}

package logging

import (
	"context"

	"github.com/google/uuid"
)

func GetRequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func MakeContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// MakeContextWithNewRequestID attaches a random UUID.
func MakeContextWithNewRequestID(ctx context.Context) context.Context {
	return MakeContextWithRequestID(ctx, uuid.NewString())
}

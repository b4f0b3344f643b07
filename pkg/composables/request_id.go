package composables

import (
	"context"

	"github.com/standin-hq/standin/pkg/constants"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, constants.RequestIDKey, requestID)
}

// UseRequestID returns the request id set by the logging middleware, or ""
// outside a request scope.
func UseRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(constants.RequestIDKey).(string); ok {
		return id
	}
	return ""
}

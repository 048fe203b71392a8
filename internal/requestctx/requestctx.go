// Package requestctx carries the per-request id through context so stores
// and services can tag their log lines without importing the HTTP layer.
package requestctx

import "context"

type ctxKey struct{}

// WithRequestID returns a child context tagged with the request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestID)
}

// GetRequestID returns the request id, or "" outside a request.
func GetRequestID(ctx context.Context) string {
	if value, ok := ctx.Value(ctxKey{}).(string); ok {
		return value
	}
	return ""
}

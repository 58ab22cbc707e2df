package shared

import "context"

type correlationIDKey struct{}

// WithCorrelationID returns a copy of ctx carrying the request correlation id
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	if correlationID == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationIDKey{}, correlationID)
}

// CorrelationID returns the correlation id stored in ctx, or an empty string
func CorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return id
	}
	return ""
}

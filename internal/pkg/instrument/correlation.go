package instrument

import "context"

type correlationKey struct{}

// CorrelationHeader carries the request correlation id in and out of HTTP.
const CorrelationHeader = "X-Correlation-ID"

// SetCorrelationID stores id in ctx.
func SetCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// GetCorrelationID returns the id stored by SetCorrelationID or "".
func GetCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

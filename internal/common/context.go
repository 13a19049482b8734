package common

import "context"

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRequestID contextKey = "request_id"
	ContextKeySession   contextKey = "session"
	ContextKeyAPIKey    contextKey = "api_key"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestIDFromContext extracts the request ID from context
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// WithSession tags the context with the operator session name.
func WithSession(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ContextKeySession, name)
}

// SessionFromContext extracts the session name from context
func SessionFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(ContextKeySession).(string); ok {
		return s
	}
	return ""
}

// WithAPIKey carries an operator-supplied key for the duration of one request.
// The key is only ever held in memory.
func WithAPIKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, ContextKeyAPIKey, key)
}

// APIKeyFromContext extracts the per-request API key, if any.
func APIKeyFromContext(ctx context.Context) string {
	if k, ok := ctx.Value(ContextKeyAPIKey).(string); ok {
		return k
	}
	return ""
}

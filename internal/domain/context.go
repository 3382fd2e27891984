package domain

import "context"

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const userIDKey contextKey = "user_id"

// WithUserID returns a context carrying the authenticated user's identity.
// The identity itself is opaque; it comes from the external identity provider
// and is attached by the auth middleware.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserIDFromContext returns the authenticated user id, or "" when the
// request is unauthenticated.
func GetUserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

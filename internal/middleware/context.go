package middleware

import "context"

type contextKey struct{}

var userIDKey contextKey

// ContextWithUserID attaches the logged user ID to the request context.
func ContextWithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the logged user ID set by the auth middleware.
// The second return value is false on public routes, where no auth check ran.
func UserIDFromContext(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(userIDKey).(int)
	return userID, ok
}

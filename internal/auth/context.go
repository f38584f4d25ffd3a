// Package auth resolves the caller's identity. Handlers and services read it back with UserID.
package auth

import (
	"context"

	"tally/internal/core"
)

type contextKey struct{}

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserID returns the authenticated user id or core.ErrUnauthenticated.
func UserID(ctx context.Context) (string, error) {
	id, ok := ctx.Value(contextKey{}).(string)
	if !ok || id == "" {
		return "", core.ErrUnauthenticated
	}
	return id, nil
}

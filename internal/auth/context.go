// Package auth verifies identity provider session tokens and carries the
// verified caller through request contexts.
package auth

import (
	"context"
)

// Identity is the caller as asserted by a verified session token.
type Identity struct {
	// ExternalID is the provider's subject; it maps to exactly one local user.
	ExternalID string
	FirstName  string
	LastName   string
}

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// identityContextKey is the context key for storing the session Identity.
	identityContextKey contextKey = "session_identity"
)

// ContextWithIdentity adds the verified caller to the context.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext retrieves the verified caller from the context.
// Returns nil if the request carried no valid session.
func IdentityFromContext(ctx context.Context) *Identity {
	id, ok := ctx.Value(identityContextKey).(*Identity)
	if !ok {
		return nil
	}
	return id
}

// ExternalIDFromContext is a convenience function to get the caller subject.
// Returns empty string if not authenticated.
func ExternalIDFromContext(ctx context.Context) string {
	id := IdentityFromContext(ctx)
	if id == nil {
		return ""
	}
	return id.ExternalID
}

package service

import (
	"context"
	"errors"

	"github.com/eugeneokaka/journal/internal/auth"
	"github.com/eugeneokaka/journal/internal/model"
)

// ErrUnauthenticated is returned when a request carries no verified caller.
var ErrUnauthenticated = errors.New("unauthenticated")

// UserResolver maps a caller to its local user.
type UserResolver interface {
	Resolve(ctx context.Context, externalID string) (*model.User, error)
}

// Authorize runs lookup on behalf of caller. Every owner-scoped read or write
// goes through it: a missing caller yields ErrUnauthenticated, an unmapped
// caller ErrUserNotFound, and lookup receives the caller's local user so it
// can scope its query by owner.
func Authorize[T any](
	ctx context.Context,
	users UserResolver,
	caller *auth.Identity,
	lookup func(ctx context.Context, user *model.User) (T, error),
) (T, error) {
	var zero T

	if caller == nil || caller.ExternalID == "" {
		return zero, ErrUnauthenticated
	}

	user, err := users.Resolve(ctx, caller.ExternalID)
	if err != nil {
		return zero, err
	}

	return lookup(ctx, user)
}

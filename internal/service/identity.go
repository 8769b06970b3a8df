// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/eugeneokaka/journal/internal/auth"
	"github.com/eugeneokaka/journal/internal/metrics"
	"github.com/eugeneokaka/journal/internal/model"
	"github.com/eugeneokaka/journal/internal/repository"
)

// Identity errors.
var (
	ErrMissingExternalID = errors.New("missing external id")
	ErrUserNotFound      = errors.New("user not found")
)

// UserStore persists local users.
type UserStore interface {
	UpsertUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUserByExternalID(ctx context.Context, externalID string) (*model.User, error)
}

// UserCache fronts UserStore. GetUser returns nil, nil on a miss.
type UserCache interface {
	GetUser(ctx context.Context, externalID string) (*model.User, error)
	SetUser(ctx context.Context, user *model.User) error
}

// IdentityService maps identity provider subjects to local users.
type IdentityService struct {
	store   UserStore
	cache   UserCache
	logger  *slog.Logger
	metrics metrics.Recorder
	now     func() time.Time
}

// NewIdentityService creates a new IdentityService. cache may be nil.
func NewIdentityService(store UserStore, cache UserCache, logger *slog.Logger, recorder metrics.Recorder) *IdentityService {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &IdentityService{
		store:   store,
		cache:   cache,
		logger:  logger.With("component", "identity"),
		metrics: recorder,
		now:     utcNow,
	}
}

// Sync provisions the local user for an external id. It is the explicit
// post-login call; repeated calls are no-ops.
func (s *IdentityService) Sync(ctx context.Context, externalID string, profile model.Profile) (*model.User, error) {
	user, err := s.EnsureUser(ctx, externalID, profile)
	if err != nil {
		return nil, err
	}
	s.metrics.IncUserSynced()
	return user, nil
}

// EnsureUser returns the user mapped to externalID, creating it with profile
// if none exists. It never fails because the user already exists; the
// profile is ignored for existing users.
func (s *IdentityService) EnsureUser(ctx context.Context, externalID string, profile model.Profile) (*model.User, error) {
	if strings.TrimSpace(externalID) == "" {
		return nil, ErrMissingExternalID
	}

	if user := s.cached(ctx, externalID); user != nil {
		return user, nil
	}

	user, err := s.store.UpsertUser(ctx, &model.User{
		ID:         ulid.Make().String(),
		ExternalID: externalID,
		FirstName:  profile.FirstName,
		LastName:   profile.LastName,
		CreatedAt:  s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}

	s.remember(ctx, user)
	return user, nil
}

// Resolve looks up the user mapped to externalID without creating one.
func (s *IdentityService) Resolve(ctx context.Context, externalID string) (*model.User, error) {
	if externalID == "" {
		return nil, ErrMissingExternalID
	}

	if user := s.cached(ctx, externalID); user != nil {
		return user, nil
	}

	user, err := s.store.GetUserByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	s.remember(ctx, user)
	return user, nil
}

// cached consults the cache. Users are never mutated, so a hit is always
// current; cache failures fall through to the store.
func (s *IdentityService) cached(ctx context.Context, externalID string) *model.User {
	if s.cache == nil {
		return nil
	}

	user, err := s.cache.GetUser(ctx, externalID)
	if err != nil {
		s.logger.Warn("identity cache read failed",
			slog.String("user", auth.Fingerprint(externalID)),
			slog.String("error", err.Error()),
		)
	}
	if user == nil {
		s.metrics.IncIdentityCacheMiss()
		return nil
	}

	s.metrics.IncIdentityCacheHit()
	return user
}

func (s *IdentityService) remember(ctx context.Context, user *model.User) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetUser(ctx, user); err != nil {
		s.logger.Warn("identity cache write failed",
			slog.String("user", auth.Fingerprint(user.ExternalID)),
			slog.String("error", err.Error()),
		)
	}
}

// utcNow matches the precision of timestamptz so values survive a round trip.
func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/eugeneokaka/journal/internal/auth"
	"github.com/eugeneokaka/journal/internal/model"
)

// identityCachePrefix is the Redis key prefix for external id -> user rows.
const identityCachePrefix = "identity:user:"

// identityKey keys by fingerprint so raw provider subjects never reach Redis.
func identityKey(externalID string) string {
	return identityCachePrefix + auth.Fingerprint(externalID)
}

// GetUser returns the cached user for an external id.
// Returns nil, nil on a cache miss.
func (c *Cache) GetUser(ctx context.Context, externalID string) (*model.User, error) {
	data, err := c.client.Get(ctx, identityKey(externalID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached user: %w", err)
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}
	if user.ExternalID != externalID {
		// Fingerprint collision - treat as miss
		return nil, nil
	}

	return &user, nil
}

// SetUser caches a user row under its external id.
func (c *Cache) SetUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	return c.client.Set(ctx, identityKey(user.ExternalID), data, c.identityTTL).Err()
}

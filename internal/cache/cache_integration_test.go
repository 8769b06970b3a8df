//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/eugeneokaka/journal/internal/model"
	"github.com/eugeneokaka/journal/internal/testutil"
)

func newCacheTestEnv(t *testing.T) (context.Context, *Cache) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	c, err := New(ctx, redisURL, Options{IdentityTTL: time.Minute})
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	return ctx, c
}

func TestIntegrationIdentityCache_RoundTrip(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	got, err := c.GetUser(ctx, "user_missing")
	if err != nil || got != nil {
		t.Fatalf("miss = (%v, %v), want (nil, nil)", got, err)
	}

	user := &model.User{
		ID:         "01JABCDEF0123456789ABCDEFG",
		ExternalID: "user_cached",
		FirstName:  "Ada",
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
	if err := c.SetUser(ctx, user); err != nil {
		t.Fatalf("SetUser failed: %v", err)
	}

	got, err = c.GetUser(ctx, "user_cached")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got == nil || got.ID != user.ID || !got.CreatedAt.Equal(user.CreatedAt) {
		t.Errorf("GetUser = %+v, want %+v", got, user)
	}

	ttl, err := c.Client().TTL(ctx, identityKey("user_cached")).Result()
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("TTL = %v, want within (0, 1m]", ttl)
	}
}

func TestIntegrationUserRateLimit_Burst(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	for i := 0; i < 3; i++ {
		res, err := c.CheckUserRateLimit(ctx, "user_burst", 60, 3)
		if err != nil {
			t.Fatalf("check %d: %v", i, err)
		}
		if !res.Allowed {
			t.Fatalf("request %d should be allowed", i)
		}
	}

	res, err := c.CheckUserRateLimit(ctx, "user_burst", 60, 3)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Allowed {
		t.Error("fourth request should be limited")
	}
	if res.RetryAfter <= 0 {
		t.Errorf("RetryAfter = %v, want positive", res.RetryAfter)
	}

	// Other users have their own bucket.
	res, err = c.CheckUserRateLimit(ctx, "user_other", 60, 3)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !res.Allowed {
		t.Error("another user should not be limited")
	}
}

package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/thomlank/QuikTik/internal/domain"
)

// ErrCacheMiss signals the snapshot is absent or unreadable.
var ErrCacheMiss = errors.New("snapshot cache miss")

// SnapshotCache stores per-user membership snapshots in Redis with a
// short TTL. Membership mutations invalidate the affected users so a
// stale snapshot can never outlive a role change beyond the current
// request.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotCache builds the cache. A nil client disables caching;
// every Get then misses.
func NewSnapshotCache(r *Redis, ttlSeconds int) *SnapshotCache {
	if ttlSeconds <= 0 {
		ttlSeconds = 60
	}
	cache := &SnapshotCache{ttl: time.Duration(ttlSeconds) * time.Second}
	if r != nil {
		cache.client = r.Client
	}
	return cache
}

func snapshotKey(userID string) string {
	return "quiktik:memberships:" + userID
}

// Get returns the cached membership rows for the user.
func (c *SnapshotCache) Get(ctx context.Context, userID string) ([]domain.Membership, error) {
	if c == nil || c.client == nil {
		return nil, ErrCacheMiss
	}
	raw, err := c.client.Get(ctx, snapshotKey(userID)).Bytes()
	if err != nil {
		return nil, ErrCacheMiss
	}
	var memberships []domain.Membership
	if err := json.Unmarshal(raw, &memberships); err != nil {
		return nil, ErrCacheMiss
	}
	return memberships, nil
}

// Set stores the membership rows for the user.
func (c *SnapshotCache) Set(ctx context.Context, userID string, memberships []domain.Membership) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(memberships)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, snapshotKey(userID), raw, c.ttl).Err()
}

// Invalidate drops the cached snapshot for the user.
func (c *SnapshotCache) Invalidate(ctx context.Context, userID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, snapshotKey(userID)).Err()
}

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/harborline/CruiseLink/services"
	"github.com/harborline/CruiseLink/utils"
	"github.com/redis/go-redis/v9"
)

// AggregateCache is the redis-backed per-profile dashboard cache with
// TTL expiry. All entries for a profile hang off one key, so
// InvalidateProfile is the single entry point every state-mutating
// operation goes through.
type AggregateCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAggregateCache builds the cache. ttl bounds staleness between
// invalidations.
func NewAggregateCache(client *redis.Client, ttl time.Duration) *AggregateCache {
	return &AggregateCache{client: client, ttl: ttl}
}

func aggregateKey(profileID uint) string {
	return fmt.Sprintf("cruiselink:aggregate:%d", profileID)
}

// GetAggregate returns the cached dashboard payload for a profile.
func (c *AggregateCache) GetAggregate(profileID uint) ([]byte, bool) {
	payload, err := c.client.Get(context.Background(), aggregateKey(profileID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			utils.LogError("Aggregate cache read failed for profile %d: %v", profileID, err)
		}
		return nil, false
	}
	return payload, true
}

// SetAggregate stores a dashboard payload with TTL expiry.
func (c *AggregateCache) SetAggregate(profileID uint, payload []byte) {
	if err := c.client.Set(context.Background(), aggregateKey(profileID), payload, c.ttl).Err(); err != nil {
		utils.LogError("Aggregate cache write failed for profile %d: %v", profileID, err)
	}
}

// InvalidateProfile drops the cached aggregate for a profile. Failures
// are logged and swallowed: the TTL bounds staleness either way.
func (c *AggregateCache) InvalidateProfile(profileID uint) {
	if err := c.client.Del(context.Background(), aggregateKey(profileID)).Err(); err != nil {
		utils.LogError("Aggregate cache invalidation failed for profile %d: %v", profileID, err)
	}
}

// SettlementLocker serializes settlement runs with redis advisory locks.
type SettlementLocker struct {
	locker *redislock.Client
	ttl    time.Duration
}

// NewSettlementLocker builds the locker.
func NewSettlementLocker(client *redis.Client, ttl time.Duration) *SettlementLocker {
	return &SettlementLocker{locker: redislock.New(client), ttl: ttl}
}

// Lock obtains the advisory lock for a settlement key, returning a
// release func. A held key maps to services.ErrLockBusy.
func (l *SettlementLocker) Lock(key string) (func(), error) {
	ctx := context.Background()
	lock, err := l.locker.Obtain(ctx, key, l.ttl, nil)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, services.ErrLockBusy
		}
		return nil, err
	}
	return func() {
		if err := lock.Release(ctx); err != nil {
			utils.LogError("Failed to release settlement lock %s: %v", key, err)
		}
	}, nil
}

var _ services.AggregateCache = (*AggregateCache)(nil)
var _ services.SettlementLocker = (*SettlementLocker)(nil)

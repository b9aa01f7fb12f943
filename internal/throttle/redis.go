package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "cooldown:"

// RedisTracker is a Tracker backed by Redis, for deployments where the
// cooldown window must hold across replicas. Entries expire server-side via
// TTL, so Active is a bare existence check.
type RedisTracker struct {
	client *redis.Client
	window time.Duration
}

// NewRedisTracker creates a RedisTracker using the given client and
// cooldown window.
func NewRedisTracker(client *redis.Client, window time.Duration) *RedisTracker {
	return &RedisTracker{client: client, window: window}
}

// Active implements Tracker.
func (t *RedisTracker) Active(ctx context.Context, identity string, _ time.Time) (bool, error) {
	n, err := t.client.Exists(ctx, redisKeyPrefix+identity).Result()
	if err != nil {
		return false, fmt.Errorf("cooldown exists %s: %w", identity, err)
	}
	return n > 0, nil
}

// Record implements Tracker.
func (t *RedisTracker) Record(ctx context.Context, identity string, now time.Time) error {
	err := t.client.Set(ctx, redisKeyPrefix+identity, now.Unix(), t.window).Err()
	if err != nil {
		return fmt.Errorf("cooldown set %s: %w", identity, err)
	}
	return nil
}

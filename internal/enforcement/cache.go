// Package enforcement provides a Redis-backed fast path for the checks hot
// request paths make on every post ("is this user banned/silenced right
// now"). The cache mirrors the user flag projection; Postgres remains the
// source of truth and callers treat every cache error as a miss.
package enforcement

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"github.com/google/uuid"
)

var lookupDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "tribune_enforcement_lookup_duration_ms",
	Help:    "Latency of enforcement cache lookups in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
})

const (
	bannedKeyPrefix   = "enf:banned:"
	silencedKeyPrefix = "enf:silenced:"
)

// Cache stores banned/silenced markers keyed by user id. Temporary states
// carry a TTL equal to the sanction's remaining lifetime so entries expire
// on their own; permanent bans are stored without expiry.
type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// MarkBanned records a ban marker. A zero ttl means permanent.
func (c *Cache) MarkBanned(ctx context.Context, userID uuid.UUID, ttl time.Duration) error {
	return c.client.Set(ctx, bannedKeyPrefix+userID.String(), "1", ttl).Err()
}

// MarkSilenced records a silence marker with the sanction's remaining lifetime.
func (c *Cache) MarkSilenced(ctx context.Context, userID uuid.UUID, ttl time.Duration) error {
	return c.client.Set(ctx, silencedKeyPrefix+userID.String(), "1", ttl).Err()
}

// ClearBanned removes the ban marker after a revoke or reconcile.
func (c *Cache) ClearBanned(ctx context.Context, userID uuid.UUID) error {
	return c.client.Del(ctx, bannedKeyPrefix+userID.String()).Err()
}

// ClearSilenced removes the silence marker.
func (c *Cache) ClearSilenced(ctx context.Context, userID uuid.UUID) error {
	return c.client.Del(ctx, silencedKeyPrefix+userID.String()).Err()
}

// IsBanned checks the ban marker. Returns false on missing keys; errors mean
// the caller should fall back to the user store.
func (c *Cache) IsBanned(ctx context.Context, userID uuid.UUID) (bool, error) {
	return c.exists(ctx, bannedKeyPrefix+userID.String())
}

// IsSilenced checks the silence marker.
func (c *Cache) IsSilenced(ctx context.Context, userID uuid.UUID) (bool, error) {
	return c.exists(ctx, silencedKeyPrefix+userID.String())
}

func (c *Cache) exists(ctx context.Context, key string) (bool, error) {
	start := time.Now()
	defer func() {
		lookupDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	_, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// SummaryCache stores computed workload summaries and audit results as JSON.
// The engine itself never caches; this belongs to the calling layer, which
// also invalidates on every write. A nil receiver disables caching.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSummaryCache wraps a Redis client with a TTL for summary entries.
func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SummaryCache{client: client, ttl: ttl}
}

// Get unmarshals the cached entry into dest, reporting whether it was found.
func (c *SummaryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if c == nil {
		return false, nil
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores the value under key for the configured TTL.
func (c *SummaryCache) Set(ctx context.Context, key string, value interface{}) error {
	if c == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, c.ttl).Err()
}

// InvalidatePrefix removes every key under the given prefix.
func (c *SummaryCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	if c == nil {
		return nil
	}
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

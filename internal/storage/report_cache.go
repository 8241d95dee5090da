package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisReportCache implements ReportCache on Redis. Keys carry a
// keyspace prefix so the cache can share a database with other state.
type RedisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisReportCache creates a report cache with the given TTL.
func NewRedisReportCache(client *redis.Client, ttl time.Duration) *RedisReportCache {
	return &RedisReportCache{client: client, ttl: ttl}
}

func (c *RedisReportCache) key(k string) string {
	return "prism:report:" + k
}

// Get returns the cached payload or nil on a miss.
func (c *RedisReportCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached report: %w", err)
	}
	return val, nil
}

// Set stores the payload under the configured TTL.
func (c *RedisReportCache) Set(ctx context.Context, key string, payload []byte) error {
	if err := c.client.Set(ctx, c.key(key), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache report: %w", err)
	}
	return nil
}

// Invalidate drops the cached payload for a key.
func (c *RedisReportCache) Invalidate(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached report: %w", err)
	}
	return nil
}

// NoopReportCache is used when Redis is not configured; every Get is a
// miss and writes are discarded.
type NoopReportCache struct{}

func (NoopReportCache) Get(ctx context.Context, key string) ([]byte, error)     { return nil, nil }
func (NoopReportCache) Set(ctx context.Context, key string, payload []byte) error { return nil }
func (NoopReportCache) Invalidate(ctx context.Context, key string) error          { return nil }

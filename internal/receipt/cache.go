package receipt

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache remembers parsed receipts by upload content. Implementations treat
// every failure as a miss.
type Cache interface {
	Get(ctx context.Context, key string) (*Receipt, bool)
	Set(ctx context.Context, key string, receipt *Receipt)
}

// contentKey identifies an upload by the SHA-256 of its bytes
func contentKey(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

type noCache struct{}

func (noCache) Get(context.Context, string) (*Receipt, bool) { return nil, false }
func (noCache) Set(context.Context, string, *Receipt)        {}

// RedisCache stores parsed receipts in Redis as JSON
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

const cacheKeyPrefix = "fintrack:receipt:"

// NewRedisCache connects to the Redis server at url
// (redis://[user:pass@]host:port/db). A failing ping is logged, not fatal:
// the cache degrades to misses until the server comes back.
func NewRedisCache(ctx context.Context, url string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		slog.Warn("Redis unavailable, receipt cache will miss", "addr", opt.Addr, "error", err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

// Get returns the cached receipt for key
func (c *RedisCache) Get(ctx context.Context, key string) (*Receipt, bool) {
	data, err := c.client.Get(ctx, cacheKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("Failed to read receipt cache", "key", key, "error", err)
		}
		return nil, false
	}

	var receipt Receipt
	if err := json.Unmarshal(data, &receipt); err != nil {
		slog.Warn("Discarding corrupt cache entry", "key", key, "error", err)
		return nil, false
	}
	return &receipt, true
}

// Set caches receipt under key
func (c *RedisCache) Set(ctx context.Context, key string, receipt *Receipt) {
	data, err := json.Marshal(receipt)
	if err != nil {
		slog.Warn("Failed to marshal receipt for cache", "error", err)
		return
	}
	if err := c.client.Set(ctx, cacheKeyPrefix+key, data, c.ttl).Err(); err != nil {
		slog.Warn("Failed to write receipt cache", "key", key, "error", err)
	}
}

// Close closes the Redis connection pool
func (c *RedisCache) Close() error {
	return c.client.Close()
}

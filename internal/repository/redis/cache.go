package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"shortlink/internal/metrics"
	"shortlink/internal/repository"

	"github.com/redis/go-redis/v9"
)

// CachedStore wraps another MappingStore with a Redis read-through cache.
// This implements the CACHE-ASIDE PATTERN inside the storage layer:
// 1. Check cache first
// 2. If miss, get from the wrapped store
// 3. Store in cache for next time
//
// Mappings never change once written, so cached entries cannot go stale.
// Cache failures are logged and never fail the call.
type CachedStore struct {
	next   repository.MappingStore
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ repository.MappingStore = (*CachedStore)(nil)

// NewCachedStore creates a cache in front of next
func NewCachedStore(next repository.MappingStore, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedStore {
	return &CachedStore{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Get serves from cache when possible and falls back to the wrapped store.
// Not-found results are never cached.
func (c *CachedStore) Get(ctx context.Context, shortCode string) (string, error) {
	cached, err := c.getCached(ctx, shortCode)
	if err != nil {
		c.logger.Warn("Cache lookup failed", "short_code", shortCode, "error", err)
	}
	if cached != "" {
		return cached, nil
	}

	originalURL, err := c.next.Get(ctx, shortCode)
	if err != nil {
		return "", err
	}

	c.setCached(ctx, shortCode, originalURL)
	return originalURL, nil
}

// Put writes through to the wrapped store and primes the cache on success
func (c *CachedStore) Put(ctx context.Context, shortCode, originalURL string) error {
	if err := c.next.Put(ctx, shortCode, originalURL); err != nil {
		return err
	}

	c.setCached(ctx, shortCode, originalURL)
	return nil
}

// getCached returns "" on a cache miss
func (c *CachedStore) getCached(ctx context.Context, shortCode string) (string, error) {
	start := time.Now()
	defer func() {
		metrics.CacheOperationDuration.WithLabelValues("get").Observe(time.Since(start).Seconds())
	}()

	data, err := c.client.Get(ctx, cacheKey(shortCode)).Result()
	if errors.Is(err, redis.Nil) {
		// Cache miss - not an error, just not found
		metrics.RecordCacheMiss()
		return "", nil
	}
	if err != nil {
		metrics.RecordCacheMiss()
		return "", fmt.Errorf("redis get error: %w", err)
	}

	metrics.RecordCacheHit()
	return data, nil
}

func (c *CachedStore) setCached(ctx context.Context, shortCode, originalURL string) {
	start := time.Now()
	defer func() {
		metrics.CacheOperationDuration.WithLabelValues("set").Observe(time.Since(start).Seconds())
	}()

	// TTL keeps the cache bounded; the wrapped store stays the source of truth
	if err := c.client.Set(ctx, cacheKey(shortCode), originalURL, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to cache URL", "short_code", shortCode, "error", err)
	}
}

// Key naming convention: "url:{shortCode}"
func cacheKey(shortCode string) string {
	return fmt.Sprintf("url:%s", shortCode)
}

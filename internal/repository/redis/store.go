package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shortlink/internal/domain"
	"shortlink/internal/metrics"
	"shortlink/internal/repository"

	"github.com/redis/go-redis/v9"
)

const backend = "redis"

// Store keeps mappings as plain Redis strings without expiry.
// SETNX makes Put atomic across every client of the same Redis.
type Store struct {
	client *redis.Client
}

var _ repository.MappingStore = (*Store)(nil)

// NewStore creates a Redis-backed mapping store
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Get returns the URL stored under shortCode
func (s *Store) Get(ctx context.Context, shortCode string) (string, error) {
	start := time.Now()

	originalURL, err := s.client.Get(ctx, mappingKey(shortCode)).Result()
	if errors.Is(err, redis.Nil) {
		metrics.ObserveStore(backend, "get", start, nil)
		return "", domain.ErrMappingNotFound
	}
	if err != nil {
		metrics.ObserveStore(backend, "get", start, err)
		return "", fmt.Errorf("redis get error: %w", err)
	}

	metrics.ObserveStore(backend, "get", start, nil)
	return originalURL, nil
}

// Put stores the mapping only if the key does not exist yet
func (s *Store) Put(ctx context.Context, shortCode, originalURL string) error {
	start := time.Now()

	created, err := s.client.SetNX(ctx, mappingKey(shortCode), originalURL, 0).Result()
	if err != nil {
		metrics.ObserveStore(backend, "put", start, err)
		return fmt.Errorf("redis setnx error: %w", err)
	}

	metrics.ObserveStore(backend, "put", start, nil)
	if !created {
		return domain.ErrShortCodeExists
	}
	return nil
}

// Key naming convention: "mapping:{shortCode}"
// Kept apart from the cache's "url:" keys so both can share one database.
func mappingKey(shortCode string) string {
	return fmt.Sprintf("mapping:%s", shortCode)
}

package memory

import (
	"context"
	"sync"
	"time"

	"shortlink/internal/domain"
	"shortlink/internal/metrics"
	"shortlink/internal/repository"
)

const backend = "memory"

// Store keeps mappings in a map for the lifetime of the process.
// The mutex is held only for the map operation itself.
type Store struct {
	mu   sync.RWMutex
	urls map[string]string
}

var _ repository.MappingStore = (*Store)(nil)

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		urls: make(map[string]string),
	}
}

// Get returns the URL stored under shortCode
func (s *Store) Get(_ context.Context, shortCode string) (string, error) {
	start := time.Now()
	defer metrics.ObserveStore(backend, "get", start, nil)

	s.mu.RLock()
	defer s.mu.RUnlock()

	originalURL, ok := s.urls[shortCode]
	if !ok {
		return "", domain.ErrMappingNotFound
	}
	return originalURL, nil
}

// Put inserts the mapping unless shortCode is already present.
// Lookup and insert happen under one lock acquisition.
func (s *Store) Put(_ context.Context, shortCode, originalURL string) error {
	start := time.Now()
	defer metrics.ObserveStore(backend, "put", start, nil)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.urls[shortCode]; ok {
		return domain.ErrShortCodeExists
	}
	s.urls[shortCode] = originalURL
	return nil
}

// Len returns the number of stored mappings
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.urls)
}

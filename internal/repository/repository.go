package repository

import (
	"context"
)

// MappingStore defines the interface for short code -> URL storage
// This is the "Repository Pattern" - it abstracts data storage, so the
// service runs unchanged against PostgreSQL, Redis, MongoDB or memory.
//
// Implementations own their synchronization. Put must be atomic per short
// code: when two callers race on the same code, exactly one succeeds and the
// other gets domain.ErrShortCodeExists. Callers must never emulate this with
// a lookup followed by an insert.
type MappingStore interface {
	// Get returns the original URL stored for shortCode.
	// Returns domain.ErrMappingNotFound when no mapping exists.
	Get(ctx context.Context, shortCode string) (string, error)

	// Put stores originalURL under shortCode if the code is unused.
	// Returns domain.ErrShortCodeExists when the code is already taken.
	Put(ctx context.Context, shortCode, originalURL string) error
}

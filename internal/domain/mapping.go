package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Mapping represents a shortened URL in our system
// A mapping is created once and never mutated afterwards
type Mapping struct {
	ShortCode   string    // The short identifier (e.g., "aB3xY9"), primary key
	OriginalURL string    // The full URL to redirect to, stored verbatim
	CreatedAt   time.Time // When the mapping was created
	ShortURL    string    // ShortCode composed with the base URL, never persisted
}

// Errors surfaced by the service layer.
// Handlers classify them with errors.Is to pick a status code.
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrAliasCollision = errors.New("short code already in use")
	ErrNotFound       = errors.New("short code not found")
	ErrStorage        = errors.New("storage failure")
)

// Errors returned by MappingStore implementations.
// The service translates these into the errors above.
var (
	ErrMappingNotFound = errors.New("mapping not found")
	ErrShortCodeExists = errors.New("short code exists")
)

// NewMapping creates a mapping stamped with the current time
func NewMapping(shortCode, originalURL string) *Mapping {
	return &Mapping{
		ShortCode:   shortCode,
		OriginalURL: originalURL,
		CreatedAt:   time.Now(),
	}
}

// WithBaseURL sets ShortURL to "<baseURL>/<shortCode>"
func (m *Mapping) WithBaseURL(baseURL string) *Mapping {
	m.ShortURL = fmt.Sprintf("%s/%s", strings.TrimRight(baseURL, "/"), m.ShortCode)
	return m
}

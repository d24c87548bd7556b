package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"shortlink/internal/domain"
	"shortlink/internal/metrics"
	"shortlink/internal/repository"
	"shortlink/pkg/validator"
)

// DefaultMaxAttempts is how many codes Shorten tries before reporting a collision
const DefaultMaxAttempts = 3

// Options configures a ShortenerService
type Options struct {
	// BaseURL is prefixed to the code to build the short link (e.g. "https://sho.rt")
	BaseURL string
	// MaxAttempts bounds code regeneration on collision.
	// 1 means the first collision is reported to the caller.
	MaxAttempts int
}

// ShortenerService handles business logic for short links
// This is the SERVICE LAYER - it sits between HTTP handlers and the store.
// It never caches mappings itself; caching belongs to the store.
type ShortenerService struct {
	store       repository.MappingStore
	codes       CodeGenerator
	baseURL     string
	maxAttempts int
	logger      *slog.Logger
}

// NewShortenerService creates a new shortener service
func NewShortenerService(store repository.MappingStore, codes CodeGenerator, opts Options, logger *slog.Logger) *ShortenerService {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ShortenerService{
		store:       store,
		codes:       codes,
		baseURL:     opts.BaseURL,
		maxAttempts: opts.MaxAttempts,
		logger:      logger,
	}
}

// Shorten creates a new mapping for originalURL
// 1. Validate the URL
// 2. Generate a random code
// 3. Ask the store to insert it; on collision go back to 2
//
// Errors: domain.ErrInvalidInput, domain.ErrAliasCollision, domain.ErrStorage.
func (s *ShortenerService) Shorten(ctx context.Context, originalURL string) (*domain.Mapping, error) {
	if err := validator.ValidateURL(originalURL); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		code, err := s.codes.Generate()
		if err != nil {
			return nil, fmt.Errorf("failed to generate short code: %w", err)
		}

		err = s.store.Put(ctx, code, originalURL)
		switch {
		case err == nil:
			metrics.RecordShortLinkCreated()
			mapping := domain.NewMapping(code, originalURL).WithBaseURL(s.baseURL)
			s.logger.Info("Short link created",
				"short_code", code,
				"original_url", originalURL,
				"attempt", attempt,
			)
			return mapping, nil

		case errors.Is(err, domain.ErrShortCodeExists):
			metrics.RecordAliasCollision()
			s.logger.Warn("Short code collision",
				"short_code", code,
				"attempt", attempt,
				"max_attempts", s.maxAttempts,
			)

		default:
			return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
		}
	}

	return nil, fmt.Errorf("%w: no free code after %d attempts", domain.ErrAliasCollision, s.maxAttempts)
}

// Resolve returns the original URL for shortCode
// The code is opaque and looked up verbatim. Codes that could never have been
// generated (invalid UTF-8, NUL bytes) are rejected without a store call;
// several backends refuse such strings outright.
//
// Errors: domain.ErrNotFound, domain.ErrStorage.
func (s *ShortenerService) Resolve(ctx context.Context, shortCode string) (string, error) {
	if !utf8.ValidString(shortCode) || strings.ContainsRune(shortCode, 0) {
		return "", fmt.Errorf("%w: %q", domain.ErrNotFound, shortCode)
	}

	originalURL, err := s.store.Get(ctx, shortCode)
	if err != nil {
		if errors.Is(err, domain.ErrMappingNotFound) {
			return "", fmt.Errorf("%w: %s", domain.ErrNotFound, shortCode)
		}
		return "", fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}

	metrics.RecordRedirect()
	return originalURL, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shortlink/internal/domain"
	"shortlink/internal/metrics"
	"shortlink/internal/repository"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const backend = "postgres"

// DB is the subset of *pgxpool.Pool the repository needs.
// Accepting it as an interface lets tests substitute pgxmock.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// urlRepository is the PostgreSQL implementation of repository.MappingStore
// Uniqueness is enforced by the primary key on urls.short_code, so
// concurrent inserts of the same code are serialized by the database.
type urlRepository struct {
	db DB
}

// NewURLRepository creates a new PostgreSQL mapping store
func NewURLRepository(db DB) repository.MappingStore {
	return &urlRepository{db: db}
}

// Get retrieves the original URL for a short code
func (r *urlRepository) Get(ctx context.Context, shortCode string) (string, error) {
	start := time.Now()
	query := `SELECT original_url FROM urls WHERE short_code = $1`

	var originalURL string
	err := r.db.QueryRow(ctx, query, shortCode).Scan(&originalURL)
	if err != nil {
		// pgx.ErrNoRows is returned when no rows match the query
		// A code Postgres cannot even encode cannot be stored either
		if errors.Is(err, pgx.ErrNoRows) || isCharacterNotInRepertoire(err) {
			metrics.ObserveStore(backend, "get", start, nil)
			return "", domain.ErrMappingNotFound
		}
		metrics.ObserveStore(backend, "get", start, err)
		return "", fmt.Errorf("failed to get URL: %w", err)
	}

	metrics.ObserveStore(backend, "get", start, nil)
	return originalURL, nil
}

// Put inserts a new mapping
// A unique_violation on the primary key means the code is taken; any other
// failure is reported as-is.
func (r *urlRepository) Put(ctx context.Context, shortCode, originalURL string) error {
	start := time.Now()
	query := `INSERT INTO urls (short_code, original_url) VALUES ($1, $2)`

	_, err := r.db.Exec(ctx, query, shortCode, originalURL)
	if err != nil {
		if isUniqueViolation(err) {
			metrics.ObserveStore(backend, "put", start, nil)
			return domain.ErrShortCodeExists
		}
		metrics.ObserveStore(backend, "put", start, err)
		return fmt.Errorf("failed to create URL: %w", err)
	}

	metrics.ObserveStore(backend, "put", start, nil)
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func isCharacterNotInRepertoire(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CharacterNotInRepertoire
}

// InitDB initializes the database connection pool
// This is called once at application startup
func InitDB(ctx context.Context, dsn string, maxConns, minConns int, maxLifetime time.Duration) (*pgxpool.Pool, error) {
	// Parse the connection string and create a config
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = int32(maxConns)
	config.MinConns = int32(minConns)
	config.MaxConnLifetime = maxLifetime
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

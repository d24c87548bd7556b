package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported mapping store backends
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendMongoDB  = "mongodb"
)

// Config holds all application configuration
// It is built once at startup and passed explicitly to constructors.
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Mongo    MongoConfig
	App      AppConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// StoreConfig selects the mapping store
type StoreConfig struct {
	Backend      string // postgres, memory, redis or mongodb
	CacheEnabled bool   // put a Redis read-through cache in front of the backend
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	URL             string // full connection string; wins over the individual fields
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	RunMigrations   bool
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// MongoConfig holds MongoDB connection settings
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Environment       string
	LogLevel          string
	LogFile           string
	BaseURL           string
	ShortCodeLength   int
	MaxAttempts       int
	RedirectPermanent bool
	EnableMetrics     bool
}

// Load reads configuration from environment variables
// A .env file in the working directory is loaded first if present;
// variables already set in the environment take precedence over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port := getEnv("SERVER_PORT", "3000")

	cfg := &Config{
		Server: ServerConfig{
			Port:            port,
			ReadTimeout:     parseDuration("SERVER_READ_TIMEOUT", "10s"),
			WriteTimeout:    parseDuration("SERVER_WRITE_TIMEOUT", "10s"),
			IdleTimeout:     parseDuration("SERVER_IDLE_TIMEOUT", "120s"),
			ShutdownTimeout: parseDuration("SERVER_SHUTDOWN_TIMEOUT", "30s"),
		},
		Store: StoreConfig{
			Backend:      strings.ToLower(getEnv("STORE_BACKEND", BackendPostgres)),
			CacheEnabled: parseBool("CACHE_ENABLED", false),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "shortlink"),
			Password:        getEnv("DB_PASSWORD", "dev_password_123"),
			DBName:          getEnv("DB_NAME", "shortlink"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    parseInt("DB_MAX_OPEN_CONNS", 5),
			MaxIdleConns:    parseInt("DB_MAX_IDLE_CONNS", 1),
			ConnMaxLifetime: parseDuration("DB_CONN_MAX_LIFETIME", "5m"),
			RunMigrations:   parseBool("DB_RUN_MIGRATIONS", true),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt("REDIS_DB", 0),
			CacheTTL: parseDuration("REDIS_CACHE_TTL", "1h"),
		},
		Mongo: MongoConfig{
			URI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database:   getEnv("MONGO_DATABASE", "shortlink"),
			Collection: getEnv("MONGO_COLLECTION", "urls"),
		},
		App: AppConfig{
			Environment:       getEnv("APP_ENV", "development"),
			LogLevel:          getEnv("LOG_LEVEL", "info"),
			LogFile:           getEnv("LOG_FILE", ""),
			BaseURL:           strings.TrimRight(getEnv("BASE_URL", "http://127.0.0.1:"+port), "/"),
			ShortCodeLength:   parseInt("SHORT_CODE_LENGTH", 6),
			MaxAttempts:       parseInt("SHORTEN_MAX_ATTEMPTS", 3),
			RedirectPermanent: parseBool("REDIRECT_PERMANENT", true),
			EnableMetrics:     parseBool("ENABLE_METRICS", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Backend {
	case BackendPostgres, BackendMemory, BackendRedis, BackendMongoDB:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend))
	}

	if c.App.BaseURL == "" {
		errs = append(errs, errors.New("BASE_URL must not be empty"))
	}
	// urls.short_code is VARCHAR(16)
	if c.App.ShortCodeLength <= 0 || c.App.ShortCodeLength > 16 {
		errs = append(errs, fmt.Errorf("SHORT_CODE_LENGTH must be between 1 and 16, got %d", c.App.ShortCodeLength))
	}
	if c.Store.CacheEnabled && c.Redis.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("REDIS_CACHE_TTL must be positive when CACHE_ENABLED is set, got %s", c.Redis.CacheTTL))
	}
	if c.App.MaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("SHORTEN_MAX_ATTEMPTS must be positive, got %d", c.App.MaxAttempts))
	}

	return errors.Join(errs...)
}

// DatabaseDSN returns the PostgreSQL connection string
// DATABASE_URL is used verbatim when set; otherwise a keyword/value DSN is built.
func (c *DatabaseConfig) DatabaseDSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// RedisAddr returns the Redis address in host:port format
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// NeedsRedis reports whether the selected backend or the cache uses Redis
func (c *Config) NeedsRedis() bool {
	return c.Store.Backend == BackendRedis || c.Store.CacheEnabled
}

// Helper functions to parse environment variables with defaults

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func parseBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func parseDuration(key string, defaultValue string) time.Duration {
	value := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		// If parsing fails, parse the default value
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}

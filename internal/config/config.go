package config

import (
	"fmt"
	"time"

	"golang.org/x/text/language"

	pkgconfig "github.com/utafrali/storefront/pkg/config"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort           int      `env:"STOREFRONT_HTTP_PORT" envDefault:"8010"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Product feed
	ProductsURL          string        `env:"PRODUCTS_URL" envDefault:"https://equalexperts.github.io/frontend-take-home-test-data/products.json"`
	ProductsFetchTimeout time.Duration `env:"PRODUCTS_FETCH_TIMEOUT" envDefault:"10s"`
	ProductsMaxRetries   int           `env:"PRODUCTS_MAX_RETRIES" envDefault:"2"`

	// Catalogue
	PageSize          int          `env:"CATALOGUE_PAGE_SIZE" envDefault:"8"`
	Locale            language.Tag `env:"CATALOGUE_LOCALE" envDefault:"en"`
	TopRatedThreshold float64      `env:"TOP_RATED_THRESHOLD" envDefault:"4.5"`
	MaxSessions       int          `env:"MAX_SESSIONS" envDefault:"10000"`

	// Storage
	StorageBackend  string `env:"STORAGE_BACKEND" envDefault:"memory"`
	StoragePrefix   string `env:"STORAGE_PREFIX" envDefault:"ee-plp"`
	StorageTTLHours int    `env:"STORAGE_TTL_HOURS" envDefault:"0"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// PostgreSQL
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"storefront"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"storefront"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"storefront"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	// Kafka. Empty disables event publishing.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg, err := pkgconfig.Parse[Config]()
	if err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// StorageTTL returns the key expiry for the redis backend, zero for none.
func (c *Config) StorageTTL() time.Duration {
	return time.Duration(c.StorageTTLHours) * time.Hour
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.ProductsURL == "" {
		return fmt.Errorf("PRODUCTS_URL is required")
	}
	if c.ProductsMaxRetries < 0 {
		return fmt.Errorf("PRODUCTS_MAX_RETRIES must not be negative")
	}
	if c.PageSize < 1 {
		return fmt.Errorf("CATALOGUE_PAGE_SIZE must be at least 1, got %d", c.PageSize)
	}
	if c.TopRatedThreshold < 0 || c.TopRatedThreshold > 5 {
		return fmt.Errorf("TOP_RATED_THRESHOLD must be between 0 and 5")
	}
	switch c.StorageBackend {
	case BackendMemory, BackendRedis, BackendPostgres:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.StoragePrefix == "" {
		return fmt.Errorf("STORAGE_PREFIX is required")
	}
	if c.StorageTTLHours < 0 {
		return fmt.Errorf("STORAGE_TTL_HOURS must not be negative")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresConfig holds PostgreSQL connection configuration.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration

	// SlowQueryThreshold enables slow statement warnings when positive.
	SlowQueryThreshold time.Duration
}

// DefaultPostgresConfig returns pool defaults sized for a key/value workload:
// every statement is a single-row read or upsert.
func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		Host:               "localhost",
		Port:               5432,
		User:               "storefront",
		Password:           "storefront",
		DBName:             "storefront",
		SSLMode:            "disable",
		MaxConns:           10,
		MinConns:           1,
		MaxConnLifetime:    time.Hour,
		MaxConnIdleTime:    30 * time.Minute,
		SlowQueryThreshold: 200 * time.Millisecond,
	}
}

// DSN returns the PostgreSQL connection string.
func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// poolConfig translates cfg into a pgxpool config with the query tracer
// installed.
func (c *PostgresConfig) poolConfig(logger *slog.Logger) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(c.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	pc.MaxConns = c.MaxConns
	pc.MinConns = c.MinConns
	pc.MaxConnLifetime = c.MaxConnLifetime
	pc.MaxConnIdleTime = c.MaxConnIdleTime
	pc.ConnConfig.Tracer = &QueryTracer{SlowThreshold: c.SlowQueryThreshold, Logger: logger}
	return pc, nil
}

// NewPostgresPool connects a pool and pings it, retrying startup failures
// with exponential backoff. logger may be nil.
func NewPostgresPool(ctx context.Context, cfg *PostgresConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	pc, err := cfg.poolConfig(logger)
	if err != nil {
		return nil, err
	}

	var pool *pgxpool.Pool
	err = withStartupRetry(ctx, logger, "postgres connection", always, func() error {
		p, err := pgxpool.NewWithConfig(ctx, pc)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return err
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres at %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return pool, nil
}

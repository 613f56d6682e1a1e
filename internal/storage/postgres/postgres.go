// Package postgres stores snapshots as JSONB rows keyed by the full storage
// key.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/utafrali/storefront/internal/storage"
	"github.com/utafrali/storefront/pkg/database"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the schema files for RunMigrations.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(fmt.Sprintf("postgres migrations: %v", err))
	}
	return sub
}

// DB is the subset of a pgx pool the backend needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

const (
	loadQuery   = `SELECT value FROM storage_entries WHERE key = $1`
	saveQuery   = `INSERT INTO storage_entries (key, value, updated_at) VALUES ($1, $2, NOW()) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	deleteQuery = `DELETE FROM storage_entries WHERE key = $1`
)

// Backend implements storage.Backend on PostgreSQL.
type Backend struct {
	db DB
}

// New creates a Postgres backend. The schema must already exist; see Migrate.
// Statement spans come from the pool's database.QueryTracer.
func New(db DB) *Backend {
	return &Backend{db: db}
}

// Migrate creates the storage table if needed.
func Migrate(ctx context.Context, db database.MigrationDB, logger *slog.Logger) error {
	if err := database.RunMigrations(ctx, db, Migrations(), logger); err != nil {
		return fmt.Errorf("migrate storage schema: %w", err)
	}
	return nil
}

// Load returns the stored JSON for key.
func (b *Backend) Load(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	if err := b.db.QueryRow(ctx, loadQuery, key).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("load entry %s: %w", key, err)
	}
	return data, nil
}

// Save upserts the value for key.
func (b *Backend) Save(ctx context.Context, key string, data []byte) error {
	if _, err := b.db.Exec(ctx, saveQuery, key, data); err != nil {
		return fmt.Errorf("save entry %s: %w", key, err)
	}
	return nil
}

// Delete removes the row for key.
func (b *Backend) Delete(ctx context.Context, key string) error {
	if _, err := b.db.Exec(ctx, deleteQuery, key); err != nil {
		return fmt.Errorf("delete entry %s: %w", key, err)
	}
	return nil
}

// Ping checks the connection.
func (b *Backend) Ping(ctx context.Context) error {
	return b.db.Ping(ctx)
}

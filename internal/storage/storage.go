// Package storage is the durable key/value store behind the cart and the
// wishlist. Values are JSON snapshots kept under a namespaced key. Read and
// write failures never reach callers: a failed read looks like an absent
// value and a failed write is logged and counted.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"

	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/tracing"
)

// DefaultPrefix namespaces every key written by the storefront.
const DefaultPrefix = "ee-plp"

// ErrNotFound is returned by a Backend when a key was never written.
var ErrNotFound = errors.New("storage: key not found")

// Backend is a raw byte store. Implementations must be safe for concurrent use.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

var failures = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_storage_failures_total",
		Help: "Storage operations that failed and were absorbed.",
	},
	[]string{"op"},
)

// Store reads and writes JSON values under a key prefix.
type Store struct {
	backend Backend
	prefix  string
	logger  *slog.Logger
}

// New returns a store writing under prefix. An empty prefix falls back to
// DefaultPrefix and a nil logger discards diagnostics.
func New(backend Backend, prefix string, l *slog.Logger) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if l == nil {
		l = logger.Discard()
	}
	return &Store{backend: backend, prefix: prefix, logger: l}
}

// Namespace returns a store sharing the backend whose keys live under
// "<prefix>:<sub>".
func (s *Store) Namespace(sub string) *Store {
	return &Store{backend: s.backend, prefix: s.prefix + ":" + sub, logger: s.logger}
}

// Prefix returns the key prefix.
func (s *Store) Prefix() string {
	return s.prefix
}

// Key returns the full backend key for key.
func (s *Store) Key(key string) string {
	return s.prefix + ":" + key
}

// Get decodes the value stored under key into dst. It reports false when the
// key is absent, the backend fails or the stored value does not decode.
func (s *Store) Get(ctx context.Context, key string, dst any) bool {
	full := s.Key(key)
	ctx, span := tracing.Start(ctx, "storage.Get", attribute.String("storage.key", full))
	defer span.End()

	data, err := s.backend.Load(ctx, full)
	if errors.Is(err, ErrNotFound) {
		return false
	}
	if err != nil {
		tracing.Fail(span, err)
		s.fail(ctx, "get", full, err)
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		err = fmt.Errorf("decode %s: %w", full, err)
		tracing.Fail(span, err)
		s.fail(ctx, "decode", full, err)
		return false
	}
	return true
}

// Set stores value under key as JSON.
func (s *Store) Set(ctx context.Context, key string, value any) {
	full := s.Key(key)
	ctx, span := tracing.Start(ctx, "storage.Set", attribute.String("storage.key", full))
	defer span.End()

	data, err := json.Marshal(value)
	if err != nil {
		err = fmt.Errorf("encode %s: %w", full, err)
		tracing.Fail(span, err)
		s.fail(ctx, "encode", full, err)
		return
	}
	if err := s.backend.Save(ctx, full, data); err != nil {
		tracing.Fail(span, err)
		s.fail(ctx, "set", full, err)
	}
}

// Remove deletes key. Removing an absent key is not a failure.
func (s *Store) Remove(ctx context.Context, key string) {
	full := s.Key(key)
	ctx, span := tracing.Start(ctx, "storage.Remove", attribute.String("storage.key", full))
	defer span.End()

	if err := s.backend.Delete(ctx, full); err != nil && !errors.Is(err, ErrNotFound) {
		tracing.Fail(span, err)
		s.fail(ctx, "remove", full, err)
	}
}

// Ping checks that the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

func (s *Store) fail(ctx context.Context, op, key string, err error) {
	failures.WithLabelValues(op).Inc()
	s.logger.WarnContext(ctx, "storage operation failed",
		slog.String("op", op),
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
}

// FailuresCounter exposes the failure counter for op, for tests and dashboards
// that read it directly.
func FailuresCounter(op string) prometheus.Counter {
	return failures.WithLabelValues(op)
}

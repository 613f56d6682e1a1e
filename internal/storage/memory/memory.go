// Package memory is an in-process storage backend.
package memory

import (
	"context"
	"sync"

	"github.com/utafrali/storefront/internal/storage"
)

// Backend keeps values in a map. Stored slices are copied on the way in and
// out.
type Backend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New creates an empty backend.
func New() *Backend {
	return &Backend{data: make(map[string][]byte)}
}

// Load returns the value for key or storage.ErrNotFound.
func (b *Backend) Load(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	v, ok := b.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Save overwrites the value for key.
func (b *Backend) Save(_ context.Context, key string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.data[key] = append([]byte(nil), data...)
	return nil
}

// Delete removes key.
func (b *Backend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.data, key)
	return nil
}

// Ping always succeeds.
func (b *Backend) Ping(context.Context) error {
	return nil
}

// Len returns the number of stored keys.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}

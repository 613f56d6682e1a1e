// Package wishlist implements the saved-products set.
package wishlist

import (
	"context"
	"log/slog"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/storage"
	"github.com/utafrali/storefront/pkg/logger"
)

// StorageKey is the key the wishlist snapshot is stored under.
const StorageKey = "wishlist"

// Observer is called with the wishlist contents after every write-through.
type Observer func(ctx context.Context, products []domain.Product)

// Option configures a Set.
type Option func(*Set)

// WithObserver registers fn to be notified after each change.
func WithObserver(fn Observer) Option {
	return func(s *Set) { s.observers = append(s.observers, fn) }
}

// WithLogger sets the set's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Set) { s.logger = logger }
}

// Set holds at most one entry per product id, in insertion order.
type Set struct {
	mu        sync.RWMutex
	items     []domain.Product
	store     *storage.Store
	logger    *slog.Logger
	observers []Observer
}

// New creates a wishlist hydrated from store.
func New(ctx context.Context, store *storage.Store, opts ...Option) *Set {
	s := &Set{store: store, logger: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}

	var stored []domain.Product
	if store.Get(ctx, StorageKey, &stored) {
		for _, p := range stored {
			if s.indexOf(p.ID) < 0 {
				s.items = append(s.items, p)
			}
		}
	}
	s.logger.DebugContext(ctx, "wishlist hydrated", slog.Int("items", len(s.items)))
	return s
}

// ToggleWishlistItem adds product when absent and removes it when present.
// It returns true when the product was added.
func (s *Set) ToggleWishlistItem(ctx context.Context, product domain.Product) bool {
	s.mu.Lock()
	added := false
	if i := s.indexOf(product.ID); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	} else {
		s.items = append(s.items, product)
		added = true
	}

	s.logger.InfoContext(ctx, "wishlist toggled",
		slog.Int("product_id", product.ID),
		slog.Bool("added", added),
	)
	snap := s.persist(ctx)
	s.mu.Unlock()

	s.notify(ctx, snap)
	return added
}

// RemoveWishlistItem removes productID if present.
func (s *Set) RemoveWishlistItem(ctx context.Context, productID int) {
	s.mu.Lock()
	if i := s.indexOf(productID); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
	s.logger.InfoContext(ctx, "wishlist item removed", slog.Int("product_id", productID))
	snap := s.persist(ctx)
	s.mu.Unlock()

	s.notify(ctx, snap)
}

// ClearWishlist empties the set.
func (s *Set) ClearWishlist(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	s.logger.InfoContext(ctx, "wishlist cleared")
	snap := s.persist(ctx)
	s.mu.Unlock()

	s.notify(ctx, snap)
}

// IsInWishlist reports membership of productID.
func (s *Set) IsInWishlist(productID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(productID) >= 0
}

// Items returns a copy of the saved products.
func (s *Set) Items() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// TotalItems returns the number of saved products.
func (s *Set) TotalItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Set) indexOf(productID int) int {
	for i := range s.items {
		if s.items[i].ID == productID {
			return i
		}
	}
	return -1
}

func (s *Set) snapshot() []domain.Product {
	out := make([]domain.Product, len(s.items))
	copy(out, s.items)
	return out
}

// persist stores the set under mu and returns the stored snapshot.
func (s *Set) persist(ctx context.Context) []domain.Product {
	snap := s.snapshot()
	s.store.Set(ctx, StorageKey, snap)
	return snap
}

// notify runs observers outside mu.
func (s *Set) notify(ctx context.Context, snap []domain.Product) {
	for _, fn := range s.observers {
		fn(ctx, snap)
	}
}

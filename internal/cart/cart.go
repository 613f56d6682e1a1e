// Package cart implements the cart ledger: per-product quantities with
// write-through persistence of the whole cart on every change.
package cart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/storage"
	"github.com/utafrali/storefront/pkg/logger"
)

// StorageKey is the key the cart snapshot is stored under.
const StorageKey = "cart"

// MaxQuantity caps the quantity of a single entry. Adds beyond it are
// ignored and larger updates are clamped to it.
const MaxQuantity = 99

// Observer is called with the cart contents after every write-through.
type Observer func(ctx context.Context, entries []domain.CartEntry)

// Option configures a Ledger.
type Option func(*Ledger)

// WithObserver registers fn to be notified after each change.
func WithObserver(fn Observer) Option {
	return func(l *Ledger) { l.observers = append(l.observers, fn) }
}

// WithLogger sets the ledger's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// Ledger owns the cart entries. It is safe for concurrent use.
type Ledger struct {
	mu        sync.RWMutex
	entries   []domain.CartEntry
	store     *storage.Store
	logger    *slog.Logger
	observers []Observer
}

// New creates a ledger and hydrates it from store. A missing or unreadable
// snapshot yields an empty cart.
func New(ctx context.Context, store *storage.Store, opts ...Option) *Ledger {
	l := &Ledger{store: store, logger: logger.Discard()}
	for _, opt := range opts {
		opt(l)
	}

	var stored []domain.CartEntry
	if store.Get(ctx, StorageKey, &stored) {
		l.entries = sanitize(stored)
	}
	l.logger.DebugContext(ctx, "cart hydrated", slog.Int("entries", len(l.entries)))
	return l
}

// sanitize drops non-positive quantities and repeated product ids, and
// clamps quantities above MaxQuantity.
func sanitize(in []domain.CartEntry) []domain.CartEntry {
	out := make([]domain.CartEntry, 0, len(in))
	for _, e := range in {
		if e.Quantity <= 0 || domain.FindEntryIndex(out, e.Product.ID) >= 0 {
			continue
		}
		e.Quantity = min(e.Quantity, MaxQuantity)
		out = append(out, e)
	}
	return out
}

// AddItem adds one unit of product, creating the entry if needed. An entry
// already at MaxQuantity stays there.
func (l *Ledger) AddItem(ctx context.Context, product domain.Product) {
	l.mu.Lock()
	if i := domain.FindEntryIndex(l.entries, product.ID); i >= 0 {
		l.entries[i].Quantity = min(l.entries[i].Quantity+1, MaxQuantity)
	} else {
		l.entries = append(l.entries, domain.CartEntry{Product: product, Quantity: 1})
	}
	l.logger.InfoContext(ctx, "cart item added", slog.Int("product_id", product.ID))
	snap := l.persist(ctx)
	l.mu.Unlock()

	l.notify(ctx, snap)
}

// RemoveItem deletes the entry for productID if present.
func (l *Ledger) RemoveItem(ctx context.Context, productID int) {
	l.mu.Lock()
	l.remove(productID)
	l.logger.InfoContext(ctx, "cart item removed", slog.Int("product_id", productID))
	snap := l.persist(ctx)
	l.mu.Unlock()

	l.notify(ctx, snap)
}

// UpdateQuantity sets the quantity for productID, clamped to MaxQuantity.
// A quantity of zero or less removes the entry. Absent products are left
// absent.
func (l *Ledger) UpdateQuantity(ctx context.Context, productID, quantity int) {
	l.mu.Lock()
	if quantity <= 0 {
		l.remove(productID)
	} else if i := domain.FindEntryIndex(l.entries, productID); i >= 0 {
		l.entries[i].Quantity = min(quantity, MaxQuantity)
	}
	l.logger.InfoContext(ctx, "cart quantity updated",
		slog.Int("product_id", productID),
		slog.Int("quantity", quantity),
	)
	snap := l.persist(ctx)
	l.mu.Unlock()

	l.notify(ctx, snap)
}

// ClearCart removes every entry.
func (l *Ledger) ClearCart(ctx context.Context) {
	l.mu.Lock()
	l.entries = nil
	l.logger.InfoContext(ctx, "cart cleared")
	snap := l.persist(ctx)
	l.mu.Unlock()

	l.notify(ctx, snap)
}

// GetItemQuantity returns the quantity for productID, or 0.
func (l *Ledger) GetItemQuantity(productID int) int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if i := domain.FindEntryIndex(l.entries, productID); i >= 0 {
		return l.entries[i].Quantity
	}
	return 0
}

// Items returns a copy of the entries in insertion order.
func (l *Ledger) Items() []domain.CartEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshot()
}

// TotalItems returns the sum of all quantities.
func (l *Ledger) TotalItems() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return domain.ItemCount(l.entries)
}

// TotalPrice returns the unrounded sum of price times quantity.
func (l *Ledger) TotalPrice() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return domain.TotalAmount(l.entries)
}

func (l *Ledger) remove(productID int) {
	if i := domain.FindEntryIndex(l.entries, productID); i >= 0 {
		l.entries = append(l.entries[:i], l.entries[i+1:]...)
	}
}

func (l *Ledger) snapshot() []domain.CartEntry {
	out := make([]domain.CartEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// persist writes the full cart and returns what was written. Callers hold
// mu so snapshots reach storage in mutation order.
func (l *Ledger) persist(ctx context.Context) []domain.CartEntry {
	snap := l.snapshot()
	l.store.Set(ctx, StorageKey, snap)
	return snap
}

// notify runs observers. Callers must not hold mu: publishing can block.
func (l *Ledger) notify(ctx context.Context, snap []domain.CartEntry) {
	for _, fn := range l.observers {
		fn(ctx, snap)
	}
}

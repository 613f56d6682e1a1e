package wishlist

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/domain/domaintest"
	"github.com/utafrali/storefront/internal/storage"
	"github.com/utafrali/storefront/internal/storage/memory"
)

func newTestSet(t *testing.T, opts ...Option) (*Set, *storage.Store) {
	t.Helper()
	store := storage.New(memory.New(), "", nil)
	return New(context.Background(), store, opts...), store
}

func TestSet_Toggle_AddsThenRemoves(t *testing.T) {
	s, _ := newTestSet(t)
	ctx := context.Background()
	p := domaintest.Products()[1]

	assert.True(t, s.ToggleWishlistItem(ctx, p))
	assert.True(t, s.IsInWishlist(p.ID))
	assert.Equal(t, 1, s.TotalItems())

	assert.False(t, s.ToggleWishlistItem(ctx, p))
	assert.False(t, s.IsInWishlist(p.ID))
	assert.Equal(t, 0, s.TotalItems())
}

func TestSet_Toggle_TwiceRestoresState(t *testing.T) {
	s, _ := newTestSet(t)
	ctx := context.Background()
	products := domaintest.Products()
	s.ToggleWishlistItem(ctx, products[0])
	s.ToggleWishlistItem(ctx, products[2])
	before := s.Items()

	for _, p := range products {
		s.ToggleWishlistItem(ctx, p)
		s.ToggleWishlistItem(ctx, p)
		assert.Equal(t, len(before), s.TotalItems())
	}
	assert.ElementsMatch(t, before, s.Items())
}

func TestSet_RemoveWishlistItem(t *testing.T) {
	s, _ := newTestSet(t)
	ctx := context.Background()
	p := domaintest.Products()[0]
	s.ToggleWishlistItem(ctx, p)

	s.RemoveWishlistItem(ctx, p.ID)
	assert.False(t, s.IsInWishlist(p.ID))

	// Removing an absent product is a no-op.
	s.RemoveWishlistItem(ctx, p.ID)
	assert.Equal(t, 0, s.TotalItems())
}

func TestSet_ClearWishlist(t *testing.T) {
	s, _ := newTestSet(t)
	ctx := context.Background()
	for _, p := range domaintest.Products() {
		s.ToggleWishlistItem(ctx, p)
	}
	require.Equal(t, 5, s.TotalItems())

	s.ClearWishlist(ctx)
	assert.Empty(t, s.Items())
}

func TestSet_KeepsInsertionOrder(t *testing.T) {
	s, _ := newTestSet(t)
	ctx := context.Background()
	products := domaintest.Products()
	s.ToggleWishlistItem(ctx, products[3])
	s.ToggleWishlistItem(ctx, products[0])
	s.ToggleWishlistItem(ctx, products[4])

	ids := []int{}
	for _, p := range s.Items() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int{11, 1, 18}, ids)
}

func TestSet_WriteThroughAndRehydrate(t *testing.T) {
	b := memory.New()
	store := storage.New(b, "", nil)
	ctx := context.Background()
	products := domaintest.Products()

	first := New(ctx, store)
	first.ToggleWishlistItem(ctx, products[2])
	first.ToggleWishlistItem(ctx, products[4])

	raw, err := b.Load(ctx, "ee-plp:wishlist")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"id":5`)

	second := New(ctx, store)
	assert.Equal(t, first.Items(), second.Items())
	assert.True(t, second.IsInWishlist(18))
}

func TestSet_HydrateDropsDuplicates(t *testing.T) {
	store := storage.New(memory.New(), "", nil)
	ctx := context.Background()
	store.Set(ctx, StorageKey, []domain.Product{{ID: 1, Title: "a"}, {ID: 1, Title: "b"}, {ID: 2}})

	s := New(ctx, store)

	assert.Equal(t, 2, s.TotalItems())
	assert.Equal(t, "a", s.Items()[0].Title)
}

func TestSet_DoesNotTouchCartKey(t *testing.T) {
	b := memory.New()
	store := storage.New(b, "", nil)
	ctx := context.Background()

	s := New(ctx, store)
	s.ToggleWishlistItem(ctx, domaintest.Products()[0])

	_, err := b.Load(ctx, "ee-plp:cart")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSet_Observer(t *testing.T) {
	var sizes []int
	s, _ := newTestSet(t, WithObserver(func(_ context.Context, products []domain.Product) {
		sizes = append(sizes, len(products))
	}))
	ctx := context.Background()
	p := domaintest.Products()[0]

	s.ToggleWishlistItem(ctx, p)
	s.ToggleWishlistItem(ctx, p)

	assert.Equal(t, []int{1, 0}, sizes)
}

func TestSet_ObserverRunsOutsideLock(t *testing.T) {
	var s *Set
	var seen []bool
	s, _ = newTestSet(t, WithObserver(func(_ context.Context, products []domain.Product) {
		seen = append(seen, s.IsInWishlist(products[0].ID))
	}))
	p := domaintest.Products()[0]

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.ToggleWishlistItem(context.Background(), p)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("observer blocked on the wishlist lock")
	}
	assert.Equal(t, []bool{true}, seen)
}

package storage_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/storage"
	"github.com/utafrali/storefront/internal/storage/memory"
	"github.com/utafrali/storefront/pkg/logger"
)

type brokenBackend struct{ err error }

func (b brokenBackend) Load(context.Context, string) ([]byte, error) { return nil, b.err }
func (b brokenBackend) Save(context.Context, string, []byte) error   { return b.err }
func (b brokenBackend) Delete(context.Context, string) error         { return b.err }
func (b brokenBackend) Ping(context.Context) error                   { return b.err }

type snapshot struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestStore_SetGet_RoundTrip(t *testing.T) {
	b := memory.New()
	s := storage.New(b, "", nil)
	ctx := context.Background()

	s.Set(ctx, "cart", []snapshot{{Name: "a", Count: 2}})

	raw, err := b.Load(ctx, "ee-plp:cart")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"a","count":2}]`, string(raw))

	var got []snapshot
	require.True(t, s.Get(ctx, "cart", &got))
	assert.Equal(t, []snapshot{{Name: "a", Count: 2}}, got)
}

func TestStore_Get_Absent(t *testing.T) {
	s := storage.New(memory.New(), "", nil)
	var got []snapshot
	assert.False(t, s.Get(context.Background(), "cart", &got))
	assert.Nil(t, got)
}

func TestStore_Get_CorruptValueIsAbsent(t *testing.T) {
	b := memory.New()
	ctx := context.Background()
	require.NoError(t, b.Save(ctx, "ee-plp:cart", []byte("{not json")))

	var buf bytes.Buffer
	s := storage.New(b, "", logger.NewWithWriter("test", "warn", &buf))
	before := testutil.ToFloat64(storage.FailuresCounter("decode"))

	var got []snapshot
	assert.False(t, s.Get(ctx, "cart", &got))
	assert.Equal(t, before+1, testutil.ToFloat64(storage.FailuresCounter("decode")))
	assert.Contains(t, buf.String(), "storage operation failed")
}

func TestStore_BackendFailuresAreAbsorbed(t *testing.T) {
	s := storage.New(brokenBackend{err: errors.New("quota exceeded")}, "", slog.New(slog.DiscardHandler))
	ctx := context.Background()
	beforeSet := testutil.ToFloat64(storage.FailuresCounter("set"))
	beforeGet := testutil.ToFloat64(storage.FailuresCounter("get"))

	assert.NotPanics(t, func() { s.Set(ctx, "cart", []int{1}) })
	var got []int
	assert.False(t, s.Get(ctx, "cart", &got))
	assert.NotPanics(t, func() { s.Remove(ctx, "cart") })

	assert.Equal(t, beforeSet+1, testutil.ToFloat64(storage.FailuresCounter("set")))
	assert.Equal(t, beforeGet+1, testutil.ToFloat64(storage.FailuresCounter("get")))
	assert.Error(t, s.Ping(ctx))
}

func TestStore_Set_UnencodableValue(t *testing.T) {
	b := memory.New()
	s := storage.New(b, "", nil)
	s.Set(context.Background(), "cart", make(chan int))
	assert.Equal(t, 0, b.Len())
}

func TestStore_Remove(t *testing.T) {
	b := memory.New()
	s := storage.New(b, "", nil)
	ctx := context.Background()

	s.Set(ctx, "wishlist", []int{1})
	s.Remove(ctx, "wishlist")

	var got []int
	assert.False(t, s.Get(ctx, "wishlist", &got))
}

func TestStore_Namespace_IsolatesKeys(t *testing.T) {
	b := memory.New()
	root := storage.New(b, "ee-plp", nil)
	a := root.Namespace("session-a")
	c := root.Namespace("session-b")
	ctx := context.Background()

	a.Set(ctx, "cart", []int{1})
	assert.Equal(t, "ee-plp:session-a:cart", a.Key("cart"))

	var got []int
	assert.False(t, c.Get(ctx, "cart", &got))
	assert.False(t, root.Get(ctx, "cart", &got))
	assert.True(t, a.Get(ctx, "cart", &got))
}

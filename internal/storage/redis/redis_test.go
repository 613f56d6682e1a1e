package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/storage"
)

func setupTestRedis(t *testing.T, ttl time.Duration) (*Backend, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, ttl), mr
}

func TestBackend_SaveAndLoad(t *testing.T) {
	b, mr := setupTestRedis(t, 0)
	ctx := context.Background()

	require.NoError(t, b.Save(ctx, "ee-plp:cart", []byte(`[{"quantity":1}]`)))

	got, err := b.Load(ctx, "ee-plp:cart")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"quantity":1}]`, string(got))
	assert.Equal(t, time.Duration(0), mr.TTL("ee-plp:cart"))
}

func TestBackend_Load_Missing(t *testing.T) {
	b, _ := setupTestRedis(t, 0)

	_, err := b.Load(context.Background(), "ee-plp:wishlist")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestBackend_Save_AppliesTTL(t *testing.T) {
	b, mr := setupTestRedis(t, 24*time.Hour)
	ctx := context.Background()

	require.NoError(t, b.Save(ctx, "k", []byte(`1`)))
	assert.Equal(t, 24*time.Hour, mr.TTL("k"))

	mr.FastForward(25 * time.Hour)
	_, err := b.Load(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestBackend_Delete(t *testing.T) {
	b, mr := setupTestRedis(t, 0)
	ctx := context.Background()

	require.NoError(t, b.Save(ctx, "k", []byte(`1`)))
	require.NoError(t, b.Delete(ctx, "k"))
	assert.False(t, mr.Exists("k"))

	// Deleting twice is fine.
	require.NoError(t, b.Delete(ctx, "k"))
}

func TestBackend_ServerDown(t *testing.T) {
	b, mr := setupTestRedis(t, 0)
	mr.Close()
	ctx := context.Background()

	_, err := b.Load(ctx, "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
	assert.Error(t, b.Save(ctx, "k", []byte(`1`)))
	assert.Error(t, b.Ping(ctx))
}

func TestBackend_WithStore_RoundTrip(t *testing.T) {
	b, mr := setupTestRedis(t, 0)
	ctx := context.Background()
	s := storage.New(b, "", nil)

	s.Set(ctx, "cart", []int{1, 2})
	assert.True(t, mr.Exists("ee-plp:cart"))

	var got []int
	require.True(t, s.Get(ctx, "cart", &got))
	assert.Equal(t, []int{1, 2}, got)
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storeHarness struct {
	store   Store
	advance func(time.Duration)
}

func newMemoryHarness(t *testing.T) storeHarness {
	t.Helper()
	s := NewMemoryStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	return storeHarness{
		store:   s,
		advance: func(d time.Duration) { now = now.Add(d) },
	}
}

func newRedisHarness(t *testing.T) storeHarness {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return storeHarness{
		store:   NewRedisStore(client),
		advance: mr.FastForward,
	}
}

// chaque test tourne sur les deux implémentations
func forEachStore(t *testing.T, fn func(t *testing.T, h storeHarness)) {
	t.Run("memory", func(t *testing.T) { fn(t, newMemoryHarness(t)) })
	t.Run("redis", func(t *testing.T) { fn(t, newRedisHarness(t)) })
}

func TestStoreGetSetDel(t *testing.T) {
	forEachStore(t, func(t *testing.T, h storeHarness) {
		ctx := context.Background()

		_, err := h.store.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, h.store.Set(ctx, "k", []byte("v"), 0))
		got, err := h.store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), got)

		ok, err := h.store.Exists(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)

		require.NoError(t, h.store.Del(ctx, "k", "other"))
		ok, err = h.store.Exists(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, h.store.Del(ctx))
		require.NoError(t, h.store.Ping(ctx))
	})
}

func TestStoreExpiry(t *testing.T) {
	forEachStore(t, func(t *testing.T, h storeHarness) {
		ctx := context.Background()

		require.NoError(t, h.store.Set(ctx, "session", []byte("x"), time.Minute))
		ttl, err := h.store.TTL(ctx, "session")
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, time.Minute)

		h.advance(2 * time.Minute)
		_, err = h.store.Get(ctx, "session")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = h.store.TTL(ctx, "session")
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, h.store.Set(ctx, "forever", []byte("x"), 0))
		ttl, err = h.store.TTL(ctx, "forever")
		require.NoError(t, err)
		assert.Zero(t, ttl)
	})
}

func TestStoreHashIndex(t *testing.T) {
	forEachStore(t, func(t *testing.T, h storeHarness) {
		ctx := context.Background()

		_, err := h.store.HGet(ctx, "users", "a@b.c")
		assert.ErrorIs(t, err, ErrNotFound)

		written, err := h.store.HSetNX(ctx, "users", "a@b.c", "1")
		require.NoError(t, err)
		assert.True(t, written)

		written, err = h.store.HSetNX(ctx, "users", "a@b.c", "2")
		require.NoError(t, err)
		assert.False(t, written)

		v, err := h.store.HGet(ctx, "users", "a@b.c")
		require.NoError(t, err)
		assert.Equal(t, "1", v)

		require.NoError(t, h.store.HDel(ctx, "users", "a@b.c"))
		_, err = h.store.HGet(ctx, "users", "a@b.c")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStoreIncrWindow(t *testing.T) {
	forEachStore(t, func(t *testing.T, h storeHarness) {
		ctx := context.Background()

		for want := int64(1); want <= 3; want++ {
			n, err := h.store.Incr(ctx, "attempts", time.Minute)
			require.NoError(t, err)
			assert.Equal(t, want, n)
		}

		h.advance(2 * time.Minute)
		n, err := h.store.Incr(ctx, "attempts", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

// les incréments suivants ne repoussent pas la fin de la fenêtre
func TestStoreIncrFixedWindow(t *testing.T) {
	forEachStore(t, func(t *testing.T, h storeHarness) {
		ctx := context.Background()

		_, err := h.store.Incr(ctx, "hits", time.Minute)
		require.NoError(t, err)
		h.advance(40 * time.Second)
		n, err := h.store.Incr(ctx, "hits", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		h.advance(30 * time.Second)
		n, err = h.store.Incr(ctx, "hits", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestJSONHelpers(t *testing.T) {
	forEachStore(t, func(t *testing.T, h storeHarness) {
		ctx := context.Background()

		type payload struct {
			Name  string `json:"name"`
			Count int    `json:"count"`
		}

		require.NoError(t, SetJSON(ctx, h.store, "p", payload{Name: "x", Count: 2}, 0))
		var got payload
		require.NoError(t, GetJSON(ctx, h.store, "p", &got))
		assert.Equal(t, payload{Name: "x", Count: 2}, got)

		require.NoError(t, h.store.Set(ctx, "broken", []byte("{"), 0))
		assert.Error(t, GetJSON(ctx, h.store, "broken", &got))

		assert.ErrorIs(t, GetJSON(ctx, h.store, "absent", &got), ErrNotFound)
	})
}

package tokenstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return New(rdb), mr
}

func TestStore_PutGet(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	rec := Record{UserID: 7, TokenHash: "digest-a", ExpiresAt: time.Now().Add(time.Hour).UTC()}
	require.NoError(t, store.Put(ctx, "digest-a", rec, time.Hour))

	got, found, err := store.Get(ctx, "digest-a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint(7), got.UserID)
	assert.Equal(t, "digest-a", got.TokenHash)
	assert.WithinDuration(t, rec.ExpiresAt, got.ExpiresAt, time.Second)
}

func TestStore_Get_MissIsNotAnError(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)

	rec, found, err := store.Get(context.Background(), "never-written")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, rec)
}

func TestStore_TTLExpiry(t *testing.T) {
	t.Parallel()

	store, mr := newTestStore(t)
	ctx := context.Background()

	rec := Record{UserID: 1, TokenHash: "d", ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, store.Put(ctx, "d", rec, time.Minute))

	mr.FastForward(time.Minute + time.Second)

	_, found, err := store.Get(ctx, "d")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_Delete(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	rec := Record{UserID: 1, TokenHash: "d", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.Put(ctx, "d", rec, time.Hour))
	require.NoError(t, store.Delete(ctx, "d"))

	_, found, err := store.Get(ctx, "d")
	require.NoError(t, err)
	assert.False(t, found)

	// Deleting a missing key stays quiet.
	require.NoError(t, store.Delete(ctx, "d"))
}

func TestStore_ExtendTTL(t *testing.T) {
	t.Parallel()

	store, mr := newTestStore(t)
	ctx := context.Background()

	rec := Record{UserID: 1, TokenHash: "d", ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, store.Put(ctx, "d", rec, time.Minute))
	require.NoError(t, store.ExtendTTL(ctx, "d", time.Hour))

	// Past the original TTL the record must still be there.
	mr.FastForward(5 * time.Minute)

	_, found, err := store.Get(ctx, "d")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestStore_BackendDown(t *testing.T) {
	t.Parallel()

	store, mr := newTestStore(t)
	ctx := context.Background()
	mr.Close()

	_, _, err := store.Get(ctx, "d")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)

	err = store.Put(ctx, "d", Record{}, time.Hour)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}

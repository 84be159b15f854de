package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisAdapter "github.com/espalier-dev/espalier/pkg/adapters/redis"
	"github.com/espalier-dev/espalier/pkg/domain"
)

func newTestStore(t *testing.T, opts ...redisAdapter.Option) *redisAdapter.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	store := redisAdapter.New(mr.Addr(), "", 0, opts...)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_SaveLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess := domain.NewSession("user-1", "start")
	sess.LastMessageRef = "msg-42"
	require.NoError(t, store.Save(ctx, sess))

	loaded, err := store.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", loaded.ID)
	assert.Equal(t, "start", loaded.CurrentBlockID)
	assert.Equal(t, "msg-42", loaded.LastMessageRef)
}

func TestStore_LoadMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStore_DeleteAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.NewSession("a", "start")))
	require.NoError(t, store.Save(ctx, domain.NewSession("b", "start")))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	require.NoError(t, store.Delete(ctx, "a"))
	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)

	_, err = store.Load(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStore_ListPrunesExpiredIndexEntries(t *testing.T) {
	store := newTestStore(t, redisAdapter.WithTTL(time.Hour))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.NewSession("live", "start")))

	// A stale index entry whose score is long past must be swept on List.
	err := store.Client().ZAdd(ctx, "espalier:session:index", backend.Z{
		Score:  1,
		Member: "stale",
	}).Err()
	require.NoError(t, err)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"live"}, ids)
}

func TestStore_CustomPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	store := redisAdapter.New(mr.Addr(), "", 0, redisAdapter.WithPrefix("other:"))
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.NewSession("a", "start")))
	assert.True(t, mr.Exists("other:a"))
}

func TestLocker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()

	locker := redisAdapter.NewLocker(client, "espalier:session:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "user-1", time.Minute)
	require.NoError(t, err)

	t.Run("Held Lock Blocks Second Acquire", func(t *testing.T) {
		shortCtx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
		defer cancel()

		_, err := locker.Lock(shortCtx, "user-1", time.Minute)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("Other Keys Unaffected", func(t *testing.T) {
		unlockOther, err := locker.Lock(ctx, "user-2", time.Minute)
		require.NoError(t, err)
		require.NoError(t, unlockOther(ctx))
	})

	t.Run("Unlock Allows Reacquire", func(t *testing.T) {
		require.NoError(t, unlock(ctx))

		again, err := locker.Lock(ctx, "user-1", time.Minute)
		require.NoError(t, err)
		require.NoError(t, again(ctx))
	})
}

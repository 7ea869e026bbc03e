package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-compare/internal/domain"
)

// fakeClock is a manually advanced time source.
type fakeClock struct{ now time.Time }

func newFakeClock() *fakeClock { return &fakeClock{now: time.Unix(1_700_000_000, 0)} }

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func TestMemoryLocker(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	locker := NewMemoryLocker()
	locker.clock = clock.Now

	release, err := locker.Acquire(ctx, "cmp-1", time.Second)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "cmp-1", time.Second)
	assert.ErrorIs(t, err, domain.ErrLockNotAcquired)

	clock.Advance(2 * time.Second)
	fresh, err := locker.Acquire(ctx, "cmp-1", time.Second)
	require.NoError(t, err, "expired locks are reclaimed")

	require.NoError(t, release(ctx))
	_, err = locker.Acquire(ctx, "cmp-1", time.Second)
	assert.ErrorIs(t, err, domain.ErrLockNotAcquired, "stale release must not free the new lock")

	require.NoError(t, fresh(ctx))
	final, err := locker.Acquire(ctx, "cmp-1", time.Second)
	require.NoError(t, err)
	require.NoError(t, final(ctx))
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	cache := NewMemoryCache()
	cache.clock = clock.Now

	value := []byte("payload")
	require.NoError(t, cache.Set(ctx, "a", value, time.Minute))
	value[0] = 'X'

	got, ok, err := cache.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "payload", string(got), "cache keeps its own copy")

	clock.Advance(time.Minute)
	_, ok, _ = cache.Get(ctx, "a")
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "forever", []byte("x"), 0))
	clock.Advance(24 * time.Hour)
	_, ok, _ = cache.Get(ctx, "forever")
	assert.True(t, ok)

	require.NoError(t, cache.Delete(ctx, "forever"))
	_, ok, _ = cache.Get(ctx, "forever")
	assert.False(t, ok)
}

package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestMemoryCache() (*MemoryCache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewMemoryCache()
	c.now = clock.Now
	return c, clock
}

func TestMemoryCache_GetCopiesValue(t *testing.T) {
	c, _ := newTestMemoryCache()
	ctx := context.Background()

	buf := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", buf, 0))
	buf[0] = 'x'

	val, _, _ := c.Get(ctx, "k")
	val[1] = 'y'

	again, _, _ := c.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), again)
}

func TestMemoryCache_ExpiryBoundary(t *testing.T) {
	c, clock := newTestMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
	clock.Advance(999 * time.Millisecond)
	_, found, _ := c.Get(ctx, "k")
	assert.True(t, found)

	clock.Advance(time.Millisecond)
	_, found, _ = c.Get(ctx, "k")
	assert.False(t, found)
	assert.NotContains(t, c.entries, "k")
}

func TestMemoryCache_ZeroTTLNeverExpires(t *testing.T) {
	c, clock := newTestMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	clock.Advance(365 * 24 * time.Hour)

	_, found, _ := c.Get(ctx, "k")
	assert.True(t, found)
}

func TestMemoryCache_SetNXAfterExpiry(t *testing.T) {
	c, clock := newTestMemoryCache()
	ctx := context.Background()

	ok, err := c.SetNX(ctx, "k", []byte("a"), time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	clock.Advance(time.Second)
	ok, err = c.SetNX(ctx, "k", []byte("b"), time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	val, _, _ := c.Get(ctx, "k")
	assert.Equal(t, []byte("b"), val)
}

func TestMemoryCache_IncrWindowResets(t *testing.T) {
	c, clock := newTestMemoryCache()
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := c.IncrWithExpiry(ctx, "rl", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	clock.Advance(time.Minute)
	got, err := c.IncrWithExpiry(ctx, "rl", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestMemoryCache_ConcurrentIncr(t *testing.T) {
	c, _ := newTestMemoryCache()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.IncrWithExpiry(ctx, "rl", time.Minute)
		}()
	}
	wg.Wait()

	val, found, err := c.Get(ctx, "rl")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "50", string(val))
}

package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, maxEntries int, ttl time.Duration) (*Cache[string], *time.Time) {
	t.Helper()
	c := New[string](maxEntries, ttl)
	t.Cleanup(c.Stop)
	clock := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }
	return c, &clock
}

func TestCache_HitAndExpiry(t *testing.T) {
	c, clock := newTestCache(t, 4, time.Minute)

	c.Set("k", "v")
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)

	*clock = clock.Add(2 * time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok)

	c.evictExpired()
	assert.Zero(t, c.Len())
}

func TestCache_Miss(t *testing.T) {
	c, _ := newTestCache(t, 4, time.Minute)
	_, ok := c.Get("absent")
	assert.False(t, ok)
}

func TestCache_ZeroTTLDisables(t *testing.T) {
	c, _ := newTestCache(t, 4, 0)
	c.Set("k", "v")
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCache_Capacity(t *testing.T) {
	c, _ := newTestCache(t, 2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3")
	assert.Equal(t, 2, c.Len())

	got, ok := c.Get("c")
	require.True(t, ok)
	assert.Equal(t, "3", got)

	// Overwriting an existing key never evicts.
	c.Set("c", "4")
	assert.Equal(t, 2, c.Len())
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("a", "b"), Key("a", "b"))
	assert.NotEqual(t, Key("a", "b"), Key("ab"))
	assert.Len(t, Key("x"), 64)
}

func TestStop_Idempotent(t *testing.T) {
	c := New[int](1, time.Second)
	c.Stop()
	c.Stop()
}

package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTL_GetPut(t *testing.T) {
	c := NewTTL[int](5 * time.Minute)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Put("a", 42)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestTTL_Expiry(t *testing.T) {
	c := NewTTL[string](5 * time.Minute)

	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	current := base
	c.SetClock(func() time.Time { return current })

	c.Put("k", "v")

	current = base.Add(4 * time.Minute)
	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	// Strictly TTL-bound: one tick past the window is a miss.
	current = base.Add(5*time.Minute + time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok)

	// Expired entry was dropped, not just hidden.
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestTTL_PutRefreshesStamp(t *testing.T) {
	c := NewTTL[int](time.Minute)

	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	current := base
	c.SetClock(func() time.Time { return current })

	c.Put("k", 1)
	current = base.Add(50 * time.Second)
	c.Put("k", 2)

	current = base.Add(100 * time.Second)
	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestTTL_Stats(t *testing.T) {
	c := NewTTL[int](time.Minute)
	c.Put("a", 1)
	c.Get("a")
	c.Get("b")

	s := c.Stats()
	assert.Equal(t, 1, s.Entries)
	assert.Equal(t, int64(1), s.Hits)
	assert.Equal(t, int64(1), s.Misses)
}

package cache

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCache_GetSet(t *testing.T) {
	t.Parallel()

	c := New[string]("test", time.Hour, 5*time.Minute, testLogger())

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("key", "value")
	got, ok := c.Get("key")
	require.True(t, ok)
	assert.Equal(t, "value", got)
}

func TestCache_Expiry(t *testing.T) {
	t.Parallel()

	c := New[int]("test", time.Hour, 5*time.Minute, testLogger())
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	c.Set("key", 1)
	c.SetWithTTL("short", 2, time.Minute)

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, ok := c.Get("short")
	assert.False(t, ok, "entry past its TTL should be gone")
	got, ok := c.Get("key")
	require.True(t, ok, "entry within its TTL should survive")
	assert.Equal(t, 1, got)
}

func TestCache_DeleteAndClear(t *testing.T) {
	t.Parallel()

	c := New[string]("test", time.Hour, 5*time.Minute, testLogger())

	c.Set("a", "1")
	c.Set("b", "2")
	assert.Equal(t, 2, c.Len())

	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestCache_PeriodicCleanup(t *testing.T) {
	t.Parallel()

	c := New[int]("test", time.Minute, 5*time.Minute, testLogger())
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }
	c.lastCleanup = base

	c.Set("a", 1)
	c.Set("b", 2)

	// Both entries expire, and enough time passes for a sweep to run on
	// the next access.
	c.now = func() time.Time { return base.Add(10 * time.Minute) }
	c.Set("c", 3)

	assert.Equal(t, 1, c.Len(), "sweep should have removed the expired entries")
}

func TestCache_Stat(t *testing.T) {
	t.Parallel()

	c := New[string]("schemas", time.Hour, 5*time.Minute, testLogger())
	c.Set("a", "1")

	stats := c.Stat()
	assert.Equal(t, "schemas", stats.Name)
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, time.Hour, stats.TTL)
}

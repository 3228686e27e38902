package task

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJanitor_SweepsOnTick(t *testing.T) {
	t.Parallel()

	q := newTestQueue(t, nil)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	q.now = func() time.Time { return base }

	snap := q.Create(context.Background(), "lint", "a")
	require.True(t, q.Cancel(context.Background(), snap.TaskID))

	// Everything terminal is now stale.
	q.now = func() time.Time { return base.Add(48 * time.Hour) }

	j := NewJanitor(q, 10*time.Millisecond, 24*time.Hour, testLogger())
	j.Start()
	defer j.Stop()

	require.Eventually(t, func() bool {
		_, ok := q.Get(snap.TaskID)
		return !ok
	}, 2*time.Second, 5*time.Millisecond, "janitor should evict the stale task")
}

func TestJanitor_StopHaltsSweeping(t *testing.T) {
	t.Parallel()

	q := newTestQueue(t, nil)
	j := NewJanitor(q, 10*time.Millisecond, 24*time.Hour, testLogger())

	j.Start()
	j.Stop()

	// Stop must be idempotent and must not hang.
	j.Stop()
}

func TestJanitor_StopWithoutStart(t *testing.T) {
	t.Parallel()

	q := newTestQueue(t, nil)
	j := NewJanitor(q, time.Minute, 24*time.Hour, testLogger())

	j.Stop()
	assert.NotNil(t, j)
}

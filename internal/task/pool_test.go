package task

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool_RunsJobs(t *testing.T) {
	t.Parallel()

	p := newWorkerPool(2, testLogger())

	var ran atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		ok := p.dispatch(func(ctx context.Context) {
			defer wg.Done()
			ran.Add(1)
		})
		require.True(t, ok)
	}

	wg.Wait()
	assert.Equal(t, int32(10), ran.Load())
	p.stop()
}

func TestWorkerPool_BoundedConcurrency(t *testing.T) {
	t.Parallel()

	p := newWorkerPool(2, testLogger())
	defer p.stop()

	var active atomic.Int32
	var peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		p.dispatch(func(ctx context.Context) {
			defer wg.Done()
			n := active.Add(1)
			for {
				prev := peak.Load()
				if n <= prev || peak.CompareAndSwap(prev, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			active.Add(-1)
		})
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(2), "no more than two jobs may run at once")
}

func TestWorkerPool_StopDrainsPending(t *testing.T) {
	t.Parallel()

	p := newWorkerPool(1, testLogger())

	release := make(chan struct{})
	var ran atomic.Int32

	// Occupy the single worker, then queue more work behind it.
	p.dispatch(func(ctx context.Context) {
		<-release
		ran.Add(1)
	})
	for i := 0; i < 3; i++ {
		require.True(t, p.dispatch(func(ctx context.Context) {
			ran.Add(1)
		}))
	}

	close(release)
	p.stop()

	assert.Equal(t, int32(4), ran.Load(), "stop must drain queued jobs before returning")
}

func TestWorkerPool_DispatchAfterStop(t *testing.T) {
	t.Parallel()

	p := newWorkerPool(1, testLogger())
	p.stop()

	ok := p.dispatch(func(ctx context.Context) {
		t.Error("job dispatched after stop should never run")
	})
	assert.False(t, ok)
}

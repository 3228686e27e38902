package task

import (
	"context"
	"log/slog"
	"time"
)

// Janitor periodically evicts old terminal tasks from a Queue. Unlike a
// fire-and-forget daemon it is an explicit component with a Stop method,
// so the process can shut down cleanly.
type Janitor struct {
	queue    *Queue
	interval time.Duration
	maxAge   time.Duration
	logger   *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewJanitor creates a Janitor sweeping the queue every interval,
// removing terminal tasks older than maxAge. Start must be called to
// begin sweeping.
func NewJanitor(queue *Queue, interval, maxAge time.Duration, logger *slog.Logger) *Janitor {
	return &Janitor{
		queue:    queue,
		interval: interval,
		maxAge:   maxAge,
		logger:   logger.With("component", "task_janitor"),
	}
}

// Start launches the background sweep loop. Calling Start more than once
// without an intervening Stop is a programming error.
func (j *Janitor) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	j.cancel = cancel
	j.done = make(chan struct{})

	go j.run(ctx)

	j.logger.Info("janitor started",
		"interval", j.interval.String(),
		"max_age", j.maxAge.String())
}

func (j *Janitor) run(ctx context.Context) {
	defer close(j.done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

// sweep runs one cleanup pass. Any panic is logged and swallowed so the
// loop keeps running indefinitely.
func (j *Janitor) sweep() {
	defer func() {
		if r := recover(); r != nil {
			j.logger.Error("cleanup sweep panicked", "panic", r)
		}
	}()

	removed := j.queue.Cleanup(j.maxAge)
	if removed > 0 {
		j.logger.Info("cleanup sweep finished", "removed", removed)
	}
}

// Stop halts the sweep loop and waits for it to exit. It is a no-op if
// the janitor was never started.
func (j *Janitor) Stop() {
	if j.cancel == nil {
		return
	}
	j.cancel()
	<-j.done
	j.logger.Info("janitor stopped")
}

package task

import (
	"context"
	"log/slog"
	"sync"
)

// workerPool runs jobs on a fixed number of goroutines. Pending jobs
// queue in an unbounded FIFO until a worker is free, so dispatch never
// blocks the caller.
type workerPool struct {
	logger *slog.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	pending []func(context.Context)
	stopped bool

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func newWorkerPool(workers int, logger *slog.Logger) *workerPool {
	ctx, cancel := context.WithCancel(context.Background())
	p := &workerPool{
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
	p.cond = sync.NewCond(&p.mu)

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	return p
}

// dispatch queues a job for execution. It returns false if the pool has
// been stopped and the job will never run.
func (p *workerPool) dispatch(job func(context.Context)) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return false
	}
	p.pending = append(p.pending, job)
	p.cond.Signal()
	return true
}

func (p *workerPool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("starting worker", "worker_id", id)

	for {
		p.mu.Lock()
		for len(p.pending) == 0 && !p.stopped {
			p.cond.Wait()
		}
		if len(p.pending) == 0 {
			// Stopped with nothing left to drain.
			p.mu.Unlock()
			p.logger.Debug("stopping worker", "worker_id", id)
			return
		}
		job := p.pending[0]
		p.pending = p.pending[1:]
		p.mu.Unlock()

		job(p.ctx)
	}
}

// stop prevents further dispatch and waits for the workers to drain the
// pending queue and finish in-flight jobs.
func (p *workerPool) stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.cond.Broadcast()
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()
}

package task

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/relia-oss/relia-api/internal/events"
)

// WorkFunc is a caller-supplied unit of work. The queue treats it as
// opaque: a normal return completes the task with the returned value,
// an error (or panic) fails it with the message preserved. The context
// is the pool's base context; work functions are responsible for their
// own timeouts.
type WorkFunc func(ctx context.Context) (any, error)

// Config holds configuration for the task queue.
type Config struct {
	// Workers is the fixed size of the worker pool.
	// If zero or negative, defaults to 4.
	Workers int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{Workers: 4}
}

// Queue is the central authority for task identity, scheduling onto a
// bounded worker pool, and thread-safe lifecycle transitions. A single
// queue-wide mutex guards the live-task map and every task's mutable
// fields; it is never held across a work function invocation.
type Queue struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*Task

	pool     *workerPool
	recorder events.Recorder
	logger   *slog.Logger

	// now is replaceable in tests.
	now func() time.Time
}

// New creates a Queue and starts its worker pool. The recorder may be
// nil, in which case no telemetry is emitted.
func New(cfg Config, recorder events.Recorder, logger *slog.Logger) *Queue {
	workers := cfg.Workers
	if workers <= 0 {
		logger.Warn("invalid worker count specified, using default",
			"specified_count", cfg.Workers,
			"default_count", 4)
		workers = 4
	}

	q := &Queue{
		tasks:    make(map[uuid.UUID]*Task),
		recorder: recorder,
		logger:   logger.With("component", "task_queue"),
		now:      time.Now,
	}
	q.pool = newWorkerPool(workers, q.logger)
	return q
}

// Create registers a new pending task and returns its snapshot.
// An empty userID is recorded as the anonymous user.
func (q *Queue) Create(ctx context.Context, taskType, userID string) Snapshot {
	if userID == "" {
		userID = AnonymousUser
	}
	id := uuid.New()

	q.mu.Lock()
	t := newTask(id, taskType, userID, q.now().UTC())
	q.tasks[id] = t
	snap := t.snapshotLocked()
	q.mu.Unlock()

	q.logger.Debug("task created", "task_id", id, "task_type", taskType, "user_id", userID)
	q.record(ctx, events.EventTaskCreated, map[string]any{
		"task_id":   id.String(),
		"task_type": taskType,
	}, userID)

	return snap
}

// Get returns a snapshot of the task, or false if no task has that ID.
func (q *Queue) Get(id uuid.UUID) (Snapshot, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	t, ok := q.tasks[id]
	if !ok {
		return Snapshot{}, false
	}
	return t.snapshotLocked(), true
}

// Result returns the outcome of a task, or false if no task has that ID.
// The Value and Error fields are only populated once the task is terminal.
func (q *Queue) Result(id uuid.UUID) (Result, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	t, ok := q.tasks[id]
	if !ok {
		return Result{}, false
	}
	return Result{Status: t.status, Value: t.result, Error: t.errMsg}, true
}

// List returns snapshots of live tasks, newest first, optionally filtered
// by owner. A limit of zero or less defaults to 100.
func (q *Queue) List(userID string, limit int) []Snapshot {
	if limit <= 0 {
		limit = 100
	}

	q.mu.Lock()
	snaps := make([]Snapshot, 0, len(q.tasks))
	for _, t := range q.tasks {
		if userID != "" && t.userID != userID {
			continue
		}
		snaps = append(snaps, t.snapshotLocked())
	}
	q.mu.Unlock()

	sort.Slice(snaps, func(i, j int) bool {
		if snaps[i].CreatedAt.Equal(snaps[j].CreatedAt) {
			return snaps[i].TaskID.String() < snaps[j].TaskID.String()
		}
		return snaps[i].CreatedAt.After(snaps[j].CreatedAt)
	})

	if len(snaps) > limit {
		snaps = snaps[:limit]
	}
	return snaps
}

// Submit transitions a pending task to running and hands the work
// function to the worker pool. It returns immediately; execution happens
// on a pool goroutine. A missing task or one that is not pending is
// logged and dropped without signaling the caller, since concurrent API
// calls make these expected races rather than errors.
func (q *Queue) Submit(ctx context.Context, id uuid.UUID, fn WorkFunc) {
	q.mu.Lock()
	t, ok := q.tasks[id]
	if !ok {
		q.mu.Unlock()
		q.logger.Error("task not found", "task_id", id)
		return
	}
	if t.status != StatusPending {
		status := t.status
		q.mu.Unlock()
		q.logger.Warn("task already submitted", "task_id", id, "status", status)
		return
	}
	t.status = StatusRunning
	t.startedAt = q.now().UTC()
	taskType := t.taskType
	q.mu.Unlock()

	if !q.pool.dispatch(func(workCtx context.Context) {
		q.execute(workCtx, t, fn)
	}) {
		// Pool already stopped, so the work will never run. Fail the
		// task rather than leave it running forever.
		q.mu.Lock()
		t.status = StatusFailed
		t.errMsg = "worker pool stopped"
		t.errSet = true
		t.completedAt = q.now().UTC()
		q.mu.Unlock()
		q.logger.Warn("worker pool stopped, task failed", "task_id", id)
		return
	}

	q.logger.Info("submitted task", "task_id", id, "task_type", taskType)
}

// execute runs on a worker goroutine. The queue lock is held only for the
// terminal transition, never across the work function call.
func (q *Queue) execute(ctx context.Context, t *Task, fn WorkFunc) {
	q.mu.Lock()
	startFields := map[string]any{
		"task_id":   t.id.String(),
		"task_type": t.taskType,
	}
	startUserID := t.userID
	q.mu.Unlock()
	q.record(ctx, events.EventTaskStarted, startFields, startUserID)

	value, err := runWork(ctx, fn)
	completedAt := q.now().UTC()

	q.mu.Lock()
	if t.status != StatusRunning {
		// The terminal transition is written exactly once by exactly one
		// worker; anything else here means the record was already closed.
		status := t.status
		q.mu.Unlock()
		q.logger.Warn("task no longer running, dropping outcome",
			"task_id", t.id, "status", status)
		return
	}

	fields := map[string]any{
		"task_id":   t.id.String(),
		"task_type": t.taskType,
	}
	var eventType string
	if err != nil {
		t.status = StatusFailed
		t.errMsg = err.Error()
		t.errSet = true
		t.completedAt = completedAt
		eventType = events.EventTaskFailed
		fields["error"] = err.Error()
	} else {
		t.status = StatusCompleted
		t.result = value
		t.resultSet = true
		t.progress = 100
		t.completedAt = completedAt
		eventType = events.EventTaskCompleted
	}
	fields["duration_ms"] = t.durationMSLocked()
	userID := t.userID
	q.mu.Unlock()

	if err != nil {
		q.logger.Error("task failed", "task_id", t.id, "task_type", t.taskType, "error", err)
	} else {
		q.logger.Info("task completed", "task_id", t.id, "task_type", t.taskType)
	}

	q.record(ctx, eventType, fields, userID)
}

// runWork invokes the work function, converting a panic into an error so
// a submitted task can never crash the queue.
func runWork(ctx context.Context, fn WorkFunc) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return fn(ctx)
}

// Cancel transitions a pending task to canceled. It returns false without
// mutation if the task is absent or no longer pending; running work cannot
// be interrupted.
func (q *Queue) Cancel(ctx context.Context, id uuid.UUID) bool {
	q.mu.Lock()
	t, ok := q.tasks[id]
	if !ok {
		q.mu.Unlock()
		q.logger.Error("task not found", "task_id", id)
		return false
	}
	if t.status != StatusPending {
		status := t.status
		q.mu.Unlock()
		q.logger.Warn("cannot cancel task", "task_id", id, "status", status)
		return false
	}
	t.status = StatusCanceled
	t.completedAt = q.now().UTC()
	taskType := t.taskType
	userID := t.userID
	q.mu.Unlock()

	q.logger.Info("task canceled", "task_id", id)
	q.record(ctx, events.EventTaskCanceled, map[string]any{
		"task_id":   id.String(),
		"task_type": taskType,
	}, userID)

	return true
}

// UpdateProgress sets a running task's progress, clamped to [0,100], and
// merges any details into the task's detail map. It returns false if the
// task is absent or not running.
func (q *Queue) UpdateProgress(id uuid.UUID, progress int, details map[string]any) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	t, ok := q.tasks[id]
	if !ok {
		q.logger.Error("task not found", "task_id", id)
		return false
	}
	if t.status != StatusRunning {
		q.logger.Warn("cannot update progress", "task_id", id, "status", t.status)
		return false
	}

	t.progress = min(max(0, progress), 100)
	for k, v := range details {
		t.details[k] = v
	}
	return true
}

// Cleanup removes terminal tasks whose completion time (or creation time,
// if they never completed) is older than maxAge, and returns the number
// removed. Pending and running tasks are never touched.
func (q *Queue) Cleanup(maxAge time.Duration) int {
	cutoff := q.now().UTC().Add(-maxAge)

	q.mu.Lock()
	var removed []uuid.UUID
	for id, t := range q.tasks {
		if !t.status.Terminal() {
			continue
		}
		reference := t.completedAt
		if reference.IsZero() {
			reference = t.createdAt
		}
		if reference.Before(cutoff) {
			removed = append(removed, id)
		}
	}
	for _, id := range removed {
		delete(q.tasks, id)
	}
	q.mu.Unlock()

	if len(removed) > 0 {
		q.logger.Info("cleaned up old tasks", "count", len(removed))
	}
	return len(removed)
}

// Counts returns aggregate live-task totals for health checks.
func (q *Queue) Counts() Counts {
	q.mu.Lock()
	defer q.mu.Unlock()

	counts := Counts{Total: len(q.tasks)}
	for _, t := range q.tasks {
		switch t.status {
		case StatusPending:
			counts.Pending++
		case StatusRunning:
			counts.Running++
		}
	}
	return counts
}

// Stop shuts the worker pool down, draining queued work and waiting for
// in-flight work functions to finish. The queue's bookkeeping operations
// remain usable afterward, but further submissions are dropped.
func (q *Queue) Stop() {
	q.pool.stop()
}

// record emits a telemetry event, logging and swallowing any failure:
// telemetry is best-effort and never affects task state.
func (q *Queue) record(ctx context.Context, eventType string, fields map[string]any, userID string) {
	if q.recorder == nil {
		return
	}
	if _, err := q.recorder.RecordEvent(ctx, eventType, fields, userID); err != nil {
		q.logger.Warn("failed to record telemetry event",
			"event_type", eventType,
			"error", err)
	}
}

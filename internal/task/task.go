package task

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status represents the current state of a task.
type Status string

// Possible task status values.
const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCanceled
}

// AnonymousUser is the owner recorded for tasks created without a user.
const AnonymousUser = "anonymous"

// Task is one tracked unit of asynchronous work. All mutable fields are
// guarded by the owning Queue's lock; a Task is never handed out directly,
// only as a Snapshot.
type Task struct {
	id       uuid.UUID
	taskType string
	userID   string

	status      Status
	result      any
	resultSet   bool
	errMsg      string
	errSet      bool
	createdAt   time.Time
	startedAt   time.Time
	completedAt time.Time
	progress    int
	details     map[string]any
}

func newTask(id uuid.UUID, taskType, userID string, createdAt time.Time) *Task {
	return &Task{
		id:        id,
		taskType:  taskType,
		userID:    userID,
		status:    StatusPending,
		createdAt: createdAt,
		details:   make(map[string]any),
	}
}

func (t *Task) String() string {
	return fmt.Sprintf("Task(%s, %s, %s)", t.id, t.taskType, t.status)
}

// Snapshot is a read-only view of a task suitable for serialization.
// The raw result and error values are deliberately excluded so that
// large or sensitive payloads never leak into list views; retrieve
// them through Queue.Result instead.
type Snapshot struct {
	TaskID      uuid.UUID      `json:"task_id"`
	TaskType    string         `json:"task_type"`
	UserID      string         `json:"user_id"`
	Status      Status         `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Progress    int            `json:"progress"`
	Details     map[string]any `json:"details"`
	HasResult   bool           `json:"has_result"`
	HasError    bool           `json:"has_error"`
}

// snapshotLocked builds a Snapshot. The caller must hold the queue lock.
func (t *Task) snapshotLocked() Snapshot {
	details := make(map[string]any, len(t.details))
	for k, v := range t.details {
		details[k] = v
	}

	snap := Snapshot{
		TaskID:    t.id,
		TaskType:  t.taskType,
		UserID:    t.userID,
		Status:    t.status,
		CreatedAt: t.createdAt,
		Progress:  t.progress,
		Details:   details,
		HasResult: t.resultSet,
		HasError:  t.errSet,
	}
	if !t.startedAt.IsZero() {
		started := t.startedAt
		snap.StartedAt = &started
	}
	if !t.completedAt.IsZero() {
		completed := t.completedAt
		snap.CompletedAt = &completed
	}
	return snap
}

// durationMSLocked returns the task's execution duration in milliseconds,
// or 0 if the task never started. The caller must hold the queue lock.
func (t *Task) durationMSLocked() int64 {
	if t.startedAt.IsZero() || t.completedAt.IsZero() {
		return 0
	}
	return t.completedAt.Sub(t.startedAt).Milliseconds()
}

// Result holds the outcome of a finished task.
type Result struct {
	Status Status
	Value  any
	Error  string
}

// Counts aggregates live task totals for health checks.
type Counts struct {
	Pending int `json:"pending"`
	Running int `json:"running"`
	Total   int `json:"total"`
}

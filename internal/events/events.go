package events

import (
	"context"

	"github.com/google/uuid"
)

// Telemetry event types emitted by the task subsystem.
const (
	EventTaskCreated   = "task_created"
	EventTaskStarted   = "task_started"
	EventTaskCompleted = "task_completed"
	EventTaskFailed    = "task_failed"
	EventTaskCanceled  = "task_canceled"
)

// Recorder records telemetry events for observability. Recording is
// best-effort: callers treat a returned error as non-fatal, so an
// implementation must never affect the control flow of the code it
// observes.
type Recorder interface {
	// RecordEvent persists a single telemetry event and returns its
	// generated identifier.
	RecordEvent(ctx context.Context, eventType string, fields map[string]any, userID string) (uuid.UUID, error)
}

package events

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// LogRecorder is a Recorder that writes events to the structured log
// instead of a database. It is used when telemetry persistence is
// disabled, keeping the lifecycle events visible without a database.
type LogRecorder struct {
	logger *slog.Logger
}

// NewLogRecorder creates a LogRecorder writing to the given logger.
func NewLogRecorder(logger *slog.Logger) *LogRecorder {
	return &LogRecorder{
		logger: logger.With("component", "telemetry_log_recorder"),
	}
}

// RecordEvent logs the event at debug level and returns a fresh event ID.
// It never fails.
func (r *LogRecorder) RecordEvent(
	ctx context.Context,
	eventType string,
	fields map[string]any,
	userID string,
) (uuid.UUID, error) {
	id := uuid.New()
	r.logger.DebugContext(ctx, "telemetry event",
		"event_id", id,
		"event_type", eventType,
		"user_id", userID,
		"fields", fields)
	return id, nil
}

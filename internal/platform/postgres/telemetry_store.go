package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/relia-oss/relia-api/internal/platform/logger"
	"github.com/relia-oss/relia-api/internal/store"
)

// TelemetryStore implements the events.Recorder interface using PostgreSQL.
type TelemetryStore struct {
	db store.DBTX
}

// NewTelemetryStore creates a new TelemetryStore.
func NewTelemetryStore(db store.DBTX) *TelemetryStore {
	return &TelemetryStore{
		db: db,
	}
}

// RecordEvent persists a single telemetry event and returns its generated
// identifier. Callers treat failures as non-fatal; this method only reports
// them.
func (s *TelemetryStore) RecordEvent(
	ctx context.Context,
	eventType string,
	fields map[string]any,
	userID string,
) (uuid.UUID, error) {
	log := logger.FromContext(ctx)

	payload, err := json.Marshal(fields)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to encode telemetry payload: %w", err)
	}

	id := uuid.New()
	query := `
		INSERT INTO telemetry_events (id, event_type, payload, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = s.db.ExecContext(ctx, query,
		id,
		eventType,
		payload,
		userID,
		time.Now().UTC(),
	)
	if err != nil {
		log.Error("failed to record telemetry event",
			"event_type", eventType,
			"user_id", userID,
			"error", err)
		return uuid.Nil, fmt.Errorf("%w: telemetry event: %v", store.ErrInsertFailed, err)
	}

	return id, nil
}

// CountByType returns the number of stored events per event type, for
// operational tooling.
func (s *TelemetryStore) CountByType(ctx context.Context) (map[string]int64, error) {
	query := `
		SELECT event_type, COUNT(*)
		FROM telemetry_events
		GROUP BY event_type
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count telemetry events: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var eventType string
		var count int64
		if err := rows.Scan(&eventType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan telemetry count: %w", err)
		}
		counts[eventType] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate telemetry counts: %w", err)
	}

	return counts, nil
}

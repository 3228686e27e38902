package events

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogRecorder_RecordEvent(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := NewLogRecorder(logger)

	id, err := recorder.RecordEvent(context.Background(), EventTaskCreated,
		map[string]any{"task_id": "abc", "task_type": "lint"}, "user-1")

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id, "should return a generated event ID")
}

func TestLogRecorder_UniqueIDs(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := NewLogRecorder(logger)

	first, err := recorder.RecordEvent(context.Background(), EventTaskStarted, nil, "anonymous")
	require.NoError(t, err)
	second, err := recorder.RecordEvent(context.Background(), EventTaskStarted, nil, "anonymous")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

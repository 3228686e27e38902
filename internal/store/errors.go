package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	ErrNotFound = errors.New("entity not found")

	// ErrInsertFailed is returned when an insert operation fails, for example
	// because of a constraint violation or a closed connection.
	ErrInsertFailed = errors.New("insert failed")

	// ErrEventNotFound indicates that the requested telemetry event does not
	// exist in the store.
	ErrEventNotFound = fmt.Errorf("%w: telemetry event", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Package task implements the in-memory asynchronous task subsystem:
// a bounded worker pool, a task lifecycle state machine, and a single
// queue that owns every live task record.
//
// Tasks move along pending -> running -> completed|failed, or
// pending -> canceled. Terminal tasks are immutable until the janitor
// evicts them. Task state is best-effort and process-local: nothing is
// persisted, and a crash loses all records.
package task

// Package events defines the telemetry sink consumed by the task
// subsystem. The Recorder interface decouples lifecycle observability
// from its storage backend; persistence lives in platform packages.
package events

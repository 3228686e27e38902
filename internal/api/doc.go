// Package api contains the HTTP handlers exposing the task subsystem,
// along with their request and response models. Handlers translate
// queue outcomes into HTTP status codes: missing tasks map to 404 and
// rejected transitions to 409, since the queue reports both as
// non-exceptional results.
package api

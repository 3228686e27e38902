// Package cache provides a generic thread-safe TTL cache used to shave
// load off hot read paths such as task list views.
package cache

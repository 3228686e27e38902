// Package store defines the persistence abstractions shared by the
// platform-specific store implementations, along with the common error
// taxonomy they return.
package store

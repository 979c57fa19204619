package storage

import "errors"

// Common client storage errors
var (
	// ErrNotFound indicates that the requested key does not exist
	ErrNotFound = errors.New("not found")

	// ErrAuthNotFound indicates that no authentication data exists
	ErrAuthNotFound = errors.New("authentication data not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)

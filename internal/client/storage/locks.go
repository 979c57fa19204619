package storage

import (
	"context"
	"time"
)

// LockRecord is the persisted state of a per-table sync lock.
type LockRecord struct {
	AcquiredAt time.Time
	Token      string
}

// LockUpdateFunc receives the current lock (nil if free) and returns the new one
// (nil to clear). Returning an error aborts the update without changes.
type LockUpdateFunc func(current *LockRecord) (*LockRecord, error)

//go:generate moq -out locks_mock.go . LockStorage

// LockStorage gives atomic read-modify-write access to per-table locks.
type LockStorage interface {
	// UpdateLock runs fn and stores its result in a single transaction
	UpdateLock(ctx context.Context, table string, fn LockUpdateFunc) error

	// GetLock returns ErrNotFound if the table is not locked
	GetLock(ctx context.Context, table string) (*LockRecord, error)
}

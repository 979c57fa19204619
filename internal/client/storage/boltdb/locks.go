package boltdb

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/complisync/internal/client/storage"
)

const (
	lockFlagPrefix = "sync_in_progress_"
	lockTimePrefix = "sync_lock_time_"
)

func lockKeys(table string) (flag, ts []byte) {
	return []byte(lockFlagPrefix + table), []byte(lockTimePrefix + table)
}

// readLock читает блокировку внутри транзакции; nil если таблица свободна
func readLock(b *bbolt.Bucket, table string) *storage.LockRecord {
	flagKey, timeKey := lockKeys(table)
	token := b.Get(flagKey)
	if token == nil {
		return nil
	}

	rec := &storage.LockRecord{Token: string(token)}
	if raw := b.Get(timeKey); raw != nil {
		if ms, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
			rec.AcquiredAt = time.UnixMilli(ms)
		}
	}
	return rec
}

// UpdateLock runs fn against the current lock state inside one read-write transaction.
// bbolt allows a single writer at a time and holds an exclusive file lock, so the
// check-then-set in fn cannot interleave with another acquirer.
func (s *Storage) UpdateLock(ctx context.Context, table string, fn storage.LockUpdateFunc) error {
	return s.update(bucketLocks, func(b *bbolt.Bucket) error {
		next, err := fn(readLock(b, table))
		if err != nil {
			return err
		}

		flagKey, timeKey := lockKeys(table)
		if next == nil {
			if err := b.Delete(flagKey); err != nil {
				return fmt.Errorf("failed to clear lock %s: %w", table, err)
			}
			if err := b.Delete(timeKey); err != nil {
				return fmt.Errorf("failed to clear lock time %s: %w", table, err)
			}
			return nil
		}

		if err := b.Put(flagKey, []byte(next.Token)); err != nil {
			return fmt.Errorf("failed to save lock %s: %w", table, err)
		}
		ts := strconv.FormatInt(next.AcquiredAt.UnixMilli(), 10)
		if err := b.Put(timeKey, []byte(ts)); err != nil {
			return fmt.Errorf("failed to save lock time %s: %w", table, err)
		}
		return nil
	})
}

// GetLock returns storage.ErrNotFound if the table is not locked
func (s *Storage) GetLock(ctx context.Context, table string) (*storage.LockRecord, error) {
	var rec *storage.LockRecord

	err := s.view(bucketLocks, func(b *bbolt.Bucket) error {
		rec = readLock(b, table)
		if rec == nil {
			return storage.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rec, nil
}

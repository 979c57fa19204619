// Package lock implements the per-table sync lock: at most one push per table is in
// flight at any time, across goroutines and across processes sharing the database.
// A lock older than the staleness window is considered abandoned and is taken over.
package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/complisync/internal/client/storage"
)

// DefaultStaleAfter время, после которого блокировка считается брошенной
const DefaultStaleAfter = 30 * time.Second

var (
	// ErrNotOwner is returned by Release when the lock belongs to another token
	ErrNotOwner = errors.New("lock is held by another owner")

	// ErrBusy is returned by AcquireAll when one of the tables is being pushed
	ErrBusy = errors.New("table sync in progress")

	errHeld = errors.New("lock is held")
)

// Token identifies one successful Acquire.
type Token string

// Info describes the current holder of a table lock.
type Info struct {
	AcquiredAt time.Time
	Token      Token
	Stale      bool
}

// Locker acquires and releases per-table locks stored in LockStorage.
type Locker struct {
	store      storage.LockStorage
	logger     *slog.Logger
	now        func() time.Time
	staleAfter time.Duration
}

// New creates a Locker. staleAfter <= 0 selects DefaultStaleAfter.
func New(store storage.LockStorage, staleAfter time.Duration, logger *slog.Logger) *Locker {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Locker{
		store:      store,
		logger:     logger,
		now:        time.Now,
		staleAfter: staleAfter,
	}
}

// StaleAfter returns the staleness window.
func (l *Locker) StaleAfter() time.Duration {
	return l.staleAfter
}

// Acquire takes the lock of table. It returns ok=false without error when the lock is
// held by someone else and is not stale yet. A stale lock is cleared and taken over.
func (l *Locker) Acquire(ctx context.Context, table string) (Token, bool, error) {
	token := Token(uuid.NewString())
	now := l.now()
	var takenOver *storage.LockRecord

	err := l.store.UpdateLock(ctx, table, func(cur *storage.LockRecord) (*storage.LockRecord, error) {
		if cur != nil {
			if !l.isStale(cur, now) {
				return nil, errHeld
			}
			takenOver = cur
		}
		return &storage.LockRecord{Token: string(token), AcquiredAt: now}, nil
	})
	if errors.Is(err, errHeld) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire lock for %s: %w", table, err)
	}

	if takenOver != nil {
		l.logger.Warn("Stale sync lock cleared",
			"table", table,
			"held_since", takenOver.AcquiredAt,
			"age", now.Sub(takenOver.AcquiredAt))
	}

	return token, true, nil
}

// Release frees the lock of table if token still owns it. Releasing a free lock is a
// no-op; releasing a lock taken over by another token returns ErrNotOwner and leaves it.
func (l *Locker) Release(ctx context.Context, table string, token Token) error {
	err := l.store.UpdateLock(ctx, table, func(cur *storage.LockRecord) (*storage.LockRecord, error) {
		if cur == nil {
			return nil, nil
		}
		if cur.Token != string(token) {
			return nil, ErrNotOwner
		}
		return nil, nil
	})
	if errors.Is(err, ErrNotOwner) {
		return ErrNotOwner
	}
	if err != nil {
		return fmt.Errorf("failed to release lock for %s: %w", table, err)
	}
	return nil
}

// AcquireAll takes the locks of every table, or none of them. When one is held the
// locks already taken are released and the error wraps ErrBusy. The returned function
// releases all locks and is safe to call more than once.
func (l *Locker) AcquireAll(ctx context.Context, tables ...string) (func(), error) {
	held := make(map[string]Token, len(tables))
	release := func() {
		// освобождаем и при отмененном контексте
		rctx := context.WithoutCancel(ctx)
		for table, token := range held {
			if err := l.Release(rctx, table, token); err != nil {
				l.logger.Warn("Failed to release sync lock", "table", table, "error", err)
			}
			delete(held, table)
		}
	}

	for _, table := range tables {
		if _, dup := held[table]; dup {
			continue
		}
		token, ok, err := l.Acquire(ctx, table)
		if err != nil {
			release()
			return nil, err
		}
		if !ok {
			release()
			return nil, fmt.Errorf("%w: %s", ErrBusy, table)
		}
		held[table] = token
	}

	var once sync.Once
	return func() { once.Do(release) }, nil
}

// ForceRelease clears the lock of table regardless of owner.
func (l *Locker) ForceRelease(ctx context.Context, table string) error {
	err := l.store.UpdateLock(ctx, table, func(*storage.LockRecord) (*storage.LockRecord, error) {
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to force release lock for %s: %w", table, err)
	}
	return nil
}

// Inspect returns the current holder of the lock of table.
func (l *Locker) Inspect(ctx context.Context, table string) (Info, bool) {
	rec, err := l.store.GetLock(ctx, table)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			l.logger.Error("Failed to read sync lock", "table", table, "error", err)
		}
		return Info{}, false
	}

	return Info{
		Token:      Token(rec.Token),
		AcquiredAt: rec.AcquiredAt,
		Stale:      l.isStale(rec, l.now()),
	}, true
}

// IsLocked reports whether table holds a lock that is not stale.
func (l *Locker) IsLocked(ctx context.Context, table string) bool {
	info, ok := l.Inspect(ctx, table)
	return ok && !info.Stale
}

// Запись без времени (повреждена) тоже считается брошенной
func (l *Locker) isStale(rec *storage.LockRecord, now time.Time) bool {
	if rec.AcquiredAt.IsZero() {
		return true
	}
	return now.Sub(rec.AcquiredAt) > l.staleAfter
}

package lock

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/complisync/internal/client/storage"
	"github.com/iudanet/complisync/internal/client/storage/boltdb"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func newTestLocker(t *testing.T, staleAfter time.Duration) (*Locker, *boltdb.Storage) {
	t.Helper()
	db, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "locks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db, staleAfter, setupTestLogger()), db
}

func TestLocker_AcquireRelease(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLocker(t, 0)
	assert.Equal(t, DefaultStaleAfter, l.StaleAfter())

	token, ok, err := l.Acquire(ctx, "documents")
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, token)
	assert.True(t, l.IsLocked(ctx, "documents"))

	// Занято
	_, ok, err = l.Acquire(ctx, "documents")
	require.NoError(t, err)
	assert.False(t, ok)

	// Другая таблица независима
	_, ok, err = l.Acquire(ctx, "raci")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, l.Release(ctx, "documents", token))
	assert.False(t, l.IsLocked(ctx, "documents"))

	// Повторное освобождение ничего не делает
	assert.NoError(t, l.Release(ctx, "documents", token))

	_, ok, err = l.Acquire(ctx, "documents")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLocker_ReleaseByStrangerKeepsLock(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLocker(t, 0)

	token, ok, err := l.Acquire(ctx, "documents")
	require.NoError(t, err)
	require.True(t, ok)

	assert.ErrorIs(t, l.Release(ctx, "documents", "someone-else"), ErrNotOwner)

	info, ok := l.Inspect(ctx, "documents")
	require.True(t, ok)
	assert.Equal(t, token, info.Token)
	assert.False(t, info.Stale)
}

func TestLocker_StaleLockOverride(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLocker(t, 30*time.Second)

	now := time.Now()
	l.now = func() time.Time { return now }

	first, ok, err := l.Acquire(ctx, "documents")
	require.NoError(t, err)
	require.True(t, ok)

	// Через 29 секунд блокировка еще действует
	l.now = func() time.Time { return now.Add(29 * time.Second) }
	_, ok, err = l.Acquire(ctx, "documents")
	require.NoError(t, err)
	assert.False(t, ok)

	// Через 31 секунду блокировка брошена и перехватывается
	l.now = func() time.Time { return now.Add(31 * time.Second) }
	info, ok := l.Inspect(ctx, "documents")
	require.True(t, ok)
	assert.True(t, info.Stale)

	second, ok, err := l.Acquire(ctx, "documents")
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEqual(t, first, second)

	// Старый владелец не может снять новую блокировку
	assert.ErrorIs(t, l.Release(ctx, "documents", first), ErrNotOwner)
	assert.NoError(t, l.Release(ctx, "documents", second))
}

func TestLocker_ForceRelease(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLocker(t, 0)

	_, ok, err := l.Acquire(ctx, "membres")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, l.ForceRelease(ctx, "membres"))
	_, ok = l.Inspect(ctx, "membres")
	assert.False(t, ok)
}

func TestLocker_ConcurrentAcquireSingleWinner(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLocker(t, 0)

	var winners atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := l.Acquire(ctx, "documents")
			assert.NoError(t, err)
			if ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}

func TestLocker_StorageError(t *testing.T) {
	ctx := context.Background()
	errDisk := errors.New("disk failure")

	store := &storage.LockStorageMock{
		UpdateLockFunc: func(ctx context.Context, table string, fn storage.LockUpdateFunc) error {
			return errDisk
		},
		GetLockFunc: func(ctx context.Context, table string) (*storage.LockRecord, error) {
			return nil, errDisk
		},
	}
	l := New(store, 0, setupTestLogger())

	_, ok, err := l.Acquire(ctx, "documents")
	assert.False(t, ok)
	assert.ErrorIs(t, err, errDisk)

	assert.ErrorIs(t, l.Release(ctx, "documents", "t"), errDisk)
	assert.False(t, l.IsLocked(ctx, "documents"))
}

func TestLocker_AcquireAll(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLocker(t, 0)

	release, err := l.AcquireAll(ctx, "documents", "membres", "documents")
	require.NoError(t, err)
	assert.True(t, l.IsLocked(ctx, "documents"))
	assert.True(t, l.IsLocked(ctx, "membres"))

	release()
	release()
	assert.False(t, l.IsLocked(ctx, "documents"))
	assert.False(t, l.IsLocked(ctx, "membres"))
}

func TestLocker_AcquireAllAllOrNothing(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLocker(t, 0)

	token, ok, err := l.Acquire(ctx, "raci")
	require.NoError(t, err)
	require.True(t, ok)

	release, err := l.AcquireAll(ctx, "documents", "raci", "membres")
	require.ErrorIs(t, err, ErrBusy)
	assert.Contains(t, err.Error(), "raci")
	assert.Nil(t, release)

	// Уже взятые блокировки возвращены
	assert.False(t, l.IsLocked(ctx, "documents"))
	assert.False(t, l.IsLocked(ctx, "membres"))
	assert.True(t, l.IsLocked(ctx, "raci"))

	require.NoError(t, l.Release(ctx, "raci", token))
	release, err = l.AcquireAll(ctx, "documents", "raci")
	require.NoError(t, err)
	release()
}

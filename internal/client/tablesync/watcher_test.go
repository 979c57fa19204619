package tablesync

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/complisync/internal/client/network"
	"github.com/iudanet/complisync/internal/events"
	"github.com/iudanet/complisync/internal/models"
)

const testDebounce = 30 * time.Millisecond

type watcherFixture struct {
	watcher *Watcher
	syncer  *TableSyncerMock
	locks   *LockInspectorMock
	monitor *network.Monitor
	pushed  chan []models.Record
	fixture *fixture
}

func newWatcherFixture(t *testing.T, online, locked bool) *watcherFixture {
	t.Helper()
	base := newFixture(t, online, &APIMock{})
	wf := &watcherFixture{
		fixture: base,
		monitor: base.monitor,
		pushed:  make(chan []models.Record, 8),
	}
	wf.syncer = &TableSyncerMock{
		PushStoredFunc: func(ctx context.Context, table string, records []models.Record) bool {
			wf.pushed <- records
			return true
		},
	}
	wf.locks = &LockInspectorMock{
		IsLockedFunc: func(ctx context.Context, table string) bool { return locked },
	}
	wf.watcher = NewWatcher(context.Background(), WatcherConfig{
		Store:    base.store,
		Net:      base.monitor,
		Locks:    wf.locks,
		Syncer:   wf.syncer,
		Bus:      base.bus,
		Logger:   setupTestLogger(),
		Table:    "documents",
		UserID:   "u1",
		Debounce: testDebounce,
	})
	t.Cleanup(wf.watcher.Close)
	return wf
}

func TestWatcher_DebouncedPush(t *testing.T) {
	ctx := context.Background()
	wf := newWatcherFixture(t, true, false)

	var mu sync.Mutex
	var changed []events.Event
	wf.fixture.bus.Subscribe(events.DataChanged, func(ev events.Event) {
		mu.Lock()
		changed = append(changed, ev)
		mu.Unlock()
	})

	first := []models.Record{{"id": "1", "title": "a"}}
	second := []models.Record{{"id": "1", "title": "ab"}}

	assert.True(t, wf.watcher.Update(ctx, first))
	assert.True(t, wf.watcher.Update(ctx, second))

	// Изменения сохраняются сразу, до отправки
	assert.Equal(t, second, wf.fixture.store.LoadData(ctx, "documents", "u1"))
	assert.True(t, wf.fixture.store.HasPendingChanges(ctx, "documents"))

	select {
	case got := <-wf.pushed:
		assert.Equal(t, second, got)
	case <-time.After(time.Second):
		t.Fatal("debounced push did not fire")
	}

	// Серия изменений дает одну отправку
	select {
	case <-wf.pushed:
		t.Fatal("unexpected second push")
	case <-time.After(3 * testDebounce):
	}

	mu.Lock()
	assert.Len(t, changed, 2)
	mu.Unlock()
}

func TestWatcher_UnchangedIsNoop(t *testing.T) {
	ctx := context.Background()
	wf := newWatcherFixture(t, true, false)

	records := []models.Record{{"id": "1"}}
	wf.fixture.store.SaveData(ctx, "documents", records, "u1")

	// Снимок, с которым создан наблюдатель, изменением не считается
	w := NewWatcher(ctx, WatcherConfig{
		Store:  wf.fixture.store,
		Net:    wf.monitor,
		Locks:  wf.locks,
		Syncer: wf.syncer,
		Table:  "documents",
		UserID: "u1",
	})
	defer w.Close()

	assert.False(t, w.Update(ctx, []models.Record{{"id": "1"}}))
	assert.False(t, wf.fixture.store.HasPendingChanges(ctx, "documents"))
	assert.Empty(t, wf.locks.IsLockedCalls())
}

func TestWatcher_OfflineDefersPush(t *testing.T) {
	ctx := context.Background()
	wf := newWatcherFixture(t, false, false)

	assert.True(t, wf.watcher.Update(ctx, []models.Record{{"id": "1"}}))
	assert.True(t, wf.fixture.store.HasPendingChanges(ctx, "documents"))
	assert.False(t, wf.watcher.Flush(ctx))
	assert.Empty(t, wf.syncer.PushStoredCalls())
}

func TestWatcher_LockedDefersPush(t *testing.T) {
	ctx := context.Background()
	wf := newWatcherFixture(t, true, true)

	assert.True(t, wf.watcher.Update(ctx, []models.Record{{"id": "1"}}))
	assert.Len(t, wf.locks.IsLockedCalls(), 1)

	select {
	case <-wf.pushed:
		t.Fatal("push scheduled while the table is locked")
	case <-time.After(3 * testDebounce):
	}
	assert.True(t, wf.fixture.store.HasPendingChanges(ctx, "documents"))
}

func TestWatcher_Flush(t *testing.T) {
	ctx := context.Background()
	wf := newWatcherFixture(t, true, false)
	wf.watcher.debounce = time.Hour

	records := []models.Record{{"id": "7"}}
	require.True(t, wf.watcher.Update(ctx, records))
	assert.True(t, wf.watcher.Flush(ctx))

	calls := wf.syncer.PushStoredCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "documents", calls[0].Table)
	assert.Equal(t, records, calls[0].Records)

	// Повторный Flush: отправлять нечего
	assert.False(t, wf.watcher.Flush(ctx))
}

func TestWatcher_CloseCancelsPush(t *testing.T) {
	ctx := context.Background()
	wf := newWatcherFixture(t, true, false)

	require.True(t, wf.watcher.Update(ctx, []models.Record{{"id": "1"}}))
	wf.watcher.Close()

	select {
	case <-wf.pushed:
		t.Fatal("push fired after Close")
	case <-time.After(3 * testDebounce):
	}

	// После закрытия изменения не принимаются, но отметка о несинхронизированных данных остается
	assert.False(t, wf.watcher.Update(ctx, []models.Record{{"id": "2"}}))
	assert.True(t, wf.fixture.store.HasPendingChanges(ctx, "documents"))
}

func TestWatcher_OfflineCancelsScheduledPush(t *testing.T) {
	ctx := context.Background()
	wf := newWatcherFixture(t, true, false)

	older := []models.Record{{"id": "1", "title": "A"}}
	newer := []models.Record{{"id": "1", "title": "B"}}

	require.True(t, wf.watcher.Update(ctx, older))
	wf.monitor.SetOnline(false)
	require.True(t, wf.watcher.Update(ctx, newer))

	// Запланированная отправка старой версии отменена
	select {
	case got := <-wf.pushed:
		t.Fatalf("stale push fired with %v", got)
	case <-time.After(3 * testDebounce):
	}
	assert.False(t, wf.watcher.Flush(ctx))
	assert.Equal(t, newer, wf.fixture.store.LoadData(ctx, "documents", "u1"))
	assert.True(t, wf.fixture.store.HasPendingChanges(ctx, "documents"))
}

func TestWatcher_LockCancelsScheduledPush(t *testing.T) {
	ctx := context.Background()
	wf := newWatcherFixture(t, true, false)

	var locked bool
	var mu sync.Mutex
	wf.locks.IsLockedFunc = func(ctx context.Context, table string) bool {
		mu.Lock()
		defer mu.Unlock()
		return locked
	}

	require.True(t, wf.watcher.Update(ctx, []models.Record{{"id": "1", "title": "A"}}))
	mu.Lock()
	locked = true
	mu.Unlock()
	require.True(t, wf.watcher.Update(ctx, []models.Record{{"id": "1", "title": "B"}}))

	select {
	case got := <-wf.pushed:
		t.Fatalf("stale push fired with %v", got)
	case <-time.After(3 * testDebounce):
	}
	assert.True(t, wf.fixture.store.HasPendingChanges(ctx, "documents"))
}

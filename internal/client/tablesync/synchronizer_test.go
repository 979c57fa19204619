package tablesync

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/complisync/internal/client/localstore"
	"github.com/iudanet/complisync/internal/client/lock"
	"github.com/iudanet/complisync/internal/client/network"
	"github.com/iudanet/complisync/internal/client/storage/boltdb"
	"github.com/iudanet/complisync/internal/events"
	"github.com/iudanet/complisync/internal/models"
	"github.com/iudanet/complisync/pkg/api"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func newTestDB(t *testing.T) *boltdb.Storage {
	t.Helper()
	db, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type fixture struct {
	api     *APIMock
	store   *localstore.Store
	locks   *lock.Locker
	monitor *network.Monitor
	bus     *events.Bus
	sync    *Synchronizer
	events  []events.Event
}

func newFixture(t *testing.T, online bool, apiMock *APIMock) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{
		api:     apiMock,
		store:   localstore.New(db, db, setupTestLogger()),
		locks:   lock.New(db, 0, setupTestLogger()),
		monitor: network.NewMonitor(nil, nil, online, nil),
		bus:     events.NewBus(nil),
	}
	for _, name := range []events.Name{events.SyncSuccess, events.SyncError, events.GlobalDataUpdate} {
		f.bus.Subscribe(name, func(ev events.Event) { f.events = append(f.events, ev) })
	}
	f.sync = New(apiMock, f.store, f.monitor, f.bus, Config{Locks: f.locks}, setupTestLogger())
	return f
}

func TestSynchronizer_LoadDataOffline(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false, &APIMock{})

	local := []models.Record{{"id": "1", "title": "local"}}
	f.store.SaveData(ctx, "documents", local, "u1")

	got := f.sync.LoadData(ctx, "documents", "u1", LoadOptions{})
	assert.Equal(t, local, got)
	// Офлайн: без сетевых вызовов
	assert.Empty(t, f.api.LoadTableCalls())
}

func TestSynchronizer_LoadDataMergesAndPersists(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true, &APIMock{
		LoadTableFunc: func(ctx context.Context, table, userID string) ([]models.Record, error) {
			deadline, ok := ctx.Deadline()
			assert.True(t, ok)
			assert.WithinDuration(t, time.Now().Add(DefaultLoadTimeout), deadline, time.Second)
			return []models.Record{
				{"id": "1", "title": "server", "date_modification": "2024-01-01T00:00:00Z"},
				{"id": "2", "title": "server only"},
			}, nil
		},
	})

	f.store.SaveData(ctx, "documents", []models.Record{
		{"id": "1", "title": "local", "date_modification": "2024-02-01T00:00:00Z"},
		{"id": "3", "title": "offline addition"},
	}, "u1")

	want := []models.Record{
		{"id": "1", "title": "local", "date_modification": "2024-02-01T00:00:00Z"},
		{"id": "2", "title": "server only"},
		{"id": "3", "title": "offline addition"},
	}

	got := f.sync.LoadData(ctx, "documents", "u1", LoadOptions{})
	assert.Equal(t, want, got)
	assert.Equal(t, want, f.store.LoadData(ctx, "documents", "u1"))

	_, ok := f.store.LastSynced(ctx, "documents")
	assert.True(t, ok)
}

func TestSynchronizer_LoadDataFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true, &APIMock{
		LoadTableFunc: func(ctx context.Context, table, userID string) ([]models.Record, error) {
			return nil, context.DeadlineExceeded
		},
	})

	local := []models.Record{{"id": "1"}}
	f.store.SaveData(ctx, "raci", local, "u1")

	assert.Equal(t, local, f.sync.LoadData(ctx, "raci", "u1", LoadOptions{}))
	_, ok := f.store.LastSynced(ctx, "raci")
	assert.False(t, ok)
}

func TestSynchronizer_ForceSyncFromServer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false, &APIMock{
		LoadTableFunc: func(ctx context.Context, table, userID string) ([]models.Record, error) {
			deadline, ok := ctx.Deadline()
			require.True(t, ok)
			assert.WithinDuration(t, time.Now().Add(DefaultForceTimeout), deadline, time.Second)
			return []models.Record{{"id": "9"}}, nil
		},
	})

	got := f.sync.ForceSyncFromServer(ctx, "membres", "u1")
	assert.Equal(t, []models.Record{{"id": "9"}}, got)
	assert.Len(t, f.api.LoadTableCalls(), 1)
}

func TestSynchronizer_LoadDataInvalidTable(t *testing.T) {
	f := newFixture(t, true, &APIMock{})
	got := f.sync.LoadData(context.Background(), "../etc", "u1", LoadOptions{})
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSynchronizer_SyncDataOffline(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false, &APIMock{})

	records := []models.Record{{"id": "1", "title": "draft"}}
	result := f.sync.SyncData(ctx, "documents", records, "u1", SyncOptions{})

	assert.True(t, result.Success)
	assert.True(t, result.Queued)
	assert.Empty(t, f.api.SyncTableCalls())

	// Данные сохранены и помечены к отправке
	assert.Equal(t, records, f.store.LoadData(ctx, "documents", "u1"))
	assert.True(t, f.store.HasPendingChanges(ctx, "documents"))
}

func TestSynchronizer_SyncDataSuccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true, &APIMock{
		SyncTableFunc: func(ctx context.Context, table, userID string, records []models.Record) (*api.SyncResponse, error) {
			assert.Equal(t, "documents", table)
			assert.Equal(t, "u1", userID)
			return &api.SyncResponse{Success: true, Message: "saved", Count: len(records)}, nil
		},
	})
	f.store.MarkUnsyncedChanges(ctx, "documents")

	result := f.sync.SyncData(ctx, "documents", []models.Record{{"id": "1"}, {"id": "2"}}, "u1", SyncOptions{})

	assert.True(t, result.Success)
	assert.False(t, result.Queued)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, "saved", result.Message)
	require.NotNil(t, result.Timestamp)

	assert.False(t, f.store.HasPendingChanges(ctx, "documents"))
	require.Len(t, f.events, 1)
	assert.Equal(t, events.SyncSuccess, f.events[0].Name)
	assert.Equal(t, events.TablePayload{Table: "documents", Count: 2, Message: "saved"}, f.events[0].Payload)
}

func TestSynchronizer_SyncDataFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true, &APIMock{
		SyncTableFunc: func(ctx context.Context, table, userID string, records []models.Record) (*api.SyncResponse, error) {
			return nil, errors.New("server reported failure: quota")
		},
	})

	records := []models.Record{{"id": "1"}}
	result := f.sync.SyncData(ctx, "documents", records, "u1", SyncOptions{})

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "quota")
	assert.Nil(t, result.Timestamp)

	// Локальная запись сохранена, таблица ждет повторной отправки
	assert.Equal(t, records, f.store.LoadData(ctx, "documents", "u1"))
	assert.True(t, f.store.HasPendingChanges(ctx, "documents"))
	require.Len(t, f.events, 1)
	assert.Equal(t, events.SyncError, f.events[0].Name)
}

func TestSynchronizer_SyncDataForcedWhileOffline(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false, &APIMock{
		SyncTableFunc: func(ctx context.Context, table, userID string, records []models.Record) (*api.SyncResponse, error) {
			return &api.SyncResponse{Success: true}, nil
		},
	})

	result := f.sync.SyncData(ctx, "raci", nil, "u1", SyncOptions{Force: true})
	assert.True(t, result.Success)
	assert.False(t, result.Queued)
	assert.Equal(t, "raci synchronized", result.Message)
	assert.Len(t, f.api.SyncTableCalls(), 1)
}

func TestSynchronizer_Push(t *testing.T) {
	f := newFixture(t, true, &APIMock{
		SyncTableFunc: func(ctx context.Context, table, userID string, records []models.Record) (*api.SyncResponse, error) {
			_, ok := ctx.Deadline()
			assert.True(t, ok)
			return &api.SyncResponse{Success: true, Count: 1}, nil
		},
	})

	resp, err := f.sync.Push(context.Background(), "raci", "u1", []models.Record{{"id": "1"}})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Count)
	// Push не трогает локальное хранилище
	assert.Empty(t, f.store.LoadData(context.Background(), "raci", "u1"))

	_, err = f.sync.Push(context.Background(), "bad name", "u1", nil)
	assert.Error(t, err)
}

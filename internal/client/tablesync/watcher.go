package tablesync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/iudanet/complisync/internal/client/localstore"
	"github.com/iudanet/complisync/internal/events"
	"github.com/iudanet/complisync/internal/models"
)

// DefaultDebounce задержка перед отправкой изменений на сервер
const DefaultDebounce = 2 * time.Second

//go:generate moq -out tablesyncer_mock.go . TableSyncer

// TableSyncer pushes a table under the per-table lock. Implemented by the Coordinator.
// The records passed are already the stored snapshot, so the syncer must not write
// them back over a newer one.
type TableSyncer interface {
	PushStored(ctx context.Context, table string, records []models.Record) bool
}

//go:generate moq -out lockinspector_mock.go . LockInspector

// LockInspector reports whether a push of table is in flight.
type LockInspector interface {
	IsLocked(ctx context.Context, table string) bool
}

// WatcherConfig wires a Watcher.
type WatcherConfig struct {
	Store    *localstore.Store
	Net      Connectivity
	Locks    LockInspector
	Syncer   TableSyncer
	Bus      *events.Bus
	Logger   *slog.Logger
	Table    string
	UserID   string
	Debounce time.Duration
}

// Watcher is the reactive variant of the synchronizer for one table: it is fed the
// current records after every mutation, persists real changes immediately and pushes
// them after a quiet period.
type Watcher struct {
	store    *localstore.Store
	net      Connectivity
	locks    LockInspector
	syncer   TableSyncer
	bus      *events.Bus
	logger   *slog.Logger
	timer    *time.Timer
	pending  []models.Record
	table    string
	userID   string
	debounce time.Duration
	last     uint64
	seq      uint64
	mu       sync.Mutex
	closed   bool
}

// NewWatcher creates a Watcher seeded with the stored snapshot, so feeding it the data
// it was loaded with is not a change.
func NewWatcher(ctx context.Context, cfg WatcherConfig) *Watcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	w := &Watcher{
		store:    cfg.Store,
		net:      cfg.Net,
		locks:    cfg.Locks,
		syncer:   cfg.Syncer,
		bus:      cfg.Bus,
		logger:   cfg.Logger.With("table", cfg.Table),
		table:    cfg.Table,
		userID:   cfg.UserID,
		debounce: cfg.Debounce,
	}

	if fp, err := models.Fingerprint(cfg.Store.LoadData(ctx, cfg.Table, cfg.UserID)); err == nil {
		w.last = fp
	}

	return w
}

// Table returns the watched table name.
func (w *Watcher) Table() string {
	return w.table
}

// Update compares records with the last seen content. On change they are saved,
// the table is marked pending and, when online with the lock free, a push is
// scheduled after the debounce delay. Returns whether records changed.
func (w *Watcher) Update(ctx context.Context, records []models.Record) bool {
	fp, err := models.Fingerprint(records)
	if err != nil {
		w.logger.Error("Failed to fingerprint records", "error", err)
		return false
	}

	w.mu.Lock()
	if w.closed || fp == w.last {
		w.mu.Unlock()
		return false
	}
	w.last = fp
	w.mu.Unlock()

	w.store.SaveData(ctx, w.table, records, w.userID)
	w.store.MarkUnsyncedChanges(ctx, w.table)
	if w.bus != nil {
		w.bus.Publish(events.DataChanged, events.TablePayload{Table: w.table, Count: len(records)})
	}

	// Отложенная отправка старых данных больше не нужна: таблица помечена,
	// новая версия уйдет при следующей синхронизации
	if !w.net.IsOnline() {
		w.cancel()
		w.logger.Debug("Offline, push deferred")
		return true
	}
	if w.locks.IsLocked(ctx, w.table) {
		w.cancel()
		w.logger.Debug("Sync in progress, push deferred")
		return true
	}

	w.schedule(models.CloneRecords(records))
	return true
}

func (w *Watcher) schedule(records []models.Record) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.seq++
	seq := w.seq
	w.pending = records
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.fire(seq)
	})
}

// cancel отменяет запланированную отправку
func (w *Watcher) cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.seq++
	w.pending = nil
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// fire отправляет изменения, если за время ожидания не было более новых
func (w *Watcher) fire(seq uint64) {
	w.mu.Lock()
	if w.closed || seq != w.seq || w.pending == nil {
		w.mu.Unlock()
		return
	}
	records := w.pending
	w.pending = nil
	w.timer = nil
	w.mu.Unlock()

	if !w.syncer.PushStored(context.Background(), w.table, records) {
		w.logger.Debug("Debounced push did not complete, table stays pending")
	}
}

// Flush pushes a scheduled change immediately. Returns false when nothing was
// scheduled or the push did not complete.
func (w *Watcher) Flush(ctx context.Context) bool {
	w.mu.Lock()
	if w.pending == nil {
		w.mu.Unlock()
		return false
	}
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.seq++
	records := w.pending
	w.pending = nil
	w.mu.Unlock()

	return w.syncer.PushStored(ctx, w.table, records)
}

// Close cancels a scheduled push. The change stays marked pending in the store.
func (w *Watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closed = true
	w.pending = nil
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

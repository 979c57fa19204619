// Package coordinator serializes pushes per table and keeps the in-memory sync state
// of every table the process has touched.
//
// A push is guarded by the per-table lock and tagged with the generation of the table
// at the moment it started. A completion whose generation is no longer current belongs
// to a superseded request and is discarded.
package coordinator

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/iudanet/complisync/internal/client/localstore"
	"github.com/iudanet/complisync/internal/client/lock"
	"github.com/iudanet/complisync/internal/events"
	"github.com/iudanet/complisync/internal/models"
	"github.com/iudanet/complisync/pkg/api"
)

// Defaults
const (
	DefaultMaxParallel = 2
	DefaultSettleDelay = time.Second
)

//go:generate moq -out pusher_mock.go . Pusher

// Pusher sends a table snapshot to the server. tablesync.Synchronizer.Push implements it.
type Pusher interface {
	Push(ctx context.Context, table, userID string, records []models.Record) (*api.SyncResponse, error)
}

// Locker is the per-table sync lock. *lock.Locker implements it.
type Locker interface {
	Acquire(ctx context.Context, table string) (lock.Token, bool, error)
	Release(ctx context.Context, table string, token lock.Token) error
	IsLocked(ctx context.Context, table string) bool
}

// Connectivity reports the current network state.
type Connectivity interface {
	IsOnline() bool
}

// Config wires a Coordinator.
type Config struct {
	Pusher Pusher
	Locks  Locker
	Net    Connectivity
	Store  *localstore.Store
	Bus    *events.Bus
	Logger *slog.Logger
	UserID string
	// MaxParallel ограничивает число таблиц, синхронизируемых одновременно в SyncAll
	MaxParallel int
	// SettleDelay пауза после восстановления связи перед SyncAll
	SettleDelay time.Duration
}

// Coordinator is the Global Sync Coordinator.
type Coordinator struct {
	pusher      Pusher
	locks       Locker
	net         Connectivity
	store       *localstore.Store
	bus         *events.Bus
	logger      *slog.Logger
	states      map[string]*models.SyncState
	pending     map[string]struct{}
	generations map[string]uint64
	operations  map[string]string
	cancel      context.CancelFunc
	settle      *time.Timer
	unsubscribe []func()
	userID      string
	wg          sync.WaitGroup
	maxParallel int
	settleDelay time.Duration
	mu          sync.Mutex
	saveMu      sync.Mutex
}

// New creates a Coordinator. Call Start to react to bus events.
func New(cfg Config) *Coordinator {
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = DefaultMaxParallel
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = DefaultSettleDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Coordinator{
		pusher:      cfg.Pusher,
		locks:       cfg.Locks,
		net:         cfg.Net,
		store:       cfg.Store,
		bus:         cfg.Bus,
		logger:      cfg.Logger,
		userID:      cfg.UserID,
		maxParallel: cfg.MaxParallel,
		settleDelay: cfg.SettleDelay,
		states:      make(map[string]*models.SyncState),
		pending:     make(map[string]struct{}),
		generations: make(map[string]uint64),
		operations:  make(map[string]string),
	}
}

// UserID returns the user the coordinator synchronizes for.
func (c *Coordinator) UserID() string {
	return c.userID
}

// SyncTable pushes records as the new snapshot of table. It returns true only when the
// server accepted this very request; offline, lock contention, failure and superseded
// results all return false and leave the table pending.
func (c *Coordinator) SyncTable(ctx context.Context, table string, records []models.Record) bool {
	return c.SyncTableWithID(ctx, table, records, "")
}

// SyncTableWithID is SyncTable with a batch id attached to log lines.
func (c *Coordinator) SyncTableWithID(ctx context.Context, table string, records []models.Record, batchID string) bool {
	return c.syncTable(ctx, table, records, batchID, false)
}

// PushStored pushes records that are already the stored snapshot of table, as the
// Watcher and SyncAll do. Unlike SyncTable it never overwrites the store: a snapshot
// written meanwhile is newer than records and stays pending.
func (c *Coordinator) PushStored(ctx context.Context, table string, records []models.Record) bool {
	return c.syncTable(ctx, table, records, "", true)
}

func (c *Coordinator) syncTable(ctx context.Context, table string, records []models.Record, batchID string, stored bool) bool {
	gen, opID := c.begin(table)
	logger := c.logger.With("table", table, "op", opID)
	if batchID != "" {
		logger = logger.With("batch", batchID)
	}
	level := c.traceLevel(ctx, table)

	// Присвоить id записям без него, чтобы сервер и клиент могли их сопоставить
	original := records
	records, normalized := normalizeIDs(records)
	if normalized > 0 {
		logger.Log(ctx, level, "Assigned ids to new records", "count", normalized)
	}

	switch {
	case !stored:
		// Локальная копия пишется всегда: данные не теряются ни при каком исходе
		c.store.SaveData(ctx, table, records, c.userID)
	case normalized > 0:
		if !c.replaceIfStored(ctx, table, original, records) {
			logger.Log(ctx, level, "Stored snapshot changed, ids not written back")
		}
	}

	if !c.net.IsOnline() {
		c.markPending(ctx, table)
		logger.Log(ctx, level, "Offline, table left pending")
		return false
	}

	token, ok, err := c.locks.Acquire(ctx, table)
	if err != nil {
		c.markPending(ctx, table)
		logger.Error("Failed to acquire sync lock", "error", err)
		return false
	}
	if !ok {
		c.markPending(ctx, table)
		logger.Log(ctx, level, "Sync already in progress, skipping")
		return false
	}
	logger.Log(ctx, level, "Sync lock acquired", "generation", gen)

	c.setSyncing(table, true)

	resp, pushErr := c.pusher.Push(ctx, table, c.userID, records)

	// Блокировку снимаем до любых других действий, включая отброшенный результат
	if err := c.locks.Release(context.WithoutCancel(ctx), table, token); err != nil {
		logger.Warn("Failed to release sync lock", "error", err)
	}

	if !c.isCurrent(table, gen) {
		// Более новая попытка могла уже взять блокировку
		c.setSyncing(table, c.locks.IsLocked(ctx, table))
		logger.Info("Discarding result of superseded sync", "generation", gen)
		return false
	}

	if pushErr != nil {
		c.fail(ctx, table, pushErr.Error())
		logger.Warn("Table sync failed", "error", pushErr)
		return false
	}

	c.succeed(ctx, table)
	if !c.store.Holds(ctx, table, c.userID, records) {
		// пока шла отправка, локальная копия изменилась: она еще не на сервере
		c.markPending(ctx, table)
		logger.Info("Local snapshot changed during push, table stays pending")
	}
	logger.Log(ctx, level, "Table synchronized", "count", resp.Count)
	c.publish(events.SyncSuccess, events.TablePayload{Table: table, Count: resp.Count, Message: resp.Message})

	return true
}

// SyncAll pushes every pending table from its stored snapshot. Tables are independent,
// so a failure of one does not stop the others.
func (c *Coordinator) SyncAll(ctx context.Context) map[string]bool {
	tables := c.PendingTables(ctx)
	results := make(map[string]bool, len(tables))
	if len(tables) == 0 {
		return results
	}

	if !c.net.IsOnline() {
		c.logger.Debug("Offline, SyncAll skipped", "pending", len(tables))
		for _, table := range tables {
			results[table] = false
		}
		return results
	}

	batchID := uuid.NewString()
	c.logger.Info("Synchronizing pending tables", "batch", batchID, "tables", tables)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxParallel)
	for _, table := range tables {
		g.Go(func() error {
			records := c.store.LoadData(gctx, table, c.userID)
			ok := c.syncTable(gctx, table, records, batchID, true)

			mu.Lock()
			results[table] = ok
			mu.Unlock()
			// Частичный отказ штатен: ошибку наружу не передаем
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// State returns a copy of the sync state of table, creating it on first use.
func (c *Coordinator) State(table string) models.SyncState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.stateLocked(table)
}

// States returns copies of all known table states.
func (c *Coordinator) States() map[string]models.SyncState {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]models.SyncState, len(c.states))
	for table, st := range c.states {
		out[table] = *st
	}
	return out
}

// Global aggregates the table states: syncing or failed if any table is, last synced
// at the most recent table success.
func (c *Coordinator) Global() models.GlobalState {
	c.mu.Lock()
	defer c.mu.Unlock()

	var g models.GlobalState
	for _, st := range c.states {
		g.IsSyncing = g.IsSyncing || st.IsSyncing
		g.SyncFailed = g.SyncFailed || st.SyncFailed
		if st.LastSynced != nil && (g.LastSynced == nil || st.LastSynced.After(*g.LastSynced)) {
			t := *st.LastSynced
			g.LastSynced = &t
		}
	}
	return g
}

// PendingTables returns the union of the in-memory pending set and the tables marked
// pending in the store, sorted.
func (c *Coordinator) PendingTables(ctx context.Context) []string {
	stored := c.store.PendingTables(ctx)

	c.mu.Lock()
	set := maps.Clone(c.pending)
	c.mu.Unlock()

	for _, table := range stored {
		set[table] = struct{}{}
	}
	return slices.Sorted(maps.Keys(set))
}

// MarkPending adds table to the pending set.
func (c *Coordinator) MarkPending(ctx context.Context, table string) {
	c.markPending(ctx, table)
}

// OperationID returns the id of the most recent sync attempt of table.
func (c *Coordinator) OperationID(table string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.operations[table]
}

// SetTracked enables verbose logging of every sync step of table.
func (c *Coordinator) SetTracked(ctx context.Context, table string, tracked bool) {
	c.store.SetTracked(ctx, table, tracked)
}

// IsTracked reports whether table is tracked.
func (c *Coordinator) IsTracked(ctx context.Context, table string) bool {
	return c.store.IsTracked(ctx, table)
}

// IsLocked reports whether a push of table is in flight.
func (c *Coordinator) IsLocked(ctx context.Context, table string) bool {
	return c.locks.IsLocked(ctx, table)
}

// begin увеличивает поколение таблицы и регистрирует новую операцию
func (c *Coordinator) begin(table string) (uint64, string) {
	opID := uuid.NewString()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[table]++
	c.operations[table] = opID
	c.stateLocked(table)
	return c.generations[table], opID
}

func (c *Coordinator) isCurrent(table string, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[table] == gen
}

func (c *Coordinator) stateLocked(table string) *models.SyncState {
	st, ok := c.states[table]
	if !ok {
		st = &models.SyncState{}
		c.states[table] = st
	}
	return st
}

func (c *Coordinator) setSyncing(table string, syncing bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stateLocked(table).IsSyncing = syncing
}

func (c *Coordinator) markPending(ctx context.Context, table string) {
	c.mu.Lock()
	c.pending[table] = struct{}{}
	c.mu.Unlock()
	c.store.MarkUnsyncedChanges(ctx, table)
}

func (c *Coordinator) succeed(ctx context.Context, table string) {
	now := time.Now()

	c.mu.Lock()
	st := c.stateLocked(table)
	st.IsSyncing = false
	st.LastSynced = &now
	st.SyncFailed = false
	st.LastError = ""
	delete(c.pending, table)
	c.mu.Unlock()

	c.store.MarkSynced(ctx, table)
	c.store.SetLastSynced(ctx, table, now)
	c.store.SetLastSuccess(ctx, table, now)
}

func (c *Coordinator) fail(ctx context.Context, table, message string) {
	c.mu.Lock()
	st := c.stateLocked(table)
	st.IsSyncing = false
	st.SyncFailed = true
	st.LastError = message
	c.pending[table] = struct{}{}
	c.mu.Unlock()

	c.store.MarkUnsyncedChanges(ctx, table)
	c.store.SetSyncFailed(ctx, table, message)
	c.publish(events.SyncError, events.TablePayload{Table: table, Message: message})
}

func (c *Coordinator) traceLevel(ctx context.Context, table string) slog.Level {
	if c.store.IsTracked(ctx, table) {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}

func (c *Coordinator) publish(name events.Name, payload any) {
	if c.bus != nil {
		c.bus.Publish(name, payload)
	}
}

// replaceIfStored записывает next, только если в хранилище все еще prev
func (c *Coordinator) replaceIfStored(ctx context.Context, table string, prev, next []models.Record) bool {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	if !c.store.Holds(ctx, table, c.userID, prev) {
		return false
	}
	c.store.SaveData(ctx, table, next, c.userID)
	return true
}

// normalizeIDs returns a copy of records where every record has an id.
func normalizeIDs(records []models.Record) ([]models.Record, int) {
	count := 0
	for _, rec := range records {
		if !rec.HasID() {
			count++
		}
	}
	if count == 0 {
		return records, 0
	}

	out := models.CloneRecords(records)
	for _, rec := range out {
		if !rec.HasID() {
			rec[models.FieldID] = uuid.NewString()
		}
	}
	return out, count
}

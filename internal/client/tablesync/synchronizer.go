// Package tablesync drives the load and push cycles of named tables: the imperative
// Synchronizer, the reactive Watcher and the global snapshot exchange.
//
// None of the user-facing operations return errors. Loads degrade to the local
// snapshot and pushes report failure through models.SyncResult; the local write always
// happens first so nothing the caller saved is lost.
package tablesync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/complisync/internal/client/localstore"
	"github.com/iudanet/complisync/internal/client/reconcile"
	"github.com/iudanet/complisync/internal/events"
	"github.com/iudanet/complisync/internal/models"
	"github.com/iudanet/complisync/internal/validation"
	"github.com/iudanet/complisync/pkg/api"
)

// Default timeouts
const (
	DefaultLoadTimeout  = 10 * time.Second
	DefaultPushTimeout  = 15 * time.Second
	DefaultForceTimeout = 30 * time.Second
)

//go:generate moq -out api_mock.go . API

// API is the server contract used by the Synchronizer.
type API interface {
	LoadTable(ctx context.Context, table, userID string) ([]models.Record, error)
	SyncTable(ctx context.Context, table, userID string, records []models.Record) (*api.SyncResponse, error)
	LoadGlobal(ctx context.Context, userID string) (*models.GlobalData, error)
	SyncGlobal(ctx context.Context, userID string, data models.GlobalData) (*api.SyncResponse, error)
}

// Connectivity reports the current network state.
type Connectivity interface {
	IsOnline() bool
}

// Locker takes the sync locks of several tables at once. *lock.Locker implements it.
type Locker interface {
	AcquireAll(ctx context.Context, tables ...string) (func(), error)
}

// Config holds the network timeouts and the table locks PushGlobal holds while it
// pushes. Zero timeouts select the defaults.
type Config struct {
	Locks        Locker
	LoadTimeout  time.Duration
	PushTimeout  time.Duration
	ForceTimeout time.Duration
}

// LoadOptions modifies LoadData.
type LoadOptions struct {
	Timeout time.Duration
	// Force ignores the offline state and uses the forced timeout
	Force bool
}

// SyncOptions modifies SyncData.
type SyncOptions struct {
	Timeout time.Duration
	// Force pushes even when the monitor reports offline
	Force bool
}

// Synchronizer is the Table Synchronizer.
type Synchronizer struct {
	api    API
	store  *localstore.Store
	net    Connectivity
	bus    *events.Bus
	logger *slog.Logger
	cfg    Config
}

// New creates a Synchronizer. bus may be nil.
func New(client API, store *localstore.Store, net Connectivity, bus *events.Bus, cfg Config, logger *slog.Logger) *Synchronizer {
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = DefaultLoadTimeout
	}
	if cfg.PushTimeout <= 0 {
		cfg.PushTimeout = DefaultPushTimeout
	}
	if cfg.ForceTimeout <= 0 {
		cfg.ForceTimeout = DefaultForceTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Synchronizer{
		api:    client,
		store:  store,
		net:    net,
		bus:    bus,
		logger: logger,
		cfg:    cfg,
	}
}

// Store returns the Local Table Store the synchronizer writes to.
func (s *Synchronizer) Store() *localstore.Store {
	return s.store
}

// LoadData returns the freshest snapshot available. Online, the server snapshot is
// merged with the local one, persisted and returned; on any failure, and offline, the
// local snapshot is returned.
func (s *Synchronizer) LoadData(ctx context.Context, table, userID string, opts LoadOptions) []models.Record {
	if err := validation.ValidateTableName(table); err != nil {
		s.logger.Error("Refusing to load table", "table", table, "error", err)
		return []models.Record{}
	}

	local := s.store.LoadData(ctx, table, userID)

	if !opts.Force && !s.net.IsOnline() {
		s.logger.Debug("Offline, using local snapshot", "table", table, "count", len(local))
		return local
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = s.cfg.LoadTimeout
		if opts.Force {
			timeout = s.cfg.ForceTimeout
		}
	}

	loadCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	server, err := s.api.LoadTable(loadCtx, table, userID)
	if err != nil {
		s.logger.Warn("Failed to load table from server, using local snapshot",
			"table", table,
			"error", err)
		return local
	}

	merged, stats := reconcile.MergeWithStats(local, server)
	s.store.SaveData(ctx, table, merged, userID)
	s.store.SetLastSynced(ctx, table, time.Now())

	s.logger.Debug("Table loaded from server",
		"table", table,
		"server_only", stats.ServerOnly,
		"local_only", stats.LocalOnly,
		"local_wins", stats.LocalWins,
		"server_wins", stats.ServerWins)

	return merged
}

// ForceSyncFromServer reloads table from the server even if the monitor reports offline.
func (s *Synchronizer) ForceSyncFromServer(ctx context.Context, table, userID string) []models.Record {
	return s.LoadData(ctx, table, userID, LoadOptions{Force: true})
}

// SyncData saves records locally and pushes them to the server.
func (s *Synchronizer) SyncData(ctx context.Context, table string, records []models.Record, userID string, opts SyncOptions) models.SyncResult {
	if err := validation.ValidateTableName(table); err != nil {
		return models.SyncResult{Success: false, Message: err.Error()}
	}

	// Сначала локальная запись: ни падение, ни офлайн не теряют данные
	s.store.SaveData(ctx, table, records, userID)

	if !opts.Force && !s.net.IsOnline() {
		s.store.MarkUnsyncedChanges(ctx, table)
		s.logger.Info("Offline, changes saved locally", "table", table, "count", len(records))
		return models.SyncResult{
			Success: true,
			Queued:  true,
			Message: "Saved locally, will sync when online",
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = s.cfg.PushTimeout
	}
	pushCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := s.api.SyncTable(pushCtx, table, userID, records)
	if err != nil {
		s.store.MarkUnsyncedChanges(ctx, table)
		s.logger.Warn("Failed to sync table", "table", table, "error", err)
		s.publish(events.SyncError, events.TablePayload{Table: table, Message: err.Error()})
		return models.SyncResult{Success: false, Message: err.Error()}
	}

	now := time.Now()
	s.store.MarkSynced(ctx, table)
	s.store.SetLastSynced(ctx, table, now)

	message := resp.Message
	if message == "" {
		message = fmt.Sprintf("%s synchronized", table)
	}
	s.logger.Info("Table synchronized", "table", table, "count", resp.Count)
	s.publish(events.SyncSuccess, events.TablePayload{Table: table, Count: resp.Count, Message: message})

	return models.SyncResult{
		Success:   true,
		Message:   message,
		Timestamp: &now,
		Count:     resp.Count,
	}
}

// Push sends records to the server with the push timeout and nothing else: no local
// write, no markers, no events. The Coordinator wraps it with its own bookkeeping.
func (s *Synchronizer) Push(ctx context.Context, table, userID string, records []models.Record) (*api.SyncResponse, error) {
	if err := validation.ValidateTableName(table); err != nil {
		return nil, err
	}

	pushCtx, cancel := context.WithTimeout(ctx, s.cfg.PushTimeout)
	defer cancel()

	return s.api.SyncTable(pushCtx, table, userID, records)
}

func (s *Synchronizer) publish(name events.Name, payload any) {
	if s.bus != nil {
		s.bus.Publish(name, payload)
	}
}

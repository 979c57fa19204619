package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iudanet/complisync/internal/models"
	"github.com/iudanet/complisync/pkg/api"
)

//go:generate moq -out syncer_mock.go . Syncer

// Syncer is the part of the API client used by the default handlers.
type Syncer interface {
	SyncTable(ctx context.Context, table, userID string, records []models.Record) (*api.SyncResponse, error)
	SyncGlobal(ctx context.Context, userID string, data models.GlobalData) (*api.SyncResponse, error)
}

//go:generate moq -out locker_mock.go . Locker

// Locker takes the per-table sync locks. *lock.Locker implements it; a busy table is
// reported with an error wrapping lock.ErrBusy.
type Locker interface {
	AcquireAll(ctx context.Context, tables ...string) (func(), error)
}

// SyncedFunc is called after the server accepted records of table for userID.
type SyncedFunc func(ctx context.Context, table, userID string, records []models.Record)

// HandlerConfig wires the default handlers.
type HandlerConfig struct {
	Syncer Syncer
	Locks  Locker
	// OnSynced снимает отметку о несинхронизированных данных; может быть nil
	OnSynced SyncedFunc
}

// TableHandler posts op.Data as the records of table op.Type to {T}-sync.php while
// holding the lock of that table.
func TableHandler(cfg HandlerConfig) Handler {
	return func(ctx context.Context, op models.SyncOperation) error {
		var records []models.Record
		if len(op.Data) > 0 {
			decoded, err := models.DecodeRecords(op.Data)
			if err != nil {
				return fmt.Errorf("invalid %s payload: %w", op.Type, err)
			}
			records = decoded
		}

		table := string(op.Type)
		release, err := cfg.Locks.AcquireAll(ctx, table)
		if err != nil {
			return err
		}
		defer release()

		if _, err := cfg.Syncer.SyncTable(ctx, table, op.UserID, records); err != nil {
			return err
		}
		if cfg.OnSynced != nil {
			cfg.OnSynced(ctx, table, op.UserID, records)
		}
		return nil
	}
}

// GlobalHandler posts op.Data as the global snapshot to global-sync.php while holding
// the locks of every global table.
func GlobalHandler(cfg HandlerConfig) Handler {
	return func(ctx context.Context, op models.SyncOperation) error {
		var data models.GlobalData
		if len(op.Data) > 0 {
			if err := json.Unmarshal(op.Data, &data); err != nil {
				return fmt.Errorf("invalid global payload: %w", err)
			}
		}

		tables := models.GlobalTables()
		names := make([]string, len(tables))
		for i, kind := range tables {
			names[i] = kind.String()
		}
		release, err := cfg.Locks.AcquireAll(ctx, names...)
		if err != nil {
			return err
		}
		defer release()

		if _, err := cfg.Syncer.SyncGlobal(ctx, op.UserID, data); err != nil {
			return err
		}
		if cfg.OnSynced != nil {
			for _, kind := range tables {
				cfg.OnSynced(ctx, kind.String(), op.UserID, data.Table(kind))
			}
		}
		return nil
	}
}

// DefaultOptions wires the dispatch table: every known table and any unknown table
// kind go to their {T}-sync.php endpoint, "global" goes to global-sync.php.
func DefaultOptions(cfg HandlerConfig) Options {
	table := TableHandler(cfg)
	handlers := map[models.TableKind]Handler{
		models.TableGlobal: GlobalHandler(cfg),
	}
	for _, kind := range models.KnownTables() {
		handlers[kind] = table
	}
	return Options{
		Handlers: handlers,
		Fallback: table,
	}
}

// NewTableOperation builds an operation pushing records of table for userID.
func NewTableOperation(table models.TableKind, userID string, records []models.Record) (models.SyncOperation, error) {
	if records == nil {
		records = []models.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return models.SyncOperation{}, fmt.Errorf("failed to marshal %s records: %w", table, err)
	}
	return models.SyncOperation{Type: table, UserID: userID, Data: data}, nil
}

package tablesync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/complisync/internal/client/reconcile"
	"github.com/iudanet/complisync/internal/events"
	"github.com/iudanet/complisync/internal/models"
)

// LoadGlobal fetches the snapshot of all tables, merges every table present in the
// response with its local snapshot and persists the result. Offline, or when the
// request fails, the snapshot is assembled from local tables; the error is returned
// alongside it.
func (s *Synchronizer) LoadGlobal(ctx context.Context, userID string) (models.GlobalData, error) {
	if !s.net.IsOnline() {
		return s.localGlobal(ctx, userID), nil
	}

	loadCtx, cancel := context.WithTimeout(ctx, s.cfg.LoadTimeout)
	defer cancel()

	server, err := s.api.LoadGlobal(loadCtx, userID)
	if err != nil {
		s.logger.Warn("Failed to load global snapshot, using local tables", "error", err)
		return s.localGlobal(ctx, userID), fmt.Errorf("global load failed: %w", err)
	}

	var result models.GlobalData
	now := time.Now()
	for _, table := range models.GlobalTables() {
		remote := server.Table(table)
		local := s.store.LoadData(ctx, table.String(), userID)
		if remote == nil {
			// Таблицы нет в ответе: оставляем локальную как есть
			result.SetTable(table, local)
			continue
		}

		merged := reconcile.Merge(local, remote)
		s.store.SaveData(ctx, table.String(), merged, userID)
		s.store.SetLastSynced(ctx, table.String(), now)
		result.SetTable(table, merged)
	}

	s.logger.Info("Global snapshot loaded")
	s.publish(events.GlobalDataUpdate, result)

	return result, nil
}

// PushGlobal sends the local snapshot of all global tables to global-sync.php. The
// locks of every global table are held for the duration of the push; when one of them
// is busy nothing is sent and the tables stay pending.
func (s *Synchronizer) PushGlobal(ctx context.Context, userID string) models.SyncResult {
	data := s.localGlobal(ctx, userID)

	if !s.net.IsOnline() {
		s.markGlobalPending(ctx)
		return models.SyncResult{Success: true, Queued: true, Message: "Saved locally, will sync when online"}
	}

	if s.cfg.Locks == nil {
		return s.globalFailed(ctx, errors.New("sync lock is not configured"))
	}
	release, err := s.cfg.Locks.AcquireAll(ctx, globalTableNames()...)
	if err != nil {
		return s.globalFailed(ctx, err)
	}
	defer release()

	pushCtx, cancel := context.WithTimeout(ctx, s.cfg.PushTimeout)
	defer cancel()

	resp, err := s.api.SyncGlobal(pushCtx, userID, data)
	if err != nil {
		return s.globalFailed(ctx, err)
	}

	now := time.Now()
	for _, table := range models.GlobalTables() {
		// таблица, измененная во время отправки, остается в ожидании
		if !s.store.Holds(ctx, table.String(), userID, data.Table(table)) {
			continue
		}
		s.store.MarkSynced(ctx, table.String())
		s.store.SetLastSynced(ctx, table.String(), now)
	}
	s.publish(events.SyncSuccess, events.TablePayload{Table: models.TableGlobal.String(), Count: resp.Count, Message: resp.Message})

	return models.SyncResult{Success: true, Message: resp.Message, Count: resp.Count, Timestamp: &now}
}

func (s *Synchronizer) globalFailed(ctx context.Context, err error) models.SyncResult {
	s.logger.Warn("Failed to push global snapshot", "error", err)
	s.markGlobalPending(ctx)
	s.publish(events.SyncError, events.TablePayload{Table: models.TableGlobal.String(), Message: err.Error()})
	return models.SyncResult{Success: false, Message: err.Error()}
}

func (s *Synchronizer) markGlobalPending(ctx context.Context) {
	for _, table := range models.GlobalTables() {
		s.store.MarkUnsyncedChanges(ctx, table.String())
	}
}

func globalTableNames() []string {
	tables := models.GlobalTables()
	names := make([]string, len(tables))
	for i, table := range tables {
		names[i] = table.String()
	}
	return names
}

func (s *Synchronizer) localGlobal(ctx context.Context, userID string) models.GlobalData {
	var data models.GlobalData
	for _, table := range models.GlobalTables() {
		data.SetTable(table, s.store.LoadData(ctx, table.String(), userID))
	}
	return data
}

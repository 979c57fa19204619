// Package localstore keeps the last known snapshot of every table on disk, keyed per
// user, together with the per-table status markers (pending changes, last sync, last
// failure). Every write is visible to the next read; there is no cache above bbolt.
//
// Storage failures never reach callers: writes are best-effort and reads fall back to
// an empty snapshot. Both are logged.
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/iudanet/complisync/internal/client/storage"
	"github.com/iudanet/complisync/internal/models"
)

// Store is the Local Table Store.
type Store struct {
	tables  storage.TableStorage
	markers storage.MarkerStorage
	logger  *slog.Logger
}

// New creates a Store over the given storage backends.
func New(tables storage.TableStorage, markers storage.MarkerStorage, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		tables:  tables,
		markers: markers,
		logger:  logger,
	}
}

// Key returns the canonical storage key of a table snapshot.
func Key(table, userID string) string {
	return table + "_" + userID
}

// legacyKeys форматы ключей, которые писали старые версии клиента
func legacyKeys(table, userID string) []string {
	return []string{
		table + "Data_" + userID,
		userID + "_" + table,
	}
}

// SaveData replaces the stored snapshot of table for userID.
func (s *Store) SaveData(ctx context.Context, table string, records []models.Record, userID string) {
	if records == nil {
		records = []models.Record{}
	}

	data, err := json.Marshal(records)
	if err != nil {
		s.logger.Error("Failed to serialize table snapshot",
			"table", table,
			"user_id", userID,
			"error", err)
		return
	}

	if err := s.tables.PutTable(ctx, Key(table, userID), data); err != nil {
		s.logger.Error("Failed to save table snapshot",
			"table", table,
			"user_id", userID,
			"error", err)
		return
	}

	s.logger.Debug("Table snapshot saved",
		"table", table,
		"user_id", userID,
		"count", len(records))
}

// LoadData returns the last saved snapshot, or an empty slice when none exists or it
// cannot be read. A snapshot found under a legacy key is moved to the canonical key.
func (s *Store) LoadData(ctx context.Context, table, userID string) []models.Record {
	key := Key(table, userID)

	entry, err := s.tables.GetTable(ctx, key)
	if err == nil {
		return s.decode(table, userID, entry.Records)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		s.logger.Error("Failed to load table snapshot",
			"table", table,
			"user_id", userID,
			"error", err)
		return []models.Record{}
	}

	for _, legacy := range legacyKeys(table, userID) {
		entry, err := s.tables.GetTable(ctx, legacy)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			s.logger.Warn("Failed to read legacy table snapshot",
				"table", table,
				"key", legacy,
				"error", err)
			continue
		}

		records := s.decode(table, userID, entry.Records)
		s.migrate(ctx, table, userID, legacy, records)
		return records
	}

	return []models.Record{}
}

// migrate переносит снимок со старого ключа на канонический
func (s *Store) migrate(ctx context.Context, table, userID, legacy string, records []models.Record) {
	s.SaveData(ctx, table, records, userID)

	if err := s.tables.DeleteTable(ctx, legacy); err != nil {
		s.logger.Warn("Failed to delete legacy table snapshot",
			"table", table,
			"key", legacy,
			"error", err)
		return
	}

	s.logger.Info("Migrated legacy table snapshot",
		"table", table,
		"from", legacy,
		"to", Key(table, userID))
}

func (s *Store) decode(table, userID string, raw json.RawMessage) []models.Record {
	if len(raw) == 0 {
		return []models.Record{}
	}

	records, err := models.DecodeRecords(raw)
	if err != nil {
		s.logger.Error("Failed to parse table snapshot",
			"table", table,
			"user_id", userID,
			"error", err)
		return []models.Record{}
	}
	if records == nil {
		// "null" в хранилище
		records = []models.Record{}
	}

	return records
}

// Holds reports whether the stored snapshot of table has the same content as records.
// A push may only clear the pending marker of the snapshot it actually sent.
func (s *Store) Holds(ctx context.Context, table, userID string, records []models.Record) bool {
	want, err := models.Fingerprint(records)
	if err != nil {
		s.logger.Error("Failed to fingerprint records", "table", table, "error", err)
		return false
	}
	got, err := models.Fingerprint(s.LoadData(ctx, table, userID))
	if err != nil {
		s.logger.Error("Failed to fingerprint table snapshot", "table", table, "error", err)
		return false
	}
	return got == want
}

// LastModified returns when the snapshot of table was last written.
func (s *Store) LastModified(ctx context.Context, table, userID string) (time.Time, bool) {
	entry, err := s.tables.GetTable(ctx, Key(table, userID))
	if err != nil || entry.UpdatedAt.IsZero() {
		return time.Time{}, false
	}
	return entry.UpdatedAt, true
}

package storage

import (
	"context"

	"github.com/iudanet/complisync/internal/models"
)

//go:generate moq -out snapshot_mock.go . SnapshotStorage

// SnapshotStorage хранит последний присланный клиентом снимок таблицы.
// Каждый sync полностью заменяет снимок пары (user, table).
type SnapshotStorage interface {
	// SaveSnapshot replaces the stored snapshot of table for the user
	SaveSnapshot(ctx context.Context, userID, table string, records []models.Record) error

	// GetSnapshot returns the stored snapshot, an empty slice when nothing was saved yet
	GetSnapshot(ctx context.Context, userID, table string) ([]models.Record, error)

	// ListTables returns the names of the tables the user has snapshots for
	ListTables(ctx context.Context, userID string) ([]string, error)
}

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/complisync/internal/models"
)

// SaveSnapshot replaces the stored snapshot of table for the user
func (s *Storage) SaveSnapshot(ctx context.Context, userID, table string, records []models.Record) error {
	if records == nil {
		records = []models.Record{}
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal %s snapshot: %w", table, err)
	}

	query := `
		INSERT INTO table_snapshots (user_id, table_name, records, count, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, table_name) DO UPDATE SET
			records = excluded.records,
			count = excluded.count,
			updated_at = excluded.updated_at
	`

	if _, err := s.db.ExecContext(ctx, query, userID, table, string(payload), len(records), time.Now()); err != nil {
		return fmt.Errorf("failed to save %s snapshot: %w", table, err)
	}

	return nil
}

// GetSnapshot returns the stored snapshot or an empty slice
func (s *Storage) GetSnapshot(ctx context.Context, userID, table string) ([]models.Record, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT records FROM table_snapshots WHERE user_id = ? AND table_name = ?`,
		userID, table,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []models.Record{}, nil
		}
		return nil, fmt.Errorf("failed to get %s snapshot: %w", table, err)
	}

	records, err := models.DecodeRecords([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s snapshot: %w", table, err)
	}
	if records == nil {
		records = []models.Record{}
	}

	return records, nil
}

// ListTables returns the table names stored for the user, sorted by name
func (s *Storage) ListTables(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT table_name FROM table_snapshots WHERE user_id = ? ORDER BY table_name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	tables := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tables: %w", err)
	}

	return tables, nil
}

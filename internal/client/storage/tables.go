package storage

import (
	"context"
	"encoding/json"
	"time"
)

// TableEntry is a stored table snapshot together with its write time.
type TableEntry struct {
	UpdatedAt time.Time       `json:"updated_at"`
	Records   json.RawMessage `json:"records"`
}

//go:generate moq -out tables_mock.go . TableStorage

// TableStorage stores serialized table snapshots by key.
type TableStorage interface {
	// PutTable overwrites the snapshot stored under key
	PutTable(ctx context.Context, key string, records json.RawMessage) error

	// GetTable returns ErrNotFound if nothing is stored under key
	GetTable(ctx context.Context, key string) (*TableEntry, error)

	// DeleteTable is a no-op for a missing key
	DeleteTable(ctx context.Context, key string) error

	// TableKeys lists all stored keys with the given prefix
	TableKeys(ctx context.Context, prefix string) ([]string, error)
}

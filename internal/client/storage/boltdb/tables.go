package boltdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/complisync/internal/client/storage"
)

// PutTable overwrites the snapshot stored under key and stamps it with the current time
func (s *Storage) PutTable(ctx context.Context, key string, records json.RawMessage) error {
	entry := storage.TableEntry{
		UpdatedAt: time.Now().UTC(),
		Records:   records,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal table %s: %w", key, err)
	}

	return s.update(bucketTables, func(b *bbolt.Bucket) error {
		if err := b.Put([]byte(key), data); err != nil {
			return fmt.Errorf("failed to save table %s: %w", key, err)
		}
		return nil
	})
}

// GetTable returns the stored snapshot. Values written by older clients hold a bare
// JSON array without envelope; those are returned with zero UpdatedAt.
func (s *Storage) GetTable(ctx context.Context, key string) (*storage.TableEntry, error) {
	var entry *storage.TableEntry

	err := s.view(bucketTables, func(b *bbolt.Bucket) error {
		data := b.Get([]byte(key))
		if data == nil {
			return storage.ErrNotFound
		}

		// bbolt отдает память, валидную только внутри транзакции
		raw := bytes.Clone(data)
		if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
			entry = &storage.TableEntry{Records: trimmed}
			return nil
		}

		entry = &storage.TableEntry{}
		if err := json.Unmarshal(raw, entry); err != nil {
			return fmt.Errorf("failed to unmarshal table %s: %w", key, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// DeleteTable removes the snapshot stored under key
func (s *Storage) DeleteTable(ctx context.Context, key string) error {
	return s.update(bucketTables, func(b *bbolt.Bucket) error {
		if err := b.Delete([]byte(key)); err != nil {
			return fmt.Errorf("failed to delete table %s: %w", key, err)
		}
		return nil
	})
}

// TableKeys lists stored keys starting with prefix (all keys for an empty prefix)
func (s *Storage) TableKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	err := s.view(bucketTables, func(b *bbolt.Bucket) error {
		c := b.Cursor()
		p := []byte(prefix)
		for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return keys, nil
}

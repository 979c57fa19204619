package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/complisync/internal/models"
)

var queueKey = []byte("sync_queue")

// SaveQueue persists the whole queue
func (s *Storage) SaveQueue(ctx context.Context, ops []models.SyncOperation) error {
	if ops == nil {
		ops = []models.SyncOperation{}
	}
	data, err := json.Marshal(ops)
	if err != nil {
		return fmt.Errorf("failed to marshal sync queue: %w", err)
	}

	return s.update(bucketQueue, func(b *bbolt.Bucket) error {
		if err := b.Put(queueKey, data); err != nil {
			return fmt.Errorf("failed to save sync queue: %w", err)
		}
		return nil
	})
}

// LoadQueue returns the persisted queue, empty if none was saved
func (s *Storage) LoadQueue(ctx context.Context) ([]models.SyncOperation, error) {
	ops := []models.SyncOperation{}

	err := s.view(bucketQueue, func(b *bbolt.Bucket) error {
		data := b.Get(queueKey)
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &ops); err != nil {
			return fmt.Errorf("failed to unmarshal sync queue: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ops, nil
}

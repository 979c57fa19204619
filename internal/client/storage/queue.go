package storage

import (
	"context"

	"github.com/iudanet/complisync/internal/models"
)

//go:generate moq -out queue_mock.go . QueueStorage

// QueueStorage persists the whole sync operation queue as one value.
type QueueStorage interface {
	SaveQueue(ctx context.Context, ops []models.SyncOperation) error

	// LoadQueue returns an empty slice if no queue was saved
	LoadQueue(ctx context.Context) ([]models.SyncOperation, error)
}

package storage

import "context"

//go:generate moq -out markers_mock.go . MarkerStorage

// MarkerStorage stores small per-table status values (pending flags, timestamps, errors).
type MarkerStorage interface {
	SetMarker(ctx context.Context, key, value string) error

	// GetMarker returns ErrNotFound for a missing marker
	GetMarker(ctx context.Context, key string) (string, error)

	DeleteMarker(ctx context.Context, key string) error

	// ListMarkers returns all markers whose key starts with prefix
	ListMarkers(ctx context.Context, prefix string) (map[string]string, error)
}

package boltdb

import (
	"bytes"
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/complisync/internal/client/storage"
)

// SetMarker stores a status marker
func (s *Storage) SetMarker(ctx context.Context, key, value string) error {
	return s.update(bucketMarkers, func(b *bbolt.Bucket) error {
		if err := b.Put([]byte(key), []byte(value)); err != nil {
			return fmt.Errorf("failed to save marker %s: %w", key, err)
		}
		return nil
	})
}

// GetMarker returns storage.ErrNotFound if the marker is not set
func (s *Storage) GetMarker(ctx context.Context, key string) (string, error) {
	var value string

	err := s.view(bucketMarkers, func(b *bbolt.Bucket) error {
		data := b.Get([]byte(key))
		if data == nil {
			return storage.ErrNotFound
		}
		value = string(data)
		return nil
	})

	return value, err
}

// DeleteMarker removes a marker, missing markers are ignored
func (s *Storage) DeleteMarker(ctx context.Context, key string) error {
	return s.update(bucketMarkers, func(b *bbolt.Bucket) error {
		if err := b.Delete([]byte(key)); err != nil {
			return fmt.Errorf("failed to delete marker %s: %w", key, err)
		}
		return nil
	})
}

// ListMarkers returns all markers with the given key prefix
func (s *Storage) ListMarkers(ctx context.Context, prefix string) (map[string]string, error) {
	result := make(map[string]string)

	err := s.view(bucketMarkers, func(b *bbolt.Bucket) error {
		c := b.Cursor()
		p := []byte(prefix)
		for k, v := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, v = c.Next() {
			result[string(k)] = string(v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

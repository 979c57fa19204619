package localstore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/iudanet/complisync/internal/client/storage"
)

// Marker key prefixes. All markers are per table.
const (
	PrefixPending     = "pending_"
	PrefixLastSynced  = "last_synced_"
	PrefixSyncFailed  = "sync_failed_"
	PrefixSyncError   = "sync_error_"
	PrefixLastSuccess = "last_success_"
	PrefixTrack       = "sync_track_"

	markerTrue = "true"
)

// MarkUnsyncedChanges flags table as having local changes the server has not seen.
func (s *Store) MarkUnsyncedChanges(ctx context.Context, table string) {
	s.setMarker(ctx, PrefixPending+table, markerTrue)
}

// MarkSynced clears the pending flag of table.
func (s *Store) MarkSynced(ctx context.Context, table string) {
	s.deleteMarker(ctx, PrefixPending+table)
}

// HasPendingChanges reports whether table is flagged as pending.
func (s *Store) HasPendingChanges(ctx context.Context, table string) bool {
	return s.getMarker(ctx, PrefixPending+table) == markerTrue
}

// PendingTables lists all tables flagged as pending, sorted by name.
func (s *Store) PendingTables(ctx context.Context) []string {
	return s.flagged(ctx, PrefixPending)
}

// SetLastSynced records the time of the last successful exchange with the server.
func (s *Store) SetLastSynced(ctx context.Context, table string, at time.Time) {
	s.setMarker(ctx, PrefixLastSynced+table, at.UTC().Format(time.RFC3339Nano))
}

// LastSynced returns the time recorded by SetLastSynced.
func (s *Store) LastSynced(ctx context.Context, table string) (time.Time, bool) {
	return s.timeMarker(ctx, PrefixLastSynced+table)
}

// SetLastSuccess records a successful push made by the coordinator and clears any
// failure markers of table.
func (s *Store) SetLastSuccess(ctx context.Context, table string, at time.Time) {
	s.setMarker(ctx, PrefixLastSuccess+table, at.UTC().Format(time.RFC3339Nano))
	s.deleteMarker(ctx, PrefixSyncFailed+table)
	s.deleteMarker(ctx, PrefixSyncError+table)
}

// LastSuccess returns the time recorded by SetLastSuccess.
func (s *Store) LastSuccess(ctx context.Context, table string) (time.Time, bool) {
	return s.timeMarker(ctx, PrefixLastSuccess+table)
}

// SetSyncFailed persists a failed push so that it survives restarts.
func (s *Store) SetSyncFailed(ctx context.Context, table, message string) {
	s.setMarker(ctx, PrefixSyncFailed+table, markerTrue)
	s.setMarker(ctx, PrefixSyncError+table, message)
}

// SyncFailure returns the persisted failure of table, if any.
func (s *Store) SyncFailure(ctx context.Context, table string) (string, bool) {
	if s.getMarker(ctx, PrefixSyncFailed+table) != markerTrue {
		return "", false
	}
	return s.getMarker(ctx, PrefixSyncError+table), true
}

// SetTracked enables or disables verbose sync logging for table.
func (s *Store) SetTracked(ctx context.Context, table string, tracked bool) {
	if tracked {
		s.setMarker(ctx, PrefixTrack+table, markerTrue)
		return
	}
	s.deleteMarker(ctx, PrefixTrack+table)
}

// IsTracked reports whether verbose sync logging is enabled for table.
func (s *Store) IsTracked(ctx context.Context, table string) bool {
	return s.getMarker(ctx, PrefixTrack+table) == markerTrue
}

// TrackedTables lists tables with verbose sync logging enabled.
func (s *Store) TrackedTables(ctx context.Context) []string {
	return s.flagged(ctx, PrefixTrack)
}

func (s *Store) flagged(ctx context.Context, prefix string) []string {
	markers, err := s.markers.ListMarkers(ctx, prefix)
	if err != nil {
		s.logger.Error("Failed to list markers", "prefix", prefix, "error", err)
		return nil
	}

	tables := make([]string, 0, len(markers))
	for key, value := range markers {
		if value == markerTrue {
			tables = append(tables, strings.TrimPrefix(key, prefix))
		}
	}
	sort.Strings(tables)
	return tables
}

func (s *Store) timeMarker(ctx context.Context, key string) (time.Time, bool) {
	raw := s.getMarker(ctx, key)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		s.logger.Warn("Invalid time marker", "key", key, "value", raw, "error", err)
		return time.Time{}, false
	}
	return t, true
}

func (s *Store) setMarker(ctx context.Context, key, value string) {
	if err := s.markers.SetMarker(ctx, key, value); err != nil {
		s.logger.Error("Failed to save marker", "key", key, "error", err)
	}
}

func (s *Store) getMarker(ctx context.Context, key string) string {
	value, err := s.markers.GetMarker(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("Failed to read marker", "key", key, "error", err)
		}
		return ""
	}
	return value
}

func (s *Store) deleteMarker(ctx context.Context, key string) {
	if err := s.markers.DeleteMarker(ctx, key); err != nil {
		s.logger.Error("Failed to delete marker", "key", key, "error", err)
	}
}

// Package reconcile merges a local table snapshot with the server's version of it.
//
// Records are matched by id. For a record present on both sides the one with the later
// date_modification wins; when either side has no usable date the server wins. Records
// only the client knows about are kept, so offline additions are never lost.
package reconcile

import (
	"github.com/iudanet/complisync/internal/models"
)

// Stats counts how each record of a merge was resolved.
type Stats struct {
	ServerOnly int
	LocalOnly  int
	LocalWins  int
	ServerWins int
}

// Merge returns the reconciled snapshot: server records first in server order (each
// replaced by its local counterpart when that one is newer), then local-only records
// in local order. The inputs are not modified.
func Merge(local, server []models.Record) []models.Record {
	merged, _ := MergeWithStats(local, server)
	return merged
}

// MergeWithStats is Merge that also reports how records were resolved.
func MergeWithStats(local, server []models.Record) ([]models.Record, Stats) {
	var stats Stats

	if len(local) == 0 {
		stats.ServerOnly = len(server)
		return cloneOrEmpty(server), stats
	}
	if len(server) == 0 {
		stats.LocalOnly = len(local)
		return cloneOrEmpty(local), stats
	}

	// Без идентификаторов сопоставить записи нельзя: сервер побеждает целиком
	if !server[0].HasID() || !local[0].HasID() {
		stats.ServerWins = len(server)
		return models.CloneRecords(server), stats
	}

	// Индекс локальных записей по id
	byID := make(map[string]int, len(local))
	for i, rec := range local {
		if id, ok := rec.ID(); ok {
			if _, dup := byID[id]; !dup {
				byID[id] = i
			}
		}
	}
	consumed := make([]bool, len(local))

	merged := make([]models.Record, 0, len(server)+len(local))
	for _, srv := range server {
		id, ok := srv.ID()
		if !ok {
			merged = append(merged, srv.Clone())
			stats.ServerOnly++
			continue
		}

		idx, found := byID[id]
		if !found {
			merged = append(merged, srv.Clone())
			stats.ServerOnly++
			continue
		}
		delete(byID, id)
		consumed[idx] = true

		if localIsNewer(local[idx], srv) {
			merged = append(merged, local[idx].Clone())
			stats.LocalWins++
			continue
		}
		merged = append(merged, srv.Clone())
		stats.ServerWins++
	}

	// Локальные записи, которых нет на сервере (добавлены офлайн)
	for i, rec := range local {
		if consumed[i] {
			continue
		}
		merged = append(merged, rec.Clone())
		stats.LocalOnly++
	}

	return merged, stats
}

// localIsNewer при равенстве дат или отсутствии даты побеждает сервер
func localIsNewer(local, server models.Record) bool {
	localAt, ok := local.ModifiedAt()
	if !ok {
		return false
	}
	serverAt, ok := server.ModifiedAt()
	if !ok {
		return false
	}
	return localAt.After(serverAt)
}

func cloneOrEmpty(records []models.Record) []models.Record {
	if len(records) == 0 {
		return []models.Record{}
	}
	return models.CloneRecords(records)
}

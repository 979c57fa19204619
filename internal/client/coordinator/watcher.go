package coordinator

import (
	"context"
	"time"

	"github.com/iudanet/complisync/internal/client/tablesync"
)

// NewWatcher creates a Watcher for table whose debounced pushes go through the
// coordinator and respect its locks.
func (c *Coordinator) NewWatcher(ctx context.Context, table string, debounce time.Duration) *tablesync.Watcher {
	return tablesync.NewWatcher(ctx, tablesync.WatcherConfig{
		Store:    c.store,
		Net:      c.net,
		Locks:    c,
		Syncer:   c,
		Bus:      c.bus,
		Logger:   c.logger,
		Table:    table,
		UserID:   c.userID,
		Debounce: debounce,
	})
}

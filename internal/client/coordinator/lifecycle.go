package coordinator

import (
	"context"
	"time"

	"github.com/iudanet/complisync/internal/events"
)

// Start rebuilds the pending set from the store and subscribes to the bus:
// connectivity restored syncs all pending tables after the settle delay, a forced sync
// marks the named tables pending and syncs, navigation re-attempts pending tables.
func (c *Coordinator) Start(ctx context.Context) {
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	pending := c.store.PendingTables(runCtx)
	c.mu.Lock()
	for _, table := range pending {
		c.pending[table] = struct{}{}
	}
	c.mu.Unlock()
	if len(pending) > 0 {
		c.logger.Info("Restored pending tables", "tables", pending)
	}

	if c.bus == nil {
		return
	}

	unsub := []func(){
		c.bus.Subscribe(events.ConnectivityRestored, func(events.Event) {
			c.scheduleSettled(runCtx)
		}),
		c.bus.Subscribe(events.ForceSyncRequired, func(ev events.Event) {
			if p, ok := ev.Payload.(events.ForceSyncPayload); ok {
				for _, table := range p.Tables {
					c.markPending(runCtx, table)
				}
			}
			c.goSyncAll(runCtx, "force-sync")
		}),
		c.bus.Subscribe(events.Navigation, func(events.Event) {
			c.goSyncAll(runCtx, "navigation")
		}),
	}

	c.mu.Lock()
	c.unsubscribe = unsub
	c.mu.Unlock()
}

// Stop unsubscribes from the bus, cancels a scheduled sync and waits for running ones.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	unsub := c.unsubscribe
	c.unsubscribe = nil
	if c.settle != nil {
		c.settle.Stop()
		c.settle = nil
	}
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	for _, fn := range unsub {
		fn()
	}
	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
}

// scheduleSettled откладывает SyncAll, чтобы соединение успело стабилизироваться
func (c *Coordinator) scheduleSettled(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.settle != nil {
		c.settle.Stop()
	}
	c.settle = time.AfterFunc(c.settleDelay, func() {
		c.goSyncAll(ctx, "connectivity-restored")
	})
}

// goSyncAll запускает SyncAll в фоне: обработчики шины не должны блокировать
func (c *Coordinator) goSyncAll(ctx context.Context, reason string) {
	if ctx.Err() != nil {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		results := c.SyncAll(ctx)
		if len(results) > 0 {
			c.logger.Info("Pending tables synchronized", "reason", reason, "results", results)
		}
	}()
}

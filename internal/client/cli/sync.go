package cli

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/iudanet/complisync/internal/models"
)

func (a *App) syncCmd() *cobra.Command {
	var pull bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push every pending table and drain the operation queue",
		Long: `Push every table with unsynchronized changes from its local copy, then run the
pending operations of the queue. Tables are independent: one failing table does not
stop the others.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSync(cmd.Context(), pull)
		},
	}
	cmd.Flags().BoolVar(&pull, "pull", false, "Fetch the global snapshot after pushing")
	return cmd
}

func (a *App) runSync(ctx context.Context, pull bool) error {
	session, err := a.session(ctx)
	if err != nil {
		return err
	}

	if !a.probe(ctx) {
		pending := a.store.PendingTables(ctx)
		a.io.Printf("Server %s is not reachable, %d table(s) left pending\n", a.client.BaseURL(), len(pending))
		return nil
	}

	coord := a.newCoordinator(session.UserID)
	results := coord.SyncAll(ctx)

	q, err := a.newQueue(ctx)
	if err != nil {
		return err
	}
	status := q.Drain(ctx)
	q.Close()

	if len(results) == 0 {
		a.io.Println("✓ No pending tables")
	}
	failed := 0
	for _, table := range slices.Sorted(maps.Keys(results)) {
		if results[table] {
			a.io.Printf("✓ %s\n", table)
			continue
		}
		failed++
		reason := coord.State(table).LastError
		if reason == "" {
			reason = "left pending"
		}
		a.io.Printf("✗ %s: %s\n", table, reason)
	}
	if status.Total > 0 {
		a.io.Printf("Queue: %d pending, %d failed\n", status.Pending, status.Failed)
	}

	if pull {
		data, err := a.syncer.LoadGlobal(ctx, session.UserID)
		if err != nil {
			return fmt.Errorf("failed to pull global snapshot: %w", err)
		}
		for _, kind := range models.GlobalTables() {
			a.io.Printf("↓ %s: %d records\n", kind, len(data.Table(kind)))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d table(s) failed to synchronize", failed)
	}
	return nil
}

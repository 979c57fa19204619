package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iudanet/complisync/internal/client/filebridge"
	"github.com/iudanet/complisync/internal/client/queue"
	"github.com/iudanet/complisync/internal/models"
	"github.com/iudanet/complisync/internal/validation"
)

func (a *App) pushCmd() *cobra.Command {
	var viaQueue bool

	cmd := &cobra.Command{
		Use:   "push <table> [file.json]",
		Short: "Replace the server snapshot of a table",
		Long: `Store a table snapshot locally and push it to the server. The snapshot is read
from file.json (a JSON array of records) or, without a file, taken from the local
copy. A push that cannot complete leaves the table pending for the next sync.

"global" pushes every table of the global snapshot from the local copies.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var file string
			if len(args) == 2 {
				file = args[1]
			}
			return a.runPush(cmd.Context(), args[0], file, viaQueue)
		},
	}
	cmd.Flags().BoolVar(&viaQueue, "queue", false, "Send through the durable operation queue with retries")
	return cmd
}

func (a *App) runPush(ctx context.Context, table, file string, viaQueue bool) error {
	if err := validation.ValidateTableName(table); err != nil {
		return err
	}
	session, err := a.session(ctx)
	if err != nil {
		return err
	}
	a.probe(ctx)

	if table == models.TableGlobal.String() {
		if file != "" {
			return errors.New("global is assembled from the local tables, push each table file separately")
		}
		return a.pushGlobal(ctx, session.UserID)
	}

	var records []models.Record
	if file != "" {
		records, err = filebridge.ReadRecords(file)
		if err != nil {
			return err
		}
	} else {
		records = a.store.LoadData(ctx, table, session.UserID)
	}

	if viaQueue {
		return a.pushQueued(ctx, table, session.UserID, records)
	}

	coord := a.newCoordinator(session.UserID)
	if coord.SyncTable(ctx, table, records) {
		a.io.Printf("✓ %s synchronized (%d records)\n", table, len(records))
		return nil
	}

	state := coord.State(table)
	switch {
	case !a.monitor.IsOnline():
		a.io.Printf("Server is not reachable: %s saved locally and left pending\n", table)
	case state.LastError != "":
		return fmt.Errorf("push of %s failed, changes are kept locally: %s", table, state.LastError)
	default:
		a.io.Printf("Another sync of %s is in progress: saved locally and left pending\n", table)
	}
	return nil
}

func (a *App) pushGlobal(ctx context.Context, userID string) error {
	result := a.syncer.PushGlobal(ctx, userID)
	if !result.Success {
		return fmt.Errorf("global push failed: %s", result.Message)
	}
	if result.Queued {
		a.io.Println("Server is not reachable: global tables left pending")
		return nil
	}
	a.io.Printf("✓ global snapshot synchronized (%d records)\n", result.Count)
	return nil
}

// pushQueued сохраняет локально и ставит операцию в очередь, затем ждет ее обработки
func (a *App) pushQueued(ctx context.Context, table, userID string, records []models.Record) error {
	a.store.SaveData(ctx, table, records, userID)

	q, err := a.newQueue(ctx)
	if err != nil {
		return err
	}
	defer q.Close()

	op, err := queue.NewTableOperation(models.TableKind(table), userID, records)
	if err != nil {
		return err
	}
	id, err := q.AddToQueue(ctx, op)
	if err != nil {
		return err
	}

	status := q.Drain(ctx)
	for _, pending := range q.Operations() {
		if pending.ID != id {
			continue
		}
		if pending.Status == models.OperationFailed {
			return fmt.Errorf("queued push of %s failed after %d attempts: %s", table, pending.RetryCount, pending.Error)
		}
		a.io.Printf("Operation %s queued (%s), %d operation(s) waiting\n", id, pending.Status, status.Pending)
		return nil
	}

	// выполненные операции удаляются из очереди, отметку снял queueSynced
	a.io.Printf("✓ %s synchronized through the queue (%d records)\n", table, len(records))
	return nil
}

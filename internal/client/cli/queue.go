package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func (a *App) queueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the durable sync operation queue",
	}

	var asJSON bool
	status := &cobra.Command{
		Use:   "status",
		Short: "Show queued operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.open(ctx); err != nil {
				return err
			}
			q, err := a.newQueue(ctx)
			if err != nil {
				return err
			}
			defer q.Close()

			if asJSON {
				enc := json.NewEncoder(a.io)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Operations any `json:"operations"`
					Status     any `json:"status"`
				}{q.Operations(), q.GetQueueStatus()})
			}

			st := q.GetQueueStatus()
			a.io.Printf("%d operation(s): %d pending, %d processing, %d failed\n", st.Total, st.Pending, st.Processing, st.Failed)
			if st.Total == 0 {
				return nil
			}

			w := tabwriter.NewWriter(a.io, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tTABLE\tSTATUS\tRETRIES\tQUEUED AT\tERROR")
			for _, op := range q.Operations() {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
					op.ID, op.Type, op.Status, op.RetryCount, op.Timestamp.Local().Format(time.DateTime), op.Error)
			}
			return w.Flush()
		},
	}
	status.Flags().BoolVar(&asJSON, "json", false, "Output the queue as JSON")

	retry := &cobra.Command{
		Use:   "retry",
		Short: "Reset failed operations to pending and run them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := a.session(ctx); err != nil {
				return err
			}
			a.probe(ctx)

			q, err := a.newQueue(ctx)
			if err != nil {
				return err
			}
			defer q.Close()

			n := q.RetryFailedOperations(ctx)
			st := q.Drain(ctx)
			a.io.Printf("Retried %d operation(s): %d pending, %d failed\n", n, st.Pending, st.Failed)
			if !a.monitor.IsOnline() && st.Pending > 0 {
				a.io.Println("Server is not reachable, operations will run on the next sync")
			}
			return nil
		},
	}

	clearFailed := &cobra.Command{
		Use:   "clear",
		Short: "Drop failed operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.open(ctx); err != nil {
				return err
			}
			q, err := a.newQueue(ctx)
			if err != nil {
				return err
			}
			defer q.Close()

			a.io.Printf("Removed %d failed operation(s)\n", q.ClearFailedOperations(ctx))
			return nil
		},
	}

	cmd.AddCommand(status, retry, clearFailed)
	return cmd
}

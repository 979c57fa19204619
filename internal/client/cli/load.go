package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/iudanet/complisync/internal/client/tablesync"
	"github.com/iudanet/complisync/internal/models"
	"github.com/iudanet/complisync/internal/validation"
)

func (a *App) loadCmd() *cobra.Command {
	var (
		force  bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "load <table>",
		Short: "Fetch a table and print the merged snapshot",
		Long: `Fetch the server snapshot of a table, merge it with the local copy, store the
result and print it as JSON. Offline, or when the server fails, the local copy is
printed instead.

"global" fetches every table of the global snapshot at once.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLoad(cmd.Context(), args[0], force, output)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Query the server even if the probe reports offline")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the records to this file instead of stdout")
	return cmd
}

func (a *App) runLoad(ctx context.Context, table string, force bool, output string) error {
	if err := validation.ValidateTableName(table); err != nil {
		return err
	}
	session, err := a.session(ctx)
	if err != nil {
		return err
	}
	online := a.probe(ctx)

	var result any
	if table == models.TableGlobal.String() {
		if !online && !force {
			return fmt.Errorf("server %s is not reachable", a.client.BaseURL())
		}
		data, err := a.syncer.LoadGlobal(ctx, session.UserID)
		if err != nil {
			return err
		}
		result = data
	} else {
		records := a.syncer.LoadData(ctx, table, session.UserID, tablesync.LoadOptions{Force: force})
		if !online && !force {
			a.logger.Warn("Server is not reachable, printing the local copy", "table", table)
		}
		if records == nil {
			records = []models.Record{}
		}
		result = records
	}

	var out io.Writer = a.io
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", output, err)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iudanet/complisync/internal/server/storage/sqlite"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, closer, err := loadConfig(cmd, false)
		if err != nil {
			return err
		}
		defer func() { _ = closer.Close() }()

		ctx := cmd.Context()
		// миграции применяются при открытии
		store, err := sqlite.New(ctx, cfg.DBPath)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		version, err := store.SchemaVersion(ctx)
		if err != nil {
			return err
		}
		logger.Debug("Migrations applied", "db", cfg.DBPath, "version", version)
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s is at schema version %d\n", cfg.DBPath, version)
		return nil
	},
}

// Command complisync-server is the reference server of the table synchronization
// engine: it authenticates users and stores one snapshot per user and table.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iudanet/complisync/internal/config"
	"github.com/iudanet/complisync/internal/logging"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

var (
	configFile string

	rootCmd = &cobra.Command{
		Use:   "complisync-server",
		Short: "Reference sync server for complisync clients",
		Long: `complisync-server serves the auth.php, {table}-load.php, {table}-sync.php and
global endpoints used by complisync clients, backed by a SQLite database.

Examples:
  # Create the database and a user
  complisync-server migrate --db server.db
  complisync-server adduser alice --db server.db

  # Serve (the secret may also come from COMPLISYNC_JWT_SECRET)
  complisync-server serve --db server.db --jwt-secret "$SECRET"`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Path to YAML config file")
	pf.String("db", "complisync-server.db", "Path to SQLite database")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-file", "", "Write logs to a rotated file instead of stderr")

	rootCmd.AddCommand(serveCmd, migrateCmd, adduserCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// loadConfig reads the configuration of cmd and builds its logger. The closer
// releases the log file.
func loadConfig(cmd *cobra.Command, requireSecret bool) (*config.ServerConfig, *slog.Logger, io.Closer, error) {
	cfg, err := config.LoadServer(configFile, cmd.Flags())
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.Validate(requireSecret); err != nil {
		return nil, nil, nil, err
	}

	logger, closer, err := logging.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, closer, nil
}

package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the command tree of the client.
func (a *App) NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "complisync",
		Short: "Offline-first table synchronization client",
		Long: `complisync keeps local copies of the application tables and synchronizes
them with the server. Changes are always written locally first; tables that could not
be pushed stay pending until the server is reachable again.

Examples:
  # Log in and pull the documents table
  complisync login -u alice
  complisync load documents

  # Push a table snapshot from a file
  complisync push documents documents.json

  # Run in the background, pushing files dropped into ./outbox
  complisync watch --watch-dir ./outbox`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.Close()
		},
	}
	root.SetOut(a.io)
	root.SetErr(a.errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "Path to YAML config file")
	pf.String("server", "http://localhost:8080", "Sync server base URL")
	pf.String("db", "complisync.db", "Path to local database")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-file", "", "Write logs to a rotated file instead of stderr")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.statusCmd(),
		a.loadCmd(),
		a.pushCmd(),
		a.syncCmd(),
		a.queueCmd(),
		a.probeCmd(),
		a.watchCmd(),
		a.versionCmd(),
	)
	return root
}

package cli

import (
	"github.com/spf13/cobra"
)

func (a *App) probeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check whether the sync server is reachable",
		Long: `Probe {server}/health once. Any answer below 500 counts as reachable; transport
errors, timeouts and 5xx do not.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.open(ctx); err != nil {
				return err
			}
			if a.probe(ctx) {
				a.io.Printf("✓ %s is online\n", a.client.BaseURL())
				return nil
			}
			a.io.Printf("✗ %s is offline\n", a.client.BaseURL())
			return nil
		},
	}
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// версия не требует ни конфигурации, ни базы
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(_ *cobra.Command, _ []string) {
			a.io.Printf("complisync version %s\n", a.build.Version)
			a.io.Printf("  commit: %s\n", a.build.Commit)
			a.io.Printf("  built:  %s\n", a.build.Date)
		},
	}
}

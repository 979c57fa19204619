package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "complisync-server version %s\n", Version)
		_, _ = fmt.Fprintf(out, "  commit: %s\n", GitCommit)
		_, _ = fmt.Fprintf(out, "  built:  %s\n", BuildDate)
	},
}

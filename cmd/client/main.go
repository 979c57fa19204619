// Command complisync is the client of the table synchronization engine.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/complisync/internal/client/cli"
	"github.com/iudanet/complisync/internal/client/iocli"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(iocli.NewStdio(), os.Stderr, cli.BuildInfo{
		Version: Version,
		Commit:  GitCommit,
		Date:    BuildDate,
	})

	err := app.NewRootCommand().ExecuteContext(ctx)
	// PersistentPostRun не вызывается при ошибке команды
	err = errors.Join(err, app.Close())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

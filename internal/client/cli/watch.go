package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/iudanet/complisync/internal/client/coordinator"
	"github.com/iudanet/complisync/internal/client/filebridge"
	"github.com/iudanet/complisync/internal/client/queue"
	"github.com/iudanet/complisync/internal/events"
)

func (a *App) watchCmd() *cobra.Command {
	var trace []string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the sync engine until interrupted",
		Long: `Run the sync engine in the foreground:

- probe the server every sync.probe_interval and sync pending tables when it comes back
- push {table}.json files written into --watch-dir after the debounce delay
- retry pending tables and queued operations on sync.retry_schedule (cron syntax)
- on SIGHUP re-attempt every pending table

Stop with Ctrl+C or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runWatch(cmd.Context(), trace)
		},
	}
	cmd.Flags().String("watch-dir", "", "Directory of {table}.json files to push on change")
	cmd.Flags().StringSliceVar(&trace, "trace", nil, "Tables whose sync steps are logged at info level")
	return cmd
}

func (a *App) runWatch(ctx context.Context, trace []string) error {
	session, err := a.session(ctx)
	if err != nil {
		return err
	}
	logger := a.logger.With("user_id", session.UserID)

	coord := a.newCoordinator(session.UserID)
	for _, table := range trace {
		coord.SetTracked(ctx, table, true)
	}

	q, err := a.newQueue(ctx)
	if err != nil {
		return err
	}
	defer q.Close()

	// Координатор подписывается до первой проверки связи, чтобы переход в online
	// запустил синхронизацию отложенных таблиц
	coord.Start(ctx)
	defer coord.Stop()

	monitorCtx, stopMonitor := context.WithCancel(ctx)
	monitorDone := make(chan struct{})
	go func() {
		defer close(monitorDone)
		a.monitor.Run(monitorCtx, a.client.HealthURL(), a.cfg.Sync.ProbeInterval)
	}()
	defer func() {
		stopMonitor()
		<-monitorDone
	}()

	if dir := a.cfg.Sync.WatchDir; dir != "" {
		bridge, err := filebridge.New(filebridge.Config{
			NewUpdater: func(ctx context.Context, table string) filebridge.Updater {
				return coord.NewWatcher(ctx, table, a.cfg.Sync.Debounce)
			},
			Logger:   logger,
			Dir:      dir,
			Debounce: a.cfg.Sync.FileDebounce,
		})
		if err != nil {
			return err
		}
		if err := bridge.Start(ctx); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		defer func() {
			if err := bridge.Stop(); err != nil {
				logger.Warn("Failed to stop file bridge", "error", err)
			}
		}()
		a.io.Printf("Watching %s for table files\n", dir)
	}

	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := scheduler.AddFunc(a.cfg.Sync.RetrySchedule, func() {
		a.retryPending(ctx, coord, q)
	}); err != nil {
		return fmt.Errorf("invalid retry schedule %q: %w", a.cfg.Sync.RetrySchedule, err)
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	a.io.Printf("Syncing as %s with %s, press Ctrl+C to stop\n", session.Username, a.client.BaseURL())
	logger.Info("Sync engine started",
		"server", a.client.BaseURL(),
		"retry_schedule", a.cfg.Sync.RetrySchedule,
		"watch_dir", a.cfg.Sync.WatchDir)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Sync engine stopping")
			return nil
		case <-hup:
			// аналог popstate: повторить отложенные таблицы
			a.bus.Publish(events.Navigation, nil)
		}
	}
}

// retryPending периодическая попытка: отложенные таблицы и очередь, только online
func (a *App) retryPending(ctx context.Context, coord *coordinator.Coordinator, q *queue.Queue) {
	if ctx.Err() != nil || !a.monitor.IsOnline() {
		return
	}
	if pending := coord.PendingTables(ctx); len(pending) > 0 {
		results := coord.SyncAll(ctx)
		a.logger.Debug("Scheduled retry finished", "tables", len(results))
	}
	q.ProcessQueue(ctx)
}

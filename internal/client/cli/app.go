// Package cli implements the complisync client commands.
//
// Every command shares one App: configuration and logger are set up before the command
// runs, the local database and the sync components are opened on first use and closed
// when the command returns.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	clientapi "github.com/iudanet/complisync/internal/client/api"
	"github.com/iudanet/complisync/internal/client/auth"
	"github.com/iudanet/complisync/internal/client/coordinator"
	"github.com/iudanet/complisync/internal/client/iocli"
	"github.com/iudanet/complisync/internal/client/localstore"
	"github.com/iudanet/complisync/internal/client/lock"
	"github.com/iudanet/complisync/internal/client/network"
	"github.com/iudanet/complisync/internal/client/queue"
	"github.com/iudanet/complisync/internal/client/storage"
	"github.com/iudanet/complisync/internal/client/storage/boltdb"
	"github.com/iudanet/complisync/internal/client/tablesync"
	"github.com/iudanet/complisync/internal/config"
	"github.com/iudanet/complisync/internal/events"
	"github.com/iudanet/complisync/internal/logging"
	"github.com/iudanet/complisync/internal/models"
)

// PasswordEnv переменная окружения с паролем для неинтерактивного входа
const PasswordEnv = config.EnvPrefix + "_PASSWORD"

// ErrNotLoggedIn is returned by commands that need a session when there is none.
var ErrNotLoggedIn = errors.New("not logged in, run 'complisync login' first")

// BuildInfo is set by the linker in main.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// App holds the components of one command invocation.
type App struct {
	io       iocli.IO
	errOut   io.Writer
	getenv   func(string) string
	cfg      *config.ClientConfig
	logger   *slog.Logger
	logClose io.Closer
	db       *boltdb.Storage
	bus      *events.Bus
	sessions *auth.SessionService
	client   *clientapi.Client
	monitor  *network.Monitor
	store    *localstore.Store
	locks    *lock.Locker
	syncer   *tablesync.Synchronizer
	build    BuildInfo
	cfgFile  string
	pwFile   string
}

// NewApp creates an App writing to streams. Diagnostics and logs go to errOut.
func NewApp(streams iocli.IO, errOut io.Writer, build BuildInfo) *App {
	return &App{
		io:     streams,
		errOut: errOut,
		getenv: os.Getenv,
		build:  build,
	}
}

// setup загружает конфигурацию с учетом флагов команды и создает логгер
func (a *App) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadClient(a.cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	logger, closer, err := logging.New(cfg.Log, a.errOut)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	a.logClose = closer
	return nil
}

// open opens the local database and builds the sync components. It is idempotent.
func (a *App) open(ctx context.Context) error {
	if a.db != nil {
		return nil
	}
	if a.cfg == nil {
		return errors.New("configuration is not loaded")
	}

	db, err := boltdb.New(ctx, a.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", a.cfg.DBPath, err)
	}
	a.db = db
	a.bus = events.NewBus(a.logger)

	// вход идет без токена, поэтому у сервиса сессий свой клиент без TokenSource
	a.sessions = auth.NewService(clientapi.NewClient(a.cfg.ServerURL, nil, a.logger), db, a.logger)
	a.client = clientapi.NewClient(a.cfg.ServerURL, a.sessions, a.logger)

	a.monitor = network.NewMonitor(a.bus, a.client.HTTPClient(), false, a.logger)
	a.monitor.SetProbeTimeout(a.cfg.Sync.ProbeTimeout)

	a.store = localstore.New(db, db, a.logger)
	a.locks = lock.New(db, a.cfg.Sync.LockStaleAfter, a.logger)
	a.syncer = tablesync.New(a.client, a.store, a.monitor, a.bus, tablesync.Config{
		Locks:        a.locks,
		LoadTimeout:  a.cfg.Sync.LoadTimeout,
		PushTimeout:  a.cfg.Sync.PushTimeout,
		ForceTimeout: a.cfg.Sync.ForceTimeout,
	}, a.logger)
	return nil
}

// session returns the stored session. An expired session is still returned with
// its error so callers can show who was logged in.
func (a *App) session(ctx context.Context) (*storage.AuthData, error) {
	if err := a.open(ctx); err != nil {
		return nil, err
	}

	session, err := a.sessions.Session(ctx)
	switch {
	case errors.Is(err, auth.ErrNotAuthenticated):
		return nil, ErrNotLoggedIn
	case errors.Is(err, auth.ErrSessionExpired):
		return session, fmt.Errorf("session of %s: %w", session.Username, auth.ErrSessionExpired)
	case err != nil:
		return nil, err
	}

	if session.ServerURL != "" && !strings.EqualFold(session.ServerURL, a.client.BaseURL()) {
		a.logger.Warn("Session was issued by another server",
			"session_server", session.ServerURL,
			"server", a.client.BaseURL())
	}
	return session, nil
}

// probe checks the server once and updates the monitor.
func (a *App) probe(ctx context.Context) bool {
	return a.monitor.TestConnectivity(ctx, a.client.HealthURL())
}

func (a *App) newCoordinator(userID string) *coordinator.Coordinator {
	return coordinator.New(coordinator.Config{
		Pusher:      a.syncer,
		Locks:       a.locks,
		Net:         a.monitor,
		Store:       a.store,
		Bus:         a.bus,
		Logger:      a.logger,
		UserID:      userID,
		MaxParallel: a.cfg.Sync.MaxParallel,
		SettleDelay: a.cfg.Sync.SettleDelay,
	})
}

// newQueue opens the persisted operation queue. The caller closes it.
func (a *App) newQueue(ctx context.Context) (*queue.Queue, error) {
	opts := queue.DefaultOptions(queue.HandlerConfig{
		Syncer:   a.client,
		Locks:    a.locks,
		OnSynced: a.queueSynced,
	})
	opts.MaxRetries = a.cfg.Sync.MaxRetries
	opts.RetryDelay = a.cfg.Sync.RetryDelay
	opts.Timeout = a.cfg.Sync.PushTimeout
	return queue.New(ctx, a.db, a.monitor, opts, a.logger)
}

// queueSynced снимает отметку таблицы после выполненной операции очереди, если
// локальная копия с тех пор не менялась
func (a *App) queueSynced(ctx context.Context, table, userID string, records []models.Record) {
	if !a.store.Holds(ctx, table, userID, records) {
		a.logger.Debug("Local snapshot changed after queuing, table stays pending", "table", table)
		return
	}
	a.store.MarkSynced(ctx, table)
	a.store.SetLastSynced(ctx, table, time.Now())
}

// readPassword returns the password from the first available source:
// 1. COMPLISYNC_PASSWORD environment variable
// 2. --password-file
// 3. interactive prompt
func (a *App) readPassword() (string, error) {
	if env := a.getenv(PasswordEnv); env != "" {
		return env, nil
	}

	if a.pwFile != "" {
		content, err := os.ReadFile(a.pwFile)
		if err != nil {
			return "", fmt.Errorf("failed to read password file: %w", err)
		}
		// Убираем trailing newline/whitespace
		password := strings.TrimSpace(string(content))
		if password == "" {
			return "", errors.New("password file is empty")
		}
		return password, nil
	}

	password, err := a.io.ReadPassword("Password: ")
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	return password, nil
}

// Close releases the database and the log file.
func (a *App) Close() error {
	var errs []error
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
		a.db = nil
	}
	if a.logClose != nil {
		if err := a.logClose.Close(); err != nil {
			errs = append(errs, err)
		}
		a.logClose = nil
	}
	return errors.Join(errs...)
}

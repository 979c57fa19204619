// Package filebridge feeds table snapshots dropped into a directory to table watchers.
// A file named {table}.json holding a JSON array of records is the current content of
// that table; every write replaces the snapshot.
package filebridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/iudanet/complisync/internal/models"
	"github.com/iudanet/complisync/internal/validation"
)

// DefaultDebounce редакторы пишут файл несколькими событиями подряд
const DefaultDebounce = 200 * time.Millisecond

// ErrAlreadyRunning is returned by Start on a running bridge.
var ErrAlreadyRunning = errors.New("bridge already running")

//go:generate moq -out updater_mock.go . Updater

// Updater receives the new content of one table. *tablesync.Watcher implements it.
type Updater interface {
	Update(ctx context.Context, records []models.Record) bool
	Close()
}

// UpdaterFactory creates the Updater of table on its first file event.
type UpdaterFactory func(ctx context.Context, table string) Updater

// Config wires a Bridge.
type Config struct {
	NewUpdater UpdaterFactory
	Logger     *slog.Logger
	Dir        string
	Debounce   time.Duration
}

// Bridge watches a directory and passes table files to updaters.
type Bridge struct {
	watcher    *fsnotify.Watcher
	newUpdater UpdaterFactory
	logger     *slog.Logger
	updaters   map[string]Updater
	timers     map[string]*time.Timer
	done       chan struct{}
	dir        string
	wg         sync.WaitGroup
	debounce   time.Duration
	mu         sync.Mutex
	running    bool
}

// New creates a Bridge. Start begins watching.
func New(cfg Config) (*Bridge, error) {
	if cfg.NewUpdater == nil {
		return nil, errors.New("updater factory is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Bridge{
		watcher:    watcher,
		newUpdater: cfg.NewUpdater,
		logger:     cfg.Logger.With("dir", cfg.Dir),
		updaters:   make(map[string]Updater),
		timers:     make(map[string]*time.Timer),
		done:       make(chan struct{}),
		dir:        cfg.Dir,
		debounce:   cfg.Debounce,
	}, nil
}

// Start watches the directory until ctx is done or Stop is called.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return ErrAlreadyRunning
	}
	if err := b.watcher.Add(b.dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", b.dir, err)
	}

	b.running = true
	b.wg.Add(1)
	go b.processEvents(ctx)

	b.logger.Info("File bridge started")
	return nil
}

// Stop stops watching, cancels pending file reads and closes all updaters.
func (b *Bridge) Stop() error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = false
	for path, timer := range b.timers {
		timer.Stop()
		delete(b.timers, path)
	}
	b.mu.Unlock()

	close(b.done)
	err := b.watcher.Close()
	b.wg.Wait()

	b.mu.Lock()
	for table, u := range b.updaters {
		u.Close()
		delete(b.updaters, table)
	}
	b.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// Tables lists the tables seen so far.
func (b *Bridge) Tables() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]string, 0, len(b.updaters))
	for table := range b.updaters {
		out = append(out, table)
	}
	return out
}

func (b *Bridge) processEvents(ctx context.Context) {
	defer b.wg.Done()

	for {
		select {
		case <-b.done:
			return
		case <-ctx.Done():
			return

		case event, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if _, ok := TableFromPath(event.Name); !ok {
				continue
			}
			b.schedule(ctx, event.Name)

		case err, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
			b.logger.Warn("File watcher error", "error", err)
		}
	}
}

// schedule откладывает чтение файла до окончания серии событий
func (b *Bridge) schedule(ctx context.Context, path string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return
	}
	if timer, ok := b.timers[path]; ok {
		timer.Reset(b.debounce)
		return
	}
	b.timers[path] = time.AfterFunc(b.debounce, func() {
		b.mu.Lock()
		delete(b.timers, path)
		running := b.running
		b.mu.Unlock()

		if running {
			if err := b.Apply(ctx, path); err != nil {
				b.logger.Warn("Skipping table file", "path", path, "error", err)
			}
		}
	})
}

// Apply reads a table file and passes its records to the table's updater.
func (b *Bridge) Apply(ctx context.Context, path string) error {
	table, ok := TableFromPath(path)
	if !ok {
		return fmt.Errorf("%s is not a table file", filepath.Base(path))
	}

	records, err := ReadRecords(path)
	if err != nil {
		return err
	}

	b.mu.Lock()
	u, ok := b.updaters[table]
	if !ok {
		u = b.newUpdater(ctx, table)
		b.updaters[table] = u
	}
	b.mu.Unlock()

	if u.Update(ctx, records) {
		b.logger.Info("Table file applied", "table", table, "count", len(records))
	}
	return nil
}

// TableFromPath returns the table name of a {table}.json path.
func TableFromPath(path string) (string, bool) {
	name := filepath.Base(path)
	if !strings.HasSuffix(name, ".json") {
		return "", false
	}
	table := strings.TrimSuffix(name, ".json")
	if validation.ValidateTableName(table) != nil {
		return "", false
	}
	return table, true
}

// ReadRecords parses a JSON array of records.
func ReadRecords(path string) ([]models.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	records, err := models.DecodeRecords(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	if records == nil {
		records = []models.Record{}
	}
	return records, nil
}

// Package queue is the durable sync operation queue. Operations are persisted as a
// whole after every state change, processed sequentially, retried a bounded number of
// times and kept as failed until retried or cleared by the user.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/complisync/internal/client/lock"
	"github.com/iudanet/complisync/internal/client/network"
	"github.com/iudanet/complisync/internal/client/storage"
	"github.com/iudanet/complisync/internal/models"
	"github.com/iudanet/complisync/internal/validation"
)

// Defaults
const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = time.Second
	DefaultTimeout    = 15 * time.Second
)

// ErrNoHandler is recorded on operations whose type has no handler.
var ErrNoHandler = errors.New("no handler for operation type")

// Handler performs the network call of one operation.
type Handler func(ctx context.Context, op models.SyncOperation) error

// Connectivity is the part of network.Monitor the queue needs.
type Connectivity interface {
	IsOnline() bool
	AddOnlineStatusListener(fn network.Listener) func()
}

// Options configures a Queue. Zero values select the defaults.
type Options struct {
	Handlers   map[models.TableKind]Handler
	Fallback   Handler // для типов без собственного обработчика
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
}

// Queue is the Sync Operation Queue.
type Queue struct {
	store       storage.QueueStorage
	net         Connectivity
	logger      *slog.Logger
	handlers    map[models.TableKind]Handler
	fallback    Handler
	timer       *time.Timer
	unsubscribe func()
	ops         []models.SyncOperation
	maxRetries  int
	retryDelay  time.Duration
	timeout     time.Duration
	mu          sync.Mutex
	processing  bool
	closed      bool
}

// New loads the persisted queue and subscribes to reconnection. Operations left in
// processing by a previous run are returned to pending.
func New(ctx context.Context, store storage.QueueStorage, net Connectivity, opts Options, logger *slog.Logger) (*Queue, error) {
	if logger == nil {
		logger = slog.Default()
	}

	q := &Queue{
		store:      store,
		net:        net,
		logger:     logger,
		handlers:   make(map[models.TableKind]Handler, len(opts.Handlers)),
		fallback:   opts.Fallback,
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
		timeout:    opts.Timeout,
	}
	for kind, h := range opts.Handlers {
		q.handlers[kind] = h
	}
	if q.maxRetries <= 0 {
		q.maxRetries = DefaultMaxRetries
	}
	if q.retryDelay <= 0 {
		q.retryDelay = DefaultRetryDelay
	}
	if q.timeout <= 0 {
		q.timeout = DefaultTimeout
	}

	ops, err := store.LoadQueue(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sync queue: %w", err)
	}

	recovered := 0
	for i := range ops {
		if ops[i].Status == models.OperationProcessing {
			ops[i].Status = models.OperationPending
			recovered++
		}
	}
	q.ops = ops
	if recovered > 0 {
		q.logger.Warn("Recovered interrupted sync operations", "count", recovered)
		q.persistLocked(ctx)
	}

	q.unsubscribe = net.AddOnlineStatusListener(func(online bool) {
		if online {
			go q.ProcessQueue(context.Background())
		}
	})

	return q, nil
}

// SetHandler registers the handler of an operation type.
func (q *Queue) SetHandler(kind models.TableKind, h Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[kind] = h
}

// AddToQueue appends a new pending operation and starts processing in the background.
// ID, Timestamp, RetryCount, Status and Error of op are overwritten.
func (q *Queue) AddToQueue(ctx context.Context, op models.SyncOperation) (string, error) {
	if err := validation.ValidateTableName(string(op.Type)); err != nil {
		return "", fmt.Errorf("invalid operation type: %w", err)
	}

	op.ID = uuid.NewString()
	op.Timestamp = time.Now().UTC()
	op.RetryCount = 0
	op.Status = models.OperationPending
	op.Error = ""

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return "", fmt.Errorf("sync queue is closed")
	}
	q.ops = append(q.ops, op)
	if err := q.store.SaveQueue(ctx, q.ops); err != nil {
		q.ops = q.ops[:len(q.ops)-1]
		q.mu.Unlock()
		return "", fmt.Errorf("failed to persist sync queue: %w", err)
	}
	idle := !q.processing
	q.mu.Unlock()

	q.logger.Debug("Sync operation queued", "op_id", op.ID, "type", string(op.Type))

	if idle {
		go q.ProcessQueue(context.WithoutCancel(ctx))
	}

	return op.ID, nil
}

// ProcessQueue runs one pass over the pending operations. It returns immediately when
// a pass is already running, the queue is empty or the network is offline.
func (q *Queue) ProcessQueue(ctx context.Context) {
	q.mu.Lock()
	if q.processing || q.closed || len(q.ops) == 0 || !q.net.IsOnline() {
		q.mu.Unlock()
		return
	}
	q.processing = true

	// Снимок на момент вызова: добавленные во время прохода ждут следующего
	var ids []string
	for _, op := range q.ops {
		if op.Status == models.OperationPending {
			ids = append(ids, op.ID)
		}
	}
	q.mu.Unlock()

	for _, id := range ids {
		q.processOne(ctx, id)
	}

	q.mu.Lock()
	q.pruneCompletedLocked()
	q.persistLocked(ctx)
	q.processing = false
	remaining := q.countLocked(models.OperationPending)
	if remaining > 0 && !q.closed {
		q.scheduleLocked()
	}
	q.mu.Unlock()

	if remaining > 0 {
		q.logger.Debug("Sync queue pass finished with pending operations", "pending", remaining)
	}
}

func (q *Queue) processOne(ctx context.Context, id string) {
	q.mu.Lock()
	idx := q.indexLocked(id)
	if idx < 0 || q.ops[idx].Status != models.OperationPending {
		// удалена или изменена во время прохода
		q.mu.Unlock()
		return
	}
	q.ops[idx].Status = models.OperationProcessing
	q.persistLocked(ctx)
	op := q.ops[idx]
	handler := q.handlerLocked(op.Type)
	q.mu.Unlock()

	var err error
	if handler == nil {
		err = fmt.Errorf("%w: %s", ErrNoHandler, op.Type)
	} else {
		opCtx, cancel := context.WithTimeout(ctx, q.timeout)
		err = q.safeCall(opCtx, handler, op)
		cancel()
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	idx = q.indexLocked(id)
	if idx < 0 {
		return
	}
	cur := &q.ops[idx]

	if err == nil {
		cur.Status = models.OperationCompleted
		cur.Error = ""
		q.persistLocked(ctx)
		q.logger.Info("Sync operation completed", "op_id", id, "type", string(cur.Type))
		return
	}

	if errors.Is(err, lock.ErrBusy) {
		// таблицу сейчас отправляет кто-то другой: попытка не расходуется
		cur.Status = models.OperationPending
		q.persistLocked(ctx)
		q.logger.Debug("Table busy, sync operation deferred", "op_id", id, "type", string(cur.Type), "error", err)
		return
	}

	cur.RetryCount++
	cur.Error = err.Error()
	if cur.RetryCount >= q.maxRetries {
		cur.Status = models.OperationFailed
		q.logger.Error("Sync operation failed permanently",
			"op_id", id,
			"type", string(cur.Type),
			"retries", cur.RetryCount,
			"error", err)
	} else {
		cur.Status = models.OperationPending
		q.logger.Warn("Sync operation failed, will retry",
			"op_id", id,
			"type", string(cur.Type),
			"retries", cur.RetryCount,
			"error", err)
	}
	q.persistLocked(ctx)
}

// safeCall паника в обработчике считается обычной ошибкой операции
func (q *Queue) safeCall(ctx context.Context, h Handler, op models.SyncOperation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, op)
}

// Drain runs passes until nothing is pending, the network goes offline or ctx is done.
// One-shot commands use it so the process does not exit under a background pass.
func (q *Queue) Drain(ctx context.Context) models.QueueStatus {
	for {
		q.ProcessQueue(ctx)

		q.mu.Lock()
		busy := q.processing
		pending := q.countLocked(models.OperationPending)
		closed := q.closed
		q.mu.Unlock()

		if closed || (!busy && pending == 0) || !q.net.IsOnline() {
			return q.GetQueueStatus()
		}

		// ждем retryDelay, чтобы не сжечь попытки подряд
		select {
		case <-ctx.Done():
			return q.GetQueueStatus()
		case <-time.After(q.retryDelay):
		}
	}
}

// RetryFailedOperations resets every failed operation to pending and resumes processing.
func (q *Queue) RetryFailedOperations(ctx context.Context) int {
	q.mu.Lock()
	n := 0
	for i := range q.ops {
		if q.ops[i].Status == models.OperationFailed {
			q.ops[i].Status = models.OperationPending
			q.ops[i].RetryCount = 0
			q.ops[i].Error = ""
			n++
		}
	}
	if n > 0 {
		q.persistLocked(ctx)
	}
	q.mu.Unlock()

	if n > 0 {
		q.logger.Info("Retrying failed sync operations", "count", n)
		go q.ProcessQueue(context.WithoutCancel(ctx))
	}
	return n
}

// ClearFailedOperations drops every failed operation.
func (q *Queue) ClearFailedOperations(ctx context.Context) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.ops[:0]
	n := 0
	for _, op := range q.ops {
		if op.Status == models.OperationFailed {
			n++
			continue
		}
		kept = append(kept, op)
	}
	q.ops = kept
	if n > 0 {
		q.persistLocked(ctx)
		q.logger.Info("Cleared failed sync operations", "count", n)
	}
	return n
}

// GetQueueStatus returns counters for display.
func (q *Queue) GetQueueStatus() models.QueueStatus {
	q.mu.Lock()
	defer q.mu.Unlock()

	status := models.QueueStatus{
		Total:      len(q.ops),
		Pending:    q.countLocked(models.OperationPending),
		Processing: q.countLocked(models.OperationProcessing),
		Failed:     q.countLocked(models.OperationFailed),
	}
	status.HasFailures = status.Failed > 0
	return status
}

// Operations returns a copy of the queue.
func (q *Queue) Operations() []models.SyncOperation {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]models.SyncOperation, len(q.ops))
	copy(out, q.ops)
	return out
}

// Close stops the retry timer and the reconnection listener.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	if q.unsubscribe != nil {
		q.unsubscribe()
	}
}

func (q *Queue) scheduleLocked() {
	if q.timer != nil {
		q.timer.Stop()
	}
	q.timer = time.AfterFunc(q.retryDelay, func() {
		q.ProcessQueue(context.Background())
	})
}

func (q *Queue) handlerLocked(kind models.TableKind) Handler {
	if h, ok := q.handlers[kind]; ok {
		return h
	}
	return q.fallback
}

func (q *Queue) indexLocked(id string) int {
	for i := range q.ops {
		if q.ops[i].ID == id {
			return i
		}
	}
	return -1
}

func (q *Queue) countLocked(status models.OperationStatus) int {
	n := 0
	for _, op := range q.ops {
		if op.Status == status {
			n++
		}
	}
	return n
}

func (q *Queue) pruneCompletedLocked() {
	kept := q.ops[:0]
	for _, op := range q.ops {
		if op.Status != models.OperationCompleted {
			kept = append(kept, op)
		}
	}
	q.ops = kept
}

// persistLocked ошибки сохранения только логируются: очередь в памяти остается верной
func (q *Queue) persistLocked(ctx context.Context) {
	if err := q.store.SaveQueue(ctx, q.ops); err != nil {
		q.logger.Error("Failed to persist sync queue", "error", err)
	}
}

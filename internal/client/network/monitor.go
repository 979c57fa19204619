// Package network tracks whether the sync server is reachable.
package network

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/iudanet/complisync/internal/events"
)

// DefaultProbeTimeout ограничение на один активный запрос проверки связи
const DefaultProbeTimeout = 3 * time.Second

// Listener is called with the new state after every transition.
type Listener func(online bool)

// Monitor holds the current online state. It is fed passively through SetOnline and
// actively through TestConnectivity; only transitions are broadcast.
type Monitor struct {
	bus        *events.Bus
	client     *http.Client
	logger     *slog.Logger
	listeners  map[uint64]Listener
	nextID     uint64
	probeLimit time.Duration
	mu         sync.Mutex
	online     bool
}

// NewMonitor creates a Monitor in the given initial state. bus may be nil.
func NewMonitor(bus *events.Bus, client *http.Client, initialOnline bool, logger *slog.Logger) *Monitor {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		bus:        bus,
		client:     client,
		logger:     logger,
		listeners:  make(map[uint64]Listener),
		probeLimit: DefaultProbeTimeout,
		online:     initialOnline,
	}
}

// SetProbeTimeout overrides DefaultProbeTimeout.
func (m *Monitor) SetProbeTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	m.probeLimit = d
	m.mu.Unlock()
}

// IsOnline returns current network state.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline updates network state without any network call.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	listeners := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		listeners = append(listeners, l)
	}
	m.mu.Unlock()

	if online {
		m.logger.Info("Network is online")
	} else {
		m.logger.Warn("Network is offline")
	}

	for _, l := range listeners {
		l(online)
	}

	if m.bus == nil {
		return
	}
	if online {
		m.bus.Publish(events.Online, nil)
		m.bus.Publish(events.ConnectivityRestored, nil)
	} else {
		m.bus.Publish(events.Offline, nil)
	}
}

// AddOnlineStatusListener subscribes fn to transitions.
func (m *Monitor) AddOnlineStatusListener(fn Listener) func() {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// TestConnectivity probes url and updates the state with the result. Any response
// below 500 counts as reachable; transport errors, timeouts and 5xx do not.
func (m *Monitor) TestConnectivity(ctx context.Context, url string) bool {
	m.mu.Lock()
	limit := m.probeLimit
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	status, err := m.probe(ctx, http.MethodHead, url)
	if err == nil && status == http.StatusMethodNotAllowed {
		status, err = m.probe(ctx, http.MethodGet, url)
	}

	online := err == nil && status < http.StatusInternalServerError
	if err != nil {
		m.logger.Debug("Connectivity probe failed", "url", url, "error", err)
	} else if !online {
		m.logger.Debug("Connectivity probe got server error", "url", url, "status", status)
	}

	m.SetOnline(online)
	return online
}

func (m *Monitor) probe(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Cache-Control", "no-cache, no-store")
	req.Header.Set("Pragma", "no-cache")

	resp, err := m.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}

// Run probes url immediately and then every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context, url string, interval time.Duration) {
	m.TestConnectivity(ctx, url)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.TestConnectivity(ctx, url)
		}
	}
}

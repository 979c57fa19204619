package network

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/complisync/internal/events"
)

func TestMonitor_SetOnlineTransitionsOnly(t *testing.T) {
	bus := events.NewBus(nil)
	m := NewMonitor(bus, nil, true, nil)

	var got []events.Name
	for _, name := range []events.Name{events.Online, events.Offline, events.ConnectivityRestored} {
		bus.Subscribe(name, func(ev events.Event) { got = append(got, ev.Name) })
	}

	var states []bool
	unsubscribe := m.AddOnlineStatusListener(func(online bool) { states = append(states, online) })

	m.SetOnline(true) // без перехода
	m.SetOnline(false)
	m.SetOnline(false)
	m.SetOnline(true)

	assert.Equal(t, []bool{false, true}, states)
	assert.Equal(t, []events.Name{events.Offline, events.Online, events.ConnectivityRestored}, got)

	unsubscribe()
	m.SetOnline(false)
	assert.Len(t, states, 2)
	assert.False(t, m.IsOnline())
}

func TestMonitor_TestConnectivity(t *testing.T) {
	var mu sync.Mutex
	var methods []string
	var headers http.Header

	status := atomic.Int32{}
	status.Store(http.StatusOK)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		methods = append(methods, r.Method)
		headers = r.Header.Clone()
		mu.Unlock()
		w.WriteHeader(int(status.Load()))
	}))
	defer srv.Close()

	m := NewMonitor(nil, srv.Client(), false, nil)

	assert.True(t, m.TestConnectivity(context.Background(), srv.URL))
	assert.True(t, m.IsOnline())
	assert.Equal(t, "no-cache, no-store", headers.Get("Cache-Control"))
	assert.Equal(t, "no-cache", headers.Get("Pragma"))

	status.Store(http.StatusServiceUnavailable)
	assert.False(t, m.TestConnectivity(context.Background(), srv.URL))
	assert.False(t, m.IsOnline())

	// HEAD не поддерживается: повтор через GET
	status.Store(http.StatusMethodNotAllowed)
	mu.Lock()
	methods = nil
	mu.Unlock()
	m.TestConnectivity(context.Background(), srv.URL)
	mu.Lock()
	assert.Equal(t, []string{http.MethodHead, http.MethodGet}, methods)
	mu.Unlock()
}

func TestMonitor_TestConnectivityUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	m := NewMonitor(nil, nil, true, nil)
	assert.False(t, m.TestConnectivity(context.Background(), url))
	assert.False(t, m.IsOnline())
}

func TestMonitor_TestConnectivityTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	m := NewMonitor(nil, srv.Client(), true, nil)
	m.SetProbeTimeout(50 * time.Millisecond)

	start := time.Now()
	assert.False(t, m.TestConnectivity(context.Background(), srv.URL))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestMonitor_Run(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	m := NewMonitor(nil, srv.Client(), false, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx, srv.URL, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return hits.Load() >= 3 }, time.Second, 5*time.Millisecond)
	assert.True(t, m.IsOnline())

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

// Package events is the process-wide event bus that decouples the sync components:
// the network monitor announces connectivity changes, the synchronizer announces
// results, hosts announce navigation and forced syncs, and the coordinator listens.
package events

import (
	"log/slog"
	"sync"
	"time"
)

// Name is the type of an event.
type Name string

const (
	Online               Name = "online"
	Offline              Name = "offline"
	ConnectivityRestored Name = "connectivity-restored"
	ForceSyncRequired    Name = "force-sync-required"
	GlobalDataUpdate     Name = "globalDataUpdate"
	DataChanged          Name = "data-changed"
	SyncSuccess          Name = "sync-success"
	SyncError            Name = "sync-error"
	// Navigation аналог popstate: хост сообщает о смене "страницы"
	Navigation Name = "navigation"
)

// Event is one published event. Payload type depends on Name.
type Event struct {
	Time    time.Time
	Payload any
	Name    Name
}

// ForceSyncPayload is carried by ForceSyncRequired.
type ForceSyncPayload struct {
	Tables []string
}

// TablePayload is carried by DataChanged, SyncSuccess and SyncError.
type TablePayload struct {
	Table   string
	Message string
	Count   int
}

// Handler receives events.
type Handler func(Event)

type subscription struct {
	handler Handler
	id      uint64
}

// Bus dispatches events to subscribers synchronously, in subscription order.
// Handlers must not block; long work belongs in a goroutine.
type Bus struct {
	logger *slog.Logger
	subs   map[Name][]subscription
	nextID uint64
	mu     sync.RWMutex
}

// NewBus creates an empty bus.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		logger: logger,
		subs:   make(map[Name][]subscription),
	}
}

// Subscribe registers handler for name and returns a function that removes it.
func (b *Bus) Subscribe(name Name, handler Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[name] = append(b.subs[name], subscription{id: id, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			list := b.subs[name]
			for i, s := range list {
				if s.id == id {
					b.subs[name] = append(list[:i:i], list[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish delivers an event to every current subscriber of name.
// A panicking handler is logged and does not stop delivery to the others.
func (b *Bus) Publish(name Name, payload any) {
	b.mu.RLock()
	list := make([]subscription, len(b.subs[name]))
	copy(list, b.subs[name])
	b.mu.RUnlock()

	ev := Event{Name: name, Payload: payload, Time: time.Now()}
	for _, s := range list {
		b.deliver(s.handler, ev)
	}
}

func (b *Bus) deliver(h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event handler panicked", "event", string(ev.Name), "panic", r)
		}
	}()
	h(ev)
}

// SubscriberCount returns the number of handlers registered for name.
func (b *Bus) SubscriberCount(name Name) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[name])
}

package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"git.home.luguber.info/inful/panini/internal/logfields"
)

// EventStore defines the interface for persisting events.
// This is a subset of eventstore.Store.
type EventStore interface {
	Append(ctx context.Context, runID, eventType string, payload []byte, metadata map[string]string) error
}

// Handler processes an Event; return error to signal failure.
type Handler func(Event) error

// Bus is a synchronous pub/sub event bus. Publish may be called from several
// goroutines at once; handlers must tolerate that.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler
	all         []Handler
	eventStore  EventStore
	logger      *slog.Logger
}

func NewBus() *Bus {
	return &Bus{subscribers: map[string][]Handler{}, logger: slog.Default()}
}

// NewBusWithEventStore creates a bus that persists events to the store.
func NewBusWithEventStore(store EventStore) *Bus {
	b := NewBus()
	b.eventStore = store
	return b
}

// WithLogger sets the logger used for persistence failures.
func (b *Bus) WithLogger(l *slog.Logger) *Bus {
	if l != nil {
		b.logger = l
	}
	return b
}

// Subscribe registers a handler for a given event name.
func (b *Bus) Subscribe(event string, h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	b.subscribers[event] = append(b.subscribers[event], h)
	b.mu.Unlock()
}

// SubscribeAll registers a handler for every event.
func (b *Bus) SubscribeAll(h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	b.all = append(b.all, h)
	b.mu.Unlock()
}

// Publish persists the event when a store is configured and then delivers
// it to every matching handler. A persistence failure is logged, not
// returned; handler errors are joined and returned after all handlers ran.
func (b *Bus) Publish(e Event) error {
	if b.eventStore != nil {
		b.persist(e)
	}

	b.mu.RLock()
	hs := make([]Handler, 0, len(b.subscribers[e.Name()])+len(b.all))
	hs = append(hs, b.subscribers[e.Name()]...)
	hs = append(hs, b.all...)
	b.mu.RUnlock()

	var errs []error
	for _, h := range hs {
		if err := h(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *Bus) persist(e Event) {
	var payload []byte
	if p, ok := e.(Payloader); ok {
		data, err := p.Payload()
		if err != nil {
			b.logger.Warn("Failed to encode event payload", slog.String("event", e.Name()), logfields.Error(err))
		}
		payload = data
	}
	if err := b.eventStore.Append(context.Background(), e.GetRunID(), e.Name(), payload, nil); err != nil {
		b.logger.Warn("Failed to persist event",
			slog.String("event", e.Name()),
			logfields.RunID(e.GetRunID()),
			logfields.Error(err))
	}
}

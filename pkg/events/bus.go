package events

import (
	"log/slog"
	"sync"
)

// subscriberBuffer is the per-subscriber channel depth. A UI-paced game
// produces a handful of events per turn; a full buffer means the
// subscriber is gone or wedged.
const subscriberBuffer = 16

// Bus is an in-process publish/subscribe channel. Publish hands events to
// subscriber channels and returns immediately; delivery happens on the
// subscriber's goroutine. That channel hop is the deferred-execution
// boundary the turn controller relies on: even canned responses reach the
// presentation layer asynchronously relative to the triggering call.
type Bus struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	logger *slog.Logger
	closed bool
}

// NewBus creates a bus. logger may not be nil.
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		subs:   make(map[int]chan Event),
		logger: logger,
	}
}

// Subscribe registers a new subscriber and returns its channel plus an
// unsubscribe func. The channel is closed on unsubscribe or bus close.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	b.subs[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
}

// Publish fans the event out to every subscriber without blocking. Events
// for a full subscriber are dropped with a warning; progression state is
// always re-readable from the session, so a dropped event is lossy only
// for the animation, not for correctness.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for id, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.logger.Warn("dropping event for slow subscriber",
				"event_type", e.Type,
				"subscriber", id)
		}
	}
}

// Close shuts the bus down and closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

package events

import (
	"context"
	"log/slog"
	"sync"
)

type subscription struct {
	ch    chan Event
	types map[string]bool // nil means every type
}

func (s *subscription) wants(eventType string) bool {
	return s.types == nil || s.types[eventType]
}

// Bus fans run events out to subscribers and the optional event log.
// Delivery never blocks the publisher: a full subscriber drops the event.
type Bus struct {
	mu     sync.RWMutex
	subs   []*subscription
	log    *EventLog // may be nil
	logger *slog.Logger
	closed bool
}

// NewBus creates a new event bus.
// The EventLog is optional - pass nil to disable persistence.
func NewBus(log *EventLog, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		log:    log,
		logger: logger,
	}
}

// Publish persists the event (when a log is configured) and delivers it.
// Persistence failures are logged, not returned.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	if b.isClosed() {
		return nil
	}

	if b.log != nil {
		if _, err := b.log.AppendContext(ctx, e); err != nil {
			b.logger.Error("failed to persist event", "type", e.EventType(), "error", err)
		}
	}

	// Sends are non-blocking, so holding the read lock keeps Unsubscribe
	// and Close from closing a channel mid-send.
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subs {
		if !s.wants(e.EventType()) {
			continue
		}
		select {
		case s.ch <- e:
		default:
			b.logger.Warn("subscriber channel full, dropping event",
				"type", e.EventType(),
				"run_id", e.EntityID())
		}
	}
	return nil
}

func (b *Bus) isClosed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.closed
}

// Subscribe returns a channel receiving the given event types, or every
// event when no type is given.
func (b *Bus) Subscribe(bufferSize int, eventTypes ...string) <-chan Event {
	s := &subscription{ch: make(chan Event, bufferSize)}
	if len(eventTypes) > 0 {
		s.types = make(map[string]bool, len(eventTypes))
		for _, t := range eventTypes {
			s.types[t] = true
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(s.ch)
		return s.ch
	}
	b.subs = append(b.subs, s)
	return s.ch
}

// Unsubscribe removes and closes a subscription channel.
func (b *Bus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.ch == ch {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			close(s.ch)
			return
		}
	}
}

// Close shuts down the bus and closes all subscriber channels.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for _, s := range b.subs {
		close(s.ch)
	}
	b.subs = nil
	return nil
}

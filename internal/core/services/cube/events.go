package cube

import (
	"sync"
	"time"

	domain "cubeengine/internal/core/domain/cube"
	"cubeengine/pkg/ulid"
)

const defaultEventBufferSize = 100

// eventBus fans invalidation events out to subscribed listeners and keeps a
// bounded ring buffer of recent events for diagnostics.
type eventBus struct {
	mu        sync.Mutex
	listeners map[int]domain.InvalidationListener
	nextID    int
	buffer    []domain.InvalidationEvent
	capacity  int
}

func newEventBus() *eventBus {
	return &eventBus{
		listeners: make(map[int]domain.InvalidationListener),
		capacity:  defaultEventBufferSize,
	}
}

// subscribe registers a listener and returns an unsubscribe func.
func (b *eventBus) subscribe(listener domain.InvalidationListener) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = listener
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

// publish records the event in the ring buffer and notifies every current
// listener synchronously. Notification order is not guaranteed, but every
// listener observes every event exactly once.
func (b *eventBus) publish(cube, reason string, evictedCount int) domain.InvalidationEvent {
	event := domain.InvalidationEvent{
		ID:           ulid.New().String(),
		Cube:         cube,
		Reason:       reason,
		EvictedCount: evictedCount,
		At:           time.Now(),
	}

	b.mu.Lock()
	b.buffer = append(b.buffer, event)
	if len(b.buffer) > b.capacity {
		b.buffer = b.buffer[len(b.buffer)-b.capacity:]
	}
	listeners := make([]domain.InvalidationListener, 0, len(b.listeners))
	for _, l := range b.listeners {
		listeners = append(listeners, l)
	}
	b.mu.Unlock()

	for _, l := range listeners {
		l(event)
	}
	return event
}

// recent returns a copy of the buffered events, oldest first.
func (b *eventBus) recent() []domain.InvalidationEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.InvalidationEvent, len(b.buffer))
	copy(out, b.buffer)
	return out
}

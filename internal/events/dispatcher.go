package events

import (
	"context"
	"sync"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher decouples lifecycle writes from notification consumers.
// Publish never blocks on handler execution and handler failures never
// surface to publishers.
type Dispatcher interface {
	Publish(ctx context.Context, event Event)
	Subscribe(eventType EventType, handler EventHandler)
	Close()
}

// asyncDispatcher drains a buffered queue on a single goroutine, preserving
// publish order per process.
type asyncDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
	queue     chan Event
	done      chan struct{}
	closeOnce sync.Once
}

// NewDispatcher creates a dispatcher with the given queue capacity.
func NewDispatcher(buffer int) Dispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	d := &asyncDispatcher{
		listeners: make(map[EventType][]EventHandler),
		queue:     make(chan Event, buffer),
		done:      make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *asyncDispatcher) run() {
	defer close(d.done)
	for event := range d.queue {
		d.mu.RLock()
		handlers := append([]EventHandler{}, d.listeners[event.Type]...)
		d.mu.RUnlock()
		for _, handler := range handlers {
			// handler errors are the consumer's concern, never the publisher's
			_ = handler(context.Background(), event)
		}
	}
}

// Publish enqueues the event. When the queue is full the event is dropped
// rather than stalling the request path.
func (d *asyncDispatcher) Publish(_ context.Context, event Event) {
	select {
	case d.queue <- event:
	default:
	}
}

// Subscribe registers a handler for the given event type.
func (d *asyncDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}

// Close stops the dispatcher after draining queued events.
func (d *asyncDispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.queue)
	})
	<-d.done
}

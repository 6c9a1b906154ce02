package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/spec-kit/request-service/internal/domain"
)

func TestDispatcherDeliversInOrder(t *testing.T) {
	d := NewDispatcher(16)

	var mu sync.Mutex
	var seen []string
	d.Subscribe(EventRequestStatusChanged, func(_ context.Context, e Event) error {
		mu.Lock()
		seen = append(seen, e.RequestID)
		mu.Unlock()
		return nil
	})

	for _, id := range []string{"a", "b", "c"} {
		d.Publish(context.Background(), Event{Type: EventRequestStatusChanged, RequestID: id})
	}
	d.Close()

	if len(seen) != 3 || seen[0] != "a" || seen[1] != "b" || seen[2] != "c" {
		t.Fatalf("delivery order = %v", seen)
	}
}

func TestDispatcherIsolatesHandlerFailures(t *testing.T) {
	d := NewDispatcher(4)

	var delivered int
	d.Subscribe(EventRequestAssigned, func(context.Context, Event) error {
		return errors.New("channel down")
	})
	d.Subscribe(EventRequestAssigned, func(context.Context, Event) error {
		delivered++
		return nil
	})

	d.Publish(context.Background(), Event{Type: EventRequestAssigned, Actor: domain.SystemActor()})
	d.Close()

	if delivered != 1 {
		t.Fatalf("second handler not reached, delivered = %d", delivered)
	}
}

func TestDispatcherIgnoresUnsubscribedTypes(t *testing.T) {
	d := NewDispatcher(4)
	d.Publish(context.Background(), Event{Type: EventQuoteIssued})
	d.Close()
}

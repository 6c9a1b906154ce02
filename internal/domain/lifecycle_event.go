package domain

import "time"

// EventType tags the kind of change recorded in the audit trail.
type EventType string

const (
	EventTypeSubmitted     EventType = "submitted"
	EventTypeStatusChanged EventType = "status_changed"
	EventTypeAssigned      EventType = "assigned"
	EventTypeQuoteIssued   EventType = "quote_issued"
	EventTypeInvoiceIssued EventType = "invoice_issued"
)

// ActorType identifies who or what caused a lifecycle event.
type ActorType string

const (
	ActorTypeCustomer ActorType = "customer"
	ActorTypeStaff    ActorType = "staff"
	ActorTypeSystem   ActorType = "system"
)

// Actor captures the identity behind a lifecycle event. ID is nil for the
// system actor.
type Actor struct {
	Type ActorType `json:"type"`
	ID   *string   `json:"id,omitempty"`
}

// SystemActor returns the ambient system identity.
func SystemActor() Actor {
	return Actor{Type: ActorTypeSystem}
}

// CustomerActor returns an actor for a customer id.
func CustomerActor(id string) Actor {
	return Actor{Type: ActorTypeCustomer, ID: &id}
}

// StaffActor returns an actor for a staff id.
func StaffActor(id string) Actor {
	return Actor{Type: ActorTypeStaff, ID: &id}
}

// LifecycleEvent is an immutable audit record. Events are append-only:
// corrections are made by appending a compensating event, never by mutation.
type LifecycleEvent struct {
	ID        string
	RequestID string
	EventType EventType
	Actor     Actor
	Notes     string
	Data      map[string]any
	CreatedAt time.Time
}

package events

import (
	"time"

	"github.com/spec-kit/request-service/internal/domain"
)

// EventType enumerates notification event identifiers.
type EventType string

const (
	EventRequestCreated       EventType = "request_created"
	EventRequestSubmitted     EventType = "request_submitted"
	EventRequestStatusChanged EventType = "request_status_changed"
	EventRequestAssigned      EventType = "request_assigned"
	EventQuoteIssued          EventType = "quote_issued"
	EventInvoiceIssued        EventType = "invoice_issued"
)

// Event represents a committed lifecycle change emitted by services. Events
// are published only after the corresponding write has committed, so
// consumers never observe rolled-back state.
type Event struct {
	ID          string       `json:"id"`
	Type        EventType    `json:"type"`
	RequestID   string       `json:"request_id"`
	OrderNumber string       `json:"order_number"`
	Actor       domain.Actor `json:"actor"`
	Timestamp   time.Time    `json:"timestamp"`
	Payload     interface{}  `json:"payload"`
}

// StatusChangedPayload carries the transition endpoints.
type StatusChangedPayload struct {
	OldStatus domain.Status `json:"old_status"`
	NewStatus domain.Status `json:"new_status"`
	Notes     string        `json:"notes,omitempty"`
}

// AssignedPayload carries the assignment change.
type AssignedPayload struct {
	OldAssignee *string `json:"old_assignee,omitempty"`
	NewAssignee *string `json:"new_assignee,omitempty"`
}

// QuoteIssuedPayload carries the quoted amount.
type QuoteIssuedPayload struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Notes    string  `json:"notes,omitempty"`
}

// InvoiceIssuedPayload carries the invoice reference.
type InvoiceIssuedPayload struct {
	InvoiceRef string  `json:"invoice_ref"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
}

// RequestCreatedPayload describes a new draft.
type RequestCreatedPayload struct {
	ServiceKind string `json:"service_kind"`
	Title       string `json:"title"`
}

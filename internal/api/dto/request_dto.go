package dto

import (
	"time"

	"github.com/spec-kit/request-service/internal/domain"
	"github.com/spec-kit/request-service/internal/sla"
)

// CreateRequestRequest payload for a customer draft.
type CreateRequestRequest struct {
	ServiceKind string         `json:"service_kind"`
	Title       string         `json:"title"`
	Payload     map[string]any `json:"payload"`
}

// TransitionRequest payload for staff status moves.
type TransitionRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// AssignRequest payload. A null assignee clears the assignment.
type AssignRequest struct {
	AssigneeID *string `json:"assignee_id"`
}

// QuoteRequest payload for quote issuance.
type QuoteRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Notes    string  `json:"notes"`
}

// InvoiceRequest payload for invoice issuance.
type InvoiceRequest struct {
	InvoiceRef string  `json:"invoice_ref"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
}

// RequestListQuery captures query filters for staff endpoints.
type RequestListQuery struct {
	Statuses      []domain.Status
	ServiceKind   *string
	AssignedTo    *string
	SubmittedFrom *time.Time
	SubmittedTo   *time.Time
	Page          int
	PageSize      int
}

// RequestSummary response.
type RequestSummary struct {
	ID          string        `json:"id"`
	OrderNumber string        `json:"order_number"`
	CustomerID  string        `json:"customer_id"`
	ServiceKind string        `json:"service_kind"`
	Title       string        `json:"title"`
	Status      domain.Status `json:"status"`
	StatusLabel string        `json:"status_label"`
	AssignedTo  *string       `json:"assigned_to"`
	SubmittedAt *time.Time    `json:"submitted_at"`
	Verdict     *sla.Verdict  `json:"sla,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// RequestDetailResponse provides full request info including the trail.
type RequestDetailResponse struct {
	RequestSummary
	Payload map[string]any           `json:"payload"`
	Events  []LifecycleEventResponse `json:"events"`
}

// LifecycleEventResponse represents one audit trail entry.
type LifecycleEventResponse struct {
	ID        string           `json:"id"`
	EventType domain.EventType `json:"event_type"`
	Actor     domain.Actor     `json:"actor"`
	Notes     string           `json:"notes,omitempty"`
	Data      map[string]any   `json:"data,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewRequestSummary maps a domain request and optional verdict.
func NewRequestSummary(request *domain.ServiceRequest, verdict *sla.Verdict) RequestSummary {
	return RequestSummary{
		ID:          request.ID,
		OrderNumber: request.OrderNumber,
		CustomerID:  request.CustomerID,
		ServiceKind: request.ServiceKind,
		Title:       request.Title,
		Status:      request.Status,
		StatusLabel: request.Status.Label(),
		AssignedTo:  request.AssignedTo,
		SubmittedAt: request.SubmittedAt,
		Verdict:     verdict,
		CreatedAt:   request.CreatedAt,
		UpdatedAt:   request.UpdatedAt,
	}
}

// NewLifecycleEventResponses maps a trail slice.
func NewLifecycleEventResponses(events []domain.LifecycleEvent) []LifecycleEventResponse {
	out := make([]LifecycleEventResponse, 0, len(events))
	for _, event := range events {
		out = append(out, LifecycleEventResponse{
			ID:        event.ID,
			EventType: event.EventType,
			Actor:     event.Actor,
			Notes:     event.Notes,
			Data:      event.Data,
			CreatedAt: event.CreatedAt,
		})
	}
	return out
}

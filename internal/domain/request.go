package domain

import "time"

// ServiceRequest is the aggregate root for customer service orders.
// SubmittedAt anchors SLA computation and is set exactly once, on the
// draft -> submitted transition; it is nil while the request is a draft.
type ServiceRequest struct {
	ID          string
	OrderNumber string
	CustomerID  string
	ServiceKind string
	Title       string
	Status      Status
	AssignedTo  *string
	Payload     map[string]any
	SubmittedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Open reports whether the request is SLA-eligible: submitted and not yet in
// a terminal state.
func (r *ServiceRequest) Open() bool {
	return r.SubmittedAt != nil && !r.Status.IsTerminal()
}

package domain

import "fmt"

// Status enumerates lifecycle states for service requests. This is the single
// source of truth for the enumeration; presentation layers derive labels from
// it instead of keeping their own lists.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusSubmitted  Status = "submitted"
	StatusScoping    Status = "scoping"
	StatusQuoteSent  Status = "quote_sent"
	StatusInProgress Status = "in_progress"
	StatusReview     Status = "review"
	StatusCompleted  Status = "completed"
	StatusArchived   Status = "archived"
	StatusRejected   Status = "rejected"
	StatusCancelled  Status = "cancelled"
)

// AllStatuses lists every member of the enumeration in lifecycle order.
var AllStatuses = []Status{
	StatusDraft,
	StatusSubmitted,
	StatusScoping,
	StatusQuoteSent,
	StatusInProgress,
	StatusReview,
	StatusCompleted,
	StatusArchived,
	StatusRejected,
	StatusCancelled,
}

var statusLabels = map[Status]string{
	StatusDraft:      "Draft",
	StatusSubmitted:  "Submitted",
	StatusScoping:    "Scoping",
	StatusQuoteSent:  "Quote Sent",
	StatusInProgress: "In Progress",
	StatusReview:     "In Review",
	StatusCompleted:  "Completed",
	StatusArchived:   "Archived",
	StatusRejected:   "Rejected",
	StatusCancelled:  "Cancelled",
}

// ErrUnknownStatus signals a status string outside the enumeration.
var ErrUnknownStatus = fmt.Errorf("unknown status")

// ParseStatus validates a raw status string against the enumeration.
func ParseStatus(raw string) (Status, error) {
	candidate := Status(raw)
	if _, ok := statusLabels[candidate]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
	return candidate, nil
}

// Label returns the human-facing display name for the status.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// IsTerminal reports whether the status has no outgoing edges besides the
// completed -> archived exception.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusArchived, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// allowedTransitions is the fixed directed graph of legal status moves.
// Forward flow plus the rejected/cancelled abort edges from every
// non-terminal state, and archived reachable only from completed.
var allowedTransitions = map[Status][]Status{
	StatusDraft:      {StatusSubmitted, StatusRejected, StatusCancelled},
	StatusSubmitted:  {StatusScoping, StatusRejected, StatusCancelled},
	StatusScoping:    {StatusQuoteSent, StatusRejected, StatusCancelled},
	StatusQuoteSent:  {StatusInProgress, StatusRejected, StatusCancelled},
	StatusInProgress: {StatusReview, StatusRejected, StatusCancelled},
	StatusReview:     {StatusCompleted, StatusRejected, StatusCancelled},
	StatusCompleted:  {StatusArchived},
	StatusArchived:   {},
	StatusRejected:   {},
	StatusCancelled:  {},
}

// TransitionError describes a rejected status move.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	if e.From == e.To {
		return fmt.Sprintf("illegal transition: request is already %s", e.From)
	}
	return fmt.Sprintf("illegal transition: %s -> %s", e.From, e.To)
}

// AttemptTransition validates a requested status move against the transition
// graph and returns the new status on success. Self-transitions are rejected
// so that every accepted call maps to exactly one audit event. The function is
// a pure decision: persistence, logging and notification belong to the caller.
func AttemptTransition(current, requested Status) (Status, error) {
	if _, ok := statusLabels[requested]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, requested)
	}
	if current == requested {
		return "", &TransitionError{From: current, To: requested}
	}
	for _, candidate := range allowedTransitions[current] {
		if candidate == requested {
			return requested, nil
		}
	}
	return "", &TransitionError{From: current, To: requested}
}

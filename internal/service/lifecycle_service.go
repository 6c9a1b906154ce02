package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/request-service/internal/config"
	"github.com/spec-kit/request-service/internal/domain"
	"github.com/spec-kit/request-service/internal/events"
	"github.com/spec-kit/request-service/internal/repository"
	"github.com/spec-kit/request-service/internal/schedule"
	"github.com/spec-kit/request-service/internal/sla"
	apperrors "github.com/spec-kit/request-service/pkg/util"
)

// transitionRetries bounds how often a conflicting transition is re-read and
// re-validated before ErrConcurrentModification is surfaced to the caller.
const transitionRetries = 3

// LifecycleService is the only component allowed to mutate a request's
// status. It sequences state-machine validation, the transactional
// status+audit write, and post-commit notification dispatch.
type LifecycleService struct {
	requests   repository.RequestRepository
	trail      repository.LifecycleEventRepository
	profiles   repository.SLAProfileRepository
	kinds      repository.ServiceKindRepository
	dispatcher events.Dispatcher
	calendar   schedule.WorkCalendar
	slaCfg     config.SLAConfig
	now        func() time.Time
}

// LifecycleDependencies bundles collaborators for the lifecycle service.
type LifecycleDependencies struct {
	RequestRepo repository.RequestRepository
	EventRepo   repository.LifecycleEventRepository
	ProfileRepo repository.SLAProfileRepository
	KindRepo    repository.ServiceKindRepository
	Dispatcher  events.Dispatcher
	Calendar    schedule.WorkCalendar
	SLA         config.SLAConfig
	Now         func() time.Time
}

// NewLifecycleService constructs the service. Now defaults to time.Now so
// production callers omit it and tests inject a fixed clock.
func NewLifecycleService(deps LifecycleDependencies) *LifecycleService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &LifecycleService{
		requests:   deps.RequestRepo,
		trail:      deps.EventRepo,
		profiles:   deps.ProfileRepo,
		kinds:      deps.KindRepo,
		dispatcher: deps.Dispatcher,
		calendar:   deps.Calendar,
		slaCfg:     deps.SLA,
		now:        now,
	}
}

// RequestSummary is the aggregate returned from lifecycle operations: the
// updated request plus its freshly computed SLA verdict. Verdict is nil when
// the request carries no SLA state (draft or terminal).
type RequestSummary struct {
	Request *domain.ServiceRequest
	Verdict *sla.Verdict
}

// DraftInput describes customer draft creation.
type DraftInput struct {
	ServiceKind string
	Title       string
	Payload     map[string]any
}

// CreateDraft creates a request in draft for a customer. Drafts have no
// submission instant and therefore no SLA state.
func (s *LifecycleService) CreateDraft(ctx context.Context, customerID string, input DraftInput) (*domain.ServiceRequest, error) {
	kind, err := s.kinds.GetByCode(ctx, input.ServiceKind)
	if err != nil {
		return nil, err
	}
	if kind.Status != domain.ServiceKindStatusActive {
		return nil, apperrors.NewValidationError("service kind retired", map[string]any{"service_kind": kind.Code})
	}

	request := &domain.ServiceRequest{
		CustomerID:  customerID,
		ServiceKind: kind.Code,
		Title:       strings.TrimSpace(input.Title),
		Status:      domain.StatusDraft,
		Payload:     input.Payload,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:        events.EventRequestCreated,
		RequestID:   request.ID,
		OrderNumber: request.OrderNumber,
		Actor:       domain.CustomerActor(customerID),
		Payload: events.RequestCreatedPayload{
			ServiceKind: request.ServiceKind,
			Title:       request.Title,
		},
	})
	return request, nil
}

// Submit drives the draft -> submitted edge for the owning customer.
func (s *LifecycleService) Submit(ctx context.Context, customerID, requestID string) (*RequestSummary, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.CustomerID != customerID {
		return nil, apperrors.NewForbidden("access denied")
	}
	return s.RequestTransition(ctx, requestID, domain.StatusSubmitted, domain.CustomerActor(customerID), "")
}

// RequestTransition validates and applies a status move, writing status and
// audit event as one atomic unit. A conflicting concurrent write triggers a
// bounded re-read/re-validate retry before ErrConcurrentModification is
// surfaced.
func (s *LifecycleService) RequestTransition(ctx context.Context, requestID string, requested domain.Status, actor domain.Actor, notes string) (*RequestSummary, error) {
	var lastErr error
	for attempt := 0; attempt < transitionRetries; attempt++ {
		request, err := s.requests.GetByID(ctx, requestID)
		if err != nil {
			return nil, err
		}

		newStatus, err := domain.AttemptTransition(request.Status, requested)
		if err != nil {
			return nil, err
		}

		oldStatus := request.Status

		var submittedAt *time.Time
		if oldStatus == domain.StatusDraft && newStatus == domain.StatusSubmitted {
			instant := s.now()
			submittedAt = &instant
		}

		event := &domain.LifecycleEvent{
			RequestID: request.ID,
			EventType: domain.EventTypeStatusChanged,
			Actor:     actor,
			Notes:     notes,
			Data: map[string]any{
				"old_status": oldStatus,
				"new_status": newStatus,
			},
		}
		if submittedAt != nil {
			event.EventType = domain.EventTypeSubmitted
		}

		err = s.requests.ApplyTransition(ctx, request.ID, oldStatus, newStatus, submittedAt, event)
		if errors.Is(err, domain.ErrConcurrentModification) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}

		request.Status = newStatus
		if submittedAt != nil {
			request.SubmittedAt = submittedAt
		}
		eventType := events.EventRequestStatusChanged
		if submittedAt != nil {
			eventType = events.EventRequestSubmitted
		}
		s.publish(ctx, events.Event{
			Type:        eventType,
			RequestID:   request.ID,
			OrderNumber: request.OrderNumber,
			Actor:       actor,
			Payload: events.StatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: newStatus,
				Notes:     notes,
			},
		})
		return s.summarize(ctx, request), nil
	}
	return nil, lastErr
}

// Reassign changes the assignee and records an audit event. The status field
// is untouched and the state machine is not consulted.
func (s *LifecycleService) Reassign(ctx context.Context, requestID string, assignee *string, actor domain.Actor) (*domain.ServiceRequest, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	oldAssignee := request.AssignedTo

	event := &domain.LifecycleEvent{
		RequestID: request.ID,
		EventType: domain.EventTypeAssigned,
		Actor:     actor,
		Data: map[string]any{
			"old_assignee": oldAssignee,
			"new_assignee": assignee,
		},
	}
	if err := s.requests.UpdateAssignee(ctx, request.ID, assignee, event); err != nil {
		return nil, err
	}
	request.AssignedTo = assignee

	s.publish(ctx, events.Event{
		Type:        events.EventRequestAssigned,
		RequestID:   request.ID,
		OrderNumber: request.OrderNumber,
		Actor:       actor,
		Payload: events.AssignedPayload{
			OldAssignee: oldAssignee,
			NewAssignee: assignee,
		},
	})
	return request, nil
}

// QuoteInput carries quote issuance details.
type QuoteInput struct {
	Amount   float64
	Currency string
	Notes    string
}

// RecordQuoteIssued appends a quote_issued audit event.
func (s *LifecycleService) RecordQuoteIssued(ctx context.Context, requestID string, actor domain.Actor, input QuoteInput) (*domain.LifecycleEvent, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	event := &domain.LifecycleEvent{
		RequestID: request.ID,
		EventType: domain.EventTypeQuoteIssued,
		Actor:     actor,
		Notes:     input.Notes,
		Data: map[string]any{
			"amount":   input.Amount,
			"currency": input.Currency,
		},
	}
	if err := s.trail.Append(ctx, event); err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:        events.EventQuoteIssued,
		RequestID:   request.ID,
		OrderNumber: request.OrderNumber,
		Actor:       actor,
		Payload: events.QuoteIssuedPayload{
			Amount:   input.Amount,
			Currency: input.Currency,
			Notes:    input.Notes,
		},
	})
	return event, nil
}

// InvoiceInput carries invoice issuance details.
type InvoiceInput struct {
	InvoiceRef string
	Amount     float64
	Currency   string
}

// RecordInvoiceIssued appends an invoice_issued audit event.
func (s *LifecycleService) RecordInvoiceIssued(ctx context.Context, requestID string, actor domain.Actor, input InvoiceInput) (*domain.LifecycleEvent, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	event := &domain.LifecycleEvent{
		RequestID: request.ID,
		EventType: domain.EventTypeInvoiceIssued,
		Actor:     actor,
		Data: map[string]any{
			"invoice_ref": input.InvoiceRef,
			"amount":      input.Amount,
			"currency":    input.Currency,
		},
	}
	if err := s.trail.Append(ctx, event); err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:        events.EventInvoiceIssued,
		RequestID:   request.ID,
		OrderNumber: request.OrderNumber,
		Actor:       actor,
		Payload: events.InvoiceIssuedPayload{
			InvoiceRef: input.InvoiceRef,
			Amount:     input.Amount,
			Currency:   input.Currency,
		},
	})
	return event, nil
}

// GetVerdict computes the SLA verdict for a request. Drafts and terminal
// requests yield ErrNotApplicable.
func (s *LifecycleService) GetVerdict(ctx context.Context, requestID string) (*sla.Verdict, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return s.verdictFor(ctx, request)
}

// ListEvents returns the request's audit trail in recording order.
func (s *LifecycleService) ListEvents(ctx context.Context, requestID string) ([]domain.LifecycleEvent, error) {
	if _, err := s.requests.GetByID(ctx, requestID); err != nil {
		return nil, err
	}
	return s.trail.ListByRequest(ctx, requestID)
}

// GetRequestForCustomer fetches a request ensuring ownership, with trail and
// verdict for the detail view.
func (s *LifecycleService) GetRequestForCustomer(ctx context.Context, customerID, requestID string) (*RequestSummary, []domain.LifecycleEvent, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	if request.CustomerID != customerID {
		return nil, nil, apperrors.NewForbidden("access denied")
	}
	trail, err := s.trail.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	return s.summarize(ctx, request), trail, nil
}

// ListCustomerRequests returns the customer's requests.
func (s *LifecycleService) ListCustomerRequests(ctx context.Context, customerID string, limit, offset int) ([]domain.ServiceRequest, error) {
	return s.requests.ListWithFilter(ctx, repository.RequestFilter{
		CustomerID: &customerID,
		Limit:      limit,
		Offset:     offset,
	})
}

// ListStaffRequests returns requests matching the staff filter.
func (s *LifecycleService) ListStaffRequests(ctx context.Context, filter repository.RequestFilter) ([]domain.ServiceRequest, error) {
	return s.requests.ListWithFilter(ctx, filter)
}

// GetSummary loads a request with its verdict.
func (s *LifecycleService) GetSummary(ctx context.Context, requestID string) (*RequestSummary, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, request), nil
}

// GetSummaryByOrderNumber resolves a request by its customer-facing order
// number.
func (s *LifecycleService) GetSummaryByOrderNumber(ctx context.Context, orderNumber string) (*RequestSummary, error) {
	request, err := s.requests.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, request), nil
}

// ProfileFor resolves the SLA profile for a service kind, falling back to
// the configured default when no row exists.
func (s *LifecycleService) ProfileFor(ctx context.Context, serviceKind string) sla.Profile {
	profile, err := s.profiles.GetByServiceKind(ctx, serviceKind)
	if err != nil {
		return sla.Profile{
			ServiceKind:             serviceKind,
			TargetHours:             s.slaCfg.DefaultTargetHours,
			WarningThresholdPercent: s.slaCfg.DefaultWarningThreshold,
		}
	}
	return *profile
}

func (s *LifecycleService) verdictFor(ctx context.Context, request *domain.ServiceRequest) (*sla.Verdict, error) {
	if !request.Open() {
		return nil, domain.ErrNotApplicable
	}
	profile := s.ProfileFor(ctx, request.ServiceKind)
	verdict := sla.Classify(*request.SubmittedAt, profile, s.now(), s.calendar)
	return &verdict, nil
}

func (s *LifecycleService) summarize(ctx context.Context, request *domain.ServiceRequest) *RequestSummary {
	summary := &RequestSummary{Request: request}
	if verdict, err := s.verdictFor(ctx, request); err == nil {
		summary.Verdict = verdict
	}
	return summary
}

func (s *LifecycleService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	s.dispatcher.Publish(ctx, event)
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/request-service/internal/config"
	"github.com/spec-kit/request-service/internal/domain"
	"github.com/spec-kit/request-service/internal/events"
	"github.com/spec-kit/request-service/internal/repository"
	"github.com/spec-kit/request-service/internal/schedule"
	"github.com/spec-kit/request-service/internal/sla"
)

type fakeRequestRepo struct {
	requests map[string]*domain.ServiceRequest
	events   []domain.LifecycleEvent

	// conflicts makes the next N ApplyTransition calls fail with
	// ErrConcurrentModification before succeeding.
	conflicts int
}

func newFakeRequestRepo(requests ...*domain.ServiceRequest) *fakeRequestRepo {
	repo := &fakeRequestRepo{requests: map[string]*domain.ServiceRequest{}}
	for _, request := range requests {
		repo.requests[request.ID] = request
	}
	return repo
}

func (f *fakeRequestRepo) Create(_ context.Context, request *domain.ServiceRequest) error {
	request.ID = "req-" + request.Title
	request.OrderNumber = "REQ-000001"
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt
	f.requests[request.ID] = request
	return nil
}

func (f *fakeRequestRepo) GetByID(_ context.Context, id string) (*domain.ServiceRequest, error) {
	request, ok := f.requests[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	clone := *request
	return &clone, nil
}

func (f *fakeRequestRepo) GetByOrderNumber(_ context.Context, orderNumber string) (*domain.ServiceRequest, error) {
	for _, request := range f.requests {
		if request.OrderNumber == orderNumber {
			clone := *request
			return &clone, nil
		}
	}
	return nil, domain.ErrRequestNotFound
}

func (f *fakeRequestRepo) ListWithFilter(_ context.Context, filter repository.RequestFilter) ([]domain.ServiceRequest, error) {
	out := []domain.ServiceRequest{}
	for _, request := range f.requests {
		if filter.CustomerID != nil && request.CustomerID != *filter.CustomerID {
			continue
		}
		out = append(out, *request)
	}
	return out, nil
}

func (f *fakeRequestRepo) ListOpen(_ context.Context) ([]domain.ServiceRequest, error) {
	out := []domain.ServiceRequest{}
	for _, request := range f.requests {
		if request.Open() {
			out = append(out, *request)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) ApplyTransition(_ context.Context, requestID string, from, to domain.Status, submittedAt *time.Time, event *domain.LifecycleEvent) error {
	if f.conflicts > 0 {
		f.conflicts--
		return domain.ErrConcurrentModification
	}
	request, ok := f.requests[requestID]
	if !ok {
		return domain.ErrRequestNotFound
	}
	if request.Status != from {
		return domain.ErrConcurrentModification
	}
	request.Status = to
	if submittedAt != nil && request.SubmittedAt == nil {
		request.SubmittedAt = submittedAt
	}
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeRequestRepo) UpdateAssignee(_ context.Context, requestID string, assignee *string, event *domain.LifecycleEvent) error {
	request, ok := f.requests[requestID]
	if !ok {
		return domain.ErrRequestNotFound
	}
	request.AssignedTo = assignee
	f.events = append(f.events, *event)
	return nil
}

type fakeEventRepo struct {
	appended []domain.LifecycleEvent
}

func (f *fakeEventRepo) Append(_ context.Context, event *domain.LifecycleEvent) error {
	f.appended = append(f.appended, *event)
	return nil
}

func (f *fakeEventRepo) ListByRequest(_ context.Context, requestID string) ([]domain.LifecycleEvent, error) {
	out := []domain.LifecycleEvent{}
	for _, event := range f.appended {
		if event.RequestID == requestID {
			out = append(out, event)
		}
	}
	return out, nil
}

type fakeProfileRepo struct {
	profiles map[string]sla.Profile
}

func (f *fakeProfileRepo) GetByServiceKind(_ context.Context, serviceKind string) (*sla.Profile, error) {
	profile, ok := f.profiles[serviceKind]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	return &profile, nil
}

func (f *fakeProfileRepo) List(_ context.Context) ([]sla.Profile, error) {
	out := []sla.Profile{}
	for _, profile := range f.profiles {
		out = append(out, profile)
	}
	return out, nil
}

type fakeKindRepo struct {
	kinds map[string]*domain.ServiceKind
}

func (f *fakeKindRepo) GetByCode(_ context.Context, code string) (*domain.ServiceKind, error) {
	kind, ok := f.kinds[code]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	return kind, nil
}

func (f *fakeKindRepo) ListActive(_ context.Context) ([]domain.ServiceKind, error) {
	out := []domain.ServiceKind{}
	for _, kind := range f.kinds {
		if kind.Status == domain.ServiceKindStatusActive {
			out = append(out, *kind)
		}
	}
	return out, nil
}

type recordingDispatcher struct {
	published []events.Event
}

func (r *recordingDispatcher) Publish(_ context.Context, event events.Event) {
	r.published = append(r.published, event)
}

func (r *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (r *recordingDispatcher) Close() {}

func testCalendar(t *testing.T) schedule.WorkCalendar {
	t.Helper()
	cal, err := schedule.NewWorkCalendar(
		[]time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		"09:00", "17:00", nil, time.UTC,
	)
	if err != nil {
		t.Fatalf("build calendar: %v", err)
	}
	return cal
}

// Monday 2026-03-02.
func testClock(hour, minute int) func() time.Time {
	return func() time.Time {
		return time.Date(2026, 3, 2, hour, minute, 0, 0, time.UTC)
	}
}

func newTestLifecycle(t *testing.T, repo *fakeRequestRepo, dispatcher events.Dispatcher) (*LifecycleService, *fakeEventRepo) {
	t.Helper()
	trail := &fakeEventRepo{}
	svc := NewLifecycleService(LifecycleDependencies{
		RequestRepo: repo,
		EventRepo:   trail,
		ProfileRepo: &fakeProfileRepo{profiles: map[string]sla.Profile{
			"translation_standard": {ServiceKind: "translation_standard", TargetHours: 40, WarningThresholdPercent: 0.75},
		}},
		KindRepo: &fakeKindRepo{kinds: map[string]*domain.ServiceKind{
			"translation_standard": {Code: "translation_standard", Name: "Standard Translation", Status: domain.ServiceKindStatusActive},
			"telex_relay":          {Code: "telex_relay", Name: "Telex Relay", Status: domain.ServiceKindStatusRetired},
		}},
		Dispatcher: dispatcher,
		Calendar:   testCalendar(t),
		SLA:        config.SLAConfig{DefaultTargetHours: 48, DefaultWarningThreshold: 0.75},
		Now:        testClock(10, 0),
	})
	return svc, trail
}

func draftRequest(id string) *domain.ServiceRequest {
	return &domain.ServiceRequest{
		ID:          id,
		OrderNumber: "REQ-000042",
		CustomerID:  "cust-1",
		ServiceKind: "translation_standard",
		Title:       "manual",
		Status:      domain.StatusDraft,
	}
}

func submittedRequest(id string, status domain.Status, submitted time.Time) *domain.ServiceRequest {
	request := draftRequest(id)
	request.Status = status
	request.SubmittedAt = &submitted
	return request
}

func TestCreateDraftRejectsRetiredKind(t *testing.T) {
	repo := newFakeRequestRepo()
	svc, _ := newTestLifecycle(t, repo, &recordingDispatcher{})

	_, err := svc.CreateDraft(context.Background(), "cust-1", DraftInput{ServiceKind: "telex_relay", Title: "x"})
	if err == nil {
		t.Fatal("expected error for retired service kind")
	}
	if len(repo.requests) != 0 {
		t.Fatalf("draft persisted despite retired kind")
	}
}

func TestSubmitSetsSubmittedAtOnce(t *testing.T) {
	repo := newFakeRequestRepo(draftRequest("r1"))
	dispatcher := &recordingDispatcher{}
	svc, _ := newTestLifecycle(t, repo, dispatcher)

	summary, err := svc.Submit(context.Background(), "cust-1", "r1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if summary.Request.Status != domain.StatusSubmitted {
		t.Fatalf("status = %s, want submitted", summary.Request.Status)
	}
	if summary.Request.SubmittedAt == nil || !summary.Request.SubmittedAt.Equal(testClock(10, 0)()) {
		t.Fatalf("submitted_at = %v, want injected clock instant", summary.Request.SubmittedAt)
	}
	if len(repo.events) != 1 || repo.events[0].EventType != domain.EventTypeSubmitted {
		t.Fatalf("events = %+v, want one submitted event", repo.events)
	}
	if len(dispatcher.published) != 1 || dispatcher.published[0].Type != events.EventRequestSubmitted {
		t.Fatalf("published = %+v, want one submitted notification", dispatcher.published)
	}
}

func TestSubmitDeniedForOtherCustomer(t *testing.T) {
	repo := newFakeRequestRepo(draftRequest("r1"))
	svc, _ := newTestLifecycle(t, repo, &recordingDispatcher{})

	if _, err := svc.Submit(context.Background(), "cust-2", "r1"); err == nil {
		t.Fatal("expected access denial for non-owner")
	}
	if len(repo.events) != 0 {
		t.Fatalf("events written on denied submit: %+v", repo.events)
	}
}

func TestRequestTransitionWritesExactlyOneEvent(t *testing.T) {
	repo := newFakeRequestRepo(submittedRequest("r1", domain.StatusSubmitted, testClock(9, 0)()))
	dispatcher := &recordingDispatcher{}
	svc, _ := newTestLifecycle(t, repo, dispatcher)

	summary, err := svc.RequestTransition(context.Background(), "r1", domain.StatusScoping, domain.StaffActor("staff-1"), "picking up")
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if summary.Request.Status != domain.StatusScoping {
		t.Fatalf("status = %s, want scoping", summary.Request.Status)
	}
	if len(repo.events) != 1 {
		t.Fatalf("event count = %d, want 1", len(repo.events))
	}
	event := repo.events[0]
	if event.EventType != domain.EventTypeStatusChanged {
		t.Fatalf("event type = %s, want status_changed", event.EventType)
	}
	if event.Data["old_status"] != domain.StatusSubmitted || event.Data["new_status"] != domain.StatusScoping {
		t.Fatalf("event data = %+v", event.Data)
	}
	if event.Notes != "picking up" {
		t.Fatalf("notes = %q", event.Notes)
	}
	if summary.Verdict == nil {
		t.Fatal("open request should carry a verdict")
	}
}

func TestRequestTransitionIllegalWritesNothing(t *testing.T) {
	repo := newFakeRequestRepo(submittedRequest("r1", domain.StatusSubmitted, testClock(9, 0)()))
	dispatcher := &recordingDispatcher{}
	svc, _ := newTestLifecycle(t, repo, dispatcher)

	_, err := svc.RequestTransition(context.Background(), "r1", domain.StatusCompleted, domain.StaffActor("staff-1"), "")
	var transitionErr *domain.TransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("err = %v, want TransitionError", err)
	}
	if len(repo.events) != 0 || len(dispatcher.published) != 0 {
		t.Fatal("illegal transition must not write or publish")
	}
	if repo.requests["r1"].Status != domain.StatusSubmitted {
		t.Fatalf("status mutated to %s", repo.requests["r1"].Status)
	}
}

func TestRequestTransitionRetriesOnConflict(t *testing.T) {
	repo := newFakeRequestRepo(submittedRequest("r1", domain.StatusSubmitted, testClock(9, 0)()))
	repo.conflicts = 2
	svc, _ := newTestLifecycle(t, repo, &recordingDispatcher{})

	summary, err := svc.RequestTransition(context.Background(), "r1", domain.StatusScoping, domain.StaffActor("staff-1"), "")
	if err != nil {
		t.Fatalf("transition should succeed after retries: %v", err)
	}
	if summary.Request.Status != domain.StatusScoping {
		t.Fatalf("status = %s, want scoping", summary.Request.Status)
	}
}

func TestRequestTransitionSurfacesPersistentConflict(t *testing.T) {
	repo := newFakeRequestRepo(submittedRequest("r1", domain.StatusSubmitted, testClock(9, 0)()))
	repo.conflicts = 10
	svc, _ := newTestLifecycle(t, repo, &recordingDispatcher{})

	_, err := svc.RequestTransition(context.Background(), "r1", domain.StatusScoping, domain.StaffActor("staff-1"), "")
	if !errors.Is(err, domain.ErrConcurrentModification) {
		t.Fatalf("err = %v, want ErrConcurrentModification", err)
	}
}

func TestReassignRecordsEventWithoutTouchingStatus(t *testing.T) {
	repo := newFakeRequestRepo(submittedRequest("r1", domain.StatusInProgress, testClock(9, 0)()))
	dispatcher := &recordingDispatcher{}
	svc, _ := newTestLifecycle(t, repo, dispatcher)

	assignee := "staff-9"
	request, err := svc.Reassign(context.Background(), "r1", &assignee, domain.StaffActor("staff-1"))
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if request.AssignedTo == nil || *request.AssignedTo != assignee {
		t.Fatalf("assigned_to = %v", request.AssignedTo)
	}
	if request.Status != domain.StatusInProgress {
		t.Fatalf("status changed on reassign: %s", request.Status)
	}
	if len(repo.events) != 1 || repo.events[0].EventType != domain.EventTypeAssigned {
		t.Fatalf("events = %+v", repo.events)
	}
	if len(dispatcher.published) != 1 || dispatcher.published[0].Type != events.EventRequestAssigned {
		t.Fatalf("published = %+v", dispatcher.published)
	}
}

func TestRecordQuoteIssuedAppendsTrailEvent(t *testing.T) {
	repo := newFakeRequestRepo(submittedRequest("r1", domain.StatusScoping, testClock(9, 0)()))
	dispatcher := &recordingDispatcher{}
	svc, trail := newTestLifecycle(t, repo, dispatcher)

	event, err := svc.RecordQuoteIssued(context.Background(), "r1", domain.StaffActor("staff-1"), QuoteInput{Amount: 420.50, Currency: "EUR", Notes: "rush"})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if event.EventType != domain.EventTypeQuoteIssued {
		t.Fatalf("event type = %s", event.EventType)
	}
	if len(trail.appended) != 1 {
		t.Fatalf("trail length = %d, want 1", len(trail.appended))
	}
	if len(dispatcher.published) != 1 || dispatcher.published[0].Type != events.EventQuoteIssued {
		t.Fatalf("published = %+v", dispatcher.published)
	}
}

func TestGetVerdictNotApplicableForDraftAndTerminal(t *testing.T) {
	completed := submittedRequest("r2", domain.StatusCompleted, testClock(9, 0)())
	repo := newFakeRequestRepo(draftRequest("r1"), completed)
	svc, _ := newTestLifecycle(t, repo, &recordingDispatcher{})

	for _, id := range []string{"r1", "r2"} {
		if _, err := svc.GetVerdict(context.Background(), id); !errors.Is(err, domain.ErrNotApplicable) {
			t.Fatalf("verdict for %s: err = %v, want ErrNotApplicable", id, err)
		}
	}
}

func TestGetVerdictForOpenRequest(t *testing.T) {
	repo := newFakeRequestRepo(submittedRequest("r1", domain.StatusInProgress, testClock(9, 0)()))
	svc, _ := newTestLifecycle(t, repo, &recordingDispatcher{})

	verdict, err := svc.GetVerdict(context.Background(), "r1")
	if err != nil {
		t.Fatalf("verdict: %v", err)
	}
	if verdict.Status != sla.VerdictOnTrack {
		t.Fatalf("verdict = %s, want on_track after one business hour of forty", verdict.Status)
	}
}

func TestProfileForFallsBackToConfiguredDefault(t *testing.T) {
	svc, _ := newTestLifecycle(t, newFakeRequestRepo(), &recordingDispatcher{})

	profile := svc.ProfileFor(context.Background(), "documentation_review")
	if profile.TargetHours != 48 || profile.WarningThresholdPercent != 0.75 {
		t.Fatalf("fallback profile = %+v", profile)
	}
}

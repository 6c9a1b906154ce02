package service

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/request-service/internal/config"
	"github.com/spec-kit/request-service/internal/domain"
	"github.com/spec-kit/request-service/internal/sla"
)

func newTestDashboard(t *testing.T, repo *fakeRequestRepo, now func() time.Time) *DashboardService {
	t.Helper()
	return NewDashboardService(DashboardDependencies{
		RequestRepo: repo,
		ProfileRepo: &fakeProfileRepo{profiles: map[string]sla.Profile{
			"translation_standard": {ServiceKind: "translation_standard", TargetHours: 8, WarningThresholdPercent: 0.75},
		}},
		Calendar: testCalendar(t),
		SLA:      config.SLAConfig{DefaultTargetHours: 48, DefaultWarningThreshold: 0.75},
		Now:      now,
	})
}

func TestSummarizeOpenRequestsBuckets(t *testing.T) {
	// Now is Monday 2026-03-02 16:00. With an 8 business-hour target:
	// submitted Monday 09:00 -> 7h elapsed, 87.5% -> at risk;
	// submitted Monday 15:30 -> 0.5h elapsed -> on track;
	// submitted previous Friday 09:00 -> deadline Friday 17:00 -> breached.
	now := testClock(16, 0)
	friday := time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC)

	repo := newFakeRequestRepo(
		draftRequest("d1"),
		submittedRequest("atrisk", domain.StatusInProgress, testClock(9, 0)()),
		submittedRequest("ontrack", domain.StatusScoping, testClock(15, 30)()),
		submittedRequest("breached", domain.StatusReview, friday),
		submittedRequest("done", domain.StatusCompleted, friday),
	)
	dashboard := newTestDashboard(t, repo, now)

	summary, err := dashboard.SummarizeOpenRequests(context.Background())
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary.OnTrack != 1 || summary.AtRisk != 1 || summary.Breached != 1 {
		t.Fatalf("buckets = %+v", summary)
	}
	if summary.Total != 3 {
		t.Fatalf("total = %d, want 3 (drafts and terminal requests excluded)", summary.Total)
	}
}

func TestSummarizeOpenRequestsEmpty(t *testing.T) {
	dashboard := newTestDashboard(t, newFakeRequestRepo(), testClock(12, 0))

	summary, err := dashboard.SummarizeOpenRequests(context.Background())
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary.Total != 0 || summary.OnTrack != 0 || summary.AtRisk != 0 || summary.Breached != 0 {
		t.Fatalf("summary = %+v, want all zero", summary)
	}
}

func TestSummarizeAppliesDefaultProfileForUnknownKind(t *testing.T) {
	request := submittedRequest("r1", domain.StatusInProgress, testClock(9, 0)())
	request.ServiceKind = "documentation_review"
	dashboard := newTestDashboard(t, newFakeRequestRepo(request), testClock(10, 0))

	summary, err := dashboard.SummarizeOpenRequests(context.Background())
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	// One business hour against the 48h default is comfortably on track.
	if summary.OnTrack != 1 || summary.Total != 1 {
		t.Fatalf("summary = %+v", summary)
	}
}

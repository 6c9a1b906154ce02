package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/request-service/internal/config"
	"github.com/spec-kit/request-service/internal/repository"
	"github.com/spec-kit/request-service/internal/schedule"
	"github.com/spec-kit/request-service/internal/sla"
)

const summaryCacheKey = "dashboard:sla_summary"

// SLASummary tallies compliance verdicts for open requests. Total counts
// only SLA-eligible requests: drafts and terminal requests are excluded from
// both the buckets and the total.
type SLASummary struct {
	OnTrack  int `json:"on_track"`
	AtRisk   int `json:"at_risk"`
	Breached int `json:"breached"`
	Total    int `json:"total"`
}

// DashboardService is the read-side aggregator: it joins open requests
// against SLA profiles and the classifier, performing no writes, so it is
// safe to call concurrently with lifecycle writers.
type DashboardService struct {
	requests repository.RequestRepository
	profiles repository.SLAProfileRepository
	cache    *redis.Client
	calendar schedule.WorkCalendar
	slaCfg   config.SLAConfig
	now      func() time.Time
}

// DashboardDependencies bundles collaborators for the dashboard service.
type DashboardDependencies struct {
	RequestRepo repository.RequestRepository
	ProfileRepo repository.SLAProfileRepository
	Cache       *redis.Client
	Calendar    schedule.WorkCalendar
	SLA         config.SLAConfig
	Now         func() time.Time
}

// NewDashboardService constructs the service. Cache may be nil.
func NewDashboardService(deps DashboardDependencies) *DashboardService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &DashboardService{
		requests: deps.RequestRepo,
		profiles: deps.ProfileRepo,
		cache:    deps.Cache,
		calendar: deps.Calendar,
		slaCfg:   deps.SLA,
		now:      now,
	}
}

// SummarizeOpenRequests classifies every open request and tallies verdicts.
// The result is cached briefly; verdicts themselves are never persisted.
func (s *DashboardService) SummarizeOpenRequests(ctx context.Context) (*SLASummary, error) {
	if cached := s.readCache(ctx); cached != nil {
		return cached, nil
	}

	requests, err := s.requests.ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	profiles := map[string]sla.Profile{}
	if rows, err := s.profiles.List(ctx); err == nil {
		for _, profile := range rows {
			profiles[profile.ServiceKind] = profile
		}
	}

	summary := &SLASummary{}
	now := s.now()
	for i := range requests {
		request := &requests[i]
		if !request.Open() {
			continue
		}
		profile, ok := profiles[request.ServiceKind]
		if !ok {
			profile = sla.Profile{
				ServiceKind:             request.ServiceKind,
				TargetHours:             s.slaCfg.DefaultTargetHours,
				WarningThresholdPercent: s.slaCfg.DefaultWarningThreshold,
			}
		}
		verdict := sla.Classify(*request.SubmittedAt, profile, now, s.calendar)
		switch verdict.Status {
		case sla.VerdictOnTrack:
			summary.OnTrack++
		case sla.VerdictAtRisk:
			summary.AtRisk++
		case sla.VerdictBreached:
			summary.Breached++
		}
		summary.Total++
	}

	s.writeCache(ctx, summary)
	return summary, nil
}

func (s *DashboardService) readCache(ctx context.Context) *SLASummary {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, summaryCacheKey).Bytes()
	if err != nil {
		return nil
	}
	var summary SLASummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil
	}
	return &summary
}

func (s *DashboardService) writeCache(ctx context.Context, summary *SLASummary) {
	if s.cache == nil {
		return
	}
	if encoded, err := json.Marshal(summary); err == nil {
		_ = s.cache.Set(ctx, summaryCacheKey, encoded, s.slaCfg.SummaryCacheTTL()).Err()
	}
}

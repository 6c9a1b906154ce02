package sla

import (
	"time"

	"github.com/spec-kit/request-service/internal/schedule"
)

// VerdictStatus is the compliance classification for an open request.
type VerdictStatus string

const (
	VerdictOnTrack  VerdictStatus = "on_track"
	VerdictAtRisk   VerdictStatus = "at_risk"
	VerdictBreached VerdictStatus = "breached"
)

// Profile is the per-service-kind SLA configuration. TargetHours is a
// contractual turnaround in business hours, not wall-clock hours.
type Profile struct {
	ServiceKind             string  `json:"service_kind"`
	TargetHours             float64 `json:"target_hours"`
	WarningThresholdPercent float64 `json:"warning_threshold_percent"`
}

// Verdict is the computed compliance state. It is derived fresh on every
// read and never persisted, so it cannot drift from the calendar config.
type Verdict struct {
	Status         VerdictStatus `json:"status"`
	Deadline       time.Time     `json:"deadline"`
	ElapsedHours   float64       `json:"elapsed_hours"`
	PercentElapsed float64       `json:"percent_elapsed"`
}

// Classify computes the SLA verdict for a submitted request. It is a pure
// function of (submittedAt, profile, now, calendar). A zero or negative
// target is treated as immediately breached.
func Classify(submittedAt time.Time, profile Profile, now time.Time, cal schedule.WorkCalendar) Verdict {
	elapsed := schedule.BusinessHoursBetween(submittedAt, now, cal)

	if profile.TargetHours <= 0 {
		return Verdict{
			Status:         VerdictBreached,
			Deadline:       submittedAt,
			ElapsedHours:   elapsed,
			PercentElapsed: 1,
		}
	}

	deadline := schedule.AddBusinessHours(submittedAt, profile.TargetHours, cal)
	percent := elapsed / profile.TargetHours

	verdict := Verdict{
		Deadline:       deadline,
		ElapsedHours:   elapsed,
		PercentElapsed: percent,
	}
	switch {
	case !now.Before(deadline):
		verdict.Status = VerdictBreached
	case percent >= profile.WarningThresholdPercent:
		verdict.Status = VerdictAtRisk
	default:
		verdict.Status = VerdictOnTrack
	}
	return verdict
}

package sla

import (
	"testing"
	"time"

	"github.com/spec-kit/request-service/internal/schedule"
)

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

func TestClassifyScenario(t *testing.T) {
	cal := testCalendar(t)
	submitted := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) // Monday 09:00
	profile := Profile{ServiceKind: "sworn_translation", TargetHours: 8, WarningThresholdPercent: 0.5}

	cases := []struct {
		name string
		now  time.Time
		want VerdictStatus
	}{
		{name: "fresh", now: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), want: VerdictOnTrack},
		{name: "half elapsed", now: time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC), want: VerdictAtRisk},
		{name: "at deadline", now: time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC), want: VerdictBreached},
		{name: "next morning", now: time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC), want: VerdictBreached},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			verdict := Classify(submitted, profile, tc.now, cal)
			if verdict.Status != tc.want {
				t.Fatalf("status = %s, want %s (percent %.2f)", verdict.Status, tc.want, verdict.PercentElapsed)
			}
			wantDeadline := time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC)
			if !verdict.Deadline.Equal(wantDeadline) {
				t.Fatalf("deadline = %v, want %v", verdict.Deadline, wantDeadline)
			}
		})
	}
}

func TestClassifyPercentElapsed(t *testing.T) {
	cal := testCalendar(t)
	submitted := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC)
	verdict := Classify(submitted, Profile{TargetHours: 8, WarningThresholdPercent: 0.75}, now, cal)
	if verdict.PercentElapsed != 0.5 {
		t.Fatalf("percent = %v, want 0.5", verdict.PercentElapsed)
	}
	if verdict.Status != VerdictOnTrack {
		t.Fatalf("status = %s, want on_track below threshold", verdict.Status)
	}
}

func TestClassifyZeroTargetBreachesImmediately(t *testing.T) {
	cal := testCalendar(t)
	submitted := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	verdict := Classify(submitted, Profile{TargetHours: 0, WarningThresholdPercent: 0.5}, submitted, cal)
	if verdict.Status != VerdictBreached {
		t.Fatalf("status = %s, want breached for zero target", verdict.Status)
	}
}

func TestClassifyIsPure(t *testing.T) {
	cal := testCalendar(t)
	submitted := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	now := time.Date(2026, 3, 4, 11, 0, 0, 0, time.UTC)
	profile := Profile{TargetHours: 24, WarningThresholdPercent: 0.6}
	first := Classify(submitted, profile, now, cal)
	second := Classify(submitted, profile, now, cal)
	if first != second {
		t.Fatalf("classify is not deterministic: %+v vs %+v", first, second)
	}
}

package schedule

import (
	"math"
	"testing"
	"time"
)

func weekdayCalendar(t *testing.T, holidays ...string) WorkCalendar {
	t.Helper()
	cal, err := NewWorkCalendar(
		[]time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		"09:00", "17:00", holidays, time.UTC,
	)
	if err != nil {
		t.Fatalf("build calendar: %v", err)
	}
	return cal
}

// Monday 2026-03-02.
func monday(hour, minute int) time.Time {
	return time.Date(2026, 3, 2, hour, minute, 0, 0, time.UTC)
}

func TestAddBusinessHoursZeroIsIdentity(t *testing.T) {
	cal := weekdayCalendar(t)
	start := monday(11, 30)
	if got := AddBusinessHours(start, 0, cal); !got.Equal(start) {
		t.Fatalf("adding zero hours moved the instant: %v", got)
	}
}

func TestAddBusinessHoursWithinDay(t *testing.T) {
	cal := weekdayCalendar(t)
	got := AddBusinessHours(monday(9, 0), 8, cal)
	want := monday(17, 0)
	if !got.Equal(want) {
		t.Fatalf("deadline = %v, want %v", got, want)
	}
}

func TestAddBusinessHoursSkipsWeekend(t *testing.T) {
	cal := weekdayCalendar(t)
	// Friday 15:00 + 4h: 2h Friday, 2h Monday.
	friday := time.Date(2026, 3, 6, 15, 0, 0, 0, time.UTC)
	got := AddBusinessHours(friday, 4, cal)
	want := time.Date(2026, 3, 9, 11, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("deadline = %v, want %v", got, want)
	}
}

func TestAddBusinessHoursSkipsHoliday(t *testing.T) {
	cal := weekdayCalendar(t, "2026-03-03")
	// Monday 16:00 + 2h: 1h Monday, Tuesday is a holiday, 1h Wednesday.
	got := AddBusinessHours(monday(16, 0), 2, cal)
	want := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("deadline = %v, want %v", got, want)
	}
}

func TestAddBusinessHoursFractional(t *testing.T) {
	cal := weekdayCalendar(t)
	got := AddBusinessHours(monday(9, 0), 1.5, cal)
	want := monday(10, 30)
	if !got.Equal(want) {
		t.Fatalf("deadline = %v, want %v", got, want)
	}
}

func TestAddBusinessHoursStartOutsideWindow(t *testing.T) {
	cal := weekdayCalendar(t)
	// Saturday submission clocks in Monday 09:00.
	saturday := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	got := AddBusinessHours(saturday, 1, cal)
	want := monday(10, 0).AddDate(0, 0, 7)
	if !got.Equal(want) {
		t.Fatalf("deadline = %v, want %v", got, want)
	}
}

func TestBusinessHoursBetweenBounds(t *testing.T) {
	cal := weekdayCalendar(t)
	a := monday(10, 0)
	if got := BusinessHoursBetween(a, a, cal); got != 0 {
		t.Fatalf("between(a, a) = %v, want 0", got)
	}
	if got := BusinessHoursBetween(a, a.Add(-time.Hour), cal); got != 0 {
		t.Fatalf("between with b < a = %v, want 0", got)
	}
}

func TestBusinessHoursBetweenAcrossWeekend(t *testing.T) {
	cal := weekdayCalendar(t)
	friday := time.Date(2026, 3, 6, 15, 0, 0, 0, time.UTC)
	nextMonday := time.Date(2026, 3, 9, 11, 0, 0, 0, time.UTC)
	if got := BusinessHoursBetween(friday, nextMonday, cal); math.Abs(got-4) > 1e-9 {
		t.Fatalf("between = %v, want 4", got)
	}
}

func TestBusinessHoursBetweenIgnoresOffHours(t *testing.T) {
	cal := weekdayCalendar(t)
	// Evening to next morning contains zero working time.
	evening := monday(18, 0)
	nextMorning := time.Date(2026, 3, 3, 8, 30, 0, 0, time.UTC)
	if got := BusinessHoursBetween(evening, nextMorning, cal); got != 0 {
		t.Fatalf("between off-hours = %v, want 0", got)
	}
}

func TestRoundTripProperty(t *testing.T) {
	cal := weekdayCalendar(t, "2026-03-05")
	starts := []time.Time{
		monday(9, 0),
		monday(13, 45),
		time.Date(2026, 3, 6, 16, 30, 0, 0, time.UTC), // Friday late
		time.Date(2026, 3, 7, 3, 0, 0, 0, time.UTC),   // Saturday
	}
	hours := []float64{0.25, 1, 1.5, 8, 12.75, 40}
	for _, start := range starts {
		for _, h := range hours {
			deadline := AddBusinessHours(start, h, cal)
			got := BusinessHoursBetween(start, deadline, cal)
			if math.Abs(got-h) > 1e-6 {
				t.Fatalf("round trip start=%v h=%v got %v", start, h, got)
			}
		}
	}
}

package schedule

import (
	"fmt"
	"time"
)

// WorkCalendar defines when business time elapses: working weekdays, the
// daily working window, an explicit holiday set, and a single organizational
// time zone. All business-hour arithmetic is evaluated in that zone.
type WorkCalendar struct {
	workDays     map[time.Weekday]bool
	startMinutes int
	endMinutes   int
	holidays     map[string]bool
	location     *time.Location
}

const holidayDateLayout = "2006-01-02"

// NewWorkCalendar builds a calendar from working weekdays, a daily window
// given as "HH:MM" start/end times of day, holiday dates ("YYYY-MM-DD") and
// the organizational time zone.
func NewWorkCalendar(days []time.Weekday, dayStart, dayEnd string, holidays []string, loc *time.Location) (WorkCalendar, error) {
	if loc == nil {
		loc = time.UTC
	}
	start, err := parseMinutesOfDay(dayStart)
	if err != nil {
		return WorkCalendar{}, fmt.Errorf("invalid day start: %w", err)
	}
	end, err := parseMinutesOfDay(dayEnd)
	if err != nil {
		return WorkCalendar{}, fmt.Errorf("invalid day end: %w", err)
	}
	if end <= start {
		return WorkCalendar{}, fmt.Errorf("daily window %q-%q is empty", dayStart, dayEnd)
	}
	if len(days) == 0 {
		return WorkCalendar{}, fmt.Errorf("no working days configured")
	}

	daySet := make(map[time.Weekday]bool, len(days))
	for _, day := range days {
		daySet[day] = true
	}
	holidaySet := make(map[string]bool, len(holidays))
	for _, raw := range holidays {
		parsed, err := time.ParseInLocation(holidayDateLayout, raw, loc)
		if err != nil {
			return WorkCalendar{}, fmt.Errorf("invalid holiday %q: %w", raw, err)
		}
		holidaySet[parsed.Format(holidayDateLayout)] = true
	}

	return WorkCalendar{
		workDays:     daySet,
		startMinutes: start,
		endMinutes:   end,
		holidays:     holidaySet,
		location:     loc,
	}, nil
}

// Location returns the calendar's organizational time zone.
func (c WorkCalendar) Location() *time.Location {
	return c.location
}

// IsWorkDay reports whether the date of t (in the calendar zone) is a working
// day and not a holiday.
func (c WorkCalendar) IsWorkDay(t time.Time) bool {
	local := t.In(c.location)
	if !c.workDays[local.Weekday()] {
		return false
	}
	return !c.holidays[local.Format(holidayDateLayout)]
}

// windowStart returns the instant the working window opens on t's date.
func (c WorkCalendar) windowStart(t time.Time) time.Time {
	local := t.In(c.location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.location).
		Add(time.Duration(c.startMinutes) * time.Minute)
}

// windowEnd returns the instant the working window closes on t's date.
func (c WorkCalendar) windowEnd(t time.Time) time.Time {
	local := t.In(c.location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.location).
		Add(time.Duration(c.endMinutes) * time.Minute)
}

// nextDay returns midnight of the day after t in the calendar zone.
func (c WorkCalendar) nextDay(t time.Time) time.Time {
	local := t.In(c.location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.location).
		AddDate(0, 0, 1)
}

func parseMinutesOfDay(raw string) (int, error) {
	parsed, err := time.Parse("15:04", raw)
	if err != nil {
		return 0, err
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

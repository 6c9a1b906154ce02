package schedule

import "time"

// AddBusinessHours advances start by the given number of working hours,
// skipping time outside the calendar's working windows entirely. Fractional
// hours are carried exactly; nothing is rounded mid-calculation.
func AddBusinessHours(start time.Time, hours float64, cal WorkCalendar) time.Time {
	if hours <= 0 {
		return start
	}
	remaining := time.Duration(hours * float64(time.Hour))
	cursor := start.In(cal.Location())

	for remaining > 0 {
		if !cal.IsWorkDay(cursor) {
			cursor = cal.nextDay(cursor)
			continue
		}
		windowStart := cal.windowStart(cursor)
		windowEnd := cal.windowEnd(cursor)
		if cursor.Before(windowStart) {
			cursor = windowStart
		}
		if !cursor.Before(windowEnd) {
			cursor = cal.nextDay(cursor)
			continue
		}
		available := windowEnd.Sub(cursor)
		if available >= remaining {
			return cursor.Add(remaining)
		}
		remaining -= available
		cursor = cal.nextDay(cursor)
	}
	return cursor
}

// BusinessHoursBetween returns the total working hours contained in [a, b).
// The result is never negative; b before a yields 0.
func BusinessHoursBetween(a, b time.Time, cal WorkCalendar) float64 {
	if !b.After(a) {
		return 0
	}
	var total time.Duration
	cursor := a.In(cal.Location())
	end := b.In(cal.Location())

	for cursor.Before(end) {
		if !cal.IsWorkDay(cursor) {
			cursor = cal.nextDay(cursor)
			continue
		}
		windowStart := cal.windowStart(cursor)
		windowEnd := cal.windowEnd(cursor)
		if cursor.Before(windowStart) {
			cursor = windowStart
		}
		stop := windowEnd
		if end.Before(stop) {
			stop = end
		}
		if cursor.Before(stop) {
			total += stop.Sub(cursor)
		}
		cursor = cal.nextDay(cursor)
	}
	return total.Hours()
}

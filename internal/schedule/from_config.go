package schedule

import (
	"fmt"
	"time"

	"github.com/spec-kit/request-service/internal/config"
)

// FromConfig builds the organizational WorkCalendar from runtime
// configuration. The calendar is loaded once at startup and treated as
// immutable afterwards; configuration changes take effect on restart only.
func FromConfig(cfg config.CalendarConfig) (WorkCalendar, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return WorkCalendar{}, fmt.Errorf("invalid SLA_TIMEZONE %q: %w", cfg.Timezone, err)
	}
	days := make([]time.Weekday, 0, len(cfg.WorkDays))
	for _, day := range cfg.WorkDays {
		if day < 0 || day > 6 {
			return WorkCalendar{}, fmt.Errorf("invalid work day %d", day)
		}
		days = append(days, time.Weekday(day))
	}
	return NewWorkCalendar(days, cfg.DayStart, cfg.DayEnd, cfg.Holidays, loc)
}

package models

import (
	"fmt"
	"time"
)

// ComputeNextRunAt returns the template's next occurrence strictly after the
// later of StartDate and now, evaluated in the template's timezone. A nil
// result with a nil error means the template has no further occurrences: its
// window has closed, or its schedule is owned by an external cron evaluator.
func (t *RecurringTemplate) ComputeNextRunAt(now time.Time) (*time.Time, error) {
	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", t.Timezone, err)
	}

	base := now
	if t.StartDate.After(base) {
		base = t.StartDate
	}
	base = base.In(loc)

	var next time.Time
	switch t.Frequency {
	case RecurringFrequencyDaily:
		next = base.AddDate(0, 0, 1)
	case RecurringFrequencyWeekly:
		// Never the same day: a base already on the target weekday advances
		// a full week.
		delta := (t.Weekday - int(base.Weekday()) + 7) % 7
		if delta == 0 {
			delta = 7
		}
		next = base.AddDate(0, 0, delta)
	case RecurringFrequencyMonthly:
		next = nextMonthlyOccurrence(base, t.DayOfMonth, loc)
	case RecurringFrequencyQuarterly:
		next = base.AddDate(0, 3, 0)
	case RecurringFrequencyYearly:
		next = base.AddDate(1, 0, 0)
	case RecurringFrequencyCustomCron:
		// Cron templates are driven by an external evaluator; this
		// calculator intentionally leaves them unscheduled.
		return nil, nil
	default:
		return nil, fmt.Errorf("invalid frequency %q", t.Frequency)
	}

	if t.EndDate != nil && !next.Before(*t.EndDate) {
		return nil, nil
	}
	return &next, nil
}

func nextMonthlyOccurrence(base time.Time, dayOfMonth int, loc *time.Location) time.Time {
	year, month := base.Year(), base.Month()
	candidate := time.Date(year, month, clampDayOfMonth(year, month, dayOfMonth),
		base.Hour(), base.Minute(), base.Second(), 0, loc)
	if candidate.After(base) {
		return candidate
	}
	// Normalizing via time.Date handles the December rollover.
	first := time.Date(year, month+1, 1, 0, 0, 0, 0, loc)
	year, month = first.Year(), first.Month()
	return time.Date(year, month, clampDayOfMonth(year, month, dayOfMonth),
		base.Hour(), base.Minute(), base.Second(), 0, loc)
}

// clampDayOfMonth pins day-of-month values the target month doesn't have
// (31 in April, 29-31 in February) to the month's last day.
func clampDayOfMonth(year int, month time.Month, day int) int {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	if day < 1 {
		return 1
	}
	return day
}

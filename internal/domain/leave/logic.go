package leave

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("invalid leave date range")

// InclusiveDays counts calendar days between start and end, both inclusive.
func InclusiveDays(start, end time.Time) (float64, error) {
	if end.Before(start) {
		return 0, ErrInvalidRange
	}
	return end.Sub(start).Hours()/24 + 1, nil
}

// RequestDays applies the optional half-day boundaries to the inclusive
// count. A single-day request cannot take a half off both ends.
func RequestDays(start, end time.Time, startHalf, endHalf bool) (float64, error) {
	days, err := InclusiveDays(start, end)
	if err != nil {
		return 0, err
	}
	if start.Equal(end) && startHalf && endHalf {
		return 0, ErrInvalidRange
	}
	if startHalf {
		days -= 0.5
	}
	if endHalf {
		days -= 0.5
	}
	if days <= 0 {
		return 0, ErrInvalidRange
	}
	return days, nil
}

// accrualPeriodStart returns the start of the current accrual period, or
// the zero time for an unknown period.
func accrualPeriodStart(now time.Time, period string) time.Time {
	switch period {
	case PeriodWeekly:
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		return time.Date(now.Year(), now.Month(), now.Day()-weekday+1, 0, 0, 0, 0, now.Location())
	case PeriodMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case PeriodYearly:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Time{}
	}
}

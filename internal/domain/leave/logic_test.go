package leave

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestInclusiveDays(t *testing.T) {
	days, err := InclusiveDays(date(2026, 1, 10), date(2026, 1, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 1 {
		t.Fatalf("same-day range = %v days, want 1", days)
	}

	days, err = InclusiveDays(date(2026, 1, 10), date(2026, 1, 14))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 5 {
		t.Fatalf("five-day range = %v days, want 5", days)
	}

	if _, err := InclusiveDays(date(2026, 1, 10), date(2026, 1, 9)); err == nil {
		t.Fatal("reversed range must error")
	}
}

func TestRequestDaysHalfDays(t *testing.T) {
	days, err := RequestDays(date(2026, 3, 2), date(2026, 3, 6), true, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 4 {
		t.Fatalf("5 days minus two halves = %v, want 4", days)
	}

	days, err = RequestDays(date(2026, 3, 2), date(2026, 3, 2), true, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 0.5 {
		t.Fatalf("half day = %v, want 0.5", days)
	}

	if _, err := RequestDays(date(2026, 3, 2), date(2026, 3, 2), true, true); err == nil {
		t.Fatal("single day with both halves must error")
	}
}

func TestAccrualPeriodStart(t *testing.T) {
	// Wednesday 2026-03-04: week starts Monday 2026-03-02.
	now := date(2026, 3, 4)
	if got := accrualPeriodStart(now, PeriodWeekly); !got.Equal(date(2026, 3, 2)) {
		t.Errorf("weekly period start = %v, want 2026-03-02", got)
	}
	if got := accrualPeriodStart(now, PeriodMonthly); !got.Equal(date(2026, 3, 1)) {
		t.Errorf("monthly period start = %v, want 2026-03-01", got)
	}
	if got := accrualPeriodStart(now, PeriodYearly); !got.Equal(date(2026, 1, 1)) {
		t.Errorf("yearly period start = %v, want 2026-01-01", got)
	}
	if got := accrualPeriodStart(now, "daily"); !got.IsZero() {
		t.Errorf("unknown period start = %v, want zero", got)
	}
}

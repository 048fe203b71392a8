package reminders

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testCycle() CycleInfo {
	return CycleInfo{
		ID:                   "cycle-1",
		TenantID:             "tenant-1",
		Name:                 "H1 Review",
		Type:                 "direct_score",
		StartDate:            day(2026, time.March, 10),
		EndDate:              day(2026, time.June, 10),
		SelfReviewDueDate:    day(2026, time.May, 20),
		ManagerReviewDueDate: day(2026, time.June, 1),
	}
}

func testRecipients() RecipientSet {
	return RecipientSet{
		Admins:    []Recipient{{Name: "Ada", Email: "ada@acme.test", Type: RecipientAdmin}},
		Employees: []Recipient{{Name: "Eve", Email: "eve@acme.test", Type: RecipientEmployee}},
		Managers:  []Recipient{{Name: "Mia", Email: "mia@acme.test", Type: RecipientManager}},
	}
}

func countByType(emails []ScheduledEmail) map[EmailType]int {
	out := make(map[EmailType]int)
	for _, e := range emails {
		out[e.EmailType]++
	}
	return out
}

func TestExpandRemindersStartTomorrow(t *testing.T) {
	cycle := testCycle()
	now := day(2026, time.March, 9).Add(8 * time.Hour)

	emails := ExpandReminders(cycle, testRecipients(), "Acme", now, 30, DefaultMaxRetries)
	byType := countByType(emails)

	if byType[EmailTypeStartAdmin] != 1 {
		t.Fatalf("want 1 admin day-before row, got %d", byType[EmailTypeStartAdmin])
	}
	if byType[EmailTypeStartAll] != 3 {
		t.Fatalf("want 3 day-of everyone rows, got %d", byType[EmailTypeStartAll])
	}

	for _, e := range emails {
		switch e.EmailType {
		case EmailTypeStartAdmin:
			want := day(2026, time.March, 9).Add(time.Hour)
			if !e.ScheduledFor.Equal(want) {
				t.Errorf("day-before row scheduled at %v, want %v", e.ScheduledFor, want)
			}
		case EmailTypeStartAll:
			want := day(2026, time.March, 10).Add(time.Hour)
			if !e.ScheduledFor.Equal(want) {
				t.Errorf("day-of row scheduled at %v, want %v", e.ScheduledFor, want)
			}
		}
	}
}

func TestExpandRemindersWindowFilter(t *testing.T) {
	cycle := testCycle()
	// Only the start milestone falls inside the next 30 days.
	now := day(2026, time.March, 1)

	emails := ExpandReminders(cycle, testRecipients(), "Acme", now, 30, DefaultMaxRetries)
	for _, e := range emails {
		if e.EmailData.Milestone != MilestoneStart {
			t.Fatalf("milestone %q is outside the window and must not expand", e.EmailData.Milestone)
		}
	}
	if len(emails) == 0 {
		t.Fatal("start milestone inside the window produced no rows")
	}
}

func TestExpandRemindersPastMilestoneSkipped(t *testing.T) {
	cycle := testCycle()
	now := day(2026, time.March, 11)

	emails := ExpandReminders(cycle, testRecipients(), "Acme", now, 30, DefaultMaxRetries)
	for _, e := range emails {
		if e.EmailData.Milestone == MilestoneStart {
			t.Fatalf("yesterday's start milestone must not expand, got %s", e.EmailType)
		}
	}
}

func TestExpandRemindersDueMilestonesBothDays(t *testing.T) {
	cycle := testCycle()
	now := day(2026, time.May, 15)

	emails := ExpandReminders(cycle, testRecipients(), "Acme", now, 30, DefaultMaxRetries)
	byType := countByType(emails)

	// Self-review due: admin + employee, day before and day of.
	if byType[EmailTypeSelfDueAdmin] != 2 {
		t.Errorf("want 2 self-due admin rows, got %d", byType[EmailTypeSelfDueAdmin])
	}
	if byType[EmailTypeSelfDueEmployee] != 2 {
		t.Errorf("want 2 self-due employee rows, got %d", byType[EmailTypeSelfDueEmployee])
	}
	// Manager-review due: admin + manager, day before and day of.
	if byType[EmailTypeManagerDueAdmin] != 2 {
		t.Errorf("want 2 manager-due admin rows, got %d", byType[EmailTypeManagerDueAdmin])
	}
	if byType[EmailTypeManagerDueMgr] != 2 {
		t.Errorf("want 2 manager-due manager rows, got %d", byType[EmailTypeManagerDueMgr])
	}
	// End milestone gets a day-of admin row only.
	if byType[EmailTypeEndAdmin] != 1 {
		t.Errorf("want 1 end admin row, got %d", byType[EmailTypeEndAdmin])
	}
}

func TestExpandRemindersEveryoneDedupes(t *testing.T) {
	cycle := testCycle()
	now := day(2026, time.March, 10)

	set := RecipientSet{
		Admins:    []Recipient{{Name: "Ada", Email: "Ada@acme.test", Type: RecipientAdmin}},
		Employees: []Recipient{{Name: "Ada", Email: "ada@acme.test", Type: RecipientEmployee}, {Name: "Eve", Email: "eve@acme.test", Type: RecipientEmployee}},
		Managers:  []Recipient{{Name: "Eve", Email: " eve@acme.test ", Type: RecipientManager}},
	}

	emails := ExpandReminders(cycle, set, "Acme", now, 30, DefaultMaxRetries)
	byType := countByType(emails)
	if byType[EmailTypeStartAll] != 2 {
		t.Fatalf("want 2 deduplicated day-of rows, got %d", byType[EmailTypeStartAll])
	}
}

func TestExpandRemindersSnapshot(t *testing.T) {
	cycle := testCycle()
	now := day(2026, time.March, 10)

	emails := ExpandReminders(cycle, testRecipients(), "Acme", now, 30, 5)
	if len(emails) == 0 {
		t.Fatal("expected rows")
	}
	for _, e := range emails {
		if e.Status != StatusPending {
			t.Errorf("new row status = %q, want pending", e.Status)
		}
		if e.MaxRetries != 5 {
			t.Errorf("max retries = %d, want 5", e.MaxRetries)
		}
		if e.EmailData.CycleName != "H1 Review" || e.EmailData.TenantName != "Acme" {
			t.Errorf("snapshot not populated: %+v", e.EmailData)
		}
		if err := e.EmailData.Validate(); err != nil {
			t.Errorf("snapshot invalid: %v", err)
		}
	}
}

func TestBackoffDelay(t *testing.T) {
	cases := []struct {
		retryCount int
		want       time.Duration
	}{
		{1, 2 * time.Hour},
		{2, 4 * time.Hour},
		{3, 8 * time.Hour},
	}
	for _, tc := range cases {
		if got := BackoffDelay(tc.retryCount); got != tc.want {
			t.Errorf("BackoffDelay(%d) = %v, want %v", tc.retryCount, got, tc.want)
		}
	}
}

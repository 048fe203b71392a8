package reminders

import "time"

// milestoneRule drives the fixed reminder table: which recipient buckets get
// a day-before row and which get a day-of row.
type milestoneRule struct {
	milestone Milestone
	date      func(CycleInfo) time.Time
	dayBefore []bucket
	dayOf     []bucket
}

type bucket struct {
	emailType EmailType
	pick      func(RecipientSet) []Recipient
}

func admins(set RecipientSet) []Recipient    { return set.Admins }
func employees(set RecipientSet) []Recipient { return set.Employees }
func managers(set RecipientSet) []Recipient  { return set.Managers }
func everyone(set RecipientSet) []Recipient  { return set.Everyone() }

var milestoneRules = []milestoneRule{
	{
		milestone: MilestoneStart,
		date:      func(c CycleInfo) time.Time { return c.StartDate },
		dayBefore: []bucket{{EmailTypeStartAdmin, admins}},
		dayOf:     []bucket{{EmailTypeStartAll, everyone}},
	},
	{
		milestone: MilestoneEnd,
		date:      func(c CycleInfo) time.Time { return c.EndDate },
		dayOf:     []bucket{{EmailTypeEndAdmin, admins}},
	},
	{
		milestone: MilestoneSelfReviewDue,
		date:      func(c CycleInfo) time.Time { return c.SelfReviewDueDate },
		dayBefore: []bucket{{EmailTypeSelfDueAdmin, admins}, {EmailTypeSelfDueEmployee, employees}},
		dayOf:     []bucket{{EmailTypeSelfDueAdmin, admins}, {EmailTypeSelfDueEmployee, employees}},
	},
	{
		milestone: MilestoneManagerReviewDue,
		date:      func(c CycleInfo) time.Time { return c.ManagerReviewDueDate },
		dayBefore: []bucket{{EmailTypeManagerDueAdmin, admins}, {EmailTypeManagerDueMgr, managers}},
		dayOf:     []bucket{{EmailTypeManagerDueAdmin, admins}, {EmailTypeManagerDueMgr, managers}},
	},
}

// ExpandReminders materializes the scheduled-email rows for every milestone
// of the cycle that falls within the next windowDays. Rows are scheduled at
// 01:00 on the day before and/or the day of the milestone per the rule
// table; the day-before rows for a milestone always precede its day-of rows
// in the returned slice.
func ExpandReminders(cycle CycleInfo, recipients RecipientSet, tenantName string, now time.Time, windowDays, maxRetries int) []ScheduledEmail {
	var out []ScheduledEmail
	for _, rule := range milestoneRules {
		date := rule.date(cycle)
		if !withinWindow(date, now, windowDays) {
			continue
		}

		for _, b := range rule.dayBefore {
			for _, rec := range b.pick(recipients) {
				out = append(out, buildEmail(cycle, tenantName, rule.milestone, date, b.emailType, rec, reminderTime(date.AddDate(0, 0, -1)), maxRetries))
			}
		}
		for _, b := range rule.dayOf {
			for _, rec := range b.pick(recipients) {
				out = append(out, buildEmail(cycle, tenantName, rule.milestone, date, b.emailType, rec, reminderTime(date), maxRetries))
			}
		}
	}
	return out
}

func buildEmail(cycle CycleInfo, tenantName string, milestone Milestone, date time.Time, emailType EmailType, rec Recipient, scheduledFor time.Time, maxRetries int) ScheduledEmail {
	return ScheduledEmail{
		TenantID:       cycle.TenantID,
		CycleID:        cycle.ID,
		EmailType:      emailType,
		RecipientEmail: rec.Email,
		RecipientType:  rec.Type,
		ScheduledFor:   scheduledFor,
		Status:         StatusPending,
		MaxRetries:     maxRetries,
		EmailData: EmailData{
			CycleID:        cycle.ID,
			CycleName:      cycle.Name,
			CycleType:      cycle.Type,
			TenantName:     tenantName,
			Milestone:      milestone,
			MilestoneDate:  date,
			RecipientName:  rec.Name,
			RecipientEmail: rec.Email,
			RecipientType:  rec.Type,
		},
	}
}

// withinWindow reports whether the milestone date falls between today and
// now+windowDays inclusive, comparing calendar days.
func withinWindow(date, now time.Time, windowDays int) bool {
	if date.IsZero() {
		return false
	}
	days := daysBetween(now, date)
	return days >= 0 && days <= windowDays
}

func daysBetween(from, to time.Time) int {
	fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	toDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(toDay.Sub(fromDay).Hours() / 24)
}

// reminderTime pins a reminder to 01:00 on the given calendar day.
func reminderTime(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 1, 0, 0, 0, date.Location())
}

package reminders

import "time"

// Status is the closed lifecycle of a scheduled email. Rows move
// pending→sent or pending→pending(retry)→failed and never reverse.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusSent, StatusFailed:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusSent || s == StatusFailed
}

type EmailType string

const (
	EmailTypeStartAdmin      EmailType = "appraisal_start_reminder_admin"
	EmailTypeStartAll        EmailType = "appraisal_start_reminder_all"
	EmailTypeEndAdmin        EmailType = "appraisal_end_reminder_admin"
	EmailTypeSelfDueAdmin    EmailType = "self_review_due_reminder_admin"
	EmailTypeSelfDueEmployee EmailType = "self_review_due_reminder_employee"
	EmailTypeManagerDueAdmin EmailType = "manager_review_due_reminder_admin"
	EmailTypeManagerDueMgr   EmailType = "manager_review_due_reminder_manager"
)

type RecipientType string

const (
	RecipientAdmin    RecipientType = "admin"
	RecipientEmployee RecipientType = "employee"
	RecipientManager  RecipientType = "manager"
)

type Milestone string

const (
	MilestoneStart            Milestone = "start"
	MilestoneEnd              Milestone = "end"
	MilestoneSelfReviewDue    Milestone = "self_review_due"
	MilestoneManagerReviewDue Milestone = "manager_review_due"
)

const DefaultMaxRetries = 3

// BackoffDelay is the retry schedule: 2^retryCount hours after the failure.
func BackoffDelay(retryCount int) time.Duration {
	return time.Duration(1<<uint(retryCount)) * time.Hour
}

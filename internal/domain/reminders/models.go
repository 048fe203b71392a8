package reminders

import (
	"errors"
	"strings"
	"time"
)

// EmailData is the denormalized snapshot embedded in each scheduled email.
// It is captured at schedule time; later edits to the cycle or recipient do
// not retroactively update it.
type EmailData struct {
	CycleID        string        `json:"cycleId"`
	CycleName      string        `json:"cycleName"`
	CycleType      string        `json:"cycleType"`
	TenantName     string        `json:"tenantName"`
	Milestone      Milestone     `json:"milestone"`
	MilestoneDate  time.Time     `json:"milestoneDate"`
	RecipientName  string        `json:"recipientName"`
	RecipientEmail string        `json:"recipientEmail"`
	RecipientType  RecipientType `json:"recipientType"`
}

func (d EmailData) Validate() error {
	if d.CycleID == "" {
		return errors.New("email data missing cycle id")
	}
	if strings.TrimSpace(d.RecipientEmail) == "" {
		return errors.New("email data missing recipient email")
	}
	if d.MilestoneDate.IsZero() {
		return errors.New("email data missing milestone date")
	}
	return nil
}

type ScheduledEmail struct {
	ID                string        `json:"id"`
	TenantID          string        `json:"tenantId"`
	CycleID           string        `json:"cycleId"`
	EmailType         EmailType     `json:"emailType"`
	RecipientEmail    string        `json:"recipientEmail"`
	RecipientType     RecipientType `json:"recipientType"`
	ScheduledFor      time.Time     `json:"scheduledFor"`
	Status            Status        `json:"status"`
	RetryCount        int           `json:"retryCount"`
	MaxRetries        int           `json:"maxRetries"`
	EmailData         EmailData     `json:"emailData"`
	ProviderMessageID string        `json:"providerMessageId,omitempty"`
	LastError         string        `json:"lastError,omitempty"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

// ReminderConfig arms one expansion pass for a cycle. Configs are one-shot:
// the scheduler marks them inactive after processing.
type ReminderConfig struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	CycleID   string    `json:"cycleId"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// CycleInfo is the slice of the appraisal cycle the scheduler needs.
type CycleInfo struct {
	ID                   string
	TenantID             string
	Name                 string
	Type                 string
	StartDate            time.Time
	EndDate              time.Time
	SelfReviewDueDate    time.Time
	ManagerReviewDueDate time.Time
	ContractID           string
}

type Recipient struct {
	Name  string
	Email string
	Type  RecipientType
}

// RecipientSet holds the resolved audience for one cycle, bucketed by role.
type RecipientSet struct {
	Admins    []Recipient
	Employees []Recipient
	Managers  []Recipient
}

// Everyone flattens the set, deduplicated by lowercased email. Used only for
// the start/day-of bucket.
func (r RecipientSet) Everyone() []Recipient {
	seen := make(map[string]bool)
	var out []Recipient
	for _, group := range [][]Recipient{r.Admins, r.Employees, r.Managers} {
		for _, rec := range group {
			key := strings.ToLower(strings.TrimSpace(rec.Email))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, rec)
		}
	}
	return out
}

type Stats struct {
	Processed int           `json:"processed"`
	Errors    int           `json:"errors"`
	Duration  time.Duration `json:"duration"`
}

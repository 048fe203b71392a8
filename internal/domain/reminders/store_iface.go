package reminders

import (
	"context"
	"time"
)

// StoreAPI is the persistence surface for reminder configs and the
// scheduled-email outbox.
type StoreAPI interface {
	// Configs.
	ActiveConfigs(ctx context.Context) ([]ReminderConfig, error)
	CreateConfig(ctx context.Context, tenantID, cycleID string) (*ReminderConfig, error)
	MarkConfigInactive(ctx context.Context, id string) error

	// Cycle and recipient resolution for expansion.
	CycleInfo(ctx context.Context, tenantID, cycleID string) (*CycleInfo, error)
	TenantName(ctx context.Context, tenantID string) (string, error)
	AdminRecipients(ctx context.Context, tenantID string) ([]Recipient, error)
	SignedContractRecipients(ctx context.Context, tenantID string) ([]Recipient, error)
	TeamManagerRecipients(ctx context.Context, tenantID string) ([]Recipient, error)
	ContractRecipient(ctx context.Context, tenantID, contractID string) (*Recipient, error)
	ManagersOfContract(ctx context.Context, tenantID, contractID string) ([]Recipient, error)

	// Outbox lifecycle.
	InsertScheduled(ctx context.Context, emails []ScheduledEmail) (int, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]ScheduledEmail, error)
	ClaimPending(ctx context.Context, id string, leaseUntil time.Time) (bool, error)
	MarkSent(ctx context.Context, id, providerMessageID string, sentAt time.Time) error
	Reschedule(ctx context.Context, id string, nextAttempt time.Time, lastError string) error
	MarkFailed(ctx context.Context, id, lastError string) error

	// Read side for the API.
	ListScheduled(ctx context.Context, tenantID, cycleID string, status Status) ([]ScheduledEmail, error)
}

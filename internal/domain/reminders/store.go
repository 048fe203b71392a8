package reminders

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ActiveConfigs(ctx context.Context) ([]ReminderConfig, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, tenant_id, cycle_id, active, created_at
    FROM reminder_configs
    WHERE active = true
    ORDER BY created_at
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReminderConfig
	for rows.Next() {
		var cfg ReminderConfig
		if err := rows.Scan(&cfg.ID, &cfg.TenantID, &cfg.CycleID, &cfg.Active, &cfg.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, rows.Err()
}

func (s *Store) CreateConfig(ctx context.Context, tenantID, cycleID string) (*ReminderConfig, error) {
	var cfg ReminderConfig
	err := s.DB.QueryRow(ctx, `
    INSERT INTO reminder_configs (tenant_id, cycle_id, active)
    VALUES ($1, $2, true)
    RETURNING id, tenant_id, cycle_id, active, created_at
  `, tenantID, cycleID).Scan(&cfg.ID, &cfg.TenantID, &cfg.CycleID, &cfg.Active, &cfg.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *Store) MarkConfigInactive(ctx context.Context, id string) error {
	_, err := s.DB.Exec(ctx, `UPDATE reminder_configs SET active = false WHERE id = $1`, id)
	return err
}

func (s *Store) CycleInfo(ctx context.Context, tenantID, cycleID string) (*CycleInfo, error) {
	var info CycleInfo
	err := s.DB.QueryRow(ctx, `
    SELECT id, tenant_id, name, type, start_date, end_date, self_review_due_date, manager_review_due_date, COALESCE(contract_id::text, '')
    FROM appraisal_cycles
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, cycleID).Scan(&info.ID, &info.TenantID, &info.Name, &info.Type, &info.StartDate, &info.EndDate, &info.SelfReviewDueDate, &info.ManagerReviewDueDate, &info.ContractID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &info, nil
}

func (s *Store) TenantName(ctx context.Context, tenantID string) (string, error) {
	var name string
	err := s.DB.QueryRow(ctx, `SELECT name FROM tenants WHERE id = $1`, tenantID).Scan(&name)
	return name, err
}

func (s *Store) AdminRecipients(ctx context.Context, tenantID string) ([]Recipient, error) {
	return s.queryRecipients(ctx, `
    SELECT COALESCE(u.name, ''), u.email
    FROM users u
    JOIN roles r ON r.id = u.role_id
    WHERE u.tenant_id = $1 AND u.status = 'active' AND r.name = 'admin'
    ORDER BY u.email
  `, RecipientAdmin, tenantID)
}

func (s *Store) SignedContractRecipients(ctx context.Context, tenantID string) ([]Recipient, error) {
	return s.queryRecipients(ctx, `
    SELECT e.first_name || ' ' || e.last_name, e.email
    FROM contracts c
    JOIN employees e ON e.id = c.employee_id
    WHERE c.tenant_id = $1 AND c.status = 'signed'
    ORDER BY e.email
  `, RecipientEmployee, tenantID)
}

func (s *Store) TeamManagerRecipients(ctx context.Context, tenantID string) ([]Recipient, error) {
	return s.queryRecipients(ctx, `
    SELECT DISTINCT e.first_name || ' ' || e.last_name, e.email
    FROM team_members tm
    JOIN contracts c ON c.id = tm.contract_id
    JOIN employees e ON e.id = c.employee_id
    WHERE c.tenant_id = $1 AND tm.is_manager = true AND c.status = 'signed'
    ORDER BY e.email
  `, RecipientManager, tenantID)
}

func (s *Store) ContractRecipient(ctx context.Context, tenantID, contractID string) (*Recipient, error) {
	var rec Recipient
	err := s.DB.QueryRow(ctx, `
    SELECT e.first_name || ' ' || e.last_name, e.email
    FROM contracts c
    JOIN employees e ON e.id = c.employee_id
    WHERE c.tenant_id = $1 AND c.id = $2
  `, tenantID, contractID).Scan(&rec.Name, &rec.Email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	rec.Type = RecipientEmployee
	return &rec, nil
}

// ManagersOfContract resolves the managers of every team the contract
// belongs to.
func (s *Store) ManagersOfContract(ctx context.Context, tenantID, contractID string) ([]Recipient, error) {
	return s.queryRecipients(ctx, `
    SELECT DISTINCT e.first_name || ' ' || e.last_name, e.email
    FROM team_members member
    JOIN team_members mgr ON mgr.team_id = member.team_id AND mgr.is_manager = true
    JOIN contracts c ON c.id = mgr.contract_id
    JOIN employees e ON e.id = c.employee_id
    WHERE c.tenant_id = $1 AND member.contract_id = $2
    ORDER BY e.email
  `, RecipientManager, tenantID, contractID)
}

func (s *Store) queryRecipients(ctx context.Context, query string, recipientType RecipientType, args ...any) ([]Recipient, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Recipient
	for rows.Next() {
		var rec Recipient
		if err := rows.Scan(&rec.Name, &rec.Email); err != nil {
			return nil, err
		}
		rec.Type = recipientType
		out = append(out, rec)
	}
	return out, rows.Err()
}

// InsertScheduled writes the expanded rows, skipping any that already exist
// for the same (cycle, recipient, type, time) tuple. Returns the number of
// rows actually inserted.
func (s *Store) InsertScheduled(ctx context.Context, emails []ScheduledEmail) (int, error) {
	inserted := 0
	for _, email := range emails {
		data, err := json.Marshal(email.EmailData)
		if err != nil {
			return inserted, err
		}
		tag, err := s.DB.Exec(ctx, `
      INSERT INTO scheduled_emails (tenant_id, cycle_id, email_type, recipient_email, recipient_type, scheduled_for, status, retry_count, max_retries, email_data_json)
      VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, $9)
      ON CONFLICT (cycle_id, recipient_email, email_type, scheduled_for) DO NOTHING
    `, email.TenantID, email.CycleID, email.EmailType, email.RecipientEmail, email.RecipientType, email.ScheduledFor, email.Status, email.MaxRetries, data)
		if err != nil {
			return inserted, err
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

func (s *Store) ListDue(ctx context.Context, now time.Time, limit int) ([]ScheduledEmail, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, tenant_id, cycle_id, email_type, recipient_email, recipient_type, scheduled_for, status, retry_count, max_retries, email_data_json, COALESCE(provider_message_id, ''), COALESCE(last_error, ''), created_at, updated_at
    FROM scheduled_emails
    WHERE status = 'pending' AND scheduled_for <= $1
      AND (lease_until IS NULL OR lease_until <= $1)
    ORDER BY scheduled_for
    LIMIT $2
  `, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScheduledEmail
	for rows.Next() {
		email, err := scanScheduledEmail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *email)
	}
	return out, rows.Err()
}

// ClaimPending leases a pending row to one dispatcher pass. A second pass
// over the same row sees the live lease and the conditional update misses,
// so the row is sent once. The lease lives in its own column so the natural
// dedup key (cycle, recipient, type, scheduled_for) stays stable.
func (s *Store) ClaimPending(ctx context.Context, id string, leaseUntil time.Time) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE scheduled_emails
    SET lease_until = $2, updated_at = now()
    WHERE id = $1 AND status = 'pending' AND scheduled_for <= now()
      AND (lease_until IS NULL OR lease_until <= now())
  `, id, leaseUntil)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) MarkSent(ctx context.Context, id, providerMessageID string, sentAt time.Time) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE scheduled_emails
    SET status = 'sent', provider_message_id = $2, sent_at = $3, last_error = NULL, updated_at = now()
    WHERE id = $1 AND status = 'pending'
  `, id, providerMessageID, sentAt)
	return err
}

func (s *Store) Reschedule(ctx context.Context, id string, nextAttempt time.Time, lastError string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE scheduled_emails
    SET retry_count = retry_count + 1, scheduled_for = $2, lease_until = NULL, last_error = $3, updated_at = now()
    WHERE id = $1 AND status = 'pending'
  `, id, nextAttempt, lastError)
	return err
}

func (s *Store) MarkFailed(ctx context.Context, id, lastError string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE scheduled_emails
    SET status = 'failed', retry_count = retry_count + 1, last_error = $2, updated_at = now()
    WHERE id = $1 AND status = 'pending'
  `, id, lastError)
	return err
}

func (s *Store) ListScheduled(ctx context.Context, tenantID, cycleID string, status Status) ([]ScheduledEmail, error) {
	query := `
    SELECT id, tenant_id, cycle_id, email_type, recipient_email, recipient_type, scheduled_for, status, retry_count, max_retries, email_data_json, COALESCE(provider_message_id, ''), COALESCE(last_error, ''), created_at, updated_at
    FROM scheduled_emails
    WHERE tenant_id = $1`
	args := []any{tenantID}
	if cycleID != "" {
		args = append(args, cycleID)
		query += ` AND cycle_id = $2`
	}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	query += ` ORDER BY scheduled_for`

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScheduledEmail
	for rows.Next() {
		email, err := scanScheduledEmail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *email)
	}
	return out, rows.Err()
}

func scanScheduledEmail(row pgx.Row) (*ScheduledEmail, error) {
	var email ScheduledEmail
	var data []byte
	if err := row.Scan(&email.ID, &email.TenantID, &email.CycleID, &email.EmailType, &email.RecipientEmail, &email.RecipientType, &email.ScheduledFor, &email.Status, &email.RetryCount, &email.MaxRetries, &data, &email.ProviderMessageID, &email.LastError, &email.CreatedAt, &email.UpdatedAt); err != nil {
		return nil, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &email.EmailData); err != nil {
			return nil, err
		}
	}
	return &email, nil
}

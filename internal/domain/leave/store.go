package leave

import (
	"context"
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

func (s *Store) ListTypes(ctx context.Context, tenantID string) ([]LeaveType, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, code, is_paid, created_at
    FROM leave_types
    WHERE tenant_id = $1
    ORDER BY name
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LeaveType
	for rows.Next() {
		var lt LeaveType
		if err := rows.Scan(&lt.ID, &lt.Name, &lt.Code, &lt.IsPaid, &lt.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, lt)
	}
	return out, rows.Err()
}

func (s *Store) CreateType(ctx context.Context, tenantID string, payload LeaveType) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO leave_types (tenant_id, name, code, is_paid)
    VALUES ($1, $2, $3, $4)
    RETURNING id
  `, tenantID, payload.Name, payload.Code, payload.IsPaid).Scan(&id)
	return id, err
}

func (s *Store) ListPolicies(ctx context.Context, tenantID string) ([]Policy, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, leave_type_id, accrual_rate, accrual_period, entitlement, carry_over_limit, allow_negative
    FROM leave_policies
    WHERE tenant_id = $1
    ORDER BY created_at
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Policy
	for rows.Next() {
		var p Policy
		if err := rows.Scan(&p.ID, &p.LeaveTypeID, &p.AccrualRate, &p.AccrualPeriod, &p.Entitlement, &p.CarryOver, &p.AllowNegative); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) CreatePolicy(ctx context.Context, tenantID string, payload Policy) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO leave_policies (tenant_id, leave_type_id, accrual_rate, accrual_period, entitlement, carry_over_limit, allow_negative)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    RETURNING id
  `, tenantID, payload.LeaveTypeID, payload.AccrualRate, payload.AccrualPeriod, payload.Entitlement, payload.CarryOver, payload.AllowNegative).Scan(&id)
	return id, err
}

func (s *Store) PolicyForType(ctx context.Context, tenantID, leaveTypeID string) (*Policy, error) {
	var p Policy
	err := s.DB.QueryRow(ctx, `
    SELECT id, leave_type_id, accrual_rate, accrual_period, entitlement, carry_over_limit, allow_negative
    FROM leave_policies
    WHERE tenant_id = $1 AND leave_type_id = $2
  `, tenantID, leaveTypeID).Scan(&p.ID, &p.LeaveTypeID, &p.AccrualRate, &p.AccrualPeriod, &p.Entitlement, &p.CarryOver, &p.AllowNegative)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListBalances(ctx context.Context, tenantID, employeeID string) ([]Balance, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT b.leave_type_id, lt.name, b.available, b.pending, b.used
    FROM leave_balances b
    JOIN leave_types lt ON lt.id = b.leave_type_id
    WHERE b.tenant_id = $1 AND b.employee_id = $2
    ORDER BY lt.name
  `, tenantID, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Balance
	for rows.Next() {
		var b Balance
		if err := rows.Scan(&b.LeaveTypeID, &b.LeaveType, &b.Available, &b.Pending, &b.Used); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) Available(ctx context.Context, tenantID, employeeID, leaveTypeID string) (float64, error) {
	var available float64
	err := s.DB.QueryRow(ctx, `
    SELECT available FROM leave_balances
    WHERE tenant_id = $1 AND employee_id = $2 AND leave_type_id = $3
  `, tenantID, employeeID, leaveTypeID).Scan(&available)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	return available, err
}

func (s *Store) CreateRequest(ctx context.Context, tenantID string, req Request) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO leave_requests (tenant_id, employee_id, leave_type_id, start_date, end_date, start_half, end_half, days, reason, status)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    RETURNING id
  `, tenantID, req.EmployeeID, req.LeaveTypeID, req.StartDate, req.EndDate, req.StartHalf, req.EndHalf, req.Days, req.Reason, req.Status).Scan(&id)
	return id, err
}

func (s *Store) GetRequest(ctx context.Context, tenantID, requestID string) (*Request, error) {
	var req Request
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_id, leave_type_id, start_date, end_date, start_half, end_half, days, reason, status, created_at
    FROM leave_requests
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, requestID).Scan(&req.ID, &req.EmployeeID, &req.LeaveTypeID, &req.StartDate, &req.EndDate, &req.StartHalf, &req.EndHalf, &req.Days, &req.Reason, &req.Status, &req.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (s *Store) ListRequests(ctx context.Context, tenantID, employeeID string, limit, offset int) ([]Request, error) {
	query := `
    SELECT id, employee_id, leave_type_id, start_date, end_date, start_half, end_half, days, reason, status, created_at
    FROM leave_requests
    WHERE tenant_id = $1`
	args := []any{tenantID}
	if employeeID != "" {
		args = append(args, employeeID)
		query += ` AND employee_id = $2`
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		var req Request
		if err := rows.Scan(&req.ID, &req.EmployeeID, &req.LeaveTypeID, &req.StartDate, &req.EndDate, &req.StartHalf, &req.EndHalf, &req.Days, &req.Reason, &req.Status, &req.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// SetRequestStatus moves a request from one status to another. Returns
// false when the request was not in the expected status, so concurrent
// decisions cannot double-apply.
func (s *Store) SetRequestStatus(ctx context.Context, tenantID, requestID string, from, to RequestStatus, decidedBy string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE leave_requests
    SET status = $4, decided_by = NULLIF($5, ''), decided_at = now()
    WHERE tenant_id = $1 AND id = $2 AND status = $3
  `, tenantID, requestID, from, to, decidedBy)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) AddPending(ctx context.Context, tenantID, employeeID, leaveTypeID string, days float64) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO leave_balances (tenant_id, employee_id, leave_type_id, available, pending, used)
    VALUES ($1, $2, $3, 0, $4, 0)
    ON CONFLICT (tenant_id, employee_id, leave_type_id) DO UPDATE
      SET pending = leave_balances.pending + EXCLUDED.pending, updated_at = now()
  `, tenantID, employeeID, leaveTypeID, days)
	return err
}

func (s *Store) MovePendingToUsed(ctx context.Context, tenantID, employeeID, leaveTypeID string, days float64) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE leave_balances
    SET pending = pending - $4, used = used + $4, available = available - $4, updated_at = now()
    WHERE tenant_id = $1 AND employee_id = $2 AND leave_type_id = $3
  `, tenantID, employeeID, leaveTypeID, days)
	return err
}

func (s *Store) ReleasePending(ctx context.Context, tenantID, employeeID, leaveTypeID string, days float64) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE leave_balances
    SET pending = pending - $4, updated_at = now()
    WHERE tenant_id = $1 AND employee_id = $2 AND leave_type_id = $3
  `, tenantID, employeeID, leaveTypeID, days)
	return err
}

func (s *Store) RefundUsed(ctx context.Context, tenantID, employeeID, leaveTypeID string, days float64) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE leave_balances
    SET used = used - $4, available = available + $4, updated_at = now()
    WHERE tenant_id = $1 AND employee_id = $2 AND leave_type_id = $3
  `, tenantID, employeeID, leaveTypeID, days)
	return err
}

func (s *Store) EmployeeUserID(ctx context.Context, tenantID, employeeID string) (string, error) {
	var userID string
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(user_id::text, '') FROM employees WHERE tenant_id = $1 AND id = $2
  `, tenantID, employeeID).Scan(&userID)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	return userID, err
}

func (s *Store) LastAccruedOn(ctx context.Context, tenantID, policyID string) (time.Time, error) {
	var last *time.Time
	err := s.DB.QueryRow(ctx, `
    SELECT MAX(accrued_on) FROM leave_accrual_runs
    WHERE tenant_id = $1 AND policy_id = $2
  `, tenantID, policyID).Scan(&last)
	if err == pgx.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil || last == nil {
		return time.Time{}, err
	}
	return *last, nil
}

// AccrueForPolicy credits every active employee's balance for one accrual
// period in a single transaction and records the run.
func (s *Store) AccrueForPolicy(ctx context.Context, tenantID string, policy Policy, periodStart time.Time) (int, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cap := policy.Entitlement + policy.CarryOver
	tag, err := tx.Exec(ctx, `
    INSERT INTO leave_balances (tenant_id, employee_id, leave_type_id, available, pending, used)
    SELECT e.tenant_id, e.id, $2, LEAST($3::numeric, $4::numeric), 0, 0
    FROM employees e
    WHERE e.tenant_id = $1 AND e.status = 'active'
    ON CONFLICT (tenant_id, employee_id, leave_type_id) DO UPDATE
      SET available = LEAST(leave_balances.available + $3, $4), updated_at = now()
  `, tenantID, policy.LeaveTypeID, policy.AccrualRate, cap)
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO leave_accrual_runs (tenant_id, policy_id, accrued_on, employees_accrued)
    VALUES ($1, $2, $3, $4)
  `, tenantID, policy.ID, periodStart, tag.RowsAffected()); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

package core

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrInvalidStatus = errors.New("invalid status transition")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListEmployees(ctx context.Context, tenantID string, limit, offset int) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, COALESCE(user_id::text, ''), first_name, last_name, email, COALESCE(phone, ''), COALESCE(position, ''), start_date, status, created_at, updated_at
    FROM employees
    WHERE tenant_id = $1
    ORDER BY last_name, first_name
    LIMIT $2 OFFSET $3
  `, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		var emp Employee
		if err := rows.Scan(&emp.ID, &emp.UserID, &emp.FirstName, &emp.LastName, &emp.Email, &emp.Phone, &emp.Position, &emp.StartDate, &emp.Status, &emp.CreatedAt, &emp.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) CountEmployees(ctx context.Context, tenantID string) (int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE tenant_id = $1", tenantID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) GetEmployee(ctx context.Context, tenantID, employeeID string) (*Employee, error) {
	var emp Employee
	err := s.DB.QueryRow(ctx, `
    SELECT id, COALESCE(user_id::text, ''), first_name, last_name, email, COALESCE(phone, ''), COALESCE(position, ''), start_date, status, created_at, updated_at
    FROM employees
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, employeeID).Scan(&emp.ID, &emp.UserID, &emp.FirstName, &emp.LastName, &emp.Email, &emp.Phone, &emp.Position, &emp.StartDate, &emp.Status, &emp.CreatedAt, &emp.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (s *Store) CreateEmployee(ctx context.Context, tenantID string, emp Employee) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employees (tenant_id, user_id, first_name, last_name, email, phone, position, start_date, status)
    VALUES ($1, NULLIF($2, '')::uuid, $3, $4, lower($5), $6, $7, $8, $9)
    RETURNING id
  `, tenantID, emp.UserID, emp.FirstName, emp.LastName, emp.Email, emp.Phone, emp.Position, emp.StartDate, emp.Status).Scan(&id)
	return id, err
}

func (s *Store) UpdateEmployee(ctx context.Context, tenantID, employeeID string, emp Employee) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET first_name = $1, last_name = $2, email = lower($3), phone = $4, position = $5, start_date = $6, status = $7, updated_at = now()
    WHERE tenant_id = $8 AND id = $9
  `, emp.FirstName, emp.LastName, emp.Email, emp.Phone, emp.Position, emp.StartDate, emp.Status, tenantID, employeeID)
	return err
}

func (s *Store) EmployeeIDByUserID(ctx context.Context, tenantID, userID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, "SELECT id FROM employees WHERE tenant_id = $1 AND user_id = $2", tenantID, userID).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) ListContracts(ctx context.Context, tenantID, employeeID string) ([]Contract, error) {
	query := `
    SELECT id, employee_id, job_title, employment_type, start_date, end_date, status, signed_at, created_at
    FROM contracts
    WHERE tenant_id = $1
  `
	args := []any{tenantID}
	if employeeID != "" {
		query += " AND employee_id = $2"
		args = append(args, employeeID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Contract
	for rows.Next() {
		var contract Contract
		if err := rows.Scan(&contract.ID, &contract.EmployeeID, &contract.JobTitle, &contract.EmploymentType, &contract.StartDate, &contract.EndDate, &contract.Status, &contract.SignedAt, &contract.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, contract)
	}
	return out, rows.Err()
}

func (s *Store) GetContract(ctx context.Context, tenantID, contractID string) (*Contract, error) {
	var contract Contract
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_id, job_title, employment_type, start_date, end_date, status, signed_at, created_at
    FROM contracts
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, contractID).Scan(&contract.ID, &contract.EmployeeID, &contract.JobTitle, &contract.EmploymentType, &contract.StartDate, &contract.EndDate, &contract.Status, &contract.SignedAt, &contract.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (s *Store) CreateContract(ctx context.Context, tenantID string, contract Contract) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO contracts (tenant_id, employee_id, job_title, employment_type, start_date, end_date, status)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    RETURNING id
  `, tenantID, contract.EmployeeID, contract.JobTitle, contract.EmploymentType, contract.StartDate, contract.EndDate, contract.Status).Scan(&id)
	return id, err
}

func (s *Store) SignContract(ctx context.Context, tenantID, contractID string, signedAt time.Time) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE contracts
    SET status = 'signed', signed_at = $1
    WHERE tenant_id = $2 AND id = $3 AND status = 'draft'
  `, signedAt, tenantID, contractID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidStatus
	}
	return nil
}

func (s *Store) TerminateContract(ctx context.Context, tenantID, contractID string, endDate time.Time) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE contracts
    SET status = 'terminated', end_date = $1
    WHERE tenant_id = $2 AND id = $3 AND status = 'signed'
  `, endDate, tenantID, contractID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidStatus
	}
	return nil
}

func (s *Store) ContractIDByUserID(ctx context.Context, tenantID, userID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    SELECT c.id
    FROM contracts c
    JOIN employees e ON c.employee_id = e.id
    WHERE c.tenant_id = $1 AND e.user_id = $2 AND c.status = 'signed'
    ORDER BY c.created_at DESC
    LIMIT 1
  `, tenantID, userID).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) ListTeams(ctx context.Context, tenantID string) ([]Team, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, created_at
    FROM teams
    WHERE tenant_id = $1
    ORDER BY name
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Team
	for rows.Next() {
		var team Team
		if err := rows.Scan(&team.ID, &team.Name, &team.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, team)
	}
	return out, rows.Err()
}

func (s *Store) CreateTeam(ctx context.Context, tenantID, name string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, "INSERT INTO teams (tenant_id, name) VALUES ($1, $2) RETURNING id", tenantID, name).Scan(&id)
	return id, err
}

func (s *Store) ListTeamMembers(ctx context.Context, tenantID, teamID string) ([]TeamMember, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT tm.team_id, tm.contract_id, tm.is_manager
    FROM team_members tm
    JOIN teams t ON tm.team_id = t.id
    WHERE t.tenant_id = $1 AND tm.team_id = $2
  `, tenantID, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TeamMember
	for rows.Next() {
		var member TeamMember
		if err := rows.Scan(&member.TeamID, &member.ContractID, &member.IsManager); err != nil {
			return nil, err
		}
		out = append(out, member)
	}
	return out, rows.Err()
}

func (s *Store) UpsertTeamMember(ctx context.Context, teamID, contractID string, isManager bool) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO team_members (team_id, contract_id, is_manager)
    VALUES ($1, $2, $3)
    ON CONFLICT (team_id, contract_id) DO UPDATE SET is_manager = EXCLUDED.is_manager
  `, teamID, contractID, isManager)
	return err
}

func (s *Store) RemoveTeamMember(ctx context.Context, teamID, contractID string) error {
	_, err := s.DB.Exec(ctx, "DELETE FROM team_members WHERE team_id = $1 AND contract_id = $2", teamID, contractID)
	return err
}

// IsManagerOfContract reports whether managerContractID manages contractID
// through shared team membership.
func (s *Store) IsManagerOfContract(ctx context.Context, tenantID, managerContractID, contractID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM team_members mgr
    JOIN team_members sub ON mgr.team_id = sub.team_id
    JOIN teams t ON t.id = mgr.team_id
    WHERE t.tenant_id = $1 AND mgr.contract_id = $2 AND mgr.is_manager AND sub.contract_id = $3
  `, tenantID, managerContractID, contractID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) TenantNameBySubdomain(ctx context.Context, subdomain string) (string, error) {
	var name string
	err := s.DB.QueryRow(ctx, "SELECT name FROM tenants WHERE subdomain = $1", subdomain).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return name, nil
}

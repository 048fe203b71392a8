package jobapps

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StoreAPI interface {
	ListPostings(ctx context.Context, tenantID string, openOnly bool) ([]Posting, error)
	CreatePosting(ctx context.Context, tenantID string, posting Posting) (string, error)
	SetPostingOpen(ctx context.Context, tenantID, postingID string, open bool) error

	ListApplications(ctx context.Context, tenantID, postingID string) ([]Application, error)
	GetApplication(ctx context.Context, tenantID, applicationID string) (*Application, error)
	CreateApplication(ctx context.Context, tenantID string, app Application) (string, error)
	SetStage(ctx context.Context, tenantID, applicationID string, from, to Stage, notes string) (bool, error)
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListPostings(ctx context.Context, tenantID string, openOnly bool) ([]Posting, error) {
	query := `
    SELECT id, title, description, location, open, created_at
    FROM job_postings
    WHERE tenant_id = $1`
	if openOnly {
		query += ` AND open = true`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.DB.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Posting
	for rows.Next() {
		var p Posting
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Location, &p.Open, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) CreatePosting(ctx context.Context, tenantID string, posting Posting) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO job_postings (tenant_id, title, description, location, open)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING id
  `, tenantID, posting.Title, posting.Description, posting.Location, posting.Open).Scan(&id)
	return id, err
}

func (s *Store) SetPostingOpen(ctx context.Context, tenantID, postingID string, open bool) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE job_postings SET open = $3, updated_at = now()
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, postingID, open)
	return err
}

func (s *Store) ListApplications(ctx context.Context, tenantID, postingID string) ([]Application, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, posting_id, candidate_name, candidate_email, stage, COALESCE(notes, ''), created_at, updated_at
    FROM job_applications
    WHERE tenant_id = $1 AND posting_id = $2
    ORDER BY created_at
  `, tenantID, postingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Application
	for rows.Next() {
		var app Application
		if err := rows.Scan(&app.ID, &app.PostingID, &app.CandidateName, &app.CandidateEmail, &app.Stage, &app.Notes, &app.CreatedAt, &app.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

func (s *Store) GetApplication(ctx context.Context, tenantID, applicationID string) (*Application, error) {
	var app Application
	err := s.DB.QueryRow(ctx, `
    SELECT id, posting_id, candidate_name, candidate_email, stage, COALESCE(notes, ''), created_at, updated_at
    FROM job_applications
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, applicationID).Scan(&app.ID, &app.PostingID, &app.CandidateName, &app.CandidateEmail, &app.Stage, &app.Notes, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &app, nil
}

func (s *Store) CreateApplication(ctx context.Context, tenantID string, app Application) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO job_applications (tenant_id, posting_id, candidate_name, candidate_email, stage, notes)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING id
  `, tenantID, app.PostingID, app.CandidateName, app.CandidateEmail, app.Stage, app.Notes).Scan(&id)
	return id, err
}

// SetStage applies a stage transition conditionally on the current stage,
// so two racing decisions cannot both win.
func (s *Store) SetStage(ctx context.Context, tenantID, applicationID string, from, to Stage, notes string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE job_applications
    SET stage = $4, notes = CASE WHEN $5 = '' THEN notes ELSE $5 END, updated_at = now()
    WHERE tenant_id = $1 AND id = $2 AND stage = $3
  `, tenantID, applicationID, from, to, notes)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

package onboarding

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ChecklistTemplate struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Items     []string  `json:"items"`
	CreatedAt time.Time `json:"createdAt"`
}

type Task struct {
	ID          string     `json:"id"`
	ContractID  string     `json:"contractId"`
	Title       string     `json:"title"`
	Position    int        `json:"position"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type Progress struct {
	ContractID string `json:"contractId"`
	Total      int    `json:"total"`
	Completed  int    `json:"completed"`
}

var ErrTemplateNotFound = errors.New("checklist template not found")

type StoreAPI interface {
	ListTemplates(ctx context.Context, tenantID string) ([]ChecklistTemplate, error)
	CreateTemplate(ctx context.Context, tenantID, name string, items []string) (string, error)
	TemplateItems(ctx context.Context, tenantID, templateID string) ([]string, error)
	InsertTasks(ctx context.Context, tenantID, contractID string, titles []string) error
	ListTasks(ctx context.Context, tenantID, contractID string) ([]Task, error)
	CompleteTask(ctx context.Context, tenantID, taskID string) (bool, error)
	TaskProgress(ctx context.Context, tenantID, contractID string) (Progress, error)
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListTemplates(ctx context.Context, tenantID string) ([]ChecklistTemplate, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, items, created_at
    FROM onboarding_templates
    WHERE tenant_id = $1
    ORDER BY name
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChecklistTemplate
	for rows.Next() {
		var tpl ChecklistTemplate
		if err := rows.Scan(&tpl.ID, &tpl.Name, &tpl.Items, &tpl.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, tpl)
	}
	return out, rows.Err()
}

func (s *Store) CreateTemplate(ctx context.Context, tenantID, name string, items []string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO onboarding_templates (tenant_id, name, items)
    VALUES ($1, $2, $3)
    RETURNING id
  `, tenantID, name, items).Scan(&id)
	return id, err
}

func (s *Store) TemplateItems(ctx context.Context, tenantID, templateID string) ([]string, error) {
	var items []string
	err := s.DB.QueryRow(ctx, `
    SELECT items FROM onboarding_templates
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, templateID).Scan(&items)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return items, err
}

func (s *Store) InsertTasks(ctx context.Context, tenantID, contractID string, titles []string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i, title := range titles {
		if _, err := tx.Exec(ctx, `
      INSERT INTO onboarding_tasks (tenant_id, contract_id, title, position)
      VALUES ($1, $2, $3, $4)
    `, tenantID, contractID, title, i); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) ListTasks(ctx context.Context, tenantID, contractID string) ([]Task, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, contract_id, title, position, completed_at
    FROM onboarding_tasks
    WHERE tenant_id = $1 AND contract_id = $2
    ORDER BY position
  `, tenantID, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		var task Task
		if err := rows.Scan(&task.ID, &task.ContractID, &task.Title, &task.Position, &task.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

func (s *Store) CompleteTask(ctx context.Context, tenantID, taskID string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE onboarding_tasks SET completed_at = now()
    WHERE tenant_id = $1 AND id = $2 AND completed_at IS NULL
  `, tenantID, taskID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) TaskProgress(ctx context.Context, tenantID, contractID string) (Progress, error) {
	progress := Progress{ContractID: contractID}
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1), COUNT(completed_at)
    FROM onboarding_tasks
    WHERE tenant_id = $1 AND contract_id = $2
  `, tenantID, contractID).Scan(&progress.Total, &progress.Completed)
	return progress, err
}

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) Templates(ctx context.Context, tenantID string) ([]ChecklistTemplate, error) {
	return s.store.ListTemplates(ctx, tenantID)
}

func (s *Service) CreateTemplate(ctx context.Context, tenantID, name string, items []string) (string, error) {
	if strings.TrimSpace(name) == "" || len(items) == 0 {
		return "", errors.New("checklist needs a name and at least one item")
	}
	return s.store.CreateTemplate(ctx, tenantID, name, items)
}

// Assign materializes the template's items as task rows for the contract.
func (s *Service) Assign(ctx context.Context, tenantID, templateID, contractID string) error {
	items, err := s.store.TemplateItems(ctx, tenantID, templateID)
	if err != nil {
		return err
	}
	if items == nil {
		return ErrTemplateNotFound
	}
	return s.store.InsertTasks(ctx, tenantID, contractID, items)
}

func (s *Service) Tasks(ctx context.Context, tenantID, contractID string) ([]Task, error) {
	return s.store.ListTasks(ctx, tenantID, contractID)
}

func (s *Service) Complete(ctx context.Context, tenantID, taskID string) error {
	ok, err := s.store.CompleteTask(ctx, tenantID, taskID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("task missing or already completed")
	}
	return nil
}

func (s *Service) Progress(ctx context.Context, tenantID, contractID string) (Progress, error) {
	return s.store.TaskProgress(ctx, tenantID, contractID)
}

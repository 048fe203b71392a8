package appraisal

import (
	"context"
	"encoding/json"
	"errors"
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

func (s *Store) ListCycles(ctx context.Context, tenantID string) ([]Cycle, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, type, template_id, start_date, end_date, self_review_due_date, manager_review_due_date, COALESCE(contract_id::text, ''), created_at
    FROM appraisal_cycles
    WHERE tenant_id = $1
    ORDER BY start_date DESC
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Cycle
	for rows.Next() {
		var cycle Cycle
		if err := rows.Scan(&cycle.ID, &cycle.Name, &cycle.Type, &cycle.TemplateID, &cycle.StartDate, &cycle.EndDate, &cycle.SelfReviewDueDate, &cycle.ManagerReviewDueDate, &cycle.ContractID, &cycle.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, cycle)
	}
	return out, rows.Err()
}

func (s *Store) GetCycle(ctx context.Context, tenantID, cycleID string) (*Cycle, error) {
	var cycle Cycle
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, type, template_id, start_date, end_date, self_review_due_date, manager_review_due_date, COALESCE(contract_id::text, ''), created_at
    FROM appraisal_cycles
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, cycleID).Scan(&cycle.ID, &cycle.Name, &cycle.Type, &cycle.TemplateID, &cycle.StartDate, &cycle.EndDate, &cycle.SelfReviewDueDate, &cycle.ManagerReviewDueDate, &cycle.ContractID, &cycle.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cycle, nil
}

func (s *Store) CreateCycle(ctx context.Context, tenantID string, cycle Cycle) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO appraisal_cycles (tenant_id, name, type, template_id, start_date, end_date, self_review_due_date, manager_review_due_date, contract_id)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, '')::uuid)
    RETURNING id
  `, tenantID, cycle.Name, cycle.Type, cycle.TemplateID, cycle.StartDate, cycle.EndDate, cycle.SelfReviewDueDate, cycle.ManagerReviewDueDate, cycle.ContractID).Scan(&id)
	return id, err
}

func (s *Store) UpdateCycleDates(ctx context.Context, tenantID, cycleID string, start, end, selfDue, managerDue time.Time) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE appraisal_cycles
    SET start_date = $1, end_date = $2, self_review_due_date = $3, manager_review_due_date = $4
    WHERE tenant_id = $5 AND id = $6
  `, start, end, selfDue, managerDue, tenantID, cycleID)
	return err
}

func (s *Store) ListTemplates(ctx context.Context, tenantID string) ([]Template, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, created_at
    FROM appraisal_templates
    WHERE tenant_id = $1
    ORDER BY created_at DESC
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Template
	for rows.Next() {
		var tpl Template
		if err := rows.Scan(&tpl.ID, &tpl.Name, &tpl.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, tpl)
	}
	return out, rows.Err()
}

func (s *Store) CreateTemplate(ctx context.Context, tenantID, name string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, "INSERT INTO appraisal_templates (tenant_id, name) VALUES ($1, $2) RETURNING id", tenantID, name).Scan(&id)
	return id, err
}

func (s *Store) ListQuestions(ctx context.Context, tenantID, templateID string) ([]TemplateQuestion, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT q.id, q.template_id, q."group", q.type, q.prompt, q.required, COALESCE(q.options_json, '[]'), COALESCE(q.scale_labels_json, '[]'), q.position
    FROM template_questions q
    JOIN appraisal_templates t ON q.template_id = t.id
    WHERE t.tenant_id = $1 AND q.template_id = $2
    ORDER BY q.position, q.id
  `, tenantID, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TemplateQuestion
	for rows.Next() {
		var question TemplateQuestion
		var optionsJSON, labelsJSON []byte
		if err := rows.Scan(&question.ID, &question.TemplateID, &question.Group, &question.Type, &question.Prompt, &question.Required, &optionsJSON, &labelsJSON, &question.Position); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(optionsJSON, &question.Options); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(labelsJSON, &question.ScaleLabels); err != nil {
			return nil, err
		}
		out = append(out, question)
	}
	return out, rows.Err()
}

func (s *Store) CreateQuestion(ctx context.Context, tenantID string, question TemplateQuestion) (string, error) {
	optionsJSON, err := json.Marshal(question.Options)
	if err != nil {
		return "", err
	}
	labelsJSON, err := json.Marshal(question.ScaleLabels)
	if err != nil {
		return "", err
	}

	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO template_questions (template_id, "group", type, prompt, required, options_json, scale_labels_json, position)
    SELECT t.id, $3, $4, $5, $6, $7, $8, $9
    FROM appraisal_templates t
    WHERE t.tenant_id = $1 AND t.id = $2
    RETURNING id
  `, tenantID, question.TemplateID, question.Group, question.Type, question.Prompt, question.Required, optionsJSON, labelsJSON, question.Position).Scan(&id)
	return id, err
}

func (s *Store) UpdateQuestion(ctx context.Context, tenantID string, question TemplateQuestion) error {
	optionsJSON, err := json.Marshal(question.Options)
	if err != nil {
		return err
	}
	labelsJSON, err := json.Marshal(question.ScaleLabels)
	if err != nil {
		return err
	}

	_, err = s.DB.Exec(ctx, `
    UPDATE template_questions q
    SET "group" = $1, type = $2, prompt = $3, required = $4, options_json = $5, scale_labels_json = $6, position = $7
    FROM appraisal_templates t
    WHERE q.template_id = t.id AND t.tenant_id = $8 AND q.id = $9
  `, question.Group, question.Type, question.Prompt, question.Required, optionsJSON, labelsJSON, question.Position, tenantID, question.ID)
	return err
}

// TemplateReferenced reports whether any appraisal answer already belongs to
// a cycle using the template; referenced templates are frozen.
func (s *Store) TemplateReferenced(ctx context.Context, tenantID, templateID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM appraisal_answers a
    JOIN appraisal_cycles c ON a.cycle_id = c.id
    WHERE c.tenant_id = $1 AND c.template_id = $2
  `, tenantID, templateID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) GetAnswer(ctx context.Context, tenantID, cycleID, contractID string) (*Answer, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT a.id, a.contract_id, a.cycle_id,
           COALESCE(a.self_answers_json, '{}'), COALESCE(a.manager_answers_json, '{}'),
           COALESCE(a.org_note, ''), a.direct_score, a.manager_direct_score, a.org_score,
           COALESCE(a.goal_scores_json, '[]'),
           a.employee_submission_date, a.manager_submission_date, a.org_submission_date, a.updated_at
    FROM appraisal_answers a
    JOIN appraisal_cycles c ON a.cycle_id = c.id
    WHERE c.tenant_id = $1 AND a.cycle_id = $2 AND a.contract_id = $3
  `, tenantID, cycleID, contractID)

	answer, err := scanAnswer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return answer, nil
}

func (s *Store) ListAnswers(ctx context.Context, tenantID, cycleID string) ([]Answer, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT a.id, a.contract_id, a.cycle_id,
           COALESCE(a.self_answers_json, '{}'), COALESCE(a.manager_answers_json, '{}'),
           COALESCE(a.org_note, ''), a.direct_score, a.manager_direct_score, a.org_score,
           COALESCE(a.goal_scores_json, '[]'),
           a.employee_submission_date, a.manager_submission_date, a.org_submission_date, a.updated_at
    FROM appraisal_answers a
    JOIN appraisal_cycles c ON a.cycle_id = c.id
    WHERE c.tenant_id = $1 AND a.cycle_id = $2
  `, tenantID, cycleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Answer
	for rows.Next() {
		answer, err := scanAnswer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *answer)
	}
	return out, rows.Err()
}

func scanAnswer(row pgx.Row) (*Answer, error) {
	var answer Answer
	var selfJSON, managerJSON, goalsJSON []byte
	if err := row.Scan(&answer.ID, &answer.ContractID, &answer.CycleID, &selfJSON, &managerJSON, &answer.OrgNote, &answer.DirectScore, &answer.ManagerDirectScore, &answer.OrgScore, &goalsJSON, &answer.EmployeeSubmittedAt, &answer.ManagerSubmittedAt, &answer.OrgSubmittedAt, &answer.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(selfJSON, &answer.SelfAnswers); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(managerJSON, &answer.ManagerAnswers); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(goalsJSON, &answer.GoalScores); err != nil {
		return nil, err
	}
	return &answer, nil
}

func (s *Store) UpsertSelfSection(ctx context.Context, tenantID, cycleID, contractID string, answers map[string]string, directScore *int, goalScores []GoalScore) error {
	answersJSON, goalsJSON, err := marshalSections(answers, goalScores)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, `
    INSERT INTO appraisal_answers (cycle_id, contract_id, self_answers_json, direct_score, goal_scores_json)
    SELECT c.id, $3, $4, $5, $6
    FROM appraisal_cycles c
    WHERE c.tenant_id = $1 AND c.id = $2
    ON CONFLICT (cycle_id, contract_id) DO UPDATE
    SET self_answers_json = EXCLUDED.self_answers_json,
        direct_score = EXCLUDED.direct_score,
        goal_scores_json = EXCLUDED.goal_scores_json,
        updated_at = now()
  `, tenantID, cycleID, contractID, answersJSON, directScore, goalsJSON)
	return err
}

func (s *Store) UpsertManagerSection(ctx context.Context, tenantID, cycleID, contractID string, answers map[string]string, directScore *int, goalScores []GoalScore) error {
	answersJSON, goalsJSON, err := marshalSections(answers, goalScores)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, `
    INSERT INTO appraisal_answers (cycle_id, contract_id, manager_answers_json, manager_direct_score, goal_scores_json)
    SELECT c.id, $3, $4, $5, $6
    FROM appraisal_cycles c
    WHERE c.tenant_id = $1 AND c.id = $2
    ON CONFLICT (cycle_id, contract_id) DO UPDATE
    SET manager_answers_json = EXCLUDED.manager_answers_json,
        manager_direct_score = EXCLUDED.manager_direct_score,
        goal_scores_json = EXCLUDED.goal_scores_json,
        updated_at = now()
  `, tenantID, cycleID, contractID, answersJSON, directScore, goalsJSON)
	return err
}

func (s *Store) UpsertOrgSection(ctx context.Context, tenantID, cycleID, contractID, note string, score *int) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO appraisal_answers (cycle_id, contract_id, org_note, org_score)
    SELECT c.id, $3, $4, $5
    FROM appraisal_cycles c
    WHERE c.tenant_id = $1 AND c.id = $2
    ON CONFLICT (cycle_id, contract_id) DO UPDATE
    SET org_note = EXCLUDED.org_note,
        org_score = EXCLUDED.org_score,
        updated_at = now()
  `, tenantID, cycleID, contractID, note, score)
	return err
}

func (s *Store) MarkSubmitted(ctx context.Context, tenantID, cycleID, contractID string, role ReviewerRole, at time.Time) error {
	column := ""
	switch role {
	case ReviewerSelf:
		column = "employee_submission_date"
	case ReviewerManager:
		column = "manager_submission_date"
	case ReviewerOrg:
		column = "org_submission_date"
	default:
		return errors.New("unknown reviewer role")
	}

	_, err := s.DB.Exec(ctx, `
    UPDATE appraisal_answers a
    SET `+column+` = $1, updated_at = now()
    FROM appraisal_cycles c
    WHERE a.cycle_id = c.id AND c.tenant_id = $2 AND a.cycle_id = $3 AND a.contract_id = $4 AND a.`+column+` IS NULL
  `, at, tenantID, cycleID, contractID)
	return err
}

func marshalSections(answers map[string]string, goalScores []GoalScore) ([]byte, []byte, error) {
	if answers == nil {
		answers = map[string]string{}
	}
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, nil, err
	}
	if goalScores == nil {
		goalScores = []GoalScore{}
	}
	goalsJSON, err := json.Marshal(goalScores)
	if err != nil {
		return nil, nil, err
	}
	return answersJSON, goalsJSON, nil
}

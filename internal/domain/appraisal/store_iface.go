package appraisal

import (
	"context"
	"time"
)

type StoreAPI interface {
	ListCycles(ctx context.Context, tenantID string) ([]Cycle, error)
	GetCycle(ctx context.Context, tenantID, cycleID string) (*Cycle, error)
	CreateCycle(ctx context.Context, tenantID string, cycle Cycle) (string, error)
	UpdateCycleDates(ctx context.Context, tenantID, cycleID string, start, end, selfDue, managerDue time.Time) error

	ListTemplates(ctx context.Context, tenantID string) ([]Template, error)
	CreateTemplate(ctx context.Context, tenantID, name string) (string, error)
	ListQuestions(ctx context.Context, tenantID, templateID string) ([]TemplateQuestion, error)
	CreateQuestion(ctx context.Context, tenantID string, question TemplateQuestion) (string, error)
	UpdateQuestion(ctx context.Context, tenantID string, question TemplateQuestion) error
	TemplateReferenced(ctx context.Context, tenantID, templateID string) (bool, error)

	GetAnswer(ctx context.Context, tenantID, cycleID, contractID string) (*Answer, error)
	ListAnswers(ctx context.Context, tenantID, cycleID string) ([]Answer, error)
	UpsertSelfSection(ctx context.Context, tenantID, cycleID, contractID string, answers map[string]string, directScore *int, goalScores []GoalScore) error
	UpsertManagerSection(ctx context.Context, tenantID, cycleID, contractID string, answers map[string]string, directScore *int, goalScores []GoalScore) error
	UpsertOrgSection(ctx context.Context, tenantID, cycleID, contractID, note string, score *int) error
	MarkSubmitted(ctx context.Context, tenantID, cycleID, contractID string, role ReviewerRole, at time.Time) error
}

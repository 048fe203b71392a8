package appraisal

import (
	"context"
	"errors"
	"time"
)

var (
	ErrAlreadySubmitted = errors.New("section already submitted")
	ErrTemplateFrozen   = errors.New("template has answers referencing it")
	ErrUnknownCycleType = errors.New("unknown cycle type")
	ErrInvalidDateOrder = errors.New("cycle dates out of order")
	ErrNothingToSubmit  = errors.New("no saved answers to submit")
	ErrCycleNotFound    = errors.New("cycle not found")
)

type Service struct {
	store StoreAPI
	now   func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) ListCycles(ctx context.Context, tenantID string) ([]Cycle, error) {
	return s.store.ListCycles(ctx, tenantID)
}

func (s *Service) GetCycle(ctx context.Context, tenantID, cycleID string) (*Cycle, error) {
	return s.store.GetCycle(ctx, tenantID, cycleID)
}

func (s *Service) CreateCycle(ctx context.Context, tenantID string, cycle Cycle) (string, error) {
	if cycle.Type != CycleTypeDirectScore && cycle.Type != CycleTypeObjectives {
		return "", ErrUnknownCycleType
	}
	if cycle.EndDate.Before(cycle.StartDate) {
		return "", ErrInvalidDateOrder
	}
	if cycle.SelfReviewDueDate.Before(cycle.StartDate) || cycle.ManagerReviewDueDate.Before(cycle.SelfReviewDueDate) {
		return "", ErrInvalidDateOrder
	}
	return s.store.CreateCycle(ctx, tenantID, cycle)
}

func (s *Service) UpdateCycleDates(ctx context.Context, tenantID, cycleID string, start, end, selfDue, managerDue time.Time) error {
	if end.Before(start) || selfDue.Before(start) || managerDue.Before(selfDue) {
		return ErrInvalidDateOrder
	}
	return s.store.UpdateCycleDates(ctx, tenantID, cycleID, start, end, selfDue, managerDue)
}

func (s *Service) ListTemplates(ctx context.Context, tenantID string) ([]Template, error) {
	return s.store.ListTemplates(ctx, tenantID)
}

func (s *Service) CreateTemplate(ctx context.Context, tenantID, name string) (string, error) {
	return s.store.CreateTemplate(ctx, tenantID, name)
}

func (s *Service) ListQuestions(ctx context.Context, tenantID, templateID string) ([]TemplateQuestion, error) {
	return s.store.ListQuestions(ctx, tenantID, templateID)
}

func (s *Service) CreateQuestion(ctx context.Context, tenantID string, question TemplateQuestion) (string, error) {
	frozen, err := s.store.TemplateReferenced(ctx, tenantID, question.TemplateID)
	if err != nil {
		return "", err
	}
	if frozen {
		return "", ErrTemplateFrozen
	}
	return s.store.CreateQuestion(ctx, tenantID, question)
}

// UpdateQuestion refuses edits once answers reference the template, so
// historical answers never desync from their questions.
func (s *Service) UpdateQuestion(ctx context.Context, tenantID string, question TemplateQuestion) error {
	frozen, err := s.store.TemplateReferenced(ctx, tenantID, question.TemplateID)
	if err != nil {
		return err
	}
	if frozen {
		return ErrTemplateFrozen
	}
	return s.store.UpdateQuestion(ctx, tenantID, question)
}

func (s *Service) GetAnswer(ctx context.Context, tenantID, cycleID, contractID string) (*Answer, error) {
	return s.store.GetAnswer(ctx, tenantID, cycleID, contractID)
}

// SaveSelfSection upserts the employee-owned fields. Goal scores are merged
// against the existing row so the manager's scores survive the write.
func (s *Service) SaveSelfSection(ctx context.Context, tenantID, cycleID, contractID string, answers map[string]string, directScore *int, goalScores []GoalScore) error {
	existing, err := s.store.GetAnswer(ctx, tenantID, cycleID, contractID)
	if err != nil {
		return err
	}
	if existing.Submitted(ReviewerSelf) {
		return ErrAlreadySubmitted
	}
	merged := mergeGoalScores(existing, goalScores, ReviewerSelf)
	return s.store.UpsertSelfSection(ctx, tenantID, cycleID, contractID, answers, directScore, merged)
}

func (s *Service) SaveManagerSection(ctx context.Context, tenantID, cycleID, contractID string, answers map[string]string, directScore *int, goalScores []GoalScore) error {
	existing, err := s.store.GetAnswer(ctx, tenantID, cycleID, contractID)
	if err != nil {
		return err
	}
	if existing.Submitted(ReviewerManager) {
		return ErrAlreadySubmitted
	}
	merged := mergeGoalScores(existing, goalScores, ReviewerManager)
	return s.store.UpsertManagerSection(ctx, tenantID, cycleID, contractID, answers, directScore, merged)
}

func (s *Service) SaveOrgSection(ctx context.Context, tenantID, cycleID, contractID, note string, score *int) error {
	return s.store.UpsertOrgSection(ctx, tenantID, cycleID, contractID, note, score)
}

func (s *Service) Submit(ctx context.Context, tenantID, cycleID, contractID string, role ReviewerRole) error {
	existing, err := s.store.GetAnswer(ctx, tenantID, cycleID, contractID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNothingToSubmit
	}
	if existing.Submitted(role) {
		return ErrAlreadySubmitted
	}
	return s.store.MarkSubmitted(ctx, tenantID, cycleID, contractID, role, s.now())
}

// mergeGoalScores folds incoming goal scores for one role into the stored
// array, keeping the other role's scores intact.
func mergeGoalScores(existing *Answer, incoming []GoalScore, role ReviewerRole) []GoalScore {
	var current []GoalScore
	if existing != nil {
		current = existing.GoalScores
	}
	if len(incoming) == 0 {
		return current
	}

	byID := make(map[string]int, len(current))
	merged := make([]GoalScore, len(current))
	copy(merged, current)
	for i, goal := range merged {
		byID[goal.GoalID] = i
	}

	for _, goal := range incoming {
		idx, ok := byID[goal.GoalID]
		if !ok {
			entry := GoalScore{GoalID: goal.GoalID, Title: goal.Title}
			merged = append(merged, entry)
			idx = len(merged) - 1
			byID[goal.GoalID] = idx
		}
		if goal.Title != "" {
			merged[idx].Title = goal.Title
		}
		if role == ReviewerManager {
			merged[idx].ManagerScore = goal.ManagerScore
		} else {
			merged[idx].SelfScore = goal.SelfScore
		}
	}
	return merged
}

// AnswerView decorates a raw answer with the computed scores for rendering.
type AnswerView struct {
	Answer       *Answer     `json:"answer"`
	SelfScore    ScoreResult `json:"selfScore"`
	ManagerScore ScoreResult `json:"managerScore"`
	OrgScore     ScoreResult `json:"orgScore"`
}

func (s *Service) AnswerWithScores(ctx context.Context, tenantID, cycleID, contractID string) (AnswerView, error) {
	cycle, err := s.store.GetCycle(ctx, tenantID, cycleID)
	if err != nil {
		return AnswerView{}, err
	}
	if cycle == nil {
		return AnswerView{}, ErrCycleNotFound
	}
	answer, err := s.store.GetAnswer(ctx, tenantID, cycleID, contractID)
	if err != nil {
		return AnswerView{}, err
	}
	return AnswerView{
		Answer:       answer,
		SelfScore:    FinalScore(cycle.Type, answer, ReviewerSelf),
		ManagerScore: FinalScore(cycle.Type, answer, ReviewerManager),
		OrgScore:     FinalScore(cycle.Type, answer, ReviewerOrg),
	}, nil
}

type QuestionDistributionView struct {
	Question TemplateQuestion `json:"question"`
	Buckets  []Bucket         `json:"buckets"`
}

// CycleDistributions aggregates every scale and yes/no question of the
// cycle's template across all answers in the cycle.
func (s *Service) CycleDistributions(ctx context.Context, tenantID, cycleID string) ([]QuestionDistributionView, error) {
	cycle, err := s.store.GetCycle(ctx, tenantID, cycleID)
	if err != nil {
		return nil, err
	}
	if cycle == nil {
		return nil, ErrCycleNotFound
	}
	questions, err := s.store.ListQuestions(ctx, tenantID, cycle.TemplateID)
	if err != nil {
		return nil, err
	}
	answers, err := s.store.ListAnswers(ctx, tenantID, cycleID)
	if err != nil {
		return nil, err
	}

	var out []QuestionDistributionView
	for _, question := range questions {
		if question.Type != QuestionTypeScale && question.Type != QuestionTypeYesNo {
			continue
		}
		out = append(out, QuestionDistributionView{
			Question: question,
			Buckets:  QuestionDistribution(question, answers),
		})
	}
	return out, nil
}

// CycleScores returns the final score per contract for a cycle, the input
// for the PDF report and the admin dashboard.
type ContractScore struct {
	ContractID   string      `json:"contractId"`
	SelfScore    ScoreResult `json:"selfScore"`
	ManagerScore ScoreResult `json:"managerScore"`
	Submitted    bool        `json:"submitted"`
}

func (s *Service) CycleScores(ctx context.Context, tenantID, cycleID string) ([]ContractScore, error) {
	cycle, err := s.store.GetCycle(ctx, tenantID, cycleID)
	if err != nil {
		return nil, err
	}
	if cycle == nil {
		return nil, ErrCycleNotFound
	}
	answers, err := s.store.ListAnswers(ctx, tenantID, cycleID)
	if err != nil {
		return nil, err
	}

	out := make([]ContractScore, 0, len(answers))
	for i := range answers {
		answer := &answers[i]
		out = append(out, ContractScore{
			ContractID:   answer.ContractID,
			SelfScore:    FinalScore(cycle.Type, answer, ReviewerSelf),
			ManagerScore: FinalScore(cycle.Type, answer, ReviewerManager),
			Submitted:    answer.Submitted(ReviewerSelf) && answer.Submitted(ReviewerManager),
		})
	}
	return out, nil
}

package appraisal

import (
	"context"
	"testing"
	"time"
)

type fakeStore struct {
	StoreAPI
	cycle      *Cycle
	answer     *Answer
	questions  []TemplateQuestion
	answers    []Answer
	referenced bool

	savedSelf    []GoalScore
	savedManager []GoalScore
	submitted    []ReviewerRole
}

func (f *fakeStore) GetCycle(ctx context.Context, tenantID, cycleID string) (*Cycle, error) {
	return f.cycle, nil
}

func (f *fakeStore) GetAnswer(ctx context.Context, tenantID, cycleID, contractID string) (*Answer, error) {
	return f.answer, nil
}

func (f *fakeStore) ListAnswers(ctx context.Context, tenantID, cycleID string) ([]Answer, error) {
	return f.answers, nil
}

func (f *fakeStore) ListQuestions(ctx context.Context, tenantID, templateID string) ([]TemplateQuestion, error) {
	return f.questions, nil
}

func (f *fakeStore) TemplateReferenced(ctx context.Context, tenantID, templateID string) (bool, error) {
	return f.referenced, nil
}

func (f *fakeStore) UpdateQuestion(ctx context.Context, tenantID string, question TemplateQuestion) error {
	return nil
}

func (f *fakeStore) UpsertSelfSection(ctx context.Context, tenantID, cycleID, contractID string, answers map[string]string, directScore *int, goalScores []GoalScore) error {
	f.savedSelf = goalScores
	return nil
}

func (f *fakeStore) UpsertManagerSection(ctx context.Context, tenantID, cycleID, contractID string, answers map[string]string, directScore *int, goalScores []GoalScore) error {
	f.savedManager = goalScores
	return nil
}

func (f *fakeStore) MarkSubmitted(ctx context.Context, tenantID, cycleID, contractID string, role ReviewerRole, at time.Time) error {
	f.submitted = append(f.submitted, role)
	return nil
}

func TestSaveSelfSectionRejectedAfterSubmit(t *testing.T) {
	submitted := time.Now()
	store := &fakeStore{answer: &Answer{EmployeeSubmittedAt: &submitted}}
	svc := NewService(store)

	err := svc.SaveSelfSection(context.Background(), "t1", "c1", "k1", nil, nil, nil)
	if err != ErrAlreadySubmitted {
		t.Fatalf("expected ErrAlreadySubmitted, got %v", err)
	}
}

func TestSaveManagerSectionPreservesSelfGoalScores(t *testing.T) {
	store := &fakeStore{answer: &Answer{
		GoalScores: []GoalScore{{GoalID: "g1", Title: "Ship v2", SelfScore: 4}},
	}}
	svc := NewService(store)

	err := svc.SaveManagerSection(context.Background(), "t1", "c1", "k1", nil, nil, []GoalScore{{GoalID: "g1", ManagerScore: 3}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.savedManager) != 1 {
		t.Fatalf("expected one merged goal, got %d", len(store.savedManager))
	}
	merged := store.savedManager[0]
	if merged.SelfScore != 4 || merged.ManagerScore != 3 || merged.Title != "Ship v2" {
		t.Fatalf("merge lost fields: %+v", merged)
	}
}

func TestSubmitWithoutSavedAnswer(t *testing.T) {
	svc := NewService(&fakeStore{})
	err := svc.Submit(context.Background(), "t1", "c1", "k1", ReviewerSelf)
	if err != ErrNothingToSubmit {
		t.Fatalf("expected ErrNothingToSubmit, got %v", err)
	}
}

func TestSubmitTwiceRejected(t *testing.T) {
	submitted := time.Now()
	store := &fakeStore{answer: &Answer{ManagerSubmittedAt: &submitted}}
	svc := NewService(store)

	if err := svc.Submit(context.Background(), "t1", "c1", "k1", ReviewerManager); err != ErrAlreadySubmitted {
		t.Fatalf("expected ErrAlreadySubmitted, got %v", err)
	}
}

func TestUpdateQuestionFrozenTemplate(t *testing.T) {
	svc := NewService(&fakeStore{referenced: true})
	err := svc.UpdateQuestion(context.Background(), "t1", TemplateQuestion{TemplateID: "tpl1"})
	if err != ErrTemplateFrozen {
		t.Fatalf("expected ErrTemplateFrozen, got %v", err)
	}
}

func TestCreateCycleValidation(t *testing.T) {
	svc := NewService(&fakeStore{})
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.CreateCycle(context.Background(), "t1", Cycle{Type: "bogus", StartDate: start, EndDate: start})
	if err != ErrUnknownCycleType {
		t.Fatalf("expected ErrUnknownCycleType, got %v", err)
	}

	_, err = svc.CreateCycle(context.Background(), "t1", Cycle{
		Type:      CycleTypeDirectScore,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, -1),
	})
	if err != ErrInvalidDateOrder {
		t.Fatalf("expected ErrInvalidDateOrder, got %v", err)
	}
}

func TestAnswerWithScoresMissingRow(t *testing.T) {
	store := &fakeStore{cycle: &Cycle{ID: "c1", Type: CycleTypeDirectScore}}
	svc := NewService(store)

	view, err := svc.AnswerWithScores(context.Background(), "t1", "c1", "k1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.SelfScore.Valid || view.SelfScore.Label != NoScoreLabel {
		t.Fatalf("expected N/A for missing answer, got %+v", view.SelfScore)
	}
}

func TestMissingCycleIsNotFound(t *testing.T) {
	svc := NewService(&fakeStore{})

	if _, err := svc.AnswerWithScores(context.Background(), "t1", "gone", "k1"); err != ErrCycleNotFound {
		t.Fatalf("AnswerWithScores: expected ErrCycleNotFound, got %v", err)
	}
	if _, err := svc.CycleScores(context.Background(), "t1", "gone"); err != ErrCycleNotFound {
		t.Fatalf("CycleScores: expected ErrCycleNotFound, got %v", err)
	}
	if _, err := svc.CycleDistributions(context.Background(), "t1", "gone"); err != ErrCycleNotFound {
		t.Fatalf("CycleDistributions: expected ErrCycleNotFound, got %v", err)
	}
}

func TestCycleDistributionsSkipsTextQuestions(t *testing.T) {
	store := &fakeStore{
		cycle: &Cycle{ID: "c1", Type: CycleTypeDirectScore, TemplateID: "tpl1"},
		questions: []TemplateQuestion{
			{ID: "q1", Type: QuestionTypeScale, Group: QuestionGroupEmployee},
			{ID: "q2", Type: QuestionTypeText, Group: QuestionGroupEmployee},
		},
		answers: []Answer{{SelfAnswers: map[string]string{"q1": "5", "q2": "free text"}}},
	}
	svc := NewService(store)

	views, err := svc.CycleDistributions(context.Background(), "t1", "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 || views[0].Question.ID != "q1" {
		t.Fatalf("expected only the scale question, got %+v", views)
	}
}

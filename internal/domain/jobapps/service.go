package jobapps

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrPostingClosed       = errors.New("job posting is closed")
	ErrStageConflict       = errors.New("application stage changed concurrently")
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) ListPostings(ctx context.Context, tenantID string, openOnly bool) ([]Posting, error) {
	return s.store.ListPostings(ctx, tenantID, openOnly)
}

func (s *Service) CreatePosting(ctx context.Context, tenantID string, posting Posting) (string, error) {
	if strings.TrimSpace(posting.Title) == "" {
		return "", errors.New("posting needs a title")
	}
	posting.Open = true
	return s.store.CreatePosting(ctx, tenantID, posting)
}

func (s *Service) ClosePosting(ctx context.Context, tenantID, postingID string) error {
	return s.store.SetPostingOpen(ctx, tenantID, postingID, false)
}

func (s *Service) ListApplications(ctx context.Context, tenantID, postingID string) ([]Application, error) {
	return s.store.ListApplications(ctx, tenantID, postingID)
}

func (s *Service) Apply(ctx context.Context, tenantID string, app Application) (string, error) {
	if strings.TrimSpace(app.CandidateEmail) == "" {
		return "", errors.New("application needs a candidate email")
	}
	postings, err := s.store.ListPostings(ctx, tenantID, true)
	if err != nil {
		return "", err
	}
	open := false
	for _, p := range postings {
		if p.ID == app.PostingID {
			open = true
			break
		}
	}
	if !open {
		return "", ErrPostingClosed
	}
	app.Stage = StageApplied
	return s.store.CreateApplication(ctx, tenantID, app)
}

// Advance moves an application to the given stage after validating the
// transition against the closed progression.
func (s *Service) Advance(ctx context.Context, tenantID, applicationID string, to Stage, notes string) (*Application, error) {
	app, err := s.store.GetApplication(ctx, tenantID, applicationID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, ErrApplicationNotFound
	}
	if err := ValidateTransition(app.Stage, to); err != nil {
		return nil, err
	}
	ok, err := s.store.SetStage(ctx, tenantID, applicationID, app.Stage, to, notes)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrStageConflict
	}
	app.Stage = to
	if notes != "" {
		app.Notes = notes
	}
	return app, nil
}

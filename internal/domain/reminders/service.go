package reminders

import (
	"context"
	"errors"
)

var ErrCycleNotFound = errors.New("appraisal cycle not found")

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

// ArmReminders creates a one-shot config for the cycle. The next scheduler
// pass expands it; re-arming after cycle date changes is done by creating a
// fresh config.
func (s *Service) ArmReminders(ctx context.Context, tenantID, cycleID string) (*ReminderConfig, error) {
	cycle, err := s.store.CycleInfo(ctx, tenantID, cycleID)
	if err != nil {
		return nil, err
	}
	if cycle == nil {
		return nil, ErrCycleNotFound
	}
	return s.store.CreateConfig(ctx, tenantID, cycleID)
}

func (s *Service) ListScheduled(ctx context.Context, tenantID, cycleID string, status Status) ([]ScheduledEmail, error) {
	if status != "" && !status.Valid() {
		return nil, errors.New("unknown status filter")
	}
	return s.store.ListScheduled(ctx, tenantID, cycleID, status)
}

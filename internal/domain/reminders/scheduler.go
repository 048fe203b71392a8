package reminders

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Scheduler expands active reminder configs into scheduled-email rows.
type Scheduler struct {
	store      StoreAPI
	logger     *slog.Logger
	windowDays int
	maxRetries int
	now        func() time.Time
}

func NewScheduler(store StoreAPI, logger *slog.Logger, windowDays, maxRetries int) *Scheduler {
	if windowDays <= 0 {
		windowDays = 30
	}
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Scheduler{
		store:      store,
		logger:     logger,
		windowDays: windowDays,
		maxRetries: maxRetries,
		now:        time.Now,
	}
}

// Run processes every active config once. A failing config is logged and
// counted but never stops the rest of the batch. Configs are one-shot:
// each is marked inactive after its rows are written.
func (s *Scheduler) Run(ctx context.Context) (Stats, error) {
	started := s.now()
	stats := Stats{}

	configs, err := s.store.ActiveConfigs(ctx)
	if err != nil {
		return stats, fmt.Errorf("list active reminder configs: %w", err)
	}

	tenantNames := make(map[string]string)
	for _, cfg := range configs {
		if err := s.processConfig(ctx, cfg, tenantNames); err != nil {
			stats.Errors++
			s.logger.Error("reminder config failed",
				slog.String("configId", cfg.ID),
				slog.String("cycleId", cfg.CycleID),
				slog.String("error", err.Error()))
			continue
		}
		stats.Processed++
	}

	stats.Duration = s.now().Sub(started)
	return stats, nil
}

func (s *Scheduler) processConfig(ctx context.Context, cfg ReminderConfig, tenantNames map[string]string) error {
	cycle, err := s.store.CycleInfo(ctx, cfg.TenantID, cfg.CycleID)
	if err != nil {
		return fmt.Errorf("load cycle: %w", err)
	}
	if cycle == nil {
		return fmt.Errorf("cycle %s not found", cfg.CycleID)
	}

	tenantName, ok := tenantNames[cfg.TenantID]
	if !ok {
		tenantName, err = s.store.TenantName(ctx, cfg.TenantID)
		if err != nil {
			return fmt.Errorf("load tenant: %w", err)
		}
		tenantNames[cfg.TenantID] = tenantName
	}

	recipients, err := s.resolveRecipients(ctx, cycle)
	if err != nil {
		return fmt.Errorf("resolve recipients: %w", err)
	}

	emails := ExpandReminders(*cycle, recipients, tenantName, s.now(), s.windowDays, s.maxRetries)
	inserted, err := s.store.InsertScheduled(ctx, emails)
	if err != nil {
		return fmt.Errorf("insert scheduled emails: %w", err)
	}

	if err := s.store.MarkConfigInactive(ctx, cfg.ID); err != nil {
		return fmt.Errorf("deactivate config: %w", err)
	}

	s.logger.Info("reminder config expanded",
		slog.String("configId", cfg.ID),
		slog.String("cycleId", cfg.CycleID),
		slog.Int("expanded", len(emails)),
		slog.Int("inserted", inserted))
	return nil
}

// resolveRecipients builds the audience for the cycle. A cycle scoped to a
// single contract narrows employees to that contract and managers to the
// managers of its teams; admins always receive their rows.
func (s *Scheduler) resolveRecipients(ctx context.Context, cycle *CycleInfo) (RecipientSet, error) {
	var set RecipientSet

	admins, err := s.store.AdminRecipients(ctx, cycle.TenantID)
	if err != nil {
		return set, err
	}
	set.Admins = admins

	if cycle.ContractID != "" {
		rec, err := s.store.ContractRecipient(ctx, cycle.TenantID, cycle.ContractID)
		if err != nil {
			return set, err
		}
		if rec != nil {
			set.Employees = []Recipient{*rec}
		}
		managers, err := s.store.ManagersOfContract(ctx, cycle.TenantID, cycle.ContractID)
		if err != nil {
			return set, err
		}
		set.Managers = managers
		return set, nil
	}

	employees, err := s.store.SignedContractRecipients(ctx, cycle.TenantID)
	if err != nil {
		return set, err
	}
	set.Employees = employees

	managers, err := s.store.TeamManagerRecipients(ctx, cycle.TenantID)
	if err != nil {
		return set, err
	}
	set.Managers = managers
	return set, nil
}

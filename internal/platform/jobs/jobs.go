package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
)

const (
	JobReminderScan  = "reminder_scan"
	JobEmailDispatch = "email_dispatch"
	JobLeaveAccrual  = "leave_accrual"
)

// JobFunc runs one batch job and returns its details for the job_runs row.
type JobFunc func(ctx context.Context) (any, error)

// Runner schedules named batch jobs with cron expressions and records every
// run in job_runs, whether cron-triggered or invoked on demand.
type Runner struct {
	DB     *pgxpool.Pool
	logger *slog.Logger
	cron   *cron.Cron
}

func New(db *pgxpool.Pool, logger *slog.Logger) *Runner {
	return &Runner{
		DB:     db,
		logger: logger,
		cron:   cron.New(),
	}
}

// Schedule registers a job under the given cron spec. An empty spec leaves
// the job on-demand only.
func (r *Runner) Schedule(spec, jobType, tenantID string, run JobFunc) error {
	if spec == "" {
		return nil
	}
	_, err := r.cron.AddFunc(spec, func() {
		if _, err := r.RunNow(context.Background(), jobType, tenantID, run); err != nil {
			r.logger.Warn("scheduled job failed", "jobType", jobType, "err", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", jobType, spec, err)
	}
	return nil
}

func (r *Runner) Start() {
	r.cron.Start()
}

// Stop halts the scheduler and waits for running jobs.
func (r *Runner) Stop() {
	<-r.cron.Stop().Done()
}

// RunNow executes the job immediately, bracketing it with a job_runs row
// (running -> completed|failed with details JSON).
func (r *Runner) RunNow(ctx context.Context, jobType, tenantID string, run JobFunc) (any, error) {
	runID := ""
	if err := r.DB.QueryRow(ctx, `
    INSERT INTO job_runs (tenant_id, job_type, status)
    VALUES (NULLIF($1, '')::uuid, $2, 'running')
    RETURNING id
  `, tenantID, jobType).Scan(&runID); err != nil {
		r.logger.Warn("job run insert failed", "jobType", jobType, "err", err)
	}

	details, err := run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		r.logger.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := r.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			r.logger.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

// ListTenants feeds per-tenant jobs like leave accrual.
func (r *Runner) ListTenants(ctx context.Context) ([]string, error) {
	rows, err := r.DB.Query(ctx, `SELECT id FROM tenants`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

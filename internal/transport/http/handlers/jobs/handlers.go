package jobshandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hrflow/internal/domain/auth"
	"hrflow/internal/domain/leave"
	"hrflow/internal/domain/reminders"
	"hrflow/internal/platform/jobs"
	"hrflow/internal/transport/http/middleware"
)

type Handler struct {
	Runner     *jobs.Runner
	Scheduler  *reminders.Scheduler
	Dispatcher *reminders.Dispatcher
	Leave      *leave.Service
	Perms      middleware.PermissionStore
}

var errUnexpectedResult = errors.New("job returned an unexpected result type")

func NewHandler(runner *jobs.Runner, scheduler *reminders.Scheduler, dispatcher *reminders.Dispatcher, leaveSvc *leave.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Runner: runner, Scheduler: scheduler, Dispatcher: dispatcher, Leave: leaveSvc, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/jobs", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermJobsRun, h.Perms)).Post("/reminder-scan", h.handleReminderScan)
		r.With(middleware.RequirePermission(auth.PermJobsRun, h.Perms)).Post("/email-dispatch", h.handleEmailDispatch)
		r.With(middleware.RequirePermission(auth.PermJobsRun, h.Perms)).Post("/leave-accrual", h.handleLeaveAccrual)
	})
}

// triggerStats is the wire shape of a job summary. Duration is human
// readable ("1.524s"), not nanoseconds.
type triggerStats struct {
	Processed int    `json:"processed"`
	Errors    int    `json:"errors"`
	Duration  string `json:"duration"`
}

type triggerResponse struct {
	Message string       `json:"message"`
	Stats   triggerStats `json:"stats"`
}

func writeTrigger(w http.ResponseWriter, message string, stats reminders.Stats) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(triggerResponse{
		Message: message,
		Stats: triggerStats{
			Processed: stats.Processed,
			Errors:    stats.Errors,
			Duration:  stats.Duration.String(),
		},
	}); err != nil {
		slog.Warn("trigger response write failed", "err", err)
	}
}

func writeTriggerError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	if encErr := json.NewEncoder(w).Encode(map[string]string{"error": err.Error()}); encErr != nil {
		slog.Warn("trigger error write failed", "err", encErr)
	}
}

// handleReminderScan expands every active reminder config into scheduled
// email rows. A failed listing query still answers 200 with the error
// counted, so a wedged database never breaks the cron caller.
func (h *Handler) handleReminderScan(w http.ResponseWriter, r *http.Request) {
	result, err := h.Runner.RunNow(r.Context(), jobs.JobReminderScan, "", func(ctx context.Context) (any, error) {
		return h.Scheduler.Run(ctx)
	})
	if err != nil {
		writeTrigger(w, "reminder scan failed: "+err.Error(), reminders.Stats{Errors: 1})
		return
	}
	stats, ok := result.(reminders.Stats)
	if !ok {
		writeTriggerError(w, errUnexpectedResult)
		return
	}
	writeTrigger(w, "reminder scan completed", stats)
}

func (h *Handler) handleEmailDispatch(w http.ResponseWriter, r *http.Request) {
	result, err := h.Runner.RunNow(r.Context(), jobs.JobEmailDispatch, "", func(ctx context.Context) (any, error) {
		return h.Dispatcher.Run(ctx)
	})
	if err != nil {
		writeTrigger(w, "email dispatch failed: "+err.Error(), reminders.Stats{Errors: 1})
		return
	}
	stats, ok := result.(reminders.Stats)
	if !ok {
		writeTriggerError(w, errUnexpectedResult)
		return
	}
	writeTrigger(w, "email dispatch completed", stats)
}

// handleLeaveAccrual runs accrual for every tenant; a failing tenant is
// counted and skipped.
func (h *Handler) handleLeaveAccrual(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	tenants, err := h.Runner.ListTenants(r.Context())
	if err != nil {
		writeTrigger(w, "leave accrual failed: "+err.Error(), reminders.Stats{Errors: 1, Duration: time.Since(started)})
		return
	}

	stats := reminders.Stats{}
	for _, tenantID := range tenants {
		_, err := h.Runner.RunNow(r.Context(), jobs.JobLeaveAccrual, tenantID, func(ctx context.Context) (any, error) {
			return h.Leave.RunAccruals(ctx, tenantID)
		})
		if err != nil {
			stats.Errors++
			slog.Warn("leave accrual failed", "tenantId", tenantID, "err", err)
			continue
		}
		stats.Processed++
	}
	stats.Duration = time.Since(started)
	writeTrigger(w, "leave accrual completed", stats)
}

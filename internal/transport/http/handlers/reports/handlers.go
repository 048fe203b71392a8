package reportshandler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrflow/internal/domain/appraisal"
	"hrflow/internal/domain/auth"
	"hrflow/internal/domain/reports"
	"hrflow/internal/transport/http/api"
	"hrflow/internal/transport/http/middleware"
)

type Handler struct {
	Service *reports.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *reports.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/cycles/{cycleID}/summary.pdf", h.handleCycleSummaryPDF)
	})
}

func (h *Handler) handleCycleSummaryPDF(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	cycleID := chi.URLParam(r, "cycleID")

	pdf, err := h.Service.CycleSummaryPDF(r.Context(), user.TenantID, cycleID)
	if err != nil {
		if errors.Is(err, appraisal.ErrCycleNotFound) {
			api.Fail(w, http.StatusNotFound, "cycle_not_found", "cycle not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to generate cycle summary", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "cycle-summary-"+cycleID+".pdf"))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		slog.Warn("pdf write failed", "cycleId", cycleID, "err", err)
	}
}

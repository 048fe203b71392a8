package onboardinghandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrflow/internal/domain/auth"
	"hrflow/internal/domain/onboarding"
	"hrflow/internal/transport/http/api"
	"hrflow/internal/transport/http/middleware"
	"hrflow/internal/transport/http/shared"
)

type Handler struct {
	Service *onboarding.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *onboarding.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/onboarding", func(r chi.Router) {
		r.Route("/templates", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermOnboardingRead, h.Perms)).Get("/", h.handleListTemplates)
			r.With(middleware.RequirePermission(auth.PermOnboardingWrite, h.Perms)).Post("/", h.handleCreateTemplate)
			r.With(middleware.RequirePermission(auth.PermOnboardingWrite, h.Perms)).Post("/{templateID}/assign", h.handleAssign)
		})
		r.Route("/contracts/{contractID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermOnboardingRead, h.Perms)).Get("/tasks", h.handleTasks)
			r.With(middleware.RequirePermission(auth.PermOnboardingRead, h.Perms)).Get("/progress", h.handleProgress)
		})
		r.With(middleware.RequirePermission(auth.PermOnboardingWrite, h.Perms)).Post("/tasks/{taskID}/complete", h.handleComplete)
	})
}

func (h *Handler) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	templates, err := h.Service.Templates(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "template_list_failed", "failed to list checklist templates", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, templates, middleware.GetRequestID(r.Context()))
}

type checklistPayload struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func (h *Handler) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload checklistPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "checklist name is required")
	if len(payload.Items) == 0 {
		v.Add("items", "at least one checklist item is required")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateTemplate(r.Context(), user.TenantID, payload.Name, payload.Items)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "template_create_failed", "failed to create checklist template", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

type assignPayload struct {
	ContractID string `json:"contractId"`
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload assignPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("contractId", payload.ContractID, "contract is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := h.Service.Assign(r.Context(), user.TenantID, chi.URLParam(r, "templateID"), payload.ContractID); err != nil {
		if errors.Is(err, onboarding.ErrTemplateNotFound) {
			api.Fail(w, http.StatusNotFound, "template_not_found", "checklist template not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "assign_failed", "failed to assign checklist", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "assigned"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleTasks(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	tasks, err := h.Service.Tasks(r.Context(), user.TenantID, chi.URLParam(r, "contractID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "task_list_failed", "failed to list onboarding tasks", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, tasks, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	if err := h.Service.Complete(r.Context(), user.TenantID, chi.URLParam(r, "taskID")); err != nil {
		api.Fail(w, http.StatusConflict, "task_complete_failed", "task already completed or missing", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "completed"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	progress, err := h.Service.Progress(r.Context(), user.TenantID, chi.URLParam(r, "contractID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "progress_failed", "failed to compute onboarding progress", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, progress, middleware.GetRequestID(r.Context()))
}

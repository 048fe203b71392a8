package jobappshandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrflow/internal/domain/auth"
	"hrflow/internal/domain/jobapps"
	"hrflow/internal/transport/http/api"
	"hrflow/internal/transport/http/middleware"
	"hrflow/internal/transport/http/shared"
)

type Handler struct {
	Service *jobapps.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *jobapps.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/recruitment", func(r chi.Router) {
		r.Route("/postings", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermJobAppsRead, h.Perms)).Get("/", h.handleListPostings)
			r.With(middleware.RequirePermission(auth.PermJobAppsWrite, h.Perms)).Post("/", h.handleCreatePosting)
			r.With(middleware.RequirePermission(auth.PermJobAppsWrite, h.Perms)).Post("/{postingID}/close", h.handleClosePosting)
			r.With(middleware.RequirePermission(auth.PermJobAppsRead, h.Perms)).Get("/{postingID}/applications", h.handleListApplications)
			r.With(middleware.RequirePermission(auth.PermJobAppsWrite, h.Perms)).Post("/{postingID}/applications", h.handleApply)
		})
		r.With(middleware.RequirePermission(auth.PermJobAppsWrite, h.Perms)).Post("/applications/{applicationID}/advance", h.handleAdvance)
	})
}

func (h *Handler) handleListPostings(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	openOnly := r.URL.Query().Get("open") == "true"
	postings, err := h.Service.ListPostings(r.Context(), user.TenantID, openOnly)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "posting_list_failed", "failed to list postings", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, postings, middleware.GetRequestID(r.Context()))
}

type postingPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

func (h *Handler) handleCreatePosting(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload postingPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("title", payload.Title, "posting title is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreatePosting(r.Context(), user.TenantID, jobapps.Posting{
		Title:       payload.Title,
		Description: payload.Description,
		Location:    payload.Location,
		Open:        true,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "posting_create_failed", "failed to create posting", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleClosePosting(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	if err := h.Service.ClosePosting(r.Context(), user.TenantID, chi.URLParam(r, "postingID")); err != nil {
		api.Fail(w, http.StatusInternalServerError, "posting_close_failed", "failed to close posting", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "closed"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListApplications(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	apps, err := h.Service.ListApplications(r.Context(), user.TenantID, chi.URLParam(r, "postingID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "application_list_failed", "failed to list applications", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, apps, middleware.GetRequestID(r.Context()))
}

type applyPayload struct {
	CandidateName  string `json:"candidateName"`
	CandidateEmail string `json:"candidateEmail"`
	Notes          string `json:"notes"`
}

func (h *Handler) handleApply(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload applyPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("candidateName", payload.CandidateName, "candidate name is required")
	v.Required("candidateEmail", payload.CandidateEmail, "candidate email is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.Apply(r.Context(), user.TenantID, jobapps.Application{
		PostingID:      chi.URLParam(r, "postingID"),
		CandidateName:  payload.CandidateName,
		CandidateEmail: payload.CandidateEmail,
		Notes:          payload.Notes,
	})
	if err != nil {
		if errors.Is(err, jobapps.ErrPostingClosed) {
			api.Fail(w, http.StatusConflict, "posting_closed", "job posting is closed", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "application_create_failed", "failed to record application", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

type advancePayload struct {
	Stage string `json:"stage"`
	Notes string `json:"notes"`
}

func (h *Handler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload advancePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	app, err := h.Service.Advance(r.Context(), user.TenantID, chi.URLParam(r, "applicationID"), jobapps.Stage(payload.Stage), payload.Notes)
	if err != nil {
		switch {
		case errors.Is(err, jobapps.ErrApplicationNotFound):
			api.Fail(w, http.StatusNotFound, "application_not_found", "application not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, jobapps.ErrStageConflict):
			api.Fail(w, http.StatusConflict, "stage_conflict", "application stage changed concurrently", middleware.GetRequestID(r.Context()))
		case errors.Is(err, jobapps.ErrInvalidStageMove):
			api.Fail(w, http.StatusBadRequest, "invalid_stage", err.Error(), middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "application_advance_failed", "failed to advance application", middleware.GetRequestID(r.Context()))
		}
		return
	}
	api.Success(w, app, middleware.GetRequestID(r.Context()))
}

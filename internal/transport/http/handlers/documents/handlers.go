package documentshandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hrflow/internal/domain/auth"
	"hrflow/internal/domain/documents"
	"hrflow/internal/transport/http/api"
	"hrflow/internal/transport/http/middleware"
	"hrflow/internal/transport/http/shared"
)

type Handler struct {
	Service *documents.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *documents.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/documents", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermDocumentsRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermDocumentsWrite, h.Perms)).Post("/", h.handleCreate)
		r.Route("/{documentID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermDocumentsWrite, h.Perms)).Put("/", h.handleEdit)
			r.With(middleware.RequirePermission(auth.PermDocumentsRead, h.Perms)).Get("/versions", h.handleVersions)
			r.With(middleware.RequirePermission(auth.PermDocumentsRead, h.Perms)).Get("/versions/{number}", h.handleVersion)
		})
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	docs, err := h.Service.List(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "document_list_failed", "failed to list documents", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, docs, middleware.GetRequestID(r.Context()))
}

type documentPayload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload documentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("title", payload.Title, "document title is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	doc, err := h.Service.Create(r.Context(), user.TenantID, payload.Title, user.UserID, payload.Content)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "document_create_failed", "failed to create document", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, doc, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload documentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	version, err := h.Service.Edit(r.Context(), user.TenantID, chi.URLParam(r, "documentID"), user.UserID, payload.Content)
	if err != nil {
		if errors.Is(err, documents.ErrDocumentNotFound) {
			api.Fail(w, http.StatusNotFound, "document_not_found", "document not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "document_edit_failed", "failed to save document version", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, version, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleVersions(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	versions, err := h.Service.Versions(r.Context(), user.TenantID, chi.URLParam(r, "documentID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "version_list_failed", "failed to list versions", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, versions, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number < 1 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "version number must be a positive integer", middleware.GetRequestID(r.Context()))
		return
	}

	version, err := h.Service.Version(r.Context(), user.TenantID, chi.URLParam(r, "documentID"), number)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "version_get_failed", "failed to load version", middleware.GetRequestID(r.Context()))
		return
	}
	if version == nil {
		api.Fail(w, http.StatusNotFound, "version_not_found", "version not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, version, middleware.GetRequestID(r.Context()))
}

package appraisalhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrflow/internal/domain/appraisal"
	"hrflow/internal/domain/audit"
	"hrflow/internal/domain/auth"
	"hrflow/internal/domain/core"
	"hrflow/internal/domain/reminders"
	"hrflow/internal/transport/http/api"
	"hrflow/internal/transport/http/middleware"
	"hrflow/internal/transport/http/shared"
)

type Handler struct {
	Service   *appraisal.Service
	Reminders *reminders.Service
	Core      *core.Service
	Perms     middleware.PermissionStore
	Audit     *audit.Service
}

func NewHandler(service *appraisal.Service, rem *reminders.Service, coreSvc *core.Service, perms middleware.PermissionStore, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Reminders: rem, Core: coreSvc, Perms: perms, Audit: auditSvc}
}

func (h *Handler) record(r *http.Request, user auth.UserContext, action, entityType, entityID string, after any) {
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, action, entityType, entityID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, after); err != nil {
		slog.Warn("audit "+action+" failed", "err", err)
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/appraisals", func(r chi.Router) {
		r.Route("/templates", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermAppraisalRead, h.Perms)).Get("/", h.handleListTemplates)
			r.With(middleware.RequirePermission(auth.PermAppraisalAdmin, h.Perms)).Post("/", h.handleCreateTemplate)
			r.Route("/{templateID}/questions", func(r chi.Router) {
				r.With(middleware.RequirePermission(auth.PermAppraisalRead, h.Perms)).Get("/", h.handleListQuestions)
				r.With(middleware.RequirePermission(auth.PermAppraisalAdmin, h.Perms)).Post("/", h.handleCreateQuestion)
				r.With(middleware.RequirePermission(auth.PermAppraisalAdmin, h.Perms)).Put("/{questionID}", h.handleUpdateQuestion)
			})
		})
		r.Route("/cycles", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermAppraisalRead, h.Perms)).Get("/", h.handleListCycles)
			r.With(middleware.RequirePermission(auth.PermAppraisalAdmin, h.Perms)).Post("/", h.handleCreateCycle)
			r.Route("/{cycleID}", func(r chi.Router) {
				r.With(middleware.RequirePermission(auth.PermAppraisalRead, h.Perms)).Get("/", h.handleGetCycle)
				r.With(middleware.RequirePermission(auth.PermAppraisalAdmin, h.Perms)).Put("/dates", h.handleUpdateCycleDates)
				r.With(middleware.RequirePermission(auth.PermAppraisalAdmin, h.Perms)).Post("/arm-reminders", h.handleArmReminders)
				r.With(middleware.RequirePermission(auth.PermAppraisalAdmin, h.Perms)).Get("/scheduled-emails", h.handleListScheduledEmails)
				r.With(middleware.RequirePermission(auth.PermAppraisalAdmin, h.Perms)).Get("/scores", h.handleCycleScores)
				r.With(middleware.RequirePermission(auth.PermAppraisalAdmin, h.Perms)).Get("/distributions", h.handleCycleDistributions)
				r.Route("/answers/{contractID}", func(r chi.Router) {
					r.With(middleware.RequirePermission(auth.PermAppraisalRead, h.Perms)).Get("/", h.handleGetAnswer)
					r.With(middleware.RequirePermission(auth.PermAppraisalWrite, h.Perms)).Put("/self", h.handleSaveSelf)
					r.With(middleware.RequirePermission(auth.PermAppraisalReview, h.Perms)).Put("/manager", h.handleSaveManager)
					r.With(middleware.RequirePermission(auth.PermAppraisalAdmin, h.Perms)).Put("/org", h.handleSaveOrg)
					r.With(middleware.RequirePermission(auth.PermAppraisalWrite, h.Perms)).Post("/submit", h.handleSubmit)
				})
			})
		})
	})
}

func (h *Handler) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	templates, err := h.Service.ListTemplates(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "template_list_failed", "failed to list templates", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, templates, middleware.GetRequestID(r.Context()))
}

type templatePayload struct {
	Name string `json:"name"`
}

func (h *Handler) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload templatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "template name is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateTemplate(r.Context(), user.TenantID, payload.Name)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "template_create_failed", "failed to create template", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	questions, err := h.Service.ListQuestions(r.Context(), user.TenantID, chi.URLParam(r, "templateID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "question_list_failed", "failed to list questions", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, questions, middleware.GetRequestID(r.Context()))
}

type questionPayload struct {
	Group       string                 `json:"group"`
	Type        string                 `json:"type"`
	Prompt      string                 `json:"prompt"`
	Required    bool                   `json:"required"`
	Options     []string               `json:"options"`
	ScaleLabels []appraisal.ScaleLabel `json:"scaleLabels"`
	Position    int                    `json:"position"`
}

func (p questionPayload) toModel(v *shared.Validator, templateID string) appraisal.TemplateQuestion {
	v.Required("prompt", p.Prompt, "question prompt is required")
	v.Enum("type", p.Type, []string{
		appraisal.QuestionTypeScale,
		appraisal.QuestionTypeYesNo,
		appraisal.QuestionTypeText,
		appraisal.QuestionTypeMultiselect,
		appraisal.QuestionTypeSelect,
	}, "unknown question type")
	if p.Type == appraisal.QuestionTypeMultiselect || p.Type == appraisal.QuestionTypeSelect {
		if len(p.Options) == 0 {
			v.Add("options", "options are required for select questions")
		}
	}
	return appraisal.TemplateQuestion{
		TemplateID:  templateID,
		Group:       p.Group,
		Type:        p.Type,
		Prompt:      p.Prompt,
		Required:    p.Required,
		Options:     p.Options,
		ScaleLabels: p.ScaleLabels,
		Position:    p.Position,
	}
}

func (h *Handler) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload questionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	question := payload.toModel(v, chi.URLParam(r, "templateID"))
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateQuestion(r.Context(), user.TenantID, question)
	if err != nil {
		if errors.Is(err, appraisal.ErrTemplateFrozen) {
			api.Fail(w, http.StatusConflict, "template_frozen", "template already has answers", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "question_create_failed", "failed to create question", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload questionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	question := payload.toModel(v, chi.URLParam(r, "templateID"))
	question.ID = chi.URLParam(r, "questionID")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := h.Service.UpdateQuestion(r.Context(), user.TenantID, question); err != nil {
		if errors.Is(err, appraisal.ErrTemplateFrozen) {
			api.Fail(w, http.StatusConflict, "template_frozen", "template already has answers", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "question_update_failed", "failed to update question", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "updated"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListCycles(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	cycles, err := h.Service.ListCycles(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "cycle_list_failed", "failed to list cycles", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, cycles, middleware.GetRequestID(r.Context()))
}

type cyclePayload struct {
	Name                 string `json:"name"`
	Type                 string `json:"type"`
	TemplateID           string `json:"templateId"`
	StartDate            string `json:"startDate"`
	EndDate              string `json:"endDate"`
	SelfReviewDueDate    string `json:"selfReviewDueDate"`
	ManagerReviewDueDate string `json:"managerReviewDueDate"`
	ContractID           string `json:"contractId"`
}

func (h *Handler) handleCreateCycle(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload cyclePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "cycle name is required")
	v.Required("templateId", payload.TemplateID, "template is required")
	start, _ := v.Date("startDate", payload.StartDate)
	end, _ := v.Date("endDate", payload.EndDate)
	selfDue, _ := v.Date("selfReviewDueDate", payload.SelfReviewDueDate)
	managerDue, _ := v.Date("managerReviewDueDate", payload.ManagerReviewDueDate)
	v.DateOrder("startDate", start, "endDate", end)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateCycle(r.Context(), user.TenantID, appraisal.Cycle{
		Name:                 payload.Name,
		Type:                 payload.Type,
		TemplateID:           payload.TemplateID,
		StartDate:            start,
		EndDate:              end,
		SelfReviewDueDate:    selfDue,
		ManagerReviewDueDate: managerDue,
		ContractID:           payload.ContractID,
	})
	if err != nil {
		switch {
		case errors.Is(err, appraisal.ErrUnknownCycleType), errors.Is(err, appraisal.ErrInvalidDateOrder):
			api.Fail(w, http.StatusBadRequest, "invalid_cycle", err.Error(), middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "cycle_create_failed", "failed to create cycle", middleware.GetRequestID(r.Context()))
		}
		return
	}
	h.record(r, user, "appraisal.cycle.create", "appraisal_cycle", id, payload)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetCycle(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	cycle, err := h.Service.GetCycle(r.Context(), user.TenantID, chi.URLParam(r, "cycleID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "cycle_get_failed", "failed to load cycle", middleware.GetRequestID(r.Context()))
		return
	}
	if cycle == nil {
		api.Fail(w, http.StatusNotFound, "cycle_not_found", "cycle not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, cycle, middleware.GetRequestID(r.Context()))
}

type cycleDatesPayload struct {
	StartDate            string `json:"startDate"`
	EndDate              string `json:"endDate"`
	SelfReviewDueDate    string `json:"selfReviewDueDate"`
	ManagerReviewDueDate string `json:"managerReviewDueDate"`
}

func (h *Handler) handleUpdateCycleDates(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload cycleDatesPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	start, _ := v.Date("startDate", payload.StartDate)
	end, _ := v.Date("endDate", payload.EndDate)
	selfDue, _ := v.Date("selfReviewDueDate", payload.SelfReviewDueDate)
	managerDue, _ := v.Date("managerReviewDueDate", payload.ManagerReviewDueDate)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := h.Service.UpdateCycleDates(r.Context(), user.TenantID, chi.URLParam(r, "cycleID"), start, end, selfDue, managerDue); err != nil {
		if errors.Is(err, appraisal.ErrInvalidDateOrder) {
			api.Fail(w, http.StatusBadRequest, "invalid_cycle", err.Error(), middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "cycle_update_failed", "failed to update cycle dates", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "updated"}, middleware.GetRequestID(r.Context()))
}

// Arming creates a fresh one-shot reminder config; the next scheduler pass
// expands it into scheduled emails.
func (h *Handler) handleArmReminders(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	cfg, err := h.Reminders.ArmReminders(r.Context(), user.TenantID, chi.URLParam(r, "cycleID"))
	if err != nil {
		if errors.Is(err, reminders.ErrCycleNotFound) {
			api.Fail(w, http.StatusNotFound, "cycle_not_found", "cycle not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "reminder_arm_failed", "failed to arm reminders", middleware.GetRequestID(r.Context()))
		return
	}
	h.record(r, user, "appraisal.reminders.arm", "reminder_config", cfg.ID, nil)
	api.Created(w, cfg, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListScheduledEmails(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	status := reminders.Status(r.URL.Query().Get("status"))
	rows, err := h.Reminders.ListScheduled(r.Context(), user.TenantID, chi.URLParam(r, "cycleID"), status)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "scheduled_email_list_failed", "failed to list scheduled emails", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, rows, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCycleScores(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	scores, err := h.Service.CycleScores(r.Context(), user.TenantID, chi.URLParam(r, "cycleID"))
	if err != nil {
		if errors.Is(err, appraisal.ErrCycleNotFound) {
			api.Fail(w, http.StatusNotFound, "cycle_not_found", "cycle not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "cycle_scores_failed", "failed to compute cycle scores", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, scores, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCycleDistributions(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	distributions, err := h.Service.CycleDistributions(r.Context(), user.TenantID, chi.URLParam(r, "cycleID"))
	if err != nil {
		if errors.Is(err, appraisal.ErrCycleNotFound) {
			api.Fail(w, http.StatusNotFound, "cycle_not_found", "cycle not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "cycle_distributions_failed", "failed to compute distributions", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, distributions, middleware.GetRequestID(r.Context()))
}

// canTouchAnswer enforces ownership on top of the permission gates: employees
// only reach their own contract, managers only contracts of teams they manage.
func (h *Handler) canTouchAnswer(r *http.Request, user auth.UserContext, contractID string) bool {
	switch user.RoleName {
	case auth.RoleAdmin:
		return true
	case auth.RoleManager:
		own, err := h.Core.ContractIDByUserID(r.Context(), user.TenantID, user.UserID)
		if err == nil && own == contractID {
			return true
		}
		if err != nil {
			return false
		}
		manages, err := h.Core.IsManagerOfContract(r.Context(), user.TenantID, own, contractID)
		return err == nil && manages
	default:
		own, err := h.Core.ContractIDByUserID(r.Context(), user.TenantID, user.UserID)
		return err == nil && own == contractID
	}
}

type sectionPayload struct {
	Answers     map[string]string     `json:"answers"`
	DirectScore *int                  `json:"directScore"`
	GoalScores  []appraisal.GoalScore `json:"goalScores"`
	Note        string                `json:"note"`
	Score       *int                  `json:"score"`
}

func (h *Handler) handleGetAnswer(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	contractID := chi.URLParam(r, "contractID")

	if !h.canTouchAnswer(r, user, contractID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not your appraisal", middleware.GetRequestID(r.Context()))
		return
	}

	view, err := h.Service.AnswerWithScores(r.Context(), user.TenantID, chi.URLParam(r, "cycleID"), contractID)
	if err != nil {
		if errors.Is(err, appraisal.ErrCycleNotFound) {
			api.Fail(w, http.StatusNotFound, "cycle_not_found", "cycle not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "answer_get_failed", "failed to load answer", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, view, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSaveSelf(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	contractID := chi.URLParam(r, "contractID")

	if !h.canTouchAnswer(r, user, contractID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not your appraisal", middleware.GetRequestID(r.Context()))
		return
	}

	var payload sectionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	err := h.Service.SaveSelfSection(r.Context(), user.TenantID, chi.URLParam(r, "cycleID"), contractID, payload.Answers, payload.DirectScore, payload.GoalScores)
	h.writeSaveResult(w, r, err)
}

func (h *Handler) handleSaveManager(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	contractID := chi.URLParam(r, "contractID")

	if !h.canTouchAnswer(r, user, contractID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not a contract you manage", middleware.GetRequestID(r.Context()))
		return
	}

	var payload sectionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	err := h.Service.SaveManagerSection(r.Context(), user.TenantID, chi.URLParam(r, "cycleID"), contractID, payload.Answers, payload.DirectScore, payload.GoalScores)
	h.writeSaveResult(w, r, err)
}

func (h *Handler) handleSaveOrg(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload sectionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	err := h.Service.SaveOrgSection(r.Context(), user.TenantID, chi.URLParam(r, "cycleID"), chi.URLParam(r, "contractID"), payload.Note, payload.Score)
	h.writeSaveResult(w, r, err)
}

func (h *Handler) writeSaveResult(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		if errors.Is(err, appraisal.ErrAlreadySubmitted) {
			api.Fail(w, http.StatusConflict, "already_submitted", "section already submitted", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "answer_save_failed", "failed to save answers", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "saved"}, middleware.GetRequestID(r.Context()))
}

type submitPayload struct {
	Role string `json:"role"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	contractID := chi.URLParam(r, "contractID")

	var payload submitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	role := appraisal.ReviewerRole(payload.Role)
	if !role.Valid() {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "unknown reviewer role", middleware.GetRequestID(r.Context()))
		return
	}
	if role == appraisal.ReviewerOrg && user.RoleName != auth.RoleAdmin {
		api.Fail(w, http.StatusForbidden, "forbidden", "org submission is admin only", middleware.GetRequestID(r.Context()))
		return
	}
	if role != appraisal.ReviewerOrg && !h.canTouchAnswer(r, user, contractID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not your appraisal", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.Submit(r.Context(), user.TenantID, chi.URLParam(r, "cycleID"), contractID, role); err != nil {
		switch {
		case errors.Is(err, appraisal.ErrAlreadySubmitted):
			api.Fail(w, http.StatusConflict, "already_submitted", "section already submitted", middleware.GetRequestID(r.Context()))
		case errors.Is(err, appraisal.ErrNothingToSubmit):
			api.Fail(w, http.StatusBadRequest, "nothing_to_submit", "no saved answers to submit", middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "submit_failed", "failed to submit review", middleware.GetRequestID(r.Context()))
		}
		return
	}
	h.record(r, user, "appraisal.answer.submit", "appraisal_answer", contractID, payload)
	api.Success(w, map[string]string{"status": "submitted"}, middleware.GetRequestID(r.Context()))
}

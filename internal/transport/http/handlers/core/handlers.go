package corehandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"hrflow/internal/domain/audit"
	"hrflow/internal/domain/auth"
	"hrflow/internal/domain/core"
	"hrflow/internal/transport/http/api"
	"hrflow/internal/transport/http/middleware"
	"hrflow/internal/transport/http/shared"
)

type Handler struct {
	Service *core.Service
	Perms   middleware.PermissionStore
	Audit   *audit.Service
}

func NewHandler(service *core.Service, perms middleware.PermissionStore, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc}
}

func (h *Handler) record(r *http.Request, user auth.UserContext, action, entityType, entityID string, after any) {
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, action, entityType, entityID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, after); err != nil {
		slog.Warn("audit "+action+" failed", "err", err)
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/me", h.handleMe)
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/", h.handleListEmployees)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Post("/", h.handleCreateEmployee)
		r.Route("/{employeeID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/", h.handleGetEmployee)
			r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Put("/", h.handleUpdateEmployee)
			r.With(middleware.RequirePermission(auth.PermContractsRead, h.Perms)).Get("/contracts", h.handleListContracts)
		})
	})
	r.Route("/contracts", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermContractsWrite, h.Perms)).Post("/", h.handleCreateContract)
		r.Route("/{contractID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermContractsRead, h.Perms)).Get("/", h.handleGetContract)
			r.With(middleware.RequirePermission(auth.PermContractsWrite, h.Perms)).Post("/sign", h.handleSignContract)
			r.With(middleware.RequirePermission(auth.PermContractsWrite, h.Perms)).Post("/terminate", h.handleTerminateContract)
		})
	})
	r.Route("/teams", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermTeamsRead, h.Perms)).Get("/", h.handleListTeams)
		r.With(middleware.RequirePermission(auth.PermTeamsWrite, h.Perms)).Post("/", h.handleCreateTeam)
		r.Route("/{teamID}/members", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermTeamsRead, h.Perms)).Get("/", h.handleListTeamMembers)
			r.With(middleware.RequirePermission(auth.PermTeamsWrite, h.Perms)).Put("/", h.handleUpsertTeamMember)
			r.With(middleware.RequirePermission(auth.PermTeamsWrite, h.Perms)).Delete("/{contractID}", h.handleRemoveTeamMember)
		})
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{
		"id":       user.UserID,
		"tenantId": user.TenantID,
		"roleId":   user.RoleID,
		"role":     user.RoleName,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 100, 500)

	total, err := h.Service.CountEmployees(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", middleware.GetRequestID(r.Context()))
		return
	}
	employees, err := h.Service.ListEmployees(r.Context(), user.TenantID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, employees, middleware.GetRequestID(r.Context()))
}

type employeePayload struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Position  string `json:"position"`
	StartDate string `json:"startDate"`
	Status    string `json:"status"`
}

func (p employeePayload) toModel(v *shared.Validator) core.Employee {
	v.Required("firstName", p.FirstName, "first name is required")
	v.Required("lastName", p.LastName, "last name is required")
	v.Required("email", p.Email, "email is required")
	v.Enum("status", p.Status, []string{core.EmployeeStatusActive, core.EmployeeStatusInactive}, "unknown status")

	emp := core.Employee{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Phone:     p.Phone,
		Position:  p.Position,
		Status:    p.Status,
	}
	if emp.Status == "" {
		emp.Status = core.EmployeeStatusActive
	}
	if p.StartDate != "" {
		if d, ok := v.Date("startDate", p.StartDate); ok {
			emp.StartDate = &d
		}
	}
	return emp
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	emp := payload.toModel(v)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateEmployee(r.Context(), user.TenantID, emp)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", middleware.GetRequestID(r.Context()))
		return
	}
	h.record(r, user, "core.employee.create", "employee", id, payload)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	emp, err := h.Service.GetEmployee(r.Context(), user.TenantID, chi.URLParam(r, "employeeID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_get_failed", "failed to load employee", middleware.GetRequestID(r.Context()))
		return
	}
	if emp == nil {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	emp := payload.toModel(v)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := h.Service.UpdateEmployee(r.Context(), user.TenantID, chi.URLParam(r, "employeeID"), emp); err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_update_failed", "failed to update employee", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "updated"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListContracts(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	contracts, err := h.Service.ListContracts(r.Context(), user.TenantID, chi.URLParam(r, "employeeID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "contract_list_failed", "failed to list contracts", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, contracts, middleware.GetRequestID(r.Context()))
}

type contractPayload struct {
	EmployeeID     string `json:"employeeId"`
	JobTitle       string `json:"jobTitle"`
	EmploymentType string `json:"employmentType"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
}

func (h *Handler) handleCreateContract(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload contractPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee is required")
	v.Required("jobTitle", payload.JobTitle, "job title is required")
	start, _ := v.Date("startDate", payload.StartDate)
	var end time.Time
	if payload.EndDate != "" {
		end, _ = v.Date("endDate", payload.EndDate)
		v.DateOrder("startDate", start, "endDate", end)
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	contract := core.Contract{
		EmployeeID:     payload.EmployeeID,
		JobTitle:       payload.JobTitle,
		EmploymentType: payload.EmploymentType,
		Status:         core.ContractStatusDraft,
		StartDate:      &start,
	}
	if !end.IsZero() {
		contract.EndDate = &end
	}

	id, err := h.Service.CreateContract(r.Context(), user.TenantID, contract)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "contract_create_failed", "failed to create contract", middleware.GetRequestID(r.Context()))
		return
	}
	h.record(r, user, "core.contract.create", "contract", id, payload)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetContract(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	contract, err := h.Service.GetContract(r.Context(), user.TenantID, chi.URLParam(r, "contractID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "contract_get_failed", "failed to load contract", middleware.GetRequestID(r.Context()))
		return
	}
	if contract == nil {
		api.Fail(w, http.StatusNotFound, "contract_not_found", "contract not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, contract, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSignContract(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	contractID := chi.URLParam(r, "contractID")
	if err := h.Service.SignContract(r.Context(), user.TenantID, contractID); err != nil {
		api.Fail(w, http.StatusConflict, "contract_sign_failed", "contract cannot be signed", middleware.GetRequestID(r.Context()))
		return
	}
	h.record(r, user, "core.contract.sign", "contract", contractID, nil)
	api.Success(w, map[string]string{"status": core.ContractStatusSigned}, middleware.GetRequestID(r.Context()))
}

type terminatePayload struct {
	EndDate string `json:"endDate"`
}

func (h *Handler) handleTerminateContract(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload terminatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	endDate := time.Now()
	if payload.EndDate != "" {
		d, err := shared.ParseDate(payload.EndDate)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "end date must be a valid date", middleware.GetRequestID(r.Context()))
			return
		}
		endDate = d
	}

	contractID := chi.URLParam(r, "contractID")
	if err := h.Service.TerminateContract(r.Context(), user.TenantID, contractID, endDate); err != nil {
		api.Fail(w, http.StatusConflict, "contract_terminate_failed", "contract cannot be terminated", middleware.GetRequestID(r.Context()))
		return
	}
	h.record(r, user, "core.contract.terminate", "contract", contractID, payload)
	api.Success(w, map[string]string{"status": core.ContractStatusTerminated}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListTeams(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	teams, err := h.Service.ListTeams(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "team_list_failed", "failed to list teams", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, teams, middleware.GetRequestID(r.Context()))
}

type teamPayload struct {
	Name string `json:"name"`
}

func (h *Handler) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload teamPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "team name is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateTeam(r.Context(), user.TenantID, payload.Name)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "team_create_failed", "failed to create team", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListTeamMembers(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	members, err := h.Service.ListTeamMembers(r.Context(), user.TenantID, chi.URLParam(r, "teamID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "team_member_list_failed", "failed to list team members", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, members, middleware.GetRequestID(r.Context()))
}

type teamMemberPayload struct {
	ContractID string `json:"contractId"`
	IsManager  bool   `json:"isManager"`
}

func (h *Handler) handleUpsertTeamMember(w http.ResponseWriter, r *http.Request) {
	var payload teamMemberPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("contractId", payload.ContractID, "contract is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := h.Service.UpsertTeamMember(r.Context(), chi.URLParam(r, "teamID"), payload.ContractID, payload.IsManager); err != nil {
		api.Fail(w, http.StatusInternalServerError, "team_member_upsert_failed", "failed to save team member", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "saved"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRemoveTeamMember(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.RemoveTeamMember(r.Context(), chi.URLParam(r, "teamID"), chi.URLParam(r, "contractID")); err != nil {
		api.Fail(w, http.StatusInternalServerError, "team_member_remove_failed", "failed to remove team member", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "removed"}, middleware.GetRequestID(r.Context()))
}

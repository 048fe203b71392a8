package leavehandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrflow/internal/domain/audit"
	"hrflow/internal/domain/auth"
	"hrflow/internal/domain/core"
	"hrflow/internal/domain/leave"
	"hrflow/internal/transport/http/api"
	"hrflow/internal/transport/http/middleware"
	"hrflow/internal/transport/http/shared"
)

type Handler struct {
	Service *leave.Service
	Core    *core.Service
	Perms   middleware.PermissionStore
	Audit   *audit.Service
}

func NewHandler(service *leave.Service, coreSvc *core.Service, perms middleware.PermissionStore, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Core: coreSvc, Perms: perms, Audit: auditSvc}
}

func (h *Handler) record(r *http.Request, user auth.UserContext, action, entityID string) {
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, action, "leave_request", entityID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, nil); err != nil {
		slog.Warn("audit "+action+" failed", "err", err)
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.Route("/types", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/", h.handleListTypes)
			r.With(middleware.RequirePermission(auth.PermLeaveWrite, h.Perms)).Post("/", h.handleCreateType)
		})
		r.Route("/policies", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/", h.handleListPolicies)
			r.With(middleware.RequirePermission(auth.PermLeaveWrite, h.Perms)).Post("/", h.handleCreatePolicy)
		})
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/balances", h.handleBalances)
		r.Route("/requests", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/", h.handleListRequests)
			r.With(middleware.RequirePermission(auth.PermLeaveWrite, h.Perms)).Post("/", h.handleSubmitRequest)
			r.Route("/{requestID}", func(r chi.Router) {
				r.With(middleware.RequirePermission(auth.PermLeaveApprove, h.Perms)).Post("/approve", h.handleApprove)
				r.With(middleware.RequirePermission(auth.PermLeaveApprove, h.Perms)).Post("/reject", h.handleReject)
				r.With(middleware.RequirePermission(auth.PermLeaveWrite, h.Perms)).Post("/cancel", h.handleCancel)
			})
		})
	})
}

func (h *Handler) handleListTypes(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	types, err := h.Service.ListTypes(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_type_list_failed", "failed to list leave types", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, types, middleware.GetRequestID(r.Context()))
}

type leaveTypePayload struct {
	Name   string `json:"name"`
	Code   string `json:"code"`
	IsPaid bool   `json:"isPaid"`
}

func (h *Handler) handleCreateType(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload leaveTypePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "leave type name is required")
	v.Required("code", payload.Code, "leave type code is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateType(r.Context(), user.TenantID, leave.LeaveType{
		Name:   payload.Name,
		Code:   payload.Code,
		IsPaid: payload.IsPaid,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_type_create_failed", "failed to create leave type", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	policies, err := h.Service.ListPolicies(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_policy_list_failed", "failed to list leave policies", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, policies, middleware.GetRequestID(r.Context()))
}

type policyPayload struct {
	LeaveTypeID   string  `json:"leaveTypeId"`
	AccrualRate   float64 `json:"accrualRate"`
	AccrualPeriod string  `json:"accrualPeriod"`
	Entitlement   float64 `json:"entitlement"`
	CarryOver     float64 `json:"carryOverLimit"`
	AllowNegative bool    `json:"allowNegative"`
}

func (h *Handler) handleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload policyPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("leaveTypeId", payload.LeaveTypeID, "leave type is required")
	v.Enum("accrualPeriod", payload.AccrualPeriod, []string{leave.PeriodWeekly, leave.PeriodMonthly, leave.PeriodYearly}, "unknown accrual period")
	if payload.AccrualRate < 0 {
		v.Add("accrualRate", "accrual rate cannot be negative")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreatePolicy(r.Context(), user.TenantID, leave.Policy{
		LeaveTypeID:   payload.LeaveTypeID,
		AccrualRate:   payload.AccrualRate,
		AccrualPeriod: payload.AccrualPeriod,
		Entitlement:   payload.Entitlement,
		CarryOver:     payload.CarryOver,
		AllowNegative: payload.AllowNegative,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_policy_create_failed", "failed to create leave policy", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

// resolveEmployeeID narrows the target employee. Admins and managers may pass
// ?employeeId=; everyone else is pinned to their own record.
func (h *Handler) resolveEmployeeID(r *http.Request, user auth.UserContext) (string, error) {
	requested := r.URL.Query().Get("employeeId")
	if user.RoleName == auth.RoleAdmin || user.RoleName == auth.RoleManager {
		if requested != "" {
			return requested, nil
		}
	}
	return h.Core.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
}

func (h *Handler) handleBalances(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	employeeID, err := h.resolveEmployeeID(r, user)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "no employee record for user", middleware.GetRequestID(r.Context()))
		return
	}

	balances, err := h.Service.Balances(r.Context(), user.TenantID, employeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_balance_failed", "failed to list balances", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, balances, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 100, 500)

	employeeID := r.URL.Query().Get("employeeId")
	if user.RoleName == auth.RoleEmployee {
		own, err := h.Core.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
		if err != nil {
			api.Fail(w, http.StatusNotFound, "employee_not_found", "no employee record for user", middleware.GetRequestID(r.Context()))
			return
		}
		employeeID = own
	}

	requests, err := h.Service.ListRequests(r.Context(), user.TenantID, employeeID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_request_list_failed", "failed to list leave requests", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, requests, middleware.GetRequestID(r.Context()))
}

type leaveRequestPayload struct {
	EmployeeID  string `json:"employeeId"`
	LeaveTypeID string `json:"leaveTypeId"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	StartHalf   bool   `json:"startHalf"`
	EndHalf     bool   `json:"endHalf"`
	Reason      string `json:"reason"`
}

func (h *Handler) handleSubmitRequest(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload leaveRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("leaveTypeId", payload.LeaveTypeID, "leave type is required")
	start, _ := v.Date("startDate", payload.StartDate)
	end, _ := v.Date("endDate", payload.EndDate)
	v.DateOrder("startDate", start, "endDate", end)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	employeeID := payload.EmployeeID
	if user.RoleName != auth.RoleAdmin || employeeID == "" {
		own, err := h.Core.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
		if err != nil {
			api.Fail(w, http.StatusNotFound, "employee_not_found", "no employee record for user", middleware.GetRequestID(r.Context()))
			return
		}
		employeeID = own
	}

	req, err := h.Service.SubmitRequest(r.Context(), user.TenantID, leave.Request{
		EmployeeID:  employeeID,
		LeaveTypeID: payload.LeaveTypeID,
		StartDate:   start,
		EndDate:     end,
		StartHalf:   payload.StartHalf,
		EndHalf:     payload.EndHalf,
		Reason:      payload.Reason,
	})
	if err != nil {
		switch {
		case errors.Is(err, leave.ErrInvalidRange):
			api.Fail(w, http.StatusBadRequest, "invalid_range", err.Error(), middleware.GetRequestID(r.Context()))
		case errors.Is(err, leave.ErrInsufficientBalance):
			api.Fail(w, http.StatusConflict, "insufficient_balance", "not enough leave balance", middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "leave_request_failed", "failed to submit leave request", middleware.GetRequestID(r.Context()))
		}
		return
	}
	api.Created(w, req, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := chi.URLParam(r, "requestID")
	req, err := h.Service.Approve(r.Context(), user.TenantID, requestID, user.UserID)
	if err == nil {
		h.record(r, user, "leave.request.approve", requestID)
	}
	h.writeDecision(w, r, req, err)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := chi.URLParam(r, "requestID")
	req, err := h.Service.Reject(r.Context(), user.TenantID, requestID, user.UserID)
	if err == nil {
		h.record(r, user, "leave.request.reject", requestID)
	}
	h.writeDecision(w, r, req, err)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := chi.URLParam(r, "requestID")
	req, err := h.Service.Cancel(r.Context(), user.TenantID, requestID, user.UserID)
	if err == nil {
		h.record(r, user, "leave.request.cancel", requestID)
	}
	h.writeDecision(w, r, req, err)
}

func (h *Handler) writeDecision(w http.ResponseWriter, r *http.Request, req *leave.Request, err error) {
	if err != nil {
		switch {
		case errors.Is(err, leave.ErrRequestNotFound):
			api.Fail(w, http.StatusNotFound, "leave_request_not_found", "leave request not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, leave.ErrInvalidTransition):
			api.Fail(w, http.StatusConflict, "invalid_transition", "leave request not in a decidable state", middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "leave_decision_failed", "failed to update leave request", middleware.GetRequestID(r.Context()))
		}
		return
	}
	api.Success(w, req, middleware.GetRequestID(r.Context()))
}

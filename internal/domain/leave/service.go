package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"hrflow/internal/domain/notifications"
)

var (
	ErrRequestNotFound     = errors.New("leave request not found")
	ErrInvalidTransition   = errors.New("leave request not in a decidable state")
	ErrInsufficientBalance = errors.New("insufficient leave balance")
)

// Notifier is the slice of the notifications service the leave workflow
// needs.
type Notifier interface {
	Notify(ctx context.Context, tenantID, userID, ntype, title, body string) error
}

type Service struct {
	store    StoreAPI
	notifier Notifier
	now      func() time.Time
}

func NewService(store StoreAPI, notifier Notifier) *Service {
	return &Service{store: store, notifier: notifier, now: time.Now}
}

func (s *Service) ListTypes(ctx context.Context, tenantID string) ([]LeaveType, error) {
	return s.store.ListTypes(ctx, tenantID)
}

func (s *Service) CreateType(ctx context.Context, tenantID string, payload LeaveType) (string, error) {
	if payload.Name == "" || payload.Code == "" {
		return "", errors.New("leave type needs a name and code")
	}
	return s.store.CreateType(ctx, tenantID, payload)
}

func (s *Service) ListPolicies(ctx context.Context, tenantID string) ([]Policy, error) {
	return s.store.ListPolicies(ctx, tenantID)
}

func (s *Service) CreatePolicy(ctx context.Context, tenantID string, payload Policy) (string, error) {
	switch payload.AccrualPeriod {
	case PeriodWeekly, PeriodMonthly, PeriodYearly:
	default:
		return "", fmt.Errorf("unknown accrual period %q", payload.AccrualPeriod)
	}
	return s.store.CreatePolicy(ctx, tenantID, payload)
}

func (s *Service) Balances(ctx context.Context, tenantID, employeeID string) ([]Balance, error) {
	return s.store.ListBalances(ctx, tenantID, employeeID)
}

func (s *Service) ListRequests(ctx context.Context, tenantID, employeeID string, limit, offset int) ([]Request, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.store.ListRequests(ctx, tenantID, employeeID, limit, offset)
}

// SubmitRequest validates the range, checks the balance unless the policy
// allows going negative, and reserves the days as pending.
func (s *Service) SubmitRequest(ctx context.Context, tenantID string, req Request) (*Request, error) {
	days, err := RequestDays(req.StartDate, req.EndDate, req.StartHalf, req.EndHalf)
	if err != nil {
		return nil, err
	}
	req.Days = days
	req.Status = StatusPending

	policy, err := s.store.PolicyForType(ctx, tenantID, req.LeaveTypeID)
	if err != nil {
		return nil, err
	}
	if policy == nil || !policy.AllowNegative {
		available, err := s.store.Available(ctx, tenantID, req.EmployeeID, req.LeaveTypeID)
		if err != nil {
			return nil, err
		}
		if available < days {
			return nil, ErrInsufficientBalance
		}
	}

	id, err := s.store.CreateRequest(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}
	req.ID = id
	if err := s.store.AddPending(ctx, tenantID, req.EmployeeID, req.LeaveTypeID, days); err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Service) Approve(ctx context.Context, tenantID, requestID, approverUserID string) (*Request, error) {
	req, err := s.decide(ctx, tenantID, requestID, approverUserID, StatusApproved)
	if err != nil {
		return nil, err
	}
	if err := s.store.MovePendingToUsed(ctx, tenantID, req.EmployeeID, req.LeaveTypeID, req.Days); err != nil {
		return nil, err
	}
	s.notifyEmployee(ctx, tenantID, req, notifications.TypeLeaveApproved, "Leave approved",
		fmt.Sprintf("Your leave request for %.1f days starting %s was approved.", req.Days, req.StartDate.Format("2 Jan 2006")))
	return req, nil
}

func (s *Service) Reject(ctx context.Context, tenantID, requestID, approverUserID string) (*Request, error) {
	req, err := s.decide(ctx, tenantID, requestID, approverUserID, StatusRejected)
	if err != nil {
		return nil, err
	}
	if err := s.store.ReleasePending(ctx, tenantID, req.EmployeeID, req.LeaveTypeID, req.Days); err != nil {
		return nil, err
	}
	s.notifyEmployee(ctx, tenantID, req, notifications.TypeLeaveRejected, "Leave rejected",
		fmt.Sprintf("Your leave request for %.1f days starting %s was rejected.", req.Days, req.StartDate.Format("2 Jan 2006")))
	return req, nil
}

// Cancel withdraws a request. A pending cancel releases the reservation; an
// approved cancel refunds the used days.
func (s *Service) Cancel(ctx context.Context, tenantID, requestID, actorUserID string) (*Request, error) {
	req, err := s.store.GetRequest(ctx, tenantID, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}

	switch req.Status {
	case StatusPending:
		ok, err := s.store.SetRequestStatus(ctx, tenantID, requestID, StatusPending, StatusCancelled, actorUserID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrInvalidTransition
		}
		if err := s.store.ReleasePending(ctx, tenantID, req.EmployeeID, req.LeaveTypeID, req.Days); err != nil {
			return nil, err
		}
	case StatusApproved:
		ok, err := s.store.SetRequestStatus(ctx, tenantID, requestID, StatusApproved, StatusCancelled, actorUserID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrInvalidTransition
		}
		if err := s.store.RefundUsed(ctx, tenantID, req.EmployeeID, req.LeaveTypeID, req.Days); err != nil {
			return nil, err
		}
	default:
		return nil, ErrInvalidTransition
	}

	req.Status = StatusCancelled
	return req, nil
}

func (s *Service) decide(ctx context.Context, tenantID, requestID, approverUserID string, to RequestStatus) (*Request, error) {
	req, err := s.store.GetRequest(ctx, tenantID, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	ok, err := s.store.SetRequestStatus(ctx, tenantID, requestID, StatusPending, to, approverUserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidTransition
	}
	req.Status = to
	return req, nil
}

func (s *Service) notifyEmployee(ctx context.Context, tenantID string, req *Request, ntype, title, body string) {
	if s.notifier == nil {
		return
	}
	userID, err := s.store.EmployeeUserID(ctx, tenantID, req.EmployeeID)
	if err != nil || userID == "" {
		return
	}
	if err := s.notifier.Notify(ctx, tenantID, userID, ntype, title, body); err != nil {
		slog.Warn("leave decision notification failed", "err", err)
	}
}

type AccrualSummary struct {
	PoliciesProcessed int `json:"policiesProcessed"`
	EmployeesAccrued  int `json:"employeesAccrued"`
}

// RunAccruals credits balances for every policy whose current period has
// not been accrued yet.
func (s *Service) RunAccruals(ctx context.Context, tenantID string) (AccrualSummary, error) {
	var summary AccrualSummary
	now := s.now()

	policies, err := s.store.ListPolicies(ctx, tenantID)
	if err != nil {
		return summary, err
	}
	for _, policy := range policies {
		periodStart := accrualPeriodStart(now, policy.AccrualPeriod)
		if periodStart.IsZero() || policy.AccrualRate <= 0 {
			continue
		}
		last, err := s.store.LastAccruedOn(ctx, tenantID, policy.ID)
		if err != nil {
			return summary, err
		}
		if !last.IsZero() && !last.Before(periodStart) {
			continue
		}
		accrued, err := s.store.AccrueForPolicy(ctx, tenantID, policy, periodStart)
		if err != nil {
			return summary, err
		}
		summary.PoliciesProcessed++
		summary.EmployeesAccrued += accrued
	}
	return summary, nil
}

package leave

import (
	"context"
	"time"
)

type StoreAPI interface {
	ListTypes(ctx context.Context, tenantID string) ([]LeaveType, error)
	CreateType(ctx context.Context, tenantID string, payload LeaveType) (string, error)
	ListPolicies(ctx context.Context, tenantID string) ([]Policy, error)
	CreatePolicy(ctx context.Context, tenantID string, payload Policy) (string, error)
	PolicyForType(ctx context.Context, tenantID, leaveTypeID string) (*Policy, error)

	ListBalances(ctx context.Context, tenantID, employeeID string) ([]Balance, error)
	Available(ctx context.Context, tenantID, employeeID, leaveTypeID string) (float64, error)

	CreateRequest(ctx context.Context, tenantID string, req Request) (string, error)
	GetRequest(ctx context.Context, tenantID, requestID string) (*Request, error)
	ListRequests(ctx context.Context, tenantID, employeeID string, limit, offset int) ([]Request, error)
	SetRequestStatus(ctx context.Context, tenantID, requestID string, from, to RequestStatus, decidedBy string) (bool, error)

	MovePendingToUsed(ctx context.Context, tenantID, employeeID, leaveTypeID string, days float64) error
	AddPending(ctx context.Context, tenantID, employeeID, leaveTypeID string, days float64) error
	ReleasePending(ctx context.Context, tenantID, employeeID, leaveTypeID string, days float64) error
	RefundUsed(ctx context.Context, tenantID, employeeID, leaveTypeID string, days float64) error

	EmployeeUserID(ctx context.Context, tenantID, employeeID string) (string, error)

	LastAccruedOn(ctx context.Context, tenantID, policyID string) (time.Time, error)
	AccrueForPolicy(ctx context.Context, tenantID string, policy Policy, periodStart time.Time) (int, error)
}

package leave

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeLeaveStore struct {
	StoreAPI

	requests  map[string]*Request
	available float64
	policy    *Policy
	pending   float64
	used      float64
	userIDs   map[string]string
	notified  []string
}

func newFakeLeaveStore() *fakeLeaveStore {
	return &fakeLeaveStore{
		requests: make(map[string]*Request),
		userIDs:  map[string]string{"emp-1": "user-1"},
	}
}

func (f *fakeLeaveStore) PolicyForType(ctx context.Context, tenantID, leaveTypeID string) (*Policy, error) {
	return f.policy, nil
}

func (f *fakeLeaveStore) Available(ctx context.Context, tenantID, employeeID, leaveTypeID string) (float64, error) {
	return f.available, nil
}

func (f *fakeLeaveStore) CreateRequest(ctx context.Context, tenantID string, req Request) (string, error) {
	id := "req-1"
	stored := req
	stored.ID = id
	f.requests[id] = &stored
	return id, nil
}

func (f *fakeLeaveStore) GetRequest(ctx context.Context, tenantID, requestID string) (*Request, error) {
	req, ok := f.requests[requestID]
	if !ok {
		return nil, nil
	}
	copied := *req
	return &copied, nil
}

func (f *fakeLeaveStore) SetRequestStatus(ctx context.Context, tenantID, requestID string, from, to RequestStatus, decidedBy string) (bool, error) {
	req, ok := f.requests[requestID]
	if !ok || req.Status != from {
		return false, nil
	}
	req.Status = to
	return true, nil
}

func (f *fakeLeaveStore) AddPending(ctx context.Context, tenantID, employeeID, leaveTypeID string, days float64) error {
	f.pending += days
	return nil
}

func (f *fakeLeaveStore) MovePendingToUsed(ctx context.Context, tenantID, employeeID, leaveTypeID string, days float64) error {
	f.pending -= days
	f.used += days
	f.available -= days
	return nil
}

func (f *fakeLeaveStore) ReleasePending(ctx context.Context, tenantID, employeeID, leaveTypeID string, days float64) error {
	f.pending -= days
	return nil
}

func (f *fakeLeaveStore) RefundUsed(ctx context.Context, tenantID, employeeID, leaveTypeID string, days float64) error {
	f.used -= days
	f.available += days
	return nil
}

func (f *fakeLeaveStore) EmployeeUserID(ctx context.Context, tenantID, employeeID string) (string, error) {
	return f.userIDs[employeeID], nil
}

type fakeNotifier struct{ sent []string }

func (n *fakeNotifier) Notify(ctx context.Context, tenantID, userID, ntype, title, body string) error {
	n.sent = append(n.sent, ntype)
	return nil
}

func pendingRequest() Request {
	return Request{
		EmployeeID:  "emp-1",
		LeaveTypeID: "lt-1",
		StartDate:   date(2026, 3, 2),
		EndDate:     date(2026, 3, 6),
	}
}

func TestSubmitRequestReservesDays(t *testing.T) {
	store := newFakeLeaveStore()
	store.available = 10
	svc := NewService(store, nil)

	req, err := svc.SubmitRequest(context.Background(), "tenant-1", pendingRequest())
	if err != nil {
		t.Fatalf("SubmitRequest: %v", err)
	}
	if req.Days != 5 {
		t.Errorf("days = %v, want 5", req.Days)
	}
	if req.Status != StatusPending {
		t.Errorf("status = %q, want pending", req.Status)
	}
	if store.pending != 5 {
		t.Errorf("pending balance = %v, want 5", store.pending)
	}
}

func TestSubmitRequestInsufficientBalance(t *testing.T) {
	store := newFakeLeaveStore()
	store.available = 2
	svc := NewService(store, nil)

	_, err := svc.SubmitRequest(context.Background(), "tenant-1", pendingRequest())
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}
}

func TestSubmitRequestNegativeAllowed(t *testing.T) {
	store := newFakeLeaveStore()
	store.available = 0
	store.policy = &Policy{AllowNegative: true}
	svc := NewService(store, nil)

	if _, err := svc.SubmitRequest(context.Background(), "tenant-1", pendingRequest()); err != nil {
		t.Fatalf("negative-allowed submit: %v", err)
	}
}

func TestApproveDeductsAndNotifies(t *testing.T) {
	store := newFakeLeaveStore()
	store.available = 10
	notifier := &fakeNotifier{}
	svc := NewService(store, notifier)

	req, err := svc.SubmitRequest(context.Background(), "tenant-1", pendingRequest())
	if err != nil {
		t.Fatalf("SubmitRequest: %v", err)
	}

	approved, err := svc.Approve(context.Background(), "tenant-1", req.ID, "mgr-user")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if approved.Status != StatusApproved {
		t.Errorf("status = %q, want approved", approved.Status)
	}
	if store.used != 5 || store.pending != 0 || store.available != 5 {
		t.Errorf("balance used=%v pending=%v available=%v, want 5/0/5", store.used, store.pending, store.available)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("notifications sent = %d, want 1", len(notifier.sent))
	}
}

func TestApproveTwiceRejected(t *testing.T) {
	store := newFakeLeaveStore()
	store.available = 10
	svc := NewService(store, nil)

	req, _ := svc.SubmitRequest(context.Background(), "tenant-1", pendingRequest())
	if _, err := svc.Approve(context.Background(), "tenant-1", req.ID, "mgr-user"); err != nil {
		t.Fatalf("first approve: %v", err)
	}
	if _, err := svc.Approve(context.Background(), "tenant-1", req.ID, "mgr-user"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second approve err = %v, want ErrInvalidTransition", err)
	}
}

func TestCancelApprovedRefunds(t *testing.T) {
	store := newFakeLeaveStore()
	store.available = 10
	svc := NewService(store, nil)

	req, _ := svc.SubmitRequest(context.Background(), "tenant-1", pendingRequest())
	if _, err := svc.Approve(context.Background(), "tenant-1", req.ID, "mgr-user"); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	cancelled, err := svc.Cancel(context.Background(), "tenant-1", req.ID, "user-1")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Errorf("status = %q, want cancelled", cancelled.Status)
	}
	if store.used != 0 || store.available != 10 {
		t.Errorf("balance used=%v available=%v after refund, want 0/10", store.used, store.available)
	}
}

func TestRejectReleasesPending(t *testing.T) {
	store := newFakeLeaveStore()
	store.available = 10
	svc := NewService(store, nil)

	req, _ := svc.SubmitRequest(context.Background(), "tenant-1", pendingRequest())
	if _, err := svc.Reject(context.Background(), "tenant-1", req.ID, "mgr-user"); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if store.pending != 0 || store.available != 10 {
		t.Errorf("balance pending=%v available=%v, want 0/10", store.pending, store.available)
	}
}

type fakeAccrualStore struct {
	StoreAPI

	policies []Policy
	lastRun  map[string]time.Time
	accruals []string
}

func (f *fakeAccrualStore) ListPolicies(ctx context.Context, tenantID string) ([]Policy, error) {
	return f.policies, nil
}

func (f *fakeAccrualStore) LastAccruedOn(ctx context.Context, tenantID, policyID string) (time.Time, error) {
	return f.lastRun[policyID], nil
}

func (f *fakeAccrualStore) AccrueForPolicy(ctx context.Context, tenantID string, policy Policy, periodStart time.Time) (int, error) {
	f.accruals = append(f.accruals, policy.ID)
	return 3, nil
}

func TestRunAccrualsSkipsCurrentPeriod(t *testing.T) {
	store := &fakeAccrualStore{
		policies: []Policy{
			{ID: "pol-due", LeaveTypeID: "lt-1", AccrualRate: 1.5, AccrualPeriod: PeriodMonthly},
			{ID: "pol-done", LeaveTypeID: "lt-2", AccrualRate: 1.5, AccrualPeriod: PeriodMonthly},
		},
		lastRun: map[string]time.Time{"pol-done": date(2026, 3, 1)},
	}
	svc := NewService(store, nil)
	svc.now = func() time.Time { return date(2026, 3, 15) }

	summary, err := svc.RunAccruals(context.Background(), "tenant-1")
	if err != nil {
		t.Fatalf("RunAccruals: %v", err)
	}
	if summary.PoliciesProcessed != 1 || summary.EmployeesAccrued != 3 {
		t.Fatalf("summary = %+v, want 1 policy and 3 employees", summary)
	}
	if len(store.accruals) != 1 || store.accruals[0] != "pol-due" {
		t.Fatalf("accrued policies = %v, want [pol-due]", store.accruals)
	}
}

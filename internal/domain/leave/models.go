package leave

import "time"

type LeaveType struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	IsPaid    bool      `json:"isPaid"`
	CreatedAt time.Time `json:"createdAt"`
}

type Policy struct {
	ID            string  `json:"id"`
	LeaveTypeID   string  `json:"leaveTypeId"`
	AccrualRate   float64 `json:"accrualRate"`
	AccrualPeriod string  `json:"accrualPeriod"`
	Entitlement   float64 `json:"entitlement"`
	CarryOver     float64 `json:"carryOverLimit"`
	AllowNegative bool    `json:"allowNegative"`
}

type Balance struct {
	LeaveTypeID string  `json:"leaveTypeId"`
	LeaveType   string  `json:"leaveType"`
	Available   float64 `json:"available"`
	Pending     float64 `json:"pending"`
	Used        float64 `json:"used"`
}

type Request struct {
	ID          string        `json:"id"`
	EmployeeID  string        `json:"employeeId"`
	LeaveTypeID string        `json:"leaveTypeId"`
	StartDate   time.Time     `json:"startDate"`
	EndDate     time.Time     `json:"endDate"`
	StartHalf   bool          `json:"startHalf"`
	EndHalf     bool          `json:"endHalf"`
	Days        float64       `json:"days"`
	Reason      string        `json:"reason"`
	Status      RequestStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
}

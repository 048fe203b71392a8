package core

const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"

	EmployeeStatusActive   = "active"
	EmployeeStatusInactive = "inactive"

	ContractStatusDraft      = "draft"
	ContractStatusSigned     = "signed"
	ContractStatusTerminated = "terminated"
)

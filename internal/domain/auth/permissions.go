package auth

const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

var DefaultRoles = []string{RoleAdmin, RoleManager, RoleEmployee}

const (
	PermEmployeesRead   = "core.employees.read"
	PermEmployeesWrite  = "core.employees.write"
	PermContractsRead   = "core.contracts.read"
	PermContractsWrite  = "core.contracts.write"
	PermTeamsRead       = "core.teams.read"
	PermTeamsWrite      = "core.teams.write"
	PermLeaveRead       = "leave.read"
	PermLeaveWrite      = "leave.write"
	PermLeaveApprove    = "leave.approve"
	PermAppraisalRead   = "appraisal.read"
	PermAppraisalWrite  = "appraisal.write"
	PermAppraisalReview = "appraisal.review"
	PermAppraisalAdmin  = "appraisal.admin"
	PermDocumentsRead   = "documents.read"
	PermDocumentsWrite  = "documents.write"
	PermJobAppsRead     = "jobapps.read"
	PermJobAppsWrite    = "jobapps.write"
	PermOnboardingRead  = "onboarding.read"
	PermOnboardingWrite = "onboarding.write"
	PermReportsRead     = "reports.read"
	PermAuditRead       = "audit.read"
	PermJobsRun         = "jobs.run"
)

var DefaultPermissions = []string{
	PermEmployeesRead,
	PermEmployeesWrite,
	PermContractsRead,
	PermContractsWrite,
	PermTeamsRead,
	PermTeamsWrite,
	PermLeaveRead,
	PermLeaveWrite,
	PermLeaveApprove,
	PermAppraisalRead,
	PermAppraisalWrite,
	PermAppraisalReview,
	PermAppraisalAdmin,
	PermDocumentsRead,
	PermDocumentsWrite,
	PermJobAppsRead,
	PermJobAppsWrite,
	PermOnboardingRead,
	PermOnboardingWrite,
	PermReportsRead,
	PermAuditRead,
	PermJobsRun,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermEmployeesRead,
		PermContractsRead,
		PermTeamsRead,
		PermLeaveRead,
		PermLeaveWrite,
		PermAppraisalRead,
		PermAppraisalWrite,
		PermDocumentsRead,
		PermDocumentsWrite,
		PermOnboardingRead,
	},
	RoleManager: {
		PermEmployeesRead,
		PermContractsRead,
		PermTeamsRead,
		PermLeaveRead,
		PermLeaveWrite,
		PermLeaveApprove,
		PermAppraisalRead,
		PermAppraisalWrite,
		PermAppraisalReview,
		PermDocumentsRead,
		PermDocumentsWrite,
		PermOnboardingRead,
		PermReportsRead,
	},
	RoleAdmin: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermContractsRead,
		PermContractsWrite,
		PermTeamsRead,
		PermTeamsWrite,
		PermLeaveRead,
		PermLeaveWrite,
		PermLeaveApprove,
		PermAppraisalRead,
		PermAppraisalWrite,
		PermAppraisalReview,
		PermAppraisalAdmin,
		PermDocumentsRead,
		PermDocumentsWrite,
		PermJobAppsRead,
		PermJobAppsWrite,
		PermOnboardingRead,
		PermOnboardingWrite,
		PermReportsRead,
		PermAuditRead,
		PermJobsRun,
	},
}

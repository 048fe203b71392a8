package notifications

const (
	TypeLeaveSubmitted     = "leave_submitted"
	TypeLeaveApproved      = "leave_approved"
	TypeLeaveRejected      = "leave_rejected"
	TypeLeaveCancelled     = "leave_cancelled"
	TypeCycleStarted       = "appraisal_cycle_started"
	TypeReviewSubmitted    = "appraisal_review_submitted"
	TypeOnboardingAssigned = "onboarding_assigned"
	TypeStageChanged       = "application_stage_changed"
)

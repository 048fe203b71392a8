package appraisal

import "time"

type Cycle struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Type                 string    `json:"type"`
	TemplateID           string    `json:"templateId"`
	StartDate            time.Time `json:"startDate"`
	EndDate              time.Time `json:"endDate"`
	SelfReviewDueDate    time.Time `json:"selfReviewDueDate"`
	ManagerReviewDueDate time.Time `json:"managerReviewDueDate"`
	// ContractID scopes the cycle to a single employee contract; empty means
	// org-wide.
	ContractID string    `json:"contractId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type ScaleLabel struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

type TemplateQuestion struct {
	ID          string       `json:"id"`
	TemplateID  string       `json:"templateId"`
	Group       string       `json:"group"`
	Type        string       `json:"type"`
	Prompt      string       `json:"prompt"`
	Required    bool         `json:"required"`
	Options     []string     `json:"options,omitempty"`
	ScaleLabels []ScaleLabel `json:"scaleLabels,omitempty"`
	Position    int          `json:"position"`
}

type Template struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// GoalScore carries the per-goal 1-5 scores for objectives cycles; zero means
// not yet scored by that role.
type GoalScore struct {
	GoalID       string `json:"goalId"`
	Title        string `json:"title"`
	SelfScore    int    `json:"selfScore"`
	ManagerScore int    `json:"managerScore"`
}

// Answer is the single row per (contract, cycle). Section fields are mutated
// by their owning role until that role submits; rows are never deleted.
type Answer struct {
	ID                  string            `json:"id"`
	ContractID          string            `json:"contractId"`
	CycleID             string            `json:"cycleId"`
	SelfAnswers         map[string]string `json:"selfAnswers,omitempty"`
	ManagerAnswers      map[string]string `json:"managerAnswers,omitempty"`
	OrgNote             string            `json:"orgNote,omitempty"`
	DirectScore         *int              `json:"directScore,omitempty"`
	ManagerDirectScore  *int              `json:"managerDirectScore,omitempty"`
	OrgScore            *int              `json:"orgScore,omitempty"`
	GoalScores          []GoalScore       `json:"goalScores,omitempty"`
	EmployeeSubmittedAt *time.Time        `json:"employeeSubmissionDate,omitempty"`
	ManagerSubmittedAt  *time.Time        `json:"managerSubmissionDate,omitempty"`
	OrgSubmittedAt      *time.Time        `json:"orgSubmissionDate,omitempty"`
	UpdatedAt           time.Time         `json:"updatedAt"`
}

func (a *Answer) Submitted(role ReviewerRole) bool {
	if a == nil {
		return false
	}
	switch role {
	case ReviewerSelf:
		return a.EmployeeSubmittedAt != nil
	case ReviewerManager:
		return a.ManagerSubmittedAt != nil
	case ReviewerOrg:
		return a.OrgSubmittedAt != nil
	}
	return false
}

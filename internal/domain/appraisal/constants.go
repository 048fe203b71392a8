package appraisal

// Cycle type values are wire-compatible with historical rows, including the
// misspelled objectives value.
const (
	CycleTypeDirectScore = "direct_score"
	CycleTypeObjectives  = "objectives_goals_accessment"
)

const (
	QuestionGroupEmployee       = "employee"
	QuestionGroupManager        = "manager"
	QuestionGroupPrivateManager = "private_manager_assessment"
	QuestionGroupGrowth         = "growth_and_development"
	QuestionGroupCompanyValues  = "company_values"
	QuestionGroupCompetencies   = "competencies"
)

const (
	QuestionTypeScale       = "scale"
	QuestionTypeYesNo       = "yesno"
	QuestionTypeText        = "text"
	QuestionTypeMultiselect = "multiselect"
	QuestionTypeSelect      = "select"
)

// ReviewerRole discriminates the three independently tracked review streams.
type ReviewerRole string

const (
	ReviewerSelf    ReviewerRole = "self"
	ReviewerManager ReviewerRole = "manager"
	ReviewerOrg     ReviewerRole = "org"
)

func (r ReviewerRole) Valid() bool {
	switch r {
	case ReviewerSelf, ReviewerManager, ReviewerOrg:
		return true
	}
	return false
}

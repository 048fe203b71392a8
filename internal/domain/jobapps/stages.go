package jobapps

import (
	"errors"
	"fmt"
)

var ErrInvalidStageMove = errors.New("invalid stage transition")

// Stage is the closed progression of a job application. Stages only move
// forward, ending in hired or rejected.
type Stage string

const (
	StageApplied   Stage = "applied"
	StageScreening Stage = "screening"
	StageInterview Stage = "interview"
	StageOffer     Stage = "offer"
	StageHired     Stage = "hired"
	StageRejected  Stage = "rejected"
)

func (s Stage) Valid() bool {
	switch s {
	case StageApplied, StageScreening, StageInterview, StageOffer, StageHired, StageRejected:
		return true
	}
	return false
}

func (s Stage) Terminal() bool {
	return s == StageHired || s == StageRejected
}

// nextStages maps each stage to the stages it may move into. Rejection is
// allowed from any non-terminal stage.
var nextStages = map[Stage][]Stage{
	StageApplied:   {StageScreening, StageRejected},
	StageScreening: {StageInterview, StageRejected},
	StageInterview: {StageOffer, StageRejected},
	StageOffer:     {StageHired, StageRejected},
}

// CanTransition reports whether an application may move from one stage to
// another.
func CanTransition(from, to Stage) bool {
	for _, allowed := range nextStages[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateTransition is CanTransition with a descriptive error.
func ValidateTransition(from, to Stage) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown stage %q", ErrInvalidStageMove, to)
	}
	if from.Terminal() {
		return fmt.Errorf("%w: application already %s", ErrInvalidStageMove, from)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidStageMove, from, to)
	}
	return nil
}

package jobapps

import "testing"

func TestStageProgression(t *testing.T) {
	allowed := []struct{ from, to Stage }{
		{StageApplied, StageScreening},
		{StageScreening, StageInterview},
		{StageInterview, StageOffer},
		{StageOffer, StageHired},
		{StageApplied, StageRejected},
		{StageOffer, StageRejected},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s must be allowed", tc.from, tc.to)
		}
	}

	forbidden := []struct{ from, to Stage }{
		{StageApplied, StageOffer},
		{StageScreening, StageApplied},
		{StageHired, StageRejected},
		{StageRejected, StageApplied},
		{StageOffer, StageScreening},
	}
	for _, tc := range forbidden {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s must be forbidden", tc.from, tc.to)
		}
	}
}

func TestValidateTransitionErrors(t *testing.T) {
	if err := ValidateTransition(StageHired, StageRejected); err == nil {
		t.Error("terminal stage must not transition")
	}
	if err := ValidateTransition(StageApplied, Stage("parked")); err == nil {
		t.Error("unknown target stage must error")
	}
	if err := ValidateTransition(StageApplied, StageScreening); err != nil {
		t.Errorf("valid transition errored: %v", err)
	}
}

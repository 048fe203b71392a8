package appraisal

import (
	"math"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestDirectScoreMissingAnswer(t *testing.T) {
	result := DirectScore(nil, ReviewerSelf)
	if result.Valid {
		t.Fatal("expected invalid result for missing answer")
	}
	if result.Label != NoScoreLabel {
		t.Fatalf("expected %q label, got %q", NoScoreLabel, result.Label)
	}

	result = DirectScore(&Answer{}, ReviewerManager)
	if result.Valid || result.Label != NoScoreLabel {
		t.Fatalf("expected no score for unset manager score, got %+v", result)
	}
}

func TestDirectScoreLabels(t *testing.T) {
	cases := map[int]string{
		1: "Poor",
		2: "Needs Improvement",
		3: "Meets Expectations",
		4: "Exceeds Expectations",
		5: "Excellent",
	}
	for score, want := range cases {
		result := DirectScore(&Answer{DirectScore: intPtr(score)}, ReviewerSelf)
		if !result.Valid || result.Label != want || result.Score != float64(score) {
			t.Fatalf("score %d: expected %q, got %+v", score, want, result)
		}
	}

	result := DirectScore(&Answer{DirectScore: intPtr(7)}, ReviewerSelf)
	if result.Valid {
		t.Fatalf("expected out-of-range score to be invalid, got %+v", result)
	}
}

func TestObjectivesFinalScoreSelfVsManager(t *testing.T) {
	answer := &Answer{
		GoalScores: []GoalScore{
			{GoalID: "g1", SelfScore: 4, ManagerScore: 3},
			{GoalID: "g2", SelfScore: 5, ManagerScore: 4},
			{GoalID: "g3", SelfScore: 3, ManagerScore: 0},
		},
	}

	self := ObjectivesFinalScore(answer, ReviewerSelf)
	if !self.Valid || self.Score != 4 {
		t.Fatalf("expected self score 4, got %+v", self)
	}

	// Manager scored only two goals; the unscored one is skipped.
	manager := ObjectivesFinalScore(answer, ReviewerManager)
	if !manager.Valid || manager.Score != 3.5 {
		t.Fatalf("expected manager score 3.5, got %+v", manager)
	}
}

func TestObjectivesFinalScoreNoScoredGoals(t *testing.T) {
	answer := &Answer{GoalScores: []GoalScore{{GoalID: "g1"}, {GoalID: "g2"}}}
	result := ObjectivesFinalScore(answer, ReviewerManager)
	if result.Valid || result.Label != NoScoreLabel {
		t.Fatalf("expected no score, got %+v", result)
	}
}

func TestFinalScoreUnknownCycleType(t *testing.T) {
	result := FinalScore("something_else", &Answer{DirectScore: intPtr(4)}, ReviewerSelf)
	if result.Valid {
		t.Fatalf("expected unknown cycle type to degrade to no score, got %+v", result)
	}
}

func TestScaleDistributionPercentagesSumTo100(t *testing.T) {
	buckets := ScaleDistribution([]int{1, 2, 2, 3, 3, 3, 5})
	var sum float64
	var count int
	for _, bucket := range buckets {
		sum += bucket.Percent
		count += bucket.Count
	}
	if count != 7 {
		t.Fatalf("expected 7 counted answers, got %d", count)
	}
	if math.Abs(sum-100) > 1e-9 {
		t.Fatalf("expected percentages to sum to 100, got %v", sum)
	}
	if buckets[3].Count != 0 || buckets[3].Percent != 0 {
		t.Fatalf("expected empty bucket for 4, got %+v", buckets[3])
	}
}

func TestScaleDistributionEmpty(t *testing.T) {
	buckets := ScaleDistribution(nil)
	if len(buckets) != 5 {
		t.Fatalf("expected 5 buckets, got %d", len(buckets))
	}
	for _, bucket := range buckets {
		if bucket.Percent != 0 || bucket.Count != 0 {
			t.Fatalf("expected all-zero buckets, got %+v", bucket)
		}
	}
}

func TestScaleDistributionIgnoresOutOfRange(t *testing.T) {
	buckets := ScaleDistribution([]int{0, 6, 3, 3})
	if buckets[2].Count != 2 || buckets[2].Percent != 100 {
		t.Fatalf("expected only in-range answers counted, got %+v", buckets[2])
	}
}

func TestYesNoDistribution(t *testing.T) {
	buckets := YesNoDistribution([]string{"yes", "Yes", "no", " maybe "})
	if buckets[0].Count != 2 || buckets[1].Count != 1 {
		t.Fatalf("unexpected counts: %+v", buckets)
	}
	if math.Abs(buckets[0].Percent+buckets[1].Percent-100) > 1e-9 {
		t.Fatalf("expected percentages to sum to 100, got %+v", buckets)
	}

	empty := YesNoDistribution(nil)
	if empty[0].Percent != 0 || empty[1].Percent != 0 {
		t.Fatalf("expected zero percentages, got %+v", empty)
	}
}

func TestMultiselectRoundTrip(t *testing.T) {
	cases := []string{
		"remote,hybrid,onsite",
		"single",
		"b,a,c",
	}
	for _, raw := range cases {
		if got := JoinMultiselect(SplitMultiselect(raw)); got != raw {
			t.Fatalf("round trip broke ordering: %q -> %q", raw, got)
		}
	}
	if SplitMultiselect("") != nil {
		t.Fatal("expected nil for empty multiselect")
	}
}

func TestQuestionDistributionUsesAnswerGroup(t *testing.T) {
	question := TemplateQuestion{ID: "q1", Group: QuestionGroupManager, Type: QuestionTypeScale}
	answers := []Answer{
		{SelfAnswers: map[string]string{"q1": "1"}, ManagerAnswers: map[string]string{"q1": "4"}},
		{ManagerAnswers: map[string]string{"q1": "4"}},
		{ManagerAnswers: map[string]string{"q1": "bogus"}},
	}

	buckets := QuestionDistribution(question, answers)
	if buckets[3].Count != 2 || buckets[3].Percent != 100 {
		t.Fatalf("expected manager answers only, got %+v", buckets)
	}
}

package appraisal

import (
	"math"
	"strings"
)

// NoScoreLabel is rendered wherever a score cannot be computed. Scoring never
// fails: missing or malformed data degrades to an invalid ScoreResult.
const NoScoreLabel = "N/A"

type ScoreResult struct {
	Valid bool    `json:"valid"`
	Score float64 `json:"score"`
	Label string  `json:"label"`
}

var directScoreLabels = [...]string{
	1: "Poor",
	2: "Needs Improvement",
	3: "Meets Expectations",
	4: "Exceeds Expectations",
	5: "Excellent",
}

// DirectScoreLabel maps a 1-5 ordinal to its fixed label.
func DirectScoreLabel(score int) (string, bool) {
	if score < 1 || score > 5 {
		return NoScoreLabel, false
	}
	return directScoreLabels[score], true
}

// DirectScore resolves the 1-5 rating for a reviewer role on a direct-score
// cycle. A nil answer or an unset score yields an invalid result.
func DirectScore(answer *Answer, role ReviewerRole) ScoreResult {
	if answer == nil {
		return ScoreResult{Label: NoScoreLabel}
	}
	var raw *int
	switch role {
	case ReviewerSelf:
		raw = answer.DirectScore
	case ReviewerManager:
		raw = answer.ManagerDirectScore
	case ReviewerOrg:
		raw = answer.OrgScore
	default:
		return ScoreResult{Label: NoScoreLabel}
	}
	if raw == nil {
		return ScoreResult{Label: NoScoreLabel}
	}
	label, ok := DirectScoreLabel(*raw)
	if !ok {
		return ScoreResult{Label: NoScoreLabel}
	}
	return ScoreResult{Valid: true, Score: float64(*raw), Label: label}
}

// ObjectivesFinalScore aggregates goal-level 1-5 scores into the final score
// for one reviewer role: the mean of scored goals rounded to two decimals.
// Unscored goals (zero) and out-of-range values are skipped, so a partially
// scored answer still produces a score over what exists.
func ObjectivesFinalScore(answer *Answer, role ReviewerRole) ScoreResult {
	if answer == nil || len(answer.GoalScores) == 0 {
		return ScoreResult{Label: NoScoreLabel}
	}

	var sum, counted int
	for _, goal := range answer.GoalScores {
		score := goal.SelfScore
		if role == ReviewerManager {
			score = goal.ManagerScore
		}
		if score < 1 || score > 5 {
			continue
		}
		sum += score
		counted++
	}
	if counted == 0 {
		return ScoreResult{Label: NoScoreLabel}
	}

	mean := math.Round(float64(sum)/float64(counted)*100) / 100
	label, _ := DirectScoreLabel(int(math.Round(mean)))
	return ScoreResult{Valid: true, Score: mean, Label: label}
}

// FinalScore dispatches on the cycle type. Unknown types degrade to no score.
func FinalScore(cycleType string, answer *Answer, role ReviewerRole) ScoreResult {
	switch cycleType {
	case CycleTypeDirectScore:
		return DirectScore(answer, role)
	case CycleTypeObjectives:
		return ObjectivesFinalScore(answer, role)
	}
	return ScoreResult{Label: NoScoreLabel}
}

type Bucket struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// ScaleDistribution buckets raw 1-5 answers into a percentage distribution.
// Out-of-range values are ignored; with nothing answered every bucket is 0%.
func ScaleDistribution(values []int) []Bucket {
	counts := make([]int, 6)
	total := 0
	for _, v := range values {
		if v < 1 || v > 5 {
			continue
		}
		counts[v]++
		total++
	}

	out := make([]Bucket, 0, 5)
	for v := 1; v <= 5; v++ {
		bucket := Bucket{Label: directScoreLabels[v], Count: counts[v]}
		if total > 0 {
			bucket.Percent = float64(counts[v]) / float64(total) * 100
		}
		out = append(out, bucket)
	}
	return out
}

// YesNoDistribution is the two-bucket variant of ScaleDistribution.
func YesNoDistribution(values []string) []Bucket {
	var yes, no int
	for _, v := range values {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "yes", "true":
			yes++
		case "no", "false":
			no++
		}
	}
	total := yes + no

	out := []Bucket{{Label: "Yes", Count: yes}, {Label: "No", Count: no}}
	if total > 0 {
		out[0].Percent = float64(yes) / float64(total) * 100
		out[1].Percent = float64(no) / float64(total) * 100
	}
	return out
}

// Multiselect answers are persisted as comma-joined strings. Order is
// preserved in both directions; options must not contain commas.
func SplitMultiselect(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func JoinMultiselect(options []string) string {
	return strings.Join(options, ",")
}

// QuestionDistribution computes the answer distribution for one question
// across a set of answers. The question's group decides whether the self or
// the manager answer map is consulted.
func QuestionDistribution(question TemplateQuestion, answers []Answer) []Bucket {
	raw := collectRawAnswers(question, answers)

	switch question.Type {
	case QuestionTypeScale:
		values := make([]int, 0, len(raw))
		for _, v := range raw {
			if n, ok := parseScaleValue(v); ok {
				values = append(values, n)
			}
		}
		return ScaleDistribution(values)
	case QuestionTypeYesNo:
		return YesNoDistribution(raw)
	}
	return nil
}

func collectRawAnswers(question TemplateQuestion, answers []Answer) []string {
	fromManager := question.Group == QuestionGroupManager || question.Group == QuestionGroupPrivateManager
	var out []string
	for i := range answers {
		source := answers[i].SelfAnswers
		if fromManager {
			source = answers[i].ManagerAnswers
		}
		if value, ok := source[question.ID]; ok && strings.TrimSpace(value) != "" {
			out = append(out, value)
		}
	}
	return out
}

func parseScaleValue(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if len(raw) != 1 || raw[0] < '1' || raw[0] > '5' {
		return 0, false
	}
	return int(raw[0] - '0'), true
}

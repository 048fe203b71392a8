package reports

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"hrflow/internal/domain/appraisal"
)

// Appraisals is the slice of the appraisal service the report needs.
type Appraisals interface {
	GetCycle(ctx context.Context, tenantID, cycleID string) (*appraisal.Cycle, error)
	CycleScores(ctx context.Context, tenantID, cycleID string) ([]appraisal.ContractScore, error)
	CycleDistributions(ctx context.Context, tenantID, cycleID string) ([]appraisal.QuestionDistributionView, error)
}

type Service struct {
	appraisals Appraisals
}

func NewService(appraisals Appraisals) *Service {
	return &Service{appraisals: appraisals}
}

// CycleSummaryPDF renders the cycle's completion counts, per-contract final
// scores and question distributions as a PDF.
func (s *Service) CycleSummaryPDF(ctx context.Context, tenantID, cycleID string) ([]byte, error) {
	cycle, err := s.appraisals.GetCycle(ctx, tenantID, cycleID)
	if err != nil {
		return nil, err
	}
	if cycle == nil {
		return nil, appraisal.ErrCycleNotFound
	}
	scores, err := s.appraisals.CycleScores(ctx, tenantID, cycleID)
	if err != nil {
		return nil, err
	}
	distributions, err := s.appraisals.CycleDistributions(ctx, tenantID, cycleID)
	if err != nil {
		return nil, err
	}

	submitted := 0
	for _, score := range scores {
		if score.Submitted {
			submitted++
		}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Appraisal Cycle Summary")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Cycle: %s", cycle.Name))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s", cycle.StartDate.Format("2006-01-02"), cycle.EndDate.Format("2006-01-02")))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Participants: %d, fully submitted: %d", len(scores), submitted))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Final scores")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(70, 7, "Contract", "1", 0, "", false, 0, "")
	pdf.CellFormat(45, 7, "Self", "1", 0, "", false, 0, "")
	pdf.CellFormat(45, 7, "Manager", "1", 1, "", false, 0, "")
	for _, score := range scores {
		pdf.CellFormat(70, 7, score.ContractID, "1", 0, "", false, 0, "")
		pdf.CellFormat(45, 7, formatScore(score.SelfScore), "1", 0, "", false, 0, "")
		pdf.CellFormat(45, 7, formatScore(score.ManagerScore), "1", 1, "", false, 0, "")
	}
	pdf.Ln(6)

	for _, dist := range distributions {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 7, dist.Question.Prompt, "", "", false)
		pdf.SetFont("Helvetica", "", 10)
		for _, bucket := range dist.Buckets {
			pdf.CellFormat(70, 6, bucket.Label, "1", 0, "", false, 0, "")
			pdf.CellFormat(30, 6, fmt.Sprintf("%d", bucket.Count), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 6, fmt.Sprintf("%.1f%%", bucket.Percent), "1", 1, "R", false, 0, "")
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatScore(score appraisal.ScoreResult) string {
	if !score.Valid {
		return appraisal.NoScoreLabel
	}
	return fmt.Sprintf("%.2f (%s)", score.Score, score.Label)
}

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/assessortools/covmap/coverage"
	"github.com/assessortools/covmap/mapping"
	"github.com/assessortools/covmap/session"
)

// Confidence bands for audit review prioritization.
const (
	lowConfidenceBand  = 0.7
	highConfidenceBand = 0.8
)

// Audit recommendation thresholds, in percent.
const (
	auditMinCoverage     = 80.0
	auditMaxLowConfShare = 30.0
)

// AuditReport is the reviewer-facing synthesis of one session: coverage,
// per-question mapping rows with review bands, and recommendations.
type AuditReport struct {
	SessionID      string    `json:"session_id"`
	StandardCode   string    `json:"standard_code"`
	StandardTitle  string    `json:"standard_title"`
	AssessmentType string    `json:"assessment_type"`
	Filename       string    `json:"filename"`
	GeneratedAt    time.Time `json:"generated_at"`

	Coverage *coverage.Report `json:"coverage"`
	Tasks    []coverage.Task  `json:"remediation_tasks"`

	Rows []AuditRow `json:"mapping_rows"`

	// PendingReview counts degraded mappings awaiting manual confirmation.
	PendingReview int `json:"pending_review"`

	Recommendations []string `json:"recommendations"`
}

// AuditRow is one question's mapping summarized for review.
type AuditRow struct {
	QuestionID     string  `json:"question_id"`
	QuestionText   string  `json:"question_text"`
	MappedCodes    string  `json:"mapped_codes"`
	CognitiveTier  string  `json:"cognitive_tier"`
	Method         string  `json:"method"`
	MeanConfidence float64 `json:"mean_confidence"`
	ConfidenceBand string  `json:"confidence_band"`
	Degraded       bool    `json:"degraded"`
}

// BuildAuditReport synthesizes the audit view of an analyzed session.
// now is injected so generated documents are reproducible in tests.
func BuildAuditReport(sess *session.Session, now time.Time) (*AuditReport, error) {
	if sess == nil {
		return nil, fmt.Errorf("build audit report: session is nil")
	}
	if sess.Report == nil {
		return nil, fmt.Errorf("build audit report: session %s has not been analyzed", sess.ID)
	}

	report := &AuditReport{
		SessionID:      sess.ID,
		StandardCode:   sess.StandardCode,
		AssessmentType: sess.AssessmentType,
		Filename:       sess.Filename,
		GeneratedAt:    now.UTC(),
		Coverage:       sess.Report,
		Tasks:          sess.Tasks,
	}
	if sess.Standard != nil {
		report.StandardTitle = sess.Standard.Title
	}

	for i := range sess.Mappings {
		m := &sess.Mappings[i]
		report.Rows = append(report.Rows, AuditRow{
			QuestionID:     m.QuestionID,
			QuestionText:   m.QuestionText,
			MappedCodes:    joinMappedCodes(m),
			CognitiveTier:  string(m.CognitiveTier),
			Method:         string(m.Method),
			MeanConfidence: m.MeanConfidence,
			ConfidenceBand: confidenceBand(m.MeanConfidence),
			Degraded:       m.Degraded,
		})
		if m.Degraded {
			report.PendingReview++
		}
	}

	report.Recommendations = auditRecommendations(report)
	return report, nil
}

// confidenceBand tiers a mean confidence for review prioritization.
func confidenceBand(confidence float64) string {
	switch {
	case confidence < lowConfidenceBand:
		return "low"
	case confidence > highConfidenceBand:
		return "high"
	default:
		return "medium"
	}
}

// joinMappedCodes flattens a mapping's component codes in standard order.
func joinMappedCodes(m *mapping.Mapping) string {
	var codes []string
	for _, items := range [][]mapping.Item{m.Elements, m.PerformanceCriteria, m.PerformanceEvidence, m.KnowledgeEvidence} {
		for _, item := range items {
			codes = append(codes, item.Code)
		}
	}
	return strings.Join(codes, "; ")
}

// auditRecommendations flags session-level follow-ups in a fixed order.
func auditRecommendations(report *AuditReport) []string {
	var recs []string

	if cov := report.Coverage.Elements; cov.Total > 0 && cov.Percentage < auditMinCoverage {
		recs = append(recs, fmt.Sprintf(
			"Element coverage is %.1f%%; address unmapped elements before sign-off (threshold %.0f%%)",
			cov.Percentage, auditMinCoverage))
	}

	if total := len(report.Rows); total > 0 {
		lowCount := 0
		for _, row := range report.Rows {
			if row.ConfidenceBand == "low" {
				lowCount++
			}
		}
		if share := float64(lowCount) / float64(total) * 100; share > auditMaxLowConfShare {
			recs = append(recs, fmt.Sprintf(
				"%d of %d mappings are low confidence; schedule a manual mapping review", lowCount, total))
		}
	}

	if report.PendingReview > 0 {
		recs = append(recs, fmt.Sprintf(
			"%d mapping(s) were produced by the degraded fallback and must be manually confirmed", report.PendingReview))
	}

	return recs
}

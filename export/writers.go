package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/assessortools/covmap/coverage"
)

// cellSeparator joins multi-value fields inside a single CSV cell.
const cellSeparator = "; "

// WriteAudit serializes an audit report in the requested format. JSON
// carries the whole document; CSV carries the per-question mapping table.
func WriteAudit(w io.Writer, format Format, report *AuditReport) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, report)
	case FormatCSV:
		return writeAuditCSV(w, report)
	default:
		return fmt.Errorf("write audit: unknown export format %q", format)
	}
}

// WriteRemediation serializes the remediation task table.
func WriteRemediation(w io.Writer, format Format, tasks []coverage.Task) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, tasks)
	case FormatCSV:
		return writeRemediationCSV(w, tasks)
	default:
		return fmt.Errorf("write remediation: unknown export format %q", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

var auditCSVHeader = []string{
	"question_id",
	"question_text",
	"mapped_codes",
	"cognitive_tier",
	"method",
	"mean_confidence",
	"confidence_band",
	"degraded",
}

func writeAuditCSV(w io.Writer, report *AuditReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(auditCSVHeader); err != nil {
		return fmt.Errorf("write audit header: %w", err)
	}

	for _, row := range report.Rows {
		record := []string{
			row.QuestionID,
			row.QuestionText,
			row.MappedCodes,
			row.CognitiveTier,
			row.Method,
			strconv.FormatFloat(row.MeanConfidence, 'f', 2, 64),
			row.ConfidenceBand,
			strconv.FormatBool(row.Degraded),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write audit row %s: %w", row.QuestionID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

var remediationCSVHeader = []string{
	"id",
	"standard_code",
	"category",
	"severity",
	"summary",
	"rationale",
	"impacted_elements",
	"impacted_questions",
	"suggested_actions",
	"owner_role",
	"due_in_days",
	"effort_score",
	"acceptance_criteria",
}

func writeRemediationCSV(w io.Writer, tasks []coverage.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(remediationCSVHeader); err != nil {
		return fmt.Errorf("write remediation header: %w", err)
	}

	for _, task := range tasks {
		record := []string{
			task.ID,
			task.StandardCode,
			task.Category,
			string(task.Severity),
			task.Summary,
			task.Rationale,
			strings.Join(task.ImpactedElements, cellSeparator),
			strings.Join(task.ImpactedQuestions, cellSeparator),
			strings.Join(task.SuggestedActions, cellSeparator),
			task.OwnerRole,
			strconv.Itoa(task.DueInDays),
			strconv.FormatFloat(task.EffortScore, 'f', 1, 64),
			strings.Join(task.AcceptanceCriteria, cellSeparator),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write remediation row %s: %w", task.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/assessortools/covmap/coverage"
	"github.com/assessortools/covmap/mapping"
	"github.com/assessortools/covmap/session"
	"github.com/assessortools/covmap/standard"
)

func analyzedSession(t *testing.T) *session.Session {
	t.Helper()

	set := &standard.Set{
		Code:  "HLTINF006",
		Title: "Apply basic principles and practices of infection prevention and control",
		Elements: []standard.Component{
			{Kind: standard.KindElement, Code: "E1", Description: "Follow standard precautions"},
			{Kind: standard.KindElement, Code: "E2", Description: "Recognise hazards and assess risks"},
		},
		PerformanceCriteria: []standard.Component{
			{Kind: standard.KindPerformanceCriterion, Code: "PC1.1", Description: "Perform hand hygiene"},
		},
	}

	mappings := []mapping.Mapping{
		{
			QuestionID:   "Q1",
			QuestionText: "Explain the chain of infection.",
			Elements: []mapping.Item{
				{Code: "E1", Strength: mapping.StrengthExplicit, Confidence: 0.9},
			},
			CognitiveTier:  mapping.TierUnderstand,
			Method:         mapping.MethodKBA,
			ItemCount:      1,
			MeanConfidence: 0.9,
		},
		{
			QuestionID:     "Q2",
			QuestionText:   "Demonstrate glove removal.",
			CognitiveTier:  mapping.TierApply,
			Method:         mapping.MethodPEP,
			ItemCount:      0,
			MeanConfidence: 0.5,
			Degraded:       true,
		},
	}

	report, tasks, err := coverage.NewAnalyzer().Analyze(set, mappings)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	sess := session.New(set, "written", "assessment.docx")
	sess.Mappings = mappings
	sess.Report = report
	sess.Tasks = tasks
	return sess
}

func TestBuildAuditReport(t *testing.T) {
	sess := analyzedSession(t)
	now := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)

	report, err := BuildAuditReport(sess, now)
	if err != nil {
		t.Fatalf("BuildAuditReport: %v", err)
	}

	if report.StandardCode != "HLTINF006" || report.GeneratedAt != now {
		t.Errorf("report meta = %s at %s", report.StandardCode, report.GeneratedAt)
	}
	if len(report.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(report.Rows))
	}
	if report.Rows[0].ConfidenceBand != "high" {
		t.Errorf("Q1 band = %s, want high", report.Rows[0].ConfidenceBand)
	}
	if report.Rows[1].ConfidenceBand != "low" {
		t.Errorf("Q2 band = %s, want low", report.Rows[1].ConfidenceBand)
	}
	if report.Rows[0].MappedCodes != "E1" {
		t.Errorf("Q1 codes = %q, want E1", report.Rows[0].MappedCodes)
	}
	if report.PendingReview != 1 {
		t.Errorf("pending review = %d, want 1", report.PendingReview)
	}

	// Half the mappings are low confidence and one is degraded.
	foundDegraded := false
	for _, rec := range report.Recommendations {
		if strings.Contains(rec, "degraded fallback") {
			foundDegraded = true
		}
	}
	if !foundDegraded {
		t.Errorf("recommendations = %v, want degraded review flagged", report.Recommendations)
	}
}

func TestBuildAuditReportRequiresAnalysis(t *testing.T) {
	sess := session.New(&standard.Set{Code: "HLTINF006"}, "written", "a.docx")
	if _, err := BuildAuditReport(sess, time.Now()); err == nil {
		t.Error("expected error for unanalyzed session")
	}
}

func TestWriteAuditCSV(t *testing.T) {
	sess := analyzedSession(t)
	report, err := BuildAuditReport(sess, time.Now())
	if err != nil {
		t.Fatalf("BuildAuditReport: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteAudit(&buf, FormatCSV, report); err != nil {
		t.Fatalf("WriteAudit: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2 rows", len(records))
	}
	if records[0][0] != "question_id" {
		t.Errorf("header = %v", records[0])
	}
	if records[2][7] != "true" {
		t.Errorf("Q2 degraded cell = %q, want true", records[2][7])
	}
}

func TestWriteRemediationCSV(t *testing.T) {
	sess := analyzedSession(t)

	var buf bytes.Buffer
	if err := WriteRemediation(&buf, FormatCSV, sess.Tasks); err != nil {
		t.Fatalf("WriteRemediation: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != len(sess.Tasks)+1 {
		t.Fatalf("got %d records, want header + %d tasks", len(records), len(sess.Tasks))
	}
	if records[0][0] != "id" || records[0][12] != "acceptance_criteria" {
		t.Errorf("header = %v", records[0])
	}
}

func TestWriteAuditJSONRoundTrip(t *testing.T) {
	sess := analyzedSession(t)
	report, err := BuildAuditReport(sess, time.Now())
	if err != nil {
		t.Fatalf("BuildAuditReport: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteAudit(&buf, FormatJSON, report); err != nil {
		t.Fatalf("WriteAudit: %v", err)
	}

	var decoded AuditReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.SessionID != report.SessionID || len(decoded.Rows) != 2 {
		t.Errorf("round trip lost data: %+v", decoded)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{" CSV ", FormatCSV, false},
		{"turtle", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

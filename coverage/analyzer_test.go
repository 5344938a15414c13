package coverage

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/assessortools/covmap/mapping"
	"github.com/assessortools/covmap/standard"
)

func testSet() *standard.Set {
	return &standard.Set{
		Code:  "HLTINF006",
		Title: "Apply basic principles and practices of infection prevention and control",
		Elements: []standard.Component{
			{Kind: standard.KindElement, Code: "E1", Description: "Follow standard precautions for infection safety"},
			{Kind: standard.KindElement, Code: "E2", Description: "Recognise hazards and assess risks"},
			{Kind: standard.KindElement, Code: "E3", Description: "Follow core procedures for managing risks"},
		},
		PerformanceCriteria: []standard.Component{
			{Kind: standard.KindPerformanceCriterion, Code: "PC1.1", Description: "Perform hand hygiene at the required moments"},
			{Kind: standard.KindPerformanceCriterion, Code: "PC1.2", Description: "Select and use personal protective equipment"},
			{Kind: standard.KindPerformanceCriterion, Code: "PC2.1", Description: "Identify infection hazards in the work area"},
		},
		PerformanceEvidence: []standard.Component{
			{Kind: standard.KindPerformanceEvidence, Code: "PE1", Description: "Performed hand hygiene in line with protocols"},
		},
		KnowledgeEvidence: []standard.Component{
			{Kind: standard.KindKnowledgeEvidence, Code: "KE1", Description: "Chain of infection and transmission routes"},
		},
	}
}

func mkMapping(id string, tier mapping.CognitiveTier, method mapping.AssessmentMethod, conf float64, items ...mapping.Item) mapping.Mapping {
	m := mapping.Mapping{
		QuestionID:     id,
		CognitiveTier:  tier,
		Method:         method,
		ItemCount:      len(items),
		MeanConfidence: conf,
	}
	for _, item := range items {
		switch {
		case item.Code[0] == 'E':
			m.Elements = append(m.Elements, item)
		case len(item.Code) > 1 && item.Code[:2] == "PC":
			m.PerformanceCriteria = append(m.PerformanceCriteria, item)
		case len(item.Code) > 1 && item.Code[:2] == "PE":
			m.PerformanceEvidence = append(m.PerformanceEvidence, item)
		default:
			m.KnowledgeEvidence = append(m.KnowledgeEvidence, item)
		}
	}
	return m
}

func item(code string, conf float64) mapping.Item {
	return mapping.Item{Code: code, Strength: mapping.StrengthExplicit, Confidence: conf}
}

func TestAnalyzeEmptyMappings(t *testing.T) {
	report, tasks, err := NewAnalyzer().Analyze(testSet(), nil)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	if report.Elements.Percentage != 0 {
		t.Errorf("element coverage = %.1f, want 0", report.Elements.Percentage)
	}
	if len(report.Elements.Unmapped) != 3 {
		t.Errorf("unmapped elements = %d, want 3", len(report.Elements.Unmapped))
	}
	if report.Balance.Score != 0 {
		t.Errorf("balance score = %.1f, want 0 for empty assessment", report.Balance.Score)
	}

	if len(report.Risks) == 0 || report.Risks[0].Category != "coverage" {
		t.Fatalf("risks = %+v, want a coverage risk first", report.Risks)
	}

	// One coverage task per under-assessed element, nothing else.
	if len(tasks) != 3 {
		t.Fatalf("got %d tasks, want 3", len(tasks))
	}
	for i, task := range tasks {
		if task.Category != "element_coverage" {
			t.Errorf("task %d category = %s, want element_coverage", i, task.Category)
		}
		if task.Severity != SeverityModerate || task.DueInDays != 7 || task.EffortScore != 1.8 {
			t.Errorf("task %d = severity %s due %d effort %.1f, want moderate/7/1.8",
				i, task.Severity, task.DueInDays, task.EffortScore)
		}
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	set := testSet()
	mappings := []mapping.Mapping{
		mkMapping("Q1", mapping.TierUnderstand, mapping.MethodKBA, 0.85, item("E1", 0.9), item("PC1.1", 0.8)),
		mkMapping("Q2", mapping.TierApply, mapping.MethodPEP, 0.7, item("PC1.2", 0.7)),
		mkMapping("Q3", mapping.TierRemember, mapping.MethodKBA, 0.5, item("KE1", 0.5)),
	}

	var previous []byte
	for run := 0; run < 3; run++ {
		report, tasks, err := NewAnalyzer().Analyze(set, mappings)
		if err != nil {
			t.Fatalf("Analyze error: %v", err)
		}
		blob, err := json.Marshal(struct {
			Report *Report `json:"report"`
			Tasks  []Task  `json:"tasks"`
		}{report, tasks})
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if previous != nil && !bytes.Equal(previous, blob) {
			t.Fatalf("run %d output differs from previous run", run)
		}
		previous = blob
	}
}

func TestAnalyzeCoverageMonotonic(t *testing.T) {
	set := testSet()
	mappings := []mapping.Mapping{
		mkMapping("Q1", mapping.TierUnderstand, mapping.MethodKBA, 0.85, item("E1", 0.9)),
	}

	before, _, err := NewAnalyzer().Analyze(set, mappings)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	mappings = append(mappings,
		mkMapping("Q2", mapping.TierApply, mapping.MethodPEP, 0.8, item("E2", 0.8)))
	after, _, err := NewAnalyzer().Analyze(set, mappings)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	if after.Elements.Percentage <= before.Elements.Percentage {
		t.Errorf("element coverage %.1f -> %.1f, want strict increase",
			before.Elements.Percentage, after.Elements.Percentage)
	}
	for _, kind := range []struct {
		name          string
		before, after KindCoverage
	}{
		{"criteria", before.PerformanceCriteria, after.PerformanceCriteria},
		{"evidence", before.PerformanceEvidence, after.PerformanceEvidence},
		{"knowledge", before.KnowledgeEvidence, after.KnowledgeEvidence},
	} {
		if kind.after.Percentage < kind.before.Percentage {
			t.Errorf("%s coverage decreased %.1f -> %.1f", kind.name, kind.before.Percentage, kind.after.Percentage)
		}
	}
}

func TestAnalyzeIgnoresCodesOutsideStandard(t *testing.T) {
	set := testSet()
	mappings := []mapping.Mapping{
		mkMapping("Q1", mapping.TierUnderstand, mapping.MethodKBA, 0.9, item("E9", 0.9)),
	}

	report, _, err := NewAnalyzer().Analyze(set, mappings)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if report.Elements.Mapped != 0 {
		t.Errorf("mapped elements = %d, want 0 for a code outside the standard", report.Elements.Mapped)
	}
}

func TestCriterionAttributesToOwningElement(t *testing.T) {
	set := testSet()
	// E1 reached only through its criteria, twice.
	mappings := []mapping.Mapping{
		mkMapping("Q1", mapping.TierApply, mapping.MethodPEP, 0.8, item("PC1.1", 0.8)),
		mkMapping("Q2", mapping.TierApply, mapping.MethodPEP, 0.8, item("PC1.2", 0.8)),
	}

	_, tasks, err := NewAnalyzer().Analyze(set, mappings)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	for _, task := range tasks {
		if task.Category == "element_coverage" && task.ImpactedElements[0] == "E1" {
			t.Errorf("E1 flagged under-assessed despite two attributed questions: %+v", task)
		}
	}
}

func TestScoreCriticality(t *testing.T) {
	tests := []struct {
		desc       string
		wantTier   Criticality
		wantImpact float64
	}{
		{"Follow safety procedures", CriticalityHigh, 1.0},
		{"Meet regulatory requirements", CriticalityHigh, 0.85},
		{"Maintain compliance records", CriticalityHigh, 0.8},
		{"Core handling skills", CriticalityMedium, 0.6},
		{"Essential equipment checks", CriticalityMedium, 0.7},
		{"General tidiness", CriticalityLow, 0},
		{"Workplace safety and compliance", CriticalityHigh, 1.0},
	}

	for _, tt := range tests {
		tier, impact := scoreCriticality(tt.desc)
		if tier != tt.wantTier || impact != tt.wantImpact {
			t.Errorf("scoreCriticality(%q) = %s/%.2f, want %s/%.2f",
				tt.desc, tier, impact, tt.wantTier, tt.wantImpact)
		}
	}
}

func TestBalanceRecommendations(t *testing.T) {
	// All recall, no practicals: every balance rule should fire.
	var mappings []mapping.Mapping
	for _, id := range []string{"Q1", "Q2", "Q3", "Q4"} {
		mappings = append(mappings,
			mkMapping(id, mapping.TierRemember, mapping.MethodKBA, 0.9, item("E1", 0.9)))
	}

	balance := analyzeBalance(mappings)
	if balance.TierDistribution[mapping.TierRemember] != 100 {
		t.Errorf("remember share = %.1f, want 100", balance.TierDistribution[mapping.TierRemember])
	}
	if len(balance.Recommendations) != 3 {
		t.Errorf("got %d recommendations, want 3: %v", len(balance.Recommendations), balance.Recommendations)
	}
}

func TestRemediationBalanceTasks(t *testing.T) {
	set := testSet()
	var mappings []mapping.Mapping
	for _, id := range []string{"Q1", "Q2", "Q3", "Q4", "Q5"} {
		mappings = append(mappings,
			mkMapping(id, mapping.TierRemember, mapping.MethodKBA, 0.4, item("E1", 0.4)))
	}

	report, tasks, err := NewAnalyzer().Analyze(set, mappings)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	byCategory := map[string]Task{}
	for _, task := range tasks {
		byCategory[task.Category] = task
	}

	practical, ok := byCategory["practical_evidence"]
	if !ok || practical.DueInDays != 10 || practical.EffortScore != 1.4 {
		t.Errorf("practical task = %+v, want due 10 effort 1.4", practical)
	}
	higher, ok := byCategory["higher_order"]
	if !ok || higher.DueInDays != 7 || higher.EffortScore != 1.4 {
		t.Errorf("higher-order task = %+v, want due 7 effort 1.4", higher)
	}
	evidence, ok := byCategory["evidence_linkage"]
	if !ok || evidence.Severity != SeverityHigh || evidence.DueInDays != 5 {
		t.Errorf("evidence task = %+v, want high severity due 5", evidence)
	}
	confidence, ok := byCategory["mapping_confidence"]
	if !ok || confidence.Severity != SeverityMedium || len(confidence.ImpactedQuestions) != 5 {
		t.Errorf("confidence task = %+v, want medium severity over all five questions", confidence)
	}

	// Low confidence everywhere also registers as a quality risk.
	foundQuality := false
	for _, risk := range report.Risks {
		if risk.Category == "quality" {
			foundQuality = true
		}
	}
	if !foundQuality {
		t.Errorf("risks = %+v, want a quality risk", report.Risks)
	}
}

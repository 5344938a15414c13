// Package coverage aggregates mappings against a standard into coverage
// statistics, balance and risk analysis, and remediation tasks. The
// analyzer performs no external calls and no randomness: identical inputs
// yield byte-identical outputs.
package coverage

import (
	"github.com/assessortools/covmap/mapping"
)

// Criticality tiers an unmapped component by the stakes of leaving it
// unassessed.
type Criticality string

const (
	CriticalityHigh   Criticality = "HIGH"
	CriticalityMedium Criticality = "MEDIUM"
	CriticalityLow    Criticality = "LOW"
)

// UnmappedComponent annotates a component no question maps to.
type UnmappedComponent struct {
	Code        string      `json:"code"`
	Description string      `json:"description"`
	Criticality Criticality `json:"criticality"`
	Impact      float64     `json:"impact"`
}

// KindCoverage reports coverage for one component kind.
type KindCoverage struct {
	Mapped     int                 `json:"mapped"`
	Total      int                 `json:"total"`
	Percentage float64             `json:"percentage"`
	Unmapped   []UnmappedComponent `json:"unmapped"`
}

// Risk flags a coverage or quality concern.
type Risk struct {
	Category string `json:"category"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// BalanceReport describes the cognitive and method balance of the
// assessment.
type BalanceReport struct {
	// TierDistribution is the observed percentage per Bloom tier.
	TierDistribution map[mapping.CognitiveTier]float64 `json:"tier_distribution"`

	// MethodDistribution is the observed percentage per assessment method.
	MethodDistribution map[mapping.AssessmentMethod]float64 `json:"method_distribution"`

	// Score is the mean closeness to the ideal tier distribution, 0-100.
	Score float64 `json:"score"`

	// Recommendations are textual balance suggestions.
	Recommendations []string `json:"recommendations"`
}

// Report is the complete coverage picture. It is recomputed on demand
// from the current mapping set and is not itself a source of truth.
type Report struct {
	StandardCode string `json:"standard_code"`

	Elements            KindCoverage `json:"elements_coverage"`
	PerformanceCriteria KindCoverage `json:"performance_criteria_coverage"`
	PerformanceEvidence KindCoverage `json:"performance_evidence_coverage"`
	KnowledgeEvidence   KindCoverage `json:"knowledge_evidence_coverage"`

	Balance BalanceReport `json:"balance"`
	Risks   []Risk        `json:"risks"`

	TotalQuestions int     `json:"total_questions"`
	TotalMappings  int     `json:"total_mappings"`
	MeanConfidence float64 `json:"mean_confidence"`
}

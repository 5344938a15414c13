package coverage

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/assessortools/covmap/mapping"
	"github.com/assessortools/covmap/standard"
)

// Risk thresholds.
const (
	minElementCoverage = 80.0
)

// Analyzer computes coverage reports and remediation tasks. It is
// stateless and safe for concurrent use.
type Analyzer struct {
	logger *slog.Logger
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// NewAnalyzer creates a coverage analyzer.
func NewAnalyzer(opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze builds the coverage report and remediation tasks for one
// assessment. Components are visited in standard order and rules fire in
// a fixed sequence, so repeated runs over the same inputs marshal to
// identical bytes.
func (a *Analyzer) Analyze(set *standard.Set, mappings []mapping.Mapping) (*Report, []Task, error) {
	if set == nil {
		return nil, nil, fmt.Errorf("analyze: standard set is nil")
	}
	if err := set.Validate(); err != nil {
		return nil, nil, fmt.Errorf("analyze: %w", err)
	}

	mappedCodes := collectMappedCodes(mappings)

	report := &Report{
		StandardCode:        set.Code,
		Elements:            kindCoverage(set.Elements, mappedCodes[standard.KindElement]),
		PerformanceCriteria: kindCoverage(set.PerformanceCriteria, mappedCodes[standard.KindPerformanceCriterion]),
		PerformanceEvidence: kindCoverage(set.PerformanceEvidence, mappedCodes[standard.KindPerformanceEvidence]),
		KnowledgeEvidence:   kindCoverage(set.KnowledgeEvidence, mappedCodes[standard.KindKnowledgeEvidence]),
		Balance:             analyzeBalance(mappings),
		TotalQuestions:      len(mappings),
	}

	var confidenceSum float64
	for _, m := range mappings {
		report.TotalMappings += m.ItemCount
		confidenceSum += m.MeanConfidence
	}
	if len(mappings) > 0 {
		report.MeanConfidence = confidenceSum / float64(len(mappings))
	}

	report.Risks = assessRisks(report, mappings)

	questionsByElement := attributeQuestions(mappings)
	tasks := synthesizeTasks(set, mappings, report, questionsByElement)

	a.logger.Info("Coverage analysis complete",
		"standard", set.Code,
		"questions", report.TotalQuestions,
		"element_coverage", report.Elements.Percentage,
		"risks", len(report.Risks),
		"tasks", len(tasks))

	return report, tasks, nil
}

// collectMappedCodes gathers the distinct component codes each kind's
// mappings reference.
func collectMappedCodes(mappings []mapping.Mapping) map[standard.Kind]map[string]bool {
	codes := map[standard.Kind]map[string]bool{
		standard.KindElement:              {},
		standard.KindPerformanceCriterion: {},
		standard.KindPerformanceEvidence:  {},
		standard.KindKnowledgeEvidence:    {},
	}
	for i := range mappings {
		for kind := range codes {
			for _, item := range mappings[i].ItemsByKind(kind) {
				codes[kind][item.Code] = true
			}
		}
	}
	return codes
}

// kindCoverage computes coverage for one kind. Only codes that exist in
// the standard count as mapped; hallucinated codes are ignored.
func kindCoverage(comps []standard.Component, mapped map[string]bool) KindCoverage {
	cov := KindCoverage{
		Total:    len(comps),
		Unmapped: []UnmappedComponent{},
	}
	for _, c := range comps {
		if mapped[c.Code] {
			cov.Mapped++
			continue
		}
		criticality, impact := scoreCriticality(c.Description)
		cov.Unmapped = append(cov.Unmapped, UnmappedComponent{
			Code:        c.Code,
			Description: c.Description,
			Criticality: criticality,
			Impact:      impact,
		})
	}
	if cov.Total > 0 {
		cov.Percentage = roundPercent(float64(cov.Mapped) / float64(cov.Total) * 100)
	}
	return cov
}

// assessRisks flags coverage and quality risks in a fixed order.
func assessRisks(report *Report, mappings []mapping.Mapping) []Risk {
	risks := []Risk{}

	if report.Elements.Total > 0 && report.Elements.Percentage < minElementCoverage {
		risks = append(risks, Risk{
			Category: "coverage",
			Severity: string(CriticalityHigh),
			Message: fmt.Sprintf("Element coverage is %.1f%%, below the %.0f%% floor",
				report.Elements.Percentage, minElementCoverage),
		})
	}

	if len(mappings) > 0 {
		lowConf := lowConfidenceQuestions(mappings)
		if share := float64(len(lowConf)) / float64(len(mappings)) * 100; share > lowConfidenceShare {
			risks = append(risks, Risk{
				Category: "quality",
				Severity: string(CriticalityMedium),
				Message: fmt.Sprintf("%.1f%% of mappings sit below %.1f mean confidence",
					roundPercent(share), lowConfidenceThreshold),
			})
		}
	}

	return risks
}

// attributeQuestions assigns question ids to the elements they assess,
// either through a direct element mapping or through a performance
// criterion owned by the element. Each question counts once per element.
func attributeQuestions(mappings []mapping.Mapping) map[string][]string {
	byElement := make(map[string][]string)
	seen := make(map[string]bool)

	attribute := func(elementCode, questionID string) {
		if elementCode == "" {
			return
		}
		key := elementCode + "/" + questionID
		if seen[key] {
			return
		}
		seen[key] = true
		byElement[elementCode] = append(byElement[elementCode], questionID)
	}

	for _, m := range mappings {
		for _, item := range m.Elements {
			attribute(item.Code, m.QuestionID)
		}
		for _, item := range m.PerformanceCriteria {
			attribute(owningElement(item.Code), m.QuestionID)
		}
	}
	return byElement
}

// owningElement derives the element code a performance criterion belongs
// to, e.g. PC2.3 belongs to E2. Returns "" for codes outside the grammar.
func owningElement(pcCode string) string {
	rest, ok := strings.CutPrefix(pcCode, "PC")
	if !ok {
		return ""
	}
	num, _, ok := strings.Cut(rest, ".")
	if !ok || num == "" {
		return ""
	}
	return "E" + num
}

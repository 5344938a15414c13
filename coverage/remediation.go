package coverage

import (
	"fmt"

	"github.com/assessortools/covmap/mapping"
	"github.com/assessortools/covmap/standard"
)

// Severity orders remediation urgency.
type Severity string

const (
	SeverityHigh     Severity = "high"
	SeverityModerate Severity = "moderate"
	SeverityMedium   Severity = "medium"
)

// Task is an actionable gap-closing work item derived from the coverage
// analysis. IDs are sequential so identical inputs produce identical
// task lists.
type Task struct {
	ID                 string   `json:"id"`
	StandardCode       string   `json:"standard_code"`
	Category           string   `json:"category"`
	Severity           Severity `json:"severity"`
	Summary            string   `json:"summary"`
	Rationale          string   `json:"rationale"`
	ImpactedElements   []string `json:"impacted_elements"`
	ImpactedQuestions  []string `json:"impacted_questions"`
	SuggestedActions   []string `json:"suggested_actions"`
	OwnerRole          string   `json:"owner_role"`
	DueInDays          int      `json:"due_in_days"`
	EffortScore        float64  `json:"effort_score"`
	AcceptanceCriteria []string `json:"acceptance_criteria"`
}

// Task synthesis thresholds.
const (
	minQuestionsPerElement = 2
	minPracticalShare      = 20.0
	minHigherOrderShare    = 10.0
	lowConfidenceThreshold = 0.6
	lowConfidenceShare     = 20.0
)

// synthesizeTasks builds the remediation task list from the analyzed
// coverage. Rules fire in a fixed order: per-element coverage first, then
// assessment-wide balance and evidence rules.
func synthesizeTasks(set *standard.Set, mappings []mapping.Mapping, report *Report, questionsByElement map[string][]string) []Task {
	var tasks []Task
	seq := 0
	nextID := func() string {
		seq++
		return fmt.Sprintf("RT-%03d", seq)
	}

	for _, element := range set.Elements {
		questions := questionsByElement[element.Code]
		if len(questions) >= minQuestionsPerElement {
			continue
		}
		tasks = append(tasks, Task{
			ID:           nextID(),
			StandardCode: set.Code,
			Category:     "element_coverage",
			Severity:     SeverityModerate,
			Summary:      fmt.Sprintf("Strengthen assessment of %s", element.Code),
			Rationale: fmt.Sprintf("%s (%s) is assessed by %d question(s); at least %d are needed for reliable evidence",
				element.Code, element.Description, len(questions), minQuestionsPerElement),
			ImpactedElements:  []string{element.Code},
			ImpactedQuestions: questions,
			SuggestedActions: []string{
				fmt.Sprintf("Author at least %d questions targeting %s", minQuestionsPerElement-len(questions), element.Code),
				"Link each new question to a specific performance criterion",
			},
			OwnerRole:   "assessment_designer",
			DueInDays:   7,
			EffortScore: 1.8,
			AcceptanceCriteria: []string{
				fmt.Sprintf("At least %d questions map to %s", minQuestionsPerElement, element.Code),
				fmt.Sprintf("At least one performance criterion under %s is mapped at 70%% confidence or higher", element.Code),
			},
		})
	}

	if len(mappings) > 0 {
		pepShare := report.Balance.MethodDistribution[mapping.MethodPEP]
		if pepShare < minPracticalShare {
			tasks = append(tasks, Task{
				ID:           nextID(),
				StandardCode: set.Code,
				Category:     "practical_evidence",
				Severity:     SeverityModerate,
				Summary:      "Increase practical evidence collection",
				Rationale: fmt.Sprintf("Practical tasks are %.1f%% of the assessment; below the %.0f%% floor for demonstrable skills",
					pepShare, minPracticalShare),
				SuggestedActions: []string{
					"Convert suitable knowledge questions into observed practical tasks",
					"Add a workplace observation checklist",
				},
				OwnerRole:   "assessment_designer",
				DueInDays:   10,
				EffortScore: 1.4,
				AcceptanceCriteria: []string{
					fmt.Sprintf("Practical tasks reach at least %.0f%% of the assessment", minPracticalShare),
				},
			})
		}

		higherOrder := report.Balance.TierDistribution[mapping.TierAnalyze] +
			report.Balance.TierDistribution[mapping.TierEvaluate] +
			report.Balance.TierDistribution[mapping.TierCreate]
		if higherOrder < minHigherOrderShare {
			tasks = append(tasks, Task{
				ID:           nextID(),
				StandardCode: set.Code,
				Category:     "higher_order",
				Severity:     SeverityModerate,
				Summary:      "Add higher-order thinking questions",
				Rationale: fmt.Sprintf("Analyze, evaluate and create items total %.1f%%; below the %.0f%% floor",
					higherOrder, minHigherOrderShare),
				SuggestedActions: []string{
					"Add comparison or critique questions for key procedures",
					"Add a scenario requiring a justified decision",
				},
				OwnerRole:   "assessment_designer",
				DueInDays:   7,
				EffortScore: 1.4,
				AcceptanceCriteria: []string{
					fmt.Sprintf("Analyze, evaluate and create items total at least %.0f%% of the assessment", minHigherOrderShare),
				},
			})
		}

		if report.PerformanceEvidence.Mapped == 0 && report.KnowledgeEvidence.Mapped == 0 &&
			(report.PerformanceEvidence.Total > 0 || report.KnowledgeEvidence.Total > 0) {
			tasks = append(tasks, Task{
				ID:           nextID(),
				StandardCode: set.Code,
				Category:     "evidence_linkage",
				Severity:     SeverityHigh,
				Summary:      "Link questions to evidence requirements",
				Rationale:    "No question maps to any performance or knowledge evidence requirement",
				SuggestedActions: []string{
					"Review each question against the evidence requirements and record explicit links",
					"Add questions for evidence requirements nothing currently addresses",
				},
				OwnerRole:   "lead_assessor",
				DueInDays:   5,
				EffortScore: 1.5,
				AcceptanceCriteria: []string{
					"At least one question maps to performance evidence",
					"At least one question maps to knowledge evidence",
				},
			})
		}

		lowConf := lowConfidenceQuestions(mappings)
		if share := float64(len(lowConf)) / float64(len(mappings)) * 100; share > lowConfidenceShare {
			tasks = append(tasks, Task{
				ID:           nextID(),
				StandardCode: set.Code,
				Category:     "mapping_confidence",
				Severity:     SeverityMedium,
				Summary:      "Review low-confidence mappings",
				Rationale: fmt.Sprintf("%d of %d mappings sit below %.1f mean confidence and need manual confirmation",
					len(lowConf), len(mappings), lowConfidenceThreshold),
				ImpactedQuestions: lowConf,
				SuggestedActions: []string{
					"Manually confirm or correct each flagged mapping",
					"Reword ambiguous questions so their target criterion is explicit",
				},
				OwnerRole:   "lead_assessor",
				DueInDays:   5,
				EffortScore: 1.6,
				AcceptanceCriteria: []string{
					fmt.Sprintf("Flagged mappings reach %.1f mean confidence or are manually approved", lowConfidenceThreshold),
				},
			})
		}
	}

	return tasks
}

// lowConfidenceQuestions lists question ids whose mapping confidence sits
// below the review threshold, in input order.
func lowConfidenceQuestions(mappings []mapping.Mapping) []string {
	var ids []string
	for _, m := range mappings {
		if m.MeanConfidence < lowConfidenceThreshold {
			ids = append(ids, m.QuestionID)
		}
	}
	return ids
}

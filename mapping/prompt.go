package mapping

import (
	"fmt"
	"strings"

	"github.com/assessortools/covmap/extract"
	"github.com/assessortools/covmap/standard"
)

// Component excerpt caps for prompt assembly. The full standard would
// blow the prompt budget, so each kind contributes a fixed-size excerpt.
const (
	maxPromptElements  = 5
	maxPromptCriteria  = 8
	maxPromptEvidence  = 5
	maxPromptKnowledge = 5

	maxDescriptionChars = 100
)

// buildMappingPrompt assembles the mapping instruction for one question.
func buildMappingPrompt(set *standard.Set, q *extract.Question) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are mapping an assessment question against the competency standard %s (%s).\n\n", set.Code, set.Title)
	fmt.Fprintf(&sb, "Question %s: %s\n\n", q.Number, q.Text)

	sb.WriteString("Standard components:\n")
	writeComponentExcerpt(&sb, "Elements", set.Elements, maxPromptElements)
	writeComponentExcerpt(&sb, "Performance Criteria", set.PerformanceCriteria, maxPromptCriteria)
	writeComponentExcerpt(&sb, "Performance Evidence", set.PerformanceEvidence, maxPromptEvidence)
	writeComponentExcerpt(&sb, "Knowledge Evidence", set.KnowledgeEvidence, maxPromptKnowledge)

	sb.WriteString(`
Return ONLY a JSON object in exactly this shape, with no commentary:
{
  "mapped_elements": [{"id": "E1", "description": "...", "strength": "EXPLICIT|IMPLICIT|PARTIAL|WEAK", "confidence": 0.9}],
  "mapped_performance_criteria": [{"id": "PC1.1", "description": "...", "strength": "EXPLICIT", "confidence": 0.9}],
  "mapped_performance_evidence": [{"id": "PE1", "description": "...", "strength": "IMPLICIT", "confidence": 0.7}],
  "mapped_knowledge_evidence": [{"id": "KE1", "description": "...", "strength": "PARTIAL", "confidence": 0.6}],
  "cognitive_level": "remember|understand|apply|analyze|evaluate|create"
}

Rules:
- include all four lists, empty where nothing maps
- only map components the question genuinely assesses
- confidence is a number between 0 and 1
`)

	return sb.String()
}

// writeComponentExcerpt appends up to limit components of one kind.
func writeComponentExcerpt(sb *strings.Builder, heading string, comps []standard.Component, limit int) {
	if len(comps) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s:\n", heading)
	for i, c := range comps {
		if i >= limit {
			fmt.Fprintf(sb, "  ... and %d more\n", len(comps)-limit)
			break
		}
		fmt.Fprintf(sb, "  %s: %s\n", c.Code, truncateDescription(c.Description))
	}
}

// truncateDescription caps a component description for prompt assembly.
func truncateDescription(desc string) string {
	if len(desc) <= maxDescriptionChars {
		return desc
	}
	return desc[:maxDescriptionChars] + "..."
}

// Package mapping links extracted questions to standard components via the
// external extraction service, normalizing identifiers and computing
// per-mapping statistics.
package mapping

import (
	"github.com/assessortools/covmap/standard"
)

// Strength is the qualitative alignment tier between a question and a
// standard component, strongest first.
type Strength string

const (
	StrengthExplicit Strength = "EXPLICIT"
	StrengthImplicit Strength = "IMPLICIT"
	StrengthPartial  Strength = "PARTIAL"
	StrengthWeak     Strength = "WEAK"
)

// normalizeStrength coerces service-reported strengths onto the known
// tiers, defaulting unknowns to the weakest.
func normalizeStrength(raw string) Strength {
	switch Strength(raw) {
	case StrengthExplicit, StrengthImplicit, StrengthPartial, StrengthWeak:
		return Strength(raw)
	default:
		return StrengthWeak
	}
}

// ComplianceTier grades how well a single mapping satisfies its component.
type ComplianceTier string

const (
	ComplianceFull    ComplianceTier = "FULL"
	CompliancePartial ComplianceTier = "PARTIAL"
	ComplianceMinimal ComplianceTier = "MINIMAL"
)

// classifyCompliance derives the compliance tier from strength and
// confidence.
func classifyCompliance(strength Strength, confidence float64) ComplianceTier {
	switch {
	case strength == StrengthExplicit && confidence >= 0.8:
		return ComplianceFull
	case confidence >= 0.5:
		return CompliancePartial
	default:
		return ComplianceMinimal
	}
}

// Item maps a question onto one standard component.
type Item struct {
	// Code is the canonical component code post-normalization.
	Code string `json:"code"`

	// Description is the component description echoed by the service.
	Description string `json:"description,omitempty"`

	// Strength is the alignment tier.
	Strength Strength `json:"strength"`

	// Confidence is normalized to [0,1].
	Confidence float64 `json:"confidence"`

	// Compliance grades this item from confidence and strength.
	Compliance ComplianceTier `json:"compliance"`
}

// Mapping holds one question's links to the standard, one ordered item
// list per component kind. A mapping is recomputed wholesale on
// re-mapping, never partially overwritten.
type Mapping struct {
	QuestionID   string `json:"question_id"`
	QuestionText string `json:"question_text"`

	Elements            []Item `json:"mapped_elements"`
	PerformanceCriteria []Item `json:"mapped_performance_criteria"`
	PerformanceEvidence []Item `json:"mapped_performance_evidence"`
	KnowledgeEvidence   []Item `json:"mapped_knowledge_evidence"`

	// CognitiveTier is the question's dominant Bloom tier.
	CognitiveTier CognitiveTier `json:"cognitive_tier"`

	// Method is the assessment-method tag derived from the question type.
	Method AssessmentMethod `json:"assessment_method"`

	// ItemCount is the total item count across all four lists.
	ItemCount int `json:"item_count"`

	// MeanConfidence is the mean confidence across all four lists.
	MeanConfidence float64 `json:"mean_confidence"`

	// Degraded marks a low-confidence placeholder produced when the
	// service call failed under the degrade policy.
	Degraded bool `json:"degraded,omitempty"`
}

// ItemsByKind returns the item list for a component kind.
func (m *Mapping) ItemsByKind(k standard.Kind) []Item {
	switch k {
	case standard.KindElement:
		return m.Elements
	case standard.KindPerformanceCriterion:
		return m.PerformanceCriteria
	case standard.KindPerformanceEvidence:
		return m.PerformanceEvidence
	case standard.KindKnowledgeEvidence:
		return m.KnowledgeEvidence
	default:
		return nil
	}
}

// recomputeStats refreshes the derived item count and mean confidence.
func (m *Mapping) recomputeStats() {
	count := 0
	sum := 0.0
	for _, k := range standard.Kinds {
		for _, item := range m.ItemsByKind(k) {
			count++
			sum += item.Confidence
		}
	}
	m.ItemCount = count
	if count > 0 {
		m.MeanConfidence = sum / float64(count)
	} else {
		m.MeanConfidence = 0
	}
}

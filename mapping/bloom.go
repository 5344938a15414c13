package mapping

import (
	"regexp"

	"github.com/assessortools/covmap/extract"
)

// CognitiveTier is a Bloom taxonomy tier, ordered lowest to highest.
type CognitiveTier string

const (
	TierRemember   CognitiveTier = "remember"
	TierUnderstand CognitiveTier = "understand"
	TierApply      CognitiveTier = "apply"
	TierAnalyze    CognitiveTier = "analyze"
	TierEvaluate   CognitiveTier = "evaluate"
	TierCreate     CognitiveTier = "create"
)

// Tiers lists all cognitive tiers in ascending order.
var Tiers = []CognitiveTier{
	TierRemember,
	TierUnderstand,
	TierApply,
	TierAnalyze,
	TierEvaluate,
	TierCreate,
}

// TierRank returns the 0-based position of a tier, -1 for unknown.
func TierRank(t CognitiveTier) int {
	for i, tier := range Tiers {
		if tier == t {
			return i
		}
	}
	return -1
}

// tierRule pairs a tier with its verb cues. Rules are checked highest
// tier first so "design and evaluate" lands on create.
type tierRule struct {
	Tier  CognitiveTier
	Match *regexp.Regexp
}

var tierRules = []tierRule{
	{TierCreate, regexp.MustCompile(`(?i)\b(design|develop|create|construct|formulate|compose|plan)\b`)},
	{TierEvaluate, regexp.MustCompile(`(?i)\b(evaluate|justify|assess|critique|judge|recommend|prioriti[sz]e)\b`)},
	{TierAnalyze, regexp.MustCompile(`(?i)\b(analy[sz]e|compare|contrast|differentiate|examine|investigate)\b`)},
	{TierApply, regexp.MustCompile(`(?i)\b(demonstrate|apply|use|perform|implement|carry out|complete)\b`)},
	{TierUnderstand, regexp.MustCompile(`(?i)\b(explain|describe|discuss|summari[sz]e|interpret|classify)\b`)},
	{TierRemember, regexp.MustCompile(`(?i)\b(list|name|identify|state|define|recall|label)\b`)},
}

// ClassifyTier assigns a cognitive tier from the question text using the
// deterministic rule table. Text matching no rule defaults to understand.
func ClassifyTier(text string) CognitiveTier {
	for _, rule := range tierRules {
		if rule.Match.MatchString(text) {
			return rule.Tier
		}
	}
	return TierUnderstand
}

// normalizeTier coerces a service-reported tier onto the known set,
// falling back to the rule table on unknowns.
func normalizeTier(raw, questionText string) CognitiveTier {
	if TierRank(CognitiveTier(raw)) >= 0 {
		return CognitiveTier(raw)
	}
	return ClassifyTier(questionText)
}

// AssessmentMethod tags how a question assesses: knowledge-based (KBA),
// scenario-based (SBA), or practical-evidence (PEP).
type AssessmentMethod string

const (
	MethodKBA AssessmentMethod = "KBA"
	MethodSBA AssessmentMethod = "SBA"
	MethodPEP AssessmentMethod = "PEP"
)

// MethodForQuestion derives the assessment method from the question type.
func MethodForQuestion(t extract.QuestionType) AssessmentMethod {
	switch t {
	case extract.TypePractical:
		return MethodPEP
	case extract.TypeScenario:
		return MethodSBA
	default:
		return MethodKBA
	}
}

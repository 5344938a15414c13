package coverage

import "strings"

// impactKeyword weights a description term by the stakes of leaving the
// component unassessed. When several terms match, the highest weight wins.
type impactKeyword struct {
	term   string
	weight float64
}

var impactKeywords = []impactKeyword{
	{"safety", 1.0},
	{"emergency", 0.95},
	{"health", 0.9},
	{"regulatory", 0.85},
	{"compliance", 0.8},
	{"critical", 0.8},
	{"essential", 0.7},
	{"core", 0.6},
}

var highCriticalityTerms = []string{"safety", "regulatory", "compliance", "emergency"}

var mediumCriticalityTerms = []string{"core", "essential", "mandatory", "critical", "health"}

// scoreCriticality tiers a component description and scores its impact.
// The tier comes from keyword presence; the impact score is the maximum
// matched keyword weight, 0 when nothing matches.
func scoreCriticality(description string) (Criticality, float64) {
	lower := strings.ToLower(description)

	impact := 0.0
	for _, kw := range impactKeywords {
		if strings.Contains(lower, kw.term) && kw.weight > impact {
			impact = kw.weight
		}
	}

	for _, term := range highCriticalityTerms {
		if strings.Contains(lower, term) {
			return CriticalityHigh, impact
		}
	}
	for _, term := range mediumCriticalityTerms {
		if strings.Contains(lower, term) {
			return CriticalityMedium, impact
		}
	}
	return CriticalityLow, impact
}

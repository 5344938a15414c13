package coverage

import (
	"fmt"
	"math"

	"github.com/assessortools/covmap/mapping"
)

// idealTierDistribution is the target Bloom spread, in percent.
var idealTierDistribution = map[mapping.CognitiveTier]float64{
	mapping.TierRemember:   10,
	mapping.TierUnderstand: 20,
	mapping.TierApply:      25,
	mapping.TierAnalyze:    20,
	mapping.TierEvaluate:   15,
	mapping.TierCreate:     10,
}

// Balance recommendation thresholds, in percent.
const (
	minEvaluateShare = 10
	minCreateShare   = 5
	maxRememberShare = 30
)

// analyzeBalance computes the cognitive and method distributions and the
// balance score. An empty mapping set yields zeroed distributions, a zero
// score, and no recommendations.
func analyzeBalance(mappings []mapping.Mapping) BalanceReport {
	report := BalanceReport{
		TierDistribution:   make(map[mapping.CognitiveTier]float64, len(mapping.Tiers)),
		MethodDistribution: make(map[mapping.AssessmentMethod]float64, 3),
	}
	for _, tier := range mapping.Tiers {
		report.TierDistribution[tier] = 0
	}
	for _, method := range []mapping.AssessmentMethod{mapping.MethodKBA, mapping.MethodSBA, mapping.MethodPEP} {
		report.MethodDistribution[method] = 0
	}

	total := len(mappings)
	if total == 0 {
		return report
	}

	tierCounts := make(map[mapping.CognitiveTier]int)
	methodCounts := make(map[mapping.AssessmentMethod]int)
	for _, m := range mappings {
		tierCounts[m.CognitiveTier]++
		methodCounts[m.Method]++
	}

	for _, tier := range mapping.Tiers {
		report.TierDistribution[tier] = roundPercent(float64(tierCounts[tier]) / float64(total) * 100)
	}
	for method := range report.MethodDistribution {
		report.MethodDistribution[method] = roundPercent(float64(methodCounts[method]) / float64(total) * 100)
	}

	var closeness float64
	for _, tier := range mapping.Tiers {
		closeness += 100 - math.Abs(report.TierDistribution[tier]-idealTierDistribution[tier])
	}
	report.Score = roundPercent(closeness / float64(len(mapping.Tiers)))

	report.Recommendations = balanceRecommendations(report.TierDistribution)
	return report
}

// balanceRecommendations flags tier shares outside the target bands, in a
// fixed order so repeated runs produce identical reports.
func balanceRecommendations(dist map[mapping.CognitiveTier]float64) []string {
	var recs []string
	if dist[mapping.TierEvaluate] < minEvaluateShare {
		recs = append(recs, fmt.Sprintf(
			"Evaluation items are %.1f%% of the assessment; add questions asking candidates to justify or critique (target at least %d%%)",
			dist[mapping.TierEvaluate], minEvaluateShare))
	}
	if dist[mapping.TierCreate] < minCreateShare {
		recs = append(recs, fmt.Sprintf(
			"Creation items are %.1f%% of the assessment; add design or planning tasks (target at least %d%%)",
			dist[mapping.TierCreate], minCreateShare))
	}
	if dist[mapping.TierRemember] > maxRememberShare {
		recs = append(recs, fmt.Sprintf(
			"Recall items are %.1f%% of the assessment; rework some toward application or analysis (target at most %d%%)",
			dist[mapping.TierRemember], maxRememberShare))
	}
	return recs
}

// roundPercent rounds to one decimal place so marshaled reports are stable
// across runs and platforms.
func roundPercent(v float64) float64 {
	return math.Round(v*10) / 10
}

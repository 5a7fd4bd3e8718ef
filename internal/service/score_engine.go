package service

import (
	"fmt"
	"math"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/aba-necessity-server/internal/domain"
)

// Adjustment caps apply to the raw sub-score before the payer weight is
// multiplied in, so a weight above 1.0 can push the weighted adjustment
// past the cap.
const (
	adaptiveAdjCap      = 12.0
	skillAdjCap         = 12.0
	behavioralAdjCap    = 16.0
	environmentalAdjCap = 8.0

	highRiskThreshold = 15

	minGoals = 2
	maxGoals = 12
)

// Supervision percentages are fixed per tier and not payer-configurable.
var supervisionPct = map[int]float64{
	1: 0.10,
	2: 0.15,
	3: 0.20,
}

// ScoreEngine computes weekly therapy-hour recommendations from a clinical
// assessment and a payer policy. Compute is pure and deterministic; it is
// safe to call concurrently.
type ScoreEngine struct {
	logger *logrus.Logger
}

// NewScoreEngine creates a new scoring engine
func NewScoreEngine(logger *logrus.Logger) *ScoreEngine {
	return &ScoreEngine{logger: logger}
}

// Compute runs the full dosage determination. It is total over validated
// input: out-of-range values are the caller's responsibility and absent
// values are excluded from their sub-score rather than treated as zero.
func (e *ScoreEngine) Compute(input domain.AssessmentInput, policy domain.PolicyProfile) domain.CalculationResult {
	// Step 1: functional impairment index determines base hours
	fii := impairmentScore(input.Impairment)
	base := baseHours(fii)

	// Steps 2-5: weighted adjustments
	adaptiveAdj := adaptiveAdjustment(input.Adaptive) * policy.AdaptiveWeight
	skillAdj := skillAdjustment(input.Skills) * policy.SkillWeight
	behavioralAdj := behavioralAdjustment(input.Behavioral) * policy.BehavioralWeight
	envAdj := environmentalAdjustment(input.Environment) * policy.EnvironmentalWeight

	// Independent safety risk tally, unweighted
	risk := riskScore(input.RiskRatings)

	// Step 6: age multiplier, neutralized by the high-risk override
	highRisk := risk >= highRiskThreshold || input.Behavioral.SelfInjury == domain.SelfInjurySevere
	ageMult := 1.0
	if !highRisk {
		switch {
		case input.Age <= 5:
			ageMult = policy.AgeMultipliers.Young
		case input.Age <= 12:
			ageMult = policy.AgeMultipliers.Mid
		default:
			ageMult = policy.AgeMultipliers.Teen
		}
	}

	// Step 7: round to the nearest multiple of 5 (half rounds up), clamp
	// into the payer's hour bounds
	raw := (base + adaptiveAdj + skillAdj + behavioralAdj + envAdj) * ageMult
	final := clamp(roundToNearestFive(raw), policy.MinHours, policy.MaxHours)

	tier := hourTier(final)
	supHours := int(math.Ceil(final * supervisionPct[tier]))
	ptHours := parentTrainingHours(tier, policy.ParentTraining)
	goals := goalCount(len(input.SkillDeficits), fii)

	result := domain.CalculationResult{
		Impairment:       fii,
		BaseHours:        base,
		AdaptiveAdj:      adaptiveAdj,
		SkillAdj:         skillAdj,
		BehavioralAdj:    behavioralAdj,
		EnvironmentalAdj: envAdj,
		AgeMultiplier:    ageMult,
		RawTotal:         raw,
		FinalHours:       final,
		Tier:             tier,
		SupervisionHours: supHours,
		ParentTraining:   ptHours,
		Goals:            goals,
		RiskScore:        risk,
		Flags:            clinicalFlags(risk, fii, behavioralAdj, envAdj),
		Rationale:        buildRationale(fii, base, adaptiveAdj, skillAdj, behavioralAdj, envAdj, ageMult, raw, final),
		HighRisk:         highRisk,
	}

	e.logger.WithFields(logrus.Fields{
		"impairment":  fii,
		"final_hours": final,
		"tier":        tier,
		"high_risk":   highRisk,
		"policy":      policy.Name,
	}).Debug("Computed dosage recommendation")

	return result
}

// impairmentScore sums the nine functional impairment ratings (0-4 each).
// Absent domains contribute nothing.
func impairmentScore(ratings map[domain.ImpairmentDomain]int) int {
	sum := 0
	for _, rating := range ratings {
		sum += rating
	}
	return sum
}

// baseHours maps the impairment index onto the base weekly hours band.
func baseHours(fii int) float64 {
	switch {
	case fii <= 8:
		return 10
	case fii <= 16:
		return 20
	case fii <= 24:
		return 30
	default:
		return 35
	}
}

// adaptiveAdjustment scores the Vineland-style standard scores. The
// below-85 count considers only the four named domains; the composite
// participates only in its own below-70 bonus. With no domain scores the
// adjustment is zero regardless of the composite.
func adaptiveAdjustment(scores domain.AdaptiveScores) float64 {
	var provided []float64
	for _, score := range scores.Domains() {
		if score != nil {
			provided = append(provided, *score)
		}
	}
	if len(provided) == 0 {
		return 0
	}

	below85 := 0
	anyBelow70 := false
	for _, v := range provided {
		if v < 85 {
			below85++
		}
		if v < 70 {
			anyBelow70 = true
		}
	}

	adj := 0.0
	switch {
	case below85 >= 4:
		adj = 8
	case below85 == 3:
		adj = 6
	case below85 == 2:
		adj = 4
	case below85 == 1:
		adj = 2
	}

	if anyBelow70 {
		adj += 4
	}
	if scores.Composite != nil && *scores.Composite < 70 {
		adj += 4
	}

	return math.Min(adj, adaptiveAdjCap)
}

// skillAdjustment scores the VB-MAPP-style sub-scales. Each sub-scale
// contributes independently; a missing sub-scale contributes zero.
func skillAdjustment(scores domain.SkillScores) float64 {
	adj := 0.0

	if scores.Milestones != nil {
		switch m := *scores.Milestones; {
		case m <= 45:
			adj += 6
		case m <= 100:
			adj += 3
		}
	}

	if scores.Barriers != nil {
		switch b := *scores.Barriers; {
		case b >= 19:
			adj += 6
		case b >= 13:
			adj += 4
		case b >= 7:
			adj += 2
		}
	}

	if scores.Transition != nil {
		switch t := *scores.Transition; {
		case t <= 6:
			adj += 2
		case t <= 12:
			adj += 1
		}
	}

	return math.Min(adj, skillAdjCap)
}

// behavioralAdjustment scores aggression, self-injury, elopement and
// crisis history.
func behavioralAdjustment(b domain.BehavioralProfile) float64 {
	adj := 0.0

	switch b.AggressionFreq {
	case domain.AggressionDaily:
		adj += 5
	case domain.AggressionSixPlus:
		adj += 3
	}

	switch b.SelfInjury {
	case domain.SelfInjurySevere:
		adj += 8
	case domain.SelfInjuryModerate:
		adj += 5
	case domain.SelfInjuryMild:
		adj += 3
	}

	if b.Elopement {
		adj += 5
	}

	switch b.CrisisEvents {
	case domain.CrisisTwoPlus:
		adj += 8
	case domain.CrisisOne:
		adj += 5
	}

	return math.Min(adj, behavioralAdjCap)
}

// environmentalAdjustment adds two hours per active environmental stressor.
func environmentalAdjustment(mods map[domain.EnvironmentalFactor]bool) float64 {
	count := 0
	for _, active := range mods {
		if active {
			count++
		}
	}
	return math.Min(float64(count)*2, environmentalAdjCap)
}

// riskScore tallies the six safety risk ratings (0-4 each).
func riskScore(ratings map[domain.RiskDomain]int) int {
	sum := 0
	for _, rating := range ratings {
		sum += rating
	}
	return sum
}

// roundToNearestFive rounds to the nearest multiple of 5 with exact
// halves rounding toward the higher multiple, so 22.5 becomes 25.
func roundToNearestFive(x float64) float64 {
	return math.Floor(x/5+0.5) * 5
}

func clamp(x, min, max float64) float64 {
	return math.Max(min, math.Min(max, x))
}

// hourTier buckets final hours into intensity tiers.
func hourTier(final float64) int {
	switch {
	case final >= 30:
		return 3
	case final >= 20:
		return 2
	default:
		return 1
	}
}

// parentTrainingHours selects from the payer's parent-training range:
// tier 3 takes the maximum, tier 2 the rounded midpoint, tier 1 the
// minimum.
func parentTrainingHours(tier int, r domain.HourRange) float64 {
	switch tier {
	case 3:
		return r.Max
	case 2:
		return math.Round((r.Min + r.Max) / 2)
	default:
		return r.Min
	}
}

// goalCount derives the treatment goal count from documented skill
// deficits plus an impairment bonus, clamped into [2, 12].
func goalCount(deficits, fii int) int {
	bonus := 0
	switch {
	case fii > 20:
		bonus = 2
	case fii > 10:
		bonus = 1
	}
	goals := deficits + bonus
	if goals < minGoals {
		return minGoals
	}
	if goals > maxGoals {
		return maxGoals
	}
	return goals
}

// clinicalFlags derives the ordered clinical flag list from the same
// values used for the numeric computation.
func clinicalFlags(risk, fii int, behavioralAdj, envAdj float64) []string {
	flags := []string{}
	if risk >= highRiskThreshold {
		flags = append(flags, "HIGH RISK — Safety Plan Required")
	}
	if fii >= 25 {
		flags = append(flags, "Severe Functional Impairment")
	}
	if behavioralAdj >= 10 {
		flags = append(flags, "Significant Behavioral Risk")
	}
	if envAdj >= 6 {
		flags = append(flags, "Multiple Environmental Stressors")
	}
	return flags
}

// buildRationale regenerates the human-readable trace from the computed
// values. Only nonzero adjustments get a line; the order mirrors the
// calculation steps.
func buildRationale(fii int, base, adaptiveAdj, skillAdj, behavioralAdj, envAdj, ageMult, raw, final float64) []string {
	rationale := []string{fmt.Sprintf("FII: %d/36 → Base %sh", fii, formatHours(base))}
	if adaptiveAdj > 0 {
		rationale = append(rationale, fmt.Sprintf("Vineland: +%.1fh", adaptiveAdj))
	}
	if skillAdj > 0 {
		rationale = append(rationale, fmt.Sprintf("VB-MAPP: +%.1fh", skillAdj))
	}
	if behavioralAdj > 0 {
		rationale = append(rationale, fmt.Sprintf("Behavioral: +%.1fh", behavioralAdj))
	}
	if envAdj > 0 {
		rationale = append(rationale, fmt.Sprintf("Environmental: +%.1fh", envAdj))
	}
	rationale = append(rationale, fmt.Sprintf("Age ×%s → %.1f → %sh/wk",
		formatHours(ageMult), raw, formatHours(final)))
	return rationale
}

// formatHours renders a float without trailing zeros (25 not 25.0).
func formatHours(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/aba-necessity-server/internal/domain"
)

// Probability bounds and the neutral starting score of the approval
// heuristic. This is a fixed heuristic, not a trained model: every delta
// is documented here and nowhere else.
const (
	baselineScore  = 50
	minProbability = 15
	maxProbability = 95
)

// ApprovalPredictor estimates how likely a payer is to approve a computed
// recommendation. Predict is pure and deterministic; it reads the
// calculation output but never re-runs the scoring formula.
type ApprovalPredictor struct {
	logger *logrus.Logger
}

// NewApprovalPredictor creates a new approval predictor
func NewApprovalPredictor(logger *logrus.Logger) *ApprovalPredictor {
	return &ApprovalPredictor{logger: logger}
}

// Predict applies the fixed factor deltas in documented order, emitting one
// factor record per evaluated signal, then clamps to [15, 95].
func (p *ApprovalPredictor) Predict(input domain.AssessmentInput, calc domain.CalculationResult) domain.PredictionResult {
	score := baselineScore
	factors := []domain.PredictionFactor{}

	// 1. Impairment severity: higher severity means better-justified hours
	switch {
	case calc.Impairment >= 20:
		score += 15
		factors = append(factors, domain.PredictionFactor{
			Label:  "FII Score",
			Impact: domain.ImpactPositive,
			Detail: fmt.Sprintf("High severity (%d/36) strongly supports necessity", calc.Impairment),
		})
	case calc.Impairment >= 12:
		score += 5
		factors = append(factors, domain.PredictionFactor{
			Label:  "FII Score",
			Impact: domain.ImpactPositive,
			Detail: fmt.Sprintf("Moderate severity (%d/36) supports necessity", calc.Impairment),
		})
	default:
		score -= 10
		factors = append(factors, domain.PredictionFactor{
			Label:  "FII Score",
			Impact: domain.ImpactNegative,
			Detail: fmt.Sprintf("Low severity (%d/36) may weaken medical necessity", calc.Impairment),
		})
	}

	// 2. Adaptive composite presence and severity
	composite := input.Adaptive.Composite
	switch {
	case composite != nil && *composite < 70:
		score += 12
		factors = append(factors, domain.PredictionFactor{
			Label:  "Vineland-3",
			Impact: domain.ImpactPositive,
			Detail: fmt.Sprintf("Composite %s (< 70) strongly supports", formatHours(*composite)),
		})
	case composite != nil && *composite < 85:
		score += 5
		factors = append(factors, domain.PredictionFactor{
			Label:  "Vineland-3",
			Impact: domain.ImpactPositive,
			Detail: fmt.Sprintf("Composite %s supports necessity", formatHours(*composite)),
		})
	case composite == nil:
		score -= 5
		factors = append(factors, domain.PredictionFactor{
			Label:  "Vineland-3",
			Impact: domain.ImpactNegative,
			Detail: "No Vineland data — payers often require standardized assessment",
		})
	}

	// 3. Skill-acquisition data presence
	if input.Skills.AnyProvided() {
		score += 5
		factors = append(factors, domain.PredictionFactor{
			Label:  "VB-MAPP",
			Impact: domain.ImpactPositive,
			Detail: "Standardized VB-MAPP data strengthens claim",
		})
	} else {
		score -= 3
		factors = append(factors, domain.PredictionFactor{
			Label:  "VB-MAPP",
			Impact: domain.ImpactNegative,
			Detail: "Missing VB-MAPP data — recommend adding",
		})
	}

	// 4. Behavioral severity
	switch {
	case calc.BehavioralAdj >= 10:
		score += 10
		factors = append(factors, domain.PredictionFactor{
			Label:  "Behavioral Risk",
			Impact: domain.ImpactPositive,
			Detail: "Significant behavioral concerns justify intensive services",
		})
	case calc.BehavioralAdj >= 5:
		score += 3
		factors = append(factors, domain.PredictionFactor{
			Label:  "Behavioral Risk",
			Impact: domain.ImpactPositive,
			Detail: "Moderate behavioral concerns noted",
		})
	}

	// 5. Requested hours relative to typical payer scrutiny bands
	switch {
	case calc.FinalHours <= 20:
		score += 5
		factors = append(factors, domain.PredictionFactor{
			Label:  "Requested Hours",
			Impact: domain.ImpactPositive,
			Detail: fmt.Sprintf("%sh/wk within conservative range", formatHours(calc.FinalHours)),
		})
	case calc.FinalHours > 30:
		score -= 5
		factors = append(factors, domain.PredictionFactor{
			Label:  "Requested Hours",
			Impact: domain.ImpactNegative,
			Detail: fmt.Sprintf("%sh/wk — higher requests face more scrutiny", formatHours(calc.FinalHours)),
		})
	default:
		factors = append(factors, domain.PredictionFactor{
			Label:  "Requested Hours",
			Impact: domain.ImpactNeutral,
			Detail: fmt.Sprintf("%sh/wk is within moderate range", formatHours(calc.FinalHours)),
		})
	}

	// 6. Documented skill deficits
	deficits := len(input.SkillDeficits)
	switch {
	case deficits >= 4:
		score += 5
		factors = append(factors, domain.PredictionFactor{
			Label:  "Skill Deficits",
			Impact: domain.ImpactPositive,
			Detail: fmt.Sprintf("%d domains documented", deficits),
		})
	case deficits >= 2:
		score += 2
		factors = append(factors, domain.PredictionFactor{
			Label:  "Skill Deficits",
			Impact: domain.ImpactNeutral,
			Detail: fmt.Sprintf("%d domains — consider documenting more", deficits),
		})
	}

	// 7. High-risk override
	if calc.HighRisk {
		score += 8
		factors = append(factors, domain.PredictionFactor{
			Label:  "Safety Risk",
			Impact: domain.ImpactPositive,
			Detail: "High-risk flag strengthens medical necessity",
		})
	}

	probability := score
	if probability < minProbability {
		probability = minProbability
	}
	if probability > maxProbability {
		probability = maxProbability
	}

	confidence := domain.ConfidenceMedium
	if probability >= 70 || probability <= 35 {
		confidence = domain.ConfidenceHigh
	}

	outcome := domain.OutcomeLikelyDeny
	switch {
	case probability >= 70:
		outcome = domain.OutcomeLikelyApprove
	case probability >= 45:
		outcome = domain.OutcomeBorderline
	}

	p.logger.WithFields(logrus.Fields{
		"probability": probability,
		"confidence":  confidence,
		"outcome":     outcome,
		"factors":     len(factors),
	}).Debug("Computed approval prediction")

	return domain.PredictionResult{
		Probability: probability,
		Confidence:  confidence,
		Factors:     factors,
		Outcome:     outcome,
	}
}

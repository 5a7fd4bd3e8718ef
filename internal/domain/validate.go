package domain

import "fmt"

// Validation happens at the request boundary before anything reaches the
// scoring engine. The engine treats absent values as "not provided" and is
// total over anything that passes here.

const (
	minAge = 0
	maxAge = 21

	minStandardScore = 20
	maxStandardScore = 160

	maxRating = 4
)

// Validate checks an assessment for out-of-range or malformed fields and
// returns the first violation found.
func (a *AssessmentInput) Validate() error {
	if a.Age < minAge || a.Age > maxAge {
		return NewValidationError("age", fmt.Sprintf("must be between %d and %d", minAge, maxAge), a.Age)
	}

	switch a.Diagnosis {
	case DiagnosisAutism, DiagnosisPDD, DiagnosisAspergers, DiagnosisOtherASD:
	default:
		return NewValidationError("diagnosis", "unknown diagnosis", a.Diagnosis)
	}

	for domain, rating := range a.Impairment {
		if !knownImpairmentDomain(domain) {
			return NewValidationError("impairment", "unknown impairment domain", domain)
		}
		if rating < 0 || rating > maxRating {
			return NewValidationError(
				fmt.Sprintf("impairment.%s", domain),
				fmt.Sprintf("rating must be between 0 and %d", maxRating), rating)
		}
	}

	adaptive := map[string]*float64{
		"adaptive.communication": a.Adaptive.Communication,
		"adaptive.daily_living":  a.Adaptive.DailyLiving,
		"adaptive.socialization": a.Adaptive.Socialization,
		"adaptive.motor":         a.Adaptive.Motor,
		"adaptive.composite":     a.Adaptive.Composite,
	}
	for field, score := range adaptive {
		if score == nil {
			continue
		}
		if *score < minStandardScore || *score > maxStandardScore {
			return NewValidationError(field,
				fmt.Sprintf("standard score must be between %d and %d", minStandardScore, maxStandardScore), *score)
		}
	}

	if err := a.Skills.validate(); err != nil {
		return err
	}

	if err := a.Behavioral.validate(); err != nil {
		return err
	}

	for factor := range a.Environment {
		if !knownEnvironmentalFactor(factor) {
			return NewValidationError("environment", "unknown environmental factor", factor)
		}
	}

	for domain, rating := range a.RiskRatings {
		if !knownRiskDomain(domain) {
			return NewValidationError("risk_ratings", "unknown risk domain", domain)
		}
		if rating < 0 || rating > maxRating {
			return NewValidationError(
				fmt.Sprintf("risk_ratings.%s", domain),
				fmt.Sprintf("rating must be between 0 and %d", maxRating), rating)
		}
	}

	return nil
}

func (s SkillScores) validate() error {
	if s.Milestones != nil && (*s.Milestones < 0 || *s.Milestones > 170) {
		return NewValidationError("skills.milestones", "must be between 0 and 170", *s.Milestones)
	}
	if s.Barriers != nil && (*s.Barriers < 0 || *s.Barriers > 96) {
		return NewValidationError("skills.barriers", "must be between 0 and 96", *s.Barriers)
	}
	if s.Transition != nil && (*s.Transition < 0 || *s.Transition > 18) {
		return NewValidationError("skills.transition", "must be between 0 and 18", *s.Transition)
	}
	return nil
}

func (b BehavioralProfile) validate() error {
	switch b.AggressionFreq {
	case "", AggressionNone, AggressionMonthly, AggressionSixPlus, AggressionDaily:
	default:
		return NewValidationError("behavioral.aggression_freq", "unknown aggression frequency", b.AggressionFreq)
	}
	switch b.SelfInjury {
	case "", SelfInjuryNone, SelfInjuryMild, SelfInjuryModerate, SelfInjurySevere:
	default:
		return NewValidationError("behavioral.self_injury", "unknown self-injury severity", b.SelfInjury)
	}
	switch b.CrisisEvents {
	case "", CrisisNone, CrisisOne, CrisisTwoPlus:
	default:
		return NewValidationError("behavioral.crisis_events", "unknown crisis event count", b.CrisisEvents)
	}
	return nil
}

// Validate checks a patient registration.
func (p *Patient) Validate() error {
	if p.Name == "" {
		return NewValidationError("name", "must not be empty", p.Name)
	}
	if p.Age < minAge || p.Age > maxAge {
		return NewValidationError("age", fmt.Sprintf("must be between %d and %d", minAge, maxAge), p.Age)
	}
	switch p.Diagnosis {
	case "", DiagnosisAutism, DiagnosisPDD, DiagnosisAspergers, DiagnosisOtherASD:
	default:
		return NewValidationError("diagnosis", "unknown diagnosis", p.Diagnosis)
	}
	return nil
}

// Validate checks a policy profile update for internally consistent bounds.
func (p *PolicyProfile) Validate() error {
	if p.Name == "" {
		return NewValidationError("name", "must not be empty", p.Name)
	}
	if p.MinHours < 0 || p.MaxHours <= 0 || p.MinHours > p.MaxHours {
		return NewValidationError("hours", "min_hours must be <= max_hours and non-negative", nil)
	}
	weights := map[string]float64{
		"adaptive_weight":      p.AdaptiveWeight,
		"skill_weight":         p.SkillWeight,
		"behavioral_weight":    p.BehavioralWeight,
		"environmental_weight": p.EnvironmentalWeight,
	}
	for field, w := range weights {
		if w < 0 {
			return NewValidationError(field, "must be non-negative", w)
		}
	}
	if p.AgeMultipliers.Young <= 0 || p.AgeMultipliers.Mid <= 0 || p.AgeMultipliers.Teen <= 0 {
		return NewValidationError("age_multipliers", "must be positive", p.AgeMultipliers)
	}
	if p.ParentTraining.Min < 0 || p.ParentTraining.Min > p.ParentTraining.Max {
		return NewValidationError("parent_training", "min must be <= max and non-negative", p.ParentTraining)
	}
	return nil
}

func knownImpairmentDomain(d ImpairmentDomain) bool {
	for _, known := range ImpairmentDomains {
		if d == known {
			return true
		}
	}
	return false
}

func knownEnvironmentalFactor(f EnvironmentalFactor) bool {
	for _, known := range EnvironmentalFactors {
		if f == known {
			return true
		}
	}
	return false
}

func knownRiskDomain(d RiskDomain) bool {
	for _, known := range RiskDomains {
		if d == known {
			return true
		}
	}
	return false
}

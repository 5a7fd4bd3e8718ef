package service

import (
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aba-necessity-server/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func floatPtr(v float64) *float64 {
	return &v
}

func defaultPolicy() domain.PolicyProfile {
	return domain.PolicyProfile{
		Name:                "Default",
		MaxHours:            40,
		MinHours:            10,
		AdaptiveWeight:      1,
		SkillWeight:         1,
		BehavioralWeight:    1,
		EnvironmentalWeight: 1,
		AgeMultipliers:      domain.AgeMultipliers{Young: 1.2, Mid: 1.0, Teen: 0.85},
		ParentTraining:      domain.HourRange{Min: 2, Max: 8},
	}
}

func uniformImpairment(rating int) map[domain.ImpairmentDomain]int {
	ratings := make(map[domain.ImpairmentDomain]int, len(domain.ImpairmentDomains))
	for _, d := range domain.ImpairmentDomains {
		ratings[d] = rating
	}
	return ratings
}

func TestBaseHoursThresholds(t *testing.T) {
	tests := []struct {
		name string
		fii  int
		want float64
	}{
		{"zero impairment", 0, 10},
		{"top of lowest band", 8, 10},
		{"just above lowest band", 9, 20},
		{"top of second band", 16, 20},
		{"third band", 17, 30},
		{"top of third band", 24, 30},
		{"severe", 25, 35},
		{"maximum", 36, 35},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, baseHours(tt.fii))
		})
	}
}

func TestComputeMaxImpairmentGivesTopBase(t *testing.T) {
	engine := NewScoreEngine(testLogger())

	input := domain.AssessmentInput{Age: 8, Diagnosis: domain.DiagnosisAutism, Impairment: uniformImpairment(4)}
	result := engine.Compute(input, defaultPolicy())

	assert.Equal(t, 36, result.Impairment)
	assert.Equal(t, float64(35), result.BaseHours)
}

func TestComputeEndToEndModerateCase(t *testing.T) {
	engine := NewScoreEngine(testLogger())

	// All nine domains rated 2: impairment 18, base 20. A four-year-old
	// with no other data gets the young multiplier: 20 x 1.2 = 24, which
	// rounds to 25.
	input := domain.AssessmentInput{
		Age:        4,
		Diagnosis:  domain.DiagnosisAutism,
		Impairment: uniformImpairment(2),
	}
	result := engine.Compute(input, defaultPolicy())

	assert.Equal(t, 18, result.Impairment)
	assert.Equal(t, float64(20), result.BaseHours)
	assert.Equal(t, 1.2, result.AgeMultiplier)
	assert.InDelta(t, 24.0, result.RawTotal, 1e-9)
	assert.Equal(t, float64(25), result.FinalHours)
	assert.Equal(t, 2, result.Tier)
	assert.Equal(t, 4, result.SupervisionHours)
	assert.Equal(t, float64(5), result.ParentTraining)
	assert.Equal(t, 2, result.Goals)
	assert.Equal(t, 0, result.RiskScore)
	assert.False(t, result.HighRisk)
	assert.Empty(t, result.Flags)

	require.Len(t, result.Rationale, 2)
	assert.Equal(t, "FII: 18/36 → Base 20h", result.Rationale[0])
	assert.Equal(t, "Age ×1.2 → 24.0 → 25h/wk", result.Rationale[1])
}

func TestComputeHighRiskForcesNeutralAgeMultiplier(t *testing.T) {
	engine := NewScoreEngine(testLogger())

	input := domain.AssessmentInput{
		Age:        4,
		Diagnosis:  domain.DiagnosisAutism,
		Impairment: uniformImpairment(2),
		RiskRatings: map[domain.RiskDomain]int{
			domain.RiskSelfHarm:        4,
			domain.RiskHarmToOthers:    4,
			domain.RiskElopement:       4,
			domain.RiskSafetyAwareness: 4,
		},
	}
	result := engine.Compute(input, defaultPolicy())

	assert.Equal(t, 16, result.RiskScore)
	assert.True(t, result.HighRisk)
	assert.Equal(t, 1.0, result.AgeMultiplier, "young multiplier must not apply to high-risk cases")
	assert.Contains(t, result.Flags, "HIGH RISK — Safety Plan Required")
}

func TestComputeSevereSelfInjuryTriggersHighRisk(t *testing.T) {
	engine := NewScoreEngine(testLogger())

	input := domain.AssessmentInput{
		Age:        3,
		Diagnosis:  domain.DiagnosisAutism,
		Impairment: uniformImpairment(1),
		Behavioral: domain.BehavioralProfile{SelfInjury: domain.SelfInjurySevere},
	}
	result := engine.Compute(input, defaultPolicy())

	assert.True(t, result.HighRisk)
	assert.Equal(t, 1.0, result.AgeMultiplier)
}

func TestAdaptiveAdjustmentCapAppliesBeforeWeight(t *testing.T) {
	engine := NewScoreEngine(testLogger())

	// Four domains below 70: count bonus 8 plus below-70 bonus 4 caps at
	// 12 before the weight doubles it.
	policy := defaultPolicy()
	policy.AdaptiveWeight = 2

	input := domain.AssessmentInput{
		Age:        8,
		Diagnosis:  domain.DiagnosisAutism,
		Impairment: uniformImpairment(1),
		Adaptive: domain.AdaptiveScores{
			Communication: floatPtr(60),
			DailyLiving:   floatPtr(62),
			Socialization: floatPtr(58),
			Motor:         floatPtr(65),
		},
	}
	result := engine.Compute(input, policy)

	assert.Equal(t, float64(24), result.AdaptiveAdj)
}

func TestAdaptiveAdjustmentTable(t *testing.T) {
	tests := []struct {
		name   string
		scores domain.AdaptiveScores
		want   float64
	}{
		{"no scores at all", domain.AdaptiveScores{}, 0},
		{
			// The composite alone never produces an adjustment.
			"composite only",
			domain.AdaptiveScores{Composite: floatPtr(60)},
			0,
		},
		{
			"one domain below 85",
			domain.AdaptiveScores{Communication: floatPtr(80)},
			2,
		},
		{
			"two below 85",
			domain.AdaptiveScores{Communication: floatPtr(80), Motor: floatPtr(82)},
			4,
		},
		{
			"three below 85",
			domain.AdaptiveScores{Communication: floatPtr(80), Motor: floatPtr(82), DailyLiving: floatPtr(79)},
			6,
		},
		{
			"four below 85",
			domain.AdaptiveScores{
				Communication: floatPtr(80), Motor: floatPtr(82),
				DailyLiving: floatPtr(79), Socialization: floatPtr(84),
			},
			8,
		},
		{
			"one domain below 70 adds severity bonus",
			domain.AdaptiveScores{Communication: floatPtr(65)},
			6, // 2 for the count, 4 for below 70
		},
		{
			// The composite is excluded from the below-85 count but has
			// its own below-70 bonus.
			"composite below 70 adds separate bonus",
			domain.AdaptiveScores{Communication: floatPtr(80), Composite: floatPtr(65)},
			6, // 2 for the count, 4 for the composite
		},
		{
			"everything severe caps at 12",
			domain.AdaptiveScores{
				Communication: floatPtr(60), Motor: floatPtr(62),
				DailyLiving: floatPtr(58), Socialization: floatPtr(64),
				Composite: floatPtr(61),
			},
			12, // 8 + 4 + 4 = 16 capped
		},
		{
			"healthy scores",
			domain.AdaptiveScores{
				Communication: floatPtr(100), Motor: floatPtr(95),
				DailyLiving: floatPtr(102), Socialization: floatPtr(98),
			},
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, adaptiveAdjustment(tt.scores))
		})
	}
}

func TestSkillAdjustmentSubScalesAreIndependent(t *testing.T) {
	tests := []struct {
		name   string
		scores domain.SkillScores
		want   float64
	}{
		{"nothing assessed", domain.SkillScores{}, 0},
		{"low milestones only", domain.SkillScores{Milestones: floatPtr(40)}, 6},
		{"mid milestones only", domain.SkillScores{Milestones: floatPtr(80)}, 3},
		{"high milestones", domain.SkillScores{Milestones: floatPtr(120)}, 0},
		{"severe barriers only", domain.SkillScores{Barriers: floatPtr(20)}, 6},
		{"moderate barriers", domain.SkillScores{Barriers: floatPtr(15)}, 4},
		{"mild barriers", domain.SkillScores{Barriers: floatPtr(8)}, 2},
		{"low transition only", domain.SkillScores{Transition: floatPtr(4)}, 2},
		{"mid transition", domain.SkillScores{Transition: floatPtr(10)}, 1},
		{
			"all three combine and cap",
			domain.SkillScores{Milestones: floatPtr(30), Barriers: floatPtr(22), Transition: floatPtr(3)},
			12, // 6 + 6 + 2 capped
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, skillAdjustment(tt.scores))
		})
	}
}

func TestBehavioralAdjustmentCap(t *testing.T) {
	b := domain.BehavioralProfile{
		AggressionFreq: domain.AggressionDaily,
		SelfInjury:     domain.SelfInjurySevere,
		Elopement:      true,
		CrisisEvents:   domain.CrisisTwoPlus,
	}
	// 5 + 8 + 5 + 8 = 26 capped at 16
	assert.Equal(t, float64(16), behavioralAdjustment(b))
}

func TestBehavioralAdjustmentTable(t *testing.T) {
	tests := []struct {
		name string
		b    domain.BehavioralProfile
		want float64
	}{
		{"empty profile", domain.BehavioralProfile{}, 0},
		{"monthly aggression scores nothing", domain.BehavioralProfile{AggressionFreq: domain.AggressionMonthly}, 0},
		{"six-plus aggression", domain.BehavioralProfile{AggressionFreq: domain.AggressionSixPlus}, 3},
		{"daily aggression", domain.BehavioralProfile{AggressionFreq: domain.AggressionDaily}, 5},
		{"mild self-injury", domain.BehavioralProfile{SelfInjury: domain.SelfInjuryMild}, 3},
		{"moderate self-injury", domain.BehavioralProfile{SelfInjury: domain.SelfInjuryModerate}, 5},
		{"severe self-injury", domain.BehavioralProfile{SelfInjury: domain.SelfInjurySevere}, 8},
		{"elopement", domain.BehavioralProfile{Elopement: true}, 5},
		{"one crisis event", domain.BehavioralProfile{CrisisEvents: domain.CrisisOne}, 5},
		{"repeat crises", domain.BehavioralProfile{CrisisEvents: domain.CrisisTwoPlus}, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, behavioralAdjustment(tt.b))
		})
	}
}

func TestEnvironmentalAdjustmentCap(t *testing.T) {
	all := make(map[domain.EnvironmentalFactor]bool, len(domain.EnvironmentalFactors))
	for _, f := range domain.EnvironmentalFactors {
		all[f] = true
	}
	// 7 x 2 = 14 capped at 8
	assert.Equal(t, float64(8), environmentalAdjustment(all))

	two := map[domain.EnvironmentalFactor]bool{
		domain.EnvRegression:       true,
		domain.EnvCaregiverBurnout: true,
		domain.EnvCPSInvolvement:   false,
	}
	assert.Equal(t, float64(4), environmentalAdjustment(two))
}

func TestRoundToNearestFiveHalfUp(t *testing.T) {
	tests := []struct {
		raw  float64
		want float64
	}{
		{22.4, 20},
		{22.5, 25}, // exact half rounds toward the higher multiple
		{22.6, 25},
		{12.5, 15},
		{24.0, 25},
		{20.0, 20},
		{9.35, 10},
		{63.6, 65},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, roundToNearestFive(tt.raw), "rounding %.2f", tt.raw)
	}
}

func TestComputeFinalHoursAlwaysMultipleOfFiveWithinBounds(t *testing.T) {
	engine := NewScoreEngine(testLogger())
	policy := defaultPolicy()

	for rating := 0; rating <= 4; rating++ {
		for age := 2; age <= 21; age += 3 {
			input := domain.AssessmentInput{
				Age:        age,
				Diagnosis:  domain.DiagnosisAutism,
				Impairment: uniformImpairment(rating),
				Behavioral: domain.BehavioralProfile{AggressionFreq: domain.AggressionDaily},
			}
			result := engine.Compute(input, policy)

			assert.Zero(t, int(result.FinalHours)%5, "final %v not a multiple of 5", result.FinalHours)
			assert.GreaterOrEqual(t, result.FinalHours, policy.MinHours)
			assert.LessOrEqual(t, result.FinalHours, policy.MaxHours)

			switch {
			case result.FinalHours >= 30:
				assert.Equal(t, 3, result.Tier)
			case result.FinalHours >= 20:
				assert.Equal(t, 2, result.Tier)
			default:
				assert.Equal(t, 1, result.Tier)
			}
		}
	}
}

func TestComputeClampsToPolicyBounds(t *testing.T) {
	engine := NewScoreEngine(testLogger())

	policy := defaultPolicy()
	policy.MaxHours = 30

	input := domain.AssessmentInput{
		Age:        4,
		Diagnosis:  domain.DiagnosisAutism,
		Impairment: uniformImpairment(4),
		Behavioral: domain.BehavioralProfile{
			AggressionFreq: domain.AggressionDaily,
			CrisisEvents:   domain.CrisisTwoPlus,
			Elopement:      true,
		},
	}
	result := engine.Compute(input, policy)
	assert.Equal(t, float64(30), result.FinalHours)

	// Minimal case clamps up to the floor.
	policy = defaultPolicy()
	policy.MinHours = 15
	minimal := domain.AssessmentInput{Age: 18, Diagnosis: domain.DiagnosisAspergers, Impairment: uniformImpairment(0)}
	result = engine.Compute(minimal, policy)
	assert.Equal(t, float64(15), result.FinalHours)
}

func TestSupervisionHoursByTier(t *testing.T) {
	tests := []struct {
		final float64
		tier  int
		want  int
	}{
		{10, 1, 1},  // ceil(10 x 0.10)
		{25, 2, 4},  // ceil(25 x 0.15) = ceil(3.75)
		{30, 3, 6},  // ceil(30 x 0.20)
		{40, 3, 8},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.tier, hourTier(tt.final))
		assert.Equal(t, tt.want, int(math.Ceil(tt.final*supervisionPct[tt.tier])))
	}
}

func TestParentTrainingHoursByTier(t *testing.T) {
	r := domain.HourRange{Min: 2, Max: 8}
	assert.Equal(t, float64(8), parentTrainingHours(3, r))
	assert.Equal(t, float64(5), parentTrainingHours(2, r))
	assert.Equal(t, float64(2), parentTrainingHours(1, r))

	odd := domain.HourRange{Min: 3, Max: 10}
	assert.Equal(t, float64(7), parentTrainingHours(2, odd)) // round(6.5)
}

func TestGoalCount(t *testing.T) {
	tests := []struct {
		name     string
		deficits int
		fii      int
		want     int
	}{
		{"floor of two", 0, 0, 2},
		{"impairment bonus only", 0, 18, 2},
		{"mid impairment bonus", 3, 15, 4},
		{"high impairment bonus", 3, 25, 5},
		{"ceiling of twelve", 15, 30, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, goalCount(tt.deficits, tt.fii))
		})
	}
}

func TestClinicalFlagsOrder(t *testing.T) {
	flags := clinicalFlags(16, 26, 12, 6)
	require.Len(t, flags, 4)
	assert.Equal(t, []string{
		"HIGH RISK — Safety Plan Required",
		"Severe Functional Impairment",
		"Significant Behavioral Risk",
		"Multiple Environmental Stressors",
	}, flags)

	assert.Empty(t, clinicalFlags(0, 0, 0, 0))
}

func TestComputeRationaleSkipsZeroAdjustments(t *testing.T) {
	engine := NewScoreEngine(testLogger())

	input := domain.AssessmentInput{
		Age:        7,
		Diagnosis:  domain.DiagnosisAutism,
		Impairment: uniformImpairment(2),
		Adaptive:   domain.AdaptiveScores{Communication: floatPtr(80)},
		Behavioral: domain.BehavioralProfile{AggressionFreq: domain.AggressionSixPlus},
	}
	result := engine.Compute(input, defaultPolicy())

	require.Len(t, result.Rationale, 4)
	assert.Equal(t, "FII: 18/36 → Base 20h", result.Rationale[0])
	assert.Equal(t, "Vineland: +2.0h", result.Rationale[1])
	assert.Equal(t, "Behavioral: +3.0h", result.Rationale[2])
	assert.Equal(t, "Age ×1 → 25.0 → 25h/wk", result.Rationale[3])
}

func TestComputeIsDeterministic(t *testing.T) {
	engine := NewScoreEngine(testLogger())

	input := domain.AssessmentInput{
		Age:        9,
		Diagnosis:  domain.DiagnosisAutism,
		Impairment: uniformImpairment(3),
		Adaptive:   domain.AdaptiveScores{Communication: floatPtr(64), Composite: floatPtr(66)},
		Skills:     domain.SkillScores{Milestones: floatPtr(40)},
		Behavioral: domain.BehavioralProfile{SelfInjury: domain.SelfInjuryModerate},
		Environment: map[domain.EnvironmentalFactor]bool{
			domain.EnvRegression: true,
		},
		SkillDeficits: []string{"Communication", "Social Skills"},
	}

	first := engine.Compute(input, defaultPolicy())
	second := engine.Compute(input, defaultPolicy())
	assert.Equal(t, first, second)
}

package domain

import (
	"time"
)

// Core Enums and Types

// ActorRole identifies which side of the review workflow performed an action.
type ActorRole string

const (
	RoleClinic    ActorRole = "clinic"
	RoleInsurance ActorRole = "insurance"
)

// Diagnosis represents the primary diagnosis on an assessment.
type Diagnosis string

const (
	DiagnosisAutism    Diagnosis = "autism"
	DiagnosisPDD       Diagnosis = "pdd"
	DiagnosisAspergers Diagnosis = "aspergers"
	DiagnosisOtherASD  Diagnosis = "other"
)

// AggressionFrequency represents how often aggressive episodes occur.
type AggressionFrequency string

const (
	AggressionNone    AggressionFrequency = "none"
	AggressionMonthly AggressionFrequency = "monthly"
	AggressionSixPlus AggressionFrequency = "6plus"
	AggressionDaily   AggressionFrequency = "daily"
)

// SelfInjurySeverity represents the severity of self-injurious behavior.
type SelfInjurySeverity string

const (
	SelfInjuryNone     SelfInjurySeverity = "none"
	SelfInjuryMild     SelfInjurySeverity = "mild"
	SelfInjuryModerate SelfInjurySeverity = "moderate"
	SelfInjurySevere   SelfInjurySeverity = "severe"
)

// CrisisEvents represents the count of crisis events in the past six months.
type CrisisEvents string

const (
	CrisisNone    CrisisEvents = "0"
	CrisisOne     CrisisEvents = "1"
	CrisisTwoPlus CrisisEvents = "2plus"
)

// ImpairmentDomain is one of the nine rated functional impairment domains.
type ImpairmentDomain string

const (
	ImpairmentCommunication       ImpairmentDomain = "communication"
	ImpairmentSocialReciprocity   ImpairmentDomain = "social_reciprocity"
	ImpairmentAdaptiveSkills      ImpairmentDomain = "adaptive_skills"
	ImpairmentEmotionalRegulation ImpairmentDomain = "emotional_regulation"
	ImpairmentSafetyAggression    ImpairmentDomain = "safety_aggression"
	ImpairmentSelfInjury          ImpairmentDomain = "self_injury"
	ImpairmentSchoolCommunity     ImpairmentDomain = "school_community"
	ImpairmentFamilyImpact        ImpairmentDomain = "family_impact"
	ImpairmentRRB                 ImpairmentDomain = "restricted_repetitive"
)

// ImpairmentDomains lists all rated domains in canonical order.
var ImpairmentDomains = []ImpairmentDomain{
	ImpairmentCommunication,
	ImpairmentSocialReciprocity,
	ImpairmentAdaptiveSkills,
	ImpairmentEmotionalRegulation,
	ImpairmentSafetyAggression,
	ImpairmentSelfInjury,
	ImpairmentSchoolCommunity,
	ImpairmentFamilyImpact,
	ImpairmentRRB,
}

// EnvironmentalFactor is one of the seven boolean environmental modifiers.
type EnvironmentalFactor string

const (
	EnvSchoolPlacementRisk EnvironmentalFactor = "school_placement_risk"
	EnvCPSInvolvement      EnvironmentalFactor = "cps_involvement"
	EnvRegression          EnvironmentalFactor = "regression"
	EnvCaregiverBurnout    EnvironmentalFactor = "caregiver_burnout"
	EnvServiceLoss         EnvironmentalFactor = "aba_service_loss"
	EnvLimitedCaregiver    EnvironmentalFactor = "limited_caregiver_capacity"
	EnvNoSchoolSupports    EnvironmentalFactor = "no_school_supports"
)

// EnvironmentalFactors lists all modifiers in canonical order.
var EnvironmentalFactors = []EnvironmentalFactor{
	EnvSchoolPlacementRisk,
	EnvCPSInvolvement,
	EnvRegression,
	EnvCaregiverBurnout,
	EnvServiceLoss,
	EnvLimitedCaregiver,
	EnvNoSchoolSupports,
}

// RiskDomain is one of the six rated safety risk domains.
type RiskDomain string

const (
	RiskSelfHarm             RiskDomain = "self_harm"
	RiskHarmToOthers         RiskDomain = "harm_to_others"
	RiskElopement            RiskDomain = "elopement"
	RiskSafetyAwareness      RiskDomain = "safety_awareness"
	RiskRestrictivePlacement RiskDomain = "restrictive_placement"
	RiskMedicalComplexity    RiskDomain = "medical_complexity"
)

// RiskDomains lists all risk domains in canonical order.
var RiskDomains = []RiskDomain{
	RiskSelfHarm,
	RiskHarmToOthers,
	RiskElopement,
	RiskSafetyAwareness,
	RiskRestrictivePlacement,
	RiskMedicalComplexity,
}

// Assessment Input Models

// AdaptiveScores holds Vineland-style standard scores (valid range 20-160).
// Nil means the score was not provided; an absent score is excluded from
// the adjustment rather than treated as zero.
type AdaptiveScores struct {
	Communication *float64 `json:"communication,omitempty"`
	DailyLiving   *float64 `json:"daily_living,omitempty"`
	Socialization *float64 `json:"socialization,omitempty"`
	Motor         *float64 `json:"motor,omitempty"`
	Composite     *float64 `json:"composite,omitempty"`
}

// Domains returns the four named domain scores in canonical order,
// excluding the composite.
func (s AdaptiveScores) Domains() []*float64 {
	return []*float64{s.Communication, s.DailyLiving, s.Socialization, s.Motor}
}

// SkillScores holds VB-MAPP-style sub-scale scores. Nil means not assessed;
// each sub-scale contributes independently.
type SkillScores struct {
	Milestones *float64 `json:"milestones,omitempty"`
	Barriers   *float64 `json:"barriers,omitempty"`
	Transition *float64 `json:"transition,omitempty"`
}

// AnyProvided reports whether at least one sub-scale was assessed.
func (s SkillScores) AnyProvided() bool {
	return s.Milestones != nil || s.Barriers != nil || s.Transition != nil
}

// BehavioralProfile captures the behavioral risk factors of an assessment.
type BehavioralProfile struct {
	AggressionFreq AggressionFrequency `json:"aggression_freq"`
	SelfInjury     SelfInjurySeverity  `json:"self_injury"`
	Elopement      bool                `json:"elopement"`
	CrisisEvents   CrisisEvents        `json:"crisis_events"`
}

// AssessmentInput is the full structured clinical assessment a dosage
// recommendation is computed from. Absent map keys and nil scores mean
// "not provided", never zero.
type AssessmentInput struct {
	PatientID     string                       `json:"patient_id,omitempty"`
	PatientName   string                       `json:"patient_name,omitempty"`
	Age           int                          `json:"age"`
	Diagnosis     Diagnosis                    `json:"diagnosis"`
	EduSetting    string                       `json:"educational_setting,omitempty"`
	Living        string                       `json:"living_situation,omitempty"`
	Impairment    map[ImpairmentDomain]int     `json:"impairment"`
	Adaptive      AdaptiveScores               `json:"adaptive"`
	Skills        SkillScores                  `json:"skills"`
	Behavioral    BehavioralProfile            `json:"behavioral"`
	Environment   map[EnvironmentalFactor]bool `json:"environment,omitempty"`
	RiskRatings   map[RiskDomain]int           `json:"risk_ratings,omitempty"`
	SkillDeficits []string                     `json:"skill_deficits,omitempty"`
}

// Policy Models

// AgeMultipliers are the payer's age-band multipliers applied to the raw
// hour total. Young covers ages <=5, Mid <=12, Teen everything older.
type AgeMultipliers struct {
	Young float64 `json:"young"`
	Mid   float64 `json:"mid"`
	Teen  float64 `json:"teen"`
}

// HourRange is an inclusive [Min, Max] range of weekly hours.
type HourRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// PolicyProfile is a payer's configuration of the scoring formula.
// The functional impairment weight is implicitly 1.0 and is not
// represented; supervision percentages are tier-fixed and not
// payer-configurable.
type PolicyProfile struct {
	ID                  string         `json:"id,omitempty"`
	Name                string         `json:"name"`
	MaxHours            float64        `json:"max_hours"`
	MinHours            float64        `json:"min_hours"`
	AdaptiveWeight      float64        `json:"adaptive_weight"`
	SkillWeight         float64        `json:"skill_weight"`
	BehavioralWeight    float64        `json:"behavioral_weight"`
	EnvironmentalWeight float64        `json:"environmental_weight"`
	AgeMultipliers      AgeMultipliers `json:"age_multipliers"`
	ParentTraining      HourRange      `json:"parent_training"`
	CreatedAt           time.Time      `json:"created_at,omitempty"`
	UpdatedAt           time.Time      `json:"updated_at,omitempty"`
}

// Result Models

// CalculationResult is the immutable output of a dosage calculation.
// It is recomputed from scratch whenever inputs or policy change.
type CalculationResult struct {
	Impairment       int      `json:"impairment"`
	BaseHours        float64  `json:"base_hours"`
	AdaptiveAdj      float64  `json:"adaptive_adj"`
	SkillAdj         float64  `json:"skill_adj"`
	BehavioralAdj    float64  `json:"behavioral_adj"`
	EnvironmentalAdj float64  `json:"environmental_adj"`
	AgeMultiplier    float64  `json:"age_multiplier"`
	RawTotal         float64  `json:"raw_total"`
	FinalHours       float64  `json:"final_hours"`
	Tier             int      `json:"tier"`
	SupervisionHours int      `json:"supervision_hours"`
	ParentTraining   float64  `json:"parent_training_hours"`
	Goals            int      `json:"goals"`
	RiskScore        int      `json:"risk_score"`
	Flags            []string `json:"flags"`
	Rationale        []string `json:"rationale"`
	HighRisk         bool     `json:"high_risk"`
}

// ConfidenceLevel categorizes how confident an approval prediction is.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// OutcomeTier buckets the predicted review outcome.
type OutcomeTier string

const (
	OutcomeLikelyApprove OutcomeTier = "likely-approve"
	OutcomeBorderline    OutcomeTier = "borderline"
	OutcomeLikelyDeny    OutcomeTier = "likely-deny"
)

// FactorImpact is the polarity of a prediction factor.
type FactorImpact string

const (
	ImpactPositive FactorImpact = "positive"
	ImpactNegative FactorImpact = "negative"
	ImpactNeutral  FactorImpact = "neutral"
)

// PredictionFactor is a single named contributor to the approval estimate.
type PredictionFactor struct {
	Label  string       `json:"label"`
	Impact FactorImpact `json:"impact"`
	Detail string       `json:"detail"`
}

// PredictionResult is the deterministic approval likelihood estimate
// derived from a calculation result and its assessment input.
type PredictionResult struct {
	Probability int                `json:"probability"`
	Confidence  ConfidenceLevel    `json:"confidence"`
	Factors     []PredictionFactor `json:"factors"`
	Outcome     OutcomeTier        `json:"outcome"`
}

// Patient Models

// Patient is a registry entry the clinic assesses against. Claims snapshot
// the patient fields they need at submission time, so editing a patient
// never rewrites submitted claims.
type Patient struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	DateOfBirth   string    `json:"date_of_birth,omitempty"`
	Age           int       `json:"age"`
	Diagnosis     Diagnosis `json:"diagnosis"`
	DiagnosisCode string    `json:"diagnosis_code,omitempty"`
	EduSetting    string    `json:"educational_setting,omitempty"`
	Living        string    `json:"living_situation,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Claim Models

// Claim is a submitted hour recommendation under payer review. The embedded
// assessment, calculation and prediction are snapshots serialized at
// submission time and never change afterwards; a new assessment produces a
// new claim. Claims are never deleted.
type Claim struct {
	ID               string            `json:"id"`
	PatientID        string            `json:"patient_id,omitempty"`
	PatientName      string            `json:"patient_name,omitempty"`
	Age              int               `json:"age"`
	Diagnosis        Diagnosis         `json:"diagnosis"`
	Status           ClaimStatus       `json:"status"`
	Assessment       AssessmentInput   `json:"assessment"`
	Calculation      CalculationResult `json:"calculation"`
	Prediction       PredictionResult  `json:"prediction"`
	RecommendedHours float64           `json:"recommended_hours"`
	ApprovedHours    *float64          `json:"approved_hours,omitempty"`
	Tier             int               `json:"tier"`
	ReviewNotes      string            `json:"review_notes,omitempty"`
	SubmittedAt      time.Time         `json:"submitted_at"`
	ReviewedAt       *time.Time        `json:"reviewed_at,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// AuditEntry is an append-only record of a claim action. Entries are never
// mutated or deleted.
type AuditEntry struct {
	ID         int64     `json:"id,omitempty"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Action     string    `json:"action"`
	Details    string    `json:"details,omitempty"`
	ActorRole  ActorRole `json:"actor_role"`
	CreatedAt  time.Time `json:"created_at"`
}

// ClaimStats aggregates review workload and outcome metrics.
type ClaimStats struct {
	Total      int     `json:"total"`
	Approved   int     `json:"approved"`
	Denied     int     `json:"denied"`
	Pending    int     `json:"pending"`
	AvgHours   float64 `json:"avg_hours"`
	AvgAge     float64 `json:"avg_age"`
	CommonTier int     `json:"common_tier"`
}

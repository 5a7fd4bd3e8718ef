package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/aba-necessity-server/internal/domain"
)

// ClaimService orchestrates the recommendation workflow: scoring an
// assessment, submitting the resulting snapshot as a claim, and driving
// the review state machine.
type ClaimService struct {
	logger    *logrus.Logger
	claims    domain.ClaimRepository
	engine    *ScoreEngine
	predictor *ApprovalPredictor
}

// NewClaimService creates a new claim service
func NewClaimService(logger *logrus.Logger, claims domain.ClaimRepository) *ClaimService {
	return &ClaimService{
		logger:    logger,
		claims:    claims,
		engine:    NewScoreEngine(logger),
		predictor: NewApprovalPredictor(logger),
	}
}

// Evaluate scores an assessment against a policy and estimates approval
// likelihood. It persists nothing; clinics use it for pre-submission
// estimation.
func (s *ClaimService) Evaluate(input domain.AssessmentInput, policy domain.PolicyProfile) (domain.CalculationResult, domain.PredictionResult) {
	calc := s.engine.Compute(input, policy)
	pred := s.predictor.Predict(input, calc)
	return calc, pred
}

// Submit scores the assessment, snapshots the results and creates a claim
// in the submitted state. The snapshots are frozen at this moment: a
// revised assessment must be submitted as a new claim.
func (s *ClaimService) Submit(ctx context.Context, input domain.AssessmentInput, policy domain.PolicyProfile) (*domain.Claim, error) {
	calc, pred := s.Evaluate(input, policy)

	now := time.Now().UTC()
	claim := &domain.Claim{
		ID:               uuid.New().String(),
		PatientID:        input.PatientID,
		PatientName:      input.PatientName,
		Age:              input.Age,
		Diagnosis:        input.Diagnosis,
		Status:           domain.StatusSubmitted,
		Assessment:       input,
		Calculation:      calc,
		Prediction:       pred,
		RecommendedHours: calc.FinalHours,
		Tier:             calc.Tier,
		SubmittedAt:      now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.claims.Create(ctx, claim); err != nil {
		return nil, fmt.Errorf("creating claim: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"claim_id":          claim.ID,
		"recommended_hours": claim.RecommendedHours,
		"tier":              claim.Tier,
		"probability":       pred.Probability,
	}).Info("Claim submitted")

	return claim, nil
}

// Get retrieves a claim by id.
func (s *ClaimService) Get(ctx context.Context, id string) (*domain.Claim, error) {
	return s.claims.GetByID(ctx, id)
}

// ListByRole lists claims visible to the given actor role, newest first.
// Both roles currently see the full queue; the role scopes audit context.
func (s *ClaimService) ListByRole(ctx context.Context, role domain.ActorRole) ([]*domain.Claim, error) {
	claims, err := s.claims.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing claims for %s: %w", role, err)
	}
	return claims, nil
}

// Transition moves a claim to a new review state. Terminal claims reject
// every transition; a concurrent reviewer changing the status between read
// and write surfaces as a conflict, never a silent overwrite. On approval
// the approved hours default to the recommendation frozen in the claim
// unless the reviewer overrides them.
func (s *ClaimService) Transition(ctx context.Context, id string, target domain.ClaimStatus, actor domain.ActorRole, notes string, approvedOverride *float64) (*domain.Claim, error) {
	if !target.Valid() {
		return nil, domain.NewValidationError("status", "unknown claim status", target)
	}

	claim, err := s.claims.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if claim.Status.Terminal() {
		return nil, fmt.Errorf("claim %s already decided (%s): %w", id, claim.Status, domain.ErrConflict)
	}
	if !claim.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("transition %s → %s not allowed: %w", claim.Status, target, domain.ErrConflict)
	}

	var approvedHours *float64
	if target == domain.StatusApproved {
		hours := claim.RecommendedHours
		if approvedOverride != nil {
			hours = *approvedOverride
		}
		approvedHours = &hours
	}

	updated, err := s.claims.ApplyTransition(ctx, domain.TransitionRequest{
		ClaimID:       id,
		Expected:      claim.Status,
		Target:        target,
		Notes:         notes,
		ApprovedHours: approvedHours,
		Actor:         actor,
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"claim_id": id,
		"from":     claim.Status,
		"to":       target,
		"actor":    actor,
	}).Info("Claim transitioned")

	return updated, nil
}

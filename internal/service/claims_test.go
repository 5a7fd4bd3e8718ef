package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aba-necessity-server/internal/domain"
	"github.com/aba-necessity-server/internal/repository"
)

func newTestClaimService(t *testing.T) (*ClaimService, *repository.SQLiteStore) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "claims.db")
	store, err := repository.NewSQLiteStore(dbPath, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return NewClaimService(testLogger(), store), store
}

func sampleAssessment() domain.AssessmentInput {
	return domain.AssessmentInput{
		PatientName: "Test Patient",
		Age:         4,
		Diagnosis:   domain.DiagnosisAutism,
		Impairment:  uniformImpairment(2),
	}
}

func TestEvaluateDoesNotPersist(t *testing.T) {
	svc, store := newTestClaimService(t)

	calc, pred := svc.Evaluate(sampleAssessment(), defaultPolicy())
	assert.Equal(t, float64(25), calc.FinalHours)
	assert.NotZero(t, pred.Probability)

	claims, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, claims)
}

func TestSubmitFreezesSnapshots(t *testing.T) {
	svc, store := newTestClaimService(t)
	ctx := context.Background()

	claim, err := svc.Submit(ctx, sampleAssessment(), defaultPolicy())
	require.NoError(t, err)

	assert.NotEmpty(t, claim.ID)
	assert.Equal(t, domain.StatusSubmitted, claim.Status)
	assert.Equal(t, claim.Calculation.FinalHours, claim.RecommendedHours)
	assert.Equal(t, claim.Calculation.Tier, claim.Tier)
	assert.Nil(t, claim.ApprovedHours)

	// The stored claim carries the same frozen snapshots.
	stored, err := store.GetByID(ctx, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, claim.Calculation, stored.Calculation)
	assert.Equal(t, claim.Prediction.Probability, stored.Prediction.Probability)
	assert.Equal(t, claim.Assessment.Impairment, stored.Assessment.Impairment)
}

func TestSubmitDistinctClaimsGetDistinctIDs(t *testing.T) {
	svc, _ := newTestClaimService(t)
	ctx := context.Background()

	first, err := svc.Submit(ctx, sampleAssessment(), defaultPolicy())
	require.NoError(t, err)
	second, err := svc.Submit(ctx, sampleAssessment(), defaultPolicy())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestTransitionApprovalDefaultsToRecommendedHours(t *testing.T) {
	svc, _ := newTestClaimService(t)
	ctx := context.Background()

	claim, err := svc.Submit(ctx, sampleAssessment(), defaultPolicy())
	require.NoError(t, err)

	updated, err := svc.Transition(ctx, claim.ID, domain.StatusApproved, domain.RoleInsurance, "", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusApproved, updated.Status)
	require.NotNil(t, updated.ApprovedHours)
	assert.Equal(t, claim.RecommendedHours, *updated.ApprovedHours)
}

func TestTransitionApprovalHonorsOverride(t *testing.T) {
	svc, _ := newTestClaimService(t)
	ctx := context.Background()

	claim, err := svc.Submit(ctx, sampleAssessment(), defaultPolicy())
	require.NoError(t, err)

	override := 18.0
	updated, err := svc.Transition(ctx, claim.ID, domain.StatusApproved, domain.RoleInsurance, "reduced per policy", &override)
	require.NoError(t, err)

	require.NotNil(t, updated.ApprovedHours)
	assert.Equal(t, 18.0, *updated.ApprovedHours)
	assert.Equal(t, "reduced per policy", updated.ReviewNotes)
}

func TestTransitionDenialRecordsNoApprovedHours(t *testing.T) {
	svc, _ := newTestClaimService(t)
	ctx := context.Background()

	claim, err := svc.Submit(ctx, sampleAssessment(), defaultPolicy())
	require.NoError(t, err)

	updated, err := svc.Transition(ctx, claim.ID, domain.StatusDenied, domain.RoleInsurance, "insufficient documentation", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusDenied, updated.Status)
	assert.Nil(t, updated.ApprovedHours)
}

func TestTransitionTerminalClaimRejected(t *testing.T) {
	svc, _ := newTestClaimService(t)
	ctx := context.Background()

	claim, err := svc.Submit(ctx, sampleAssessment(), defaultPolicy())
	require.NoError(t, err)

	_, err = svc.Transition(ctx, claim.ID, domain.StatusApproved, domain.RoleInsurance, "", nil)
	require.NoError(t, err)

	// Approved is final: nothing moves it, not even a re-approval.
	for _, target := range []domain.ClaimStatus{
		domain.StatusUnderReview, domain.StatusInfoRequested,
		domain.StatusApproved, domain.StatusDenied,
	} {
		_, err = svc.Transition(ctx, claim.ID, target, domain.RoleInsurance, "", nil)
		assert.ErrorIs(t, err, domain.ErrConflict, "terminal claim accepted transition to %s", target)
	}
}

func TestTransitionUnknownStatusRejected(t *testing.T) {
	svc, _ := newTestClaimService(t)

	_, err := svc.Transition(context.Background(), "any", domain.ClaimStatus("escalated"), domain.RoleInsurance, "", nil)
	require.Error(t, err)

	var verr *domain.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestTransitionUnknownClaim(t *testing.T) {
	svc, _ := newTestClaimService(t)

	_, err := svc.Transition(context.Background(), "missing", domain.StatusUnderReview, domain.RoleInsurance, "", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransitionConcurrentReviewerLosesRace(t *testing.T) {
	svc, store := newTestClaimService(t)
	ctx := context.Background()

	claim, err := svc.Submit(ctx, sampleAssessment(), defaultPolicy())
	require.NoError(t, err)

	// First reviewer moves the claim while the second still holds the
	// submitted snapshot; the stale compare-and-set must fail.
	_, err = svc.Transition(ctx, claim.ID, domain.StatusUnderReview, domain.RoleInsurance, "", nil)
	require.NoError(t, err)

	_, err = store.ApplyTransition(ctx, domain.TransitionRequest{
		ClaimID:  claim.ID,
		Expected: domain.StatusSubmitted,
		Target:   domain.StatusDenied,
		Actor:    domain.RoleInsurance,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestTransitionRepeatedInfoRequests(t *testing.T) {
	svc, _ := newTestClaimService(t)
	ctx := context.Background()

	claim, err := svc.Submit(ctx, sampleAssessment(), defaultPolicy())
	require.NoError(t, err)

	_, err = svc.Transition(ctx, claim.ID, domain.StatusInfoRequested, domain.RoleInsurance, "need school records", nil)
	require.NoError(t, err)

	updated, err := svc.Transition(ctx, claim.ID, domain.StatusInfoRequested, domain.RoleInsurance, "also need Vineland scores", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInfoRequested, updated.Status)
	assert.Equal(t, "also need Vineland scores", updated.ReviewNotes)
}

func TestListByRoleReturnsFullQueue(t *testing.T) {
	svc, _ := newTestClaimService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, sampleAssessment(), defaultPolicy())
	require.NoError(t, err)
	_, err = svc.Submit(ctx, sampleAssessment(), defaultPolicy())
	require.NoError(t, err)

	clinicView, err := svc.ListByRole(ctx, domain.RoleClinic)
	require.NoError(t, err)
	insurerView, err := svc.ListByRole(ctx, domain.RoleInsurance)
	require.NoError(t, err)

	assert.Len(t, clinicView, 2)
	assert.Len(t, insurerView, 2)
}

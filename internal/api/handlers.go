package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aba-necessity-server/internal/domain"
)

// actorRoleHeader selects which side of the workflow a request acts as.
// Authentication itself is handled upstream of this service.
const actorRoleHeader = "X-Actor-Role"

func actorRole(c *gin.Context, fallback domain.ActorRole) domain.ActorRole {
	switch domain.ActorRole(c.GetHeader(actorRoleHeader)) {
	case domain.RoleClinic:
		return domain.RoleClinic
	case domain.RoleInsurance:
		return domain.RoleInsurance
	default:
		return fallback
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

// calculateRequest scores an assessment without creating a claim.
type calculateRequest struct {
	Assessment domain.AssessmentInput `json:"assessment"`
	PolicyID   string                 `json:"policy_id,omitempty"`
}

func (s *Server) handleCalculate(c *gin.Context) {
	var req calculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, domain.NewValidationError("body", "malformed request body", nil))
		return
	}
	if err := req.Assessment.Validate(); err != nil {
		s.respondError(c, err)
		return
	}

	policy, err := s.resolvePolicy(c, req.PolicyID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	calc, pred := s.claims.Evaluate(req.Assessment, *policy)
	c.JSON(http.StatusOK, gin.H{
		"policy":      policy.Name,
		"calculation": calc,
		"prediction":  pred,
	})
}

func (s *Server) handleListClaims(c *gin.Context) {
	role := actorRole(c, domain.RoleClinic)
	claims, err := s.claims.ListByRole(c.Request.Context(), role)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if claims == nil {
		claims = []*domain.Claim{}
	}
	c.JSON(http.StatusOK, claims)
}

func (s *Server) handleGetClaim(c *gin.Context) {
	claim, err := s.claims.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, claim)
}

func (s *Server) handleCreateClaim(c *gin.Context) {
	var req calculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, domain.NewValidationError("body", "malformed request body", nil))
		return
	}
	if err := req.Assessment.Validate(); err != nil {
		s.respondError(c, err)
		return
	}

	policy, err := s.resolvePolicy(c, req.PolicyID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	claim, err := s.claims.Submit(c.Request.Context(), req.Assessment, *policy)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, claim)
}

// transitionRequest moves a claim through the review state machine.
type transitionRequest struct {
	Status        domain.ClaimStatus `json:"status"`
	Notes         string             `json:"notes,omitempty"`
	ApprovedHours *float64           `json:"approved_hours,omitempty"`
}

func (s *Server) handleClaimTransition(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, domain.NewValidationError("body", "malformed request body", nil))
		return
	}

	role := actorRole(c, domain.RoleInsurance)
	claim, err := s.claims.Transition(c.Request.Context(), c.Param("id"), req.Status, role, req.Notes, req.ApprovedHours)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, claim)
}

func (s *Server) handleClaimAudit(c *gin.Context) {
	entries, err := s.audit.ListByEntity(c.Request.Context(), "claim", c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if entries == nil {
		entries = []*domain.AuditEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) handleListPatients(c *gin.Context) {
	patients, err := s.patients.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	if patients == nil {
		patients = []*domain.Patient{}
	}
	c.JSON(http.StatusOK, patients)
}

func (s *Server) handleGetPatient(c *gin.Context) {
	patient, err := s.patients.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, patient)
}

func (s *Server) handleCreatePatient(c *gin.Context) {
	var patient domain.Patient
	if err := c.ShouldBindJSON(&patient); err != nil {
		s.respondError(c, domain.NewValidationError("body", "malformed request body", nil))
		return
	}
	if err := patient.Validate(); err != nil {
		s.respondError(c, err)
		return
	}

	if patient.ID == "" {
		patient.ID = "P-" + uuid.New().String()[:6]
	}
	if patient.DiagnosisCode == "" {
		patient.DiagnosisCode = "F84.0"
	}
	now := time.Now().UTC()
	patient.CreatedAt = now
	patient.UpdatedAt = now

	if err := s.patients.Create(c.Request.Context(), &patient); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, patient)
}

func (s *Server) handleListPolicies(c *gin.Context) {
	profiles, err := s.policies.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	if profiles == nil {
		profiles = []*domain.PolicyProfile{}
	}
	c.JSON(http.StatusOK, profiles)
}

func (s *Server) handleGetPolicy(c *gin.Context) {
	profile, err := s.policies.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) handleUpdatePolicy(c *gin.Context) {
	var profile domain.PolicyProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		s.respondError(c, domain.NewValidationError("body", "malformed request body", nil))
		return
	}
	if err := profile.Validate(); err != nil {
		s.respondError(c, err)
		return
	}

	if err := s.policies.Update(c.Request.Context(), c.Param("id"), &profile); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleAnalytics(c *gin.Context) {
	stats, err := s.analytics.Stats(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// resolvePolicy looks up the requested payer profile, falling back to the
// configured default for unauthenticated clinic-side estimation.
func (s *Server) resolvePolicy(c *gin.Context, policyID string) (*domain.PolicyProfile, error) {
	if policyID == "" {
		policy := s.defaultPolicy
		return &policy, nil
	}
	return s.policies.GetByID(c.Request.Context(), policyID)
}

// respondError maps domain errors onto distinct HTTP outcomes: validation
// failures are 400, unknown ids 404, lost transition races and decided
// claims 409.
func (s *Server) respondError(c *gin.Context, err error) {
	requestID := c.GetString("correlation_id")

	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, domain.NewAPIError(
			domain.ErrCodeValidation, validationErr.Error(), "", requestID))
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, domain.NewAPIError(
			domain.ErrCodeNotFound, err.Error(), "", requestID))
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, domain.NewAPIError(
			domain.ErrCodeConflict, err.Error(), "", requestID))
	default:
		s.logger.WithError(err).WithField("request_id", requestID).Error("Request failed")
		c.JSON(http.StatusInternalServerError, domain.NewAPIError(
			domain.ErrCodeInternalServer, "internal server error", "", requestID))
	}
}

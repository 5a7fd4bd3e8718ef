package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/aba-necessity-server/internal/domain"
)

// ClaimRepository handles claim persistence on Postgres.
type ClaimRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewClaimRepository creates a new claim repository
func NewClaimRepository(db *pgxpool.Pool, logger *logrus.Logger) *ClaimRepository {
	return &ClaimRepository{db: db, log: logger}
}

// Create inserts a claim and its creation audit entry in one transaction.
func (r *ClaimRepository) Create(ctx context.Context, claim *domain.Claim) error {
	assessment, calc, pred, err := marshalSnapshots(claim)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO claims (
			id, patient_id, patient_name, age, diagnosis, status,
			assessment_data, calc_result, prediction,
			recommended_hours, tier, review_notes,
			submitted_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		claim.ID, claim.PatientID, claim.PatientName, claim.Age, claim.Diagnosis,
		claim.Status, assessment, calc, pred,
		claim.RecommendedHours, claim.Tier, claim.ReviewNotes,
		claim.SubmittedAt, claim.CreatedAt, claim.UpdatedAt,
	)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"claim_id": claim.ID,
			"error":    err,
		}).Error("Failed to create claim")
		return fmt.Errorf("inserting claim: %w", err)
	}

	details, _ := json.Marshal(map[string]interface{}{
		"patient_name":      claim.PatientName,
		"recommended_hours": claim.RecommendedHours,
	})
	_, err = tx.Exec(ctx, `
		INSERT INTO audit_log (entity_type, entity_id, action, details, actor_role)
		VALUES ('claim', $1, 'created', $2, $3)`,
		claim.ID, string(details), domain.RoleClinic,
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing claim: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"claim_id": claim.ID,
		"tier":     claim.Tier,
	}).Info("Claim created")

	return nil
}

// GetByID retrieves a claim by its id.
func (r *ClaimRepository) GetByID(ctx context.Context, id string) (*domain.Claim, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+claimColumns+`
		FROM claims WHERE id = $1`, id)

	claim, err := scanClaim(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("claim %s: %w", id, domain.ErrNotFound)
		}
		r.log.WithFields(logrus.Fields{
			"claim_id": id,
			"error":    err,
		}).Error("Failed to get claim by id")
		return nil, fmt.Errorf("getting claim by id: %w", err)
	}
	return claim, nil
}

// List returns all claims, newest first.
func (r *ClaimRepository) List(ctx context.Context) ([]*domain.Claim, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+claimColumns+`
		FROM claims ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listing claims: %w", err)
	}
	defer rows.Close()

	var claims []*domain.Claim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning claim: %w", err)
		}
		claims = append(claims, claim)
	}
	return claims, rows.Err()
}

// ApplyTransition performs the compare-and-set status update and the audit
// append atomically. The WHERE clause on the expected status is what
// serializes concurrent reviewers: the second writer matches zero rows and
// gets ErrConflict.
func (r *ClaimRepository) ApplyTransition(ctx context.Context, req domain.TransitionRequest) (*domain.Claim, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	tag, err := tx.Exec(ctx, `
		UPDATE claims
		SET status = $1, review_notes = $2,
			approved_hours = COALESCE($3, approved_hours),
			reviewed_at = $4, updated_at = $4
		WHERE id = $5 AND status = $6`,
		req.Target, req.Notes, req.ApprovedHours, now,
		req.ClaimID, req.Expected,
	)
	if err != nil {
		return nil, fmt.Errorf("updating claim status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var current string
		err := tx.QueryRow(ctx, `SELECT status FROM claims WHERE id = $1`, req.ClaimID).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("claim %s: %w", req.ClaimID, domain.ErrNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("checking claim status: %w", err)
		}
		return nil, fmt.Errorf("claim %s is %s, expected %s: %w",
			req.ClaimID, current, req.Expected, domain.ErrConflict)
	}

	details, _ := json.Marshal(map[string]interface{}{
		"status": req.Target,
		"notes":  req.Notes,
	})
	_, err = tx.Exec(ctx, `
		INSERT INTO audit_log (entity_type, entity_id, action, details, actor_role)
		VALUES ('claim', $1, $2, $3, $4)`,
		req.ClaimID, "status_"+string(req.Target), string(details), req.Actor,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting audit entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing transition: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"claim_id": req.ClaimID,
		"from":     req.Expected,
		"to":       req.Target,
		"actor":    req.Actor,
	}).Info("Claim status updated")

	return r.GetByID(ctx, req.ClaimID)
}

// Stats aggregates claim counts, averages and the most common tier.
func (r *ClaimRepository) Stats(ctx context.Context) (*domain.ClaimStats, error) {
	stats := &domain.ClaimStats{}

	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'approved'),
			COUNT(*) FILTER (WHERE status = 'denied'),
			COUNT(*) FILTER (WHERE status NOT IN ('approved', 'denied')),
			COALESCE(AVG(recommended_hours), 0),
			COALESCE(AVG(age), 0)
		FROM claims`).Scan(
		&stats.Total, &stats.Approved, &stats.Denied, &stats.Pending,
		&stats.AvgHours, &stats.AvgAge,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregating claim stats: %w", err)
	}

	var tier *int
	err = r.db.QueryRow(ctx, `
		SELECT tier FROM claims GROUP BY tier ORDER BY COUNT(*) DESC, tier LIMIT 1`).Scan(&tier)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("finding common tier: %w", err)
	}
	if tier != nil {
		stats.CommonTier = *tier
	}

	return stats, nil
}

// PolicyRepository handles payer profile persistence on Postgres.
type PolicyRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewPolicyRepository creates a new policy repository
func NewPolicyRepository(db *pgxpool.Pool, logger *logrus.Logger) *PolicyRepository {
	return &PolicyRepository{db: db, log: logger}
}

// List returns all payer profiles ordered by name.
func (r *PolicyRepository) List(ctx context.Context) ([]*domain.PolicyProfile, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+policyColumns+`
		FROM payer_profiles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing payer profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*domain.PolicyProfile
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning payer profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// GetByID retrieves a payer profile by id.
func (r *PolicyRepository) GetByID(ctx context.Context, id string) (*domain.PolicyProfile, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+policyColumns+`
		FROM payer_profiles WHERE id = $1`, id)

	p, err := scanPolicy(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("payer profile %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting payer profile: %w", err)
	}
	return p, nil
}

// Update replaces a payer profile's scoring configuration.
func (r *PolicyRepository) Update(ctx context.Context, id string, p *domain.PolicyProfile) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE payer_profiles SET
			name = $1, max_hours = $2, min_hours = $3,
			adaptive_w = $4, skill_w = $5, behavioral_w = $6, environmental_w = $7,
			age_mult_young = $8, age_mult_mid = $9, age_mult_teen = $10,
			pt_range_min = $11, pt_range_max = $12,
			updated_at = $13
		WHERE id = $14`,
		p.Name, p.MaxHours, p.MinHours,
		p.AdaptiveWeight, p.SkillWeight, p.BehavioralWeight, p.EnvironmentalWeight,
		p.AgeMultipliers.Young, p.AgeMultipliers.Mid, p.AgeMultipliers.Teen,
		p.ParentTraining.Min, p.ParentTraining.Max,
		time.Now().UTC(), id,
	)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"profile_id": id,
			"error":      err,
		}).Error("Failed to update payer profile")
		return fmt.Errorf("updating payer profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payer profile %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// PatientRepository handles patient registry persistence on Postgres.
type PatientRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewPatientRepository creates a new patient repository
func NewPatientRepository(db *pgxpool.Pool, logger *logrus.Logger) *PatientRepository {
	return &PatientRepository{db: db, log: logger}
}

// Create registers a patient.
func (r *PatientRepository) Create(ctx context.Context, p *domain.Patient) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO patients (
			id, name, date_of_birth, age, diagnosis, diagnosis_code,
			educational_setting, living_situation, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.Name, p.DateOfBirth, p.Age, p.Diagnosis, p.DiagnosisCode,
		p.EduSetting, p.Living, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"patient_id": p.ID,
			"error":      err,
		}).Error("Failed to register patient")
		return fmt.Errorf("inserting patient: %w", err)
	}
	return nil
}

// GetByID retrieves a patient by id.
func (r *PatientRepository) GetByID(ctx context.Context, id string) (*domain.Patient, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+patientColumns+`
		FROM patients WHERE id = $1`, id)

	p, err := scanPatient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("patient %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting patient: %w", err)
	}
	return p, nil
}

// List returns all patients ordered by name.
func (r *PatientRepository) List(ctx context.Context) ([]*domain.Patient, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+patientColumns+`
		FROM patients ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing patients: %w", err)
	}
	defer rows.Close()

	var patients []*domain.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning patient: %w", err)
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

// AuditRepository reads the append-only audit log on Postgres.
type AuditRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *pgxpool.Pool, logger *logrus.Logger) *AuditRepository {
	return &AuditRepository{db: db, log: logger}
}

// ListByEntity returns the audit trail for an entity, oldest first.
func (r *AuditRepository) ListByEntity(ctx context.Context, entityType, entityID string) ([]*domain.AuditEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, entity_type, entity_id, action, details, actor_role, created_at
		FROM audit_log
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY id`, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("listing audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.AuditEntry
	for rows.Next() {
		e := &domain.AuditEntry{}
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.Action,
			&e.Details, &e.ActorRole, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

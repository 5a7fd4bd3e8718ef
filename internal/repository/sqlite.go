// Package repository provides claim, policy and audit persistence on
// Postgres (pgx) and SQLite (embedded, single file).
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/aba-necessity-server/internal/domain"
)

// SQLiteStore implements the claim, policy and audit repositories on an
// embedded SQLite database. Suited to single-process deployments; claim
// transitions rely on a compare-and-set UPDATE inside a transaction.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	log    *logrus.Logger
}

// NewSQLiteStore opens (and if needed creates) the database file, applies
// the schema, and seeds the bundled payer profiles on first run.
func NewSQLiteStore(dbPath string, logger *logrus.Logger) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL for better concurrency between readers and the single writer
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	if err := seedPolicies(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed payer profiles: %w", err)
	}

	if err := seedPatients(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed patients: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath, log: logger}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// createSchema creates the database tables and indexes.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS patients (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		date_of_birth TEXT DEFAULT '',
		age INTEGER NOT NULL,
		diagnosis TEXT DEFAULT '',
		diagnosis_code TEXT DEFAULT 'F84.0',
		educational_setting TEXT DEFAULT '',
		living_situation TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS claims (
		id TEXT PRIMARY KEY,
		patient_id TEXT DEFAULT '',
		patient_name TEXT DEFAULT '',
		age INTEGER NOT NULL,
		diagnosis TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'submitted',
		assessment_data TEXT NOT NULL,
		calc_result TEXT NOT NULL,
		prediction TEXT NOT NULL,
		recommended_hours REAL NOT NULL,
		approved_hours REAL,
		tier INTEGER NOT NULL,
		review_notes TEXT DEFAULT '',
		submitted_at DATETIME NOT NULL,
		reviewed_at DATETIME,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_claims_status ON claims(status);
	CREATE INDEX IF NOT EXISTS idx_claims_created_at ON claims(created_at);

	CREATE TABLE IF NOT EXISTS payer_profiles (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		max_hours REAL NOT NULL DEFAULT 40,
		min_hours REAL NOT NULL DEFAULT 10,
		adaptive_w REAL NOT NULL DEFAULT 1.0,
		skill_w REAL NOT NULL DEFAULT 1.0,
		behavioral_w REAL NOT NULL DEFAULT 1.0,
		environmental_w REAL NOT NULL DEFAULT 1.0,
		age_mult_young REAL NOT NULL DEFAULT 1.2,
		age_mult_mid REAL NOT NULL DEFAULT 1.0,
		age_mult_teen REAL NOT NULL DEFAULT 0.85,
		pt_range_min REAL NOT NULL DEFAULT 2,
		pt_range_max REAL NOT NULL DEFAULT 8,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		entity_type TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		action TEXT NOT NULL,
		details TEXT DEFAULT '',
		actor_role TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_audit_entity ON audit_log(entity_type, entity_id);
	`
	_, err := db.Exec(schema)
	return err
}

// seedPolicies inserts the bundled payer profiles if missing.
func seedPolicies(db *sql.DB) error {
	for _, p := range seedProfiles() {
		_, err := db.Exec(`
			INSERT OR IGNORE INTO payer_profiles (
				id, name, max_hours, min_hours,
				adaptive_w, skill_w, behavioral_w, environmental_w,
				age_mult_young, age_mult_mid, age_mult_teen,
				pt_range_min, pt_range_max
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.MaxHours, p.MinHours,
			p.AdaptiveWeight, p.SkillWeight, p.BehavioralWeight, p.EnvironmentalWeight,
			p.AgeMultipliers.Young, p.AgeMultipliers.Mid, p.AgeMultipliers.Teen,
			p.ParentTraining.Min, p.ParentTraining.Max,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// seedPatients inserts the demo patient registry if missing.
func seedPatients(db *sql.DB) error {
	for _, p := range seedPatientRecords() {
		_, err := db.Exec(`
			INSERT OR IGNORE INTO patients (
				id, name, age, diagnosis, educational_setting, living_situation
			) VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Age, p.Diagnosis, p.EduSetting, p.Living,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// Claims

// Create inserts a claim and its creation audit entry in one transaction.
func (s *SQLiteStore) Create(ctx context.Context, claim *domain.Claim) error {
	assessment, calc, pred, err := marshalSnapshots(claim)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO claims (
			id, patient_id, patient_name, age, diagnosis, status,
			assessment_data, calc_result, prediction,
			recommended_hours, tier, review_notes,
			submitted_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		claim.ID, claim.PatientID, claim.PatientName, claim.Age, claim.Diagnosis,
		claim.Status, assessment, calc, pred,
		claim.RecommendedHours, claim.Tier, claim.ReviewNotes,
		claim.SubmittedAt, claim.CreatedAt, claim.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting claim: %w", err)
	}

	details, _ := json.Marshal(map[string]interface{}{
		"patient_name":      claim.PatientName,
		"recommended_hours": claim.RecommendedHours,
	})
	_, err = tx.ExecContext(ctx, `
		INSERT INTO audit_log (entity_type, entity_id, action, details, actor_role)
		VALUES ('claim', ?, 'created', ?, ?)`,
		claim.ID, string(details), domain.RoleClinic,
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing claim: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"claim_id": claim.ID,
		"status":   claim.Status,
	}).Info("Claim created")

	return nil
}

const claimColumns = `
	id, patient_id, patient_name, age, diagnosis, status,
	assessment_data, calc_result, prediction,
	recommended_hours, approved_hours, tier, review_notes,
	submitted_at, reviewed_at, created_at, updated_at`

// GetByID retrieves a claim by id.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (*domain.Claim, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+claimColumns+` FROM claims WHERE id = ?`, id)

	claim, err := scanClaim(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("claim %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting claim by id: %w", err)
	}
	return claim, nil
}

// List returns all claims, newest first. Claims are never deleted, so
// this is the complete history.
func (s *SQLiteStore) List(ctx context.Context) ([]*domain.Claim, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+claimColumns+` FROM claims ORDER BY created_at DESC, id`)
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

// ApplyTransition performs the compare-and-set status update and appends
// the audit entry atomically. A stale expected status yields ErrConflict,
// an unknown id ErrNotFound.
func (s *SQLiteStore) ApplyTransition(ctx context.Context, req domain.TransitionRequest) (*domain.Claim, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `
		UPDATE claims
		SET status = ?, review_notes = ?,
			approved_hours = COALESCE(?, approved_hours),
			reviewed_at = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		req.Target, req.Notes, nullFloat(req.ApprovedHours), now, now,
		req.ClaimID, req.Expected,
	)
	if err != nil {
		return nil, fmt.Errorf("updating claim status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		var current string
		err := tx.QueryRowContext(ctx, `SELECT status FROM claims WHERE id = ?`, req.ClaimID).Scan(&current)
		if err == sql.ErrNoRows {
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
	_, err = tx.ExecContext(ctx, `
		INSERT INTO audit_log (entity_type, entity_id, action, details, actor_role)
		VALUES ('claim', ?, ?, ?, ?)`,
		req.ClaimID, "status_"+string(req.Target), string(details), req.Actor,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting audit entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transition: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"claim_id": req.ClaimID,
		"from":     req.Expected,
		"to":       req.Target,
	}).Info("Claim status updated")

	return s.GetByID(ctx, req.ClaimID)
}

// Stats aggregates claim counts, averages and the most common tier.
func (s *SQLiteStore) Stats(ctx context.Context) (*domain.ClaimStats, error) {
	stats := &domain.ClaimStats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COUNT(CASE WHEN status = 'approved' THEN 1 END),
			COUNT(CASE WHEN status = 'denied' THEN 1 END),
			COUNT(CASE WHEN status NOT IN ('approved', 'denied') THEN 1 END),
			COALESCE(AVG(recommended_hours), 0),
			COALESCE(AVG(age), 0)
		FROM claims`).Scan(
		&stats.Total, &stats.Approved, &stats.Denied, &stats.Pending,
		&stats.AvgHours, &stats.AvgAge,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregating claim stats: %w", err)
	}

	var tier sql.NullInt64
	err = s.db.QueryRowContext(ctx, `
		SELECT tier FROM claims GROUP BY tier ORDER BY COUNT(*) DESC, tier LIMIT 1`).Scan(&tier)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("finding common tier: %w", err)
	}
	if tier.Valid {
		stats.CommonTier = int(tier.Int64)
	}

	return stats, nil
}

// Policies

// ListPolicies returns all payer profiles ordered by name.
func (s *SQLiteStore) ListPolicies(ctx context.Context) ([]*domain.PolicyProfile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+policyColumns+` FROM payer_profiles ORDER BY name`)
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

const policyColumns = `
	id, name, max_hours, min_hours,
	adaptive_w, skill_w, behavioral_w, environmental_w,
	age_mult_young, age_mult_mid, age_mult_teen,
	pt_range_min, pt_range_max, created_at, updated_at`

// GetPolicyByID retrieves a payer profile by id.
func (s *SQLiteStore) GetPolicyByID(ctx context.Context, id string) (*domain.PolicyProfile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+policyColumns+` FROM payer_profiles WHERE id = ?`, id)

	p, err := scanPolicy(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("payer profile %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting payer profile: %w", err)
	}
	return p, nil
}

// UpdatePolicy replaces a payer profile's scoring configuration.
func (s *SQLiteStore) UpdatePolicy(ctx context.Context, id string, p *domain.PolicyProfile) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE payer_profiles SET
			name = ?, max_hours = ?, min_hours = ?,
			adaptive_w = ?, skill_w = ?, behavioral_w = ?, environmental_w = ?,
			age_mult_young = ?, age_mult_mid = ?, age_mult_teen = ?,
			pt_range_min = ?, pt_range_max = ?,
			updated_at = ?
		WHERE id = ?`,
		p.Name, p.MaxHours, p.MinHours,
		p.AdaptiveWeight, p.SkillWeight, p.BehavioralWeight, p.EnvironmentalWeight,
		p.AgeMultipliers.Young, p.AgeMultipliers.Mid, p.AgeMultipliers.Teen,
		p.ParentTraining.Min, p.ParentTraining.Max,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("updating payer profile: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("payer profile %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Patients

const patientColumns = `
	id, name, date_of_birth, age, diagnosis, diagnosis_code,
	educational_setting, living_situation, created_at, updated_at`

// CreatePatient registers a patient.
func (s *SQLiteStore) CreatePatient(ctx context.Context, p *domain.Patient) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO patients (
			id, name, date_of_birth, age, diagnosis, diagnosis_code,
			educational_setting, living_situation, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.DateOfBirth, p.Age, p.Diagnosis, p.DiagnosisCode,
		p.EduSetting, p.Living, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting patient: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"patient_id": p.ID,
	}).Info("Patient registered")

	return nil
}

// GetPatientByID retrieves a patient by id.
func (s *SQLiteStore) GetPatientByID(ctx context.Context, id string) (*domain.Patient, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+patientColumns+` FROM patients WHERE id = ?`, id)

	p, err := scanPatient(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("patient %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting patient: %w", err)
	}
	return p, nil
}

// ListPatients returns all patients ordered by name.
func (s *SQLiteStore) ListPatients(ctx context.Context) ([]*domain.Patient, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+patientColumns+` FROM patients ORDER BY name`)
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

// Audit

// ListByEntity returns the audit trail for an entity, oldest first.
func (s *SQLiteStore) ListByEntity(ctx context.Context, entityType, entityID string) ([]*domain.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, entity_type, entity_id, action, details, actor_role, created_at
		FROM audit_log
		WHERE entity_type = ? AND entity_id = ?
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

// Policies returns the PolicyRepository view of the store.
func (s *SQLiteStore) Policies() domain.PolicyRepository {
	return sqlitePolicies{s}
}

type sqlitePolicies struct {
	store *SQLiteStore
}

func (p sqlitePolicies) List(ctx context.Context) ([]*domain.PolicyProfile, error) {
	return p.store.ListPolicies(ctx)
}

func (p sqlitePolicies) GetByID(ctx context.Context, id string) (*domain.PolicyProfile, error) {
	return p.store.GetPolicyByID(ctx, id)
}

func (p sqlitePolicies) Update(ctx context.Context, id string, profile *domain.PolicyProfile) error {
	return p.store.UpdatePolicy(ctx, id, profile)
}

// Patients returns the PatientRepository view of the store.
func (s *SQLiteStore) Patients() domain.PatientRepository {
	return sqlitePatients{s}
}

type sqlitePatients struct {
	store *SQLiteStore
}

func (p sqlitePatients) Create(ctx context.Context, patient *domain.Patient) error {
	return p.store.CreatePatient(ctx, patient)
}

func (p sqlitePatients) GetByID(ctx context.Context, id string) (*domain.Patient, error) {
	return p.store.GetPatientByID(ctx, id)
}

func (p sqlitePatients) List(ctx context.Context) ([]*domain.Patient, error) {
	return p.store.ListPatients(ctx)
}

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanClaim(s scanner) (*domain.Claim, error) {
	claim := &domain.Claim{}
	var assessment, calc, pred string
	var approvedHours sql.NullFloat64
	var reviewedAt sql.NullTime

	err := s.Scan(
		&claim.ID, &claim.PatientID, &claim.PatientName, &claim.Age, &claim.Diagnosis,
		&claim.Status, &assessment, &calc, &pred,
		&claim.RecommendedHours, &approvedHours, &claim.Tier, &claim.ReviewNotes,
		&claim.SubmittedAt, &reviewedAt, &claim.CreatedAt, &claim.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if approvedHours.Valid {
		claim.ApprovedHours = &approvedHours.Float64
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		claim.ReviewedAt = &t
	}

	if err := unmarshalSnapshots(claim, assessment, calc, pred); err != nil {
		return nil, err
	}
	return claim, nil
}

func scanPatient(s scanner) (*domain.Patient, error) {
	p := &domain.Patient{}
	err := s.Scan(
		&p.ID, &p.Name, &p.DateOfBirth, &p.Age, &p.Diagnosis, &p.DiagnosisCode,
		&p.EduSetting, &p.Living, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func scanPolicy(s scanner) (*domain.PolicyProfile, error) {
	p := &domain.PolicyProfile{}
	err := s.Scan(
		&p.ID, &p.Name, &p.MaxHours, &p.MinHours,
		&p.AdaptiveWeight, &p.SkillWeight, &p.BehavioralWeight, &p.EnvironmentalWeight,
		&p.AgeMultipliers.Young, &p.AgeMultipliers.Mid, &p.AgeMultipliers.Teen,
		&p.ParentTraining.Min, &p.ParentTraining.Max, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func marshalSnapshots(claim *domain.Claim) (assessment, calc, pred string, err error) {
	a, err := json.Marshal(claim.Assessment)
	if err != nil {
		return "", "", "", fmt.Errorf("marshaling assessment snapshot: %w", err)
	}
	c, err := json.Marshal(claim.Calculation)
	if err != nil {
		return "", "", "", fmt.Errorf("marshaling calculation snapshot: %w", err)
	}
	p, err := json.Marshal(claim.Prediction)
	if err != nil {
		return "", "", "", fmt.Errorf("marshaling prediction snapshot: %w", err)
	}
	return string(a), string(c), string(p), nil
}

func unmarshalSnapshots(claim *domain.Claim, assessment, calc, pred string) error {
	if err := json.Unmarshal([]byte(assessment), &claim.Assessment); err != nil {
		return fmt.Errorf("unmarshaling assessment snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(calc), &claim.Calculation); err != nil {
		return fmt.Errorf("unmarshaling calculation snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(pred), &claim.Prediction); err != nil {
		return fmt.Errorf("unmarshaling prediction snapshot: %w", err)
	}
	return nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

// seedPatientRecords returns the demo patient registry bundled with a
// fresh database.
func seedPatientRecords() []domain.Patient {
	return []domain.Patient{
		{ID: "P-001", Name: "Alex Johnson", Age: 4, Diagnosis: domain.DiagnosisAutism, EduSetting: "home", Living: "two-parent"},
		{ID: "P-002", Name: "Maya Patel", Age: 7, Diagnosis: domain.DiagnosisAutism, EduSetting: "supported", Living: "single-parent"},
		{ID: "P-003", Name: "Ethan Williams", Age: 12, Diagnosis: domain.DiagnosisAutism, EduSetting: "special-ed", Living: "two-parent"},
		{ID: "P-004", Name: "Sofia Rodriguez", Age: 3, Diagnosis: domain.DiagnosisPDD, EduSetting: "not-enrolled", Living: "two-parent"},
		{ID: "P-005", Name: "Liam Chen", Age: 15, Diagnosis: domain.DiagnosisAspergers, EduSetting: "mainstream", Living: "single-parent"},
	}
}

// seedProfiles returns the payer profiles bundled with a fresh database.
func seedProfiles() []domain.PolicyProfile {
	return []domain.PolicyProfile{
		{
			ID: "PP-001", Name: "Default", MaxHours: 40, MinHours: 10,
			AdaptiveWeight: 1, SkillWeight: 1, BehavioralWeight: 1, EnvironmentalWeight: 1,
			AgeMultipliers: domain.AgeMultipliers{Young: 1.2, Mid: 1.0, Teen: 0.85},
			ParentTraining: domain.HourRange{Min: 2, Max: 8},
		},
		{
			ID: "PP-002", Name: "Conservative", MaxHours: 30, MinHours: 10,
			AdaptiveWeight: 0.8, SkillWeight: 0.8, BehavioralWeight: 0.9, EnvironmentalWeight: 0.7,
			AgeMultipliers: domain.AgeMultipliers{Young: 1.1, Mid: 1.0, Teen: 0.8},
			ParentTraining: domain.HourRange{Min: 2, Max: 6},
		},
		{
			ID: "PP-003", Name: "Progressive", MaxHours: 40, MinHours: 15,
			AdaptiveWeight: 1.1, SkillWeight: 1.1, BehavioralWeight: 1.2, EnvironmentalWeight: 1.1,
			AgeMultipliers: domain.AgeMultipliers{Young: 1.25, Mid: 1.0, Teen: 0.9},
			ParentTraining: domain.HourRange{Min: 3, Max: 10},
		},
	}
}

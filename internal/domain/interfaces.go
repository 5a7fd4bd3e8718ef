package domain

import (
	"context"
)

// TransitionRequest carries everything a status transition needs. Expected
// is the status the caller observed before deciding to transition; the
// repository applies the change only if the stored status still matches,
// so concurrent reviewers cannot silently overwrite each other.
type TransitionRequest struct {
	ClaimID       string
	Expected      ClaimStatus
	Target        ClaimStatus
	Notes         string
	ApprovedHours *float64
	Actor         ActorRole
}

// ClaimRepository persists claims and their audit trail. Create and
// ApplyTransition must write the claim change and its audit entry
// atomically.
type ClaimRepository interface {
	Create(ctx context.Context, claim *Claim) error
	GetByID(ctx context.Context, id string) (*Claim, error)
	List(ctx context.Context) ([]*Claim, error)
	ApplyTransition(ctx context.Context, req TransitionRequest) (*Claim, error)
	Stats(ctx context.Context) (*ClaimStats, error)
}

// PolicyRepository persists payer policy profiles.
type PolicyRepository interface {
	List(ctx context.Context) ([]*PolicyProfile, error)
	GetByID(ctx context.Context, id string) (*PolicyProfile, error)
	Update(ctx context.Context, id string, profile *PolicyProfile) error
}

// PatientRepository persists the clinic's patient registry.
type PatientRepository interface {
	Create(ctx context.Context, patient *Patient) error
	GetByID(ctx context.Context, id string) (*Patient, error)
	List(ctx context.Context) ([]*Patient, error)
}

// AuditRepository reads the append-only audit log. Writes happen inside
// claim repository transactions, never directly.
type AuditRepository interface {
	ListByEntity(ctx context.Context, entityType, entityID string) ([]*AuditEntry, error)
}

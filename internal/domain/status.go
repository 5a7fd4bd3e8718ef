package domain

// ClaimStatus is the review state of a submitted claim.
type ClaimStatus string

const (
	StatusSubmitted     ClaimStatus = "submitted"
	StatusUnderReview   ClaimStatus = "under_review"
	StatusInfoRequested ClaimStatus = "info_requested"
	StatusApproved      ClaimStatus = "approved"
	StatusDenied        ClaimStatus = "denied"
)

// claimTransitions is the exhaustive transition table. Every non-terminal
// state may move to any review or decision state; terminal states accept
// no transitions at all.
var claimTransitions = map[ClaimStatus][]ClaimStatus{
	StatusSubmitted:     {StatusUnderReview, StatusInfoRequested, StatusApproved, StatusDenied},
	StatusUnderReview:   {StatusUnderReview, StatusInfoRequested, StatusApproved, StatusDenied},
	StatusInfoRequested: {StatusUnderReview, StatusInfoRequested, StatusApproved, StatusDenied},
	StatusApproved:      {},
	StatusDenied:        {},
}

// Valid reports whether s is one of the defined claim statuses.
func (s ClaimStatus) Valid() bool {
	_, ok := claimTransitions[s]
	return ok
}

// Terminal reports whether s is a final payer decision.
func (s ClaimStatus) Terminal() bool {
	return s == StatusApproved || s == StatusDenied
}

// CanTransitionTo reports whether the state machine permits moving from
// s to target.
func (s ClaimStatus) CanTransitionTo(target ClaimStatus) bool {
	for _, t := range claimTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (s ClaimStatus) String() string {
	return string(s)
}

package domain

import "time"

// LoggingType classifies a ledger entry by the lifecycle phase it records.
type LoggingType string

// Ledger entry types. Audit-state derivation keys on these.
const (
	// TypeOnboard marks registration and onboarding-decision entries.
	TypeOnboard LoggingType = "onboard"
	// TypeUpdate marks every mutating action after onboarding.
	TypeUpdate LoggingType = "update"
	// TypeAudit marks audit findings recorded against a bundle.
	TypeAudit LoggingType = "audit"
)

// ActionType qualifies a ledger entry with the concrete action taken.
type ActionType string

// Ledger action types.
const (
	ActionRegistered  ActionType = "registered"
	ActionUpdated     ActionType = "updated"
	ActionDeleted     ActionType = "deleted"
	ActionActivated   ActionType = "activated"
	ActionDeactivated ActionType = "deactivated"
	ActionApproved    ActionType = "approved"
	ActionRejected    ActionType = "rejected"
	ActionSuspended   ActionType = "suspended"
	ActionUnsuspended ActionType = "unsuspended"
	// ActionValid and ActionInvalid are the two audit findings.
	ActionValid   ActionType = "valid"
	ActionInvalid ActionType = "invalid"
)

// AuditState is derived from the ledger; it is never set directly.
type AuditState string

// Derived audit states.
const (
	AuditStateNotAudited           AuditState = "not_audited"
	AuditStateValid                AuditState = "valid"
	AuditStateInvalidAndNotUpdated AuditState = "invalid_and_not_updated"
	AuditStateInvalidAndUpdated    AuditState = "invalid_and_updated"
)

// LoggingInfo is a single immutable entry in a bundle's audit ledger.
// Entries are ordered by date; ties keep insertion order.
type LoggingInfo struct {
	Date       time.Time   `json:"date"`
	Type       LoggingType `json:"type"`
	ActionType ActionType  `json:"action_type"`
	UserEmail  string      `json:"user_email,omitempty"`
	UserRole   string      `json:"user_role,omitempty"`
	Comment    string      `json:"comment,omitempty"`
}

// Actor identifies who performed a lifecycle action.
type Actor struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// SystemActor stamps automated transitions when no authenticated actor exists.
func SystemActor() Actor {
	return Actor{Role: "system"}
}

// IsZero reports whether no actor information is present.
func (a Actor) IsZero() bool { return a.Email == "" && a.Role == "" }

// AlternativeIdentifier is a secondary identifier attached to a payload.
type AlternativeIdentifier struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// PIDType is the reserved identifier family minted by the registry itself.
// Caller-supplied identifiers of this family are rejected.
const PIDType = "EOSC PID"

// Metadata carries registration bookkeeping for a bundle.
type Metadata struct {
	Published    bool      `json:"published"`
	RegisteredBy string    `json:"registered_by,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
	ModifiedBy   string    `json:"modified_by,omitempty"`
	ModifiedAt   time.Time `json:"modified_at"`
}

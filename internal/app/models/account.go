package models

import (
	"time"
)

// AccountStatus is the lifecycle state of a login identity
type AccountStatus string

const (
	AccountPending   AccountStatus = "pending"
	AccountApproved  AccountStatus = "approved"
	AccountSuspended AccountStatus = "suspended"
	AccountRejected  AccountStatus = "rejected"
)

// accountTransitions lists the allowed target states per source state.
// suspended -> approved is the admin reinstatement path; rejected is terminal.
var accountTransitions = map[AccountStatus][]AccountStatus{
	AccountPending:   {AccountApproved, AccountSuspended, AccountRejected},
	AccountApproved:  {AccountSuspended},
	AccountSuspended: {AccountApproved},
	AccountRejected:  {},
}

// Valid reports whether s is a known account status.
func (s AccountStatus) Valid() bool {
	_, ok := accountTransitions[s]
	return ok
}

// CanTransitionTo reports whether the account may move from s to next.
func (s AccountStatus) CanTransitionTo(next AccountStatus) bool {
	for _, allowed := range accountTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Account defines the login identity based on the 'accounts' table
type Account struct {
	ID               int64         `json:"id" db:"id" example:"1"`                                               // Internal key
	AccountNumber    int64         `json:"account_number" db:"account_number" example:"1000"`                    // Sequential display number
	Username         string        `json:"username" db:"username" example:"jane@uni.edu"`                        // Login name (email)
	PasswordHash     string        `json:"-" db:"password_hash"`                                                 // bcrypt hash, never serialized
	Role             Role          `json:"role" db:"role" example:"student"`                                     // Immutable after creation
	Status           AccountStatus `json:"status" db:"status" example:"pending"`                                 // Lifecycle status
	ApprovedBy       *int64        `json:"approved_by,omitempty" db:"approved_by" example:"2"`                   // Approving admin account
	ApprovedAt       *time.Time    `json:"approved_at,omitempty" db:"approved_at"`                               // Set server-side on approval
	SuspensionReason *string       `json:"suspension_reason,omitempty" db:"suspension_reason" example:"abuse"`   // Set on suspension
	SuspendedAt      *time.Time    `json:"suspended_at,omitempty" db:"suspended_at"`                             // Set server-side on suspension
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" db:"updated_at"`
}

// IsActive reports whether the account may sign in.
func (a *Account) IsActive() bool {
	return a.Status == AccountApproved
}

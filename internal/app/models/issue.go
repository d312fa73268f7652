package models

import "time"

// IssueStatus is the triage state of a support ticket
type IssueStatus string

const (
	IssueOpen       IssueStatus = "open"
	IssueInProgress IssueStatus = "in_progress"
	IssueResolved   IssueStatus = "resolved"
	IssueClosed     IssueStatus = "closed"
)

var issueRank = map[IssueStatus]int{
	IssueOpen:       0,
	IssueInProgress: 1,
	IssueResolved:   2,
	IssueClosed:     3,
}

// Valid reports whether s is a known issue status.
func (s IssueStatus) Valid() bool {
	_, ok := issueRank[s]
	return ok
}

// CanAdvanceTo reports whether next is a forward move from s. Skipping states is allowed.
func (s IssueStatus) CanAdvanceTo(next IssueStatus) bool {
	from, ok := issueRank[s]
	if !ok {
		return false
	}
	to, ok := issueRank[next]
	return ok && to > from
}

// Issue is a support ticket raised by a student
type Issue struct {
	ID              int64       `json:"id" db:"id"`
	IssueID         int64       `json:"issue_id" db:"issue_id"` // Sequential, starts at 1000
	Details         string      `json:"details" db:"details"`
	Type            string      `json:"type" db:"type"`
	Status          IssueStatus `json:"status" db:"status"`
	StudentID       int64       `json:"student_id" db:"student_id"`
	ChatID          *int64      `json:"chat_id,omitempty" db:"chat_id"`
	MessageID       *int64      `json:"message_id,omitempty" db:"message_id"`
	AssignedAdminID *int64      `json:"assigned_admin_id,omitempty" db:"assigned_admin_id"`
	AssignedAt      *time.Time  `json:"assigned_at,omitempty" db:"assigned_at"`
	AdminNotes      *string     `json:"admin_notes,omitempty" db:"admin_notes"`
	ResolvedAt      *time.Time  `json:"resolved_at,omitempty" db:"resolved_at"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`

	Student       *StudentSummary `json:"student,omitempty"`
	AssignedAdmin *AdminSummary   `json:"assigned_admin,omitempty"`
}

package models

import (
	"fmt"
	"time"
)

// AcademicIDPrefix prefixes every rendered academic identifier
const AcademicIDPrefix = "STU"

// FormatAcademicID renders a sequence value as STU followed by five zero-padded digits.
func FormatAcademicID(seq int64) string {
	return fmt.Sprintf("%s%05d", AcademicIDPrefix, seq)
}

// Student defines the student profile based on the 'students' table
type Student struct {
	ID         int64     `json:"id" db:"id" example:"1"`
	AccountID  int64     `json:"account_id" db:"account_id" example:"5"`             // Back-reference to the login account
	AcademicID string    `json:"academic_id" db:"academic_id" example:"STU00001"`    // Unique, monotonically assigned
	Name       string    `json:"name" db:"name" example:"Jane Doe"`
	Gender     string    `json:"gender" db:"gender" example:"female"`
	Address    string    `json:"address" db:"address"`
	Phone      string    `json:"phone" db:"phone" example:"+15550100"`
	Email      string    `json:"email" db:"email" example:"jane@uni.edu"`
	Major      string    `json:"major" db:"major" example:"Computer Science"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`

	Account *Account `json:"account,omitempty"` // Populated on read
}

// StudentSummary is the populated view of a student embedded in other documents
type StudentSummary struct {
	ID         int64  `json:"id"`
	AcademicID string `json:"academic_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

// Summary returns the embedded view of the student.
func (s *Student) Summary() *StudentSummary {
	if s == nil {
		return nil
	}
	return &StudentSummary{ID: s.ID, AcademicID: s.AcademicID, Name: s.Name, Email: s.Email}
}

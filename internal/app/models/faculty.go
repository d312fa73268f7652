package models

import "time"

// Admin is the administrator profile attached to an admin account
type Admin struct {
	ID        int64     `json:"id" db:"id"`
	AccountID int64     `json:"account_id" db:"account_id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	Position  string    `json:"position" db:"position"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Account *Account `json:"account,omitempty"`
}

// Faculty is the teaching staff profile attached to a faculty account
type Faculty struct {
	ID         int64     `json:"id" db:"id"`
	AccountID  int64     `json:"account_id" db:"account_id"`
	Name       string    `json:"name" db:"name"`
	Email      string    `json:"email" db:"email"`
	Department string    `json:"department" db:"department"`
	Title      string    `json:"title" db:"title"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`

	Account *Account `json:"account,omitempty"`
}

// AdminSummary is the populated view of an admin embedded in other documents
type AdminSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Summary returns the embedded view of the admin.
func (a *Admin) Summary() *AdminSummary {
	if a == nil {
		return nil
	}
	return &AdminSummary{ID: a.ID, Name: a.Name, Email: a.Email}
}

package models

import "time"

// ChatbotInstruction is a prompt fragment curated by admins
type ChatbotInstruction struct {
	ID               int64     `json:"id" db:"id"`
	InstructionID    int64     `json:"instruction_id" db:"instruction_id"`
	Title            string    `json:"title" db:"title"`
	Content          string    `json:"content" db:"content"`
	AdminID          *int64    `json:"admin_id,omitempty" db:"admin_id"`
	SourceMaterialID *int64    `json:"source_material_id,omitempty" db:"source_material_id"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`

	// LegacyDetails holds the pre-migration column; it is never serialized.
	LegacyDetails *string `json:"-" db:"details"`
}

// MigrateLegacyDetails moves the legacy details column into content when content is empty.
// It reports whether anything changed.
func (i *ChatbotInstruction) MigrateLegacyDetails() bool {
	if i.LegacyDetails == nil {
		return false
	}
	changed := false
	if i.Content == "" && *i.LegacyDetails != "" {
		i.Content = *i.LegacyDetails
		changed = true
	}
	i.LegacyDetails = nil
	return changed
}

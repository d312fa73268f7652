package dto

import "github.com/yigit/unisupport/internal/app/models"

// CreateIssueRequest is submitted by a student
type CreateIssueRequest struct {
	Details   string `json:"details" binding:"required,max=5000"`
	Type      string `json:"type" binding:"required,max=100"`
	ChatID    *int64 `json:"chat_id" binding:"omitempty,min=1"`
	MessageID *int64 `json:"message_id" binding:"omitempty,min=1"`
}

// UpdateIssueRequest is the admin triage update
type UpdateIssueRequest struct {
	Details    *string             `json:"details" binding:"omitempty,max=5000"`
	Type       *string             `json:"type" binding:"omitempty,max=100"`
	Status     *models.IssueStatus `json:"status" binding:"omitempty,oneof=open in_progress resolved closed"`
	AdminNotes *string             `json:"admin_notes" binding:"omitempty,max=5000"`
}

// AssignIssueRequest assigns an issue to an admin
type AssignIssueRequest struct {
	AdminID int64 `json:"adminId" binding:"required,min=1"`
}

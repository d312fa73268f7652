package dto

import "github.com/yigit/unisupport/internal/app/models"

// CreateAdminRequest creates an admin account and profile
type CreateAdminRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Phone    string `json:"phone" binding:"omitempty,phone"`
	Position string `json:"position" binding:"omitempty,max=100"`
}

// CreateFacultyRequest creates a faculty account and profile
type CreateFacultyRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6"`
	Name       string `json:"name" binding:"required,min=2,max=100"`
	Department string `json:"department" binding:"omitempty,max=100"`
	Title      string `json:"title" binding:"omitempty,max=100"`
}

// UpdateAccountStatusRequest moves an account through its lifecycle
type UpdateAccountStatusRequest struct {
	Status           models.AccountStatus `json:"status" binding:"required,oneof=pending approved suspended rejected"`
	SuspensionReason *string              `json:"suspension_reason" binding:"omitempty,max=500"`
}

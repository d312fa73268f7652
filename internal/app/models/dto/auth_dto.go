package dto

import "github.com/yigit/unisupport/internal/app/models"

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the self-service student sign-up payload
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Gender   string `json:"gender" binding:"omitempty,max=20"`
	Address  string `json:"address" binding:"omitempty,max=255"`
	Phone    string `json:"phone" binding:"omitempty,phone"`
	Major    string `json:"major" binding:"omitempty,max=100"`
}

// LoginResponse is returned after a successful sign-in; the token travels in the cookie
type LoginResponse struct {
	Success     bool        `json:"success" example:"true"`
	AccountType models.Role `json:"accountType" example:"student"`
}

// UserInfoResponse describes the identity of the current session
type UserInfoResponse struct {
	UserID      int64       `json:"userId" example:"5"`
	StudentID   *int64      `json:"studentId" example:"1"`
	AccountType models.Role `json:"accountType" example:"student"`
	UserName    string      `json:"userName,omitempty" example:"jane@uni.edu"`
}

package dto

import "github.com/yigit/unisupport/internal/app/models"

// CreateChatRequest opens a conversation, optionally with the student's first message
type CreateChatRequest struct {
	Title          string `json:"title" binding:"omitempty,max=200"`
	InitialMessage string `json:"initialMessage" binding:"omitempty,max=10000"`
}

// AddMessageRequest appends a message to a chat
type AddMessageRequest struct {
	From        models.MessageSender `json:"from" binding:"required,oneof=student bot"`
	MessageText string               `json:"message_text" binding:"required,max=10000"`
}

// UpdateChatRequest patches chat flags
type UpdateChatRequest struct {
	Title    *string            `json:"title" binding:"omitempty,max=200"`
	Favorite *bool              `json:"favorite"`
	Saved    *bool              `json:"saved"`
	Status   *models.ChatStatus `json:"status" binding:"omitempty,oneof=open closed archived"`
}

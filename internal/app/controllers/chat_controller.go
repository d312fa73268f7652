package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/unisupport/internal/app/models/dto"
	"github.com/yigit/unisupport/internal/app/services"
	"github.com/yigit/unisupport/internal/middleware"
	"github.com/yigit/unisupport/internal/pkg/helpers"
)

// ChatController handles conversation endpoints
type ChatController struct {
	chatService services.ChatService
}

// NewChatController creates a new ChatController
func NewChatController(chatService services.ChatService) *ChatController {
	return &ChatController{chatService: chatService}
}

// ListStudentChats lists a student's chats
// @Summary List student chats
// @Tags chats
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(8)
// @Param search query string false "Search by title"
// @Success 200 {object} dto.PaginatedResponse[models.Chat]
// @Failure 403 {object} dto.ErrorResponse "Not your chats"
// @Router /chats/student/{studentId} [get]
func (c *ChatController) ListStudentChats(ctx *gin.Context) {
	claims, ok := currentClaims(ctx)
	if !ok {
		return
	}
	studentID, ok := parseIDParam(ctx, "studentId")
	if !ok {
		return
	}
	page := helpers.ParsePaginationParams(ctx, helpers.ChatPageSize)

	chats, total, err := c.chatService.ListByStudent(ctx.Request.Context(), claims, studentID, page)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(chats, total, page))
}

// CreateChat opens a conversation for the acting student
// @Summary Create chat
// @Description Creates a chat; initialMessage, when present, becomes its first student message
// @Tags chats
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student ID"
// @Param request body dto.CreateChatRequest false "Chat information"
// @Success 201 {object} models.Chat
// @Failure 403 {object} dto.ErrorResponse "Not your account"
// @Router /chats/student/{studentId} [post]
func (c *ChatController) CreateChat(ctx *gin.Context) {
	claims, ok := currentClaims(ctx)
	if !ok {
		return
	}
	studentID, ok := parseIDParam(ctx, "studentId")
	if !ok {
		return
	}
	var req dto.CreateChatRequest
	if ctx.Request.ContentLength != 0 && !bindJSON(ctx, &req) {
		return
	}

	chat, err := c.chatService.CreateChat(ctx.Request.Context(), claims, studentID, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, chat)
}

// GetChat returns a chat with its messages
// @Summary Get chat
// @Tags chats
// @Produce json
// @Security BearerAuth
// @Param chatId path int true "Chat ID"
// @Success 200 {object} models.Chat
// @Failure 404 {object} dto.ErrorResponse "Chat not found"
// @Router /chats/{chatId} [get]
func (c *ChatController) GetChat(ctx *gin.Context) {
	claims, ok := currentClaims(ctx)
	if !ok {
		return
	}
	chatID, ok := parseIDParam(ctx, "chatId")
	if !ok {
		return
	}

	chat, err := c.chatService.GetChat(ctx.Request.Context(), claims, chatID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, chat)
}

// AddMessage appends a message to a chat
// @Summary Add chat message
// @Tags chats
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param chatId path int true "Chat ID"
// @Param request body dto.AddMessageRequest true "Message"
// @Success 201 {object} models.ChatMessage
// @Failure 400 {object} dto.ErrorResponse "Invalid message"
// @Failure 404 {object} dto.ErrorResponse "Chat not found"
// @Router /chats/{chatId}/messages [post]
func (c *ChatController) AddMessage(ctx *gin.Context) {
	claims, ok := currentClaims(ctx)
	if !ok {
		return
	}
	chatID, ok := parseIDParam(ctx, "chatId")
	if !ok {
		return
	}
	var req dto.AddMessageRequest
	if !bindJSON(ctx, &req) {
		return
	}

	message, err := c.chatService.AddMessage(ctx.Request.Context(), claims, chatID, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, message)
}

// UpdateChat patches chat flags
// @Summary Update chat
// @Tags chats
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param chatId path int true "Chat ID"
// @Param request body dto.UpdateChatRequest true "Flags"
// @Success 200 {object} models.Chat
// @Router /chats/{chatId} [patch]
func (c *ChatController) UpdateChat(ctx *gin.Context) {
	claims, ok := currentClaims(ctx)
	if !ok {
		return
	}
	chatID, ok := parseIDParam(ctx, "chatId")
	if !ok {
		return
	}
	var req dto.UpdateChatRequest
	if !bindJSON(ctx, &req) {
		return
	}

	chat, err := c.chatService.UpdateChat(ctx.Request.Context(), claims, chatID, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, chat)
}

// DeleteChat removes a chat and its messages
// @Summary Delete chat
// @Tags chats
// @Produce json
// @Security BearerAuth
// @Param chatId path int true "Chat ID"
// @Success 200 {object} dto.SuccessResponse
// @Router /chats/{chatId} [delete]
func (c *ChatController) DeleteChat(ctx *gin.Context) {
	claims, ok := currentClaims(ctx)
	if !ok {
		return
	}
	chatID, ok := parseIDParam(ctx, "chatId")
	if !ok {
		return
	}

	if err := c.chatService.DeleteChat(ctx.Request.Context(), claims, chatID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Chat deleted"))
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/unisupport/internal/app/models/dto"
	"github.com/yigit/unisupport/internal/app/services"
	"github.com/yigit/unisupport/internal/middleware"
	"github.com/yigit/unisupport/internal/pkg/helpers"
)

// InstructionController handles chatbot instruction endpoints
type InstructionController struct {
	instructionService services.InstructionService
}

// NewInstructionController creates a new InstructionController
func NewInstructionController(instructionService services.InstructionService) *InstructionController {
	return &InstructionController{instructionService: instructionService}
}

// ListInstructions lists chatbot instructions
// @Summary List chatbot instructions
// @Tags chatbot-instructions
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Param search query string false "Search by title or content"
// @Success 200 {object} dto.PaginatedResponse[models.ChatbotInstruction]
// @Router /chatbot-instructions [get]
func (c *InstructionController) ListInstructions(ctx *gin.Context) {
	page := helpers.ParsePaginationParams(ctx, helpers.InstructionPageSize)

	items, total, err := c.instructionService.ListInstructions(ctx.Request.Context(), page)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(items, total, page))
}

// GetInstruction retrieves a chatbot instruction
// @Summary Get chatbot instruction
// @Tags chatbot-instructions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Instruction ID"
// @Success 200 {object} models.ChatbotInstruction
// @Failure 404 {object} dto.ErrorResponse "Instruction not found"
// @Router /chatbot-instructions/{id} [get]
func (c *InstructionController) GetInstruction(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	instruction, err := c.instructionService.GetInstruction(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, instruction)
}

// CreateInstruction creates a chatbot instruction
// @Summary Create chatbot instruction
// @Tags chatbot-instructions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateInstructionRequest true "Instruction"
// @Success 201 {object} models.ChatbotInstruction
// @Router /chatbot-instructions [post]
func (c *InstructionController) CreateInstruction(ctx *gin.Context) {
	claims, ok := currentClaims(ctx)
	if !ok {
		return
	}
	var req dto.CreateInstructionRequest
	if !bindJSON(ctx, &req) {
		return
	}

	instruction, err := c.instructionService.CreateInstruction(ctx.Request.Context(), claims, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, instruction)
}

// UpdateInstruction updates a chatbot instruction
// @Summary Update chatbot instruction
// @Tags chatbot-instructions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Instruction ID"
// @Param request body dto.UpdateInstructionRequest true "Fields to update"
// @Success 200 {object} models.ChatbotInstruction
// @Router /chatbot-instructions/{id} [put]
func (c *InstructionController) UpdateInstruction(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateInstructionRequest
	if !bindJSON(ctx, &req) {
		return
	}

	instruction, err := c.instructionService.UpdateInstruction(ctx.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, instruction)
}

// DeleteInstruction removes a chatbot instruction
// @Summary Delete chatbot instruction
// @Tags chatbot-instructions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Instruction ID"
// @Success 200 {object} dto.SuccessResponse
// @Router /chatbot-instructions/{id} [delete]
func (c *InstructionController) DeleteInstruction(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.instructionService.DeleteInstruction(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Chatbot instruction deleted"))
}

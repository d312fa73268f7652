package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/unisupport/internal/app/models/dto"
	"github.com/yigit/unisupport/internal/app/services"
	"github.com/yigit/unisupport/internal/middleware"
	"github.com/yigit/unisupport/internal/pkg/helpers"
)

// FeedbackController handles feedback endpoints
type FeedbackController struct {
	feedbackService services.FeedbackService
}

// NewFeedbackController creates a new FeedbackController
func NewFeedbackController(feedbackService services.FeedbackService) *FeedbackController {
	return &FeedbackController{feedbackService: feedbackService}
}

// CreateFeedback records a student's rating
// @Summary Submit feedback
// @Tags feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateFeedbackRequest true "Feedback"
// @Success 201 {object} models.Feedback
// @Failure 400 {object} dto.ErrorResponse "Rating must be between 1 and 5"
// @Router /feedback [post]
func (c *FeedbackController) CreateFeedback(ctx *gin.Context) {
	claims, ok := currentClaims(ctx)
	if !ok {
		return
	}
	var req dto.CreateFeedbackRequest
	if !bindJSON(ctx, &req) {
		return
	}

	feedback, err := c.feedbackService.CreateFeedback(ctx.Request.Context(), claims, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, feedback)
}

// ListFeedback lists feedback
// @Summary List feedback
// @Tags feedback
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Param search query string false "Search in comments"
// @Success 200 {object} dto.PaginatedResponse[models.Feedback]
// @Router /feedback [get]
func (c *FeedbackController) ListFeedback(ctx *gin.Context) {
	page := helpers.ParsePaginationParams(ctx, helpers.FeedbackPageSize)

	items, total, err := c.feedbackService.ListFeedback(ctx.Request.Context(), page)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(items, total, page))
}

// GetFeedback retrieves one feedback entry
// @Summary Get feedback
// @Tags feedback
// @Produce json
// @Security BearerAuth
// @Param id path int true "Feedback ID"
// @Success 200 {object} models.Feedback
// @Failure 404 {object} dto.ErrorResponse "Feedback not found"
// @Router /feedback/{id} [get]
func (c *FeedbackController) GetFeedback(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	feedback, err := c.feedbackService.GetFeedback(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, feedback)
}

// Stats aggregates ratings
// @Summary Feedback statistics
// @Description Count, average and distribution of ratings, optionally bounded by date (end date inclusive)
// @Tags feedback
// @Produce json
// @Security BearerAuth
// @Param startDate query string false "YYYY-MM-DD or RFC3339"
// @Param endDate query string false "YYYY-MM-DD or RFC3339"
// @Success 200 {object} models.FeedbackStats
// @Failure 400 {object} dto.ErrorResponse "Invalid date"
// @Router /feedback/stats [get]
func (c *FeedbackController) Stats(ctx *gin.Context) {
	var query dto.FeedbackStatsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.HandleValidationError(err))
		return
	}

	stats, err := c.feedbackService.Stats(ctx.Request.Context(), query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/unisupport/internal/app/models"
	"github.com/yigit/unisupport/internal/app/models/dto"
	"github.com/yigit/unisupport/internal/app/services"
	"github.com/yigit/unisupport/internal/middleware"
	"github.com/yigit/unisupport/internal/pkg/helpers"
)

// IssueController handles support ticket endpoints
type IssueController struct {
	issueService services.IssueService
}

// NewIssueController creates a new IssueController
func NewIssueController(issueService services.IssueService) *IssueController {
	return &IssueController{issueService: issueService}
}

// ListIssues lists issues across all students
// @Summary List issues
// @Tags issues
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter" Enums(open, in_progress, resolved, closed)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Param search query string false "Search by details or type"
// @Success 200 {object} dto.PaginatedResponse[models.Issue]
// @Router /issues [get]
func (c *IssueController) ListIssues(ctx *gin.Context) {
	page := helpers.ParsePaginationParams(ctx, helpers.IssuePageSize)

	var status *models.IssueStatus
	if raw := strings.TrimSpace(ctx.Query("status")); raw != "" {
		s := models.IssueStatus(raw)
		status = &s
	}

	issues, total, err := c.issueService.ListIssues(ctx.Request.Context(), status, page)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(issues, total, page))
}

// ListStudentIssues lists one student's issues
// @Summary List student issues
// @Tags issues
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student ID"
// @Success 200 {object} dto.PaginatedResponse[models.Issue]
// @Router /issues/student/{studentId} [get]
func (c *IssueController) ListStudentIssues(ctx *gin.Context) {
	claims, ok := currentClaims(ctx)
	if !ok {
		return
	}
	studentID, ok := parseIDParam(ctx, "studentId")
	if !ok {
		return
	}
	page := helpers.ParsePaginationParams(ctx, helpers.IssuePageSize)

	issues, total, err := c.issueService.ListByStudent(ctx.Request.Context(), claims, studentID, page)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(issues, total, page))
}

// CreateIssue raises an issue for the acting student
// @Summary Create issue
// @Tags issues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student ID"
// @Param request body dto.CreateIssueRequest true "Issue"
// @Success 201 {object} models.Issue
// @Router /issues/student/{studentId} [post]
func (c *IssueController) CreateIssue(ctx *gin.Context) {
	claims, ok := currentClaims(ctx)
	if !ok {
		return
	}
	studentID, ok := parseIDParam(ctx, "studentId")
	if !ok {
		return
	}
	var req dto.CreateIssueRequest
	if !bindJSON(ctx, &req) {
		return
	}

	issue, err := c.issueService.CreateIssue(ctx.Request.Context(), claims, studentID, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, issue)
}

// GetIssue retrieves an issue
// @Summary Get issue
// @Tags issues
// @Produce json
// @Security BearerAuth
// @Param id path int true "Issue ID"
// @Success 200 {object} models.Issue
// @Failure 404 {object} dto.ErrorResponse "Issue not found"
// @Router /issues/{id} [get]
func (c *IssueController) GetIssue(ctx *gin.Context) {
	claims, ok := currentClaims(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	issue, err := c.issueService.GetIssue(ctx.Request.Context(), claims, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, issue)
}

// UpdateIssue applies the admin triage update
// @Summary Update issue
// @Description Status moves forward only: open, in_progress, resolved, closed
// @Tags issues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Issue ID"
// @Param request body dto.UpdateIssueRequest true "Fields to update"
// @Success 200 {object} models.Issue
// @Failure 400 {object} dto.ErrorResponse "Invalid status transition"
// @Router /issues/{id} [put]
func (c *IssueController) UpdateIssue(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateIssueRequest
	if !bindJSON(ctx, &req) {
		return
	}

	issue, err := c.issueService.UpdateIssue(ctx.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, issue)
}

// AssignIssue assigns an issue to an admin
// @Summary Assign issue
// @Tags issues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Issue ID"
// @Param request body dto.AssignIssueRequest true "Admin to assign"
// @Success 200 {object} models.Issue
// @Failure 404 {object} dto.ErrorResponse "Issue or admin not found"
// @Router /issues/{id}/assign [patch]
func (c *IssueController) AssignIssue(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.AssignIssueRequest
	if !bindJSON(ctx, &req) {
		return
	}

	issue, err := c.issueService.AssignIssue(ctx.Request.Context(), id, req.AdminID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, issue)
}

// DeleteIssue removes an issue
// @Summary Delete issue
// @Tags issues
// @Produce json
// @Security BearerAuth
// @Param id path int true "Issue ID"
// @Success 200 {object} dto.SuccessResponse
// @Router /issues/{id} [delete]
func (c *IssueController) DeleteIssue(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.issueService.DeleteIssue(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Issue deleted"))
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/unisupport/internal/app/models/dto"
	"github.com/yigit/unisupport/internal/app/services"
	"github.com/yigit/unisupport/internal/middleware"
	"github.com/yigit/unisupport/internal/pkg/helpers"
)

// AdminController handles admin profile operations
type AdminController struct {
	adminService services.AdminService
}

// NewAdminController creates a new AdminController
func NewAdminController(adminService services.AdminService) *AdminController {
	return &AdminController{adminService: adminService}
}

// ListAdmins lists admins
// @Summary List admins
// @Tags admins
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(8)
// @Param search query string false "Search by name or email"
// @Success 200 {object} dto.PaginatedResponse[models.Admin]
// @Router /admins [get]
func (c *AdminController) ListAdmins(ctx *gin.Context) {
	page := helpers.ParsePaginationParams(ctx, helpers.AdminPageSize)

	admins, total, err := c.adminService.ListAdmins(ctx.Request.Context(), page)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(admins, total, page))
}

// CreateAdmin creates an admin account and profile
// @Summary Create admin
// @Tags admins
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateAdminRequest true "Admin information"
// @Success 201 {object} models.Admin
// @Failure 400 {object} dto.ErrorResponse "Invalid request data or email taken"
// @Router /admins [post]
func (c *AdminController) CreateAdmin(ctx *gin.Context) {
	claims, ok := currentClaims(ctx)
	if !ok {
		return
	}
	var req dto.CreateAdminRequest
	if !bindJSON(ctx, &req) {
		return
	}

	approver := claims.AccountID
	admin, err := c.adminService.CreateAdmin(ctx.Request.Context(), req, &approver)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, admin)
}

// GetAdmin retrieves an admin by ID
// @Summary Get admin
// @Tags admins
// @Produce json
// @Security BearerAuth
// @Param id path int true "Admin ID"
// @Success 200 {object} models.Admin
// @Failure 404 {object} dto.ErrorResponse "Admin not found"
// @Router /admins/{id} [get]
func (c *AdminController) GetAdmin(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	admin, err := c.adminService.GetAdmin(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, admin)
}

// DeleteAdmin removes an admin and its account
// @Summary Delete admin
// @Tags admins
// @Produce json
// @Security BearerAuth
// @Param id path int true "Admin ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 403 {object} dto.ErrorResponse "Cannot delete yourself"
// @Failure 404 {object} dto.ErrorResponse "Admin not found"
// @Router /admins/{id} [delete]
func (c *AdminController) DeleteAdmin(ctx *gin.Context) {
	claims, ok := currentClaims(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.adminService.DeleteAdmin(ctx.Request.Context(), claims, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Admin deleted"))
}

// FacultyController handles faculty-related operations
type FacultyController struct {
	facultyService services.FacultyService
}

// NewFacultyController creates a new FacultyController
func NewFacultyController(facultyService services.FacultyService) *FacultyController {
	return &FacultyController{facultyService: facultyService}
}

// ListFaculty lists faculty members
// @Summary List faculty
// @Tags faculty
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(8)
// @Param search query string false "Search by name, email or department"
// @Success 200 {object} dto.PaginatedResponse[models.Faculty]
// @Router /faculty [get]
func (c *FacultyController) ListFaculty(ctx *gin.Context) {
	page := helpers.ParsePaginationParams(ctx, helpers.FacultyPageSize)

	members, total, err := c.facultyService.ListFaculty(ctx.Request.Context(), page)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(members, total, page))
}

// CreateFaculty creates a faculty account and profile
// @Summary Create faculty member
// @Tags faculty
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateFacultyRequest true "Faculty information"
// @Success 201 {object} models.Faculty
// @Failure 400 {object} dto.ErrorResponse "Invalid request data or email taken"
// @Router /faculty [post]
func (c *FacultyController) CreateFaculty(ctx *gin.Context) {
	claims, ok := currentClaims(ctx)
	if !ok {
		return
	}
	var req dto.CreateFacultyRequest
	if !bindJSON(ctx, &req) {
		return
	}

	approver := claims.AccountID
	faculty, err := c.facultyService.CreateFaculty(ctx.Request.Context(), req, &approver)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, faculty)
}

// GetFaculty retrieves a faculty member by ID
// @Summary Get faculty member
// @Tags faculty
// @Produce json
// @Security BearerAuth
// @Param id path int true "Faculty ID"
// @Success 200 {object} models.Faculty
// @Failure 404 {object} dto.ErrorResponse "Faculty not found"
// @Router /faculty/{id} [get]
func (c *FacultyController) GetFaculty(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	faculty, err := c.facultyService.GetFaculty(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, faculty)
}

// DeleteFaculty removes a faculty member and its account
// @Summary Delete faculty member
// @Tags faculty
// @Produce json
// @Security BearerAuth
// @Param id path int true "Faculty ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse "Faculty not found"
// @Router /faculty/{id} [delete]
func (c *FacultyController) DeleteFaculty(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.facultyService.DeleteFaculty(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Faculty member deleted"))
}

// AccountController handles account administration
type AccountController struct {
	accountService services.AccountService
}

// NewAccountController creates a new AccountController
func NewAccountController(accountService services.AccountService) *AccountController {
	return &AccountController{accountService: accountService}
}

// ListAccounts lists login accounts
// @Summary List accounts
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Param search query string false "Search by username"
// @Success 200 {object} dto.PaginatedResponse[models.Account]
// @Router /accounts [get]
func (c *AccountController) ListAccounts(ctx *gin.Context) {
	page := helpers.ParsePaginationParams(ctx, helpers.AccountPageSize)

	accounts, total, err := c.accountService.ListAccounts(ctx.Request.Context(), page)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(accounts, total, page))
}

// UpdateStatus moves an account through its lifecycle
// @Summary Update account status
// @Description Approve, suspend or reject an account. Approval and suspension stamps are set server-side.
// @Tags accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Param request body dto.UpdateAccountStatusRequest true "New status"
// @Success 200 {object} models.Account
// @Failure 400 {object} dto.ErrorResponse "Invalid status transition"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Router /accounts/{id}/status [patch]
func (c *AccountController) UpdateStatus(ctx *gin.Context) {
	claims, ok := currentClaims(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateAccountStatusRequest
	if !bindJSON(ctx, &req) {
		return
	}

	account, err := c.accountService.UpdateStatus(ctx.Request.Context(), claims, id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, account)
}

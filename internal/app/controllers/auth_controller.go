package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/unisupport/internal/app/models/dto"
	"github.com/yigit/unisupport/internal/app/services"
	"github.com/yigit/unisupport/internal/middleware"
	"github.com/yigit/unisupport/internal/pkg/auth"
)

// CookieSettings controls how the session cookie is written
type CookieSettings struct {
	Name   string
	Domain string
	Secure bool
}

// AuthController handles authentication related operations
type AuthController struct {
	authService *services.AuthService
	cookie      CookieSettings
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, cookie CookieSettings, logger zerolog.Logger) *AuthController {
	if cookie.Name == "" {
		cookie.Name = middleware.DefaultCookieName
	}
	return &AuthController{
		authService: authService,
		cookie:      cookie,
		logger:      logger,
	}
}

func (c *AuthController) setSessionCookie(ctx *gin.Context, value string, maxAge int) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.cookie.Name, value, maxAge, "/", c.cookie.Domain, c.cookie.Secure, true)
}

// Register handles student self-registration
// @Summary Register a new student
// @Description Creates a pending student account and profile. An admin must approve the account before login.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Student registration information"
// @Success 201 {object} models.Student "Student registered"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or email already taken"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(ctx, &req) {
		c.logger.Warn().Msg("Invalid registration request payload")
		return
	}

	student, err := c.authService.Register(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, student)
}

// Login handles user login
// @Summary User login
// @Description Authenticates an approved account and sets the session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.LoginResponse "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 403 {object} dto.ErrorResponse "Account is not active"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(ctx, &req) {
		return
	}

	result, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.setSessionCookie(ctx, result.Token.Token, int(auth.TokenTTL.Seconds()))
	ctx.JSON(http.StatusOK, dto.LoginResponse{
		Success:     true,
		AccountType: result.Account.Role,
	})
}

// Logout ends the current session
// @Summary Logout
// @Description Revokes the current session token and clears the cookie
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SuccessResponse "Logged out"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	claims, ok := currentClaims(ctx)
	if !ok {
		return
	}

	if err := c.authService.Logout(ctx.Request.Context(), claims); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.setSessionCookie(ctx, "", -1)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Logged out"))
}

// CurrentUser describes the session identity
// @Summary Current user
// @Description Returns the identity carried by the session token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserInfoResponse
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Router /user [get]
func (c *AuthController) CurrentUser(ctx *gin.Context) {
	claims, ok := currentClaims(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, c.authService.CurrentUser(claims))
}

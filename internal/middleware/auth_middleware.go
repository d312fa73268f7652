package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/unisupport/internal/app/models"
	"github.com/yigit/unisupport/internal/app/models/dto"
	"github.com/yigit/unisupport/internal/pkg/auth"
	"github.com/yigit/unisupport/internal/pkg/logger"
)

// Context keys set by Authenticate
const (
	ContextClaimsKey    = "claims"
	ContextAccountIDKey = "accountID"
	ContextRoleKey      = "role"
)

// DefaultCookieName is the session cookie used when none is configured
const DefaultCookieName = "token"

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService  *auth.JWTService
	revocations auth.RevocationStore
	cookieName  string
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, revocations auth.RevocationStore, cookieName string) *AuthMiddleware {
	if revocations == nil {
		revocations = auth.NoopRevocationStore{}
	}
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &AuthMiddleware{
		jwtService:  jwtService,
		revocations: revocations,
		cookieName:  cookieName,
	}
}

// CookieName returns the session cookie name
func (m *AuthMiddleware) CookieName() string {
	return m.cookieName
}

// tokenFromRequest reads the session cookie, falling back to the Authorization header
func (m *AuthMiddleware) tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(m.cookieName); err == nil && strings.TrimSpace(cookie) != "" {
		return strings.TrimSpace(cookie)
	}
	return auth.ExtractBearerToken(c.GetHeader("Authorization"))
}

// Authenticate validates the session token and stores its claims on the context
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := m.tokenFromRequest(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrorCodeUnauthorized, "Authentication required"))
			return
		}

		claims, err := m.jwtService.Verify(tokenString)
		if err != nil {
			logger.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("Rejected session token")
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrorCodeInvalidToken, "Invalid or expired token"))
			return
		}

		revoked, err := m.sessionRevoked(c.Request.Context(), claims)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to check token revocation")
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				dto.NewErrorResponse(dto.ErrorCodeInternalServer, "Internal server error"))
			return
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrorCodeInvalidToken, "Invalid or expired token"))
			return
		}

		c.Set(ContextClaimsKey, claims)
		c.Set(ContextAccountIDKey, claims.AccountID)
		c.Set(ContextRoleKey, claims.Role)

		c.Next()
	}
}

// sessionRevoked checks the token id first, then the account-wide cutoff set on
// suspension or deletion
func (m *AuthMiddleware) sessionRevoked(ctx context.Context, claims *auth.Claims) (bool, error) {
	revoked, err := m.revocations.IsRevoked(ctx, claims.ID)
	if err != nil || revoked {
		return revoked, err
	}

	var issuedAt time.Time
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}
	return m.revocations.IsAccountRevoked(ctx, claims.AccountID, issuedAt)
}

// RoleRequired middleware to check if user has one of the allowed roles
func (m *AuthMiddleware) RoleRequired(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrorCodeUnauthorized, "Authentication required"))
			return
		}

		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden,
			dto.NewErrorResponse(dto.ErrorCodeForbidden, "Access denied"))
	}
}

// GetClaims returns the verified claims stored by Authenticate
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	value, exists := c.Get(ContextClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*auth.Claims)
	return claims, ok && claims != nil
}

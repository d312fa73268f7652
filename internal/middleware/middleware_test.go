package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unisupport/internal/app/models"
	"github.com/yigit/unisupport/internal/app/models/dto"
	"github.com/yigit/unisupport/internal/pkg/apperrors"
	"github.com/yigit/unisupport/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, revocations auth.RevocationStore) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "middleware-secret", TokenIssuer: "test"})
	m := NewAuthMiddleware(jwtService, revocations, "")

	r := gin.New()
	protected := r.Group("/", m.Authenticate())
	protected.GET("/me", func(c *gin.Context) {
		claims, ok := GetClaims(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"accountId": claims.AccountID})
	})
	protected.GET("/admin", m.RoleRequired(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r, jwtService
}

func issue(t *testing.T, jwtService *auth.JWTService, role models.Role) *auth.IssuedToken {
	t.Helper()
	identity := auth.Identity{AccountID: 7, Role: role, UserName: "u@uni.edu"}
	if role == models.RoleStudent {
		id := int64(3)
		identity.StudentID = &id
	}
	token, err := jwtService.Issue(identity)
	require.NoError(t, err)
	return token
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthenticateRequiresToken(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decodeError(t, w)
	assert.False(t, body.Success)
	assert.Equal(t, dto.ErrorCodeUnauthorized, body.Code)
}

func TestAuthenticateRejectsBadToken(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeInvalidToken, decodeError(t, w).Code)
}

func TestAuthenticateAcceptsCookieAndHeader(t *testing.T) {
	r, jwtService := newTestRouter(t, nil)
	token := issue(t, jwtService, models.RoleStudent)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: token.Token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"accountId":7}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token.Token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoleRequired(t *testing.T) {
	r, jwtService := newTestRouter(t, nil)

	for role, want := range map[models.Role]int{
		models.RoleStudent: http.StatusForbidden,
		models.RoleFaculty: http.StatusForbidden,
		models.RoleAdmin:   http.StatusOK,
	} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+issue(t, jwtService, role).Token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, "role %s", role)
	}
}

func TestAuthenticateRejectsRevokedToken(t *testing.T) {
	store := auth.NewMemoryRevocationStore()
	r, jwtService := newTestRouter(t, store)
	token := issue(t, jwtService, models.RoleAdmin)
	require.NoError(t, store.Revoke(context.Background(), token.ID, token.ExpiresAt))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token.Token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateRejectsTokenOfRevokedAccount(t *testing.T) {
	store := auth.NewMemoryRevocationStore()
	r, jwtService := newTestRouter(t, store)
	token := issue(t, jwtService, models.RoleStudent)
	require.NoError(t, store.RevokeAccount(context.Background(), 7, time.Now()))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token.Token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeInvalidToken, decodeError(t, w).Code)
}

func TestHandleAPIError(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		code    dto.ErrorCode
		message string
	}{
		{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
		{apperrors.ErrUnauthorized, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required"},
		{apperrors.ErrAccountNotApproved, http.StatusForbidden, dto.ErrorCodeAccountInactive, "Account is not active"},
		{apperrors.NewForbiddenError("Not yours"), http.StatusForbidden, dto.ErrorCodeForbidden, "Not yours"},
		{apperrors.ErrStudentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Student not found"},
		{apperrors.NewValidationError("rating must be between 1 and 5"), http.StatusBadRequest, dto.ErrorCodeValidationFailed, "rating must be between 1 and 5"},
		{apperrors.ErrEmailAlreadyExists, http.StatusBadRequest, dto.ErrorCodeResourceAlreadyExists, "Email already exists"},
		{fmt.Errorf("%w: message_id 4", apperrors.ErrConflict), http.StatusConflict, dto.ErrorCodeConflict, "Resource already exists"},
		{errors.New("dial tcp: connection refused"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

		HandleAPIError(c, tc.err)

		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		body := decodeError(t, w)
		assert.Equal(t, tc.code, body.Code, tc.err.Error())
		assert.Equal(t, tc.message, body.Error, tc.err.Error())
		assert.WithinDuration(t, time.Now(), body.Timestamp, time.Minute)
	}
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decodeError(t, w).Error)
}

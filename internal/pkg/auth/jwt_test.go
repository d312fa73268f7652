package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unisupport/internal/app/models"
	"github.com/yigit/unisupport/internal/pkg/apperrors"
)

func newTestService() *JWTService {
	return NewJWTService(JWTConfig{SecretKey: "test-secret", TokenIssuer: "test-issuer"})
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	svc := newTestService()
	studentID := int64(7)

	issued, err := svc.Issue(Identity{AccountID: 3, Role: models.RoleStudent, StudentID: &studentID, UserName: "jane@uni.edu"})
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)
	assert.WithinDuration(t, time.Now().Add(TokenTTL), issued.ExpiresAt, 5*time.Second)

	claims, err := svc.Verify(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(3), claims.AccountID)
	assert.Equal(t, models.RoleStudent, claims.Role)
	require.NotNil(t, claims.StudentID)
	assert.Equal(t, studentID, *claims.StudentID)
	assert.Equal(t, "jane@uni.edu", claims.UserName)
	assert.Equal(t, issued.ID, claims.ID)
}

func TestIssueWithoutSecretFails(t *testing.T) {
	svc := NewJWTService(JWTConfig{})
	_, err := svc.Issue(Identity{AccountID: 1, Role: models.RoleAdmin})
	assert.ErrorIs(t, err, apperrors.ErrSigningKeyUnavailable)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	svc := newTestService()
	svc.now = func() time.Time { return time.Now().Add(-2 * TokenTTL) }
	issued, err := svc.Issue(Identity{AccountID: 1, Role: models.RoleAdmin, UserName: "admin"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Verify(issued.Token)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	other := NewJWTService(JWTConfig{SecretKey: "other-secret", TokenIssuer: "test-issuer"})
	issued, err := other.Issue(Identity{AccountID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = newTestService().Verify(issued.Token)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestVerifyRejectsMalformedToken(t *testing.T) {
	svc := newTestService()
	for _, raw := range []string{"", "abc", "a.b.c"} {
		_, err := svc.Verify(raw)
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid, raw)
	}
}

func TestVerifyRejectsStudentWithoutProfile(t *testing.T) {
	svc := newTestService()
	issued, err := svc.Issue(Identity{AccountID: 4, Role: models.RoleStudent})
	require.NoError(t, err)

	_, err = svc.Verify(issued.Token)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestExtractBearerToken(t *testing.T) {
	assert.Equal(t, "abc.def.ghi", ExtractBearerToken("Bearer abc.def.ghi"))
	assert.Equal(t, "abc.def.ghi", ExtractBearerToken("bearer abc.def.ghi"))
	assert.Equal(t, "abc.def.ghi", ExtractBearerToken(`"Bearer abc.def.ghi"`))
	assert.Empty(t, ExtractBearerToken("abc.def.ghi"))
	assert.Empty(t, ExtractBearerToken(""))
}

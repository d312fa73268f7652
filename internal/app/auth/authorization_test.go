package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unisupport/internal/app/models"
	"github.com/yigit/unisupport/internal/app/repositories/memory"
	"github.com/yigit/unisupport/internal/pkg/apperrors"
	jwtauth "github.com/yigit/unisupport/internal/pkg/auth"
)

func studentClaims(studentID int64) *jwtauth.Claims {
	return &jwtauth.Claims{AccountID: 10, Role: models.RoleStudent, StudentID: &studentID}
}

func TestValidateStudentAccess(t *testing.T) {
	svc := NewAuthorizationService(nil, nil)
	admin := &jwtauth.Claims{AccountID: 1, Role: models.RoleAdmin}
	faculty := &jwtauth.Claims{AccountID: 2, Role: models.RoleFaculty}

	assert.NoError(t, svc.ValidateStudentAccess(studentClaims(5), 5))
	assert.ErrorIs(t, svc.ValidateStudentAccess(studentClaims(6), 5), apperrors.ErrPermissionDenied)
	assert.NoError(t, svc.ValidateStudentAccess(admin, 5, models.RoleAdmin))
	assert.ErrorIs(t, svc.ValidateStudentAccess(faculty, 5, models.RoleAdmin), apperrors.ErrPermissionDenied)
	assert.ErrorIs(t, svc.ValidateStudentAccess(nil, 5), apperrors.ErrUnauthorized)
}

func TestValidateChatAccess(t *testing.T) {
	repos := memory.NewRepositories()
	svc := NewAuthorizationService(repos.ChatRepository, repos.IssueRepository)
	ctx := context.Background()

	chat := &models.Chat{StudentID: 3, Status: models.ChatOpen}
	require.NoError(t, repos.ChatRepository.Create(ctx, chat))

	got, err := svc.ValidateChatAccess(ctx, studentClaims(3), chat.ID)
	require.NoError(t, err)
	assert.Equal(t, chat.ID, got.ID)

	_, err = svc.ValidateChatAccess(ctx, studentClaims(4), chat.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = svc.ValidateChatAccess(ctx, studentClaims(3), chat.ID+100)
	assert.ErrorIs(t, err, apperrors.ErrChatNotFound)
}

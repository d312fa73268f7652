package auth

import (
	"context"
	"fmt"

	"github.com/yigit/unisupport/internal/app/models"
	"github.com/yigit/unisupport/internal/app/repositories"
	"github.com/yigit/unisupport/internal/pkg/apperrors"
	jwtauth "github.com/yigit/unisupport/internal/pkg/auth"
	"github.com/yigit/unisupport/internal/pkg/logger"
)

// AuthorizationService answers ownership questions on top of the role checks
// done by the access middleware. Identity always comes from verified claims.
type AuthorizationService struct {
	chatRepo  repositories.IChatRepository
	issueRepo repositories.IIssueRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(chatRepo repositories.IChatRepository, issueRepo repositories.IIssueRepository) *AuthorizationService {
	return &AuthorizationService{
		chatRepo:  chatRepo,
		issueRepo: issueRepo,
	}
}

func hasRole(role models.Role, roles []models.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsStudentOwner reports whether the actor is the student with the given id
func IsStudentOwner(actor *jwtauth.Claims, studentID int64) bool {
	if actor == nil || actor.Role != models.RoleStudent || actor.StudentID == nil {
		return false
	}
	return *actor.StudentID == studentID
}

// ValidateStudentAccess allows the student themself, or any of the staff roles
func (s *AuthorizationService) ValidateStudentAccess(actor *jwtauth.Claims, studentID int64, staff ...models.Role) error {
	if actor == nil {
		return apperrors.ErrUnauthorized
	}

	switch actor.Role {
	case models.RoleStudent:
		if IsStudentOwner(actor, studentID) {
			return nil
		}
		return apperrors.NewForbiddenError("You can only access your own records")
	case models.RoleAdmin, models.RoleFaculty:
		if hasRole(actor.Role, staff) {
			return nil
		}
		return apperrors.NewForbiddenError("Insufficient permissions")
	default:
		return apperrors.ErrPermissionDenied
	}
}

// ValidateChatAccess loads a chat and checks that the actor may touch it
func (s *AuthorizationService) ValidateChatAccess(ctx context.Context, actor *jwtauth.Claims, chatID int64, staff ...models.Role) (*models.Chat, error) {
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.ErrChatNotFound
		}
		logger.Error().Err(err).Int64("chatID", chatID).Msg("Error loading chat for authorization")
		return nil, fmt.Errorf("error loading chat: %w", err)
	}

	if err := s.ValidateStudentAccess(actor, chat.StudentID, staff...); err != nil {
		return nil, err
	}
	return chat, nil
}

// ValidateIssueAccess loads an issue and checks that the actor may read it
func (s *AuthorizationService) ValidateIssueAccess(ctx context.Context, actor *jwtauth.Claims, issueID int64, staff ...models.Role) (*models.Issue, error) {
	issue, err := s.issueRepo.GetByID(ctx, issueID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.ErrIssueNotFound
		}
		logger.Error().Err(err).Int64("issueID", issueID).Msg("Error loading issue for authorization")
		return nil, fmt.Errorf("error loading issue: %w", err)
	}

	if err := s.ValidateStudentAccess(actor, issue.StudentID, staff...); err != nil {
		return nil, err
	}
	return issue, nil
}

package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/unisupport/internal/app/auth"
	"github.com/yigit/unisupport/internal/app/models"
	"github.com/yigit/unisupport/internal/app/models/dto"
	"github.com/yigit/unisupport/internal/app/repositories"
	"github.com/yigit/unisupport/internal/pkg/apperrors"
	"github.com/yigit/unisupport/internal/pkg/auth"
	"github.com/yigit/unisupport/internal/pkg/helpers"
	"github.com/yigit/unisupport/internal/pkg/sequence"
)

// IssueService defines the interface for support ticket operations
type IssueService interface {
	ListIssues(ctx context.Context, status *models.IssueStatus, page helpers.PageRequest) ([]*models.Issue, int64, error)
	ListByStudent(ctx context.Context, actor *auth.Claims, studentID int64, page helpers.PageRequest) ([]*models.Issue, int64, error)
	CreateIssue(ctx context.Context, actor *auth.Claims, studentID int64, req dto.CreateIssueRequest) (*models.Issue, error)
	GetIssue(ctx context.Context, actor *auth.Claims, id int64) (*models.Issue, error)
	UpdateIssue(ctx context.Context, id int64, req dto.UpdateIssueRequest) (*models.Issue, error)
	AssignIssue(ctx context.Context, id int64, adminID int64) (*models.Issue, error)
	DeleteIssue(ctx context.Context, id int64) error
}

// issueServiceImpl implements the IssueService interface
type issueServiceImpl struct {
	issueRepo    repositories.IIssueRepository
	studentRepo  repositories.IStudentRepository
	adminRepo    repositories.IAdminRepository
	chatRepo     repositories.IChatRepository
	messageRepo  repositories.IChatMessageRepository
	sequences    *sequence.Generator
	authzService *appauth.AuthorizationService
	logger       zerolog.Logger
	now          func() time.Time
}

// NewIssueService creates a new issue service instance
func NewIssueService(
	issueRepo repositories.IIssueRepository,
	studentRepo repositories.IStudentRepository,
	adminRepo repositories.IAdminRepository,
	chatRepo repositories.IChatRepository,
	messageRepo repositories.IChatMessageRepository,
	sequences *sequence.Generator,
	authzService *appauth.AuthorizationService,
	logger zerolog.Logger,
) IssueService {
	return &issueServiceImpl{
		issueRepo:    issueRepo,
		studentRepo:  studentRepo,
		adminRepo:    adminRepo,
		chatRepo:     chatRepo,
		messageRepo:  messageRepo,
		sequences:    sequences,
		authzService: authzService,
		logger:       logger,
		now:          time.Now,
	}
}

// ListIssues returns a page of issues across all students, optionally filtered by status
func (s *issueServiceImpl) ListIssues(ctx context.Context, status *models.IssueStatus, page helpers.PageRequest) ([]*models.Issue, int64, error) {
	if status != nil && !status.Valid() {
		return nil, 0, apperrors.NewValidationError(fmt.Sprintf("Unknown issue status %q", *status))
	}

	issues, total, err := s.issueRepo.List(ctx, repositories.IssueFilter{Status: status}, toListOptions(page))
	if err != nil {
		return nil, 0, fmt.Errorf("error listing issues: %w", err)
	}
	s.populate(ctx, issues...)
	return issues, total, nil
}

// ListByStudent returns a page of one student's issues to the student or an admin
func (s *issueServiceImpl) ListByStudent(ctx context.Context, actor *auth.Claims, studentID int64, page helpers.PageRequest) ([]*models.Issue, int64, error) {
	if err := s.authzService.ValidateStudentAccess(actor, studentID, models.RoleAdmin); err != nil {
		return nil, 0, err
	}

	issues, total, err := s.issueRepo.List(ctx, repositories.IssueFilter{StudentID: &studentID}, toListOptions(page))
	if err != nil {
		return nil, 0, fmt.Errorf("error listing student issues: %w", err)
	}
	s.populate(ctx, issues...)
	return issues, total, nil
}

// CreateIssue raises a ticket for the acting student with the next issue id
func (s *issueServiceImpl) CreateIssue(ctx context.Context, actor *auth.Claims, studentID int64, req dto.CreateIssueRequest) (*models.Issue, error) {
	if err := s.authzService.ValidateStudentAccess(actor, studentID); err != nil {
		return nil, err
	}

	details := strings.TrimSpace(req.Details)
	issueType := strings.TrimSpace(req.Type)
	if details == "" || issueType == "" {
		return nil, apperrors.NewValidationError("details and type are required")
	}

	if _, err := s.studentRepo.GetByID(ctx, studentID); err != nil {
		return nil, err
	}
	chatID, err := conversationRef(ctx, s.chatRepo, s.messageRepo, studentID, req.ChatID, req.MessageID)
	if err != nil {
		return nil, err
	}

	issueID, err := s.sequences.NextIssueID(ctx)
	if err != nil {
		return nil, err
	}

	issue := &models.Issue{
		IssueID:   issueID,
		Details:   details,
		Type:      issueType,
		Status:    models.IssueOpen,
		StudentID: studentID,
		ChatID:    chatID,
		MessageID: req.MessageID,
	}
	if err := s.issueRepo.Create(ctx, issue); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("issueID", issue.IssueID).Int64("studentID", studentID).Msg("Issue created")
	return issue, nil
}

// GetIssue returns a populated issue to its owner or an admin
func (s *issueServiceImpl) GetIssue(ctx context.Context, actor *auth.Claims, id int64) (*models.Issue, error) {
	issue, err := s.authzService.ValidateIssueAccess(ctx, actor, id, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	s.populate(ctx, issue)
	return issue, nil
}

// UpdateIssue applies the admin triage update. Status only moves forward.
func (s *issueServiceImpl) UpdateIssue(ctx context.Context, id int64, req dto.UpdateIssueRequest) (*models.Issue, error) {
	issue, err := s.issueRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Details != nil {
		if issue.Details = strings.TrimSpace(*req.Details); issue.Details == "" {
			return nil, apperrors.NewValidationError("details cannot be empty")
		}
	}
	if req.Type != nil {
		if issue.Type = strings.TrimSpace(*req.Type); issue.Type == "" {
			return nil, apperrors.NewValidationError("type cannot be empty")
		}
	}
	if req.AdminNotes != nil {
		notes := strings.TrimSpace(*req.AdminNotes)
		issue.AdminNotes = &notes
	}
	if req.Status != nil && *req.Status != issue.Status {
		next := *req.Status
		if !next.Valid() {
			return nil, apperrors.NewValidationError(fmt.Sprintf("Unknown issue status %q", next))
		}
		if !issue.Status.CanAdvanceTo(next) {
			return nil, &apperrors.CustomError{
				Err:     apperrors.ErrInvalidTransition,
				Message: fmt.Sprintf("Cannot move issue from %s back to %s", issue.Status, next),
			}
		}
		issue.Status = next
		if next == models.IssueResolved {
			now := s.now()
			issue.ResolvedAt = &now
		}
	}

	if err := s.issueRepo.Update(ctx, issue); err != nil {
		return nil, err
	}
	s.populate(ctx, issue)
	return issue, nil
}

// AssignIssue assigns an issue to an existing admin and stamps the assignment time
func (s *issueServiceImpl) AssignIssue(ctx context.Context, id int64, adminID int64) (*models.Issue, error) {
	issue, err := s.issueRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.adminRepo.GetByID(ctx, adminID); err != nil {
		return nil, err
	}

	now := s.now()
	issue.AssignedAdminID = &adminID
	issue.AssignedAt = &now
	if err := s.issueRepo.Update(ctx, issue); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("issueID", issue.IssueID).Int64("adminID", adminID).Msg("Issue assigned")
	s.populate(ctx, issue)
	return issue, nil
}

// DeleteIssue removes an issue
func (s *issueServiceImpl) DeleteIssue(ctx context.Context, id int64) error {
	return s.issueRepo.Delete(ctx, id)
}

// populate resolves the student and assigned admin references
func (s *issueServiceImpl) populate(ctx context.Context, issues ...*models.Issue) {
	studentIDs := make([]int64, 0, len(issues))
	adminIDs := make([]int64, 0, len(issues))
	for _, issue := range issues {
		studentIDs = append(studentIDs, issue.StudentID)
		if issue.AssignedAdminID != nil {
			adminIDs = append(adminIDs, *issue.AssignedAdminID)
		}
	}

	populateStudents(ctx, s.logger, s.studentRepo, uniqueIDs(studentIDs), func(students map[int64]*models.Student) {
		for _, issue := range issues {
			issue.Student = students[issue.StudentID].Summary()
		}
	})

	if len(adminIDs) == 0 {
		return
	}
	admins, err := s.adminRepo.GetByIDs(ctx, uniqueIDs(adminIDs))
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to populate assigned admins")
		return
	}
	for _, issue := range issues {
		if issue.AssignedAdminID != nil {
			issue.AssignedAdmin = admins[*issue.AssignedAdminID].Summary()
		}
	}
}

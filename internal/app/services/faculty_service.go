package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/unisupport/internal/app/models"
	"github.com/yigit/unisupport/internal/app/models/dto"
	"github.com/yigit/unisupport/internal/app/repositories"
	"github.com/yigit/unisupport/internal/pkg/apperrors"
	"github.com/yigit/unisupport/internal/pkg/auth"
	"github.com/yigit/unisupport/internal/pkg/helpers"
	"github.com/yigit/unisupport/internal/pkg/sequence"
)

// FacultyService defines the interface for faculty-related operations
type FacultyService interface {
	ListFaculty(ctx context.Context, page helpers.PageRequest) ([]*models.Faculty, int64, error)
	GetFaculty(ctx context.Context, id int64) (*models.Faculty, error)
	CreateFaculty(ctx context.Context, req dto.CreateFacultyRequest, approvedBy *int64) (*models.Faculty, error)
	DeleteFaculty(ctx context.Context, id int64) error
}

// facultyServiceImpl implements the FacultyService interface
type facultyServiceImpl struct {
	accountRepo repositories.IAccountRepository
	facultyRepo repositories.IFacultyRepository
	sequences   *sequence.Generator
	revocations auth.RevocationStore
	logger      zerolog.Logger
}

// NewFacultyService creates a new faculty service instance
func NewFacultyService(
	accountRepo repositories.IAccountRepository,
	facultyRepo repositories.IFacultyRepository,
	sequences *sequence.Generator,
	revocations auth.RevocationStore,
	logger zerolog.Logger,
) FacultyService {
	return &facultyServiceImpl{
		accountRepo: accountRepo,
		facultyRepo: facultyRepo,
		sequences:   sequences,
		revocations: orNoopRevocations(revocations),
		logger:      logger,
	}
}

// validateFaculty validates faculty data before database operations
func (s *facultyServiceImpl) validateFaculty(req dto.CreateFacultyRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name cannot be empty", apperrors.ErrValidationFailed)
	}
	if normalizeEmail(req.Email) == "" {
		return fmt.Errorf("%w: email cannot be empty", apperrors.ErrValidationFailed)
	}
	return nil
}

// ListFaculty returns a page of faculty members
func (s *facultyServiceImpl) ListFaculty(ctx context.Context, page helpers.PageRequest) ([]*models.Faculty, int64, error) {
	members, total, err := s.facultyRepo.List(ctx, toListOptions(page))
	if err != nil {
		return nil, 0, fmt.Errorf("error retrieving faculty: %w", err)
	}
	return members, total, nil
}

// GetFaculty retrieves a faculty member by ID
func (s *facultyServiceImpl) GetFaculty(ctx context.Context, id int64) (*models.Faculty, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid faculty ID", apperrors.ErrValidationFailed)
	}

	faculty, err := s.facultyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account, err := s.accountRepo.GetByID(ctx, faculty.AccountID); err == nil {
		faculty.Account = account
	} else if !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("error loading faculty account: %w", err)
	}
	return faculty, nil
}

// CreateFaculty creates an approved faculty account and profile
func (s *facultyServiceImpl) CreateFaculty(ctx context.Context, req dto.CreateFacultyRequest, approvedBy *int64) (*models.Faculty, error) {
	if err := s.validateFaculty(req); err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)
	account, err := createStaffAccount(ctx, s.accountRepo, s.sequences, email, req.Password, models.RoleFaculty, approvedBy)
	if err != nil {
		return nil, err
	}

	faculty := &models.Faculty{
		AccountID:  account.ID,
		Name:       strings.TrimSpace(req.Name),
		Email:      email,
		Department: strings.TrimSpace(req.Department),
		Title:      strings.TrimSpace(req.Title),
	}
	if err := s.facultyRepo.Create(ctx, faculty); err != nil {
		s.logger.Error().Err(err).Int64("accountID", account.ID).Msg("Account created without faculty profile")
		return nil, err
	}

	faculty.Account = account
	s.logger.Info().Int64("facultyID", faculty.ID).Msg("Faculty member created")
	return faculty, nil
}

// DeleteFaculty deletes a faculty member and its account
func (s *facultyServiceImpl) DeleteFaculty(ctx context.Context, id int64) error {
	faculty, err := s.facultyRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := revokeAccountSessions(ctx, s.revocations, faculty.AccountID, time.Now()); err != nil {
		return err
	}
	if err := s.facultyRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.accountRepo.Delete(ctx, faculty.AccountID); err != nil && !apperrors.IsNotFound(err) {
		s.logger.Error().Err(err).Int64("accountID", faculty.AccountID).Msg("Faculty deleted but account removal failed")
		return err
	}
	return nil
}

package services

import (
	"context"
	"errors"
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

// EnrollInput is everything needed to create a student account and profile
type EnrollInput struct {
	Email    string
	Password string
	Name     string
	Gender   string
	Address  string
	Phone    string
	Major    string
}

// StudentService defines the interface for student operations
type StudentService interface {
	Enroll(ctx context.Context, input EnrollInput, approvedBy *int64) (*models.Student, error)
	ListStudents(ctx context.Context, page helpers.PageRequest) ([]*models.Student, int64, error)
	GetStudent(ctx context.Context, id int64) (*models.Student, error)
	UpdateStudent(ctx context.Context, id int64, req dto.UpdateStudentRequest) (*models.Student, error)
	GetProfile(ctx context.Context, actor *auth.Claims, id int64) (*models.Student, error)
	UpdateProfile(ctx context.Context, actor *auth.Claims, id int64, req dto.UpdateProfileRequest) (*models.Student, error)
	DeleteStudent(ctx context.Context, id int64) error
}

// studentServiceImpl implements the StudentService interface
type studentServiceImpl struct {
	accountRepo  repositories.IAccountRepository
	studentRepo  repositories.IStudentRepository
	sequences    *sequence.Generator
	authzService *appauth.AuthorizationService
	revocations  auth.RevocationStore
	logger       zerolog.Logger
}

// NewStudentService creates a new student service instance
func NewStudentService(
	accountRepo repositories.IAccountRepository,
	studentRepo repositories.IStudentRepository,
	sequences *sequence.Generator,
	authzService *appauth.AuthorizationService,
	revocations auth.RevocationStore,
	logger zerolog.Logger,
) StudentService {
	return &studentServiceImpl{
		accountRepo:  accountRepo,
		studentRepo:  studentRepo,
		sequences:    sequences,
		authzService: authzService,
		revocations:  orNoopRevocations(revocations),
		logger:       logger,
	}
}

// Enroll creates the account and the student profile. Without an approver the
// account starts pending; with one it is approved immediately.
// The two writes are not atomic; a failure after the account insert is logged
// and surfaces as an internal error.
func (s *studentServiceImpl) Enroll(ctx context.Context, input EnrollInput, approvedBy *int64) (*models.Student, error) {
	email := normalizeEmail(input.Email)
	if email == "" || strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("email and name are required")
	}

	exists, err := s.accountRepo.UsernameExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	status := models.AccountPending
	if approvedBy != nil {
		status = models.AccountApproved
	}
	account, err := newAccount(ctx, s.sequences, email, input.Password, models.RoleStudent, status, approvedBy)
	if err != nil {
		return nil, err
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	academicID, err := s.sequences.NextAcademicID(ctx)
	if err != nil {
		s.logger.Error().Err(err).Int64("accountID", account.ID).Msg("Account created without student profile")
		return nil, err
	}

	student := &models.Student{
		AccountID:  account.ID,
		AcademicID: academicID,
		Name:       strings.TrimSpace(input.Name),
		Gender:     strings.TrimSpace(input.Gender),
		Address:    strings.TrimSpace(input.Address),
		Phone:      strings.TrimSpace(input.Phone),
		Email:      email,
		Major:      strings.TrimSpace(input.Major),
	}
	if err := s.studentRepo.Create(ctx, student); err != nil {
		s.logger.Error().Err(err).Int64("accountID", account.ID).Msg("Account created without student profile")
		return nil, err
	}

	student.Account = account
	s.logger.Info().
		Int64("studentID", student.ID).
		Str("academicID", student.AcademicID).
		Str("status", string(account.Status)).
		Msg("Student enrolled")
	return student, nil
}

// newAccount builds an account with a fresh account number and hashed password.
// Approved accounts are stamped with the approver, which may be nil for bootstrap accounts.
func newAccount(ctx context.Context, sequences *sequence.Generator, username, password string, role models.Role, status models.AccountStatus, approvedBy *int64) (*models.Account, error) {
	if len(password) < 6 {
		return nil, apperrors.NewValidationError("password must be at least 6 characters")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	number, err := sequences.NextAccountNumber(ctx)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		AccountNumber: number,
		Username:      username,
		PasswordHash:  hash,
		Role:          role,
		Status:        status,
	}
	if status == models.AccountApproved {
		now := time.Now()
		account.ApprovedBy = approvedBy
		account.ApprovedAt = &now
	}
	return account, nil
}

// ListStudents returns a page of students
func (s *studentServiceImpl) ListStudents(ctx context.Context, page helpers.PageRequest) ([]*models.Student, int64, error) {
	students, total, err := s.studentRepo.List(ctx, toListOptions(page))
	if err != nil {
		return nil, 0, fmt.Errorf("error listing students: %w", err)
	}
	return students, total, nil
}

// GetStudent retrieves a student with its account populated
func (s *studentServiceImpl) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	account, err := s.accountRepo.GetByID(ctx, student.AccountID)
	switch {
	case err == nil:
		student.Account = account
	case apperrors.IsNotFound(err):
		s.logger.Warn().Int64("studentID", id).Int64("accountID", student.AccountID).Msg("Student references a missing account")
	default:
		return nil, fmt.Errorf("error loading student account: %w", err)
	}
	return student, nil
}

// UpdateStudent applies a partial update; an email change also renames the login.
// Nothing is written unless the whole update is valid.
func (s *studentServiceImpl) UpdateStudent(ctx context.Context, id int64, req dto.UpdateStudentRequest) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previousEmail := student.Email
	if req.Email != nil {
		student.Email = normalizeEmail(*req.Email)
	}
	applyString(&student.Name, req.Name)
	applyString(&student.Gender, req.Gender)
	applyString(&student.Address, req.Address)
	applyString(&student.Phone, req.Phone)
	applyString(&student.Major, req.Major)

	if student.Name == "" {
		return nil, apperrors.NewValidationError("name cannot be empty")
	}
	if student.Email == "" {
		return nil, apperrors.NewValidationError("email cannot be empty")
	}

	renamed := false
	if student.Email != previousEmail {
		if err := s.accountRepo.UpdateUsername(ctx, student.AccountID, student.Email); err != nil {
			if !errors.Is(err, apperrors.ErrAccountNotFound) {
				return nil, err
			}
			s.logger.Warn().Int64("studentID", id).Msg("Email changed on a student without account")
		} else {
			renamed = true
		}
	}

	if err := s.studentRepo.Update(ctx, student); err != nil {
		if renamed {
			if rbErr := s.accountRepo.UpdateUsername(ctx, student.AccountID, previousEmail); rbErr != nil {
				s.logger.Error().Err(rbErr).Int64("studentID", id).Msg("Failed to restore login after student update error")
			}
		}
		return nil, err
	}
	return student, nil
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

// GetProfile returns a student profile to its owner or an admin
func (s *studentServiceImpl) GetProfile(ctx context.Context, actor *auth.Claims, id int64) (*models.Student, error) {
	if err := s.authzService.ValidateStudentAccess(actor, id, models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.GetStudent(ctx, id)
}

// UpdateProfile applies the restricted self-service update
func (s *studentServiceImpl) UpdateProfile(ctx context.Context, actor *auth.Claims, id int64, req dto.UpdateProfileRequest) (*models.Student, error) {
	if err := s.authzService.ValidateStudentAccess(actor, id, models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.UpdateStudent(ctx, id, req.ToStudentUpdate())
}

// DeleteStudent removes the student profile and its account
func (s *studentServiceImpl) DeleteStudent(ctx context.Context, id int64) error {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := revokeAccountSessions(ctx, s.revocations, student.AccountID, time.Now()); err != nil {
		return err
	}
	if err := s.studentRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.accountRepo.Delete(ctx, student.AccountID); err != nil && !apperrors.IsNotFound(err) {
		s.logger.Error().Err(err).Int64("accountID", student.AccountID).Msg("Student deleted but account removal failed")
		return err
	}

	s.logger.Info().Int64("studentID", id).Str("academicID", student.AcademicID).Msg("Student deleted")
	return nil
}

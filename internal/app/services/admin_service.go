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

// AdminService defines the interface for admin profile operations
type AdminService interface {
	ListAdmins(ctx context.Context, page helpers.PageRequest) ([]*models.Admin, int64, error)
	GetAdmin(ctx context.Context, id int64) (*models.Admin, error)
	CreateAdmin(ctx context.Context, req dto.CreateAdminRequest, approvedBy *int64) (*models.Admin, error)
	DeleteAdmin(ctx context.Context, actor *auth.Claims, id int64) error
}

// adminServiceImpl implements the AdminService interface
type adminServiceImpl struct {
	accountRepo repositories.IAccountRepository
	adminRepo   repositories.IAdminRepository
	sequences   *sequence.Generator
	revocations auth.RevocationStore
	logger      zerolog.Logger
}

// NewAdminService creates a new admin service instance
func NewAdminService(
	accountRepo repositories.IAccountRepository,
	adminRepo repositories.IAdminRepository,
	sequences *sequence.Generator,
	revocations auth.RevocationStore,
	logger zerolog.Logger,
) AdminService {
	return &adminServiceImpl{
		accountRepo: accountRepo,
		adminRepo:   adminRepo,
		sequences:   sequences,
		revocations: orNoopRevocations(revocations),
		logger:      logger,
	}
}

// createStaffAccount creates an approved account for a staff role
func createStaffAccount(ctx context.Context, accountRepo repositories.IAccountRepository, sequences *sequence.Generator,
	email, password string, role models.Role, approvedBy *int64) (*models.Account, error) {
	exists, err := accountRepo.UsernameExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	account, err := newAccount(ctx, sequences, email, password, role, models.AccountApproved, approvedBy)
	if err != nil {
		return nil, err
	}
	if err := accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// ListAdmins returns a page of admins
func (s *adminServiceImpl) ListAdmins(ctx context.Context, page helpers.PageRequest) ([]*models.Admin, int64, error) {
	admins, total, err := s.adminRepo.List(ctx, toListOptions(page))
	if err != nil {
		return nil, 0, fmt.Errorf("error listing admins: %w", err)
	}
	return admins, total, nil
}

// GetAdmin retrieves an admin with its account populated
func (s *adminServiceImpl) GetAdmin(ctx context.Context, id int64) (*models.Admin, error) {
	admin, err := s.adminRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account, err := s.accountRepo.GetByID(ctx, admin.AccountID); err == nil {
		admin.Account = account
	} else if !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("error loading admin account: %w", err)
	}
	return admin, nil
}

// CreateAdmin creates an approved admin account and its profile
func (s *adminServiceImpl) CreateAdmin(ctx context.Context, req dto.CreateAdminRequest, approvedBy *int64) (*models.Admin, error) {
	email := normalizeEmail(req.Email)
	if email == "" || strings.TrimSpace(req.Name) == "" {
		return nil, apperrors.NewValidationError("email and name are required")
	}

	account, err := createStaffAccount(ctx, s.accountRepo, s.sequences, email, req.Password, models.RoleAdmin, approvedBy)
	if err != nil {
		return nil, err
	}

	admin := &models.Admin{
		AccountID: account.ID,
		Name:      strings.TrimSpace(req.Name),
		Email:     email,
		Phone:     strings.TrimSpace(req.Phone),
		Position:  strings.TrimSpace(req.Position),
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		s.logger.Error().Err(err).Int64("accountID", account.ID).Msg("Account created without admin profile")
		return nil, err
	}

	admin.Account = account
	s.logger.Info().Int64("adminID", admin.ID).Str("email", admin.Email).Msg("Admin created")
	return admin, nil
}

// DeleteAdmin removes an admin profile and its account. Admins cannot delete themselves.
func (s *adminServiceImpl) DeleteAdmin(ctx context.Context, actor *auth.Claims, id int64) error {
	admin, err := s.adminRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if actor != nil && admin.AccountID == actor.AccountID {
		return apperrors.NewForbiddenError("You cannot delete your own admin account")
	}

	if err := revokeAccountSessions(ctx, s.revocations, admin.AccountID, time.Now()); err != nil {
		return err
	}
	if err := s.adminRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.accountRepo.Delete(ctx, admin.AccountID); err != nil && !apperrors.IsNotFound(err) {
		s.logger.Error().Err(err).Int64("accountID", admin.AccountID).Msg("Admin deleted but account removal failed")
		return err
	}

	s.logger.Info().Int64("adminID", id).Msg("Admin deleted")
	return nil
}

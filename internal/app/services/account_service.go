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
)

// AccountService defines the interface for account administration
type AccountService interface {
	ListAccounts(ctx context.Context, page helpers.PageRequest) ([]*models.Account, int64, error)
	UpdateStatus(ctx context.Context, actor *auth.Claims, id int64, req dto.UpdateAccountStatusRequest) (*models.Account, error)
}

// accountServiceImpl implements the AccountService interface
type accountServiceImpl struct {
	accountRepo repositories.IAccountRepository
	revocations auth.RevocationStore
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAccountService creates a new account service instance
func NewAccountService(accountRepo repositories.IAccountRepository, revocations auth.RevocationStore, logger zerolog.Logger) AccountService {
	return &accountServiceImpl{
		accountRepo: accountRepo,
		revocations: orNoopRevocations(revocations),
		logger:      logger,
		now:         time.Now,
	}
}

// ListAccounts returns a page of accounts
func (s *accountServiceImpl) ListAccounts(ctx context.Context, page helpers.PageRequest) ([]*models.Account, int64, error) {
	accounts, total, err := s.accountRepo.List(ctx, toListOptions(page))
	if err != nil {
		return nil, 0, fmt.Errorf("error listing accounts: %w", err)
	}
	return accounts, total, nil
}

// UpdateStatus moves an account along its lifecycle and stamps the actor and time
func (s *accountServiceImpl) UpdateStatus(ctx context.Context, actor *auth.Claims, id int64, req dto.UpdateAccountStatusRequest) (*models.Account, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthorized
	}
	if !req.Status.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown account status %q", req.Status))
	}

	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if account.ID == actor.AccountID {
		return nil, apperrors.NewForbiddenError("You cannot change the status of your own account")
	}

	if !account.Status.CanTransitionTo(req.Status) {
		return nil, &apperrors.CustomError{
			Err:     apperrors.ErrInvalidTransition,
			Message: fmt.Sprintf("Cannot change account status from %s to %s", account.Status, req.Status),
		}
	}

	now := s.now()
	previous := account.Status
	account.Status = req.Status
	switch req.Status {
	case models.AccountApproved:
		approver := actor.AccountID
		account.ApprovedBy = &approver
		account.ApprovedAt = &now
		account.SuspensionReason = nil
		account.SuspendedAt = nil
	case models.AccountSuspended:
		account.SuspendedAt = &now
		account.SuspensionReason = nil
		if req.SuspensionReason != nil {
			if reason := strings.TrimSpace(*req.SuspensionReason); reason != "" {
				account.SuspensionReason = &reason
			}
		}
	}

	if account.Status != models.AccountApproved {
		if err := revokeAccountSessions(ctx, s.revocations, account.ID, now); err != nil {
			return nil, err
		}
	}
	if err := s.accountRepo.UpdateStatus(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("accountID", account.ID).
		Int64("actorID", actor.AccountID).
		Str("from", string(previous)).
		Str("to", string(account.Status)).
		Msg("Account status changed")
	return account, nil
}

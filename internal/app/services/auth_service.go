package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/unisupport/internal/app/models"
	"github.com/yigit/unisupport/internal/app/models/dto"
	"github.com/yigit/unisupport/internal/app/repositories"
	"github.com/yigit/unisupport/internal/pkg/apperrors"
	"github.com/yigit/unisupport/internal/pkg/auth"
)

// LoginResult carries the issued session token and the account it belongs to
type LoginResult struct {
	Token   *auth.IssuedToken
	Account *models.Account
}

// AuthService handles authentication operations
type AuthService struct {
	accountRepo    repositories.IAccountRepository
	studentRepo    repositories.IStudentRepository
	studentService StudentService
	jwtService     *auth.JWTService
	revocations    auth.RevocationStore
	logger         zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	accountRepo repositories.IAccountRepository,
	studentRepo repositories.IStudentRepository,
	studentService StudentService,
	jwtService *auth.JWTService,
	revocations auth.RevocationStore,
	logger zerolog.Logger,
) *AuthService {
	if revocations == nil {
		revocations = auth.NoopRevocationStore{}
	}
	return &AuthService{
		accountRepo:    accountRepo,
		studentRepo:    studentRepo,
		studentService: studentService,
		jwtService:     jwtService,
		revocations:    revocations,
		logger:         logger,
	}
}

// Login checks credentials and issues a session token. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*LoginResult, error) {
	email := normalizeEmail(req.Email)

	account, err := s.accountRepo.GetByUsername(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error loading account: %w", err)
	}

	if !auth.CheckPassword(account.PasswordHash, req.Password) {
		s.logger.Info().Str("email", email).Msg("Login failed: wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}

	if !account.IsActive() {
		s.logger.Info().Str("email", email).Str("status", string(account.Status)).Msg("Login refused: account not active")
		return nil, apperrors.ErrAccountNotApproved
	}

	identity := auth.Identity{
		AccountID: account.ID,
		Role:      account.Role,
		UserName:  account.Username,
	}
	if account.Role == models.RoleStudent {
		student, err := s.studentRepo.GetByAccountID(ctx, account.ID)
		if err != nil {
			return nil, fmt.Errorf("student account %d has no profile: %w", account.ID, err)
		}
		identity.StudentID = &student.ID
	}

	token, err := s.jwtService.Issue(identity)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("accountID", account.ID).Str("role", account.Role.String()).Msg("User logged in")
	return &LoginResult{Token: token, Account: account}, nil
}

// Register enrolls a student whose account awaits admin approval
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*models.Student, error) {
	return s.studentService.Enroll(ctx, EnrollInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Gender:   req.Gender,
		Address:  req.Address,
		Phone:    req.Phone,
		Major:    req.Major,
	}, nil)
}

// Logout revokes the session token until it would have expired anyway
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}

	until := time.Now().Add(auth.TokenTTL)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	if err := s.revocations.Revoke(ctx, claims.ID, until); err != nil {
		return fmt.Errorf("error revoking session: %w", err)
	}

	s.logger.Info().Int64("accountID", claims.AccountID).Msg("User logged out")
	return nil
}

// CurrentUser describes the identity carried by verified claims
func (s *AuthService) CurrentUser(claims *auth.Claims) dto.UserInfoResponse {
	return dto.UserInfoResponse{
		UserID:      claims.AccountID,
		StudentID:   claims.StudentID,
		AccountType: claims.Role,
		UserName:    claims.UserName,
	}
}

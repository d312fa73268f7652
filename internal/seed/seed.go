package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/unisupport/internal/app/models/dto"
	appRepos "github.com/yigit/unisupport/internal/app/repositories"
	"github.com/yigit/unisupport/internal/app/services"
	"github.com/yigit/unisupport/internal/pkg/apperrors"
)

// DefaultAdmin describes the administrator created on first start
type DefaultAdmin struct {
	Email    string
	Password string
	Name     string
}

// CreateDefaultAdmin creates the bootstrap administrator if its email is not
// registered yet. It reports whether a new account was created. An empty email
// or password disables seeding.
func CreateDefaultAdmin(
	ctx context.Context,
	accountRepo appRepos.IAccountRepository,
	adminService services.AdminService,
	admin DefaultAdmin,
	lgr zerolog.Logger,
) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(admin.Email))
	if email == "" || admin.Password == "" {
		lgr.Info().Msg("No default admin configured, skipping seed")
		return false, nil
	}

	exists, err := accountRepo.UsernameExists(ctx, email)
	if err != nil {
		return false, fmt.Errorf("check default admin: %w", err)
	}
	if exists {
		lgr.Debug().Str("email", email).Msg("Default admin already exists")
		return false, nil
	}

	created, err := adminService.CreateAdmin(ctx, dto.CreateAdminRequest{
		Email:    email,
		Password: admin.Password,
		Name:     admin.Name,
	}, nil)
	if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create default admin: %w", err)
	}

	lgr.Info().Int64("adminId", created.ID).Str("email", created.Email).Msg("Default admin created")
	return true, nil
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/unisupport/internal/app/models"
	"github.com/yigit/unisupport/internal/pkg/apperrors"
	"github.com/yigit/unisupport/internal/pkg/helpers"
	"github.com/yigit/unisupport/internal/pkg/logger"
)

var accountColumns = []string{
	"id", "account_number", "username", "password_hash", "role", "status",
	"approved_by", "approved_at", "suspension_reason", "suspended_at", "created_at", "updated_at",
}

// AccountRepository handles account database operations
type AccountRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{
		db: db,
		sb: newStatementBuilder(),
	}
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	a := &models.Account{}
	err := row.Scan(
		&a.ID, &a.AccountNumber, &a.Username, &a.PasswordHash, &a.Role, &a.Status,
		&a.ApprovedBy, &a.ApprovedAt, &a.SuspensionReason, &a.SuspendedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

// Create inserts a new account and fills in its generated fields
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	sql, args, err := r.sb.Insert("accounts").
		Columns("account_number", "username", "password_hash", "role", "status", "approved_by", "approved_at").
		Values(account.AccountNumber, account.Username, account.PasswordHash, account.Role, account.Status,
			account.ApprovedBy, account.ApprovedAt).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create account query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if duplicateConstraint(err) == "accounts_username_key" {
			return apperrors.ErrEmailAlreadyExists
		}
		if isDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", apperrors.ErrConflict, err)
		}
		logger.Error().Err(err).Str("username", account.Username).Msg("Error executing create account query")
		return fmt.Errorf("error creating account: %w", err)
	}
	return nil
}

func (r *AccountRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Account, error) {
	sql, args, err := r.sb.Select(accountColumns...).From("accounts").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get account query: %w", err)
	}

	account, err := scanAccount(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, fmt.Errorf("error getting account: %w", err)
	}
	return account, nil
}

// GetByID retrieves an account by its internal id
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByUsername retrieves an account by login name
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"username": username})
}

// UsernameExists checks whether the login name is taken
func (r *AccountRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	sql, args, err := r.sb.Select("1").From("accounts").Where(squirrel.Eq{"username": username}).Prefix("SELECT EXISTS(").Suffix(")").ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build username exists query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking username: %w", err)
	}
	return exists, nil
}

// UpdateStatus persists status and approval/suspension metadata
func (r *AccountRepository) UpdateStatus(ctx context.Context, account *models.Account) error {
	account.UpdatedAt = time.Now()
	sql, args, err := r.sb.Update("accounts").
		SetMap(map[string]interface{}{
			"status":            account.Status,
			"approved_by":       account.ApprovedBy,
			"approved_at":       account.ApprovedAt,
			"suspension_reason": account.SuspensionReason,
			"suspended_at":      account.SuspendedAt,
			"updated_at":        account.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": account.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update account status query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("accountID", account.ID).Msg("Error updating account status")
		return fmt.Errorf("error updating account status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}

// UpdateUsername changes the login name of an account
func (r *AccountRepository) UpdateUsername(ctx context.Context, id int64, username string) error {
	sql, args, err := r.sb.Update("accounts").
		Set("username", username).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update username query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return apperrors.ErrEmailAlreadyExists
		}
		return fmt.Errorf("error updating username: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}

// Delete removes an account
func (r *AccountRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("accounts").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete account query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}

// List returns a page of accounts ordered by account number
func (r *AccountRepository) List(ctx context.Context, opts ListOptions) ([]*models.Account, int64, error) {
	var where squirrel.And
	if cond := helpers.SearchCondition(opts.Search, "username"); cond != nil {
		where = append(where, cond)
	}

	total, err := countQuery(ctx, r.db, r.sb.Select("COUNT(*)").From("accounts").Where(where))
	if err != nil {
		return nil, 0, fmt.Errorf("error counting accounts: %w", err)
	}

	sql, args, err := r.sb.Select(accountColumns...).
		From("accounts").
		Where(where).
		OrderBy("account_number ASC").
		Offset(opts.Offset).
		Limit(uint64(opts.Limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list accounts query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list accounts query")
		return nil, 0, fmt.Errorf("error querying accounts: %w", err)
	}
	defer rows.Close()

	accounts := []*models.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning account row: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating account rows: %w", err)
	}

	return accounts, total, nil
}

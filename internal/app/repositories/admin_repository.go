package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/unisupport/internal/app/models"
	"github.com/yigit/unisupport/internal/pkg/apperrors"
	"github.com/yigit/unisupport/internal/pkg/helpers"
	"github.com/yigit/unisupport/internal/pkg/logger"
)

var adminColumns = []string{"id", "account_id", "name", "email", "phone", "position", "created_at", "updated_at"}

// AdminRepository handles admin profile database operations
type AdminRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAdminRepository creates a new AdminRepository
func NewAdminRepository(db *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{
		db: db,
		sb: newStatementBuilder(),
	}
}

func scanAdmin(row pgx.Row) (*models.Admin, error) {
	a := &models.Admin{}
	err := row.Scan(&a.ID, &a.AccountID, &a.Name, &a.Email, &a.Phone, &a.Position, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// Create inserts a new admin profile
func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	sql, args, err := r.sb.Insert("admins").
		Columns("account_id", "name", "email", "phone", "position").
		Values(admin.AccountID, admin.Name, admin.Email, admin.Phone, admin.Position).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create admin query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&admin.ID, &admin.CreatedAt, &admin.UpdatedAt)
	if err != nil {
		if duplicateConstraint(err) == "admins_email_key" {
			return apperrors.ErrEmailAlreadyExists
		}
		if isDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", apperrors.ErrConflict, err)
		}
		logger.Error().Err(err).Str("email", admin.Email).Msg("Error executing create admin query")
		return fmt.Errorf("error creating admin: %w", err)
	}
	return nil
}

func (r *AdminRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Admin, error) {
	sql, args, err := r.sb.Select(adminColumns...).From("admins").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get admin query: %w", err)
	}

	admin, err := scanAdmin(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAdminNotFound
		}
		return nil, fmt.Errorf("error getting admin: %w", err)
	}
	return admin, nil
}

// GetByID retrieves an admin by internal id
func (r *AdminRepository) GetByID(ctx context.Context, id int64) (*models.Admin, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByAccountID retrieves the admin profile of an account
func (r *AdminRepository) GetByAccountID(ctx context.Context, accountID int64) (*models.Admin, error) {
	return r.getOne(ctx, squirrel.Eq{"account_id": accountID})
}

// GetByIDs loads several admins at once for populating references
func (r *AdminRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*models.Admin, error) {
	result := make(map[int64]*models.Admin, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	sql, args, err := r.sb.Select(adminColumns...).From("admins").Where(squirrel.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get admins query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying admins: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		admin, err := scanAdmin(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning admin row: %w", err)
		}
		result[admin.ID] = admin
	}
	return result, rows.Err()
}

// Delete removes an admin profile
func (r *AdminRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("admins").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete admin query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting admin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAdminNotFound
	}
	return nil
}

// List returns a page of admins ordered by name
func (r *AdminRepository) List(ctx context.Context, opts ListOptions) ([]*models.Admin, int64, error) {
	var where squirrel.And
	if cond := helpers.SearchCondition(opts.Search, "name", "email"); cond != nil {
		where = append(where, cond)
	}

	total, err := countQuery(ctx, r.db, r.sb.Select("COUNT(*)").From("admins").Where(where))
	if err != nil {
		return nil, 0, fmt.Errorf("error counting admins: %w", err)
	}

	sql, args, err := r.sb.Select(adminColumns...).
		From("admins").
		Where(where).
		OrderBy("name ASC", "id ASC").
		Offset(opts.Offset).
		Limit(uint64(opts.Limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list admins query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list admins query")
		return nil, 0, fmt.Errorf("error querying admins: %w", err)
	}
	defer rows.Close()

	admins := []*models.Admin{}
	for rows.Next() {
		admin, err := scanAdmin(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning admin row: %w", err)
		}
		admins = append(admins, admin)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating admin rows: %w", err)
	}

	return admins, total, nil
}

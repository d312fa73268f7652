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

var facultyColumns = []string{"id", "account_id", "name", "email", "department", "title", "created_at", "updated_at"}

// FacultyRepository handles faculty database operations
type FacultyRepository struct {
	db *pgxpool.Pool
	// Use squirrel instance with placeholder format
	sb squirrel.StatementBuilderType
}

// NewFacultyRepository creates a new FacultyRepository
func NewFacultyRepository(db *pgxpool.Pool) *FacultyRepository {
	return &FacultyRepository{
		db: db,
		sb: newStatementBuilder(),
	}
}

func scanFaculty(row pgx.Row) (*models.Faculty, error) {
	f := &models.Faculty{}
	err := row.Scan(&f.ID, &f.AccountID, &f.Name, &f.Email, &f.Department, &f.Title, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

// Create creates a new faculty member
func (r *FacultyRepository) Create(ctx context.Context, faculty *models.Faculty) error {
	sql, args, err := r.sb.Insert("faculty").
		Columns("account_id", "name", "email", "department", "title").
		Values(faculty.AccountID, faculty.Name, faculty.Email, faculty.Department, faculty.Title).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building create faculty SQL")
		return fmt.Errorf("failed to build create faculty query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&faculty.ID, &faculty.CreatedAt, &faculty.UpdatedAt)
	if err != nil {
		if duplicateConstraint(err) == "faculty_email_key" {
			return apperrors.ErrEmailAlreadyExists
		}
		if isDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", apperrors.ErrConflict, err)
		}
		logger.Error().Err(err).Msg("Error executing create faculty query")
		return fmt.Errorf("error creating faculty: %w", err)
	}

	return nil
}

func (r *FacultyRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Faculty, error) {
	sql, args, err := r.sb.Select(facultyColumns...).From("faculty").Where(where).Limit(1).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get faculty SQL")
		return nil, fmt.Errorf("failed to build get faculty query: %w", err)
	}

	faculty, err := scanFaculty(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrFacultyNotFound
		}
		return nil, fmt.Errorf("error getting faculty: %w", err)
	}

	return faculty, nil
}

// GetByID retrieves a faculty member by ID
func (r *FacultyRepository) GetByID(ctx context.Context, id int64) (*models.Faculty, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByAccountID retrieves the faculty profile of an account
func (r *FacultyRepository) GetByAccountID(ctx context.Context, accountID int64) (*models.Faculty, error) {
	return r.getOne(ctx, squirrel.Eq{"account_id": accountID})
}

// Delete deletes a faculty member
func (r *FacultyRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("faculty").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete faculty query: %w", err)
	}

	commandTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("facultyID", id).Msg("Error executing delete faculty query")
		return fmt.Errorf("error deleting faculty: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return apperrors.ErrFacultyNotFound
	}

	return nil
}

// List retrieves a page of faculty ordered by name
func (r *FacultyRepository) List(ctx context.Context, opts ListOptions) ([]*models.Faculty, int64, error) {
	var where squirrel.And
	if cond := helpers.SearchCondition(opts.Search, "name", "email", "department"); cond != nil {
		where = append(where, cond)
	}

	total, err := countQuery(ctx, r.db, r.sb.Select("COUNT(*)").From("faculty").Where(where))
	if err != nil {
		return nil, 0, fmt.Errorf("error counting faculty: %w", err)
	}

	sql, args, err := r.sb.Select(facultyColumns...).
		From("faculty").
		Where(where).
		OrderBy("name ASC", "id ASC").
		Offset(opts.Offset).
		Limit(uint64(opts.Limit)).
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building list faculty SQL")
		return nil, 0, fmt.Errorf("failed to build list faculty query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list faculty query")
		return nil, 0, fmt.Errorf("error querying faculty: %w", err)
	}
	defer rows.Close()

	members := []*models.Faculty{}
	for rows.Next() {
		faculty, err := scanFaculty(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning faculty row during list")
			return nil, 0, fmt.Errorf("error scanning faculty row: %w", err)
		}
		members = append(members, faculty)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating faculty rows")
		return nil, 0, fmt.Errorf("error iterating faculty rows: %w", err)
	}

	return members, total, nil
}

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

var issueColumns = []string{
	"id", "issue_id", "details", "type", "status", "student_id", "chat_id", "message_id",
	"assigned_admin_id", "assigned_at", "admin_notes", "resolved_at", "created_at", "updated_at",
}

// IssueRepository handles support ticket database operations
type IssueRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewIssueRepository creates a new IssueRepository
func NewIssueRepository(db *pgxpool.Pool) *IssueRepository {
	return &IssueRepository{db: db, sb: newStatementBuilder()}
}

func scanIssue(row pgx.Row) (*models.Issue, error) {
	i := &models.Issue{}
	err := row.Scan(
		&i.ID, &i.IssueID, &i.Details, &i.Type, &i.Status, &i.StudentID, &i.ChatID, &i.MessageID,
		&i.AssignedAdminID, &i.AssignedAt, &i.AdminNotes, &i.ResolvedAt, &i.CreatedAt, &i.UpdatedAt,
	)
	return i, err
}

// Create inserts a new issue
func (r *IssueRepository) Create(ctx context.Context, issue *models.Issue) error {
	sql, args, err := r.sb.Insert("issues").
		Columns("issue_id", "details", "type", "status", "student_id", "chat_id", "message_id").
		Values(issue.IssueID, issue.Details, issue.Type, issue.Status, issue.StudentID, issue.ChatID, issue.MessageID).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create issue query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&issue.ID, &issue.CreatedAt, &issue.UpdatedAt); err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("%w: issue_id %d", apperrors.ErrConflict, issue.IssueID)
		}
		logger.Error().Err(err).Int64("studentID", issue.StudentID).Msg("Error creating issue")
		return fmt.Errorf("error creating issue: %w", err)
	}
	return nil
}

// GetByID retrieves an issue by internal id
func (r *IssueRepository) GetByID(ctx context.Context, id int64) (*models.Issue, error) {
	sql, args, err := r.sb.Select(issueColumns...).From("issues").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get issue query: %w", err)
	}

	issue, err := scanIssue(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrIssueNotFound
		}
		return nil, fmt.Errorf("error getting issue: %w", err)
	}
	return issue, nil
}

// List returns a page of issues, newest issue id first
func (r *IssueRepository) List(ctx context.Context, filter IssueFilter, opts ListOptions) ([]*models.Issue, int64, error) {
	where := squirrel.And{}
	if filter.StudentID != nil {
		where = append(where, squirrel.Eq{"student_id": *filter.StudentID})
	}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"status": *filter.Status})
	}
	if cond := helpers.SearchCondition(opts.Search, "details", "type"); cond != nil {
		where = append(where, cond)
	}

	total, err := countQuery(ctx, r.db, r.sb.Select("COUNT(*)").From("issues").Where(where))
	if err != nil {
		return nil, 0, fmt.Errorf("error counting issues: %w", err)
	}

	sql, args, err := r.sb.Select(issueColumns...).
		From("issues").
		Where(where).
		OrderBy("issue_id DESC").
		Offset(opts.Offset).
		Limit(uint64(opts.Limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list issues query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list issues query")
		return nil, 0, fmt.Errorf("error querying issues: %w", err)
	}
	defer rows.Close()

	issues := []*models.Issue{}
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning issue row: %w", err)
		}
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating issue rows: %w", err)
	}
	return issues, total, nil
}

// Update writes the mutable issue fields, including assignment and resolution stamps
func (r *IssueRepository) Update(ctx context.Context, issue *models.Issue) error {
	issue.UpdatedAt = time.Now()
	sql, args, err := r.sb.Update("issues").
		SetMap(map[string]interface{}{
			"details":           issue.Details,
			"type":              issue.Type,
			"status":            issue.Status,
			"assigned_admin_id": issue.AssignedAdminID,
			"assigned_at":       issue.AssignedAt,
			"admin_notes":       issue.AdminNotes,
			"resolved_at":       issue.ResolvedAt,
			"updated_at":        issue.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": issue.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update issue query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("issueID", issue.IssueID).Msg("Error updating issue")
		return fmt.Errorf("error updating issue: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrIssueNotFound
	}
	return nil
}

// Delete removes an issue
func (r *IssueRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("issues").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete issue query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting issue: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrIssueNotFound
	}
	return nil
}

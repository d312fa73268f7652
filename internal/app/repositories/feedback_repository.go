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
)

var feedbackColumns = []string{"id", "rating", "comment", "student_id", "chat_id", "message_id", "created_at"}

// FeedbackRepository handles feedback database operations. Rows are never updated.
type FeedbackRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewFeedbackRepository creates a new FeedbackRepository
func NewFeedbackRepository(db *pgxpool.Pool) *FeedbackRepository {
	return &FeedbackRepository{db: db, sb: newStatementBuilder()}
}

func scanFeedback(row pgx.Row) (*models.Feedback, error) {
	f := &models.Feedback{}
	err := row.Scan(&f.ID, &f.Rating, &f.Comment, &f.StudentID, &f.ChatID, &f.MessageID, &f.CreatedAt)
	return f, err
}

// Create inserts a feedback entry
func (r *FeedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	sql, args, err := r.sb.Insert("feedback").
		Columns("rating", "comment", "student_id", "chat_id", "message_id").
		Values(feedback.Rating, feedback.Comment, feedback.StudentID, feedback.ChatID, feedback.MessageID).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create feedback query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&feedback.ID, &feedback.CreatedAt); err != nil {
		return fmt.Errorf("error creating feedback: %w", err)
	}
	return nil
}

// GetByID retrieves a feedback entry
func (r *FeedbackRepository) GetByID(ctx context.Context, id int64) (*models.Feedback, error) {
	sql, args, err := r.sb.Select(feedbackColumns...).From("feedback").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get feedback query: %w", err)
	}

	feedback, err := scanFeedback(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrFeedbackNotFound
		}
		return nil, fmt.Errorf("error getting feedback: %w", err)
	}
	return feedback, nil
}

// List returns a page of feedback, newest first
func (r *FeedbackRepository) List(ctx context.Context, opts ListOptions) ([]*models.Feedback, int64, error) {
	var where squirrel.And
	if cond := helpers.SearchCondition(opts.Search, "comment"); cond != nil {
		where = append(where, cond)
	}

	total, err := countQuery(ctx, r.db, r.sb.Select("COUNT(*)").From("feedback").Where(where))
	if err != nil {
		return nil, 0, fmt.Errorf("error counting feedback: %w", err)
	}

	sql, args, err := r.sb.Select(feedbackColumns...).
		From("feedback").
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		Offset(opts.Offset).
		Limit(uint64(opts.Limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list feedback query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error querying feedback: %w", err)
	}
	defer rows.Close()

	items := []*models.Feedback{}
	for rows.Next() {
		feedback, err := scanFeedback(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning feedback row: %w", err)
		}
		items = append(items, feedback)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating feedback rows: %w", err)
	}
	return items, total, nil
}

// Stats aggregates ratings submitted within [from, to]; nil bounds are open
func (r *FeedbackRepository) Stats(ctx context.Context, from, to *time.Time) (*models.FeedbackStats, error) {
	where := squirrel.And{}
	if from != nil {
		where = append(where, squirrel.GtOrEq{"created_at": *from})
	}
	if to != nil {
		where = append(where, squirrel.LtOrEq{"created_at": *to})
	}

	sql, args, err := r.sb.Select("rating", "COUNT(*)").
		From("feedback").
		Where(where).
		GroupBy("rating").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build feedback stats query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying feedback stats: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int64, models.MaxRating)
	for rows.Next() {
		var rating int
		var n int64
		if err := rows.Scan(&rating, &n); err != nil {
			return nil, fmt.Errorf("error scanning feedback stats row: %w", err)
		}
		counts[rating] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feedback stats rows: %w", err)
	}

	return models.NewFeedbackStats(counts), nil
}

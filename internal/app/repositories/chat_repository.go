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

var chatColumns = []string{"id", "student_id", "title", "message_ids", "favorite", "saved", "status", "created_at", "updated_at"}

// ChatRepository handles database operations for conversations
type ChatRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{db: db, sb: newStatementBuilder()}
}

func scanChat(row pgx.Row) (*models.Chat, error) {
	c := &models.Chat{}
	err := row.Scan(&c.ID, &c.StudentID, &c.Title, &c.MessageIDs, &c.Favorite, &c.Saved, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if c.MessageIDs == nil {
		c.MessageIDs = []int64{}
	}
	return c, err
}

// Create inserts a new chat
func (r *ChatRepository) Create(ctx context.Context, chat *models.Chat) error {
	if chat.MessageIDs == nil {
		chat.MessageIDs = []int64{}
	}
	sql, args, err := r.sb.Insert("chats").
		Columns("student_id", "title", "message_ids", "favorite", "saved", "status").
		Values(chat.StudentID, chat.Title, chat.MessageIDs, chat.Favorite, chat.Saved, chat.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create chat query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&chat.ID, &chat.CreatedAt, &chat.UpdatedAt); err != nil {
		logger.Error().Err(err).Int64("studentID", chat.StudentID).Msg("Error creating chat")
		return fmt.Errorf("error creating chat: %w", err)
	}
	return nil
}

// GetByID retrieves a chat without its messages
func (r *ChatRepository) GetByID(ctx context.Context, id int64) (*models.Chat, error) {
	sql, args, err := r.sb.Select(chatColumns...).From("chats").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get chat query: %w", err)
	}

	chat, err := scanChat(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrChatNotFound
		}
		return nil, fmt.Errorf("error retrieving chat: %w", err)
	}
	return chat, nil
}

// ListByStudent returns a page of a student's chats, newest first
func (r *ChatRepository) ListByStudent(ctx context.Context, studentID int64, opts ListOptions) ([]*models.Chat, int64, error) {
	where := squirrel.And{squirrel.Eq{"student_id": studentID}}
	if cond := helpers.SearchCondition(opts.Search, "title"); cond != nil {
		where = append(where, cond)
	}

	total, err := countQuery(ctx, r.db, r.sb.Select("COUNT(*)").From("chats").Where(where))
	if err != nil {
		return nil, 0, fmt.Errorf("error counting chats: %w", err)
	}

	sql, args, err := r.sb.Select(chatColumns...).
		From("chats").
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		Offset(opts.Offset).
		Limit(uint64(opts.Limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list chats query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error querying chats: %w", err)
	}
	defer rows.Close()

	chats := []*models.Chat{}
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning chat row: %w", err)
		}
		chats = append(chats, chat)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating chat rows: %w", err)
	}
	return chats, total, nil
}

// Update writes the chat title and flags
func (r *ChatRepository) Update(ctx context.Context, chat *models.Chat) error {
	chat.UpdatedAt = time.Now()
	sql, args, err := r.sb.Update("chats").
		SetMap(map[string]interface{}{
			"title":      chat.Title,
			"favorite":   chat.Favorite,
			"saved":      chat.Saved,
			"status":     chat.Status,
			"updated_at": chat.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": chat.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update chat query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating chat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrChatNotFound
	}
	return nil
}

// AppendMessage records a message id at the end of the chat's message list
func (r *ChatRepository) AppendMessage(ctx context.Context, chatID, messageID int64) error {
	sql, args, err := r.sb.Update("chats").
		Set("message_ids", squirrel.Expr("array_append(message_ids, ?::BIGINT)", messageID)).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": chatID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build append message query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("chatID", chatID).Int64("messageID", messageID).Msg("Error appending message to chat")
		return fmt.Errorf("error appending message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrChatNotFound
	}
	return nil
}

// Delete removes a chat
func (r *ChatRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("chats").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete chat query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting chat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrChatNotFound
	}
	return nil
}

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
)

// ChatMessageRepository handles database operations for chat messages
type ChatMessageRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewChatMessageRepository creates a new ChatMessageRepository
func NewChatMessageRepository(db *pgxpool.Pool) *ChatMessageRepository {
	return &ChatMessageRepository{db: db, sb: newStatementBuilder()}
}

// Create inserts a new chat message into the database
func (r *ChatMessageRepository) Create(ctx context.Context, message *models.ChatMessage) error {
	sql, args, err := r.sb.Insert("chat_messages").
		Columns("message_id", "chat_id", "sender", "message_text").
		Values(message.MessageID, message.ChatID, message.From, message.MessageText).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create message query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&message.ID, &message.CreatedAt); err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("%w: message_id %d", apperrors.ErrConflict, message.MessageID)
		}
		return fmt.Errorf("error creating chat message: %w", err)
	}
	return nil
}

// GetByMessageID retrieves a message by its sequential message id
func (r *ChatMessageRepository) GetByMessageID(ctx context.Context, messageID int64) (*models.ChatMessage, error) {
	sql, args, err := r.sb.Select("id", "message_id", "chat_id", "sender", "message_text", "created_at").
		From("chat_messages").
		Where(squirrel.Eq{"message_id": messageID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get message query: %w", err)
	}

	var m models.ChatMessage
	err = r.db.QueryRow(ctx, sql, args...).Scan(&m.ID, &m.MessageID, &m.ChatID, &m.From, &m.MessageText, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMessageNotFound
		}
		return nil, fmt.Errorf("error retrieving chat message: %w", err)
	}
	return &m, nil
}

// ListByChat retrieves all messages of a chat in message id order
func (r *ChatMessageRepository) ListByChat(ctx context.Context, chatID int64) ([]*models.ChatMessage, error) {
	sql, args, err := r.sb.Select("id", "message_id", "chat_id", "sender", "message_text", "created_at").
		From("chat_messages").
		Where(squirrel.Eq{"chat_id": chatID}).
		OrderBy("message_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list messages query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %w", err)
	}
	defer rows.Close()

	messages := []*models.ChatMessage{}
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.MessageID, &m.ChatID, &m.From, &m.MessageText, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning message row: %w", err)
		}
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}
	return messages, nil
}

// DeleteByChat removes every message of a chat and reports how many were deleted
func (r *ChatMessageRepository) DeleteByChat(ctx context.Context, chatID int64) (int64, error) {
	sql, args, err := r.sb.Delete("chat_messages").Where(squirrel.Eq{"chat_id": chatID}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete messages query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error deleting messages: %w", err)
	}
	return tag.RowsAffected(), nil
}

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

var instructionColumns = []string{
	"id", "instruction_id", "title", "content", "details", "admin_id", "source_material_id", "created_at", "updated_at",
}

// InstructionRepository handles chatbot instruction database operations.
// Rows still carrying the legacy details column are migrated on read.
type InstructionRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewInstructionRepository creates a new InstructionRepository
func NewInstructionRepository(db *pgxpool.Pool) *InstructionRepository {
	return &InstructionRepository{db: db, sb: newStatementBuilder()}
}

func scanInstruction(row pgx.Row) (*models.ChatbotInstruction, error) {
	i := &models.ChatbotInstruction{}
	err := row.Scan(&i.ID, &i.InstructionID, &i.Title, &i.Content, &i.LegacyDetails, &i.AdminID, &i.SourceMaterialID, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

// migrate applies the legacy migration and persists it when the row changed
func (r *InstructionRepository) migrate(ctx context.Context, instruction *models.ChatbotInstruction) {
	hadLegacy := instruction.LegacyDetails != nil
	instruction.MigrateLegacyDetails()
	if !hadLegacy {
		return
	}

	sql, args, err := r.sb.Update("chatbot_instructions").
		Set("content", instruction.Content).
		Set("details", nil).
		Where(squirrel.Eq{"id": instruction.ID}).
		ToSql()
	if err == nil {
		_, err = r.db.Exec(ctx, sql, args...)
	}
	if err != nil {
		logger.Warn().Err(err).Int64("instructionID", instruction.InstructionID).Msg("Failed to persist legacy details migration")
	}
}

// Create inserts a chatbot instruction
func (r *InstructionRepository) Create(ctx context.Context, instruction *models.ChatbotInstruction) error {
	sql, args, err := r.sb.Insert("chatbot_instructions").
		Columns("instruction_id", "title", "content", "admin_id", "source_material_id").
		Values(instruction.InstructionID, instruction.Title, instruction.Content, instruction.AdminID, instruction.SourceMaterialID).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create instruction query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&instruction.ID, &instruction.CreatedAt, &instruction.UpdatedAt); err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("%w: instruction_id %d", apperrors.ErrConflict, instruction.InstructionID)
		}
		return fmt.Errorf("error creating instruction: %w", err)
	}
	return nil
}

// GetByID retrieves an instruction by internal id
func (r *InstructionRepository) GetByID(ctx context.Context, id int64) (*models.ChatbotInstruction, error) {
	sql, args, err := r.sb.Select(instructionColumns...).From("chatbot_instructions").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get instruction query: %w", err)
	}

	instruction, err := scanInstruction(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrInstructionNotFound
		}
		return nil, fmt.Errorf("error getting instruction: %w", err)
	}
	r.migrate(ctx, instruction)
	return instruction, nil
}

// List returns a page of instructions ordered by instruction id
func (r *InstructionRepository) List(ctx context.Context, opts ListOptions) ([]*models.ChatbotInstruction, int64, error) {
	var where squirrel.And
	if cond := helpers.SearchCondition(opts.Search, "title", "content", "details"); cond != nil {
		where = append(where, cond)
	}

	total, err := countQuery(ctx, r.db, r.sb.Select("COUNT(*)").From("chatbot_instructions").Where(where))
	if err != nil {
		return nil, 0, fmt.Errorf("error counting instructions: %w", err)
	}

	sql, args, err := r.sb.Select(instructionColumns...).
		From("chatbot_instructions").
		Where(where).
		OrderBy("instruction_id ASC").
		Offset(opts.Offset).
		Limit(uint64(opts.Limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list instructions query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error querying instructions: %w", err)
	}

	items := []*models.ChatbotInstruction{}
	for rows.Next() {
		instruction, err := scanInstruction(rows)
		if err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("error scanning instruction row: %w", err)
		}
		items = append(items, instruction)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating instruction rows: %w", err)
	}

	for _, instruction := range items {
		r.migrate(ctx, instruction)
	}
	return items, total, nil
}

// Update writes title, content and source reference; the legacy column is cleared
func (r *InstructionRepository) Update(ctx context.Context, instruction *models.ChatbotInstruction) error {
	instruction.UpdatedAt = time.Now()
	sql, args, err := r.sb.Update("chatbot_instructions").
		SetMap(map[string]interface{}{
			"title":              instruction.Title,
			"content":            instruction.Content,
			"details":            nil,
			"source_material_id": instruction.SourceMaterialID,
			"updated_at":         instruction.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": instruction.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update instruction query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating instruction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrInstructionNotFound
	}
	return nil
}

// Delete removes an instruction
func (r *InstructionRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("chatbot_instructions").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete instruction query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting instruction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrInstructionNotFound
	}
	return nil
}

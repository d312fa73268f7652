package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// advanceSequenceSQL increments a named counter in one statement. Concurrent
// callers serialize on the row lock, so every caller receives a distinct value.
const advanceSequenceSQL = `
	INSERT INTO sequence_counters (name, value)
	VALUES ($1, $2)
	ON CONFLICT (name) DO UPDATE
	SET value = GREATEST(sequence_counters.value + 1, EXCLUDED.value)
	RETURNING value
`

// SequenceRepository backs the sequential id generator with the sequence_counters table
type SequenceRepository struct {
	db *pgxpool.Pool
}

// NewSequenceRepository creates a new SequenceRepository
func NewSequenceRepository(db *pgxpool.Pool) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// Next advances the named counter and returns the new value
func (r *SequenceRepository) Next(ctx context.Context, name string, floor int64) (int64, error) {
	var value int64
	if err := r.db.QueryRow(ctx, advanceSequenceSQL, name, floor).Scan(&value); err != nil {
		return 0, fmt.Errorf("error advancing sequence %s: %w", name, err)
	}
	return value, nil
}

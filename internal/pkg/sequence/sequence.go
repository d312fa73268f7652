// Package sequence hands out the human-facing sequential identifiers of each
// entity type. Values come from an atomic counter owned by the store, so two
// concurrent creations never share a value.
package sequence

import (
	"context"
	"fmt"

	"github.com/yigit/unisupport/internal/app/models"
)

// Floors are the first value handed out for each sequence
const (
	AccountFloor     int64 = 1000
	StudentFloor     int64 = 1
	IssueFloor       int64 = 1000
	MessageFloor     int64 = 1
	InstructionFloor int64 = 1
)

// Counter advances a named counter atomically and returns the new value.
// The first call for a name returns floor; later calls never return less than floor.
type Counter interface {
	Next(ctx context.Context, name string, floor int64) (int64, error)
}

// Generator produces sequential identifiers per entity type
type Generator struct {
	counter Counter
}

// NewGenerator creates a generator backed by counter
func NewGenerator(counter Counter) *Generator {
	return &Generator{counter: counter}
}

func (g *Generator) next(ctx context.Context, name string, floor int64) (int64, error) {
	value, err := g.counter.Next(ctx, name, floor)
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", name, err)
	}
	return value, nil
}

// NextAccountNumber returns the next account number (starting at 1000)
func (g *Generator) NextAccountNumber(ctx context.Context) (int64, error) {
	return g.next(ctx, models.SequenceAccount, AccountFloor)
}

// NextAcademicID returns the next rendered academic id, e.g. STU00001
func (g *Generator) NextAcademicID(ctx context.Context) (string, error) {
	value, err := g.next(ctx, models.SequenceStudent, StudentFloor)
	if err != nil {
		return "", err
	}
	return models.FormatAcademicID(value), nil
}

// NextIssueID returns the next issue id (starting at 1000)
func (g *Generator) NextIssueID(ctx context.Context) (int64, error) {
	return g.next(ctx, models.SequenceIssue, IssueFloor)
}

// NextMessageID returns the next message id. The sequence is global across chats.
func (g *Generator) NextMessageID(ctx context.Context) (int64, error) {
	return g.next(ctx, models.SequenceMessage, MessageFloor)
}

// NextInstructionID returns the next chatbot instruction id
func (g *Generator) NextInstructionID(ctx context.Context) (int64, error) {
	return g.next(ctx, models.SequenceInstruction, InstructionFloor)
}

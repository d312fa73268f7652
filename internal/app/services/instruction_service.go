package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/unisupport/internal/app/models"
	"github.com/yigit/unisupport/internal/app/models/dto"
	"github.com/yigit/unisupport/internal/app/repositories"
	"github.com/yigit/unisupport/internal/pkg/apperrors"
	"github.com/yigit/unisupport/internal/pkg/auth"
	"github.com/yigit/unisupport/internal/pkg/helpers"
	"github.com/yigit/unisupport/internal/pkg/sequence"
)

// InstructionService defines the interface for chatbot instruction operations
type InstructionService interface {
	ListInstructions(ctx context.Context, page helpers.PageRequest) ([]*models.ChatbotInstruction, int64, error)
	GetInstruction(ctx context.Context, id int64) (*models.ChatbotInstruction, error)
	CreateInstruction(ctx context.Context, actor *auth.Claims, req dto.CreateInstructionRequest) (*models.ChatbotInstruction, error)
	UpdateInstruction(ctx context.Context, id int64, req dto.UpdateInstructionRequest) (*models.ChatbotInstruction, error)
	DeleteInstruction(ctx context.Context, id int64) error
}

// instructionServiceImpl implements the InstructionService interface
type instructionServiceImpl struct {
	instructionRepo repositories.IInstructionRepository
	adminRepo       repositories.IAdminRepository
	sequences       *sequence.Generator
	logger          zerolog.Logger
}

// NewInstructionService creates a new instruction service instance
func NewInstructionService(
	instructionRepo repositories.IInstructionRepository,
	adminRepo repositories.IAdminRepository,
	sequences *sequence.Generator,
	logger zerolog.Logger,
) InstructionService {
	return &instructionServiceImpl{
		instructionRepo: instructionRepo,
		adminRepo:       adminRepo,
		sequences:       sequences,
		logger:          logger,
	}
}

// ListInstructions returns a page of instructions in instruction id order
func (s *instructionServiceImpl) ListInstructions(ctx context.Context, page helpers.PageRequest) ([]*models.ChatbotInstruction, int64, error) {
	items, total, err := s.instructionRepo.List(ctx, toListOptions(page))
	if err != nil {
		return nil, 0, fmt.Errorf("error listing chatbot instructions: %w", err)
	}
	return items, total, nil
}

// GetInstruction retrieves an instruction by ID
func (s *instructionServiceImpl) GetInstruction(ctx context.Context, id int64) (*models.ChatbotInstruction, error) {
	return s.instructionRepo.GetByID(ctx, id)
}

// CreateInstruction stores a new instruction authored by the acting admin
func (s *instructionServiceImpl) CreateInstruction(ctx context.Context, actor *auth.Claims, req dto.CreateInstructionRequest) (*models.ChatbotInstruction, error) {
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" || content == "" {
		return nil, apperrors.NewValidationError("title and content are required")
	}

	instruction := &models.ChatbotInstruction{
		Title:            title,
		Content:          content,
		SourceMaterialID: req.SourceMaterialID,
	}
	if actor != nil {
		admin, err := s.adminRepo.GetByAccountID(ctx, actor.AccountID)
		switch {
		case err == nil:
			instruction.AdminID = &admin.ID
		case apperrors.IsNotFound(err):
			s.logger.Warn().Int64("accountID", actor.AccountID).Msg("Instruction author has no admin profile")
		default:
			return nil, fmt.Errorf("error resolving instruction author: %w", err)
		}
	}

	instructionID, err := s.sequences.NextInstructionID(ctx)
	if err != nil {
		return nil, err
	}
	instruction.InstructionID = instructionID

	if err := s.instructionRepo.Create(ctx, instruction); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("instructionID", instruction.InstructionID).Msg("Chatbot instruction created")
	return instruction, nil
}

// UpdateInstruction applies a partial update
func (s *instructionServiceImpl) UpdateInstruction(ctx context.Context, id int64, req dto.UpdateInstructionRequest) (*models.ChatbotInstruction, error) {
	instruction, err := s.instructionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if instruction.Title = strings.TrimSpace(*req.Title); instruction.Title == "" {
			return nil, apperrors.NewValidationError("title cannot be empty")
		}
	}
	if req.Content != nil {
		if instruction.Content = strings.TrimSpace(*req.Content); instruction.Content == "" {
			return nil, apperrors.NewValidationError("content cannot be empty")
		}
	}
	if req.SourceMaterialID != nil {
		instruction.SourceMaterialID = req.SourceMaterialID
	}

	if err := s.instructionRepo.Update(ctx, instruction); err != nil {
		return nil, err
	}
	return instruction, nil
}

// DeleteInstruction removes an instruction
func (s *instructionServiceImpl) DeleteInstruction(ctx context.Context, id int64) error {
	return s.instructionRepo.Delete(ctx, id)
}

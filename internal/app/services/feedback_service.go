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
)

// FeedbackService defines the interface for feedback operations
type FeedbackService interface {
	CreateFeedback(ctx context.Context, actor *auth.Claims, req dto.CreateFeedbackRequest) (*models.Feedback, error)
	ListFeedback(ctx context.Context, page helpers.PageRequest) ([]*models.Feedback, int64, error)
	GetFeedback(ctx context.Context, id int64) (*models.Feedback, error)
	Stats(ctx context.Context, query dto.FeedbackStatsQuery) (*models.FeedbackStats, error)
}

// feedbackServiceImpl implements the FeedbackService interface
type feedbackServiceImpl struct {
	feedbackRepo repositories.IFeedbackRepository
	studentRepo  repositories.IStudentRepository
	chatRepo     repositories.IChatRepository
	messageRepo  repositories.IChatMessageRepository
	logger       zerolog.Logger
}

// NewFeedbackService creates a new feedback service instance
func NewFeedbackService(
	feedbackRepo repositories.IFeedbackRepository,
	studentRepo repositories.IStudentRepository,
	chatRepo repositories.IChatRepository,
	messageRepo repositories.IChatMessageRepository,
	logger zerolog.Logger,
) FeedbackService {
	return &feedbackServiceImpl{
		feedbackRepo: feedbackRepo,
		studentRepo:  studentRepo,
		chatRepo:     chatRepo,
		messageRepo:  messageRepo,
		logger:       logger,
	}
}

// CreateFeedback records a rating from the acting student
func (s *feedbackServiceImpl) CreateFeedback(ctx context.Context, actor *auth.Claims, req dto.CreateFeedbackRequest) (*models.Feedback, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthorized
	}
	if actor.Role != models.RoleStudent || actor.StudentID == nil {
		return nil, apperrors.NewForbiddenError("Only students can submit feedback")
	}
	if req.Rating < models.MinRating || req.Rating > models.MaxRating {
		return nil, apperrors.NewValidationError(fmt.Sprintf("rating must be between %d and %d", models.MinRating, models.MaxRating))
	}

	studentID := *actor.StudentID
	chatID, err := conversationRef(ctx, s.chatRepo, s.messageRepo, studentID, req.ChatID, req.MessageID)
	if err != nil {
		return nil, err
	}

	feedback := &models.Feedback{
		Rating:    req.Rating,
		StudentID: studentID,
		ChatID:    chatID,
		MessageID: req.MessageID,
	}
	if req.Comment != nil {
		if comment := strings.TrimSpace(*req.Comment); comment != "" {
			feedback.Comment = &comment
		}
	}
	if err := s.feedbackRepo.Create(ctx, feedback); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("feedbackID", feedback.ID).Int("rating", feedback.Rating).Msg("Feedback submitted")
	return feedback, nil
}

// ListFeedback returns a page of feedback with student summaries
func (s *feedbackServiceImpl) ListFeedback(ctx context.Context, page helpers.PageRequest) ([]*models.Feedback, int64, error) {
	items, total, err := s.feedbackRepo.List(ctx, toListOptions(page))
	if err != nil {
		return nil, 0, fmt.Errorf("error listing feedback: %w", err)
	}
	s.populate(ctx, items...)
	return items, total, nil
}

// GetFeedback retrieves one feedback entry
func (s *feedbackServiceImpl) GetFeedback(ctx context.Context, id int64) (*models.Feedback, error) {
	feedback, err := s.feedbackRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.populate(ctx, feedback)
	return feedback, nil
}

// Stats aggregates ratings inside the optional date window. The end date is inclusive.
func (s *feedbackServiceImpl) Stats(ctx context.Context, query dto.FeedbackStatsQuery) (*models.FeedbackStats, error) {
	from, err := helpers.ParseDateBound(query.StartDate, false)
	if err != nil {
		return nil, apperrors.NewValidationError("startDate must be YYYY-MM-DD or RFC3339")
	}
	to, err := helpers.ParseDateBound(query.EndDate, true)
	if err != nil {
		return nil, apperrors.NewValidationError("endDate must be YYYY-MM-DD or RFC3339")
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, apperrors.NewValidationError("startDate must not be after endDate")
	}

	stats, err := s.feedbackRepo.Stats(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("error computing feedback stats: %w", err)
	}
	return stats, nil
}

func (s *feedbackServiceImpl) populate(ctx context.Context, items ...*models.Feedback) {
	ids := make([]int64, 0, len(items))
	for _, f := range items {
		ids = append(ids, f.StudentID)
	}
	populateStudents(ctx, s.logger, s.studentRepo, uniqueIDs(ids), func(students map[int64]*models.Student) {
		for _, f := range items {
			f.Student = students[f.StudentID].Summary()
		}
	})
}

package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/unisupport/internal/app/auth"
	"github.com/yigit/unisupport/internal/app/models"
	"github.com/yigit/unisupport/internal/app/models/dto"
	"github.com/yigit/unisupport/internal/app/repositories"
	"github.com/yigit/unisupport/internal/pkg/apperrors"
	"github.com/yigit/unisupport/internal/pkg/auth"
	"github.com/yigit/unisupport/internal/pkg/helpers"
	"github.com/yigit/unisupport/internal/pkg/sequence"
)

// DefaultChatTitle is used when neither a title nor a first message is given
const DefaultChatTitle = "New chat"

const maxDerivedTitleLength = 60

// ChatService defines the interface for conversation operations
type ChatService interface {
	ListByStudent(ctx context.Context, actor *auth.Claims, studentID int64, page helpers.PageRequest) ([]*models.Chat, int64, error)
	CreateChat(ctx context.Context, actor *auth.Claims, studentID int64, req dto.CreateChatRequest) (*models.Chat, error)
	GetChat(ctx context.Context, actor *auth.Claims, chatID int64) (*models.Chat, error)
	AddMessage(ctx context.Context, actor *auth.Claims, chatID int64, req dto.AddMessageRequest) (*models.ChatMessage, error)
	UpdateChat(ctx context.Context, actor *auth.Claims, chatID int64, req dto.UpdateChatRequest) (*models.Chat, error)
	DeleteChat(ctx context.Context, actor *auth.Claims, chatID int64) error
}

// chatServiceImpl implements the ChatService interface
type chatServiceImpl struct {
	chatRepo     repositories.IChatRepository
	messageRepo  repositories.IChatMessageRepository
	studentRepo  repositories.IStudentRepository
	sequences    *sequence.Generator
	authzService *appauth.AuthorizationService
	logger       zerolog.Logger
}

// NewChatService creates a new chat service instance
func NewChatService(
	chatRepo repositories.IChatRepository,
	messageRepo repositories.IChatMessageRepository,
	studentRepo repositories.IStudentRepository,
	sequences *sequence.Generator,
	authzService *appauth.AuthorizationService,
	logger zerolog.Logger,
) ChatService {
	return &chatServiceImpl{
		chatRepo:     chatRepo,
		messageRepo:  messageRepo,
		studentRepo:  studentRepo,
		sequences:    sequences,
		authzService: authzService,
		logger:       logger,
	}
}

// deriveTitle picks the chat title from the request, falling back to the first message
func deriveTitle(title, initialMessage string) string {
	if title = strings.TrimSpace(title); title != "" {
		return title
	}
	msg := strings.Join(strings.Fields(initialMessage), " ")
	if msg == "" {
		return DefaultChatTitle
	}
	if utf8.RuneCountInString(msg) > maxDerivedTitleLength {
		runes := []rune(msg)
		msg = strings.TrimSpace(string(runes[:maxDerivedTitleLength])) + "..."
	}
	return msg
}

// ListByStudent returns a page of a student's chats to the student or an admin
func (s *chatServiceImpl) ListByStudent(ctx context.Context, actor *auth.Claims, studentID int64, page helpers.PageRequest) ([]*models.Chat, int64, error) {
	if err := s.authzService.ValidateStudentAccess(actor, studentID, models.RoleAdmin); err != nil {
		return nil, 0, err
	}

	chats, total, err := s.chatRepo.ListByStudent(ctx, studentID, toListOptions(page))
	if err != nil {
		return nil, 0, fmt.Errorf("error listing chats: %w", err)
	}
	return chats, total, nil
}

// CreateChat opens a conversation for the acting student. An initial message is
// written first, then recorded on the chat; the writes are not atomic.
func (s *chatServiceImpl) CreateChat(ctx context.Context, actor *auth.Claims, studentID int64, req dto.CreateChatRequest) (*models.Chat, error) {
	if err := s.authzService.ValidateStudentAccess(actor, studentID); err != nil {
		return nil, err
	}
	if _, err := s.studentRepo.GetByID(ctx, studentID); err != nil {
		return nil, err
	}

	chat := &models.Chat{
		StudentID:  studentID,
		Title:      deriveTitle(req.Title, req.InitialMessage),
		MessageIDs: []int64{},
		Status:     models.ChatOpen,
	}
	if err := s.chatRepo.Create(ctx, chat); err != nil {
		return nil, err
	}

	if text := strings.TrimSpace(req.InitialMessage); text != "" {
		message, err := s.appendMessage(ctx, chat.ID, models.SenderStudent, text)
		if err != nil {
			return nil, err
		}
		chat.MessageIDs = append(chat.MessageIDs, message.MessageID)
		chat.Messages = []*models.ChatMessage{message}
	}

	s.logger.Info().Int64("chatID", chat.ID).Int64("studentID", studentID).Msg("Chat created")
	return chat, nil
}

// appendMessage allocates a message id, stores the message and appends it to the chat
func (s *chatServiceImpl) appendMessage(ctx context.Context, chatID int64, from models.MessageSender, text string) (*models.ChatMessage, error) {
	messageID, err := s.sequences.NextMessageID(ctx)
	if err != nil {
		return nil, err
	}

	message := &models.ChatMessage{
		MessageID:   messageID,
		ChatID:      chatID,
		From:        from,
		MessageText: text,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}
	if err := s.chatRepo.AppendMessage(ctx, chatID, messageID); err != nil {
		s.logger.Error().Err(err).Int64("chatID", chatID).Int64("messageID", messageID).Msg("Message stored but not linked to chat")
		return nil, err
	}
	return message, nil
}

// GetChat returns a chat with its messages in insertion order
func (s *chatServiceImpl) GetChat(ctx context.Context, actor *auth.Claims, chatID int64) (*models.Chat, error) {
	chat, err := s.authzService.ValidateChatAccess(ctx, actor, chatID, models.RoleAdmin)
	if err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListByChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("error loading chat messages: %w", err)
	}
	chat.OrderMessages(messages)
	return chat, nil
}

// AddMessage appends a student or bot message to the actor's own chat
func (s *chatServiceImpl) AddMessage(ctx context.Context, actor *auth.Claims, chatID int64, req dto.AddMessageRequest) (*models.ChatMessage, error) {
	if !req.From.Valid() {
		return nil, apperrors.NewValidationError("from must be student or bot")
	}
	text := strings.TrimSpace(req.MessageText)
	if text == "" {
		return nil, apperrors.NewValidationError("message_text cannot be empty")
	}

	chat, err := s.authzService.ValidateChatAccess(ctx, actor, chatID)
	if err != nil {
		return nil, err
	}
	if chat.Status != models.ChatOpen {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Cannot add messages to a %s chat", chat.Status))
	}

	return s.appendMessage(ctx, chatID, req.From, text)
}

// UpdateChat patches title and flags on the actor's own chat
func (s *chatServiceImpl) UpdateChat(ctx context.Context, actor *auth.Claims, chatID int64, req dto.UpdateChatRequest) (*models.Chat, error) {
	chat, err := s.authzService.ValidateChatAccess(ctx, actor, chatID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("title cannot be empty")
		}
		chat.Title = title
	}
	if req.Favorite != nil {
		chat.Favorite = *req.Favorite
	}
	if req.Saved != nil {
		chat.Saved = *req.Saved
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, apperrors.NewValidationError("status must be open, closed or archived")
		}
		chat.Status = *req.Status
	}

	if err := s.chatRepo.Update(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// DeleteChat removes a chat and its messages
func (s *chatServiceImpl) DeleteChat(ctx context.Context, actor *auth.Claims, chatID int64) error {
	if _, err := s.authzService.ValidateChatAccess(ctx, actor, chatID, models.RoleAdmin); err != nil {
		return err
	}

	if err := s.chatRepo.Delete(ctx, chatID); err != nil {
		return err
	}
	removed, err := s.messageRepo.DeleteByChat(ctx, chatID)
	if err != nil {
		s.logger.Error().Err(err).Int64("chatID", chatID).Msg("Chat deleted but messages were left behind")
		return err
	}

	s.logger.Info().Int64("chatID", chatID).Int64("messages", removed).Msg("Chat deleted")
	return nil
}

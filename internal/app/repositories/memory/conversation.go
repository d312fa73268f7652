package memory

import (
	"context"
	"sort"
	"time"

	"github.com/yigit/unisupport/internal/app/models"
	"github.com/yigit/unisupport/internal/app/repositories"
	"github.com/yigit/unisupport/internal/pkg/apperrors"
	"github.com/yigit/unisupport/internal/pkg/helpers"
)

// ChatRepository is the in-memory chat collection
type ChatRepository struct{ s *store }

func cloneChat(c *models.Chat) *models.Chat {
	cp := *c
	cp.MessageIDs = append([]int64{}, c.MessageIDs...)
	cp.Messages = nil
	return &cp
}

// Create inserts a new chat
func (r *ChatRepository) Create(_ context.Context, chat *models.Chat) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if chat.MessageIDs == nil {
		chat.MessageIDs = []int64{}
	}
	now := time.Now()
	chat.ID = r.s.id("chats")
	chat.CreatedAt, chat.UpdatedAt = now, now
	r.s.chats[chat.ID] = cloneChat(chat)
	return nil
}

// GetByID retrieves a chat without its messages
func (r *ChatRepository) GetByID(_ context.Context, id int64) (*models.Chat, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.chats[id]
	if !ok {
		return nil, apperrors.ErrChatNotFound
	}
	return cloneChat(c), nil
}

// ListByStudent returns a page of a student's chats, newest first
func (r *ChatRepository) ListByStudent(_ context.Context, studentID int64, opts repositories.ListOptions) ([]*models.Chat, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := []*models.Chat{}
	for _, c := range r.s.chats {
		if c.StudentID == studentID && helpers.ContainsFold(opts.Search, c.Title) {
			matched = append(matched, cloneChat(c))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	return page(matched, opts), int64(len(matched)), nil
}

// Update writes the chat title and flags
func (r *ChatRepository) Update(_ context.Context, chat *models.Chat) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.chats[chat.ID]
	if !ok {
		return apperrors.ErrChatNotFound
	}
	chat.UpdatedAt = time.Now()
	stored.Title, stored.Favorite, stored.Saved, stored.Status = chat.Title, chat.Favorite, chat.Saved, chat.Status
	stored.UpdatedAt = chat.UpdatedAt
	return nil
}

// AppendMessage records a message id at the end of the chat's message list
func (r *ChatRepository) AppendMessage(_ context.Context, chatID, messageID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.chats[chatID]
	if !ok {
		return apperrors.ErrChatNotFound
	}
	stored.MessageIDs = append(stored.MessageIDs, messageID)
	stored.UpdatedAt = time.Now()
	return nil
}

// Delete removes a chat
func (r *ChatRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.chats[id]; !ok {
		return apperrors.ErrChatNotFound
	}
	delete(r.s.chats, id)
	return nil
}

// ChatMessageRepository is the in-memory message collection
type ChatMessageRepository struct{ s *store }

// Create inserts a new chat message
func (r *ChatMessageRepository) Create(_ context.Context, message *models.ChatMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.messages {
		if existing.MessageID == message.MessageID {
			return apperrors.ErrConflict
		}
	}
	message.ID = r.s.id("chat_messages")
	message.CreatedAt = time.Now()
	cp := *message
	r.s.messages[message.ID] = &cp
	return nil
}

// GetByMessageID retrieves a message by its sequential message id
func (r *ChatMessageRepository) GetByMessageID(_ context.Context, messageID int64) (*models.ChatMessage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, m := range r.s.messages {
		if m.MessageID == messageID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, apperrors.ErrMessageNotFound
}

// ListByChat retrieves all messages of a chat in message id order
func (r *ChatMessageRepository) ListByChat(_ context.Context, chatID int64) ([]*models.ChatMessage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	messages := []*models.ChatMessage{}
	for _, m := range r.s.messages {
		if m.ChatID == chatID {
			cp := *m
			messages = append(messages, &cp)
		}
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].MessageID < messages[j].MessageID })
	return messages, nil
}

// DeleteByChat removes every message of a chat
func (r *ChatMessageRepository) DeleteByChat(_ context.Context, chatID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, m := range r.s.messages {
		if m.ChatID == chatID {
			delete(r.s.messages, id)
			n++
		}
	}
	return n, nil
}

// IssueRepository is the in-memory issue collection
type IssueRepository struct{ s *store }

func cloneIssue(i *models.Issue) *models.Issue {
	c := *i
	c.ChatID = ptrCopy(i.ChatID)
	c.MessageID = ptrCopy(i.MessageID)
	c.AssignedAdminID = ptrCopy(i.AssignedAdminID)
	c.AssignedAt = ptrCopy(i.AssignedAt)
	c.AdminNotes = ptrCopy(i.AdminNotes)
	c.ResolvedAt = ptrCopy(i.ResolvedAt)
	c.Student, c.AssignedAdmin = nil, nil
	return &c
}

// Create inserts a new issue
func (r *IssueRepository) Create(_ context.Context, issue *models.Issue) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.issues {
		if existing.IssueID == issue.IssueID {
			return apperrors.ErrConflict
		}
	}
	now := time.Now()
	issue.ID = r.s.id("issues")
	issue.CreatedAt, issue.UpdatedAt = now, now
	r.s.issues[issue.ID] = cloneIssue(issue)
	return nil
}

// GetByID retrieves an issue by internal id
func (r *IssueRepository) GetByID(_ context.Context, id int64) (*models.Issue, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	i, ok := r.s.issues[id]
	if !ok {
		return nil, apperrors.ErrIssueNotFound
	}
	return cloneIssue(i), nil
}

// List returns a page of issues, newest issue id first
func (r *IssueRepository) List(_ context.Context, filter repositories.IssueFilter, opts repositories.ListOptions) ([]*models.Issue, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := []*models.Issue{}
	for _, i := range r.s.issues {
		if filter.StudentID != nil && i.StudentID != *filter.StudentID {
			continue
		}
		if filter.Status != nil && i.Status != *filter.Status {
			continue
		}
		if !helpers.ContainsFold(opts.Search, i.Details, i.Type) {
			continue
		}
		matched = append(matched, cloneIssue(i))
	}
	sort.Slice(matched, func(a, b int) bool { return matched[a].IssueID > matched[b].IssueID })
	return page(matched, opts), int64(len(matched)), nil
}

// Update writes the mutable issue fields
func (r *IssueRepository) Update(_ context.Context, issue *models.Issue) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.issues[issue.ID]
	if !ok {
		return apperrors.ErrIssueNotFound
	}
	issue.UpdatedAt = time.Now()
	updated := cloneIssue(issue)
	updated.IssueID, updated.StudentID, updated.CreatedAt = stored.IssueID, stored.StudentID, stored.CreatedAt
	updated.ChatID, updated.MessageID = stored.ChatID, stored.MessageID
	r.s.issues[issue.ID] = updated
	return nil
}

// Delete removes an issue
func (r *IssueRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.issues[id]; !ok {
		return apperrors.ErrIssueNotFound
	}
	delete(r.s.issues, id)
	return nil
}

// FeedbackRepository is the in-memory feedback collection
type FeedbackRepository struct{ s *store }

func cloneFeedback(f *models.Feedback) *models.Feedback {
	c := *f
	c.Comment = ptrCopy(f.Comment)
	c.ChatID = ptrCopy(f.ChatID)
	c.MessageID = ptrCopy(f.MessageID)
	c.Student = nil
	return &c
}

// Create inserts a feedback entry
func (r *FeedbackRepository) Create(_ context.Context, feedback *models.Feedback) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	feedback.ID = r.s.id("feedback")
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now()
	}
	r.s.feedback[feedback.ID] = cloneFeedback(feedback)
	return nil
}

// GetByID retrieves a feedback entry
func (r *FeedbackRepository) GetByID(_ context.Context, id int64) (*models.Feedback, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f, ok := r.s.feedback[id]
	if !ok {
		return nil, apperrors.ErrFeedbackNotFound
	}
	return cloneFeedback(f), nil
}

// List returns a page of feedback, newest first
func (r *FeedbackRepository) List(_ context.Context, opts repositories.ListOptions) ([]*models.Feedback, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := []*models.Feedback{}
	for _, f := range r.s.feedback {
		comment := ""
		if f.Comment != nil {
			comment = *f.Comment
		}
		if opts.Search != "" && !helpers.ContainsFold(opts.Search, comment) {
			continue
		}
		matched = append(matched, cloneFeedback(f))
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	return page(matched, opts), int64(len(matched)), nil
}

// Stats aggregates ratings submitted within [from, to]
func (r *FeedbackRepository) Stats(_ context.Context, from, to *time.Time) (*models.FeedbackStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := map[int]int64{}
	for _, f := range r.s.feedback {
		if from != nil && f.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && f.CreatedAt.After(*to) {
			continue
		}
		counts[f.Rating]++
	}
	return models.NewFeedbackStats(counts), nil
}

// InstructionRepository is the in-memory instruction collection
type InstructionRepository struct{ s *store }

func cloneInstruction(i *models.ChatbotInstruction) *models.ChatbotInstruction {
	c := *i
	c.AdminID = ptrCopy(i.AdminID)
	c.SourceMaterialID = ptrCopy(i.SourceMaterialID)
	c.LegacyDetails = ptrCopy(i.LegacyDetails)
	return &c
}

// Create inserts a chatbot instruction. A LegacyDetails value is stored as-is so
// pre-migration rows can be represented.
func (r *InstructionRepository) Create(_ context.Context, instruction *models.ChatbotInstruction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.instructions {
		if existing.InstructionID == instruction.InstructionID {
			return apperrors.ErrConflict
		}
	}
	now := time.Now()
	instruction.ID = r.s.id("chatbot_instructions")
	instruction.CreatedAt, instruction.UpdatedAt = now, now
	r.s.instructions[instruction.ID] = cloneInstruction(instruction)
	return nil
}

// read migrates the stored row in place and returns a copy; callers hold the write lock
func (r *InstructionRepository) read(stored *models.ChatbotInstruction) *models.ChatbotInstruction {
	stored.MigrateLegacyDetails()
	return cloneInstruction(stored)
}

// GetByID retrieves an instruction by internal id
func (r *InstructionRepository) GetByID(_ context.Context, id int64) (*models.ChatbotInstruction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i, ok := r.s.instructions[id]
	if !ok {
		return nil, apperrors.ErrInstructionNotFound
	}
	return r.read(i), nil
}

// List returns a page of instructions ordered by instruction id
func (r *InstructionRepository) List(_ context.Context, opts repositories.ListOptions) ([]*models.ChatbotInstruction, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	matched := []*models.ChatbotInstruction{}
	for _, i := range r.s.instructions {
		current := r.read(i)
		if helpers.ContainsFold(opts.Search, current.Title, current.Content) {
			matched = append(matched, current)
		}
	}
	sort.Slice(matched, func(a, b int) bool { return matched[a].InstructionID < matched[b].InstructionID })
	return page(matched, opts), int64(len(matched)), nil
}

// Update writes title, content and source reference
func (r *InstructionRepository) Update(_ context.Context, instruction *models.ChatbotInstruction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.instructions[instruction.ID]
	if !ok {
		return apperrors.ErrInstructionNotFound
	}
	instruction.UpdatedAt = time.Now()
	stored.Title = instruction.Title
	stored.Content = instruction.Content
	stored.SourceMaterialID = ptrCopy(instruction.SourceMaterialID)
	stored.LegacyDetails = nil
	stored.UpdatedAt = instruction.UpdatedAt
	return nil
}

// Delete removes an instruction
func (r *InstructionRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.instructions[id]; !ok {
		return apperrors.ErrInstructionNotFound
	}
	delete(r.s.instructions, id)
	return nil
}

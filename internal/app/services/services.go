package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/unisupport/internal/app/models"
	"github.com/yigit/unisupport/internal/app/repositories"
	"github.com/yigit/unisupport/internal/pkg/apperrors"
	"github.com/yigit/unisupport/internal/pkg/auth"
	"github.com/yigit/unisupport/internal/pkg/helpers"
)

// Services defined in this package:
// - AuthService: login, registration, logout and session identity
// - StudentService: student enrollment and profiles
// - AccountService: account listing and status transitions
// - AdminService / FacultyService: staff profiles
// - ChatService: conversations and messages
// - IssueService: support tickets and triage
// - FeedbackService: ratings and statistics
// - InstructionService: chatbot instructions

// toListOptions converts a normalized page request into a repository window
func toListOptions(page helpers.PageRequest) repositories.ListOptions {
	return repositories.ListOptions{
		Offset: page.Offset(),
		Limit:  page.Limit,
		Search: page.Search,
	}
}

// orNoopRevocations lets services run without a session store
func orNoopRevocations(store auth.RevocationStore) auth.RevocationStore {
	if store == nil {
		return auth.NoopRevocationStore{}
	}
	return store
}

// revokeAccountSessions voids every session the account holds right now
func revokeAccountSessions(ctx context.Context, store auth.RevocationStore, accountID int64, at time.Time) error {
	if err := store.RevokeAccount(ctx, accountID, at); err != nil {
		return fmt.Errorf("error revoking sessions of account %d: %w", accountID, err)
	}
	return nil
}

// normalizeEmail lowercases and trims an email used as a login name
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// populateStudents attaches student summaries to documents that reference a student.
// A missing student leaves the summary empty.
func populateStudents(ctx context.Context, lgr zerolog.Logger, repo repositories.IStudentRepository, ids []int64, attach func(map[int64]*models.Student)) {
	if len(ids) == 0 {
		return
	}
	students, err := repo.GetByIDs(ctx, ids)
	if err != nil {
		lgr.Warn().Err(err).Msg("Failed to populate student references")
		return
	}
	attach(students)
}

// conversationRef checks that an optional chat and message reference both belong
// to the student. A message without a chat takes the chat it was posted in.
// It returns the chat id to store.
func conversationRef(
	ctx context.Context,
	chatRepo repositories.IChatRepository,
	messageRepo repositories.IChatMessageRepository,
	studentID int64,
	chatID, messageID *int64,
) (*int64, error) {
	if messageID != nil {
		message, err := messageRepo.GetByMessageID(ctx, *messageID)
		if err != nil {
			return nil, err
		}
		if chatID == nil {
			chatID = &message.ChatID
		} else if message.ChatID != *chatID {
			return nil, apperrors.NewValidationError("The referenced message is not part of the referenced chat")
		}
	}
	if chatID == nil {
		return nil, nil
	}

	chat, err := chatRepo.GetByID(ctx, *chatID)
	if err != nil {
		return nil, err
	}
	if chat.StudentID != studentID {
		return nil, apperrors.NewForbiddenError("The referenced chat belongs to another student")
	}
	id := chat.ID
	return &id, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

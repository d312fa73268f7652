package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/unisupport/internal/app/models"
	"github.com/yigit/unisupport/internal/pkg/sequence"
)

// ListOptions is the offset/limit window and search term of a list query
type ListOptions struct {
	Offset uint64
	Limit  int
	Search string
}

// IssueFilter narrows issue listings
type IssueFilter struct {
	StudentID *int64
	Status    *models.IssueStatus
}

// IAccountRepository defines the interface for account persistence
type IAccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdateStatus(ctx context.Context, account *models.Account) error
	UpdateUsername(ctx context.Context, id int64, username string) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, opts ListOptions) ([]*models.Account, int64, error)
}

// IStudentRepository defines the interface for student profiles
type IStudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	GetByAccountID(ctx context.Context, accountID int64) (*models.Student, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*models.Student, error)
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, opts ListOptions) ([]*models.Student, int64, error)
}

// IAdminRepository defines the interface for admin profiles
type IAdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	GetByID(ctx context.Context, id int64) (*models.Admin, error)
	GetByAccountID(ctx context.Context, accountID int64) (*models.Admin, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*models.Admin, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, opts ListOptions) ([]*models.Admin, int64, error)
}

// IFacultyRepository defines the interface for faculty profiles
type IFacultyRepository interface {
	Create(ctx context.Context, faculty *models.Faculty) error
	GetByID(ctx context.Context, id int64) (*models.Faculty, error)
	GetByAccountID(ctx context.Context, accountID int64) (*models.Faculty, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, opts ListOptions) ([]*models.Faculty, int64, error)
}

// IChatRepository defines the interface for conversations
type IChatRepository interface {
	Create(ctx context.Context, chat *models.Chat) error
	GetByID(ctx context.Context, id int64) (*models.Chat, error)
	ListByStudent(ctx context.Context, studentID int64, opts ListOptions) ([]*models.Chat, int64, error)
	Update(ctx context.Context, chat *models.Chat) error
	AppendMessage(ctx context.Context, chatID, messageID int64) error
	Delete(ctx context.Context, id int64) error
}

// IChatMessageRepository defines the interface for chat messages
type IChatMessageRepository interface {
	Create(ctx context.Context, message *models.ChatMessage) error
	GetByMessageID(ctx context.Context, messageID int64) (*models.ChatMessage, error)
	ListByChat(ctx context.Context, chatID int64) ([]*models.ChatMessage, error)
	DeleteByChat(ctx context.Context, chatID int64) (int64, error)
}

// IIssueRepository defines the interface for support tickets
type IIssueRepository interface {
	Create(ctx context.Context, issue *models.Issue) error
	GetByID(ctx context.Context, id int64) (*models.Issue, error)
	List(ctx context.Context, filter IssueFilter, opts ListOptions) ([]*models.Issue, int64, error)
	Update(ctx context.Context, issue *models.Issue) error
	Delete(ctx context.Context, id int64) error
}

// IFeedbackRepository defines the interface for feedback
type IFeedbackRepository interface {
	Create(ctx context.Context, feedback *models.Feedback) error
	GetByID(ctx context.Context, id int64) (*models.Feedback, error)
	List(ctx context.Context, opts ListOptions) ([]*models.Feedback, int64, error)
	Stats(ctx context.Context, from, to *time.Time) (*models.FeedbackStats, error)
}

// IInstructionRepository defines the interface for chatbot instructions
type IInstructionRepository interface {
	Create(ctx context.Context, instruction *models.ChatbotInstruction) error
	GetByID(ctx context.Context, id int64) (*models.ChatbotInstruction, error)
	List(ctx context.Context, opts ListOptions) ([]*models.ChatbotInstruction, int64, error)
	Update(ctx context.Context, instruction *models.ChatbotInstruction) error
	Delete(ctx context.Context, id int64) error
}

// Repositories holds all the repository instances
type Repositories struct {
	AccountRepository     IAccountRepository
	StudentRepository     IStudentRepository
	AdminRepository       IAdminRepository
	FacultyRepository     IFacultyRepository
	ChatRepository        IChatRepository
	ChatMessageRepository IChatMessageRepository
	IssueRepository       IIssueRepository
	FeedbackRepository    IFeedbackRepository
	InstructionRepository IInstructionRepository
	SequenceRepository    sequence.Counter
}

// NewRepositories initializes all Postgres repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		AccountRepository:     NewAccountRepository(db),
		StudentRepository:     NewStudentRepository(db),
		AdminRepository:       NewAdminRepository(db),
		FacultyRepository:     NewFacultyRepository(db),
		ChatRepository:        NewChatRepository(db),
		ChatMessageRepository: NewChatMessageRepository(db),
		IssueRepository:       NewIssueRepository(db),
		FeedbackRepository:    NewFeedbackRepository(db),
		InstructionRepository: NewInstructionRepository(db),
		SequenceRepository:    NewSequenceRepository(db),
	}
}

// newStatementBuilder returns a squirrel builder using Postgres placeholders
func newStatementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// isDuplicateKeyError checks if the error is a PostgreSQL unique violation error.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" // 23505 is unique_violation
}

// duplicateConstraint returns the violated constraint name, if any
func duplicateConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName
	}
	return ""
}

// countQuery runs a COUNT(*) over the same filters as a list query
func countQuery(ctx context.Context, db *pgxpool.Pool, builder squirrel.SelectBuilder) (int64, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}
	var total int64
	if err := db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

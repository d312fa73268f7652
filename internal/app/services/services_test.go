package services

import (
	"context"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appauth "github.com/yigit/unisupport/internal/app/auth"
	"github.com/yigit/unisupport/internal/app/models"
	"github.com/yigit/unisupport/internal/app/models/dto"
	"github.com/yigit/unisupport/internal/app/repositories"
	"github.com/yigit/unisupport/internal/app/repositories/memory"
	"github.com/yigit/unisupport/internal/pkg/apperrors"
	"github.com/yigit/unisupport/internal/pkg/auth"
	"github.com/yigit/unisupport/internal/pkg/helpers"
	"github.com/yigit/unisupport/internal/pkg/sequence"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	auth.BcryptCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type testEnv struct {
	repos        *repositories.Repositories
	revocations  *auth.MemoryRevocationStore
	students     StudentService
	accounts     AccountService
	admins       AdminService
	faculty      FacultyService
	chats        ChatService
	issues       IssueService
	feedback     FeedbackService
	instructions InstructionService
	auth         *AuthService
	adminClaims  *auth.Claims
	adminID      int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repos := memory.NewRepositories()
	gen := sequence.NewGenerator(repos.SequenceRepository)
	authz := appauth.NewAuthorizationService(repos.ChatRepository, repos.IssueRepository)
	log := zerolog.Nop()
	revocations := auth.NewMemoryRevocationStore()

	env := &testEnv{repos: repos, revocations: revocations}
	env.students = NewStudentService(repos.AccountRepository, repos.StudentRepository, gen, authz, revocations, log)
	env.accounts = NewAccountService(repos.AccountRepository, revocations, log)
	env.admins = NewAdminService(repos.AccountRepository, repos.AdminRepository, gen, revocations, log)
	env.faculty = NewFacultyService(repos.AccountRepository, repos.FacultyRepository, gen, revocations, log)
	env.chats = NewChatService(repos.ChatRepository, repos.ChatMessageRepository, repos.StudentRepository, gen, authz, log)
	env.issues = NewIssueService(repos.IssueRepository, repos.StudentRepository, repos.AdminRepository, repos.ChatRepository, repos.ChatMessageRepository, gen, authz, log)
	env.feedback = NewFeedbackService(repos.FeedbackRepository, repos.StudentRepository, repos.ChatRepository, repos.ChatMessageRepository, log)
	env.instructions = NewInstructionService(repos.InstructionRepository, repos.AdminRepository, gen, log)
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", TokenIssuer: "unisupport-test"})
	env.auth = NewAuthService(repos.AccountRepository, repos.StudentRepository, env.students, jwtService, nil, log)

	admin, err := env.admins.CreateAdmin(context.Background(), dto.CreateAdminRequest{
		Email:    "root@uni.edu",
		Password: "secret123",
		Name:     "Root Admin",
	}, nil)
	require.NoError(t, err)
	env.adminID = admin.ID
	env.adminClaims = &auth.Claims{AccountID: admin.AccountID, Role: models.RoleAdmin, UserName: admin.Email}
	return env
}

// enroll creates an approved student and returns it with matching claims
func (e *testEnv) enroll(t *testing.T, email string) (*models.Student, *auth.Claims) {
	t.Helper()
	student, err := e.students.Enroll(context.Background(), EnrollInput{
		Email:    email,
		Password: "secret123",
		Name:     "Student " + email,
	}, &e.adminClaims.AccountID)
	require.NoError(t, err)
	studentID := student.ID
	return student, &auth.Claims{AccountID: student.AccountID, Role: models.RoleStudent, StudentID: &studentID, UserName: email}
}

func firstPage(limit int) helpers.PageRequest {
	return helpers.NewPageRequest(1, limit, "", limit)
}

func TestEnrollAssignsUniqueAcademicIDs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pattern := regexp.MustCompile(`^STU\d{5}$`)

	seen := map[string]bool{}
	for _, email := range []string{"a@uni.edu", "b@uni.edu", "c@uni.edu"} {
		student, err := env.students.Enroll(ctx, EnrollInput{Email: email, Password: "secret123", Name: "Someone"}, nil)
		require.NoError(t, err)
		assert.Regexp(t, pattern, student.AcademicID)
		assert.False(t, seen[student.AcademicID])
		seen[student.AcademicID] = true
		assert.Equal(t, models.AccountPending, student.Account.Status)
	}

	_, err := env.students.Enroll(ctx, EnrollInput{Email: "A@uni.edu", Password: "secret123", Name: "Dup"}, nil)
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	_, err = env.students.Enroll(ctx, EnrollInput{Email: "short@uni.edu", Password: "123", Name: "Short"}, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.enroll(t, "jane@uni.edu")

	result, err := env.auth.Login(ctx, &dto.LoginRequest{Email: "Jane@uni.edu", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, result.Account.Role)
	assert.NotEmpty(t, result.Token.Token)

	_, err = env.auth.Login(ctx, &dto.LoginRequest{Email: "jane@uni.edu", Password: "wrong-pass"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = env.auth.Login(ctx, &dto.LoginRequest{Email: "nobody@uni.edu", Password: "secret123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = env.auth.Register(ctx, &dto.RegisterRequest{Email: "pending@uni.edu", Password: "secret123", Name: "Pending"})
	require.NoError(t, err)
	_, err = env.auth.Login(ctx, &dto.LoginRequest{Email: "pending@uni.edu", Password: "secret123"})
	assert.ErrorIs(t, err, apperrors.ErrAccountNotApproved)
}

func TestAccountStatusTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	registered, err := env.auth.Register(ctx, &dto.RegisterRequest{Email: "p@uni.edu", Password: "secret123", Name: "Pending"})
	require.NoError(t, err)

	reason := "abuse"
	account, err := env.accounts.UpdateStatus(ctx, env.adminClaims, registered.AccountID, dto.UpdateAccountStatusRequest{
		Status:           models.AccountSuspended,
		SuspensionReason: &reason,
	})
	require.NoError(t, err)
	assert.Equal(t, models.AccountSuspended, account.Status)
	require.NotNil(t, account.SuspendedAt)
	require.NotNil(t, account.SuspensionReason)
	assert.Equal(t, "abuse", *account.SuspensionReason)

	account, err = env.accounts.UpdateStatus(ctx, env.adminClaims, registered.AccountID, dto.UpdateAccountStatusRequest{Status: models.AccountApproved})
	require.NoError(t, err)
	assert.Nil(t, account.SuspensionReason)
	require.NotNil(t, account.ApprovedBy)
	assert.Equal(t, env.adminClaims.AccountID, *account.ApprovedBy)

	_, err = env.accounts.UpdateStatus(ctx, env.adminClaims, registered.AccountID, dto.UpdateAccountStatusRequest{Status: models.AccountRejected})
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	_, err = env.accounts.UpdateStatus(ctx, env.adminClaims, env.adminClaims.AccountID, dto.UpdateAccountStatusRequest{Status: models.AccountSuspended})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestSuspensionAndDeletionRevokeSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	issuedAt := time.Now().Truncate(time.Second)

	suspended, _ := env.enroll(t, "gone@uni.edu")
	_, err := env.accounts.UpdateStatus(ctx, env.adminClaims, suspended.AccountID, dto.UpdateAccountStatusRequest{Status: models.AccountSuspended})
	require.NoError(t, err)

	revoked, err := env.revocations.IsAccountRevoked(ctx, suspended.AccountID, issuedAt)
	require.NoError(t, err)
	assert.True(t, revoked)

	deleted, _ := env.enroll(t, "deleted@uni.edu")
	require.NoError(t, env.students.DeleteStudent(ctx, deleted.ID))
	revoked, err = env.revocations.IsAccountRevoked(ctx, deleted.AccountID, issuedAt)
	require.NoError(t, err)
	assert.True(t, revoked)

	kept, _ := env.enroll(t, "kept@uni.edu")
	revoked, err = env.revocations.IsAccountRevoked(ctx, kept.AccountID, issuedAt)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestCreateChatWithInitialMessage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	student, claims := env.enroll(t, "chat@uni.edu")
	_, other := env.enroll(t, "other@uni.edu")

	chat, err := env.chats.CreateChat(ctx, claims, student.ID, dto.CreateChatRequest{InitialMessage: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", chat.Title)
	require.Len(t, chat.Messages, 1)
	assert.Equal(t, models.SenderStudent, chat.Messages[0].From)
	assert.Equal(t, "hi", chat.Messages[0].MessageText)
	assert.Equal(t, []int64{chat.Messages[0].MessageID}, chat.MessageIDs)

	reply, err := env.chats.AddMessage(ctx, claims, chat.ID, dto.AddMessageRequest{From: models.SenderBot, MessageText: "hello!"})
	require.NoError(t, err)
	assert.Greater(t, reply.MessageID, chat.Messages[0].MessageID)

	loaded, err := env.chats.GetChat(ctx, env.adminClaims, chat.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Messages, 2)
	assert.Equal(t, models.SenderBot, loaded.Messages[1].From)

	_, err = env.chats.GetChat(ctx, other, chat.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = env.chats.CreateChat(ctx, other, student.ID, dto.CreateChatRequest{})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	require.NoError(t, env.chats.DeleteChat(ctx, claims, chat.ID))
	messages, err := env.repos.ChatMessageRepository.ListByChat(ctx, chat.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestDeriveTitle(t *testing.T) {
	assert.Equal(t, "Custom", deriveTitle("  Custom ", "ignored"))
	assert.Equal(t, DefaultChatTitle, deriveTitle("", "   "))
	assert.Equal(t, "a b", deriveTitle("", "a\n  b"))

	long := deriveTitle("", "0123456789012345678901234567890123456789012345678901234567890123456789")
	assert.Equal(t, maxDerivedTitleLength+3, len(long))
}

func TestChatUpdateFlags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	student, claims := env.enroll(t, "flags@uni.edu")

	chat, err := env.chats.CreateChat(ctx, claims, student.ID, dto.CreateChatRequest{Title: "Exams"})
	require.NoError(t, err)

	favorite := true
	archived := models.ChatArchived
	updated, err := env.chats.UpdateChat(ctx, claims, chat.ID, dto.UpdateChatRequest{Favorite: &favorite, Status: &archived})
	require.NoError(t, err)
	assert.True(t, updated.Favorite)
	assert.Equal(t, models.ChatArchived, updated.Status)

	_, err = env.chats.AddMessage(ctx, claims, chat.ID, dto.AddMessageRequest{From: models.SenderStudent, MessageText: "late"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = env.chats.UpdateChat(ctx, env.adminClaims, chat.ID, dto.UpdateChatRequest{Favorite: &favorite})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestIssueLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	student, claims := env.enroll(t, "issue@uni.edu")

	var last int64
	var issue *models.Issue
	for i := 0; i < 3; i++ {
		created, err := env.issues.CreateIssue(ctx, claims, student.ID, dto.CreateIssueRequest{Details: "Wrong grade", Type: "grades"})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, created.IssueID, int64(1000))
		assert.Greater(t, created.IssueID, last)
		last = created.IssueID
		issue = created
	}

	resolved := models.IssueResolved
	updated, err := env.issues.UpdateIssue(ctx, issue.ID, dto.UpdateIssueRequest{Status: &resolved})
	require.NoError(t, err)
	assert.Equal(t, models.IssueResolved, updated.Status)
	assert.NotNil(t, updated.ResolvedAt)
	require.NotNil(t, updated.Student)
	assert.Equal(t, student.AcademicID, updated.Student.AcademicID)

	open := models.IssueOpen
	_, err = env.issues.UpdateIssue(ctx, issue.ID, dto.UpdateIssueRequest{Status: &open})
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	_, err = env.issues.AssignIssue(ctx, issue.ID, 9999)
	assert.True(t, apperrors.IsNotFound(err))

	assigned, err := env.issues.AssignIssue(ctx, issue.ID, env.adminID)
	require.NoError(t, err)
	assert.NotNil(t, assigned.AssignedAt)
	require.NotNil(t, assigned.AssignedAdmin)
	assert.Equal(t, "Root Admin", assigned.AssignedAdmin.Name)

	list, total, err := env.issues.ListIssues(ctx, &resolved, firstPage(10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)

	_, total, err = env.issues.ListByStudent(ctx, claims, student.ID, firstPage(10))
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestIssueRejectsForeignChat(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, ownerClaims := env.enroll(t, "owner@uni.edu")
	other, otherClaims := env.enroll(t, "x@uni.edu")

	chat, err := env.chats.CreateChat(ctx, ownerClaims, owner.ID, dto.CreateChatRequest{Title: "Mine"})
	require.NoError(t, err)

	_, err = env.issues.CreateIssue(ctx, otherClaims, other.ID, dto.CreateIssueRequest{Details: "x", Type: "y", ChatID: &chat.ID})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = env.issues.GetIssue(ctx, otherClaims, 12345)
	assert.ErrorIs(t, err, apperrors.ErrIssueNotFound)
}

func TestIssueAndFeedbackMessageReferences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, ownerClaims := env.enroll(t, "alice@uni.edu")
	other, otherClaims := env.enroll(t, "bob@uni.edu")

	chat, err := env.chats.CreateChat(ctx, ownerClaims, owner.ID, dto.CreateChatRequest{InitialMessage: "help"})
	require.NoError(t, err)
	messageID := chat.Messages[0].MessageID

	otherChat, err := env.chats.CreateChat(ctx, otherClaims, other.ID, dto.CreateChatRequest{Title: "Bob"})
	require.NoError(t, err)

	_, err = env.issues.CreateIssue(ctx, otherClaims, other.ID, dto.CreateIssueRequest{Details: "x", Type: "t", MessageID: &messageID})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = env.issues.CreateIssue(ctx, otherClaims, other.ID, dto.CreateIssueRequest{Details: "x", Type: "t", ChatID: &otherChat.ID, MessageID: &messageID})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	missing := int64(424242)
	_, err = env.issues.CreateIssue(ctx, otherClaims, other.ID, dto.CreateIssueRequest{Details: "x", Type: "t", MessageID: &missing})
	assert.ErrorIs(t, err, apperrors.ErrMessageNotFound)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = env.feedback.CreateFeedback(ctx, otherClaims, dto.CreateFeedbackRequest{Rating: 1, MessageID: &messageID})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = env.feedback.CreateFeedback(ctx, otherClaims, dto.CreateFeedbackRequest{Rating: 1, MessageID: &missing})
	assert.ErrorIs(t, err, apperrors.ErrMessageNotFound)

	issue, err := env.issues.CreateIssue(ctx, ownerClaims, owner.ID, dto.CreateIssueRequest{Details: "x", Type: "t", MessageID: &messageID})
	require.NoError(t, err)
	require.NotNil(t, issue.ChatID)
	assert.Equal(t, chat.ID, *issue.ChatID)
	assert.Equal(t, messageID, *issue.MessageID)

	feedback, err := env.feedback.CreateFeedback(ctx, ownerClaims, dto.CreateFeedbackRequest{Rating: 5, ChatID: &chat.ID, MessageID: &messageID})
	require.NoError(t, err)
	require.NotNil(t, feedback.ChatID)
	assert.Equal(t, chat.ID, *feedback.ChatID)
}

func TestFeedbackRatingAndStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, claims := env.enroll(t, "fb@uni.edu")

	for _, rating := range []int{0, 6, -1} {
		_, err := env.feedback.CreateFeedback(ctx, claims, dto.CreateFeedbackRequest{Rating: rating})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed, "rating %d", rating)
	}

	for _, rating := range []int{5, 5, 4} {
		_, err := env.feedback.CreateFeedback(ctx, claims, dto.CreateFeedbackRequest{Rating: rating})
		require.NoError(t, err)
	}

	_, err := env.feedback.CreateFeedback(ctx, env.adminClaims, dto.CreateFeedbackRequest{Rating: 3})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	stats, err := env.feedback.Stats(ctx, dto.FeedbackStatsQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Count)
	assert.Equal(t, 4.67, stats.Average)
	assert.Equal(t, int64(2), stats.Distribution["5"])
	assert.Equal(t, int64(0), stats.Distribution["1"])

	_, err = env.feedback.Stats(ctx, dto.FeedbackStatsQuery{StartDate: "2024-05-02", EndDate: "2024-05-01"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = env.feedback.Stats(ctx, dto.FeedbackStatsQuery{StartDate: "yesterday"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	items, _, err := env.feedback.ListFeedback(ctx, firstPage(10))
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.NotNil(t, items[0].Student)
}

func TestInstructionCRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.instructions.CreateInstruction(ctx, env.adminClaims, dto.CreateInstructionRequest{Title: "Tone", Content: "Be polite"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.InstructionID)
	require.NotNil(t, created.AdminID)
	assert.Equal(t, env.adminID, *created.AdminID)

	content := "Be concise"
	updated, err := env.instructions.UpdateInstruction(ctx, created.ID, dto.UpdateInstructionRequest{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "Be concise", updated.Content)
	assert.Equal(t, "Tone", updated.Title)

	require.NoError(t, env.instructions.DeleteInstruction(ctx, created.ID))
	_, err = env.instructions.GetInstruction(ctx, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrInstructionNotFound)
}

func TestStaffManagement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.admins.CreateAdmin(ctx, dto.CreateAdminRequest{Email: "root@uni.edu", Password: "secret123", Name: "Again"}, &env.adminClaims.AccountID)
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	err = env.admins.DeleteAdmin(ctx, env.adminClaims, env.adminID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	member, err := env.faculty.CreateFaculty(ctx, dto.CreateFacultyRequest{
		Email: "prof@uni.edu", Password: "secret123", Name: "Prof", Department: "Physics",
	}, &env.adminClaims.AccountID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleFaculty, member.Account.Role)
	assert.Equal(t, models.AccountApproved, member.Account.Status)

	result, err := env.auth.Login(ctx, &dto.LoginRequest{Email: "prof@uni.edu", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleFaculty, result.Account.Role)

	require.NoError(t, env.faculty.DeleteFaculty(ctx, member.ID))
	_, err = env.repos.AccountRepository.GetByID(ctx, member.AccountID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRejectedStudentUpdateKeepsLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	student, _ := env.enroll(t, "jane@uni.edu")

	email := "renamed@uni.edu"
	blank := "   "
	_, err := env.students.UpdateStudent(ctx, student.ID, dto.UpdateStudentRequest{Email: &email, Name: &blank})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	account, err := env.repos.AccountRepository.GetByID(ctx, student.AccountID)
	require.NoError(t, err)
	assert.Equal(t, "jane@uni.edu", account.Username)

	stored, err := env.repos.StudentRepository.GetByID(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane@uni.edu", stored.Email)
	assert.Equal(t, student.Name, stored.Name)

	_, err = env.auth.Login(ctx, &dto.LoginRequest{Email: "jane@uni.edu", Password: "secret123"})
	require.NoError(t, err)
}

func TestStudentProfileAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	student, claims := env.enroll(t, "me@uni.edu")
	_, other := env.enroll(t, "you@uni.edu")

	major := "Mathematics"
	email := "me2@uni.edu"
	updated, err := env.students.UpdateProfile(ctx, claims, student.ID, dto.UpdateProfileRequest{Major: &major, Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", updated.Major)

	account, err := env.repos.AccountRepository.GetByID(ctx, student.AccountID)
	require.NoError(t, err)
	assert.Equal(t, "me2@uni.edu", account.Username)

	_, err = env.students.GetProfile(ctx, other, student.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	require.NoError(t, env.students.DeleteStudent(ctx, student.ID))
	_, err = env.repos.AccountRepository.GetByID(ctx, student.AccountID)
	assert.True(t, apperrors.IsNotFound(err))
}

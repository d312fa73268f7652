package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unisupport/internal/app/models"
	"github.com/yigit/unisupport/internal/app/repositories"
	"github.com/yigit/unisupport/internal/pkg/apperrors"
)

func TestSequenceRepositoryIsAtomic(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()

	const workers = 40
	values := make([]int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := repos.SequenceRepository.Next(ctx, models.SequenceIssue, 1000)
			assert.NoError(t, err)
			values[i] = v
		}(i)
	}
	wg.Wait()

	seen := map[int64]bool{}
	for _, v := range values {
		assert.GreaterOrEqual(t, v, int64(1000))
		assert.False(t, seen[v])
		seen[v] = true
	}
}

func TestStudentListSearchAndPagination(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		major := "Physics"
		if i%3 == 0 {
			major = "Computer Science"
		}
		require.NoError(t, repos.StudentRepository.Create(ctx, &models.Student{
			AccountID:  int64(i),
			AcademicID: models.FormatAcademicID(int64(i)),
			Name:       fmt.Sprintf("Student %02d", i),
			Email:      fmt.Sprintf("s%d@uni.edu", i),
			Major:      major,
		}))
	}

	items, total, err := repos.StudentRepository.List(ctx, repositories.ListOptions{Offset: 10, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	require.Len(t, items, 2)
	assert.Equal(t, "STU00011", items[0].AcademicID)

	items, total, err = repos.StudentRepository.List(ctx, repositories.ListOptions{Limit: 10, Search: "computer"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, items, 4)
}

func TestStudentUniqueness(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()

	require.NoError(t, repos.StudentRepository.Create(ctx, &models.Student{AccountID: 1, AcademicID: "STU00001", Name: "A", Email: "a@uni.edu"}))
	err := repos.StudentRepository.Create(ctx, &models.Student{AccountID: 2, AcademicID: "STU00002", Name: "B", Email: "A@uni.edu"})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	err = repos.StudentRepository.Create(ctx, &models.Student{AccountID: 3, AcademicID: "STU00001", Name: "C", Email: "c@uni.edu"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestChatAppendKeepsInsertionOrder(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()

	chat := &models.Chat{StudentID: 1, Status: models.ChatOpen}
	require.NoError(t, repos.ChatRepository.Create(ctx, chat))
	for _, id := range []int64{5, 2, 9} {
		require.NoError(t, repos.ChatRepository.AppendMessage(ctx, chat.ID, id))
	}

	stored, err := repos.ChatRepository.GetByID(ctx, chat.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 2, 9}, stored.MessageIDs)

	assert.ErrorIs(t, repos.ChatRepository.AppendMessage(ctx, 999, 1), apperrors.ErrChatNotFound)
}

func TestInstructionLegacyDetailsMigratedOnRead(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()

	legacy := "Answer in English"
	inst := &models.ChatbotInstruction{InstructionID: 1, Title: "Language", LegacyDetails: &legacy}
	require.NoError(t, repos.InstructionRepository.Create(ctx, inst))

	got, err := repos.InstructionRepository.GetByID(ctx, inst.ID)
	require.NoError(t, err)
	assert.Equal(t, "Answer in English", got.Content)
	assert.Nil(t, got.LegacyDetails)

	items, _, err := repos.InstructionRepository.List(ctx, repositories.ListOptions{Limit: 10, Search: "english"})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestFeedbackStatsWindow(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()

	day := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	for i, rating := range []int{5, 4, 2} {
		require.NoError(t, repos.FeedbackRepository.Create(ctx, &models.Feedback{
			Rating:    rating,
			StudentID: 1,
			CreatedAt: day.AddDate(0, 0, i),
		}))
	}

	stats, err := repos.FeedbackRepository.Stats(ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Count)
	assert.Equal(t, 3.67, stats.Average)

	from := day.AddDate(0, 0, 1)
	stats, err = repos.FeedbackRepository.Stats(ctx, &from, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Count)
	assert.Equal(t, int64(1), stats.Distribution["2"])
	assert.Equal(t, int64(0), stats.Distribution["5"])
}

func TestIssueListFilters(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()

	for i, studentID := range []int64{1, 1, 2} {
		require.NoError(t, repos.IssueRepository.Create(ctx, &models.Issue{
			IssueID:   int64(1000 + i),
			Details:   "Cannot log in",
			Type:      "account",
			Status:    models.IssueOpen,
			StudentID: studentID,
		}))
	}

	student := int64(1)
	items, total, err := repos.IssueRepository.List(ctx, repositories.IssueFilter{StudentID: &student}, repositories.ListOptions{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, int64(1001), items[0].IssueID)

	closed := models.IssueClosed
	_, total, err = repos.IssueRepository.List(ctx, repositories.IssueFilter{Status: &closed}, repositories.ListOptions{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
}

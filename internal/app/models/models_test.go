package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, raw := range []string{"student", " Admin ", "FACULTY"} {
		role, err := ParseRole(raw)
		require.NoError(t, err)
		assert.True(t, role.Valid())
	}

	_, err := ParseRole("superuser")
	assert.Error(t, err)
	assert.False(t, Role("").Valid())
}

func TestAccountTransitions(t *testing.T) {
	tests := []struct {
		from, to AccountStatus
		allowed  bool
	}{
		{AccountPending, AccountApproved, true},
		{AccountPending, AccountSuspended, true},
		{AccountPending, AccountRejected, true},
		{AccountApproved, AccountSuspended, true},
		{AccountSuspended, AccountApproved, true},
		{AccountApproved, AccountPending, false},
		{AccountApproved, AccountApproved, false},
		{AccountRejected, AccountApproved, false},
		{AccountRejected, AccountPending, false},
		{AccountSuspended, AccountRejected, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
	assert.False(t, AccountStatus("deleted").Valid())
}

func TestIssueStatusOnlyAdvances(t *testing.T) {
	assert.True(t, IssueOpen.CanAdvanceTo(IssueInProgress))
	assert.True(t, IssueOpen.CanAdvanceTo(IssueClosed))
	assert.True(t, IssueInProgress.CanAdvanceTo(IssueResolved))
	assert.False(t, IssueResolved.CanAdvanceTo(IssueOpen))
	assert.False(t, IssueClosed.CanAdvanceTo(IssueClosed))
	assert.False(t, IssueOpen.CanAdvanceTo("escalated"))
}

func TestFormatAcademicID(t *testing.T) {
	assert.Equal(t, "STU00001", FormatAcademicID(1))
	assert.Equal(t, "STU01234", FormatAcademicID(1234))
	assert.Regexp(t, `^STU\d{5}$`, FormatAcademicID(99999))
}

func TestOrderMessages(t *testing.T) {
	chat := &Chat{MessageIDs: []int64{7, 3, 9}}
	chat.OrderMessages([]*ChatMessage{
		{MessageID: 3}, {MessageID: 9}, {MessageID: 12}, {MessageID: 7},
	})

	ids := make([]int64, 0, len(chat.Messages))
	for _, m := range chat.Messages {
		ids = append(ids, m.MessageID)
	}
	assert.Equal(t, []int64{7, 3, 9, 12}, ids)
}

func TestMigrateLegacyDetails(t *testing.T) {
	legacy := "Be polite"
	inst := &ChatbotInstruction{Title: "Tone", LegacyDetails: &legacy}
	assert.True(t, inst.MigrateLegacyDetails())
	assert.Equal(t, "Be polite", inst.Content)
	assert.Nil(t, inst.LegacyDetails)

	other := "old"
	current := &ChatbotInstruction{Content: "new", LegacyDetails: &other}
	assert.False(t, current.MigrateLegacyDetails())
	assert.Equal(t, "new", current.Content)

	raw, err := json.Marshal(current)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "details")
}

func TestAccountHidesPasswordHash(t *testing.T) {
	raw, err := json.Marshal(&Account{Username: "a@uni.edu", PasswordHash: "secret-hash", Role: RoleStudent})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-hash")
}

func TestNewFeedbackStats(t *testing.T) {
	stats := NewFeedbackStats(map[int]int64{5: 2, 4: 1, 1: 0})
	assert.Equal(t, int64(3), stats.Count)
	assert.Equal(t, 4.67, stats.Average)
	assert.Equal(t, map[string]int64{"1": 0, "2": 0, "3": 0, "4": 1, "5": 2}, stats.Distribution)

	empty := NewFeedbackStats(nil)
	assert.Zero(t, empty.Count)
	assert.Zero(t, empty.Average)
	assert.Len(t, empty.Distribution, 5)
}

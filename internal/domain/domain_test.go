package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRosterDedupesCaseInsensitively(t *testing.T) {
	r := NewRoster(" Ravi ", "ravi", "", "Ankita", "ANKITA", "Sam")

	assert.Equal(t, []string{"Ravi", "Ankita", "Sam"}, r.Names())
	assert.Equal(t, "Ravi, Ankita, Sam", r.String())

	name, ok := r.Canonical("sAM")
	require.True(t, ok)
	assert.Equal(t, "Sam", name)
	assert.False(t, r.Contains("Maya"))
}

func TestRosterWithAndWithoutReturnCopies(t *testing.T) {
	base := NewRoster("Ravi", "Sam")
	grown := base.With("Maya")
	shrunk := grown.Without("ravi")

	assert.Equal(t, 2, base.Len())
	assert.Equal(t, []string{"Ravi", "Sam", "Maya"}, grown.Names())
	assert.Equal(t, []string{"Sam", "Maya"}, shrunk.Names())
	assert.True(t, NewRoster().IsEmpty())

	names := base.Names()
	names[0] = "changed"
	assert.Equal(t, "Ravi", base.Names()[0])
}

func TestVerdictTierOrdering(t *testing.T) {
	rejected := Rejected("x")
	pending := NeedsConfirmation("Rave", "Ravi", 83)
	accepted := Accepted("Ravi")

	assert.Less(t, rejected.Tier(), pending.Tier())
	assert.Less(t, pending.Tier(), accepted.Tier())
	assert.True(t, pending.IsPending())
	assert.Equal(t, MaxScore, accepted.Score)
	assert.Equal(t, "Ravi", pending.SuggestedName)
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want Status
	}{
		{raw: "pending", want: StatusPending},
		{raw: "TODO", want: StatusPending},
		{raw: "in progress", want: StatusInProgress},
		{raw: "in-progress", want: StatusInProgress},
		{raw: "completed", want: StatusDone},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseStatus(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseStatus("blocked")
	require.ErrorIs(t, err, ErrInvalidTask)
	_, err = ParsePriority("urgent")
	require.ErrorIs(t, err, ErrInvalidTask)
}

func TestTaskPatchAndFilter(t *testing.T) {
	task := Task{ID: 1, Title: "Fix", Assignee: "Sam", Status: StatusPending, Priority: PriorityLow}
	require.NoError(t, task.Validate())

	assert.True(t, TaskPatch{}.IsEmpty())
	status := StatusDone
	title := "  Fix login  "
	TaskPatch{Status: &status, Title: &title}.Apply(&task)
	assert.Equal(t, StatusDone, task.Status)
	assert.Equal(t, "Fix login", task.Title)

	assert.True(t, TaskFilter{Assignee: "sam", Status: StatusDone}.Matches(task))
	assert.False(t, TaskFilter{Priority: PriorityHigh}.Matches(task))
	assert.True(t, IsUnassignedName(" Unassigned "))
	assert.False(t, task.IsUnassigned())

	task.Priority = "urgent"
	require.ErrorIs(t, task.Validate(), ErrInvalidTask)
}

func TestSessionCloneDoesNotShareState(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	s := Session{
		ID:           "s-1",
		Pending:      &PendingConfirmation{ID: "p-1", SuggestedName: "Ravi"},
		LastAccessed: now,
		History:      []Turn{{Role: RoleUser, Content: "hi"}},
	}

	clone := s.Clone()
	clone.Pending.SuggestedName = "Sam"
	clone.History[0].Content = "changed"

	assert.Equal(t, "Ravi", s.Pending.SuggestedName)
	assert.Equal(t, "hi", s.History[0].Content)
	assert.True(t, s.Awaiting())
	assert.Equal(t, time.Hour, s.IdleSince(now.Add(time.Hour)))

	info := s.Info()
	assert.Equal(t, 1, info.MessageCount)
	require.NotNil(t, info.Pending)
}

func TestIntentDescribe(t *testing.T) {
	assert.Equal(t, `create task "Report"`, Intent{Kind: IntentCreateTask, Title: "Report"}.Describe())
	assert.Equal(t, "reassign task 3", Intent{Kind: IntentUpdateAssignee, TaskID: 3}.Describe())
}

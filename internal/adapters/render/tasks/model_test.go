package tasks

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/taskmate/internal/domain"
)

func boardLoader(calls *int, tasks []domain.Task, err error) Loader {
	return func(context.Context) ([]domain.Task, RenderOptions, error) {
		*calls++
		return tasks, RenderOptions{Now: boardNow}, err
	}
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	updated, ok := next.(model)
	require.True(t, ok)
	return updated, cmd
}

func TestWatchedBoardReloadsOnTick(t *testing.T) {
	calls := 0
	tasks := []domain.Task{
		{ID: 1, Title: "Write report", Assignee: "Ankita", Status: domain.StatusPending, Priority: domain.PriorityHigh},
		{ID: 2, Title: "Review PR", Assignee: "Ravi", Status: domain.StatusDone, Priority: domain.PriorityLow},
	}
	m := newModel(context.Background(), boardLoader(&calls, tasks, nil), true, 0)
	assert.Equal(t, DefaultRefresh, m.interval)

	msg := m.Init()()
	m, cmd := update(t, m, msg)
	require.NotNil(t, cmd)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, m.loads)

	view := m.View()
	assert.Contains(t, view, "Review PR")
	assert.Contains(t, view, "updated 10:00:00")
	assert.Contains(t, view, "q quit")

	m, cmd = update(t, m, refreshTickMsg{})
	require.NotNil(t, cmd)
	_, _ = update(t, m, cmd())
	assert.Equal(t, 2, calls)
}

func TestWatchedBoardKeys(t *testing.T) {
	calls := 0
	tasks := []domain.Task{
		{ID: 1, Title: "Write report", Assignee: "Ankita", Status: domain.StatusPending, Priority: domain.PriorityHigh},
		{ID: 2, Title: "Review PR", Assignee: "Ravi", Status: domain.StatusDone, Priority: domain.PriorityLow},
	}
	m := newModel(context.Background(), boardLoader(&calls, tasks, nil), true, 0)
	m, _ = update(t, m, m.Init()())

	m, _ = update(t, m, key("d"))
	assert.NotContains(t, m.View(), "Review PR")
	assert.Contains(t, m.View(), "Write report")

	m, _ = update(t, m, key("d"))
	assert.Contains(t, m.View(), "Review PR")

	_, cmd := update(t, m, key("r"))
	require.NotNil(t, cmd)
	_ = cmd()
	assert.Equal(t, 2, calls)

	_, cmd = update(t, m, key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestWatchedBoardKeepsLastTasksOnFailedReload(t *testing.T) {
	calls := 0
	tasks := []domain.Task{{ID: 1, Title: "Write report", Assignee: "Ankita", Status: domain.StatusPending, Priority: domain.PriorityHigh}}
	m := newModel(context.Background(), boardLoader(&calls, tasks, nil), true, 0)
	m, _ = update(t, m, m.Init()())

	m, cmd := update(t, m, boardLoadedMsg{err: errors.New("database is locked")})
	require.NotNil(t, cmd)
	view := m.View()
	assert.Contains(t, view, "Write report")
	assert.Contains(t, view, "refresh failed: database is locked")
}

func TestSingleRenderQuitsAfterLoad(t *testing.T) {
	calls := 0
	m := newModel(context.Background(), boardLoader(&calls, nil, nil), false, 0)

	m, cmd := update(t, m, m.Init()())
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.NotContains(t, m.View(), "q quit")
}

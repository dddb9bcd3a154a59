package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/taskmate/internal/domain"
	"github.com/bnema/taskmate/internal/ports"
)

type toolFixture struct {
	runner  *ToolRunner
	tasks   *TaskService
	confirm confirmationFixture
}

func newToolFixture() toolFixture {
	repo := newInMemoryTaskRepo(
		domain.Task{Title: "Write report", Assignee: "Ravi", Status: domain.StatusPending, Priority: domain.PriorityHigh},
		domain.Task{Title: "Review budget", Assignee: "Ankita", Status: domain.StatusInProgress, Priority: domain.PriorityMedium},
		domain.Task{Title: "Book venue", Assignee: domain.Unassigned, Status: domain.StatusPending, Priority: domain.PriorityLow},
	)
	tasks := newTestTaskService(repo)
	confirm := newConfirmationFixture(testRoster())
	return toolFixture{runner: NewToolRunner(tasks, confirm.svc), tasks: tasks, confirm: confirm}
}

func TestToolReadTasksFiltersByExactAssignee(t *testing.T) {
	t.Parallel()

	f := newToolFixture()
	out, err := f.runner.Run(context.Background(), "s-1", ports.ToolCall{
		Name:      ToolReadTasks,
		Arguments: map[string]any{"assignee": "ravi"},
	})
	require.NoError(t, err)
	assert.Nil(t, out.Pending)
	assert.Contains(t, out.Text, "Write report")
	assert.NotContains(t, out.Text, "Review budget")
}

func TestToolReadTasksNearMatchDefersFilter(t *testing.T) {
	t.Parallel()

	f := newToolFixture()
	out, err := f.runner.Run(context.Background(), "s-1", ports.ToolCall{
		Name:      ToolReadTasks,
		Arguments: map[string]any{"assignee": "Rave", "status": "pending"},
	})
	require.NoError(t, err)
	require.NotNil(t, out.Pending)
	assert.Equal(t, "Ravi", out.Pending.SuggestedName)
	assert.Equal(t, domain.IntentFilterTasks, out.Pending.Intent.Kind)
	assert.Equal(t, domain.StatusPending, out.Pending.Intent.Status)
	assert.Contains(t, out.Text, "Ravi")

	stored, err := f.confirm.svc.Pending(context.Background(), "s-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, out.Pending.ID, stored.ID)
}

func TestToolReadTasksUnknownNameListsRoster(t *testing.T) {
	t.Parallel()

	f := newToolFixture()
	out, err := f.runner.Run(context.Background(), "s-1", ports.ToolCall{
		Name:      ToolReadTasks,
		Arguments: map[string]any{"assignee": "Zephyr"},
	})
	require.NoError(t, err)
	assert.Nil(t, out.Pending)
	assert.Contains(t, out.Text, "Zephyr")
	assert.Contains(t, out.Text, "Ankita")
}

func TestToolCreateTaskRequiresTitle(t *testing.T) {
	t.Parallel()

	f := newToolFixture()
	out, err := f.runner.Run(context.Background(), "s-1", ports.ToolCall{
		Name:      ToolCreateTask,
		Arguments: map[string]any{"assignee": "Sam"},
	})
	require.NoError(t, err)
	assert.Equal(t, "A task title is required.", out.Text)
}

func TestToolUpdateTaskAppliesFieldsAndDefersAssignee(t *testing.T) {
	t.Parallel()

	f := newToolFixture()
	out, err := f.runner.Run(context.Background(), "s-1", ports.ToolCall{
		Name:      ToolUpdateTask,
		Arguments: map[string]any{"task_id": float64(2), "status": "done", "assignee": "Rave"},
	})
	require.NoError(t, err)
	require.NotNil(t, out.Pending)
	assert.Equal(t, "Ravi", out.Pending.SuggestedName)
	assert.Equal(t, domain.IntentUpdateAssignee, out.Pending.Intent.Kind)
	assert.Equal(t, domain.TaskID(2), out.Pending.Intent.TaskID)

	task, err := f.tasks.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, task.Status)
	assert.Equal(t, "Ankita", task.Assignee)
}

func TestToolUpdateTaskOnlyAssigneeStaysPending(t *testing.T) {
	t.Parallel()

	f := newToolFixture()
	out, err := f.runner.Run(context.Background(), "s-1", ports.ToolCall{
		Name:      ToolUpdateTask,
		Arguments: map[string]any{"task_id": "#3", "assignee": "Rave"},
	})
	require.NoError(t, err)
	require.NotNil(t, out.Pending)

	task, err := f.tasks.Get(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, domain.Unassigned, task.Assignee)
}

func TestToolUpdateTaskRejectsBadInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{name: "missing id", args: map[string]any{"status": "done"}, want: "A numeric task_id is required."},
		{name: "fractional id", args: map[string]any{"task_id": 1.5}, want: "A numeric task_id is required."},
		{name: "no fields", args: map[string]any{"task_id": float64(1)}, want: "Nothing to update."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newToolFixture()
			out, err := f.runner.Run(context.Background(), "s-1", ports.ToolCall{Name: ToolUpdateTask, Arguments: tc.args})
			require.NoError(t, err)
			assert.Equal(t, tc.want, out.Text)
			assert.Nil(t, out.Pending)
		})
	}
}

func TestToolUpdateTaskUnknownIDIsReported(t *testing.T) {
	t.Parallel()

	f := newToolFixture()
	out, err := f.runner.Run(context.Background(), "s-1", ports.ToolCall{
		Name:      ToolUpdateTask,
		Arguments: map[string]any{"task_id": float64(99), "status": "done"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Text)
	assert.Nil(t, out.Pending)
}

func TestToolBulkStatusAll(t *testing.T) {
	t.Parallel()

	f := newToolFixture()
	out, err := f.runner.Run(context.Background(), "s-1", ports.ToolCall{
		Name:      ToolBulkUpdateTasks,
		Arguments: map[string]any{"operation": "status_all", "status": "done"},
	})
	require.NoError(t, err)
	assert.Contains(t, out.Text, "status_all")

	done, err := f.tasks.List(context.Background(), domain.TaskFilter{Status: domain.StatusDone})
	require.NoError(t, err)
	assert.Len(t, done, 3)
}

func TestToolBulkAssignAllNearMatchDefers(t *testing.T) {
	t.Parallel()

	f := newToolFixture()
	out, err := f.runner.Run(context.Background(), "s-1", ports.ToolCall{
		Name:      ToolBulkUpdateTasks,
		Arguments: map[string]any{"operation": "assign_all", "assignee": "Rave"},
	})
	require.NoError(t, err)
	require.NotNil(t, out.Pending)
	assert.Equal(t, domain.IntentAssignAll, out.Pending.Intent.Kind)

	ravi, err := f.tasks.List(context.Background(), domain.TaskFilter{Assignee: "Ravi"})
	require.NoError(t, err)
	assert.Len(t, ravi, 1)
}

func TestToolUnknownName(t *testing.T) {
	t.Parallel()

	f := newToolFixture()
	out, err := f.runner.Run(context.Background(), "s-1", ports.ToolCall{Name: "delete_everything"})
	require.NoError(t, err)
	assert.Equal(t, `Unknown tool "delete_everything".`, out.Text)
}

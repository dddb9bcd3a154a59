package application

import (
	"context"
	"strings"

	"github.com/bnema/taskmate/internal/domain"
)

type ListTasksQuery struct {
	// Assignee is resolved against the roster before filtering.
	Assignee string
	Status   domain.Status
	Priority domain.Priority
}

type TaskListView struct {
	Tasks []domain.Task
	// Verdict is set when the query named an assignee.
	Verdict *domain.Verdict
}

// QueryTasks serves direct callers that cannot hold a confirmation dialogue.
// A near match filters on the suggested name and reports the verdict; an
// unknown name returns no tasks.
func QueryTasks(ctx context.Context, tasks *TaskService, confirm *ConfirmationService, q ListTasksQuery) (TaskListView, error) {
	filter := domain.TaskFilter{Status: q.Status, Priority: q.Priority}
	view := TaskListView{Tasks: []domain.Task{}}

	raw := strings.TrimSpace(q.Assignee)
	switch {
	case raw == "":
	case domain.IsUnassignedName(raw):
		filter.Assignee = domain.Unassigned
	default:
		verdict, err := confirm.ResolveName(ctx, raw)
		if err != nil {
			return TaskListView{}, err
		}
		view.Verdict = &verdict

		switch verdict.Kind {
		case domain.VerdictAccepted:
			filter.Assignee = verdict.Name
		case domain.VerdictNeedsConfirmation:
			filter.Assignee = verdict.SuggestedName
		default:
			return view, nil
		}
	}

	list, err := tasks.List(ctx, filter)
	if err != nil {
		return TaskListView{}, err
	}
	view.Tasks = list

	return view, nil
}

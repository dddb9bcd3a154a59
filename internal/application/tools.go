package application

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/taskmate/internal/domain"
	"github.com/bnema/taskmate/internal/ports"
)

const (
	ToolReadTasks       = "read_tasks"
	ToolCreateTask      = "create_task"
	ToolUpdateTask      = "update_task"
	ToolBulkUpdateTasks = "bulk_update_tasks"
)

func ToolDefinitions() []ports.ToolDefinition {
	statuses := []string{string(domain.StatusPending), string(domain.StatusInProgress), string(domain.StatusDone)}
	priorities := []string{string(domain.PriorityHigh), string(domain.PriorityMedium), string(domain.PriorityLow)}

	return []ports.ToolDefinition{
		{
			Name:        ToolReadTasks,
			Description: "List tasks, optionally filtered by assignee, status or priority.",
			Parameters: map[string]ports.ToolParameter{
				"assignee": {Type: "string", Description: "Team member name exactly as the user wrote it"},
				"status":   {Type: "string", Description: "Task status", Enum: statuses},
				"priority": {Type: "string", Description: "Task priority", Enum: priorities},
			},
		},
		{
			Name:        ToolCreateTask,
			Description: "Create a task. Use 'unassigned' when nobody owns it yet.",
			Parameters: map[string]ports.ToolParameter{
				"title":    {Type: "string", Description: "Short task title"},
				"assignee": {Type: "string", Description: "Team member name exactly as the user wrote it"},
				"priority": {Type: "string", Description: "Task priority", Enum: priorities},
				"status":   {Type: "string", Description: "Initial status", Enum: statuses},
				"due_date": {Type: "string", Description: "Due date as YYYY-MM-DD"},
			},
			Required: []string{"title"},
		},
		{
			Name:        ToolUpdateTask,
			Description: "Update one task's status, assignee, priority, title or due date.",
			Parameters: map[string]ports.ToolParameter{
				"task_id":  {Type: "integer", Description: "Task number"},
				"title":    {Type: "string", Description: "New title"},
				"assignee": {Type: "string", Description: "Team member name exactly as the user wrote it"},
				"status":   {Type: "string", Description: "New status", Enum: statuses},
				"priority": {Type: "string", Description: "New priority", Enum: priorities},
				"due_date": {Type: "string", Description: "New due date as YYYY-MM-DD"},
			},
			Required: []string{"task_id"},
		},
		{
			Name:        ToolBulkUpdateTasks,
			Description: "Apply one change to every task.",
			Parameters: map[string]ports.ToolParameter{
				"operation": {Type: "string", Description: "Bulk operation", Enum: []string{string(domain.BulkAssignAll), string(domain.BulkUnassignAll), string(domain.BulkStatusAll)}},
				"assignee":  {Type: "string", Description: "Assignee for assign_all"},
				"status":    {Type: "string", Description: "Status for status_all", Enum: statuses},
			},
			Required: []string{"operation"},
		},
	}
}

type toolOutcome struct {
	Text    string
	Pending *domain.PendingConfirmation
}

// ToolRunner executes the assistant tools for one session. Assignee names go
// through the confirmation service first; an ambiguous name defers the
// tool's effect into a pending confirmation.
type ToolRunner struct {
	tasks    *TaskService
	confirm  *ConfirmationService
	location *time.Location
}

func NewToolRunner(tasks *TaskService, confirm *ConfirmationService) *ToolRunner {
	return &ToolRunner{tasks: tasks, confirm: confirm, location: time.UTC}
}

func (r *ToolRunner) Run(ctx context.Context, sessionID domain.SessionID, call ports.ToolCall) (toolOutcome, error) {
	args := toolArgs(call.Arguments)
	switch call.Name {
	case ToolReadTasks:
		return r.readTasks(ctx, sessionID, args)
	case ToolCreateTask:
		return r.createTask(ctx, sessionID, args)
	case ToolUpdateTask:
		return r.updateTask(ctx, sessionID, args)
	case ToolBulkUpdateTasks:
		return r.bulkUpdate(ctx, sessionID, args)
	default:
		return toolOutcome{Text: fmt.Sprintf("Unknown tool %q.", call.Name)}, nil
	}
}

func (r *ToolRunner) readTasks(ctx context.Context, sessionID domain.SessionID, args toolArgs) (toolOutcome, error) {
	filter := domain.TaskFilter{}
	if raw := args.String("status"); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return toolOutcome{Text: err.Error()}, nil
		}
		filter.Status = status
	}
	if raw := args.String("priority"); raw != "" {
		priority, err := domain.ParsePriority(raw)
		if err != nil {
			return toolOutcome{Text: err.Error()}, nil
		}
		filter.Priority = priority
	}

	if raw := args.String("assignee"); raw != "" {
		intent := domain.Intent{Kind: domain.IntentFilterTasks, Status: filter.Status, Priority: filter.Priority}
		name, deferred, err := r.resolveAssignee(ctx, sessionID, raw, intent)
		if err != nil || deferred != nil {
			return derefOutcome(deferred), err
		}
		filter.Assignee = name
	}

	tasks, err := r.tasks.List(ctx, filter)
	if err != nil {
		return toolOutcome{}, err
	}
	return toolOutcome{Text: FormatTaskList(tasks)}, nil
}

func (r *ToolRunner) createTask(ctx context.Context, sessionID domain.SessionID, args toolArgs) (toolOutcome, error) {
	cmd := CreateTaskCommand{Title: args.String("title")}
	if strings.TrimSpace(cmd.Title) == "" {
		return toolOutcome{Text: "A task title is required."}, nil
	}
	var err error
	if cmd.Priority, err = optionalPriority(args.String("priority")); err != nil {
		return toolOutcome{Text: err.Error()}, nil
	}
	if cmd.Status, err = optionalStatus(args.String("status")); err != nil {
		return toolOutcome{Text: err.Error()}, nil
	}
	if cmd.DueDate, err = r.optionalDate(args.String("due_date")); err != nil {
		return toolOutcome{Text: err.Error()}, nil
	}

	intent := domain.Intent{Kind: domain.IntentCreateTask, Title: cmd.Title, Priority: cmd.Priority, Status: cmd.Status, DueDate: cmd.DueDate}
	name, deferred, err := r.resolveAssignee(ctx, sessionID, args.String("assignee"), intent)
	if err != nil || deferred != nil {
		return derefOutcome(deferred), err
	}
	cmd.Assignee = name

	task, err := r.tasks.Create(ctx, cmd)
	if err != nil {
		if isUserError(err) {
			return toolOutcome{Text: err.Error()}, nil
		}
		return toolOutcome{}, err
	}
	return toolOutcome{Text: "Created " + FormatTask(task)}, nil
}

func (r *ToolRunner) updateTask(ctx context.Context, sessionID domain.SessionID, args toolArgs) (toolOutcome, error) {
	id, ok := args.Int("task_id")
	if !ok {
		return toolOutcome{Text: "A numeric task_id is required."}, nil
	}
	taskID := domain.TaskID(id)

	patch := domain.TaskPatch{}
	if raw := args.String("title"); raw != "" {
		patch.Title = &raw
	}
	if raw := args.String("status"); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return toolOutcome{Text: err.Error()}, nil
		}
		patch.Status = &status
	}
	if raw := args.String("priority"); raw != "" {
		priority, err := domain.ParsePriority(raw)
		if err != nil {
			return toolOutcome{Text: err.Error()}, nil
		}
		patch.Priority = &priority
	}
	if raw := args.String("due_date"); raw != "" {
		due, err := r.optionalDate(raw)
		if err != nil {
			return toolOutcome{Text: err.Error()}, nil
		}
		patch.DueDate = &due
	}

	var deferred *toolOutcome
	if raw := args.String("assignee"); raw != "" {
		intent := domain.Intent{Kind: domain.IntentUpdateAssignee, TaskID: taskID}
		name, pending, err := r.resolveAssignee(ctx, sessionID, raw, intent)
		if err != nil {
			return toolOutcome{}, err
		}
		if pending != nil {
			deferred = pending
		} else {
			patch.Assignee = &name
		}
	}

	if patch.IsEmpty() {
		if deferred != nil {
			return *deferred, nil
		}
		return toolOutcome{Text: "Nothing to update."}, nil
	}

	task, err := r.tasks.Update(ctx, UpdateTaskCommand{ID: taskID, Patch: patch})
	if err != nil {
		if isUserError(err) {
			return toolOutcome{Text: err.Error()}, nil
		}
		return toolOutcome{}, err
	}

	out := toolOutcome{Text: "Updated " + FormatTask(task)}
	if deferred != nil {
		out.Text += "\n" + deferred.Text
		out.Pending = deferred.Pending
	}
	return out, nil
}

func (r *ToolRunner) bulkUpdate(ctx context.Context, sessionID domain.SessionID, args toolArgs) (toolOutcome, error) {
	cmd := BulkUpdateCommand{Operation: domain.BulkOperation(strings.ToLower(args.String("operation")))}
	switch cmd.Operation {
	case domain.BulkAssignAll:
		name, deferred, err := r.resolveAssignee(ctx, sessionID, args.String("assignee"), domain.Intent{Kind: domain.IntentAssignAll})
		if err != nil || deferred != nil {
			return derefOutcome(deferred), err
		}
		cmd.Assignee = name
	case domain.BulkStatusAll:
		status, err := domain.ParseStatus(args.String("status"))
		if err != nil {
			return toolOutcome{Text: err.Error()}, nil
		}
		cmd.Status = status
	}

	changed, err := r.tasks.Bulk(ctx, cmd)
	if err != nil {
		if isUserError(err) {
			return toolOutcome{Text: err.Error()}, nil
		}
		return toolOutcome{}, err
	}
	return toolOutcome{Text: fmt.Sprintf("Bulk %s updated %d task(s).", cmd.Operation, changed)}, nil
}

// resolveAssignee returns the canonical name, or a non-nil outcome when the
// caller must stop: either a confirmation question or an unknown name.
func (r *ToolRunner) resolveAssignee(ctx context.Context, sessionID domain.SessionID, raw string, intent domain.Intent) (string, *toolOutcome, error) {
	if domain.IsUnassignedName(raw) {
		return domain.Unassigned, nil, nil
	}

	verdict, err := r.confirm.ResolveName(ctx, raw)
	if err != nil {
		return "", nil, err
	}

	switch verdict.Kind {
	case domain.VerdictAccepted:
		return verdict.Name, nil, nil
	case domain.VerdictNeedsConfirmation:
		pending, err := r.confirm.BeginPending(ctx, sessionID, verdict.Candidate, verdict.SuggestedName, verdict.Score, intent)
		if err != nil {
			return "", nil, err
		}
		return "", &toolOutcome{Text: ConfirmationQuestion(pending), Pending: &pending}, nil
	default:
		roster, err := r.confirm.Roster(ctx)
		if err != nil {
			return "", nil, err
		}
		return "", &toolOutcome{Text: UnrecognizedName(raw, roster)}, nil
	}
}

func (r *ToolRunner) optionalDate(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, nil
	}
	due, err := time.ParseInLocation(domain.DateLayout, strings.TrimSpace(raw), r.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q, expected YYYY-MM-DD", raw)
	}
	return due, nil
}

func optionalStatus(raw string) (domain.Status, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	return domain.ParseStatus(raw)
}

func optionalPriority(raw string) (domain.Priority, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	return domain.ParsePriority(raw)
}

func derefOutcome(out *toolOutcome) toolOutcome {
	if out == nil {
		return toolOutcome{}
	}
	return *out
}

type toolArgs map[string]any

func (a toolArgs) String(key string) string {
	switch v := a[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func (a toolArgs) Int(key string) (int64, bool) {
	switch v := a[key].(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(v), "#"), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bnema/taskmate/internal/domain"
	"github.com/bnema/taskmate/internal/ports"
)

func errBulk(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidTask, msg)
}

// TaskService owns task records. Assignee names reaching it are already
// resolved; it also replays deferred intents once a name is confirmed.
type TaskService struct {
	repo     ports.TaskRepository
	clock    ports.Clock
	defaults TaskDefaults
	logger   *zap.Logger
}

var _ ports.IntentApplier = (*TaskService)(nil)

func NewTaskService(repo ports.TaskRepository, clock ports.Clock, defaults TaskDefaults, opts ...Option) *TaskService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if !defaults.Priority.Valid() {
		defaults.Priority = domain.PriorityMedium
	}
	if defaults.DueIn <= 0 {
		defaults.DueIn = DefaultTaskDefaults().DueIn
	}
	o := buildOptions(opts)

	return &TaskService{repo: repo, clock: clock, defaults: defaults, logger: o.logger}
}

func (s *TaskService) Create(ctx context.Context, cmd CreateTaskCommand) (domain.Task, error) {
	now := s.clock.Now()
	task := domain.Task{
		Title:       strings.TrimSpace(cmd.Title),
		Assignee:    normalizeAssignee(cmd.Assignee),
		Status:      cmd.Status,
		Priority:    cmd.Priority,
		CreatedAt:   now,
		DueDate:     cmd.DueDate,
		Description: strings.TrimSpace(cmd.Description),
	}
	if task.Status == "" {
		task.Status = domain.StatusPending
	}
	if task.Priority == "" {
		task.Priority = s.defaults.Priority
	}
	if task.DueDate.IsZero() {
		task.DueDate = truncateDay(now.Add(s.defaults.DueIn))
	}
	if err := task.Validate(); err != nil {
		return domain.Task{}, err
	}

	created, err := s.repo.Create(ctx, task)
	if err != nil {
		return domain.Task{}, fmt.Errorf("create task: %w", err)
	}
	s.logger.Info("task created", zap.Int64("task_id", int64(created.ID)), zap.String("assignee", created.Assignee))

	return created, nil
}

func (s *TaskService) Get(ctx context.Context, id domain.TaskID) (domain.Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Task{}, fmt.Errorf("get task %d: %w", id, err)
	}
	return task, nil
}

func (s *TaskService) List(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	tasks, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) Update(ctx context.Context, cmd UpdateTaskCommand) (domain.Task, error) {
	if cmd.Patch.IsEmpty() {
		return domain.Task{}, fmt.Errorf("%w: no fields to update", domain.ErrInvalidTask)
	}

	task, err := s.Get(ctx, cmd.ID)
	if err != nil {
		return domain.Task{}, err
	}
	if cmd.Patch.Assignee != nil {
		assignee := normalizeAssignee(*cmd.Patch.Assignee)
		cmd.Patch.Assignee = &assignee
	}
	cmd.Patch.Apply(&task)
	if err := task.Validate(); err != nil {
		return domain.Task{}, err
	}

	if err := s.repo.Save(ctx, task); err != nil {
		return domain.Task{}, fmt.Errorf("save task %d: %w", task.ID, err)
	}
	s.logger.Info("task updated", zap.Int64("task_id", int64(task.ID)))

	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, id domain.TaskID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	s.logger.Info("task deleted", zap.Int64("task_id", int64(id)))
	return nil
}

// Bulk applies one operation to every task and returns how many changed.
func (s *TaskService) Bulk(ctx context.Context, cmd BulkUpdateCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	tasks, err := s.List(ctx, domain.TaskFilter{})
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, task := range tasks {
		before := task
		switch cmd.Operation {
		case domain.BulkAssignAll:
			task.Assignee = strings.TrimSpace(cmd.Assignee)
		case domain.BulkUnassignAll:
			task.Assignee = domain.Unassigned
		case domain.BulkStatusAll:
			task.Status = cmd.Status
		}
		if task == before {
			continue
		}
		if err := s.repo.Save(ctx, task); err != nil {
			return changed, fmt.Errorf("save task %d: %w", task.ID, err)
		}
		changed++
	}
	s.logger.Info("bulk update", zap.String("operation", string(cmd.Operation)), zap.Int("changed", changed))

	return changed, nil
}

// Apply replays a deferred intent with its now settled assignee.
func (s *TaskService) Apply(ctx context.Context, intent domain.Intent, resolvedName string) (string, error) {
	switch intent.Kind {
	case domain.IntentCreateTask:
		task, err := s.Create(ctx, CreateTaskCommand{
			Title:    intent.Title,
			Assignee: resolvedName,
			Priority: intent.Priority,
			Status:   intent.Status,
			DueDate:  intent.DueDate,
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Created task #%d %q assigned to %s.", task.ID, task.Title, task.Assignee), nil
	case domain.IntentUpdateAssignee:
		task, err := s.Update(ctx, UpdateTaskCommand{ID: intent.TaskID, Patch: domain.TaskPatch{Assignee: &resolvedName}})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Task #%d %q is now assigned to %s.", task.ID, task.Title, task.Assignee), nil
	case domain.IntentAssignAll:
		changed, err := s.Bulk(ctx, BulkUpdateCommand{Operation: domain.BulkAssignAll, Assignee: resolvedName})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Assigned %d task(s) to %s.", changed, resolvedName), nil
	case domain.IntentFilterTasks:
		tasks, err := s.List(ctx, domain.TaskFilter{Assignee: resolvedName, Status: intent.Status, Priority: intent.Priority})
		if err != nil {
			return "", err
		}
		return FormatTaskList(tasks), nil
	default:
		return "", fmt.Errorf("unsupported intent %q", intent.Kind)
	}
}

// SeedDemo inserts the sample board when the store is empty.
func (s *TaskService) SeedDemo(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	seeded := 0
	for _, task := range demoTasks() {
		if _, err := s.repo.Create(ctx, task); err != nil {
			return seeded, errors.Join(fmt.Errorf("seed task %q", task.Title), err)
		}
		seeded++
	}

	return seeded, nil
}

func demoTasks() []domain.Task {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	return []domain.Task{
		{Title: "Review API documentation", Assignee: "Ravi", Status: domain.StatusInProgress, Priority: domain.PriorityHigh, CreatedAt: day(2024, time.January, 15), DueDate: day(2024, time.January, 20)},
		{Title: "Update login flow design", Assignee: "Ankita", Status: domain.StatusPending, Priority: domain.PriorityMedium, CreatedAt: day(2024, time.January, 16), DueDate: day(2024, time.January, 25)},
		{Title: "Fix database connection issues", Assignee: "Sam", Status: domain.StatusDone, Priority: domain.PriorityHigh, CreatedAt: day(2024, time.January, 10), DueDate: day(2024, time.January, 18)},
	}
}

func normalizeAssignee(name string) string {
	if domain.IsUnassignedName(name) {
		return domain.Unassigned
	}
	return strings.TrimSpace(name)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

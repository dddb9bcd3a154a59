package domain

import (
	"fmt"
	"strings"
	"time"
)

type TaskID int64

type Status string
type Priority string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"

	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"

	// Unassigned is stored verbatim and never resolved against the roster.
	Unassigned = "unassigned"

	DateLayout = "2006-01-02"
)

type Task struct {
	ID          TaskID
	Title       string
	Assignee    string
	Status      Status
	Priority    Priority
	CreatedAt   time.Time
	DueDate     time.Time
	Description string
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: unsupported status %q", ErrInvalidTask, t.Status)
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("%w: unsupported priority %q", ErrInvalidTask, t.Priority)
	}

	return nil
}

func (t Task) IsUnassigned() bool {
	return IsUnassignedName(t.Assignee)
}

func IsUnassignedName(name string) bool {
	trimmed := strings.TrimSpace(name)
	return trimmed == "" || strings.EqualFold(trimmed, Unassigned)
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone:
		return true
	default:
		return false
	}
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// ParseStatus accepts the canonical values plus the loose spellings users type
// ("completed", "in progress", "todo").
func ParseStatus(raw string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)

	switch normalized {
	case "pending", "todo", "waiting":
		return StatusPending, nil
	case "in_progress", "working", "started":
		return StatusInProgress, nil
	case "done", "completed", "finished":
		return StatusDone, nil
	default:
		return "", fmt.Errorf("%w: unsupported status %q", ErrInvalidTask, raw)
	}
}

func ParsePriority(raw string) (Priority, error) {
	switch Priority(strings.ToLower(strings.TrimSpace(raw))) {
	case PriorityHigh:
		return PriorityHigh, nil
	case PriorityMedium:
		return PriorityMedium, nil
	case PriorityLow:
		return PriorityLow, nil
	default:
		return "", fmt.Errorf("%w: unsupported priority %q", ErrInvalidTask, raw)
	}
}

type TaskFilter struct {
	Assignee string
	Status   Status
	Priority Priority
}

func (f TaskFilter) Matches(t Task) bool {
	if f.Assignee != "" && !strings.EqualFold(f.Assignee, t.Assignee) {
		return false
	}
	if f.Status != "" && f.Status != t.Status {
		return false
	}
	if f.Priority != "" && f.Priority != t.Priority {
		return false
	}

	return true
}

// TaskPatch carries the optional fields of a single-task update. Nil means unchanged.
type TaskPatch struct {
	Title    *string
	Assignee *string
	Status   *Status
	Priority *Priority
	DueDate  *time.Time
}

func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Assignee == nil && p.Status == nil && p.Priority == nil && p.DueDate == nil
}

func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Assignee != nil {
		t.Assignee = *p.Assignee
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
}

type BulkOperation string

const (
	BulkAssignAll   BulkOperation = "assign_all"
	BulkUnassignAll BulkOperation = "unassign_all"
	BulkStatusAll   BulkOperation = "status_all"
)

func (op BulkOperation) Valid() bool {
	switch op {
	case BulkAssignAll, BulkUnassignAll, BulkStatusAll:
		return true
	default:
		return false
	}
}

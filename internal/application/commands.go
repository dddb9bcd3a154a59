package application

import (
	"time"

	"github.com/bnema/taskmate/internal/domain"
)

type CreateTaskCommand struct {
	Title       string
	Assignee    string
	Priority    domain.Priority
	Status      domain.Status
	DueDate     time.Time
	Description string
}

type UpdateTaskCommand struct {
	ID    domain.TaskID
	Patch domain.TaskPatch
}

type BulkUpdateCommand struct {
	Operation domain.BulkOperation
	Assignee  string
	Status    domain.Status
}

func (c BulkUpdateCommand) Validate() error {
	switch c.Operation {
	case domain.BulkAssignAll:
		if domain.IsUnassignedName(c.Assignee) {
			return errBulk("assign_all requires an assignee")
		}
	case domain.BulkUnassignAll:
	case domain.BulkStatusAll:
		if !c.Status.Valid() {
			return errBulk("status_all requires a valid status")
		}
	default:
		return errBulk("unsupported operation " + string(c.Operation))
	}

	return nil
}

type TaskDefaults struct {
	Priority domain.Priority
	DueIn    time.Duration
}

func DefaultTaskDefaults() TaskDefaults {
	return TaskDefaults{Priority: domain.PriorityMedium, DueIn: 7 * 24 * time.Hour}
}

package ports

import (
	"context"

	"github.com/bnema/taskmate/internal/domain"
)

type TaskRepository interface {
	Create(ctx context.Context, task domain.Task) (domain.Task, error)
	GetByID(ctx context.Context, id domain.TaskID) (domain.Task, error)
	List(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error)
	Save(ctx context.Context, task domain.Task) error
	Delete(ctx context.Context, id domain.TaskID) error
	Count(ctx context.Context) (int, error)
}

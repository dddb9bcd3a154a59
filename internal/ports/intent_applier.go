package ports

import (
	"context"

	"github.com/bnema/taskmate/internal/domain"
)

// IntentApplier replays a deferred intent once its assignee name is settled.
type IntentApplier interface {
	Apply(ctx context.Context, intent domain.Intent, resolvedName string) (string, error)
}

type IntentApplierFunc func(ctx context.Context, intent domain.Intent, resolvedName string) (string, error)

func (f IntentApplierFunc) Apply(ctx context.Context, intent domain.Intent, resolvedName string) (string, error) {
	return f(ctx, intent, resolvedName)
}

package ports

import (
	"context"

	"github.com/bnema/taskmate/internal/domain"
)

// RosterSource is the read-only view name resolution depends on.
type RosterSource interface {
	CurrentRoster(ctx context.Context) (domain.Roster, error)
}

type RosterRepository interface {
	RosterSource
	Save(ctx context.Context, roster domain.Roster) error
}

// StaticRoster serves a fixed roster, mostly for tests and one-off commands.
type StaticRoster domain.Roster

func (r StaticRoster) CurrentRoster(context.Context) (domain.Roster, error) {
	return domain.Roster(r), nil
}

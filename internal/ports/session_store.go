package ports

import (
	"context"
	"time"

	"github.com/bnema/taskmate/internal/domain"
)

// SessionStore owns all mutable session state and serializes work per session.
type SessionStore interface {
	// GetOrCreate mints a token when id is empty and re-creates unknown ids.
	// The boolean reports whether a new session was created.
	GetOrCreate(ctx context.Context, id domain.SessionID) (domain.Session, bool, error)
	Get(ctx context.Context, id domain.SessionID) (domain.Session, error)
	List(ctx context.Context) ([]domain.Session, error)
	Touch(ctx context.Context, id domain.SessionID) error
	SetPending(ctx context.Context, id domain.SessionID, pending domain.PendingConfirmation) error
	ClearPending(ctx context.Context, id domain.SessionID) error
	AppendTurn(ctx context.Context, id domain.SessionID, turn domain.Turn) error
	Delete(ctx context.Context, id domain.SessionID) error
	SweepExpired(ctx context.Context, idle time.Duration) (int, error)
	// Update runs fn under the session's lock, creating the session if needed.
	// Changes fn makes to the session are stored when it returns nil.
	Update(ctx context.Context, id domain.SessionID, fn func(*domain.Session) error) (domain.Session, error)
}

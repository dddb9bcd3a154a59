package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bnema/taskmate/internal/domain"
	"github.com/bnema/taskmate/internal/ports"
)

// Store keeps sessions in process memory. The map lock only guards
// membership; each session carries its own mutex so turns on one session are
// serialized while other sessions proceed.
type Store struct {
	mu      sync.RWMutex
	entries map[domain.SessionID]*entry
	clock   ports.Clock
	newID   func() string
}

type entry struct {
	mu      sync.Mutex
	session domain.Session
	// dead is set once the entry leaves the map; holders must re-acquire.
	dead bool
}

var _ ports.SessionStore = (*Store)(nil)

func NewStore(clock ports.Clock) *Store {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Store{
		entries: map[domain.SessionID]*entry{},
		clock:   clock,
		newID:   uuid.NewString,
	}
}

func (s *Store) GetOrCreate(ctx context.Context, id domain.SessionID) (domain.Session, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, false, err
	}
	if id == "" {
		id = domain.SessionID(s.newID())
	}

	e, created := s.acquire(id)
	defer e.mu.Unlock()

	e.session.LastAccessed = s.clock.Now()
	return e.session.Clone(), created, nil
}

func (s *Store) Get(ctx context.Context, id domain.SessionID) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}

	e, ok := s.existing(id)
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	defer e.mu.Unlock()

	return e.session.Clone(), nil
}

func (s *Store) List(ctx context.Context) ([]domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	snapshot := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		snapshot = append(snapshot, e)
	}
	s.mu.RUnlock()

	out := make([]domain.Session, 0, len(snapshot))
	for _, e := range snapshot {
		e.mu.Lock()
		if !e.dead {
			out = append(out, e.session.Clone())
		}
		e.mu.Unlock()
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (s *Store) Touch(ctx context.Context, id domain.SessionID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e, ok := s.existing(id)
	if !ok {
		return domain.ErrSessionNotFound
	}
	defer e.mu.Unlock()

	e.session.LastAccessed = s.clock.Now()
	return nil
}

func (s *Store) SetPending(ctx context.Context, id domain.SessionID, pending domain.PendingConfirmation) error {
	_, err := s.Update(ctx, id, func(session *domain.Session) error {
		pending.SessionID = session.ID
		session.Pending = &pending
		return nil
	})
	return err
}

func (s *Store) ClearPending(ctx context.Context, id domain.SessionID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e, ok := s.existing(id)
	if !ok {
		return nil
	}
	defer e.mu.Unlock()

	e.session.Pending = nil
	e.session.LastAccessed = s.clock.Now()
	return nil
}

func (s *Store) AppendTurn(ctx context.Context, id domain.SessionID, turn domain.Turn) error {
	_, err := s.Update(ctx, id, func(session *domain.Session) error {
		if turn.At.IsZero() {
			turn.At = s.clock.Now()
		}
		session.History = append(session.History, turn)
		if turn.Role == domain.RoleUser {
			session.TurnCount++
		}
		return nil
	})
	return err
}

func (s *Store) Delete(ctx context.Context, id domain.SessionID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	e, ok := s.entries[id]
	delete(s.entries, id)
	s.mu.Unlock()
	if !ok {
		return domain.ErrSessionNotFound
	}

	e.mu.Lock()
	e.dead = true
	e.mu.Unlock()

	return nil
}

// SweepExpired removes sessions idle for longer than idle. Sessions whose lock
// is held are in use and therefore not idle.
func (s *Store) SweepExpired(ctx context.Context, idle time.Duration) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	cutoff := s.clock.Now().Add(-idle)
	removed := 0

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		if !e.mu.TryLock() {
			continue
		}
		if e.session.LastAccessed.Before(cutoff) {
			e.dead = true
			delete(s.entries, id)
			removed++
		}
		e.mu.Unlock()
	}

	return removed, nil
}

func (s *Store) Update(ctx context.Context, id domain.SessionID, fn func(*domain.Session) error) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}
	if id == "" {
		id = domain.SessionID(s.newID())
	}

	e, _ := s.acquire(id)
	defer e.mu.Unlock()

	working := e.session.Clone()
	working.LastAccessed = s.clock.Now()
	if err := fn(&working); err != nil {
		return domain.Session{}, err
	}
	working.ID = e.session.ID
	working.CreatedAt = e.session.CreatedAt
	e.session = working

	return working.Clone(), nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// acquire returns the locked entry for id, creating it when missing.
func (s *Store) acquire(id domain.SessionID) (*entry, bool) {
	for {
		created := false

		s.mu.Lock()
		e, ok := s.entries[id]
		if !ok {
			now := s.clock.Now()
			e = &entry{session: domain.Session{ID: id, CreatedAt: now, LastAccessed: now}}
			s.entries[id] = e
			created = true
		}
		s.mu.Unlock()

		e.mu.Lock()
		if !e.dead {
			return e, created
		}
		e.mu.Unlock()
	}
}

// existing returns the locked entry for id without creating it.
func (s *Store) existing(id domain.SessionID) (*entry, bool) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	e.mu.Lock()
	if e.dead {
		e.mu.Unlock()
		return nil, false
	}
	return e, true
}

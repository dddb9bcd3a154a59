package domain

import "time"

type SessionID string

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Turn struct {
	Role    Role
	Content string
	At      time.Time
}

type Session struct {
	ID           SessionID
	Pending      *PendingConfirmation
	CreatedAt    time.Time
	LastAccessed time.Time
	TurnCount    int
	History      []Turn
	Suggestions  []SuggestedTask
}

func (s Session) Awaiting() bool {
	return s.Pending != nil
}

func (s Session) IdleSince(now time.Time) time.Duration {
	return now.Sub(s.LastAccessed)
}

// Clone returns a copy that shares no mutable state with s.
func (s Session) Clone() Session {
	out := s
	if s.Pending != nil {
		pending := *s.Pending
		out.Pending = &pending
	}
	if s.History != nil {
		out.History = make([]Turn, len(s.History))
		copy(out.History, s.History)
	}
	if s.Suggestions != nil {
		out.Suggestions = make([]SuggestedTask, len(s.Suggestions))
		copy(out.Suggestions, s.Suggestions)
	}

	return out
}

type SessionInfo struct {
	ID           SessionID
	CreatedAt    time.Time
	LastAccessed time.Time
	TurnCount    int
	MessageCount int
	Pending      *PendingConfirmation
	Suggestions  int
}

func (s Session) Info() SessionInfo {
	info := SessionInfo{
		ID:           s.ID,
		CreatedAt:    s.CreatedAt,
		LastAccessed: s.LastAccessed,
		TurnCount:    s.TurnCount,
		MessageCount: len(s.History),
		Suggestions:  len(s.Suggestions),
	}
	if s.Pending != nil {
		pending := *s.Pending
		info.Pending = &pending
	}

	return info
}

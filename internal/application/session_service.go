package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bnema/taskmate/internal/domain"
	"github.com/bnema/taskmate/internal/ports"
)

// SessionService exposes session bookkeeping to the REST and CLI layers.
type SessionService struct {
	sessions    ports.SessionStore
	confirm     *ConfirmationService
	idleTimeout time.Duration
	logger      *zap.Logger
	metrics     ports.Metrics
}

func NewSessionService(sessions ports.SessionStore, confirm *ConfirmationService, idleTimeout time.Duration, opts ...Option) *SessionService {
	o := buildOptions(opts)
	return &SessionService{sessions: sessions, confirm: confirm, idleTimeout: idleTimeout, logger: o.logger, metrics: o.metrics}
}

func (s *SessionService) IdleTimeout() time.Duration {
	return s.idleTimeout
}

func (s *SessionService) List(ctx context.Context) ([]domain.SessionInfo, error) {
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	out := make([]domain.SessionInfo, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, session.Info())
	}
	s.metrics.SetActiveSessions(len(out))

	return out, nil
}

func (s *SessionService) Info(ctx context.Context, id domain.SessionID) (domain.SessionInfo, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return domain.SessionInfo{}, fmt.Errorf("get session %s: %w", id, err)
	}
	return session.Info(), nil
}

func (s *SessionService) Delete(ctx context.Context, id domain.SessionID) error {
	if err := s.sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// Cleanup sweeps sessions idle for longer than the configured timeout.
func (s *SessionService) Cleanup(ctx context.Context) (int, error) {
	return s.confirm.ExpireIdle(ctx, s.idleTimeout)
}

// RunJanitor sweeps expired sessions every interval until ctx is done.
func (s *SessionService) RunJanitor(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.Cleanup(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("session sweep failed", zap.Error(err))
			}
			if live, err := s.sessions.List(ctx); err == nil {
				s.metrics.SetActiveSessions(len(live))
			}
		}
	}
}

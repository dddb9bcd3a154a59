package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bnema/taskmate/internal/domain"
	"github.com/bnema/taskmate/internal/ports"
)

// ConfirmationService resolves candidate names and drives the per-session
// pending confirmation through confirm, deny and override replies.
type ConfirmationService struct {
	resolver *Resolver
	roster   ports.RosterSource
	sessions ports.SessionStore
	applier  ports.IntentApplier
	clock    ports.Clock
	ids      *idSource
	logger   *zap.Logger
	metrics  ports.Metrics
}

func NewConfirmationService(resolver *Resolver, roster ports.RosterSource, sessions ports.SessionStore, applier ports.IntentApplier, clock ports.Clock, opts ...Option) *ConfirmationService {
	if resolver == nil {
		resolver = DefaultResolver()
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}
	o := buildOptions(opts)

	return &ConfirmationService{
		resolver: resolver,
		roster:   roster,
		sessions: sessions,
		applier:  applier,
		clock:    clock,
		ids:      newIDSource(),
		logger:   o.logger,
		metrics:  o.metrics,
	}
}

func (s *ConfirmationService) Roster(ctx context.Context) (domain.Roster, error) {
	roster, err := s.roster.CurrentRoster(ctx)
	if err != nil {
		return domain.Roster{}, fmt.Errorf("load roster: %w", err)
	}
	return roster, nil
}

func (s *ConfirmationService) ResolveName(ctx context.Context, candidate string) (domain.Verdict, error) {
	roster, err := s.Roster(ctx)
	if err != nil {
		return domain.Verdict{}, err
	}

	verdict := s.resolver.ResolveName(candidate, roster)
	s.metrics.ObserveVerdict(verdict)
	s.logger.Debug("resolved name",
		zap.String("candidate", candidate),
		zap.String("verdict", string(verdict.Kind)),
		zap.String("suggested", verdict.SuggestedName),
		zap.Float64("score", verdict.Score),
	)

	return verdict, nil
}

// BeginPending stores a new pending confirmation for the session, replacing
// any earlier one.
func (s *ConfirmationService) BeginPending(ctx context.Context, sessionID domain.SessionID, candidate, suggestedName string, score float64, intent domain.Intent) (domain.PendingConfirmation, error) {
	var pending domain.PendingConfirmation
	_, err := s.sessions.Update(ctx, sessionID, func(session *domain.Session) error {
		pending = s.newPending(session.ID, candidate, suggestedName, score, intent)
		if session.Pending != nil {
			s.logger.Info("replacing pending confirmation",
				zap.String("session_id", string(session.ID)),
				zap.String("previous", session.Pending.ID),
				zap.String("intent", session.Pending.Intent.Describe()),
			)
		}
		session.Pending = &pending
		return nil
	})
	if err != nil {
		return domain.PendingConfirmation{}, fmt.Errorf("begin pending confirmation: %w", err)
	}

	return pending, nil
}

func (s *ConfirmationService) Pending(ctx context.Context, sessionID domain.SessionID) (*domain.PendingConfirmation, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session.Pending, nil
}

// Advance applies the user's reply to the session's outstanding confirmation.
// Replies that are neither a confirmation, a denial nor a name leave the
// pending confirmation in place and report OutcomeNotAReply.
func (s *ConfirmationService) Advance(ctx context.Context, sessionID domain.SessionID, reply string) (domain.AdvanceResult, error) {
	roster, err := s.Roster(ctx)
	if err != nil {
		return domain.AdvanceResult{}, err
	}

	var (
		result   domain.AdvanceResult
		applyErr error
	)
	_, err = s.sessions.Update(ctx, sessionID, func(session *domain.Session) error {
		result = domain.AdvanceResult{}
		applyErr = nil

		if session.Pending == nil {
			result.Outcome = domain.OutcomeNothingToConfirm
			return nil
		}
		previous := *session.Pending
		result.Previous = &previous

		classified := ClassifyReply(reply, roster)
		switch classified.Kind {
		case domain.ReplyConfirm:
			session.Pending = nil
			result.Outcome = domain.OutcomeApplied
			result.ResolvedName = previous.SuggestedName
			result.Result, applyErr = s.applier.Apply(ctx, previous.Intent, previous.SuggestedName)
		case domain.ReplyDeny:
			session.Pending = nil
			result.Outcome = domain.OutcomeCancelled
		case domain.ReplyOverride:
			verdict := s.resolver.ResolveName(classified.Name, roster)
			s.metrics.ObserveVerdict(verdict)
			result.Verdict = verdict
			switch verdict.Kind {
			case domain.VerdictAccepted:
				session.Pending = nil
				result.Outcome = domain.OutcomeApplied
				result.ResolvedName = verdict.Name
				result.Result, applyErr = s.applier.Apply(ctx, previous.Intent, verdict.Name)
			case domain.VerdictNeedsConfirmation:
				replacement := s.newPending(session.ID, verdict.Candidate, verdict.SuggestedName, verdict.Score, previous.Intent)
				session.Pending = &replacement
				result.Outcome = domain.OutcomeReconfirm
				result.Pending = &replacement
			default:
				session.Pending = nil
				result.Outcome = domain.OutcomeUnrecognized
			}
		default:
			result.Outcome = domain.OutcomeNotAReply
			result.Pending = &previous
		}

		return nil
	})
	if err != nil {
		return domain.AdvanceResult{}, fmt.Errorf("advance session %s: %w", sessionID, err)
	}

	s.metrics.ObserveAdvance(result.Outcome)
	s.logger.Debug("advanced confirmation",
		zap.String("session_id", string(sessionID)),
		zap.String("outcome", string(result.Outcome)),
		zap.String("resolved_name", result.ResolvedName),
	)

	if applyErr != nil {
		s.logger.Warn("apply confirmed intent failed",
			zap.String("session_id", string(sessionID)),
			zap.String("intent", result.Previous.Intent.Describe()),
			zap.Error(applyErr),
		)
		return result, fmt.Errorf("apply %s: %w", result.Previous.Intent.Describe(), applyErr)
	}

	return result, nil
}

func (s *ConfirmationService) ExpireIdle(ctx context.Context, idle time.Duration) (int, error) {
	removed, err := s.sessions.SweepExpired(ctx, idle)
	if err != nil {
		return 0, fmt.Errorf("sweep expired sessions: %w", err)
	}

	s.metrics.ObserveSweep(removed)
	if removed > 0 {
		s.logger.Info("expired idle sessions", zap.Int("removed", removed), zap.Duration("idle_timeout", idle))
	}

	return removed, nil
}

func (s *ConfirmationService) newPending(sessionID domain.SessionID, candidate, suggestedName string, score float64, intent domain.Intent) domain.PendingConfirmation {
	now := s.clock.Now()
	return domain.PendingConfirmation{
		ID:            s.ids.next(now),
		SessionID:     sessionID,
		Candidate:     candidate,
		SuggestedName: suggestedName,
		Score:         score,
		Intent:        intent,
		CreatedAt:     now,
	}
}

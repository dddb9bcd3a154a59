package application

import (
	"errors"
	"fmt"

	"github.com/bnema/taskmate/internal/domain"
)

const (
	DefaultAcceptThreshold  = 90.0
	DefaultConfirmThreshold = 70.0
)

var ErrInvalidThresholds = errors.New("invalid resolution thresholds")

type Thresholds struct {
	Accept  float64
	Confirm float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{Accept: DefaultAcceptThreshold, Confirm: DefaultConfirmThreshold}
}

func (t Thresholds) Validate() error {
	if t.Confirm < 0 || t.Accept > domain.MaxScore || t.Confirm >= t.Accept {
		return fmt.Errorf("%w: need 0 <= confirm (%.1f) < accept (%.1f) <= 100", ErrInvalidThresholds, t.Confirm, t.Accept)
	}

	return nil
}

// Policy maps a match score onto a verdict.
type Policy struct {
	thresholds Thresholds
}

func NewPolicy(thresholds Thresholds) (Policy, error) {
	if err := thresholds.Validate(); err != nil {
		return Policy{}, err
	}

	return Policy{thresholds: thresholds}, nil
}

func (p Policy) Thresholds() Thresholds {
	return p.thresholds
}

func (p Policy) Resolve(match domain.MatchResult) domain.Verdict {
	if !match.HasMatch() {
		return domain.Rejected(match.Candidate)
	}

	switch {
	case match.Score >= p.thresholds.Accept:
		verdict := domain.Accepted(match.MatchedName)
		verdict.Candidate = match.Candidate
		verdict.Score = match.Score
		return verdict
	case match.Score >= p.thresholds.Confirm:
		return domain.NeedsConfirmation(match.Candidate, match.MatchedName, match.Score)
	default:
		verdict := domain.Rejected(match.Candidate)
		verdict.Score = match.Score
		return verdict
	}
}

// Resolver combines a Matcher and a Policy.
type Resolver struct {
	matcher *Matcher
	policy  Policy
}

func NewResolver(matcher *Matcher, policy Policy) *Resolver {
	if matcher == nil {
		matcher = DefaultMatcher()
	}

	return &Resolver{matcher: matcher, policy: policy}
}

func DefaultResolver() *Resolver {
	return &Resolver{matcher: DefaultMatcher(), policy: Policy{thresholds: DefaultThresholds()}}
}

func (r *Resolver) ResolveName(candidate string, roster domain.Roster) domain.Verdict {
	return r.policy.Resolve(r.matcher.Match(candidate, roster))
}

func (r *Resolver) Match(candidate string, roster domain.Roster) domain.MatchResult {
	return r.matcher.Match(candidate, roster)
}

func (r *Resolver) Thresholds() Thresholds {
	return r.policy.thresholds
}

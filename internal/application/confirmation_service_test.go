package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/taskmate/internal/adapters/session/memory"
	"github.com/bnema/taskmate/internal/domain"
	"github.com/bnema/taskmate/internal/ports"
)

type confirmationFixture struct {
	svc      *ConfirmationService
	sessions *memory.Store
	applier  *recordingApplier
	clock    *steppingClock
}

func newConfirmationFixture(roster ports.RosterSource) confirmationFixture {
	clock := &steppingClock{now: testNow}
	sessions := memory.NewStore(clock)
	applier := &recordingApplier{}
	svc := NewConfirmationService(DefaultResolver(), roster, sessions, applier, clock)
	return confirmationFixture{svc: svc, sessions: sessions, applier: applier, clock: clock}
}

func createIntent(title string) domain.Intent {
	return domain.Intent{Kind: domain.IntentCreateTask, Title: title}
}

func beginRavePending(t *testing.T, f confirmationFixture, sessionID domain.SessionID) domain.PendingConfirmation {
	t.Helper()

	verdict, err := f.svc.ResolveName(context.Background(), "Rave")
	require.NoError(t, err)
	require.True(t, verdict.IsPending())

	pending, err := f.svc.BeginPending(context.Background(), sessionID, verdict.Candidate, verdict.SuggestedName, verdict.Score, createIntent("Write report"))
	require.NoError(t, err)
	return pending
}

func TestAdvanceConfirmAppliesSuggestedName(t *testing.T) {
	t.Parallel()

	f := newConfirmationFixture(testRoster())
	pending := beginRavePending(t, f, "s-1")
	assert.Equal(t, "Ravi", pending.SuggestedName)
	assert.NotEmpty(t, pending.ID)
	assert.Equal(t, testNow, pending.CreatedAt)

	result, err := f.svc.Advance(context.Background(), "s-1", "yes")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeApplied, result.Outcome)
	assert.Equal(t, "Ravi", result.ResolvedName)
	assert.Equal(t, "applied for Ravi", result.Result)

	calls := f.applier.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Ravi", calls[0].Name)
	assert.Equal(t, "Write report", calls[0].Intent.Title)

	current, err := f.svc.Pending(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestAdvanceDenyCancelsWithoutApplying(t *testing.T) {
	t.Parallel()

	f := newConfirmationFixture(testRoster())
	beginRavePending(t, f, "s-1")

	result, err := f.svc.Advance(context.Background(), "s-1", "no")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCancelled, result.Outcome)
	require.NotNil(t, result.Previous)
	assert.Empty(t, f.applier.calls())

	again, err := f.svc.Advance(context.Background(), "s-1", "no")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNothingToConfirm, again.Outcome)
	assert.Empty(t, f.applier.calls())
}

func TestSecondAmbiguousResolutionReplacesPending(t *testing.T) {
	t.Parallel()

	f := newConfirmationFixture(testRoster())
	first := beginRavePending(t, f, "s-1")

	verdict, err := f.svc.ResolveName(context.Background(), "Ankti")
	require.NoError(t, err)
	require.True(t, verdict.IsPending())
	second, err := f.svc.BeginPending(context.Background(), "s-1", verdict.Candidate, verdict.SuggestedName, verdict.Score, createIntent("Plan sprint"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	session, err := f.sessions.Get(context.Background(), "s-1")
	require.NoError(t, err)
	require.NotNil(t, session.Pending)
	assert.Equal(t, second.ID, session.Pending.ID)

	result, err := f.svc.Advance(context.Background(), "s-1", "yes")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeApplied, result.Outcome)

	calls := f.applier.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Ankita", calls[0].Name)
	assert.Equal(t, "Plan sprint", calls[0].Intent.Title)

	again, err := f.svc.Advance(context.Background(), "s-1", "yes")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNothingToConfirm, again.Outcome)
}

func TestAdvanceOverride(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		reply       string
		outcome     domain.Outcome
		appliedName string
		stillLive   bool
	}{
		{name: "accepted override applies", reply: "no, I meant Sam", outcome: domain.OutcomeApplied, appliedName: "Sam"},
		{name: "ambiguous override reconfirms", reply: "use Ankti", outcome: domain.OutcomeReconfirm, stillLive: true},
		{name: "unknown override is dropped", reply: "use Xyz123", outcome: domain.OutcomeUnrecognized},
		{name: "yes with another name applies that name", reply: "yes, use Sam", outcome: domain.OutcomeApplied, appliedName: "Sam"},
		{name: "sure but assign elsewhere", reply: "sure, but assign it to Sam", outcome: domain.OutcomeApplied, appliedName: "Sam"},
		{name: "no its fine cancels", reply: "no, it's fine", outcome: domain.OutcomeCancelled},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newConfirmationFixture(testRoster())
			first := beginRavePending(t, f, "s-1")

			result, err := f.svc.Advance(context.Background(), "s-1", tc.reply)
			require.NoError(t, err)
			assert.Equal(t, tc.outcome, result.Outcome)

			calls := f.applier.calls()
			if tc.appliedName != "" {
				require.Len(t, calls, 1)
				assert.Equal(t, tc.appliedName, calls[0].Name)
			} else {
				assert.Empty(t, calls)
			}

			current, err := f.svc.Pending(context.Background(), "s-1")
			require.NoError(t, err)
			if !tc.stillLive {
				assert.Nil(t, current)
				return
			}
			require.NotNil(t, current)
			assert.NotEqual(t, first.ID, current.ID)
			assert.Equal(t, "Ankita", current.SuggestedName)
			assert.Equal(t, first.Intent, current.Intent)
			require.NotNil(t, result.Pending)
			assert.Equal(t, current.ID, result.Pending.ID)
		})
	}
}

func TestAdvanceUnrelatedReplyKeepsPending(t *testing.T) {
	t.Parallel()

	f := newConfirmationFixture(testRoster())
	pending := beginRavePending(t, f, "s-1")

	for _, reply := range []string{"show me the high priority tasks", "ok, now show me all tasks"} {
		result, err := f.svc.Advance(context.Background(), "s-1", reply)
		require.NoError(t, err)
		assert.Equalf(t, domain.OutcomeNotAReply, result.Outcome, "reply %q", reply)
	}
	assert.Empty(t, f.applier.calls())

	current, err := f.svc.Pending(context.Background(), "s-1")
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, pending.ID, current.ID)
}

func TestAdvanceUnknownSessionHasNothingToConfirm(t *testing.T) {
	t.Parallel()

	f := newConfirmationFixture(testRoster())
	result, err := f.svc.Advance(context.Background(), "never-seen", "yes")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNothingToConfirm, result.Outcome)
	assert.Empty(t, f.applier.calls())

	_, err = f.sessions.Get(context.Background(), "never-seen")
	require.NoError(t, err)
}

func TestExpiredSessionDropsPending(t *testing.T) {
	t.Parallel()

	f := newConfirmationFixture(testRoster())
	beginRavePending(t, f, "s-1")

	f.clock.Advance(25 * time.Hour)
	removed, err := f.svc.ExpireIdle(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	result, err := f.svc.Advance(context.Background(), "s-1", "yes")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNothingToConfirm, result.Outcome)
	assert.Empty(t, f.applier.calls())
}

func TestApplyFailureClearsPendingAndReturnsError(t *testing.T) {
	t.Parallel()

	f := newConfirmationFixture(testRoster())
	f.applier.err = errors.New("store unavailable")
	beginRavePending(t, f, "s-1")

	_, err := f.svc.Advance(context.Background(), "s-1", "yes")
	require.ErrorContains(t, err, "store unavailable")

	current, err := f.svc.Pending(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestResolveNameWithEmptyRosterRejects(t *testing.T) {
	t.Parallel()

	f := newConfirmationFixture(ports.StaticRoster(domain.NewRoster()))
	verdict, err := f.svc.ResolveName(context.Background(), "Ravi")
	require.NoError(t, err)
	assert.True(t, verdict.IsRejected())

	roster, err := f.svc.Roster(context.Background())
	require.NoError(t, err)
	assert.Contains(t, UnrecognizedName("Ravi", roster), "no known team members configured")
}

package domain

const MaxScore = 100.0

type MatchResult struct {
	Candidate string
	// MatchedName is empty when the candidate was blank or the roster empty.
	MatchedName string
	Score       float64
}

func (m MatchResult) HasMatch() bool {
	return m.MatchedName != ""
}

type VerdictKind string

const (
	VerdictRejected          VerdictKind = "rejected"
	VerdictNeedsConfirmation VerdictKind = "needs_confirmation"
	VerdictAccepted          VerdictKind = "accepted"
)

// Verdict is the closed outcome of resolving one candidate name. Only the
// fields relevant to Kind are populated.
type Verdict struct {
	Kind          VerdictKind
	Name          string
	Candidate     string
	SuggestedName string
	Score         float64
}

func Accepted(name string) Verdict {
	return Verdict{Kind: VerdictAccepted, Name: name, Candidate: name, Score: MaxScore}
}

func NeedsConfirmation(candidate, suggestedName string, score float64) Verdict {
	return Verdict{Kind: VerdictNeedsConfirmation, Candidate: candidate, SuggestedName: suggestedName, Score: score}
}

func Rejected(candidate string) Verdict {
	return Verdict{Kind: VerdictRejected, Candidate: candidate}
}

func (v Verdict) IsAccepted() bool {
	return v.Kind == VerdictAccepted
}

func (v Verdict) IsRejected() bool {
	return v.Kind == VerdictRejected
}

func (v Verdict) IsPending() bool {
	return v.Kind == VerdictNeedsConfirmation
}

// Tier orders verdicts by strictness: Rejected < NeedsConfirmation < Accepted.
func (v Verdict) Tier() int {
	switch v.Kind {
	case VerdictAccepted:
		return 2
	case VerdictNeedsConfirmation:
		return 1
	default:
		return 0
	}
}

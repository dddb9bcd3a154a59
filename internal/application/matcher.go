package application

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/bnema/taskmate/internal/domain"
)

type MetricName string

const (
	MetricJaro        MetricName = "jaro"
	MetricJaroWinkler MetricName = "jaro-winkler"
	MetricLevenshtein MetricName = "levenshtein"
)

func (m MetricName) Valid() bool {
	switch m {
	case MetricJaro, MetricJaroWinkler, MetricLevenshtein:
		return true
	default:
		return false
	}
}

// Matcher scores a candidate against every roster entry and keeps the best.
// Both sides are lower-cased and token-sorted before scoring, so word order
// does not matter.
type Matcher struct {
	metric strutil.StringMetric
}

func NewMatcher(name MetricName) (*Matcher, error) {
	var metric strutil.StringMetric
	switch name {
	case "", MetricJaro:
		metric = metrics.NewJaro()
	case MetricJaroWinkler:
		metric = metrics.NewJaroWinkler()
	case MetricLevenshtein:
		metric = metrics.NewLevenshtein()
	default:
		return nil, fmt.Errorf("unsupported similarity metric %q", name)
	}

	return &Matcher{metric: metric}, nil
}

func DefaultMatcher() *Matcher {
	return &Matcher{metric: metrics.NewJaro()}
}

func (m *Matcher) Match(candidate string, roster domain.Roster) domain.MatchResult {
	result := domain.MatchResult{Candidate: candidate}
	normalized := normalizeName(candidate)
	if normalized == "" || roster.IsEmpty() {
		return result
	}

	for _, name := range roster.Names() {
		score := m.Score(normalized, normalizeName(name))
		// strict comparison keeps the first entry on ties
		if result.MatchedName == "" || score > result.Score {
			result.MatchedName = name
			result.Score = score
		}
	}

	return result
}

// Score returns the similarity of two already normalized strings on a 0-100 scale.
func (m *Matcher) Score(a, b string) float64 {
	if a == b {
		return domain.MaxScore
	}
	if a == "" || b == "" {
		return 0
	}

	score := strutil.Similarity(a, b, m.metric) * domain.MaxScore
	switch {
	case score < 0:
		return 0
	case score > domain.MaxScore:
		return domain.MaxScore
	default:
		return score
	}
}

func normalizeName(value string) string {
	tokens := strings.FieldsFunc(strings.ToLower(value), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

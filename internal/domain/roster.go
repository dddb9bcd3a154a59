package domain

import "strings"

// Roster is the ordered set of team member names that candidate names resolve
// against. Lookups are case-insensitive; the first spelling seen is canonical.
type Roster struct {
	names []string
}

func NewRoster(names ...string) Roster {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}

	return Roster{names: out}
}

// Names returns a copy in roster order.
func (r Roster) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

func (r Roster) Len() int {
	return len(r.names)
}

func (r Roster) IsEmpty() bool {
	return len(r.names) == 0
}

func (r Roster) Canonical(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	for _, member := range r.names {
		if strings.EqualFold(member, trimmed) {
			return member, true
		}
	}

	return "", false
}

func (r Roster) Contains(name string) bool {
	_, ok := r.Canonical(name)
	return ok
}

func (r Roster) With(name string) Roster {
	return NewRoster(append(r.Names(), name)...)
}

func (r Roster) Without(name string) Roster {
	kept := make([]string, 0, len(r.names))
	for _, member := range r.names {
		if strings.EqualFold(member, strings.TrimSpace(name)) {
			continue
		}
		kept = append(kept, member)
	}

	return Roster{names: kept}
}

func (r Roster) String() string {
	return strings.Join(r.names, ", ")
}

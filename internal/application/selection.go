package application

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bnema/taskmate/internal/domain"
)

var (
	selectAllWords  = wordSet("all", "yes", "create all", "all of them", "everything")
	selectNoneWords = wordSet("none", "cancel", "no", "nope", "nothing", "none of them")
)

// ParseSelection reads which of total numbered suggestions the user wants,
// such as "1,3,5", "2-4", "1 and 3" or "all". It returns zero-based indices in
// ascending order; an empty slice means the user declined every suggestion.
// Numbers outside 1..total are ignored.
func ParseSelection(selection string, total int) ([]int, error) {
	key := replyKey(selection)
	if _, ok := selectNoneWords[key]; ok {
		return []int{}, nil
	}
	if _, ok := selectAllWords[key]; ok {
		all := make([]int, total)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}

	parts := strings.FieldsFunc(strings.ToLower(selection), func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '#'
	})
	if len(parts) == 0 {
		return nil, errNoSelection
	}

	picked := map[int]struct{}{}
	for _, part := range parts {
		if part == "and" || part == "&" {
			continue
		}
		first, last, err := selectionRange(part)
		if err != nil {
			return nil, err
		}
		for n := first; n <= last; n++ {
			if n >= 1 && n <= total {
				picked[n-1] = struct{}{}
			}
		}
	}
	if len(picked) == 0 {
		return nil, errNoSelection
	}

	out := make([]int, 0, len(picked))
	for idx := range picked {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out, nil
}

var errNoSelection = fmt.Errorf("%w: no valid task numbers found, pick tasks like '1,3,5', '1-3' or 'all'", domain.ErrInvalidTask)

func selectionRange(part string) (int, int, error) {
	lo, hi, isRange := strings.Cut(part, "-")
	first, err := strconv.Atoi(lo)
	if err != nil {
		return 0, 0, errNoSelection
	}
	if !isRange {
		return first, first, nil
	}
	last, err := strconv.Atoi(hi)
	if err != nil || last < first {
		return 0, 0, errNoSelection
	}
	return first, last, nil
}

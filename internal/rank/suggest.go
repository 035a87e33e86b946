package rank

import (
	"slices"
	"strings"
)

// maxSuggestions caps the autocomplete result size.
const maxSuggestions = 3

// shortInputLen is the typed length below which only prefix matches are
// considered, to suppress noisy partial matches on short input.
const shortInputLen = 3

// Suggest returns up to three history entries matching typed, ranked by
// buy count descending then alphabetically. Entries whose lowercased name
// is in active are excluded, as is an exact match of the typed text.
func (s *Stats) Suggest(typed string, active map[string]bool) []string {
	search := strings.ToLower(strings.TrimSpace(typed))
	if search == "" {
		return nil
	}

	var candidates []string

	for _, entry := range s.History {
		lower := strings.ToLower(entry)

		if active[lower] {
			continue
		}

		if lower == search {
			continue
		}

		if len(search) < shortInputLen {
			if !strings.HasPrefix(lower, search) {
				continue
			}
		} else if !strings.Contains(lower, search) {
			continue
		}

		candidates = append(candidates, entry)
	}

	slices.SortStableFunc(candidates, func(a, b string) int {
		countA := s.BuyCount(a)
		countB := s.BuyCount(b)

		if countA != countB {
			return countB - countA
		}

		return strings.Compare(a, b)
	})

	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}

	return candidates
}

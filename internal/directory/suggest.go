package directory

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// minSuggestSimilarity is the word similarity a listing needs to be offered
// as a "did you mean" candidate.
const minSuggestSimilarity = 0.6

// Suggest ranks listings that nearly match query, for searches that return
// nothing. Each name and area word is compared with the query and the best
// word similarity decides the rank. Ties keep seed order.
func (s *Store) Suggest(query string, limit int) []Listing {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" || limit <= 0 {
		return nil
	}

	type scored struct {
		listing Listing
		score   float64
		pos     int
	}

	s.mu.RLock()
	var candidates []scored
	for pos, id := range s.order {
		l := s.byID[id]
		best := 0.0
		for _, word := range words(l.Name + " " + l.Area) {
			if sim := similarity(needle, word); sim > best {
				best = sim
			}
		}
		if best >= minSuggestSimilarity {
			candidates = append(candidates, scored{listing: *l, score: best, pos: pos})
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].pos < candidates[j].pos
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]Listing, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.listing)
	}
	return out
}

func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return r == ' ' || r == '(' || r == ')' || r == '-' || r == ',' || r == '\''
	})
}

func similarity(a, b string) float64 {
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 0
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

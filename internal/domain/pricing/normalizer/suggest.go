package normalizer

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// SuggestHeader finds the candidate header closest to name, for "did you
// mean" diagnostics when a metadata row names a column the price table does
// not have. Candidates that contain name as a case-insensitive subsequence
// are preferred; otherwise the nearest by edit distance is accepted when it
// is within a third of the name's length.
func SuggestHeader(name string, candidates []string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" || len(candidates) == 0 {
		return "", false
	}

	if ranks := fuzzy.RankFindNormalizedFold(name, candidates); len(ranks) > 0 {
		sort.Stable(ranks)
		return ranks[0].Target, true
	}

	lowered := strings.ToLower(name)
	limit := len([]rune(lowered)) / 3
	if limit < 2 {
		limit = 2
	}

	best, bestDistance := "", -1
	for _, c := range candidates {
		d := fuzzy.LevenshteinDistance(lowered, strings.ToLower(c))
		if d <= limit && (bestDistance < 0 || d < bestDistance) {
			best, bestDistance = c, d
		}
	}
	return best, bestDistance >= 0
}

package titles

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// AcceptanceThreshold is the minimum similarity for a fuzzy match.
// Lowering it admits false links; raising it starves matches.
const AcceptanceThreshold = 0.90

// Match describes an accepted candidate.
type Match struct {
	Index int     // position in the candidate slice, search-result order
	Score float64 // similarity in [0,1]; 1.0 for exact matches
	Exact bool    // normalized keys were equal
}

// Similarity returns a normalized, symmetric similarity score in [0,1]
// based on Levenshtein edit distance over runes.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}

	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}

	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// Resolve selects at most one candidate for a raw title.
//
// The first candidate whose normalized title exactly equals the input's
// normalized title wins outright. Otherwise the highest-scoring candidate is
// accepted when its similarity reaches AcceptanceThreshold (inclusive); ties
// keep the first-seen candidate. Empty titles and empty candidates never match.
func Resolve(title string, candidates []string) (Match, bool) {
	key := Normalize(title)
	if key == "" {
		return Match{}, false
	}

	best := Match{Index: -1}
	for i, candidate := range candidates {
		candidateKey := Normalize(candidate)
		if candidateKey == "" {
			continue
		}

		if candidateKey == key {
			return Match{Index: i, Score: 1, Exact: true}, true
		}

		score := Similarity(key, candidateKey)
		if score > best.Score {
			best = Match{Index: i, Score: score}
		}
	}

	if best.Index >= 0 && best.Score >= AcceptanceThreshold {
		return best, true
	}
	return Match{}, false
}

package issues

import (
	"sort"
	"strings"
)

const (
	// MaxSuggestionDistance is the largest edit distance still suggested.
	MaxSuggestionDistance = 3
	// MaxSuggestions caps how many names are suggested.
	MaxSuggestions = 3
)

// SimilarNames returns up to MaxSuggestions candidates within
// MaxSuggestionDistance edits of token, closest first. Ties keep candidate
// order. Comparison is case-insensitive.
func SimilarNames(token string, candidates []string) []string {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return nil
	}

	type match struct {
		name string
		dist int
	}
	var matches []match
	for _, c := range candidates {
		d := Levenshtein(token, strings.ToLower(c))
		if d <= MaxSuggestionDistance {
			matches = append(matches, match{name: c, dist: d})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].dist < matches[j].dist
	})

	if len(matches) > MaxSuggestions {
		matches = matches[:MaxSuggestions]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.name
	}
	return out
}

// Levenshtein returns the rune-level edit distance between a and b.
func Levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	r1, r2 := []rune(a), []rune(b)
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	prev := make([]int, len(r2)+1)
	cur := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(r1); i++ {
		cur[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			cur[j] = min(
				prev[j]+1,      // deletion
				cur[j-1]+1,     // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, cur = cur, prev
	}
	return prev[len(r2)]
}

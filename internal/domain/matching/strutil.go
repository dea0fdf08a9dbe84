package matching

import (
	"strings"
)

// TitleSimilarity is a fuzzy partial-string similarity in [0,1]. It slides
// the shorter title across the longer one and keeps the best Levenshtein
// ratio of any window, so "senior backend engineer" still scores high
// against "backend engineer". Zero when either title is empty.
func TitleSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	return partialRatio([]rune(a), []rune(b))
}

func partialRatio(a, b []rune) float64 {
	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 {
		return 0
	}

	best := 0.0
	for start := 0; start+len(shorter) <= len(longer); start++ {
		window := longer[start : start+len(shorter)]
		r := levenshteinRatio(shorter, window)
		if r > best {
			best = r
		}
		if best == 1.0 {
			break
		}
	}
	return best
}

func levenshteinRatio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1
	}
	d := levenshtein(a, b)
	r := float64(total-2*d) / float64(total)
	if r < 0 {
		return 0
	}
	return r
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

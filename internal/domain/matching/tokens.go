package matching

import (
	"regexp"
	"strings"
)

var tokenRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Small stop-word set for the semantic token overlap. Intentionally tiny:
// the similarity is a cheap co-occurrence signal, not text understanding.
var semanticStopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {},
}

// SemanticTokens splits a free-text blob into lowercase word tokens longer
// than two characters, minus stop words.
func SemanticTokens(text string) map[string]struct{} {
	if text == "" {
		return map[string]struct{}{}
	}
	out := make(map[string]struct{})
	for _, tok := range tokenRe.FindAllString(text, -1) {
		if len([]rune(tok)) <= 2 {
			continue
		}
		tok = strings.ToLower(tok)
		if _, stop := semanticStopWords[tok]; stop {
			continue
		}
		out[tok] = struct{}{}
	}
	return out
}

// SemanticSimilarity is the raw token-overlap score |A∩B| / max(|A|,|B|),
// zero when either side has no tokens. Callers on the ranking path are
// expected to skip it entirely when the semantic weight is zero; this raw
// variant always computes and feeds the explain path.
func SemanticSimilarity(aText, bText string) float64 {
	a := SemanticTokens(aText)
	b := SemanticTokens(bText)
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	for tok := range small {
		if _, ok := large[tok]; ok {
			inter++
		}
	}
	return float64(inter) / float64(max(len(a), len(b)))
}

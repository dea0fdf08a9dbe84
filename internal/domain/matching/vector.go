package matching

import "math"

// Dimensionality of the structural embedding written to profiles.
const EmbeddingDims = 32

// HashVector builds a cheap structural embedding from text: character values
// folded into a fixed-length vector modulo a prime, normalized by the maximum
// component. Deterministic, not learned.
func HashVector(text string, dims int) []float64 {
	if dims <= 0 {
		dims = EmbeddingDims
	}
	vec := make([]float64, dims)
	if text == "" {
		return vec
	}

	runes := []rune(text)
	if len(runes) > 4000 {
		runes = runes[:4000]
	}
	acc := make([]int, dims)
	for i, r := range runes {
		acc[i%dims] = (acc[i%dims] + int(r)) % 9973
	}

	maxV := 0
	for _, v := range acc {
		if v > maxV {
			maxV = v
		}
	}
	if maxV == 0 {
		maxV = 1
	}
	for i, v := range acc {
		vec[i] = float64(v) / float64(maxV)
	}
	return vec
}

// CosineSimilarity over the first min(len(a), len(b)) dimensions. Zero when
// either vector is absent or has zero norm.
func CosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}

	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

package matching

import (
	"math"
	"sort"
	"sync"

	"talent-match/internal/domain/geo"
	"talent-match/internal/domain/profile"
	"talent-match/internal/domain/taxonomy"
)

// Score assigned to the optional placeholder emitted when a non-empty
// population produces zero positive-score results.
const placeholderScore = 0.01

// Engine computes composite match scores between seekers and postings. It is
// safe for concurrent use; weight mutation goes through the setter methods.
type Engine struct {
	mu      sync.RWMutex
	weights Weights

	tax      *taxonomy.Taxonomy
	resolver *geo.Resolver

	// AllowPlaceholder enables the degenerate single-result fallback for
	// zero-result rankings over a non-empty population. Off by default; a
	// demo affordance, not a correctness feature.
	allowPlaceholder bool
}

func NewEngine(tax *taxonomy.Taxonomy, resolver *geo.Resolver, w Weights, allowPlaceholder bool) *Engine {
	return &Engine{
		tax:              tax,
		resolver:         resolver,
		weights:          w,
		allowPlaceholder: allowPlaceholder,
	}
}

// Score computes the composite match of one counterpart against the subject.
// Deterministic for identical inputs and weights.
func (e *Engine) Score(subject, counterpart profile.Profile, dir Direction) MatchResult {
	return e.score(subject, counterpart, dir, e.Weights())
}

func (e *Engine) score(subject, counterpart profile.Profile, dir Direction, w Weights) MatchResult {
	canon := e.tax.CanonicalSkill

	subjSkills := subject.SkillKeySet(canon)
	cpSkills := counterpart.SkillKeySet(canon)

	skillScore := e.skillScore(subject, counterpart, subjSkills, cpSkills, w, canon)
	titleScore := TitleSimilarity(subject.Title, counterpart.Title)

	semScore := 0.0
	if w.Semantic > 0 {
		semScore = SemanticSimilarity(subject.TextBlob, counterpart.TextBlob)
	}
	vecScore := 0.0
	if w.Vector > 0 {
		vecScore = CosineSimilarity(ensureEmbedding(subject), ensureEmbedding(counterpart))
	}

	distKm := e.distanceKm(subject, counterpart)
	distScore := geo.DecayScore(distKm)

	composite := w.Skill*skillScore + w.Title*titleScore + w.Semantic*semScore + w.Vector*vecScore + w.Distance*distScore

	res := MatchResult{
		CounterpartID: counterpart.ID,
		Title:         counterpart.Title,
		City:          displayCity(counterpart),
		Score:         round4(composite),
		SkillScore:    round4(skillScore),
		TitleScore:    round4(titleScore),
		SemanticScore: round4(semScore),
		VectorScore:   round4(vecScore),
		DistanceScore: round4(distScore),
		DistanceKm:    distKm,
		SkillsOverlap: sortedIntersection(subjSkills, cpSkills),
	}
	e.fillBadges(&res, subject, counterpart, dir, canon)
	return res
}

// skillScore applies the tiered must/needed formula when either side carries
// tier metadata, otherwise a Jaccard-style overlap. Two empty sets score 0,
// never 1.
func (e *Engine) skillScore(subject, counterpart profile.Profile, subjSkills, cpSkills map[string]struct{}, w Weights, canon profile.CanonFunc) float64 {
	if subject.HasTierMetadata() || counterpart.HasTierMetadata() {
		cpMust, cpNeeded := counterpart.SplitByTier(canon)

		union := len(keyUnion(subjSkills, cpSkills))
		if union == 0 {
			union = 1
		}
		interMust := intersectionSize(subjSkills, cpMust)
		interNeeded := intersectionSize(subjSkills, cpNeeded)

		mustRatio := float64(interMust) / float64(union)
		neededRatio := float64(interNeeded) / float64(union)
		return w.Must*mustRatio + w.Needed*neededRatio
	}

	if len(subjSkills) == 0 || len(cpSkills) == 0 {
		return 0
	}
	inter := intersectionSize(subjSkills, cpSkills)
	return float64(inter) / float64(max(len(subjSkills), len(cpSkills)))
}

// fillBadges attaches the posting-side mandatory/desirable lists, each skill
// flagged as matched against the seeker side.
func (e *Engine) fillBadges(res *MatchResult, subject, counterpart profile.Profile, dir Direction, canon profile.CanonFunc) {
	posting, seeker := counterpart, subject
	if dir == DirectionPostingToSeeker {
		posting, seeker = subject, counterpart
	}

	mustSet, niceSet := posting.SplitByTier(canon)
	if len(mustSet) == 0 && len(niceSet) == 0 {
		niceSet = posting.SkillKeySet(canon)
	}
	seekerSkills := seeker.SkillKeySet(canon)

	mustNames := sortedKeys(mustSet)
	niceNames := sortedKeys(niceSet)

	res.MustSkills = make([]SkillBadge, 0, len(mustNames))
	for _, n := range mustNames {
		b := SkillBadge{Name: n}
		if _, ok := seekerSkills[n]; ok {
			b.Matched = true
			res.MatchedMust++
		}
		res.MustSkills = append(res.MustSkills, b)
	}
	res.NiceSkills = make([]SkillBadge, 0, len(niceNames))
	for _, n := range niceNames {
		b := SkillBadge{Name: n}
		if _, ok := seekerSkills[n]; ok {
			b.Matched = true
			res.MatchedNice++
		}
		res.NiceSkills = append(res.NiceSkills, b)
	}
	res.TotalMust = len(mustNames)
	res.TotalNice = len(niceNames)
}

// Rank scores every counterpart, drops non-positive composites, stable-sorts
// descending (ties keep input order) and truncates to topK. locationFilter
// excludes counterparts beyond the decay upper bound; when coordinates are
// unknown it falls back to a strict same-city check only while the distance
// weight is zero.
func (e *Engine) Rank(subject profile.Profile, counterparts []profile.Profile, dir Direction, topK int, locationFilter bool) []MatchResult {
	w := e.Weights()

	results := make([]MatchResult, 0, len(counterparts))
	for _, cp := range counterparts {
		if locationFilter && e.excludeByLocation(subject, cp, w) {
			continue
		}
		r := e.score(subject, cp, dir, w)
		if r.Score <= 0 {
			continue
		}
		results = append(results, r)
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })

	if len(results) == 0 && e.allowPlaceholder && len(counterparts) > 0 {
		cp := counterparts[0]
		results = append(results, MatchResult{
			CounterpartID: cp.ID,
			Title:         cp.Title,
			City:          displayCity(cp),
			Score:         placeholderScore,
			SkillsOverlap: []string{},
			MustSkills:    []SkillBadge{},
			NiceSkills:    []SkillBadge{},
		})
	}

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results
}

// Explain returns the raw, weight-independent breakdown for one pair. Every
// component is computed here even when its ranking weight is zero.
func (e *Engine) Explain(subject, counterpart profile.Profile, dir Direction) Breakdown {
	w := e.Weights()
	canon := e.tax.CanonicalSkill

	subjSkills := subject.SkillKeySet(canon)
	cpSkills := counterpart.SkillKeySet(canon)

	skillScore := e.skillScore(subject, counterpart, subjSkills, cpSkills, w, canon)
	titleScore := TitleSimilarity(subject.Title, counterpart.Title)
	semScore := SemanticSimilarity(subject.TextBlob, counterpart.TextBlob)
	vecScore := CosineSimilarity(ensureEmbedding(subject), ensureEmbedding(counterpart))
	distKm := e.distanceKm(subject, counterpart)
	distScore := geo.DecayScore(distKm)

	return Breakdown{
		SkillScore:    round4(skillScore),
		TitleScore:    round4(titleScore),
		SemanticScore: round4(semScore),
		VectorScore:   round4(vecScore),
		DistanceScore: round4(distScore),
		DistanceKm:    distKm,
		Composite:     round4(w.Skill*skillScore + w.Title*titleScore + w.Semantic*semScore + w.Vector*vecScore + w.Distance*distScore),
	}
}

func (e *Engine) distanceKm(a, b profile.Profile) *float64 {
	ca, okA := e.resolveCity(a)
	cb, okB := e.resolveCity(b)
	if !okA || !okB {
		return nil
	}
	km := geo.DistanceKm(ca, cb)
	return &km
}

func (e *Engine) excludeByLocation(subject, cp profile.Profile, w Weights) bool {
	if km := e.distanceKm(subject, cp); km != nil {
		return *km > geo.DecayZeroKm
	}
	if w.Distance > 0 {
		return false
	}
	a := geo.CanonicalCity(cityOf(subject))
	b := geo.CanonicalCity(cityOf(cp))
	return a != "" && b != "" && a != b
}

func (e *Engine) resolveCity(p profile.Profile) (geo.Coord, bool) {
	return e.resolver.Resolve(cityOf(p))
}

func cityOf(p profile.Profile) string {
	if p.CityCanonical != "" {
		return p.CityCanonical
	}
	return p.City
}

func displayCity(p profile.Profile) string {
	if p.City != "" {
		return p.City
	}
	return p.CityCanonical
}

func ensureEmbedding(p profile.Profile) []float64 {
	if len(p.Embedding) > 0 {
		return p.Embedding
	}
	return HashVector(p.TextBlob, EmbeddingDims)
}

func keyUnion(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}

func intersectionSize(a, b map[string]struct{}) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

func sortedIntersection(a, b map[string]struct{}) []string {
	if len(a) > len(b) {
		a, b = b, a
	}
	out := make([]string, 0)
	for k := range a {
		if _, ok := b[k]; ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

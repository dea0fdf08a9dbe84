package matching

import (
	"math"
	"testing"

	"talent-match/internal/domain/geo"
	"talent-match/internal/domain/profile"
	"talent-match/internal/domain/taxonomy"
)

func defaultWeights() Weights {
	return Weights{Skill: 0.85, Title: 0.15, Distance: 0.35, Must: 0.7, Needed: 0.3}
}

func newTestEngine(placeholder bool) *Engine {
	resolver := geo.NewResolver()
	resolver.Add("Berlin", geo.Coord{Lat: 52.52, Lon: 13.405})
	resolver.Add("Potsdam", geo.Coord{Lat: 52.3906, Lon: 13.0645})
	resolver.Add("München", geo.Coord{Lat: 48.1374, Lon: 11.5755})
	return NewEngine(taxonomy.NewStatic(nil, nil), resolver, defaultWeights(), placeholder)
}

func seekerProfile(id, title, city string, skills ...string) profile.Profile {
	refs := make(profile.SkillRefList, 0, len(skills))
	for _, s := range skills {
		refs = append(refs, profile.SkillRef{Name: s})
	}
	return profile.Profile{ID: id, Title: title, City: city, SkillSetRaw: refs}
}

func postingProfile(id, title, city string, must, nice []string) profile.Profile {
	toRefs := func(names []string) profile.SkillRefList {
		refs := make(profile.SkillRefList, 0, len(names))
		for _, n := range names {
			refs = append(refs, profile.SkillRef{Name: n})
		}
		return refs
	}
	return profile.Profile{
		ID: id, Title: title, City: city,
		Requirements: &profile.Requirements{
			MustHaveSkills:   toRefs(must),
			NiceToHaveSkills: toRefs(nice),
		},
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScoreTieredExample(t *testing.T) {
	e := newTestEngine(false)

	seeker := seekerProfile("s1", "Vertriebsmitarbeiter", "Berlin", "Office", "CRM")
	posting := postingProfile("p1", "Vertriebsmitarbeiter", "Berlin",
		[]string{"Office"}, []string{"CRM", "Excel"})

	res := e.Score(seeker, posting, DirectionSeekerToPosting)

	// Tiered skill score over the union of three keys: 0.7/3 + 0.3/3
	if !almostEqual(res.SkillScore, 0.3333) {
		t.Fatalf("skill score = %v, want 0.3333", res.SkillScore)
	}
	if res.TitleScore != 1.0 {
		t.Fatalf("title score = %v, want 1.0", res.TitleScore)
	}
	if res.DistanceScore != 1.0 {
		t.Fatalf("distance score = %v, want 1.0 for the same city", res.DistanceScore)
	}
	if res.DistanceKm == nil || *res.DistanceKm != 0 {
		t.Fatalf("distance km = %v, want 0", res.DistanceKm)
	}
	if !almostEqual(res.Score, 0.7833) {
		t.Fatalf("composite = %v, want 0.7833", res.Score)
	}

	if res.TotalMust != 1 || res.MatchedMust != 1 {
		t.Fatalf("must badges = %d/%d, want 1/1", res.MatchedMust, res.TotalMust)
	}
	if res.TotalNice != 2 || res.MatchedNice != 1 {
		t.Fatalf("nice badges = %d/%d, want 1/2", res.MatchedNice, res.TotalNice)
	}
	if len(res.SkillsOverlap) != 2 || res.SkillsOverlap[0] != "crm" || res.SkillsOverlap[1] != "office" {
		t.Fatalf("overlap = %v, want [crm office]", res.SkillsOverlap)
	}
}

func TestScoreDeterministic(t *testing.T) {
	e := newTestEngine(false)
	seeker := seekerProfile("s1", "Koch", "Berlin", "Kochen", "HACCP")
	posting := postingProfile("p1", "Koch (m/w/d)", "Potsdam", []string{"Kochen"}, nil)

	first := e.Score(seeker, posting, DirectionSeekerToPosting)
	for i := 0; i < 5; i++ {
		if got := e.Score(seeker, posting, DirectionSeekerToPosting); got.Score != first.Score {
			t.Fatalf("score not deterministic: %v != %v", got.Score, first.Score)
		}
	}
}

func TestSkillScoreJaccardWithoutTiers(t *testing.T) {
	e := newTestEngine(false)
	a := seekerProfile("a", "", "", "Go", "SQL")
	b := seekerProfile("b", "", "", "Go", "Python", "Rust")

	res := e.Score(a, b, DirectionSeekerToPosting)
	if !almostEqual(res.SkillScore, 0.3333) {
		t.Fatalf("jaccard skill score = %v, want 1/3", res.SkillScore)
	}
}

func TestSkillScoreEmptySetsAreZero(t *testing.T) {
	e := newTestEngine(false)
	empty := seekerProfile("a", "", "")
	other := seekerProfile("b", "", "", "Go")

	if got := e.Score(empty, other, DirectionSeekerToPosting).SkillScore; got != 0 {
		t.Fatalf("empty vs non-empty = %v, want 0", got)
	}
	if got := e.Score(empty, empty, DirectionSeekerToPosting).SkillScore; got != 0 {
		t.Fatalf("two empty sets = %v, want 0 not 1", got)
	}
}

func TestBadgesFollowPostingSide(t *testing.T) {
	e := newTestEngine(false)
	seeker := seekerProfile("s1", "Verkäufer", "Berlin", "Kasse")
	posting := postingProfile("p1", "Verkäufer", "Berlin", []string{"Kasse"}, []string{"Inventur"})

	// Reverse direction: the posting is the subject, badges still describe
	// the posting's requirements.
	res := e.Score(posting, seeker, DirectionPostingToSeeker)
	if res.TotalMust != 1 || res.MatchedMust != 1 {
		t.Fatalf("must badges = %d/%d, want 1/1", res.MatchedMust, res.TotalMust)
	}
	if res.TotalNice != 1 || res.MatchedNice != 0 {
		t.Fatalf("nice badges = %d/%d, want 0/1", res.MatchedNice, res.TotalNice)
	}
}

func TestPostingWithoutTiersBadgesAsDesirable(t *testing.T) {
	e := newTestEngine(false)
	seeker := seekerProfile("s1", "", "", "Go")
	posting := seekerProfile("p1", "", "", "Go", "SQL")

	res := e.Score(seeker, posting, DirectionSeekerToPosting)
	if res.TotalMust != 0 {
		t.Fatalf("untiered posting must badges = %d, want 0", res.TotalMust)
	}
	if res.TotalNice != 2 || res.MatchedNice != 1 {
		t.Fatalf("nice badges = %d/%d, want 1/2", res.MatchedNice, res.TotalNice)
	}
}

func TestRankOrdersAndTruncates(t *testing.T) {
	e := newTestEngine(false)
	seeker := seekerProfile("s1", "Verkäufer", "Berlin", "Kasse", "Beratung")

	counterparts := []profile.Profile{
		postingProfile("weak", "Lagerist", "Berlin", []string{"Stapler"}, nil),
		postingProfile("strong", "Verkäufer", "Berlin", []string{"Kasse"}, []string{"Beratung"}),
		postingProfile("medium", "Verkäufer", "München", []string{"Kasse"}, nil),
	}

	results := e.Rank(seeker, counterparts, DirectionSeekerToPosting, 2, false)
	if len(results) != 2 {
		t.Fatalf("expected topK=2 results, got %d", len(results))
	}
	if results[0].CounterpartID != "strong" {
		t.Fatalf("best = %q, want strong", results[0].CounterpartID)
	}
	if results[0].Score < results[1].Score {
		t.Fatalf("results not sorted descending")
	}
}

func TestRankFiltersNonPositive(t *testing.T) {
	e := newTestEngine(false)
	seeker := seekerProfile("s1", "", "", "Kasse")
	counterparts := []profile.Profile{
		seekerProfile("zero", "", "", "Stapler"),
	}
	if got := e.Rank(seeker, counterparts, DirectionSeekerToPosting, 10, false); len(got) != 0 {
		t.Fatalf("zero-score counterpart should be dropped, got %v", got)
	}
}

func TestRankStableOnTies(t *testing.T) {
	e := newTestEngine(false)
	seeker := seekerProfile("s1", "Koch", "", "Kochen")
	counterparts := []profile.Profile{
		seekerProfile("first", "Koch", "", "Kochen"),
		seekerProfile("second", "Koch", "", "Kochen"),
	}
	results := e.Rank(seeker, counterparts, DirectionSeekerToPosting, 5, false)
	if len(results) != 2 || results[0].CounterpartID != "first" || results[1].CounterpartID != "second" {
		t.Fatalf("tie order not stable: %v", results)
	}
}

func TestRankPlaceholder(t *testing.T) {
	seeker := seekerProfile("s1", "", "", "Kasse")
	counterparts := []profile.Profile{seekerProfile("only", "", "", "Stapler")}

	off := newTestEngine(false)
	if got := off.Rank(seeker, counterparts, DirectionSeekerToPosting, 5, false); len(got) != 0 {
		t.Fatalf("placeholder disabled should return empty, got %v", got)
	}

	on := newTestEngine(true)
	got := on.Rank(seeker, counterparts, DirectionSeekerToPosting, 5, false)
	if len(got) != 1 {
		t.Fatalf("expected single placeholder, got %d", len(got))
	}
	if got[0].CounterpartID != "only" || got[0].Score != 0.01 {
		t.Fatalf("placeholder = %+v", got[0])
	}

	// Never for an empty population.
	if got := on.Rank(seeker, nil, DirectionSeekerToPosting, 5, false); len(got) != 0 {
		t.Fatalf("empty population must never yield a placeholder")
	}
}

func TestRankLocationFilter(t *testing.T) {
	e := newTestEngine(false)
	seeker := seekerProfile("s1", "Koch", "Berlin", "Kochen")
	counterparts := []profile.Profile{
		postingProfile("near", "Koch", "Potsdam", []string{"Kochen"}, nil),
		postingProfile("far", "Koch", "München", []string{"Kochen"}, nil),
	}

	unfiltered := e.Rank(seeker, counterparts, DirectionSeekerToPosting, 10, false)
	if len(unfiltered) != 2 {
		t.Fatalf("without filter expected 2 results, got %d", len(unfiltered))
	}

	filtered := e.Rank(seeker, counterparts, DirectionSeekerToPosting, 10, true)
	if len(filtered) != 1 || filtered[0].CounterpartID != "near" {
		t.Fatalf("filter should keep only the nearby posting, got %v", filtered)
	}
}

func TestLocationFilterUnresolvedCities(t *testing.T) {
	e := newTestEngine(false)
	seeker := seekerProfile("s1", "Koch", "Unknowntown", "Kochen")
	other := postingProfile("p1", "Koch", "Elsewhereville", []string{"Kochen"}, nil)

	// Distance weight is positive: unknown coordinates stay included.
	results := e.Rank(seeker, []profile.Profile{other}, DirectionSeekerToPosting, 10, true)
	if len(results) != 1 {
		t.Fatalf("unresolved cities with distance weight should stay, got %v", results)
	}

	// With the distance weight off, differing city names are excluded.
	if err := e.SetDistanceWeight(0); err != nil {
		t.Fatalf("SetDistanceWeight: %v", err)
	}
	results = e.Rank(seeker, []profile.Profile{other}, DirectionSeekerToPosting, 10, true)
	if len(results) != 0 {
		t.Fatalf("strict city filter should exclude, got %v", results)
	}
}

func TestWeightSetters(t *testing.T) {
	e := newTestEngine(false)

	if err := e.SetComponentWeights(-0.1, 0.5, 0, 0); err == nil {
		t.Fatalf("negative weight must be rejected")
	}
	if err := e.SetComponentWeights(0, 0, 0, 0); err == nil {
		t.Fatalf("zero-sum group must be rejected")
	}
	if err := e.SetTierWeights(0, 0); err == nil {
		t.Fatalf("zero-sum tier weights must be rejected")
	}
	if err := e.SetDistanceWeight(-1); err == nil {
		t.Fatalf("negative distance weight must be rejected")
	}

	if err := e.SetComponentWeights(0.5, 0.5, 0, 0); err != nil {
		t.Fatalf("valid component weights rejected: %v", err)
	}
	if err := e.SetDistanceWeight(0.2); err != nil {
		t.Fatalf("valid distance weight rejected: %v", err)
	}
	w := e.Weights()
	if w.Skill != 0.5 || w.Title != 0.5 || w.Distance != 0.2 {
		t.Fatalf("weights not applied: %+v", w)
	}
}

func TestExplainComputesAllComponents(t *testing.T) {
	e := newTestEngine(false)
	a := seekerProfile("a", "Koch", "Berlin", "Kochen")
	a.TextBlob = "kochen küche restaurant"
	b := postingProfile("b", "Koch", "Berlin", []string{"Kochen"}, nil)
	b.TextBlob = "kochen küche hotel"

	bd := e.Explain(a, b, DirectionSeekerToPosting)
	// Semantic and vector weights are zero, the explain path still
	// computes the raw values.
	if bd.SemanticScore <= 0 {
		t.Fatalf("semantic score = %v, want > 0", bd.SemanticScore)
	}
	if bd.VectorScore <= 0 {
		t.Fatalf("vector score = %v, want > 0", bd.VectorScore)
	}
	if bd.Composite <= 0 {
		t.Fatalf("composite = %v, want > 0", bd.Composite)
	}
}

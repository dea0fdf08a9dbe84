package matching

// Direction selects which population is ranked against which. The wire codes
// are part of the persisted cache key layout.
type Direction string

const (
	// DirectionSeekerToPosting ranks postings for a seeker.
	DirectionSeekerToPosting Direction = "c2j"
	// DirectionPostingToSeeker ranks seekers for a posting.
	DirectionPostingToSeeker Direction = "j2c"
)

func (d Direction) Valid() bool {
	return d == DirectionSeekerToPosting || d == DirectionPostingToSeeker
}

// SkillBadge is one posting-side skill with its matched flag, for the
// explainability lists shown next to a result.
type SkillBadge struct {
	Name    string `json:"name"`
	Matched bool   `json:"matched"`
}

// MatchResult is one ranked counterpart with its composite score and the
// per-component breakdown. Pure computation output; only ever persisted as an
// element of a cache entry.
type MatchResult struct {
	CounterpartID string `json:"counterpart_id"`
	Title         string `json:"title"`
	City          string `json:"city,omitempty"`

	Score float64 `json:"score"`

	SkillScore    float64  `json:"skill_score"`
	TitleScore    float64  `json:"title_score"`
	SemanticScore float64  `json:"semantic_score"`
	VectorScore   float64  `json:"vector_score"`
	DistanceScore float64  `json:"distance_score"`
	DistanceKm    *float64 `json:"distance_km"`

	SkillsOverlap []string `json:"skills_overlap"`

	MustSkills  []SkillBadge `json:"must_skills"`
	NiceSkills  []SkillBadge `json:"nice_skills"`
	TotalMust   int          `json:"skills_total_must"`
	TotalNice   int          `json:"skills_total_nice"`
	MatchedMust int          `json:"skills_matched_must"`
	MatchedNice int          `json:"skills_matched_nice"`
}

// Breakdown carries the raw, weight-independent sub-scores for the explain
// path. Unlike the ranking path, every component is always computed here.
type Breakdown struct {
	SkillScore    float64  `json:"skill_score"`
	TitleScore    float64  `json:"title_score"`
	SemanticScore float64  `json:"semantic_score"`
	VectorScore   float64  `json:"vector_score"`
	DistanceScore float64  `json:"distance_score"`
	DistanceKm    *float64 `json:"distance_km"`
	Composite     float64  `json:"composite"`
}

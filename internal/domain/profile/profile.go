package profile

import (
	"encoding/json"
)

// Importance tiers attached to detailed skills. Anything that is not "must"
// counts as desirable when scoring.
const (
	TierMust      = "must"
	TierNeeded    = "needed"
	TierSynthetic = "synthetic"
)

// Provenance tags recorded by enrichment during ingestion.
const (
	ProvenanceExtracted = "extracted"
	ProvenanceSynthetic = "synthetic"
	ProvenanceInferred  = "inferred"
	ProvenanceFloorFill = "floor_fill"
)

// Skill is an immutable canonical skill value. Equality is by Key.
type Skill struct {
	Key        string  `json:"key"`
	EscoID     string  `json:"esco_id,omitempty"`
	Label      string  `json:"label,omitempty"`
	Tier       string  `json:"tier,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Provenance string  `json:"provenance,omitempty"`
}

// SkillRef is one skill entry as it appears inside a profile document.
// Ingestion writes these either as plain strings or as objects with a name,
// so decoding accepts both and silently drops anything else.
type SkillRef struct {
	Name       string  `json:"name"`
	Category   string  `json:"category,omitempty"`
	EscoID     string  `json:"esco_id,omitempty"`
	Label      string  `json:"label,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Provenance string  `json:"provenance,omitempty"`
}

func (s *SkillRef) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		*s = SkillRef{Name: name}
		return nil
	}
	type plain SkillRef
	var p plain
	if err := json.Unmarshal(b, &p); err == nil {
		*s = SkillRef(p)
		return nil
	}
	// Unusable entry; leave the zero value so extraction skips it.
	*s = SkillRef{}
	return nil
}

// SkillRefList tolerates non-array values in place of a skill list.
type SkillRefList []SkillRef

func (l *SkillRefList) UnmarshalJSON(b []byte) error {
	var refs []SkillRef
	if err := json.Unmarshal(b, &refs); err != nil {
		*l = nil
		return nil
	}
	*l = refs
	return nil
}

// Requirements is the mandatory/desirable split some postings carry.
type Requirements struct {
	MustHaveSkills   SkillRefList `json:"must_have_skills"`
	NiceToHaveSkills SkillRefList `json:"nice_to_have_skills"`
}

func (r *Requirements) UnmarshalJSON(b []byte) error {
	type plain Requirements
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		*r = Requirements{}
		return nil
	}
	*r = Requirements(p)
	return nil
}

// Profile is a seeker or posting as produced by ingestion. The matching core
// treats it as read-only. A profile may carry several skill representations
// at once; extraction merges all of them.
type Profile struct {
	ID            string `json:"_id"`
	TenantID      string `json:"tenant_id,omitempty"`
	Title         string `json:"title"`
	City          string `json:"city,omitempty"`
	CityCanonical string `json:"city_canonical,omitempty"`
	TextBlob      string `json:"text_blob,omitempty"`

	SkillSetRaw     SkillRefList  `json:"skill_set,omitempty"`
	SkillsDetailed  SkillRefList  `json:"skills_detailed,omitempty"`
	SyntheticSkills SkillRefList  `json:"synthetic_skills,omitempty"`
	Requirements    *Requirements `json:"requirements,omitempty"`

	Embedding []float64 `json:"embedding,omitempty"`
	UpdatedAt int64     `json:"updated_at,omitempty"`
}

// Decode builds a Profile from a stored document body. It never fails on
// malformed skill sub-structures; a document that is not a JSON object at all
// yields an empty profile with only the given id.
func Decode(id string, body []byte) Profile {
	var p Profile
	if err := json.Unmarshal(body, &p); err != nil {
		p = Profile{}
	}
	if p.ID == "" {
		p.ID = id
	}
	return p
}

// CanonFunc maps a raw skill or title string to its canonical key.
type CanonFunc func(string) string

// Skills merges every populated representation into canonical skill values,
// deduplicated by key. When the same key appears with different tiers the
// most specific tier wins (must beats needed beats synthetic).
func (p Profile) Skills(canon CanonFunc) map[string]Skill {
	out := make(map[string]Skill)

	add := func(ref SkillRef, tier, provenance string) {
		if ref.Name == "" {
			return
		}
		key := canon(ref.Name)
		if key == "" {
			return
		}
		sk := Skill{
			Key:        key,
			EscoID:     ref.EscoID,
			Label:      ref.Label,
			Tier:       tier,
			Confidence: ref.Confidence,
			Provenance: provenance,
		}
		if prev, ok := out[key]; ok {
			if tierRank(prev.Tier) >= tierRank(sk.Tier) {
				return
			}
		}
		out[key] = sk
	}

	for _, ref := range p.SkillSetRaw {
		add(ref, "", "")
	}
	for _, ref := range p.SkillsDetailed {
		tier := ref.Category
		if tier != TierMust && tier != TierSynthetic {
			tier = TierNeeded
		}
		prov := ref.Provenance
		if prov == "" {
			prov = ProvenanceExtracted
		}
		add(ref, tier, prov)
	}
	for _, ref := range p.SyntheticSkills {
		add(ref, TierSynthetic, ProvenanceSynthetic)
	}
	if p.Requirements != nil {
		for _, ref := range p.Requirements.MustHaveSkills {
			add(ref, TierMust, "")
		}
		for _, ref := range p.Requirements.NiceToHaveSkills {
			add(ref, TierNeeded, "")
		}
	}
	return out
}

// SkillKeySet is the canonical skill key set across all representations.
// Pure and total: malformed or missing sub-structures contribute nothing.
func (p Profile) SkillKeySet(canon CanonFunc) map[string]struct{} {
	skills := p.Skills(canon)
	out := make(map[string]struct{}, len(skills))
	for k := range skills {
		out[k] = struct{}{}
	}
	return out
}

// HasTierMetadata reports whether the profile carries an explicit
// mandatory/desirable classification.
func (p Profile) HasTierMetadata() bool {
	if len(p.SkillsDetailed) > 0 {
		return true
	}
	if p.Requirements != nil && (len(p.Requirements.MustHaveSkills) > 0 || len(p.Requirements.NiceToHaveSkills) > 0) {
		return true
	}
	return false
}

// SplitByTier returns the mandatory and desirable canonical key subsets.
// Without tier metadata the whole skill set is desirable; untiered skills are
// never promoted to mandatory.
func (p Profile) SplitByTier(canon CanonFunc) (must, needed map[string]struct{}) {
	must = make(map[string]struct{})
	needed = make(map[string]struct{})

	if !p.HasTierMetadata() {
		for k := range p.SkillKeySet(canon) {
			needed[k] = struct{}{}
		}
		return must, needed
	}

	for key, sk := range p.Skills(canon) {
		if sk.Tier == TierMust {
			must[key] = struct{}{}
		} else {
			needed[key] = struct{}{}
		}
	}
	return must, needed
}

func tierRank(tier string) int {
	switch tier {
	case TierMust:
		return 3
	case TierNeeded:
		return 2
	case TierSynthetic:
		return 1
	default:
		return 0
	}
}

package matching

import (
	"errors"

	"talent-match/internal/config"
)

var errInvalidWeights = errors.New("invalid weights")

// Weights is the full tunable weight set of the composite scorer. Skill,
// title, semantic and vector weights are kept normalized to sum to 1 as a
// group; the distance weight is an independent additive term. Must/needed
// are likewise normalized between themselves.
type Weights struct {
	Skill    float64 `json:"skill_weight"`
	Title    float64 `json:"title_weight"`
	Semantic float64 `json:"semantic_weight"`
	Vector   float64 `json:"vector_weight"`
	Distance float64 `json:"distance_weight"`

	Must   float64 `json:"must_category_weight"`
	Needed float64 `json:"needed_category_weight"`
}

// WeightsFromConfig normalizes the configured raw weights. Config validation
// has already rejected negative values and zero-sum groups.
func WeightsFromConfig(m config.MatchConfig) Weights {
	w := Weights{Distance: m.WeightDistance}
	w.setComponents(m.WeightSkills, m.WeightTitle, m.WeightSemantic, m.WeightVector)
	w.setTiers(m.MustCategoryWeight, m.NeededCategoryWeight)
	return w
}

func (w *Weights) setComponents(skill, title, semantic, vector float64) {
	total := skill + title + semantic + vector
	w.Skill = skill / total
	w.Title = title / total
	w.Semantic = semantic / total
	w.Vector = vector / total
}

func (w *Weights) setTiers(must, needed float64) {
	total := must + needed
	w.Must = must / total
	w.Needed = needed / total
}

// SetComponentWeights replaces the normalized component group. Negative
// values and zero-sum groups are rejected here, never at scoring time.
func (e *Engine) SetComponentWeights(skill, title, semantic, vector float64) error {
	if skill < 0 || title < 0 || semantic < 0 || vector < 0 {
		return errInvalidWeights
	}
	if skill+title+semantic+vector <= 0 {
		return errInvalidWeights
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.weights.setComponents(skill, title, semantic, vector)
	return nil
}

// SetDistanceWeight replaces the independent additive distance weight.
func (e *Engine) SetDistanceWeight(distance float64) error {
	if distance < 0 {
		return errInvalidWeights
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.weights.Distance = distance
	return nil
}

// SetTierWeights replaces the must/needed split used inside the skill
// sub-score when tier metadata is present.
func (e *Engine) SetTierWeights(must, needed float64) error {
	if must < 0 || needed < 0 || must+needed <= 0 {
		return errInvalidWeights
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.weights.setTiers(must, needed)
	return nil
}

// Weights returns a copy of the current weight set.
func (e *Engine) Weights() Weights {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.weights
}

package dto

import "talent-match/internal/domain/matching"

// UpdateWeightsRequest is a partial update; omitted fields keep their
// current value.
type UpdateWeightsRequest struct {
	Skill    *float64 `json:"skill_weight"`
	Title    *float64 `json:"title_weight"`
	Semantic *float64 `json:"semantic_weight"`
	Vector   *float64 `json:"vector_weight"`
	Distance *float64 `json:"distance_weight"`
	Must     *float64 `json:"must_weight"`
	Needed   *float64 `json:"needed_weight"`
}

type WeightsResponse struct {
	Weights matching.Weights `json:"weights"`
}

package dto

import "talent-match/internal/domain/matching"

type RankResponse struct {
	Results       []matching.MatchResult `json:"results"`
	FromCache     bool                   `json:"from_cache"`
	ComputedCount int                    `json:"computed_count"`
	UpdatedAt     int64                  `json:"updated_at"`
}

type ExplainResponse struct {
	SubjectID     string             `json:"subject_id"`
	CounterpartID string             `json:"counterpart_id"`
	Direction     string             `json:"direction"`
	Breakdown     matching.Breakdown `json:"breakdown"`
	Weights       matching.Weights   `json:"weights"`
}

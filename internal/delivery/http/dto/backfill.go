package dto

type BackfillRequest struct {
	Direction      string `json:"direction"`
	TopK           int    `json:"top_k"`
	LocationFilter bool   `json:"location_filter"`
	Limit          int    `json:"limit"`
	Force          bool   `json:"force"`
	// MaxAgeSeconds overrides the skip rule's freshness window; 0 keeps
	// the configured TTL, negative forces any existing entry to count.
	MaxAgeSeconds int `json:"max_age"`
}

type BackfillResponse struct {
	RunID     string `json:"run_id"`
	Direction string `json:"direction"`
	Processed int    `json:"processed"`
	Computed  int    `json:"computed"`
	Skipped   int    `json:"skipped"`
	Errors    int    `json:"errors"`
}

package dto

type AddSynonymRequest struct {
	Canon string `json:"canon"`
	Alias string `json:"alias"`
}

type AddSynonymResponse struct {
	Canon string `json:"canon"`
	Alias string `json:"alias"`
	Added bool   `json:"added"`
}

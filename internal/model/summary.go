package model

// Summary is the structured result of summarizing a repository README.
// It is produced per request and never persisted.
type Summary struct {
	Summary   string   `json:"summary" validate:"required"`
	CoolFacts []string `json:"cool_facts" validate:"required"`
}

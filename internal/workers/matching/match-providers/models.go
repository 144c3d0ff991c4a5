package matchproviders

import "provider-matching-workers/internal/models"

type Input struct {
	Requirements models.ProjectRequirements `json:"requirements"`
	// Candidates are loaded by requirement country when empty.
	Candidates []models.ProviderProfile `json:"candidates,omitempty"`
	MaxResults int                      `json:"maxResults,omitempty"`
}

type Output struct {
	Matches        []models.MatchResult `json:"matches"`
	Explanations   []string             `json:"explanations"`
	CandidateCount int                  `json:"candidateCount"`
}

// internal/models/match.go
package models

// Confidence buckets for a match.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// MatchResult is one scored provider for a set of requirements.
type MatchResult struct {
	ProviderID        string           `json:"providerId"`
	Provider          ProviderProfile  `json:"provider"`
	MatchScore        float64          `json:"matchScore"`
	MatchReasons      []string         `json:"matchReasons"`
	Concerns          []string         `json:"concerns"`
	Confidence        string           `json:"confidence"`
	EstimatedCost     CostEstimate     `json:"estimatedCost"`
	EstimatedTimeline TimelineEstimate `json:"estimatedTimeline"`
}

type CostEstimate struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
}

type TimelineEstimate struct {
	DesignDays int `json:"designDays"`
	BuildDays  int `json:"buildDays"`
	TotalDays  int `json:"totalDays"`
}

// internal/matching/scores.go
package matching

import (
	"math"
	"strings"
	"time"

	"provider-matching-workers/internal/models"
)

// Neutral sub-scores used when the inputs needed to judge a factor are missing.
const (
	neutralLocation = 0.5
	neutralIndustry = 0.5
	neutralBudget   = 0.7
	neutralTimeline = 0.5
	neutralQuality  = 0.5
)

// locationScore is 1.0 for the same city, 0.7 for the same country and 0.3
// otherwise. The bool is false when the requirements name no place at all.
func locationScore(req models.RequirementLocation, loc models.Location) (float64, bool) {
	if req.IsZero() {
		return neutralLocation, false
	}
	if req.City != "" && strings.EqualFold(req.City, loc.City) {
		return 1.0, true
	}
	if req.Country != "" && strings.EqualFold(req.Country, loc.Country) {
		return 0.7, true
	}
	return 0.3, true
}

// serviceScore is the fraction of required services found as a substring of
// any offered service.
func serviceScore(required, offered []string) float64 {
	if len(required) == 0 {
		return 1.0
	}

	lowered := make([]string, len(offered))
	for i, s := range offered {
		lowered[i] = strings.ToLower(s)
	}

	matched := 0
	for _, r := range required {
		r = strings.ToLower(r)
		for _, o := range lowered {
			if strings.Contains(o, r) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(required))
}

func industryScore(required string, industries []string) float64 {
	required = strings.ToLower(strings.TrimSpace(required))
	if required == "" {
		return neutralIndustry
	}
	for _, ind := range industries {
		ind = strings.ToLower(strings.TrimSpace(ind))
		if ind == "" {
			continue
		}
		if strings.Contains(ind, required) || strings.Contains(required, ind) {
			return 1.0
		}
	}
	return 0.5
}

func budgetScore(budget models.Budget, pricing models.Pricing) float64 {
	minimum, ok := pricing.KnownMinimum()
	if !ok || budget.Max == nil || *budget.Max <= 0 {
		return neutralBudget
	}

	maxBudget := *budget.Max
	minBudget := 0.0
	if budget.Min != nil {
		minBudget = *budget.Min
	}

	switch {
	case minimum <= maxBudget && minimum >= minBudget:
		return 1.0
	case minimum <= maxBudget*1.2:
		return 0.7
	case minimum > maxBudget*1.5:
		return 0.2
	default:
		return 0.5
	}
}

// timelineScore compares whole days until the event with whole days until the
// provider is next available, both floored relative to now.
func timelineScore(timeline models.Timeline, availability models.Availability, now time.Time) float64 {
	if timeline.EventDate.IsZero() || availability.NextAvailable.IsZero() {
		return neutralTimeline
	}

	daysUntilEvent := daysBetween(now, timeline.EventDate.Time)
	availableIn := daysBetween(now, availability.NextAvailable.Time)

	switch {
	case availableIn <= 0:
		return 1.0
	case availableIn < daysUntilEvent*0.5:
		return 0.9
	case availableIn < daysUntilEvent*0.8:
		return 0.7
	case availableIn >= daysUntilEvent:
		return 0.2
	default:
		return 0.5
	}
}

func daysBetween(from, to time.Time) float64 {
	return math.Floor(to.Sub(from).Hours() / 24)
}

// qualityScore maps the overall rating onto [0,1]. The bool is false for an
// unrated provider.
func qualityScore(r models.Ratings) (float64, bool) {
	if r.Overall <= 0 {
		return neutralQuality, false
	}
	return math.Min(r.Overall, 5) / 5, true
}

func standTypeScore(standType string, portfolio models.Portfolio) float64 {
	for _, t := range portfolio.StandTypes {
		if standType != "" && strings.EqualFold(t, standType) {
			return 1.0
		}
	}
	return 0.6
}

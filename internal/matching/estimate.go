// internal/matching/estimate.go
package matching

import (
	"math"
	"strings"

	"provider-matching-workers/internal/models"
)

// EstimateCost projects a price band from the provider's minimum and the
// stand size.
func (e *Engine) EstimateCost(req models.ProjectRequirements, p models.ProviderProfile) models.CostEstimate {
	rate, ok := p.Pricing.KnownMinimum()
	if !ok {
		rate = e.config.DefaultProjectMinimum
	}
	base := rate * e.sizeMultiplier(req.StandSpec.Size)

	currency := p.Pricing.Currency
	if currency == "" {
		currency = req.Budget.Currency
	}

	return models.CostEstimate{
		Min:      math.Round(base * e.config.CostLowFactor),
		Max:      math.Round(base * e.config.CostHighFactor),
		Currency: currency,
	}
}

func (e *Engine) sizeMultiplier(size string) float64 {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(size), " ", ""))
	if m, ok := e.config.SizeMultipliers[key]; ok && m > 0 {
		return m
	}
	return e.config.DefaultSizeMultiplier
}

// EstimateTimeline derives design and build durations from project complexity.
func (e *Engine) EstimateTimeline(req models.ProjectRequirements) models.TimelineEstimate {
	c := e.complexity(req)
	design := c * e.config.DesignDaysPerLevel
	build := c * e.config.BuildDaysPerLevel
	return models.TimelineEstimate{
		DesignDays: design,
		BuildDays:  build,
		TotalDays:  design + build,
	}
}

func (e *Engine) complexity(req models.ProjectRequirements) int {
	c := 1
	switch strings.ToLower(req.StandSpec.Type) {
	case models.StandTypeCustom:
		c++
	case models.StandTypeDoubleDecker:
		c += 2
	}
	if req.BrandStyle.Interactive {
		c++
	}
	if len(req.StandSpec.SpecialRequirements) > 0 {
		c++
	}
	return min(c, e.config.MaxComplexity)
}

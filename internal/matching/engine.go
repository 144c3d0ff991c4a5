// Package matching ranks stand-building providers against an exhibitor's
// project requirements. The engine is stateless apart from its configuration
// and is safe for concurrent use.
package matching

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"provider-matching-workers/internal/common/logger"
	"provider-matching-workers/internal/models"
)

type Engine struct {
	config Config
	now    func() time.Time
	logger logger.Logger
}

type Option func(*Engine)

// WithClock overrides the time source used for timeline scoring.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(config Config, log logger.Logger, opts ...Option) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matching config: %w", err)
	}
	e := &Engine{
		config: config,
		now:    time.Now,
		logger: log.WithFields(map[string]interface{}{"component": "matching"}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Match scores every candidate, keeps those above the minimum score and
// returns at most maxResults of them, best first. A non-positive maxResults
// falls back to the configured default. Equal scores keep candidate order.
func (e *Engine) Match(req models.ProjectRequirements, candidates []models.ProviderProfile, maxResults int) []models.MatchResult {
	if maxResults <= 0 {
		maxResults = e.config.DefaultMaxResults
	}

	now := e.now()
	matches := make([]models.MatchResult, 0, len(candidates))
	for _, p := range candidates {
		result := e.score(req, p, now)
		if result.MatchScore > e.config.MinScore {
			matches = append(matches, result)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}

	e.logger.Debug("providers matched", map[string]interface{}{
		"candidates": len(candidates),
		"returned":   len(matches),
		"maxResults": maxResults,
	})

	return matches
}

// Score evaluates a single provider without filtering.
func (e *Engine) Score(req models.ProjectRequirements, p models.ProviderProfile) models.MatchResult {
	return e.score(req, p, e.now())
}

func (e *Engine) score(req models.ProjectRequirements, p models.ProviderProfile, now time.Time) models.MatchResult {
	w := e.config.Weights
	reasons := []string{}
	concerns := []string{}
	total := 0.0

	location, known := locationScore(req.Location, p.Location)
	total += location * w.Location
	if known {
		if location > 0.8 {
			reasons = append(reasons, fmt.Sprintf("Local provider in %s", p.Location.City))
		} else if location > 0.5 {
			reasons = append(reasons, fmt.Sprintf("Regional provider in %s", p.Location.Country))
		} else {
			concerns = append(concerns, "Provider located far from project site")
		}
	}

	services := serviceScore(req.RequiredServices, p.Services)
	total += services * w.Services
	if services > 0.9 {
		reasons = append(reasons, "Offers all required services")
	} else if services > 0.7 {
		reasons = append(reasons, "Offers most required services")
	} else {
		concerns = append(concerns, "Limited service offerings for your needs")
	}

	industry := industryScore(req.Industry, p.Industries)
	total += industry * w.Industry
	if industry > 0.8 {
		reasons = append(reasons, fmt.Sprintf("Specialized in %s industry", req.Industry))
	} else if industry < 0.3 {
		concerns = append(concerns, "Limited experience in your industry")
	}

	budget := budgetScore(req.Budget, p.Pricing)
	total += budget * w.Budget
	if budget > 0.8 {
		reasons = append(reasons, "Budget aligns well with provider pricing")
	} else if budget < 0.4 {
		concerns = append(concerns, "Budget may not align with provider pricing")
	}

	timeline := timelineScore(req.Timeline, p.Availability, now)
	total += timeline * w.Timeline
	if timeline > 0.8 {
		reasons = append(reasons, "Available for your project timeline")
	} else if timeline < 0.5 {
		concerns = append(concerns, "May have scheduling conflicts")
	}

	quality, rated := qualityScore(p.Ratings)
	total += quality * w.Quality
	if rated {
		if p.Ratings.Overall >= 4.5 {
			reasons = append(reasons, "Excellent customer ratings")
		} else if p.Ratings.Overall < 3.5 {
			concerns = append(concerns, "Below average customer ratings")
		}
	}

	standType := standTypeScore(req.StandSpec.Type, p.Portfolio)
	total += standType * w.StandType
	if standType > 0.8 {
		reasons = append(reasons, fmt.Sprintf("Expert in %s stands", req.StandSpec.Type))
	}

	matchScore := total / w.total()

	return models.MatchResult{
		ProviderID:        p.ID,
		Provider:          p,
		MatchScore:        matchScore,
		MatchReasons:      reasons,
		Concerns:          concerns,
		Confidence:        e.confidence(matchScore, len(reasons)),
		EstimatedCost:     e.EstimateCost(req, p),
		EstimatedTimeline: e.EstimateTimeline(req),
	}
}

func (e *Engine) confidence(score float64, reasons int) string {
	c := e.config
	if score > c.HighConfidenceScore && reasons >= c.HighConfidenceReasons {
		return models.ConfidenceHigh
	}
	if score > c.MediumConfidenceScore && reasons >= c.MediumConfidenceReasons {
		return models.ConfidenceMedium
	}
	return models.ConfidenceLow
}

// ExplainRecommendation renders a match as numbered prose for display to the
// exhibitor.
func ExplainRecommendation(m models.MatchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s is a %s confidence match (%d%% compatibility) because:\n\n",
		m.Provider.Name, m.Confidence, percent(m.MatchScore))

	for i, reason := range m.MatchReasons {
		fmt.Fprintf(&b, "%d. %s\n", i+1, reason)
	}

	if len(m.Concerns) > 0 {
		b.WriteString("\nConsiderations:\n")
		for i, concern := range m.Concerns {
			fmt.Fprintf(&b, "%d. %s\n", i+1, concern)
		}
	}

	return b.String()
}

func percent(score float64) int {
	return int(math.Round(score * 100))
}

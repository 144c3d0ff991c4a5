// internal/matching/config.go
package matching

import "fmt"

// Weights are the per-factor contributions to the final score.
type Weights struct {
	Location  float64
	Services  float64
	Industry  float64
	Budget    float64
	Timeline  float64
	Quality   float64
	StandType float64
}

func (w Weights) total() float64 {
	return w.Location + w.Services + w.Industry + w.Budget + w.Timeline + w.Quality + w.StandType
}

// Config holds every tunable of the matching engine.
type Config struct {
	Weights Weights

	// MinScore is exclusive: a candidate must score strictly above it.
	MinScore          float64
	DefaultMaxResults int

	HighConfidenceScore     float64
	HighConfidenceReasons   int
	MediumConfidenceScore   float64
	MediumConfidenceReasons int

	DefaultProjectMinimum float64
	SizeMultipliers       map[string]float64
	DefaultSizeMultiplier float64
	CostLowFactor         float64
	CostHighFactor        float64

	DesignDaysPerLevel int
	BuildDaysPerLevel  int
	MaxComplexity      int
}

func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Location:  0.25,
			Services:  0.20,
			Industry:  0.15,
			Budget:    0.15,
			Timeline:  0.10,
			Quality:   0.10,
			StandType: 0.05,
		},
		MinScore:                0.3,
		DefaultMaxResults:       10,
		HighConfidenceScore:     0.8,
		HighConfidenceReasons:   3,
		MediumConfidenceScore:   0.6,
		MediumConfidenceReasons: 2,
		DefaultProjectMinimum:   5000,
		SizeMultipliers: map[string]float64{
			"3x3":    1.0,
			"3x6":    1.5,
			"6x6":    2.0,
			"6x9":    2.5,
			"9x9":    3.0,
			"custom": 2.5,
		},
		DefaultSizeMultiplier: 2.0,
		CostLowFactor:         0.8,
		CostHighFactor:        1.3,
		DesignDaysPerLevel:    7,
		BuildDaysPerLevel:     10,
		MaxComplexity:         4,
	}
}

// Validate rejects configurations that cannot produce a score.
func (c Config) Validate() error {
	w := c.Weights
	for name, v := range map[string]float64{
		"location": w.Location, "services": w.Services, "industry": w.Industry,
		"budget": w.Budget, "timeline": w.Timeline, "quality": w.Quality, "standType": w.StandType,
	} {
		if v < 0 {
			return fmt.Errorf("weight %s must not be negative", name)
		}
	}
	if w.total() <= 0 {
		return fmt.Errorf("weights must sum to a positive value")
	}
	if c.MinScore < 0 || c.MinScore >= 1 {
		return fmt.Errorf("min score must be in [0,1), got %v", c.MinScore)
	}
	if c.MaxComplexity < 1 {
		return fmt.Errorf("max complexity must be at least 1")
	}
	return nil
}

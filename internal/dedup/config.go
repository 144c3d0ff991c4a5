// internal/dedup/config.go
package dedup

import (
	"fmt"
	"sort"
	"strings"
)

// Points awarded per matching signal.
type Points struct {
	ExactName          int
	SimilarName        int
	Email              int
	Phone              int
	Website            int
	Address            int
	GMBPlaceID         int
	RegistrationNumber int
}

type Config struct {
	Points Points
	// Threshold is inclusive: a pair scoring exactly Threshold is a duplicate.
	Threshold          int
	FuzzyNameThreshold float64
	AddressThreshold   float64
}

func DefaultConfig() Config {
	return Config{
		Points: Points{
			ExactName:          60,
			SimilarName:        40,
			Email:              80,
			Phone:              70,
			Website:            70,
			Address:            30,
			GMBPlaceID:         90,
			RegistrationNumber: 85,
		},
		Threshold:          75,
		FuzzyNameThreshold: 0.8,
		AddressThreshold:   0.8,
	}
}

// ApplyPointOverrides sets individual signal points by config key.
func (c *Config) ApplyPointOverrides(overrides map[string]int) error {
	fields := map[string]*int{
		"exact_name":          &c.Points.ExactName,
		"similar_name":        &c.Points.SimilarName,
		"email":               &c.Points.Email,
		"phone":               &c.Points.Phone,
		"website":             &c.Points.Website,
		"address":             &c.Points.Address,
		"gmb_place_id":        &c.Points.GMBPlaceID,
		"registration_number": &c.Points.RegistrationNumber,
	}

	for key, v := range overrides {
		field, ok := fields[strings.ToLower(key)]
		if !ok {
			known := make([]string, 0, len(fields))
			for k := range fields {
				known = append(known, k)
			}
			sort.Strings(known)
			return fmt.Errorf("unknown dedup signal %q (known: %s)", key, strings.Join(known, ", "))
		}
		*field = v
	}
	return nil
}

func (c Config) Validate() error {
	if c.Threshold <= 0 {
		return fmt.Errorf("threshold must be positive, got %d", c.Threshold)
	}
	if c.FuzzyNameThreshold <= 0 || c.FuzzyNameThreshold > 1 {
		return fmt.Errorf("fuzzy name threshold must be in (0,1], got %v", c.FuzzyNameThreshold)
	}
	if c.AddressThreshold <= 0 || c.AddressThreshold > 1 {
		return fmt.Errorf("address threshold must be in (0,1], got %v", c.AddressThreshold)
	}
	return nil
}

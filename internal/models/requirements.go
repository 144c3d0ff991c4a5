// internal/models/requirements.go
package models

// ProjectRequirements describes an exhibitor's stand project.
type ProjectRequirements struct {
	Location         RequirementLocation `json:"location"`
	Budget           Budget              `json:"budget"`
	Timeline         Timeline            `json:"timeline"`
	StandSpec        StandSpec           `json:"standSpecs"`
	Industry         string              `json:"industry"`
	BrandStyle       BrandStyle          `json:"brandStyle"`
	RequiredServices []string            `json:"requiredServices"`
}

type RequirementLocation struct {
	Country   string `json:"country"`
	City      string `json:"city,omitempty"`
	Venue     string `json:"venue,omitempty"`
	TradeShow string `json:"tradeShow,omitempty"`
}

// IsZero reports whether neither country nor city is known.
func (l RequirementLocation) IsZero() bool {
	return l.Country == "" && l.City == ""
}

// Budget bounds are nil when not stated. A nil or zero Max means "unknown".
type Budget struct {
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Currency string   `json:"currency,omitempty"`
}

type Timeline struct {
	EventDate      Date `json:"eventDate"`
	SetupDays      int  `json:"setupDays,omitempty"`
	DesignDeadline Date `json:"designDeadline"`
}

type StandSpec struct {
	Size                string   `json:"size"`
	Type                string   `json:"type"`
	Height              float64  `json:"height,omitempty"`
	SpecialRequirements []string `json:"specialRequirements,omitempty"`
}

type BrandStyle struct {
	Modern      bool `json:"modern,omitempty"`
	Minimalist  bool `json:"minimalist,omitempty"`
	Luxury      bool `json:"luxury,omitempty"`
	Sustainable bool `json:"sustainable,omitempty"`
	Interactive bool `json:"interactive,omitempty"`
}

// Stand types.
const (
	StandTypeModular      = "modular"
	StandTypeCustom       = "custom"
	StandTypePortable     = "portable"
	StandTypeDoubleDecker = "double-decker"
)

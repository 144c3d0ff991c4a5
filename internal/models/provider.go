// internal/models/provider.go
package models

import "time"

// ProviderProfile is a stand-builder record as stored by the provider store.
type ProviderProfile struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Slug                string          `json:"slug,omitempty"`
	Location            Location        `json:"location"`
	Email               string          `json:"email,omitempty"`
	Phone               string          `json:"phone,omitempty"`
	Website             string          `json:"website,omitempty"`
	Services            []string        `json:"services,omitempty"`
	Specializations     []string        `json:"specializations,omitempty"`
	Industries          []string        `json:"industries,omitempty"`
	Portfolio           Portfolio       `json:"portfolio"`
	Ratings             Ratings         `json:"ratings"`
	ReviewCount         int             `json:"reviewCount,omitempty"`
	Pricing             Pricing         `json:"pricing"`
	Availability        Availability    `json:"availability"`
	Certifications      []string        `json:"certifications,omitempty"`
	Awards              []string        `json:"awards,omitempty"`
	Languages           []string        `json:"languages,omitempty"`
	ServiceLocations    []Location      `json:"serviceLocations,omitempty"`
	TradeshowExperience []string        `json:"tradeshowExperience,omitempty"`
	Verified            bool            `json:"verified"`
	ResponseTimeHours   float64         `json:"responseTimeHours,omitempty"`
	ProjectsCompleted   int             `json:"projectsCompleted,omitempty"`
	TeamSize            int             `json:"teamSize,omitempty"`
	Description         string          `json:"description,omitempty"`
	GMBPlaceID          string          `json:"gmbPlaceId,omitempty"`
	RegistrationNumber  string          `json:"registrationNumber,omitempty"`
	MergedProfiles      []MergedProfile `json:"mergedProfiles,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// Location doubles as headquarters address and as a service-area entry.
type Location struct {
	Country string `json:"country,omitempty"`
	City    string `json:"city,omitempty"`
	Address string `json:"address,omitempty"`
}

// IsZero reports whether no component of the location is known.
func (l Location) IsZero() bool {
	return l.Country == "" && l.City == "" && l.Address == ""
}

type Portfolio struct {
	TotalProjects int             `json:"totalProjects"`
	AverageBudget float64         `json:"averageBudget,omitempty"`
	StandTypes    []string        `json:"standTypes,omitempty"`
	Venues        []string        `json:"venues,omitempty"`
	Items         []PortfolioItem `json:"items,omitempty"`
}

// PortfolioItem is unique per provider by Title.
type PortfolioItem struct {
	Title     string `json:"title"`
	TradeShow string `json:"tradeShow,omitempty"`
	Year      int    `json:"year,omitempty"`
	City      string `json:"city,omitempty"`
	Country   string `json:"country,omitempty"`
	StandSize string `json:"standSize,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

// Ratings are on a 0-5 scale. Overall is the rating used by scoring and merging.
type Ratings struct {
	Overall       float64 `json:"overall"`
	Quality       float64 `json:"quality,omitempty"`
	Timeline      float64 `json:"timeline,omitempty"`
	Communication float64 `json:"communication,omitempty"`
	Value         float64 `json:"value,omitempty"`
}

// Pricing amounts are nil when the provider has not published them.
type Pricing struct {
	HourlyRate     *float64 `json:"hourlyRate,omitempty"`
	ProjectMinimum *float64 `json:"projectMinimum,omitempty"`
	Currency       string   `json:"currency,omitempty"`
}

// KnownMinimum returns the project minimum and whether it is usable.
func (p Pricing) KnownMinimum() (float64, bool) {
	if p.ProjectMinimum == nil || *p.ProjectMinimum <= 0 {
		return 0, false
	}
	return *p.ProjectMinimum, true
}

type Availability struct {
	NextAvailable Date `json:"nextAvailable"`
	Capacity      int  `json:"capacity,omitempty"`
}

// MergedProfile is the audit entry left on a survivor for each absorbed record.
type MergedProfile struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	MergedAt time.Time `json:"mergedAt"`
}

// Float returns a pointer to v, for optional amounts.
func Float(v float64) *float64 {
	return &v
}

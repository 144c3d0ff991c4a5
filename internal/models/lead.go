// internal/models/lead.go
package models

import "time"

// Lead is an exhibitor enquiry. Only the provider assignment list is touched
// by deduplication.
type Lead struct {
	ID                string    `json:"id"`
	AssignedProviders []string  `json:"assignedProviders"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

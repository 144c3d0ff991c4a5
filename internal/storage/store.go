// Package storage holds the provider and lead persistence used by matching
// and deduplication, plus the cache and search-index side channels kept in
// step with it.
package storage

import (
	"context"
	"errors"

	"provider-matching-workers/internal/models"
)

// ErrNotFound is returned when a provider or lead id does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the persistence surface deduplication needs.
type Store interface {
	// ListProviders returns every provider, oldest first.
	ListProviders(ctx context.Context) ([]models.ProviderProfile, error)
	GetProvider(ctx context.Context, id string) (*models.ProviderProfile, error)
	// UpdateProvider replaces an existing provider wholesale.
	UpdateProvider(ctx context.Context, p *models.ProviderProfile) error
	DeleteProvider(ctx context.Context, id string) error
	ListLeads(ctx context.Context) ([]models.Lead, error)
	UpdateLead(ctx context.Context, lead *models.Lead) error
}

// CandidateSource lists matching candidates. An empty country lists all.
type CandidateSource interface {
	ListProvidersByCountry(ctx context.Context, country string) ([]models.ProviderProfile, error)
}

package storage

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"provider-matching-workers/internal/models"
)

// Op names a MemoryStore operation for failure injection.
type Op string

const (
	OpListProviders  Op = "listProviders"
	OpGetProvider    Op = "getProvider"
	OpUpdateProvider Op = "updateProvider"
	OpDeleteProvider Op = "deleteProvider"
	OpListLeads      Op = "listLeads"
	OpUpdateLead     Op = "updateLead"
)

// MemoryStore keeps providers and leads in insertion order. It backs the CLI
// dry runs and the tests.
type MemoryStore struct {
	mu            sync.RWMutex
	providers     map[string]models.ProviderProfile
	providerOrder []string
	leads         map[string]models.Lead
	leadOrder     []string
	failures      map[string]error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		providers: make(map[string]models.ProviderProfile),
		leads:     make(map[string]models.Lead),
		failures:  make(map[string]error),
	}
}

// PutProvider inserts or replaces a provider. New ids go to the end.
func (s *MemoryStore) PutProvider(p models.ProviderProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.providers[p.ID]; !ok {
		s.providerOrder = append(s.providerOrder, p.ID)
	}
	s.providers[p.ID] = cloneProvider(p)
}

// PutLead inserts or replaces a lead.
func (s *MemoryStore) PutLead(l models.Lead) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.leads[l.ID]; !ok {
		s.leadOrder = append(s.leadOrder, l.ID)
	}
	l.AssignedProviders = slices.Clone(l.AssignedProviders)
	s.leads[l.ID] = l
}

// FailOn makes op fail with err for id. An empty id matches every call.
func (s *MemoryStore) FailOn(op Op, id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[failureKey(op, id)] = err
}

func failureKey(op Op, id string) string {
	return string(op) + ":" + id
}

func (s *MemoryStore) failure(op Op, id string) error {
	if err, ok := s.failures[failureKey(op, id)]; ok {
		return err
	}
	return s.failures[failureKey(op, "")]
}

func (s *MemoryStore) ListProviders(ctx context.Context) ([]models.ProviderProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure(OpListProviders, ""); err != nil {
		return nil, err
	}
	out := make([]models.ProviderProfile, 0, len(s.providerOrder))
	for _, id := range s.providerOrder {
		out = append(out, cloneProvider(s.providers[id]))
	}
	return out, nil
}

func (s *MemoryStore) ListProvidersByCountry(ctx context.Context, country string) ([]models.ProviderProfile, error) {
	all, err := s.ListProviders(ctx)
	if err != nil || country == "" {
		return all, err
	}
	out := all[:0]
	for _, p := range all {
		if strings.EqualFold(p.Location.Country, country) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetProvider(ctx context.Context, id string) (*models.ProviderProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure(OpGetProvider, id); err != nil {
		return nil, err
	}
	p, ok := s.providers[id]
	if !ok {
		return nil, fmt.Errorf("provider %s: %w", id, ErrNotFound)
	}
	p = cloneProvider(p)
	return &p, nil
}

func (s *MemoryStore) UpdateProvider(ctx context.Context, p *models.ProviderProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(OpUpdateProvider, p.ID); err != nil {
		return err
	}
	if _, ok := s.providers[p.ID]; !ok {
		return fmt.Errorf("provider %s: %w", p.ID, ErrNotFound)
	}
	s.providers[p.ID] = cloneProvider(*p)
	return nil
}

func (s *MemoryStore) DeleteProvider(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(OpDeleteProvider, id); err != nil {
		return err
	}
	if _, ok := s.providers[id]; !ok {
		return fmt.Errorf("provider %s: %w", id, ErrNotFound)
	}
	delete(s.providers, id)
	s.providerOrder = slices.DeleteFunc(s.providerOrder, func(existing string) bool { return existing == id })
	return nil
}

func (s *MemoryStore) ListLeads(ctx context.Context) ([]models.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure(OpListLeads, ""); err != nil {
		return nil, err
	}
	out := make([]models.Lead, 0, len(s.leadOrder))
	for _, id := range s.leadOrder {
		l := s.leads[id]
		l.AssignedProviders = slices.Clone(l.AssignedProviders)
		out = append(out, l)
	}
	return out, nil
}

func (s *MemoryStore) UpdateLead(ctx context.Context, lead *models.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(OpUpdateLead, lead.ID); err != nil {
		return err
	}
	if _, ok := s.leads[lead.ID]; !ok {
		return fmt.Errorf("lead %s: %w", lead.ID, ErrNotFound)
	}
	l := *lead
	l.AssignedProviders = slices.Clone(lead.AssignedProviders)
	s.leads[l.ID] = l
	return nil
}

func cloneProvider(p models.ProviderProfile) models.ProviderProfile {
	p.Services = slices.Clone(p.Services)
	p.Specializations = slices.Clone(p.Specializations)
	p.Industries = slices.Clone(p.Industries)
	p.Portfolio.StandTypes = slices.Clone(p.Portfolio.StandTypes)
	p.Portfolio.Venues = slices.Clone(p.Portfolio.Venues)
	p.Portfolio.Items = slices.Clone(p.Portfolio.Items)
	p.Certifications = slices.Clone(p.Certifications)
	p.Awards = slices.Clone(p.Awards)
	p.Languages = slices.Clone(p.Languages)
	p.ServiceLocations = slices.Clone(p.ServiceLocations)
	p.TradeshowExperience = slices.Clone(p.TradeshowExperience)
	p.MergedProfiles = slices.Clone(p.MergedProfiles)
	if p.Pricing.HourlyRate != nil {
		p.Pricing.HourlyRate = models.Float(*p.Pricing.HourlyRate)
	}
	if p.Pricing.ProjectMinimum != nil {
		p.Pricing.ProjectMinimum = models.Float(*p.Pricing.ProjectMinimum)
	}
	return p
}

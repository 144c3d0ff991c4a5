package storage

import (
	"context"

	"provider-matching-workers/internal/common/logger"
	"provider-matching-workers/internal/models"
)

// ProviderIndexer mirrors provider writes into a search index.
type ProviderIndexer interface {
	IndexProvider(ctx context.Context, p models.ProviderProfile) error
	RemoveProvider(ctx context.Context, id string) error
}

// CacheInvalidator drops cached provider reads.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// SyncedStore wraps a Store and, after each successful provider write,
// updates the search index and invalidates the candidate cache. Side-channel
// failures are logged and never fail the write.
type SyncedStore struct {
	Store
	index  ProviderIndexer
	cache  CacheInvalidator
	logger logger.Logger
}

// NewSyncedStore accepts nil for either side channel.
func NewSyncedStore(store Store, index ProviderIndexer, cache CacheInvalidator, log logger.Logger) *SyncedStore {
	return &SyncedStore{
		Store:  store,
		index:  index,
		cache:  cache,
		logger: log.WithFields(map[string]interface{}{"component": "synced-store"}),
	}
}

func (s *SyncedStore) UpdateProvider(ctx context.Context, p *models.ProviderProfile) error {
	if err := s.Store.UpdateProvider(ctx, p); err != nil {
		return err
	}
	if s.index != nil {
		if err := s.index.IndexProvider(ctx, *p); err != nil {
			s.logger.Warn("search index update failed", map[string]interface{}{
				"providerId": p.ID,
				"error":      err,
			})
		}
	}
	s.invalidate(ctx, p.ID)
	return nil
}

func (s *SyncedStore) DeleteProvider(ctx context.Context, id string) error {
	if err := s.Store.DeleteProvider(ctx, id); err != nil {
		return err
	}
	if s.index != nil {
		if err := s.index.RemoveProvider(ctx, id); err != nil {
			s.logger.Warn("search index removal failed", map[string]interface{}{
				"providerId": id,
				"error":      err,
			})
		}
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *SyncedStore) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("candidate cache invalidation failed", map[string]interface{}{
			"providerId": id,
			"error":      err,
		})
	}
}

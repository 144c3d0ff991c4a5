package bootstrap

import (
	"context"
	"time"

	"provider-matching-workers/internal/common/config"
	"provider-matching-workers/internal/common/database"
	"provider-matching-workers/internal/common/logger"
	"provider-matching-workers/internal/storage"
)

// Stores holds the opened backends and the store stack built on them.
type Stores struct {
	Postgres *database.PostgresClient
	Redis    *database.RedisClient
	Search   *database.ElasticsearchClient

	Providers  *storage.PostgresStore
	Cache      *storage.CandidateCache
	// Index is nil when Elasticsearch is not configured.
	Index      *storage.SearchIndex
	Store      storage.Store
	Candidates storage.CandidateSource
}

// OpenStores connects to Postgres and Redis (required) and Elasticsearch
// (optional), retrying each with backoff. The returned Store keeps the search
// index and candidate cache in step with every write.
func OpenStores(ctx context.Context, cfg *config.Config, log logger.Logger) (*Stores, error) {
	s := &Stores{}

	err := RetryWithBackoff(ctx, func() error {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		if err := pg.Ping(ctx); err != nil {
			pg.Close()
			return err
		}
		s.Postgres = pg
		return nil
	}, 15, 2*time.Second, log, "PostgreSQL connection")
	if err != nil {
		return nil, err
	}
	log.Info("PostgreSQL connected", nil)

	if cfg.Database.Postgres.AutoMigrate {
		if err := s.Postgres.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
	}

	err = RetryWithBackoff(ctx, func() error {
		rdb, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		if err := rdb.Ping(ctx); err != nil {
			rdb.Close()
			return err
		}
		s.Redis = rdb
		return nil
	}, 10, 2*time.Second, log, "Redis connection")
	if err != nil {
		s.Close()
		return nil, err
	}
	log.Info("Redis connected", nil)

	s.Providers = storage.NewPostgresStore(s.Postgres.DB, log)
	s.Cache = storage.NewCandidateCache(s.Redis.Client, s.Providers, CandidateTTL(cfg.Cache), log)
	s.Candidates = s.Cache

	// stays a nil interface when search is disabled
	var indexer storage.ProviderIndexer
	if cfg.Database.Elasticsearch.Enabled() {
		client, index, err := openSearchIndex(ctx, cfg.Database.Elasticsearch, log)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.Search = client
		s.Index = index
		indexer = index
	}

	s.Store = storage.NewSyncedStore(s.Providers, indexer, s.Cache, log)
	return s, nil
}

func openSearchIndex(ctx context.Context, cfg config.ElasticsearchConfig, log logger.Logger) (*database.ElasticsearchClient, *storage.SearchIndex, error) {
	var client *database.ElasticsearchClient
	err := RetryWithBackoff(ctx, func() error {
		es, err := database.NewElasticsearch(cfg)
		if err != nil {
			return err
		}
		if err := es.Ping(ctx); err != nil {
			return err
		}
		client = es
		return nil
	}, 10, 2*time.Second, log, "Elasticsearch connection")
	if err != nil {
		return nil, nil, err
	}

	index := storage.NewSearchIndex(client.Client, cfg.ProviderIndex, log)
	if err := index.EnsureIndex(ctx); err != nil {
		return nil, nil, err
	}
	log.Info("Elasticsearch connected", map[string]interface{}{"index": cfg.ProviderIndex})
	return client, index, nil
}

// Close releases every opened connection.
func (s *Stores) Close() {
	if s.Redis != nil {
		s.Redis.Close()
	}
	if s.Postgres != nil {
		s.Postgres.Close()
	}
}

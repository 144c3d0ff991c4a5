package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"provider-matching-workers/internal/common/logger"
	"provider-matching-workers/internal/common/metrics"
	"provider-matching-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

const generationKey = "providers:gen"

// CandidateCache is a read-through Redis cache of candidate lists per
// country. Keys carry a generation number so one INCR invalidates every
// cached list after a merge.
type CandidateCache struct {
	redis  *redis.Client
	source CandidateSource
	ttl    time.Duration
	logger logger.Logger
}

func NewCandidateCache(client *redis.Client, source CandidateSource, ttl time.Duration, log logger.Logger) *CandidateCache {
	return &CandidateCache{
		redis:  client,
		source: source,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "candidate-cache"}),
	}
}

// ListProvidersByCountry serves from Redis when possible. Redis failures fall
// through to the source.
func (c *CandidateCache) ListProvidersByCountry(ctx context.Context, country string) ([]models.ProviderProfile, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		c.logger.Warn("candidate cache unavailable", map[string]interface{}{"error": err})
		metrics.CandidateCacheLookups.WithLabelValues("error").Inc()
		return c.source.ListProvidersByCountry(ctx, country)
	}

	key := candidateKey(gen, country)
	if val, err := c.redis.Get(ctx, key).Result(); err == nil {
		var providers []models.ProviderProfile
		if err := json.Unmarshal([]byte(val), &providers); err == nil {
			metrics.CandidateCacheLookups.WithLabelValues("hit").Inc()
			return providers, nil
		}
	}
	metrics.CandidateCacheLookups.WithLabelValues("miss").Inc()

	providers, err := c.source.ListProvidersByCountry(ctx, country)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(providers)
	if err != nil {
		return providers, nil
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to cache candidates", map[string]interface{}{
			"key":   key,
			"error": err,
		})
	}
	return providers, nil
}

// Invalidate retires every cached candidate list.
func (c *CandidateCache) Invalidate(ctx context.Context) error {
	if err := c.redis.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("invalidate candidate cache: %w", err)
	}
	return nil
}

func (c *CandidateCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.redis.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func candidateKey(gen int64, country string) string {
	country = strings.ToLower(strings.TrimSpace(country))
	if country == "" {
		country = "_all"
	}
	return fmt.Sprintf("providers:v%d:country:%s", gen, country)
}

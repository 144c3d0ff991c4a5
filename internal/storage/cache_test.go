package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"provider-matching-workers/internal/common/logger"
	"provider-matching-workers/internal/models"
)

type countingSource struct {
	calls     int
	err       error
	providers []models.ProviderProfile
}

func (s *countingSource) ListProvidersByCountry(ctx context.Context, country string) ([]models.ProviderProfile, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.providers, nil
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestCandidateCache_ReadThrough(t *testing.T) {
	mr, client := newMiniredis(t)
	source := &countingSource{providers: []models.ProviderProfile{{ID: "p1", Name: "Expo Design"}}}
	cache := NewCandidateCache(client, source, 5*time.Minute, logger.NewTestLogger(t))
	ctx := context.Background()

	first, err := cache.ListProvidersByCountry(ctx, "Germany")
	require.NoError(t, err)
	second, err := cache.ListProvidersByCountry(ctx, "germany")
	require.NoError(t, err)

	assert.Equal(t, 1, source.calls)
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists("providers:v0:country:germany"))
	assert.Equal(t, 5*time.Minute, mr.TTL("providers:v0:country:germany"))
}

func TestCandidateCache_InvalidateBumpsGeneration(t *testing.T) {
	mr, client := newMiniredis(t)
	source := &countingSource{providers: []models.ProviderProfile{{ID: "p1"}}}
	cache := NewCandidateCache(client, source, time.Minute, logger.NewTestLogger(t))
	ctx := context.Background()

	_, err := cache.ListProvidersByCountry(ctx, "")
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate(ctx))
	_, err = cache.ListProvidersByCountry(ctx, "")
	require.NoError(t, err)

	assert.Equal(t, 2, source.calls)
	assert.True(t, mr.Exists("providers:v1:country:_all"))

	gen, err := mr.Get(generationKey)
	require.NoError(t, err)
	assert.Equal(t, "1", gen)
}

func TestCandidateCache_SourceErrorIsReturned(t *testing.T) {
	_, client := newMiniredis(t)
	source := &countingSource{err: errors.New("db down")}
	cache := NewCandidateCache(client, source, time.Minute, logger.NewTestLogger(t))

	_, err := cache.ListProvidersByCountry(context.Background(), "Spain")
	assert.EqualError(t, err, "db down")
}

func TestCandidateCache_RedisMock(t *testing.T) {
	db, redisMock := redismock.NewClientMock()
	source := &countingSource{providers: []models.ProviderProfile{{ID: "p1"}}}
	cache := NewCandidateCache(db, source, time.Minute, logger.NewTestLogger(t))

	data, err := json.Marshal(source.providers)
	require.NoError(t, err)

	redisMock.ExpectGet(generationKey).SetVal("3")
	redisMock.ExpectGet("providers:v3:country:france").RedisNil()
	redisMock.ExpectSet("providers:v3:country:france", data, time.Minute).SetErr(errors.New("readonly replica"))

	providers, err := cache.ListProvidersByCountry(context.Background(), "France")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids(providers))
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestCandidateCache_RedisDownFallsThrough(t *testing.T) {
	db, redisMock := redismock.NewClientMock()
	source := &countingSource{providers: []models.ProviderProfile{{ID: "p1"}}}
	cache := NewCandidateCache(db, source, time.Minute, logger.NewTestLogger(t))

	redisMock.ExpectGet(generationKey).SetErr(errors.New("connection refused"))

	providers, err := cache.ListProvidersByCountry(context.Background(), "France")
	require.NoError(t, err)
	assert.Len(t, providers, 1)
	assert.Equal(t, 1, source.calls)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

package deduplication

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teagate/internal/config"
	"teagate/internal/constants"
	"teagate/internal/logger"
	"teagate/pkg/models"
)

type memoryRepository struct {
	mu   sync.Mutex
	keys map[string]time.Duration
	err  error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{keys: make(map[string]time.Duration)}
}

func (r *memoryRepository) SetNX(_ context.Context, key string, _ interface{}, ttl time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	if _, ok := r.keys[key]; ok {
		return false, nil
	}
	r.keys[key] = ttl
	return true, nil
}

func (r *memoryRepository) GetCacheSize(context.Context, string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.keys), r.err
}

func (r *memoryRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	delete(r.keys, key)
	return nil
}

func inspection(id string) models.InspectionEvent {
	return models.InspectionEvent{
		InspectionID:   id,
		LotCode:        "LOT-2026-001",
		Moisture:       8.8,
		PesticideLevel: 0.1,
		AromaScore:     78,
	}
}

func newTestService(t *testing.T, repo Repository, cfg config.InspectionConfig) *Service {
	t.Helper()
	svc, err := NewService(repo, cfg, logger.NopLogger())
	require.NoError(t, err)
	return svc
}

func TestCheck_FirstSeenIsUnique(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(t, repo, config.InspectionConfig{HashAlgorithm: "sha256", TTLSeconds: 60})

	first, err := svc.Check(context.Background(), inspection("insp-1"))
	require.NoError(t, err)
	assert.True(t, first.Unique)
	assert.NotEmpty(t, first.Hash)

	replay, err := svc.Check(context.Background(), inspection("insp-1"))
	require.NoError(t, err)
	assert.False(t, replay.Unique)
	assert.Equal(t, first.Hash, replay.Hash)

	other, err := svc.Check(context.Background(), inspection("insp-2"))
	require.NoError(t, err)
	assert.True(t, other.Unique)

	for key, ttl := range repo.keys {
		assert.Contains(t, key, constants.CacheKeyPrefixInspection)
		assert.Equal(t, time.Minute, ttl)
	}
}

func TestCheck_RedisErrorPolicy(t *testing.T) {
	redisDown := errors.New("dial tcp: connection refused")

	t.Run("allow", func(t *testing.T) {
		repo := newMemoryRepository()
		repo.err = redisDown
		svc := newTestService(t, repo, config.InspectionConfig{OnRedisError: constants.FallbackAllow})

		res, err := svc.Check(context.Background(), inspection("insp-1"))
		require.NoError(t, err)
		assert.True(t, res.Unique)
		assert.True(t, res.Fallback)
	})

	t.Run("deny", func(t *testing.T) {
		repo := newMemoryRepository()
		repo.err = redisDown
		svc := newTestService(t, repo, config.InspectionConfig{OnRedisError: constants.FallbackDeny})

		_, err := svc.Check(context.Background(), inspection("insp-1"))
		assert.ErrorIs(t, err, redisDown)
	})
}

func TestCheck_FieldsToHashSelection(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(t, repo, config.InspectionConfig{FieldsToHash: []string{"lot_code"}})

	first, err := svc.Check(context.Background(), inspection("insp-1"))
	require.NoError(t, err)
	second, err := svc.Check(context.Background(), inspection("insp-2"))
	require.NoError(t, err)

	assert.True(t, first.Unique)
	assert.False(t, second.Unique, "same lot code hashes the same when only lot_code is hashed")
}

func TestUpdateFieldsToHash(t *testing.T) {
	svc := newTestService(t, newMemoryRepository(), config.InspectionConfig{})
	assert.Equal(t, []string{"inspection_id", "lot_code"}, svc.GetFieldsToHash())

	require.NoError(t, svc.UpdateFieldsToHash([]string{"lot_code", "moisture"}))
	assert.Equal(t, []string{"lot_code", "moisture"}, svc.GetFieldsToHash())

	assert.Error(t, svc.UpdateFieldsToHash(nil))
	assert.Error(t, svc.UpdateFieldsToHash([]string{"colour"}))
	assert.Equal(t, []string{"lot_code", "moisture"}, svc.GetFieldsToHash())
}

func TestNewService_RejectsUnknownField(t *testing.T) {
	_, err := NewService(newMemoryRepository(), config.InspectionConfig{FieldsToHash: []string{"payload.x"}}, logger.NopLogger())
	assert.Error(t, err)
}

func TestCircuitBreakerRepository_OpensOnFailures(t *testing.T) {
	repo := newMemoryRepository()
	repo.err = errors.New("timeout")
	cb := NewCircuitBreakerRepository(repo, config.CircuitBreakerConfig{
		Enabled:      true,
		MinRequests:  2,
		FailureRatio: 0.5,
		Timeout:      time.Hour,
	})

	for i := 0; i < 2; i++ {
		_, err := cb.SetNX(context.Background(), "k", 1, time.Minute)
		require.Error(t, err)
	}
	assert.Equal(t, "open", cb.State())

	_, err := cb.SetNX(context.Background(), "k", 1, time.Minute)
	assert.ErrorContains(t, err, "circuit breaker is open")
}

func TestCircuitBreakerRepository_Disabled(t *testing.T) {
	cb := NewCircuitBreakerRepository(newMemoryRepository(), config.CircuitBreakerConfig{})
	ok, err := cb.SetNX(context.Background(), "k", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "disabled", cb.State())
}

func TestRelease_AllowsReprocessing(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(t, repo, config.InspectionConfig{})
	ctx := context.Background()

	first, err := svc.Check(ctx, inspection("insp-release"))
	require.NoError(t, err)
	require.True(t, first.Unique)

	require.NoError(t, svc.Release(ctx, first))

	again, err := svc.Check(ctx, inspection("insp-release"))
	require.NoError(t, err)
	assert.True(t, again.Unique)
}

func TestRelease_SkipsFallbackResults(t *testing.T) {
	repo := newMemoryRepository()
	repo.err = errors.New("redis down")
	svc := newTestService(t, repo, config.InspectionConfig{OnRedisError: constants.FallbackAllow})

	assert.NoError(t, svc.Release(context.Background(), Result{Unique: true, Hash: "abc", Fallback: true}))
}

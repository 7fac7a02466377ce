//go:build integration

package deduplication_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teagate/internal/config"
	"teagate/internal/deduplication"
	"teagate/internal/logger"
	"teagate/internal/testinfra"
	"teagate/pkg/models"
)

func TestRedisRepository(t *testing.T) {
	repo := deduplication.NewRepository(testinfra.Redis(t))
	ctx := context.Background()

	ok, err := repo.SetNX(ctx, "inspection:a", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.SetNX(ctx, "inspection:a", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.SetNX(ctx, "inspection:b", 1, time.Minute)
	require.NoError(t, err)

	size, err := repo.GetCacheSize(ctx, "inspection:")
	require.NoError(t, err)
	assert.Equal(t, 2, size)

	require.NoError(t, repo.Delete(ctx, "inspection:a"))
	ok, err = repo.SetNX(ctx, "inspection:a", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisRepository_TTL(t *testing.T) {
	repo := deduplication.NewRepository(testinfra.Redis(t))
	ctx := context.Background()

	ok, err := repo.SetNX(ctx, "inspection:ttl", 1, time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(2 * time.Second)

	ok, err = repo.SetNX(ctx, "inspection:ttl", 2, time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestService_WithRedis(t *testing.T) {
	repo := deduplication.NewCircuitBreakerRepository(deduplication.NewRepository(testinfra.Redis(t)), config.CircuitBreakerConfig{
		Enabled:      true,
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Second,
		FailureRatio: 0.5,
		MinRequests:  3,
	})
	svc, err := deduplication.NewService(repo, config.InspectionConfig{HashAlgorithm: "sha256", TTLSeconds: 60}, logger.NopLogger())
	require.NoError(t, err)
	ctx := context.Background()

	event := models.InspectionEvent{InspectionID: "insp-1", LotCode: "LOT-2026-001", Moisture: 8.8, PesticideLevel: 0.1, AromaScore: 78}

	first, err := svc.Check(ctx, event)
	require.NoError(t, err)
	assert.True(t, first.Unique)

	again, err := svc.Check(ctx, event)
	require.NoError(t, err)
	assert.False(t, again.Unique)

	require.NoError(t, svc.Release(ctx, first))
	released, err := svc.Check(ctx, event)
	require.NoError(t, err)
	assert.True(t, released.Unique)
}

package deduplication

import (
	"context"
	"fmt"
	"time"

	"teagate/internal/config"
	"teagate/pkg/circuitbreaker"
)

const breakerName = "redis-dedup"

// CircuitBreakerRepository stops calling Redis after repeated failures so
// the fallback policy kicks in without waiting on timeouts.
type CircuitBreakerRepository struct {
	repo Repository
	cb   *circuitbreaker.Wrapper
}

func NewCircuitBreakerRepository(repo Repository, cfg config.CircuitBreakerConfig) *CircuitBreakerRepository {
	if !cfg.Enabled {
		return &CircuitBreakerRepository{repo: repo}
	}
	return &CircuitBreakerRepository{
		repo: repo,
		cb:   circuitbreaker.NewWrapper(circuitbreaker.FromConfig(breakerName, cfg)),
	}
}

func (r *CircuitBreakerRepository) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	if r.cb == nil {
		return r.repo.SetNX(ctx, key, value, ttl)
	}

	ok, err := circuitbreaker.Execute(ctx, r.cb, func(ctx context.Context) (bool, error) {
		return r.repo.SetNX(ctx, key, value, ttl)
	})
	if err != nil && circuitbreaker.IsBreakerError(err) {
		return false, fmt.Errorf("circuit breaker is open for %s: %w", breakerName, err)
	}
	return ok, err
}

func (r *CircuitBreakerRepository) GetCacheSize(ctx context.Context, prefix string) (int, error) {
	if r.cb == nil {
		return r.repo.GetCacheSize(ctx, prefix)
	}
	return circuitbreaker.Execute(ctx, r.cb, func(ctx context.Context) (int, error) {
		return r.repo.GetCacheSize(ctx, prefix)
	})
}

func (r *CircuitBreakerRepository) Delete(ctx context.Context, key string) error {
	if r.cb == nil {
		return r.repo.Delete(ctx, key)
	}
	return circuitbreaker.Do(ctx, r.cb, func(ctx context.Context) error {
		return r.repo.Delete(ctx, key)
	})
}

func (r *CircuitBreakerRepository) State() string {
	if r.cb == nil {
		return "disabled"
	}
	return r.cb.State().String()
}

package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teagate/internal/config"
)

func TestExecute_ReturnsResult(t *testing.T) {
	w := NewWrapper(DefaultConfig("test-ok"))

	got, err := Execute(context.Background(), w, func(context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestExecute_OpensAfterFailures(t *testing.T) {
	cfg := FromConfig("test-trip", config.CircuitBreakerConfig{
		MinRequests:  2,
		FailureRatio: 0.5,
		Timeout:      time.Hour,
	})
	w := NewWrapper(cfg)
	boom := errors.New("redis down")

	for i := 0; i < 2; i++ {
		err := Do(context.Background(), w, func(context.Context) error { return boom })
		assert.ErrorIs(t, err, boom)
	}
	assert.True(t, w.IsOpen())

	called := false
	err := Do(context.Background(), w, func(context.Context) error {
		called = true
		return nil
	})
	assert.False(t, called)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.True(t, IsBreakerError(err))
}

func TestExecute_CancelledContext(t *testing.T) {
	w := NewWrapper(DefaultConfig("test-cancel"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Execute(ctx, w, func(context.Context) (string, error) {
		t.Fatal("must not be called")
		return "", nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, gobreaker.StateClosed, w.State())
}

func TestFromConfig_Defaults(t *testing.T) {
	cfg := FromConfig("defaults", config.CircuitBreakerConfig{})
	assert.Equal(t, uint32(3), cfg.MaxRequests)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.False(t, cfg.ReadyToTrip(gobreaker.Counts{Requests: 2, TotalFailures: 2}))
	assert.True(t, cfg.ReadyToTrip(gobreaker.Counts{Requests: 4, TotalFailures: 2}))
}

package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teagate/internal/config"
	pkgerrors "teagate/pkg/errors"
)

func fastPolicy(attempts int) Policy {
	return Policy{
		MaxAttempts:     attempts,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      2.0,
	}
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastPolicy(3), func() error {
		calls++
		if calls < 3 {
			return errors.New("broker unavailable")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	boom := errors.New("broker unavailable")
	err := Retry(context.Background(), fastPolicy(2), func() error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestRetry_StopsOnFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"wrapped fatal", NewFatalError(errors.New("bad payload"))},
		{"validation error", pkgerrors.ErrValidation.WithDetail("message", "lot_code is required")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), fastPolicy(5), func() error {
				calls++
				return tt.err
			})
			require.Error(t, err)
			assert.Equal(t, 1, calls)
		})
	}
}

func TestRetryWithCallback_ReportsAttempts(t *testing.T) {
	var attempts []int
	_ = RetryWithCallback(context.Background(), fastPolicy(3), func() error {
		return errors.New("timeout")
	}, func(attempt int, err error, next time.Duration) {
		attempts = append(attempts, attempt)
		assert.Greater(t, next, time.Duration(0))
	})
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestPolicyFromConfig(t *testing.T) {
	p := PolicyFromConfig(config.RetryConfig{MaxAttempts: 5, Multiplier: 1.5})
	assert.Equal(t, 5, p.MaxAttempts)
	assert.Equal(t, 1.5, p.Multiplier)
	assert.Equal(t, time.Second, p.InitialInterval)
}

func TestPolicyBackOff_StopsAfterMaxAttempts(t *testing.T) {
	p := Policy{MaxAttempts: 3, InitialInterval: 10 * time.Millisecond, MaxInterval: 40 * time.Millisecond, Multiplier: 2}
	b := p.backOff(context.Background())

	for i := 0; i < 2; i++ {
		delay := b.NextBackOff()
		assert.NotEqual(t, backoff.Stop, delay)
		assert.LessOrEqual(t, delay, 60*time.Millisecond)
	}
	assert.Equal(t, backoff.Stop, b.NextBackOff())
}

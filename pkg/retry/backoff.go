package retry

import (
	"context"

	"github.com/cenkalti/backoff/v4"
)

// backOff builds the exponential schedule for p, bounded by MaxAttempts and
// cancelled with ctx. A zero MaxElapsedTime never expires on its own.
func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialInterval
	exp.MaxInterval = p.MaxInterval
	exp.Multiplier = p.Multiplier
	exp.MaxElapsedTime = p.MaxElapsedTime

	return backoff.WithMaxRetries(backoff.WithContext(exp, ctx), uint64(p.MaxAttempts-1))
}

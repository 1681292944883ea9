package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/set-night/greenqash/internal/config"
	"github.com/set-night/greenqash/internal/domain"
)

// RetryPolicy controls retries of idempotent reads. Writes are never retried
// here: a repeated claim must reach the ledger and fail as already claimed.
type RetryPolicy struct {
	Initial  time.Duration
	Max      time.Duration
	Attempts uint64
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Initial:  config.ReadRetryInitial,
		Max:      config.ReadRetryMax,
		Attempts: config.ReadRetryAttempts,
	}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.Initial
	eb.MaxInterval = p.Max
	eb.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(eb, p.Attempts), ctx)
}

// retryRead runs op until it succeeds, fails with anything other than
// domain.ErrStoreUnavailable, or the policy gives up.
func retryRead[T any](ctx context.Context, p RetryPolicy, op func() (T, error)) (T, error) {
	v, err := backoff.RetryWithData(func() (T, error) {
		v, err := op()
		if err != nil && !errors.Is(err, domain.ErrStoreUnavailable) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, p.backOff(ctx))
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) && !errors.Is(err, domain.ErrStoreUnavailable) {
		// backoff reports the context error alone when it stops early
		err = fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return v, err
}

package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type Policy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: 1 * time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      2.0,
	}
}

// Retry runs fn under the policy's exponential backoff until it succeeds,
// the attempts are exhausted, or ctx is canceled.
func Retry(ctx context.Context, policy Policy, fn func() error) error {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 3
	}

	b := ExponentialBackoff(policy.InitialInterval, policy.MaxInterval, policy.Multiplier)
	b = backoff.WithContext(b, ctx)

	return backoff.Retry(fn, backoff.WithMaxRetries(b, uint64(policy.MaxAttempts-1)))
}

// RetryNotify is Retry with a callback invoked before each backoff wait.
func RetryNotify(ctx context.Context, policy Policy, fn func() error, notify func(err error, next time.Duration)) error {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 3
	}

	b := ExponentialBackoff(policy.InitialInterval, policy.MaxInterval, policy.Multiplier)
	b = backoff.WithContext(b, ctx)

	return backoff.RetryNotify(fn, backoff.WithMaxRetries(b, uint64(policy.MaxAttempts-1)), notify)
}

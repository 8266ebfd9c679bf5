package bridge

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds how often a failed fetch or send is attempted before
// the error is returned.
type RetryPolicy struct {
	Attempts       int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:       5,
		InitialBackoff: 2 * time.Second,
		MaxBackoff:     time.Minute,
	}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	if p.InitialBackoff > 0 {
		exp.InitialInterval = p.InitialBackoff
	}
	if p.MaxBackoff > 0 {
		exp.MaxInterval = p.MaxBackoff
	}
	exp.MaxElapsedTime = 0

	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)
}

// do runs op until it succeeds, the attempts are spent, or ctx is done.
func (p RetryPolicy) do(ctx context.Context, logger *slog.Logger, what string, op func() error) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := op()
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn(what+" failed, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait),
			slog.String("error", err.Error()),
		)
	}
	return backoff.RetryNotify(operation, p.backOff(ctx), notify)
}

package mailer

import (
	"context"
	"errors"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"go.uber.org/zap"

	"github.com/d60-Lab/journaly/pkg/logger"
)

// RetryPolicy bounds how often one message is retried.
type RetryPolicy struct {
	Attempts uint
	Delay    time.Duration
	MaxDelay time.Duration
}

// DefaultRetryPolicy is used when the configured policy is zero.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, Delay: 500 * time.Millisecond, MaxDelay: 10 * time.Second}

// SendWithRetry sends msg through t, retrying failures with backoff. It returns the number of
// attempts made and the last error.
func SendWithRetry(ctx context.Context, t Transport, msg Message, p RetryPolicy) (int, error) {
	if p.Attempts == 0 {
		p = DefaultRetryPolicy
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultRetryPolicy.MaxDelay
	}

	attempts := 0
	var lastErr error
	err := retry.Do(
		func() error {
			attempts++
			lastErr = t.Send(ctx, msg)
			if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
				return retry.Unrecoverable(lastErr)
			}
			return lastErr
		},
		retry.Attempts(p.Attempts),
		retry.Delay(p.Delay),
		retry.MaxDelay(p.MaxDelay),
		retry.MaxJitter(p.Delay),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			logger.Debug("retrying email send", zap.Uint("attempt", n), zap.String("to", msg.To), zap.Error(err))
		}),
	)
	if err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return attempts, lastErr
	}
	return attempts, nil
}

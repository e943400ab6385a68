package indexer

import (
	"context"
	"time"
)

const defaultRetryBackoff = 100 * time.Millisecond

// withRetry runs an RPC call up to maxRetries+1 times, doubling the wait
// between attempts. Callers map skipped slots to success before returning,
// so only transport and node errors are retried. Cancellation stops the
// loop immediately.
func withRetry(ctx context.Context, maxRetries int, backoff time.Duration, call func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}

	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(backoff << (attempt - 1))
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		if err = call(ctx); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return err
}

package transport

import (
	"context"
	"time"
)

const defaultBackoff = 100 * time.Millisecond

// Retry runs fn until it succeeds, returns an error retryable rejects, or
// maxRetries retries are spent. The delay doubles after each attempt. A nil
// retryable retries every error.
func Retry(ctx context.Context, maxRetries int, baseDelay time.Duration, retryable func(error) bool, fn func(context.Context) error) error {
	if baseDelay <= 0 {
		baseDelay = defaultBackoff
	}

	err := fn(ctx)
	for retries, delay := 0, baseDelay; err != nil && retries < maxRetries; retries, delay = retries+1, delay*2 {
		if retryable != nil && !retryable(err) {
			return err
		}
		if werr := sleep(ctx, delay); werr != nil {
			return werr
		}
		err = fn(ctx)
	}
	return err
}

// sleep waits for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// AngelaMos | 2026
// retry.go

package core

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// WithStoreRetry runs op, retrying transient store failures with bounded
// exponential backoff. Business errors (not-found, conflicts, validation)
// pass through untouched on the first attempt. Once attempts are exhausted
// the last transient error surfaces wrapped in ErrUnavailable so callers see
// a generic retryable failure rather than a driver internal.
func WithStoreRetry(
	ctx context.Context,
	maxAttempts int,
	op func() error,
) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(
		backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(50*time.Millisecond),
			backoff.WithMaxInterval(2*time.Second),
		),
		uint64(maxAttempts-1),
	), ctx)

	err := backoff.Retry(func() error {
		opErr := op()
		if opErr == nil {
			return nil
		}
		if IsRetryableStoreError(opErr) {
			return opErr
		}
		return backoff.Permanent(opErr)
	}, policy)
	if err == nil {
		return nil
	}

	if IsRetryableStoreError(err) {
		return fmt.Errorf("store retry exhausted: %w: %w", ErrUnavailable, err)
	}

	return err
}

// Package retry runs an operation with a fixed attempt budget, pausing
// between attempts while a predicate classifies the failure as transient.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrBudgetExceeded marks a failure that persisted through every attempt.
var ErrBudgetExceeded = errors.New("retry budget exceeded")

// Do invokes fn up to attempts times. A failure for which retryable returns
// false is returned immediately. Between retryable failures it sleeps for
// pause, honoring context cancellation. When the budget runs out the last
// error is returned wrapped in ErrBudgetExceeded.
func Do(ctx context.Context, attempts int, pause time.Duration, retryable func(error) bool, fn func() error) error {
	var lastErr error
	for i := 0; i < attempts; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		lastErr = err

		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pause):
		}
	}
	return fmt.Errorf("%w after %d attempts: %s", ErrBudgetExceeded, attempts, lastErr)
}

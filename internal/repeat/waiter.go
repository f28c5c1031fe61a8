package repeat

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Waiter blocks between attempts of an operation, for a duration decided by
// a backoff.BackOff.
type Waiter struct {
	backOff backoff.BackOff
}

func NewWaiter(backOff backoff.BackOff) *Waiter {
	backOff.Reset()
	return &Waiter{backOff: backOff}
}

// NewConstantWaiter returns a Waiter that always waits for interval.
func NewConstantWaiter(interval time.Duration) *Waiter {
	return NewWaiter(backoff.NewConstantBackOff(interval))
}

// Wait blocks for the next delay of the backoff, or until the context is done.
// Returns an error when the context is done, or the retry limit is reached.
// Otherwise, returns nil when the timer waited the full duration.
func (b Waiter) Wait(ctx context.Context) error {
	delay := b.backOff.NextBackOff()
	if delay == backoff.Stop {
		return fmt.Errorf("retry limit exceeded")
	}
	timer := time.NewTimer(delay)
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	}
}

package repeat

import (
	"context"
	"time"
)

// Run calls run, and then calls it again every interval until ctx is done.
// Calls never overlap: the interval is measured from the end of one call to
// the start of the next. Run blocks, and returns ctx.Err() once ctx is done.
func Run(ctx context.Context, interval time.Duration, run func(context.Context)) error {
	run(ctx)

	for {
		timer := time.NewTimer(interval)
		select {
		case <-timer.C:
			run(ctx)
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

// Package jobs waits for asynchronous operations on the appliance to finish.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dataway/truenas-cert-sync/api"
	"github.com/dataway/truenas-cert-sync/internal/logging"
	"github.com/dataway/truenas-cert-sync/internal/repeat"
)

const DefaultPollInterval = time.Second

var ErrJobNotFound = errors.New("job not found")

// FailedError is returned by Await when a job ends in any state other than
// SUCCESS.
type FailedError struct {
	JobID  api.JobID
	State  api.JobState
	Reason string
}

func (e *FailedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("job %d %v", e.JobID, e.State)
	}
	return fmt.Sprintf("job %d %v: %v", e.JobID, e.State, e.Reason)
}

// Result is the outcome of a job that finished successfully.
type Result struct {
	ID     api.JobID
	State  api.JobState
	Result json.RawMessage
}

type JobGetter interface {
	GetJob(ctx context.Context, id api.JobID) (*api.Job, error)
}

type waiter interface {
	Wait(ctx context.Context) error
}

type Tracker struct {
	client    JobGetter
	newWaiter func() waiter

	// ObserveFunc is called once for every job that reaches a terminal state,
	// with the time spent waiting for it.
	ObserveFunc func(state api.JobState, elapsed time.Duration)
}

// NewTracker returns a Tracker that queries the state of a job every interval.
// A zero interval uses DefaultPollInterval.
func NewTracker(client JobGetter, interval time.Duration) *Tracker {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Tracker{
		client: client,
		newWaiter: func() waiter {
			return repeat.NewConstantWaiter(interval)
		},
	}
}

// Await blocks until the job reaches a terminal state. There is no timeout,
// Await only returns early when ctx is done or the job can not be queried.
func (t *Tracker) Await(ctx context.Context, id api.JobID) (*Result, error) {
	start := time.Now()
	w := t.newWaiter()

	for {
		job, err := t.client.GetJob(ctx, id)
		switch {
		case errors.Is(err, api.ErrNotFound):
			return nil, fmt.Errorf("%w: %d", ErrJobNotFound, id)
		case err != nil:
			return nil, fmt.Errorf("get job %d: %w", id, err)
		}

		if job.State.Terminal() {
			if t.ObserveFunc != nil {
				t.ObserveFunc(job.State, time.Since(start))
			}
			if job.State != api.JobStateSuccess {
				return nil, &FailedError{JobID: id, State: job.State, Reason: job.Error}
			}
			logging.L.Debug().Int("job", int(id)).Str("method", job.Method).Msg("job finished")
			return &Result{ID: id, State: job.State, Result: job.Result}, nil
		}

		logging.Debugf("job %d is %v, waiting", id, job.State)
		if err := w.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for job %d: %w", id, err)
		}
	}
}

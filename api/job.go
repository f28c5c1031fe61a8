package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// JobID identifies an asynchronous operation on the appliance.
type JobID int

type JobState string

const (
	JobStateWaiting JobState = "WAITING"
	JobStateRunning JobState = "RUNNING"
	JobStateSuccess JobState = "SUCCESS"
	JobStateFailed  JobState = "FAILED"
	JobStateAborted JobState = "ABORTED"
)

// Terminal returns true once the job will no longer change state.
func (s JobState) Terminal() bool {
	switch s {
	case JobStateSuccess, JobStateFailed, JobStateAborted:
		return true
	}
	return false
}

type Job struct {
	ID     JobID           `json:"id"`
	Method string          `json:"method"`
	State  JobState        `json:"state"`
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

// GetJob returns the current state of a job. Returns ErrNotFound if the
// appliance has no job with that id.
func (c Client) GetJob(ctx context.Context, id JobID) (*Job, error) {
	query := url.Values{"id": []string{strconv.Itoa(int(id))}}
	jobs, err := get[[]Job](ctx, c, "/core/get_jobs", query)
	if err != nil {
		return nil, err
	}

	for _, job := range *jobs {
		if job.ID == id {
			return &job, nil
		}
	}
	return nil, fmt.Errorf("job %d: %w", id, ErrNotFound)
}

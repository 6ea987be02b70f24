package coordinator

import (
	"context"
	"sync"
	"time"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// Job is the single in-flight build of one artifact.
// Every request that joins the job observes the same result or error.
type Job struct {
	artifact domain.Artifact
	done     chan struct{}

	mu      sync.Mutex
	state   domain.JobState
	waiters int
	result  domain.BuildResult
	err     error
}

func newJob(artifact domain.Artifact) *Job {
	return &Job{
		artifact: artifact,
		done:     make(chan struct{}),
		state:    domain.JobStatePending,
	}
}

// Key returns the artifact key the job builds.
func (j *Job) Key() string {
	return j.artifact.Key
}

// Artifact returns the artifact the job builds.
func (j *Job) Artifact() domain.Artifact {
	return j.artifact
}

// State returns the current lifecycle state.
func (j *Job) State() domain.JobState {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Waiters returns the number of requests that joined the job.
func (j *Job) Waiters() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.waiters
}

// Done returns a channel that is closed when the job completes or fails.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Result returns the outcome of a finished job. It must only be called after Done is closed.
func (j *Job) Result() (domain.BuildResult, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result, j.err
}

// Wait blocks until the job finishes, ctx is done, or timeout elapses.
// A non-positive timeout waits without bound. Giving up does not affect the build.
func (j *Job) Wait(ctx context.Context, timeout time.Duration) (domain.BuildResult, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-j.done:
		return j.Result()
	case <-ctx.Done():
		return domain.BuildResult{}, zerr.With(zerr.Wrap(ctx.Err(), "stopped waiting for build"), "artifact", j.Key())
	case <-expired:
		err := zerr.With(zerr.Wrap(domain.ErrBuildWaitTimeout, "build of "+j.artifact.RequestPath+" is still running"), "artifact", j.Key())
		return domain.BuildResult{}, zerr.With(err, "timeout", timeout.String())
	}
}

func (j *Job) join() {
	j.mu.Lock()
	j.waiters++
	j.mu.Unlock()
}

func (j *Job) setRunning() {
	j.mu.Lock()
	if j.state == domain.JobStatePending {
		j.state = domain.JobStateRunning
	}
	j.mu.Unlock()
}

func (j *Job) finish(result domain.BuildResult, err error) {
	j.mu.Lock()
	j.result = result
	j.err = err
	if err != nil {
		j.state = domain.JobStateFailed
	} else {
		j.state = domain.JobStateDone
	}
	j.mu.Unlock()

	close(j.done)
}

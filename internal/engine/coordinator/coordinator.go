// Package coordinator guarantees that at most one build runs per artifact at a time.
package coordinator

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// BuildFunc produces an artifact. It runs only in the request that became the builder.
type BuildFunc func(ctx context.Context) (domain.BuildResult, error)

// JobStatus is a point-in-time view of a live job.
type JobStatus struct {
	Key     string
	Path    string
	State   domain.JobState
	Waiters int
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithWaitTimeout bounds how long Do waits on a build started by another caller.
func WithWaitTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		c.waitTimeout = d
	}
}

// Coordinator tracks the live build job of every artifact key.
//
// Its mutex guards only the job map. Compiling and writing happen outside it,
// so builds of different keys proceed in parallel.
type Coordinator struct {
	mu          sync.Mutex
	jobs        map[string]*Job
	waitTimeout time.Duration
}

// New creates a Coordinator.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		jobs:        make(map[string]*Job),
		waitTimeout: domain.DefaultWaitTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AcquireOrJoin returns the live job for the artifact, creating it if none exists.
// The second result is true for exactly one caller per job: the builder, who
// must later call Complete or Fail.
func (c *Coordinator) AcquireOrJoin(artifact domain.Artifact) (*Job, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if job, ok := c.jobs[artifact.Key]; ok {
		job.join()
		return job, false
	}

	job := newJob(artifact)
	c.jobs[artifact.Key] = job
	return job, true
}

// Complete retires the live job for key and releases its waiters with result.
func (c *Coordinator) Complete(key string, result domain.BuildResult) error {
	job, err := c.retire(key)
	if err != nil {
		return err
	}
	job.finish(result, nil)
	return nil
}

// Fail retires the live job for key and releases its waiters with cause.
func (c *Coordinator) Fail(key string, cause error) error {
	if cause == nil {
		cause = zerr.New("build failed without an error")
	}
	job, err := c.retire(key)
	if err != nil {
		return err
	}
	job.finish(domain.BuildResult{}, cause)
	return nil
}

func (c *Coordinator) retire(key string) (*Job, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	job, ok := c.jobs[key]
	if !ok {
		return nil, zerr.With(domain.ErrNoActiveJob, "artifact", key)
	}
	delete(c.jobs, key)
	return job, nil
}

// Do builds the artifact with fn, or waits on the build another caller already started.
//
// The builder runs fn detached from ctx cancellation so a departing client never
// aborts a build other requests are waiting on. A panic in fn fails the job.
// The second result reports whether this caller ran fn.
func (c *Coordinator) Do(ctx context.Context, artifact domain.Artifact, fn BuildFunc) (domain.BuildResult, bool, error) {
	job, builder := c.AcquireOrJoin(artifact)
	if !builder {
		result, err := job.Wait(ctx, c.waitTimeout)
		return result, false, err
	}

	job.setRunning()
	result, err := run(context.WithoutCancel(ctx), fn)
	if err != nil {
		_ = c.Fail(artifact.Key, err)
		return domain.BuildResult{}, true, err
	}
	_ = c.Complete(artifact.Key, result)
	return result, true, nil
}

func run(ctx context.Context, fn BuildFunc) (result domain.BuildResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = zerr.With(zerr.Wrap(domain.ErrBuildPanicked, fmt.Sprintf("panic: %v", r)), "panic", fmt.Sprint(r))
		}
	}()
	return fn(ctx)
}

// Snapshot reports the live jobs sorted by key.
func (c *Coordinator) Snapshot() []JobStatus {
	c.mu.Lock()
	jobs := make([]*Job, 0, len(c.jobs))
	for _, job := range c.jobs {
		jobs = append(jobs, job)
	}
	c.mu.Unlock()

	statuses := make([]JobStatus, 0, len(jobs))
	for _, job := range jobs {
		statuses = append(statuses, JobStatus{
			Key:     job.Key(),
			Path:    job.artifact.RequestPath,
			State:   job.State(),
			Waiters: job.Waiters(),
		})
	}
	slices.SortFunc(statuses, func(a, b JobStatus) int {
		return strings.Compare(a.Key, b.Key)
	})
	return statuses
}

// Len returns the number of live jobs.
func (c *Coordinator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.jobs)
}

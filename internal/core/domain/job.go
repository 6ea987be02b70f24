package domain

import "time"

// JobState represents the lifecycle state of a build job.
type JobState string

const (
	// JobStatePending indicates the job was created but the build has not started.
	JobStatePending JobState = "pending"
	// JobStateRunning indicates the builder is compiling the artifact.
	JobStateRunning JobState = "running"
	// JobStateDone indicates the build succeeded.
	JobStateDone JobState = "done"
	// JobStateFailed indicates the build failed.
	JobStateFailed JobState = "failed"
)

// IsTerminal checks if a state is a terminal state (Done, Failed).
func (s JobState) IsTerminal() bool {
	return s == JobStateDone || s == JobStateFailed
}

// BuildResult describes a finished build.
type BuildResult struct {
	// Artifact is the artifact that was built.
	Artifact Artifact
	// Size is the number of bytes written to the destination.
	Size int
	// SourceModTime is the source modification time the output was produced from.
	SourceModTime time.Time
	// Skipped is true when the builder found the artifact already fresh after acquiring the job.
	Skipped bool
	// Duration is the wall time of the build.
	Duration time.Duration
}

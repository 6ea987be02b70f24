package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

var (
	// ErrNothingEnabled is returned at setup when the enable list is empty.
	ErrNothingEnabled = zerr.New(`compiler's "enable" option is not set, nothing will be compiled`)

	// ErrUnknownTransform is returned when the enable list names a transform that is not registered.
	ErrUnknownTransform = zerr.New("unknown transform")

	// ErrTransformExists is returned when registering a transform name twice.
	ErrTransformExists = zerr.New("transform already registered")

	// ErrInvalidBinding is returned when a transform binding lacks a name, suffix or source extension.
	ErrInvalidBinding = zerr.New("invalid transform binding")

	// ErrInvalidVerifyMode is returned when the verify option is not "mtime" or "hash".
	ErrInvalidVerifyMode = zerr.New("invalid verify mode, expected 'mtime' or 'hash'")

	// ErrInvalidWaitTimeout is returned when the wait timeout cannot be parsed or is negative.
	ErrInvalidWaitTimeout = zerr.New("invalid wait timeout")

	// ErrFailedToGetRoot is returned when a source or destination root cannot be made absolute.
	ErrFailedToGetRoot = zerr.New("failed to get absolute path of root")

	// ErrStatFailed is returned when stating a source or artifact fails for a reason other than absence.
	ErrStatFailed = zerr.New("failed to stat path")

	// ErrSourceReadFailed is returned when the source file cannot be read.
	ErrSourceReadFailed = zerr.New("failed to read source file")

	// ErrTransformFailed is matched by every *TransformError.
	ErrTransformFailed = zerr.New("transform failed")

	// ErrCompilerNotFound is returned when the external compiler of a transform is not installed.
	ErrCompilerNotFound = zerr.New("compiler executable not found")

	// ErrWriteFailed is returned when an artifact cannot be written or renamed into place.
	ErrWriteFailed = zerr.New("failed to write artifact")

	// ErrBuildWaitTimeout is returned when a waiter gives up on an in-flight build.
	ErrBuildWaitTimeout = zerr.New("timed out waiting for build")

	// ErrBuildPanicked is returned to every waiter when the builder panics.
	ErrBuildPanicked = zerr.New("build panicked")

	// ErrNoActiveJob is returned when completing or failing a key that has no live job.
	ErrNoActiveJob = zerr.New("no active build job")

	// ErrStoreCreateFailed is returned when the build info store directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create build info store directory")

	// ErrStoreReadFailed is returned when the build info cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read build info")

	// ErrStoreUnmarshalFailed is returned when the build info cannot be unmarshaled.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal build info")

	// ErrStoreMarshalFailed is returned when the build info cannot be marshaled.
	ErrStoreMarshalFailed = zerr.New("failed to marshal build info")

	// ErrStoreWriteFailed is returned when the build info cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write build info")

	// ErrFileHashFailed is returned when hashing a file fails.
	ErrFileHashFailed = zerr.New("failed to hash file content")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrBuildExecutionFailed is returned when kiln build finishes with failed artifacts.
	ErrBuildExecutionFailed = zerr.New("build execution failed")

	// ErrServerFailed is returned when the HTTP server stops with an error.
	ErrServerFailed = zerr.New("server failed")
)

// TransformError reports that a compiler rejected its input or crashed.
type TransformError struct {
	// Name is the transform name.
	Name string
	// Message is the compiler's own diagnostic, if any.
	Message string
	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *TransformError) Error() string {
	var b strings.Builder
	b.WriteString(e.Name)
	b.WriteString(": ")
	b.WriteString(ErrTransformFailed.Error())
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *TransformError) Unwrap() error {
	return e.Cause
}

// Is makes errors.Is(err, ErrTransformFailed) hold for every TransformError.
func (e *TransformError) Is(target error) bool {
	return target == ErrTransformFailed
}

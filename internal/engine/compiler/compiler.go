// Package compiler brings derived assets up to date on request.
//
// A request path is resolved to an artifact, checked for freshness, and when
// stale rebuilt through the coordinator so that concurrent requests for the
// same artifact share one build.
package compiler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"time"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/coordinator"
	"go.trai.ch/zerr"
)

var _ ports.AssetCompiler = (*Compiler)(nil)

// Option configures a Compiler.
type Option func(*Compiler)

// WithTracer sets the tracer used for request and build spans.
func WithTracer(tracer ports.Tracer) Option {
	return func(c *Compiler) {
		c.tracer = tracer
	}
}

// WithBuildInfo records a BuildInfo for every build, hashing sources with hasher.
func WithBuildInfo(store ports.BuildInfoStore, hasher ports.Hasher) Option {
	return func(c *Compiler) {
		c.store = store
		c.hasher = hasher
	}
}

// WithLogger sets the logger for non-fatal problems such as failing to record build info.
func WithLogger(logger ports.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// Compiler implements ports.AssetCompiler.
type Compiler struct {
	src      string
	dest     string
	verify   domain.VerifyMode
	bindings []domain.Binding

	registry ports.TransformRegistry
	oracle   ports.FreshnessOracle
	reader   ports.SourceReader
	writer   ports.ArtifactWriter
	coord    *coordinator.Coordinator

	tracer ports.Tracer
	store  ports.BuildInfoStore
	hasher ports.Hasher
	logger ports.Logger
}

// New validates opts and creates a Compiler.
// Configuration errors, such as an empty enable list, are reported here rather than per request.
func New(
	opts domain.Options,
	registry ports.TransformRegistry,
	oracle ports.FreshnessOracle,
	reader ports.SourceReader,
	writer ports.ArtifactWriter,
	options ...Option,
) (*Compiler, error) {
	bindings, err := registry.Enabled(opts.Enable)
	if err != nil {
		return nil, err
	}

	src, dest, err := roots(opts.Src, opts.Dest)
	if err != nil {
		return nil, err
	}

	verify := opts.Verify
	switch verify {
	case "":
		verify = domain.VerifyMtime
	case domain.VerifyMtime, domain.VerifyHash:
	default:
		return nil, zerr.With(domain.ErrInvalidVerifyMode, "verify", string(verify))
	}

	timeout := opts.WaitTimeout
	switch {
	case timeout == 0:
		timeout = domain.DefaultWaitTimeout
	case timeout < 0:
		return nil, zerr.With(domain.ErrInvalidWaitTimeout, "wait_timeout", timeout.String())
	}

	c := &Compiler{
		src:      src,
		dest:     dest,
		verify:   verify,
		bindings: bindings,
		registry: registry,
		oracle:   oracle,
		reader:   reader,
		writer:   writer,
		coord:    coordinator.New(coordinator.WithWaitTimeout(timeout)),
		tracer:   noopTracer{},
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

func roots(src, dest string) (string, string, error) {
	if src == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", "", zerr.Wrap(err, domain.ErrFailedToGetRoot.Error())
		}
		src = wd
	}
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return "", "", zerr.With(zerr.Wrap(err, domain.ErrFailedToGetRoot.Error()), "path", src)
	}

	if dest == "" {
		return absSrc, absSrc, nil
	}
	absDest, err := filepath.Abs(dest)
	if err != nil {
		return "", "", zerr.With(zerr.Wrap(err, domain.ErrFailedToGetRoot.Error()), "path", dest)
	}
	return absSrc, absDest, nil
}

// Src returns the absolute source root.
func (c *Compiler) Src() string {
	return c.src
}

// Dest returns the absolute destination root.
func (c *Compiler) Dest() string {
	return c.dest
}

// Verify returns the freshness strategy the compiler was configured with.
func (c *Compiler) Verify() domain.VerifyMode {
	return c.verify
}

// Bindings returns the enabled bindings in priority order.
func (c *Compiler) Bindings() []domain.Binding {
	return slices.Clone(c.bindings)
}

// Resolve maps a request path using the enabled bindings.
func (c *Compiler) Resolve(requestPath string) (domain.Artifact, bool) {
	return Resolve(requestPath, c.bindings, c.src, c.dest)
}

// RequestPaths returns the request paths served from a source file.
func (c *Compiler) RequestPaths(sourcePath string) []string {
	return RequestPaths(sourcePath, c.bindings, c.src)
}

// Jobs reports the builds currently in flight.
func (c *Compiler) Jobs() []coordinator.JobStatus {
	return c.coord.Snapshot()
}

// Ensure brings the artifact for requestPath up to date.
//
// A nil error means the request may proceed: the path is not handled, its
// source does not exist, or the artifact is fresh or was just built. Build
// errors are shared by every request that waited on the same build.
func (c *Compiler) Ensure(ctx context.Context, requestPath string) (domain.Outcome, error) {
	ctx, span := c.tracer.Start(ctx, domain.SpanEnsure, ports.WithAttribute(domain.AttrRequestPath, requestPath))
	defer span.End()

	outcome, err := c.ensure(ctx, span, requestPath)
	span.SetAttribute(domain.AttrOutcome, outcome)
	if err != nil {
		span.RecordError(err)
	}
	return outcome, err
}

func (c *Compiler) ensure(ctx context.Context, span ports.Span, requestPath string) (domain.Outcome, error) {
	artifact, ok := c.Resolve(requestPath)
	if !ok {
		return domain.OutcomeNotApplicable, nil
	}

	verdict, err := c.oracle.Check(ctx, artifact.Source, artifact.Key)
	if err != nil {
		return domain.OutcomeNotApplicable, err
	}
	span.SetAttribute(domain.AttrVerdict, verdict)

	switch verdict {
	case domain.VerdictSourceMissing:
		return domain.OutcomeSourceMissing, nil
	case domain.VerdictDestFresh:
		return domain.OutcomeFresh, nil
	}

	result, built, err := c.coord.Do(ctx, artifact, func(bctx context.Context) (domain.BuildResult, error) {
		return c.build(bctx, artifact)
	})

	switch {
	case !built:
		return domain.OutcomeJoined, err
	case err != nil:
		return domain.OutcomeBuilt, err
	case result.Skipped:
		return domain.OutcomeFresh, nil
	default:
		return domain.OutcomeBuilt, nil
	}
}

// build runs in the single builder of a job.
func (c *Compiler) build(ctx context.Context, artifact domain.Artifact) (domain.BuildResult, error) {
	ctx, span := c.tracer.Start(ctx, domain.SpanBuild,
		ports.WithAttribute(domain.AttrRequestPath, artifact.RequestPath),
		ports.WithAttribute(domain.AttrArtifact, artifact.Key),
		ports.WithAttribute(domain.AttrTransform, artifact.Binding.Name),
	)
	defer span.End()

	result, err := c.compile(ctx, artifact)
	span.SetAttribute(domain.AttrSkipped, result.Skipped)
	span.SetAttribute(domain.AttrBytes, result.Size)
	if err != nil {
		span.RecordError(err)
	}
	return result, err
}

func (c *Compiler) compile(ctx context.Context, artifact domain.Artifact) (domain.BuildResult, error) {
	start := time.Now()
	result := domain.BuildResult{Artifact: artifact}

	// Another builder may have finished between the first check and acquiring the job.
	verdict, err := c.oracle.Check(ctx, artifact.Source, artifact.Key)
	if err != nil {
		return result, err
	}
	if !verdict.NeedsBuild() {
		result.Skipped = true
		return result, nil
	}

	source, modTime, err := c.reader.Read(artifact.Source)
	if err != nil {
		return result, err
	}

	name := artifact.Binding.Name
	tr, err := c.registry.Transform(name)
	if err != nil {
		return result, asTransformError(name, err)
	}

	out, err := tr.Compile(ctx, source)
	if err != nil {
		return result, asTransformError(name, err)
	}

	if err := c.writer.Write(artifact.Key, out, modTime); err != nil {
		return result, err
	}

	result.Size = len(out)
	result.SourceModTime = modTime
	result.Duration = time.Since(start)

	c.record(artifact, source, result)
	return result, nil
}

func (c *Compiler) record(artifact domain.Artifact, source []byte, result domain.BuildResult) {
	if c.store == nil || c.hasher == nil {
		return
	}

	err := c.store.Put(domain.BuildInfo{
		Artifact:      artifact.Key,
		Transform:     artifact.Binding.Name,
		SourceHash:    c.hasher.ComputeHash(source),
		SourceModTime: result.SourceModTime,
		Size:          result.Size,
		Timestamp:     time.Now(),
	})
	if err != nil && c.logger != nil {
		c.logger.Warn("could not record build info for " + artifact.RequestPath + ": " + err.Error())
	}
}

func asTransformError(name string, err error) error {
	var tErr *domain.TransformError
	if errors.As(err, &tErr) {
		return err
	}
	return &domain.TransformError{Name: name, Cause: err}
}

package domain

// Span names emitted by the compiler.
const (
	// SpanEnsure covers one request from resolution to its terminal outcome.
	SpanEnsure = "kiln.ensure"
	// SpanBuild covers one compile and write, run by the builder of a job.
	SpanBuild = "kiln.build"
)

// Span attribute keys.
const (
	AttrRequestPath = "kiln.request_path"
	AttrArtifact    = "kiln.artifact"
	AttrTransform   = "kiln.transform"
	AttrVerdict     = "kiln.verdict"
	AttrOutcome     = "kiln.outcome"
	AttrBytes       = "kiln.bytes"
	AttrSkipped     = "kiln.skipped"
)

package domain

// Verdict is the result of comparing a source file against its derived artifact.
type Verdict uint8

const (
	// VerdictSourceMissing means there is no source file, so nothing can be built.
	VerdictSourceMissing Verdict = iota
	// VerdictDestMissing means the artifact has never been built.
	VerdictDestMissing
	// VerdictDestStale means the source was modified after the artifact.
	VerdictDestStale
	// VerdictDestFresh means the artifact is at least as new as its source.
	VerdictDestFresh
)

// String returns the string representation of the Verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictSourceMissing:
		return "source-missing"
	case VerdictDestMissing:
		return "dest-missing"
	case VerdictDestStale:
		return "dest-stale"
	case VerdictDestFresh:
		return "dest-fresh"
	default:
		return "unknown"
	}
}

// NeedsBuild reports whether the verdict requires a rebuild.
func (v Verdict) NeedsBuild() bool {
	return v == VerdictDestMissing || v == VerdictDestStale
}

// Outcome is the terminal classification of a single request.
type Outcome uint8

const (
	// OutcomeNotApplicable means no enabled transform claims the request path.
	OutcomeNotApplicable Outcome = iota
	// OutcomeSourceMissing means a transform matched but its source file does not exist.
	OutcomeSourceMissing
	// OutcomeFresh means the artifact was already up to date.
	OutcomeFresh
	// OutcomeBuilt means this request ran the build.
	OutcomeBuilt
	// OutcomeJoined means this request waited on a build started by another request.
	OutcomeJoined
)

// String returns the string representation of the Outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeNotApplicable:
		return "not-applicable"
	case OutcomeSourceMissing:
		return "source-missing"
	case OutcomeFresh:
		return "fresh"
	case OutcomeBuilt:
		return "built"
	case OutcomeJoined:
		return "joined"
	default:
		return "unknown"
	}
}

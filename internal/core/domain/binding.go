package domain

import "strings"

// Binding ties a transform to the request paths it claims and the source files it reads.
type Binding struct {
	// Name is the transform name used in the enable list (e.g. "stylus").
	Name string
	// Suffix is the request path suffix the transform serves (e.g. ".css").
	Suffix string
	// SourceExt is the extension of the source file that replaces Suffix (e.g. ".styl").
	SourceExt string
}

// Matches reports whether the request path ends with the binding suffix and
// names an actual file, so "/.css" does not match.
func (b Binding) Matches(requestPath string) bool {
	if b.Suffix == "" || !strings.HasSuffix(requestPath, b.Suffix) {
		return false
	}
	stem := strings.TrimSuffix(requestPath, b.Suffix)
	return stem != "" && !strings.HasSuffix(stem, "/")
}

// SourceFor returns the request path with the matched suffix swapped for the source extension.
func (b Binding) SourceFor(requestPath string) string {
	return strings.TrimSuffix(requestPath, b.Suffix) + b.SourceExt
}

// Artifact identifies one compiled output and the source it is derived from.
type Artifact struct {
	// Key is the absolute destination path. It is the coordination unit for builds.
	Key string
	// Source is the absolute source path.
	Source string
	// RequestPath is the cleaned URL path that resolved to this artifact.
	RequestPath string
	// Binding is the transform binding that claimed the request.
	Binding Binding
}

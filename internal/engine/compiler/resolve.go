package compiler

import (
	"path"
	"path/filepath"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
)

// Resolve maps a request path to the artifact of the first binding that claims it.
//
// The path is cleaned as a rooted URL path first, so ".." segments cannot leave
// srcRoot or destRoot. Resolve does no I/O; the second result is false when no
// binding applies.
func Resolve(requestPath string, bindings []domain.Binding, srcRoot, destRoot string) (domain.Artifact, bool) {
	if requestPath == "" || strings.HasSuffix(requestPath, "/") {
		return domain.Artifact{}, false
	}
	cleaned := path.Clean("/" + requestPath)

	for _, b := range bindings {
		if !b.Matches(cleaned) {
			continue
		}
		return domain.Artifact{
			Key:         filepath.Join(destRoot, filepath.FromSlash(cleaned)),
			Source:      filepath.Join(srcRoot, filepath.FromSlash(b.SourceFor(cleaned))),
			RequestPath: cleaned,
			Binding:     b,
		}, true
	}
	return domain.Artifact{}, false
}

// RequestPaths returns the request paths that bindings would serve from
// sourcePath, in binding order. sourcePath must lie under srcRoot.
func RequestPaths(sourcePath string, bindings []domain.Binding, srcRoot string) []string {
	rel, err := filepath.Rel(srcRoot, sourcePath)
	if err != nil || rel == "." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." {
		return nil
	}
	urlPath := "/" + filepath.ToSlash(rel)

	var paths []string
	for _, b := range bindings {
		stem, ok := strings.CutSuffix(urlPath, b.SourceExt)
		if !ok {
			continue
		}
		requestPath := stem + b.Suffix
		// Only report paths that resolve back to this binding.
		if first, ok := Resolve(requestPath, bindings, srcRoot, srcRoot); ok && first.Binding == b {
			paths = append(paths, requestPath)
		}
	}
	return paths
}

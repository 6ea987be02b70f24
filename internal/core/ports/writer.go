package ports

import "time"

// ArtifactWriter persists compiled output.
//
//go:generate go run go.uber.org/mock/mockgen -source=writer.go -destination=mocks/mock_writer.go -package=mocks
type ArtifactWriter interface {
	// Write replaces dest with data so that readers see either the old or the new file, never a partial one.
	// The file's modification time is set to modTime.
	Write(dest string, data []byte, modTime time.Time) error
}

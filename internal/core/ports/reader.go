package ports

import "time"

// SourceReader reads source files.
//
//go:generate go run go.uber.org/mock/mockgen -source=reader.go -destination=mocks/mock_reader.go -package=mocks
type SourceReader interface {
	// Read returns the content of path and the modification time observed
	// before the content was read.
	Read(path string) ([]byte, time.Time, error)
}

package ports

import (
	"context"
	"iter"
)

// WatchOp represents the kind of change observed on a source file.
type WatchOp uint8

const (
	// OpWrite indicates a file was created or modified.
	OpWrite WatchOp = iota
	// OpRemove indicates a file was removed or renamed away.
	OpRemove
)

// WatchEvent represents a change to a file under the watched root.
type WatchEvent struct {
	// Path is the absolute path of the file that changed.
	Path string
	// Operation is the kind of change.
	Operation WatchOp
}

// Watcher reports changes to files under a directory tree.
//
//go:generate go run go.uber.org/mock/mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type Watcher interface {
	// Start begins watching root recursively until ctx is done or Stop is called.
	Start(ctx context.Context, root string) error
	// Stop stops the watcher and releases all resources.
	Stop() error
	// Events returns an iterator of file events. It ends when the watcher stops.
	Events() iter.Seq[WatchEvent]
}

package fs

import (
	"io"
	"os"
	"time"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.SourceReader = (*SourceReader)(nil)

// SourceReader reads source files together with the modification time they were read at.
type SourceReader struct{}

// NewSourceReader creates a new SourceReader.
func NewSourceReader() *SourceReader {
	return &SourceReader{}
}

// Read stats the open file before reading it. An edit that lands during the
// read carries a later modification time, so an artifact stamped with the
// returned time is stale relative to it.
func (r *SourceReader) Read(path string) ([]byte, time.Time, error) {
	f, err := os.Open(path) //nolint:gosec // Path is resolved under the source root
	if err != nil {
		return nil, time.Time{}, zerr.With(zerr.Wrap(err, domain.ErrSourceReadFailed.Error()), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	info, err := f.Stat()
	if err != nil {
		return nil, time.Time{}, zerr.With(zerr.Wrap(err, domain.ErrStatFailed.Error()), "path", path)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, time.Time{}, zerr.With(zerr.Wrap(err, domain.ErrSourceReadFailed.Error()), "path", path)
	}

	return data, info.ModTime(), nil
}

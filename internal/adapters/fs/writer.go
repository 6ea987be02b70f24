package fs

import (
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ArtifactWriter = (*AtomicWriter)(nil)

// AtomicWriter writes artifacts through a temporary file and a rename.
type AtomicWriter struct{}

// NewAtomicWriter creates a new AtomicWriter.
func NewAtomicWriter() *AtomicWriter {
	return &AtomicWriter{}
}

// Write replaces dest with data. The temporary file lives next to dest so the
// final rename stays on one filesystem. On failure the temporary file is
// removed and any previous dest is left untouched.
func (w *AtomicWriter) Write(dest string, data []byte, modTime time.Time) (err error) {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return writeFailed(err, dest)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".tmp-*")
	if err != nil {
		return writeFailed(err, dest)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return writeFailed(err, dest)
	}
	if err := tmp.Sync(); err != nil {
		return writeFailed(err, dest)
	}
	if err := tmp.Close(); err != nil {
		return writeFailed(err, dest)
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return writeFailed(err, dest)
	}
	if !modTime.IsZero() {
		if err := os.Chtimes(tmpName, modTime, modTime); err != nil {
			return writeFailed(err, dest)
		}
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return writeFailed(err, dest)
	}

	return nil
}

func writeFailed(err error, dest string) error {
	return zerr.With(zerr.Wrap(err, domain.ErrWriteFailed.Error()), "path", dest)
}

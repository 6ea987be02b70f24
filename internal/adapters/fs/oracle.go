package fs

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.FreshnessOracle = (*StatOracle)(nil)

// StatOracle decides freshness by comparing modification times.
type StatOracle struct{}

// NewStatOracle creates a new StatOracle.
func NewStatOracle() *StatOracle {
	return &StatOracle{}
}

// Check stats source and dest and compares their modification times.
// Equal modification times count as fresh.
func (o *StatOracle) Check(_ context.Context, source, dest string) (domain.Verdict, error) {
	srcInfo, err := os.Stat(source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.VerdictSourceMissing, nil
		}
		return domain.VerdictSourceMissing, zerr.With(zerr.Wrap(err, domain.ErrStatFailed.Error()), "path", source)
	}

	destInfo, err := os.Stat(dest)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.VerdictDestMissing, nil
		}
		return domain.VerdictDestMissing, zerr.With(zerr.Wrap(err, domain.ErrStatFailed.Error()), "path", dest)
	}

	if srcInfo.ModTime().After(destInfo.ModTime()) {
		return domain.VerdictDestStale, nil
	}
	return domain.VerdictDestFresh, nil
}

package fs

import (
	"context"
	"os"
	"strconv"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

var _ ports.FreshnessOracle = (*HashOracle)(nil)

// HashOracle refines a modification time verdict with a content hash.
//
// A source that was touched without changing its content keeps its artifact:
// the artifact's modification time is bumped to the source's instead of rebuilding.
type HashOracle struct {
	next   ports.FreshnessOracle
	hasher ports.Hasher
	store  ports.BuildInfoStore
	group  singleflight.Group
}

// NewHashOracle creates a HashOracle deferring to next for the initial verdict.
func NewHashOracle(next ports.FreshnessOracle, hasher ports.Hasher, store ports.BuildInfoStore) *HashOracle {
	return &HashOracle{
		next:   next,
		hasher: hasher,
		store:  store,
	}
}

// Check returns the verdict of the underlying oracle, except that a stale
// artifact whose recorded source hash still matches is reported fresh.
//
// A record is trusted only when its source modification time equals the
// artifact's: the writer stamps every artifact with the mtime of the source it
// was built from, so any other stamp means the record predates the artifact.
func (o *HashOracle) Check(ctx context.Context, source, dest string) (domain.Verdict, error) {
	verdict, err := o.next.Check(ctx, source, dest)
	if err != nil || verdict != domain.VerdictDestStale {
		return verdict, err
	}

	info, err := o.store.Get(dest)
	if err != nil {
		return verdict, err
	}
	if info == nil || info.SourceHash == "" {
		return verdict, nil
	}

	destInfo, err := os.Stat(dest)
	if err != nil {
		return verdict, zerr.With(zerr.Wrap(err, domain.ErrStatFailed.Error()), "path", dest)
	}
	if !destInfo.ModTime().Equal(info.SourceModTime) {
		return verdict, nil
	}

	srcInfo, err := os.Stat(source)
	if err != nil {
		return verdict, zerr.With(zerr.Wrap(err, domain.ErrStatFailed.Error()), "path", source)
	}
	modTime := srcInfo.ModTime()

	// Callers that observed the same source revision share one hash computation.
	key := source + "@" + strconv.FormatInt(modTime.UnixNano(), 10)
	v, err, _ := o.group.Do(key, func() (any, error) {
		return o.hasher.ComputeFileHash(source)
	})
	if err != nil {
		return verdict, err
	}

	if v.(string) != info.SourceHash {
		return verdict, nil
	}

	if err := os.Chtimes(dest, modTime, modTime); err != nil {
		// The artifact could not be re-stamped; rebuilding it is always correct.
		return verdict, nil //nolint:nilerr // fall back to a rebuild
	}

	// An unrecorded stamp only costs a rebuild on the next touch.
	info.SourceModTime = modTime
	_ = o.store.Put(*info)

	return domain.VerdictDestFresh, nil
}

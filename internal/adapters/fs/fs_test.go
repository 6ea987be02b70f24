package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func writeFile(t *testing.T, path, content string, modTime time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
	if !modTime.IsZero() {
		require.NoError(t, os.Chtimes(path, modTime, modTime))
	}
}

func TestWalker_WalkFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "css", "app.styl"), "body", time.Time{})
	writeFile(t, filepath.Join(root, "app.coffee"), "x = 1", time.Time{})
	writeFile(t, filepath.Join(root, ".git", "config"), "", time.Time{})
	writeFile(t, filepath.Join(root, domain.KilnDirName, "store", "a.json"), "{}", time.Time{})
	writeFile(t, filepath.Join(root, "node_modules", "lib.coffee"), "", time.Time{})

	var got []string
	for path := range fs.NewWalker().WalkFiles(root, []string{"node_modules"}) {
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		got = append(got, rel)
	}
	slices.Sort(got)

	assert.Equal(t, []string{"app.coffee", filepath.Join("css", "app.styl")}, got)
}

func TestWalker_WalkFiles_StopEarly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.styl"), "", time.Time{})
	writeFile(t, filepath.Join(root, "b.styl"), "", time.Time{})

	count := 0
	for range fs.NewWalker().WalkFiles(root, nil) {
		count++
		break
	}

	assert.Equal(t, 1, count)
}

func TestHasher(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "app.styl")
	writeFile(t, path, "body\n  color red\n", time.Time{})

	h := fs.NewHasher()
	fileHash, err := h.ComputeFileHash(path)
	require.NoError(t, err)

	assert.Len(t, fileHash, 16)
	assert.Equal(t, h.ComputeHash([]byte("body\n  color red\n")), fileHash)
	assert.NotEqual(t, h.ComputeHash([]byte("body\n  color blue\n")), fileHash)
}

func TestHasher_MissingFile(t *testing.T) {
	_, err := fs.NewHasher().ComputeFileHash(filepath.Join(t.TempDir(), "missing"))

	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to open file")
}

func TestStatOracle_Check(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name      string
		sourceAt  *time.Time
		destAt    *time.Time
		want      domain.Verdict
		wantBuild bool
	}{
		{name: "source missing", sourceAt: nil, destAt: ptr(base), want: domain.VerdictSourceMissing},
		{name: "source and dest missing", sourceAt: nil, destAt: nil, want: domain.VerdictSourceMissing},
		{name: "dest missing", sourceAt: ptr(base), destAt: nil, want: domain.VerdictDestMissing, wantBuild: true},
		{name: "source newer", sourceAt: ptr(base.Add(time.Second)), destAt: ptr(base), want: domain.VerdictDestStale, wantBuild: true},
		{name: "dest newer", sourceAt: ptr(base), destAt: ptr(base.Add(time.Second)), want: domain.VerdictDestFresh},
		{name: "equal mtimes are fresh", sourceAt: ptr(base), destAt: ptr(base), want: domain.VerdictDestFresh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			source := filepath.Join(root, "src", "app.styl")
			dest := filepath.Join(root, "public", "app.css")
			if tt.sourceAt != nil {
				writeFile(t, source, "body", *tt.sourceAt)
			}
			if tt.destAt != nil {
				writeFile(t, dest, "body{}", *tt.destAt)
			}

			got, err := fs.NewStatOracle().Check(context.Background(), source, dest)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantBuild, got.NeedsBuild())
		})
	}
}

func TestStatOracle_StatError(t *testing.T) {
	root := t.TempDir()
	// A path below a regular file fails with ENOTDIR rather than "not found".
	file := filepath.Join(root, "file")
	writeFile(t, file, "", time.Time{})
	source := filepath.Join(root, "app.styl")
	writeFile(t, source, "body", time.Time{})

	_, err := fs.NewStatOracle().Check(context.Background(), source, filepath.Join(file, "app.css"))

	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrStatFailed.Error())
}

func TestHashOracle_Check(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	touched := base.Add(time.Minute)
	content := "body\n  color red\n"
	sourceHash := fs.NewHasher().ComputeHash([]byte(content))

	tests := []struct {
		name     string
		stored   *domain.BuildInfo
		want     domain.Verdict
		wantBump bool
	}{
		{name: "no build info", stored: nil, want: domain.VerdictDestStale},
		{
			name:     "hash unchanged",
			stored:   &domain.BuildInfo{SourceHash: sourceHash, SourceModTime: base},
			want:     domain.VerdictDestFresh,
			wantBump: true,
		},
		{
			name:   "hash changed",
			stored: &domain.BuildInfo{SourceHash: "0000000000000000", SourceModTime: base},
			want:   domain.VerdictDestStale,
		},
		{
			name:   "record from an earlier build",
			stored: &domain.BuildInfo{SourceHash: sourceHash, SourceModTime: base.Add(-time.Hour)},
			want:   domain.VerdictDestStale,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := mocks.NewMockBuildInfoStore(ctrl)

			root := t.TempDir()
			source := filepath.Join(root, "app.styl")
			dest := filepath.Join(root, "app.css")
			writeFile(t, source, content, touched)
			writeFile(t, dest, "body{color:red}", base)

			store.EXPECT().Get(dest).Return(tt.stored, nil)
			if tt.wantBump {
				store.EXPECT().Put(gomock.Cond(func(info domain.BuildInfo) bool {
					return info.SourceHash == sourceHash && info.SourceModTime.Equal(touched)
				})).Return(nil)
			}

			oracle := fs.NewHashOracle(fs.NewStatOracle(), fs.NewHasher(), store)
			got, err := oracle.Check(context.Background(), source, dest)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			info, err := os.Stat(dest)
			require.NoError(t, err)
			if tt.wantBump {
				assert.True(t, info.ModTime().Equal(touched))
			} else {
				assert.True(t, info.ModTime().Equal(base))
			}
		})
	}
}

func TestHashOracle_RepeatedTouchesStayFresh(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	content := "body\n  color red\n"

	root := t.TempDir()
	source := filepath.Join(root, "app.styl")
	dest := filepath.Join(root, "app.css")
	writeFile(t, source, content, base)
	writeFile(t, dest, "body{color:red}", base)

	ctrl := gomock.NewController(t)
	store := mocks.NewMockBuildInfoStore(ctrl)

	recorded := domain.BuildInfo{
		Artifact:      dest,
		SourceHash:    fs.NewHasher().ComputeHash([]byte(content)),
		SourceModTime: base,
	}
	store.EXPECT().Get(dest).DoAndReturn(func(string) (*domain.BuildInfo, error) {
		info := recorded
		return &info, nil
	}).Times(2)
	store.EXPECT().Put(gomock.Any()).DoAndReturn(func(info domain.BuildInfo) error {
		recorded = info
		return nil
	}).Times(2)

	oracle := fs.NewHashOracle(fs.NewStatOracle(), fs.NewHasher(), store)
	for i := 1; i <= 2; i++ {
		touched := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(source, touched, touched))

		got, err := oracle.Check(context.Background(), source, dest)
		require.NoError(t, err)
		assert.Equal(t, domain.VerdictDestFresh, got)
		assert.True(t, recorded.SourceModTime.Equal(touched))
	}
}

func TestHashOracle_PassesThroughNonStaleVerdicts(t *testing.T) {
	for _, verdict := range []domain.Verdict{
		domain.VerdictSourceMissing,
		domain.VerdictDestMissing,
		domain.VerdictDestFresh,
	} {
		t.Run(verdict.String(), func(t *testing.T) {
			ctrl := gomock.NewController(t)
			next := mocks.NewMockFreshnessOracle(ctrl)
			hasher := mocks.NewMockHasher(ctrl)
			store := mocks.NewMockBuildInfoStore(ctrl)

			next.EXPECT().Check(gomock.Any(), "/src/a.styl", "/dest/a.css").Return(verdict, nil)

			got, err := fs.NewHashOracle(next, hasher, store).Check(context.Background(), "/src/a.styl", "/dest/a.css")

			require.NoError(t, err)
			assert.Equal(t, verdict, got)
		})
	}
}

func TestAtomicWriter_Write(t *testing.T) {
	root := t.TempDir()
	dest := filepath.Join(root, "public", "css", "app.css")
	modTime := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	w := fs.NewAtomicWriter()
	require.NoError(t, w.Write(dest, []byte("body{color:red}"), modTime))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "body{color:red}", string(data))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(modTime))
	assert.Equal(t, os.FileMode(domain.FilePerm), info.Mode().Perm())

	require.NoError(t, w.Write(dest, []byte("body{color:blue}"), modTime.Add(time.Second)))
	data, err = os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "body{color:blue}", string(data))

	assertNoTempFiles(t, filepath.Dir(dest))
}

func TestAtomicWriter_RenameFailureKeepsDestination(t *testing.T) {
	root := t.TempDir()
	// A non-empty directory at dest cannot be replaced by a rename.
	dest := filepath.Join(root, "app.css")
	writeFile(t, filepath.Join(dest, "keep"), "previous", time.Time{})

	err := fs.NewAtomicWriter().Write(dest, []byte("body{}"), time.Now())

	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrWriteFailed.Error())

	data, readErr := os.ReadFile(filepath.Join(dest, "keep"))
	require.NoError(t, readErr)
	assert.Equal(t, "previous", string(data))
	assertNoTempFiles(t, root)
}

func TestAtomicWriter_ParentIsFile(t *testing.T) {
	root := t.TempDir()
	parent := filepath.Join(root, "css")
	writeFile(t, parent, "", time.Time{})

	err := fs.NewAtomicWriter().Write(filepath.Join(parent, "app.css"), []byte("body{}"), time.Now())

	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrWriteFailed.Error())
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-", "leftover temp file %s", e.Name())
	}
}

func ptr[T any](v T) *T {
	return &v
}

func TestSourceReader_Read(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "app.coffee")
	modTime := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	writeFile(t, path, "square = (x) -> x * x", modTime)

	data, got, err := fs.NewSourceReader().Read(path)

	require.NoError(t, err)
	assert.Equal(t, "square = (x) -> x * x", string(data))
	assert.True(t, got.Equal(modTime))
}

func TestSourceReader_Missing(t *testing.T) {
	_, _, err := fs.NewSourceReader().Read(filepath.Join(t.TempDir(), "gone.styl"))

	assert.ErrorContains(t, err, domain.ErrSourceReadFailed.Error())
}

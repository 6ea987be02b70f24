package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/config"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, domain.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	path := writeConfig(t, `
src: assets
dest: /srv/public
enable: [stylus, coffeescript]
verify: hash
waitTimeout: 5s
listen: 127.0.0.1:9000
transforms:
  stylus:
    cmd: [npx, stylus, --print]
log:
  json: true
`)

	cfg, err := config.NewLoader(mocks.NewMockLogger(ctrl)).Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(filepath.Dir(path), "assets"), cfg.Src)
	assert.Equal(t, "/srv/public", cfg.Dest)
	assert.Equal(t, []string{"stylus", "coffeescript"}, cfg.Enable)
	assert.Equal(t, domain.VerifyHash, cfg.Verify)
	assert.Equal(t, 5*time.Second, cfg.WaitTimeout)
	assert.Equal(t, "127.0.0.1:9000", cfg.Listen)
	assert.Equal(t, map[string][]string{"stylus": {"npx", "stylus", "--print"}}, cfg.Commands)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_Defaults(t *testing.T) {
	ctrl := gomock.NewController(t)
	path := writeConfig(t, "enable: [less]\n")

	cfg, err := config.NewLoader(mocks.NewMockLogger(ctrl)).Load(path)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	assert.Equal(t, dir, cfg.Src)
	assert.Equal(t, dir, cfg.Dest)
	assert.Equal(t, domain.VerifyMtime, cfg.Verify)
	assert.Equal(t, domain.DefaultWaitTimeout, cfg.WaitTimeout)
	assert.Equal(t, domain.DefaultListenAddr, cfg.Listen)
	assert.Equal(t, "auto", cfg.LogFormat)
	assert.Nil(t, cfg.Commands)
}

func TestLoad_DestDefaultsToSrc(t *testing.T) {
	ctrl := gomock.NewController(t)
	path := writeConfig(t, "src: public\n")

	cfg, err := config.NewLoader(mocks.NewMockLogger(ctrl)).Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Src, cfg.Dest)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "public"), cfg.Dest)
}

func TestLoad_MissingFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info("no kiln.yaml found, using defaults")

	dir := t.TempDir()
	cfg, err := config.NewLoader(mockLogger).Load(filepath.Join(dir, domain.ConfigFileName))
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Src)
	assert.Empty(t, cfg.Enable)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "invalid yaml", content: "enable: [stylus\n", wantErr: domain.ErrConfigParseFailed},
		{name: "invalid verify", content: "verify: sha1\n", wantErr: domain.ErrInvalidVerifyMode},
		{name: "unparsable timeout", content: "waitTimeout: soon\n", wantErr: domain.ErrInvalidWaitTimeout},
		{name: "negative timeout", content: "waitTimeout: -1s\n", wantErr: domain.ErrInvalidWaitTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			path := writeConfig(t, tt.content)

			_, err := config.NewLoader(mocks.NewMockLogger(ctrl)).Load(path)

			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr.Error())
		})
	}
}

func TestLoad_ReadError(t *testing.T) {
	ctrl := gomock.NewController(t)
	// A directory at the config path cannot be read as a file.
	dir := t.TempDir()
	path := filepath.Join(dir, domain.ConfigFileName)
	require.NoError(t, os.Mkdir(path, 0o750))

	_, err := config.NewLoader(mocks.NewMockLogger(ctrl)).Load(path)

	assert.ErrorContains(t, err, domain.ErrConfigReadFailed.Error())
}

func TestLoad_LogFormat(t *testing.T) {
	ctrl := gomock.NewController(t)
	path := writeConfig(t, "log:\n  json: true\n  format: pretty\n")

	cfg, err := config.NewLoader(mocks.NewMockLogger(ctrl)).Load(path)
	require.NoError(t, err)

	assert.Equal(t, "pretty", cfg.LogFormat)
}

func TestParseVerifyMode(t *testing.T) {
	mode, err := config.ParseVerifyMode("mtime")
	require.NoError(t, err)
	assert.Equal(t, domain.VerifyMtime, mode)

	_, err = config.ParseVerifyMode("")
	assert.ErrorContains(t, err, domain.ErrInvalidVerifyMode.Error())
}

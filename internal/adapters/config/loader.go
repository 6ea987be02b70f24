// Package config provides the configuration loader for kiln.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new configuration loader.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads kiln.yaml at path. Relative roots in the file are resolved
// against the file's directory. A missing file yields the defaults rooted at
// that directory.
func (l *Loader) Load(path string) (*domain.Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrFailedToGetRoot.Error())
	}
	baseDir := filepath.Dir(absPath)

	var kf Kilnfile
	data, err := os.ReadFile(absPath) //nolint:gosec // path is provided by user
	switch {
	case errors.Is(err, fs.ErrNotExist):
		l.Logger.Info("no " + filepath.Base(absPath) + " found, using defaults")
	case err != nil:
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", absPath)
	default:
		if err := yaml.Unmarshal(data, &kf); err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", absPath)
		}
	}

	return build(&kf, baseDir)
}

func build(kf *Kilnfile, baseDir string) (*domain.Config, error) {
	cfg := &domain.Config{
		Options: domain.Options{
			Src:         resolveRoot(baseDir, kf.Src),
			Enable:      kf.Enable,
			Verify:      domain.VerifyMtime,
			WaitTimeout: domain.DefaultWaitTimeout,
		},
		Listen:    domain.DefaultListenAddr,
		LogFormat: "auto",
	}

	cfg.Dest = cfg.Src
	if kf.Dest != "" {
		cfg.Dest = resolveRoot(baseDir, kf.Dest)
	}

	if kf.Verify != "" {
		mode, err := ParseVerifyMode(kf.Verify)
		if err != nil {
			return nil, err
		}
		cfg.Verify = mode
	}

	if kf.WaitTimeout != "" {
		d, err := time.ParseDuration(kf.WaitTimeout)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrInvalidWaitTimeout.Error()), "wait_timeout", kf.WaitTimeout)
		}
		if d <= 0 {
			return nil, zerr.With(domain.ErrInvalidWaitTimeout, "wait_timeout", kf.WaitTimeout)
		}
		cfg.WaitTimeout = d
	}

	if kf.Listen != "" {
		cfg.Listen = kf.Listen
	}

	if len(kf.Transforms) > 0 {
		cfg.Commands = make(map[string][]string, len(kf.Transforms))
		for name, dto := range kf.Transforms {
			if len(dto.Cmd) > 0 {
				cfg.Commands[name] = dto.Cmd
			}
		}
	}

	switch {
	case kf.Log.Format != "":
		cfg.LogFormat = kf.Log.Format
	case kf.Log.JSON:
		cfg.LogFormat = "json"
	}

	return cfg, nil
}

// ParseVerifyMode validates a verify mode name.
func ParseVerifyMode(s string) (domain.VerifyMode, error) {
	switch mode := domain.VerifyMode(s); mode {
	case domain.VerifyMtime, domain.VerifyHash:
		return mode, nil
	default:
		return "", zerr.With(domain.ErrInvalidVerifyMode, "verify", s)
	}
}

func resolveRoot(baseDir, root string) string {
	if root == "" {
		return baseDir
	}
	if filepath.IsAbs(root) {
		return filepath.Clean(root)
	}
	return filepath.Join(baseDir, root)
}

package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/logger"
	"go.trai.ch/zerr"
)

// newTestLogger creates a logger writing to a buffer without ANSI escape codes.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New()
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_Info(t *testing.T) {
	lg, buf := newTestLogger(t)

	lg.Info("built /css/app.css")

	assert.Equal(t, "built /css/app.css\n", buf.String())
}

func TestLogger_Warn(t *testing.T) {
	lg, buf := newTestLogger(t)

	lg.Warn("source removed")

	assert.Equal(t, "! source removed\n", buf.String())
}

func TestLogger_Error(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "standard error",
			err:  errors.New("boom"),
			want: "✗ Error: boom\n",
		},
		{
			name: "zerr chain",
			err:  zerr.Wrap(zerr.Wrap(errors.New("exit status 1"), "less: transform failed"), "failed to build"),
			want: "✗ Error: failed to build\n\n  Caused by:\n    → less: transform failed\n    → exit status 1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)

			lg.Error(tt.err)

			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestLogger_ErrorNil(t *testing.T) {
	lg, buf := newTestLogger(t)

	lg.Error(nil)

	assert.Empty(t, buf.String())
}

func TestLogger_JSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)

	lg.Info("listening")
	lg.Error(zerr.New("server failed"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &info))
	assert.Equal(t, "INFO", info["level"])
	assert.Equal(t, "listening", info["msg"])

	var failure map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &failure))
	assert.Equal(t, "ERROR", failure["level"])
	reported, ok := failure["error"].(map[string]any)
	require.True(t, ok, "error is encoded as an object: %v", failure["error"])
	assert.Equal(t, "server failed", reported["msg"])
}

func TestLogger_SetOutputKeepsJSONMode(t *testing.T) {
	lg, _ := newTestLogger(t)
	lg.SetJSON(true)

	buf := &bytes.Buffer{}
	lg.SetOutput(buf)
	lg.Info("hello")

	assert.True(t, strings.HasPrefix(buf.String(), "{"))
}

func TestLogger_SetFormat(t *testing.T) {
	lg, buf := newTestLogger(t)

	lg.SetFormat("json")
	lg.Info("a")
	assert.True(t, strings.HasPrefix(buf.String(), "{"))

	buf.Reset()
	lg.SetFormat("pretty")
	lg.Info("b")
	assert.Equal(t, "b\n", buf.String())
}

func TestFormatChain_Multiline(t *testing.T) {
	err := zerr.Wrap(errors.New("line1\nline2"), "outer")

	got := logger.FormatChain(err)

	assert.Equal(t, "Error: outer\n\n  Caused by:\n    → line1\n      line2", got)
}

func TestResolveFormat(t *testing.T) {
	assert.Equal(t, logger.FormatJSON, logger.ResolveFormat(logger.FormatPretty, "json"))
	assert.Equal(t, logger.FormatPretty, logger.ResolveFormat(logger.FormatJSON, "pretty"))
	assert.Equal(t, logger.FormatJSON, logger.ResolveFormat(logger.FormatJSON, "auto"))
	assert.Equal(t, logger.FormatPretty, logger.ResolveFormat(logger.FormatPretty, ""))
}

func TestDetectFormat_CI(t *testing.T) {
	t.Setenv("CI", "true")

	assert.Equal(t, logger.FormatJSON, logger.DetectFormat())
}

func TestPrettyHandler_Attrs(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	buf := &bytes.Buffer{}

	h := logger.NewPrettyHandler(buf, nil).WithAttrs([]slog.Attr{slog.String("path", "/a.css")})
	slog.New(h).Info("built", "bytes", 12)

	assert.Equal(t, "built path=/a.css bytes=12\n", buf.String())
}

func TestPrettyHandler_DebugFiltered(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	buf := &bytes.Buffer{}

	slog.New(logger.NewPrettyHandler(buf, nil)).Debug("hidden")

	assert.Empty(t, buf.String())
}

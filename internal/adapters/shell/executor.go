// Package shell provides the command executor adapter used by external compilers.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// StderrKey is the zerr metadata key under which a failed command's stderr is attached.
const StderrKey = "stderr"

// maxStderr caps the diagnostic output retained from a command.
const maxStderr = 64 << 10

var _ ports.Executor = (*Executor)(nil)

// Executor implements ports.Executor using os/exec.
type Executor struct {
	logger ports.Logger
	env    func() []string
}

// NewExecutor creates a new Executor that inherits the process environment.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{
		logger: logger,
		env:    os.Environ,
	}
}

// Run executes argv, feeding stdin and collecting stdout.
//
// Stderr is buffered. On failure it is attached to the error under StderrKey;
// on success any output is logged as warnings, since compilers report
// deprecations there.
func (e *Executor) Run(ctx context.Context, argv []string, stdin io.Reader, stdout io.Writer) error {
	if len(argv) == 0 {
		return zerr.New("empty command")
	}

	name := argv[0]
	env := e.env()

	executable, err := e.resolve(name, env)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, executable, argv[1:]...) //nolint:gosec // configured compiler command
	// exec.CommandContext sets Args[0] to the executable path; keep the name as invoked.
	cmd.Args[0] = name
	cmd.Env = env
	cmd.Stdin = stdin
	cmd.Stdout = stdout

	stderr := &limitedBuffer{limit: maxStderr}
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}

		wrapped := zerr.With(zerr.Wrap(err, "command failed"), "command", name)
		wrapped = zerr.With(wrapped, "exit_code", exitCode)
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			wrapped = zerr.With(wrapped, StderrKey, msg)
		}
		return wrapped
	}

	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		for line := range strings.SplitSeq(msg, "\n") {
			e.logger.Warn(name + ": " + line)
		}
	}

	return nil
}

// LookPath resolves name against the executor's PATH.
func (e *Executor) LookPath(name string) (string, error) {
	return e.resolve(name, e.env())
}

func (e *Executor) resolve(name string, env []string) (string, error) {
	if filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator) {
		if err := findExecutable(name); err != nil {
			return "", zerr.With(zerr.Wrap(err, domain.ErrCompilerNotFound.Error()), "command", name)
		}
		return name, nil
	}

	path, err := lookPath(name, env)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrCompilerNotFound.Error()), "command", name)
	}
	return path, nil
}

// lookPath searches for an executable in the directories named by the PATH entry of env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if v, ok := strings.CutPrefix(e, "PATH="); ok {
			path = v
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}

// limitedBuffer keeps the first limit bytes written and discards the rest.
type limitedBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := b.limit - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	return b.buf.String()
}

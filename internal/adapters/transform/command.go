package transform

import (
	"bytes"
	"context"
	"errors"
	"slices"

	"go.trai.ch/kiln/internal/adapters/shell"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Transform = (*Command)(nil)

// Command is a transform backed by an external compiler that reads source
// text on stdin and writes the derived text to stdout.
type Command struct {
	name     string
	argv     []string
	executor ports.Executor
}

// NewCommand returns a factory that locates argv[0] and builds a Command.
// Locating the executable is the expensive step and runs once per registry entry.
func NewCommand(name string, argv []string, executor ports.Executor) Factory {
	return func() (ports.Transform, error) {
		if len(argv) == 0 {
			return nil, &domain.TransformError{Name: name, Message: "no command configured"}
		}

		path, err := executor.LookPath(argv[0])
		if err != nil {
			return nil, &domain.TransformError{Name: name, Cause: err}
		}

		resolved := slices.Clone(argv)
		resolved[0] = path
		return &Command{name: name, argv: resolved, executor: executor}, nil
	}
}

// Compile runs the compiler on source.
func (c *Command) Compile(ctx context.Context, source []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := c.executor.Run(ctx, c.argv, bytes.NewReader(source), &out); err != nil {
		return nil, &domain.TransformError{Name: c.name, Message: diagnostic(err), Cause: err}
	}
	return out.Bytes(), nil
}

// Argv returns the resolved command line.
func (c *Command) Argv() []string {
	return slices.Clone(c.argv)
}

// diagnostic extracts the compiler's stderr from an executor error.
func diagnostic(err error) string {
	var zErr *zerr.Error
	if !errors.As(err, &zErr) {
		return ""
	}
	msg, _ := zErr.Metadata()[shell.StderrKey].(string)
	return msg
}

package ports

import (
	"context"
	"io"
)

// Executor runs external commands.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Run executes argv with stdin connected to the given reader and stdout written to the given writer.
	//
	// argv[0] may be an absolute path or a name resolved on PATH.
	// A non-zero exit status is returned as an error carrying the command's stderr.
	Run(ctx context.Context, argv []string, stdin io.Reader, stdout io.Writer) error

	// LookPath resolves a command name to the executable Run would start.
	LookPath(name string) (string, error)
}

package shell

import "go.trai.ch/kiln/internal/core/ports"

// NewExecutorWithEnv creates an Executor with a fixed environment for testing.
func NewExecutorWithEnv(logger ports.Logger, env []string) *Executor {
	return &Executor{logger: logger, env: func() []string { return env }}
}

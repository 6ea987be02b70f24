package domain

import "time"

// VerifyMode selects how the freshness oracle decides staleness.
type VerifyMode string

const (
	// VerifyMtime compares modification times only.
	VerifyMtime VerifyMode = "mtime"
	// VerifyHash falls back to a content hash when the modification times disagree.
	VerifyHash VerifyMode = "hash"
)

// DefaultWaitTimeout bounds how long a request waits on a build started by another request.
const DefaultWaitTimeout = 30 * time.Second

// DefaultListenAddr is the address kiln serve listens on when none is configured.
const DefaultListenAddr = ":8080"

// Options configures the compiler.
type Options struct {
	// Src is the source root directory. Defaults to the working directory.
	Src string
	// Dest is the destination root directory. Defaults to Src.
	Dest string
	// Enable is the ordered list of transform names to activate.
	Enable []string
	// Verify selects the freshness strategy. Defaults to VerifyMtime.
	Verify VerifyMode
	// WaitTimeout bounds how long a waiter blocks on an in-flight build.
	WaitTimeout time.Duration
}

// Config is the full kiln configuration as loaded from kiln.yaml.
type Config struct {
	Options
	// Listen is the address used by kiln serve.
	Listen string
	// Commands overrides the command line of bundled transforms, keyed by transform name.
	Commands map[string][]string
	// LogFormat is one of "auto", "pretty" or "json".
	LogFormat string
}

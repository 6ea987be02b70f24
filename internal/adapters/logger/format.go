package logger

import (
	"os"

	"golang.org/x/term"
)

// Format is the rendering format of log records.
type Format int

const (
	// FormatPretty renders colored, human-readable lines.
	FormatPretty Format = iota
	// FormatJSON renders one JSON object per record.
	FormatJSON
)

// DetectFormat returns the recommended format for the current process.
// It picks JSON when stderr is not a TTY or a CI environment variable is set.
func DetectFormat() Format {
	isTTY := term.IsTerminal(int(os.Stderr.Fd()))

	ci := os.Getenv("CI")
	isCI := ci == "true" || ci == "1"

	if !isTTY || isCI {
		return FormatJSON
	}
	return FormatPretty
}

// ResolveFormat applies a configured format over the detected one.
// name should be one of "auto", "pretty", "json", or empty.
func ResolveFormat(detected Format, name string) Format {
	switch name {
	case "pretty":
		return FormatPretty
	case "json":
		return FormatJSON
	default:
		return detected
	}
}

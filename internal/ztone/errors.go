package ztone

import (
	"errors"
	"fmt"
)

// Sentinel errors for the backend tool's exit-code taxonomy. Callers match
// them with errors.Is; the recovery machine keys its transitions off these.
var (
	// ErrServiceNotRunning corresponds to exit code 1
	ErrServiceNotRunning = errors.New("backend service is not running")

	// ErrNoAuthToken corresponds to exit code 2: the invoking user cannot
	// read the backend's authorization token
	ErrNoAuthToken = errors.New("current user has no access to the backend")

	// ErrToolNotInstalled corresponds to exit code 127
	ErrToolNotInstalled = errors.New("backend tool is not installed")

	// ErrRuntimeFailure covers every other non-zero exit
	ErrRuntimeFailure = errors.New("backend tool failed")
)

// CLIError is a classified backend tool failure. It wraps the taxonomy
// sentinel matching its exit code and keeps the raw output for diagnostics.
type CLIError struct {
	ExitCode int
	Output   string
	kind     error
}

// Error returns the error message for CLIError
func (e *CLIError) Error() string {
	return fmt.Sprintf("%v (exit code %d)", e.kind, e.ExitCode)
}

// Unwrap returns the taxonomy sentinel for this exit code
func (e *CLIError) Unwrap() error {
	return e.kind
}

// classify maps an exit code to its taxonomy sentinel
func classify(exitCode int, output string) *CLIError {
	var kind error
	switch exitCode {
	case 1:
		kind = ErrServiceNotRunning
	case 2:
		kind = ErrNoAuthToken
	case 127:
		kind = ErrToolNotInstalled
	default:
		kind = ErrRuntimeFailure
	}
	return &CLIError{ExitCode: exitCode, Output: output, kind: kind}
}

package executor

import (
	"errors"
	"fmt"
)

// Error definitions
var (
	// ErrEmptyArgv is returned when a spec carries no command
	ErrEmptyArgv = errors.New("argv cannot be empty")

	// ErrDirectoryMissing is returned when the working directory does not
	// exist. The check runs before any process is spawned; during a probe
	// this condition means the backend install is gone.
	ErrDirectoryMissing = errors.New("working directory does not exist")

	// ErrNoCredential is returned when a privileged spec is executed while
	// the credential source holds no secret
	ErrNoCredential = errors.New("no credential available for privileged execution")
)

// ProcessError reports a process that ran and exited non-zero. Output holds
// the raw captured output, before prompt-banner stripping, so callers can
// inspect sudo artifacts when diagnosing failures.
type ProcessError struct {
	Argv     []string
	ExitCode int
	Output   string
}

// Error returns the error message for ProcessError
func (e *ProcessError) Error() string {
	return fmt.Sprintf("command %v exited with code %d", e.Argv, e.ExitCode)
}

// Is reports whether target is also a ProcessError
func (e *ProcessError) Is(target error) bool {
	var procErr *ProcessError
	return errors.As(target, &procErr)
}

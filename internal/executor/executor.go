// Package executor runs external commands for ztadmin. It handles the two
// argv wrappers every spawned command may need (the sandbox hop back to the
// host environment and the sudo prefix that reads the credential from
// stdin), captures output, strips the sudo prompt banner from what callers
// see, and converts non-zero exits into typed errors. It applies no retry
// policy; retries belong to callers.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"os/user"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ztgui/ztadmin/internal/common"
)

// Default argv prefixes. SandboxHopPrefix re-issues the command against the
// host when running inside a flatpak; SudoPrefix forces sudo to read the
// password from stdin.
var (
	SandboxHopPrefix = []string{"flatpak-spawn", "--host"}
	SudoPrefix       = []string{"sudo", "-S"}
)

// DefaultTimeout bounds a single execution when the caller's context has no
// deadline of its own. A hung sudo prompt or stuck backend call must not
// block the process forever.
const DefaultTimeout = 2 * time.Minute

// Spec describes one command execution.
type Spec struct {
	// Argv is the command and its arguments, before any wrapping
	Argv []string

	// WorkDir is the working directory; it must exist before execution
	WorkDir string

	// Privileged wraps the command with the sudo prefix and feeds the
	// credential on stdin
	Privileged bool

	// MergeStderr folds stderr into the captured stdout stream
	MergeStderr bool
}

// Result contains the outcome of a successful command execution. Stdout has
// the sudo prompt banner already stripped.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Executor defines the interface for executing commands
type Executor interface {
	Execute(ctx context.Context, spec Spec) (*Result, error)
}

// CredentialSource supplies the elevation secret for privileged executions
type CredentialSource interface {
	Secret() string
}

// SudoExecutor is the production Executor. It blocks until the spawned
// process exits; ztadmin issues commands from a single logical actor, so no
// internal locking is needed.
type SudoExecutor struct {
	fs          common.FileSystem
	credentials CredentialSource

	// hop is the sandbox-hop prefix; empty when debug mode disables it
	hop []string

	// timeout bounds each execution when the context has no deadline
	timeout time.Duration

	// promptBanner is the literal sudo prompt echoed for the current user
	promptBanner string
}

// Option configures a SudoExecutor
type Option func(*SudoExecutor)

// WithoutSandboxHop disables the flatpak-spawn wrapper. Used in debug mode
// when running directly on the host.
func WithoutSandboxHop() Option {
	return func(e *SudoExecutor) { e.hop = nil }
}

// WithTimeout overrides the default per-execution timeout
func WithTimeout(d time.Duration) Option {
	return func(e *SudoExecutor) { e.timeout = d }
}

// WithFileSystem overrides the filesystem used for pre-spawn validation
func WithFileSystem(fs common.FileSystem) Option {
	return func(e *SudoExecutor) { e.fs = fs }
}

// WithPromptBanner overrides the sudo prompt banner stripped from output.
// The default is the banner sudo echoes for the invoking user.
func WithPromptBanner(banner string) Option {
	return func(e *SudoExecutor) { e.promptBanner = banner }
}

// NewSudoExecutor creates a SudoExecutor drawing secrets from credentials
func NewSudoExecutor(credentials CredentialSource, opts ...Option) *SudoExecutor {
	e := &SudoExecutor{
		fs:           common.NewDefaultFileSystem(),
		credentials:  credentials,
		hop:          SandboxHopPrefix,
		timeout:      DefaultTimeout,
		promptBanner: sudoPromptBanner(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs the command described by spec and blocks until it exits.
// The working directory is validated before anything is spawned. A non-zero
// exit is returned as a *ProcessError carrying the raw output.
func (e *SudoExecutor) Execute(ctx context.Context, spec Spec) (*Result, error) {
	if err := e.validate(spec); err != nil {
		return nil, err
	}

	argv := e.wrapArgv(spec)

	if _, hasDeadline := ctx.Deadline(); !hasDeadline && e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	execID := ulid.Make().String()
	slog.Debug("spawning command",
		"exec_id", execID,
		"argv", strings.Join(argv, " "),
		"workdir", spec.WorkDir,
		"privileged", spec.Privileged,
	)

	// #nosec G204 -- argv comes from static command tables, never user text
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = spec.WorkDir

	if spec.Privileged {
		cmd.Stdin = strings.NewReader(e.credentials.Secret() + "\n")
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if spec.MergeStderr {
		cmd.Stderr = &stdout
	} else {
		cmd.Stderr = &stderr
	}

	started := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(started)

	rawStdout := stdout.String()
	result := &Result{
		Stdout: e.stripPromptBanner(rawStdout),
		Stderr: stderr.String(),
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	slog.Debug("command finished",
		"exec_id", execID,
		"exit_code", result.ExitCode,
		"duration", elapsed.String(),
	)

	if runErr != nil {
		// A timed-out or cancelled command is killed and surfaces as an
		// ExitError too, so the context has to be consulted first. Callers
		// must see the abort, not a fake exit code.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("command %v aborted: %w", spec.Argv, ctxErr)
		}
		if _, ok := runErr.(*exec.ExitError); ok {
			return nil, &ProcessError{
				Argv:     spec.Argv,
				ExitCode: result.ExitCode,
				Output:   rawStdout,
			}
		}
		return nil, fmt.Errorf("failed to spawn %v: %w", spec.Argv, runErr)
	}

	return result, nil
}

// validate checks the spec before any process is spawned
func (e *SudoExecutor) validate(spec Spec) error {
	if len(spec.Argv) == 0 {
		return ErrEmptyArgv
	}
	if spec.Privileged && e.credentials.Secret() == "" {
		return ErrNoCredential
	}
	if spec.WorkDir != "" {
		exists, err := e.fs.FileExists(spec.WorkDir)
		if err != nil {
			return fmt.Errorf("failed to check directory %s: %w", spec.WorkDir, err)
		}
		if !exists {
			return fmt.Errorf("%w: %s", ErrDirectoryMissing, spec.WorkDir)
		}
	}
	return nil
}

// wrapArgv applies the sudo and sandbox-hop prefixes. The hop goes
// outermost so the whole privileged command runs against the host.
func (e *SudoExecutor) wrapArgv(spec Spec) []string {
	argv := spec.Argv
	if spec.Privileged {
		argv = append(append([]string{}, SudoPrefix...), argv...)
	}
	if len(e.hop) > 0 {
		argv = append(append([]string{}, e.hop...), argv...)
	}
	return argv
}

// stripPromptBanner removes every occurrence of the sudo prompt echo from
// captured output. sudo writes the banner onto the same stream as the
// command when -S is in effect.
func (e *SudoExecutor) stripPromptBanner(output string) string {
	if e.promptBanner == "" {
		return output
	}
	return strings.ReplaceAll(output, e.promptBanner, "")
}

// sudoPromptBanner returns the literal prompt sudo -S echoes for the
// invoking user
func sudoPromptBanner() string {
	current, err := user.Current()
	if err != nil {
		return ""
	}
	return fmt.Sprintf("[sudo] password for %s: ", current.Username)
}

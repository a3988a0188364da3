// Package credential manages the sudo secret for the process lifetime. The
// secret lives in memory only, is supplied to privileged executions through
// the executor.CredentialSource interface, and is re-acquired from the user
// whenever sudo rejects it.
package credential

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/ztgui/ztadmin/internal/executor"
)

// Error definitions
var (
	// ErrNotATerminal is returned when a password is needed but stdin is
	// not an interactive terminal
	ErrNotATerminal = errors.New("cannot prompt for password: stdin is not a terminal")

	// ErrTooManyAttempts is returned when the user fails verification
	// repeatedly
	ErrTooManyAttempts = errors.New("too many failed password attempts")
)

// maxPromptAttempts bounds the prompt/verify loop
const maxPromptAttempts = 3

// Store holds the elevation secret. It satisfies executor.CredentialSource.
type Store struct {
	secret string
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{}
}

// Secret returns the held secret, empty if none was acquired
func (s *Store) Secret() string {
	return s.secret
}

// Set replaces the held secret
func (s *Store) Set(secret string) {
	s.secret = secret
}

// Prompter asks the user for the sudo password
type Prompter interface {
	Prompt() (string, error)
}

// TerminalPrompter reads the password from the controlling terminal with
// echo disabled.
type TerminalPrompter struct{}

// Prompt implements Prompter
func (TerminalPrompter) Prompt() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", ErrNotATerminal
	}

	fmt.Fprint(os.Stderr, "[ztadmin] sudo password: ")
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}

// Acquire fills store with a verified secret. Each candidate is checked by
// running a harmless privileged command through exec in workDir; sudo
// rejecting the password shows up as a non-zero exit and triggers a
// re-prompt. A missing workDir is returned unchanged so the caller can
// route it into recovery.
func Acquire(ctx context.Context, exec executor.Executor, store *Store, prompter Prompter, workDir string) error {
	for attempt := 1; attempt <= maxPromptAttempts; attempt++ {
		secret, err := prompter.Prompt()
		if err != nil {
			return err
		}
		store.Set(secret)

		err = Verify(ctx, exec, workDir)
		if err == nil {
			return nil
		}
		if errors.Is(err, executor.ErrDirectoryMissing) {
			return err
		}

		// A bare Enter leaves the store empty and fails validation before
		// anything is spawned; it counts as a rejection like a wrong
		// password, not a hard failure.
		if errors.Is(err, executor.ErrNoCredential) {
			slog.Warn("empty password entered", "attempt", attempt)
			continue
		}

		var procErr *executor.ProcessError
		if errors.As(err, &procErr) {
			slog.Warn("sudo rejected the password", "attempt", attempt)
			continue
		}
		return fmt.Errorf("credential verification failed: %w", err)
	}
	return ErrTooManyAttempts
}

// Verify runs a harmless privileged command to confirm the current secret
// is accepted by sudo.
func Verify(ctx context.Context, exec executor.Executor, workDir string) error {
	_, err := exec.Execute(ctx, executor.Spec{
		Argv:       []string{"true"},
		WorkDir:    workDir,
		Privileged: true,
	})
	return err
}

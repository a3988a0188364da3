// Package service controls the backend's service-manager unit. Every action
// is tried as an unprivileged user-scope invocation first and falls back to
// a privileged system-scope one, because the unit may be registered at
// either scope depending on how the backend was installed.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ztgui/ztadmin/internal/executor"
)

// Action is one of the closed set of service-manager verbs ztadmin issues.
type Action string

// Supported actions
const (
	ActionStart    Action = "start"
	ActionStop     Action = "stop"
	ActionEnable   Action = "enable"
	ActionDisable  Action = "disable"
	ActionShow     Action = "show"
	ActionIsActive Action = "is-active"
)

// State is the service manager's reported ActiveState for the unit.
type State string

// Known states. Anything unrecognized maps to StateUnknown.
const (
	StateActive   State = "active"
	StateInactive State = "inactive"
	StateFailed   State = "failed"
	StateUnknown  State = "unknown"
)

// Error definitions
var (
	// ErrUnknownAction is returned for an action outside the closed set
	ErrUnknownAction = errors.New("unknown service action")

	// ErrActiveStateMissing is returned when a show dump lacks ActiveState
	ErrActiveStateMissing = errors.New("service property dump has no ActiveState")
)

// Controller manages one service unit through the executor.
type Controller struct {
	exec executor.Executor
	unit string

	// workDir is the directory service commands run from; systemctl does
	// not care, but the executor validates it exists
	workDir string
}

// NewController creates a Controller for unit
func NewController(exec executor.Executor, unit, workDir string) *Controller {
	return &Controller{exec: exec, unit: unit, workDir: workDir}
}

// Manage performs action against the unit, user scope first, privileged
// system scope on failure. When both scopes fail, the system-scope failure
// is returned; it is never swallowed.
func (c *Controller) Manage(ctx context.Context, action Action) (string, error) {
	switch action {
	case ActionStart, ActionStop, ActionEnable, ActionDisable, ActionShow, ActionIsActive:
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	userResult, userErr := c.exec.Execute(ctx, executor.Spec{
		Argv:    []string{"systemctl", "--user", string(action), c.unit},
		WorkDir: c.workDir,
	})
	if userErr == nil {
		slog.Debug("service action succeeded at user scope", "action", action, "unit", c.unit)
		return userResult.Stdout, nil
	}

	slog.Debug("user-scope service action failed, retrying at system scope",
		"action", action, "unit", c.unit, "error", userErr)

	systemResult, systemErr := c.exec.Execute(ctx, executor.Spec{
		Argv:       []string{"systemctl", string(action), c.unit},
		WorkDir:    c.workDir,
		Privileged: true,
	})
	if systemErr != nil {
		return "", fmt.Errorf("service %s failed at both scopes for unit %s: %w", action, c.unit, systemErr)
	}

	slog.Debug("service action succeeded at system scope", "action", action, "unit", c.unit)
	return systemResult.Stdout, nil
}

// ActiveState queries the unit's properties and returns its ActiveState.
func (c *Controller) ActiveState(ctx context.Context) (State, error) {
	output, err := c.Manage(ctx, ActionShow)
	if err != nil {
		return StateUnknown, err
	}

	properties := ParseShow(output)
	value, ok := properties["ActiveState"]
	if !ok {
		return StateUnknown, ErrActiveStateMissing
	}
	return parseState(value), nil
}

// CheckActive reports the unit state via is-active. systemctl exits
// non-zero for anything but an active unit, so the reported text is read
// from the failure output when necessary.
func (c *Controller) CheckActive(ctx context.Context) State {
	output, err := c.Manage(ctx, ActionIsActive)
	if err != nil {
		var procErr *executor.ProcessError
		if errors.As(err, &procErr) {
			return parseState(procErr.Output)
		}
		return StateUnknown
	}
	return parseState(output)
}

// SystemScopeActive reports whether a system-scope unit with this name is
// running. A duplicate system install shadowing the user-scope unit causes
// port conflicts, so doctor offers to disable it.
func (c *Controller) SystemScopeActive(ctx context.Context) bool {
	result, err := c.exec.Execute(ctx, executor.Spec{
		Argv:       []string{"systemctl", "is-active", c.unit},
		WorkDir:    c.workDir,
		Privileged: true,
	})
	if err != nil {
		return false
	}
	return parseState(result.Stdout) == StateActive
}

// DisableSystemScope disables and stops the system-scope unit.
func (c *Controller) DisableSystemScope(ctx context.Context) error {
	for _, action := range []Action{ActionDisable, ActionStop} {
		_, err := c.exec.Execute(ctx, executor.Spec{
			Argv:       []string{"systemctl", string(action), c.unit},
			WorkDir:    c.workDir,
			Privileged: true,
		})
		if err != nil {
			return fmt.Errorf("failed to %s system-scope unit %s: %w", action, c.unit, err)
		}
	}
	return nil
}

// ParseShow parses a newline-separated key=value property dump into a map.
// Lines without = are skipped.
func ParseShow(text string) map[string]string {
	properties := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		properties[key] = value
	}
	return properties
}

// parseState maps reported text to a State
func parseState(text string) State {
	switch State(strings.TrimSpace(text)) {
	case StateActive:
		return StateActive
	case StateInactive:
		return StateInactive
	case StateFailed:
		return StateFailed
	default:
		return StateUnknown
	}
}

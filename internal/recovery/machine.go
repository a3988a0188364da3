// Package recovery diagnoses and repairs a broken backend. It is the only
// component allowed to sequence multi-step remediation: probing the
// backend, starting its service unit, and as a last resort reinstalling the
// backend entirely. Transitions are gated by the backend tool's classified
// exit codes, and every externally visible step is logged so the diagnosis
// path can be reconstructed afterwards.
package recovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ztgui/ztadmin/internal/executor"
	"github.com/ztgui/ztadmin/internal/service"
	"github.com/ztgui/ztadmin/internal/ztone"
)

// State names the recovery machine's states.
type State string

// Machine states. StateResolved and StateFatal are terminal.
const (
	StateProbing         State = "probing"
	StateStartingService State = "starting-service"
	StateReinstalling    State = "reinstalling"
	StateResolved        State = "resolved"
	StateFatal           State = "fatal"
)

// unitNotLoadedExitCode is the service manager's exit code for a unit that
// could not be loaded. During reinstall the old unit is often already gone,
// so this failure is benign.
const unitNotLoadedExitCode = 5

// Error definitions
var (
	// ErrReinstallsExhausted is returned when the reinstall cap is hit
	ErrReinstallsExhausted = errors.New("backend still broken after maximum reinstall attempts")

	// ErrOperatorDeclined is returned when a probe failure outside the
	// known taxonomy is not cleared for reinstall by the operator
	ErrOperatorDeclined = errors.New("unrecognized backend failure, reinstall declined")
)

// Prober checks whether the backend is usable
type Prober interface {
	Probe(ctx context.Context) error
}

// ServiceManager is the slice of the service controller the machine needs
type ServiceManager interface {
	Manage(ctx context.Context, action service.Action) (string, error)
	CheckActive(ctx context.Context) service.State
}

// Installer fetches and executes the backend installation procedure
type Installer interface {
	Install(ctx context.Context) error
}

// ConsentFunc decides whether an unrecognized probe failure may proceed to
// reinstall. A nil func declines, leaving the failure to the operator.
type ConsentFunc func(err error) bool

// Machine is the recovery state machine. One Machine value runs one
// recovery; its counters are not reused.
type Machine struct {
	prober    Prober
	services  ServiceManager
	installer Installer

	// maxReinstalls bounds reinstall cycles before giving up
	maxReinstalls int

	consent ConsentFunc

	// transient run state
	reinstalls  int
	lastFailure error
}

// NewMachine creates a recovery machine. maxReinstalls must be at least 1.
func NewMachine(prober Prober, services ServiceManager, installer Installer, maxReinstalls int, consent ConsentFunc) *Machine {
	return &Machine{
		prober:        prober,
		services:      services,
		installer:     installer,
		maxReinstalls: maxReinstalls,
		consent:       consent,
	}
}

// Run drives the machine from Probing to a terminal state. It returns nil
// when the backend ends up usable and the fatal diagnosis otherwise.
func (m *Machine) Run(ctx context.Context) error {
	state := StateProbing
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("recovery aborted: %w", err)
		}

		var err error
		switch state {
		case StateProbing:
			state, err = m.probe(ctx)
		case StateStartingService:
			state, err = m.startService(ctx)
		case StateReinstalling:
			state, err = m.reinstall(ctx)
		}

		switch state {
		case StateResolved:
			slog.Info("recovery finished, backend is usable")
			return nil
		case StateFatal:
			slog.Error("recovery failed", "error", err, "reinstall_attempts", m.reinstalls)
			return err
		}
	}
}

// probe checks the backend and classifies the failure into the next state.
func (m *Machine) probe(ctx context.Context) (State, error) {
	err := m.prober.Probe(ctx)
	if err == nil {
		slog.Info("backend probe succeeded")
		return StateResolved, nil
	}
	m.lastFailure = err

	switch {
	case errors.Is(err, ztone.ErrServiceNotRunning):
		slog.Warn("backend service is not running, starting it")
		return StateStartingService, nil
	case errors.Is(err, ztone.ErrNoAuthToken):
		slog.Warn("user has no backend access, reinstalling", "error", err)
		return StateReinstalling, nil
	case errors.Is(err, ztone.ErrToolNotInstalled):
		slog.Warn("backend tool is missing, reinstalling", "error", err)
		return StateReinstalling, nil
	case errors.Is(err, executor.ErrDirectoryMissing):
		slog.Warn("backend data directory is missing, reinstalling", "error", err)
		return StateReinstalling, nil
	}

	if m.consent != nil && m.consent(err) {
		slog.Warn("unrecognized backend failure, operator elected reinstall", "error", err)
		return StateReinstalling, nil
	}
	return StateFatal, fmt.Errorf("%w: %w", ErrOperatorDeclined, err)
}

// startService starts the unit and re-validates the backend.
func (m *Machine) startService(ctx context.Context) (State, error) {
	if _, err := m.services.Manage(ctx, service.ActionStart); err != nil {
		slog.Warn("service start failed", "error", err)
		return StateReinstalling, nil
	}

	state := m.services.CheckActive(ctx)
	slog.Info("service started", "active_state", string(state))
	if state == service.StateInactive || state == service.StateFailed {
		slog.Warn("service did not come up, reinstalling", "active_state", string(state))
		return StateReinstalling, nil
	}

	if err := m.prober.Probe(ctx); err != nil {
		m.lastFailure = err
		slog.Warn("backend still unusable after service start, reinstalling", "error", err)
		return StateReinstalling, nil
	}
	slog.Info("backend probe succeeded after service start")
	return StateResolved, nil
}

// reinstall tears the unit down, runs the installation procedure, brings
// the unit back up, and returns to probing.
func (m *Machine) reinstall(ctx context.Context) (State, error) {
	if m.reinstalls >= m.maxReinstalls {
		return StateFatal, fmt.Errorf("%w (attempts: %d, last failure: %v)",
			ErrReinstallsExhausted, m.reinstalls, m.lastFailure)
	}
	m.reinstalls++
	slog.Info("reinstalling backend", "attempt", m.reinstalls, "max_attempts", m.maxReinstalls)

	// Best effort teardown. A unit that cannot be loaded is already gone;
	// anything else is logged and the reinstall proceeds regardless.
	for _, action := range []service.Action{service.ActionStop, service.ActionDisable} {
		if _, err := m.services.Manage(ctx, action); err != nil {
			if isUnitNotLoaded(err) {
				slog.Debug("unit not loaded during teardown", "action", string(action))
				continue
			}
			slog.Warn("teardown step failed, continuing reinstall", "action", string(action), "error", err)
		}
	}

	if err := m.installer.Install(ctx); err != nil {
		return StateFatal, fmt.Errorf("backend reinstall failed: %w", err)
	}
	slog.Info("backend installation procedure completed")

	for _, action := range []service.Action{service.ActionEnable, service.ActionStart} {
		if _, err := m.services.Manage(ctx, action); err != nil {
			slog.Warn("post-install service action failed", "action", string(action), "error", err)
		}
	}

	return StateProbing, nil
}

// isUnitNotLoaded reports whether err is the service manager telling us the
// unit could not be loaded
func isUnitNotLoaded(err error) bool {
	var procErr *executor.ProcessError
	return errors.As(err, &procErr) && procErr.ExitCode == unitNotLoadedExitCode
}

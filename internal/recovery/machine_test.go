package recovery_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ztgui/ztadmin/internal/executor"
	"github.com/ztgui/ztadmin/internal/recovery"
	"github.com/ztgui/ztadmin/internal/service"
	"github.com/ztgui/ztadmin/internal/ztone"
)

// fakeProber pops one scripted error per probe; the last entry repeats.
type fakeProber struct {
	errs  []error
	calls int
}

func (p *fakeProber) Probe(context.Context) error {
	p.calls++
	if len(p.errs) == 0 {
		return nil
	}
	err := p.errs[0]
	if len(p.errs) > 1 {
		p.errs = p.errs[1:]
	}
	return err
}

type fakeServices struct {
	actions   []service.Action
	manageErr map[service.Action]error
	active    service.State
}

func (s *fakeServices) Manage(_ context.Context, action service.Action) (string, error) {
	s.actions = append(s.actions, action)
	return "", s.manageErr[action]
}

func (s *fakeServices) CheckActive(context.Context) service.State {
	return s.active
}

type fakeInstaller struct {
	err   error
	calls int
}

func (i *fakeInstaller) Install(context.Context) error {
	i.calls++
	return i.err
}

func run(t *testing.T, prober *fakeProber, services *fakeServices, installer *fakeInstaller, max int, consent recovery.ConsentFunc) error {
	t.Helper()
	if services.manageErr == nil {
		services.manageErr = map[service.Action]error{}
	}
	machine := recovery.NewMachine(prober, services, installer, max, consent)
	return machine.Run(context.Background())
}

func TestRun_HealthyBackendResolvesImmediately(t *testing.T) {
	prober := &fakeProber{}
	services := &fakeServices{}
	installer := &fakeInstaller{}

	err := run(t, prober, services, installer, 3, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, prober.calls)
	assert.Zero(t, installer.calls)
	assert.Empty(t, services.actions)
}

func TestRun_NoAuthTokenTriggersReinstall(t *testing.T) {
	prober := &fakeProber{errs: []error{fmt.Errorf("probe: %w", ztone.ErrNoAuthToken), nil}}
	services := &fakeServices{}
	installer := &fakeInstaller{}

	err := run(t, prober, services, installer, 3, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, installer.calls)
	assert.Equal(t, []service.Action{
		service.ActionStop, service.ActionDisable,
		service.ActionEnable, service.ActionStart,
	}, services.actions)
}

func TestRun_ServiceDownStartsAndResolves(t *testing.T) {
	prober := &fakeProber{errs: []error{fmt.Errorf("probe: %w", ztone.ErrServiceNotRunning), nil}}
	services := &fakeServices{active: service.StateActive}
	installer := &fakeInstaller{}

	err := run(t, prober, services, installer, 3, nil)

	require.NoError(t, err)
	assert.Zero(t, installer.calls, "a successful service start must not reinstall")
	assert.Equal(t, []service.Action{service.ActionStart}, services.actions)
	assert.Equal(t, 2, prober.calls)
}

func TestRun_ServiceFailsToComeUpReinstalls(t *testing.T) {
	prober := &fakeProber{errs: []error{fmt.Errorf("probe: %w", ztone.ErrServiceNotRunning), nil}}
	services := &fakeServices{active: service.StateFailed}
	installer := &fakeInstaller{}

	err := run(t, prober, services, installer, 3, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, installer.calls)
	// start, then reinstall teardown and bring-up
	assert.Equal(t, []service.Action{
		service.ActionStart,
		service.ActionStop, service.ActionDisable,
		service.ActionEnable, service.ActionStart,
	}, services.actions)
}

func TestRun_UnitNotLoadedDuringTeardownIsBenign(t *testing.T) {
	prober := &fakeProber{errs: []error{fmt.Errorf("probe: %w", ztone.ErrToolNotInstalled), nil}}
	services := &fakeServices{manageErr: map[service.Action]error{
		service.ActionStop: fmt.Errorf("service stop failed at both scopes: %w",
			&executor.ProcessError{ExitCode: 5, Output: "Unit could not be loaded."}),
	}}
	installer := &fakeInstaller{}

	err := run(t, prober, services, installer, 3, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, installer.calls, "exit code 5 on teardown must not abort the reinstall")
}

func TestRun_InstallerFailureIsFatal(t *testing.T) {
	prober := &fakeProber{errs: []error{fmt.Errorf("probe: %w", ztone.ErrToolNotInstalled)}}
	services := &fakeServices{}
	installer := &fakeInstaller{err: errors.New("curl: network unreachable")}

	err := run(t, prober, services, installer, 3, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reinstall failed")
}

func TestRun_ReinstallCapIsHonored(t *testing.T) {
	prober := &fakeProber{errs: []error{fmt.Errorf("probe: %w", ztone.ErrToolNotInstalled)}}
	services := &fakeServices{}
	installer := &fakeInstaller{}

	err := run(t, prober, services, installer, 2, nil)

	require.ErrorIs(t, err, recovery.ErrReinstallsExhausted)
	assert.Equal(t, 2, installer.calls)
}

func TestRun_UnknownFailureNeedsConsent(t *testing.T) {
	probeErr := fmt.Errorf("probe: %w", ztone.ErrRuntimeFailure)

	t.Run("declined", func(t *testing.T) {
		prober := &fakeProber{errs: []error{probeErr}}
		err := run(t, prober, &fakeServices{}, &fakeInstaller{}, 3, nil)
		require.ErrorIs(t, err, recovery.ErrOperatorDeclined)
	})

	t.Run("granted", func(t *testing.T) {
		prober := &fakeProber{errs: []error{probeErr, nil}}
		installer := &fakeInstaller{}
		consented := false
		consent := func(error) bool { consented = true; return true }

		err := run(t, prober, &fakeServices{}, installer, 3, consent)

		require.NoError(t, err)
		assert.True(t, consented)
		assert.Equal(t, 1, installer.calls)
	})
}

func TestRun_MissingDataDirectoryReinstalls(t *testing.T) {
	prober := &fakeProber{errs: []error{
		fmt.Errorf("%w: /home/u/.zerotier-one", executor.ErrDirectoryMissing), nil,
	}}
	installer := &fakeInstaller{}

	err := run(t, prober, &fakeServices{}, installer, 3, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, installer.calls)
}

func TestRun_EndToEndMissingToolScenario(t *testing.T) {
	// Probe fails with 127, reinstall tears down (stop reports exit 5,
	// ignored), installs, enables and starts, and the second probe
	// succeeds.
	prober := &fakeProber{errs: []error{fmt.Errorf("probe: %w", ztone.ErrToolNotInstalled), nil}}
	services := &fakeServices{manageErr: map[service.Action]error{
		service.ActionStop: fmt.Errorf("stop: %w", &executor.ProcessError{ExitCode: 5}),
	}}
	installer := &fakeInstaller{}

	err := run(t, prober, services, installer, 3, nil)

	require.NoError(t, err)
	assert.Equal(t, 2, prober.calls)
	assert.Equal(t, 1, installer.calls)
	assert.Equal(t, []service.Action{
		service.ActionStop, service.ActionDisable,
		service.ActionEnable, service.ActionStart,
	}, services.actions)
}

func TestRun_CancelledContextAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	machine := recovery.NewMachine(&fakeProber{}, &fakeServices{}, &fakeInstaller{}, 3, nil)
	err := machine.Run(ctx)

	require.ErrorIs(t, err, context.Canceled)
}

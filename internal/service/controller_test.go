package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ztgui/ztadmin/internal/executor/executortest"
	"github.com/ztgui/ztadmin/internal/service"
)

const unit = "zerotier-one"

func newController(fake *executortest.Fake) *service.Controller {
	return service.NewController(fake, unit, "/home/u")
}

func TestManage_UserScopeFirst(t *testing.T) {
	fake := &executortest.Fake{}
	fake.On([]string{"systemctl", "--user", "start", unit}, executortest.Response{Stdout: "ok"})
	controller := newController(fake)

	output, err := controller.Manage(context.Background(), service.ActionStart)

	require.NoError(t, err)
	assert.Equal(t, "ok", output)
	require.Equal(t, 1, fake.SpawnCount())
	assert.False(t, fake.Calls[0].Privileged, "user scope must not be privileged")
}

func TestManage_FallsBackToSystemScope(t *testing.T) {
	fake := &executortest.Fake{}
	fake.On([]string{"systemctl", "--user"}, executortest.Response{ExitCode: 1})
	fake.On([]string{"systemctl", "start", unit}, executortest.Response{Stdout: "started"})
	controller := newController(fake)

	output, err := controller.Manage(context.Background(), service.ActionStart)

	require.NoError(t, err)
	assert.Equal(t, "started", output)
	require.Equal(t, 2, fake.SpawnCount())
	assert.True(t, fake.Calls[1].Privileged, "system scope must be privileged")
}

func TestManage_BothScopesFailSurfacesSystemError(t *testing.T) {
	fake := &executortest.Fake{}
	fake.On([]string{"systemctl", "--user"}, executortest.Response{ExitCode: 1})
	fake.On([]string{"systemctl"}, executortest.Response{ExitCode: 5, Stdout: "Failed to stop: Unit not loaded."})
	controller := newController(fake)

	_, err := controller.Manage(context.Background(), service.ActionStop)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "both scopes")
}

func TestManage_RejectsUnknownAction(t *testing.T) {
	fake := &executortest.Fake{}
	controller := newController(fake)

	_, err := controller.Manage(context.Background(), service.Action("restart"))

	require.ErrorIs(t, err, service.ErrUnknownAction)
	assert.Zero(t, fake.SpawnCount())
}

func TestActiveState_ParsesShowDump(t *testing.T) {
	fake := &executortest.Fake{}
	fake.On([]string{"systemctl", "--user", "show", unit},
		executortest.Response{Stdout: "ActiveState=active\nSubState=running"})
	controller := newController(fake)

	state, err := controller.ActiveState(context.Background())

	require.NoError(t, err)
	assert.Equal(t, service.StateActive, state)
}

func TestActiveState_MissingKey(t *testing.T) {
	fake := &executortest.Fake{}
	fake.On([]string{"systemctl", "--user", "show", unit},
		executortest.Response{Stdout: "SubState=dead"})
	controller := newController(fake)

	_, err := controller.ActiveState(context.Background())

	require.ErrorIs(t, err, service.ErrActiveStateMissing)
}

func TestCheckActive_ReadsStateFromFailureOutput(t *testing.T) {
	// systemctl is-active exits non-zero for inactive units; the state word
	// still arrives on stdout.
	fake := &executortest.Fake{}
	fake.On([]string{"systemctl", "--user", "is-active", unit}, executortest.Response{ExitCode: 3, Stdout: "inactive\n"})
	fake.On([]string{"systemctl", "is-active", unit}, executortest.Response{ExitCode: 3, Stdout: "inactive\n"})
	controller := newController(fake)

	assert.Equal(t, service.StateInactive, controller.CheckActive(context.Background()))
}

func TestCheckActive_ActiveUnit(t *testing.T) {
	fake := &executortest.Fake{}
	fake.On([]string{"systemctl", "--user", "is-active", unit}, executortest.Response{Stdout: "active\n"})
	controller := newController(fake)

	assert.Equal(t, service.StateActive, controller.CheckActive(context.Background()))
}

func TestParseShow(t *testing.T) {
	properties := service.ParseShow("ActiveState=active\nSubState=running\nnoise line\nExecStart={ path=/usr/sbin/x }")

	assert.Equal(t, "active", properties["ActiveState"])
	assert.Equal(t, "running", properties["SubState"])
	assert.Equal(t, "{ path=/usr/sbin/x }", properties["ExecStart"])
	_, ok := properties["noise line"]
	assert.False(t, ok)
}

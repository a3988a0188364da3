package netdev_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ztgui/ztadmin/internal/executor/executortest"
	"github.com/ztgui/ztadmin/internal/netdev"
)

const ipOutput = `[{"ifname":"lo","operstate":"UNKNOWN"},{"ifname":"ztabc123","operstate":"DOWN"},{"ifname":"eth0","operstate":"UP"}]`

func TestOperState(t *testing.T) {
	fake := &executortest.Fake{}
	fake.On([]string{"ip", "--json", "address"}, executortest.Response{Stdout: ipOutput})
	inspector := netdev.NewInspector(fake, "/home/u")

	state, err := inspector.OperState(context.Background(), "eth0")

	require.NoError(t, err)
	assert.Equal(t, "UP", state)
	require.Equal(t, 1, fake.SpawnCount())
	assert.False(t, fake.Calls[0].Privileged, "interface query needs no elevation")
}

func TestOperState_UnknownInterface(t *testing.T) {
	fake := &executortest.Fake{}
	fake.On([]string{"ip"}, executortest.Response{Stdout: ipOutput})
	inspector := netdev.NewInspector(fake, "/home/u")

	state, err := inspector.OperState(context.Background(), "zt9999")

	require.NoError(t, err)
	assert.Equal(t, netdev.StateUnknown, state)
}

func TestIsDown(t *testing.T) {
	fake := &executortest.Fake{}
	fake.On([]string{"ip"}, executortest.Response{Stdout: ipOutput})
	inspector := netdev.NewInspector(fake, "/home/u")

	down, err := inspector.IsDown(context.Background(), "ztabc123")

	require.NoError(t, err)
	assert.True(t, down)
}

func TestOperState_CommandFailure(t *testing.T) {
	fake := &executortest.Fake{}
	fake.On([]string{"ip"}, executortest.Response{ExitCode: 1})
	inspector := netdev.NewInspector(fake, "/home/u")

	_, err := inspector.OperState(context.Background(), "eth0")

	require.Error(t, err)
}

package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ztgui/ztadmin/internal/config"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := config.Parse([]byte(""))

	require.NoError(t, err)
	assert.Equal(t, config.DefaultUnit, cfg.Unit)
	assert.Equal(t, config.DefaultBackendTool, cfg.BackendTool)
	assert.Equal(t, config.DefaultInstallerURL, cfg.InstallerURL)
	assert.Equal(t, config.DefaultTimeoutSeconds, cfg.TimeoutSeconds)
	assert.Equal(t, config.DefaultMaxReinstalls, cfg.MaxReinstallAttempts)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Debug)
	assert.Contains(t, cfg.BackendDir, ".zerotier-one")
	assert.Contains(t, cfg.SettingsPath, "settings.json")
}

func TestParse_ExplicitValues(t *testing.T) {
	content := []byte(`
unit = "zerotier-one-static"
backend_dir = "/opt/zt"
backend_tool = "/opt/zt/zerotier-cli"
debug = true
timeout_seconds = 30
max_reinstall_attempts = 5
log_level = "debug"
`)

	cfg, err := config.Parse(content)

	require.NoError(t, err)
	assert.Equal(t, "zerotier-one-static", cfg.Unit)
	assert.Equal(t, "/opt/zt", cfg.BackendDir)
	assert.Equal(t, "/opt/zt/zerotier-cli", cfg.BackendTool)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 30, cfg.TimeoutSeconds)
	assert.Equal(t, 5, cfg.MaxReinstallAttempts)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "negative timeout",
			content: "timeout_seconds = -1",
			wantErr: config.ErrInvalidTimeout,
		},
		{
			name:    "negative reinstall cap",
			content: "max_reinstall_attempts = -2",
			wantErr: config.ErrInvalidMaxAttempts,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.content))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := config.Parse([]byte("unit = [broken"))
	require.Error(t, err)
}

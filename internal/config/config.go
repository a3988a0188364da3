// Package config loads and validates the ztadmin configuration file. The
// file is TOML; every field has a default so the tool runs without any
// config present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Error definitions for the config package
var (
	ErrUnitNameEmpty      = errors.New("service unit name cannot be empty")
	ErrInvalidTimeout     = errors.New("timeout_seconds must be positive")
	ErrInvalidMaxAttempts = errors.New("max_reinstall_attempts must be at least 1")
)

// Defaults mirroring the packaged backend install.
const (
	DefaultUnit           = "zerotier-one"
	DefaultBackendTool    = "./zerotier-cli"
	DefaultInstallerURL   = "https://raw.githubusercontent.com/aaron777collins/ZeroTier-GUI-Arch/master/download_and_reinstall_backend.sh"
	DefaultTimeoutSeconds = 120
	DefaultMaxReinstalls  = 3
)

// Config is the ztadmin configuration.
type Config struct {
	// Unit is the service-manager unit controlling the backend
	Unit string `toml:"unit"`

	// BackendDir is the backend data directory (-D argument and working
	// directory for every backend tool invocation)
	BackendDir string `toml:"backend_dir"`

	// BackendTool is the management tool invoked inside BackendDir
	BackendTool string `toml:"backend_tool"`

	// SettingsPath is the JSON settings file holding service_enabled
	SettingsPath string `toml:"settings_path"`

	// InstallerURL is the reinstall script fetched during recovery
	InstallerURL string `toml:"installer_url"`

	// Debug disables the sandbox hop so commands run directly on the host
	Debug bool `toml:"debug"`

	// TimeoutSeconds bounds each command execution
	TimeoutSeconds int `toml:"timeout_seconds"`

	// MaxReinstallAttempts caps reinstall cycles in one recovery run
	MaxReinstallAttempts int `toml:"max_reinstall_attempts"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `toml:"log_level"`

	// LogDir, when set, enables the per-run JSON log file
	LogDir string `toml:"log_dir"`
}

// Load reads the config file at path. An empty path means the default
// location; a missing file yields the defaults.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config directory: %w", err)
		}
		path = filepath.Join(dir, "ztadmin", "ztadmin.toml")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			cfg := &Config{}
			if err := applyDefaults(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return Parse(content)
}

// Parse unmarshals content, applies defaults, and validates the result.
func Parse(content []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if c.Unit == "" {
		return ErrUnitNameEmpty
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidTimeout, c.TimeoutSeconds)
	}
	if c.MaxReinstallAttempts < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxAttempts, c.MaxReinstallAttempts)
	}
	return nil
}

// applyDefaults fills every unset field
func applyDefaults(cfg *Config) error {
	if cfg.Unit == "" {
		cfg.Unit = DefaultUnit
	}
	if cfg.BackendTool == "" {
		cfg.BackendTool = DefaultBackendTool
	}
	if cfg.InstallerURL == "" {
		cfg.InstallerURL = DefaultInstallerURL
	}
	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if cfg.MaxReinstallAttempts == 0 {
		cfg.MaxReinstallAttempts = DefaultMaxReinstalls
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.BackendDir == "" || cfg.SettingsPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to resolve home directory: %w", err)
		}
		if cfg.BackendDir == "" {
			cfg.BackendDir = filepath.Join(home, ".zerotier-one")
		}
		if cfg.SettingsPath == "" {
			cfg.SettingsPath = filepath.Join(home, ".local", "share", "zerotier-gui", "settings.json")
		}
	}

	return nil
}

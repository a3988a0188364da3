// Package settings reads the persisted GUI settings file. The only key this
// tool owns is service_enabled; everything else in the file belongs to other
// collaborators and is preserved on write.
package settings

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ztgui/ztadmin/internal/common"
)

const serviceEnabledKey = "service_enabled"

const settingsFilePerm os.FileMode = 0o644

// Store reads and writes the settings file at a fixed path.
type Store struct {
	fs   common.FileSystem
	path string
}

// New creates a Store for the settings file at path
func New(path string) *Store {
	return NewWithFS(path, common.NewDefaultFileSystem())
}

// NewWithFS creates a Store with a custom FileSystem
func NewWithFS(path string, fs common.FileSystem) *Store {
	return &Store{fs: fs, path: path}
}

// ServiceEnabled reports whether the backend service is enabled. A missing
// or unparsable file, or an absent key, means enabled.
func (s *Store) ServiceEnabled() bool {
	values, err := s.read()
	if err != nil {
		slog.Debug("settings file unreadable, assuming service enabled", "path", s.path, "error", err)
		return true
	}
	enabled, ok := values[serviceEnabledKey].(bool)
	if !ok {
		return true
	}
	return enabled
}

// SetServiceEnabled persists the flag, keeping all other settings intact.
func (s *Store) SetServiceEnabled(enabled bool) error {
	values, err := s.read()
	if err != nil {
		values = map[string]any{}
	}
	values[serviceEnabledKey] = enabled

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := s.fs.WriteFile(s.path, data, settingsFilePerm); err != nil {
		return fmt.Errorf("failed to write settings file %s: %w", s.path, err)
	}
	return nil
}

// read loads the settings file into a generic map
func (s *Store) read() (map[string]any, error) {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", s.path, err)
	}
	return values, nil
}

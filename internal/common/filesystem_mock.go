package common

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// MockFileSystem is an in-memory FileSystem implementation for tests.
// Paths are stored verbatim; callers should use cleaned absolute paths.
type MockFileSystem struct {
	files map[string]*mockEntry

	// Err, when set, is returned from every operation. Useful for
	// exercising error paths.
	Err error
}

type mockEntry struct {
	data  []byte
	isDir bool
	perm  os.FileMode
}

// NewMockFileSystem creates an empty MockFileSystem
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{files: make(map[string]*mockEntry)}
}

// AddFile registers a regular file with the given contents
func (m *MockFileSystem) AddFile(path string, data []byte) {
	m.files[path] = &mockEntry{data: data, perm: 0o644}
}

// AddDir registers a directory
func (m *MockFileSystem) AddDir(path string) {
	m.files[path] = &mockEntry{isDir: true, perm: 0o755}
}

// FileExists checks if a file or directory exists
func (m *MockFileSystem) FileExists(path string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	if path == "" {
		return false, ErrEmptyPath
	}
	_, ok := m.files[path]
	return ok, nil
}

// IsDir checks if the path is a directory
func (m *MockFileSystem) IsDir(path string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	entry, ok := m.files[path]
	if !ok {
		return false, nil
	}
	return entry.isDir, nil
}

// Lstat returns file information without following symlinks
func (m *MockFileSystem) Lstat(path string) (fs.FileInfo, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	entry, ok := m.files[path]
	if !ok {
		return nil, &fs.PathError{Op: "lstat", Path: path, Err: fs.ErrNotExist}
	}
	return &mockFileInfo{name: filepath.Base(path), entry: entry}, nil
}

// ReadFile reads the named file and returns its contents
func (m *MockFileSystem) ReadFile(path string) ([]byte, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	entry, ok := m.files[path]
	if !ok || entry.isDir {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	data := make([]byte, len(entry.data))
	copy(data, entry.data)
	return data, nil
}

// WriteFile writes data to the named file
func (m *MockFileSystem) WriteFile(path string, data []byte, perm os.FileMode) error {
	if m.Err != nil {
		return m.Err
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	m.files[path] = &mockEntry{data: stored, perm: perm}
	return nil
}

// MkdirAll creates a directory entry (parents are implied in the mock)
func (m *MockFileSystem) MkdirAll(path string, perm os.FileMode) error {
	if m.Err != nil {
		return m.Err
	}
	if entry, ok := m.files[path]; ok && !entry.isDir {
		return errors.New("path exists and is not a directory")
	}
	m.files[path] = &mockEntry{isDir: true, perm: perm}
	return nil
}

// mockFileInfo implements fs.FileInfo for mock entries
type mockFileInfo struct {
	name  string
	entry *mockEntry
}

func (i *mockFileInfo) Name() string       { return i.name }
func (i *mockFileInfo) Size() int64        { return int64(len(i.entry.data)) }
func (i *mockFileInfo) Mode() fs.FileMode  { return i.entry.perm }
func (i *mockFileInfo) ModTime() time.Time { return time.Time{} }
func (i *mockFileInfo) IsDir() bool        { return i.entry.isDir }
func (i *mockFileInfo) Sys() any           { return nil }

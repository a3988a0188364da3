// Package common provides shared interfaces and utilities used across the
// ztadmin packages.
package common

import (
	"errors"
	"io/fs"
	"os"
)

// Error definitions for static error handling
var (
	ErrEmptyPath = errors.New("path cannot be empty")
)

// FileSystem defines the interface for file system operations.
// It allows for easy mocking in tests and provides a consistent API
// for file operations across all packages.
type FileSystem interface {
	// FileExists checks if a file or directory exists
	FileExists(path string) (bool, error)

	// IsDir checks if the path is a directory
	IsDir(path string) (bool, error)

	// Lstat returns file information without following symlinks
	Lstat(path string) (fs.FileInfo, error)

	// ReadFile reads the named file and returns its contents
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to the named file with the given permissions
	WriteFile(path string, data []byte, perm os.FileMode) error

	// MkdirAll creates a directory and all necessary parents
	MkdirAll(path string, perm os.FileMode) error
}

// DefaultFileSystem implements FileSystem using standard os package functions
type DefaultFileSystem struct{}

// NewDefaultFileSystem creates a new DefaultFileSystem
func NewDefaultFileSystem() *DefaultFileSystem {
	return &DefaultFileSystem{}
}

// FileExists checks if a file or directory exists
func (f *DefaultFileSystem) FileExists(path string) (bool, error) {
	if path == "" {
		return false, ErrEmptyPath
	}
	_, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// IsDir checks if the path is a directory
func (f *DefaultFileSystem) IsDir(path string) (bool, error) {
	if path == "" {
		return false, ErrEmptyPath
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

// Lstat returns file information without following symlinks
func (f *DefaultFileSystem) Lstat(path string) (fs.FileInfo, error) {
	return os.Lstat(path)
}

// ReadFile reads the named file and returns its contents
func (f *DefaultFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes data to the named file with the given permissions
func (f *DefaultFileSystem) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}

// MkdirAll creates a directory and all necessary parents
func (f *DefaultFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Package logging provides the slog setup for ztadmin. It composes a
// human-readable text handler on stderr with an optional per-run JSON log
// file, and guarantees that the sudo credential never reaches any output
// through the redacting handler decorator.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	logDirPerm  os.FileMode = 0o750
	logFilePerm os.FileMode = 0o600
)

// Options controls logger construction.
type Options struct {
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string

	// LogDir, when non-empty, enables an additional per-run JSON log file
	// in that directory.
	LogDir string

	// RunID tags every record of this process run.
	RunID string

	// Secrets supplies the literal values that must never appear in log
	// output. It is consulted per record.
	Secrets SecretSource
}

// GenerateRunID generates a new UUID v4 for run identification
func GenerateRunID() string {
	return uuid.New().String()
}

// Setup builds the logger described by opts and installs it as the slog
// default. The returned closer owns the JSON log file, if any.
func Setup(opts Options) (io.Closer, error) {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
	}

	var closer io.Closer
	if opts.LogDir != "" {
		file, err := openRunLogFile(opts.LogDir, opts.RunID)
		if err != nil {
			return nil, err
		}
		closer = file
		handlers = append(handlers, slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	var handler slog.Handler = NewMultiHandler(handlers...)
	handler = NewRedactingHandler(handler, opts.Secrets)

	logger := slog.New(handler).With("run_id", opts.RunID)
	slog.SetDefault(logger)

	return closer, nil
}

// parseLevel maps a level name to its slog.Level
func parseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level: %q", name)
	}
}

// openRunLogFile creates the per-run JSON log file inside dir
func openRunLogFile(dir, runID string) (*os.File, error) {
	if err := os.MkdirAll(dir, logDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	timestamp := time.Now().Format("20060102T150405Z")
	name := fmt.Sprintf("%s_%s_%s.json", hostname, timestamp, runID)

	path := filepath.Join(dir, name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, logFilePerm)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return file, nil
}

package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ztgui/ztadmin/internal/logging"
)

func TestMultiHandler_FansOutToAllHandlers(t *testing.T) {
	var first, second bytes.Buffer
	handler := logging.NewMultiHandler(
		slog.NewTextHandler(&first, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewJSONHandler(&second, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)

	logger := slog.New(handler)
	logger.Info("probe succeeded", "state", "resolved")

	assert.Contains(t, first.String(), "probe succeeded")
	assert.Contains(t, second.String(), "probe succeeded")
}

func TestMultiHandler_RespectsPerHandlerLevels(t *testing.T) {
	var debugOut, warnOut bytes.Buffer
	handler := logging.NewMultiHandler(
		slog.NewTextHandler(&debugOut, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warnOut, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)

	logger := slog.New(handler)
	logger.Debug("spawning process")

	assert.Contains(t, debugOut.String(), "spawning process")
	assert.Empty(t, warnOut.String())
}

func TestMultiHandler_EnabledWhenAnyHandlerIs(t *testing.T) {
	var buf bytes.Buffer
	handler := logging.NewMultiHandler(
		slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError}),
		slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)

	assert.True(t, handler.Enabled(context.Background(), slog.LevelDebug))
}

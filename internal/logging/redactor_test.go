package logging_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ztgui/ztadmin/internal/logging"
)

func newCapturedLogger(secrets ...string) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(logging.NewRedactingHandler(inner, logging.StaticSecrets(secrets...))), &buf
}

func TestRedactingHandler_SecretInMessage(t *testing.T) {
	logger, buf := newCapturedLogger("hunter2")

	logger.Info("wrote hunter2 to stdin")

	output := buf.String()
	assert.NotContains(t, output, "hunter2")
	assert.Contains(t, output, logging.RedactedPlaceholder)
}

func TestRedactingHandler_SecretInStringAttr(t *testing.T) {
	logger, buf := newCapturedLogger("hunter2")

	logger.Info("command finished", "output", "[sudo] hunter2 accepted\nok")

	output := buf.String()
	assert.NotContains(t, output, "hunter2")
	assert.Contains(t, output, "accepted")
}

func TestRedactingHandler_SensitiveKeys(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{name: "password key", key: "password"},
		{name: "credential key", key: "sudo_credential"},
		{name: "token key", key: "auth_token"},
		{name: "mixed case", key: "Secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newCapturedLogger()

			logger.Info("msg", tt.key, "visible-value")

			output := buf.String()
			assert.NotContains(t, output, "visible-value")
			assert.Contains(t, output, logging.RedactedPlaceholder)
		})
	}
}

func TestRedactingHandler_EmptySecretIgnored(t *testing.T) {
	logger, buf := newCapturedLogger("")

	logger.Info("plain message", "detail", "unchanged")

	require.Contains(t, buf.String(), "plain message")
	assert.Contains(t, buf.String(), "unchanged")
}

func TestRedactingHandler_GroupAttrs(t *testing.T) {
	logger, buf := newCapturedLogger("hunter2")

	logger.Info("msg", slog.Group("exec", slog.String("stdin", "hunter2\n")))

	assert.NotContains(t, buf.String(), "hunter2")
}

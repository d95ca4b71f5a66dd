package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/kaosdraw/internal/config"
	"github.com/scrypster/kaosdraw/internal/logging"
)

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWithWriter(config.LogConfig{Level: "warn", Format: "json"}, &buf)

	log.Info().Msg("hidden")
	log.Warn().Str("model", "M1").Msg("Watcher: reload failed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "M1", entry["model"])
	assert.Equal(t, "Watcher: reload failed", entry["message"])
}

func TestNewWithWriter_ConsoleAndBadLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWithWriter(config.LogConfig{Level: "chatty", Format: "console"}, &buf)

	log.Debug().Msg("hidden")
	log.Info().Msg("Server: listening")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "Server: listening")
}

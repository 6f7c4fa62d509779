package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cleared-dev/ledger/internal/config"
)

func TestNew_TagsRunID(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Environment: "production", Level: "info"}, &buf)
	require.NoError(t, err)

	logger.Info("posted", zap.Int64("transaction_id", 7))
	logger.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "posted", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.EqualValues(t, 7, entry["transaction_id"])
	assert.NotEmpty(t, entry["run_id"])
}

func TestNew_DevelopmentDefaultsToDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Environment: "development"}, &buf)
	require.NoError(t, err)

	logger.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(config.LoggingConfig{Environment: "staging-ish"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "invalid logging environment")

	_, err = New(config.LoggingConfig{Environment: "production", Level: "loud"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "invalid log level")
}

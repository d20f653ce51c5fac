package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/greenhouse-dashboard/internal/config"
)

func TestNewProdWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, &config.AppConfig{AppEnv: "prod", LogLevel: slog.LevelInfo}, "1.2.3", "greenhouse-dashboard")

	log.Debug("hidden")
	log.Info("records loaded", "file", "2023-03-16.jsonl")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "records loaded", entry["msg"])
	assert.Equal(t, "2023-03-16.jsonl", entry["file"])
	assert.Equal(t, "greenhouse-dashboard", entry["app"])
	assert.Equal(t, "1.2.3", entry["version"])
	assert.Equal(t, "prod", entry["env"])
}

func TestNewDevWritesText(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, &config.AppConfig{AppEnv: "dev", LogLevel: slog.LevelDebug}, "dev", "greenhouse-dashboard")

	log.Debug("refreshing file list")

	out := buf.String()
	assert.Contains(t, out, "refreshing file list")
	assert.Contains(t, out, "greenhouse-dashboard")
	assert.False(t, json.Valid(buf.Bytes()))
}

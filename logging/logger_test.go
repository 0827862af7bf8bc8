package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, raw string) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestWriterLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, LevelWarn)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown", "path", "/tmp/a.txt")
	logger.Error("also shown")

	entries := decodeLines(t, buf.String())
	require.Len(t, entries, 2)
	assert.Equal(t, "shown", entries[0]["msg"])
	assert.Equal(t, "WARN", entries[0]["level"])
	assert.Equal(t, "/tmp/a.txt", entries[0]["path"])
	assert.Equal(t, "ERROR", entries[1]["level"])
}

func TestWriterLogger_ComponentAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, LevelDebug).WithComponent("store").With("id", 7)

	logger.Debug("file loaded", "size", 5)

	entries := decodeLines(t, buf.String())
	require.Len(t, entries, 1)
	assert.Equal(t, "store", entries[0]["component"])
	assert.Equal(t, float64(7), entries[0]["id"])
	assert.Equal(t, float64(5), entries[0]["size"])
}

func TestParseLevel_UnknownDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, "verbose")

	logger.Debug("hidden")
	logger.Info("shown")

	assert.Len(t, decodeLines(t, buf.String()), 1)
}

func TestNewLogger_WritesToLogDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	logger, err := NewLogger(dir, "debug")
	require.NoError(t, err)
	logger.Info("poller started", "interval", "1s")
	require.NoError(t, logger.Close())
	require.NoError(t, logger.Close())

	raw, err := os.ReadFile(filepath.Join(dir, LogFileName))
	require.NoError(t, err)
	entries := decodeLines(t, string(raw))
	require.Len(t, entries, 1)
	assert.Equal(t, "poller started", entries[0]["msg"])
}

func TestNopLogger(t *testing.T) {
	logger := NopLogger()
	logger.Error("discarded")
	assert.NoError(t, logger.Close())
}

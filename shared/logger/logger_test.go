package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T, level string) (*Logger, *bytes.Buffer) {
	t.Helper()

	output := &bytes.Buffer{}
	logger, err := New(&Config{
		Level:  level,
		Format: "json",
		writer: output,
	})
	require.NoError(t, err)

	return logger, output
}

func decodeLine(t *testing.T, line []byte) map[string]interface{} {
	t.Helper()

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(line, &entry))
	return entry
}

func TestNew_JSONFormat(t *testing.T) {
	logger, output := newTestLogger(t, "debug")

	logger.Debug("test debug message", slog.String("key", "value"))

	entry := decodeLine(t, output.Bytes())
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "test debug message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Contains(t, entry, "time")
}

func TestNew_LevelFiltering(t *testing.T) {
	tests := []struct {
		name       string
		level      string
		suppressed func(l *Logger)
		logged     func(l *Logger)
		wantLevel  string
		wantMsg    string
	}{
		{
			name:       "info drops debug",
			level:      "info",
			suppressed: func(l *Logger) { l.Debug("debug message") },
			logged:     func(l *Logger) { l.Info("info message") },
			wantLevel:  "INFO",
			wantMsg:    "info message",
		},
		{
			name:       "warn drops info",
			level:      "warn",
			suppressed: func(l *Logger) { l.Info("info message") },
			logged:     func(l *Logger) { l.Warn("warn message") },
			wantLevel:  "WARN",
			wantMsg:    "warn message",
		},
		{
			name:       "error drops warn",
			level:      "error",
			suppressed: func(l *Logger) { l.Warn("warn message") },
			logged:     func(l *Logger) { l.Error("error message") },
			wantLevel:  "ERROR",
			wantMsg:    "error message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, output := newTestLogger(t, tt.level)

			tt.suppressed(logger)
			tt.logged(logger)

			lines := strings.Split(strings.TrimSpace(output.String()), "\n")
			require.Len(t, lines, 1)

			entry := decodeLine(t, []byte(lines[0]))
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, tt.wantMsg, entry["msg"])
		})
	}
}

func TestNew_ConsoleFormat(t *testing.T) {
	output := &bytes.Buffer{}
	logger, err := New(&Config{
		Level:  "info",
		Format: "console",
		writer: output,
	})
	require.NoError(t, err)

	logger.Info("console test")

	// tint abbreviates the level to "INF"
	assert.Contains(t, output.String(), "INF")
	assert.Contains(t, output.String(), "console test")
}

func TestNew_SourceLocation(t *testing.T) {
	output := &bytes.Buffer{}
	logger, err := New(&Config{
		Level:        "info",
		Format:       "json",
		EnableSource: true,
		writer:       output,
	})
	require.NoError(t, err)

	logger.Info("message with source")

	entry := decodeLine(t, output.Bytes())
	require.Contains(t, entry, "source")
	source := entry["source"].(map[string]interface{})
	assert.Contains(t, source, "function")
	assert.Contains(t, source, "file")
	assert.Contains(t, source, "line")
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")

	logger, err := New(&Config{
		Level:  "info",
		Format: "json",
		Output: path,
	})
	require.NoError(t, err)

	logger.Info("written to file", slog.String("key", "value"))
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	entry := decodeLine(t, bytes.TrimSpace(data))
	assert.Equal(t, "written to file", entry["msg"])
	assert.Equal(t, "value", entry["key"])
}

func TestNew_FileOutputAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")

	for _, msg := range []string{"first", "second"} {
		logger, err := New(&Config{Level: "info", Format: "json", Output: path})
		require.NoError(t, err)
		logger.Info(msg)
		require.NoError(t, logger.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "first", decodeLine(t, []byte(lines[0]))["msg"])
	assert.Equal(t, "second", decodeLine(t, []byte(lines[1]))["msg"])
}

func TestNew_FileOutputOpenError(t *testing.T) {
	logger, err := New(&Config{
		Level:  "info",
		Format: "json",
		Output: filepath.Join(t.TempDir(), "missing", "service.log"),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open log file")
	assert.Nil(t, logger)
}

func TestClose_NoFile(t *testing.T) {
	logger, _ := newTestLogger(t, "info")
	assert.NoError(t, logger.Close())
}

func TestNewDefault(t *testing.T) {
	logger := NewDefault()
	require.NotNil(t, logger)
	assert.NotNil(t, logger.Logger)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"DEBUG", slog.LevelInfo}, // case-sensitive, falls back to info
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run("level "+tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.level))
		})
	}
}

func TestLogger_WithGroup(t *testing.T) {
	logger, output := newTestLogger(t, "info")

	groupLogger := logger.WithGroup("ingest")
	require.NotNil(t, groupLogger)

	groupLogger.Info("test message", slog.String("key", "value"))

	entry := decodeLine(t, output.Bytes())
	require.Contains(t, entry, "ingest")
	group := entry["ingest"].(map[string]interface{})
	assert.Equal(t, "value", group["key"])
}

func TestLogger_WithAttrs(t *testing.T) {
	logger, output := newTestLogger(t, "info")

	attrLogger := logger.WithAttrs(
		slog.String("run_id", "12345"),
		slog.String("source", "adzuna"),
	)
	require.NotNil(t, attrLogger)

	attrLogger.Info("test message")

	entry := decodeLine(t, output.Bytes())
	assert.Equal(t, "12345", entry["run_id"])
	assert.Equal(t, "adzuna", entry["source"])
	assert.Equal(t, "test message", entry["msg"])
}

func TestLogger_With(t *testing.T) {
	logger, output := newTestLogger(t, "info")

	contextLogger := logger.With(
		slog.String("service", "api"),
		slog.Int("version", 1),
	)
	require.NotNil(t, contextLogger)

	contextLogger.Info("operation complete")

	entry := decodeLine(t, output.Bytes())
	assert.Equal(t, "api", entry["service"])
	assert.Equal(t, float64(1), entry["version"]) // JSON numbers are float64
	assert.Equal(t, "operation complete", entry["msg"])
}

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

	"github.com/rolld/sales-assistant/internal/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", DebugLevel},
		{"DEBUG", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"invalid", InfoLevel}, // default
		{"", InfoLevel},        // default
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLogLevel(tt.input))
		})
	}
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{LogLevel(999), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.level.String())
		})
	}
}

func TestNewLoggerStderr(t *testing.T) {
	cfg := config.LoggingConfig{
		Level:  "debug",
		Format: "json",
		Output: "stderr",
	}

	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)

	assert.Equal(t, DebugLevel, logger.level)
	assert.Equal(t, "json", logger.format)
	assert.Equal(t, os.Stderr, logger.output)
	assert.Nil(t, logger.file)
}

func TestNewLoggerFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "test.log")

	cfg := config.LoggingConfig{
		Level:  "warn",
		Format: "text",
		Output: "file",
		File:   logFile,
	}

	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)

	logger.Warn("written to file")

	require.NoError(t, logger.Close())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "written to file")
}

func TestNewLoggerFileMissingPath(t *testing.T) {
	cfg := config.LoggingConfig{
		Level:  "info",
		Format: "text",
		Output: "file",
		File:   "",
	}

	logger, err := NewLogger(cfg)
	assert.Error(t, err)
	assert.Nil(t, logger)
	assert.Contains(t, err.Error(), "log file path is required")
}

func TestNewLoggerInvalidOutput(t *testing.T) {
	cfg := config.LoggingConfig{
		Level:  "info",
		Format: "text",
		Output: "invalid",
	}

	logger, err := NewLogger(cfg)
	assert.Error(t, err)
	assert.Nil(t, logger)
	assert.Contains(t, err.Error(), "invalid log output")
}

func TestLoggerWithField(t *testing.T) {
	var buf bytes.Buffer

	logger := &Logger{
		level:  InfoLevel,
		format: "json",
		output: &buf,
		fields: make(map[string]interface{}),
	}

	logger.WithField("request_id", "abc-123").Info("pipeline started")

	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "pipeline started", entry.Message)
	assert.Equal(t, "abc-123", entry.Fields["request_id"])
}

func TestLoggerWithErrorNil(t *testing.T) {
	logger := &Logger{
		level:  InfoLevel,
		format: "json",
		output: &bytes.Buffer{},
		fields: make(map[string]interface{}),
	}

	assert.Equal(t, logger, logger.WithError(nil))
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer

	logger := &Logger{
		level:  WarnLevel,
		format: "json",
		output: &buf,
		fields: make(map[string]interface{}),
	}

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)

	var warnEntry LogEntry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &warnEntry))
	assert.Equal(t, "WARN", warnEntry.Level)

	var errorEntry LogEntry
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &errorEntry))
	assert.Equal(t, "ERROR", errorEntry.Level)
}

func TestLoggerErrorWithErr(t *testing.T) {
	var buf bytes.Buffer

	logger := &Logger{
		level:  InfoLevel,
		format: "json",
		output: &buf,
		fields: make(map[string]interface{}),
	}

	logger.ErrorWithErr("query failed", assert.AnError)

	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "query failed", entry.Message)
	assert.Equal(t, assert.AnError.Error(), entry.Error)
}

func TestLoggerTextFormat(t *testing.T) {
	var buf bytes.Buffer

	logger := &Logger{
		level:  InfoLevel,
		format: "text",
		output: &buf,
		fields: map[string]interface{}{"table": "master"},
	}

	logger.Info("selected table")

	output := buf.String()
	assert.Contains(t, output, "INFO")
	assert.Contains(t, output, "selected table")
	assert.Contains(t, output, "table=master")
}

func TestGlobalLoggingFunctions(t *testing.T) {
	var buf bytes.Buffer

	globalLogger = &Logger{
		level:  InfoLevel,
		format: "json",
		output: &buf,
		fields: make(map[string]interface{}),
	}

	Info("info message")
	Warn("warn message")
	Error("error message")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)

	for i, expectedLevel := range []string{"INFO", "WARN", "ERROR"} {
		var entry LogEntry
		require.NoError(t, json.Unmarshal([]byte(lines[i]), &entry))
		assert.Equal(t, expectedLevel, entry.Level)
	}
}

func TestSetupFallbackLogger(t *testing.T) {
	SetupFallbackLogger()

	logger := GetLogger()
	require.NotNil(t, logger)
	assert.Equal(t, InfoLevel, logger.level)
	assert.Equal(t, "text", logger.format)
}

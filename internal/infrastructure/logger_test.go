package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"demandcast/internal/config"
)

func readLastEntry(t *testing.T, path string) map[string]interface{} {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &entry); err != nil {
		t.Fatalf("Failed to parse log JSON: %v", err)
	}
	return entry
}

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "nested", "test.log")
	cfg := config.LoggingConfig{
		Level:    "info",
		Output:   "file",
		FilePath: logFile,
	}

	logger, err := InitializeLogger(cfg)
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	if logger == nil {
		t.Fatal("Logger is nil")
	}
	if GetLogger() != logger {
		t.Error("GetLogger did not return the initialized logger")
	}

	logger.Info("test message", "key", "value")
	CloseLogFile()

	entry := readLastEntry(t, logFile)
	if entry["msg"] != "test message" {
		t.Errorf("Expected msg='test message', got %v", entry["msg"])
	}
	if entry["key"] != "value" {
		t.Errorf("Expected key='value', got %v", entry["key"])
	}
	if _, ok := entry["source"]; ok {
		t.Error("source should only be added in development mode")
	}
}

func TestInitializeLoggerOnce(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	dir := t.TempDir()
	first, err := InitializeLogger(config.LoggingConfig{Level: "info", Output: "file", FilePath: filepath.Join(dir, "a.log")})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	second, _ := InitializeLogger(config.LoggingConfig{Level: "debug", Output: "file", FilePath: filepath.Join(dir, "b.log")})

	if first != second {
		t.Error("second initialization replaced the logger")
	}
	if _, err := os.Stat(filepath.Join(dir, "b.log")); !os.IsNotExist(err) {
		t.Error("second initialization opened a new log file")
	}
}

func TestTraceIDInjection(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "test.log")
	_, err := InitializeLogger(config.LoggingConfig{Level: "debug", Output: "file", FilePath: logFile})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	ctx := WithTraceID(context.Background(), "test-trace-123")
	GetLogger().InfoContext(ctx, "test with trace")
	CloseLogFile()

	entry := readLastEntry(t, logFile)
	if entry["trace_id"] != "test-trace-123" {
		t.Errorf("Expected trace_id='test-trace-123', got %v", entry["trace_id"])
	}
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected string
	}{
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"warn", "WARN"},
		{"error", "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			ResetLoggerForTesting()
			defer ResetLoggerForTesting()

			logFile := filepath.Join(t.TempDir(), "test.log")
			logger, err := InitializeLogger(config.LoggingConfig{Level: tt.level, Output: "file", FilePath: logFile})
			if err != nil {
				t.Fatalf("Failed to initialize logger: %v", err)
			}

			// One record below the threshold, one at it
			logger.Debug("below")
			logger.Log(context.Background(), parseLogLevel(tt.level), "at level")
			CloseLogFile()

			entry := readLastEntry(t, logFile)
			if entry["level"] != tt.expected {
				t.Errorf("Expected level=%s, got %v", tt.expected, entry["level"])
			}

			content, _ := os.ReadFile(logFile)
			wantLines := 1
			if tt.level == "debug" {
				wantLines = 2
			}
			if got := len(strings.Split(strings.TrimSpace(string(content)), "\n")); got != wantLines {
				t.Errorf("Expected %d records, got %d", wantLines, got)
			}
		})
	}
}

func TestParseLogLevelFallback(t *testing.T) {
	if parseLogLevel("WARNING") != slog.LevelWarn {
		t.Error("level parsing should be case-insensitive")
	}
	if parseLogLevel("verbose") != slog.LevelInfo {
		t.Error("unknown levels should fall back to info")
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := ContextWithTraceID(context.Background())
	traceID := GetTraceID(ctx)
	if traceID == "" {
		t.Error("Expected trace ID to be generated")
	}

	if GetTraceID(EnsureTraceID(ctx)) != traceID {
		t.Error("EnsureTraceID changed existing trace ID")
	}
	if GetTraceID(EnsureTraceID(context.Background())) == "" {
		t.Error("EnsureTraceID did not add trace ID")
	}
}

func TestLoggerHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, nil)

	WithComponent(logger, "test-component").Info("test message")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse log JSON: %v", err)
	}
	if entry["component"] != "test-component" {
		t.Errorf("Expected component='test-component', got %v", entry["component"])
	}

	buf.Reset()
	WithError(logger, os.ErrNotExist).Info("error test")
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse log JSON: %v", err)
	}
	if entry["error"] != os.ErrNotExist.Error() {
		t.Errorf("Expected error=%q, got %v", os.ErrNotExist.Error(), entry["error"])
	}

	if WithError(logger, nil) != logger {
		t.Error("WithError(nil) should return the same logger")
	}

	buf.Reset()
	ctx := WithTraceID(context.Background(), "abc")
	LoggerWithContext(ctx, logger).Info("no context call")
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse log JSON: %v", err)
	}
	if entry["trace_id"] != "abc" {
		t.Errorf("Expected trace_id='abc', got %v", entry["trace_id"])
	}
}

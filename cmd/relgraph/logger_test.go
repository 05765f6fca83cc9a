package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/npratt/relgraph/internal/config"
)

func rotation() config.LogRotationConfig {
	return config.Default().LogRotation
}

func TestSetupTUILogger_WritesToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "relgraph.log")

	result, err := SetupTUILogger(logPath, slog.LevelInfo, rotation())
	if err != nil {
		t.Fatalf("SetupTUILogger failed: %v", err)
	}

	if result.FilePath != logPath {
		t.Errorf("FilePath = %q, want %q", result.FilePath, logPath)
	}

	result.Logger.Info("test message", "key", "value")
	_ = result.Close()

	content, err := os.ReadFile(result.FilePath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(content), "test message") {
		t.Errorf("log file should contain 'test message', got: %s", content)
	}
	if !strings.Contains(string(content), `"key":"value"`) {
		t.Errorf("log file should contain key=value, got: %s", content)
	}
}

func TestSetupTUILogger_DoesNotWriteToStderr(t *testing.T) {
	// Anything on stderr would corrupt the TUI display.
	logPath := filepath.Join(t.TempDir(), "relgraph.log")

	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	result, err := SetupTUILogger(logPath, slog.LevelInfo, rotation())
	if err != nil {
		os.Stderr = oldStderr
		t.Fatalf("SetupTUILogger failed: %v", err)
	}
	defer func() { _ = result.Close() }()

	result.Logger.Info("this should not appear on stderr")

	_ = w.Close()
	os.Stderr = oldStderr

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	if buf.Len() > 0 {
		t.Errorf("TUI logger wrote to stderr: %s", buf.String())
	}
}

func TestSetupTUILoggerWithWriter_WritesToWriter(t *testing.T) {
	var buf bytes.Buffer

	logger := SetupTUILoggerWithWriter(&buf, slog.LevelInfo)
	logger.Info("test message", "foo", "bar")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("output should contain 'test message', got: %s", output)
	}
	if !strings.Contains(output, `"foo":"bar"`) {
		t.Errorf("output should contain foo=bar, got: %s", output)
	}
}

func TestSetupTUILogger_AppendsToExistingFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "relgraph.log")
	if err := os.WriteFile(logPath, []byte("existing content\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	result, err := SetupTUILogger(logPath, slog.LevelInfo, rotation())
	if err != nil {
		t.Fatalf("SetupTUILogger failed: %v", err)
	}
	result.Logger.Info("new message")
	_ = result.Close()

	content, _ := os.ReadFile(logPath)
	if !strings.Contains(string(content), "existing content") {
		t.Error("should preserve existing content")
	}
	if !strings.Contains(string(content), "new message") {
		t.Error("should append new message")
	}
}

func TestSetupTUILogger_FailsWhenDirectoryIsAFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	result, err := SetupTUILogger(filepath.Join(blocker, "sub", "relgraph.log"), slog.LevelInfo, rotation())
	if err == nil {
		_ = result.Close()
		t.Error("expected error when the log directory cannot be created")
	}
}

func TestSetupTUILogger_RespectsLogLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "relgraph.log")

	result, err := SetupTUILogger(logPath, slog.LevelWarn, rotation())
	if err != nil {
		t.Fatalf("SetupTUILogger failed: %v", err)
	}

	result.Logger.Info("info message")
	result.Logger.Warn("warn message")
	_ = result.Close()

	content, _ := os.ReadFile(result.FilePath)
	contentStr := string(content)
	if strings.Contains(contentStr, "info message") {
		t.Error("INFO message should be filtered out at WARN level")
	}
	if !strings.Contains(contentStr, "warn message") {
		t.Error("WARN message should appear")
	}
}

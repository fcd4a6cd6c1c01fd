package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "dentalxray.log")

	log, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	log.Info("upload finished")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}

	line := strings.TrimSpace(strings.Split(string(data), "\n")[0])
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not JSON: %q", line)
	}
	if entry["message"] != "upload finished" {
		t.Errorf("message = %v", entry["message"])
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("missing timestamp key")
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v", entry["level"])
	}
}

func TestNewEmptyPath(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestNewConsole(t *testing.T) {
	log, err := NewConsole(false)
	if err != nil {
		t.Fatalf("NewConsole failed: %v", err)
	}
	if log.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info level should be disabled when not verbose")
	}
	if !log.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn level should be enabled")
	}
}

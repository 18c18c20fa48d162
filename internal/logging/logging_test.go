// If you are AI: This file contains unit tests for logger construction.

package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// bufferSyncer adapts a bytes.Buffer to zapcore.WriteSyncer.
type bufferSyncer struct {
	bytes.Buffer
}

func (b *bufferSyncer) Sync() error { return nil }

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"":        zapcore.InfoLevel,
		"info":    zapcore.InfoLevel,
		"DEBUG":   zapcore.DebugLevel,
		" warn ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}

	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("Expected error for unknown level")
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Error("Expected error for bad level")
	}
}

func TestCoreJSONAndLevel(t *testing.T) {
	var console bufferSyncer
	logger := zap.New(newCore(zapcore.InfoLevel, &console, nil, false))

	logger.Debug("hidden")
	logger.Info("frame", zap.Uint64("serial", 7))
	logger.Sync()

	lines := strings.Split(strings.TrimSpace(console.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d: %q", len(lines), console.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("Expected JSON output: %v", err)
	}
	if entry["msg"] != "frame" || entry["serial"] != float64(7) {
		t.Errorf("Unexpected entry %v", entry)
	}
}

func TestCoreTeesToFile(t *testing.T) {
	var console, file bufferSyncer
	logger := zap.New(newCore(zapcore.DebugLevel, &console, &file, true))
	logger.Warn("stall")

	if !strings.Contains(console.String(), "stall") {
		t.Error("Console should receive entry")
	}
	if !strings.Contains(file.String(), `"msg":"stall"`) {
		t.Errorf("File should receive JSON entry, got %q", file.String())
	}
}

func TestFileSinkRotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.log")
	logger, err := New(Config{Level: "info", File: path})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Info("written")
	logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Read log file: %v", err)
	}
	if !strings.Contains(string(data), "written") {
		t.Errorf("Log file missing entry: %q", data)
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Error("OrNop(nil) should return a logger")
	}
	l := zap.NewExample()
	if OrNop(l) != l {
		t.Error("OrNop should return the given logger")
	}
}

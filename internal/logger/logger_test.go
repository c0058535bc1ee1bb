package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo}, // Defaults to info
		{"", slog.LevelInfo},        // Defaults to info
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := ParseLevel(tt.level); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.level, got, tt.expected)
			}
			if New(tt.level) == nil {
				t.Fatal("expected non-nil logger")
			}
		})
	}
}

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info", "json")
	log.Debug("hidden")
	log.Info("visible", "filename", "a.txt")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("expected JSON log line: %v", err)
	}
	if entry["msg"] != "visible" || entry["filename"] != "a.txt" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestNewWithWriterText(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn", "text")
	if log.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	log.Warn("careful")
	if !strings.Contains(buf.String(), "msg=careful") {
		t.Errorf("expected text output, got %q", buf.String())
	}
}

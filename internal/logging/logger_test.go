package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
		ok    bool
	}{
		{"debug", slog.LevelDebug, true},
		{"info", slog.LevelInfo, true},
		{"INFO", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"bogus", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got := parseLevel(tt.input)
		if tt.ok {
			if got == nil {
				t.Errorf("parseLevel(%q) = nil, want %v", tt.input, tt.want)
				continue
			}
			if *got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, *got, tt.want)
			}
		} else if got != nil {
			t.Errorf("parseLevel(%q) = %v, want nil", tt.input, *got)
		}
	}
}

func TestGetLoggerReturnsSameInstance(t *testing.T) {
	a := GetLogger("test-same")
	b := GetLogger("test-same")
	if a != b {
		t.Error("GetLogger returned different instances for the same module")
	}
}

func TestModuleLevelOverride(t *testing.T) {
	Initialize(Config{
		Level:  "info",
		Format: "text",
		Modules: map[string]string{
			"chatty": "error",
		},
	})

	if lv, ok := moduleLevelVars["chatty"]; ok && lv.Level() != slog.LevelError {
		t.Errorf("module level = %v, want error", lv.Level())
	}

	logger := GetLogger("chatty")
	if logger == nil {
		t.Fatal("GetLogger returned nil")
	}
	if lv := moduleLevelVars["chatty"].Level(); lv != slog.LevelError {
		t.Errorf("module level after GetLogger = %v, want error", lv)
	}
}

func TestBufferCapturesEntries(t *testing.T) {
	Initialize(Config{Level: "info", Format: "text"})

	logger := GetLogger("buffer-test")
	logger.Info("hello from test", "key", "value")

	entries := GetBuffer().ReadAll()
	var found *LogEntry
	for i := range entries {
		if entries[i].Module == "buffer-test" && entries[i].Message == "hello from test" {
			found = &entries[i]
		}
	}
	if found == nil {
		t.Fatal("log entry not found in ring buffer")
	}
	if found.Level != "info" {
		t.Errorf("level = %q, want %q", found.Level, "info")
	}
	if found.Attributes["key"] != "value" {
		t.Errorf("attribute key = %v, want value", found.Attributes["key"])
	}
}

func TestRingBufferWraparound(t *testing.T) {
	rb := NewRingBuffer(3)
	for i := 0; i < 5; i++ {
		rb.Write(LogEntry{Message: fmt.Sprintf("msg-%d", i)})
	}

	if rb.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", rb.Count())
	}

	entries := rb.ReadAll()
	want := []string{"msg-2", "msg-3", "msg-4"}
	for i, w := range want {
		if entries[i].Message != w {
			t.Errorf("entries[%d].Message = %q, want %q", i, entries[i].Message, w)
		}
	}
}

func TestRingBufferEmpty(t *testing.T) {
	rb := NewRingBuffer(4)
	if got := rb.ReadAll(); got != nil {
		t.Errorf("ReadAll() on empty buffer = %v, want nil", got)
	}
}

func TestAddFileOutputTeesLoggers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "worker.log")

	// Logger created before the file is configured must still reach it.
	logger := GetLogger("filetest")

	if err := AddFileOutput(path); err != nil {
		t.Fatalf("AddFileOutput() error: %v", err)
	}
	logger.Info("written to file", "key", "value")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Reading log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("Log file missing message, got: %s", data)
	}
	if !strings.Contains(string(data), "module=filetest") {
		t.Errorf("Log file missing module attribute, got: %s", data)
	}
}

func TestRingBufferTail(t *testing.T) {
	rb := NewRingBuffer(4)
	for i := 1; i <= 6; i++ {
		rb.Write(LogEntry{Message: fmt.Sprintf("msg-%d", i)})
	}

	got := rb.Tail(2)
	want := []string{"msg-5", "msg-6"}
	if len(got) != len(want) {
		t.Fatalf("Tail(2) returned %d entries, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Message != w {
			t.Errorf("Tail(2)[%d].Message = %q, want %q", i, got[i].Message, w)
		}
	}

	// Asking for more than is buffered returns everything, oldest first.
	all := rb.Tail(10)
	if len(all) != 4 || all[0].Message != "msg-3" || all[3].Message != "msg-6" {
		t.Errorf("Tail(10) = %v, want msg-3..msg-6", all)
	}
}

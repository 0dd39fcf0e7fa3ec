package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestInitialize_SilentByDefault(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")
	var buf bytes.Buffer

	if err := Initialize(Options{Output: &buf}); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	Error("should not appear")
	Sync()

	if buf.Len() != 0 {
		t.Errorf("silent logger wrote %q", buf.String())
	}
}

func TestInitialize_EnvLevel(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "warn")
	var buf bytes.Buffer

	if err := Initialize(Options{Output: &buf, Format: "json"}); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	Info("hidden")
	Warn("visible")
	Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info entry logged at warn level: %q", out)
	}
	if !strings.Contains(out, `"msg":"visible"`) {
		t.Errorf("warn entry missing from %q", out)
	}
}

func TestInitialize_JSONKeys(t *testing.T) {
	var buf bytes.Buffer

	if err := Initialize(Options{Level: "info", Format: "JSON", Output: &buf}); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	Info("decoder started")
	Sync()

	out := buf.String()
	for _, want := range []string{`"level":"info"`, `"ts":`, `"msg":"decoder started"`, `"caller":`} {
		if !strings.Contains(out, want) {
			t.Errorf("json entry %q missing %s", out, want)
		}
	}
	if strings.Contains(out, `"M":`) || strings.Contains(out, `"L":`) {
		t.Errorf("json entry uses development keys: %q", out)
	}
}

func TestInitialize_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ampwatch.log")
	var buf bytes.Buffer

	err := Initialize(Options{
		Level:  "debug",
		Output: &buf,
		File:   FileOptions{Filename: path, MaxSizeMB: 1},
	})
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	LogFrame(7, "beef1234", errors.New("ResyncFailed: unknown preamble pattern"))
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	for _, out := range []string{buf.String(), string(data)} {
		if !strings.Contains(out, "Frame rejected") || !strings.Contains(out, "beef1234") {
			t.Errorf("log output missing frame entry: %q", out)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"chatty", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("a", 300)
	got := truncate(long)
	if !strings.HasSuffix(got, "(44 more)") {
		t.Errorf("truncate() = %q", got)
	}
	if truncate("abc") != "abc" {
		t.Error("short strings should be unchanged")
	}
}

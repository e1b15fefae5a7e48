package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("Expected default level to be info, got %s", cfg.Level)
	}
	if cfg.Pretty {
		t.Error("Expected default pretty to be false")
	}
	if cfg.File != "" {
		t.Errorf("Expected no default log file, got %q", cfg.File)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    Level
		expected zerolog.Level
	}{
		{LevelDebug, zerolog.DebugLevel},
		{LevelInfo, zerolog.InfoLevel},
		{LevelWarn, zerolog.WarnLevel},
		{"WARNING", zerolog.WarnLevel},
		{LevelError, zerolog.ErrorLevel},
		{LevelDisabled, zerolog.Disabled},
		{"off", zerolog.Disabled},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSetup_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, closer, err := Setup(Config{Level: LevelInfo, Output: buf})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	defer closer.Close()

	logger.Info().Int("page", 3).Msg("page loaded")

	out := buf.String()
	for _, want := range []string{`"level":"info"`, `"page":3`, `"message":"page loaded"`, `"time":`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %s", out, want)
		}
	}
}

func TestSetup_Pretty(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, _, err := Setup(Config{Level: LevelInfo, Pretty: true, Output: buf})
	if err != nil {
		t.Fatal(err)
	}

	logger.Info().Msg("console line")

	out := buf.String()
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("pretty output should not be JSON, got %q", out)
	}
	if !strings.Contains(out, "console line") {
		t.Errorf("output %q missing message", out)
	}
}

func TestSetup_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artic.log")
	stderr := &bytes.Buffer{}

	logger, closer, err := Setup(Config{Level: LevelDebug, File: path, Output: stderr})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	logger.Debug().Msg("to file")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("log file content %q missing message", data)
	}
	if stderr.Len() != 0 {
		t.Errorf("nothing should reach Output when File is set, got %q", stderr.String())
	}
}

func TestSetup_FileError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "artic.log")
	if _, _, err := Setup(Config{Level: LevelInfo, File: path}); err == nil {
		t.Error("expected error for unwritable log path")
	}
}

func TestNewLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	if _, _, err := Setup(Config{Level: LevelInfo, Output: buf}); err != nil {
		t.Fatal(err)
	}

	logger := NewLogger("table")
	logger.Info().Msg("test message")

	out := buf.String()
	if !strings.Contains(out, `"component":"table"`) {
		t.Errorf("Expected output to contain component, got %q", out)
	}
	if !strings.Contains(out, "test message") {
		t.Errorf("Expected output to contain 'test message', got %q", out)
	}
}

func TestLogLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	if _, _, err := Setup(Config{Level: LevelWarn, Output: buf}); err != nil {
		t.Fatal(err)
	}
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger := NewLogger("test")
	logger.Debug().Msg("debug message")
	logger.Info().Msg("info message")
	logger.Warn().Msg("warn message")
	logger.Error().Msg("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below warn should be filtered, got %q", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("warn and error should be included, got %q", out)
	}
}

package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/msto63/bayan/pkg/core/config"
)

func TestDefaultLoggerConfig(t *testing.T) {
	cfg := DefaultLoggerConfig("my-service")

	if cfg.ServiceName != "my-service" {
		t.Errorf("ServiceName = %v, want my-service", cfg.ServiceName)
	}
	if cfg.Level != "warn" {
		t.Errorf("Level = %v, want warn", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("Format = %v, want console", cfg.Format)
	}
}

func TestFromConfig(t *testing.T) {
	app := config.Default()
	app.General.LogLevel = "debug"
	app.General.LogFormat = "json"

	cfg := FromConfig(app, "bayan")
	if cfg.Level != "debug" || cfg.Format != "json" || cfg.ServiceName != "bayan" {
		t.Errorf("FromConfig() = %+v", cfg)
	}

	if cfg := FromConfig(nil, "bayan"); cfg.Level != "warn" {
		t.Errorf("FromConfig(nil) = %+v", cfg)
	}
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		level   string
		debug   bool
		info    bool
		warning bool
	}{
		{"debug", true, true, true},
		{"info", false, true, true},
		{"warning", false, false, true},
		{"error", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(LoggerConfig{ServiceName: "test", Level: tt.level, Format: "text", Output: &buf})

			logger.Debug("debug message")
			logger.Info("info message")
			logger.Warn("warn message")

			out := buf.String()
			if got := strings.Contains(out, "debug message"); got != tt.debug {
				t.Errorf("debug logged = %v, want %v", got, tt.debug)
			}
			if got := strings.Contains(out, "info message"); got != tt.info {
				t.Errorf("info logged = %v, want %v", got, tt.info)
			}
			if got := strings.Contains(out, "warn message"); got != tt.warning {
				t.Errorf("warn logged = %v, want %v", got, tt.warning)
			}
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{ServiceName: "bayan", Level: "info", Format: "json", Output: &buf})
	logger.Info("run completed", map[string]interface{}{"facts": 3})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["message"] != "run completed" || entry["logger"] != "bayan" || entry["facts"] != float64(3) {
		t.Errorf("Unexpected entry %v", entry)
	}
}

func TestNewLogger_FallbacksAreReported(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{ServiceName: "test", Level: "loud", Format: "xml", Output: &buf})
	if logger == nil {
		t.Fatal("NewLogger() returned nil")
	}

	out := buf.String()
	if !strings.Contains(out, "unknown log level") || !strings.Contains(out, "unknown log format") {
		t.Errorf("Expected fallback warnings, got %q", out)
	}
}

func TestNewLogger_File(t *testing.T) {
	defer CloseFiles()

	path := filepath.Join(t.TempDir(), "logs", "bayan.log")
	var buf bytes.Buffer
	first := NewLogger(LoggerConfig{Level: "info", Format: "text", Output: &buf, File: path})
	second := NewLogger(LoggerConfig{Level: "info", Format: "text", Output: &buf, File: path})

	first.Info("from first")
	second.Info("from second")

	if err := CloseFiles(); err != nil {
		t.Fatalf("CloseFiles() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Log file missing: %v", err)
	}
	for _, msg := range []string{"from first", "from second"} {
		if !strings.Contains(string(data), msg) {
			t.Errorf("Log file lacks %q: %q", msg, data)
		}
		if !strings.Contains(buf.String(), msg) {
			t.Errorf("Primary output lacks %q", msg)
		}
	}
}

func TestNewSimpleLogger(t *testing.T) {
	logger := NewSimpleLogger("test-service")

	if logger == nil {
		t.Fatal("NewSimpleLogger() returned nil")
	}
}

func BenchmarkLogger_Info(b *testing.B) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{ServiceName: "benchmark", Level: "info", Format: "json", Output: &buf})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		logger.Info("benchmark message", map[string]interface{}{"iteration": i})
	}
}

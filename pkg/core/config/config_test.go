package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	mdwerror "github.com/msto63/bayan/foundation/core/error"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"seconds", "30s", 30 * time.Second, false},
		{"minutes", "5m", 5 * time.Minute, false},
		{"hours", "2h", 2 * time.Hour, false},
		{"complex", "1h30m", 90 * time.Minute, false},
		{"milliseconds", "100ms", 100 * time.Millisecond, false},
		{"invalid", "invalid", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))

			if (err != nil) != tt.wantErr {
				t.Errorf("UnmarshalText() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && d.Duration != tt.expected {
				t.Errorf("UnmarshalText() = %v, want %v", d.Duration, tt.expected)
			}
		})
	}
}

func TestDuration_MarshalText(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"seconds", 30 * time.Second, "30s"},
		{"minutes", 5 * time.Minute, "5m0s"},
		{"hours", 2 * time.Hour, "2h0m0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Duration{tt.duration}
			result, err := d.MarshalText()

			if err != nil {
				t.Errorf("MarshalText() error = %v", err)
				return
			}

			if string(result) != tt.expected {
				t.Errorf("MarshalText() = %v, want %v", string(result), tt.expected)
			}
		})
	}
}

func TestConfig_applyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	// General defaults
	if cfg.General.Name != "bayan" {
		t.Errorf("General.Name = %v, want bayan", cfg.General.Name)
	}
	if cfg.General.LogLevel != "warn" {
		t.Errorf("General.LogLevel = %v, want warn", cfg.General.LogLevel)
	}
	if cfg.General.LogFormat != "console" {
		t.Errorf("General.LogFormat = %v, want console", cfg.General.LogFormat)
	}

	// Engine defaults
	if cfg.Engine.MaxSourceLength != 1<<20 {
		t.Errorf("Engine.MaxSourceLength = %v, want 1MiB", cfg.Engine.MaxSourceLength)
	}
	if cfg.Engine.ModuleCacheTTL.Duration != 10*time.Minute {
		t.Errorf("Engine.ModuleCacheTTL = %v, want 10m", cfg.Engine.ModuleCacheTTL.Duration)
	}
	if cfg.Engine.RunTimeout.Duration != 30*time.Second {
		t.Errorf("Engine.RunTimeout = %v, want 30s", cfg.Engine.RunTimeout.Duration)
	}

	// Server defaults
	if cfg.Server.GRPCPort != 9300 || cfg.Server.HTTPPort != 8300 {
		t.Errorf("Server ports = %d/%d, want 9300/8300", cfg.Server.GRPCPort, cfg.Server.HTTPPort)
	}

	// Store defaults
	if cfg.Store.Path != "./data/facts.db" {
		t.Errorf("Store.Path = %v, want ./data/facts.db", cfg.Store.Path)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Defaults must validate: %v", err)
	}
}

func TestConfig_Addresses(t *testing.T) {
	cfg := Default()
	cfg.Server.Host = "0.0.0.0"

	if got := cfg.GRPCAddress(); got != "0.0.0.0:9300" {
		t.Errorf("GRPCAddress() = %v", got)
	}
	if got := cfg.HTTPAddress(); got != "0.0.0.0:8300" {
		t.Errorf("HTTPAddress() = %v", got)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/bayan.toml")
	if !mdwerror.HasCode(err, mdwerror.CodeMissingConfig) {
		t.Errorf("Load() expected missing config error, got %v", err)
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "toml",
			file: "bayan.toml",
			content: `
[general]
name = "test"
log_level = "debug"

[engine]
module_paths = ["/opt/bayan/lib"]
module_cache_ttl = "1m"

[server]
grpc_port = 9999
enable_reflection = true
`,
		},
		{
			name: "yaml",
			file: "bayan.yaml",
			content: `
general:
  name: test
  log_level: debug
engine:
  module_paths: [/opt/bayan/lib]
  module_cache_ttl: 1m
server:
  grpc_port: 9999
  enable_reflection: true
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write test config: %v", err)
			}

			cfg, err := Load(configPath)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}

			if cfg.General.Name != "test" || cfg.General.LogLevel != "debug" {
				t.Errorf("General = %+v", cfg.General)
			}
			if len(cfg.Engine.ModulePaths) != 1 || cfg.Engine.ModulePaths[0] != "/opt/bayan/lib" {
				t.Errorf("Engine.ModulePaths = %v", cfg.Engine.ModulePaths)
			}
			if cfg.Engine.ModuleCacheTTL.Duration != time.Minute {
				t.Errorf("Engine.ModuleCacheTTL = %v, want 1m", cfg.Engine.ModuleCacheTTL.Duration)
			}
			if cfg.Server.GRPCPort != 9999 || !cfg.Server.EnableReflection {
				t.Errorf("Server = %+v", cfg.Server)
			}
			if cfg.Source != configPath {
				t.Errorf("Source = %v, want %v", cfg.Source, configPath)
			}

			// Check defaults were applied for missing values
			if cfg.Server.HTTPPort != 8300 {
				t.Errorf("Server.HTTPPort = %v, want 8300 (default)", cfg.Server.HTTPPort)
			}
		})
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed", "[general\nname = "},
		{"unknown level", "[general]\nlog_level = \"loud\""},
		{"unknown format", "[general]\nlog_format = \"xml\""},
		{"port out of range", "[server]\ngrpc_port = 70000"},
		{"bad duration", "[engine]\nrun_timeout = \"soon\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "bayan.toml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write test config: %v", err)
			}
			if _, err := Load(configPath); !mdwerror.HasCode(err, mdwerror.CodeInvalidConfig) {
				t.Errorf("Load() expected invalid config error, got %v", err)
			}
		})
	}
}

func TestConfig_expandEnvVars(t *testing.T) {
	t.Setenv("BAYAN_TEST_HOME", "/srv/bayan")

	cfg := &Config{
		Engine: EngineConfig{ModulePaths: []string{"$BAYAN_TEST_HOME/lib"}},
		Store:  StoreConfig{Path: "${BAYAN_TEST_HOME}/facts.db"},
	}

	cfg.expandEnvVars()

	if cfg.Engine.ModulePaths[0] != "/srv/bayan/lib" {
		t.Errorf("ModulePaths[0] = %v, want /srv/bayan/lib", cfg.Engine.ModulePaths[0])
	}
	if cfg.Store.Path != "/srv/bayan/facts.db" {
		t.Errorf("Store.Path = %v, want /srv/bayan/facts.db", cfg.Store.Path)
	}
}

// isolate moves into an empty directory with no config files anywhere
// on the search path
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv(EnvVar, "")
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	originalWd, _ := os.Getwd()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Cleanup(func() { os.Chdir(originalWd) })
	return tmpDir
}

func TestLoadFromEnv_NoConfigFound(t *testing.T) {
	isolate(t)

	_, err := LoadFromEnv()
	if !mdwerror.HasCode(err, mdwerror.CodeMissingConfig) {
		t.Errorf("LoadFromEnv() expected missing config error, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	dir := isolate(t)

	cfg, err := Resolve("")
	if err != nil || cfg.Source != "" {
		t.Fatalf("Resolve() without files should yield defaults, got %+v, %v", cfg, err)
	}

	path := filepath.Join(dir, "bayan.toml")
	if err := os.WriteFile(path, []byte("[store]\npath = \"facts.db\""), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	cfg, err = Resolve("")
	if err != nil || cfg.Store.Path != "facts.db" {
		t.Errorf("Resolve() should find ./bayan.toml, got %+v, %v", cfg, err)
	}

	t.Setenv(EnvVar, filepath.Join(dir, "missing.toml"))
	if _, err := Resolve(""); err == nil {
		t.Error("Resolve() must report a missing file named by the environment")
	}
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	mdwerror "github.com/msto63/bayan/foundation/core/error"
	mdwlog "github.com/msto63/bayan/foundation/core/log"
)

// EnvVar names the environment variable holding the config file path
const EnvVar = "BAYAN_CONFIG"

// Config holds the complete application configuration
type Config struct {
	General GeneralConfig `toml:"general" yaml:"general"`
	Engine  EngineConfig  `toml:"engine" yaml:"engine"`
	Server  ServerConfig  `toml:"server" yaml:"server"`
	Store   StoreConfig   `toml:"store" yaml:"store"`

	// Source is the file the configuration was read from, empty for
	// built-in defaults
	Source string `toml:"-" yaml:"-"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name        string `toml:"name" yaml:"name"`
	Environment string `toml:"environment" yaml:"environment"`
	LogLevel    string `toml:"log_level" yaml:"log_level"`
	LogFormat   string `toml:"log_format" yaml:"log_format"`
}

// EngineConfig holds language engine settings
type EngineConfig struct {
	ModulePaths     []string `toml:"module_paths" yaml:"module_paths"`
	MaxSourceLength int      `toml:"max_source_length" yaml:"max_source_length"`
	MaxCallDepth    int      `toml:"max_call_depth" yaml:"max_call_depth"`
	ModuleCacheTTL  Duration `toml:"module_cache_ttl" yaml:"module_cache_ttl"`
	RunTimeout      Duration `toml:"run_timeout" yaml:"run_timeout"`
}

// ServerConfig holds settings of the gRPC and websocket endpoints
type ServerConfig struct {
	Host             string   `toml:"host" yaml:"host"`
	GRPCPort         int      `toml:"grpc_port" yaml:"grpc_port"`
	HTTPPort         int      `toml:"http_port" yaml:"http_port"`
	EnableReflection bool     `toml:"enable_reflection" yaml:"enable_reflection"`
	ReadTimeout      Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout     Duration `toml:"write_timeout" yaml:"write_timeout"`
	AllowedOrigins   []string `toml:"allowed_origins" yaml:"allowed_origins"`
}

// StoreConfig holds the fact snapshot database settings
type StoreConfig struct {
	Path string `toml:"path" yaml:"path"`
}

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a duration scalar
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

// MarshalYAML formats the duration as a string
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Default returns the built-in configuration
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML or YAML file, chosen by extension
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, mdwerror.Newf("config file not found: %s", path).WithCode(mdwerror.CodeMissingConfig)
		}
		return nil, mdwerror.Wrap(err, "failed to read config").WithCode(mdwerror.CodeConfigError)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		_, err = toml.Decode(string(data), &cfg)
	}
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to parse config").
			WithCode(mdwerror.CodeInvalidConfig).
			WithDetail("path", path)
	}

	cfg.Source = path
	cfg.applyDefaults()
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultPaths lists the locations searched when no path is given
func DefaultPaths() []string {
	paths := []string{
		"./bayan.toml",
		"./bayan.yaml",
		"./configs/bayan.toml",
		"./configs/bayan.yaml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config/bayan/bayan.toml"),
			filepath.Join(home, ".config/bayan/bayan.yaml"))
	}
	return paths
}

// LoadFromEnv loads configuration from the BAYAN_CONFIG environment
// variable or the first existing default location
func LoadFromEnv() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		for _, p := range DefaultPaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return nil, mdwerror.Newf("no config file found, set %s or create bayan.toml", EnvVar).
			WithCode(mdwerror.CodeMissingConfig)
	}

	return Load(path)
}

// Resolve loads path when given, otherwise the environment or default
// locations, and falls back to built-in defaults when no file exists
func Resolve(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	cfg, err := LoadFromEnv()
	if mdwerror.HasCode(err, mdwerror.CodeMissingConfig) && os.Getenv(EnvVar) == "" {
		return Default(), nil
	}
	return cfg, err
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.Name == "" {
		c.General.Name = "bayan"
	}
	if c.General.Environment == "" {
		c.General.Environment = "development"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "warn"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "console"
	}

	// Engine
	if c.Engine.MaxSourceLength == 0 {
		c.Engine.MaxSourceLength = 1 << 20
	}
	if c.Engine.MaxCallDepth == 0 {
		c.Engine.MaxCallDepth = 2000
	}
	if c.Engine.ModuleCacheTTL.Duration == 0 {
		c.Engine.ModuleCacheTTL.Duration = 10 * time.Minute
	}
	if c.Engine.RunTimeout.Duration == 0 {
		c.Engine.RunTimeout.Duration = 30 * time.Second
	}

	// Server
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.GRPCPort == 0 {
		c.Server.GRPCPort = 9300
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8300
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 30 * time.Second
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 60 * time.Second
	}

	// Store
	if c.Store.Path == "" {
		c.Store.Path = "./data/facts.db"
	}
}

// expandEnvVars expands environment variables in path settings
func (c *Config) expandEnvVars() {
	for i, p := range c.Engine.ModulePaths {
		c.Engine.ModulePaths[i] = os.ExpandEnv(p)
	}
	c.Store.Path = os.ExpandEnv(c.Store.Path)
}

// Validate checks value ranges and enumerations
func (c *Config) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return mdwerror.Newf(format, args...).
			WithCode(mdwerror.CodeInvalidConfig).
			WithDetail("source", c.Source)
	}
	if _, err := mdwlog.ParseLevel(c.General.LogLevel); err != nil {
		return invalid("invalid log_level %q", c.General.LogLevel)
	}
	if _, err := mdwlog.ParseFormat(c.General.LogFormat); err != nil {
		return invalid("invalid log_format %q", c.General.LogFormat)
	}
	for name, port := range map[string]int{"grpc_port": c.Server.GRPCPort, "http_port": c.Server.HTTPPort} {
		if port < 1 || port > 65535 {
			return invalid("%s out of range: %d", name, port)
		}
	}
	if c.Engine.MaxSourceLength < 0 || c.Engine.MaxCallDepth < 0 {
		return invalid("engine limits must not be negative")
	}
	return nil
}

// GRPCAddress returns the listen address of the gRPC server
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}

// HTTPAddress returns the listen address of the websocket endpoint
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}

// ============================================================================
// Bayan - bilingual language with embedded logic programming
// ============================================================================
//
// Package:     logging
// Description: Factory functions for creating Foundation loggers from
//              command-line and file configuration
// Created:     2025-10-06
// License:     MIT
// ============================================================================

package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	mdwlog "github.com/msto63/bayan/foundation/core/log"
	"github.com/msto63/bayan/pkg/core/config"
)

var (
	// open log files, shared by loggers writing to the same path
	files   = make(map[string]*os.File)
	filesMu sync.Mutex
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Service name
	ServiceName string

	// Log level (trace, debug, info, warn, error, fatal)
	Level string

	// Output format: json, text, console or logfmt (default: console)
	Format string

	// Output defaults to stderr so program output on stdout stays clean
	Output io.Writer

	// File, when set, receives a copy of every entry
	File string

	// Additional outputs (besides Output and File)
	AdditionalOutputs []io.Writer
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(serviceName string) LoggerConfig {
	return LoggerConfig{
		ServiceName: serviceName,
		Level:       "warn",
		Format:      "console",
	}
}

// FromConfig derives a logger configuration from the application config
func FromConfig(cfg *config.Config, serviceName string) LoggerConfig {
	lc := DefaultLoggerConfig(serviceName)
	if cfg == nil {
		return lc
	}
	if cfg.General.LogLevel != "" {
		lc.Level = cfg.General.LogLevel
	}
	if cfg.General.LogFormat != "" {
		lc.Format = cfg.General.LogFormat
	}
	return lc
}

// NewLogger creates a new Foundation logger. Unknown levels fall back to
// info and unknown formats to JSON; a log file that cannot be opened is
// reported and skipped.
func NewLogger(cfg LoggerConfig) *mdwlog.Logger {
	level, levelErr := mdwlog.ParseLevel(cfg.Level)
	format, formatErr := mdwlog.ParseFormat(cfg.Format)
	if cfg.Format == "" {
		format, formatErr = mdwlog.FormatConsole, nil
	}

	// Build output writer
	var output io.Writer = os.Stderr
	if cfg.Output != nil {
		output = cfg.Output
	}
	writers := []io.Writer{output}

	var fileErr error
	if cfg.File != "" {
		f, err := openLogFile(cfg.File)
		if err != nil {
			fileErr = err
		} else {
			writers = append(writers, f)
		}
	}
	writers = append(writers, cfg.AdditionalOutputs...)
	if len(writers) > 1 {
		output = io.MultiWriter(writers...)
	}

	logger := mdwlog.NewWithConfig(mdwlog.Config{
		Level:  level,
		Format: format,
		Output: output,
		Name:   cfg.ServiceName,
	})

	if levelErr != nil && cfg.Level != "" {
		logger.Warn("unknown log level, using info", mdwlog.Fields{"level": cfg.Level})
	}
	if formatErr != nil {
		logger.Warn("unknown log format, using json", mdwlog.Fields{"format": cfg.Format})
	}
	if fileErr != nil {
		logger.WarnWithErr("cannot open log file", fileErr, mdwlog.Fields{"file": cfg.File})
	}
	return logger
}

// NewSimpleLogger creates a logger with the default configuration
func NewSimpleLogger(serviceName string) *mdwlog.Logger {
	return NewLogger(DefaultLoggerConfig(serviceName))
}

// openLogFile opens path for appending, reusing an already open handle
func openLogFile(path string) (*os.File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	filesMu.Lock()
	defer filesMu.Unlock()

	if f, ok := files[abs]; ok {
		return f, nil
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(abs, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	files[abs] = f
	return f, nil
}

// CloseFiles closes every log file opened by NewLogger
func CloseFiles() error {
	filesMu.Lock()
	defer filesMu.Unlock()

	var first error
	for path, f := range files {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
		delete(files, path)
	}
	return first
}

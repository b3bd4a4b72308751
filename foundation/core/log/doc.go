// Package log provides structured logging for the Bayan toolchain.
//
// Package: log
// Title: Structured Logging
// Description: Structured logger with contextual fields, levels, JSON, text,
//              console and logfmt output, and integration with the core error
//              type. The engine, the CLI and the server all log through it.
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2025-10-02
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with structured logging and error integration
// - 2025-10-02 v0.2.0: Run IDs replace request/user scoping, lipgloss console styles,
//                      async buffering removed
//
// Usage:
//
//	logger := log.New().
//		WithLevel(log.LevelInfo).
//		WithFormat(log.FormatConsole).
//		WithField("component", "engine")
//
//	logger.Info("program loaded", log.Field("module", "main.bn"))
//
//	timer := logger.StartTimer("run")
//	// ... execute
//	timer.Stop()
package log

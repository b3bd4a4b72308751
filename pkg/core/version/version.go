// ============================================================================
// Bayan - bilingual language with embedded logic programming
// ============================================================================
//
// Package:     version
// Description: Central version management for the language, the CLI and
//              the run server
// Created:     2025-10-06
// License:     MIT
// ============================================================================

package version

import (
	"fmt"
	"runtime"
)

// Version constants
const (
	// Language version, bumped when syntax or semantics change
	Language = "0.1.0"

	// Component versions
	CLI    = "0.1.0"
	Server = "0.1.0"

	// WireProtocol versions the run service messages
	WireProtocol = "1"
)

// Commit is set at build time with -ldflags "-X .../version.Commit=..."
var Commit = "dev"

// ComponentVersion returns the version for a given component name
func ComponentVersion(name string) string {
	switch name {
	case "cli", "bayan":
		return CLI
	case "server", "serve":
		return Server
	default:
		return Language
	}
}

// String renders the full version line printed by `bayan version`
func String() string {
	return fmt.Sprintf("bayan %s (language %s, commit %s, %s %s/%s)",
		CLI, Language, Commit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

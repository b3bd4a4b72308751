// File: severity.go
// Title: Error Severity Levels
// Description: Defines severity levels for errors. Severity drives the log
//              level used when an error is reported by the CLI and server.
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2025-10-02
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with severity levels
// - 2025-10-02 v0.2.0: Mapping for language pipeline codes

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow indicates a problem in user input such as program source
	SeverityLow Severity = iota

	// SeverityMedium indicates an error that affects one operation only
	SeverityMedium

	// SeverityHigh indicates a failure of infrastructure the engine depends on
	SeverityHigh

	// SeverityCritical indicates the process cannot continue
	SeverityCritical
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ShouldAlert returns true if this severity level should trigger alerts
func (s Severity) ShouldAlert() bool {
	return s >= SeverityHigh
}

// GetSeverityFromCode determines appropriate severity level based on error code
func GetSeverityFromCode(code Code) Severity {
	switch code {
	case CodeLexical, CodeSyntax, CodeCompile, CodeThrow, CodeInvalidInput:
		return SeverityLow
	case CodeRuntime, CodeImport, CodeNotFound, CodeTimeout, CodeCanceled:
		return SeverityMedium
	case CodeDatabaseError, CodeConnectionFailed, CodeServiceUnavailable, CodeNetworkError,
		CodeConfigError, CodeMissingConfig, CodeInvalidConfig:
		return SeverityHigh
	case CodeInternal:
		return SeverityCritical
	default:
		return SeverityMedium
	}
}

// File: codes.go
// Title: Error Code Definitions
// Description: Defines standardized error codes for the Bayan toolchain.
//              Pipeline codes identify the stage that rejected a program;
//              platform codes cover configuration, storage and transport.
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2025-10-02
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with core error codes
// - 2025-10-02 v0.2.0: Language pipeline codes, dropped business codes

package error

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeTimeout      Code = "TIMEOUT"
	CodeCanceled     Code = "CANCELED"

	// Language pipeline
	CodeLexical Code = "LEXICAL"
	CodeSyntax  Code = "SYNTAX"
	CodeCompile Code = "COMPILE"
	CodeRuntime Code = "RUNTIME"
	CodeThrow   Code = "THROW"
	CodeImport  Code = "IMPORT"

	// Storage
	CodeDatabaseError    Code = "DATABASE_ERROR"
	CodeConnectionFailed Code = "CONNECTION_FAILED"

	// Service and network
	CodeServiceUnavailable Code = "SERVICE_UNAVAILABLE"
	CodeNetworkError       Code = "NETWORK_ERROR"

	// Configuration
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeMissingConfig Code = "MISSING_CONFIG"
	CodeInvalidConfig Code = "INVALID_CONFIG"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// IsValid checks if the error code is a known valid code
func (c Code) IsValid() bool {
	switch c {
	case CodeUnknown, CodeInternal, CodeNotFound, CodeInvalidInput, CodeTimeout, CodeCanceled,
		CodeLexical, CodeSyntax, CodeCompile, CodeRuntime, CodeThrow, CodeImport,
		CodeDatabaseError, CodeConnectionFailed,
		CodeServiceUnavailable, CodeNetworkError,
		CodeConfigError, CodeMissingConfig, CodeInvalidConfig:
		return true
	default:
		return false
	}
}

// Category returns the high-level category of the error code
func (c Code) Category() string {
	switch c {
	case CodeLexical, CodeSyntax, CodeCompile:
		return "source"
	case CodeRuntime, CodeThrow, CodeImport:
		return "execution"
	case CodeDatabaseError, CodeConnectionFailed:
		return "database"
	case CodeServiceUnavailable, CodeNetworkError:
		return "service"
	case CodeConfigError, CodeMissingConfig, CodeInvalidConfig:
		return "configuration"
	default:
		return "generic"
	}
}

// IsSourceError reports whether the code belongs to a front-end stage,
// in which case the program never started executing
func (c Code) IsSourceError() bool {
	return c.Category() == "source"
}

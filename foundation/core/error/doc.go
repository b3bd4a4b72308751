// Package error provides the structured error type used across Bayan.
//
// Every stage of the language pipeline reports failures as *Error values
// tagged with a Code (LEXICAL, SYNTAX, COMPILE, RUNTIME, THROW, IMPORT) and,
// where the failure originates in program text, a 1-based line and column:
//
//	err := mdwerror.New("unterminated string").
//		WithCode(mdwerror.CodeLexical).
//		WithPosition(3, 14)
//
// Wrap keeps code, severity and position of the wrapped error so callers
// further up can still classify it with HasCode, GetCode and GetPosition.
package error

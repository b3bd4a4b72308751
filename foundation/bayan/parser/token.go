// File: token.go
// Title: Bayan Tokens
// Description: Token types and the Token value produced by the lexer.
//              Keyword token types are canonical: the English and Arabic
//              spellings of a keyword share one TokenType.
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2025-10-02
//
// Change History:
// - 2025-01-25 v0.1.0: TCOL command tokens
// - 2025-10-02 v0.2.0: Bayan operator, logic and bilingual keyword tokens

package parser

import (
	"fmt"
	"strings"

	"github.com/msto63/bayan/foundation/bayan/vocabulary"
)

// TokenType represents the type of a lexical token
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenIllegal

	// Identifiers and literals
	TokenIdentifier // parent, جمع
	TokenNumber     // 12, 1.5e3, 0xFF, ١٢
	TokenString     // "text", 'text'
	TokenLogicVar   // ?x, ؟س

	// Delimiters
	TokenLeftParen    // (
	TokenRightParen   // )
	TokenLeftBrace    // {
	TokenRightBrace   // }
	TokenLeftBracket  // [
	TokenRightBracket // ]
	TokenComma        // , ،
	TokenSemicolon    // ; ؛
	TokenColon        // :
	TokenDot          // .
	TokenQuestion     // ?
	TokenArrow        // =>
	TokenRuleSep      // :-

	// Arithmetic
	TokenPlus       // +
	TokenMinus      // -
	TokenStar       // *
	TokenSlash      // /
	TokenPercent    // %
	TokenStarStar   // **
	TokenPlusPlus   // ++
	TokenMinusMinus // --

	// Assignment
	TokenAssign        // =
	TokenPlusAssign    // +=
	TokenMinusAssign   // -=
	TokenStarAssign    // *=
	TokenSlashAssign   // /=
	TokenPercentAssign // %=

	// Comparison and logic
	TokenEq          // ==
	TokenNotEq       // !=
	TokenStrictEq    // ===
	TokenStrictNotEq // !==
	TokenLess        // <
	TokenLessEq      // <=
	TokenGreater     // >
	TokenGreaterEq   // >=
	TokenAndAnd      // &&
	TokenOrOr        // ||
	TokenBang        // !

	keywordStart

	// Keywords (canonical; one type per keyword regardless of language)
	TokenLet
	TokenConst
	TokenFunction
	TokenReturn
	TokenIf
	TokenElse
	TokenWhile
	TokenDo
	TokenFor
	TokenOf
	TokenSwitch
	TokenCase
	TokenDefault
	TokenBreak
	TokenContinue
	TokenTry
	TokenCatch
	TokenFinally
	TokenThrow
	TokenClass
	TokenExtends
	TokenNew
	TokenThis
	TokenSuper
	TokenStatic
	TokenImport
	TokenExport
	TokenFrom
	TokenTrue
	TokenFalse
	TokenNull
	TokenUndefined
	TokenTypeof
	TokenFact
	TokenRule
	TokenQuery
	TokenNot
	TokenCut
	TokenFindAll
	TokenBagOf
	TokenSetOf
	TokenAssert
	TokenRetract
	TokenIs

	keywordEnd
)

// keywordTokens maps canonical keyword names to token types
var keywordTokens = map[string]TokenType{
	vocabulary.KwLet:       TokenLet,
	vocabulary.KwConst:     TokenConst,
	vocabulary.KwFunction:  TokenFunction,
	vocabulary.KwReturn:    TokenReturn,
	vocabulary.KwIf:        TokenIf,
	vocabulary.KwElse:      TokenElse,
	vocabulary.KwWhile:     TokenWhile,
	vocabulary.KwDo:        TokenDo,
	vocabulary.KwFor:       TokenFor,
	vocabulary.KwOf:        TokenOf,
	vocabulary.KwSwitch:    TokenSwitch,
	vocabulary.KwCase:      TokenCase,
	vocabulary.KwDefault:   TokenDefault,
	vocabulary.KwBreak:     TokenBreak,
	vocabulary.KwContinue:  TokenContinue,
	vocabulary.KwTry:       TokenTry,
	vocabulary.KwCatch:     TokenCatch,
	vocabulary.KwFinally:   TokenFinally,
	vocabulary.KwThrow:     TokenThrow,
	vocabulary.KwClass:     TokenClass,
	vocabulary.KwExtends:   TokenExtends,
	vocabulary.KwNew:       TokenNew,
	vocabulary.KwThis:      TokenThis,
	vocabulary.KwSuper:     TokenSuper,
	vocabulary.KwStatic:    TokenStatic,
	vocabulary.KwImport:    TokenImport,
	vocabulary.KwExport:    TokenExport,
	vocabulary.KwFrom:      TokenFrom,
	vocabulary.KwTrue:      TokenTrue,
	vocabulary.KwFalse:     TokenFalse,
	vocabulary.KwNull:      TokenNull,
	vocabulary.KwUndefined: TokenUndefined,
	vocabulary.KwTypeof:    TokenTypeof,
	vocabulary.KwFact:      TokenFact,
	vocabulary.KwRule:      TokenRule,
	vocabulary.KwQuery:     TokenQuery,
	vocabulary.KwNot:       TokenNot,
	vocabulary.KwCut:       TokenCut,
	vocabulary.KwFindAll:   TokenFindAll,
	vocabulary.KwBagOf:     TokenBagOf,
	vocabulary.KwSetOf:     TokenSetOf,
	vocabulary.KwAssert:    TokenAssert,
	vocabulary.KwRetract:   TokenRetract,
	vocabulary.KwIs:        TokenIs,
}

// canonicalNames is the inverse of keywordTokens
var canonicalNames = func() map[TokenType]string {
	m := make(map[TokenType]string, len(keywordTokens))
	for name, tt := range keywordTokens {
		m[tt] = name
	}
	return m
}()

var tokenNames = map[TokenType]string{
	TokenEOF:           "EOF",
	TokenIllegal:       "ILLEGAL",
	TokenIdentifier:    "IDENTIFIER",
	TokenNumber:        "NUMBER",
	TokenString:        "STRING",
	TokenLogicVar:      "LOGIC_VAR",
	TokenLeftParen:     "(",
	TokenRightParen:    ")",
	TokenLeftBrace:     "{",
	TokenRightBrace:    "}",
	TokenLeftBracket:   "[",
	TokenRightBracket:  "]",
	TokenComma:         ",",
	TokenSemicolon:     ";",
	TokenColon:         ":",
	TokenDot:           ".",
	TokenQuestion:      "?",
	TokenArrow:         "=>",
	TokenRuleSep:       ":-",
	TokenPlus:          "+",
	TokenMinus:         "-",
	TokenStar:          "*",
	TokenSlash:         "/",
	TokenPercent:       "%",
	TokenStarStar:      "**",
	TokenPlusPlus:      "++",
	TokenMinusMinus:    "--",
	TokenAssign:        "=",
	TokenPlusAssign:    "+=",
	TokenMinusAssign:   "-=",
	TokenStarAssign:    "*=",
	TokenSlashAssign:   "/=",
	TokenPercentAssign: "%=",
	TokenEq:            "==",
	TokenNotEq:         "!=",
	TokenStrictEq:      "===",
	TokenStrictNotEq:   "!==",
	TokenLess:          "<",
	TokenLessEq:        "<=",
	TokenGreater:       ">",
	TokenGreaterEq:     ">=",
	TokenAndAnd:        "&&",
	TokenOrOr:          "||",
	TokenBang:          "!",
}

// String returns a string representation of the token type. Keywords
// render as their canonical English name in upper case.
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	if name, ok := canonicalNames[tt]; ok {
		return "KW_" + strings.ToUpper(name)
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// IsKeyword reports whether the token type is a canonical keyword
func (tt TokenType) IsKeyword() bool {
	return tt > keywordStart && tt < keywordEnd
}

// Token represents a lexical token with position information.
// For strings Value holds the decoded contents; for numbers it holds
// the ASCII-normalized literal; otherwise it is the source text.
type Token struct {
	Type     TokenType
	Value    string
	Position int // Byte offset in input
	Line     int // 1-based
	Column   int // 1-based, counted in runes
}

// String returns a string representation of the token
func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return "EOF"
	case TokenIllegal:
		return fmt.Sprintf("ILLEGAL(%s)", t.Value)
	default:
		return fmt.Sprintf("%s(%s)", t.Type.String(), t.Value)
	}
}

// LookupKeyword returns the keyword token type for word, or
// TokenIdentifier when word is not a keyword in either vocabulary
func LookupKeyword(word string) TokenType {
	m, ok := vocabulary.Default().Lookup(word)
	if !ok {
		return TokenIdentifier
	}
	if tt, ok := keywordTokens[m.Canonical]; ok {
		return tt
	}
	return TokenIdentifier
}

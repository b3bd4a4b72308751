// File: lexer.go
// Title: Bayan Lexical Analyzer (Tokenizer)
// Description: Converts Bayan source text into a stream of tokens. The
//              lexer works on runes so Arabic identifiers, keywords,
//              punctuation and digits are first-class. Keyword spellings
//              from either vocabulary resolve to one canonical token type.
//              Tokenization stops at the first lexical error.
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2025-10-02
//
// Change History:
// - 2025-01-25 v0.1.0: Initial lexer implementation
// - 2025-10-02 v0.2.0: Rune-based scanning, bilingual keywords, logic
//                      variables, comments, numeric and escape forms

package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	mdwerror "github.com/msto63/bayan/foundation/core/error"
)

const eof = -1

// Lexer tokenizes Bayan source text
type Lexer struct {
	input   string
	pos     int  // byte offset of ch
	readPos int  // byte offset after ch
	ch      rune // current rune, eof at end
	line    int
	column  int
	err     *mdwerror.Error
}

// NewLexer creates a new lexer for the given input
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

// Err returns the lexical error that stopped tokenization, if any
func (l *Lexer) Err() error {
	if l.err == nil {
		return nil
	}
	return l.err
}

// NextToken returns the next token. After a lexical error it keeps
// returning TokenIllegal.
func (l *Lexer) NextToken() Token {
	if l.err != nil {
		return Token{Type: TokenIllegal, Position: l.pos, Line: l.line, Column: l.column}
	}

	if !l.skipWhitespaceAndComments() {
		return Token{Type: TokenIllegal, Position: l.pos, Line: l.line, Column: l.column}
	}

	start := Token{Position: l.pos, Line: l.line, Column: l.column}
	tok := func(tt TokenType, width int) Token {
		start.Type = tt
		start.Value = l.input[start.Position : start.Position+width]
		for i := 0; i < utf8.RuneCountInString(start.Value); i++ {
			l.readChar()
		}
		return start
	}

	switch ch := l.ch; {
	case ch == eof:
		start.Type = TokenEOF
		return start

	case ch == '"' || ch == '\'':
		value, ok := l.readString(ch)
		if !ok {
			return l.illegal(start)
		}
		start.Type = TokenString
		start.Value = value
		return start

	case isDigit(ch) || (ch == '.' && isDigit(l.peekChar())):
		value, ok := l.readNumber()
		if !ok {
			return l.illegal(start)
		}
		start.Type = TokenNumber
		start.Value = value
		return start

	case (ch == '?' || ch == '؟') && isLetter(l.peekChar()):
		l.readChar()
		name := l.readIdentifier()
		start.Type = TokenLogicVar
		start.Value = "?" + name
		return start

	case isLetter(ch):
		word := l.readIdentifier()
		start.Type = LookupKeyword(word)
		start.Value = word
		return start

	case ch == '،':
		return tok(TokenComma, len("،"))
	case ch == '؛':
		return tok(TokenSemicolon, len("؛"))
	case ch == '؟':
		return tok(TokenQuestion, len("؟"))
	}

	// ASCII operators, longest match first
	rest := l.input[l.pos:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op.text) {
			return tok(op.tt, len(op.text))
		}
	}

	return l.illegal(start)
}

type operator struct {
	text string
	tt   TokenType
}

// operators is ordered so that longer operators are tried first
var operators = []operator{
	{"===", TokenStrictEq}, {"!==", TokenStrictNotEq},
	{"**", TokenStarStar}, {"++", TokenPlusPlus}, {"--", TokenMinusMinus},
	{"+=", TokenPlusAssign}, {"-=", TokenMinusAssign}, {"*=", TokenStarAssign},
	{"/=", TokenSlashAssign}, {"%=", TokenPercentAssign},
	{"==", TokenEq}, {"!=", TokenNotEq}, {"<=", TokenLessEq}, {">=", TokenGreaterEq},
	{"&&", TokenAndAnd}, {"||", TokenOrOr}, {"=>", TokenArrow}, {":-", TokenRuleSep},
	{"+", TokenPlus}, {"-", TokenMinus}, {"*", TokenStar}, {"/", TokenSlash}, {"%", TokenPercent},
	{"=", TokenAssign}, {"<", TokenLess}, {">", TokenGreater}, {"!", TokenBang},
	{"(", TokenLeftParen}, {")", TokenRightParen}, {"{", TokenLeftBrace}, {"}", TokenRightBrace},
	{"[", TokenLeftBracket}, {"]", TokenRightBracket}, {",", TokenComma}, {";", TokenSemicolon},
	{":", TokenColon}, {".", TokenDot}, {"?", TokenQuestion},
}

// Tokenize returns all tokens up to and including EOF
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == TokenIllegal {
			return tokens, l.Err()
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}

// TokenizeInput is a convenience wrapper around NewLexer(input).Tokenize()
func TokenizeInput(input string) ([]Token, error) {
	return NewLexer(input).Tokenize()
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	l.pos = l.readPos
	if l.readPos >= len(l.input) {
		l.ch = eof
		l.column++
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.readPos += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

func (l *Lexer) fail(line, column int, format string, args ...interface{}) {
	l.err = mdwerror.Newf(format, args...).
		WithCode(mdwerror.CodeLexical).
		WithPosition(line, column)
}

func (l *Lexer) illegal(start Token) Token {
	if l.err == nil {
		l.fail(start.Line, start.Column, "unexpected character %q", l.ch)
	}
	start.Type = TokenIllegal
	return start
}

// skipWhitespaceAndComments returns false on an unterminated block comment
func (l *Lexer) skipWhitespaceAndComments() bool {
	for {
		switch {
		case unicode.IsSpace(l.ch) || l.ch == '\ufeff' || l.ch == '\u200f' || l.ch == '\u200e':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != eof {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			line, column := l.line, l.column
			l.readChar()
			l.readChar()
			for !(l.ch == '*' && l.peekChar() == '/') {
				if l.ch == eof {
					l.fail(line, column, "unterminated block comment")
					return false
				}
				l.readChar()
			}
			l.readChar()
			l.readChar()
		default:
			return true
		}
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || unicode.Is(unicode.Mn, l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readNumber scans decimal, float, scientific and hex literals. Arabic-Indic
// digits and the Arabic decimal separator are normalized to ASCII.
func (l *Lexer) readNumber() (string, bool) {
	line, column := l.line, l.column
	var b strings.Builder

	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		b.WriteString("0x")
		for isHexDigit(l.ch) {
			b.WriteRune(l.ch)
			l.readChar()
		}
		if b.Len() == 2 {
			l.fail(line, column, "malformed hexadecimal literal")
			return "", false
		}
		return b.String(), l.checkNumberEnd(line, column)
	}

	digits := func() {
		for isDigit(l.ch) {
			b.WriteRune(asciiDigit(l.ch))
			l.readChar()
		}
	}

	digits()
	if (l.ch == '.' || l.ch == '٫') && isDigit(l.peekChar()) {
		b.WriteByte('.')
		l.readChar()
		digits()
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || next == '+' || next == '-' {
			b.WriteByte('e')
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				b.WriteRune(l.ch)
				l.readChar()
			}
			if !isDigit(l.ch) {
				l.fail(line, column, "malformed exponent in number literal")
				return "", false
			}
			digits()
		}
	}
	return b.String(), l.checkNumberEnd(line, column)
}

// checkNumberEnd rejects literals glued to identifiers such as 12abc
func (l *Lexer) checkNumberEnd(line, column int) bool {
	if isLetter(l.ch) {
		l.fail(line, column, "invalid character %q in number literal", l.ch)
		return false
	}
	return true
}

func (l *Lexer) readString(quote rune) (string, bool) {
	line, column := l.line, l.column
	l.readChar() // opening quote

	var b strings.Builder
	for {
		switch l.ch {
		case eof, '\n':
			l.fail(line, column, "unterminated string literal")
			return "", false
		case quote:
			l.readChar()
			return b.String(), true
		case '\\':
			escLine, escColumn := l.line, l.column
			l.readChar()
			switch l.ch {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '0':
				b.WriteByte(0)
			case '\\', '"', '\'':
				b.WriteRune(l.ch)
			case 'u':
				var hex strings.Builder
				for i := 0; i < 4; i++ {
					l.readChar()
					if !isHexDigit(l.ch) {
						l.fail(escLine, escColumn, "invalid unicode escape (expect 4 hex digits)")
						return "", false
					}
					hex.WriteRune(l.ch)
				}
				v, _ := strconv.ParseUint(hex.String(), 16, 32)
				b.WriteRune(rune(v))
			case eof:
				l.fail(line, column, "unterminated string literal")
				return "", false
			default:
				l.fail(escLine, escColumn, "unknown escape sequence \\%c", l.ch)
				return "", false
			}
			l.readChar()
		default:
			b.WriteRune(l.ch)
			l.readChar()
		}
	}
}

func isLetter(ch rune) bool {
	return ch == '_' || ch == '$' || (ch != eof && unicode.IsLetter(ch))
}

func isDigit(ch rune) bool {
	return (ch >= '0' && ch <= '9') || (ch >= '٠' && ch <= '٩') || (ch >= '۰' && ch <= '۹')
}

func isHexDigit(ch rune) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

// asciiDigit maps Arabic-Indic and extended Arabic-Indic digits to ASCII
func asciiDigit(ch rune) rune {
	switch {
	case ch >= '٠' && ch <= '٩':
		return '0' + (ch - '٠')
	case ch >= '۰' && ch <= '۹':
		return '0' + (ch - '۰')
	default:
		return ch
	}
}

// ParseNumber converts a normalized number token value to float64
func ParseNumber(value string) (float64, error) {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		n, err := strconv.ParseUint(value[2:], 16, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid hexadecimal literal %q: %w", value, err)
		}
		return float64(n), nil
	}
	return strconv.ParseFloat(value, 64)
}

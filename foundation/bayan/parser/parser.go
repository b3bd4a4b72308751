// File: parser.go
// Title: Bayan Recursive Descent Parser
// Description: Parses a Bayan token stream into an AST. One token of
//              lookahead, precedence climbing for expressions, and
//              statement-level error recovery: a syntax error is recorded,
//              tokens are skipped to the next statement boundary, and
//              parsing continues so that one pass reports every error.
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2025-10-02
//
// Change History:
// - 2025-01-25 v0.1.0: TCOL command parser
// - 2025-10-02 v0.2.0: Bayan statements, expressions and logic forms

package parser

import (
	mdwerror "github.com/msto63/bayan/foundation/core/error"
	mdwlog "github.com/msto63/bayan/foundation/core/log"
	"github.com/msto63/bayan/foundation/bayan/ast"
)

// Parser implements recursive descent parsing for Bayan
type Parser struct {
	tokens   []Token
	pos      int   // index of current in tokens
	current  Token // Current token
	previous Token // Previous token
	errors   ErrorList
	logger   *mdwlog.Logger
	options  Options
}

// Options configures parser behavior
type Options struct {
	Logger         *mdwlog.Logger
	MaxInputLength int // bytes; 0 selects the default
	MaxErrors      int // stop collecting after this many; 0 selects the default
}

// DefaultMaxInputLength bounds accepted source size
const DefaultMaxInputLength = 1 << 20

// New creates a new Bayan parser with the given options
func New(opts Options) (*Parser, error) {
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}
	if opts.MaxInputLength == 0 {
		opts.MaxInputLength = DefaultMaxInputLength
	}
	if opts.MaxErrors == 0 {
		opts.MaxErrors = 50
	}

	return &Parser{
		logger:  opts.Logger.WithField("component", "parser"),
		options: opts,
	}, nil
}

// Parse tokenizes and parses source text. The error, if any, is an ErrorList.
func (p *Parser) Parse(input string) (*ast.Program, error) {
	if len(input) > p.options.MaxInputLength {
		return nil, ErrorList{mdwerror.Newf("input exceeds maximum length: %d > %d",
			len(input), p.options.MaxInputLength).WithCode(mdwerror.CodeInvalidInput)}
	}

	tokens, err := TokenizeInput(input)
	if err != nil {
		lexErr, _ := err.(*mdwerror.Error)
		return nil, ErrorList{lexErr}
	}
	return p.ParseTokens(tokens)
}

// ParseTokens parses an already tokenized program. tokens must end with EOF.
func (p *Parser) ParseTokens(tokens []Token) (*ast.Program, error) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != TokenEOF {
		tokens = append(tokens, Token{Type: TokenEOF})
	}
	p.tokens = tokens
	p.pos = -1
	p.errors = nil
	p.advance()

	p.logger.Debug("starting parse", mdwlog.Fields{"tokens": len(tokens)})

	program := &ast.Program{}
	for p.current.Type != TokenEOF {
		if p.current.Type == TokenRightBrace {
			p.record(syntaxError(p.current, "unexpected '}'"))
			p.advance()
			continue
		}
		if stmt := p.parseStatementRecover(); stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		if len(p.errors) >= p.options.MaxErrors {
			break
		}
	}

	if len(p.errors) > 0 {
		p.logger.Debug("parse failed", mdwlog.Fields{"errors": len(p.errors)})
		return program, p.errors
	}

	p.logger.Debug("parse completed", mdwlog.Fields{"statements": len(program.Statements)})
	return program, nil
}

// ParseProgram parses source text with default options
func ParseProgram(input string) (*ast.Program, error) {
	p, _ := New(Options{Logger: mdwlog.Discard()})
	return p.Parse(input)
}

// parseStatementRecover parses one statement; on error it records the
// error, synchronizes and returns nil
func (p *Parser) parseStatementRecover() ast.Stmt {
	start := p.pos
	stmt, err := p.parseStatement()
	if err == nil {
		return stmt
	}
	p.record(err)
	if p.pos == start {
		p.advance()
	}
	p.synchronize()
	return nil
}

func (p *Parser) record(err error) {
	if e, ok := err.(*mdwerror.Error); ok {
		p.errors = append(p.errors, e)
		return
	}
	p.errors = append(p.errors, syntaxError(p.current, "%s", err.Error()))
}

// synchronize skips to the next statement boundary: just past a ';',
// or before a '}' or a token that can only start a statement
func (p *Parser) synchronize() {
	for p.current.Type != TokenEOF {
		if p.previous.Type == TokenSemicolon {
			return
		}
		switch p.current.Type {
		case TokenRightBrace, TokenLet, TokenConst, TokenFunction, TokenClass, TokenIf,
			TokenWhile, TokenDo, TokenFor, TokenSwitch, TokenReturn, TokenTry, TokenThrow,
			TokenImport, TokenExport, TokenFact, TokenRule:
			return
		}
		p.advance()
	}
}

// Utility methods

// advance moves to the next token
func (p *Parser) advance() {
	p.previous = p.current
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	p.current = p.tokens[p.pos]
}

// peek returns the token n positions after current
func (p *Parser) peek(n int) Token {
	if i := p.pos + n; i < len(p.tokens) {
		return p.tokens[i]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) check(tt TokenType) bool {
	return p.current.Type == tt
}

// match consumes the current token if it has one of the given types
func (p *Parser) match(types ...TokenType) bool {
	for _, tt := range types {
		if p.current.Type == tt {
			p.advance()
			return true
		}
	}
	return false
}

// expect consumes a token of the given type or fails
func (p *Parser) expect(tt TokenType, context string) (Token, error) {
	if p.current.Type != tt {
		return p.current, p.parseError("expected '%s' %s, found %s", tt, context, describe(p.current))
	}
	tok := p.current
	p.advance()
	return tok, nil
}

// expectName accepts an identifier, or a keyword where a property or
// method name is expected
func (p *Parser) expectName(context string, allowKeywords bool) (Token, error) {
	if p.current.Type == TokenIdentifier || (allowKeywords && p.current.Type.IsKeyword()) {
		tok := p.current
		p.advance()
		return tok, nil
	}
	return p.current, p.parseError("expected name %s, found %s", context, describe(p.current))
}

// consumeTerminator accepts ';', or an implicit terminator before '}',
// at end of input, or at a line break
func (p *Parser) consumeTerminator() error {
	if p.match(TokenSemicolon) {
		return nil
	}
	if p.check(TokenRightBrace) || p.check(TokenEOF) || p.current.Line > p.previous.Line {
		return nil
	}
	return p.parseError("expected ';' after statement, found %s", describe(p.current))
}

// currentPosition returns the current AST position
func (p *Parser) currentPosition() ast.Position {
	return tokenPosition(p.current)
}

func tokenPosition(t Token) ast.Position {
	return ast.Position{Line: t.Line, Column: t.Column, Offset: t.Position}
}

// parseError creates a syntax error at the current token
func (p *Parser) parseError(format string, args ...interface{}) error {
	return syntaxError(p.current, format, args...)
}

// errorAt creates a syntax error at the given position
func errorAt(pos ast.Position, format string, args ...interface{}) error {
	return mdwerror.Newf(format, args...).
		WithCode(mdwerror.CodeSyntax).
		WithPosition(pos.Line, pos.Column)
}

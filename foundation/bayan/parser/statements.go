package parser

import (
	"github.com/msto63/bayan/foundation/bayan/ast"
)

// parseStatement dispatches on the leading token
func (p *Parser) parseStatement() (ast.Stmt, error) {
	switch p.current.Type {
	case TokenLet, TokenConst:
		decl, err := p.parseVarDecl()
		if err != nil {
			return nil, err
		}
		return decl, p.consumeTerminator()
	case TokenFunction:
		if p.peek(1).Type == TokenIdentifier {
			return p.parseFunctionDecl()
		}
	case TokenClass:
		return p.parseClassDecl()
	case TokenLeftBrace:
		return p.parseBlock()
	case TokenIf:
		return p.parseIf()
	case TokenWhile:
		return p.parseWhile()
	case TokenDo:
		return p.parseDoWhile()
	case TokenFor:
		return p.parseFor()
	case TokenSwitch:
		return p.parseSwitch()
	case TokenReturn:
		return p.parseReturn()
	case TokenBreak:
		pos := p.currentPosition()
		p.advance()
		return &ast.BreakStmt{Pos: pos}, p.consumeTerminator()
	case TokenContinue:
		pos := p.currentPosition()
		p.advance()
		return &ast.ContinueStmt{Pos: pos}, p.consumeTerminator()
	case TokenThrow:
		return p.parseThrow()
	case TokenTry:
		return p.parseTry()
	case TokenImport:
		return p.parseImport()
	case TokenExport:
		return p.parseExport()
	case TokenFact:
		return p.parseFact()
	case TokenRule:
		return p.parseRule()
	case TokenSemicolon:
		pos := p.currentPosition()
		p.advance()
		return &ast.EmptyStmt{Pos: pos}, nil
	}
	return p.parseExprStmt()
}

func (p *Parser) parseExprStmt() (ast.Stmt, error) {
	pos := p.currentPosition()
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.ExprStmt{X: expr, Pos: pos}, p.consumeTerminator()
}

// parseVarDecl parses let/const declarations without the terminator
func (p *Parser) parseVarDecl() (*ast.VarDecl, error) {
	decl := &ast.VarDecl{Const: p.check(TokenConst), Pos: p.currentPosition()}
	p.advance()

	for {
		nameTok, err := p.expect(TokenIdentifier, "in variable declaration")
		if err != nil {
			return nil, err
		}
		var init ast.Expr
		if p.match(TokenAssign) {
			if init, err = p.parseExpression(); err != nil {
				return nil, err
			}
		} else if decl.Const {
			return nil, p.parseError("missing initializer in const declaration of %s", nameTok.Value)
		}
		decl.Names = append(decl.Names, &ast.Identifier{Name: nameTok.Value, Pos: tokenPosition(nameTok)})
		decl.Inits = append(decl.Inits, init)
		if !p.match(TokenComma) {
			return decl, nil
		}
	}
}

func (p *Parser) parseFunctionDecl() (ast.Stmt, error) {
	pos := p.currentPosition()
	fn, err := p.parseFunctionLit()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDecl{Func: fn, Pos: pos}, nil
}

// parseFunctionLit parses `function name? (params) { body }`
func (p *Parser) parseFunctionLit() (*ast.FunctionLit, error) {
	fn := &ast.FunctionLit{Pos: p.currentPosition()}
	p.advance() // function

	if p.check(TokenIdentifier) {
		fn.Name = p.current.Value
		p.advance()
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	fn.Params = params
	if fn.Body, err = p.parseBlock(); err != nil {
		return nil, err
	}
	return fn, nil
}

// parseParams parses a parenthesized parameter list
func (p *Parser) parseParams() ([]*ast.Identifier, error) {
	if _, err := p.expect(TokenLeftParen, "before parameters"); err != nil {
		return nil, err
	}
	var params []*ast.Identifier
	seen := make(map[string]bool)
	for !p.check(TokenRightParen) {
		tok, err := p.expect(TokenIdentifier, "as parameter name")
		if err != nil {
			return nil, err
		}
		if seen[tok.Value] {
			return nil, syntaxError(tok, "duplicate parameter name %s", tok.Value)
		}
		seen[tok.Value] = true
		params = append(params, &ast.Identifier{Name: tok.Value, Pos: tokenPosition(tok)})
		if !p.match(TokenComma) {
			break
		}
	}
	if _, err := p.expect(TokenRightParen, "after parameters"); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseClassDecl() (ast.Stmt, error) {
	decl := &ast.ClassDecl{Pos: p.currentPosition()}
	p.advance() // class

	nameTok, err := p.expect(TokenIdentifier, "as class name")
	if err != nil {
		return nil, err
	}
	decl.Name = &ast.Identifier{Name: nameTok.Value, Pos: tokenPosition(nameTok)}

	if p.match(TokenExtends) {
		if decl.SuperClass, err = p.parseCallMember(false); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(TokenLeftBrace, "to open class body"); err != nil {
		return nil, err
	}
	for !p.check(TokenRightBrace) && !p.check(TokenEOF) {
		if p.match(TokenSemicolon) {
			continue
		}
		member, err := p.parseClassMember()
		if err != nil {
			return nil, err
		}
		decl.Members = append(decl.Members, member)
	}
	if _, err := p.expect(TokenRightBrace, "to close class body"); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *Parser) parseClassMember() (*ast.ClassMember, error) {
	member := &ast.ClassMember{Pos: p.currentPosition()}
	if p.check(TokenStatic) && p.peek(1).Type != TokenLeftParen {
		member.Static = true
		p.advance()
	}

	nameTok, err := p.expectName("for class member", true)
	if err != nil {
		return nil, err
	}
	member.Name = nameTok.Value

	if p.check(TokenLeftParen) {
		fn := &ast.FunctionLit{Name: member.Name, Pos: tokenPosition(nameTok)}
		if fn.Params, err = p.parseParams(); err != nil {
			return nil, err
		}
		if fn.Body, err = p.parseBlock(); err != nil {
			return nil, err
		}
		member.Method = fn
		return member, nil
	}

	if p.match(TokenAssign) {
		if member.Value, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	return member, p.consumeTerminator()
}

// parseBlock parses `{ statements }`, recovering from errors inside
func (p *Parser) parseBlock() (*ast.BlockStmt, error) {
	block := &ast.BlockStmt{Pos: p.currentPosition()}
	if _, err := p.expect(TokenLeftBrace, "to open block"); err != nil {
		return nil, err
	}
	for !p.check(TokenRightBrace) && !p.check(TokenEOF) {
		if stmt := p.parseStatementRecover(); stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
	}
	if _, err := p.expect(TokenRightBrace, "to close block"); err != nil {
		return nil, err
	}
	return block, nil
}

// parseCondition parses `( expr )`
func (p *Parser) parseCondition(context string) (ast.Expr, error) {
	if _, err := p.expect(TokenLeftParen, "after "+context); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRightParen, "after "+context+" condition"); err != nil {
		return nil, err
	}
	return cond, nil
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	stmt := &ast.IfStmt{Pos: p.currentPosition()}
	p.advance()

	var err error
	if stmt.Cond, err = p.parseCondition("if"); err != nil {
		return nil, err
	}
	if stmt.Then, err = p.parseStatement(); err != nil {
		return nil, err
	}
	if p.match(TokenElse) {
		if stmt.Else, err = p.parseStatement(); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *Parser) parseWhile() (ast.Stmt, error) {
	stmt := &ast.WhileStmt{Pos: p.currentPosition()}
	p.advance()

	var err error
	if stmt.Cond, err = p.parseCondition("while"); err != nil {
		return nil, err
	}
	if stmt.Body, err = p.parseStatement(); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseDoWhile() (ast.Stmt, error) {
	stmt := &ast.DoWhileStmt{Pos: p.currentPosition()}
	p.advance()

	var err error
	if stmt.Body, err = p.parseStatement(); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenWhile, "after do body"); err != nil {
		return nil, err
	}
	if stmt.Cond, err = p.parseCondition("while"); err != nil {
		return nil, err
	}
	return stmt, p.consumeTerminator()
}

func (p *Parser) parseFor() (ast.Stmt, error) {
	pos := p.currentPosition()
	p.advance()

	if _, err := p.expect(TokenLeftParen, "after for"); err != nil {
		return nil, err
	}

	// for (let x of items)
	if (p.check(TokenLet) || p.check(TokenConst)) && p.peek(1).Type == TokenIdentifier && p.peek(2).Type == TokenOf {
		return p.parseForOf(pos, p.check(TokenConst))
	}
	if p.check(TokenIdentifier) && p.peek(1).Type == TokenOf {
		return p.parseForOf(pos, false)
	}

	stmt := &ast.ForStmt{Pos: pos}
	var err error
	switch {
	case p.check(TokenSemicolon):
	case p.check(TokenLet) || p.check(TokenConst):
		if stmt.Init, err = p.parseVarDecl(); err != nil {
			return nil, err
		}
	default:
		initPos := p.currentPosition()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Init = &ast.ExprStmt{X: expr, Pos: initPos}
	}
	if _, err := p.expect(TokenSemicolon, "after for initializer"); err != nil {
		return nil, err
	}

	if !p.check(TokenSemicolon) {
		if stmt.Cond, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokenSemicolon, "after for condition"); err != nil {
		return nil, err
	}

	if !p.check(TokenRightParen) {
		if stmt.Update, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokenRightParen, "after for clauses"); err != nil {
		return nil, err
	}

	if stmt.Body, err = p.parseStatement(); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseForOf(pos ast.Position, isConst bool) (ast.Stmt, error) {
	p.match(TokenLet, TokenConst)
	nameTok := p.current
	p.advance() // name
	p.advance() // of

	stmt := &ast.ForOfStmt{
		Const: isConst,
		Name:  &ast.Identifier{Name: nameTok.Value, Pos: tokenPosition(nameTok)},
		Pos:   pos,
	}
	var err error
	if stmt.Iter, err = p.parseExpression(); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRightParen, "after for-of iterable"); err != nil {
		return nil, err
	}
	if stmt.Body, err = p.parseStatement(); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseSwitch() (ast.Stmt, error) {
	stmt := &ast.SwitchStmt{Pos: p.currentPosition()}
	p.advance()

	var err error
	if stmt.Disc, err = p.parseCondition("switch"); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLeftBrace, "to open switch body"); err != nil {
		return nil, err
	}

	sawDefault := false
	for !p.check(TokenRightBrace) && !p.check(TokenEOF) {
		c := &ast.SwitchCase{Pos: p.currentPosition()}
		switch {
		case p.match(TokenCase):
			if c.Test, err = p.parseExpression(); err != nil {
				return nil, err
			}
		case p.check(TokenDefault):
			if sawDefault {
				return nil, p.parseError("multiple default clauses in switch")
			}
			sawDefault = true
			p.advance()
		default:
			return nil, p.parseError("expected 'case' or 'default' in switch, found %s", describe(p.current))
		}
		if _, err := p.expect(TokenColon, "after case"); err != nil {
			return nil, err
		}
		for !p.check(TokenCase) && !p.check(TokenDefault) && !p.check(TokenRightBrace) && !p.check(TokenEOF) {
			if s := p.parseStatementRecover(); s != nil {
				c.Body = append(c.Body, s)
			}
		}
		stmt.Cases = append(stmt.Cases, c)
	}
	if _, err := p.expect(TokenRightBrace, "to close switch body"); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseReturn() (ast.Stmt, error) {
	stmt := &ast.ReturnStmt{Pos: p.currentPosition()}
	returnLine := p.current.Line
	p.advance()

	if !p.check(TokenSemicolon) && !p.check(TokenRightBrace) && !p.check(TokenEOF) && p.current.Line == returnLine {
		var err error
		if stmt.Value, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	return stmt, p.consumeTerminator()
}

func (p *Parser) parseThrow() (ast.Stmt, error) {
	stmt := &ast.ThrowStmt{Pos: p.currentPosition()}
	p.advance()

	var err error
	if stmt.Value, err = p.parseExpression(); err != nil {
		return nil, err
	}
	return stmt, p.consumeTerminator()
}

func (p *Parser) parseTry() (ast.Stmt, error) {
	stmt := &ast.TryStmt{Pos: p.currentPosition()}
	p.advance()

	var err error
	if stmt.Block, err = p.parseBlock(); err != nil {
		return nil, err
	}
	if p.match(TokenCatch) {
		if p.match(TokenLeftParen) {
			tok, err := p.expect(TokenIdentifier, "as catch parameter")
			if err != nil {
				return nil, err
			}
			stmt.CatchParam = &ast.Identifier{Name: tok.Value, Pos: tokenPosition(tok)}
			if _, err := p.expect(TokenRightParen, "after catch parameter"); err != nil {
				return nil, err
			}
		}
		if stmt.Catch, err = p.parseBlock(); err != nil {
			return nil, err
		}
	}
	if p.match(TokenFinally) {
		if stmt.Finally, err = p.parseBlock(); err != nil {
			return nil, err
		}
	}
	if stmt.Catch == nil && stmt.Finally == nil {
		return nil, errorAt(stmt.Pos, "try without catch or finally")
	}
	return stmt, nil
}

func (p *Parser) parseImport() (ast.Stmt, error) {
	stmt := &ast.ImportStmt{Pos: p.currentPosition()}
	p.advance()

	if p.match(TokenLeftBrace) {
		for !p.check(TokenRightBrace) {
			tok, err := p.expect(TokenIdentifier, "in import list")
			if err != nil {
				return nil, err
			}
			stmt.Names = append(stmt.Names, &ast.Identifier{Name: tok.Value, Pos: tokenPosition(tok)})
			if !p.match(TokenComma) {
				break
			}
		}
		if _, err := p.expect(TokenRightBrace, "to close import list"); err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenFrom, "after import list"); err != nil {
			return nil, err
		}
	}

	pathTok, err := p.expect(TokenString, "as module path")
	if err != nil {
		return nil, err
	}
	stmt.Path = pathTok.Value
	return stmt, p.consumeTerminator()
}

func (p *Parser) parseExport() (ast.Stmt, error) {
	stmt := &ast.ExportStmt{Pos: p.currentPosition()}
	p.advance()

	var err error
	switch p.current.Type {
	case TokenLet, TokenConst:
		decl, err := p.parseVarDecl()
		if err != nil {
			return nil, err
		}
		stmt.Decl = decl
		return stmt, p.consumeTerminator()
	case TokenFunction:
		if p.peek(1).Type != TokenIdentifier {
			return nil, p.parseError("exported function must have a name")
		}
		stmt.Decl, err = p.parseFunctionDecl()
	case TokenClass:
		stmt.Decl, err = p.parseClassDecl()
	default:
		return nil, p.parseError("expected declaration after export, found %s", describe(p.current))
	}
	if err != nil {
		return nil, err
	}
	return stmt, nil
}

package parser

import (
	"strconv"

	"github.com/msto63/bayan/foundation/bayan/ast"
)

// parseExpression parses an expression (handles precedence)
func (p *Parser) parseExpression() (ast.Expr, error) {
	return p.parseAssignment()
}

var assignOps = map[TokenType]string{
	TokenAssign:        "=",
	TokenPlusAssign:    "+=",
	TokenMinusAssign:   "-=",
	TokenStarAssign:    "*=",
	TokenSlashAssign:   "/=",
	TokenPercentAssign: "%=",
}

// parseAssignment parses assignment, arrow functions and `term is expr`
func (p *Parser) parseAssignment() (ast.Expr, error) {
	if p.check(TokenIdentifier) && p.peek(1).Type == TokenArrow {
		return p.parseArrowFunction()
	}
	if p.check(TokenLeftParen) && p.isArrowAhead() {
		return p.parseArrowFunction()
	}

	left, err := p.parseConditional()
	if err != nil {
		return nil, err
	}

	if op, ok := assignOps[p.current.Type]; ok {
		pos := p.currentPosition()
		if !isAssignable(left) {
			return nil, p.parseError("invalid assignment target")
		}
		p.advance()
		value, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		return &ast.AssignExpr{Op: op, Target: left, Value: value, Pos: pos}, nil
	}

	if p.check(TokenIs) {
		pos := p.currentPosition()
		p.advance()
		right, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		return &ast.IsExpr{Left: left, Right: right, Pos: pos}, nil
	}

	return left, nil
}

func isAssignable(e ast.Expr) bool {
	switch e.(type) {
	case *ast.Identifier, *ast.MemberExpr, *ast.IndexExpr:
		return true
	}
	return false
}

// isArrowAhead reports whether the '(' at the current token opens an
// arrow function parameter list
func (p *Parser) isArrowAhead() bool {
	depth := 0
	for i := p.pos; i < len(p.tokens); i++ {
		switch p.tokens[i].Type {
		case TokenLeftParen:
			depth++
		case TokenRightParen:
			depth--
			if depth == 0 {
				return i+1 < len(p.tokens) && p.tokens[i+1].Type == TokenArrow
			}
		case TokenEOF:
			return false
		}
	}
	return false
}

func (p *Parser) parseArrowFunction() (ast.Expr, error) {
	fn := &ast.FunctionLit{Arrow: true, Pos: p.currentPosition()}

	if p.check(TokenIdentifier) {
		fn.Params = []*ast.Identifier{{Name: p.current.Value, Pos: p.currentPosition()}}
		p.advance()
	} else {
		params, err := p.parseParams()
		if err != nil {
			return nil, err
		}
		fn.Params = params
	}
	if _, err := p.expect(TokenArrow, "in arrow function"); err != nil {
		return nil, err
	}

	var err error
	if p.check(TokenLeftBrace) {
		fn.Body, err = p.parseBlock()
	} else {
		fn.Expr, err = p.parseAssignment()
	}
	if err != nil {
		return nil, err
	}
	return fn, nil
}

func (p *Parser) parseConditional() (ast.Expr, error) {
	cond, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if !p.check(TokenQuestion) {
		return cond, nil
	}

	pos := p.currentPosition()
	p.advance()
	then, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenColon, "in conditional expression"); err != nil {
		return nil, err
	}
	otherwise, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	return &ast.ConditionalExpr{Cond: cond, Then: then, Else: otherwise, Pos: pos}, nil
}

// binaryLevels lists binary operators from lowest to highest precedence
var binaryLevels = []map[TokenType]string{
	{TokenOrOr: "||"},
	{TokenAndAnd: "&&"},
	{TokenEq: "==", TokenNotEq: "!=", TokenStrictEq: "===", TokenStrictNotEq: "!=="},
	{TokenLess: "<", TokenLessEq: "<=", TokenGreater: ">", TokenGreaterEq: ">="},
	{TokenPlus: "+", TokenMinus: "-"},
	{TokenStar: "*", TokenSlash: "/", TokenPercent: "%"},
}

// additiveLevel is the index of + and - in binaryLevels
const additiveLevel = 4

// parseBinary parses left-associative binary operators at the given level
func (p *Parser) parseBinary(level int) (ast.Expr, error) {
	if level == len(binaryLevels) {
		return p.parseExponent()
	}

	left, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}

	for {
		op, ok := binaryLevels[level][p.current.Type]
		if !ok {
			return left, nil
		}
		pos := p.currentPosition()
		p.advance()

		right, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}
		if op == "&&" || op == "||" {
			left = &ast.LogicalExpr{Op: op, Left: left, Right: right, Pos: pos}
		} else {
			left = &ast.BinaryExpr{Op: op, Left: left, Right: right, Pos: pos}
		}
	}
}

// parseExponent parses ** which is right-associative
func (p *Parser) parseExponent() (ast.Expr, error) {
	base, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if !p.check(TokenStarStar) {
		return base, nil
	}
	pos := p.currentPosition()
	p.advance()
	exp, err := p.parseExponent()
	if err != nil {
		return nil, err
	}
	return &ast.BinaryExpr{Op: "**", Left: base, Right: exp, Pos: pos}, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	pos := p.currentPosition()

	switch p.current.Type {
	case TokenBang, TokenMinus, TokenPlus, TokenTypeof:
		op := p.current.Value
		if p.current.Type == TokenTypeof {
			op = "typeof"
		}
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: op, Operand: operand, Pos: pos}, nil

	case TokenPlusPlus, TokenMinusMinus:
		op := p.current.Value
		p.advance()
		target, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if !isAssignable(target) {
			return nil, errorAt(pos, "invalid operand for %s", op)
		}
		return &ast.UpdateExpr{Op: op, Prefix: true, Target: target, Pos: pos}, nil

	case TokenNot:
		p.advance()
		goal, err := p.parseGoal()
		if err != nil {
			return nil, err
		}
		return &ast.NotExpr{Goal: goal, Pos: pos}, nil

	case TokenQuery:
		p.advance()
		goals, err := p.parseQueryGoals()
		if err != nil {
			return nil, err
		}
		return &ast.QueryExpr{Goals: goals, Pos: pos}, nil

	case TokenAssert, TokenRetract:
		return p.parseDatabaseUpdate()
	}

	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	expr, err := p.parseCallMember(true)
	if err != nil {
		return nil, err
	}
	if (p.check(TokenPlusPlus) || p.check(TokenMinusMinus)) && p.current.Line == p.previous.Line {
		if !isAssignable(expr) {
			return nil, p.parseError("invalid operand for %s", p.current.Value)
		}
		op := p.current.Value
		pos := p.currentPosition()
		p.advance()
		return &ast.UpdateExpr{Op: op, Target: expr, Pos: pos}, nil
	}
	return expr, nil
}

// parseCallMember parses member access, indexing and, when allowCalls is
// set, calls following a primary expression
func (p *Parser) parseCallMember(allowCalls bool) (ast.Expr, error) {
	var (
		expr ast.Expr
		err  error
	)
	if p.check(TokenNew) {
		expr, err = p.parseNew()
	} else {
		expr, err = p.parsePrimary()
	}
	if err != nil {
		return nil, err
	}

	for {
		pos := p.currentPosition()
		switch {
		case p.match(TokenDot):
			nameTok, err := p.expectName("after '.'", true)
			if err != nil {
				return nil, err
			}
			expr = &ast.MemberExpr{Object: expr, Name: nameTok.Value, Pos: pos}

		case p.match(TokenLeftBracket):
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokenRightBracket, "after index"); err != nil {
				return nil, err
			}
			expr = &ast.IndexExpr{Object: expr, Index: index, Pos: pos}

		case allowCalls && p.check(TokenLeftParen):
			args, err := p.parseArguments()
			if err != nil {
				return nil, err
			}
			expr = &ast.CallExpr{Callee: expr, Args: args, Pos: pos}

		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseNew() (ast.Expr, error) {
	pos := p.currentPosition()
	p.advance() // new

	callee, err := p.parseCallMember(false)
	if err != nil {
		return nil, err
	}
	var args []ast.Expr
	if p.check(TokenLeftParen) {
		if args, err = p.parseArguments(); err != nil {
			return nil, err
		}
	}
	return &ast.NewExpr{Callee: callee, Args: args, Pos: pos}, nil
}

// parseArguments parses `( expr, ... )`
func (p *Parser) parseArguments() ([]ast.Expr, error) {
	p.advance() // (
	var args []ast.Expr
	for !p.check(TokenRightParen) {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.match(TokenComma) {
			break
		}
	}
	if _, err := p.expect(TokenRightParen, "after arguments"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.current
	pos := p.currentPosition()

	switch tok.Type {
	case TokenNumber:
		p.advance()
		value, err := ParseNumber(tok.Value)
		if err != nil {
			return nil, syntaxError(tok, "%s", err.Error())
		}
		return &ast.NumberLit{Value: value, Raw: tok.Value, Pos: pos}, nil
	case TokenString:
		p.advance()
		return &ast.StringLit{Value: tok.Value, Pos: pos}, nil
	case TokenTrue, TokenFalse:
		p.advance()
		return &ast.BoolLit{Value: tok.Type == TokenTrue, Pos: pos}, nil
	case TokenNull:
		p.advance()
		return &ast.NullLit{Pos: pos}, nil
	case TokenUndefined:
		p.advance()
		return &ast.UndefinedLit{Pos: pos}, nil
	case TokenIdentifier:
		p.advance()
		return &ast.Identifier{Name: tok.Value, Pos: pos}, nil
	case TokenLogicVar:
		p.advance()
		return &ast.LogicVar{Name: tok.Value, Pos: pos}, nil
	case TokenThis:
		p.advance()
		return &ast.ThisExpr{Pos: pos}, nil
	case TokenSuper:
		p.advance()
		if p.match(TokenDot) {
			nameTok, err := p.expectName("after 'super.'", true)
			if err != nil {
				return nil, err
			}
			return &ast.SuperExpr{Name: nameTok.Value, Pos: pos}, nil
		}
		if !p.check(TokenLeftParen) {
			return nil, p.parseError("expected '(' or '.' after super")
		}
		return &ast.SuperExpr{Pos: pos}, nil
	case TokenLeftParen:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRightParen, "to close parenthesized expression"); err != nil {
			return nil, err
		}
		return expr, nil
	case TokenLeftBracket:
		return p.parseArrayLit(p.parseExpression)
	case TokenLeftBrace:
		return p.parseObjectLit()
	case TokenFunction:
		fn, err := p.parseFunctionLit()
		if err != nil {
			return nil, err
		}
		return fn, nil
	case TokenFindAll, TokenBagOf, TokenSetOf:
		return p.parseAggregate()
	case TokenCut:
		p.advance()
		return &ast.CutExpr{Pos: pos}, nil
	}

	return nil, p.parseError("unexpected %s", describe(tok))
}

// parseArrayLit parses `[ elem, ... ]` with the given element parser
func (p *Parser) parseArrayLit(element func() (ast.Expr, error)) (ast.Expr, error) {
	arr := &ast.ArrayLit{Pos: p.currentPosition()}
	p.advance() // [
	for !p.check(TokenRightBracket) {
		e, err := element()
		if err != nil {
			return nil, err
		}
		arr.Elements = append(arr.Elements, e)
		if !p.match(TokenComma) {
			break
		}
	}
	if _, err := p.expect(TokenRightBracket, "to close array"); err != nil {
		return nil, err
	}
	return arr, nil
}

func (p *Parser) parseObjectLit() (ast.Expr, error) {
	obj := &ast.ObjectLit{Pos: p.currentPosition()}
	p.advance() // {

	for !p.check(TokenRightBrace) {
		prop := &ast.Property{Pos: p.currentPosition()}
		keyTok := p.current
		switch {
		case keyTok.Type == TokenIdentifier || keyTok.Type == TokenString || keyTok.Type.IsKeyword():
			prop.Key = keyTok.Value
		case keyTok.Type == TokenNumber:
			n, err := ParseNumber(keyTok.Value)
			if err != nil {
				return nil, syntaxError(keyTok, "%s", err.Error())
			}
			prop.Key = formatKey(n)
		default:
			return nil, p.parseError("expected property name, found %s", describe(keyTok))
		}
		p.advance()

		switch {
		case p.match(TokenColon):
			value, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			prop.Value = value
		case p.check(TokenLeftParen):
			fn := &ast.FunctionLit{Name: prop.Key, Pos: prop.Pos}
			var err error
			if fn.Params, err = p.parseParams(); err != nil {
				return nil, err
			}
			if fn.Body, err = p.parseBlock(); err != nil {
				return nil, err
			}
			prop.Value = fn
		case keyTok.Type == TokenIdentifier:
			prop.Value = &ast.Identifier{Name: keyTok.Value, Pos: prop.Pos}
		default:
			return nil, p.parseError("expected ':' after property name")
		}

		obj.Properties = append(obj.Properties, prop)
		if !p.match(TokenComma) {
			break
		}
	}
	if _, err := p.expect(TokenRightBrace, "to close object"); err != nil {
		return nil, err
	}
	return obj, nil
}

// formatKey renders a numeric property key the way numbers print
func formatKey(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

package parser

import (
	"github.com/msto63/bayan/foundation/bayan/ast"
)

// compareOps are the comparison operators allowed in a comparison goal
var compareOps = map[TokenType]string{
	TokenEq:          "==",
	TokenNotEq:       "!=",
	TokenStrictEq:    "===",
	TokenStrictNotEq: "!==",
	TokenLess:        "<",
	TokenLessEq:      "<=",
	TokenGreater:     ">",
	TokenGreaterEq:   ">=",
}

var aggregateKinds = map[TokenType]ast.AggregateKind{
	TokenFindAll: ast.FindAll,
	TokenBagOf:   ast.BagOf,
	TokenSetOf:   ast.SetOf,
}

// parseFact parses `fact name(args);`
func (p *Parser) parseFact() (ast.Stmt, error) {
	pos := p.currentPosition()
	p.advance() // fact

	head, err := p.parseCompoundTerm("after fact")
	if err != nil {
		return nil, err
	}
	return &ast.FactDecl{Head: head, Pos: pos}, p.consumeTerminator()
}

// parseRule parses `rule head(args) :- goal, goal;`. A rule without a
// body is accepted and behaves like a fact with logic variables.
func (p *Parser) parseRule() (ast.Stmt, error) {
	pos := p.currentPosition()
	p.advance() // rule

	head, err := p.parseCompoundTerm("after rule")
	if err != nil {
		return nil, err
	}
	rule := &ast.RuleDecl{Head: head, Pos: pos}
	if p.match(TokenRuleSep) {
		if rule.Body, err = p.parseGoalList(); err != nil {
			return nil, err
		}
	}
	return rule, p.consumeTerminator()
}

// parseGoalList parses one or more goals separated by commas
func (p *Parser) parseGoalList() ([]ast.Goal, error) {
	return p.parseGoals(false)
}

// parseQueryGoals parses the goals of a query expression. Inside a host
// expression a comma ends the conjunction unless a goal follows it, so
// print(query p(?x), ?x) passes ?x as a second argument.
func (p *Parser) parseQueryGoals() ([]ast.Goal, error) {
	return p.parseGoals(true)
}

func (p *Parser) parseGoals(inHost bool) ([]ast.Goal, error) {
	var goals []ast.Goal
	for {
		goal, err := p.parseGoal()
		if err != nil {
			return nil, err
		}
		goals = append(goals, goal)
		if !p.check(TokenComma) || (inHost && !p.goalFollowsComma()) {
			return goals, nil
		}
		p.advance()
	}
}

// goalFollowsComma reports whether the tokens after the current comma
// start a goal: a goal keyword, a conjunction, a compound term, or a
// simple operand followed by is or a comparison
func (p *Parser) goalFollowsComma() bool {
	next := p.peek(1)
	switch next.Type {
	case TokenNot, TokenCut, TokenLeftParen, TokenAssert, TokenRetract,
		TokenFindAll, TokenBagOf, TokenSetOf:
		return true
	case TokenIdentifier:
		if p.peek(2).Type == TokenLeftParen {
			return true
		}
		return startsRelation(p.peek(2).Type)
	case TokenLogicVar, TokenNumber, TokenString:
		return startsRelation(p.peek(2).Type)
	}
	return false
}

func startsRelation(tt TokenType) bool {
	_, ok := compareOps[tt]
	return ok || tt == TokenIs
}

// parseGoal parses a single goal of a rule body, query or aggregate
func (p *Parser) parseGoal() (ast.Goal, error) {
	start := p.current
	pos := tokenPosition(start)

	switch p.current.Type {
	case TokenNot:
		p.advance()
		inner, err := p.parseGoal()
		if err != nil {
			return nil, err
		}
		return &ast.NotExpr{Goal: inner, Pos: pos}, nil

	case TokenCut:
		p.advance()
		return &ast.CutExpr{Pos: pos}, nil

	case TokenLeftParen:
		p.advance()
		goals, err := p.parseGoalList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRightParen, "to close conjunction"); err != nil {
			return nil, err
		}
		return &ast.Conjunction{Goals: goals, Pos: pos}, nil

	case TokenAssert, TokenRetract:
		update, err := p.parseDatabaseUpdate()
		if err != nil {
			return nil, err
		}
		return update.(ast.Goal), nil

	case TokenFindAll, TokenBagOf, TokenSetOf:
		agg, err := p.parseAggregate()
		if err != nil {
			return nil, err
		}
		return agg.(ast.Goal), nil

	case TokenIdentifier:
		if p.peek(1).Type == TokenLeftParen {
			term, err := p.parseCompoundTerm("in goal")
			if err != nil {
				return nil, err
			}
			return term, nil
		}
	}

	left, err := p.parseBinary(additiveLevel)
	if err != nil {
		return nil, err
	}

	if p.check(TokenIs) {
		isPos := p.currentPosition()
		p.advance()
		right, err := p.parseBinary(additiveLevel)
		if err != nil {
			return nil, err
		}
		return &ast.IsExpr{Left: left, Right: right, Pos: isPos}, nil
	}

	if op, ok := compareOps[p.current.Type]; ok {
		cmpPos := p.currentPosition()
		p.advance()
		right, err := p.parseBinary(additiveLevel)
		if err != nil {
			return nil, err
		}
		return &ast.CompareGoal{Op: op, Left: left, Right: right, Pos: cmpPos}, nil
	}

	return nil, syntaxError(start, "expected goal, found %s", describe(start))
}

// parseCompoundTerm parses name(term, ...)
func (p *Parser) parseCompoundTerm(context string) (*ast.CompoundTerm, error) {
	if !p.check(TokenIdentifier) {
		return nil, p.parseError("expected predicate name %s, found %s", context, describe(p.current))
	}
	term := &ast.CompoundTerm{Functor: p.current.Value, Pos: p.currentPosition()}
	p.advance()

	if _, err := p.expect(TokenLeftParen, "after predicate name"); err != nil {
		return nil, err
	}
	for !p.check(TokenRightParen) {
		arg, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		term.Args = append(term.Args, arg)
		if !p.match(TokenComma) {
			break
		}
	}
	if _, err := p.expect(TokenRightParen, "after predicate arguments"); err != nil {
		return nil, err
	}
	return term, nil
}

// parseTerm parses a term argument: a nested compound, a list of terms,
// or a host expression (which may be a logic variable)
func (p *Parser) parseTerm() (ast.Expr, error) {
	switch {
	case p.check(TokenIdentifier) && p.peek(1).Type == TokenLeftParen:
		term, err := p.parseCompoundTerm("in term")
		if err != nil {
			return nil, err
		}
		return term, nil
	case p.check(TokenLeftBracket):
		return p.parseArrayLit(p.parseTerm)
	}
	return p.parseConditional()
}

// parseAggregate parses findall|bagof|setof(template, goal, ?result)
func (p *Parser) parseAggregate() (ast.Expr, error) {
	agg := &ast.AggregateExpr{Kind: aggregateKinds[p.current.Type], Pos: p.currentPosition()}
	name := agg.Kind.String()
	p.advance()

	if _, err := p.expect(TokenLeftParen, "after "+name); err != nil {
		return nil, err
	}
	template, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	agg.Template = template

	if _, err := p.expect(TokenComma, "after "+name+" template"); err != nil {
		return nil, err
	}
	if agg.Goal, err = p.parseGoal(); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenComma, "after "+name+" goal"); err != nil {
		return nil, err
	}

	resultTok, err := p.expect(TokenLogicVar, "as "+name+" result")
	if err != nil {
		return nil, err
	}
	agg.Result = &ast.LogicVar{Name: resultTok.Value, Pos: tokenPosition(resultTok)}

	if _, err := p.expect(TokenRightParen, "to close "+name); err != nil {
		return nil, err
	}
	return agg, nil
}

// parseDatabaseUpdate parses `assert name(args)` or `retract name(args)`;
// the term may also be wrapped in parentheses
func (p *Parser) parseDatabaseUpdate() (ast.Expr, error) {
	pos := p.currentPosition()
	isAssert := p.check(TokenAssert)
	p.advance()

	wrapped := p.check(TokenLeftParen)
	if wrapped {
		p.advance()
	}
	term, err := p.parseCompoundTerm("after assert/retract")
	if err != nil {
		return nil, err
	}
	if wrapped {
		if _, err := p.expect(TokenRightParen, "after assert/retract term"); err != nil {
			return nil, err
		}
	}

	if isAssert {
		return &ast.AssertExpr{Term: term, Pos: pos}, nil
	}
	return &ast.RetractExpr{Term: term, Pos: pos}, nil
}

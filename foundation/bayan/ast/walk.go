// File: walk.go
// Title: AST Traversal
// Description: Depth-first traversal of Bayan syntax trees using a
//              Visitor, plus Inspect for closure-based walks.
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2025-10-02
//
// Change History:
// - 2025-01-25 v0.1.0: Visitor with per-node methods and BaseVisitor
// - 2025-10-02 v0.2.0: Single Visit method walking every node kind

package ast

import "fmt"

// Visitor is invoked for each node encountered by Walk. If the returned
// visitor w is not nil, Walk visits each child of node with w, followed
// by a call of w.Visit(nil).
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses an AST in depth-first order
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}
	for _, child := range Children(node) {
		Walk(v, child)
	}
	v.Visit(nil)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses an AST calling f for each node; f returning false
// skips the node's children. f(nil) marks the end of a child list.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

// Children returns the direct child nodes of node in source order
func Children(node Node) []Node {
	var out []Node
	add := func(nodes ...Node) {
		for _, n := range nodes {
			if n != nil && !isNilNode(n) {
				out = append(out, n)
			}
		}
	}
	addExprs := func(exprs []Expr) {
		for _, e := range exprs {
			add(e)
		}
	}
	addStmts := func(stmts []Stmt) {
		for _, s := range stmts {
			add(s)
		}
	}
	addGoals := func(goals []Goal) {
		for _, g := range goals {
			add(g)
		}
	}

	switch n := node.(type) {
	case *Program:
		addStmts(n.Statements)
	case *VarDecl:
		for i, name := range n.Names {
			add(name)
			if n.Inits[i] != nil {
				add(n.Inits[i])
			}
		}
	case *FunctionDecl:
		add(n.Func)
	case *ClassDecl:
		add(n.Name)
		if n.SuperClass != nil {
			add(n.SuperClass)
		}
		for _, m := range n.Members {
			add(m)
		}
	case *ClassMember:
		if n.Method != nil {
			add(n.Method)
		}
		if n.Value != nil {
			add(n.Value)
		}
	case *BlockStmt:
		addStmts(n.Statements)
	case *ExprStmt:
		add(n.X)
	case *IfStmt:
		add(n.Cond, n.Then)
		if n.Else != nil {
			add(n.Else)
		}
	case *WhileStmt:
		add(n.Cond, n.Body)
	case *DoWhileStmt:
		add(n.Body, n.Cond)
	case *ForStmt:
		if n.Init != nil {
			add(n.Init)
		}
		if n.Cond != nil {
			add(n.Cond)
		}
		if n.Update != nil {
			add(n.Update)
		}
		add(n.Body)
	case *ForOfStmt:
		add(n.Name, n.Iter, n.Body)
	case *SwitchStmt:
		add(n.Disc)
		for _, c := range n.Cases {
			add(c)
		}
	case *SwitchCase:
		if n.Test != nil {
			add(n.Test)
		}
		addStmts(n.Body)
	case *ReturnStmt:
		if n.Value != nil {
			add(n.Value)
		}
	case *ThrowStmt:
		add(n.Value)
	case *TryStmt:
		add(n.Block)
		if n.CatchParam != nil {
			add(n.CatchParam)
		}
		if n.Catch != nil {
			add(n.Catch)
		}
		if n.Finally != nil {
			add(n.Finally)
		}
	case *ImportStmt:
		for _, name := range n.Names {
			add(name)
		}
	case *ExportStmt:
		add(n.Decl)
	case *FactDecl:
		add(n.Head)
	case *RuleDecl:
		add(n.Head)
		addGoals(n.Body)
	case *ArrayLit:
		addExprs(n.Elements)
	case *ObjectLit:
		for _, p := range n.Properties {
			add(p)
		}
	case *Property:
		add(n.Value)
	case *FunctionLit:
		for _, p := range n.Params {
			add(p)
		}
		if n.Body != nil {
			add(n.Body)
		}
		if n.Expr != nil {
			add(n.Expr)
		}
	case *UnaryExpr:
		add(n.Operand)
	case *UpdateExpr:
		add(n.Target)
	case *BinaryExpr:
		add(n.Left, n.Right)
	case *LogicalExpr:
		add(n.Left, n.Right)
	case *AssignExpr:
		add(n.Target, n.Value)
	case *ConditionalExpr:
		add(n.Cond, n.Then, n.Else)
	case *CallExpr:
		add(n.Callee)
		addExprs(n.Args)
	case *MemberExpr:
		add(n.Object)
	case *IndexExpr:
		add(n.Object, n.Index)
	case *NewExpr:
		add(n.Callee)
		addExprs(n.Args)
	case *CompoundTerm:
		addExprs(n.Args)
	case *QueryExpr:
		addGoals(n.Goals)
	case *NotExpr:
		add(n.Goal)
	case *IsExpr:
		add(n.Left, n.Right)
	case *CompareGoal:
		add(n.Left, n.Right)
	case *AggregateExpr:
		add(n.Template, n.Goal, n.Result)
	case *AssertExpr:
		add(n.Term)
	case *RetractExpr:
		add(n.Term)
	case *Conjunction:
		addGoals(n.Goals)
	case *Identifier, *NumberLit, *StringLit, *BoolLit, *NullLit, *UndefinedLit,
		*ThisExpr, *SuperExpr, *LogicVar, *CutExpr, *BreakStmt, *ContinueStmt, *EmptyStmt:
		// leaves
	default:
		panic(fmt.Sprintf("ast.Children: unexpected node type %T", node))
	}
	return out
}

// isNilNode catches typed nil pointers stored in interfaces
func isNilNode(n Node) bool {
	switch v := n.(type) {
	case *LogicVar:
		return v == nil
	case *Identifier:
		return v == nil
	case *BlockStmt:
		return v == nil
	case *FunctionLit:
		return v == nil
	case *CompoundTerm:
		return v == nil
	}
	return false
}

// ContainsLogicVar reports whether any LogicVar occurs under node
func ContainsLogicVar(node Node) bool {
	found := false
	Inspect(node, func(n Node) bool {
		if _, ok := n.(*LogicVar); ok {
			found = true
		}
		return !found
	})
	return found
}

// LogicVars returns the distinct logic variable names under node in
// order of first occurrence
func LogicVars(node Node) []string {
	var names []string
	seen := make(map[string]bool)
	Inspect(node, func(n Node) bool {
		if v, ok := n.(*LogicVar); ok && !seen[v.Name] {
			seen[v.Name] = true
			names = append(names, v.Name)
		}
		return true
	})
	return names
}

// File: nodes.go
// Title: Core AST Node Interfaces
// Description: Base node interfaces, positions and the Program root.
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2025-10-02
//
// Change History:
// - 2025-01-25 v0.1.0: Initial AST node definitions
// - 2025-10-02 v0.2.0: Statement/expression/goal split for Bayan

package ast

import "fmt"

// Node represents the base interface for all AST nodes
type Node interface {
	// Position returns the source position of the node
	Position() Position
}

// Stmt is implemented by statement nodes
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by expression nodes
type Expr interface {
	Node
	exprNode()
}

// Goal is implemented by nodes that may appear in a rule body or query
type Goal interface {
	Node
	goalNode()
}

// Position represents a position in the source code
type Position struct {
	Line   int // Line number (1-based)
	Column int // Column number (1-based)
	Offset int // Byte offset (0-based)
}

// String returns "line:column"
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsValid reports whether the position was set
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Program is the root of a parsed source file
type Program struct {
	Name       string // module name or file path, informational
	Statements []Stmt
}

// Position returns the position of the first statement
func (p *Program) Position() Position {
	if len(p.Statements) > 0 {
		return p.Statements[0].Position()
	}
	return Position{Line: 1, Column: 1}
}

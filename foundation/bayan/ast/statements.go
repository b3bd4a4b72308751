package ast

// VarDecl declares one or more variables: let a = 1, b;
type VarDecl struct {
	Const bool
	Names []*Identifier
	Inits []Expr // parallel to Names; nil entries mean no initializer
	Pos   Position
}

// FunctionDecl declares a named function in the enclosing scope
type FunctionDecl struct {
	Func *FunctionLit
	Pos  Position
}

// ClassDecl declares a class
type ClassDecl struct {
	Name       *Identifier
	SuperClass Expr // optional
	Members    []*ClassMember
	Pos        Position
}

// ClassMember is a method or a property initializer inside a class body
type ClassMember struct {
	Name   string
	Static bool
	Method *FunctionLit // nil for properties
	Value  Expr         // property initializer, may be nil
	Pos    Position
}

// BlockStmt is a braced statement list with its own scope
type BlockStmt struct {
	Statements []Stmt
	Pos        Position
}

// ExprStmt evaluates an expression for its effect
type ExprStmt struct {
	X   Expr
	Pos Position
}

// IfStmt is if/else
type IfStmt struct {
	Cond Expr
	Then Stmt
	Else Stmt // optional
	Pos  Position
}

// WhileStmt is a pre-tested loop
type WhileStmt struct {
	Cond Expr
	Body Stmt
	Pos  Position
}

// DoWhileStmt is a post-tested loop
type DoWhileStmt struct {
	Body Stmt
	Cond Expr
	Pos  Position
}

// ForStmt is the three-clause for loop
type ForStmt struct {
	Init   Stmt // VarDecl or ExprStmt, optional
	Cond   Expr // optional
	Update Expr // optional
	Body   Stmt
	Pos    Position
}

// ForOfStmt iterates over array elements, string runes or object keys
type ForOfStmt struct {
	Const bool
	Name  *Identifier
	Iter  Expr
	Body  Stmt
	Pos   Position
}

// SwitchStmt selects a case by strict equality; cases fall through
type SwitchStmt struct {
	Disc  Expr
	Cases []*SwitchCase
	Pos   Position
}

// SwitchCase is one case clause; Test is nil for default
type SwitchCase struct {
	Test Expr
	Body []Stmt
	Pos  Position
}

// ReturnStmt returns from the enclosing function
type ReturnStmt struct {
	Value Expr // optional
	Pos   Position
}

// BreakStmt exits the innermost loop or switch
type BreakStmt struct {
	Pos Position
}

// ContinueStmt skips to the next loop iteration
type ContinueStmt struct {
	Pos Position
}

// ThrowStmt raises a language-level exception
type ThrowStmt struct {
	Value Expr
	Pos   Position
}

// TryStmt is try/catch/finally; at least one of Catch and Finally is set
type TryStmt struct {
	Block      *BlockStmt
	CatchParam *Identifier // optional
	Catch      *BlockStmt  // optional
	Finally    *BlockStmt  // optional
	Pos        Position
}

// ImportStmt loads a module: import { a, b } from "path";
type ImportStmt struct {
	Names []*Identifier // empty for side-effect imports
	Path  string
	Pos   Position
}

// ExportStmt marks a top-level declaration as exported
type ExportStmt struct {
	Decl Stmt // VarDecl, FunctionDecl or ClassDecl
	Pos  Position
}

// FactDecl adds a ground fact to the database when executed
type FactDecl struct {
	Head *CompoundTerm
	Pos  Position
}

// RuleDecl adds a rule to the database when executed
type RuleDecl struct {
	Head *CompoundTerm
	Body []Goal
	Pos  Position
}

// EmptyStmt is a lone terminator
type EmptyStmt struct {
	Pos Position
}

func (s *VarDecl) Position() Position      { return s.Pos }
func (s *FunctionDecl) Position() Position { return s.Pos }
func (s *ClassDecl) Position() Position    { return s.Pos }
func (s *BlockStmt) Position() Position    { return s.Pos }
func (s *ExprStmt) Position() Position     { return s.Pos }
func (s *IfStmt) Position() Position       { return s.Pos }
func (s *WhileStmt) Position() Position    { return s.Pos }
func (s *DoWhileStmt) Position() Position  { return s.Pos }
func (s *ForStmt) Position() Position      { return s.Pos }
func (s *ForOfStmt) Position() Position    { return s.Pos }
func (s *SwitchStmt) Position() Position   { return s.Pos }
func (s *ReturnStmt) Position() Position   { return s.Pos }
func (s *BreakStmt) Position() Position    { return s.Pos }
func (s *ContinueStmt) Position() Position { return s.Pos }
func (s *ThrowStmt) Position() Position    { return s.Pos }
func (s *TryStmt) Position() Position      { return s.Pos }
func (s *ImportStmt) Position() Position   { return s.Pos }
func (s *ExportStmt) Position() Position   { return s.Pos }
func (s *FactDecl) Position() Position     { return s.Pos }
func (s *RuleDecl) Position() Position     { return s.Pos }
func (s *EmptyStmt) Position() Position    { return s.Pos }
func (m *ClassMember) Position() Position  { return m.Pos }
func (c *SwitchCase) Position() Position   { return c.Pos }

func (*VarDecl) stmtNode()      {}
func (*FunctionDecl) stmtNode() {}
func (*ClassDecl) stmtNode()    {}
func (*BlockStmt) stmtNode()    {}
func (*ExprStmt) stmtNode()     {}
func (*IfStmt) stmtNode()       {}
func (*WhileStmt) stmtNode()    {}
func (*DoWhileStmt) stmtNode()  {}
func (*ForStmt) stmtNode()      {}
func (*ForOfStmt) stmtNode()    {}
func (*SwitchStmt) stmtNode()   {}
func (*ReturnStmt) stmtNode()   {}
func (*BreakStmt) stmtNode()    {}
func (*ContinueStmt) stmtNode() {}
func (*ThrowStmt) stmtNode()    {}
func (*TryStmt) stmtNode()      {}
func (*ImportStmt) stmtNode()   {}
func (*ExportStmt) stmtNode()   {}
func (*FactDecl) stmtNode()     {}
func (*RuleDecl) stmtNode()     {}
func (*EmptyStmt) stmtNode()    {}

package ast

// Identifier is a name reference
type Identifier struct {
	Name string
	Pos  Position
}

// NumberLit is a numeric literal
type NumberLit struct {
	Value float64
	Raw   string
	Pos   Position
}

// StringLit is a string literal
type StringLit struct {
	Value string
	Pos   Position
}

// BoolLit is true or false
type BoolLit struct {
	Value bool
	Pos   Position
}

// NullLit is null
type NullLit struct {
	Pos Position
}

// UndefinedLit is undefined
type UndefinedLit struct {
	Pos Position
}

// ArrayLit is [a, b, c]
type ArrayLit struct {
	Elements []Expr
	Pos      Position
}

// Property is one key/value pair of an object literal
type Property struct {
	Key   string
	Value Expr
	Pos   Position
}

// ObjectLit is { key: value, ... }
type ObjectLit struct {
	Properties []*Property
	Pos        Position
}

// FunctionLit is a function expression, declaration body or method
type FunctionLit struct {
	Name   string // empty for anonymous functions
	Params []*Identifier
	Body   *BlockStmt
	Arrow  bool
	Expr   Expr // arrow function with expression body; Body is nil then
	Pos    Position
}

// UnaryExpr is a prefix operator: ! - + typeof
type UnaryExpr struct {
	Op      string
	Operand Expr
	Pos     Position
}

// UpdateExpr is ++ or -- in prefix or postfix position
type UpdateExpr struct {
	Op     string
	Prefix bool
	Target Expr
	Pos    Position
}

// BinaryExpr is an arithmetic, comparison or equality operation
type BinaryExpr struct {
	Op    string
	Left  Expr
	Right Expr
	Pos   Position
}

// LogicalExpr is && or || with short-circuit evaluation
type LogicalExpr struct {
	Op    string
	Left  Expr
	Right Expr
	Pos   Position
}

// AssignExpr is = or a compound assignment
type AssignExpr struct {
	Op     string
	Target Expr // Identifier, MemberExpr or IndexExpr
	Value  Expr
	Pos    Position
}

// ConditionalExpr is cond ? a : b
type ConditionalExpr struct {
	Cond Expr
	Then Expr
	Else Expr
	Pos  Position
}

// CallExpr is callee(args)
type CallExpr struct {
	Callee Expr
	Args   []Expr
	Pos    Position
}

// MemberExpr is object.name
type MemberExpr struct {
	Object Expr
	Name   string
	Pos    Position
}

// IndexExpr is object[index]
type IndexExpr struct {
	Object Expr
	Index  Expr
	Pos    Position
}

// NewExpr is new Class(args)
type NewExpr struct {
	Callee Expr
	Args   []Expr
	Pos    Position
}

// ThisExpr is this
type ThisExpr struct {
	Pos Position
}

// SuperExpr is super(args) when Name is empty, super.name otherwise
type SuperExpr struct {
	Name string
	Pos  Position
}

func (e *Identifier) Position() Position      { return e.Pos }
func (e *NumberLit) Position() Position       { return e.Pos }
func (e *StringLit) Position() Position       { return e.Pos }
func (e *BoolLit) Position() Position         { return e.Pos }
func (e *NullLit) Position() Position         { return e.Pos }
func (e *UndefinedLit) Position() Position    { return e.Pos }
func (e *ArrayLit) Position() Position        { return e.Pos }
func (e *Property) Position() Position        { return e.Pos }
func (e *ObjectLit) Position() Position       { return e.Pos }
func (e *FunctionLit) Position() Position     { return e.Pos }
func (e *UnaryExpr) Position() Position       { return e.Pos }
func (e *UpdateExpr) Position() Position      { return e.Pos }
func (e *BinaryExpr) Position() Position      { return e.Pos }
func (e *LogicalExpr) Position() Position     { return e.Pos }
func (e *AssignExpr) Position() Position      { return e.Pos }
func (e *ConditionalExpr) Position() Position { return e.Pos }
func (e *CallExpr) Position() Position        { return e.Pos }
func (e *MemberExpr) Position() Position      { return e.Pos }
func (e *IndexExpr) Position() Position       { return e.Pos }
func (e *NewExpr) Position() Position         { return e.Pos }
func (e *ThisExpr) Position() Position        { return e.Pos }
func (e *SuperExpr) Position() Position       { return e.Pos }

func (*Identifier) exprNode()      {}
func (*NumberLit) exprNode()       {}
func (*StringLit) exprNode()       {}
func (*BoolLit) exprNode()         {}
func (*NullLit) exprNode()         {}
func (*UndefinedLit) exprNode()    {}
func (*ArrayLit) exprNode()        {}
func (*ObjectLit) exprNode()       {}
func (*FunctionLit) exprNode()     {}
func (*UnaryExpr) exprNode()       {}
func (*UpdateExpr) exprNode()      {}
func (*BinaryExpr) exprNode()      {}
func (*LogicalExpr) exprNode()     {}
func (*AssignExpr) exprNode()      {}
func (*ConditionalExpr) exprNode() {}
func (*CallExpr) exprNode()        {}
func (*MemberExpr) exprNode()      {}
func (*IndexExpr) exprNode()       {}
func (*NewExpr) exprNode()         {}
func (*ThisExpr) exprNode()        {}
func (*SuperExpr) exprNode()       {}

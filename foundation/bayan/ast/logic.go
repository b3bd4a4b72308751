package ast

// LogicVar is a logic variable such as ?x. Name includes the sigil.
type LogicVar struct {
	Name string
	Pos  Position
}

// CompoundTerm is name(args). As a goal it is a predicate call.
type CompoundTerm struct {
	Functor string
	Args    []Expr
	Pos     Position
}

// QueryExpr proves goals left to right; true iff a solution exists.
// The first solution's bindings become visible as ?name variables.
type QueryExpr struct {
	Goals []Goal
	Pos   Position
}

// NotExpr is negation as failure
type NotExpr struct {
	Goal Goal
	Pos  Position
}

// CutExpr commits to the current clause
type CutExpr struct {
	Pos Position
}

// IsExpr evaluates Right and unifies the result with Left
type IsExpr struct {
	Left  Expr
	Right Expr
	Pos   Position
}

// CompareGoal succeeds when the comparison holds; both sides are
// evaluated with the current bindings
type CompareGoal struct {
	Op    string
	Left  Expr
	Right Expr
	Pos   Position
}

// AggregateKind selects the collection policy of an AggregateExpr
type AggregateKind int

const (
	FindAll AggregateKind = iota // all solutions, duplicates kept
	BagOf                        // like FindAll but fails on no solutions
	SetOf                        // BagOf with duplicates removed and sorted
)

// String returns the keyword of the aggregate
func (k AggregateKind) String() string {
	switch k {
	case FindAll:
		return "findall"
	case BagOf:
		return "bagof"
	case SetOf:
		return "setof"
	default:
		return "unknown"
	}
}

// AggregateExpr is findall/bagof/setof(template, goal, ?result)
type AggregateExpr struct {
	Kind     AggregateKind
	Template Expr
	Goal     Goal
	Result   *LogicVar
	Pos      Position
}

// AssertExpr appends a fact to the database
type AssertExpr struct {
	Term *CompoundTerm
	Pos  Position
}

// RetractExpr removes the first clause whose head equals Term
type RetractExpr struct {
	Term *CompoundTerm
	Pos  Position
}

// Conjunction is a parenthesized goal list (g1, g2)
type Conjunction struct {
	Goals []Goal
	Pos   Position
}

func (e *LogicVar) Position() Position      { return e.Pos }
func (e *CompoundTerm) Position() Position  { return e.Pos }
func (e *QueryExpr) Position() Position     { return e.Pos }
func (e *NotExpr) Position() Position       { return e.Pos }
func (e *CutExpr) Position() Position       { return e.Pos }
func (e *IsExpr) Position() Position        { return e.Pos }
func (e *CompareGoal) Position() Position   { return e.Pos }
func (e *AggregateExpr) Position() Position { return e.Pos }
func (e *AssertExpr) Position() Position    { return e.Pos }
func (e *RetractExpr) Position() Position   { return e.Pos }
func (e *Conjunction) Position() Position   { return e.Pos }

func (*LogicVar) exprNode()      {}
func (*CompoundTerm) exprNode()  {}
func (*QueryExpr) exprNode()     {}
func (*NotExpr) exprNode()       {}
func (*CutExpr) exprNode()       {}
func (*IsExpr) exprNode()        {}
func (*AggregateExpr) exprNode() {}
func (*AssertExpr) exprNode()    {}
func (*RetractExpr) exprNode()   {}

func (*CompoundTerm) goalNode()  {}
func (*NotExpr) goalNode()       {}
func (*CutExpr) goalNode()       {}
func (*IsExpr) goalNode()        {}
func (*CompareGoal) goalNode()   {}
func (*AggregateExpr) goalNode() {}
func (*AssertExpr) goalNode()    {}
func (*RetractExpr) goalNode()   {}
func (*Conjunction) goalNode()   {}

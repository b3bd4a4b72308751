package logic

import (
	"strconv"
	"strings"
)

// Goal is something the solver can prove: a predicate call (*Compound),
// Not, Cut, Conj, *Builtin or *Aggregate
type Goal interface {
	goal()
}

// Not succeeds iff Goal has no solution. It never binds variables.
type Not struct {
	Goal Goal
}

// Cut commits to the clause being resolved and to the bindings made so
// far in its body
type Cut struct{}

// Conj proves its goals left to right. Cut inside a Conj acts on the
// enclosing clause.
type Conj struct {
	Goals []Goal
}

// BuiltinFunc is the implementation of a deterministic builtin goal.
// args are the Builtin's arguments after clause renaming; they are not
// applied, so implementations call s.Apply or s.Walk themselves.
type BuiltinFunc func(args []Term, s *Subst) (*Subst, bool, error)

// Builtin is a goal implemented in Go, used for arithmetic binding,
// comparisons and database updates. It has at most one solution.
type Builtin struct {
	Name string
	Args []Term
	Call BuiltinFunc
}

// AggregateKind selects how solutions are collected
type AggregateKind int

const (
	FindAll AggregateKind = iota // every solution in order; empty list when none
	BagOf                        // like FindAll but fails when there is no solution
	SetOf                        // BagOf sorted by the standard order, duplicates removed
)

func (k AggregateKind) String() string {
	switch k {
	case FindAll:
		return "findall"
	case BagOf:
		return "bagof"
	case SetOf:
		return "setof"
	}
	return "aggregate(" + strconv.Itoa(int(k)) + ")"
}

// Aggregate collects Template for every solution of Goal into a list
// and unifies it with Result
type Aggregate struct {
	Kind     AggregateKind
	Template Term
	Goal     Goal
	Result   Term
}

func (*Compound) goal()  {}
func (Not) goal()        {}
func (Cut) goal()        {}
func (Conj) goal()       {}
func (*Builtin) goal()   {}
func (*Aggregate) goal() {}

// GoalString renders a goal for logs and diagnostics
func GoalString(g Goal) string {
	switch g := g.(type) {
	case *Compound:
		return g.String()
	case Not:
		return "not " + GoalString(g.Goal)
	case Cut:
		return "cut"
	case Conj:
		parts := make([]string, len(g.Goals))
		for i, inner := range g.Goals {
			parts[i] = GoalString(inner)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *Builtin:
		parts := make([]string, len(g.Args))
		for i, arg := range g.Args {
			parts[i] = arg.String()
		}
		return g.Name + "(" + strings.Join(parts, ", ") + ")"
	case *Aggregate:
		return g.Kind.String() + "(" + g.Template.String() + ", " + GoalString(g.Goal) + ", " + g.Result.String() + ")"
	}
	return "?"
}

// GoalVars returns the distinct variable names of goals in order of
// first occurrence
func GoalVars(goals ...Goal) []string {
	var names []string
	seen := make(map[string]bool)
	add := func(t Term) {
		for _, name := range Vars(t) {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	var walk func(Goal)
	walk = func(g Goal) {
		switch g := g.(type) {
		case *Compound:
			add(g)
		case Not:
			walk(g.Goal)
		case Conj:
			for _, inner := range g.Goals {
				walk(inner)
			}
		case *Builtin:
			for _, arg := range g.Args {
				add(arg)
			}
		case *Aggregate:
			add(g.Template)
			walk(g.Goal)
			add(g.Result)
		}
	}
	for _, g := range goals {
		walk(g)
	}
	return names
}

// renamer gives a clause's variables fresh names for one use
type renamer struct {
	suffix string
	names  map[string]string
}

func newRenamer(id uint64) *renamer {
	return &renamer{suffix: "#" + strconv.FormatUint(id, 10), names: make(map[string]string)}
}

func (r *renamer) term(t Term) Term {
	switch t := t.(type) {
	case Var:
		name, ok := r.names[t.Name]
		if !ok {
			name = t.Name + r.suffix
			r.names[t.Name] = name
		}
		return Var{Name: name}
	case *Compound:
		args := make([]Term, len(t.Args))
		for i, arg := range t.Args {
			args[i] = r.term(arg)
		}
		return &Compound{Functor: t.Functor, Args: args}
	}
	return t
}

func (r *renamer) terms(ts []Term) []Term {
	out := make([]Term, len(ts))
	for i, t := range ts {
		out[i] = r.term(t)
	}
	return out
}

func (r *renamer) goal(g Goal) Goal {
	switch g := g.(type) {
	case *Compound:
		return r.term(g).(*Compound)
	case Not:
		return Not{Goal: r.goal(g.Goal)}
	case Conj:
		goals := make([]Goal, len(g.Goals))
		for i, inner := range g.Goals {
			goals[i] = r.goal(inner)
		}
		return Conj{Goals: goals}
	case *Builtin:
		return &Builtin{Name: g.Name, Args: r.terms(g.Args), Call: g.Call}
	case *Aggregate:
		return &Aggregate{Kind: g.Kind, Template: r.term(g.Template), Goal: r.goal(g.Goal), Result: r.term(g.Result)}
	}
	return g
}

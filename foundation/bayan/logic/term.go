package logic

import (
	"math"
	"strconv"
	"strings"
)

// Term is an atom, a logic variable or a compound term
type Term interface {
	String() string
	term()
}

// Atom is a constant. Value is one of float64, string, bool or nil.
type Atom struct {
	Value interface{}
}

// Var is a logic variable. Names carry the ? sigil; renamed clause
// variables get a #n suffix.
type Var struct {
	Name string
}

// Compound is functor(args). Lists use the ListFunctor.
type Compound struct {
	Functor string
	Args    []Term
}

// ListFunctor is the functor of list terms
const ListFunctor = "[]"

func (Atom) term()      {}
func (Var) term()       {}
func (*Compound) term() {}

// Num returns a number atom
func Num(f float64) Atom { return Atom{Value: f} }

// Str returns a string atom
func Str(s string) Atom { return Atom{Value: s} }

// Bool returns a boolean atom
func Bool(b bool) Atom { return Atom{Value: b} }

// Null is the null atom
var Null = Atom{Value: nil}

// NewCompound builds functor(args...)
func NewCompound(functor string, args ...Term) *Compound {
	return &Compound{Functor: functor, Args: args}
}

// NewList builds a list term
func NewList(elems ...Term) *Compound {
	if elems == nil {
		elems = []Term{}
	}
	return &Compound{Functor: ListFunctor, Args: elems}
}

// IsList reports whether c is a list term
func (c *Compound) IsList() bool {
	return c.Functor == ListFunctor
}

// Key returns the predicate key of c
func (c *Compound) Key() Key {
	return Key{Name: c.Functor, Arity: len(c.Args)}
}

func (a Atom) String() string {
	switch v := a.Value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case float64:
		return FormatNumber(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return "?"
	}
}

func (v Var) String() string {
	return v.Name
}

func (c *Compound) String() string {
	var b strings.Builder
	open, close := "(", ")"
	if c.IsList() {
		open, close = "[", "]"
	} else {
		b.WriteString(c.Functor)
	}
	b.WriteString(open)
	for i, arg := range c.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(arg.String())
	}
	b.WriteString(close)
	return b.String()
}

// FormatNumber renders integral values without a fractional part
func FormatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.IsNaN(f):
		return "NaN"
	case f == math.Trunc(f) && math.Abs(f) < 1e21:
		return strconv.FormatFloat(f, 'f', -1, 64)
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

// IsGround reports whether t contains no variables
func IsGround(t Term) bool {
	switch t := t.(type) {
	case Var:
		return false
	case *Compound:
		for _, arg := range t.Args {
			if !IsGround(arg) {
				return false
			}
		}
	}
	return true
}

// Equal reports syntactic equality: same structure, same atoms and the
// same variable names. No unification is performed.
func Equal(a, b Term) bool {
	switch a := a.(type) {
	case Atom:
		bb, ok := b.(Atom)
		return ok && a.Value == bb.Value
	case Var:
		bb, ok := b.(Var)
		return ok && a.Name == bb.Name
	case *Compound:
		bb, ok := b.(*Compound)
		if !ok || a.Functor != bb.Functor || len(a.Args) != len(bb.Args) {
			return false
		}
		for i := range a.Args {
			if !Equal(a.Args[i], bb.Args[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Vars returns the distinct variable names in t in order of first
// occurrence
func Vars(t Term) []string {
	var names []string
	seen := make(map[string]bool)
	var walk func(Term)
	walk = func(t Term) {
		switch t := t.(type) {
		case Var:
			if !seen[t.Name] {
				seen[t.Name] = true
				names = append(names, t.Name)
			}
		case *Compound:
			for _, arg := range t.Args {
				walk(arg)
			}
		}
	}
	walk(t)
	return names
}

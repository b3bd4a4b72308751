package logic

import (
	"sort"
	"strings"
)

// Subst is a persistent substitution: each binding links to the
// substitution it extends, so backtracking restores an earlier state by
// keeping a reference to it. The nil *Subst is the empty substitution.
type Subst struct {
	parent *Subst
	name   string
	value  Term
	size   int
}

// Bind returns s extended with name -> t. s itself is unchanged.
func (s *Subst) Bind(name string, t Term) *Subst {
	return &Subst{parent: s, name: name, value: t, size: s.Len() + 1}
}

// Lookup returns the term bound directly to name
func (s *Subst) Lookup(name string) (Term, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.name == name {
			return cur.value, true
		}
	}
	return nil, false
}

// Len returns the number of bindings
func (s *Subst) Len() int {
	if s == nil {
		return 0
	}
	return s.size
}

// Walk follows variable bindings until it reaches a non-variable or an
// unbound variable
func (s *Subst) Walk(t Term) Term {
	for {
		v, ok := t.(Var)
		if !ok {
			return t
		}
		bound, ok := s.Lookup(v.Name)
		if !ok {
			return t
		}
		t = bound
	}
}

// Apply resolves every bound variable in t
func (s *Subst) Apply(t Term) Term {
	t = s.Walk(t)
	c, ok := t.(*Compound)
	if !ok {
		return t
	}
	args := make([]Term, len(c.Args))
	for i, arg := range c.Args {
		args[i] = s.Apply(arg)
	}
	return &Compound{Functor: c.Functor, Args: args}
}

// String renders the bindings sorted by name
func (s *Subst) String() string {
	seen := make(map[string]bool)
	var names []string
	for cur := s; cur != nil; cur = cur.parent {
		if !seen[cur.name] {
			seen[cur.name] = true
			names = append(names, cur.name)
		}
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + " = " + s.Apply(Var{Name: name}).String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Solution maps query variable names to fully applied terms
type Solution map[string]Term

// String renders the solution sorted by variable name
func (sol Solution) String() string {
	names := make([]string, 0, len(sol))
	for name := range sol {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + " = " + sol[name].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

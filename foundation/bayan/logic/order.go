package logic

import (
	"sort"
	"strings"
)

// rank orders term classes: variables, null, booleans, numbers,
// strings, compounds
func rank(t Term) int {
	switch t := t.(type) {
	case Var:
		return 0
	case Atom:
		switch t.Value.(type) {
		case nil:
			return 1
		case bool:
			return 2
		case float64:
			return 3
		case string:
			return 4
		}
	case *Compound:
		return 5
	}
	return 6
}

// Compare is the standard order of terms used by setof. Compounds are
// ordered by arity, then functor, then arguments left to right.
func Compare(a, b Term) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmpInt(ra, rb)
	}

	switch a := a.(type) {
	case Var:
		return strings.Compare(a.Name, b.(Var).Name)
	case Atom:
		switch av := a.Value.(type) {
		case bool:
			bv := b.(Atom).Value.(bool)
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			default:
				return 1
			}
		case float64:
			bv := b.(Atom).Value.(float64)
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			default:
				return 0
			}
		case string:
			return strings.Compare(av, b.(Atom).Value.(string))
		}
		return 0
	case *Compound:
		bc := b.(*Compound)
		if len(a.Args) != len(bc.Args) {
			return cmpInt(len(a.Args), len(bc.Args))
		}
		if c := strings.Compare(a.Functor, bc.Functor); c != 0 {
			return c
		}
		for i := range a.Args {
			if c := Compare(a.Args[i], bc.Args[i]); c != 0 {
				return c
			}
		}
		return 0
	}
	return 0
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// SortUnique sorts terms by Compare and drops duplicates
func SortUnique(terms []Term) []Term {
	out := make([]Term, len(terms))
	copy(out, terms)
	sort.SliceStable(out, func(i, j int) bool { return Compare(out[i], out[j]) < 0 })

	unique := out[:0]
	for i, t := range out {
		if i == 0 || Compare(unique[len(unique)-1], t) != 0 {
			unique = append(unique, t)
		}
	}
	return unique
}

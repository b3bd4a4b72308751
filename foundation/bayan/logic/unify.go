package logic

// Unify extends s so that a and b become equal. It returns false when
// they cannot be unified, including when binding a variable would make
// it occur inside its own value.
func Unify(a, b Term, s *Subst) (*Subst, bool) {
	a, b = s.Walk(a), s.Walk(b)

	if va, ok := a.(Var); ok {
		if vb, ok := b.(Var); ok && va.Name == vb.Name {
			return s, true
		}
		return bindVar(va, b, s)
	}
	if vb, ok := b.(Var); ok {
		return bindVar(vb, a, s)
	}

	switch a := a.(type) {
	case Atom:
		bb, ok := b.(Atom)
		return s, ok && a.Value == bb.Value
	case *Compound:
		bb, ok := b.(*Compound)
		if !ok || a.Functor != bb.Functor || len(a.Args) != len(bb.Args) {
			return s, false
		}
		for i := range a.Args {
			if s, ok = Unify(a.Args[i], bb.Args[i], s); !ok {
				return s, false
			}
		}
		return s, true
	}
	return s, false
}

func bindVar(v Var, t Term, s *Subst) (*Subst, bool) {
	if occurs(v.Name, t, s) {
		return s, false
	}
	return s.Bind(v.Name, t), true
}

// occurs reports whether the variable name appears in t under s
func occurs(name string, t Term, s *Subst) bool {
	switch t := s.Walk(t).(type) {
	case Var:
		return t.Name == name
	case *Compound:
		for _, arg := range t.Args {
			if occurs(name, arg, s) {
				return true
			}
		}
	}
	return false
}

package compiler

import (
	"github.com/msto63/bayan/foundation/bayan/logic"
	"github.com/msto63/bayan/foundation/bayan/runtime"
)

// Compound terms read back into host code become objects with these
// two keys; such objects convert back into the same compound term.
const (
	functorKey = "functor"
	argsKey    = "args"
)

// ValueToTerm converts a host value into a ground term. Numbers,
// strings, booleans and null become atoms, arrays become lists.
func ValueToTerm(v runtime.Value) (logic.Term, error) {
	switch v := v.(type) {
	case runtime.Number:
		return logic.Num(float64(v)), nil
	case runtime.String:
		return logic.Str(string(v)), nil
	case runtime.Bool:
		return logic.Bool(bool(v)), nil
	case runtime.Null:
		return logic.Null, nil
	case *runtime.Array:
		elems := make([]logic.Term, len(v.Elems))
		for i, e := range v.Elems {
			t, err := ValueToTerm(e)
			if err != nil {
				return nil, err
			}
			elems[i] = t
		}
		return logic.NewList(elems...), nil
	case *runtime.Object:
		if t, ok, err := objectToCompound(v); ok || err != nil {
			return t, err
		}
	}
	return nil, runtime.TypeErrorf("%s cannot be used as a logic term", runtime.TypeOf(v))
}

func objectToCompound(o *runtime.Object) (logic.Term, bool, error) {
	if o.Class != nil || o.Len() != 2 {
		return nil, false, nil
	}
	f, _ := o.Get(functorKey)
	a, _ := o.Get(argsKey)
	functor, ok := f.(runtime.String)
	args, isArr := a.(*runtime.Array)
	if !ok || !isArr {
		return nil, false, nil
	}
	list, err := ValueToTerm(args)
	if err != nil {
		return nil, true, err
	}
	return logic.NewCompound(string(functor), list.(*logic.Compound).Args...), true, nil
}

// TermToValue converts a term into a host value. Unbound variables
// become undefined.
func TermToValue(t logic.Term) runtime.Value {
	switch t := t.(type) {
	case logic.Atom:
		switch v := t.Value.(type) {
		case float64:
			return runtime.Number(v)
		case string:
			return runtime.String(v)
		case bool:
			return runtime.Bool(v)
		}
		return runtime.NullValue
	case *logic.Compound:
		elems := make([]runtime.Value, len(t.Args))
		for i, a := range t.Args {
			elems[i] = TermToValue(a)
		}
		if t.IsList() {
			return runtime.NewArray(elems...)
		}
		obj := runtime.NewObject(nil)
		obj.Set(functorKey, runtime.String(t.Functor))
		obj.Set(argsKey, runtime.NewArray(elems...))
		return obj
	}
	return runtime.Undef
}

// bindLogicVar stores a solution binding for host code: it updates the
// nearest existing ?name binding or defines one in env
func bindLogicVar(env *runtime.Env, name string, v runtime.Value) {
	if scope, ok := env.Lookup(name); ok {
		if err := scope.Set(name, v); err == nil {
			return
		}
	}
	env.Define(name, v)
}

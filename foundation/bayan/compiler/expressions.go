package compiler

import (
	"github.com/msto63/bayan/foundation/bayan/ast"
	"github.com/msto63/bayan/foundation/bayan/runtime"
)

func constant(v runtime.Value) exprFn {
	return func(*frame) (runtime.Value, error) { return v, nil }
}

func (c *Compiler) compileExpr(e ast.Expr) exprFn {
	switch e := e.(type) {
	case *ast.NumberLit:
		return constant(runtime.Number(e.Value))
	case *ast.StringLit:
		return constant(runtime.String(e.Value))
	case *ast.BoolLit:
		return constant(runtime.Bool(e.Value))
	case *ast.NullLit:
		return constant(runtime.NullValue)
	case *ast.UndefinedLit:
		return constant(runtime.Undef)
	case *ast.Identifier:
		return c.compileIdentifier(e)
	case *ast.LogicVar:
		return compileLogicVarRead(e)
	case *ast.ThisExpr:
		return func(fr *frame) (runtime.Value, error) {
			if v, ok := fr.env.Get("this"); ok {
				return v, nil
			}
			return runtime.Undef, nil
		}
	case *ast.ArrayLit:
		return c.compileArray(e)
	case *ast.ObjectLit:
		return c.compileObject(e)
	case *ast.FunctionLit:
		return c.compileFunctionExpr(e)
	case *ast.UnaryExpr:
		return c.compileUnary(e)
	case *ast.UpdateExpr:
		return c.compileUpdate(e)
	case *ast.BinaryExpr:
		left, right := c.compileExpr(e.Left), c.compileExpr(e.Right)
		return func(fr *frame) (runtime.Value, error) {
			l, err := left(fr)
			if err != nil {
				return nil, err
			}
			r, err := right(fr)
			if err != nil {
				return nil, err
			}
			v, err := runtime.BinaryOp(e.Op, l, r)
			return v, at(e.Pos, err)
		}
	case *ast.LogicalExpr:
		return c.compileLogical(e)
	case *ast.AssignExpr:
		return c.compileAssign(e)
	case *ast.ConditionalExpr:
		cond, then, els := c.compileExpr(e.Cond), c.compileExpr(e.Then), c.compileExpr(e.Else)
		return func(fr *frame) (runtime.Value, error) {
			v, err := cond(fr)
			if err != nil {
				return nil, err
			}
			if runtime.Truthy(v) {
				return then(fr)
			}
			return els(fr)
		}
	case *ast.CallExpr:
		return c.compileCall(e)
	case *ast.MemberExpr:
		object := c.compileExpr(e.Object)
		return func(fr *frame) (runtime.Value, error) {
			obj, err := object(fr)
			if err != nil {
				return nil, err
			}
			v, err := runtime.GetMember(obj, e.Name)
			return v, at(e.Pos, err)
		}
	case *ast.IndexExpr:
		object, index := c.compileExpr(e.Object), c.compileExpr(e.Index)
		return func(fr *frame) (runtime.Value, error) {
			obj, err := object(fr)
			if err != nil {
				return nil, err
			}
			idx, err := index(fr)
			if err != nil {
				return nil, err
			}
			v, err := runtime.GetIndex(obj, idx)
			return v, at(e.Pos, err)
		}
	case *ast.NewExpr:
		callee, args := c.compileExpr(e.Callee), c.compileArgs(e.Args)
		return func(fr *frame) (runtime.Value, error) {
			cls, err := callee(fr)
			if err != nil {
				return nil, err
			}
			vals, err := args(fr)
			if err != nil {
				return nil, err
			}
			v, err := fr.in.Construct(cls, vals)
			return v, at(e.Pos, err)
		}
	case *ast.SuperExpr:
		return c.compileSuperValue(e)

	case *ast.QueryExpr:
		return c.compileQuery(e)
	case *ast.NotExpr:
		return c.compileNot(e)
	case *ast.AggregateExpr:
		return c.compileAggregateExpr(e)
	case *ast.AssertExpr:
		return c.compileAssertExpr(e)
	case *ast.RetractExpr:
		return c.compileRetractExpr(e)
	case *ast.IsExpr:
		return c.compileIsExpr(e)
	case *ast.CutExpr:
		c.errorf(e.Pos, "cut is only allowed in a rule body or query")
		return constant(runtime.Undef)
	case *ast.CompoundTerm:
		c.errorf(e.Pos, "term %s(...) is only allowed in a logic goal", e.Functor)
		return constant(runtime.Undef)
	}
	c.errorf(e.Position(), "unsupported expression %T", e)
	return constant(runtime.Undef)
}

func (c *Compiler) compileIdentifier(e *ast.Identifier) exprFn {
	name := e.Name
	return func(fr *frame) (runtime.Value, error) {
		if v, ok := fr.env.Get(name); ok {
			return v, nil
		}
		return nil, at(e.Pos, runtime.Errorf("%s is not defined", name).WithDetail("kind", "ReferenceError"))
	}
}

// compileLogicVarRead reads the binding a query, aggregate or is
// expression left for ?name
func compileLogicVarRead(e *ast.LogicVar) exprFn {
	name := e.Name
	return func(fr *frame) (runtime.Value, error) {
		if v, ok := fr.env.Get(name); ok {
			return v, nil
		}
		return nil, at(e.Pos, runtime.Errorf("logic variable %s is not bound", name).WithDetail("kind", "ReferenceError"))
	}
}

func (c *Compiler) compileArgs(args []ast.Expr) func(fr *frame) ([]runtime.Value, error) {
	fns := make([]exprFn, len(args))
	for i, a := range args {
		fns[i] = c.compileExpr(a)
	}
	return func(fr *frame) ([]runtime.Value, error) {
		vals := make([]runtime.Value, len(fns))
		for i, fn := range fns {
			v, err := fn(fr)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		return vals, nil
	}
}

func (c *Compiler) compileArray(e *ast.ArrayLit) exprFn {
	elems := c.compileArgs(e.Elements)
	return func(fr *frame) (runtime.Value, error) {
		vals, err := elems(fr)
		if err != nil {
			return nil, err
		}
		return runtime.NewArray(vals...), nil
	}
}

func (c *Compiler) compileObject(e *ast.ObjectLit) exprFn {
	keys := make([]string, len(e.Properties))
	values := make([]exprFn, len(e.Properties))
	named := make([]bool, len(e.Properties))
	for i, p := range e.Properties {
		keys[i] = p.Key
		values[i] = c.compileExpr(p.Value)
		if lit, ok := p.Value.(*ast.FunctionLit); ok && lit.Name == "" {
			named[i] = true
		}
	}
	return func(fr *frame) (runtime.Value, error) {
		obj := runtime.NewObject(nil)
		for i, key := range keys {
			v, err := values[i](fr)
			if err != nil {
				return nil, err
			}
			if fn, ok := v.(*runtime.Function); ok && named[i] {
				fn.Name = key
			}
			obj.Set(key, v)
		}
		return obj, nil
	}
}

func (c *Compiler) compileUnary(e *ast.UnaryExpr) exprFn {
	// typeof of an undeclared name is "undefined" rather than an error
	if id, ok := e.Operand.(*ast.Identifier); ok && e.Op == "typeof" {
		return func(fr *frame) (runtime.Value, error) {
			v, found := fr.env.Get(id.Name)
			if !found {
				v = runtime.Undef
			}
			return runtime.String(runtime.TypeOf(v)), nil
		}
	}
	operand := c.compileExpr(e.Operand)
	return func(fr *frame) (runtime.Value, error) {
		v, err := operand(fr)
		if err != nil {
			return nil, err
		}
		r, err := runtime.UnaryOp(e.Op, v)
		return r, at(e.Pos, err)
	}
}

func (c *Compiler) compileLogical(e *ast.LogicalExpr) exprFn {
	left, right := c.compileExpr(e.Left), c.compileExpr(e.Right)
	and := e.Op == "&&"
	return func(fr *frame) (runtime.Value, error) {
		l, err := left(fr)
		if err != nil {
			return nil, err
		}
		if runtime.Truthy(l) != and {
			return l, nil
		}
		return right(fr)
	}
}

// place is an assignable location resolved once per evaluation
type place struct {
	get func() (runtime.Value, error)
	set func(runtime.Value) error
}

func (c *Compiler) compilePlace(target ast.Expr) func(fr *frame) (place, error) {
	switch t := target.(type) {
	case *ast.Identifier:
		name := t.Name
		return func(fr *frame) (place, error) {
			return place{
				get: func() (runtime.Value, error) {
					if v, ok := fr.env.Get(name); ok {
						return v, nil
					}
					return nil, runtime.Errorf("%s is not defined", name).WithDetail("kind", "ReferenceError")
				},
				set: func(v runtime.Value) error { return fr.env.Set(name, v) },
			}, nil
		}
	case *ast.MemberExpr:
		object := c.compileExpr(t.Object)
		return func(fr *frame) (place, error) {
			obj, err := object(fr)
			if err != nil {
				return place{}, err
			}
			return place{
				get: func() (runtime.Value, error) { return runtime.GetMember(obj, t.Name) },
				set: func(v runtime.Value) error { return runtime.SetMember(obj, t.Name, v) },
			}, nil
		}
	case *ast.IndexExpr:
		object, index := c.compileExpr(t.Object), c.compileExpr(t.Index)
		return func(fr *frame) (place, error) {
			obj, err := object(fr)
			if err != nil {
				return place{}, err
			}
			idx, err := index(fr)
			if err != nil {
				return place{}, err
			}
			return place{
				get: func() (runtime.Value, error) { return runtime.GetIndex(obj, idx) },
				set: func(v runtime.Value) error { return runtime.SetIndex(obj, idx, v) },
			}, nil
		}
	}
	c.errorf(target.Position(), "invalid assignment target")
	return func(*frame) (place, error) { return place{}, runtime.Errorf("invalid assignment target") }
}

func (c *Compiler) compileAssign(e *ast.AssignExpr) exprFn {
	target := c.compilePlace(e.Target)
	value := c.compileExpr(e.Value)
	op := ""
	if e.Op != "=" {
		op = e.Op[:len(e.Op)-1]
	}
	return func(fr *frame) (runtime.Value, error) {
		p, err := target(fr)
		if err != nil {
			return nil, err
		}
		var old runtime.Value
		if op != "" {
			if old, err = p.get(); err != nil {
				return nil, at(e.Pos, err)
			}
		}
		v, err := value(fr)
		if err != nil {
			return nil, err
		}
		if op != "" {
			if v, err = runtime.BinaryOp(op, old, v); err != nil {
				return nil, at(e.Pos, err)
			}
		}
		if err := p.set(v); err != nil {
			return nil, at(e.Pos, err)
		}
		return v, nil
	}
}

func (c *Compiler) compileUpdate(e *ast.UpdateExpr) exprFn {
	target := c.compilePlace(e.Target)
	delta := runtime.Number(1)
	if e.Op == "--" {
		delta = -1
	}
	return func(fr *frame) (runtime.Value, error) {
		p, err := target(fr)
		if err != nil {
			return nil, err
		}
		old, err := p.get()
		if err != nil {
			return nil, at(e.Pos, err)
		}
		n, ok := old.(runtime.Number)
		if !ok {
			return nil, at(e.Pos, runtime.TypeErrorf("cannot apply %s to %s", e.Op, runtime.TypeOf(old)))
		}
		if err := p.set(n + delta); err != nil {
			return nil, at(e.Pos, err)
		}
		if e.Prefix {
			return n + delta, nil
		}
		return n, nil
	}
}

// compileCall passes the receiver of member and index callees as this
func (c *Compiler) compileCall(e *ast.CallExpr) exprFn {
	args := c.compileArgs(e.Args)

	var callee func(fr *frame) (fn, this runtime.Value, err error)
	switch target := e.Callee.(type) {
	case *ast.MemberExpr:
		object := c.compileExpr(target.Object)
		callee = func(fr *frame) (runtime.Value, runtime.Value, error) {
			obj, err := object(fr)
			if err != nil {
				return nil, nil, err
			}
			fn, err := runtime.GetMember(obj, target.Name)
			return fn, obj, at(target.Pos, err)
		}
	case *ast.IndexExpr:
		object, index := c.compileExpr(target.Object), c.compileExpr(target.Index)
		callee = func(fr *frame) (runtime.Value, runtime.Value, error) {
			obj, err := object(fr)
			if err != nil {
				return nil, nil, err
			}
			idx, err := index(fr)
			if err != nil {
				return nil, nil, err
			}
			fn, err := runtime.GetIndex(obj, idx)
			return fn, obj, at(target.Pos, err)
		}
	case *ast.SuperExpr:
		callee = c.compileSuperCallee(target)
	default:
		fnExpr := c.compileExpr(target)
		callee = func(fr *frame) (runtime.Value, runtime.Value, error) {
			fn, err := fnExpr(fr)
			return fn, runtime.Undef, err
		}
	}

	return func(fr *frame) (runtime.Value, error) {
		fn, this, err := callee(fr)
		if err != nil {
			return nil, err
		}
		vals, err := args(fr)
		if err != nil {
			return nil, err
		}
		v, err := fr.in.Call(fn, this, vals)
		return v, at(e.Pos, err)
	}
}

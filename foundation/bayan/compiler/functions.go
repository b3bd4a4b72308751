package compiler

import (
	"github.com/msto63/bayan/foundation/bayan/ast"
	"github.com/msto63/bayan/foundation/bayan/runtime"
)

// homeKey binds the class a method belongs to inside its call scope.
// The name cannot be written in source.
const homeKey = "%home"

// constructorNames are the method names that declare a constructor
var constructorNames = map[string]bool{"constructor": true, "منشئ": true}

// funcMaker creates a closure over fr.env. home is the declaring class
// for methods, nil otherwise.
type funcMaker func(fr *frame, home *runtime.Class) *runtime.Function

// compileFunction compiles a function literal. Arrow functions keep
// the this and super of their defining scope.
func (c *Compiler) compileFunction(lit *ast.FunctionLit, method bool) funcMaker {
	restore := c.enter(scope{
		function: true,
		method:   method || (lit.Arrow && c.sc.method),
		depth:    c.sc.depth + 1,
	})
	var body stmtFn
	var exprBody exprFn
	if lit.Body != nil {
		body = c.compileBlock(lit.Body.Statements)
	} else {
		exprBody = c.compileExpr(lit.Expr)
	}
	restore()

	params := make([]string, len(lit.Params))
	for i, p := range lit.Params {
		params[i] = p.Name
	}
	name, arrow := lit.Name, lit.Arrow

	return func(fr *frame, home *runtime.Class) *runtime.Function {
		closure := fr.env
		in := fr.in
		fn := &runtime.Function{Name: name, Params: params, Home: home}
		fn.Impl = func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			env := runtime.NewEnv(closure)
			if !arrow {
				env.Define("this", this)
			}
			if home != nil {
				env.Define(homeKey, home)
			}
			for i, p := range params {
				if i < len(args) {
					env.Define(p, args[i])
				} else {
					env.Define(p, runtime.Undef)
				}
			}
			call := &frame{in: in, env: env}
			if exprBody != nil {
				return exprBody(call)
			}
			comp, err := body(call)
			if err != nil {
				return nil, err
			}
			if comp.flow == flowReturn {
				return comp.value, nil
			}
			return runtime.Undef, nil
		}
		return fn
	}
}

// compileFunctionExpr binds the name of a named function expression in
// a scope of its own so the body can recurse
func (c *Compiler) compileFunctionExpr(lit *ast.FunctionLit) exprFn {
	mk := c.compileFunction(lit, false)
	if lit.Name == "" || lit.Arrow {
		return func(fr *frame) (runtime.Value, error) {
			return mk(fr, nil), nil
		}
	}
	return func(fr *frame) (runtime.Value, error) {
		env := runtime.NewEnv(fr.env)
		fn := mk(fr.with(env), nil)
		env.DefineConst(lit.Name, fn)
		return fn, nil
	}
}

func (c *Compiler) compileClassDecl(s *ast.ClassDecl) stmtFn {
	name := s.Name.Name
	var super exprFn
	if s.SuperClass != nil {
		super = c.compileExpr(s.SuperClass)
	}

	type method struct {
		name   string
		static bool
		mk     funcMaker
	}
	type property struct {
		name   string
		static bool
		value  exprFn
	}
	var methods []method
	var props []property

	restore := c.enter(scope{method: true, depth: c.sc.depth + 1})
	for _, m := range s.Members {
		if m.Method != nil {
			methods = append(methods, method{name: m.Name, static: m.Static, mk: c.compileFunction(m.Method, true)})
			continue
		}
		p := property{name: m.Name, static: m.Static}
		if m.Value != nil {
			p.value = c.compileExpr(m.Value)
		}
		props = append(props, p)
	}
	restore()

	return func(fr *frame) (completion, error) {
		var parent *runtime.Class
		if super != nil {
			v, err := super(fr)
			if err != nil {
				return normal, err
			}
			cls, ok := v.(*runtime.Class)
			if !ok {
				return normal, at(s.SuperClass.Position(),
					runtime.TypeErrorf("class %s cannot extend %s", name, runtime.TypeOf(v)))
			}
			parent = cls
		}

		cls := runtime.NewClass(name, parent)
		fr.env.Define(name, cls)

		for _, m := range methods {
			fn := m.mk(fr, cls)
			fn.Name = m.name
			switch {
			case m.static:
				cls.Static.Set(m.name, fn)
			case constructorNames[m.name]:
				cls.Constructor = fn
			default:
				cls.Methods[m.name] = fn
			}
		}

		// member initializers see this and super like methods do
		scoped := func(this runtime.Value) *frame {
			env := runtime.NewEnv(fr.env)
			env.Define("this", this)
			env.Define(homeKey, cls)
			return fr.with(env)
		}
		for _, p := range props {
			p := p
			if p.static {
				var v runtime.Value = runtime.Undef
				if p.value != nil {
					var err error
					if v, err = p.value(scoped(cls)); err != nil {
						return normal, err
					}
				}
				cls.Static.Set(p.name, v)
				continue
			}
			field := runtime.Field{Name: p.name}
			if p.value != nil {
				field.Init = func(this runtime.Value) (runtime.Value, error) {
					return p.value(scoped(this))
				}
			}
			cls.Fields = append(cls.Fields, field)
		}
		return normal, nil
	}
}

// superContext resolves the home class and receiver of the running
// method
func superContext(fr *frame, pos ast.Position) (*runtime.Class, runtime.Value, error) {
	v, ok := fr.env.Get(homeKey)
	home, isClass := v.(*runtime.Class)
	if !ok || !isClass {
		return nil, nil, at(pos, runtime.Errorf("super is only valid inside a method"))
	}
	if home.Super == nil {
		return nil, nil, at(pos, runtime.Errorf("class %s has no superclass", home.Name))
	}
	this, _ := fr.env.Get("this")
	if this == nil {
		this = runtime.Undef
	}
	return home, this, nil
}

// compileSuperCallee resolves super(...) to the superclass constructor
// and super.name(...) to the superclass method, both called on this
func (c *Compiler) compileSuperCallee(e *ast.SuperExpr) func(fr *frame) (runtime.Value, runtime.Value, error) {
	if !c.sc.method {
		c.errorf(e.Pos, "super is only valid inside a method")
	}
	return func(fr *frame) (runtime.Value, runtime.Value, error) {
		home, this, err := superContext(fr, e.Pos)
		if err != nil {
			return nil, nil, err
		}
		if e.Name == "" {
			ctor := home.Super.FindConstructor()
			if ctor == nil {
				return runtime.NewNative("constructor", func(runtime.Value, []runtime.Value) (runtime.Value, error) {
					return runtime.Undef, nil
				}), this, nil
			}
			return ctor, this, nil
		}
		if m, ok := home.Super.FindMethod(e.Name); ok {
			return m, this, nil
		}
		return nil, nil, at(e.Pos, runtime.TypeErrorf("superclass %s has no method %s", home.Super.Name, e.Name))
	}
}

// compileSuperValue yields super.name as a function bound to this
func (c *Compiler) compileSuperValue(e *ast.SuperExpr) exprFn {
	callee := c.compileSuperCallee(e)
	return func(fr *frame) (runtime.Value, error) {
		fn, this, err := callee(fr)
		if err != nil {
			return nil, err
		}
		in := fr.in
		return runtime.NewNative(e.Name, func(_ runtime.Value, args []runtime.Value) (runtime.Value, error) {
			return in.Call(fn, this, args)
		}), nil
	}
}

package compiler

import (
	"errors"

	"github.com/msto63/bayan/foundation/bayan/ast"
	"github.com/msto63/bayan/foundation/bayan/runtime"
	mdwerror "github.com/msto63/bayan/foundation/core/error"
)

// hoist compiles the function declarations of a statement list so they
// can be bound before the list runs
func (c *Compiler) hoist(stmts []ast.Stmt) func(fr *frame) error {
	type decl struct {
		name string
		mk   funcMaker
	}
	var decls []decl
	for _, s := range stmts {
		if ex, ok := s.(*ast.ExportStmt); ok {
			s = ex.Decl
		}
		if fd, ok := s.(*ast.FunctionDecl); ok {
			decls = append(decls, decl{name: fd.Func.Name, mk: c.compileFunction(fd.Func, false)})
		}
	}
	return func(fr *frame) error {
		for _, d := range decls {
			fr.env.Define(d.name, d.mk(fr, nil))
		}
		return nil
	}
}

// compileBlock compiles a statement list run in the current env
func (c *Compiler) compileBlock(stmts []ast.Stmt) stmtFn {
	hoisted := c.hoist(stmts)
	fns := make([]stmtFn, 0, len(stmts))
	for _, s := range stmts {
		if fn := c.compileStmt(s); fn != nil {
			fns = append(fns, fn)
		}
	}
	return func(fr *frame) (completion, error) {
		if err := hoisted(fr); err != nil {
			return normal, err
		}
		for _, fn := range fns {
			comp, err := fn(fr)
			if err != nil || comp.flow != flowNormal {
				return comp, err
			}
		}
		return normal, nil
	}
}

// compileScoped compiles a statement that gets its own child scope
func (c *Compiler) compileScoped(s ast.Stmt) stmtFn {
	var body stmtFn
	if b, ok := s.(*ast.BlockStmt); ok {
		restore := c.nested()
		body = c.compileBlock(b.Statements)
		restore()
	} else {
		restore := c.nested()
		body = c.compileStmt(s)
		restore()
		if body == nil {
			return func(*frame) (completion, error) { return normal, nil }
		}
	}
	return func(fr *frame) (completion, error) {
		return body(fr.with(runtime.NewEnv(fr.env)))
	}
}

// compileStmt returns nil for statements with no runtime effect
func (c *Compiler) compileStmt(s ast.Stmt) stmtFn {
	switch s := s.(type) {
	case *ast.EmptyStmt:
		return nil
	case *ast.FunctionDecl:
		return nil // hoisted
	case *ast.ExprStmt:
		x := c.compileExpr(s.X)
		return func(fr *frame) (completion, error) {
			_, err := x(fr)
			return normal, err
		}
	case *ast.VarDecl:
		return c.compileVarDecl(s)
	case *ast.ClassDecl:
		return c.compileClassDecl(s)
	case *ast.BlockStmt:
		return c.compileScoped(s)
	case *ast.IfStmt:
		return c.compileIf(s)
	case *ast.WhileStmt:
		return c.compileWhile(s)
	case *ast.DoWhileStmt:
		return c.compileDoWhile(s)
	case *ast.ForStmt:
		return c.compileFor(s)
	case *ast.ForOfStmt:
		return c.compileForOf(s)
	case *ast.SwitchStmt:
		return c.compileSwitch(s)
	case *ast.ReturnStmt:
		return c.compileReturn(s)
	case *ast.BreakStmt:
		if c.sc.breaks == 0 {
			c.errorf(s.Pos, "break outside loop or switch")
		}
		return func(*frame) (completion, error) { return completion{flow: flowBreak}, nil }
	case *ast.ContinueStmt:
		if c.sc.loops == 0 {
			c.errorf(s.Pos, "continue outside loop")
		}
		return func(*frame) (completion, error) { return completion{flow: flowContinue}, nil }
	case *ast.ThrowStmt:
		value := c.compileExpr(s.Value)
		return func(fr *frame) (completion, error) {
			v, err := value(fr)
			if err != nil {
				return normal, err
			}
			return normal, &runtime.Thrown{Value: v, Line: s.Pos.Line, Column: s.Pos.Column}
		}
	case *ast.TryStmt:
		return c.compileTry(s)
	case *ast.ImportStmt:
		return c.compileImport(s)
	case *ast.ExportStmt:
		return c.compileExport(s)
	case *ast.FactDecl:
		return c.compileFact(s)
	case *ast.RuleDecl:
		return c.compileRule(s)
	}
	c.errorf(s.Position(), "unsupported statement %T", s)
	return nil
}

func (c *Compiler) compileVarDecl(s *ast.VarDecl) stmtFn {
	names := make([]string, len(s.Names))
	inits := make([]exprFn, len(s.Names))
	for i, id := range s.Names {
		names[i] = id.Name
		if i < len(s.Inits) && s.Inits[i] != nil {
			inits[i] = c.compileExpr(s.Inits[i])
		} else if s.Const {
			c.errorf(id.Pos, "missing initializer in const declaration of %s", id.Name)
		}
	}
	return func(fr *frame) (completion, error) {
		for i, name := range names {
			var v runtime.Value = runtime.Undef
			if inits[i] != nil {
				var err error
				if v, err = inits[i](fr); err != nil {
					return normal, err
				}
			}
			if s.Const {
				fr.env.DefineConst(name, v)
			} else {
				fr.env.Define(name, v)
			}
		}
		return normal, nil
	}
}

func (c *Compiler) compileIf(s *ast.IfStmt) stmtFn {
	cond := c.compileExpr(s.Cond)
	then := c.compileScoped(s.Then)
	var els stmtFn
	if s.Else != nil {
		els = c.compileScoped(s.Else)
	}
	return func(fr *frame) (completion, error) {
		v, err := cond(fr)
		if err != nil {
			return normal, err
		}
		if runtime.Truthy(v) {
			return then(fr)
		}
		if els != nil {
			return els(fr)
		}
		return normal, nil
	}
}

// loopBody compiles a loop body with break and continue enabled
func (c *Compiler) loopBody(s ast.Stmt) stmtFn {
	sc := c.sc
	sc.loops++
	sc.breaks++
	restore := c.enter(sc)
	defer restore()
	return c.compileScoped(s)
}

// runIteration runs one loop body. It reports whether the loop must
// stop and the completion to propagate.
func runIteration(body stmtFn, fr *frame) (stop bool, comp completion, err error) {
	if err := fr.in.Check(); err != nil {
		return true, normal, err
	}
	comp, err = body(fr)
	if err != nil {
		return true, normal, err
	}
	switch comp.flow {
	case flowBreak:
		return true, normal, nil
	case flowReturn:
		return true, comp, nil
	}
	return false, normal, nil
}

func (c *Compiler) compileWhile(s *ast.WhileStmt) stmtFn {
	cond := c.compileExpr(s.Cond)
	body := c.loopBody(s.Body)
	return func(fr *frame) (completion, error) {
		for {
			v, err := cond(fr)
			if err != nil {
				return normal, err
			}
			if !runtime.Truthy(v) {
				return normal, nil
			}
			if stop, comp, err := runIteration(body, fr); stop {
				return comp, err
			}
		}
	}
}

func (c *Compiler) compileDoWhile(s *ast.DoWhileStmt) stmtFn {
	body := c.loopBody(s.Body)
	cond := c.compileExpr(s.Cond)
	return func(fr *frame) (completion, error) {
		for {
			if stop, comp, err := runIteration(body, fr); stop {
				return comp, err
			}
			v, err := cond(fr)
			if err != nil {
				return normal, err
			}
			if !runtime.Truthy(v) {
				return normal, nil
			}
		}
	}
}

// compileFor gives every iteration its own copy of the loop variables
// so closures created in the body capture that iteration's values
func (c *Compiler) compileFor(s *ast.ForStmt) stmtFn {
	restore := c.nested()
	defer restore()

	var init stmtFn
	if s.Init != nil {
		init = c.compileStmt(s.Init)
	}
	var cond, update exprFn
	if s.Cond != nil {
		cond = c.compileExpr(s.Cond)
	}
	if s.Update != nil {
		update = c.compileExpr(s.Update)
	}
	body := c.loopBody(s.Body)

	return func(fr *frame) (completion, error) {
		loop := fr.with(runtime.NewEnv(fr.env))
		if init != nil {
			if _, err := init(loop); err != nil {
				return normal, err
			}
		}
		for {
			if cond != nil {
				v, err := cond(loop)
				if err != nil {
					return normal, err
				}
				if !runtime.Truthy(v) {
					return normal, nil
				}
			}
			if stop, comp, err := runIteration(body, loop); stop {
				return comp, err
			}
			loop = loop.with(loop.env.Clone())
			if update != nil {
				if _, err := update(loop); err != nil {
					return normal, err
				}
			}
		}
	}
}

func (c *Compiler) compileForOf(s *ast.ForOfStmt) stmtFn {
	iter := c.compileExpr(s.Iter)
	body := c.loopBody(s.Body)
	name := s.Name.Name
	return func(fr *frame) (completion, error) {
		v, err := iter(fr)
		if err != nil {
			return normal, err
		}
		var items []runtime.Value
		switch v := v.(type) {
		case *runtime.Array:
			items = append(items, v.Elems...)
		case runtime.String:
			for _, r := range string(v) {
				items = append(items, runtime.String(r))
			}
		case *runtime.Object:
			for _, k := range v.Keys() {
				items = append(items, runtime.String(k))
			}
		default:
			return normal, at(s.Iter.Position(), runtime.TypeErrorf("%s is not iterable", runtime.TypeOf(v)))
		}
		for _, item := range items {
			env := runtime.NewEnv(fr.env)
			if s.Const {
				env.DefineConst(name, item)
			} else {
				env.Define(name, item)
			}
			if stop, comp, err := runIteration(body, fr.with(env)); stop {
				return comp, err
			}
		}
		return normal, nil
	}
}

// compileSwitch matches cases with strict equality and falls through
// until a break
func (c *Compiler) compileSwitch(s *ast.SwitchStmt) stmtFn {
	disc := c.compileExpr(s.Disc)
	sc := c.sc
	sc.breaks++
	sc.depth++
	restore := c.enter(sc)
	tests := make([]exprFn, len(s.Cases))
	bodies := make([]stmtFn, len(s.Cases))
	def := -1
	for i, cs := range s.Cases {
		if cs.Test == nil {
			def = i
		} else {
			tests[i] = c.compileExpr(cs.Test)
		}
		bodies[i] = c.compileBlock(cs.Body)
	}
	restore()

	return func(fr *frame) (completion, error) {
		v, err := disc(fr)
		if err != nil {
			return normal, err
		}
		start := def
		for i, test := range tests {
			if test == nil {
				continue
			}
			tv, err := test(fr)
			if err != nil {
				return normal, err
			}
			if runtime.StrictEquals(v, tv) {
				start = i
				break
			}
		}
		if start < 0 {
			return normal, nil
		}
		inner := fr.with(runtime.NewEnv(fr.env))
		for _, body := range bodies[start:] {
			comp, err := body(inner)
			if err != nil {
				return normal, err
			}
			switch comp.flow {
			case flowBreak:
				return normal, nil
			case flowReturn, flowContinue:
				return comp, nil
			}
		}
		return normal, nil
	}
}

func (c *Compiler) compileReturn(s *ast.ReturnStmt) stmtFn {
	if !c.sc.function {
		c.errorf(s.Pos, "return outside function")
	}
	if s.Value == nil {
		return func(*frame) (completion, error) {
			return completion{flow: flowReturn, value: runtime.Undef}, nil
		}
	}
	value := c.compileExpr(s.Value)
	return func(fr *frame) (completion, error) {
		v, err := value(fr)
		if err != nil {
			return normal, err
		}
		return completion{flow: flowReturn, value: v}, nil
	}
}

func (c *Compiler) compileTry(s *ast.TryStmt) stmtFn {
	block := c.compileScoped(s.Block)
	var catch, finally stmtFn
	var param string
	if s.Catch != nil {
		restore := c.nested()
		catch = c.compileBlock(s.Catch.Statements)
		restore()
		if s.CatchParam != nil {
			param = s.CatchParam.Name
		}
	}
	if s.Finally != nil {
		finally = c.compileScoped(s.Finally)
	}

	return func(fr *frame) (completion, error) {
		comp, err := block(fr)
		if err != nil && catch != nil {
			if caught, ok := catchable(err); ok {
				env := runtime.NewEnv(fr.env)
				if param != "" {
					env.Define(param, caught)
				}
				comp, err = catch(fr.with(env))
			}
		}
		if finally != nil {
			fcomp, ferr := finally(fr)
			if ferr != nil {
				return normal, ferr
			}
			if fcomp.flow != flowNormal {
				return fcomp, nil
			}
		}
		return comp, err
	}
}

// catchable converts an error into the value bound by catch. Thrown
// values are caught as is; runtime errors become an error object.
// Cancellation and other host errors are not catchable.
func catchable(err error) (runtime.Value, bool) {
	var thrown *runtime.Thrown
	if errors.As(err, &thrown) {
		return thrown.Value, true
	}
	var e *mdwerror.Error
	if !errors.As(err, &e) || e.Code() != mdwerror.CodeRuntime {
		return nil, false
	}
	kind := "RuntimeError"
	if k, ok := e.Details()["kind"].(string); ok {
		kind = k
	}
	obj := runtime.NewObject(nil)
	obj.Set("message", runtime.String(e.Message()))
	obj.Set("kind", runtime.String(kind))
	line, column, _ := mdwerror.GetPosition(err)
	obj.Set("line", runtime.Number(line))
	obj.Set("column", runtime.Number(column))
	return obj, true
}

func (c *Compiler) compileImport(s *ast.ImportStmt) stmtFn {
	if c.sc.depth > 0 || c.sc.function {
		c.errorf(s.Pos, "import must appear at the top level")
	}
	from := c.name
	names := make([]string, len(s.Names))
	for i, id := range s.Names {
		names[i] = id.Name
	}
	return func(fr *frame) (completion, error) {
		exports, err := fr.in.Import(from, s.Path)
		if err != nil {
			return normal, at(s.Pos, err)
		}
		for _, name := range names {
			v, ok := exports[name]
			if !ok {
				return normal, mdwerror.Newf("module %q has no export named %s", s.Path, name).
					WithCode(mdwerror.CodeImport).
					WithPosition(s.Pos.Line, s.Pos.Column)
			}
			fr.env.DefineConst(name, v)
		}
		return normal, nil
	}
}

func (c *Compiler) compileExport(s *ast.ExportStmt) stmtFn {
	if c.sc.depth > 0 || c.sc.function {
		c.errorf(s.Pos, "export must appear at the top level")
	}
	switch d := s.Decl.(type) {
	case *ast.VarDecl:
		for _, id := range d.Names {
			c.exports = append(c.exports, id.Name)
		}
	case *ast.FunctionDecl:
		c.exports = append(c.exports, d.Func.Name)
	case *ast.ClassDecl:
		c.exports = append(c.exports, d.Name.Name)
	default:
		c.errorf(s.Pos, "only declarations can be exported")
		return nil
	}
	return c.compileStmt(s.Decl)
}

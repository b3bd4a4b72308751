package compiler

import (
	"github.com/msto63/bayan/foundation/bayan/ast"
	"github.com/msto63/bayan/foundation/bayan/logic"
	"github.com/msto63/bayan/foundation/bayan/runtime"
	mdwlog "github.com/msto63/bayan/foundation/core/log"
)

type termFn func(fr *frame) (logic.Term, error)

type goalFn func(fr *frame) (logic.Goal, error)

var aggregateKinds = map[ast.AggregateKind]logic.AggregateKind{
	ast.FindAll: logic.FindAll,
	ast.BagOf:   logic.BagOf,
	ast.SetOf:   logic.SetOf,
}

// compileTerm compiles a term argument. Logic variables become term
// variables unless ground is set, in which case they are rejected.
// Other expressions are host expressions evaluated when the term is
// built.
func (c *Compiler) compileTerm(e ast.Expr, ground bool, what string) termFn {
	switch e := e.(type) {
	case *ast.LogicVar:
		if ground {
			c.errorf(e.Pos, "logic variable %s is not allowed in %s", e.Name, what)
			return func(*frame) (logic.Term, error) { return logic.Null, nil }
		}
		name := e.Name
		if isAnonymous(name) {
			name = c.freshAnonymous()
		}
		v := logic.Var{Name: name}
		return func(*frame) (logic.Term, error) { return v, nil }

	case *ast.CompoundTerm:
		compound := c.compileCompound(e, ground, what)
		return func(fr *frame) (logic.Term, error) {
			t, err := compound(fr)
			if err != nil {
				return nil, err
			}
			return t, nil
		}

	case *ast.ArrayLit:
		elems := make([]termFn, len(e.Elements))
		for i, el := range e.Elements {
			elems[i] = c.compileTerm(el, ground, what)
		}
		return func(fr *frame) (logic.Term, error) {
			ts, err := buildTerms(fr, elems)
			if err != nil {
				return nil, err
			}
			return logic.NewList(ts...), nil
		}
	}

	if ast.ContainsLogicVar(e) {
		if ground {
			c.errorf(e.Position(), "logic variable is not allowed in %s", what)
		} else {
			c.errorf(e.Position(), "logic variable inside an expression argument; compute it with is")
		}
	}
	value := c.compileExpr(e)
	pos := e.Position()
	return func(fr *frame) (logic.Term, error) {
		v, err := value(fr)
		if err != nil {
			return nil, err
		}
		t, err := ValueToTerm(v)
		return t, at(pos, err)
	}
}

func (c *Compiler) compileCompound(e *ast.CompoundTerm, ground bool, what string) func(fr *frame) (*logic.Compound, error) {
	args := make([]termFn, len(e.Args))
	for i, a := range e.Args {
		args[i] = c.compileTerm(a, ground, what)
	}
	functor := e.Functor
	return func(fr *frame) (*logic.Compound, error) {
		ts, err := buildTerms(fr, args)
		if err != nil {
			return nil, err
		}
		return logic.NewCompound(functor, ts...), nil
	}
}

func buildTerms(fr *frame, fns []termFn) ([]logic.Term, error) {
	ts := make([]logic.Term, len(fns))
	for i, fn := range fns {
		t, err := fn(fr)
		if err != nil {
			return nil, err
		}
		ts[i] = t
	}
	return ts, nil
}

func isAnonymous(name string) bool {
	return name == "?_" || (len(name) > 2 && name[:2] == "?_")
}

// compileGoals compiles a conjunction. Host expressions inside the
// goals are evaluated when the goal list is built: at declaration for
// rules, at each evaluation for queries.
func (c *Compiler) compileGoals(goals []ast.Goal) func(fr *frame) ([]logic.Goal, error) {
	fns := make([]goalFn, len(goals))
	for i, g := range goals {
		fns[i] = c.compileGoal(g)
	}
	return func(fr *frame) ([]logic.Goal, error) {
		out := make([]logic.Goal, len(fns))
		for i, fn := range fns {
			g, err := fn(fr)
			if err != nil {
				return nil, err
			}
			out[i] = g
		}
		return out, nil
	}
}

func (c *Compiler) compileGoal(g ast.Goal) goalFn {
	switch g := g.(type) {
	case *ast.CompoundTerm:
		term := c.compileCompound(g, false, "goal")
		return func(fr *frame) (logic.Goal, error) { return term(fr) }

	case *ast.NotExpr:
		inner := c.compileGoal(g.Goal)
		return func(fr *frame) (logic.Goal, error) {
			goal, err := inner(fr)
			if err != nil {
				return nil, err
			}
			return logic.Not{Goal: goal}, nil
		}

	case *ast.CutExpr:
		return func(*frame) (logic.Goal, error) { return logic.Cut{}, nil }

	case *ast.Conjunction:
		goals := c.compileGoals(g.Goals)
		return func(fr *frame) (logic.Goal, error) {
			gs, err := goals(fr)
			if err != nil {
				return nil, err
			}
			return logic.Conj{Goals: gs}, nil
		}

	case *ast.IsExpr:
		return c.compileIsGoal(g)
	case *ast.CompareGoal:
		return c.compileCompareGoal(g)
	case *ast.AggregateExpr:
		return c.compileAggregateGoal(g)
	case *ast.AssertExpr:
		return c.compileUpdateGoal("assert", g.Term, g.Pos)
	case *ast.RetractExpr:
		return c.compileUpdateGoal("retract", g.Term, g.Pos)
	}
	c.errorf(g.Position(), "unsupported goal %T", g)
	return func(*frame) (logic.Goal, error) { return logic.Cut{}, nil }
}

// goalVars compiles the logic variables a host expression inside a goal
// reads. Anonymous variables cannot be read.
func (c *Compiler) goalVars(exprs ...ast.Expr) []string {
	var names []string
	seen := make(map[string]bool)
	for _, e := range exprs {
		for _, name := range ast.LogicVars(e) {
			if isAnonymous(name) {
				c.errorf(e.Position(), "anonymous variable cannot be used in an expression")
				continue
			}
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// goalScope makes the current bindings of names visible to host code
// as ?name. Every variable must be bound to a ground term.
func goalScope(decl *frame, names []string, args []logic.Term, s *logic.Subst, pos ast.Position) (*frame, error) {
	env := runtime.NewEnv(decl.env)
	for i, name := range names {
		t := s.Apply(args[i])
		if !logic.IsGround(t) {
			return nil, at(pos, runtime.Errorf("%s is not sufficiently instantiated", name).
				WithDetail("kind", "InstantiationError"))
		}
		env.Define(name, TermToValue(t))
	}
	return decl.with(env), nil
}

func varTerms(names []string) []logic.Term {
	ts := make([]logic.Term, len(names))
	for i, name := range names {
		ts[i] = logic.Var{Name: name}
	}
	return ts
}

// compileIsGoal evaluates the right side as a host expression with the
// goal's bindings and unifies the result with the left side
func (c *Compiler) compileIsGoal(g *ast.IsExpr) goalFn {
	left := c.compileTerm(g.Left, false, "is")
	names := c.goalVars(g.Right)
	right := c.compileExpr(g.Right)

	return func(fr *frame) (logic.Goal, error) {
		lt, err := left(fr)
		if err != nil {
			return nil, err
		}
		decl := fr
		return &logic.Builtin{
			Name: "is",
			Args: append([]logic.Term{lt}, varTerms(names)...),
			Call: func(args []logic.Term, s *logic.Subst) (*logic.Subst, bool, error) {
				scope, err := goalScope(decl, names, args[1:], s, g.Pos)
				if err != nil {
					return nil, false, err
				}
				v, err := right(scope)
				if err != nil {
					return nil, false, err
				}
				t, err := ValueToTerm(v)
				if err != nil {
					return nil, false, at(g.Pos, err)
				}
				next, ok := logic.Unify(args[0], t, s)
				return next, ok, nil
			},
		}, nil
	}
}

// compileCompareGoal compares two host expressions. Equality is
// structural so bound compound terms compare by value.
func (c *Compiler) compileCompareGoal(g *ast.CompareGoal) goalFn {
	names := c.goalVars(g.Left, g.Right)
	left, right := c.compileExpr(g.Left), c.compileExpr(g.Right)

	return func(fr *frame) (logic.Goal, error) {
		decl := fr
		return &logic.Builtin{
			Name: g.Op,
			Args: varTerms(names),
			Call: func(args []logic.Term, s *logic.Subst) (*logic.Subst, bool, error) {
				scope, err := goalScope(decl, names, args, s, g.Pos)
				if err != nil {
					return nil, false, err
				}
				l, err := left(scope)
				if err != nil {
					return nil, false, err
				}
				r, err := right(scope)
				if err != nil {
					return nil, false, err
				}
				switch g.Op {
				case "==", "===":
					return s, runtime.DeepEquals(l, r), nil
				case "!=", "!==":
					return s, !runtime.DeepEquals(l, r), nil
				}
				v, err := runtime.BinaryOp(g.Op, l, r)
				if err != nil {
					return nil, false, at(g.Pos, err)
				}
				return s, runtime.Truthy(v), nil
			},
		}, nil
	}
}

func (c *Compiler) compileAggregateGoal(g *ast.AggregateExpr) goalFn {
	template := c.compileTerm(g.Template, false, "aggregate template")
	inner := c.compileGoal(g.Goal)
	result := g.Result.Name
	if isAnonymous(result) {
		result = c.freshAnonymous()
	}
	kind := aggregateKinds[g.Kind]

	return func(fr *frame) (logic.Goal, error) {
		t, err := template(fr)
		if err != nil {
			return nil, err
		}
		goal, err := inner(fr)
		if err != nil {
			return nil, err
		}
		return &logic.Aggregate{Kind: kind, Template: t, Goal: goal, Result: logic.Var{Name: result}}, nil
	}
}

// compileUpdateGoal lowers assert and retract inside goals. Variables
// in the term must be bound when the goal runs.
func (c *Compiler) compileUpdateGoal(op string, term *ast.CompoundTerm, pos ast.Position) goalFn {
	head := c.compileCompound(term, false, op)
	return func(fr *frame) (logic.Goal, error) {
		h, err := head(fr)
		if err != nil {
			return nil, err
		}
		db := fr.in.DB
		return &logic.Builtin{
			Name: op,
			Args: []logic.Term{h},
			Call: func(args []logic.Term, s *logic.Subst) (*logic.Subst, bool, error) {
				applied, _ := s.Apply(args[0]).(*logic.Compound)
				if applied == nil || !logic.IsGround(applied) {
					return nil, false, at(pos, runtime.Errorf("%s needs a ground term, got %s", op, s.Apply(args[0])).
						WithDetail("kind", "InstantiationError"))
				}
				if op == "retract" {
					return s, db.Retract(applied), nil
				}
				if err := db.AssertFact(applied); err != nil {
					return nil, false, at(pos, err)
				}
				return s, true, nil
			},
		}, nil
	}
}

func (c *Compiler) compileFact(s *ast.FactDecl) stmtFn {
	head := c.compileCompound(s.Head, true, "a fact")
	return func(fr *frame) (completion, error) {
		h, err := head(fr)
		if err != nil {
			return normal, err
		}
		if err := fr.in.DB.AssertFact(h); err != nil {
			return normal, at(s.Pos, err)
		}
		fr.in.Logger.Trace("fact asserted", mdwlog.Fields{"fact": h.String()})
		return normal, nil
	}
}

// compileRule builds the clause when the declaration runs. Host
// expressions in the head and body are evaluated once, then.
func (c *Compiler) compileRule(s *ast.RuleDecl) stmtFn {
	head := c.compileCompound(s.Head, false, "a rule head")
	body := c.compileGoals(s.Body)
	return func(fr *frame) (completion, error) {
		h, err := head(fr)
		if err != nil {
			return normal, err
		}
		goals, err := body(fr)
		if err != nil {
			return normal, err
		}
		clause := &logic.Clause{Head: h, Body: goals}
		fr.in.DB.Assert(clause)
		fr.in.Logger.Trace("rule asserted", mdwlog.Fields{"rule": clause.String()})
		return normal, nil
	}
}

// compileQuery proves the goals and binds the first solution's
// variables in the current scope. On failure they become undefined.
func (c *Compiler) compileQuery(e *ast.QueryExpr) exprFn {
	goals := c.compileGoals(e.Goals)
	return func(fr *frame) (runtime.Value, error) {
		gs, err := goals(fr)
		if err != nil {
			return nil, err
		}
		solver := logic.NewSolver(fr.in.DB, gs, fr.in.SolverOptions())
		found := solver.Next()
		if err := solver.Err(); err != nil {
			return nil, at(e.Pos, err)
		}
		var sol logic.Solution
		if found {
			sol = solver.Solution()
		}
		for _, name := range solver.Vars() {
			var v runtime.Value = runtime.Undef
			if t, ok := sol[name]; ok {
				v = TermToValue(t)
			}
			bindLogicVar(fr.env, name, v)
		}
		fr.in.Logger.Trace("query", mdwlog.Fields{"found": found, "solution": sol.String()})
		return runtime.Bool(found), nil
	}
}

func (c *Compiler) compileNot(e *ast.NotExpr) exprFn {
	goal := c.compileGoal(e.Goal)
	return func(fr *frame) (runtime.Value, error) {
		g, err := goal(fr)
		if err != nil {
			return nil, err
		}
		_, found, err := logic.First(fr.in.DB, []logic.Goal{g}, fr.in.SolverOptions())
		if err != nil {
			return nil, at(e.Pos, err)
		}
		return runtime.Bool(!found), nil
	}
}

// compileAggregateExpr binds the collected list to the result variable
// and returns it. bagof and setof without solutions yield undefined.
func (c *Compiler) compileAggregateExpr(e *ast.AggregateExpr) exprFn {
	goal := c.compileGoal(e)
	bind := !isAnonymous(e.Result.Name)
	return func(fr *frame) (runtime.Value, error) {
		g, err := goal(fr)
		if err != nil {
			return nil, err
		}
		agg := g.(*logic.Aggregate)
		solver := logic.NewSolver(fr.in.DB, []logic.Goal{agg}, fr.in.SolverOptions())
		found := solver.Next()
		if err := solver.Err(); err != nil {
			return nil, at(e.Pos, err)
		}
		var v runtime.Value = runtime.Undef
		if found {
			v = TermToValue(solver.Subst().Apply(agg.Result))
		}
		if bind {
			bindLogicVar(fr.env, e.Result.Name, v)
		}
		return v, nil
	}
}

func (c *Compiler) compileAssertExpr(e *ast.AssertExpr) exprFn {
	head := c.compileCompound(e.Term, true, "assert")
	return func(fr *frame) (runtime.Value, error) {
		h, err := head(fr)
		if err != nil {
			return nil, err
		}
		if err := fr.in.DB.AssertFact(h); err != nil {
			return nil, at(e.Pos, err)
		}
		return runtime.True, nil
	}
}

func (c *Compiler) compileRetractExpr(e *ast.RetractExpr) exprFn {
	head := c.compileCompound(e.Term, true, "retract")
	return func(fr *frame) (runtime.Value, error) {
		h, err := head(fr)
		if err != nil {
			return nil, err
		}
		return runtime.Bool(fr.in.DB.Retract(h)), nil
	}
}

// compileIsExpr unifies a host-side pattern with the value of the right
// side. Pattern variables already bound in scope stand for their
// values; the others are bound on success.
func (c *Compiler) compileIsExpr(e *ast.IsExpr) exprFn {
	pattern := c.compilePattern(e.Left)
	right := c.compileExpr(e.Right)
	return func(fr *frame) (runtime.Value, error) {
		lt, err := pattern(fr)
		if err != nil {
			return nil, err
		}
		v, err := right(fr)
		if err != nil {
			return nil, err
		}
		rt, err := ValueToTerm(v)
		if err != nil {
			return nil, at(e.Pos, err)
		}
		s, ok := logic.Unify(lt, rt, nil)
		if !ok {
			return runtime.False, nil
		}
		for _, name := range logic.Vars(lt) {
			if !isAnonymous(name) {
				bindLogicVar(fr.env, name, TermToValue(s.Apply(logic.Var{Name: name})))
			}
		}
		return runtime.True, nil
	}
}

// compilePattern compiles the left side of a host is expression
func (c *Compiler) compilePattern(e ast.Expr) termFn {
	switch e := e.(type) {
	case *ast.LogicVar:
		name := e.Name
		if isAnonymous(name) {
			v := logic.Var{Name: c.freshAnonymous()}
			return func(*frame) (logic.Term, error) { return v, nil }
		}
		return func(fr *frame) (logic.Term, error) {
			if v, ok := fr.env.Get(name); ok && v != runtime.Undef {
				return ValueToTerm(v)
			}
			return logic.Var{Name: name}, nil
		}
	case *ast.ArrayLit:
		elems := make([]termFn, len(e.Elements))
		for i, el := range e.Elements {
			elems[i] = c.compilePattern(el)
		}
		return func(fr *frame) (logic.Term, error) {
			ts, err := buildTerms(fr, elems)
			if err != nil {
				return nil, err
			}
			return logic.NewList(ts...), nil
		}
	}
	value := c.compileExpr(e)
	pos := e.Position()
	return func(fr *frame) (logic.Term, error) {
		v, err := value(fr)
		if err != nil {
			return nil, err
		}
		t, err := ValueToTerm(v)
		return t, at(pos, err)
	}
}

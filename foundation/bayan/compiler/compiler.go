// File: compiler.go
// Title: Bayan Code Generator
// Description: Lowers a parsed program into a tree of Go closures bound
//              to the runtime. Ordinary statements map onto Go control
//              flow; logic statements and expressions lower into goals
//              for the resolution engine. Shape errors the parser cannot
//              see (cut outside a query, return outside a function, ...)
//              are collected as positioned compile errors.
// Version: v0.1.0
// Created: 2025-10-03
// Modified: 2025-10-03
//
// Change History:
// - 2025-10-03 v0.1.0: Initial implementation

package compiler

import (
	"errors"
	"fmt"

	"github.com/msto63/bayan/foundation/bayan/ast"
	"github.com/msto63/bayan/foundation/bayan/parser"
	"github.com/msto63/bayan/foundation/bayan/runtime"
	mdwerror "github.com/msto63/bayan/foundation/core/error"
	mdwlog "github.com/msto63/bayan/foundation/core/log"
)

// frame is the execution context threaded through compiled closures
type frame struct {
	in  *runtime.Interp
	env *runtime.Env
}

func (fr *frame) with(env *runtime.Env) *frame {
	return &frame{in: fr.in, env: env}
}

type exprFn func(fr *frame) (runtime.Value, error)

type stmtFn func(fr *frame) (completion, error)

type flow int

const (
	flowNormal flow = iota
	flowReturn
	flowBreak
	flowContinue
)

// completion reports how a statement finished
type completion struct {
	flow  flow
	value runtime.Value
}

var normal = completion{}

// scope tracks the syntactic context while compiling
type scope struct {
	function bool // inside a function body
	method   bool // inside a method, where super is valid
	loops    int  // enclosing loops (continue targets)
	breaks   int  // enclosing loops and switches (break targets)
	depth    int  // block nesting; 0 is the module top level
}

// Options configures a Compiler
type Options struct {
	Logger *mdwlog.Logger
}

// Compiler turns ASTs into executable units. A Compiler may be reused
// but not shared between goroutines.
type Compiler struct {
	logger  *mdwlog.Logger
	name    string
	errs    parser.ErrorList
	sc      scope
	exports []string
	anon    int
}

// New creates a compiler
func New(opts Options) *Compiler {
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}
	return &Compiler{logger: opts.Logger.WithField("component", "compiler")}
}

// Compile compiles a program with a default compiler
func Compile(prog *ast.Program) (*Unit, error) {
	return New(Options{}).Compile(prog)
}

// Unit is an executable compiled program
type Unit struct {
	Name    string
	Program *ast.Program
	// Exports lists the names marked with export, in source order
	Exports []string

	run func(fr *frame) (runtime.Value, error)
}

// Run executes the unit in env, which becomes the top-level scope of
// the program. The result is the value of the last top-level
// expression statement, or undefined.
func (u *Unit) Run(in *runtime.Interp, env *runtime.Env) (runtime.Value, error) {
	if env == nil {
		env = in.Globals
	}
	return u.run(&frame{in: in, env: env})
}

// Compile lowers prog into a Unit. The returned error is a
// parser.ErrorList holding every compile error.
func (c *Compiler) Compile(prog *ast.Program) (*Unit, error) {
	c.reset(prog.Name)
	timer := c.logger.StartTimer("compile")
	body := c.compileTopLevel(prog.Statements)
	timer.WithField("statements", len(prog.Statements)).Stop()

	if err := c.errs.Err(); err != nil {
		c.logger.Debug("compilation failed", mdwlog.Fields{"errors": len(c.errs)})
		return nil, err
	}
	return &Unit{Name: prog.Name, Program: prog, Exports: c.exports, run: body}, nil
}

// CompileStatement compiles a single top-level statement, for hosts
// that evaluate a program one statement at a time
func (c *Compiler) CompileStatement(stmt ast.Stmt) (*Unit, error) {
	return c.Compile(&ast.Program{Statements: []ast.Stmt{stmt}})
}

func (c *Compiler) reset(name string) {
	c.name = name
	c.errs = nil
	c.sc = scope{}
	c.exports = nil
	c.anon = 0
}

func (c *Compiler) errorf(pos ast.Position, format string, args ...interface{}) {
	c.errs = append(c.errs, mdwerror.Newf(format, args...).
		WithCode(mdwerror.CodeCompile).
		WithPosition(pos.Line, pos.Column))
}

// enter swaps in a new syntactic scope and returns a func restoring
// the previous one
func (c *Compiler) enter(sc scope) func() {
	saved := c.sc
	c.sc = sc
	return func() { c.sc = saved }
}

func (c *Compiler) nested() func() {
	sc := c.sc
	sc.depth++
	return c.enter(sc)
}

// compileTopLevel compiles module statements. Expression statements
// record their value as the unit result.
func (c *Compiler) compileTopLevel(stmts []ast.Stmt) func(fr *frame) (runtime.Value, error) {
	hoisted := c.hoist(stmts)
	type step struct {
		expr exprFn
		stmt stmtFn
	}
	steps := make([]step, 0, len(stmts))
	for _, s := range stmts {
		if es, ok := s.(*ast.ExprStmt); ok {
			steps = append(steps, step{expr: c.compileExpr(es.X)})
			continue
		}
		if fn := c.compileStmt(s); fn != nil {
			steps = append(steps, step{stmt: fn})
		}
	}

	return func(fr *frame) (runtime.Value, error) {
		if err := hoisted(fr); err != nil {
			return nil, err
		}
		var last runtime.Value = runtime.Undef
		for _, st := range steps {
			if st.expr != nil {
				v, err := st.expr(fr)
				if err != nil {
					return nil, err
				}
				last = v
				continue
			}
			if _, err := st.stmt(fr); err != nil {
				return nil, err
			}
		}
		return last, nil
	}
}

// at attaches pos to err unless it already carries a position
func at(pos ast.Position, err error) error {
	if err == nil || !pos.IsValid() {
		return err
	}
	var thrown *runtime.Thrown
	if errors.As(err, &thrown) {
		if thrown.Line == 0 {
			thrown.Line, thrown.Column = pos.Line, pos.Column
		}
		return err
	}
	var e *mdwerror.Error
	if errors.As(err, &e) {
		if _, _, ok := mdwerror.GetPosition(err); !ok {
			e.WithPosition(pos.Line, pos.Column)
		}
		return err
	}
	return runtime.Errorf("%v", err).WithPosition(pos.Line, pos.Column)
}

func (c *Compiler) freshAnonymous() string {
	c.anon++
	return fmt.Sprintf("?_%d", c.anon)
}

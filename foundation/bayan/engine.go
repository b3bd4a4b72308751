// File: engine.go
// Title: Bayan High-Level Engine Interface
// Description: Ties the tokenizer, parser, code generator and runtime
//              together behind one session object. A session keeps its
//              global scope and logic database between runs so hosts can
//              evaluate a program piecewise or persist its facts.
// Version: v0.1.1
// Created: 2025-10-04
// Modified: 2025-10-05
//
// Change History:
// - 2025-10-04 v0.1.0: Initial engine with run results and module loading
// - 2025-10-05 v0.1.1: Uncaught throw values surface as THROW errors

package bayan

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/msto63/bayan/foundation/bayan/ast"
	"github.com/msto63/bayan/foundation/bayan/compiler"
	"github.com/msto63/bayan/foundation/bayan/logic"
	"github.com/msto63/bayan/foundation/bayan/parser"
	"github.com/msto63/bayan/foundation/bayan/runtime"
	mdwerror "github.com/msto63/bayan/foundation/core/error"
	mdwlog "github.com/msto63/bayan/foundation/core/log"
	"github.com/msto63/bayan/pkg/core/cache"
)

// Options configures an Engine
type Options struct {
	Logger *mdwlog.Logger
	// Out receives program output in addition to Result.Output
	Out io.Writer
	// DB is the logic database of the session; a new one is created
	// when nil
	DB *logic.Database
	// ModulePaths are searched for imports that do not resolve next to
	// the importing file
	ModulePaths []string
	// ModuleCache holds compiled modules. Engines may share one cache.
	ModuleCache     *cache.Cache
	ModuleCacheTTL  time.Duration
	MaxSourceLength int
	MaxCallDepth    int
}

// DefaultModuleCacheTTL is used when neither a cache nor a TTL is given
const DefaultModuleCacheTTL = 10 * time.Minute

// Result describes a completed run
type Result struct {
	RunID    string
	Name     string
	Value    runtime.Value
	Output   string
	Duration time.Duration
}

// Engine is one Bayan session. It is not safe for concurrent use; hosts
// serving parallel requests create an engine per request.
type Engine struct {
	logger  *mdwlog.Logger
	options Options
	parser  *parser.Parser
	interp  *runtime.Interp
	modules *moduleLoader
	out     *bytes.Buffer
}

// New creates an engine with an empty global scope
func New(opts Options) (*Engine, error) {
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}
	if opts.DB == nil {
		opts.DB = logic.NewDatabase()
	}
	if opts.ModuleCacheTTL <= 0 {
		opts.ModuleCacheTTL = DefaultModuleCacheTTL
	}
	if opts.ModuleCache == nil {
		opts.ModuleCache = cache.New(cache.Config{MaxItems: 256, TTL: opts.ModuleCacheTTL})
	}

	logger := opts.Logger.WithField("component", "bayan-engine")

	p, err := parser.New(parser.Options{
		Logger:         logger,
		MaxInputLength: opts.MaxSourceLength,
	})
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to initialize parser")
	}

	e := &Engine{
		logger:  logger,
		options: opts,
		parser:  p,
		out:     &bytes.Buffer{},
	}
	e.modules = newModuleLoader(e)
	e.interp = e.newInterp()

	logger.Debug("engine initialized", mdwlog.Fields{
		"modulePaths":     opts.ModulePaths,
		"maxSourceLength": opts.MaxSourceLength,
		"moduleCacheTTL":  opts.ModuleCacheTTL.String(),
	})
	return e, nil
}

func (e *Engine) newInterp() *runtime.Interp {
	var out io.Writer = e.out
	if e.options.Out != nil {
		out = io.MultiWriter(e.out, e.options.Out)
	}
	return runtime.New(runtime.Options{
		Out:          out,
		Logger:       e.logger,
		DB:           e.options.DB,
		MaxCallDepth: e.options.MaxCallDepth,
		Importer:     e.modules.load,
	})
}

// Tokenize splits source text into tokens
func (e *Engine) Tokenize(src string) ([]parser.Token, error) {
	return parser.TokenizeInput(src)
}

// Parse parses source text. The error is a parser.ErrorList holding
// every syntax error found.
func (e *Engine) Parse(src string) (*ast.Program, error) {
	return e.parser.Parse(src)
}

// Compile lowers a parsed program into an executable unit
func (e *Engine) Compile(prog *ast.Program) (*compiler.Unit, error) {
	return compiler.New(compiler.Options{Logger: e.logger}).Compile(prog)
}

// EvalStatement compiles and runs a single statement in env, or in the
// session globals when env is nil
func (e *Engine) EvalStatement(stmt ast.Stmt, env *runtime.Env) (runtime.Value, error) {
	unit, err := compiler.New(compiler.Options{Logger: e.logger}).CompileStatement(stmt)
	if err != nil {
		return nil, err
	}
	v, err := unit.Run(e.interp, env)
	return v, surfaceThrow(err)
}

// Run parses, compiles and executes src in the session globals. name
// identifies the program in diagnostics; a file path also anchors
// relative imports. The result is returned even when the run fails so
// callers can show partial output.
func (e *Engine) Run(ctx context.Context, name, src string) (*Result, error) {
	res := &Result{RunID: uuid.New().String(), Name: name, Value: runtime.Undef}
	logger := e.logger.WithField("runID", res.RunID)
	start := time.Now()
	e.out.Reset()
	defer func() {
		res.Duration = time.Since(start)
		res.Output = e.out.String()
	}()

	timer := logger.StartTimer("parse")
	prog, err := e.parser.Parse(src)
	timer.Stop()
	if err != nil {
		logger.Warn("parse failed", mdwlog.Fields{"name": name, "error": err.Error()})
		return res, err
	}
	prog.Name = name

	unit, err := e.Compile(prog)
	if err != nil {
		logger.Warn("compile failed", mdwlog.Fields{"name": name, "error": err.Error()})
		return res, err
	}

	e.interp.SetContext(ctx)
	defer e.interp.SetContext(context.Background())
	if filepath.IsAbs(name) {
		e.modules.loading[name] = true
		defer delete(e.modules.loading, name)
	}
	timer = logger.StartTimer("execute")
	v, err := unit.Run(e.interp, nil)
	timer.Stop()
	if err != nil {
		err = surfaceThrow(err)
		logger.Warn("run failed", mdwlog.Fields{
			"name":  name,
			"code":  mdwerror.GetCode(err).String(),
			"error": err.Error(),
		})
		return res, err
	}

	res.Value = v
	logger.Info("run completed", mdwlog.Fields{
		"name":     name,
		"duration": time.Since(start).String(),
		"facts":    e.options.DB.Len(),
	})
	return res, nil
}

// RunFile runs the program stored at path
func (e *Engine) RunFile(ctx context.Context, path string) (*Result, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, mdwerror.Wrap(err, "cannot resolve program path").WithCode(mdwerror.CodeInvalidInput)
	}
	src, err := os.ReadFile(abs)
	if err != nil {
		return nil, mdwerror.Wrap(err, "cannot read program").
			WithCode(mdwerror.CodeNotFound).
			WithDetail("path", path)
	}
	return e.Run(ctx, abs, string(src))
}

// Globals returns the session's top-level scope
func (e *Engine) Globals() *runtime.Env {
	return e.interp.Globals
}

// Database returns the session's logic database
func (e *Engine) Database() *logic.Database {
	return e.options.DB
}

// Reset drops the session globals and loaded modules. The logic
// database is kept; clear it through Database when needed.
func (e *Engine) Reset() {
	e.modules.reset()
	e.interp = e.newInterp()
}

// surfaceThrow turns an uncaught throw into a structured THROW error.
// The thrown value is kept, rendered, in the "value" detail.
func surfaceThrow(err error) error {
	var thrown *runtime.Thrown
	if err == nil || !errors.As(err, &thrown) {
		return err
	}
	out := mdwerror.Newf("uncaught exception %s", runtime.Inspect(thrown.Value)).
		WithCode(mdwerror.CodeThrow).
		WithDetail("value", runtime.Inspect(thrown.Value))
	if thrown.Line > 0 {
		out.WithPosition(thrown.Line, thrown.Column)
	}
	return out
}

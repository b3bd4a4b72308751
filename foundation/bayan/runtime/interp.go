// File: interp.go
// Title: Bayan Interpreter State
// Description: Per-run interpreter state shared by compiled code: the
//              builtin scope, the logic database, program output, call
//              depth accounting, cancellation and module imports.
// Version: v0.1.0
// Created: 2025-10-02
// Modified: 2025-10-02
//
// Change History:
// - 2025-10-02 v0.1.0: Initial implementation

package runtime

import (
	"context"
	"io"
	"os"

	"github.com/msto63/bayan/foundation/bayan/logic"
	mdwerror "github.com/msto63/bayan/foundation/core/error"
	mdwlog "github.com/msto63/bayan/foundation/core/log"
)

// DefaultMaxCallDepth bounds nested function calls
const DefaultMaxCallDepth = 2000

// Importer loads a module. from is the name of the importing module,
// path the string in the import statement. It returns the module's
// exported bindings.
type Importer func(ctx context.Context, from, path string) (map[string]Value, error)

// Options configures an Interp
type Options struct {
	Out          io.Writer // print output; defaults to os.Stdout
	Logger       *mdwlog.Logger
	DB           *logic.Database // defaults to a new empty database
	MaxCallDepth int
	Importer     Importer
}

// Interp is the shared state of one program run. It is not safe for
// concurrent use.
type Interp struct {
	// Builtins holds the native library; it is the parent of every
	// module scope
	Builtins *Env
	// Globals is the top-level scope of the main program
	Globals *Env
	DB      *logic.Database
	Out     io.Writer
	Logger  *mdwlog.Logger

	importer Importer
	maxDepth int
	depth    int
	ctx      context.Context
}

// New creates an interpreter with the builtin library installed
func New(opts Options) *Interp {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}
	if opts.DB == nil {
		opts.DB = logic.NewDatabase()
	}
	if opts.MaxCallDepth <= 0 {
		opts.MaxCallDepth = DefaultMaxCallDepth
	}

	in := &Interp{
		DB:       opts.DB,
		Out:      opts.Out,
		Logger:   opts.Logger.WithField("component", "runtime"),
		importer: opts.Importer,
		maxDepth: opts.MaxCallDepth,
		ctx:      context.Background(),
	}
	in.Builtins = NewEnv(nil)
	installBuiltins(in)
	in.Globals = NewEnv(in.Builtins)
	return in
}

// SetContext sets the context checked for cancellation during calls,
// loops and resolution
func (in *Interp) SetContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	in.ctx = ctx
}

// Context returns the current run context
func (in *Interp) Context() context.Context {
	return in.ctx
}

// Check reports cancellation of the run context as a structured error
func (in *Interp) Check() error {
	if err := in.ctx.Err(); err != nil {
		code := mdwerror.CodeCanceled
		if err == context.DeadlineExceeded {
			code = mdwerror.CodeTimeout
		}
		return mdwerror.Wrap(err, "execution interrupted").WithCode(code)
	}
	return nil
}

// SolverOptions returns logic solver options wired to this run's
// cancellation
func (in *Interp) SolverOptions() logic.SolverOptions {
	return logic.SolverOptions{Check: in.Check}
}

// Call invokes fn with the given receiver and arguments
func (in *Interp) Call(fn Value, this Value, args []Value) (Value, error) {
	f, ok := fn.(*Function)
	if !ok {
		if c, isClass := fn.(*Class); isClass {
			return nil, TypeErrorf("class %s cannot be invoked without new", c.Name)
		}
		return nil, TypeErrorf("%s is not a function", Inspect(fn))
	}
	if in.depth >= in.maxDepth {
		return nil, Errorf("maximum call depth %d exceeded", in.maxDepth)
	}
	if err := in.Check(); err != nil {
		return nil, err
	}

	in.depth++
	defer func() { in.depth-- }()

	if this == nil {
		this = Undef
	}
	result, err := f.Impl(this, args)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return Undef, nil
	}
	return result, nil
}

// Construct creates an instance of a class. Field initializers run from
// the root class down, then the nearest constructor is called.
func (in *Interp) Construct(callee Value, args []Value) (Value, error) {
	cls, ok := callee.(*Class)
	if !ok {
		return nil, TypeErrorf("%s is not a constructor", Inspect(callee))
	}

	obj := NewObject(cls)
	var chain []*Class
	for cur := cls; cur != nil; cur = cur.Super {
		chain = append(chain, cur)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		for _, f := range chain[i].Fields {
			var v Value = Undef
			if f.Init != nil {
				var err error
				if v, err = f.Init(obj); err != nil {
					return nil, err
				}
			}
			obj.Set(f.Name, v)
		}
	}

	if ctor := cls.FindConstructor(); ctor != nil {
		if _, err := in.Call(ctor, obj, args); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

// Import loads a module through the configured importer
func (in *Interp) Import(from, path string) (map[string]Value, error) {
	if in.importer == nil {
		return nil, mdwerror.Newf("cannot import %q: no module loader configured", path).
			WithCode(mdwerror.CodeImport)
	}
	in.Logger.Debug("importing module", mdwlog.Fields{"from": from, "path": path})
	return in.importer(in.ctx, from, path)
}

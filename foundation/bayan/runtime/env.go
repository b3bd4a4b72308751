package runtime

// binding is one variable slot
type binding struct {
	value    Value
	constant bool
}

// Env is a lexical scope. Lookups walk the parent chain; closures keep
// the Env they were created in alive.
type Env struct {
	vars   map[string]*binding
	parent *Env
}

// NewEnv creates a scope nested in parent (nil for a root scope)
func NewEnv(parent *Env) *Env {
	return &Env{vars: make(map[string]*binding), parent: parent}
}

// Parent returns the enclosing scope
func (e *Env) Parent() *Env {
	return e.parent
}

// Define creates or replaces a mutable variable in this scope
func (e *Env) Define(name string, v Value) {
	e.vars[name] = &binding{value: v}
}

// DefineConst creates a constant in this scope
func (e *Env) DefineConst(name string, v Value) {
	e.vars[name] = &binding{value: v, constant: true}
}

// Has reports whether name is declared in this scope itself
func (e *Env) Has(name string) bool {
	_, ok := e.vars[name]
	return ok
}

// Lookup finds the scope declaring name
func (e *Env) Lookup(name string) (*Env, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if _, ok := cur.vars[name]; ok {
			return cur, true
		}
	}
	return nil, false
}

// Get returns the value of name from the nearest declaring scope
func (e *Env) Get(name string) (Value, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if b, ok := cur.vars[name]; ok {
			return b.value, true
		}
	}
	return nil, false
}

// Set assigns to an existing variable. It fails for undeclared names and
// constants.
func (e *Env) Set(name string, v Value) error {
	for cur := e; cur != nil; cur = cur.parent {
		if b, ok := cur.vars[name]; ok {
			if b.constant {
				return Errorf("assignment to constant variable %s", name)
			}
			b.value = v
			return nil
		}
	}
	return Errorf("%s is not defined", name)
}

// Clone copies this scope's own bindings into a new scope with the same
// parent. Loops use it to give each iteration fresh bindings.
func (e *Env) Clone() *Env {
	c := &Env{vars: make(map[string]*binding, len(e.vars)), parent: e.parent}
	for name, b := range e.vars {
		cp := *b
		c.vars[name] = &cp
	}
	return c
}

// Names returns the names declared in this scope
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.vars))
	for name := range e.vars {
		names = append(names, name)
	}
	return names
}

package runtime

// Array is a mutable, ordered sequence of values
type Array struct {
	Elems []Value
}

// NewArray creates an array holding elems
func NewArray(elems ...Value) *Array {
	if elems == nil {
		elems = []Value{}
	}
	return &Array{Elems: elems}
}

func (*Array) Kind() Kind { return KindArray }

// Object is a property map that remembers insertion order. Instances of
// a class have Class set; methods are found through it.
type Object struct {
	props map[string]Value
	keys  []string
	Class *Class
}

// NewObject creates an empty object, optionally an instance of class
func NewObject(class *Class) *Object {
	return &Object{props: make(map[string]Value), Class: class}
}

func (*Object) Kind() Kind { return KindObject }

// Get returns an own property
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.props[key]
	return v, ok
}

// Set creates or updates an own property
func (o *Object) Set(key string, v Value) {
	if _, ok := o.props[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.props[key] = v
}

// Delete removes an own property
func (o *Object) Delete(key string) bool {
	if _, ok := o.props[key]; !ok {
		return false
	}
	delete(o.props, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns own property names in insertion order
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Len returns the number of own properties
func (o *Object) Len() int {
	return len(o.keys)
}

// CallFunc is the Go implementation of a function. this is Undef for
// plain calls.
type CallFunc func(this Value, args []Value) (Value, error)

// Function is a callable value: a compiled closure or a native
type Function struct {
	Name   string
	Params []string
	Native bool
	Impl   CallFunc
	// Home is the class a method was declared in; super resolves
	// against Home.Super
	Home *Class
}

// NewNative wraps a Go function as a Bayan function
func NewNative(name string, impl CallFunc) *Function {
	return &Function{Name: name, Native: true, Impl: impl}
}

func (*Function) Kind() Kind { return KindFunction }

// Field is an instance property initializer declared in a class body
type Field struct {
	Name string
	Init func(this Value) (Value, error) // nil means undefined
}

// Class is a class value. Static members live in Static.
type Class struct {
	Name        string
	Super       *Class
	Constructor *Function
	Methods     map[string]*Function
	Static      *Object
	Fields      []Field
}

// NewClass creates a class with no members
func NewClass(name string, super *Class) *Class {
	return &Class{
		Name:    name,
		Super:   super,
		Methods: make(map[string]*Function),
		Static:  NewObject(nil),
	}
}

func (*Class) Kind() Kind { return KindClass }

// FindMethod looks name up along the superclass chain
func (c *Class) FindMethod(name string) (*Function, bool) {
	for cur := c; cur != nil; cur = cur.Super {
		if m, ok := cur.Methods[name]; ok {
			return m, true
		}
	}
	return nil, false
}

// FindConstructor returns the nearest constructor along the chain
func (c *Class) FindConstructor() *Function {
	for cur := c; cur != nil; cur = cur.Super {
		if cur.Constructor != nil {
			return cur.Constructor
		}
	}
	return nil
}

// FindStatic looks a static member up along the chain
func (c *Class) FindStatic(name string) (Value, bool) {
	for cur := c; cur != nil; cur = cur.Super {
		if v, ok := cur.Static.Get(name); ok {
			return v, true
		}
	}
	return nil, false
}

// IsSubclassOf reports whether c is other or derives from it
func (c *Class) IsSubclassOf(other *Class) bool {
	for cur := c; cur != nil; cur = cur.Super {
		if cur == other {
			return true
		}
	}
	return false
}

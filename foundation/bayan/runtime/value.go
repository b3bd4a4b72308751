// File: value.go
// Title: Bayan Runtime Values
// Description: The closed set of runtime value types, truthiness,
//              string conversion and type names.
// Version: v0.1.0
// Created: 2025-10-02
// Modified: 2025-10-02
//
// Change History:
// - 2025-10-02 v0.1.0: Initial value model

package runtime

import (
	"strings"

	"github.com/msto63/bayan/foundation/bayan/logic"
)

// Kind classifies runtime values
type Kind int

const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	KindFunction
	KindClass
)

var kindNames = map[Kind]string{
	KindUndefined: "undefined",
	KindNull:      "null",
	KindBool:      "boolean",
	KindNumber:    "number",
	KindString:    "string",
	KindArray:     "array",
	KindObject:    "object",
	KindFunction:  "function",
	KindClass:     "class",
}

// String returns the name reported by typeof
func (k Kind) String() string {
	return kindNames[k]
}

// Value is implemented by every runtime value
type Value interface {
	Kind() Kind
}

// Undefined is the value of missing variables, properties and results
type Undefined struct{}

// Null is the explicit absence of a value
type Null struct{}

// Bool is a boolean value
type Bool bool

// Number is a double-precision number
type Number float64

// String is an immutable string
type String string

func (Undefined) Kind() Kind { return KindUndefined }
func (Null) Kind() Kind      { return KindNull }
func (Bool) Kind() Kind      { return KindBool }
func (Number) Kind() Kind    { return KindNumber }
func (String) Kind() Kind    { return KindString }

var (
	// Undef is the undefined value
	Undef Value = Undefined{}
	// NullValue is the null value
	NullValue Value = Null{}
	// True and False are the boolean values
	True  Value = Bool(true)
	False Value = Bool(false)
)

// TypeOf returns the typeof name of v
func TypeOf(v Value) string {
	return v.Kind().String()
}

// Truthy reports whether v counts as true in a condition. false, 0, NaN,
// the empty string, null and undefined are false.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case Undefined, Null:
		return false
	case Bool:
		return bool(v)
	case Number:
		return v != 0 && v == v
	case String:
		return v != ""
	}
	return true
}

// ToString converts v for display and string concatenation. Strings are
// returned as is; containers render their elements with Inspect.
func ToString(v Value) string {
	if s, ok := v.(String); ok {
		return string(s)
	}
	return Inspect(v)
}

// Inspect renders v the way it appears inside a container: strings are
// quoted.
func Inspect(v Value) string {
	var b strings.Builder
	inspect(&b, v, 0)
	return b.String()
}

const maxInspectDepth = 8

func inspect(b *strings.Builder, v Value, depth int) {
	switch v := v.(type) {
	case Undefined:
		b.WriteString("undefined")
	case Null:
		b.WriteString("null")
	case Bool:
		if v {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case Number:
		b.WriteString(logic.FormatNumber(float64(v)))
	case String:
		b.WriteString(quote(string(v)))
	case *Array:
		if depth >= maxInspectDepth {
			b.WriteString("[...]")
			return
		}
		b.WriteString("[")
		for i, e := range v.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			inspect(b, e, depth+1)
		}
		b.WriteString("]")
	case *Object:
		if depth >= maxInspectDepth {
			b.WriteString("{...}")
			return
		}
		if v.Class != nil {
			b.WriteString(v.Class.Name + " ")
		}
		b.WriteString("{")
		for i, key := range v.keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(key + ": ")
			inspect(b, v.props[key], depth+1)
		}
		b.WriteString("}")
	case *Function:
		name := v.Name
		if name == "" {
			name = "anonymous"
		}
		b.WriteString("[function " + name + "]")
	case *Class:
		b.WriteString("[class " + v.Name + "]")
	default:
		b.WriteString("?")
	}
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`, "\r", `\r`)
	return `"` + r.Replace(s) + `"`
}

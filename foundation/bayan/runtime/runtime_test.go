package runtime

import (
	"bytes"
	"context"
	"math"
	"testing"

	mdwerror "github.com/msto63/bayan/foundation/core/error"
	mdwlog "github.com/msto63/bayan/foundation/core/log"
)

func newTestInterp(out *bytes.Buffer) *Interp {
	return New(Options{Out: out, Logger: mdwlog.Discard()})
}

func TestInspect(t *testing.T) {
	obj := NewObject(nil)
	obj.Set("name", String("Ada"))
	obj.Set("age", Number(36))

	tests := []struct {
		name    string
		value   Value
		inspect string
		str     string
	}{
		{"Integer", Number(42), "42", "42"},
		{"Float", Number(2.5), "2.5", "2.5"},
		{"String", String("hi"), `"hi"`, "hi"},
		{"Array of strings", NewArray(String("Alice"), String("Bob")), `["Alice", "Bob"]`, `["Alice", "Bob"]`},
		{"Object keeps insertion order", obj, `{name: "Ada", age: 36}`, `{name: "Ada", age: 36}`},
		{"Null", NullValue, "null", "null"},
		{"Undefined", Undef, "undefined", "undefined"},
		{"Function", NewNative("f", nil), "[function f]", "[function f]"},
		{"Class", NewClass("Point", nil), "[class Point]", "[class Point]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Inspect(tt.value); got != tt.inspect {
				t.Errorf("Inspect: expected %s, got %s", tt.inspect, got)
			}
			if got := ToString(tt.value); got != tt.str {
				t.Errorf("ToString: expected %s, got %s", tt.str, got)
			}
		})
	}
}

func TestTruthy(t *testing.T) {
	falsy := []Value{False, Number(0), Number(math.NaN()), String(""), NullValue, Undef}
	for _, v := range falsy {
		if Truthy(v) {
			t.Errorf("Expected %s to be falsy", Inspect(v))
		}
	}
	truthy := []Value{True, Number(-1), String("0"), NewArray(), NewObject(nil)}
	for _, v := range truthy {
		if !Truthy(v) {
			t.Errorf("Expected %s to be truthy", Inspect(v))
		}
	}
}

func TestBinaryOp(t *testing.T) {
	arr := NewArray()
	tests := []struct {
		name    string
		op      string
		a, b    Value
		want    Value
		errCode mdwerror.Code
	}{
		{name: "Addition", op: "+", a: Number(1), b: Number(2), want: Number(3)},
		{name: "Concatenation", op: "+", a: String("n="), b: Number(5), want: String("n=5")},
		{name: "Power", op: "**", a: Number(2), b: Number(10), want: Number(1024)},
		{name: "Remainder", op: "%", a: Number(7), b: Number(3), want: Number(1)},
		{name: "Division by zero", op: "/", a: Number(1), b: Number(0), errCode: mdwerror.CodeRuntime},
		{name: "Type mismatch", op: "-", a: String("a"), b: Number(1), errCode: mdwerror.CodeRuntime},
		{name: "String comparison", op: "<", a: String("a"), b: String("b"), want: True},
		{name: "Mixed comparison", op: "<", a: String("a"), b: Number(1), errCode: mdwerror.CodeRuntime},
		{name: "Loose null equality", op: "==", a: NullValue, b: Undef, want: True},
		{name: "Strict null equality", op: "===", a: NullValue, b: Undef, want: False},
		{name: "Identity", op: "===", a: arr, b: arr, want: True},
		{name: "Distinct arrays", op: "==", a: NewArray(), b: NewArray(), want: False},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BinaryOp(tt.op, tt.a, tt.b)
			if tt.errCode != "" {
				if !mdwerror.HasCode(err, tt.errCode) {
					t.Fatalf("Expected %s error, got %v", tt.errCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !StrictEquals(got, tt.want) {
				t.Errorf("Expected %s, got %s", Inspect(tt.want), Inspect(got))
			}
		})
	}
}

func TestEnv(t *testing.T) {
	root := NewEnv(nil)
	root.Define("x", Number(1))
	root.DefineConst("k", String("c"))
	child := NewEnv(root)

	if v, ok := child.Get("x"); !ok || !StrictEquals(v, Number(1)) {
		t.Errorf("Expected inherited x = 1, got %v", v)
	}
	if err := child.Set("x", Number(2)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if v, _ := root.Get("x"); !StrictEquals(v, Number(2)) {
		t.Error("Set must update the declaring scope")
	}
	if err := child.Set("k", Number(0)); err == nil {
		t.Error("Expected error assigning a constant")
	}
	if err := child.Set("missing", Number(0)); !mdwerror.HasCode(err, mdwerror.CodeRuntime) {
		t.Errorf("Expected runtime error for undefined variable, got %v", err)
	}

	child.Define("x", Number(10))
	if v, _ := root.Get("x"); !StrictEquals(v, Number(2)) {
		t.Error("Shadowing must not touch the parent")
	}

	clone := child.Clone()
	clone.Set("x", Number(99))
	if v, _ := child.Get("x"); !StrictEquals(v, Number(10)) {
		t.Error("Clone must copy bindings")
	}
}

func TestMembers(t *testing.T) {
	arr := NewArray(Number(1), Number(2))
	push, _ := GetMember(arr, "push")
	if _, err := push.(*Function).Impl(Undef, []Value{Number(3)}); err != nil {
		t.Fatalf("push failed: %v", err)
	}
	if n, _ := GetMember(arr, "length"); !StrictEquals(n, Number(3)) {
		t.Errorf("Expected length 3, got %s", Inspect(n))
	}
	join, _ := GetMember(arr, "join")
	if s, _ := join.(*Function).Impl(Undef, []Value{String("-")}); !StrictEquals(s, String("1-2-3")) {
		t.Errorf("Expected 1-2-3, got %s", Inspect(s))
	}
	if err := SetIndex(arr, Number(5), String("x")); err != nil {
		t.Fatalf("SetIndex failed: %v", err)
	}
	if len(arr.Elems) != 6 || arr.Elems[4] != Undef {
		t.Errorf("Expected gap filled with undefined, got %s", Inspect(arr))
	}

	upper, _ := GetMember(String("سلام abc"), "toUpperCase")
	if s, _ := upper.(*Function).Impl(Undef, nil); !StrictEquals(s, String("سلام ABC")) {
		t.Errorf("Unexpected upper-case result %s", Inspect(s))
	}
	if n, _ := GetMember(String("سلام"), "length"); !StrictEquals(n, Number(4)) {
		t.Errorf("Expected rune length 4, got %s", Inspect(n))
	}

	if _, err := GetMember(NullValue, "x"); !mdwerror.HasCode(err, mdwerror.CodeRuntime) {
		t.Errorf("Expected runtime error reading from null, got %v", err)
	}

	base := NewClass("Animal", nil)
	base.Methods["speak"] = NewNative("speak", nil)
	derived := NewClass("Dog", base)
	obj := NewObject(derived)
	if m, _ := GetMember(obj, "speak"); m != Value(base.Methods["speak"]) {
		t.Error("Expected inherited method")
	}
}

func TestInterp_CallAndConstruct(t *testing.T) {
	var out bytes.Buffer
	in := newTestInterp(&out)

	base := NewClass("Base", nil)
	base.Fields = []Field{{Name: "kind", Init: func(Value) (Value, error) { return String("base"), nil }}}
	base.Constructor = &Function{Name: "constructor", Impl: func(this Value, args []Value) (Value, error) {
		return nil, SetMember(this, "value", arg(args, 0))
	}}
	derived := NewClass("Derived", base)

	inst, err := in.Construct(derived, []Value{Number(7)})
	if err != nil {
		t.Fatalf("Construct failed: %v", err)
	}
	if got := Inspect(inst); got != `Derived {kind: "base", value: 7}` {
		t.Errorf("Unexpected instance %s", got)
	}

	if _, err := in.Call(derived, Undef, nil); !mdwerror.HasCode(err, mdwerror.CodeRuntime) {
		t.Errorf("Expected error calling a class, got %v", err)
	}
	if _, err := in.Call(Number(1), Undef, nil); err == nil {
		t.Error("Expected error calling a number")
	}
}

func TestInterp_CallDepth(t *testing.T) {
	in := New(Options{Logger: mdwlog.Discard(), MaxCallDepth: 50})
	var recurse *Function
	recurse = &Function{Name: "recurse", Impl: func(this Value, args []Value) (Value, error) {
		return in.Call(recurse, Undef, nil)
	}}
	if _, err := in.Call(recurse, Undef, nil); !mdwerror.HasCode(err, mdwerror.CodeRuntime) {
		t.Errorf("Expected call depth error, got %v", err)
	}
}

func TestInterp_Cancellation(t *testing.T) {
	in := New(Options{Logger: mdwlog.Discard()})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	in.SetContext(ctx)

	_, err := in.Call(NewNative("noop", func(Value, []Value) (Value, error) { return Undef, nil }), Undef, nil)
	if !mdwerror.HasCode(err, mdwerror.CodeCanceled) {
		t.Errorf("Expected canceled error, got %v", err)
	}
}

func TestBuiltins(t *testing.T) {
	var out bytes.Buffer
	in := newTestInterp(&out)

	call := func(name string, args ...Value) Value {
		t.Helper()
		fn, ok := in.Builtins.Get(name)
		if !ok {
			t.Fatalf("Builtin %s missing", name)
		}
		v, err := in.Call(fn, Undef, args)
		if err != nil {
			t.Fatalf("%s failed: %v", name, err)
		}
		return v
	}

	call("print", String("a"), Number(1), NewArray(String("x")))
	call("اطبع", String("مرحبا"))
	if got := out.String(); got != "a 1 [\"x\"]\nمرحبا\n" {
		t.Errorf("Unexpected output %q", got)
	}

	if v := call("len", String("abc")); !StrictEquals(v, Number(3)) {
		t.Errorf("len: got %s", Inspect(v))
	}
	if v := call("num", String(" 12.5 ")); !StrictEquals(v, Number(12.5)) {
		t.Errorf("num: got %s", Inspect(v))
	}
	if v := call("str", Number(3)); !StrictEquals(v, String("3")) {
		t.Errorf("str: got %s", Inspect(v))
	}
	obj := NewObject(nil)
	obj.Set("b", Number(1))
	obj.Set("a", Number(2))
	if v := call("keys", obj); Inspect(v) != `["b", "a"]` {
		t.Errorf("keys: got %s", Inspect(v))
	}
	arr := NewArray()
	call("ادفع", arr, Number(1), Number(2))
	if len(arr.Elems) != 2 {
		t.Errorf("push alias: got %s", Inspect(arr))
	}
}

package runtime

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/msto63/bayan/foundation/bayan/vocabulary"
)

// installBuiltins defines the native library in in.Builtins. Native
// aliases from the vocabulary registry are bound to the same functions.
func installBuiltins(in *Interp) {
	natives := map[string]CallFunc{
		"print": func(_ Value, args []Value) (Value, error) {
			parts := make([]string, len(args))
			for i, a := range args {
				parts[i] = ToString(a)
			}
			if _, err := fmt.Fprintln(in.Out, strings.Join(parts, " ")); err != nil {
				return nil, Errorf("print: %v", err)
			}
			return Undef, nil
		},
		"len": func(_ Value, args []Value) (Value, error) {
			switch v := arg(args, 0).(type) {
			case String:
				return Number(utf8.RuneCountInString(string(v))), nil
			case *Array:
				return Number(len(v.Elems)), nil
			case *Object:
				return Number(v.Len()), nil
			default:
				return nil, TypeErrorf("len: unsupported type %s", TypeOf(v))
			}
		},
		"str": func(_ Value, args []Value) (Value, error) {
			return String(ToString(arg(args, 0))), nil
		},
		"num": func(_ Value, args []Value) (Value, error) {
			return ToNumber(arg(args, 0)), nil
		},
		"keys": func(_ Value, args []Value) (Value, error) {
			switch v := arg(args, 0).(type) {
			case *Object:
				keys := v.Keys()
				out := make([]Value, len(keys))
				for i, k := range keys {
					out[i] = String(k)
				}
				return NewArray(out...), nil
			case *Class:
				keys := v.Static.Keys()
				out := make([]Value, len(keys))
				for i, k := range keys {
					out[i] = String(k)
				}
				return NewArray(out...), nil
			default:
				return nil, TypeErrorf("keys: expected object, got %s", TypeOf(v))
			}
		},
		"push": func(_ Value, args []Value) (Value, error) {
			arr, ok := arg(args, 0).(*Array)
			if !ok {
				return nil, TypeErrorf("push: expected array, got %s", TypeOf(arg(args, 0)))
			}
			if len(args) > 1 {
				arr.Elems = append(arr.Elems, args[1:]...)
			}
			return Number(len(arr.Elems)), nil
		},
	}

	for name, impl := range natives {
		in.Builtins.DefineConst(name, NewNative(name, impl))
	}

	for alias, native := range vocabulary.Default().Aliases() {
		if fn, ok := in.Builtins.Get(native); ok {
			in.Builtins.DefineConst(alias, fn)
		}
	}
}

// arg returns args[i] or undefined
func arg(args []Value, i int) Value {
	if i < len(args) {
		return args[i]
	}
	return Undef
}

// BuiltinNames returns the names defined in the builtin scope, sorted
func (in *Interp) BuiltinNames() []string {
	names := in.Builtins.Names()
	sort.Strings(names)
	return names
}

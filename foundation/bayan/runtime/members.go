package runtime

import (
	"math"
	"strings"
	"unicode/utf8"
)

// GetMember reads v.name. Objects look at own properties first and then
// the class method chain; arrays and strings expose a small built-in
// method set. Reading from null or undefined is an error.
func GetMember(v Value, name string) (Value, error) {
	switch v := v.(type) {
	case Undefined, Null:
		return nil, TypeErrorf("cannot read property %s of %s", name, TypeOf(v))
	case *Object:
		if p, ok := v.Get(name); ok {
			return p, nil
		}
		if v.Class != nil {
			if m, ok := v.Class.FindMethod(name); ok {
				return m, nil
			}
		}
		return Undef, nil
	case *Class:
		if name == "name" {
			return String(v.Name), nil
		}
		if s, ok := v.FindStatic(name); ok {
			return s, nil
		}
		return Undef, nil
	case *Array:
		return arrayMember(v, name), nil
	case String:
		return stringMember(v, name), nil
	case *Function:
		if name == "name" {
			return String(v.Name), nil
		}
	}
	return Undef, nil
}

// SetMember assigns v.name = val
func SetMember(v Value, name string, val Value) error {
	switch v := v.(type) {
	case *Object:
		v.Set(name, val)
		return nil
	case *Class:
		v.Static.Set(name, val)
		return nil
	}
	return TypeErrorf("cannot set property %s of %s", name, TypeOf(v))
}

// GetIndex reads v[index]
func GetIndex(v Value, index Value) (Value, error) {
	switch v := v.(type) {
	case *Array:
		i, ok := arrayIndex(index)
		if !ok {
			if s, isStr := index.(String); isStr {
				return arrayMember(v, string(s)), nil
			}
			return nil, TypeErrorf("array index must be a non-negative integer, got %s", Inspect(index))
		}
		if i >= len(v.Elems) {
			return Undef, nil
		}
		return v.Elems[i], nil
	case String:
		i, ok := arrayIndex(index)
		if !ok {
			return nil, TypeErrorf("string index must be a non-negative integer, got %s", Inspect(index))
		}
		runes := []rune(string(v))
		if i >= len(runes) {
			return Undef, nil
		}
		return String(runes[i]), nil
	case Undefined, Null:
		return nil, TypeErrorf("cannot read index %s of %s", Inspect(index), TypeOf(v))
	}
	return GetMember(v, ToString(index))
}

// SetIndex assigns v[index] = val. Writing past the end of an array
// fills the gap with undefined.
func SetIndex(v Value, index Value, val Value) error {
	if arr, ok := v.(*Array); ok {
		i, ok := arrayIndex(index)
		if !ok {
			return TypeErrorf("array index must be a non-negative integer, got %s", Inspect(index))
		}
		for len(arr.Elems) <= i {
			arr.Elems = append(arr.Elems, Undef)
		}
		arr.Elems[i] = val
		return nil
	}
	return SetMember(v, ToString(index), val)
}

func arrayIndex(v Value) (int, bool) {
	n, ok := v.(Number)
	if !ok || n < 0 || float64(n) != math.Trunc(float64(n)) || n > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}

func arrayMember(arr *Array, name string) Value {
	switch name {
	case "length":
		return Number(len(arr.Elems))
	case "push":
		return NewNative("push", func(_ Value, args []Value) (Value, error) {
			arr.Elems = append(arr.Elems, args...)
			return Number(len(arr.Elems)), nil
		})
	case "pop":
		return NewNative("pop", func(_ Value, _ []Value) (Value, error) {
			if len(arr.Elems) == 0 {
				return Undef, nil
			}
			last := arr.Elems[len(arr.Elems)-1]
			arr.Elems = arr.Elems[:len(arr.Elems)-1]
			return last, nil
		})
	case "join":
		return NewNative("join", func(_ Value, args []Value) (Value, error) {
			sep := ","
			if len(args) > 0 {
				sep = ToString(args[0])
			}
			parts := make([]string, len(arr.Elems))
			for i, e := range arr.Elems {
				if _, nullish := e.(Undefined); !nullish {
					parts[i] = ToString(e)
				}
			}
			return String(strings.Join(parts, sep)), nil
		})
	case "indexOf":
		return NewNative("indexOf", func(_ Value, args []Value) (Value, error) {
			if len(args) == 0 {
				return Number(-1), nil
			}
			for i, e := range arr.Elems {
				if StrictEquals(e, args[0]) {
					return Number(i), nil
				}
			}
			return Number(-1), nil
		})
	}
	return Undef
}

func stringMember(s String, name string) Value {
	str := string(s)
	switch name {
	case "length":
		return Number(utf8.RuneCountInString(str))
	case "toUpperCase":
		return NewNative("toUpperCase", func(_ Value, _ []Value) (Value, error) {
			return String(strings.ToUpper(str)), nil
		})
	case "toLowerCase":
		return NewNative("toLowerCase", func(_ Value, _ []Value) (Value, error) {
			return String(strings.ToLower(str)), nil
		})
	case "split":
		return NewNative("split", func(_ Value, args []Value) (Value, error) {
			var parts []string
			if len(args) == 0 {
				parts = []string{str}
			} else {
				parts = strings.Split(str, ToString(args[0]))
			}
			out := make([]Value, len(parts))
			for i, p := range parts {
				out[i] = String(p)
			}
			return NewArray(out...), nil
		})
	case "includes":
		return NewNative("includes", func(_ Value, args []Value) (Value, error) {
			if len(args) == 0 {
				return False, nil
			}
			return Bool(strings.Contains(str, ToString(args[0]))), nil
		})
	}
	return Undef
}

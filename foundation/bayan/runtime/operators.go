package runtime

import (
	"math"
	"strconv"
	"strings"
)

// BinaryOp applies an arithmetic, relational or equality operator.
// Arithmetic other than + requires numbers; + concatenates when either
// side is a string. Division or remainder by zero is an error.
func BinaryOp(op string, a, b Value) (Value, error) {
	switch op {
	case "==":
		return Bool(LooseEquals(a, b)), nil
	case "!=":
		return Bool(!LooseEquals(a, b)), nil
	case "===":
		return Bool(StrictEquals(a, b)), nil
	case "!==":
		return Bool(!StrictEquals(a, b)), nil
	case "<", "<=", ">", ">=":
		return compare(op, a, b)
	case "+":
		if isString(a) || isString(b) {
			return String(ToString(a) + ToString(b)), nil
		}
	}

	x, okA := a.(Number)
	y, okB := b.(Number)
	if !okA || !okB {
		return nil, TypeErrorf("operator %s cannot be applied to %s and %s", op, TypeOf(a), TypeOf(b))
	}

	switch op {
	case "+":
		return x + y, nil
	case "-":
		return x - y, nil
	case "*":
		return x * y, nil
	case "/":
		if y == 0 {
			return nil, Errorf("division by zero")
		}
		return x / y, nil
	case "%":
		if y == 0 {
			return nil, Errorf("division by zero")
		}
		return Number(math.Mod(float64(x), float64(y))), nil
	case "**":
		return Number(math.Pow(float64(x), float64(y))), nil
	}
	return nil, Errorf("unknown operator %s", op)
}

func isString(v Value) bool {
	_, ok := v.(String)
	return ok
}

func compare(op string, a, b Value) (Value, error) {
	var c int
	switch x := a.(type) {
	case Number:
		y, ok := b.(Number)
		if !ok {
			return nil, TypeErrorf("cannot compare number with %s", TypeOf(b))
		}
		if x != x || y != y {
			return False, nil
		}
		switch {
		case x < y:
			c = -1
		case x > y:
			c = 1
		}
	case String:
		y, ok := b.(String)
		if !ok {
			return nil, TypeErrorf("cannot compare string with %s", TypeOf(b))
		}
		c = strings.Compare(string(x), string(y))
	default:
		return nil, TypeErrorf("operator %s cannot be applied to %s", op, TypeOf(a))
	}

	switch op {
	case "<":
		return Bool(c < 0), nil
	case "<=":
		return Bool(c <= 0), nil
	case ">":
		return Bool(c > 0), nil
	default:
		return Bool(c >= 0), nil
	}
}

// UnaryOp applies a prefix operator
func UnaryOp(op string, v Value) (Value, error) {
	switch op {
	case "!":
		return Bool(!Truthy(v)), nil
	case "typeof":
		return String(TypeOf(v)), nil
	case "-", "+":
		n, ok := v.(Number)
		if !ok {
			return nil, TypeErrorf("operator %s cannot be applied to %s", op, TypeOf(v))
		}
		if op == "-" {
			return -n, nil
		}
		return n, nil
	}
	return nil, Errorf("unknown operator %s", op)
}

// StrictEquals compares primitives by value and containers, functions
// and classes by identity
func StrictEquals(a, b Value) bool {
	switch x := a.(type) {
	case Undefined:
		_, ok := b.(Undefined)
		return ok
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool, Number, String:
		return a == b
	case *Array:
		y, ok := b.(*Array)
		return ok && x == y
	case *Object:
		y, ok := b.(*Object)
		return ok && x == y
	case *Function:
		y, ok := b.(*Function)
		return ok && x == y
	case *Class:
		y, ok := b.(*Class)
		return ok && x == y
	}
	return false
}

// LooseEquals is StrictEquals except that null and undefined are equal
func LooseEquals(a, b Value) bool {
	if isNullish(a) && isNullish(b) {
		return true
	}
	return StrictEquals(a, b)
}

func isNullish(v Value) bool {
	switch v.(type) {
	case Undefined, Null:
		return true
	}
	return false
}

// DeepEquals compares arrays and plain objects structurally
func DeepEquals(a, b Value) bool {
	switch x := a.(type) {
	case *Array:
		y, ok := b.(*Array)
		if !ok || len(x.Elems) != len(y.Elems) {
			return false
		}
		for i := range x.Elems {
			if !DeepEquals(x.Elems[i], y.Elems[i]) {
				return false
			}
		}
		return true
	case *Object:
		y, ok := b.(*Object)
		if !ok || x.Class != y.Class || x.Len() != y.Len() {
			return false
		}
		for _, k := range x.keys {
			yv, ok := y.props[k]
			if !ok || !DeepEquals(x.props[k], yv) {
				return false
			}
		}
		return true
	}
	return StrictEquals(a, b)
}

// ToNumber converts strings, booleans and null to numbers for the num
// builtin. It returns NaN when there is no numeric reading.
func ToNumber(v Value) Number {
	switch v := v.(type) {
	case Number:
		return v
	case Bool:
		if v {
			return 1
		}
		return 0
	case Null:
		return 0
	case String:
		s := strings.TrimSpace(string(v))
		if s == "" {
			return 0
		}
		if f, err := parseNumber(s); err == nil {
			return Number(f)
		}
	}
	return Number(math.NaN())
}

func parseNumber(s string) (float64, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, err := strconv.ParseUint(s[2:], 16, 64)
		return float64(n), err
	}
	return strconv.ParseFloat(s, 64)
}

package ast

import (
	"reflect"
	"strings"
)

// Dump converts a node into nested maps and slices suitable for JSON or
// YAML encoding. Each node becomes a map with a "type" key naming the
// node kind and a "pos" key; exported fields follow in lower camel case.
func Dump(node Node) map[string]interface{} {
	out, _ := dumpValue(reflect.ValueOf(node)).(map[string]interface{})
	return out
}

func dumpValue(v reflect.Value) interface{} {
	switch v.Kind() {
	case reflect.Interface, reflect.Ptr:
		if v.IsNil() {
			return nil
		}
		return dumpValue(v.Elem())
	case reflect.Struct:
		if pos, ok := v.Interface().(Position); ok {
			return pos.String()
		}
		t := v.Type()
		m := map[string]interface{}{"type": t.Name()}
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			key := lowerFirst(f.Name)
			if f.Name == "Pos" {
				key = "pos"
			}
			if val := dumpValue(v.Field(i)); val != nil {
				m[key] = val
			}
		}
		return m
	case reflect.Slice:
		if v.Len() == 0 {
			return nil
		}
		items := make([]interface{}, v.Len())
		for i := range items {
			items[i] = dumpValue(v.Index(i))
		}
		return items
	case reflect.Int:
		if k, ok := v.Interface().(AggregateKind); ok {
			return k.String()
		}
		return v.Int()
	default:
		return v.Interface()
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// Shape renders the node kinds of a tree in preorder, ignoring names,
// literal values and positions. Programs that differ only in spelling
// have the same shape.
func Shape(node Node) string {
	var b strings.Builder
	depth := 0
	Inspect(node, func(n Node) bool {
		if n == nil {
			depth--
			b.WriteString(")")
			return false
		}
		if depth > 0 {
			b.WriteString(" ")
		}
		b.WriteString("(")
		b.WriteString(reflect.TypeOf(n).Elem().Name())
		if op := operatorOf(n); op != "" {
			b.WriteString(" " + op)
		}
		depth++
		return true
	})
	return b.String()
}

func operatorOf(n Node) string {
	switch e := n.(type) {
	case *BinaryExpr:
		return e.Op
	case *LogicalExpr:
		return e.Op
	case *UnaryExpr:
		return e.Op
	case *AssignExpr:
		return e.Op
	case *CompareGoal:
		return e.Op
	case *AggregateExpr:
		return e.Kind.String()
	}
	return ""
}

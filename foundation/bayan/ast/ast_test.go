package ast

import (
	"reflect"
	"testing"
)

// grandparentRule builds: rule gp(?x, ?z) :- parent(?x, ?y), not parent(?y, ?z);
func grandparentRule() *RuleDecl {
	v := func(name string) *LogicVar { return &LogicVar{Name: name} }
	return &RuleDecl{
		Head: &CompoundTerm{Functor: "gp", Args: []Expr{v("?x"), v("?z")}, Pos: Position{Line: 1, Column: 6}},
		Body: []Goal{
			&CompoundTerm{Functor: "parent", Args: []Expr{v("?x"), v("?y")}},
			&NotExpr{Goal: &CompoundTerm{Functor: "parent", Args: []Expr{v("?y"), v("?z")}}},
		},
		Pos: Position{Line: 1, Column: 1},
	}
}

func TestShape(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want string
	}{
		{
			name: "Binary expression",
			node: &BinaryExpr{Op: "+", Left: &NumberLit{Value: 1}, Right: &Identifier{Name: "x"}},
			want: "(BinaryExpr + (NumberLit) (Identifier))",
		},
		{
			name: "Rule",
			node: grandparentRule(),
			want: "(RuleDecl (CompoundTerm (LogicVar) (LogicVar)) (CompoundTerm (LogicVar) (LogicVar)) (NotExpr (CompoundTerm (LogicVar) (LogicVar))))",
		},
		{
			name: "Optional children are skipped",
			node: &IfStmt{Cond: &BoolLit{Value: true}, Then: &BlockStmt{}},
			want: "(IfStmt (BoolLit) (BlockStmt))",
		},
		{
			name: "Aggregate",
			node: &AggregateExpr{
				Kind:     SetOf,
				Template: &LogicVar{Name: "?c"},
				Goal:     &CompoundTerm{Functor: "p", Args: []Expr{&LogicVar{Name: "?c"}}},
				Result:   &LogicVar{Name: "?r"},
			},
			want: "(AggregateExpr setof (LogicVar) (CompoundTerm (LogicVar)) (LogicVar))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Shape(tt.node); got != tt.want {
				t.Errorf("Shape mismatch\n got: %s\nwant: %s", got, tt.want)
			}
		})
	}
}

func TestLogicVars(t *testing.T) {
	rule := grandparentRule()
	if got := LogicVars(rule); !reflect.DeepEqual(got, []string{"?x", "?z", "?y"}) {
		t.Errorf("Unexpected variables %v", got)
	}
	if !ContainsLogicVar(rule.Head) {
		t.Error("Expected head to contain logic variables")
	}
	ground := &CompoundTerm{Functor: "parent", Args: []Expr{&StringLit{Value: "John"}}}
	if ContainsLogicVar(ground) {
		t.Error("Ground term reported as containing logic variables")
	}
}

func TestWalk_VisitsEveryNodeOnce(t *testing.T) {
	counts := make(map[string]int)
	Inspect(grandparentRule(), func(n Node) bool {
		if n != nil {
			counts[reflect.TypeOf(n).Elem().Name()]++
		}
		return true
	})
	want := map[string]int{"RuleDecl": 1, "CompoundTerm": 3, "NotExpr": 1, "LogicVar": 6}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("Expected %v, got %v", want, counts)
	}
}

func TestDump(t *testing.T) {
	dump := Dump(grandparentRule())

	if dump["type"] != "RuleDecl" {
		t.Errorf("Expected type RuleDecl, got %v", dump["type"])
	}
	if dump["pos"] != "1:1" {
		t.Errorf("Expected pos 1:1, got %v", dump["pos"])
	}
	head, ok := dump["head"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected head map, got %T", dump["head"])
	}
	if head["functor"] != "gp" {
		t.Errorf("Expected functor gp, got %v", head["functor"])
	}
	if body, ok := dump["body"].([]interface{}); !ok || len(body) != 2 {
		t.Errorf("Expected two body goals, got %v", dump["body"])
	}

	agg := Dump(&AggregateExpr{Kind: BagOf, Result: &LogicVar{Name: "?r"}})
	if agg["kind"] != "bagof" {
		t.Errorf("Expected kind bagof, got %v", agg["kind"])
	}
}

func TestPosition(t *testing.T) {
	if (Position{}).IsValid() {
		t.Error("Zero position must be invalid")
	}
	if got := (Position{Line: 3, Column: 7}).String(); got != "3:7" {
		t.Errorf("Expected 3:7, got %s", got)
	}
	if got := (&Program{}).Position(); got.Line != 1 {
		t.Errorf("Empty program should report line 1, got %d", got.Line)
	}
}

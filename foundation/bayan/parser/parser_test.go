// File: parser_test.go
// Title: Bayan Parser Unit Tests
// Description: Tests for statement, expression and logic parsing, the
//              vocabulary independence of the resulting tree, and
//              error recovery collecting several syntax errors per pass.
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2025-10-02
//
// Change History:
// - 2025-01-25 v0.1.0: Initial comprehensive parser test suite
// - 2025-10-02 v0.2.0: Bayan grammar

package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/msto63/bayan/foundation/bayan/ast"
	mdwerror "github.com/msto63/bayan/foundation/core/error"
	mdwlog "github.com/msto63/bayan/foundation/core/log"
)

func mustParse(t *testing.T, input string) *ast.Program {
	t.Helper()
	p, err := New(Options{Logger: mdwlog.Discard()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	prog, err := p.Parse(input)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", input, err)
	}
	return prog
}

func firstExpr(t *testing.T, prog *ast.Program) ast.Expr {
	t.Helper()
	if len(prog.Statements) == 0 {
		t.Fatal("Expected at least one statement")
	}
	stmt, ok := prog.Statements[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("Expected ExprStmt, got %T", prog.Statements[0])
	}
	return stmt.X
}

func TestParser_Statements(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, prog *ast.Program)
	}{
		{
			name:  "Variable declaration with several names",
			input: `let a = 1, b;`,
			check: func(t *testing.T, prog *ast.Program) {
				decl, ok := prog.Statements[0].(*ast.VarDecl)
				if !ok {
					t.Fatalf("Expected VarDecl, got %T", prog.Statements[0])
				}
				if decl.Const || len(decl.Names) != 2 {
					t.Errorf("Unexpected declaration %+v", decl)
				}
				if decl.Inits[1] != nil {
					t.Error("Expected b without initializer")
				}
			},
		},
		{
			name:  "Implicit terminators",
			input: "let a = 1\nlet b = 2\nprint(a + b)",
			check: func(t *testing.T, prog *ast.Program) {
				if len(prog.Statements) != 3 {
					t.Errorf("Expected 3 statements, got %d", len(prog.Statements))
				}
			},
		},
		{
			name:  "Function declaration",
			input: `function add(a, b) { return a + b; }`,
			check: func(t *testing.T, prog *ast.Program) {
				decl, ok := prog.Statements[0].(*ast.FunctionDecl)
				if !ok {
					t.Fatalf("Expected FunctionDecl, got %T", prog.Statements[0])
				}
				if decl.Func.Name != "add" || len(decl.Func.Params) != 2 {
					t.Errorf("Unexpected function %s/%d", decl.Func.Name, len(decl.Func.Params))
				}
			},
		},
		{
			name: "Class with constructor, method and static member",
			input: `class Dog extends Animal {
				constructor(name) { super(name); this.sound = "woof"; }
				speak() { return super.speak() + this.sound; }
				static count = 0;
			}`,
			check: func(t *testing.T, prog *ast.Program) {
				decl, ok := prog.Statements[0].(*ast.ClassDecl)
				if !ok {
					t.Fatalf("Expected ClassDecl, got %T", prog.Statements[0])
				}
				if decl.Name.Name != "Dog" {
					t.Errorf("Expected class Dog, got %s", decl.Name.Name)
				}
				if id, ok := decl.SuperClass.(*ast.Identifier); !ok || id.Name != "Animal" {
					t.Errorf("Expected superclass Animal, got %#v", decl.SuperClass)
				}
				if len(decl.Members) != 3 {
					t.Fatalf("Expected 3 members, got %d", len(decl.Members))
				}
				if !decl.Members[2].Static || decl.Members[2].Method != nil {
					t.Error("Expected static property count")
				}
			},
		},
		{
			name:  "For-of loop",
			input: `for (const x of items) { print(x); }`,
			check: func(t *testing.T, prog *ast.Program) {
				loop, ok := prog.Statements[0].(*ast.ForOfStmt)
				if !ok {
					t.Fatalf("Expected ForOfStmt, got %T", prog.Statements[0])
				}
				if !loop.Const || loop.Name.Name != "x" {
					t.Errorf("Unexpected loop variable %+v", loop.Name)
				}
			},
		},
		{
			name:  "Classic for loop",
			input: `for (let i = 0; i < 3; i++) { }`,
			check: func(t *testing.T, prog *ast.Program) {
				loop, ok := prog.Statements[0].(*ast.ForStmt)
				if !ok {
					t.Fatalf("Expected ForStmt, got %T", prog.Statements[0])
				}
				if loop.Init == nil || loop.Cond == nil || loop.Update == nil {
					t.Error("Expected all three clauses")
				}
			},
		},
		{
			name:  "Switch with default",
			input: `switch (x) { case 1: a(); break; default: b(); }`,
			check: func(t *testing.T, prog *ast.Program) {
				sw, ok := prog.Statements[0].(*ast.SwitchStmt)
				if !ok {
					t.Fatalf("Expected SwitchStmt, got %T", prog.Statements[0])
				}
				if len(sw.Cases) != 2 || sw.Cases[1].Test != nil {
					t.Errorf("Unexpected cases %+v", sw.Cases)
				}
			},
		},
		{
			name:  "Try catch finally",
			input: `try { throw "x"; } catch (e) { print(e); } finally { done(); }`,
			check: func(t *testing.T, prog *ast.Program) {
				stmt, ok := prog.Statements[0].(*ast.TryStmt)
				if !ok {
					t.Fatalf("Expected TryStmt, got %T", prog.Statements[0])
				}
				if stmt.CatchParam == nil || stmt.CatchParam.Name != "e" || stmt.Finally == nil {
					t.Errorf("Unexpected try statement %+v", stmt)
				}
			},
		},
		{
			name:  "Import and export",
			input: `import { a, b } from "./lib.bayan"; export function f() {}`,
			check: func(t *testing.T, prog *ast.Program) {
				imp, ok := prog.Statements[0].(*ast.ImportStmt)
				if !ok {
					t.Fatalf("Expected ImportStmt, got %T", prog.Statements[0])
				}
				if len(imp.Names) != 2 || imp.Path != "./lib.bayan" {
					t.Errorf("Unexpected import %+v", imp)
				}
				if _, ok := prog.Statements[1].(*ast.ExportStmt); !ok {
					t.Errorf("Expected ExportStmt, got %T", prog.Statements[1])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, mustParse(t, tt.input))
		})
	}
}

func TestParser_Expressions(t *testing.T) {
	tests := []struct {
		name  string
		input string
		shape string
	}{
		{
			name:  "Multiplication binds tighter than addition",
			input: `1 + 2 * 3;`,
			shape: "(ExprStmt (BinaryExpr + (NumberLit) (BinaryExpr * (NumberLit) (NumberLit))))",
		},
		{
			name:  "Exponent is right associative",
			input: `2 ** 3 ** 2;`,
			shape: "(ExprStmt (BinaryExpr ** (NumberLit) (BinaryExpr ** (NumberLit) (NumberLit))))",
		},
		{
			name:  "Logical precedence",
			input: `a || b && c;`,
			shape: "(ExprStmt (LogicalExpr || (Identifier) (LogicalExpr && (Identifier) (Identifier))))",
		},
		{
			name:  "Assignment is right associative",
			input: `a = b += 1;`,
			shape: "(ExprStmt (AssignExpr = (Identifier) (AssignExpr += (Identifier) (NumberLit))))",
		},
		{
			name:  "Conditional",
			input: `x > 1 ? "big" : "small";`,
			shape: "(ExprStmt (ConditionalExpr (BinaryExpr > (Identifier) (NumberLit)) (StringLit) (StringLit)))",
		},
		{
			name:  "Member call chain",
			input: `a.b[0](1);`,
			shape: "(ExprStmt (CallExpr (IndexExpr (MemberExpr (Identifier)) (NumberLit)) (NumberLit)))",
		},
		{
			name:  "New with arguments",
			input: `new Point(1, 2).x;`,
			shape: "(ExprStmt (MemberExpr (NewExpr (Identifier) (NumberLit) (NumberLit))))",
		},
		{
			name:  "Arrow with expression body",
			input: `let f = (a, b) => a * b;`,
			shape: "(VarDecl (Identifier) (FunctionLit (Identifier) (Identifier) (BinaryExpr * (Identifier) (Identifier))))",
		},
		{
			name:  "Single parameter arrow with block",
			input: `let g = x => { return x; };`,
			shape: "(VarDecl (Identifier) (FunctionLit (Identifier) (BlockStmt (ReturnStmt (Identifier)))))",
		},
		{
			name:  "Object literal with method and shorthand",
			input: `let o = { a: 1, "b": 2, c, m() { return 1; } };`,
			shape: "(VarDecl (Identifier) (ObjectLit (Property (NumberLit)) (Property (NumberLit)) (Property (Identifier)) (Property (FunctionLit (BlockStmt (ReturnStmt (NumberLit)))))))",
		},
		{
			name:  "Unary and update",
			input: `-x + typeof y; i++; --j;`,
			shape: "(ExprStmt (BinaryExpr + (UnaryExpr - (Identifier)) (UnaryExpr typeof (Identifier))))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := mustParse(t, tt.input)
			if got := ast.Shape(prog.Statements[0]); got != tt.shape {
				t.Errorf("Shape mismatch\n got: %s\nwant: %s", got, tt.shape)
			}
		})
	}
}

func TestParser_Logic(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, prog *ast.Program)
	}{
		{
			name:  "Fact",
			input: `fact parent("John", "Alice");`,
			check: func(t *testing.T, prog *ast.Program) {
				fact, ok := prog.Statements[0].(*ast.FactDecl)
				if !ok {
					t.Fatalf("Expected FactDecl, got %T", prog.Statements[0])
				}
				if fact.Head.Functor != "parent" || len(fact.Head.Args) != 2 {
					t.Errorf("Unexpected head %s/%d", fact.Head.Functor, len(fact.Head.Args))
				}
			},
		},
		{
			name:  "Rule with body",
			input: `rule grandparent(?x, ?z) :- parent(?x, ?y), parent(?y, ?z);`,
			check: func(t *testing.T, prog *ast.Program) {
				rule, ok := prog.Statements[0].(*ast.RuleDecl)
				if !ok {
					t.Fatalf("Expected RuleDecl, got %T", prog.Statements[0])
				}
				if len(rule.Body) != 2 {
					t.Fatalf("Expected 2 body goals, got %d", len(rule.Body))
				}
				vars := ast.LogicVars(rule)
				if strings.Join(vars, ",") != "?x,?z,?y" {
					t.Errorf("Unexpected logic variables %v", vars)
				}
			},
		},
		{
			name:  "Rule body with cut, negation, is and comparison",
			input: `rule factorial(?n, ?f) :- ?n > 0, cut, not blocked(?n), ?m is ?n - 1, factorial(?m, ?g), ?f is ?n * ?g;`,
			check: func(t *testing.T, prog *ast.Program) {
				rule := prog.Statements[0].(*ast.RuleDecl)
				want := "(RuleDecl (CompoundTerm (LogicVar) (LogicVar)) (CompareGoal > (LogicVar) (NumberLit)) (CutExpr) " +
					"(NotExpr (CompoundTerm (LogicVar))) (IsExpr (LogicVar) (BinaryExpr - (LogicVar) (NumberLit))) " +
					"(CompoundTerm (LogicVar) (LogicVar)) (IsExpr (LogicVar) (BinaryExpr * (LogicVar) (LogicVar))))"
				if got := ast.Shape(rule); got != want {
					t.Errorf("Shape mismatch\n got: %s\nwant: %s", got, want)
				}
			},
		},
		{
			name:  "Query expression",
			input: `if (query parent(?p, "Alice")) { print(?p); }`,
			check: func(t *testing.T, prog *ast.Program) {
				stmt := prog.Statements[0].(*ast.IfStmt)
				q, ok := stmt.Cond.(*ast.QueryExpr)
				if !ok {
					t.Fatalf("Expected QueryExpr, got %T", stmt.Cond)
				}
				if len(q.Goals) != 1 {
					t.Errorf("Expected 1 goal, got %d", len(q.Goals))
				}
			},
		},
		{
			name:  "Query ends at a host argument",
			input: `print(query parent(5, ?c), ?c, "x");`,
			check: func(t *testing.T, prog *ast.Program) {
				call, ok := firstExpr(t, prog).(*ast.CallExpr)
				if !ok || len(call.Args) != 3 {
					t.Fatalf("Expected call with 3 arguments, got %#v", firstExpr(t, prog))
				}
				if q, ok := call.Args[0].(*ast.QueryExpr); !ok || len(q.Goals) != 1 {
					t.Errorf("Expected single-goal query, got %#v", call.Args[0])
				}
			},
		},
		{
			name:  "Query keeps goals after a comma",
			input: `print(query parent(?p, ?c), ?c == "Mary", not blocked(?p), ?n is 1, ?p);`,
			check: func(t *testing.T, prog *ast.Program) {
				call := firstExpr(t, prog).(*ast.CallExpr)
				if len(call.Args) != 2 {
					t.Fatalf("Expected 2 call arguments, got %d", len(call.Args))
				}
				if q := call.Args[0].(*ast.QueryExpr); len(q.Goals) != 4 {
					t.Errorf("Expected 4 goals, got %d", len(q.Goals))
				}
			},
		},
		{
			name:  "Aggregate with conjunction goal",
			input: `let kids = findall(?c, (parent("John", ?c), not blocked(?c)), ?all);`,
			check: func(t *testing.T, prog *ast.Program) {
				decl := prog.Statements[0].(*ast.VarDecl)
				agg, ok := decl.Inits[0].(*ast.AggregateExpr)
				if !ok {
					t.Fatalf("Expected AggregateExpr, got %T", decl.Inits[0])
				}
				if agg.Kind != ast.FindAll || agg.Result.Name != "?all" {
					t.Errorf("Unexpected aggregate %s -> %s", agg.Kind, agg.Result.Name)
				}
				conj, ok := agg.Goal.(*ast.Conjunction)
				if !ok || len(conj.Goals) != 2 {
					t.Errorf("Expected two-goal conjunction, got %#v", agg.Goal)
				}
			},
		},
		{
			name:  "Assert and retract",
			input: `assert parent("Bob", "Carl"); retract(parent("John", "Alice"));`,
			check: func(t *testing.T, prog *ast.Program) {
				if _, ok := firstExpr(t, prog).(*ast.AssertExpr); !ok {
					t.Errorf("Expected AssertExpr, got %T", firstExpr(t, prog))
				}
				second := prog.Statements[1].(*ast.ExprStmt)
				if _, ok := second.X.(*ast.RetractExpr); !ok {
					t.Errorf("Expected RetractExpr, got %T", second.X)
				}
			},
		},
		{
			name:  "Host is expression",
			input: `?x is 2 + 3;`,
			check: func(t *testing.T, prog *ast.Program) {
				if _, ok := firstExpr(t, prog).(*ast.IsExpr); !ok {
					t.Errorf("Expected IsExpr, got %T", firstExpr(t, prog))
				}
			},
		},
		{
			name:  "List terms",
			input: `fact path([1, 2, 3]);`,
			check: func(t *testing.T, prog *ast.Program) {
				fact := prog.Statements[0].(*ast.FactDecl)
				arr, ok := fact.Head.Args[0].(*ast.ArrayLit)
				if !ok || len(arr.Elements) != 3 {
					t.Errorf("Expected three-element list, got %#v", fact.Head.Args[0])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, mustParse(t, tt.input))
		})
	}
}

func TestParser_BilingualShape(t *testing.T) {
	tests := []struct {
		name    string
		english string
		arabic  string
	}{
		{
			name:    "Function and loop",
			english: `function sum(xs) { let t = 0; for (const x of xs) { t += x; } return t; }`,
			arabic:  `دالة مجموع(قائمة) { متغير ن = 0؛ لكل (ثابت ع في قائمة) { ن += ع؛ } ارجع ن؛ }`,
		},
		{
			name:    "Logic program",
			english: `fact parent("a", "b"); rule anc(?x, ?y) :- parent(?x, ?y); if (not anc("b", "a")) { print(findall(?y, anc("a", ?y), ?r)); }`,
			arabic:  `حقيقة والد("a"، "b")؛ قاعدة سلف(؟س، ؟ص) :- والد(؟س، ؟ص)؛ إذا (ليس سلف("b"، "a")) { اطبع(اجمع_الكل(؟ص، سلف("a"، ؟ص)، ؟ن))؛ }`,
		},
		{
			name:    "Classes",
			english: `class A extends B { constructor() { super(); this.v = new C(); } }`,
			arabic:  `صنف أ يرث ب { منشئ() { الأصل()؛ هذا.ق = جديد ج()؛ } }`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			en := ast.Shape(mustParse(t, tt.english))
			ar := ast.Shape(mustParse(t, tt.arabic))
			if en != ar {
				t.Errorf("Trees differ\nenglish: %s\n arabic: %s", en, ar)
			}
		})
	}
}

func TestParser_ErrorRecovery(t *testing.T) {
	input := "let a = ;\nlet b = 2;\nlet c = (1 + ;\nprint(b);"

	p, _ := New(Options{Logger: mdwlog.Discard()})
	prog, err := p.Parse(input)
	if err == nil {
		t.Fatal("Expected syntax errors")
	}

	var list ErrorList
	if !errors.As(err, &list) {
		t.Fatalf("Expected ErrorList, got %T", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 errors, got %d: %s", len(list), list.Details())
	}
	for _, e := range list {
		if e.Code() != mdwerror.CodeSyntax {
			t.Errorf("Expected syntax code, got %s", e.Code())
		}
	}
	if line, _, _ := list[1].Position(); line != 3 {
		t.Errorf("Expected second error on line 3, got %d", line)
	}
	if prog == nil || len(prog.Statements) != 2 {
		t.Errorf("Expected the two valid statements to survive recovery")
	}
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		errMsg  string
		errCode mdwerror.Code
	}{
		{"Missing closing paren", `print(1;`, "expected ')'", mdwerror.CodeSyntax},
		{"Const without initializer", `const x;`, "", mdwerror.CodeSyntax},
		{"Invalid assignment target", `1 = 2;`, "invalid assignment target", mdwerror.CodeSyntax},
		{"Aggregate needs logic variable result", `findall(?x, p(?x), r);`, "result", mdwerror.CodeSyntax},
		{"Stray closing brace", `}`, "", mdwerror.CodeSyntax},
		{"Goal expected", `query 5;`, "expected goal", mdwerror.CodeSyntax},
		{"Lexical error surfaces", `let s = "open`, "unterminated", mdwerror.CodeLexical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProgram(tt.input)
			if err == nil {
				t.Fatal("Expected error")
			}
			if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Expected error containing %q, got %q", tt.errMsg, err.Error())
			}
			if !mdwerror.HasCode(err, tt.errCode) {
				t.Errorf("Expected code %s in %v", tt.errCode, err)
			}
		})
	}
}

func TestParser_MaxInputLength(t *testing.T) {
	p, _ := New(Options{Logger: mdwlog.Discard(), MaxInputLength: 8})
	_, err := p.Parse("let x = 123456;")
	if !mdwerror.HasCode(err, mdwerror.CodeInvalidInput) {
		t.Errorf("Expected %s, got %v", mdwerror.CodeInvalidInput, err)
	}
}

// File: lexer_test.go
// Title: Bayan Lexer Unit Tests
// Description: Tests for the tokenizer: bilingual keyword canonicalization,
//              literals, operators, comments and positioned lexical errors.
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2025-10-02
//
// Change History:
// - 2025-01-25 v0.1.0: Initial lexer tests
// - 2025-10-02 v0.2.0: Bayan token set

package parser

import (
	"testing"

	mdwerror "github.com/msto63/bayan/foundation/core/error"
)

func tokenTypes(tokens []Token) []TokenType {
	types := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}
	return types
}

func TestLexer_Tokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []TokenType
		check func(t *testing.T, tokens []Token)
	}{
		{
			name:  "Variable declaration",
			input: `let x = 5;`,
			want:  []TokenType{TokenLet, TokenIdentifier, TokenAssign, TokenNumber, TokenSemicolon, TokenEOF},
		},
		{
			name:  "Arabic declaration",
			input: `متغير س = ٥؛`,
			want:  []TokenType{TokenLet, TokenIdentifier, TokenAssign, TokenNumber, TokenSemicolon, TokenEOF},
			check: func(t *testing.T, tokens []Token) {
				if tokens[1].Value != "س" {
					t.Errorf("Expected identifier س, got %q", tokens[1].Value)
				}
				if tokens[3].Value != "5" {
					t.Errorf("Expected normalized number 5, got %q", tokens[3].Value)
				}
			},
		},
		{
			name:  "Rule with logic variables",
			input: `rule gp(?x, ?z) :- p(?x, ?y), p(?y, ?z);`,
			want: []TokenType{
				TokenRule, TokenIdentifier, TokenLeftParen, TokenLogicVar, TokenComma, TokenLogicVar, TokenRightParen,
				TokenRuleSep,
				TokenIdentifier, TokenLeftParen, TokenLogicVar, TokenComma, TokenLogicVar, TokenRightParen, TokenComma,
				TokenIdentifier, TokenLeftParen, TokenLogicVar, TokenComma, TokenLogicVar, TokenRightParen,
				TokenSemicolon, TokenEOF,
			},
			check: func(t *testing.T, tokens []Token) {
				if tokens[3].Value != "?x" {
					t.Errorf("Expected logic var ?x, got %q", tokens[3].Value)
				}
			},
		},
		{
			name:  "Arabic logic variable sigil",
			input: `؟س`,
			want:  []TokenType{TokenLogicVar, TokenEOF},
			check: func(t *testing.T, tokens []Token) {
				if tokens[0].Value != "?س" {
					t.Errorf("Expected canonical sigil, got %q", tokens[0].Value)
				}
			},
		},
		{
			name:  "Conditional operator is not a logic variable",
			input: `a ? 1 : 2`,
			want:  []TokenType{TokenIdentifier, TokenQuestion, TokenNumber, TokenColon, TokenNumber, TokenEOF},
		},
		{
			name:  "Longest operator match",
			input: `a === b !== c ** d => e :- f ++ -- += <= >= && ||`,
			want: []TokenType{
				TokenIdentifier, TokenStrictEq, TokenIdentifier, TokenStrictNotEq, TokenIdentifier,
				TokenStarStar, TokenIdentifier, TokenArrow, TokenIdentifier, TokenRuleSep, TokenIdentifier,
				TokenPlusPlus, TokenMinusMinus, TokenPlusAssign, TokenLessEq, TokenGreaterEq,
				TokenAndAnd, TokenOrOr, TokenEOF,
			},
		},
		{
			name:  "Numeric literals",
			input: `12 1.5 1e3 2.5E-2 0xFF .5`,
			want:  []TokenType{TokenNumber, TokenNumber, TokenNumber, TokenNumber, TokenNumber, TokenNumber, TokenEOF},
			check: func(t *testing.T, tokens []Token) {
				want := []float64{12, 1.5, 1000, 0.025, 255, 0.5}
				for i, w := range want {
					got, err := ParseNumber(tokens[i].Value)
					if err != nil {
						t.Fatalf("ParseNumber(%q) failed: %v", tokens[i].Value, err)
					}
					if got != w {
						t.Errorf("Token %d: expected %v, got %v", i, w, got)
					}
				}
			},
		},
		{
			name:  "String escapes",
			input: `"a\n\t\"b\" A" 'it\'s'`,
			want:  []TokenType{TokenString, TokenString, TokenEOF},
			check: func(t *testing.T, tokens []Token) {
				if tokens[0].Value != "a\n\t\"b\" A" {
					t.Errorf("Unexpected string value %q", tokens[0].Value)
				}
				if tokens[1].Value != "it's" {
					t.Errorf("Unexpected string value %q", tokens[1].Value)
				}
			},
		},
		{
			name:  "Comments are skipped",
			input: "// line\nx /* block\nstill */ y",
			want:  []TokenType{TokenIdentifier, TokenIdentifier, TokenEOF},
			check: func(t *testing.T, tokens []Token) {
				if tokens[1].Line != 3 {
					t.Errorf("Expected y on line 3, got %d", tokens[1].Line)
				}
			},
		},
		{
			name:  "Positions",
			input: "let a\n  = 1",
			want:  []TokenType{TokenLet, TokenIdentifier, TokenAssign, TokenNumber, TokenEOF},
			check: func(t *testing.T, tokens []Token) {
				if tokens[0].Line != 1 || tokens[0].Column != 1 {
					t.Errorf("let at %d:%d", tokens[0].Line, tokens[0].Column)
				}
				if tokens[2].Line != 2 || tokens[2].Column != 3 {
					t.Errorf("= at %d:%d", tokens[2].Line, tokens[2].Column)
				}
			},
		},
		{
			name:  "Underscored Arabic keywords",
			input: `غير_معرف اجمع_الكل`,
			want:  []TokenType{TokenUndefined, TokenFindAll, TokenEOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := TokenizeInput(tt.input)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			got := tokenTypes(tokens)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d tokens, got %d: %v", len(tt.want), len(got), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Token %d: expected %s, got %s", i, tt.want[i], got[i])
				}
			}
			if tt.check != nil {
				tt.check(t, tokens)
			}
		})
	}
}

func TestLexer_Errors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantLine   int
		wantColumn int
	}{
		{"Unterminated string", `let s = "abc`, 1, 9},
		{"Newline in string", "let s = 'a\nb'", 1, 9},
		{"Unterminated block comment", "x\n/* never closed", 2, 1},
		{"Unknown character", `let a = 1 # 2`, 1, 11},
		{"Number glued to identifier", `12abc`, 1, 1},
		{"Bad escape", `"\q"`, 1, 2},
		{"Malformed hex", `0x`, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TokenizeInput(tt.input)
			if err == nil {
				t.Fatal("Expected lexical error")
			}
			if !mdwerror.HasCode(err, mdwerror.CodeLexical) {
				t.Errorf("Expected code %s, got %s", mdwerror.CodeLexical, mdwerror.GetCode(err))
			}
			line, column, ok := mdwerror.GetPosition(err)
			if !ok {
				t.Fatal("Expected positioned error")
			}
			if line != tt.wantLine || column != tt.wantColumn {
				t.Errorf("Expected position %d:%d, got %d:%d", tt.wantLine, tt.wantColumn, line, column)
			}
		})
	}
}

func TestLexer_BilingualEquivalence(t *testing.T) {
	english := `function add(a, b) { return a + b; } if (true) { let x = add(1, 2); } else { x = null; }`
	arabic := `دالة جمع(أ، ب) { ارجع أ + ب؛ } إذا (صحيح) { متغير س = جمع(١، ٢)؛ } وإلا { س = فارغ؛ }`

	enTokens, err := TokenizeInput(english)
	if err != nil {
		t.Fatalf("English tokenize failed: %v", err)
	}
	arTokens, err := TokenizeInput(arabic)
	if err != nil {
		t.Fatalf("Arabic tokenize failed: %v", err)
	}

	en, ar := tokenTypes(enTokens), tokenTypes(arTokens)
	if len(en) != len(ar) {
		t.Fatalf("Token count differs: %d vs %d", len(en), len(ar))
	}
	for i := range en {
		if en[i] != ar[i] {
			t.Errorf("Token %d: %s vs %s", i, en[i], ar[i])
		}
	}
}

func TestTokenType_String(t *testing.T) {
	tests := []struct {
		tt   TokenType
		want string
	}{
		{TokenFunction, "KW_FUNCTION"},
		{TokenFindAll, "KW_FINDALL"},
		{TokenRuleSep, ":-"},
		{TokenLogicVar, "LOGIC_VAR"},
	}
	for _, tt := range tests {
		if got := tt.tt.String(); got != tt.want {
			t.Errorf("Expected %s, got %s", tt.want, got)
		}
	}
	if !TokenIs.IsKeyword() || TokenIdentifier.IsKeyword() {
		t.Error("IsKeyword misclassifies tokens")
	}
}

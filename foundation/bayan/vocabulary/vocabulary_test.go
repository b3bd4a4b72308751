package vocabulary

import (
	"testing"

	"github.com/msto63/bayan/foundation/core/log"
)

func TestLookupBothLanguages(t *testing.T) {
	r := Default()

	tests := []struct {
		word      string
		canonical string
		lang      Language
	}{
		{"function", KwFunction, English},
		{"دالة", KwFunction, Arabic},
		{"var", KwLet, English},
		{"متغير", KwLet, Arabic},
		{"إذا", KwIf, Arabic},
		{"اذا", KwIf, Arabic},
		{"أضف", KwAssert, Arabic},
		{"اضف", KwAssert, Arabic},
		{"اجمع_الكل", KwFindAll, Arabic},
		{"retract", KwRetract, English},
		{"يكون", KwIs, Arabic},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			m, ok := r.Lookup(tt.word)
			if !ok {
				t.Fatalf("Lookup(%q) not found", tt.word)
			}
			if m.Canonical != tt.canonical || m.Language != tt.lang {
				t.Errorf("Lookup(%q) = %+v, want %s/%s", tt.word, m, tt.canonical, tt.lang)
			}
		})
	}
}

func TestLookupNonKeywords(t *testing.T) {
	r := Default()
	for _, word := range []string{"Function", "جمع", "أ", "parent", "print"} {
		if r.IsKeyword(word) {
			t.Errorf("IsKeyword(%q) = true", word)
		}
	}
}

func TestEveryKeywordHasBothSpellings(t *testing.T) {
	r := Default()
	for _, name := range r.Keywords() {
		if _, ok := r.Spelling(name, English); !ok {
			t.Errorf("%s has no English spelling", name)
		}
		if _, ok := r.Spelling(name, Arabic); !ok {
			t.Errorf("%s has no Arabic spelling", name)
		}
	}
}

func TestRegisterDuplicateSpelling(t *testing.T) {
	r, err := New(Options{Logger: log.Discard()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	err = r.Register(&Keyword{
		Canonical: "yield",
		Spellings: map[Language][]string{English: {"return"}},
	})
	if err == nil {
		t.Error("Register() should reject a spelling already bound")
	}
	if err := r.Register(&Keyword{Canonical: "let"}); err == nil {
		t.Error("Register() should reject duplicate canonical name")
	}
}

func TestAliases(t *testing.T) {
	r := Default()
	if got := r.ResolveAlias("اطبع"); got != "print" {
		t.Errorf("ResolveAlias(اطبع) = %q", got)
	}
	if got := r.ResolveAlias("custom"); got != "custom" {
		t.Errorf("ResolveAlias(custom) = %q", got)
	}

	plain, _ := New(Options{Logger: log.Discard()})
	if err := plain.RegisterAlias("x", "print"); err == nil {
		t.Error("RegisterAlias() should fail when aliases are disabled")
	}
	if err := r.RegisterAlias("دالة", "print"); err == nil {
		t.Error("RegisterAlias() should reject keyword collisions")
	}
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"let":   "let",
		"إذا":   "اذا",
		"الأصل": "الاصل",
		"دالـة": "دالة",
	}
	for in, want := range tests {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

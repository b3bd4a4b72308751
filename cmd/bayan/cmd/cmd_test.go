package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	mdwlog "github.com/msto63/bayan/foundation/core/log"
	"github.com/msto63/bayan/internal/server"
	"github.com/msto63/bayan/pkg/core/config"
)

// testEnv writes a config file and program files into a temp directory
type testEnv struct {
	t      *testing.T
	dir    string
	config string
}

func newTestEnv(t *testing.T, files map[string]string) *testEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := `
[general]
log_level = "error"

[store]
path = "` + filepath.ToSlash(filepath.Join(dir, "facts.db")) + `"
`
	files["bayan.toml"] = cfg
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}
	return &testEnv{t: t, dir: dir, config: filepath.Join(dir, "bayan.toml")}
}

func (e *testEnv) path(name string) string {
	return filepath.Join(e.dir, name)
}

// run executes the CLI and returns stdout, stderr and the error
func (e *testEnv) run(stdin string, args ...string) (string, string, error) {
	e.t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetIn(strings.NewReader(stdin))
	err := execute(root, append([]string{"--config", e.config}, args...), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

const familyProgram = `fact parent("John", "Alice");
fact parent("Alice", "Mary");
rule grandparent(?x, ?z) :- parent(?x, ?y), parent(?y, ?z);
query grandparent("John", ?g);
print("grandchild:", ?g);
`

func TestRun(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"family.bayan": familyProgram,
		"broken.bayan": "let a = 1;\nlet b = ;\n",
		"throws.bayan": "print(\"start\");\nthrow \"bad\";\n",
	})

	tests := []struct {
		name    string
		stdin   string
		args    []string
		stdout  string
		stderr  []string
		failing bool
	}{
		{
			name:   "Program output",
			args:   []string{"run", env.path("family.bayan")},
			stdout: "grandchild: Mary\n",
		},
		{
			name:   "Final value",
			args:   []string{"run", "--value", "-"},
			stdin:  "let x = 20; x * 2 + 2;",
			stdout: "42\n",
		},
		{
			name:    "Syntax error rendered with caret",
			args:    []string{"run", env.path("broken.bayan")},
			stderr:  []string{"error[SYNTAX]:", "broken.bayan:2:9", "2 | let b = ;", "|         ^"},
			failing: true,
		},
		{
			name:    "Uncaught throw keeps output",
			args:    []string{"run", env.path("throws.bayan")},
			stdout:  "start\n",
			stderr:  []string{"error[THROW]: uncaught exception \"bad\"", "throws.bayan:2:1"},
			failing: true,
		},
		{
			name:    "Timeout",
			args:    []string{"run", "--timeout", "50ms", "-"},
			stdin:   "while (true) {}",
			stderr:  []string{"error[TIMEOUT]"},
			failing: true,
		},
		{
			name:    "Missing file",
			args:    []string{"run", env.path("nope.bayan")},
			stderr:  []string{"error:", "cannot read program"},
			failing: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := env.run(tt.stdin, tt.args...)
			if (err != nil) != tt.failing {
				t.Fatalf("err = %v, failing = %v\nstderr: %s", err, tt.failing, stderr)
			}
			if stdout != tt.stdout {
				t.Errorf("stdout = %q, want %q", stdout, tt.stdout)
			}
			for _, want := range tt.stderr {
				if !strings.Contains(stderr, want) {
					t.Errorf("stderr lacks %q:\n%s", want, stderr)
				}
			}
		})
	}
}

func TestRun_FactSnapshots(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"family.bayan": familyProgram,
		"ask.bayan":    "let found = query parent(\"Alice\", ?c);\nprint(found, ?c);\n",
	})

	if _, stderr, err := env.run("", "run", "--save", env.path("family.bayan")); err != nil {
		t.Fatalf("run --save failed: %v\n%s", err, stderr)
	}

	stdout, _, err := env.run("", "facts", "snapshots")
	if err != nil {
		t.Fatalf("facts snapshots failed: %v", err)
	}
	if !strings.Contains(stdout, "family.bayan") || !strings.Contains(stdout, "SKIPPED") {
		t.Errorf("Unexpected snapshot listing:\n%s", stdout)
	}

	stdout, _, err = env.run("", "facts", "list", "--predicate", "parent")
	if err != nil {
		t.Fatalf("facts list failed: %v", err)
	}
	want := "fact parent(\"John\", \"Alice\");\nfact parent(\"Alice\", \"Mary\");\n"
	if stdout != want {
		t.Errorf("facts list = %q, want %q", stdout, want)
	}

	stdout, _, err = env.run("", "run", "--restore", env.path("ask.bayan"))
	if err != nil || stdout != "true Mary\n" {
		t.Errorf("run --restore = %q, %v", stdout, err)
	}

	stdout, _, err = env.run("", "facts", "prune", "--keep", "0")
	if err != nil || stdout != "removed 1 snapshot(s)\n" {
		t.Errorf("facts prune = %q, %v", stdout, err)
	}
}

func TestInspectionCommands(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"arabic.bayan": "متغير س = ٤٢؛\nاطبع(س)؛\n",
		"bad.bayan":    "let = 1;",
	})

	tests := []struct {
		name    string
		args    []string
		check   func(t *testing.T, stdout string)
		failing bool
	}{
		{
			name: "Tokens",
			args: []string{"tokens", env.path("arabic.bayan")},
			check: func(t *testing.T, stdout string) {
				lines := strings.Split(strings.TrimSpace(stdout), "\n")
				if !strings.HasPrefix(lines[0], "1:1") || !strings.Contains(lines[0], "KW_LET") {
					t.Errorf("Unexpected first token line %q", lines[0])
				}
				if !strings.Contains(stdout, "42") {
					t.Errorf("Arabic-Indic digits should be normalized:\n%s", stdout)
				}
			},
		},
		{
			name: "AST as JSON",
			args: []string{"ast", env.path("arabic.bayan")},
			check: func(t *testing.T, stdout string) {
				var tree map[string]interface{}
				if err := json.Unmarshal([]byte(stdout), &tree); err != nil {
					t.Fatalf("Output is not JSON: %v", err)
				}
				if tree["type"] != "Program" {
					t.Errorf("Root type = %v", tree["type"])
				}
			},
		},
		{
			name: "AST as YAML",
			args: []string{"ast", "--format", "yaml", env.path("arabic.bayan")},
			check: func(t *testing.T, stdout string) {
				if !strings.Contains(stdout, "type: Program") {
					t.Errorf("Unexpected YAML:\n%s", stdout)
				}
			},
		},
		{
			name:    "AST unknown format",
			args:    []string{"ast", "--format", "xml", env.path("arabic.bayan")},
			failing: true,
		},
		{
			name: "Check",
			args: []string{"check", env.path("arabic.bayan")},
			check: func(t *testing.T, stdout string) {
				if !strings.HasSuffix(stdout, "arabic.bayan: ok\n") {
					t.Errorf("Unexpected check output %q", stdout)
				}
			},
		},
		{
			name:    "Check failure",
			args:    []string{"check", env.path("arabic.bayan"), env.path("bad.bayan")},
			failing: true,
		},
		{
			name: "Version",
			args: []string{"version"},
			check: func(t *testing.T, stdout string) {
				if !strings.HasPrefix(stdout, "bayan ") || !strings.Contains(stdout, "Wire protocol") {
					t.Errorf("Unexpected version output %q", stdout)
				}
			},
		},
		{
			name: "Keywords",
			args: []string{"keywords"},
			check: func(t *testing.T, stdout string) {
				for _, want := range []string{"fact", "حقيقة", "اطبع"} {
					if !strings.Contains(stdout, want) {
						t.Errorf("Keyword listing lacks %q", want)
					}
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := env.run("", tt.args...)
			if (err != nil) != tt.failing {
				t.Fatalf("err = %v, failing = %v\nstderr: %s", err, tt.failing, stderr)
			}
			if tt.check != nil {
				tt.check(t, stdout)
			}
		})
	}
}

func TestRun_Remote(t *testing.T) {
	cfg := config.Default()
	cfg.Server.GRPCPort = 0
	cfg.Server.HTTPPort = 0
	srv, err := server.New(server.Config{App: cfg, Logger: mdwlog.Discard()})
	if err != nil {
		t.Fatalf("server.New failed: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Stop(ctx)
	}()

	env := newTestEnv(t, map[string]string{
		"family.bayan": familyProgram,
		"broken.bayan": "print(1);\nlet = 2;\n",
	})

	stdout, stderr, err := env.run("", "run", "--remote", srv.GRPCAddress(), env.path("family.bayan"))
	if err != nil || stdout != "grandchild: Mary\n" {
		t.Errorf("remote run = %q, %v\n%s", stdout, err, stderr)
	}

	_, stderr, err = env.run("", "run", "--remote", srv.GRPCAddress(), env.path("broken.bayan"))
	if !errors.Is(err, errReported) || !strings.Contains(stderr, "broken.bayan:2:5") {
		t.Errorf("remote syntax error = %v\n%s", err, stderr)
	}
}

func TestRenderDiagnostics(t *testing.T) {
	src := "let ok = 1;\n\tlet x = @;\n"
	var buf bytes.Buffer
	renderDiagnostics(&buf, "tabs.bayan", src, []diagnostic{
		{Code: "LEXICAL", Message: "unexpected character '@'", Line: 2, Column: 10},
		{Code: "RUNTIME", Message: "no position"},
	})

	want := "error[LEXICAL]: unexpected character '@'\n" +
		"  --> tabs.bayan:2:10\n" +
		"   |\n" +
		" 2 | \tlet x = @;\n" +
		"   | \t        ^\n" +
		"\n" +
		"error[RUNTIME]: no position\n" +
		"  --> tabs.bayan\n"
	if buf.String() != want {
		t.Errorf("renderDiagnostics() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestCaretIndent(t *testing.T) {
	tests := []struct {
		text   string
		column int
		want   string
	}{
		{"abc", 1, ""},
		{"abc", 3, "  "},
		{"\tx", 2, "\t"},
		{"متغير س", 7, "      "},
		{"ab", 5, "    "},
	}
	for _, tt := range tests {
		if got := caretIndent(tt.text, tt.column); got != tt.want {
			t.Errorf("caretIndent(%q, %d) = %q, want %q", tt.text, tt.column, got, tt.want)
		}
	}
}

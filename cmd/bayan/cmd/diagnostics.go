package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/msto63/bayan/foundation/bayan/parser"
	mdwerror "github.com/msto63/bayan/foundation/core/error"
	"github.com/msto63/bayan/internal/server"
)

var (
	colorError = lipgloss.Color("#EF4444") // Red
	colorMuted = lipgloss.Color("#6B7280") // Gray
	colorCaret = lipgloss.Color("#F59E0B") // Amber
)

// diagnostic is one positioned problem, local or reported by a server
type diagnostic struct {
	Code    string
	Message string
	Line    int
	Column  int
}

func errorStyle(w io.Writer) lipgloss.Style {
	return lipgloss.NewRenderer(w).NewStyle().Foreground(colorError).Bold(true)
}

func mutedStyle(w io.Writer) lipgloss.Style {
	return lipgloss.NewRenderer(w).NewStyle().Foreground(colorMuted)
}

// diagnosticsFromError flattens err into positioned diagnostics
func diagnosticsFromError(err error) []diagnostic {
	var list parser.ErrorList
	if errors.As(err, &list) {
		out := make([]diagnostic, len(list))
		for i, e := range list {
			out[i] = fromError(e)
		}
		return out
	}
	var e *mdwerror.Error
	if errors.As(err, &e) {
		return []diagnostic{fromError(e)}
	}
	return []diagnostic{{Code: mdwerror.CodeUnknown.String(), Message: err.Error()}}
}

func fromError(e *mdwerror.Error) diagnostic {
	d := diagnostic{Code: e.Code().String(), Message: e.Message()}
	if cause := e.Unwrap(); cause != nil {
		d.Message += ": " + cause.Error()
	}
	d.Line, d.Column, _ = e.Position()
	return d
}

// diagnosticsFromResponse converts the error of a remote run
func diagnosticsFromResponse(resp *server.RunResponse) []diagnostic {
	if len(resp.Errors) > 0 {
		out := make([]diagnostic, len(resp.Errors))
		for i, e := range resp.Errors {
			out[i] = diagnostic{Code: e.Code, Message: e.Message, Line: e.Line, Column: e.Column}
		}
		return out
	}
	if e := resp.Error; e != nil {
		// the server renders positions into the message
		msg := strings.TrimSuffix(e.Message, fmt.Sprintf(" at line %d, column %d", e.Line, e.Column))
		return []diagnostic{{Code: e.Code, Message: msg, Line: e.Line, Column: e.Column}}
	}
	return nil
}

// renderDiagnostics prints each diagnostic with the offending source
// line and a caret under the reported column:
//
//	error[SYNTAX]: expected expression
//	  --> main.bayan:2:9
//	   |
//	 2 | let y = ;
//	   |         ^
func renderDiagnostics(w io.Writer, name, src string, diags []diagnostic) {
	r := lipgloss.NewRenderer(w)
	head := r.NewStyle().Foreground(colorError).Bold(true)
	gutter := r.NewStyle().Foreground(colorMuted)
	caret := r.NewStyle().Foreground(colorCaret).Bold(true)

	lines := strings.Split(src, "\n")
	for i, d := range diags {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s %s\n", head.Render(fmt.Sprintf("error[%s]:", d.Code)), d.Message)
		if d.Line < 1 || d.Line > len(lines) {
			fmt.Fprintf(w, "  %s %s\n", gutter.Render("-->"), name)
			continue
		}
		fmt.Fprintf(w, "  %s %s:%d:%d\n", gutter.Render("-->"), name, d.Line, d.Column)

		text := strings.TrimRight(lines[d.Line-1], "\r")
		num := fmt.Sprint(d.Line)
		pad := strings.Repeat(" ", len(num))
		fmt.Fprintf(w, " %s %s\n", pad, gutter.Render("|"))
		fmt.Fprintf(w, " %s %s %s\n", gutter.Render(num), gutter.Render("|"), text)
		if d.Column >= 1 {
			fmt.Fprintf(w, " %s %s %s%s\n", pad, gutter.Render("|"), caretIndent(text, d.Column), caret.Render("^"))
		}
	}
}

// caretIndent reproduces the whitespace before column so tabs line up.
// Columns count runes.
func caretIndent(text string, column int) string {
	var b strings.Builder
	n := 0
	for _, r := range text {
		if n >= column-1 {
			break
		}
		if r == '\t' {
			b.WriteRune('\t')
		} else {
			b.WriteRune(' ')
		}
		n++
	}
	for ; n < column-1; n++ {
		b.WriteRune(' ')
	}
	return b.String()
}

package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/msto63/bayan/foundation/bayan/ast"
	"github.com/msto63/bayan/foundation/bayan/compiler"
	"github.com/msto63/bayan/foundation/bayan/parser"
	mdwerror "github.com/msto63/bayan/foundation/core/error"
)

func newTokensCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file|->",
		Short: "Print the token stream of a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			tokens, err := parser.TokenizeInput(src)
			if err != nil {
				renderDiagnostics(cmd.ErrOrStderr(), displayPath(name), src, diagnosticsFromError(err))
				return errReported
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, tok := range tokens {
				fmt.Fprintf(w, "%d:%d\t%s\t%s\n", tok.Line, tok.Column, tok.Type, tok.Value)
			}
			return w.Flush()
		},
	}
}

func newASTCmd(a *app) *cobra.Command {
	var format string
	c := &cobra.Command{
		Use:   "ast <file|->",
		Short: "Print the syntax tree of a program as JSON or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			prog, err := a.parse(src)
			if err != nil {
				renderDiagnostics(cmd.ErrOrStderr(), displayPath(name), src, diagnosticsFromError(err))
				return errReported
			}
			tree := ast.Dump(prog)

			switch format {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(tree)
			case "yaml":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(tree)
			default:
				return mdwerror.Newf("unknown format %q, use json or yaml", format).WithCode(mdwerror.CodeInvalidInput)
			}
		},
	}
	c.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	return c
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>...",
		Short: "Parse and compile programs without running them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				name, src, err := readSource(cmd, path)
				if err != nil {
					return err
				}
				if err := a.check(src); err != nil {
					renderDiagnostics(cmd.ErrOrStderr(), displayPath(name), src, diagnosticsFromError(err))
					failed++
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", displayPath(name))
			}
			if failed > 0 {
				return errReported
			}
			return nil
		},
	}
}

func (a *app) parse(src string) (*ast.Program, error) {
	e, err := a.newEngine(nil, nil)
	if err != nil {
		return nil, err
	}
	return e.Parse(src)
}

// check runs the front end: tokenizer, parser and code generator
func (a *app) check(src string) error {
	prog, err := a.parse(src)
	if err != nil {
		return err
	}
	_, err = compiler.New(compiler.Options{Logger: a.logger}).Compile(prog)
	return err
}

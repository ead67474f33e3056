package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corvid-lang/corvidc/internal/ast"
	"github.com/corvid-lang/corvidc/internal/fmtmacro"
	"github.com/corvid-lang/corvidc/internal/token"
)

var (
	fmtExpandArgs  []string
	fmtExpandNamed []string
)

var fmtExpandCmd = &cobra.Command{
	Use:   "fmt-expand <format-string>",
	Short: "Expand a format-macro invocation and print its fragments and token tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var macroArgs []fmtmacro.Arg
		for _, name := range fmtExpandArgs {
			macroArgs = append(macroArgs, fmtmacro.Arg{Expr: identExpr(name)})
		}
		for _, kv := range fmtExpandNamed {
			name, expr, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("--named expects name=expr, got %q", kv)
			}
			macroArgs = append(macroArgs, fmtmacro.Arg{Name: name, Expr: identExpr(expr)})
		}

		exp, rep := fmtmacro.Parse(args[0], token.Pos{File: "<fmt-expand>", Line: 1, Column: 1}, macroArgs)
		if rep != nil {
			renderReport(os.Stderr, rep)
			os.Exit(1)
		}

		for i, f := range exp.Fragments {
			fmt.Printf("fragment %d: literal=%q argIndex=%d trait=%s\n", i, f.Literal, f.ArgIndex, traitName(f.Trait))
		}
		fmt.Printf("trailing literal: %q\n", exp.TrailingLiteral)

		fmt.Println("token tree:")
		for _, tok := range exp.ToTokens(token.Pos{File: "<fmt-expand>", Line: 1, Column: 1}) {
			if tok.Kind == token.FRAGMENT {
				fmt.Println("  <fragment>")
				continue
			}
			fmt.Printf("  %s %q\n", tok.Kind, tok.Literal)
		}
		return nil
	},
}

func init() {
	fmtExpandCmd.Flags().StringSliceVar(&fmtExpandArgs, "args", nil, "comma-separated positional argument identifiers")
	fmtExpandCmd.Flags().StringSliceVar(&fmtExpandNamed, "named", nil, "repeated name=expr named arguments")
}

func identExpr(name string) ast.Expr {
	return &ast.PathExpr{PathP: &ast.PathLocal{Name: name}}
}

func traitName(t fmtmacro.TraitSelector) string {
	switch t {
	case fmtmacro.TraitDisplay:
		return "Display"
	case fmtmacro.TraitDebug:
		return "Debug"
	case fmtmacro.TraitBinary:
		return "Binary"
	case fmtmacro.TraitOctal:
		return "Octal"
	case fmtmacro.TraitLowerHex:
		return "LowerHex"
	case fmtmacro.TraitUpperHex:
		return "UpperHex"
	case fmtmacro.TraitPointer:
		return "Pointer"
	case fmtmacro.TraitLowerExp:
		return "LowerExp"
	case fmtmacro.TraitUpperExp:
		return "UpperExp"
	}
	return "?"
}

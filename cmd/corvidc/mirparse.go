package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corvid-lang/corvidc/internal/mirtext"
)

var mirParseCmd = &cobra.Command{
	Use:   "mir-parse <file.mir>",
	Short: "Parse a MIR-text fixture and print a per-function summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		f, rep := mirtext.Parse(string(data), args[0])
		if rep != nil {
			renderReport(os.Stderr, rep)
			os.Exit(1)
		}

		for _, fn := range f.Functions {
			fmt.Printf("fn %s(%d param(s)) -> %s: %d local(s), %d block(s)\n",
				fn.Name, len(fn.Params), fn.RetType, len(fn.Locals), len(fn.Blocks))
			for _, bb := range fn.Blocks {
				fmt.Printf("  %s: %d stmt(s), terminator=%s\n", bb.Label, len(bb.Stmts), terminatorName(bb.Term.Kind))
			}
		}
		return nil
	},
}

func terminatorName(k mirtext.TerminatorKind) string {
	switch k {
	case mirtext.TermReturn:
		return "RETURN"
	case mirtext.TermDiverge:
		return "DIVERGE"
	case mirtext.TermGoto:
		return "GOTO"
	case mirtext.TermPanic:
		return "PANIC"
	case mirtext.TermCall:
		return "CALL"
	case mirtext.TermIf:
		return "IF"
	case mirtext.TermSwitch:
		return "SWITCH"
	}
	return "?"
}

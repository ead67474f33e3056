package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/corvid-lang/corvidc/internal/parser"
	"github.com/corvid-lang/corvidc/internal/resolve"
)

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "A line-edited read-eval-print-AST loop over single items",
	Long:  "explore feeds each entered line through the lexer/parser and prints the resulting AST — there is no evaluator, since that sits outside this core's scope.",
	RunE: func(cmd *cobra.Command, args []string) error {
		runExplore(os.Stdin, os.Stdout)
		return nil
	},
}

func runExplore(in *os.File, out *os.File) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyFile := filepath.Join(os.TempDir(), ".corvidc_explore_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintln(out, bold("corvidc explore"))
	fmt.Fprintln(out, dim("Enter one item at a time (fn/struct/enum/...). Ctrl-D to quit."))

	for {
		input, err := line.Prompt("corvid> ")
		if err != nil {
			break
		}
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		file, rep := parser.ParseCrateRoot(resolve.NewMapResolver(map[string]string{"<explore>": input}), "<explore>", nil)
		if rep != nil {
			renderReport(out, rep)
			continue
		}
		fmt.Fprintln(out, file.String())
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
	fmt.Fprintln(out, dim("\nGoodbye!"))
}

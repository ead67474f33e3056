// Command corvidc is a thin demonstration driver over the front-end core
// (spec.md §1 notes the driver/CLI proper is out of scope): it exercises
// the lexer/parser, lowerer, format-macro expander, and MIR-text parser
// packages end to end, one subcommand per component, rather than acting
// as a production compiler driver.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	red    = color.New(color.FgRed, color.Bold).SprintFunc()
	yellow = color.New(color.FgYellow, color.Bold).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()

	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:     "corvidc",
	Short:   "corvidc — Corvid front-end demonstration driver",
	Long:    "corvidc exercises the Corvid compiler front-end's lexer, parser, lowerer, format-macro expander, and MIR-text harness parser from the command line.",
	Version: "dev",
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit line-delimited JSON diagnostics instead of colored text")
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(lowerCmd)
	rootCmd.AddCommand(fmtExpandCmd)
	rootCmd.AddCommand(mirParseCmd)
	rootCmd.AddCommand(exploreCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corvid-lang/corvidc/internal/parser"
	"github.com/corvid-lang/corvidc/internal/resolve"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a crate root and print its AST",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, rep := parser.ParseCrateRoot(resolve.NewFSResolver(), args[0], nil)
		if rep != nil {
			renderReport(os.Stderr, rep)
			os.Exit(1)
		}
		fmt.Println(file.String())
		return nil
	},
}

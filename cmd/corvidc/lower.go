package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/corvid-lang/corvidc/internal/config"
	"github.com/corvid-lang/corvidc/internal/errors"
	"github.com/corvid-lang/corvidc/internal/hir"
	"github.com/corvid-lang/corvidc/internal/lower"
	"github.com/corvid-lang/corvidc/internal/parser"
	"github.com/corvid-lang/corvidc/internal/resolve"
)

var manifestPath string

var lowerCmd = &cobra.Command{
	Use:   "lower <file>",
	Short: "Parse and lower a crate root to HIR, printing a module summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		crateName := "main"
		var manifest *config.Manifest
		if manifestPath != "" {
			m, rep := config.Load(manifestPath)
			if rep != nil {
				renderReport(os.Stderr, rep)
				os.Exit(1)
			}
			manifest = m
			crateName = m.CrateName()
		}

		file, rep := parser.ParseCrateRoot(resolve.NewFSResolver(), args[0], nil)
		if rep != nil {
			renderReport(os.Stderr, rep)
			os.Exit(1)
		}

		lowerer := lower.NewLowerer(crateName)
		if manifest != nil {
			overrides, rep := manifest.LangOverrides()
			if rep != nil {
				renderReport(os.Stderr, rep)
				os.Exit(1)
			}
			if rep := lowerer.SeedLangItems(overrides); rep != nil {
				renderReport(os.Stderr, rep)
				os.Exit(1)
			}
		}

		crate, rep := lowerer.LowerCrate(file)
		if rep != nil {
			renderReport(os.Stderr, rep)
			os.Exit(1)
		}

		if manifest != nil {
			externNames := make([]string, 0, len(manifest.Extern))
			for name := range manifest.Extern {
				externNames = append(externNames, name)
			}
			sort.Strings(externNames)
			for _, name := range externNames {
				externCrate, rep := loadExternCrate(name, manifest.Extern[name])
				if rep != nil {
					renderReport(os.Stderr, rep)
					os.Exit(1)
				}
				if rep := lowerer.LoadExternCrate(name, externCrate); rep != nil {
					renderReport(os.Stderr, rep)
					os.Exit(1)
				}
			}
		}

		printModuleSummary(crate.Root, 0)
		if len(crate.Lang) > 0 {
			fmt.Println("lang items:")
			names := make([]string, 0, len(crate.Lang))
			for n := range crate.Lang {
				names = append(names, n)
			}
			sort.Strings(names)
			for _, n := range names {
				fmt.Printf("  %s -> %s\n", n, crate.Lang[n].String())
			}
		}
		if len(crate.Extern) > 0 {
			names := make([]string, 0, len(crate.Extern))
			for n := range crate.Extern {
				names = append(names, n)
			}
			sort.Strings(names)
			fmt.Printf("extern crates: %v\n", names)
		}
		if len(crate.ExportedMacros) > 0 {
			names := make([]string, 0, len(crate.ExportedMacros))
			for n := range crate.ExportedMacros {
				names = append(names, n)
			}
			sort.Strings(names)
			fmt.Printf("exported macros: %v\n", names)
		}
		if len(crate.Libraries) > 0 {
			fmt.Printf("libraries to link: %v\n", crate.Libraries)
		}
		return nil
	},
}

// loadExternCrate parses and lowers the crate root at path under name, for
// merging into the host crate via Lowerer.LoadExternCrate.
func loadExternCrate(name, path string) (*hir.Crate, *errors.Report) {
	file, rep := parser.ParseCrateRoot(resolve.NewFSResolver(), path, nil)
	if rep != nil {
		return nil, rep
	}
	return lower.NewLowerer(name).LowerCrate(file)
}

func init() {
	lowerCmd.Flags().StringVar(&manifestPath, "manifest", "", "path to a corvid.yaml crate manifest (defaults to crate name \"main\")")
}

func printModuleSummary(mod *hir.Module, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	name := mod.Path.String()
	if name == "" {
		name = "(root)"
	}
	fmt.Printf("%smodule %s: %d struct(s), %d enum(s), %d function(s), %d trait(s)\n",
		indent, name, len(mod.Structs), len(mod.Enums), len(mod.Functions), len(mod.Traits))

	names := make([]string, 0, len(mod.Submodules))
	for n := range mod.Submodules {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		printModuleSummary(mod.Submodules[n], depth+1)
	}
}

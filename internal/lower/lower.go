// Package lower implements the AST → HIR lowering pass (spec.md §4.5): a
// dependency-ordered rewrite that resolves path classes, desugars
// data-bearing enums into anonymous sibling structs, normalizes generics,
// classifies method receivers, and processes repr/linkage attributes.
//
// Lowering is driven through an explicit Lowerer context object threaded
// through every call, never through process-wide mutable state — the same
// discipline the teacher's elaborator package uses for its Elaborator.
package lower

import (
	"fmt"
	"strings"

	"github.com/corvid-lang/corvidc/internal/ast"
	"github.com/corvid-lang/corvidc/internal/errors"
	"github.com/corvid-lang/corvidc/internal/hir"
)

// Lowerer holds the state threaded through one crate's worth of lowering:
// the crate under construction, the current generic-parameter environment,
// and the deferred impl-block worklist processed in the second pass.
type Lowerer struct {
	crate *hir.Crate

	// genericIndex maps the in-scope generic-parameter names to their HIR
	// index, rebuilt for every item that introduces its own generic
	// parameter list. It never holds "Self": lowerTypePath maps Self to
	// ImplicitSelfIndex.
	genericIndex map[string]int

	// pendingImpls accumulates every impl block seen in the first pass;
	// lowerImpls processes them in the required second pass, after every
	// struct/enum/trait declaration is known (spec.md §4.5).
	pendingImpls []pendingImpl
}

type pendingImpl struct {
	item      *ast.ImplItem
	modulePath hir.SimplePath
}

// NewLowerer creates a Lowerer for a fresh crate named crateName.
func NewLowerer(crateName string) *Lowerer {
	return &Lowerer{
		crate:        hir.NewCrate(crateName),
		genericIndex: map[string]int{},
	}
}

// LowerCrate drives the full two-pass lowering of a parsed crate root (plus
// its recursively-loaded submodules) into HIR, followed by the indexing
// post-pass (spec.md §4.5 C5 epilogue).
func (l *Lowerer) LowerCrate(root *ast.File) (*hir.Crate, *errors.Report) {
	if rep := l.lowerModuleItems(l.crate.Root, hir.SimplePath{}, root.Items); rep != nil {
		return nil, rep
	}
	if rep := l.lowerImpls(); rep != nil {
		return nil, rep
	}
	if rep := l.indexBounds(); rep != nil {
		return nil, rep
	}
	return l.crate, nil
}

// lowerModuleItems is the first pass: walk one module's item list (and
// recurse into any inline or out-of-line child modules), registering every
// struct/enum/trait/function declaration and deferring impl blocks to the
// second pass.
func (l *Lowerer) lowerModuleItems(mod *hir.Module, modPath hir.SimplePath, items []ast.Item) *errors.Report {
	for _, item := range items {
		switch it := item.(type) {
		case *ast.NoneItem, *ast.CrateItem, *ast.UseItem, *ast.MacroInvocation:
			// no HIR representation at this layer

		case *ast.MacroRulesItem:
			if hasAttrLower(it.Attrs, "macro_export") {
				l.crate.ExportedMacros[it.Name] = hir.ExportedMacroDef{Name: it.Name, Raw: it.Raw}
			}

		case *ast.StructItem:
			if rep := l.lowerStructItem(mod, modPath, it); rep != nil {
				return rep
			}
		case *ast.UnionItem:
			if rep := l.lowerUnionItem(mod, modPath, it); rep != nil {
				return rep
			}
		case *ast.EnumItem:
			if rep := l.lowerEnumItem(mod, modPath, it); rep != nil {
				return rep
			}
		case *ast.TraitItem:
			if rep := l.lowerTraitItem(mod, modPath, it); rep != nil {
				return rep
			}
		case *ast.FuncItem:
			fn, rep := l.lowerFuncItem(modPath, it)
			if rep != nil {
				return rep
			}
			mod.Functions[it.Name] = fn
			mod.Values[it.Name] = hir.NameTableEntry{Kind: hir.EntryLocal}
			if rep := l.recordLangItem(it.Attrs, fn.Path); rep != nil {
				return rep
			}
		case *ast.StaticItem:
			// statics don't participate in the type/value namespaces modeled
			// by hir.Module beyond occupying the value slot.
			mod.Values[it.Name] = hir.NameTableEntry{Kind: hir.EntryLocal}
		case *ast.TypeAliasItem:
			mod.Types[it.Name] = hir.NameTableEntry{Kind: hir.EntryLocal}
		case *ast.ExternBlockItem:
			if lib, ok := findLinkLibrary(it.Attrs); ok && !containsStr(l.crate.Libraries, lib) {
				l.crate.Libraries = append(l.crate.Libraries, lib)
			}
			if rep := l.lowerModuleItems(mod, modPath, it.Items); rep != nil {
				return rep
			}
		case *ast.ImplItem:
			l.pendingImpls = append(l.pendingImpls, pendingImpl{item: it, modulePath: modPath})

		case *ast.ModuleItem:
			childPath := appendComponent(modPath, it.Name)
			child := hir.NewModule(childPath)
			mod.Submodules[it.Name] = child
			children := it.Inline
			if it.File != nil {
				children = it.File.Items
			}
			if rep := l.lowerModuleItems(child, childPath, children); rep != nil {
				return rep
			}
		}
	}
	return nil
}

func appendComponent(base hir.SimplePath, name string) hir.SimplePath {
	comps := make([]string, len(base.Components)+1)
	copy(comps, base.Components)
	comps[len(base.Components)] = name
	return hir.SimplePath{Crate: base.Crate, Components: comps}
}

// recordLangItem deposits a "#[lang = \"...\"]" attribute into the
// crate-wide map (spec.md §4.5 "Language-item recording"). Equal mappings
// overwrite harmlessly, whether they come from the current crate's own
// duplicate attribute or were seeded earlier by SeedLangItems/
// LoadExternCrate; a conflicting mapping is a hard error naming both paths.
func (l *Lowerer) recordLangItem(attrs []*ast.Attribute, target hir.SimplePath) *errors.Report {
	for _, a := range attrs {
		if a.Name != "lang" {
			continue
		}
		s, ok := a.Payload.(ast.AttrString)
		if !ok {
			continue
		}
		name := string(s)
		if rep := l.mergeLangItem(name, target); rep != nil {
			return rep
		}
	}
	return nil
}

// mergeLangItem is the merge-or-conflict rule spec.md §4.5 and §8 scenario 6
// describe for lang items: equal mappings are silently merged regardless of
// where they came from (the current crate, SeedLangItems, or an extern
// crate loaded via LoadExternCrate); conflicting ones are a hard error
// naming both paths.
func (l *Lowerer) mergeLangItem(name string, target hir.SimplePath) *errors.Report {
	if existing, ok := l.crate.Lang[name]; ok && !existing.Equal(target) {
		return errors.New(errors.LOW009, "lower", fmt.Sprintf(
			"conflicting lang item definitions for %q: %s vs %s", name, existing.String(), target.String()))
	}
	l.crate.Lang[name] = target
	return nil
}

// SeedLangItems pre-populates the crate's lang-item map before lowering
// runs, from a crate manifest's "lang" override table (internal/config).
// Lowering's own "#[lang = \"...\"]" recording then merges against these
// seeds under the same equal-merge/conflict rule as any other lang item.
func (l *Lowerer) SeedLangItems(overrides hir.LangItems) *errors.Report {
	for name, path := range overrides {
		if rep := l.mergeLangItem(name, path); rep != nil {
			return rep
		}
	}
	return nil
}

// LoadExternCrate merges an independently lowered extern crate (named in
// the current crate's manifest extern table, parsed and lowered on its
// own) into this crate: its lang items merge via mergeLangItem, its linked
// libraries fold into this crate's own list, and it is recorded in the
// extern-crate table under name (spec.md §6 "Downstream interface
// (produced)").
func (l *Lowerer) LoadExternCrate(name string, extern *hir.Crate) *errors.Report {
	for langName, path := range extern.Lang {
		if rep := l.mergeLangItem(langName, path); rep != nil {
			return rep
		}
	}
	for _, lib := range extern.Libraries {
		if !containsStr(l.crate.Libraries, lib) {
			l.crate.Libraries = append(l.crate.Libraries, lib)
		}
	}
	l.crate.Extern[name] = extern
	return nil
}

// findLinkLibrary extracts the "name" argument of a
// "#[link(name = \"...\")]" attribute applied to an extern block, if any.
func findLinkLibrary(attrs []*ast.Attribute) (string, bool) {
	for _, a := range attrs {
		if a.Name != "link" {
			continue
		}
		list, ok := a.Payload.(ast.AttrList)
		if !ok {
			continue
		}
		for _, sub := range list {
			if sub.Name == "name" {
				if s, ok := sub.Payload.(ast.AttrString); ok {
					return string(s), true
				}
			}
		}
	}
	return "", false
}

func containsStr(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

func pathKey(p hir.SimplePath) string {
	return strings.Join(p.Components, "::")
}

package ast

import (
	"fmt"
	"sort"
	"strings"
)

// Print renders a File as an indented S-expression-ish tree, used by the
// parser golden tests. It is
// deliberately not round-trippable surface syntax (spec.md's Non-goals
// disclaim byte-identical source formatting).
func Print(f *File) string {
	var sb strings.Builder
	for _, it := range f.Items {
		printItem(&sb, it, 0)
	}
	return sb.String()
}

func indent(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
}

func printItem(sb *strings.Builder, it Item, depth int) {
	indent(sb, depth)
	switch v := it.(type) {
	case *StructItem:
		fmt.Fprintf(sb, "(struct %s%s)\n", v.Name, kindSuffix(v.Kind, len(v.Fields)))
	case *EnumItem:
		names := make([]string, len(v.Variants))
		for i, variant := range v.Variants {
			names[i] = variant.Name
		}
		fmt.Fprintf(sb, "(enum %s [%s])\n", v.Name, strings.Join(names, " "))
	case *FuncItem:
		fmt.Fprintf(sb, "(fn %s (%s))\n", v.Name, paramNames(v.Params))
	case *TraitItem:
		fmt.Fprintf(sb, "(trait %s)\n", v.Name)
	case *ImplItem:
		target := ""
		if v.Target != nil {
			target = v.Target.String()
		}
		fmt.Fprintf(sb, "(impl %s)\n", target)
	case *ModuleItem:
		fmt.Fprintf(sb, "(mod %s\n", v.Name)
		for _, sub := range v.Inline {
			printItem(sb, sub, depth+1)
		}
		indent(sb, depth)
		sb.WriteString(")\n")
	case *UseItem:
		sb.WriteString("(use)\n")
	case *TypeAliasItem:
		fmt.Fprintf(sb, "(type %s)\n", v.Name)
	case *StaticItem:
		fmt.Fprintf(sb, "(static %s)\n", v.Name)
	case *MacroInvocation:
		fmt.Fprintf(sb, "(macro! %s)\n", v.PathP.String())
	case *MacroRulesItem:
		fmt.Fprintf(sb, "(macro_rules! %s)\n", v.Name)
	case *NoneItem:
		sb.WriteString("(none)\n")
	default:
		fmt.Fprintf(sb, "(item %T)\n", v)
	}
}

func kindSuffix(k StructKind, n int) string {
	switch k {
	case StructUnit:
		return ""
	case StructTuple:
		return fmt.Sprintf(" tuple/%d", n)
	default:
		return fmt.Sprintf(" named/%d", n)
	}
}

// SortedAttrNames returns an attribute list's names, used by tests that
// want to assert presence without caring about source order.
func SortedAttrNames(attrs []*Attribute) []string {
	names := make([]string, len(attrs))
	for i, a := range attrs {
		names[i] = a.Name
	}
	sort.Strings(names)
	return names
}

// Package hir defines the canonicalized High-level Intermediate
// Representation the lowerer (internal/lower) produces from the surface
// AST: paths resolved to a crate-qualified form, types in canonical shape,
// and the per-item structures (struct, enum, function, trait, module) spec.md
// §3/§4.4 describes. Unlike the AST, HIR nodes are single-assignment after
// construction; downstream passes set only designated cache fields.
package hir

import "strings"

// SimplePath is a crate-qualified dotted path: an empty Crate denotes the
// current crate, a non-empty one an external crate loaded by name.
type SimplePath struct {
	Crate      string
	Components []string
}

func (p SimplePath) String() string {
	prefix := ""
	if p.Crate != "" {
		prefix = p.Crate + "::"
	}
	return prefix + strings.Join(p.Components, "::")
}

// Equal reports whether p and other name the same path. SimplePath embeds a
// slice, so it isn't comparable with "=="; callers that need to detect a
// conflicting vs. redundant mapping (e.g. lang-item merging) use this
// instead.
func (p SimplePath) Equal(other SimplePath) bool {
	if p.Crate != other.Crate || len(p.Components) != len(other.Components) {
		return false
	}
	for i, c := range p.Components {
		if c != other.Components[i] {
			return false
		}
	}
	return true
}

// AssocBinding is one "Name = Type" associated-type-binding entry attached
// to a generic path.
type AssocBinding struct {
	Name string
	Type *TypeRef
}

// PathParams is the resolved generic-argument list attached to a path.
type PathParams struct {
	Types    []*TypeRef
	Bindings []AssocBinding
}

// GenericPath is a SimplePath plus its generic arguments.
type GenericPath struct {
	Base   SimplePath
	Params PathParams
}

// HigherRankedLifetime is a "for<'a>" binder captured on a trait bound.
type HigherRankedLifetime struct {
	Name string
}

// TraitBoundMap records, for every type parameter index (keyed by name),
// the set of trait paths it must satisfy — used by TraitPath to describe a
// trait reference's own bound environment (e.g. an associated-type's
// `where Self::Item: Clone` style constraint carried alongside the trait).
type TraitBoundMap map[string][]GenericPath

// TraitPath extends GenericPath with the bound map and HRB list a trait
// reference carries (spec.md §3 HIR: "TraitPath = GenericPath + type-bound
// map + higher-ranked lifetimes").
type TraitPath struct {
	GenericPath
	Bounds TraitBoundMap
	HRBs   []HigherRankedLifetime

	// Resolved is the non-owning handle to the definitive Trait this path
	// names, bound by the indexing post-pass (spec.md §4.5 "Indexing
	// post-pass"). Nil until that pass runs; never populated eagerly so
	// forward references across modules stay legal.
	Resolved *Trait
}

// PathKind discriminates the four HIR path forms.
type PathKind int

const (
	PathGeneric PathKind = iota
	PathUfcsInherent
	PathUfcsKnown
	PathUfcsUnknown
)

// Path is the HIR path sum type (spec.md §3): a resolved SimplePath/
// GenericPath reference, or one of three UFCS forms depending on whether
// the trait is present/valid.
type Path struct {
	Kind PathKind

	// PathGeneric
	Generic GenericPath

	// PathUfcsInherent / PathUfcsKnown / PathUfcsUnknown
	Type   *TypeRef
	Trait  *TraitPath // non-nil only for PathUfcsKnown
	Item   string
	Params PathParams
}

func (p Path) String() string {
	switch p.Kind {
	case PathGeneric:
		return p.Generic.Base.String()
	case PathUfcsKnown:
		return "<" + p.Type.String() + " as " + p.Trait.Base.String() + ">::" + p.Item
	default:
		return "<" + p.Type.String() + ">::" + p.Item
	}
}

// ImplicitSelfIndex is the reserved generic-parameter index for the
// implicit Self type parameter (spec.md §3 HIR invariant).
const ImplicitSelfIndex = 0xFFFF

// TypeRefKind discriminates the canonicalized TypeRef sum type.
type TypeRefKind int

const (
	TyDiverge TypeRefKind = iota
	TyInfer
	TyTuple
	TyPrimitive
	TyBorrow
	TyPointer
	TyArray
	TySlice
	TyPath
	TyTraitObject
	TyErased
	TyFunction
	TyGeneric
)

// TypeRef is the canonicalized type representation produced by lowering.
// Only the fields relevant to Kind are populated; the rest are zero.
type TypeRef struct {
	Kind TypeRefKind

	// TyTuple
	Elems []*TypeRef

	// TyPrimitive
	Primitive string // "i32", "bool", "char", "str", "unit", ...

	// TyBorrow / TyPointer
	Mut   bool
	Inner *TypeRef

	// TyArray
	Size     int64 // -1 if SizeExpr is set instead of a constant
	SizeExpr interface{} // opaque AST expression handle, set only when non-constant

	// TyPath
	PathP Path

	// TyTraitObject
	Trait    *TypeRef // nil if only markers
	Markers  []*TypeRef
	Lifetime string

	// TyErased ("impl Trait" return-position existentials); its position
	// among Origin's erased types is kept in Index, below
	Origin string // defining function's path, for uniqueness
	Traits []*TypeRef

	// TyFunction
	Unsafe bool
	ABI    string
	Ret    *TypeRef
	Args   []*TypeRef

	// TyGeneric
	Name  string
	Index int // TyErased: position within Origin; TyGeneric: parameter index, ImplicitSelfIndex for the implicit Self parameter
}

func (t *TypeRef) String() string {
	if t == nil {
		return "()"
	}
	switch t.Kind {
	case TyDiverge:
		return "!"
	case TyInfer:
		return "_"
	case TyPrimitive:
		return t.Primitive
	case TyBorrow:
		if t.Mut {
			return "&mut " + t.Inner.String()
		}
		return "&" + t.Inner.String()
	case TyPointer:
		if t.Mut {
			return "*mut " + t.Inner.String()
		}
		return "*const " + t.Inner.String()
	case TySlice:
		return "[" + t.Inner.String() + "]"
	case TyArray:
		return "[" + t.Inner.String() + "; N]"
	case TyPath:
		return t.PathP.String()
	case TyGeneric:
		return t.Name
	case TyTuple:
		parts := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case TyFunction:
		parts := make([]string, len(t.Args))
		for i, a := range t.Args {
			parts[i] = a.String()
		}
		return "fn(" + strings.Join(parts, ", ") + ") -> " + t.Ret.String()
	case TyTraitObject:
		return "dyn " + t.Trait.String()
	case TyErased:
		return "impl Trait"
	}
	return "<typeref>"
}

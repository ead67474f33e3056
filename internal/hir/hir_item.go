package hir

import "github.com/corvid-lang/corvidc/internal/token"

// Publicity is the three-form HIR visibility model (spec.md §4.4): global
// (visible everywhere), private to a module subtree, or the internal
// marker for compiler-synthesized items that no source path can name.
type PublicityKind int

const (
	PublicityGlobal PublicityKind = iota
	PublicityPrivate
	PublicityNone
)

type Publicity struct {
	Kind PublicityKind
	Path SimplePath // for PublicityPrivate: the module subtree root
}

// IsVisible reports whether an item with this Publicity is visible from
// consumerPath.
func (v Publicity) IsVisible(consumerPath SimplePath) bool {
	switch v.Kind {
	case PublicityGlobal:
		return true
	case PublicityNone:
		return false
	default:
		if len(consumerPath.Components) < len(v.Path.Components) {
			return false
		}
		for i, c := range v.Path.Components {
			if consumerPath.Components[i] != c {
				return false
			}
		}
		return true
	}
}

// ReprKind is the struct representation tag resolved from #[repr(...)].
type ReprKind int

const (
	ReprRust ReprKind = iota
	ReprC
	ReprPacked
	ReprSimd
	ReprAligned
	ReprTransparent
)

type Repr struct {
	Kind  ReprKind
	Align int64 // for ReprAligned
}

// StructField is one lowered field: a name (empty for tuple positions,
// matching source order) and its canonical type.
type StructField struct {
	Name string
	Type *TypeRef
	Vis  Publicity
}

// Struct is a lowered struct or (for data-bearing enum variants) a
// synthesized sibling struct named "EnumName#VariantName".
type Struct struct {
	Path     SimplePath
	Generics []string // type-parameter names, in declaration order
	Repr     Repr
	Fields   []StructField
	IsTuple  bool
}

// EnumKind discriminates the two enum lowering shapes.
type EnumKind int

const (
	EnumValue EnumKind = iota
	EnumData
)

// EnumValueVariant is one unit-like variant in an EnumValue enum.
type EnumValueVariant struct {
	Name        string
	Discriminant int64
}

// EnumDataVariant is one variant of an EnumData enum: its payload has been
// lowered into a synthesized sibling Struct, referenced here by path.
type EnumDataVariant struct {
	Name       string
	StructPath SimplePath
}

// Enum is a lowered enum. Exactly one of ValueVariants/DataVariants is
// populated, selected by Kind.
type Enum struct {
	Path          SimplePath
	Generics      []string
	Kind          EnumKind
	Repr          ReprKind // EnumValue only: ReprC for repr(C), else ReprRust; integer reprs are not recorded
	ValueVariants []EnumValueVariant
	DataVariants  []EnumDataVariant
}

// Receiver classifies how a function's first parameter binds `self`.
type Receiver int

const (
	ReceiverFree Receiver = iota
	ReceiverValue
	ReceiverBorrowOwned
	ReceiverBorrowUnique
	ReceiverBorrowShared
	ReceiverBox
	ReceiverCustom
)

// Linkage records how a function is named at the object-file level.
type Linkage struct {
	HasExternalName bool
	ExternalName    string
}

// Param is one lowered function parameter.
type Param struct {
	Name string
	Type *TypeRef
}

// Function is a lowered free function, method, or trait method signature.
// Body is an opaque handle into whatever body representation the caller
// tracks (this core lowers signatures only; bodies are not interpreted
// past C5 per spec.md §1's scope).
type Function struct {
	Path     SimplePath
	Generics []string
	Receiver Receiver
	Params   []Param
	Ret      *TypeRef
	Linkage  Linkage
	HasBody  bool
	Body     interface{}
	Vis      Publicity
}

// AssocTypeDecl is a trait's associated-type declaration, its bounds split
// per spec.md §4.5's trait-lowering contract.
type AssocTypeDecl struct {
	Name         string
	IsSized      bool // default true; flipped false by a "!Sized" bound
	LifetimeBound string // "" if none
	TraitBounds  []TraitPath
	Default      *TypeRef
}

// AssocValueKind discriminates a trait's associated-value declarations.
type AssocValueKind int

const (
	AssocConst AssocValueKind = iota
	AssocStatic
	AssocFunc
)

type AssocValueDecl struct {
	Kind AssocValueKind
	Func *Function // set when Kind == AssocFunc
	Type *TypeRef  // set for AssocConst/AssocStatic
}

// Trait is a lowered trait declaration. TraitPath.Resolved handles on bounds that
// reference it are populated by the indexing post-pass (spec.md §4.5),
// never here.
type Trait struct {
	Path          SimplePath
	Generics      []string // "Self" first, then the declared parameters; no Self: ThisTrait bound is recorded
	Supertraits   []TraitPath
	AssocTypes    map[string]*AssocTypeDecl
	AssocValues   map[string]*AssocValueDecl
	IsMarker      bool
}

// ImplKind classifies a lowered impl block by the second-pass traversal
// (spec.md §4.5 "Module impls").
type ImplKind int

const (
	ImplTrait ImplKind = iota
	ImplMarker
	ImplInherent
)

// Impl is one lowered impl block.
type Impl struct {
	Kind          ImplKind
	TraitP        *TraitPath // nil for ImplInherent
	Target        *TypeRef
	Negative      bool
	Generics      []string
	AssocFuncs    map[string]*Function
	AssocConsts   map[string]*AssocValueDecl
	AssocTypes    map[string]*TypeRef
	Specialization map[string]bool // per-item specialization flags, keyed by item name
}

// ImplGroup partitions a crate's impls into the three lookup tables
// spec.md §4.4 describes: named (by the impl-head type's canonical path),
// non-named (primitives and tuples), and generic (fallback iteration).
type ImplGroup struct {
	Named    map[string][]*Impl
	NonNamed []*Impl
	Generic  []*Impl
}

func NewImplGroup() *ImplGroup {
	return &ImplGroup{Named: map[string][]*Impl{}}
}

// Lookup returns every impl applicable to a concrete type named by
// canonicalKey (empty for primitives/tuples), preferring the named table
// and falling back to scanning Generic.
func (g *ImplGroup) Lookup(canonicalKey string) []*Impl {
	var out []*Impl
	if canonicalKey != "" {
		out = append(out, g.Named[canonicalKey]...)
	} else {
		out = append(out, g.NonNamed...)
	}
	out = append(out, g.Generic...)
	return out
}

func (g *ImplGroup) Add(key string, named bool, impl *Impl) {
	switch {
	case impl.Generics != nil && len(impl.Generics) > 0 && !named:
		g.Generic = append(g.Generic, impl)
	case key == "":
		g.NonNamed = append(g.NonNamed, impl)
	default:
		g.Named[key] = append(g.Named[key], impl)
	}
}

// NameTableEntryKind distinguishes a local definition from a re-exported
// import within one of a Module's three name tables.
type NameTableEntryKind int

const (
	EntryLocal NameTableEntryKind = iota
	EntryImport
)

// NameTableEntry is one binding in a Module name table.
type NameTableEntry struct {
	Kind        NameTableEntryKind
	Target      SimplePath // for EntryImport: the path it was imported from
	IsVariant   bool       // true if this entry names an enum variant constructor
	VariantIdx  int
}

// Module holds the three independent name tables spec.md §4.4 requires:
// types, values, and macros, each keyed by local name. The same name may
// appear in more than one table (e.g. a tuple struct's type and its
// constructor function share a name).
type Module struct {
	Path   SimplePath
	Types  map[string]NameTableEntry
	Values map[string]NameTableEntry
	Macros map[string]NameTableEntry

	Structs   map[string]*Struct
	Enums     map[string]*Enum
	Functions map[string]*Function
	Traits    map[string]*Trait

	Submodules map[string]*Module
}

func NewModule(path SimplePath) *Module {
	return &Module{
		Path:       path,
		Types:      map[string]NameTableEntry{},
		Values:     map[string]NameTableEntry{},
		Macros:     map[string]NameTableEntry{},
		Structs:    map[string]*Struct{},
		Enums:      map[string]*Enum{},
		Functions:  map[string]*Function{},
		Traits:     map[string]*Trait{},
		Submodules: map[string]*Module{},
	}
}

// LangItems is the crate-wide map every "#[lang = \"...\"]" path is
// deposited into (spec.md §4.5 "Language-item recording"). Values name the
// HIR item (function, struct, or trait) registered under that lang name.
type LangItems map[string]SimplePath

// ExportedMacroDef is one "#[macro_export] macro_rules! name { ... }"
// definition carried into the crate's exported-macro-rules table. The body
// is kept as raw tokens: macro_rules expansion is an external collaborator
// this core names a contract for (spec.md §1/§6) but never interprets.
type ExportedMacroDef struct {
	Name string
	Raw  []token.Token
}

// Crate is the root of a lowered compilation unit: its root module, the
// crate-wide impl-group and lang-item tables the second lowering pass and
// the indexing post-pass populate, and the four tables spec.md §6's
// "Downstream interface (produced)" lists alongside them: the extern-crate
// table, the exported-macro-rules table, the procedural-macro reexport
// table, and the external-libraries-to-link list.
type Crate struct {
	Name  string
	Root  *Module
	Impls *ImplGroup
	Lang  LangItems

	// Extern holds every extern crate named in the current crate's manifest,
	// keyed by the name it was loaded under, each already lowered to its
	// own Crate value (spec.md §6).
	Extern map[string]*Crate

	// ExportedMacros is this crate's own #[macro_export] macro_rules!
	// definitions, keyed by name.
	ExportedMacros map[string]ExportedMacroDef

	// ProcMacroReexports records procedural-macro paths this crate
	// re-exports from a loaded extern crate. User-defined procedural
	// macros are themselves out of scope (spec.md §1); this table only
	// carries forward reexports inherited while loading an extern crate.
	ProcMacroReexports map[string]SimplePath

	// Libraries lists the external native libraries this crate (or any
	// extern crate it loads) asks the linker to pull in, via
	// "#[link(name = \"...\")]" on an extern block.
	Libraries []string
}

func NewCrate(name string) *Crate {
	return &Crate{
		Name:               name,
		Root:               NewModule(SimplePath{Components: nil}),
		Impls:              NewImplGroup(),
		Lang:               LangItems{},
		Extern:             map[string]*Crate{},
		ExportedMacros:     map[string]ExportedMacroDef{},
		ProcMacroReexports: map[string]SimplePath{},
	}
}

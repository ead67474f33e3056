package ast

import (
	"strings"

	"github.com/corvid-lang/corvidc/internal/token"
)

// NoneItem is the no-op placeholder a #[cfg]-filtered item is replaced
// with, rather than being spliced out of its containing slice (spec.md
// §4.3).
type NoneItem struct{ P token.Pos }

func (i *NoneItem) Pos() token.Pos { return i.P }
func (i *NoneItem) String() string { return "" }
func (i *NoneItem) itemNode()      {}

type ModuleItem struct {
	Attrs   []*Attribute
	Vis     Visibility
	Name    string
	Inline  []Item // non-nil for "mod foo { ... }"; nil for "mod foo;"
	File    *File  // populated after out-of-line resolution
	P       token.Pos
}

func (i *ModuleItem) Pos() token.Pos { return i.P }
func (i *ModuleItem) String() string { return "mod " + i.Name }
func (i *ModuleItem) itemNode()      {}

type CrateItem struct {
	Attrs []*Attribute
	P     token.Pos
}

func (i *CrateItem) Pos() token.Pos { return i.P }
func (i *CrateItem) String() string { return "extern crate" }
func (i *CrateItem) itemNode()      {}

// UseEntry is a single resolved leaf of a "use" tree: the full path plus
// the local name it's bound to (after any "as" rename), or "*" for a
// glob, or "self" to bind the path's own last segment.
type UseEntry struct {
	PathP    Path
	LocalName string
	IsGlob    bool
	IsSelf    bool
	P         token.Pos
}

type UseItem struct {
	Attrs   []*Attribute
	Vis     Visibility
	Entries []UseEntry
	P       token.Pos
}

func (i *UseItem) Pos() token.Pos { return i.P }
func (i *UseItem) String() string { return "use ..." }
func (i *UseItem) itemNode()      {}

type TypeAliasItem struct {
	Attrs   []*Attribute
	Vis     Visibility
	Name    string
	Generics *GenericParams
	Target  Type
	P       token.Pos
}

func (i *TypeAliasItem) Pos() token.Pos { return i.P }
func (i *TypeAliasItem) String() string { return "type " + i.Name }
func (i *TypeAliasItem) itemNode()      {}

type StructKind int

const (
	StructUnit StructKind = iota
	StructTuple
	StructNamed
)

type StructField struct {
	Attrs []*Attribute
	Vis   Visibility
	Name  string // empty for tuple fields
	Type  Type
	P     token.Pos
}

type StructItem struct {
	Attrs    []*Attribute
	Vis      Visibility
	Name     string
	Generics *GenericParams
	Kind     StructKind
	Fields   []StructField
	P        token.Pos
}

func (i *StructItem) Pos() token.Pos { return i.P }
func (i *StructItem) String() string { return "struct " + i.Name }
func (i *StructItem) itemNode()      {}

type EnumVariant struct {
	Attrs  []*Attribute
	Name   string
	Kind   StructKind // Unit, Tuple, or Named payload
	Fields []StructField
	Discriminant Expr // optional explicit "= N"
	P      token.Pos
}

type EnumItem struct {
	Attrs    []*Attribute
	Vis      Visibility
	Name     string
	Generics *GenericParams
	Variants []EnumVariant
	P        token.Pos
}

func (i *EnumItem) Pos() token.Pos { return i.P }
func (i *EnumItem) String() string { return "enum " + i.Name }
func (i *EnumItem) itemNode()      {}

type UnionItem struct {
	Attrs    []*Attribute
	Vis      Visibility
	Name     string
	Generics *GenericParams
	Fields   []StructField
	P        token.Pos
}

func (i *UnionItem) Pos() token.Pos { return i.P }
func (i *UnionItem) String() string { return "union " + i.Name }
func (i *UnionItem) itemNode()      {}

type TraitItem struct {
	Attrs    []*Attribute
	Vis      Visibility
	Unsafe   bool
	Name     string
	Generics *GenericParams
	Supertraits []Type
	Items    []Item // AssocType, AssocConst, AssocStatic, FuncItem (body optional)
	P        token.Pos
}

func (i *TraitItem) Pos() token.Pos { return i.P }
func (i *TraitItem) String() string { return "trait " + i.Name }
func (i *TraitItem) itemNode()      {}

// AssocTypeItem is an associated-type declaration inside a trait or impl.
type AssocTypeItem struct {
	Name     string
	Bounds   []Bound
	Default  Type // optional, trait position only
	Target   Type // the bound value, impl position only ("type X = Foo;")
	P        token.Pos
}

func (i *AssocTypeItem) Pos() token.Pos { return i.P }
func (i *AssocTypeItem) String() string { return "type " + i.Name }
func (i *AssocTypeItem) itemNode()      {}

type ImplItem struct {
	Attrs    []*Attribute
	Unsafe   bool
	Negative bool // "impl !Trait for Type {}"
	Generics *GenericParams
	Trait    Type // nil for an inherent impl
	Target   Type
	Where    []Bound
	Items    []Item
	P        token.Pos
}

func (i *ImplItem) Pos() token.Pos { return i.P }
func (i *ImplItem) String() string { return "impl ... for ..." }
func (i *ImplItem) itemNode()      {}

type Param struct {
	Pattern Pattern
	Type    Type // nil in prototype ("type alone") form
	P       token.Pos
}

// SelfKind classifies how "self" was written in a parameter list, before
// lowering computes the full Receiver classification from the resulting
// type (spec.md §4.5 keeps these as two distinct steps).
type SelfKind int

const (
	SelfNone SelfKind = iota
	SelfByValue
	SelfByRef
	SelfByRefMut
	SelfExplicitType // "self: T" — T reconstructed from &/mut/lifetime prefix, or written out fully
)

type FuncItem struct {
	Attrs      []*Attribute
	Vis        Visibility
	Unsafe     bool
	Extern     string // ABI string if "extern "C" fn", else ""
	Name       string
	Generics   *GenericParams
	SelfKind   SelfKind
	SelfType   Type // reconstructed receiver type, nil if SelfKind==SelfNone
	Params     []*Param
	Ret        Type // nil = unit
	Where      []Bound
	Body       *BlockExpr // nil for a prototype/trait-default-less signature
	P          token.Pos
}

func (i *FuncItem) Pos() token.Pos { return i.P }
func (i *FuncItem) String() string { return "fn " + i.Name }
func (i *FuncItem) itemNode()      {}

type StaticKind int

const (
	StaticConst StaticKind = iota
	StaticStatic
	StaticStaticMut
)

type StaticItem struct {
	Attrs []*Attribute
	Vis   Visibility
	Kind  StaticKind
	Name  string
	Type  Type
	Value Expr // optional for extern statics
	P     token.Pos
}

func (i *StaticItem) Pos() token.Pos { return i.P }
func (i *StaticItem) String() string { return "static " + i.Name }
func (i *StaticItem) itemNode()      {}

type ExternBlockItem struct {
	Attrs []*Attribute
	ABI   string
	Items []Item // FuncItem (no body) and StaticItem entries
	P     token.Pos
}

func (i *ExternBlockItem) Pos() token.Pos { return i.P }
func (i *ExternBlockItem) String() string { return "extern \"" + i.ABI + "\" { ... }" }
func (i *ExternBlockItem) itemNode()      {}

// MacroRulesItem is a "macro_rules! name { ... }" declaration. The body is
// not interpreted by this core (user-defined procedural macros are out of
// scope per spec.md §1); it is retained only so it round-trips and can be
// handed to the macro-rules expander collaborator (spec.md §6).
type MacroRulesItem struct {
	Attrs []*Attribute
	Name  string
	Raw   []token.Token
	P     token.Pos
}

func (i *MacroRulesItem) Pos() token.Pos { return i.P }
func (i *MacroRulesItem) String() string { return "macro_rules! " + i.Name }
func (i *MacroRulesItem) itemNode()      {}

func paramNames(ps []*Param) string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Pattern.String()
	}
	return strings.Join(names, ", ")
}

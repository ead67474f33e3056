package ast

import (
	"strings"

	"github.com/corvid-lang/corvidc/internal/token"
)

// PathType wraps a Path so it can appear anywhere a Type is expected
// (struct fields, function signatures, generic arguments, ...).
type PathType struct {
	P_ Path
	P  token.Pos
}

func (t *PathType) Pos() token.Pos { return t.P }
func (t *PathType) String() string { return t.P_.String() }
func (t *PathType) typeNode()      {}

type TupleType struct {
	Elems []Type
	P     token.Pos
}

func (t *TupleType) Pos() token.Pos { return t.P }
func (t *TupleType) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (t *TupleType) typeNode() {}

type BorrowType struct {
	Lifetime string
	Mut      bool
	Inner    Type
	P        token.Pos
}

func (t *BorrowType) Pos() token.Pos { return t.P }
func (t *BorrowType) String() string {
	m := ""
	if t.Mut {
		m = "mut "
	}
	return "&" + m + t.Inner.String()
}
func (t *BorrowType) typeNode() {}

type PointerType struct {
	Mut   bool
	Inner Type
	P     token.Pos
}

func (t *PointerType) Pos() token.Pos { return t.P }
func (t *PointerType) String() string {
	if t.Mut {
		return "*mut " + t.Inner.String()
	}
	return "*const " + t.Inner.String()
}
func (t *PointerType) typeNode() {}

type ArrayType struct {
	Elem Type
	Size Expr // nil if unsized (slice is represented by SliceType instead)
	P    token.Pos
}

func (t *ArrayType) Pos() token.Pos { return t.P }
func (t *ArrayType) String() string { return "[" + t.Elem.String() + "; N]" }
func (t *ArrayType) typeNode()      {}

type SliceType struct {
	Elem Type
	P    token.Pos
}

func (t *SliceType) Pos() token.Pos { return t.P }
func (t *SliceType) String() string { return "[" + t.Elem.String() + "]" }
func (t *SliceType) typeNode()      {}

// TraitObjectType is "dyn Trait + Marker + 'lifetime".
type TraitObjectType struct {
	Trait    Type // may be nil if only marker traits are present
	Markers  []Type
	Lifetime string
	P        token.Pos
}

func (t *TraitObjectType) Pos() token.Pos { return t.P }
func (t *TraitObjectType) String() string { return "dyn " + t.joinTraits() }
func (t *TraitObjectType) joinTraits() string {
	parts := []string{}
	if t.Trait != nil {
		parts = append(parts, t.Trait.String())
	}
	for _, m := range t.Markers {
		parts = append(parts, m.String())
	}
	return strings.Join(parts, " + ")
}
func (t *TraitObjectType) typeNode() {}

// FnType is a bare function-pointer type: "unsafe extern "C" fn(A, B) -> R".
type FnType struct {
	Unsafe bool
	ABI    string // "" = default
	Params []Type
	Ret    Type // nil = unit
	P      token.Pos
}

func (t *FnType) Pos() token.Pos { return t.P }
func (t *FnType) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return "fn(" + strings.Join(parts, ", ") + ")"
}
func (t *FnType) typeNode() {}

// InferType is the placeholder "_" type.
type InferType struct{ P token.Pos }

func (t *InferType) Pos() token.Pos { return t.P }
func (t *InferType) String() string { return "_" }
func (t *InferType) typeNode()      {}

// NeverType is "!", the diverging type.
type NeverType struct{ P token.Pos }

func (t *NeverType) Pos() token.Pos { return t.P }
func (t *NeverType) String() string { return "!" }
func (t *NeverType) typeNode()      {}

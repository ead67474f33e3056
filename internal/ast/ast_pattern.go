package ast

import (
	"strings"

	"github.com/corvid-lang/corvidc/internal/token"
)

// AnyPattern is "_".
type AnyPattern struct{ P token.Pos }

func (p *AnyPattern) Pos() token.Pos { return p.P }
func (p *AnyPattern) String() string { return "_" }
func (p *AnyPattern) patternNode()   {}

// MaybeBindPattern is a bare identifier before the parser has decided
// whether it binds a fresh name or refers to a unit struct/enum variant;
// resolved away during lowering (spec.md §4.5: "MaybeBind is illegal
// post-resolution").
type MaybeBindPattern struct {
	Name string
	P    token.Pos
}

func (p *MaybeBindPattern) Pos() token.Pos { return p.P }
func (p *MaybeBindPattern) String() string { return p.Name }
func (p *MaybeBindPattern) patternNode()   {}

// BindPattern binds a fresh name, confirmed as a binding (not a path) by
// the parser or lowerer.
type BindPattern struct {
	Name string
	Mut  bool
	Ref  bool // "ref" prefix; lowering folds this plus Mut into a binding-intent tag
	P    token.Pos
}

func (p *BindPattern) Pos() token.Pos { return p.P }
func (p *BindPattern) String() string { return p.Name }
func (p *BindPattern) patternNode()   {}

type RefPattern struct {
	Mut   bool
	Inner Pattern
	P     token.Pos
}

func (p *RefPattern) Pos() token.Pos { return p.P }
func (p *RefPattern) String() string { return "&" + p.Inner.String() }
func (p *RefPattern) patternNode()   {}

type BoxPattern struct {
	Inner Pattern
	P     token.Pos
}

func (p *BoxPattern) Pos() token.Pos { return p.P }
func (p *BoxPattern) String() string { return "box " + p.Inner.String() }
func (p *BoxPattern) patternNode()   {}

// TuplePattern is a bare tuple pattern "(a, .., b)". HasRest=true permits
// possibly-empty Leading/Trailing; HasRest=false requires Trailing empty.
type TuplePattern struct {
	Leading  []Pattern
	HasRest  bool
	Trailing []Pattern
	P        token.Pos
}

func (p *TuplePattern) Pos() token.Pos { return p.P }
func (p *TuplePattern) String() string {
	parts := patternStrings(p.Leading)
	if p.HasRest {
		parts = append(parts, "..")
	}
	parts = append(parts, patternStrings(p.Trailing)...)
	return "(" + strings.Join(parts, ", ") + ")"
}
func (p *TuplePattern) patternNode() {}

// StructTuplePattern matches a tuple-struct/enum-tuple-variant constructor.
type StructTuplePattern struct {
	PathP Path
	Tuple *TuplePattern
	P     token.Pos
}

func (p *StructTuplePattern) Pos() token.Pos { return p.P }
func (p *StructTuplePattern) String() string { return p.PathP.String() + p.Tuple.String() }
func (p *StructTuplePattern) patternNode()   {}

type FieldPattern struct {
	Name    string
	Pattern Pattern
	P       token.Pos
}

// StructPattern matches a named-field struct/variant. Exhaustive=false
// means a trailing ".." rest marker was present.
type StructPattern struct {
	PathP      Path
	Fields     []FieldPattern
	Exhaustive bool
	P          token.Pos
}

func (p *StructPattern) Pos() token.Pos { return p.P }
func (p *StructPattern) String() string {
	parts := make([]string, len(p.Fields))
	for i, f := range p.Fields {
		parts[i] = f.Name + ": " + f.Pattern.String()
	}
	if !p.Exhaustive {
		parts = append(parts, "..")
	}
	return p.PathP.String() + " { " + strings.Join(parts, ", ") + " }"
}
func (p *StructPattern) patternNode() {}

// ValuePattern matches a literal or, with End set, an inclusive range.
type ValuePattern struct {
	Start Expr
	End   Expr // nil for a single-value pattern
	P     token.Pos
}

func (p *ValuePattern) Pos() token.Pos { return p.P }
func (p *ValuePattern) String() string {
	if p.End != nil {
		return p.Start.String() + "..=" + p.End.String()
	}
	return p.Start.String()
}
func (p *ValuePattern) patternNode() {}

type SlicePattern struct {
	Elems []Pattern
	P     token.Pos
}

func (p *SlicePattern) Pos() token.Pos { return p.P }
func (p *SlicePattern) String() string {
	return "[" + strings.Join(patternStrings(p.Elems), ", ") + "]"
}
func (p *SlicePattern) patternNode() {}

// SplitSlicePattern matches "[a, b, .., y, z]": fixed leading/trailing
// sub-patterns flanking a possibly-bound ".." rest.
type SplitSlicePattern struct {
	Leading  []Pattern
	RestBind string // "" if the rest is unbound
	Trailing []Pattern
	P        token.Pos
}

func (p *SplitSlicePattern) Pos() token.Pos { return p.P }
func (p *SplitSlicePattern) String() string {
	parts := patternStrings(p.Leading)
	parts = append(parts, ".."+p.RestBind)
	parts = append(parts, patternStrings(p.Trailing)...)
	return "[" + strings.Join(parts, ", ") + "]"
}
func (p *SplitSlicePattern) patternNode() {}

// MacroPattern is an unexpanded macro invocation appearing in pattern
// position; carried until expansion splices the result in place.
type MacroPattern struct {
	Invocation *MacroInvocation
	P          token.Pos
}

func (p *MacroPattern) Pos() token.Pos { return p.P }
func (p *MacroPattern) String() string { return p.Invocation.String() }
func (p *MacroPattern) patternNode()   {}

func patternStrings(ps []Pattern) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.String()
	}
	return out
}

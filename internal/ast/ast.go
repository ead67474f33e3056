// Package ast defines the surface Abstract Syntax Tree produced by the
// parser: items, expressions, patterns, types, paths, generics, and
// attributes, plus the two forms of post-construction mutation the tree
// supports (macro-invocation splicing and #[cfg] filtering).
package ast

import (
	"strings"

	"github.com/corvid-lang/corvidc/internal/token"
)

// Node is implemented by every AST node.
type Node interface {
	Pos() token.Pos
	String() string
}

// Expr, Stmt, Type, and Pattern are marker interfaces over Node so the
// parser and lowerer can match exhaustively on sum-type members via type
// switches, the idiomatic Go stand-in for the hand-rolled tagged union the
// reference implementation uses.
type Expr interface {
	Node
	exprNode()
}

type Item interface {
	Node
	itemNode()
}

type Type interface {
	Node
	typeNode()
}

type Pattern interface {
	Node
	patternNode()
}

// ---------------------------------------------------------------------
// Attributes
// ---------------------------------------------------------------------

// AttrPayload is one of Flag, AttrString, AttrInt, or AttrList.
type AttrPayload interface{ attrPayload() }

type Flag struct{}

func (Flag) attrPayload() {}

type AttrString string

func (AttrString) attrPayload() {}

type AttrInt int64

func (AttrInt) attrPayload() {}

type AttrList []*Attribute

func (AttrList) attrPayload() {}

// Attribute is a single #[name(payload)] or #[name = payload] annotation.
// Attribute lists preserve source order; duplicates are legal at this
// level (the lowerer decides what to do with repeats).
type Attribute struct {
	Name    string
	Payload AttrPayload
	P       token.Pos
}

func (a *Attribute) Pos() token.Pos { return a.P }
func (a *Attribute) String() string { return "#[" + a.Name + "]" }

// ---------------------------------------------------------------------
// Paths
// ---------------------------------------------------------------------

// PathNode is one component of a multi-segment path: an identifier plus
// any generic arguments attached directly to that segment.
type PathNode struct {
	Name   string
	Params *PathParams // optional; nil if this segment has no <...>
	P      token.Pos
}

// PathParams is the generic-argument list attached to a path segment:
// lifetimes, types, and associated-type-binding equalities (Item = Type).
type PathParams struct {
	Lifetimes []string
	Types     []Type
	Bindings  []AssocBinding
	P         token.Pos
}

type AssocBinding struct {
	Name string
	Type Type
}

// Path is the sum type from spec.md §3: Invalid, Local, Relative, Self,
// Super, Absolute, or UFCS.
type Path interface {
	Node
	pathNode()
}

type PathInvalid struct{ P token.Pos }

func (p *PathInvalid) Pos() token.Pos { return p.P }
func (p *PathInvalid) String() string { return "<invalid path>" }
func (p *PathInvalid) pathNode()      {}

type PathLocal struct {
	Name string
	P    token.Pos
}

func (p *PathLocal) Pos() token.Pos { return p.P }
func (p *PathLocal) String() string { return p.Name }
func (p *PathLocal) pathNode()      {}

type PathRelative struct {
	Nodes []PathNode
	P     token.Pos
}

func (p *PathRelative) Pos() token.Pos { return p.P }
func (p *PathRelative) String() string { return joinPathNodes(p.Nodes) }
func (p *PathRelative) pathNode()      {}

type PathSelf struct{ P token.Pos }

func (p *PathSelf) Pos() token.Pos { return p.P }
func (p *PathSelf) String() string { return "self" }
func (p *PathSelf) pathNode()      {}

type PathSuper struct {
	Depth int
	Nodes []PathNode
	P     token.Pos
}

func (p *PathSuper) Pos() token.Pos { return p.P }
func (p *PathSuper) String() string {
	return strings.Repeat("super::", p.Depth) + joinPathNodes(p.Nodes)
}
func (p *PathSuper) pathNode() {}

type PathAbsolute struct {
	Crate string // empty = current crate
	Nodes []PathNode
	P     token.Pos
}

func (p *PathAbsolute) Pos() token.Pos { return p.P }
func (p *PathAbsolute) String() string {
	prefix := "::"
	if p.Crate != "" {
		prefix = "::" + p.Crate + "::"
	}
	return prefix + joinPathNodes(p.Nodes)
}
func (p *PathAbsolute) pathNode() {}

// PathUFCS is "<Type as Trait?>::nodes" — universal function call syntax.
type PathUFCS struct {
	Type  Type
	Trait Type // nil if no "as Trait" clause
	Nodes []PathNode
	P     token.Pos
}

func (p *PathUFCS) Pos() token.Pos { return p.P }
func (p *PathUFCS) String() string {
	if p.Trait != nil {
		return "<" + p.Type.String() + " as " + p.Trait.String() + ">::" + joinPathNodes(p.Nodes)
	}
	return "<" + p.Type.String() + ">::" + joinPathNodes(p.Nodes)
}
func (p *PathUFCS) pathNode() {}

func joinPathNodes(nodes []PathNode) string {
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Name
	}
	return strings.Join(names, "::")
}

// ---------------------------------------------------------------------
// Generics
// ---------------------------------------------------------------------

type BoundKind int

const (
	BoundLifetimeOutlives BoundKind = iota // 'a: 'b
	BoundTypeOutlives                      // T: 'a
	BoundTypeTrait                         // T: Trait (+ HRBs)
	BoundTypeEq                            // T = Type
	BoundTypeNotTrait                      // T: !Sized
)

// Bound is one entry in a GenericParams' unordered bound set, collected
// uniformly whether it was written inline on a parameter or in a trailing
// where clause.
type Bound struct {
	Kind       BoundKind
	Subject    string // lifetime name or type-parameter name, or "Self"
	Lifetime   string // for BoundLifetimeOutlives / BoundTypeOutlives
	TraitPath  Type   // for BoundTypeTrait / BoundTypeNotTrait
	HRBs       []string
	EqualsType Type // for BoundTypeEq
	P          token.Pos
}

type LifetimeParam struct {
	Name string
	P    token.Pos
}

type TypeParam struct {
	Name    string
	Default Type // optional
	P       token.Pos
}

// GenericParams holds an ordered lifetime-parameter list, an ordered
// type-parameter list, and an unordered bound set gathering both inline
// and where-clause bounds.
type GenericParams struct {
	Lifetimes []LifetimeParam
	Types     []TypeParam
	Bounds    []Bound
	P         token.Pos
}

func (g *GenericParams) Pos() token.Pos { return g.P }
func (g *GenericParams) String() string {
	if g == nil || (len(g.Lifetimes) == 0 && len(g.Types) == 0) {
		return ""
	}
	parts := []string{}
	for _, l := range g.Lifetimes {
		parts = append(parts, "'"+l.Name)
	}
	for _, t := range g.Types {
		parts = append(parts, t.Name)
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

// HigherRankedBound is a "for<'a, 'b>" prefix. Binder is Outer when the
// HRB qualifies a whole "+"-joined bound list, Inner when it binds tightly
// to a single trait reference.
type HRBBinderKind int

const (
	HRBOuter HRBBinderKind = iota
	HRBInner
)

type HigherRankedBound struct {
	Lifetimes []string
	Binder    HRBBinderKind
	P         token.Pos
}

// ---------------------------------------------------------------------
// File / module
// ---------------------------------------------------------------------

// File is the parsed contents of one source file.
type File struct {
	Attrs        []*Attribute
	Items        []Item
	Path         string // effective file path that produced this module
	ControlsDir  bool   // decides how child "mod X;" resolves to files
	P            token.Pos
}

func (f *File) Pos() token.Pos { return f.P }
func (f *File) String() string {
	parts := make([]string, len(f.Items))
	for i, it := range f.Items {
		parts[i] = it.String()
	}
	return strings.Join(parts, "\n")
}

// ---------------------------------------------------------------------
// Visibility
// ---------------------------------------------------------------------

type VisKind int

const (
	VisPrivate     VisKind = iota // default, no "pub"
	VisPublic                     // pub
	VisCrate                      // pub(crate)
	VisSelf                       // pub(self)
	VisSuper                      // pub(super[::super]*)
	VisInPath                     // pub(in <path>)
)

// Visibility is lowered during parsing into an absolute module path
// (for VisSuper/VisInPath) against which later checks run.
type Visibility struct {
	Kind       VisKind
	SuperDepth int    // for VisSuper
	InPath     []string
	P          token.Pos
}

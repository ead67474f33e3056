// Package fmtmacro implements the format-string macro expander (spec.md
// §4.6): it parses the `"..."`, arg, arg, name = arg, ... argument list of
// a built-in format invocation into a sequence of fragments plus a
// renumbered argument vector, then emits the token tree that would invoke
// the standard-library `Arguments::new_v1` (or `new_v1_formatted`)
// constructor. The expander is a tiny hand-rolled scanner over the format
// string, reusing internal/token.Span the way the rest of the core's
// phases do, and produces internal/token.Token values so its output can be
// re-fed through the parser exactly like any other token stream.
package fmtmacro

import (
	"github.com/corvid-lang/corvidc/internal/ast"
	"github.com/corvid-lang/corvidc/internal/errors"
	"github.com/corvid-lang/corvidc/internal/token"
)

// Alignment is the fill/align spec's alignment selector.
type Alignment int

const (
	AlignUnspec Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Sign is the spec's explicit sign-display selector.
type Sign int

const (
	SignUnspec Sign = iota
	SignPlus
	SignMinus
)

// TraitSelector names the formatting trait a fragment's type suffix picks.
type TraitSelector int

const (
	TraitDisplay TraitSelector = iota
	TraitDebug
	TraitBinary
	TraitOctal
	TraitLowerHex
	TraitUpperHex
	TraitPointer
	TraitLowerExp
	TraitUpperExp
)

// ArgRefKind discriminates how a width/precision/main fragment slot names
// its argument.
type ArgRefKind int

const (
	ArgRefLiteral  ArgRefKind = iota // width/precision given as a literal int
	ArgRefIndex                      // explicit "N$" or bare "{N}"
	ArgRefName                       // explicit "name$" or bare "{name}"
	ArgRefImplicit                   // bare "{}" or the bare "." with nothing: next free argument
	ArgRefNextFree                   // precision's ".*" form: next free argument, consumed early
)

// ArgRef is a resolved reference into the final (named ++ free) argument
// vector. Literal is populated only when Kind == ArgRefLiteral.
type ArgRef struct {
	Kind    ArgRefKind
	Literal int
	Index   int // resolved index into the final concatenated argument vector
}

// Options is one fragment's formatting-spec record (spec.md §4.6).
type Options struct {
	Align     Alignment
	Fill      rune
	Sign      Sign
	Alternate bool
	ZeroPad   bool
	Width     *ArgRef
	Precision *ArgRef
}

// Fragment is one `{...}` substitution, with the literal text that
// preceded it.
type Fragment struct {
	Literal string
	ArgIndex int
	Trait    TraitSelector
	Options  Options
	Span     token.Span
}

// Arg is one argument supplied to the format invocation after the literal:
// a bare positional expression, or "name = expr".
type Arg struct {
	Name string // "" for a positional argument
	Expr ast.Expr
}

// Expansion is the fully-resolved result of expanding one format-macro
// invocation: the fragment sequence plus the final argument vector in
// "named ++ free" order, addressed by every Fragment/ArgRef's Index.
type Expansion struct {
	Fragments       []Fragment
	TrailingLiteral string // literal text after the last fragment, if any
	Args            []ast.Expr
}

// fragmentDraft is pass one's output: a fragment with its slot references
// still unresolved raw descriptors, not yet assigned concatenated-vector
// indices. Kept separate from Fragment so pass two's renumbering (the
// ".*"-precision-before-main-slot rule spec.md §4.6 calls out) has
// somewhere to work without mutating partially-built fragments in place.
type fragmentDraft struct {
	literal   string
	mainRef   rawRef
	trait     TraitSelector
	opts      Options // Width/Precision left nil; set to rawRef-backed values below
	widthRef  *rawRef
	precRef   *rawRef
	span      token.Span
}

type rawRef struct {
	kind  ArgRefKind
	n     int
	name  string
}

// Parse scans format and args into a fully-resolved Expansion, implementing
// spec.md §4.6's two-pass fragment/argument-renumbering contract.
func Parse(format string, formatPos token.Pos, args []Arg) (*Expansion, *errors.Report) {
	named := map[string]int{}
	namedOrder := []string{}
	var free []ast.Expr
	for _, a := range args {
		if a.Name == "" {
			free = append(free, a.Expr)
			continue
		}
		if _, dup := named[a.Name]; dup {
			return nil, errors.New(errors.FMT002, "fmtmacro", "duplicate named format argument \""+a.Name+"\"").WithSpan(token.Span{Start: formatPos})
		}
		named[a.Name] = len(namedOrder)
		namedOrder = append(namedOrder, a.Name)
	}

	drafts, trailing, rep := scan(format, formatPos)
	if rep != nil {
		return nil, rep
	}

	concat := make([]ast.Expr, 0, len(namedOrder)+len(free))
	for _, n := range namedOrder {
		concat = append(concat, args[indexOfNamed(args, n)].Expr)
	}
	concat = append(concat, free...)

	resolve := func(r rawRef, cursor *int) (ArgRef, *errors.Report) {
		switch r.kind {
		case ArgRefLiteral:
			return ArgRef{Kind: ArgRefLiteral, Literal: r.n}, nil
		case ArgRefIndex:
			if r.n >= len(free) {
				return ArgRef{}, errors.New(errors.FMT004, "fmtmacro", "too few positional arguments for the format string").WithSpan(token.Span{Start: formatPos})
			}
			return ArgRef{Kind: ArgRefIndex, Index: len(namedOrder) + r.n}, nil
		case ArgRefName:
			idx, ok := named[r.name]
			if !ok {
				return ArgRef{}, errors.New(errors.FMT003, "fmtmacro", "named argument \""+r.name+"\" not found").WithSpan(token.Span{Start: formatPos})
			}
			return ArgRef{Kind: ArgRefName, Index: idx}, nil
		case ArgRefImplicit, ArgRefNextFree:
			if *cursor >= len(free) {
				return ArgRef{}, errors.New(errors.FMT004, "fmtmacro", "too few positional arguments for the format string").WithSpan(token.Span{Start: formatPos})
			}
			idx := len(namedOrder) + *cursor
			*cursor++
			return ArgRef{Kind: r.kind, Index: idx}, nil
		}
		return ArgRef{}, nil
	}

	cursor := 0
	fragments := make([]Fragment, 0, len(drafts))
	for _, d := range drafts {
		f := Fragment{Literal: d.literal, Trait: d.trait, Options: d.opts, Span: d.span}

		// spec.md §4.6: a ".*" precision consumes its free argument before
		// the fragment's own implicit slot, even though the main arg-ref
		// appears first in the grammar.
		if d.precRef != nil {
			pr, rep := resolve(*d.precRef, &cursor)
			if rep != nil {
				return nil, rep
			}
			f.Options.Precision = &pr
		}
		mr, rep := resolve(d.mainRef, &cursor)
		if rep != nil {
			return nil, rep
		}
		f.ArgIndex = mr.Index
		if d.widthRef != nil {
			wr, rep := resolve(*d.widthRef, &cursor)
			if rep != nil {
				return nil, rep
			}
			f.Options.Width = &wr
		}
		fragments = append(fragments, f)
	}

	return &Expansion{Fragments: fragments, TrailingLiteral: trailing, Args: concat}, nil
}

func indexOfNamed(args []Arg, name string) int {
	for i, a := range args {
		if a.Name == name {
			return i
		}
	}
	return -1
}

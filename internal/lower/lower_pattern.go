package lower

import (
	"github.com/corvid-lang/corvidc/internal/ast"
	"github.com/corvid-lang/corvidc/internal/errors"
	"github.com/corvid-lang/corvidc/internal/hir"
	"github.com/corvid-lang/corvidc/internal/token"
)

// bindIntent folds a BindPattern's ref/mut flags into the single
// binding-intent tag spec.md §4.5 "Patterns" describes.
func bindIntent(ref, mut bool) hir.BindIntent {
	switch {
	case ref && mut:
		return hir.BindMutRef
	case ref:
		return hir.BindRef
	default:
		return hir.BindMove
	}
}

// findStruct resolves a SimplePath to its Struct definition by walking the
// module tree, the same component-by-component walk findTrait uses
// (spec.md §9 "Weak back-references").
func (l *Lowerer) findStruct(path hir.SimplePath) *hir.Struct {
	if len(path.Components) == 0 {
		return nil
	}
	mod := l.crate.Root
	for _, c := range path.Components[:len(path.Components)-1] {
		child, ok := mod.Submodules[c]
		if !ok {
			return nil
		}
		mod = child
	}
	return mod.Structs[path.Components[len(path.Components)-1]]
}

// fieldCountFor looks up the field count backing a struct-tuple or
// struct pattern's path: a plain struct, or (for an enum's data variant)
// the synthesized "EnumName#VariantName" sibling struct. Returns ok=false
// when the path can't be resolved under this crate's own module tree —
// cross-crate/import-aliased resolution is out of scope for this core
// (spec.md §1 excludes the name-resolution pass), so the dense-vector
// padding rule below is skipped rather than guessed at in that case.
func (l *Lowerer) fieldCountFor(base hir.SimplePath) (int, bool) {
	if s := l.findStruct(base); s != nil {
		return len(s.Fields), true
	}
	comps := base.Components
	if len(comps) >= 2 {
		variantPath := hir.SimplePath{
			Crate:      base.Crate,
			Components: append(append([]string{}, comps[:len(comps)-2]...), comps[len(comps)-2]+"#"+comps[len(comps)-1]),
		}
		if s := l.findStruct(variantPath); s != nil {
			return len(s.Fields), true
		}
	}
	return 0, false
}

// padDense implements spec.md §4.5's dense-vector rule: with a rest
// marker, concatenate leading || wildcards*(F-leading-trailing) ||
// trailing; without one, require an exact length match.
func padDense(leading, trailing []*hir.Pattern, hasRest bool, f int) ([]*hir.Pattern, *errors.Report) {
	if !hasRest {
		if len(trailing) != 0 {
			errors.Bug("lower", "non-rest tuple pattern carries a trailing segment", token.Span{})
		}
		if len(leading) != f {
			return nil, errors.New(errors.LOW001, "lower", "tuple/struct pattern field-count mismatch")
		}
		return leading, nil
	}
	if len(leading)+len(trailing) > f {
		return nil, errors.New(errors.LOW001, "lower", "tuple/struct pattern field-count mismatch")
	}
	out := make([]*hir.Pattern, 0, f)
	out = append(out, leading...)
	for i := 0; i < f-len(leading)-len(trailing); i++ {
		out = append(out, &hir.Pattern{Kind: hir.PatWildcard})
	}
	out = append(out, trailing...)
	return out, nil
}

// LowerPattern lowers a surface pattern into its canonical HIR form
// (spec.md §4.5 "Patterns").
func (l *Lowerer) LowerPattern(p ast.Pattern) (*hir.Pattern, *errors.Report) {
	switch v := p.(type) {
	case *ast.AnyPattern:
		return &hir.Pattern{Kind: hir.PatWildcard}, nil

	case *ast.BindPattern:
		return &hir.Pattern{Kind: hir.PatBind, Name: v.Name, Intent: bindIntent(v.Ref, v.Mut)}, nil

	case *ast.MaybeBindPattern:
		// A bare name lowers to a by-move binding; it is not looked up as a
		// unit struct or enum variant.
		return &hir.Pattern{Kind: hir.PatBind, Name: v.Name, Intent: hir.BindMove}, nil

	case *ast.RefPattern:
		inner, rep := l.LowerPattern(v.Inner)
		if rep != nil {
			return nil, rep
		}
		if inner.Kind == hir.PatBind {
			intent := hir.BindRef
			if v.Mut {
				intent = hir.BindMutRef
			}
			inner.Intent = intent
		}
		return inner, nil

	case *ast.BoxPattern:
		return l.LowerPattern(v.Inner)

	case *ast.TuplePattern:
		leading, rep := l.lowerPatternList(v.Leading)
		if rep != nil {
			return nil, rep
		}
		trailing, rep := l.lowerPatternList(v.Trailing)
		if rep != nil {
			return nil, rep
		}
		elems := append(leading, trailing...)
		return &hir.Pattern{Kind: hir.PatTuple, Elems: elems}, nil

	case *ast.StructTuplePattern:
		hp, rep := l.LowerPath(v.PathP)
		if rep != nil {
			return nil, rep
		}
		leading, rep := l.lowerPatternList(v.Tuple.Leading)
		if rep != nil {
			return nil, rep
		}
		trailing, rep := l.lowerPatternList(v.Tuple.Trailing)
		if rep != nil {
			return nil, rep
		}
		elems := leading
		elems = append(elems, trailing...)
		if f, ok := l.fieldCountFor(hp.Generic.Base); ok {
			elems, rep = padDense(leading, trailing, v.Tuple.HasRest, f)
			if rep != nil {
				return nil, rep
			}
		}
		return &hir.Pattern{Kind: hir.PatStructTuple, PathP: hp, Elems: elems}, nil

	case *ast.StructPattern:
		hp, rep := l.LowerPath(v.PathP)
		if rep != nil {
			return nil, rep
		}
		fields := make([]hir.PatternField, len(v.Fields))
		for i, f := range v.Fields {
			sub, rep := l.LowerPattern(f.Pattern)
			if rep != nil {
				return nil, rep
			}
			fields[i] = hir.PatternField{Name: f.Name, Pattern: sub}
		}
		return &hir.Pattern{Kind: hir.PatStruct, PathP: hp, Fields: fields, Exhaustive: v.Exhaustive}, nil

	case *ast.ValuePattern:
		return &hir.Pattern{Kind: hir.PatValue, Start: v.Start, End: v.End}, nil

	case *ast.SlicePattern:
		elems, rep := l.lowerPatternList(v.Elems)
		if rep != nil {
			return nil, rep
		}
		return &hir.Pattern{Kind: hir.PatSlice, Elems: elems}, nil

	case *ast.SplitSlicePattern:
		leading, rep := l.lowerPatternList(v.Leading)
		if rep != nil {
			return nil, rep
		}
		trailing, rep := l.lowerPatternList(v.Trailing)
		if rep != nil {
			return nil, rep
		}
		return &hir.Pattern{
			Kind: hir.PatSplitSlice, Leading: leading, Trailing: trailing,
			HasRestBind: v.RestBind != "", RestBind: v.RestBind,
		}, nil
	}
	errors.Bug("lower", "unrecognized pattern node", token.Span{})
	return nil, nil
}

func (l *Lowerer) lowerPatternList(ps []ast.Pattern) ([]*hir.Pattern, *errors.Report) {
	out := make([]*hir.Pattern, len(ps))
	for i, p := range ps {
		lp, rep := l.LowerPattern(p)
		if rep != nil {
			return nil, rep
		}
		out[i] = lp
	}
	return out, nil
}

package lower

import (
	"github.com/corvid-lang/corvidc/internal/ast"
	"github.com/corvid-lang/corvidc/internal/errors"
	"github.com/corvid-lang/corvidc/internal/hir"
	"github.com/corvid-lang/corvidc/internal/token"
)

// wellKnownMarkerNames covers the built-in marker traits a core without a
// loaded standard-library crate still needs to classify impls against
// (spec.md §4.5 "Module impls").
var wellKnownMarkerNames = map[string]bool{
	"Send": true, "Sync": true, "Unpin": true, "Copy": true, "Sized": true,
}

// lowerImpls is the second lowering pass (spec.md §4.5 "Module impls"):
// every impl block deferred by lowerModuleItems is now processed, since
// every struct/enum/trait declaration in the crate is known.
func (l *Lowerer) lowerImpls() *errors.Report {
	for _, pending := range l.pendingImpls {
		impl, rep := l.lowerOneImpl(pending)
		if rep != nil {
			return rep
		}
		key, named := canonicalKeyForType(impl.Target)
		l.crate.Impls.Add(key, named, impl)
	}
	return nil
}

func (l *Lowerer) lowerOneImpl(pending pendingImpl) (*hir.Impl, *errors.Report) {
	it := pending.item
	defer l.withGenerics(it.Generics)()
	if rep := validateGenericBounds(it.Generics); rep != nil {
		return nil, rep
	}
	if rep := validateBounds(it.Where); rep != nil {
		return nil, rep
	}

	target, rep := l.LowerType(it.Target)
	if rep != nil {
		return nil, rep
	}

	impl := &hir.Impl{
		Target:         target,
		Negative:       it.Negative,
		Generics:       genericNames(it.Generics),
		AssocFuncs:     map[string]*hir.Function{},
		AssocConsts:    map[string]*hir.AssocValueDecl{},
		AssocTypes:     map[string]*hir.TypeRef{},
		Specialization: map[string]bool{},
	}

	if it.Trait == nil {
		impl.Kind = hir.ImplInherent
	} else {
		traitTy, rep := l.LowerType(it.Trait)
		if rep != nil {
			return nil, rep
		}
		if traitTy.Kind != hir.TyPath {
			errors.Bug("lower", "impl trait clause did not lower to a path type", token.Span{Start: it.P})
		}
		traitPath := &hir.TraitPath{GenericPath: traitTy.PathP.Generic}
		impl.TraitP = traitPath

		def := l.findTrait(traitPath.Base)
		lastName := ""
		if n := traitPath.Base.Components; len(n) > 0 {
			lastName = n[len(n)-1]
		}
		isMarker := it.Negative || wellKnownMarkerNames[lastName] || (def != nil && def.IsMarker)
		if isMarker {
			impl.Kind = hir.ImplMarker
		} else {
			impl.Kind = hir.ImplTrait
		}
	}

	for _, item := range it.Items {
		switch v := item.(type) {
		case *ast.FuncItem:
			fn, rep := l.lowerFuncItem(pending.modulePath, v)
			if rep != nil {
				return nil, rep
			}
			impl.AssocFuncs[v.Name] = fn
		case *ast.StaticItem:
			t, rep := l.LowerType(v.Type)
			if rep != nil {
				return nil, rep
			}
			kind := hir.AssocStatic
			if v.Kind == ast.StaticConst {
				kind = hir.AssocConst
			}
			impl.AssocConsts[v.Name] = &hir.AssocValueDecl{Kind: kind, Type: t}
		case *ast.AssocTypeItem:
			t, rep := l.LowerType(v.Target)
			if rep != nil {
				return nil, rep
			}
			impl.AssocTypes[v.Name] = t
		}
	}

	return impl, nil
}

// canonicalKeyForType decides which of ImplGroup's three buckets a lowered
// impl target belongs in: a concrete path type reports its last path
// component as a named key; any other target (a bare generic parameter,
// primitives, tuples, slices, ...) reports named=false with an empty key,
// which ImplGroup.Add files under Generic when the impl declares generic
// parameters and under NonNamed otherwise.
func canonicalKeyForType(t *hir.TypeRef) (string, bool) {
	if t.Kind == hir.TyPath {
		comps := t.PathP.Generic.Base.Components
		if len(comps) > 0 {
			return comps[len(comps)-1], true
		}
	}
	return "", false
}

// findTrait resolves a SimplePath to its Trait definition by walking the
// module tree, tolerating an unresolvable path (a trait from a crate this
// core never loads, e.g. a standard-library marker) by returning nil.
func (l *Lowerer) findTrait(path hir.SimplePath) *hir.Trait {
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
	return mod.Traits[path.Components[len(path.Components)-1]]
}

// indexBounds is the C5 epilogue (spec.md §4.5 "Indexing post-pass"): bind
// every TraitPath's Resolved handle now that every module and impl in the
// crate is lowered, so forward references are legal.
func (l *Lowerer) indexBounds() *errors.Report {
	var walk func(mod *hir.Module)
	walk = func(mod *hir.Module) {
		for _, tr := range mod.Traits {
			for i := range tr.Supertraits {
				l.resolveTraitPath(&tr.Supertraits[i])
			}
			for _, at := range tr.AssocTypes {
				for i := range at.TraitBounds {
					l.resolveTraitPath(&at.TraitBounds[i])
				}
			}
		}
		for _, child := range mod.Submodules {
			walk(child)
		}
	}
	walk(l.crate.Root)

	for _, impls := range l.crate.Impls.Named {
		for _, im := range impls {
			if im.TraitP != nil {
				l.resolveTraitPath(im.TraitP)
			}
		}
	}
	for _, im := range l.crate.Impls.NonNamed {
		if im.TraitP != nil {
			l.resolveTraitPath(im.TraitP)
		}
	}
	for _, im := range l.crate.Impls.Generic {
		if im.TraitP != nil {
			l.resolveTraitPath(im.TraitP)
		}
	}
	return nil
}

func (l *Lowerer) resolveTraitPath(tp *hir.TraitPath) {
	tp.Resolved = l.findTrait(tp.Base)
}

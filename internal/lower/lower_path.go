package lower

import (
	"github.com/corvid-lang/corvidc/internal/ast"
	"github.com/corvid-lang/corvidc/internal/errors"
	"github.com/corvid-lang/corvidc/internal/hir"
	"github.com/corvid-lang/corvidc/internal/token"
)

// primitiveNames is the set of built-in scalar type names recognized
// directly rather than resolved as a user path.
var primitiveNames = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true, "i128": true, "isize": true,
	"u8": true, "u16": true, "u32": true, "u64": true, "u128": true, "usize": true,
	"f32": true, "f64": true, "bool": true, "char": true, "str": true,
}

// LowerType lowers a surface type into its canonicalized HIR form.
func (l *Lowerer) LowerType(t ast.Type) (*hir.TypeRef, *errors.Report) {
	switch v := t.(type) {
	case nil:
		return &hir.TypeRef{Kind: hir.TyTuple}, nil // unit
	case *ast.InferType:
		return &hir.TypeRef{Kind: hir.TyInfer}, nil
	case *ast.NeverType:
		return &hir.TypeRef{Kind: hir.TyDiverge}, nil
	case *ast.TupleType:
		if len(v.Elems) == 0 {
			return &hir.TypeRef{Kind: hir.TyTuple}, nil
		}
		elems := make([]*hir.TypeRef, len(v.Elems))
		for i, e := range v.Elems {
			lt, rep := l.LowerType(e)
			if rep != nil {
				return nil, rep
			}
			elems[i] = lt
		}
		return &hir.TypeRef{Kind: hir.TyTuple, Elems: elems}, nil
	case *ast.BorrowType:
		inner, rep := l.LowerType(v.Inner)
		if rep != nil {
			return nil, rep
		}
		return &hir.TypeRef{Kind: hir.TyBorrow, Mut: v.Mut, Inner: inner}, nil
	case *ast.PointerType:
		inner, rep := l.LowerType(v.Inner)
		if rep != nil {
			return nil, rep
		}
		return &hir.TypeRef{Kind: hir.TyPointer, Mut: v.Mut, Inner: inner}, nil
	case *ast.SliceType:
		inner, rep := l.LowerType(v.Elem)
		if rep != nil {
			return nil, rep
		}
		return &hir.TypeRef{Kind: hir.TySlice, Inner: inner}, nil
	case *ast.ArrayType:
		inner, rep := l.LowerType(v.Elem)
		if rep != nil {
			return nil, rep
		}
		size := int64(-1)
		var sizeExpr interface{}
		if lit, ok := v.Size.(*ast.Literal); ok && lit.Kind == ast.LitInt {
			size = int64(lit.IntLo)
		} else {
			sizeExpr = v.Size
		}
		return &hir.TypeRef{Kind: hir.TyArray, Inner: inner, Size: size, SizeExpr: sizeExpr}, nil
	case *ast.FnType:
		args := make([]*hir.TypeRef, len(v.Params))
		for i, p := range v.Params {
			lt, rep := l.LowerType(p)
			if rep != nil {
				return nil, rep
			}
			args[i] = lt
		}
		ret, rep := l.LowerType(v.Ret)
		if rep != nil {
			return nil, rep
		}
		return &hir.TypeRef{Kind: hir.TyFunction, Unsafe: v.Unsafe, ABI: v.ABI, Args: args, Ret: ret}, nil
	case *ast.TraitObjectType:
		var trait *hir.TypeRef
		if v.Trait != nil {
			t, rep := l.LowerType(v.Trait)
			if rep != nil {
				return nil, rep
			}
			trait = t
		}
		markers := make([]*hir.TypeRef, len(v.Markers))
		for i, m := range v.Markers {
			mt, rep := l.LowerType(m)
			if rep != nil {
				return nil, rep
			}
			markers[i] = mt
		}
		return &hir.TypeRef{Kind: hir.TyTraitObject, Trait: trait, Markers: markers, Lifetime: v.Lifetime}, nil
	case *ast.PathType:
		return l.lowerTypePath(v.P_)
	}
	errors.Bug("lower", "unrecognized type node", token.Span{})
	return nil, nil
}

// lowerTypePath lowers a surface Path appearing in type position, resolving
// bare single-segment names against the generic environment and the
// built-in primitive set before falling back to a crate-relative path.
func (l *Lowerer) lowerTypePath(p ast.Path) (*hir.TypeRef, *errors.Report) {
	if local, ok := p.(*ast.PathLocal); ok {
		if idx, ok := l.genericIndex[local.Name]; ok {
			return &hir.TypeRef{Kind: hir.TyGeneric, Name: local.Name, Index: idx}, nil
		}
		if local.Name == "Self" {
			return &hir.TypeRef{Kind: hir.TyGeneric, Name: "Self", Index: hir.ImplicitSelfIndex}, nil
		}
		if primitiveNames[local.Name] {
			return &hir.TypeRef{Kind: hir.TyPrimitive, Primitive: local.Name}, nil
		}
	}
	hp, rep := l.LowerPath(p)
	if rep != nil {
		return nil, rep
	}
	return &hir.TypeRef{Kind: hir.TyPath, PathP: hp}, nil
}

// LowerPath lowers a surface Path into the HIR path sum type (spec.md
// §4.5). Only the last segment of a plain path may carry generic
// arguments when the result is a SimplePath/GenericPath: an earlier
// segment with arguments (as the parser produces for "a::<T>::b") is
// treated as an internal bug.
func (l *Lowerer) LowerPath(p ast.Path) (hir.Path, *errors.Report) {
	switch v := p.(type) {
	case *ast.PathLocal:
		return hir.Path{Kind: hir.PathGeneric, Generic: hir.GenericPath{
			Base: hir.SimplePath{Components: []string{v.Name}},
		}}, nil

	case *ast.PathRelative:
		gp, rep := l.lowerPlainNodes(v.Nodes, "")
		if rep != nil {
			return hir.Path{}, rep
		}
		return hir.Path{Kind: hir.PathGeneric, Generic: gp}, nil

	case *ast.PathAbsolute:
		gp, rep := l.lowerPlainNodes(v.Nodes, v.Crate)
		if rep != nil {
			return hir.Path{}, rep
		}
		return hir.Path{Kind: hir.PathGeneric, Generic: gp}, nil

	case *ast.PathSuper, *ast.PathSelf:
		// Resolved relative to the current module by the (out-of-scope)
		// name-resolution pass; this core only canonicalizes the node list.
		var nodes []ast.PathNode
		if sup, ok := v.(*ast.PathSuper); ok {
			nodes = sup.Nodes
		}
		gp, rep := l.lowerPlainNodes(nodes, "")
		if rep != nil {
			return hir.Path{}, rep
		}
		return hir.Path{Kind: hir.PathGeneric, Generic: gp}, nil

	case *ast.PathUFCS:
		ty, rep := l.LowerType(v.Type)
		if rep != nil {
			return hir.Path{}, rep
		}
		if len(v.Nodes) == 0 {
			errors.Bug("lower", "UFCS path with no trailing item", token.Span{})
		}
		item := v.Nodes[len(v.Nodes)-1].Name
		if v.Trait == nil {
			return hir.Path{Kind: hir.PathUfcsInherent, Type: ty, Item: item}, nil
		}
		traitTy, rep := l.LowerType(v.Trait)
		if rep != nil {
			return hir.Path{}, rep
		}
		if traitTy.Kind != hir.TyPath {
			return hir.Path{Kind: hir.PathUfcsUnknown, Type: ty, Item: item}, nil
		}
		tp := &hir.TraitPath{GenericPath: traitTy.PathP.Generic}
		return hir.Path{Kind: hir.PathUfcsKnown, Type: ty, Trait: tp, Item: item}, nil
	}
	errors.Bug("lower", "unrecognized path node", token.Span{})
	return hir.Path{}, nil
}

func (l *Lowerer) lowerPlainNodes(nodes []ast.PathNode, crate string) (hir.GenericPath, *errors.Report) {
	comps := make([]string, len(nodes))
	var params hir.PathParams
	for i, n := range nodes {
		comps[i] = n.Name
		if n.Params == nil {
			continue
		}
		if i != len(nodes)-1 {
			errors.Bug("lower", "generic arguments on a non-final path segment", token.Span{})
		}
		for _, t := range n.Params.Types {
			lt, rep := l.LowerType(t)
			if rep != nil {
				return hir.GenericPath{}, rep
			}
			params.Types = append(params.Types, lt)
		}
		for _, b := range n.Params.Bindings {
			lt, rep := l.LowerType(b.Type)
			if rep != nil {
				return hir.GenericPath{}, rep
			}
			params.Bindings = append(params.Bindings, hir.AssocBinding{Name: b.Name, Type: lt})
		}
	}
	return hir.GenericPath{Base: hir.SimplePath{Crate: crate, Components: comps}, Params: params}, nil
}

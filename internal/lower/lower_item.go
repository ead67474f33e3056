package lower

import (
	"strconv"

	"github.com/corvid-lang/corvidc/internal/ast"
	"github.com/corvid-lang/corvidc/internal/errors"
	"github.com/corvid-lang/corvidc/internal/hir"
	"github.com/corvid-lang/corvidc/internal/token"
)

// withGenerics installs a fresh generic-parameter environment for the
// duration of lowering one item's signature, returning a restore func.
func (l *Lowerer) withGenerics(g *ast.GenericParams) func() {
	saved := l.genericIndex
	l.genericIndex = map[string]int{}
	if g != nil {
		for i, t := range g.Types {
			l.genericIndex[t.Name] = i
		}
	}
	return func() { l.genericIndex = saved }
}

// isSizedMarkerBound reports whether a trait bound names the language
// Sized marker — the only trait a MaybeTrait/NotTrait bound may legally
// negate (spec.md §4.5 "Generics").
func isSizedMarkerBound(b ast.Bound) bool {
	pt, ok := b.TraitPath.(*ast.PathType)
	if !ok {
		return false
	}
	local, ok := pt.P_.(*ast.PathLocal)
	return ok && local.Name == "Sized"
}

// validateGenericBounds implements spec.md §4.5 "Generics": a negated
// bound (`!Trait`, this grammar's stand-in for `?Trait`) is only legal
// against the Sized marker, flipping the is_sized flag; this core does
// not otherwise retain per-parameter is_sized flags since nothing past
// C5 in this core's scope consults them (type inference is out of
// scope per spec.md §1). All other bounds map one-to-one and need no
// further validation at this layer.
func validateGenericBounds(g *ast.GenericParams) *errors.Report {
	if g == nil {
		return nil
	}
	return validateBounds(g.Bounds)
}

func validateBounds(bounds []ast.Bound) *errors.Report {
	for _, b := range bounds {
		if b.Kind == ast.BoundTypeNotTrait && !isSizedMarkerBound(b) {
			return errors.New(errors.LOW002, "lower", "MaybeTrait bound on a trait other than the Sized marker")
		}
	}
	return nil
}

func genericNames(g *ast.GenericParams) []string {
	if g == nil {
		return nil
	}
	names := make([]string, len(g.Types))
	for i, t := range g.Types {
		names[i] = t.Name
	}
	return names
}

func lowerVis(v ast.Visibility, modPath hir.SimplePath) hir.Publicity {
	switch v.Kind {
	case ast.VisPublic, ast.VisCrate:
		return hir.Publicity{Kind: hir.PublicityGlobal}
	case ast.VisInPath:
		return hir.Publicity{Kind: hir.PublicityPrivate, Path: hir.SimplePath{Components: v.InPath}}
	case ast.VisSuper:
		comps := modPath.Components
		if d := v.SuperDepth; d <= len(comps) {
			comps = comps[:len(comps)-d]
		}
		return hir.Publicity{Kind: hir.PublicityPrivate, Path: hir.SimplePath{Components: comps}}
	default: // VisPrivate, VisSelf
		return hir.Publicity{Kind: hir.PublicityPrivate, Path: modPath}
	}
}

// lowerReprAttrs accumulates a struct/union/enum's repr flags from its
// "#[repr(...)]" attributes (spec.md §4.5 "Struct repr").
func lowerReprAttrs(attrs []*ast.Attribute) (hir.Repr, *errors.Report) {
	repr := hir.Repr{Kind: hir.ReprRust}
	seenC, seenPacked, seenAlign, seenSimd, seenTransparent := false, false, false, false, false
	for _, a := range attrs {
		if a.Name != "repr" {
			continue
		}
		list, ok := a.Payload.(ast.AttrList)
		if !ok {
			return hir.Repr{}, errors.New(errors.LOW006, "lower", "malformed repr payload")
		}
		for _, entry := range list {
			switch entry.Name {
			case "C":
				seenC = true
			case "packed":
				seenPacked = true
			case "simd":
				seenSimd = true
			case "transparent":
				seenTransparent = true
			case "align":
				inner, ok := entry.Payload.(ast.AttrList)
				if !ok || len(inner) != 1 {
					return hir.Repr{}, errors.New(errors.LOW010, "lower", "#[repr(align(N))] missing its argument")
				}
				n, err := strconv.ParseInt(inner[0].Name, 10, 64)
				if err != nil {
					return hir.Repr{}, errors.New(errors.LOW010, "lower", "#[repr(align(N))] missing its argument")
				}
				seenAlign = true
				repr.Align = n
			case "u8", "u16", "u32", "u64", "usize":
				// enum discriminant repr: accepted here and not recorded
				// (enumReprKind records only C)
			default:
				return hir.Repr{}, errors.New(errors.LOW006, "lower", "unrecognized repr token \""+entry.Name+"\"")
			}
		}
	}
	if seenPacked && seenAlign {
		return hir.Repr{}, errors.New(errors.LOW005, "lower", "#[repr(packed)] and #[repr(align(N))] conflict")
	}
	switch {
	case seenAlign:
		repr.Kind = hir.ReprAligned
	case seenTransparent:
		repr.Kind = hir.ReprTransparent
	case seenSimd:
		repr.Kind = hir.ReprSimd
	case seenC && seenPacked:
		repr.Kind = hir.ReprPacked // C+packed: packed dominates layout, C governs field order
	case seenPacked:
		repr.Kind = hir.ReprPacked
	case seenC:
		repr.Kind = hir.ReprC
	}
	return repr, nil
}

// enumReprKind returns ReprC when an enum's repr attributes name C, and
// Rust (compiler-chosen) otherwise. An integer repr ("u8"/"u16"/"u32"/
// "u64"/"usize") is not recorded: such an enum also gets ReprRust.
func enumReprKind(attrs []*ast.Attribute) hir.ReprKind {
	for _, a := range attrs {
		if a.Name != "repr" {
			continue
		}
		list, ok := a.Payload.(ast.AttrList)
		if !ok {
			continue
		}
		for _, entry := range list {
			if entry.Name == "C" {
				return hir.ReprC
			}
		}
	}
	return hir.ReprRust
}

func (l *Lowerer) lowerStructFields(fields []ast.StructField, modPath hir.SimplePath) ([]hir.StructField, *errors.Report) {
	out := make([]hir.StructField, len(fields))
	for i, f := range fields {
		t, rep := l.LowerType(f.Type)
		if rep != nil {
			return nil, rep
		}
		out[i] = hir.StructField{Name: f.Name, Type: t, Vis: lowerVis(f.Vis, modPath)}
	}
	return out, nil
}

func (l *Lowerer) lowerStructItem(mod *hir.Module, modPath hir.SimplePath, it *ast.StructItem) *errors.Report {
	defer l.withGenerics(it.Generics)()
	if rep := validateGenericBounds(it.Generics); rep != nil {
		return rep
	}
	repr, rep := lowerReprAttrs(it.Attrs)
	if rep != nil {
		return rep
	}
	fields, rep := l.lowerStructFields(it.Fields, modPath)
	if rep != nil {
		return rep
	}
	path := appendComponent(modPath, it.Name)
	s := &hir.Struct{
		Path:     path,
		Generics: genericNames(it.Generics),
		Repr:     repr,
		Fields:   fields,
		IsTuple:  it.Kind == ast.StructTuple,
	}
	mod.Structs[it.Name] = s
	mod.Types[it.Name] = hir.NameTableEntry{Kind: hir.EntryLocal}
	if it.Kind == ast.StructTuple {
		// a tuple struct's name doubles as its constructor function name,
		// occupying the value namespace alongside the type namespace.
		mod.Values[it.Name] = hir.NameTableEntry{Kind: hir.EntryLocal}
	}
	return l.recordLangItem(it.Attrs, path)
}

func (l *Lowerer) lowerUnionItem(mod *hir.Module, modPath hir.SimplePath, it *ast.UnionItem) *errors.Report {
	defer l.withGenerics(it.Generics)()
	if rep := validateGenericBounds(it.Generics); rep != nil {
		return rep
	}
	repr, rep := lowerReprAttrs(it.Attrs)
	if rep != nil {
		return rep
	}
	fields, rep := l.lowerStructFields(it.Fields, modPath)
	if rep != nil {
		return rep
	}
	path := appendComponent(modPath, it.Name)
	mod.Structs[it.Name] = &hir.Struct{
		Path:     path,
		Generics: genericNames(it.Generics),
		Repr:     repr,
		Fields:   fields,
	}
	mod.Types[it.Name] = hir.NameTableEntry{Kind: hir.EntryLocal}
	return nil
}

// lowerEnumItem implements spec.md §4.5 "Enums": classify as Data or
// Value by scanning every variant, synthesizing one sibling struct per
// data-bearing variant.
func (l *Lowerer) lowerEnumItem(mod *hir.Module, modPath hir.SimplePath, it *ast.EnumItem) *errors.Report {
	defer l.withGenerics(it.Generics)()
	if rep := validateGenericBounds(it.Generics); rep != nil {
		return rep
	}
	path := appendComponent(modPath, it.Name)
	generics := genericNames(it.Generics)

	hasData, hasValue := false, false
	for _, v := range it.Variants {
		if v.Kind == ast.StructUnit {
			hasValue = true
		} else {
			hasData = true
		}
	}
	if hasData && hasValue {
		return errors.New(errors.LOW004, "lower", "enum \""+it.Name+"\" mixes value-only and data-bearing variants")
	}

	e := &hir.Enum{Path: path, Generics: generics}
	if hasData {
		e.Kind = hir.EnumData
		for _, v := range it.Variants {
			fields, rep := l.lowerStructFields(v.Fields, modPath)
			if rep != nil {
				return rep
			}
			variantName := it.Name + "#" + v.Name
			variantPath := appendComponent(modPath, variantName)
			mod.Structs[variantName] = &hir.Struct{
				Path:     variantPath,
				Generics: generics,
				Fields:   fields,
				IsTuple:  v.Kind == ast.StructTuple,
			}
			e.DataVariants = append(e.DataVariants, hir.EnumDataVariant{Name: v.Name, StructPath: variantPath})
		}
	} else {
		e.Kind = hir.EnumValue
		e.Repr = enumReprKind(it.Attrs)
		next := int64(0)
		for _, v := range it.Variants {
			d := next
			if v.Discriminant != nil {
				lit, ok := v.Discriminant.(*ast.Literal)
				if !ok || lit.Kind != ast.LitInt {
					errors.Bug("lower", "non-integer-literal enum discriminant", token.Span{Start: it.P})
				}
				d = int64(lit.IntLo)
			}
			e.ValueVariants = append(e.ValueVariants, hir.EnumValueVariant{Name: v.Name, Discriminant: d})
			next = d + 1
		}
	}
	mod.Enums[it.Name] = e
	mod.Types[it.Name] = hir.NameTableEntry{Kind: hir.EntryLocal}
	for _, v := range it.Variants {
		mod.Values[it.Name+"::"+v.Name] = hir.NameTableEntry{Kind: hir.EntryLocal, IsVariant: true}
	}
	return l.recordLangItem(it.Attrs, path)
}

// lowerReceiver reconstructs the receiver's lowered type and classifies it
// per spec.md §4.5 "Function receiver classification".
func (l *Lowerer) lowerReceiver(selfType ast.Type) (hir.Receiver, *errors.Report) {
	t, rep := l.LowerType(selfType)
	if rep != nil {
		return 0, rep
	}
	switch {
	case t.Kind == hir.TyGeneric && t.Name == "Self":
		return hir.ReceiverValue, nil
	case t.Kind == hir.TyBorrow && t.Inner.Kind == hir.TyGeneric && t.Inner.Name == "Self":
		if t.Mut {
			return hir.ReceiverBorrowUnique, nil
		}
		return hir.ReceiverBorrowShared, nil
	case t.Kind == hir.TyPath:
		gp := t.PathP.Generic
		if len(gp.Params.Types) == 1 && gp.Params.Types[0].Kind == hir.TyGeneric && gp.Params.Types[0].Name == "Self" {
			if len(gp.Base.Components) == 1 && gp.Base.Components[0] == "Box" {
				return hir.ReceiverBox, nil
			}
			return hir.ReceiverCustom, nil
		}
	}
	return 0, errors.New(errors.LOW007, "lower", "malformed method receiver type")
}

// lowerLinkage implements spec.md §4.5 "Linkage derivation": apply
// attributes in precedence order, first match wins.
func lowerLinkage(attrs []*ast.Attribute, name string, hasBody, testHarness bool) (hir.Linkage, *errors.Report) {
	linkName := findAttrStringLower(attrs, "link_name")
	noMangle := hasAttrLower(attrs, "no_mangle")
	lang := findAttrStringLower(attrs, "lang")

	count := 0
	if linkName != "" {
		count++
	}
	if noMangle {
		count++
	}
	if count > 1 {
		return hir.Linkage{}, errors.New(errors.LOW008, "lower", "conflicting linkage attribute combination on \""+name+"\"")
	}

	switch {
	case testHarness && hasBody:
		return hir.Linkage{}, nil
	case linkName != "":
		return hir.Linkage{HasExternalName: true, ExternalName: linkName}, nil
	case noMangle:
		return hir.Linkage{HasExternalName: true, ExternalName: name}, nil
	case lang == "panic_fmt":
		return hir.Linkage{HasExternalName: true, ExternalName: "rust_begin_unwind"}, nil
	case !hasBody:
		return hir.Linkage{HasExternalName: true, ExternalName: name}, nil
	}
	return hir.Linkage{}, nil
}

func findAttrStringLower(attrs []*ast.Attribute, name string) string {
	for _, a := range attrs {
		if a.Name != name {
			continue
		}
		if s, ok := a.Payload.(ast.AttrString); ok {
			return string(s)
		}
	}
	return ""
}

func hasAttrLower(attrs []*ast.Attribute, name string) bool {
	for _, a := range attrs {
		if a.Name == name {
			return true
		}
	}
	return false
}

func (l *Lowerer) lowerFuncItem(modPath hir.SimplePath, it *ast.FuncItem) (*hir.Function, *errors.Report) {
	defer l.withGenerics(it.Generics)()
	if rep := validateGenericBounds(it.Generics); rep != nil {
		return nil, rep
	}
	if rep := validateBounds(it.Where); rep != nil {
		return nil, rep
	}

	receiver := hir.ReceiverFree
	if it.SelfKind != ast.SelfNone {
		r, rep := l.lowerReceiver(it.SelfType)
		if rep != nil {
			return nil, rep
		}
		receiver = r
	}

	params := make([]hir.Param, 0, len(it.Params))
	for _, p := range it.Params {
		t, rep := l.LowerType(p.Type)
		if rep != nil {
			return nil, rep
		}
		name := ""
		switch id := p.Pattern.(type) {
		case *ast.BindPattern:
			name = id.Name
		case *ast.MaybeBindPattern:
			name = id.Name
		}
		params = append(params, hir.Param{Name: name, Type: t})
	}

	ret, rep := l.LowerType(it.Ret)
	if rep != nil {
		return nil, rep
	}

	linkage, rep := lowerLinkage(it.Attrs, it.Name, it.Body != nil, hasAttrLower(it.Attrs, "test"))
	if rep != nil {
		return nil, rep
	}

	return &hir.Function{
		Path:     appendComponent(modPath, it.Name),
		Generics: genericNames(it.Generics),
		Receiver: receiver,
		Params:   params,
		Ret:      ret,
		Linkage:  linkage,
		HasBody:  it.Body != nil,
		Body:     it.Body,
		Vis:      lowerVis(it.Vis, modPath),
	}, nil
}

// lowerTraitItem implements spec.md §4.5 "Trait lowering": prepend "Self"
// to the trait's generic list and split each associated type's bounds into
// is_sized / lifetime / trait-bound buckets. No `Self: ThisTrait` bound is
// stored; hir.Trait has no field for one.
func (l *Lowerer) lowerTraitItem(mod *hir.Module, modPath hir.SimplePath, it *ast.TraitItem) *errors.Report {
	defer l.withGenerics(it.Generics)()
	if rep := validateGenericBounds(it.Generics); rep != nil {
		return rep
	}
	path := appendComponent(modPath, it.Name)

	supertraits := make([]hir.TraitPath, 0, len(it.Supertraits))
	for _, st := range it.Supertraits {
		t, rep := l.LowerType(st)
		if rep != nil {
			return rep
		}
		if t.Kind != hir.TyPath {
			errors.Bug("lower", "supertrait did not lower to a path type", token.Span{Start: it.P})
		}
		supertraits = append(supertraits, hir.TraitPath{GenericPath: t.PathP.Generic})
	}

	trait := &hir.Trait{
		Path:        path,
		Generics:    append([]string{"Self"}, genericNames(it.Generics)...),
		Supertraits: supertraits,
		AssocTypes:  map[string]*hir.AssocTypeDecl{},
		AssocValues: map[string]*hir.AssocValueDecl{},
		IsMarker:    len(it.Items) == 0,
	}

	for _, item := range it.Items {
		switch v := item.(type) {
		case *ast.AssocTypeItem:
			decl := &hir.AssocTypeDecl{Name: v.Name, IsSized: true}
			for _, b := range v.Bounds {
				switch b.Kind {
				case ast.BoundTypeTrait:
					bt, rep := l.LowerType(b.TraitPath)
					if rep != nil {
						return rep
					}
					if bt.Kind != hir.TyPath {
						errors.Bug("lower", "associated-type trait bound did not lower to a path", token.Span{Start: v.P})
					}
					decl.TraitBounds = append(decl.TraitBounds, hir.TraitPath{GenericPath: bt.PathP.Generic})
				case ast.BoundTypeOutlives:
					decl.LifetimeBound = b.Lifetime
				case ast.BoundTypeNotTrait:
					if !isSizedMarkerBound(b) {
						return errors.New(errors.LOW003, "lower", "NotTrait bound on a non-Sized marker")
					}
					decl.IsSized = false
				}
			}
			if v.Default != nil {
				dt, rep := l.LowerType(v.Default)
				if rep != nil {
					return rep
				}
				decl.Default = dt
			}
			trait.AssocTypes[v.Name] = decl

		case *ast.FuncItem:
			fn, rep := l.lowerFuncItem(path, v)
			if rep != nil {
				return rep
			}
			trait.AssocValues[v.Name] = &hir.AssocValueDecl{Kind: hir.AssocFunc, Func: fn}

		case *ast.StaticItem:
			t, rep := l.LowerType(v.Type)
			if rep != nil {
				return rep
			}
			kind := hir.AssocStatic
			if v.Kind == ast.StaticConst {
				kind = hir.AssocConst
			}
			trait.AssocValues[v.Name] = &hir.AssocValueDecl{Kind: kind, Type: t}
		}
	}

	mod.Traits[it.Name] = trait
	mod.Types[it.Name] = hir.NameTableEntry{Kind: hir.EntryLocal}
	return l.recordLangItem(it.Attrs, path)
}

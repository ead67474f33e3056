package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvid-lang/corvidc/internal/ast"
	"github.com/corvid-lang/corvidc/internal/errors"
	"github.com/corvid-lang/corvidc/internal/hir"
	"github.com/corvid-lang/corvidc/internal/parser"
	"github.com/corvid-lang/corvidc/internal/resolve"
)

// parseOneFileForLower parses src with the same single-file map resolver the
// parser package's own tests use, for lowering tests that need the raw AST.
func parseOneFileForLower(t *testing.T, src string) *ast.File {
	t.Helper()
	fr := resolve.NewMapResolver(map[string]string{"lib.cv": src})
	f, rep := parser.ParseCrateRoot(fr, "lib.cv", nil)
	require.Nil(t, rep, "unexpected parse error: %v", rep)
	return f
}

// findLetPattern locates fn f()'s first "let" statement and returns its
// pattern, for pattern-lowering tests that don't care about the rest of the
// function body.
func findLetPattern(t *testing.T, f *ast.File) ast.Pattern {
	t.Helper()
	for _, it := range f.Items {
		fn, ok := it.(*ast.FuncItem)
		if !ok || fn.Name != "f" || fn.Body == nil {
			continue
		}
		for _, stmt := range fn.Body.Stmts {
			if let, ok := stmt.(*ast.LetExpr); ok {
				return let.Pattern
			}
		}
	}
	t.Fatal("no let statement found in fn f()")
	return nil
}

func lowerSrc(t *testing.T, src string) (*hir.Crate, *errors.Report) {
	t.Helper()
	fr := resolve.NewMapResolver(map[string]string{"lib.cv": src})
	f, rep := parser.ParseCrateRoot(fr, "lib.cv", nil)
	require.Nil(t, rep, "unexpected parse error: %v", rep)
	return NewLowerer("testcrate").LowerCrate(f)
}

func mustLower(t *testing.T, src string) *hir.Crate {
	t.Helper()
	crate, rep := lowerSrc(t, src)
	require.Nil(t, rep, "unexpected lowering error: %v", rep)
	return crate
}

func TestLowerStructNamedAndTuple(t *testing.T) {
	crate := mustLower(t, `
		struct Point { x: i32, y: i32 }
		struct Pair(i32, bool);
	`)
	point := crate.Root.Structs["Point"]
	require.NotNil(t, point)
	require.Len(t, point.Fields, 2)
	assert.Equal(t, "x", point.Fields[0].Name)
	assert.False(t, point.IsTuple)
	assert.Contains(t, crate.Root.Types, "Point")

	pair := crate.Root.Structs["Pair"]
	require.NotNil(t, pair)
	assert.True(t, pair.IsTuple)
	assert.Contains(t, crate.Root.Values, "Pair", "tuple struct name doubles as its constructor")
}

func TestLowerStructReprCombinations(t *testing.T) {
	crate := mustLower(t, `#[repr(C)] #[repr(packed)] struct Raw { a: i32 }`)
	assert.Equal(t, hir.ReprPacked, crate.Root.Structs["Raw"].Repr.Kind)

	crate2 := mustLower(t, `#[repr(align(16))] struct Aligned { a: i32 }`)
	repr := crate2.Root.Structs["Aligned"].Repr
	assert.Equal(t, hir.ReprAligned, repr.Kind)
	assert.Equal(t, int64(16), repr.Align)
}

func TestLowerStructReprConflicts(t *testing.T) {
	_, rep := lowerSrc(t, `#[repr(packed)] #[repr(align(4))] struct Bad { a: i32 }`)
	require.NotNil(t, rep)
	assert.Equal(t, errors.LOW005, rep.Code)

	_, rep = lowerSrc(t, `#[repr(bogus)] struct Bad2 { a: i32 }`)
	require.NotNil(t, rep)
	assert.Equal(t, errors.LOW006, rep.Code)

	_, rep = lowerSrc(t, `#[repr(align)] struct Bad3 { a: i32 }`)
	require.NotNil(t, rep)
	assert.Equal(t, errors.LOW010, rep.Code)
}

func TestLowerEnumValueWithDiscriminants(t *testing.T) {
	crate := mustLower(t, `enum Color { Red = 2, Green, Blue = 10 }`)
	e := crate.Root.Enums["Color"]
	require.NotNil(t, e)
	assert.Equal(t, hir.EnumValue, e.Kind)
	require.Len(t, e.ValueVariants, 3)
	assert.Equal(t, int64(2), e.ValueVariants[0].Discriminant)
	assert.Equal(t, int64(3), e.ValueVariants[1].Discriminant)
	assert.Equal(t, int64(10), e.ValueVariants[2].Discriminant)
}

func TestLowerEnumDataSynthesizesSiblingStructs(t *testing.T) {
	crate := mustLower(t, `enum Shape { Circle(i32), Square { side: i32 } }`)
	e := crate.Root.Enums["Shape"]
	require.NotNil(t, e)
	assert.Equal(t, hir.EnumData, e.Kind)
	require.Len(t, e.DataVariants, 2)

	circle := crate.Root.Structs["Shape#Circle"]
	require.NotNil(t, circle)
	assert.True(t, circle.IsTuple)
	assert.Len(t, circle.Fields, 1)

	square := crate.Root.Structs["Shape#Square"]
	require.NotNil(t, square)
	assert.False(t, square.IsTuple)
	assert.Equal(t, "side", square.Fields[0].Name)
}

func TestLowerEnumMixedVariantsIsHardError(t *testing.T) {
	_, rep := lowerSrc(t, `enum Mixed { A, B(i32) }`)
	require.NotNil(t, rep)
	assert.Equal(t, errors.LOW004, rep.Code)
}

func TestLowerFunctionReceiverClassification(t *testing.T) {
	crate := mustLower(t, `
		struct T;
		impl T {
			fn a(self) {}
			fn b(&self) {}
			fn c(&mut self) {}
			fn d(self: Box<Self>) {}
			fn e(self: Rc<Self>) {}
			fn free_fn() {}
		}
	`)
	impls := crate.Impls.Lookup("T")
	require.Len(t, impls, 1)
	funcs := impls[0].AssocFuncs
	assert.Equal(t, hir.ReceiverValue, funcs["a"].Receiver)
	assert.Equal(t, hir.ReceiverBorrowShared, funcs["b"].Receiver)
	assert.Equal(t, hir.ReceiverBorrowUnique, funcs["c"].Receiver)
	assert.Equal(t, hir.ReceiverBox, funcs["d"].Receiver)
	assert.Equal(t, hir.ReceiverCustom, funcs["e"].Receiver)
	assert.Equal(t, hir.ReceiverFree, funcs["free_fn"].Receiver)
}

func TestLowerLinkageDerivation(t *testing.T) {
	crate := mustLower(t, `
		#[no_mangle]
		fn exported() {}

		#[link_name = "renamed_sym"]
		fn aliased() {}

		fn prototype_only();

		fn ordinary() {}
	`)
	assert.Equal(t, hir.Linkage{HasExternalName: true, ExternalName: "exported"}, crate.Root.Functions["exported"].Linkage)
	assert.Equal(t, hir.Linkage{HasExternalName: true, ExternalName: "renamed_sym"}, crate.Root.Functions["aliased"].Linkage)
	assert.Equal(t, hir.Linkage{HasExternalName: true, ExternalName: "prototype_only"}, crate.Root.Functions["prototype_only"].Linkage)
	assert.Equal(t, hir.Linkage{}, crate.Root.Functions["ordinary"].Linkage)
}

func TestLowerLinkageConflict(t *testing.T) {
	_, rep := lowerSrc(t, `#[no_mangle] #[link_name = "x"] fn f() {}`)
	require.NotNil(t, rep)
	assert.Equal(t, errors.LOW008, rep.Code)
}

func TestLowerTraitSyntheticSelfBoundAndAssocTypes(t *testing.T) {
	crate := mustLower(t, `
		trait Container {
			type Item: Clone + 'static;
			fn get(&self) -> Self::Item;
		}
	`)
	tr := crate.Root.Traits["Container"]
	require.NotNil(t, tr)
	assert.Equal(t, "Self", tr.Generics[0])
	item := tr.AssocTypes["Item"]
	require.NotNil(t, item)
	assert.Equal(t, "static", item.LifetimeBound)
	require.Len(t, item.TraitBounds, 1)
	assert.Equal(t, "Clone", item.TraitBounds[0].Base.Components[0])
	assert.True(t, item.IsSized)
}

func TestLowerGenericMaybeTraitOnSizedOnly(t *testing.T) {
	mustLower(t, `struct Boxed<T: !Sized> { inner: i32 }`)

	_, rep := lowerSrc(t, `struct Boxed<T: !Clone> { inner: i32 }`)
	require.NotNil(t, rep)
	assert.Equal(t, errors.LOW002, rep.Code)
}

func TestLowerImplClassification(t *testing.T) {
	crate := mustLower(t, `
		struct Widget;
		trait Draw { fn draw(&self); }
		impl Draw for Widget { fn draw(&self) {} }
		impl Widget { fn new() -> Self { Widget } }
		unsafe impl Send for Widget {}
	`)
	impls := crate.Impls.Lookup("Widget")
	var sawTrait, sawInherent, sawMarker bool
	for _, im := range impls {
		switch im.Kind {
		case hir.ImplTrait:
			sawTrait = true
			assert.NotNil(t, im.AssocFuncs["draw"])
		case hir.ImplInherent:
			sawInherent = true
			assert.NotNil(t, im.AssocFuncs["new"])
		case hir.ImplMarker:
			sawMarker = true
		}
	}
	assert.True(t, sawTrait)
	assert.True(t, sawInherent)
	assert.True(t, sawMarker)
}

func TestLowerNegativeImplIsMarker(t *testing.T) {
	crate := mustLower(t, `
		struct Widget;
		unsafe impl !Send for Widget {}
	`)
	impls := crate.Impls.Lookup("Widget")
	require.Len(t, impls, 1)
	assert.Equal(t, hir.ImplMarker, impls[0].Kind)
	assert.True(t, impls[0].Negative)
}

func TestLowerLangItemConflict(t *testing.T) {
	_, rep := lowerSrc(t, `
		#[lang = "dup"]
		fn one() {}

		mod sub {
			#[lang = "dup"]
			fn two() {}
		}
	`)
	require.NotNil(t, rep)
	assert.Equal(t, errors.LOW009, rep.Code)
}

func TestLowerExternCrateLangItemsMergeWhenEqual(t *testing.T) {
	one, rep := lowerSrc(t, `#[lang = "panic_fmt"] fn one() {}`)
	require.Nil(t, rep)
	two, rep := lowerSrc(t, `#[lang = "panic_fmt"] fn one() {}`)
	require.Nil(t, rep)

	host := NewLowerer("host")
	rep = host.LoadExternCrate("a", one)
	require.Nil(t, rep)
	rep = host.LoadExternCrate("b", two)
	require.Nil(t, rep)

	assert.Equal(t, one.Lang["panic_fmt"], host.crate.Lang["panic_fmt"])
	assert.Same(t, one, host.crate.Extern["a"])
	assert.Same(t, two, host.crate.Extern["b"])
}

func TestLowerExternCrateConflictingLangItemsIsError(t *testing.T) {
	a, rep := lowerSrc(t, `#[lang = "panic_fmt"] fn one() {}`)
	require.Nil(t, rep)
	b, rep := lowerSrc(t, `#[lang = "panic_fmt"] fn two() {}`)
	require.Nil(t, rep)

	host := NewLowerer("host")
	require.Nil(t, host.LoadExternCrate("a", a))
	rep = host.LoadExternCrate("b", b)
	require.NotNil(t, rep)
	assert.Equal(t, errors.LOW009, rep.Code)
}

func TestLowerSeedLangItemsMergesIntoOwnLangItem(t *testing.T) {
	l := NewLowerer("testcrate")
	require.Nil(t, l.SeedLangItems(hir.LangItems{"panic_fmt": {Components: []string{"one"}}}))
	f := parseOneFileForLower(t, `#[lang = "panic_fmt"] fn one() {}`)
	_, rep := l.LowerCrate(f)
	require.Nil(t, rep)
}

func TestLowerSeedLangItemsConflictingWithOwnIsError(t *testing.T) {
	l := NewLowerer("testcrate")
	require.Nil(t, l.SeedLangItems(hir.LangItems{"panic_fmt": {Components: []string{"other"}}}))
	f := parseOneFileForLower(t, `#[lang = "panic_fmt"] fn one() {}`)
	_, rep := l.LowerCrate(f)
	require.NotNil(t, rep)
	assert.Equal(t, errors.LOW009, rep.Code)
}

func TestLowerExportedMacroRecordedInTable(t *testing.T) {
	crate, rep := lowerSrc(t, `
		#[macro_export]
		macro_rules! cheep { () => {}; }
		macro_rules! hidden { () => {}; }
	`)
	require.Nil(t, rep)
	_, exported := crate.ExportedMacros["cheep"]
	assert.True(t, exported)
	_, hidden := crate.ExportedMacros["hidden"]
	assert.False(t, hidden)
}

func TestLowerExternBlockLinkLibraryRecorded(t *testing.T) {
	crate, rep := lowerSrc(t, `
		#[link(name = "m")]
		extern "C" {
			fn sqrt(x: f64) -> f64;
		}
	`)
	require.Nil(t, rep)
	assert.Contains(t, crate.Libraries, "m")
}

func TestLowerPatternStructTupleDensePadding(t *testing.T) {
	f := parseOneFileForLower(t, `
		struct Triple(i32, i32, i32);
		fn f() { let Triple(a, .., c) = Triple(1, 2, 3); }
	`)
	l := NewLowerer("testcrate")
	_, rep := l.LowerCrate(f)
	require.Nil(t, rep)

	letStmt := findLetPattern(t, f)
	pat, rep := l.LowerPattern(letStmt)
	require.Nil(t, rep)
	assert.Equal(t, hir.PatStructTuple, pat.Kind)
	require.Len(t, pat.Elems, 3)
	assert.Equal(t, hir.PatWildcard, pat.Elems[1].Kind)
}

func TestLowerPatternFieldCountMismatch(t *testing.T) {
	f := parseOneFileForLower(t, `
		struct Pair(i32, i32);
		fn f() { let Pair(a, b, c) = Pair(1, 2); }
	`)
	l := NewLowerer("testcrate")
	_, rep := l.LowerCrate(f)
	require.Nil(t, rep)

	letStmt := findLetPattern(t, f)
	_, rep = l.LowerPattern(letStmt)
	require.NotNil(t, rep)
	assert.Equal(t, errors.LOW001, rep.Code)
}

func TestLowerPatternBindIntents(t *testing.T) {
	f := parseOneFileForLower(t, `fn f() { let (a, ref b, ref mut c) = (1, 2, 3); }`)
	l := NewLowerer("testcrate")
	_, rep := l.LowerCrate(f)
	require.Nil(t, rep)

	letStmt := findLetPattern(t, f)
	pat, rep := l.LowerPattern(letStmt)
	require.Nil(t, rep)
	require.Equal(t, hir.PatTuple, pat.Kind)
	require.Len(t, pat.Elems, 3)
	assert.Equal(t, hir.BindMove, pat.Elems[0].Intent)
	assert.Equal(t, hir.BindRef, pat.Elems[1].Intent)
	assert.Equal(t, hir.BindMutRef, pat.Elems[2].Intent)
}

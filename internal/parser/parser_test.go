package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvid-lang/corvidc/internal/ast"
	"github.com/corvid-lang/corvidc/internal/resolve"
)

func parseOneFile(t *testing.T, src string) *ast.File {
	t.Helper()
	fr := resolve.NewMapResolver(map[string]string{"lib.cv": src})
	f, rep := ParseCrateRoot(fr, "lib.cv", nil)
	require.Nil(t, rep, "unexpected parse error: %v", rep)
	return f
}

func parseExprSrc(t *testing.T, src string) ast.Expr {
	t.Helper()
	f := parseOneFile(t, "fn f() { "+src+" }")
	require.Len(t, f.Items, 1)
	fn := f.Items[0].(*ast.FuncItem)
	require.NotEmpty(t, fn.Body.Stmts)
	return fn.Body.Stmts[0]
}

func TestParseGoldenStructNamed(t *testing.T) {
	f := parseOneFile(t, `struct Point { x: i32, y: i32 }`)
	goldenCompare(t, "struct_named", ast.Print(f))
}

func TestParseGoldenFuncWithParams(t *testing.T) {
	f := parseOneFile(t, `fn add(a: i32, b: i32) -> i32 { a + b }`)
	goldenCompare(t, "func_with_params", ast.Print(f))
}

func TestParseGoldenEnumVariants(t *testing.T) {
	f := parseOneFile(t, `enum Color { Red, Green, Blue }`)
	goldenCompare(t, "enum_variants", ast.Print(f))
}

func TestParseGoldenNestedModule(t *testing.T) {
	f := parseOneFile(t, `mod inner { fn helper() {} }`)
	goldenCompare(t, "nested_module", ast.Print(f))
}

func TestParseStructNamed(t *testing.T) {
	f := parseOneFile(t, `
		pub struct Point {
			pub x: i32,
			y: i32,
		}
	`)
	require.Len(t, f.Items, 1)
	s := f.Items[0].(*ast.StructItem)
	assert.Equal(t, "Point", s.Name)
	assert.Equal(t, ast.StructNamed, s.Kind)
	assert.Equal(t, ast.VisPublic, s.Vis.Kind)
	require.Len(t, s.Fields, 2)
	assert.Equal(t, "x", s.Fields[0].Name)
	assert.Equal(t, ast.VisPublic, s.Fields[0].Vis.Kind)
	assert.Equal(t, ast.VisPrivate, s.Fields[1].Vis.Kind)
}

func TestParseTupleStructRejectsRestrictedVis(t *testing.T) {
	f := parseOneFile(t, `struct Wrapper(pub i32, f32);`)
	s := f.Items[0].(*ast.StructItem)
	assert.Equal(t, ast.StructTuple, s.Kind)
	require.Len(t, s.Fields, 2)
	assert.Equal(t, ast.VisPublic, s.Fields[0].Vis.Kind)
	assert.Equal(t, ast.VisPrivate, s.Fields[1].Vis.Kind)
}

func TestParseEnumWithDataAndDiscriminant(t *testing.T) {
	f := parseOneFile(t, `
		enum Op {
			Add(i32, i32),
			Halt = 9,
			Named { code: i32 },
		}
	`)
	e := f.Items[0].(*ast.EnumItem)
	require.Len(t, e.Variants, 3)
	assert.Equal(t, ast.StructTuple, e.Variants[0].Kind)
	assert.NotNil(t, e.Variants[1].Discriminant)
	assert.Equal(t, ast.StructNamed, e.Variants[2].Kind)
}

func TestParseVisibilityForms(t *testing.T) {
	f := parseOneFile(t, `
		mod m {
			pub(crate) fn a() {}
			pub(self) fn b() {}
			pub(super) fn c() {}
			pub(in crate::foo) fn d() {}
		}
	`)
	m := f.Items[0].(*ast.ModuleItem)
	require.Len(t, m.Inline, 4)
	kinds := []ast.VisKind{ast.VisCrate, ast.VisSelf, ast.VisSuper, ast.VisInPath}
	for i, k := range kinds {
		fn := m.Inline[i].(*ast.FuncItem)
		assert.Equal(t, k, fn.Vis.Kind, "item %d", i)
	}
	inPath := m.Inline[3].(*ast.FuncItem)
	assert.Equal(t, []string{"foo"}, inPath.Vis.InPath)
}

func TestParseGenericFnWithBoundsAndWhere(t *testing.T) {
	f := parseOneFile(t, `
		fn max<'a, T: Ord + Clone>(a: &'a T, b: &'a T) -> &'a T where T: std::fmt::Debug {
			a
		}
	`)
	fn := f.Items[0].(*ast.FuncItem)
	require.NotNil(t, fn.Generics)
	require.Len(t, fn.Generics.Lifetimes, 1)
	require.Len(t, fn.Generics.Types, 1)
	assert.Equal(t, "T", fn.Generics.Types[0].Name)
	assert.GreaterOrEqual(t, len(fn.Generics.Bounds), 2)
	assert.Len(t, fn.Where, 1)
}

func TestParseMethodSelfByRefMut(t *testing.T) {
	f := parseOneFile(t, `
		impl Counter {
			fn bump(&mut self, by: i32) -> i32 {
				self.n = self.n + by;
				self.n
			}
		}
	`)
	impl := f.Items[0].(*ast.ImplItem)
	require.Len(t, impl.Items, 1)
	fn := impl.Items[0].(*ast.FuncItem)
	assert.Equal(t, ast.SelfByRefMut, fn.SelfKind)
	require.IsType(t, &ast.BorrowType{}, fn.SelfType)
	assert.True(t, fn.SelfType.(*ast.BorrowType).Mut)
}

func TestParseMethodMutSelfByValue(t *testing.T) {
	f := parseOneFile(t, `
		impl Counter {
			fn consume(mut self, by: i32) -> i32 {
				self.n = self.n + by;
				self.n
			}
		}
	`)
	impl := f.Items[0].(*ast.ImplItem)
	require.Len(t, impl.Items, 1)
	fn := impl.Items[0].(*ast.FuncItem)
	assert.Equal(t, ast.SelfByValue, fn.SelfKind)
	require.IsType(t, &ast.PathType{}, fn.SelfType)
	require.Len(t, fn.Params, 1)
	assert.Equal(t, "by", fn.Params[0].Pattern.(*ast.MaybeBindPattern).Name)
}

func TestParseMethodMutSelfExplicitType(t *testing.T) {
	f := parseOneFile(t, `
		trait Sink {
			fn drain(mut self: Box<Self>) -> i32;
		}
	`)
	tr := f.Items[0].(*ast.TraitItem)
	fn := tr.Items[0].(*ast.FuncItem)
	assert.Equal(t, ast.SelfExplicitType, fn.SelfKind)
	assert.Nil(t, fn.Body)
}

func TestParseSelfExplicitType(t *testing.T) {
	f := parseOneFile(t, `
		trait Greet {
			fn greet(self: Box<Self>) -> i32;
		}
	`)
	tr := f.Items[0].(*ast.TraitItem)
	fn := tr.Items[0].(*ast.FuncItem)
	assert.Equal(t, ast.SelfExplicitType, fn.SelfKind)
	assert.Nil(t, fn.Body)
}

func TestParseTraitWithSupertraitsAndAssocType(t *testing.T) {
	f := parseOneFile(t, `
		trait Iterator: Sized {
			type Item;
			fn next(&mut self) -> Self::Item;
		}
	`)
	tr := f.Items[0].(*ast.TraitItem)
	require.Len(t, tr.Supertraits, 1)
	require.Len(t, tr.Items, 2)
	assoc := tr.Items[0].(*ast.AssocTypeItem)
	assert.Equal(t, "Item", assoc.Name)
}

func TestParseNegativeImplRejectsBody(t *testing.T) {
	fr := resolve.NewMapResolver(map[string]string{
		"lib.cv": `impl !Send for Foo { fn x() {} }`,
	})
	_, rep := ParseCrateRoot(fr, "lib.cv", nil)
	require.NotNil(t, rep)
}

func TestParseImplForTrait(t *testing.T) {
	f := parseOneFile(t, `
		impl Display for Point {
			fn fmt(&self) -> i32 { 0 }
		}
	`)
	impl := f.Items[0].(*ast.ImplItem)
	require.NotNil(t, impl.Trait)
	require.IsType(t, &ast.PathType{}, impl.Target)
}

func TestParseUseTreeNestedAndRenamed(t *testing.T) {
	f := parseOneFile(t, `
		use std::{io::Write, fmt::{self as fmt_mod, Debug}};
		use super::*;
	`)
	require.Len(t, f.Items, 2)
	u := f.Items[0].(*ast.UseItem)
	require.Len(t, u.Entries, 3)
	names := map[string]bool{}
	for _, e := range u.Entries {
		names[e.LocalName] = true
	}
	assert.True(t, names["Write"])
	assert.True(t, names["fmt_mod"])
	assert.True(t, names["Debug"])

	g := f.Items[1].(*ast.UseItem)
	require.Len(t, g.Entries, 1)
	assert.True(t, g.Entries[0].IsGlob)
}

func TestParseBinaryPrecedence(t *testing.T) {
	e := parseExprSrc(t, "1 + 2 * 3")
	bin := e.(*ast.BinaryExpr)
	assert.Equal(t, "+", bin.Op)
	rhs := bin.Right.(*ast.BinaryExpr)
	assert.Equal(t, "*", rhs.Op)
}

func TestParseStructLitVsBlockAmbiguity(t *testing.T) {
	f := parseOneFile(t, `
		fn f(flag: bool) -> i32 {
			if flag { 1 } else { 2 }
		}
	`)
	fn := f.Items[0].(*ast.FuncItem)
	ie := fn.Body.Stmts[0].(*ast.IfExpr)
	require.IsType(t, &ast.PathExpr{}, ie.Cond)
}

func TestParseStructLitInsideParens(t *testing.T) {
	e := parseExprSrc(t, "(Point { x: 1, y: 2 })")
	lit := e.(*ast.StructLitExpr)
	require.Len(t, lit.Fields, 2)
}

func TestParseArrayRepeatExpr(t *testing.T) {
	e := parseExprSrc(t, "[0; 16]")
	arr := e.(*ast.ArrayExpr)
	require.NotNil(t, arr.Repeat)
	require.Len(t, arr.Elems, 1)
}

func TestParseClosureAndCall(t *testing.T) {
	e := parseExprSrc(t, "(|x: i32, y: i32| x + y)(1, 2)")
	call := e.(*ast.CallExpr)
	require.IsType(t, &ast.ClosureExpr{}, call.Func)
	require.Len(t, call.Args, 2)
}

func TestParseMethodCallTurbofish(t *testing.T) {
	e := parseExprSrc(t, "v.collect::<Vec<i32>>()")
	call := e.(*ast.MethodCallExpr)
	assert.Equal(t, "collect", call.Method)
	require.NotNil(t, call.Params)
	require.Len(t, call.Params.Types, 1)
}

func TestParseMatchWithGuardAndRange(t *testing.T) {
	e := parseExprSrc(t, `
		match n {
			0 => 0,
			1..=9 if n > 0 => 1,
			_ => 2,
		}
	`)
	m := e.(*ast.MatchExpr)
	require.Len(t, m.Arms, 3)
	rangePat := m.Arms[1].Pattern.(*ast.ValuePattern)
	assert.NotNil(t, rangePat.End)
	assert.NotNil(t, m.Arms[1].Guard)
}

func TestParseTupleAndStructPattern(t *testing.T) {
	f := parseOneFile(t, `
		fn f() {
			let (a, .., b) = pair;
			let Point { x, y: yy } = p;
		}
	`)
	fn := f.Items[0].(*ast.FuncItem)
	require.Len(t, fn.Body.Stmts, 2)
	let1 := fn.Body.Stmts[0].(*ast.LetExpr)
	tp := let1.Pattern.(*ast.TuplePattern)
	assert.True(t, tp.HasRest)
	require.Len(t, tp.Leading, 1)
	require.Len(t, tp.Trailing, 1)

	let2 := fn.Body.Stmts[1].(*ast.LetExpr)
	sp := let2.Pattern.(*ast.StructPattern)
	require.Len(t, sp.Fields, 2)
	assert.Equal(t, "y", sp.Fields[1].Name)
}

func TestParseSlicePatternSplit(t *testing.T) {
	f := parseOneFile(t, `
		fn f() {
			let [first, .., last] = xs;
		}
	`)
	fn := f.Items[0].(*ast.FuncItem)
	let := fn.Body.Stmts[0].(*ast.LetExpr)
	sp := let.Pattern.(*ast.SplitSlicePattern)
	require.Len(t, sp.Leading, 1)
	require.Len(t, sp.Trailing, 1)
}

func TestParseReferenceAndPointerTypes(t *testing.T) {
	f := parseOneFile(t, `
		fn f(a: &'a mut i32, b: *const u8, c: *mut u8) {}
	`)
	fn := f.Items[0].(*ast.FuncItem)
	require.Len(t, fn.Params, 3)
	bt := fn.Params[0].Type.(*ast.BorrowType)
	assert.True(t, bt.Mut)
	pt1 := fn.Params[1].Type.(*ast.PointerType)
	assert.False(t, pt1.Mut)
	pt2 := fn.Params[2].Type.(*ast.PointerType)
	assert.True(t, pt2.Mut)
}

func TestParseTraitObjectType(t *testing.T) {
	f := parseOneFile(t, `
		fn f(x: &dyn Display + Send + 'static) {}
	`)
	fn := f.Items[0].(*ast.FuncItem)
	bt := fn.Params[0].Type.(*ast.BorrowType)
	obj := bt.Inner.(*ast.TraitObjectType)
	require.NotNil(t, obj.Trait)
	require.Len(t, obj.Markers, 1)
	assert.Equal(t, "static", obj.Lifetime)
}

func TestParseReprAttributeNestedPayload(t *testing.T) {
	f := parseOneFile(t, `
		#[repr(align(8))]
		struct Aligned {
			x: i32,
		}
	`)
	s := f.Items[0].(*ast.StructItem)
	require.Len(t, s.Attrs, 1)
	assert.Equal(t, "repr", s.Attrs[0].Name)
	list := s.Attrs[0].Payload.(ast.AttrList)
	require.Len(t, list, 1)
	assert.Equal(t, "align", list[0].Name)
	nested := list[0].Payload.(ast.AttrList)
	require.Len(t, nested, 1)
	assert.Equal(t, "8", nested[0].Name)
}

func TestParseCfgFiltersItem(t *testing.T) {
	checkCfg := func(attr *ast.Attribute) bool { return false }
	fr := resolve.NewMapResolver(map[string]string{
		"lib.cv": `
			#[cfg(test)]
			fn only_in_tests() {}
			fn always() {}
		`,
	})
	f, rep := ParseCrateRoot(fr, "lib.cv", checkCfg)
	require.Nil(t, rep)
	require.Len(t, f.Items, 2)
	assert.IsType(t, &ast.NoneItem{}, f.Items[0])
	fn := f.Items[1].(*ast.FuncItem)
	assert.Equal(t, "always", fn.Name)
}

func TestParseCfgAttrExpansion(t *testing.T) {
	checkCfg := func(attr *ast.Attribute) bool { return true }
	f := parseOneFileWithCfg(t, `
		#[cfg_attr(unix, inline)]
		fn f() {}
	`, checkCfg)
	fn := f.Items[0].(*ast.FuncItem)
	require.Len(t, fn.Attrs, 1)
	assert.Equal(t, "inline", fn.Attrs[0].Name)
}

func parseOneFileWithCfg(t *testing.T, src string, checkCfg CheckCfgFunc) *ast.File {
	t.Helper()
	fr := resolve.NewMapResolver(map[string]string{"lib.cv": src})
	f, rep := ParseCrateRoot(fr, "lib.cv", checkCfg)
	require.Nil(t, rep)
	return f
}

func TestParseOutOfLineModule(t *testing.T) {
	fr := resolve.NewMapResolver(map[string]string{
		"src/lib.rs": `mod sub;`,
		"src/sub.rs": `pub fn hi() {}`,
	})
	f, rep := ParseCrateRoot(fr, "src/lib.rs", nil)
	require.Nil(t, rep)
	require.Len(t, f.Items, 1)
	m := f.Items[0].(*ast.ModuleItem)
	require.NotNil(t, m.File)
	require.Len(t, m.File.Items, 1)
	fn := m.File.Items[0].(*ast.FuncItem)
	assert.Equal(t, "hi", fn.Name)
}

func TestParseMacroInvocationAsItemAndExpr(t *testing.T) {
	f := parseOneFile(t, `
		my_macro!(a, b, c);

		fn f() {
			println!("{}", 1);
		}
	`)
	require.Len(t, f.Items, 2)
	_, ok := f.Items[0].(*ast.MacroInvocation)
	require.True(t, ok)
	fn := f.Items[1].(*ast.FuncItem)
	_, ok = fn.Body.Stmts[0].(*ast.MacroInvocation)
	require.True(t, ok)
}

func TestParseBlockTrailingSemiYieldsUnit(t *testing.T) {
	f := parseOneFile(t, `
		fn f() {
			let x = 1;
		}
	`)
	fn := f.Items[0].(*ast.FuncItem)
	require.Len(t, fn.Body.Stmts, 2)
	lit := fn.Body.Stmts[1].(*ast.Literal)
	assert.Equal(t, ast.LitUnit, lit.Kind)
}

func TestParseExternBlock(t *testing.T) {
	f := parseOneFile(t, `
		extern "C" {
			fn puts(s: *const u8) -> i32;
			static ERRNO: i32;
		}
	`)
	blk := f.Items[0].(*ast.ExternBlockItem)
	assert.Equal(t, "C", blk.ABI)
	require.Len(t, blk.Items, 2)
}

func TestParseUnexpectedTokenAborts(t *testing.T) {
	fr := resolve.NewMapResolver(map[string]string{"lib.cv": `struct {`})
	_, rep := ParseCrateRoot(fr, "lib.cv", nil)
	require.NotNil(t, rep)
}

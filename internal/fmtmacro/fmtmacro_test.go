package fmtmacro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvid-lang/corvidc/internal/ast"
	"github.com/corvid-lang/corvidc/internal/errors"
	"github.com/corvid-lang/corvidc/internal/token"
)

func ident(name string) ast.Expr {
	return &ast.PathExpr{PathP: &ast.PathLocal{Name: name}}
}

func posArg(name string) Arg  { return Arg{Expr: ident(name)} }
func namedArg(n, e string) Arg { return Arg{Name: n, Expr: ident(e)} }

var zeroPos token.Pos

func reportCode(t *testing.T, rep *errors.Report) string {
	t.Helper()
	require.NotNil(t, rep)
	return rep.Code
}

func TestFmtmacroPlainLiteralNoSubstitution(t *testing.T) {
	exp, rep := Parse("hello world", zeroPos, nil)
	require.Nil(t, rep)
	assert.Empty(t, exp.Fragments)
	assert.Equal(t, "hello world", exp.TrailingLiteral)
}

func TestFmtmacroImplicitPositional(t *testing.T) {
	exp, rep := Parse("{} and {}", zeroPos, []Arg{posArg("a"), posArg("b")})
	require.Nil(t, rep)
	require.Len(t, exp.Fragments, 2)
	assert.Equal(t, 0, exp.Fragments[0].ArgIndex)
	assert.Equal(t, "", exp.Fragments[0].Literal)
	assert.Equal(t, 1, exp.Fragments[1].ArgIndex)
	assert.Equal(t, " and ", exp.Fragments[1].Literal)
	assert.Equal(t, "", exp.TrailingLiteral)
}

func TestFmtmacroExplicitIndex(t *testing.T) {
	exp, rep := Parse("{1} {0}", zeroPos, []Arg{posArg("a"), posArg("b")})
	require.Nil(t, rep)
	require.Len(t, exp.Fragments, 2)
	assert.Equal(t, 1, exp.Fragments[0].ArgIndex)
	assert.Equal(t, 0, exp.Fragments[1].ArgIndex)
}

func TestFmtmacroNamedArg(t *testing.T) {
	exp, rep := Parse("{x} and {y}", zeroPos, []Arg{namedArg("x", "a"), namedArg("y", "b")})
	require.Nil(t, rep)
	require.Len(t, exp.Fragments, 2)
	// named args occupy the front of the concatenated (named ++ free) vector
	assert.Equal(t, 0, exp.Fragments[0].ArgIndex)
	assert.Equal(t, 1, exp.Fragments[1].ArgIndex)
	require.Len(t, exp.Args, 2)
}

func TestFmtmacroMixedNamedAndPositional(t *testing.T) {
	// named args are renumbered to the front, then the free args follow
	exp, rep := Parse("{} {name} {}", zeroPos, []Arg{posArg("p0"), namedArg("name", "n"), posArg("p1")})
	require.Nil(t, rep)
	require.Len(t, exp.Fragments, 3)
	// concat = [n, p0, p1]; fragment 0 -> free[0] = p0 = index 1
	assert.Equal(t, 1, exp.Fragments[0].ArgIndex)
	// fragment 1 -> named "name" = index 0
	assert.Equal(t, 0, exp.Fragments[1].ArgIndex)
	// fragment 2 -> free[1] = p1 = index 2
	assert.Equal(t, 2, exp.Fragments[2].ArgIndex)
}

func TestFmtmacroLiteralBraceEscapes(t *testing.T) {
	exp, rep := Parse("{{}} {}", zeroPos, []Arg{posArg("a")})
	require.Nil(t, rep)
	require.Len(t, exp.Fragments, 1)
	assert.Equal(t, "{} ", exp.Fragments[0].Literal)
}

func TestFmtmacroUnmatchedOpenBrace(t *testing.T) {
	_, rep := Parse("foo {", zeroPos, nil)
	assert.Equal(t, errors.FMT001, reportCode(t, rep))
}

func TestFmtmacroUnmatchedCloseBrace(t *testing.T) {
	_, rep := Parse("foo }", zeroPos, nil)
	assert.Equal(t, errors.FMT001, reportCode(t, rep))
}

func TestFmtmacroDuplicateNamedArg(t *testing.T) {
	_, rep := Parse("{x}", zeroPos, []Arg{namedArg("x", "a"), namedArg("x", "b")})
	assert.Equal(t, errors.FMT002, reportCode(t, rep))
}

func TestFmtmacroUnresolvedNamedArg(t *testing.T) {
	_, rep := Parse("{missing}", zeroPos, []Arg{posArg("a")})
	assert.Equal(t, errors.FMT003, reportCode(t, rep))
}

func TestFmtmacroTooFewPositionalArgs(t *testing.T) {
	_, rep := Parse("{} {}", zeroPos, []Arg{posArg("a")})
	assert.Equal(t, errors.FMT004, reportCode(t, rep))
}

func TestFmtmacroTooFewPositionalArgsExplicitIndex(t *testing.T) {
	_, rep := Parse("{1}", zeroPos, []Arg{posArg("a")})
	assert.Equal(t, errors.FMT004, reportCode(t, rep))
}

func TestFmtmacroInvalidSpecSyntax(t *testing.T) {
	_, rep := Parse("{:!}", zeroPos, []Arg{posArg("a")})
	assert.Equal(t, errors.FMT005, reportCode(t, rep))
}

func TestFmtmacroUnknownTraitSelector(t *testing.T) {
	_, rep := Parse("{:z}", zeroPos, []Arg{posArg("a")})
	assert.Equal(t, errors.FMT005, reportCode(t, rep))
}

func TestFmtmacroFillAlignSignAlternateZero(t *testing.T) {
	exp, rep := Parse("{:*>+#010x}", zeroPos, []Arg{posArg("a")})
	require.Nil(t, rep)
	require.Len(t, exp.Fragments, 1)
	opts := exp.Fragments[0].Options
	assert.Equal(t, '*', opts.Fill)
	assert.Equal(t, AlignRight, opts.Align)
	assert.Equal(t, SignPlus, opts.Sign)
	assert.True(t, opts.Alternate)
	assert.True(t, opts.ZeroPad)
	require.NotNil(t, opts.Width)
	assert.Equal(t, ArgRefLiteral, opts.Width.Kind)
	assert.Equal(t, 10, opts.Width.Literal)
	assert.Equal(t, TraitLowerHex, exp.Fragments[0].Trait)
}

func TestFmtmacroWidthByArgIndex(t *testing.T) {
	exp, rep := Parse("{:1$}", zeroPos, []Arg{posArg("a"), posArg("width")})
	require.Nil(t, rep)
	require.Len(t, exp.Fragments, 1)
	opts := exp.Fragments[0].Options
	require.NotNil(t, opts.Width)
	assert.Equal(t, ArgRefIndex, opts.Width.Kind)
	assert.Equal(t, 1, opts.Width.Index)
}

func TestFmtmacroWidthByArgName(t *testing.T) {
	exp, rep := Parse("{x:w$}", zeroPos, []Arg{namedArg("x", "a"), namedArg("w", "width")})
	require.Nil(t, rep)
	require.Len(t, exp.Fragments, 1)
	opts := exp.Fragments[0].Options
	require.NotNil(t, opts.Width)
	assert.Equal(t, ArgRefName, opts.Width.Kind)
}

func TestFmtmacroPrecisionLiteral(t *testing.T) {
	exp, rep := Parse("{:.3}", zeroPos, []Arg{posArg("a")})
	require.Nil(t, rep)
	require.Len(t, exp.Fragments, 1)
	opts := exp.Fragments[0].Options
	require.NotNil(t, opts.Precision)
	assert.Equal(t, ArgRefLiteral, opts.Precision.Kind)
	assert.Equal(t, 3, opts.Precision.Literal)
}

func TestFmtmacroPrecisionByName(t *testing.T) {
	exp, rep := Parse("{x:.p$}", zeroPos, []Arg{namedArg("x", "a"), namedArg("p", "prec")})
	require.Nil(t, rep)
	opts := exp.Fragments[0].Options
	require.NotNil(t, opts.Precision)
	assert.Equal(t, ArgRefName, opts.Precision.Kind)
}

// TestFmtmacroStarPrecisionConsumesBeforeMainSlot verifies spec.md §4.6's
// renumbering rule: "{:.*}" takes its precision from the *next* free
// argument before the fragment's own implicit main slot, even though the
// main arg-ref sits first in the source text.
func TestFmtmacroStarPrecisionConsumesBeforeMainSlot(t *testing.T) {
	exp, rep := Parse("{:.*}", zeroPos, []Arg{posArg("precisionArg"), posArg("valueArg")})
	require.Nil(t, rep)
	require.Len(t, exp.Fragments, 1)
	f := exp.Fragments[0]
	require.NotNil(t, f.Options.Precision)
	assert.Equal(t, ArgRefNextFree, f.Options.Precision.Kind)
	assert.Equal(t, 0, f.Options.Precision.Index, "precision consumes the first free arg")
	assert.Equal(t, 1, f.ArgIndex, "main value then takes the second free arg")
}

func TestFmtmacroStarPrecisionMultipleFragments(t *testing.T) {
	exp, rep := Parse("{:.*} {:.*}", zeroPos, []Arg{
		posArg("p0"), posArg("v0"), posArg("p1"), posArg("v1"),
	})
	require.Nil(t, rep)
	require.Len(t, exp.Fragments, 2)
	assert.Equal(t, 0, exp.Fragments[0].Options.Precision.Index)
	assert.Equal(t, 1, exp.Fragments[0].ArgIndex)
	assert.Equal(t, 2, exp.Fragments[1].Options.Precision.Index)
	assert.Equal(t, 3, exp.Fragments[1].ArgIndex)
}

func TestFmtmacroFillCharMustBeSingleColumn(t *testing.T) {
	// U+3000 IDEOGRAPHIC SPACE is a wide rune under go-runewidth.
	_, rep := Parse("{:　>5}", zeroPos, []Arg{posArg("a")})
	assert.Equal(t, errors.FMT005, reportCode(t, rep))
}

func TestFmtmacroDebugAndNumericTraitSelectors(t *testing.T) {
	cases := map[string]TraitSelector{
		"{:?}": TraitDebug,
		"{:b}": TraitBinary,
		"{:o}": TraitOctal,
		"{:x}": TraitLowerHex,
		"{:X}": TraitUpperHex,
		"{:p}": TraitPointer,
		"{:e}": TraitLowerExp,
		"{:E}": TraitUpperExp,
	}
	for src, want := range cases {
		exp, rep := Parse(src, zeroPos, []Arg{posArg("a")})
		require.Nil(t, rep, "src=%s", src)
		require.Len(t, exp.Fragments, 1)
		assert.Equal(t, want, exp.Fragments[0].Trait, "src=%s", src)
	}
}

func TestFmtmacroToTokensSimpleCase(t *testing.T) {
	exp, rep := Parse("x={}", zeroPos, []Arg{posArg("a")})
	require.Nil(t, rep)
	toks := exp.ToTokens(zeroPos)
	require.NotEmpty(t, toks)
	assert.Equal(t, token.IDENT, toks[0].Kind)
	assert.Equal(t, "Arguments", toks[0].Literal)
	var sawNewV1, sawFragment bool
	for _, tk := range toks {
		if tk.Kind == token.IDENT && tk.Literal == "new_v1" {
			sawNewV1 = true
		}
		if tk.Kind == token.FRAGMENT {
			sawFragment = true
		}
	}
	assert.True(t, sawNewV1)
	assert.True(t, sawFragment)
}

func TestFmtmacroToTokensFormattedCase(t *testing.T) {
	exp, rep := Parse("{:>5}", zeroPos, []Arg{posArg("a")})
	require.Nil(t, rep)
	toks := exp.ToTokens(zeroPos)
	var sawFormatted bool
	for _, tk := range toks {
		if tk.Kind == token.IDENT && tk.Literal == "new_v1_formatted" {
			sawFormatted = true
		}
	}
	assert.True(t, sawFormatted)
}

func TestFmtmacroImplicitSlotsAdvanceOneSharedCursor(t *testing.T) {
	// three implicit main slots in a row must advance a single shared
	// free-argument cursor.
	exp, rep := Parse("{} {} {}", zeroPos, []Arg{posArg("a"), posArg("b"), posArg("c")})
	require.Nil(t, rep)
	require.Len(t, exp.Fragments, 3)
	assert.Equal(t, 0, exp.Fragments[0].ArgIndex)
	assert.Equal(t, 1, exp.Fragments[1].ArgIndex)
	assert.Equal(t, 2, exp.Fragments[2].ArgIndex)
}

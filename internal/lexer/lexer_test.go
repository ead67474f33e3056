package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvid-lang/corvidc/internal/token"
)

func collect(t *testing.T, src string) []token.Token {
	t.Helper()
	l := New(string(Normalize([]byte(src))), "test.cv")
	var toks []token.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return toks
}

func TestLexKeywordsAndIdents(t *testing.T) {
	toks := collect(t, "pub fn foo impl Self self")
	kinds := []token.Kind{token.KW_PUB, token.KW_FN, token.IDENT, token.KW_IMPL, token.KW_SELF_TYPE, token.KW_SELF, token.EOF}
	require.Len(t, toks, len(kinds))
	for i, k := range kinds {
		assert.Equal(t, k, toks[i].Kind, "token %d", i)
	}
}

func TestLexOperatorsLongestMatch(t *testing.T) {
	toks := collect(t, "a::b -> c => d .. e ..= f ... g")
	var kinds []token.Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	assert.Contains(t, kinds, token.DCOLON)
	assert.Contains(t, kinds, token.ARROW)
	assert.Contains(t, kinds, token.FARROW)
	assert.Contains(t, kinds, token.DOTDOT)
	assert.Contains(t, kinds, token.DOTDOTEQ)
	assert.Contains(t, kinds, token.ELLIPSIS)
}

func TestLexIntegerSuffix(t *testing.T) {
	toks := collect(t, "42u64 7i8")
	require.GreaterOrEqual(t, len(toks), 2)
	assert.Equal(t, token.INT, toks[0].Kind)
	assert.Equal(t, token.NumSuffix("u64"), toks[0].NumSuffix)
	assert.Equal(t, uint64(42), toks[0].IntLo)
	assert.Equal(t, token.NumSuffix("i8"), toks[1].NumSuffix)
}

func TestLexIntegerMagnitudeBeyond64Bits(t *testing.T) {
	toks := collect(t, "340282366920938463463374607431768211455")
	require.GreaterOrEqual(t, len(toks), 1)
	assert.Equal(t, token.INT, toks[0].Kind)
	assert.Equal(t, uint64(18446744073709551615), toks[0].IntHi)
	assert.Equal(t, uint64(18446744073709551615), toks[0].IntLo)
}

func TestLexStringUnescapes(t *testing.T) {
	toks := collect(t, `"a\nb"`)
	assert.Equal(t, token.STRING, toks[0].Kind)
	assert.Equal(t, "a\nb", toks[0].Literal)
}

func TestLexByteString(t *testing.T) {
	toks := collect(t, `b"raw"`)
	assert.Equal(t, token.BYTE_STRING, toks[0].Kind)
	assert.Equal(t, "raw", toks[0].Literal)
}

func TestLexLifetimeVsChar(t *testing.T) {
	toks := collect(t, "'a 'x'")
	assert.Equal(t, token.LIFETIME, toks[0].Kind)
	assert.Equal(t, "a", toks[0].Literal)
	assert.Equal(t, token.CHAR, toks[1].Kind)
	assert.Equal(t, "x", toks[1].Literal)
}

func TestLexLineComment(t *testing.T) {
	toks := collect(t, "let x // trailing comment\n= 1;")
	assert.Equal(t, token.KW_LET, toks[0].Kind)
	assert.Equal(t, token.IDENT, toks[1].Kind)
	assert.Equal(t, token.EQ, toks[2].Kind)
}

func TestLookaheadAndPutback(t *testing.T) {
	l := New("a b c", "test.cv")
	assert.Equal(t, token.IDENT, l.Lookahead(0))
	assert.Equal(t, token.IDENT, l.Lookahead(1))
	assert.Equal(t, token.IDENT, l.Lookahead(2))

	first := l.Next()
	assert.Equal(t, "a", first.Literal)
	l.Putback(first)
	again := l.Next()
	assert.Equal(t, "a", again.Literal)
}

func TestSpanHandles(t *testing.T) {
	l := New("fn foo bar", "test.cv")
	l.Next() // consume "fn" so Next() has "last returned" somewhere
	h := l.StartSpan()
	l.Next() // foo
	l.Next() // bar
	span := l.EndSpan(h)
	assert.Equal(t, 1, span.Start.Line)
	assert.Equal(t, "test.cv", span.Start.File)
}

func TestHygieneScopes(t *testing.T) {
	l := New("x y", "test.cv")
	outer := l.Next()
	l.PushHygiene()
	inner := l.Next()
	l.PopHygiene()
	assert.NotEqual(t, outer.Hygiene, inner.Hygiene)
}

func TestNormalizeStripsBOM(t *testing.T) {
	src := append([]byte{0xEF, 0xBB, 0xBF}, []byte("fn")...)
	out := Normalize(src)
	assert.Equal(t, "fn", string(out))
}

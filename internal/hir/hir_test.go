package hir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicityIsVisible(t *testing.T) {
	global := Publicity{Kind: PublicityGlobal}
	assert.True(t, global.IsVisible(SimplePath{Components: []string{"anywhere"}}))

	none := Publicity{Kind: PublicityNone}
	assert.False(t, none.IsVisible(SimplePath{Components: []string{"anywhere"}}))

	priv := Publicity{Kind: PublicityPrivate, Path: SimplePath{Components: []string{"a", "b"}}}
	assert.True(t, priv.IsVisible(SimplePath{Components: []string{"a", "b", "c"}}))
	assert.False(t, priv.IsVisible(SimplePath{Components: []string{"a", "x"}}))
	assert.False(t, priv.IsVisible(SimplePath{Components: []string{"a"}}))
}

func TestTypeRefStringForms(t *testing.T) {
	i32 := &TypeRef{Kind: TyPrimitive, Primitive: "i32"}
	assert.Equal(t, "i32", i32.String())

	borrow := &TypeRef{Kind: TyBorrow, Mut: true, Inner: i32}
	assert.Equal(t, "&mut i32", borrow.String())

	ptr := &TypeRef{Kind: TyPointer, Inner: i32}
	assert.Equal(t, "*const i32", ptr.String())

	tuple := &TypeRef{Kind: TyTuple, Elems: []*TypeRef{i32, i32}}
	assert.Equal(t, "(i32, i32)", tuple.String())

	gen := &TypeRef{Kind: TyGeneric, Name: "T", Index: 0}
	assert.Equal(t, "T", gen.String())

	selfParam := &TypeRef{Kind: TyGeneric, Name: "Self", Index: ImplicitSelfIndex}
	assert.Equal(t, ImplicitSelfIndex, selfParam.Index)
}

func TestImplGroupLookupPrefersNamedThenGeneric(t *testing.T) {
	g := NewImplGroup()
	namedImpl := &Impl{Kind: ImplInherent}
	genericImpl := &Impl{Kind: ImplTrait}
	g.Named["Point"] = []*Impl{namedImpl}
	g.Generic = []*Impl{genericImpl}

	got := g.Lookup("Point")
	assert.Equal(t, []*Impl{namedImpl, genericImpl}, got)

	gotOther := g.Lookup("Other")
	assert.Equal(t, []*Impl{genericImpl}, gotOther)
}

func TestNewModuleTablesAreDisjointPerTableButNotAcross(t *testing.T) {
	m := NewModule(SimplePath{Components: []string{"m"}})
	m.Types["Foo"] = NameTableEntry{Kind: EntryLocal}
	m.Values["Foo"] = NameTableEntry{Kind: EntryLocal}
	assert.Len(t, m.Types, 1)
	assert.Len(t, m.Values, 1)
	assert.Contains(t, m.Types, "Foo")
	assert.Contains(t, m.Values, "Foo")
}

func TestNewCrateInitializesEmptyTables(t *testing.T) {
	c := NewCrate("corvid")
	assert.Equal(t, "corvid", c.Name)
	assert.NotNil(t, c.Root)
	assert.NotNil(t, c.Impls)
	assert.Empty(t, c.Lang)
}

package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvid-lang/corvidc/internal/errors"
)

func TestResolveControllingFilePrefersModRs(t *testing.T) {
	fr := NewMapResolver(map[string]string{
		"src/lib.rs":      "",
		"src/foo/mod.rs":  "",
	})
	ctx := CrateRootContext("src/lib.rs")
	res, rep := Resolve(fr, ctx, "foo", "")
	require.Nil(t, rep)
	assert.Equal(t, "src/foo/mod.rs", res.Path)
	assert.True(t, res.Next.ControlsDir)
}

func TestResolveControllingFileFallsBackToFlatFile(t *testing.T) {
	fr := NewMapResolver(map[string]string{
		"src/lib.rs": "",
		"src/foo.rs": "",
	})
	ctx := CrateRootContext("src/lib.rs")
	res, rep := Resolve(fr, ctx, "foo", "")
	require.Nil(t, rep)
	assert.Equal(t, "src/foo.rs", res.Path)
	assert.False(t, res.Next.ControlsDir)
}

func TestResolveAmbiguousBothPresent(t *testing.T) {
	fr := NewMapResolver(map[string]string{
		"src/lib.rs":     "",
		"src/foo.rs":     "",
		"src/foo/mod.rs": "",
	})
	ctx := CrateRootContext("src/lib.rs")
	_, rep := Resolve(fr, ctx, "foo", "")
	require.NotNil(t, rep)
	assert.Equal(t, errors.RES002, rep.Code)
}

func TestResolveMissingIsError(t *testing.T) {
	fr := NewMapResolver(map[string]string{"src/lib.rs": ""})
	ctx := CrateRootContext("src/lib.rs")
	_, rep := Resolve(fr, ctx, "missing", "")
	require.NotNil(t, rep)
	assert.Equal(t, errors.RES001, rep.Code)
}

func TestResolveNonControllingChildNeedsSiblingDir(t *testing.T) {
	fr := NewMapResolver(map[string]string{
		"src/lib.rs":      "",
		"src/foo.rs":      "",
		"src/foo/bar.rs":  "",
	})
	ctx := CrateRootContext("src/lib.rs")
	foo, rep := Resolve(fr, ctx, "foo", "")
	require.Nil(t, rep)
	require.False(t, foo.Next.ControlsDir)

	bar, rep := Resolve(fr, foo.Next, "bar", "")
	require.Nil(t, rep)
	assert.Equal(t, "src/foo/bar.rs", bar.Path)
}

func TestResolvePathAttributeOverride(t *testing.T) {
	fr := NewMapResolver(map[string]string{
		"src/lib.rs":   "",
		"src/other.rs": "",
	})
	ctx := CrateRootContext("src/lib.rs")
	res, rep := Resolve(fr, ctx, "m", "other.rs")
	require.Nil(t, rep)
	assert.Equal(t, "src/other.rs", res.Path)
	assert.True(t, res.Next.ControlsDir)
}

func TestResolveStdinDisablesOutOfLine(t *testing.T) {
	fr := NewMapResolver(map[string]string{})
	ctx := CrateRootContext("-")
	_, rep := Resolve(fr, ctx, "m", "")
	require.NotNil(t, rep)
	assert.Equal(t, errors.RES004, rep.Code)
}

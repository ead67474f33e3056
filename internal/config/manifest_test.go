package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvid-lang/corvidc/internal/errors"
	"github.com/corvid-lang/corvidc/internal/hir"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corvid.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestConfigLoadMinimalManifest(t *testing.T) {
	path := writeManifest(t, `
package:
  name: hello
`)
	m, rep := Load(path)
	require.Nil(t, rep)
	assert.Equal(t, "hello", m.CrateName())
	assert.Equal(t, defaultEdition, m.Package.Edition)
}

func TestConfigLoadFullManifest(t *testing.T) {
	path := writeManifest(t, `
package:
  name: app
  edition: "2021"
extern:
  core: /usr/lib/corvid/core
  collections: ./vendor/collections
lang:
  sized: core::marker::Sized
  add: Add
`)
	m, rep := Load(path)
	require.Nil(t, rep)
	assert.Equal(t, "app", m.Package.Name)
	assert.Equal(t, "2021", m.Package.Edition)
	assert.Equal(t, "/usr/lib/corvid/core", m.Extern["core"])

	overrides, rep := m.LangOverrides()
	require.Nil(t, rep)
	assert.Equal(t, hir.SimplePath{Crate: "core", Components: []string{"marker", "Sized"}}, overrides["sized"])
	assert.Equal(t, hir.SimplePath{Crate: "", Components: []string{"Add"}}, overrides["add"])
}

func TestConfigMissingPackageNameIsError(t *testing.T) {
	path := writeManifest(t, `
package:
  edition: "2024"
`)
	_, rep := Load(path)
	require.NotNil(t, rep)
	assert.Equal(t, errors.CFG001, rep.Code)
}

func TestConfigMalformedYAMLIsError(t *testing.T) {
	path := writeManifest(t, "package:\n  name: [unterminated\n")
	_, rep := Load(path)
	require.NotNil(t, rep)
	assert.Equal(t, errors.CFG001, rep.Code)
}

func TestConfigExternTableEmptyEntryIsError(t *testing.T) {
	path := writeManifest(t, `
package:
  name: app
extern:
  core: ""
`)
	_, rep := Load(path)
	require.NotNil(t, rep)
	assert.Equal(t, errors.CFG001, rep.Code)
}

func TestConfigLangOverrideUnknownCratePrefixTreatedAsBareName(t *testing.T) {
	// "widgets" is not in the extern table, so "widgets::Thing" is parsed
	// as a same-crate path whose first component happens to be "widgets",
	// not as a crate-qualified reference.
	path := writeManifest(t, `
package:
  name: app
lang:
  widget: widgets::Thing
`)
	m, rep := Load(path)
	require.Nil(t, rep)
	overrides, rep := m.LangOverrides()
	require.Nil(t, rep)
	assert.Equal(t, hir.SimplePath{Crate: "", Components: []string{"widgets", "Thing"}}, overrides["widget"])
}

func TestConfigMissingManifestFileIsError(t *testing.T) {
	_, rep := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NotNil(t, rep)
	assert.Equal(t, errors.CFG001, rep.Code)
}

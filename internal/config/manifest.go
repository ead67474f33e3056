// Package config loads the crate manifest (corvid.yaml) that seeds a
// lowering run: the crate's own name, its edition, the extern-crate
// search table, and any lang-item override paths. spec.md §9 asks for
// process-wide state like the core-crate-name to be re-architected as
// fields of an explicit context object rather than mutable globals; this
// manifest is the on-disk input that populates that context.
package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/corvid-lang/corvidc/internal/errors"
	"github.com/corvid-lang/corvidc/internal/hir"
)

// Manifest is the parsed shape of corvid.yaml.
type Manifest struct {
	Package PackageSection    `yaml:"package"`
	Extern  map[string]string `yaml:"extern,omitempty"`
	Lang    map[string]string `yaml:"lang,omitempty"`
}

// PackageSection holds the manifest's required "package" table.
type PackageSection struct {
	Name    string `yaml:"name"`
	Edition string `yaml:"edition"`
}

const defaultEdition = "2024"

// Load reads and validates a manifest from path.
func Load(path string) (*Manifest, *errors.Report) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.CFG001, "config", "cannot read manifest "+path+": "+err.Error())
	}
	return Parse(data)
}

// Parse validates and unmarshals raw YAML manifest content.
func Parse(data []byte) (*Manifest, *errors.Report) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.New(errors.CFG001, "config", "malformed crate manifest: "+err.Error())
	}
	if m.Package.Name == "" {
		return nil, errors.New(errors.CFG001, "config", "manifest missing required field: package.name")
	}
	if m.Package.Edition == "" {
		m.Package.Edition = defaultEdition
	}
	for name, path := range m.Extern {
		if name == "" || path == "" {
			return nil, errors.New(errors.CFG001, "config", "extern-crate table entry has an empty name or path")
		}
	}
	return &m, nil
}

// CrateName returns the name a Lowerer should be constructed with.
func (m *Manifest) CrateName() string { return m.Package.Name }

// LangOverrides decodes the manifest's lang-item override table into HIR
// paths keyed by lang-item name, ready to seed hir.Crate.Lang before
// lowering runs (so a manifest can pin a lang item to an item the
// lowerer's own "#[lang = ...]" recording would otherwise leave unset).
// Override values are "::"-separated paths, optionally crate-qualified as
// "crate_name::a::b". A leading segment matching a name in the manifest's
// extern table is treated as the crate qualifier; any other leading segment
// is treated as the first component of a same-crate path.
func (m *Manifest) LangOverrides() (hir.LangItems, *errors.Report) {
	out := hir.LangItems{}
	for langName, pathStr := range m.Lang {
		segs := strings.Split(pathStr, "::")
		crate := ""
		if _, ok := m.Extern[segs[0]]; ok {
			crate = segs[0]
			segs = segs[1:]
		}
		if len(segs) == 0 {
			return nil, errors.New(errors.CFG001, "config", "lang override \""+langName+"\" has an empty path")
		}
		out[langName] = hir.SimplePath{Crate: crate, Components: segs}
	}
	return out, nil
}

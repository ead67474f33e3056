// Package resolve implements the file-loading side of module resolution
// (spec.md §4.2 and §9): a FileResolver abstraction the parser calls
// through so that production builds read the real filesystem while tests
// can substitute an in-memory map, and the "mod NAME;" resolution state
// machine built on top of it.
package resolve

import (
	"path/filepath"
	"strings"

	"github.com/corvid-lang/corvidc/internal/errors"
)

// FileResolver is the file-system abstraction the parser depends on. Real
// compilation uses FSResolver; tests use MapResolver.
type FileResolver interface {
	// Exists reports whether path names a readable file.
	Exists(path string) bool
	// Read returns the full contents of path.
	Read(path string) (string, error)
	// Join joins a directory and a relative path the way this resolver's
	// backing store expects (filepath.Join for the real filesystem, plain
	// path.Join-style for in-memory fixtures).
	Join(dir, rel string) string
}

// Context carries the state the module-resolution state machine needs
// about the module that is about to declare "mod NAME;" children: the
// directory to search, the stem to fall back to when that directory isn't
// controlled, whether that directory is in fact controlled, and whether
// out-of-line loading is disabled entirely (stdin input).
//
// States, per spec.md §4.2: CrateRoot and ControllingFile both have
// ControlsDir=true; ChildInline copies its parent's Context unchanged
// (inline children don't load files); ChildOutOfLine is the Context
// computed by Resolve for the file it just loaded.
type Context struct {
	Dir         string
	Stem        string // parent file's basename without extension
	ControlsDir bool
	Stdin       bool
}

// CrateRootContext builds the initial Context for a crate root file.
func CrateRootContext(path string) Context {
	if path == "-" {
		return Context{Stdin: true}
	}
	dir := filepath.Dir(path)
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Context{Dir: dir, Stem: stem, ControlsDir: true}
}

// Resolved is what Resolve returns on success: the file path to load plus
// the Context its own children should resolve against.
type Resolved struct {
	Path string
	Next Context
}

// Resolve implements spec.md §4.2's module-resolution rules in order:
//
//  1. An explicit #[path="..."] attribute always wins; the resulting file
//     inherits ControlsDir=true.
//  2. Otherwise, if the parent controls its directory, look for
//     NAME/mod.rs and NAME.rs side by side; exactly one must exist.
//  3. Otherwise, look for NAME.rs under a directory named after the
//     parent's stem; failure prompts converting the parent to a mod.rs.
//  4. Stdin input ("-") disables all out-of-line loading outright.
func Resolve(fr FileResolver, parent Context, modName, pathAttr string) (*Resolved, *errors.Report) {
	if parent.Stdin {
		return nil, errors.New(errors.RES004, "resolve",
			"cannot load out-of-line module '"+modName+"' when compiling from stdin")
	}

	if pathAttr != "" {
		p := fr.Join(parent.Dir, pathAttr)
		if !fr.Exists(p) {
			return nil, errors.New(errors.RES003, "resolve",
				"#[path] target not found: "+p)
		}
		return &Resolved{Path: p, Next: Context{
			Dir:         filepath.Dir(p),
			Stem:        strings.TrimSuffix(filepath.Base(p), filepath.Ext(p)),
			ControlsDir: true,
		}}, nil
	}

	if parent.ControlsDir {
		asMod := fr.Join(parent.Dir, filepath.Join(modName, "mod.rs"))
		asFile := fr.Join(parent.Dir, modName+".rs")
		modExists := fr.Exists(asMod)
		fileExists := fr.Exists(asFile)
		switch {
		case modExists && fileExists:
			return nil, errors.New(errors.RES002, "resolve",
				"ambiguous module '"+modName+"': both "+asMod+" and "+asFile+" exist")
		case modExists:
			return &Resolved{Path: asMod, Next: Context{
				Dir: filepath.Dir(asMod), Stem: "mod", ControlsDir: true,
			}}, nil
		case fileExists:
			return &Resolved{Path: asFile, Next: Context{
				Dir: parent.Dir, Stem: modName, ControlsDir: false,
			}}, nil
		default:
			return nil, errors.New(errors.RES001, "resolve",
				"module '"+modName+"' not found: neither "+asMod+" nor "+asFile+" exists")
		}
	}

	siblingDir := fr.Join(parent.Dir, parent.Stem)
	asFile := fr.Join(siblingDir, modName+".rs")
	if !fr.Exists(asFile) {
		return nil, errors.New(errors.RES001, "resolve",
			"module '"+modName+"' not found: "+asFile+
				" does not exist; convert the parent to a mod.rs to declare out-of-line children")
	}
	return &Resolved{Path: asFile, Next: Context{
		Dir: siblingDir, Stem: modName, ControlsDir: false,
	}}, nil
}

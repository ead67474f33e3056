package resolve

import (
	"fmt"
	"path"
)

// MapResolver is an in-memory FileResolver for tests: a fixed map of path
// to source text, with no real filesystem access. Paths are compared
// exactly as given; Join uses path.Join semantics (forward slashes) so
// fixtures are platform independent.
type MapResolver struct {
	Files map[string]string
}

func NewMapResolver(files map[string]string) *MapResolver {
	return &MapResolver{Files: files}
}

func (m *MapResolver) Exists(p string) bool {
	_, ok := m.Files[p]
	return ok
}

func (m *MapResolver) Read(p string) (string, error) {
	src, ok := m.Files[p]
	if !ok {
		return "", fmt.Errorf("resolve: no such fixture file %q", p)
	}
	return src, nil
}

func (m *MapResolver) Join(dir, rel string) string {
	if dir == "" {
		return path.Clean(rel)
	}
	return path.Clean(path.Join(dir, rel))
}

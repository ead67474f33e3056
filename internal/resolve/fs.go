package resolve

import (
	"os"
	"path/filepath"
)

// FSResolver resolves module files against the real filesystem.
type FSResolver struct{}

func NewFSResolver() *FSResolver { return &FSResolver{} }

func (FSResolver) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (FSResolver) Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (FSResolver) Join(dir, rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(dir, rel)
}

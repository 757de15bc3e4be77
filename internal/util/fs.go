package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	return nil
}

// ResolveUnder joins name onto root and refuses results that leave root.
// Absolute names must already lie under root. With an empty root the name is
// only cleaned.
func ResolveUnder(root, name string) (string, error) {
	if root == "" {
		return filepath.Clean(name), nil
	}
	if filepath.IsAbs(name) {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return "", fmt.Errorf("resolve root %s: %w", root, err)
		}
		rel, err := filepath.Rel(absRoot, filepath.Clean(name))
		if err != nil || escapes(rel) {
			return "", fmt.Errorf("%w: %s", ErrPathEscapesRoot, name)
		}
		name = rel
	}
	p := filepath.Join(root, name)
	rel, err := filepath.Rel(root, p)
	if err != nil || escapes(rel) {
		return "", fmt.Errorf("%w: %s", ErrPathEscapesRoot, name)
	}
	return p, nil
}

func escapes(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Package filex holds small filesystem helpers for the data files.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureParentDir creates the directory that will hold path, so a data file
// configured as "data/users.json" can be created on first start.
func EnsureParentDir(path string) (string, error) {
	dir := filepath.Dir(filepath.Clean(path))

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

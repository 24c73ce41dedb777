package util

import (
	"fmt"
	"os"
	"path/filepath"
)

func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	return nil
}

// SafeJoin joins an untrusted filename to a root, discarding any directory
// components so uploads cannot escape the caller's workspace.
func SafeJoin(root, name string) string {
	return filepath.Join(root, filepath.Base(name))
}

// LatestFile returns the most recently modified file in dir with the given
// extension, or "" when none exists.
func LatestFile(dir, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read dir %s: %w", dir, err)
	}
	best := ""
	var bestMod int64
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ext {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if best == "" || info.ModTime().UnixNano() > bestMod {
			best = e.Name()
			bestMod = info.ModTime().UnixNano()
		}
	}
	return best, nil
}

package local

import (
	"os"
	"path/filepath"
)

// Save writes b to path, creating parent directories as needed.
func Save(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0770); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// EnsureDir creates dir if missing and returns its absolute form.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(abs, 0770); err != nil {
		return "", err
	}
	return abs, nil
}

package storage

import (
	"os"
	"path/filepath"
)

// LocalFileSystem reads GPS files staged on local disk.
type LocalFileSystem struct{}

// Exists reports whether path is an existing regular file.
func (LocalFileSystem) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (LocalFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile creates parent directories as needed.
func (LocalFileSystem) WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// RemoveAll deletes path and everything below it.
func (LocalFileSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

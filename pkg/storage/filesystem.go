package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage persists exported planning files on disk under a base
// directory.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./exports"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create exports directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// Save writes the given bytes to the provided relative path under the base
// dir and returns the stored name.
func (s *LocalStorage) Save(filename string, data []byte) (string, error) {
	path := s.resolve(filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare export directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	return filename, nil
}

// Open returns the file content previously saved under filename.
func (s *LocalStorage) Open(filename string) ([]byte, error) {
	data, err := os.ReadFile(s.resolve(filename))
	if err != nil {
		return nil, fmt.Errorf("read export file: %w", err)
	}
	return data, nil
}

func (s *LocalStorage) resolve(filename string) string {
	clean := filepath.Clean("/" + strings.TrimPrefix(filename, "/"))
	return filepath.Join(s.baseDir, clean)
}

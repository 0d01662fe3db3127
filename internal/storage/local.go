package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStorage keeps files below a base directory
type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) *LocalStorage {
	return &LocalStorage{dir: dir}
}

// Dir returns the base directory
func (s *LocalStorage) Dir() string {
	return s.dir
}

// Path returns the filesystem path of a stored file
func (s *LocalStorage) Path(path string) string {
	return filepath.Join(s.dir, filepath.FromSlash(path))
}

func (s *LocalStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(s.Path(path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.Path(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.Path(path), err)
	}
	return f, nil
}

func (s *LocalStorage) Save(ctx context.Context, path string, file io.Reader) error {
	full := s.Path(path)
	err := os.MkdirAll(filepath.Dir(full), 0755)
	if err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	_, err = io.Copy(tmp, file)
	if err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", full, err)
	}
	err = tmp.Close()
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", full, err)
	}

	return os.Rename(tmp.Name(), full)
}

func (s *LocalStorage) URL(path string) string {
	abs, err := filepath.Abs(s.Path(path))
	if err != nil {
		return s.Path(path)
	}
	return "file://" + filepath.ToSlash(abs)
}

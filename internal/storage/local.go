package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/radif/medias/internal/apperr"
	"github.com/radif/medias/internal/media"
)

// LocalStorage writes uploads into a directory served at /uploads/.
type LocalStorage struct {
	dir string
}

// NewLocalStorage resolves dir to an absolute path and creates it if needed.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve uploads dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &LocalStorage{dir: abs}, nil
}

// Dir returns the absolute uploads directory.
func (s *LocalStorage) Dir() string { return s.dir }

// Put writes body to <dir>/<name>. An existing file with the same name is
// overwritten.
func (s *LocalStorage) Put(_ context.Context, name string, body io.Reader, _ int64, _ string) (media.Key, error) {
	if err := checkName(name); err != nil {
		return media.Key{}, apperr.StorageError("write file", err)
	}

	dst := filepath.Join(s.dir, name)
	f, err := os.Create(dst)
	if err != nil {
		return media.Key{}, apperr.StorageError("write file", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		return media.Key{}, apperr.StorageError("write file", err)
	}
	if err := f.Close(); err != nil {
		return media.Key{}, apperr.StorageError("write file", err)
	}
	return media.LocalKey(name), nil
}

// PublicURL returns the root-relative path the file is served at.
func (s *LocalStorage) PublicURL(key media.Key) (string, error) {
	if key.Kind != media.KindLocal {
		return "", fmt.Errorf("%w: %s", ErrWrongBackend, key)
	}
	return "/" + key.Path, nil
}

// Delete removes the file behind key.
func (s *LocalStorage) Delete(_ context.Context, key media.Key) error {
	if key.Kind != media.KindLocal {
		return fmt.Errorf("%w: %s", ErrWrongBackend, key)
	}
	if err := checkName(key.Name()); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, key.Name())); err != nil && !os.IsNotExist(err) {
		return apperr.StorageError("delete file", err)
	}
	return nil
}

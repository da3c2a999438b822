// Package fsservice implements the filesystem commands exposed to the
// front-end. The Service holds no mutable state; every method is a direct,
// blocking call into the storage provider.
package fsservice

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"syscall"
	"unicode/utf8"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/storage"
)

// DataDirResolver resolves the per-application data directory.
type DataDirResolver interface {
	Resolve() (string, error)
}

// Service implements the seven filesystem commands.
type Service struct {
	store storage.Provider
	dirs  DataDirResolver
}

// NewService creates a new filesystem command service.
func NewService(store storage.Provider, dirs DataDirResolver) *Service {
	return &Service{store: store, dirs: dirs}
}

// DataDir returns the per-application data directory.
func (s *Service) DataDir(_ context.Context) (string, error) {
	dir, err := s.dirs.Resolve()
	if err != nil {
		return "", apperr.E("get_data_dir", "", err)
	}
	return dir, nil
}

// ReadFile returns the whole file as UTF-8 text.
func (s *Service) ReadFile(_ context.Context, path string) (string, error) {
	data, err := s.store.Read(path)
	if err != nil {
		return "", apperr.E("read_file", path, err)
	}
	if !utf8.Valid(data) {
		return "", apperr.New(apperr.KindInvalidEncoding, "read_file", path, apperr.ErrInvalidEncoding)
	}
	return string(data), nil
}

// WriteFile creates the parent directory chain, then replaces the file's
// contents with content.
func (s *Service) WriteFile(_ context.Context, path, content string) error {
	if parent := filepath.Dir(path); parent != "." && parent != path {
		if err := s.store.MkdirAll(parent); err != nil {
			return apperr.E("write_file", path, err)
		}
	}
	if err := s.store.Write(path, []byte(content)); err != nil {
		return apperr.E("write_file", path, err)
	}
	return nil
}

// DeleteFile removes a file. A missing path is not an error; a directory
// is. A symlink is removed itself, whatever it points to.
func (s *Service) DeleteFile(_ context.Context, path string) error {
	info, err := s.store.Lstat(path)
	if err != nil {
		if errors.Is(err, storage.ErrEscapesRoot) {
			return apperr.E("delete_file", path, err)
		}
		// Anything else that cannot be stat-ed counts as absent.
		return nil
	}
	if info.IsDir() {
		return apperr.New(apperr.KindIsADirectory, "delete_file", path,
			&fs.PathError{Op: "remove", Path: path, Err: syscall.EISDIR})
	}
	if err := s.store.Remove(path); err != nil {
		return apperr.E("delete_file", path, err)
	}
	return nil
}

// ListDir returns the names of the entries in path. A missing directory
// yields an empty list. Errors hit while enumerating an opened directory
// are dropped along with the entries they affect.
func (s *Service) ListDir(_ context.Context, path string) ([]string, error) {
	info, err := s.store.Stat(path)
	if err != nil {
		if errors.Is(err, storage.ErrEscapesRoot) {
			return nil, apperr.E("list_dir", path, err)
		}
		return []string{}, nil
	}
	if !info.IsDir() {
		return nil, apperr.New(apperr.KindNotADirectory, "list_dir", path,
			&fs.PathError{Op: "readdir", Path: path, Err: syscall.ENOTDIR})
	}
	names, err := s.store.ReadDirNames(path)
	if names == nil {
		if err == nil {
			return []string{}, nil
		}
		return nil, apperr.E("list_dir", path, err)
	}
	return names, nil
}

// EnsureDir creates path and any missing ancestors.
func (s *Service) EnsureDir(_ context.Context, path string) error {
	if err := s.store.MkdirAll(path); err != nil {
		return apperr.E("ensure_dir", path, err)
	}
	return nil
}

// FileExists reports whether anything exists at path.
func (s *Service) FileExists(_ context.Context, path string) bool {
	_, err := s.store.Stat(path)
	return err == nil
}

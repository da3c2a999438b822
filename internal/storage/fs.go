package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// ErrEscapesRoot is returned by a confined FS for paths outside its root.
var ErrEscapesRoot = fmt.Errorf("path escapes data directory: %w", fs.ErrPermission)

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute confinement root; empty when unconfined
}

// NewFS returns an FS that passes paths to the OS untouched.
func NewFS() *FS {
	return &FS{}
}

// NewConfinedFS creates an FS that only accepts paths under root.
// Relative paths are resolved against root. The directory must already exist.
func NewConfinedFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the confinement root, or "" for an unconfined FS.
func (f *FS) Root() string {
	return f.root
}

// resolve maps path to the name handed to the OS. Unconfined, it is the
// identity. Confined, the result must stay under root.
func (f *FS) resolve(path string) (string, error) {
	if f.root == "" {
		return path, nil
	}
	cleaned := filepath.Clean(path)
	if !filepath.IsAbs(cleaned) {
		cleaned = filepath.Join(f.root, cleaned)
	}
	if cleaned != f.root && !strings.HasPrefix(cleaned, f.root+string(os.PathSeparator)) {
		return "", &fs.PathError{Op: "resolve", Path: path, Err: ErrEscapesRoot}
	}
	return cleaned, nil
}

// Read returns the raw bytes of a file.
func (f *FS) Read(path string) ([]byte, error) {
	p, err := f.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

// Write truncates or creates the file and writes content.
func (f *FS) Write(path string, content []byte) error {
	p, err := f.resolve(path)
	if err != nil {
		return err
	}
	return os.WriteFile(p, content, filePerm)
}

// Remove deletes a file. An empty directory is removed too; callers that
// need file-only semantics check Stat first.
func (f *FS) Remove(path string) error {
	p, err := f.resolve(path)
	if err != nil {
		return err
	}
	return os.Remove(p)
}

// ReadDirNames lists a directory without stat-ing its entries.
func (f *FS) ReadDirNames(path string) ([]string, error) {
	p, err := f.resolve(path)
	if err != nil {
		return nil, err
	}
	dir, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer dir.Close()

	names, err := dir.Readdirnames(-1)
	if names == nil {
		names = []string{}
	}
	return names, err
}

// MkdirAll creates the directory chain.
func (f *FS) MkdirAll(path string) error {
	p, err := f.resolve(path)
	if err != nil {
		return err
	}
	return os.MkdirAll(p, dirPerm)
}

// Stat follows symlinks.
func (f *FS) Stat(path string) (fs.FileInfo, error) {
	p, err := f.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.Stat(p)
}

// Lstat describes the link itself when path is a symlink.
func (f *FS) Lstat(path string) (fs.FileInfo, error) {
	p, err := f.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.Lstat(p)
}

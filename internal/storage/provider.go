// Package storage defines the filesystem primitives used by the command handler.
package storage

import "io/fs"

// Provider is the interface for raw filesystem operations.
// Errors are returned as produced by the OS, unwrapped.
type Provider interface {
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write replaces the contents of the file at path, creating it if needed.
	// Parent directories are not created.
	Write(path string, content []byte) error
	// Remove deletes the entry at path.
	Remove(path string) error
	// ReadDirNames returns the entry names of the directory at path. If the
	// directory was opened, names is non-nil even when err is set.
	ReadDirNames(path string) (names []string, err error)
	// MkdirAll creates path and any missing ancestors.
	MkdirAll(path string) error
	// Stat returns file info for path, following symlinks.
	Stat(path string) (fs.FileInfo, error)
	// Lstat returns file info for path itself; a symlink is not followed.
	Lstat(path string) (fs.FileInfo, error)
}

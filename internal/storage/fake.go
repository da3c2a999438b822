package storage

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"
)

// Fake is an in-memory [Provider] for testing. It records all calls (spy)
// and simulates filesystem state (fake). Pre-populate Dirs, Files, Errors
// and ListErrors before calling methods.
type Fake struct {
	Dirs       map[string]bool   // pre-populated directories
	Files      map[string][]byte // pre-populated files
	Errors     map[string]error  // path → injected error (checked first)
	ListErrors map[string]error  // path → error returned alongside names by ReadDirNames
	Calls      []Call            // spy log
}

// Call records a single method invocation on [Fake].
type Call struct {
	Method string // "Read", "Write", "Remove", "ReadDirNames", "MkdirAll", "Stat" or "Lstat"
	Path   string
}

// NewFake returns a ready-to-use [Fake] with empty maps.
func NewFake() *Fake {
	return &Fake{
		Dirs:       make(map[string]bool),
		Files:      make(map[string][]byte),
		Errors:     make(map[string]error),
		ListErrors: make(map[string]error),
	}
}

func (f *Fake) record(method, path string) error {
	f.Calls = append(f.Calls, Call{Method: method, Path: path})
	if err, ok := f.Errors[path]; ok {
		return err
	}
	return nil
}

// Read returns a copy of the stored file contents.
func (f *Fake) Read(path string) ([]byte, error) {
	if err := f.record("Read", path); err != nil {
		return nil, err
	}
	if f.Dirs[path] {
		return nil, &os.PathError{Op: "read", Path: path, Err: syscall.EISDIR}
	}
	data, ok := f.Files[path]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// Write stores a copy of content. The parent directory must exist.
func (f *Fake) Write(path string, content []byte) error {
	if err := f.record("Write", path); err != nil {
		return err
	}
	if f.Dirs[path] {
		return &os.PathError{Op: "open", Path: path, Err: syscall.EISDIR}
	}
	if parent := filepath.Dir(path); !f.isRoot(parent) && !f.Dirs[parent] {
		return &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	cp := make([]byte, len(content))
	copy(cp, content)
	f.Files[path] = cp
	return nil
}

// Remove deletes a file or an empty directory.
func (f *Fake) Remove(path string) error {
	if err := f.record("Remove", path); err != nil {
		return err
	}
	if _, ok := f.Files[path]; ok {
		delete(f.Files, path)
		return nil
	}
	if f.Dirs[path] {
		if len(f.children(path)) > 0 {
			return &os.PathError{Op: "remove", Path: path, Err: syscall.ENOTEMPTY}
		}
		delete(f.Dirs, path)
		return nil
	}
	return &os.PathError{Op: "remove", Path: path, Err: os.ErrNotExist}
}

// ReadDirNames returns the sorted names of direct children.
func (f *Fake) ReadDirNames(path string) ([]string, error) {
	if err := f.record("ReadDirNames", path); err != nil {
		return nil, err
	}
	if _, ok := f.Files[path]; ok {
		return nil, &os.PathError{Op: "readdirent", Path: path, Err: syscall.ENOTDIR}
	}
	if !f.Dirs[path] {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	return f.children(path), f.ListErrors[path]
}

// MkdirAll adds the directory and its parents to Dirs.
func (f *Fake) MkdirAll(path string) error {
	if err := f.record("MkdirAll", path); err != nil {
		return err
	}
	for p := filepath.Clean(path); !f.isRoot(p); p = filepath.Dir(p) {
		if _, ok := f.Files[p]; ok {
			return &os.PathError{Op: "mkdir", Path: p, Err: syscall.ENOTDIR}
		}
		f.Dirs[p] = true
	}
	return nil
}

// Stat returns info based on the Dirs and Files maps.
func (f *Fake) Stat(path string) (fs.FileInfo, error) {
	if err := f.record("Stat", path); err != nil {
		return nil, err
	}
	return f.info(path)
}

// Lstat is Stat; the fake has no symlinks.
func (f *Fake) Lstat(path string) (fs.FileInfo, error) {
	if err := f.record("Lstat", path); err != nil {
		return nil, err
	}
	return f.info(path)
}

func (f *Fake) info(path string) (fs.FileInfo, error) {
	if f.Dirs[path] || f.isRoot(path) {
		return fakeInfo{name: filepath.Base(path), dir: true}, nil
	}
	if data, ok := f.Files[path]; ok {
		return fakeInfo{name: filepath.Base(path), size: int64(len(data))}, nil
	}
	return nil, &os.PathError{Op: "stat", Path: path, Err: os.ErrNotExist}
}

func (f *Fake) isRoot(p string) bool {
	return p == "." || p == "/" || p == string(filepath.Separator)
}

func (f *Fake) children(dir string) []string {
	prefix := strings.TrimSuffix(dir, string(filepath.Separator)) + string(filepath.Separator)
	seen := make(map[string]bool)
	collect := func(p string) {
		if rest, ok := strings.CutPrefix(p, prefix); ok && rest != "" {
			seen[strings.SplitN(rest, string(filepath.Separator), 2)[0]] = true
		}
	}
	for p := range f.Files {
		collect(p)
	}
	for p := range f.Dirs {
		collect(p)
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

type fakeInfo struct {
	name string
	size int64
	dir  bool
}

func (fi fakeInfo) Name() string { return fi.name }
func (fi fakeInfo) Size() int64  { return fi.size }
func (fi fakeInfo) Mode() fs.FileMode {
	if fi.dir {
		return fs.ModeDir | 0o755
	}
	return 0o644
}
func (fi fakeInfo) ModTime() time.Time { return time.Time{} }
func (fi fakeInfo) IsDir() bool        { return fi.dir }
func (fi fakeInfo) Sys() any           { return nil }

var _ Provider = (*Fake)(nil)
var _ Provider = (*FS)(nil)

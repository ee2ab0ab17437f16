// Package fakefs provides an in-memory FileSystem implementation for testing.
package fakefs

import (
	"bytes"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/ThK-Systems/galangal/internal/ports"
)

// FS is an in-memory filesystem for testing.
type FS struct {
	mu    sync.Mutex
	files map[string][]byte
	dirs  map[string]bool
}

// New creates a new in-memory filesystem containing only the root directory.
func New() *FS {
	return &FS{
		files: make(map[string][]byte),
		dirs:  map[string]bool{"/": true, ".": true},
	}
}

// WriteFile stores a file, creating parent directories.
func (f *FS) WriteFile(name string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name = filepath.Clean(name)
	f.mkdirAllLocked(filepath.Dir(name))
	f.files[name] = append([]byte(nil), data...)
}

// Exists reports whether a file or directory is present.
func (f *FS) Exists(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	name = filepath.Clean(name)
	_, isFile := f.files[name]
	return isFile || f.dirs[name]
}

// Content returns a file's bytes, or nil when it does not exist.
func (f *FS) Content(name string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[filepath.Clean(name)]
	if !ok {
		return nil
	}
	return append([]byte(nil), data...)
}

// FileNames returns the sorted paths of all files (not directories).
func (f *FS) FileNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	names := make([]string, 0, len(f.files))
	for name := range f.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stat returns file info for the named file.
func (f *FS) Stat(name string) (fs.FileInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name = filepath.Clean(name)
	if data, ok := f.files[name]; ok {
		return fileInfo{name: filepath.Base(name), size: int64(len(data))}, nil
	}
	if f.dirs[name] {
		return fileInfo{name: filepath.Base(name), dir: true}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

// Open opens the named file for reading.
func (f *FS) Open(name string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name = filepath.Clean(name)
	data, ok := f.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Create creates or truncates the named file. The file becomes visible when
// the writer is closed.
func (f *FS) Create(name string) (io.WriteCloser, error) {
	return &fileWriter{fs: f, name: filepath.Clean(name)}, nil
}

// ReadFile reads the named file and returns its contents.
func (f *FS) ReadFile(name string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name = filepath.Clean(name)
	data, ok := f.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), data...), nil
}

// MkdirAll creates a directory and all parent directories.
func (f *FS) MkdirAll(path string, perm fs.FileMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mkdirAllLocked(filepath.Clean(path))
	return nil
}

func (f *FS) mkdirAllLocked(path string) {
	for path != "" && !f.dirs[path] {
		f.dirs[path] = true
		parent := filepath.Dir(path)
		if parent == path {
			break
		}
		path = parent
	}
}

// Remove removes the named file or empty directory.
func (f *FS) Remove(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	name = filepath.Clean(name)
	if _, ok := f.files[name]; ok {
		delete(f.files, name)
		return nil
	}
	if f.dirs[name] {
		delete(f.dirs, name)
		return nil
	}
	return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
}

// Rename renames (moves) oldpath to newpath.
func (f *FS) Rename(oldpath, newpath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	oldpath = filepath.Clean(oldpath)
	newpath = filepath.Clean(newpath)
	data, ok := f.files[oldpath]
	if !ok {
		return &fs.PathError{Op: "rename", Path: oldpath, Err: fs.ErrNotExist}
	}
	delete(f.files, oldpath)
	f.files[newpath] = data
	return nil
}

type fileWriter struct {
	fs   *FS
	name string
	buf  bytes.Buffer
}

func (w *fileWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *fileWriter) Close() error {
	w.fs.mu.Lock()
	defer w.fs.mu.Unlock()
	w.fs.files[w.name] = append([]byte(nil), w.buf.Bytes()...)
	return nil
}

type fileInfo struct {
	name string
	size int64
	dir  bool
}

func (i fileInfo) Name() string { return i.name }
func (i fileInfo) Size() int64  { return i.size }
func (i fileInfo) Mode() fs.FileMode {
	if i.dir {
		return fs.ModeDir | 0o755
	}
	return 0o644
}
func (i fileInfo) ModTime() time.Time { return time.Time{} }
func (i fileInfo) IsDir() bool        { return i.dir }
func (i fileInfo) Sys() any           { return nil }

// Ensure FS implements ports.FileSystem.
var _ ports.FileSystem = (*FS)(nil)
